// Package quantity provides unit-tagged scalars with dimensional arithmetic,
// unit conversion and a symmetric uncertainty wrapper.
package quantity

import (
	"fmt"
	"math"
	"strings"
)

// Dimension is the exponent vector over the SI base dimensions, in the order
// length, mass, time, current, temperature, amount, luminosity.
type Dimension [7]int8

var baseSymbols = [7]string{"m", "kg", "s", "A", "K", "mol", "cd"}

// IsZero reports whether the dimension is dimensionless.
func (d Dimension) IsZero() bool {
	return d == Dimension{}
}

// MaxExponent is the largest magnitude a dimension exponent can hold.
const MaxExponent = math.MaxInt8

func (d Dimension) add(o Dimension) (Dimension, error) {
	return d.combine(func(i int) int { return int(d[i]) + int(o[i]) })
}

func (d Dimension) sub(o Dimension) (Dimension, error) {
	return d.combine(func(i int) int { return int(d[i]) - int(o[i]) })
}

func (d Dimension) scale(n int) (Dimension, error) {
	if n > MaxExponent || n < -MaxExponent {
		return Dimension{}, &DimensionOverflowError{Dimension: d, Exponent: n}
	}
	return d.combine(func(i int) int { return int(d[i]) * n })
}

// combine builds a dimension from per-axis exponents, failing when any of
// them leaves the int8 range.
func (d Dimension) combine(exp func(i int) int) (Dimension, error) {
	var out Dimension
	for i := range out {
		e := exp(i)
		if e > MaxExponent || e < -MaxExponent {
			return Dimension{}, &DimensionOverflowError{Dimension: d, Exponent: e}
		}
		out[i] = int8(e)
	}
	return out, nil
}

// String renders the dimension as a product of SI base symbols, e.g. "kg*m/s^2".
func (d Dimension) String() string {
	if d.IsZero() {
		return CountSymbol
	}
	var num, den []string
	// mass first reads more naturally for derived mechanical units
	order := []int{1, 0, 2, 3, 4, 5, 6}
	for _, i := range order {
		switch e := d[i]; {
		case e > 0:
			num = append(num, powSymbol(baseSymbols[i], int(e)))
		case e < 0:
			den = append(den, powSymbol(baseSymbols[i], int(-e)))
		}
	}
	s := strings.Join(num, "*")
	if s == "" {
		s = "1"
	}
	if len(den) > 0 {
		s += "/" + strings.Join(den, "/")
	}
	return s
}

func powSymbol(sym string, e int) string {
	if e == 1 {
		return sym
	}
	return fmt.Sprintf("%s^%d", sym, e)
}

// CountSymbol is the symbol of the dimensionless counting unit.
const CountSymbol = "count"

// Unit is a named unit: magnitude*Scale gives the value in SI base units.
type Unit struct {
	Symbol string
	Scale  float64
	Dim    Dimension

	// prefixable marks units that accept SI prefixes during lookup.
	prefixable bool
}

// Count is the dimensionless unit attached to bare numbers.
var Count = Unit{Symbol: CountSymbol, Scale: 1}

// IsDimensionless reports whether the unit carries no physical dimension.
func (u Unit) IsDimensionless() bool {
	return u.Dim.IsZero()
}

// IsCount reports whether the unit is the plain counting unit.
func (u Unit) IsCount() bool {
	return u.IsDimensionless() && u.Scale == 1
}

// Compatible reports whether values in u can be converted to o.
func (u Unit) Compatible(o Unit) bool {
	return u.Dim == o.Dim
}

// Pow raises the unit to an integer exponent.
func (u Unit) Pow(n int) (Unit, error) {
	if n == 1 {
		return u, nil
	}
	dim, err := u.Dim.scale(n)
	if err != nil {
		return Unit{}, err
	}
	return Unit{
		Symbol: powSymbol(u.Symbol, n),
		Scale:  math.Pow(u.Scale, float64(n)),
		Dim:    dim,
	}, nil
}

// Mul returns the product unit.
func (u Unit) Mul(o Unit) (Unit, error) {
	switch {
	case u.IsCount():
		return o, nil
	case o.IsCount():
		return u, nil
	case u.Symbol == o.Symbol:
		return u.Pow(2)
	}
	dim, err := u.Dim.add(o.Dim)
	if err != nil {
		return Unit{}, err
	}
	return Unit{
		Symbol: u.Symbol + "*" + o.Symbol,
		Scale:  u.Scale * o.Scale,
		Dim:    dim,
	}, nil
}

// Div returns the quotient unit. Units that cancel collapse to Count when
// their scales agree.
func (u Unit) Div(o Unit) (Unit, error) {
	if o.IsCount() {
		return u, nil
	}
	dim, err := u.Dim.sub(o.Dim)
	if err != nil {
		return Unit{}, err
	}
	scale := u.Scale / o.Scale
	if dim.IsZero() && scale == 1 {
		return Count, nil
	}
	sym := u.Symbol
	if u.IsCount() {
		sym = "1"
	}
	return Unit{
		Symbol: sym + "/" + o.Symbol,
		Scale:  scale,
		Dim:    dim,
	}, nil
}

// Canonical returns the SI base unit with the same dimension.
func (u Unit) Canonical() Unit {
	if u.Dim.IsZero() {
		return Count
	}
	if name, ok := derivedNames[u.Dim]; ok {
		return Unit{Symbol: name, Scale: 1, Dim: u.Dim}
	}
	return Unit{Symbol: u.Dim.String(), Scale: 1, Dim: u.Dim}
}

func (u Unit) String() string {
	return u.Symbol
}

var (
	dimLength      = Dimension{1, 0, 0, 0, 0, 0, 0}
	dimMass        = Dimension{0, 1, 0, 0, 0, 0, 0}
	dimTime        = Dimension{0, 0, 1, 0, 0, 0, 0}
	dimCurrent     = Dimension{0, 0, 0, 1, 0, 0, 0}
	dimTemperature = Dimension{0, 0, 0, 0, 1, 0, 0}
	dimAmount      = Dimension{0, 0, 0, 0, 0, 1, 0}
	dimLuminosity  = Dimension{0, 0, 0, 0, 0, 0, 1}

	dimForce    = Dimension{1, 1, -2, 0, 0, 0, 0}
	dimPressure = Dimension{-1, 1, -2, 0, 0, 0, 0}
	dimEnergy   = Dimension{2, 1, -2, 0, 0, 0, 0}
	dimPower    = Dimension{2, 1, -3, 0, 0, 0, 0}
	dimVoltage  = Dimension{2, 1, -3, -1, 0, 0, 0}
	dimFreq     = Dimension{0, 0, -1, 0, 0, 0, 0}
)

// derivedNames maps dimensions to the SI symbol used in canonical rendering.
var derivedNames = map[Dimension]string{
	dimForce:    "N",
	dimPressure: "Pa",
	dimEnergy:   "J",
	dimPower:    "W",
	dimVoltage:  "V",
	dimFreq:     "Hz",
}
