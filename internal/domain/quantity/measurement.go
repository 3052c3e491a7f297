package quantity

import "math"

// Measurement is a central value with a symmetric uncertainty. The value and
// the error keep their own units until an arithmetic operation or a
// comparison brings them together.
type Measurement struct {
	Value Quantity
	Error Quantity
}

// Exact wraps a quantity with zero uncertainty.
func Exact(q Quantity) Measurement {
	return Measurement{Value: q, Error: Quantity{Unit: q.Unit}}
}

// PlusMinus attaches err to value. When exactly one side is dimensionless it
// adopts the other side's unit, so "1m +/- 0.1" means ±0.1 m.
func PlusMinus(value, err Quantity) (Measurement, error) {
	switch {
	case err.IsDimensionless() && !value.IsDimensionless():
		err = err.WithUnit(value.Unit)
	case value.IsDimensionless() && !err.IsDimensionless():
		value = value.WithUnit(err.Unit)
	}
	if !value.Unit.Compatible(err.Unit) {
		return Measurement{}, &UnitMismatchError{From: err.Unit.Symbol, To: value.Unit.Symbol}
	}
	return Measurement{Value: value, Error: err.Abs()}, nil
}

// IsExact reports whether the measurement carries no uncertainty.
func (m Measurement) IsExact() bool {
	return m.Error.Magnitude == 0
}

// ToBase converts both the value and the error to canonical units.
func (m Measurement) ToBase() Measurement {
	return Measurement{Value: m.Value.ToBase(), Error: m.Error.ToBase()}
}

// Neg returns -m.
func (m Measurement) Neg() Measurement {
	return Measurement{Value: m.Value.Neg(), Error: m.Error}
}

// Add returns m+o with errors combined in quadrature.
func (m Measurement) Add(o Measurement) (Measurement, error) {
	v, err := m.Value.Add(o.Value)
	if err != nil {
		return Measurement{}, err
	}
	sigma := math.Hypot(m.baseError(), o.baseError())
	return m.withBaseError(v, sigma), nil
}

// Sub returns m-o with errors combined in quadrature.
func (m Measurement) Sub(o Measurement) (Measurement, error) {
	return m.Add(o.Neg())
}

// Mul returns m*o with first-order error propagation.
func (m Measurement) Mul(o Measurement) (Measurement, error) {
	v, err := m.Value.Mul(o.Value)
	if err != nil {
		return Measurement{}, err
	}
	a, b := m.baseValue(), o.baseValue()
	sigma := math.Hypot(b*m.baseError(), a*o.baseError())
	return m.withBaseError(v, sigma), nil
}

// Div returns m/o with first-order error propagation.
func (m Measurement) Div(o Measurement) (Measurement, error) {
	v, err := m.Value.Div(o.Value)
	if err != nil {
		return Measurement{}, err
	}
	a, b := m.baseValue(), o.baseValue()
	sigma := math.Hypot(m.baseError()/b, a*o.baseError()/(b*b))
	return m.withBaseError(v, sigma), nil
}

// Compare compares the central values in base units.
func (m Measurement) Compare(o Measurement) (int, error) {
	return m.Value.Compare(o.Value)
}

// Equal reports whether both the central values and the errors match.
func (m Measurement) Equal(o Measurement) bool {
	if !m.Value.Equal(o.Value) {
		return false
	}
	if m.IsExact() && o.IsExact() {
		return true
	}
	return nearlyEqual(m.baseError(), o.baseError())
}

func (m Measurement) String() string {
	if m.IsExact() {
		return m.Value.String()
	}
	return m.Value.String() + " +/- " + m.Error.String()
}

func (m Measurement) baseValue() float64 {
	return m.Value.Magnitude * m.Value.Unit.Scale
}

func (m Measurement) baseError() float64 {
	return m.Error.Magnitude * m.Error.Unit.Scale
}

// withBaseError builds a measurement around v whose error, given in base
// units, is re-expressed in v's unit.
func (m Measurement) withBaseError(v Quantity, sigma float64) Measurement {
	return Measurement{Value: v, Error: Quantity{Magnitude: sigma / v.Unit.Scale, Unit: v.Unit}}
}
