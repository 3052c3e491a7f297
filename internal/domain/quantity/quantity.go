package quantity

import (
	"math"
	"strconv"
)

// equalTolerance is the relative tolerance used by Equal and Compare.
const equalTolerance = 1e-9

// Quantity is a magnitude tagged with a unit.
type Quantity struct {
	Unit      Unit
	Magnitude float64
}

// New creates a quantity.
func New(magnitude float64, unit Unit) Quantity {
	return Quantity{Magnitude: magnitude, Unit: unit}
}

// Counts creates a dimensionless quantity in the counting unit.
func Counts(magnitude float64) Quantity {
	return Quantity{Magnitude: magnitude, Unit: Count}
}

// IsDimensionless reports whether the quantity carries no physical dimension.
func (q Quantity) IsDimensionless() bool {
	return q.Unit.IsDimensionless()
}

// IsZero reports whether the magnitude is zero.
func (q Quantity) IsZero() bool {
	return q.Magnitude == 0
}

// ToBase converts the quantity to its canonical SI unit.
func (q Quantity) ToBase() Quantity {
	return Quantity{Magnitude: q.Magnitude * q.Unit.Scale, Unit: q.Unit.Canonical()}
}

// ConvertTo converts the quantity into u.
func (q Quantity) ConvertTo(u Unit) (Quantity, error) {
	if !q.Unit.Compatible(u) {
		return Quantity{}, &UnitMismatchError{From: q.Unit.Symbol, To: u.Symbol}
	}
	return Quantity{Magnitude: q.Magnitude * q.Unit.Scale / u.Scale, Unit: u}, nil
}

// WithUnit re-tags the magnitude with another unit without converting.
func (q Quantity) WithUnit(u Unit) Quantity {
	return Quantity{Magnitude: q.Magnitude, Unit: u}
}

// Add returns q+o expressed in q's unit.
func (q Quantity) Add(o Quantity) (Quantity, error) {
	c, err := o.ConvertTo(q.Unit)
	if err != nil {
		return Quantity{}, err
	}
	return Quantity{Magnitude: q.Magnitude + c.Magnitude, Unit: q.Unit}, nil
}

// Sub returns q-o expressed in q's unit.
func (q Quantity) Sub(o Quantity) (Quantity, error) {
	return q.Add(o.Neg())
}

// Mul returns q*o in the product unit.
func (q Quantity) Mul(o Quantity) (Quantity, error) {
	u, err := q.Unit.Mul(o.Unit)
	if err != nil {
		return Quantity{}, err
	}
	return Quantity{Magnitude: q.Magnitude * o.Magnitude, Unit: u}, nil
}

// Div returns q/o in the quotient unit.
func (q Quantity) Div(o Quantity) (Quantity, error) {
	if o.Magnitude == 0 {
		return Quantity{}, &DivisionByZeroError{Dividend: q.String()}
	}
	u, err := q.Unit.Div(o.Unit)
	if err != nil {
		return Quantity{}, err
	}
	return Quantity{Magnitude: q.Magnitude / o.Magnitude, Unit: u}, nil
}

// Neg returns -q.
func (q Quantity) Neg() Quantity {
	return Quantity{Magnitude: -q.Magnitude, Unit: q.Unit}
}

// Abs returns |q|.
func (q Quantity) Abs() Quantity {
	return Quantity{Magnitude: math.Abs(q.Magnitude), Unit: q.Unit}
}

// Compare returns -1, 0 or +1 comparing q to o in base units. Values within
// the relative tolerance compare equal.
func (q Quantity) Compare(o Quantity) (int, error) {
	if !q.Unit.Compatible(o.Unit) {
		return 0, &UnitMismatchError{From: o.Unit.Symbol, To: q.Unit.Symbol}
	}
	a := q.Magnitude * q.Unit.Scale
	b := o.Magnitude * o.Unit.Scale
	if nearlyEqual(a, b) {
		return 0, nil
	}
	if a < b {
		return -1, nil
	}
	return 1, nil
}

// Equal reports whether q and o denote the same physical amount.
func (q Quantity) Equal(o Quantity) bool {
	c, err := q.Compare(o)
	return err == nil && c == 0
}

// String renders the magnitude followed by the unit symbol; counts render as
// a bare number.
func (q Quantity) String() string {
	mag := strconv.FormatFloat(q.Magnitude, 'g', -1, 64)
	if q.Unit.IsCount() || q.Unit.Symbol == "" {
		return mag
	}
	return mag + " " + q.Unit.Symbol
}

func nearlyEqual(a, b float64) bool {
	if a == b {
		return true
	}
	diff := math.Abs(a - b)
	scale := math.Max(math.Abs(a), math.Abs(b))
	return diff <= equalTolerance*scale
}
