package quantity

import "fmt"

// UnitMismatchError indicates an operation between dimensionally incompatible units.
type UnitMismatchError struct {
	From string
	To   string
}

func (e *UnitMismatchError) Error() string {
	return fmt.Sprintf("unit mismatch: cannot convert %s to %s", e.From, e.To)
}

// DivisionByZeroError indicates a division by a zero-magnitude quantity.
type DivisionByZeroError struct {
	Dividend string
}

func (e *DivisionByZeroError) Error() string {
	if e.Dividend == "" {
		return "division by zero"
	}
	return fmt.Sprintf("division by zero: %s / 0", e.Dividend)
}

// UndefinedUnitError indicates a unit symbol the registry does not know.
type UndefinedUnitError struct {
	Symbol string
}

func (e *UndefinedUnitError) Error() string {
	return fmt.Sprintf("undefined unit %q", e.Symbol)
}

// DimensionOverflowError indicates a unit exponent too large to represent.
type DimensionOverflowError struct {
	Dimension Dimension
	Exponent  int
}

func (e *DimensionOverflowError) Error() string {
	return fmt.Sprintf("unit exponent %d of %s is out of range (limit %d)", e.Exponent, e.Dimension, MaxExponent)
}
