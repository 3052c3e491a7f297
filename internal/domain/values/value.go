package values

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/reglet-dev/verity/internal/domain/expression"
	"github.com/reglet-dev/verity/internal/domain/quantity"
)

// Value is the outcome of resolving a property: either a quantity with
// optional uncertainty or a boolean.
type Value struct {
	measurement quantity.Measurement
	isBool      bool
	boolean     bool
}

// QuantityValue wraps a measurement.
func QuantityValue(m quantity.Measurement) Value {
	return Value{measurement: m}
}

// BoolValue wraps a boolean.
func BoolValue(b bool) Value {
	return Value{isBool: true, boolean: b}
}

// IsBool reports whether the value is a boolean.
func (v Value) IsBool() bool {
	return v.isBool
}

// Bool returns the boolean and whether the value holds one.
func (v Value) Bool() (bool, bool) {
	return v.boolean, v.isBool
}

// Measurement returns the quantity and whether the value holds one.
func (v Value) Measurement() (quantity.Measurement, bool) {
	return v.measurement, !v.isBool
}

// Canonical expresses a quantity in SI base units. Booleans are unchanged.
func (v Value) Canonical() Value {
	if v.isBool {
		return v
	}
	return QuantityValue(v.measurement.ToBase())
}

// Equals compares two values: booleans by identity, quantities by physical
// amount and uncertainty.
func (v Value) Equals(other Value) bool {
	if v.isBool || other.isBool {
		return v.isBool == other.isBool && v.boolean == other.boolean
	}
	return v.measurement.Equal(other.measurement)
}

func (v Value) String() string {
	if v.isBool {
		return strconv.FormatBool(v.boolean)
	}
	return v.measurement.String()
}

// Normalize converts a raw literal (bool, Go number, quantity string such as
// "2000mm" or "12mm +/- 1cm", "true"/"false") into a Value using the default
// unit registry.
func Normalize(raw any) (Value, error) {
	return NormalizeIn(nil, raw)
}

// NormalizeIn is Normalize with an explicit unit registry.
func NormalizeIn(registry *quantity.Registry, raw any) (Value, error) {
	switch v := raw.(type) {
	case Value:
		return v, nil
	case bool:
		return BoolValue(v), nil
	case quantity.Measurement:
		return QuantityValue(v), nil
	case quantity.Quantity:
		return QuantityValue(quantity.Exact(v)), nil
	case string:
		return parseLiteral(registry, v)
	}

	if f, ok := asFloat(raw); ok {
		return QuantityValue(quantity.Exact(quantity.Counts(f))), nil
	}
	return Value{}, fmt.Errorf("unsupported literal type %T", raw)
}

// ParseBool recognizes the boolean literals "true" and "false" in any case.
func ParseBool(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true":
		return true, true
	case "false":
		return false, true
	default:
		return false, false
	}
}

func parseLiteral(registry *quantity.Registry, s string) (Value, error) {
	if b, ok := ParseBool(s); ok {
		return BoolValue(b), nil
	}

	node, err := expression.Parse(s)
	if err != nil {
		return Value{}, err
	}
	if !expression.IsLiteral(node) {
		return Value{}, fmt.Errorf("%q is not a literal quantity", s)
	}
	m, err := expression.NewEvaluator(registry).Literal(node)
	if err != nil {
		return Value{}, err
	}
	return QuantityValue(m), nil
}

func asFloat(raw any) (float64, bool) {
	switch n := raw.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

// Align prepares two values for comparison: both are expressed in canonical
// units and, when exactly one side is a plain count, it adopts the other
// side's unit so that a bare 2.0 compares against "2000mm" as 2 m.
func Align(a, b Value) (Value, Value) {
	a, b = a.Canonical(), b.Canonical()
	if a.isBool || b.isBool {
		return a, b
	}
	am, bm := a.measurement, b.measurement
	switch {
	case am.Value.Unit.IsCount() && !bm.Value.IsDimensionless():
		am = adopt(am, bm.Value.Unit)
	case bm.Value.Unit.IsCount() && !am.Value.IsDimensionless():
		bm = adopt(bm, am.Value.Unit)
	}
	return QuantityValue(am), QuantityValue(bm)
}

func adopt(m quantity.Measurement, u quantity.Unit) quantity.Measurement {
	return quantity.Measurement{Value: m.Value.WithUnit(u), Error: m.Error.WithUnit(u)}
}
