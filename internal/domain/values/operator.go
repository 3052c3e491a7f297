package values

import (
	"fmt"
	"strings"
)

// Operator is a requirement comparison operator.
type Operator string

const (
	OpEq  Operator = "eq"
	OpLt  Operator = "lt"
	OpLte Operator = "lte"
	OpGt  Operator = "gt"
	OpGte Operator = "gte"
)

// Operators lists the supported operators in display order.
var Operators = []Operator{OpEq, OpLt, OpLte, OpGt, OpGte}

// ParseOperator validates an operator token.
func ParseOperator(s string) (Operator, error) {
	op := Operator(strings.ToLower(strings.TrimSpace(s)))
	switch op {
	case OpEq, OpLt, OpLte, OpGt, OpGte:
		return op, nil
	default:
		return "", fmt.Errorf("unknown operator %q (want one of eq, lt, lte, gt, gte)", s)
	}
}

func (o Operator) String() string {
	return string(o)
}

// Apply evaluates "actual <op> threshold". Both sides are aligned first
// (see Align). Booleans support eq only.
func (o Operator) Apply(actual, threshold Value) (bool, error) {
	a, t := Align(actual, threshold)

	if a.isBool != t.isBool {
		return false, fmt.Errorf("cannot compare %s with %s", kindName(a), kindName(t))
	}
	if a.isBool {
		if o != OpEq {
			return false, fmt.Errorf("operator %s is not defined for booleans", o)
		}
		return a.boolean == t.boolean, nil
	}

	c, err := a.measurement.Compare(t.measurement)
	if err != nil {
		return false, err
	}

	switch o {
	case OpEq:
		return c == 0, nil
	case OpLt:
		return c < 0, nil
	case OpLte:
		return c <= 0, nil
	case OpGt:
		return c > 0, nil
	case OpGte:
		return c >= 0, nil
	default:
		return false, fmt.Errorf("unknown operator %q", string(o))
	}
}

func kindName(v Value) string {
	if v.isBool {
		return "boolean"
	}
	return "quantity"
}
