package expression

import (
	"fmt"

	"github.com/reglet-dev/verity/internal/domain/quantity"
)

// Resolver binds a reference to a value. object is empty for bare property
// names.
type Resolver func(object, property string) (quantity.Measurement, error)

// Evaluator reduces expression trees to measurements using a unit registry.
type Evaluator struct {
	registry *quantity.Registry
}

// NewEvaluator creates an evaluator. A nil registry selects the default one.
func NewEvaluator(registry *quantity.Registry) *Evaluator {
	if registry == nil {
		registry = quantity.DefaultRegistry()
	}
	return &Evaluator{registry: registry}
}

// Evaluate parses and evaluates source against the default unit registry.
func Evaluate(source string, resolve Resolver) (quantity.Measurement, error) {
	node, err := Parse(source)
	if err != nil {
		return quantity.Measurement{}, err
	}
	return NewEvaluator(nil).Eval(node, resolve)
}

// Eval reduces node to a single measurement. References are handed to
// resolve; a nil resolver fails every reference.
func (e *Evaluator) Eval(node Node, resolve Resolver) (quantity.Measurement, error) {
	switch n := node.(type) {
	case *QuantityNode:
		q, err := e.quantity(n)
		if err != nil {
			return quantity.Measurement{}, err
		}
		return quantity.Exact(q), nil

	case *UncertainNode:
		value, err := e.quantity(n.Value)
		if err != nil {
			return quantity.Measurement{}, err
		}
		spread, err := e.quantity(n.Error)
		if err != nil {
			return quantity.Measurement{}, err
		}
		return quantity.PlusMinus(value, spread)

	case *NegateNode:
		m, err := e.Eval(n.Operand, resolve)
		if err != nil {
			return quantity.Measurement{}, err
		}
		return m.Neg(), nil

	case *BinaryNode:
		return e.binary(n, resolve)

	case *ReferenceNode:
		if resolve == nil {
			return quantity.Measurement{}, &UnresolvedReferenceError{Name: n.Name()}
		}
		return resolve(n.Object, n.Property)

	default:
		return quantity.Measurement{}, fmt.Errorf("unsupported expression node %T", node)
	}
}

// Literal evaluates a reference-free node.
func (e *Evaluator) Literal(node Node) (quantity.Measurement, error) {
	return e.Eval(node, nil)
}

func (e *Evaluator) binary(n *BinaryNode, resolve Resolver) (quantity.Measurement, error) {
	left, err := e.Eval(n.Left, resolve)
	if err != nil {
		return quantity.Measurement{}, err
	}
	right, err := e.Eval(n.Right, resolve)
	if err != nil {
		return quantity.Measurement{}, err
	}

	switch n.Op {
	case '+':
		return left.Add(right)
	case '-':
		return left.Sub(right)
	case '*':
		return left.Mul(right)
	case '/':
		return left.Div(right)
	default:
		return quantity.Measurement{}, fmt.Errorf("unsupported operator %q", n.Op)
	}
}

func (e *Evaluator) quantity(n *QuantityNode) (quantity.Quantity, error) {
	if n.Unit == "" {
		return quantity.Counts(n.Magnitude), nil
	}
	return e.registry.Parse(n.Magnitude, n.Unit, n.Exponent)
}
