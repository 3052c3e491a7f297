package entities

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/reglet-dev/verity/internal/domain/expression"
	"github.com/reglet-dev/verity/internal/domain/quantity"
	"github.com/reglet-dev/verity/internal/domain/values"
)

// PropertyKind tags the variants of PropertyValue.
type PropertyKind int

const (
	PropertyLiteral PropertyKind = iota
	PropertyBoolean
	PropertyAggregate
	PropertyFormula
	PropertyInvalid
)

func (k PropertyKind) String() string {
	switch k {
	case PropertyLiteral:
		return "literal"
	case PropertyBoolean:
		return "boolean"
	case PropertyAggregate:
		return "aggregate"
	case PropertyFormula:
		return "formula"
	default:
		return "invalid"
	}
}

// Aggregate keywords.
const (
	AggregateMax        = "max"
	AggregateSum        = "sum"
	ScopeChildren       = "children"
	ScopeInterfaces     = "interfaces"
	aggregateTokenCount = 2
)

// PropertyValue is a design property classified once, when it is set.
type PropertyValue interface {
	Kind() PropertyKind
	// Text is the property as written.
	Text() string
}

// LiteralProperty is a constant quantity, possibly uncertain.
type LiteralProperty struct {
	Raw         string
	Measurement quantity.Measurement
}

func (p LiteralProperty) Kind() PropertyKind { return PropertyLiteral }
func (p LiteralProperty) Text() string       { return p.Raw }

// BooleanProperty is true or false.
type BooleanProperty struct {
	Raw   string
	Value bool
}

func (p BooleanProperty) Kind() PropertyKind { return PropertyBoolean }
func (p BooleanProperty) Text() string       { return p.Raw }

// AggregateProperty is "<op> <scope>", e.g. "sum children". The tokens are
// validated when the property is resolved.
type AggregateProperty struct {
	Raw   string
	Op    string
	Scope string
}

func (p AggregateProperty) Kind() PropertyKind { return PropertyAggregate }
func (p AggregateProperty) Text() string       { return p.Raw }

// FormulaProperty is an expression with references and/or operators.
type FormulaProperty struct {
	Node expression.Node
	Raw  string
}

func (p FormulaProperty) Kind() PropertyKind { return PropertyFormula }
func (p FormulaProperty) Text() string       { return p.Raw }

// InvalidProperty keeps a property that could not be parsed so the error can
// be reported when something asks for it.
type InvalidProperty struct {
	Err error
	Raw string
}

func (p InvalidProperty) Kind() PropertyKind { return PropertyInvalid }
func (p InvalidProperty) Text() string       { return p.Raw }

// IsAggregateOp reports whether s is a known aggregate operation.
func IsAggregateOp(s string) bool {
	return s == AggregateMax || s == AggregateSum
}

// IsAggregateScope reports whether s is a known aggregate scope.
func IsAggregateScope(s string) bool {
	return s == ScopeChildren || s == ScopeInterfaces
}

// ClassifyProperty turns a raw property into its variant. Unsupported Go
// types are a definition error; malformed strings become InvalidProperty.
func ClassifyProperty(raw any, evaluator *expression.Evaluator) (PropertyValue, error) {
	switch v := raw.(type) {
	case bool:
		return BooleanProperty{Raw: strconv.FormatBool(v), Value: v}, nil
	case string:
		return classifyString(v, evaluator), nil
	case quantity.Measurement:
		return LiteralProperty{Raw: v.String(), Measurement: v}, nil
	case quantity.Quantity:
		return LiteralProperty{Raw: v.String(), Measurement: quantity.Exact(v)}, nil
	}

	v, err := values.Normalize(raw)
	if err != nil {
		return nil, definitionError(fmt.Sprintf("%v", raw), "unsupported property type %T", raw)
	}
	if b, ok := v.Bool(); ok {
		return BooleanProperty{Raw: v.String(), Value: b}, nil
	}
	m, _ := v.Measurement()
	return LiteralProperty{Raw: fmt.Sprintf("%v", raw), Measurement: m}, nil
}

func classifyString(s string, evaluator *expression.Evaluator) PropertyValue {
	if b, ok := values.ParseBool(s); ok {
		return BooleanProperty{Raw: s, Value: b}
	}

	if fields := strings.Fields(s); len(fields) == aggregateTokenCount {
		if IsAggregateOp(fields[0]) || IsAggregateScope(fields[1]) {
			return AggregateProperty{Raw: s, Op: fields[0], Scope: fields[1]}
		}
	}

	node, err := expression.Parse(s)
	if err != nil {
		return InvalidProperty{Raw: s, Err: err}
	}
	if !expression.IsLiteral(node) {
		return FormulaProperty{Raw: s, Node: node}
	}

	m, err := evaluator.Literal(node)
	if err != nil {
		return InvalidProperty{Raw: s, Err: err}
	}
	return LiteralProperty{Raw: s, Measurement: m}
}
