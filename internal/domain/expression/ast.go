package expression

// Node is an immutable element of a parsed property expression.
type Node interface {
	// Pos is the byte offset of the node in the source string.
	Pos() int
	String() string
	// References lists every named reference in the subtree, in source order.
	References() []*ReferenceNode
}

// QuantityNode is a quantity literal such as "2000mm", "4m2" or "12".
type QuantityNode struct {
	Text      string
	Unit      string
	Position  int
	Magnitude float64
	Exponent  int
}

func (n *QuantityNode) Pos() int                     { return n.Position }
func (n *QuantityNode) String() string               { return n.Text }
func (n *QuantityNode) References() []*ReferenceNode { return nil }

// UncertainNode is "<quantity> +/- <quantity>".
type UncertainNode struct {
	Value    *QuantityNode
	Error    *QuantityNode
	Position int
}

func (n *UncertainNode) Pos() int                     { return n.Position }
func (n *UncertainNode) String() string               { return n.Value.String() + " +/- " + n.Error.String() }
func (n *UncertainNode) References() []*ReferenceNode { return nil }

// BinaryNode applies one of + - * / to two operands.
type BinaryNode struct {
	Left     Node
	Right    Node
	Position int
	Op       byte
}

func (n *BinaryNode) Pos() int { return n.Position }

func (n *BinaryNode) String() string {
	return operand(n.Left) + " " + string(n.Op) + " " + operand(n.Right)
}

func (n *BinaryNode) References() []*ReferenceNode {
	return append(n.Left.References(), n.Right.References()...)
}

// NegateNode is a unary minus.
type NegateNode struct {
	Operand  Node
	Position int
}

func (n *NegateNode) Pos() int                     { return n.Position }
func (n *NegateNode) String() string               { return "-" + operand(n.Operand) }
func (n *NegateNode) References() []*ReferenceNode { return n.Operand.References() }

// ReferenceNode names a property, optionally on another object.
//
//	mass              -> ("", "mass")
//	chassis.mass      -> ("chassis", "mass")
//	front frame mass  -> ("front frame", "mass")
type ReferenceNode struct {
	Object   string
	Property string
	Position int
}

func (n *ReferenceNode) Pos() int { return n.Position }

// Name is the reference as written in canonical dotted form.
func (n *ReferenceNode) Name() string {
	if n.Object == "" {
		return n.Property
	}
	return n.Object + "." + n.Property
}

func (n *ReferenceNode) String() string               { return n.Name() }
func (n *ReferenceNode) References() []*ReferenceNode { return []*ReferenceNode{n} }

func operand(n Node) string {
	if _, ok := n.(*BinaryNode); ok {
		return "(" + n.String() + ")"
	}
	return n.String()
}

// IsLiteral reports whether n contains no references and no operators other
// than a leading minus, i.e. it denotes a constant quantity.
func IsLiteral(n Node) bool {
	switch n := n.(type) {
	case *QuantityNode, *UncertainNode:
		return true
	case *NegateNode:
		return IsLiteral(n.Operand)
	default:
		return false
	}
}
