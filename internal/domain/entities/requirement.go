package entities

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/reglet-dev/verity/internal/domain/expression"
	"github.com/reglet-dev/verity/internal/domain/values"
)

// ParameterSeparator splits a constraint key into property and operator, as
// in "mass__lte".
const ParameterSeparator = "__"

// RequirementKind distinguishes plain requirements from the external,
// constraint and derived flavours. The kind is descriptive only.
type RequirementKind int

const (
	RequirementPlain RequirementKind = iota
	RequirementExternal
	RequirementConstraint
	RequirementDerived
)

// ParseRequirementKind maps a manifest kind name to its value. The empty
// string is a plain requirement.
func ParseRequirementKind(s string) (RequirementKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "requirement":
		return RequirementPlain, nil
	case "external":
		return RequirementExternal, nil
	case "constraint":
		return RequirementConstraint, nil
	case "derived":
		return RequirementDerived, nil
	default:
		return 0, fmt.Errorf("unknown requirement kind %q", s)
	}
}

func (k RequirementKind) String() string {
	switch k {
	case RequirementExternal:
		return "external"
	case RequirementConstraint:
		return "constraint"
	case RequirementDerived:
		return "derived"
	default:
		return "requirement"
	}
}

// Parameter is the parametric test of a requirement: property <op> threshold.
type Parameter struct {
	Threshold any
	Property  string
	Operator  values.Operator
}

func (p Parameter) String() string {
	return fmt.Sprintf("%s %s %v", p.Property, p.Operator, p.Threshold)
}

// AllocationTarget is something a requirement can be allocated to: a
// Subsystem or an Interface.
type AllocationTarget interface {
	Name() string
	String() string
	Design() *Design
	Requirements() []*Requirement
	attach(r *Requirement)
	detach(r *Requirement)
}

// Requirement is a textual obligation, optionally backed by one parametric
// constraint, and refinable into derived requirements.
type Requirement struct {
	allocatedTo AllocationTarget
	parent      *Requirement
	parameter   *Parameter
	id          string
	text        string
	children    []*Requirement
	kind        RequirementKind
}

// RequirementOption configures a requirement at construction.
type RequirementOption func(*Requirement)

// WithKind sets the requirement kind.
func WithKind(kind RequirementKind) RequirementOption {
	return func(r *Requirement) { r.kind = kind }
}

// WithID attaches a stable identifier, used in reports.
func WithID(id string) RequirementOption {
	return func(r *Requirement) { r.id = id }
}

// NewRequirement creates a requirement. params holds at most one
// "<property>__<operator>" key whose value is the literal threshold.
func NewRequirement(text string, params map[string]any, opts ...RequirementOption) (*Requirement, error) {
	r := &Requirement{text: text}
	for _, opt := range opts {
		opt(r)
	}

	p, err := parseParameter(params)
	if err != nil {
		return nil, definitionError(r.label(), "%s", err)
	}
	r.parameter = p
	return r, nil
}

// NewDerivedRequirement creates a requirement refining parent and registers
// it as one of parent's children.
func NewDerivedRequirement(parent *Requirement, text string, params map[string]any, opts ...RequirementOption) (*Requirement, error) {
	if parent == nil {
		return nil, definitionError(text, "a derived requirement needs a parent")
	}
	r, err := NewRequirement(text, params, append([]RequirementOption{WithKind(RequirementDerived)}, opts...)...)
	if err != nil {
		return nil, err
	}
	if err := parent.ParentOf(r); err != nil {
		return nil, err
	}
	return r, nil
}

func parseParameter(params map[string]any) (*Parameter, error) {
	switch len(params) {
	case 0:
		return nil, nil
	case 1:
	default:
		return nil, fmt.Errorf("can't have a single requirement with multiple parametric constraints (%s), try building derived requirements",
			strings.Join(slices.Sorted(maps.Keys(params)), ", "))
	}

	var key string
	var threshold any
	for k, v := range params {
		key, threshold = k, v
	}

	i := strings.LastIndex(key, ParameterSeparator)
	if i <= 0 {
		return nil, fmt.Errorf("constraint %q must have the form <property>%s<operator>", key, ParameterSeparator)
	}
	op, err := values.ParseOperator(key[i+len(ParameterSeparator):])
	if err != nil {
		return nil, fmt.Errorf("constraint %q: %w", key, err)
	}
	if err := checkThreshold(threshold); err != nil {
		return nil, fmt.Errorf("constraint %q: %w", key, err)
	}

	return &Parameter{Property: key[:i], Operator: op, Threshold: threshold}, nil
}

// checkThreshold accepts booleans, numbers and strings holding a boolean or
// a literal quantity. Units are looked up at verification time.
func checkThreshold(threshold any) error {
	s, ok := threshold.(string)
	if !ok {
		if _, err := values.Normalize(threshold); err != nil {
			return fmt.Errorf("threshold: %w", err)
		}
		return nil
	}
	if _, ok := values.ParseBool(s); ok {
		return nil
	}
	node, err := expression.Parse(s)
	if err != nil {
		return fmt.Errorf("threshold: %w", err)
	}
	if !expression.IsLiteral(node) {
		return fmt.Errorf("threshold %q must be a literal", s)
	}
	return nil
}

// ID returns the optional identifier.
func (r *Requirement) ID() string { return r.id }

// Text returns the requirement clause.
func (r *Requirement) Text() string { return r.text }

// Kind returns the requirement kind.
func (r *Requirement) Kind() RequirementKind { return r.kind }

// Parameter returns the parametric constraint, nil if there is none.
func (r *Requirement) Parameter() *Parameter { return r.parameter }

// Parent returns the requirement r was derived from.
func (r *Requirement) Parent() *Requirement { return r.parent }

// Children returns the requirements derived from r.
func (r *Requirement) Children() []*Requirement {
	return append([]*Requirement(nil), r.children...)
}

// AllocatedTo returns the current owner, nil when unallocated.
func (r *Requirement) AllocatedTo() AllocationTarget { return r.allocatedTo }

// ParentOf registers child as derived from r.
func (r *Requirement) ParentOf(child *Requirement) error {
	if child == nil || child == r {
		return definitionError(r.label(), "invalid derived requirement")
	}
	if child.parent != nil {
		return definitionError(child.label(), "already derived from %s", child.parent.label())
	}
	for p := r; p != nil; p = p.parent {
		if p == child {
			return definitionError(child.label(), "derivation would form a cycle")
		}
	}
	child.parent = r
	r.children = append(r.children, child)
	return nil
}

// AllocateTo allocates r and every derived requirement to target. A
// requirement that is already allocated may only move to a child subsystem
// of its owner or to an interface connecting its owner. The whole derivation
// tree is checked before anything moves.
func (r *Requirement) AllocateTo(target AllocationTarget) error {
	if err := r.checkAllocation(target); err != nil {
		return err
	}
	r.applyAllocation(target)
	return nil
}

func (r *Requirement) checkAllocation(target AllocationTarget) error {
	if isNilTarget(target) {
		return definitionError(r.label(), "tried to allocate a requirement to nothing")
	}
	if err := refines(r.allocatedTo, target); err != nil {
		return definitionError(r.label(), "%s", err)
	}
	for _, c := range r.children {
		if err := c.checkAllocation(target); err != nil {
			return err
		}
	}
	return nil
}

func (r *Requirement) applyAllocation(target AllocationTarget) {
	if r.allocatedTo != target {
		if r.allocatedTo != nil {
			r.allocatedTo.detach(r)
		}
		target.attach(r)
		r.allocatedTo = target
	}
	for _, c := range r.children {
		c.applyAllocation(target)
	}
}

// refines checks the re-allocation rule from prev to next.
func refines(prev, next AllocationTarget) error {
	if prev == nil || prev == next {
		return nil
	}
	switch t := next.(type) {
	case *Subsystem:
		if owner, ok := prev.(*Subsystem); ok && t.parent == owner {
			return nil
		}
		return fmt.Errorf("tried to re-allocate from %s to %s, which is not a child of the existing owner", prev, next)
	case *Interface:
		if owner, ok := prev.(*Subsystem); ok && t.Connects(owner) {
			return nil
		}
		return fmt.Errorf("tried to re-allocate from %s to %s, which is not connected to the existing owner", prev, next)
	default:
		return fmt.Errorf("tried to allocate to %s, which is not a System, Subsystem or Interface", next)
	}
}

func isNilTarget(t AllocationTarget) bool {
	switch v := t.(type) {
	case nil:
		return true
	case *Subsystem:
		return v == nil
	case *Interface:
		return v == nil
	default:
		return false
	}
}

// Walk visits r and its derived requirements depth-first, parent before
// children.
func (r *Requirement) Walk(fn func(*Requirement)) {
	fn(r)
	for _, c := range r.children {
		c.Walk(fn)
	}
}

func (r *Requirement) label() string {
	if r.id != "" {
		return fmt.Sprintf("requirement %q", r.id)
	}
	return fmt.Sprintf("requirement %q", r.text)
}

// String renders `Requirement "The <owner> <text>"`.
func (r *Requirement) String() string {
	owner := "unallocated"
	if r.allocatedTo != nil {
		owner = r.allocatedTo.String()
	}
	return fmt.Sprintf("Requirement \"The %s %s\"", owner, r.text)
}

func sortedKeys(m map[string]any) []string {
	return slices.Sorted(maps.Keys(m))
}
