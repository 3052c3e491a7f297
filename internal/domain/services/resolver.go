// Package services contains the domain services that work across the model
// graph: property resolution, requirement verification, result filtering and
// report comparison. Services hold no model state and can be reused across runs.
package services

import (
	"fmt"
	"log/slog"

	"github.com/reglet-dev/verity/internal/domain/entities"
	"github.com/reglet-dev/verity/internal/domain/expression"
	"github.com/reglet-dev/verity/internal/domain/quantity"
	"github.com/reglet-dev/verity/internal/domain/values"
)

// ReferenceScope controls which subsystems a formula may name.
type ReferenceScope string

const (
	// ScopeNarrow allows the owner itself, its children and its interface peers.
	ScopeNarrow ReferenceScope = "narrow"
	// ScopeExtended also allows the owner's parent and siblings.
	ScopeExtended ReferenceScope = "extended"
)

// ParseReferenceScope converts a config string. Empty means narrow.
func ParseReferenceScope(s string) (ReferenceScope, error) {
	switch ReferenceScope(s) {
	case "", ScopeNarrow:
		return ScopeNarrow, nil
	case ScopeExtended:
		return ScopeExtended, nil
	default:
		return "", fmt.Errorf("invalid reference scope %q (must be narrow or extended)", s)
	}
}

// ResolverOptions configures a PropertyResolver.
type ResolverOptions struct {
	Logger         *slog.Logger
	ReferenceScope ReferenceScope
}

// Exclusion records an aggregate candidate that was left out because its own
// value could not be used.
type Exclusion struct {
	Err       error
	Subsystem *entities.Subsystem
	Property  string
}

// Resolution is a resolved value plus the candidates dropped on the way.
type Resolution struct {
	Value      values.Value
	Exclusions []Exclusion
}

// PropertyResolver computes design property values on demand. It caches
// nothing, so repeated calls on an unchanged model return equal values.
type PropertyResolver struct {
	logger     *slog.Logger
	scope      ReferenceScope
	strategies []strategy
}

// strategy resolves one kind of property. applied is false when the property
// is not of the kind the strategy handles.
type strategy func(st *resolveState, d *entities.Design, name string, pv entities.PropertyValue) (v values.Value, applied bool, err error)

type propertyKey struct {
	design   *entities.Design
	property string
}

// resolveState is threaded through one top-level resolution.
type resolveState struct {
	visiting   map[propertyKey]bool
	stack      []propertyKey
	exclusions []Exclusion
}

// NewPropertyResolver creates a resolver.
func NewPropertyResolver(opts ResolverOptions) *PropertyResolver {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	scope := opts.ReferenceScope
	if scope == "" {
		scope = ScopeNarrow
	}
	r := &PropertyResolver{logger: logger, scope: scope}
	r.strategies = []strategy{r.literal, r.aggregate, r.formula}
	return r
}

// Scope returns the configured reference scope.
func (r *PropertyResolver) Scope() ReferenceScope {
	return r.scope
}

// Resolve returns the value of property on design.
func (r *PropertyResolver) Resolve(design *entities.Design, property string) (values.Value, error) {
	res, err := r.ResolveDetailed(design, property)
	return res.Value, err
}

// ResolveDetailed resolves property and also reports every aggregate
// candidate excluded along the way.
func (r *PropertyResolver) ResolveDetailed(design *entities.Design, property string) (Resolution, error) {
	st := &resolveState{visiting: make(map[propertyKey]bool)}
	v, err := r.resolve(st, design, property)
	return Resolution{Value: v, Exclusions: st.exclusions}, err
}

func (r *PropertyResolver) resolve(st *resolveState, d *entities.Design, property string) (values.Value, error) {
	if d == nil {
		return values.Value{}, &PropertyResolutionError{Design: "<no design>", Property: property,
			Cause: fmt.Errorf("no design to resolve against")}
	}
	fail := func(err error) (values.Value, error) {
		return values.Value{}, &PropertyResolutionError{Design: d.String(), Property: property, Cause: err}
	}

	if d.Subsystem() == nil {
		return fail(&UnboundDesignError{Design: d.String()})
	}
	pv, ok := d.Property(property)
	if !ok {
		return fail(&UndefinedPropertyError{Design: d.String(), Property: property})
	}

	key := propertyKey{design: d, property: property}
	if st.visiting[key] {
		return fail(&CyclicPropertyError{Path: st.cyclePath(key)})
	}
	st.visiting[key] = true
	st.stack = append(st.stack, key)
	defer func() {
		delete(st.visiting, key)
		st.stack = st.stack[:len(st.stack)-1]
	}()

	r.logger.Debug("resolving property",
		"subsystem", d.Subsystem().Name(), "property", property, "kind", pv.Kind().String(), "text", pv.Text())

	for _, s := range r.strategies {
		v, applied, err := s(st, d, property, pv)
		if err != nil {
			return fail(err)
		}
		if applied {
			r.logger.Debug("resolved property", "subsystem", d.Subsystem().Name(), "property", property, "value", v.String())
			return v, nil
		}
	}
	return fail(fmt.Errorf("no resolution strategy for %s property", pv.Kind()))
}

func (st *resolveState) cyclePath(repeat propertyKey) []string {
	start := 0
	for i, k := range st.stack {
		if k == repeat {
			start = i
			break
		}
	}
	path := make([]string, 0, len(st.stack)-start+1)
	for _, k := range st.stack[start:] {
		path = append(path, k.label())
	}
	return append(path, repeat.label())
}

func (k propertyKey) label() string {
	if s := k.design.Subsystem(); s != nil {
		return s.Name() + "." + k.property
	}
	return k.design.Name() + "." + k.property
}

func (r *PropertyResolver) literal(_ *resolveState, _ *entities.Design, _ string, pv entities.PropertyValue) (values.Value, bool, error) {
	switch p := pv.(type) {
	case entities.LiteralProperty:
		return values.QuantityValue(p.Measurement), true, nil
	case entities.BooleanProperty:
		return values.BoolValue(p.Value), true, nil
	}
	return values.Value{}, false, nil
}

func (r *PropertyResolver) aggregate(st *resolveState, d *entities.Design, property string, pv entities.PropertyValue) (values.Value, bool, error) {
	agg, ok := pv.(entities.AggregateProperty)
	if !ok {
		return values.Value{}, false, nil
	}
	if !entities.IsAggregateOp(agg.Op) {
		return values.Value{}, true, &UnknownAggregateOpError{Op: agg.Op}
	}

	owner := d.Subsystem()
	var scope []*entities.Subsystem
	switch agg.Scope {
	case entities.ScopeChildren:
		scope = owner.Children()
	case entities.ScopeInterfaces:
		scope = owner.Peers()
	default:
		return values.Value{}, true, &UnknownScopeError{Scope: agg.Scope}
	}

	var survivors []quantity.Measurement
	for _, candidate := range scope {
		cd := candidate.Design()
		if cd == nil || !cd.HasProperty(property) {
			continue
		}
		v, err := r.resolve(st, cd, property)
		if err == nil {
			if m, isQuantity := v.Measurement(); !isQuantity {
				err = &NonNumericError{Property: property, Value: v.String()}
			} else if len(survivors) > 0 && !m.Value.Unit.Compatible(survivors[0].Value.Unit) {
				err = &quantity.UnitMismatchError{From: m.Value.Unit.Symbol, To: survivors[0].Value.Unit.Symbol}
			} else {
				survivors = append(survivors, m)
				continue
			}
		}
		r.logger.Debug("excluding aggregate candidate", "subsystem", candidate.Name(), "property", property, "error", err)
		st.exclusions = append(st.exclusions, Exclusion{Subsystem: candidate, Property: property, Err: err})
	}

	if len(survivors) == 0 {
		return values.Value{}, true, &EmptyScopeError{Subsystem: owner.String(), Scope: agg.Scope, Property: property}
	}

	acc := survivors[0]
	for _, m := range survivors[1:] {
		switch agg.Op {
		case entities.AggregateSum:
			sum, err := acc.Add(m)
			if err != nil {
				return values.Value{}, true, err
			}
			acc = sum
		case entities.AggregateMax:
			cmp, err := m.Compare(acc)
			if err != nil {
				return values.Value{}, true, err
			}
			if cmp > 0 {
				acc = m
			}
		}
	}
	return values.QuantityValue(acc), true, nil
}

func (r *PropertyResolver) formula(st *resolveState, d *entities.Design, property string, pv entities.PropertyValue) (values.Value, bool, error) {
	switch p := pv.(type) {
	case entities.InvalidProperty:
		return values.Value{}, true, p.Err
	case entities.FormulaProperty:
		resolve := func(object, prop string) (quantity.Measurement, error) {
			target := d
			if object != "" {
				s, err := r.lookupInScope(d.Subsystem(), object, prop)
				if err != nil {
					return quantity.Measurement{}, err
				}
				target = s.Design()
			}
			if !target.HasProperty(prop) {
				return quantity.Measurement{}, &expression.UnresolvedReferenceError{
					Name: refName(object, prop), Reason: fmt.Sprintf("%s has no property %q", target, prop)}
			}
			v, err := r.resolve(st, target, prop)
			if err != nil {
				return quantity.Measurement{}, err
			}
			m, ok := v.Measurement()
			if !ok {
				return quantity.Measurement{}, &NonNumericError{Property: refName(object, prop), Value: v.String()}
			}
			return m, nil
		}
		m, err := d.Project().Evaluator().Eval(p.Node, resolve)
		if err != nil {
			return values.Value{}, true, err
		}
		return values.QuantityValue(m), true, nil
	}
	return values.Value{}, false, nil
}

// lookupInScope finds the subsystem a formula names and checks that owner may
// see it.
func (r *PropertyResolver) lookupInScope(owner *entities.Subsystem, object, prop string) (*entities.Subsystem, error) {
	name := refName(object, prop)
	s, ok := owner.Project().Lookup(object)
	if !ok {
		return nil, &expression.UnresolvedReferenceError{Name: name, Reason: fmt.Sprintf("no subsystem named %q", object)}
	}
	if !r.visible(owner, s) {
		return nil, &expression.UnresolvedReferenceError{Name: name,
			Reason: fmt.Sprintf("%s is outside the reference scope of %s", s, owner)}
	}
	if s.Design() == nil {
		return nil, &expression.UnresolvedReferenceError{Name: name, Reason: fmt.Sprintf("%s has no design", s)}
	}
	return s, nil
}

func (r *PropertyResolver) visible(owner, target *entities.Subsystem) bool {
	if owner == target {
		return true
	}
	candidates := append(owner.Children(), owner.Peers()...)
	if r.scope == ScopeExtended {
		if p := owner.Parent(); p != nil {
			candidates = append(candidates, p)
		}
		candidates = append(candidates, owner.Siblings()...)
	}
	for _, c := range candidates {
		if c == target {
			return true
		}
	}
	return false
}

func refName(object, prop string) string {
	if object == "" {
		return prop
	}
	return object + "." + prop
}
