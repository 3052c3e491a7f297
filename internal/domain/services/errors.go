package services

import (
	"fmt"
	"strings"
)

// PropertyResolutionError wraps any failure met while resolving a property.
type PropertyResolutionError struct {
	Cause    error
	Design   string
	Property string
}

func (e *PropertyResolutionError) Error() string {
	return fmt.Sprintf("cannot resolve %s of %s: %v", e.Property, e.Design, e.Cause)
}

func (e *PropertyResolutionError) Unwrap() error {
	return e.Cause
}

// CyclicPropertyError reports a property that depends on itself. Path lists
// the chain from the first repeated entry back to itself.
type CyclicPropertyError struct {
	Path []string
}

func (e *CyclicPropertyError) Error() string {
	return "cyclic property definition: " + strings.Join(e.Path, " -> ")
}

// EmptyScopeError reports an aggregate with no usable candidates.
type EmptyScopeError struct {
	Subsystem string
	Scope     string
	Property  string
}

func (e *EmptyScopeError) Error() string {
	return fmt.Sprintf("no %s of %s define a usable %q", e.Scope, e.Subsystem, e.Property)
}

// UnknownAggregateOpError reports an aggregate operator other than max or sum.
type UnknownAggregateOpError struct {
	Op string
}

func (e *UnknownAggregateOpError) Error() string {
	return fmt.Sprintf("unknown aggregate operator %q", e.Op)
}

// UnknownScopeError reports an aggregate scope other than children or interfaces.
type UnknownScopeError struct {
	Scope string
}

func (e *UnknownScopeError) Error() string {
	return fmt.Sprintf("unknown aggregate scope %q", e.Scope)
}

// UndefinedPropertyError reports a design without the requested property.
type UndefinedPropertyError struct {
	Design   string
	Property string
}

func (e *UndefinedPropertyError) Error() string {
	return fmt.Sprintf("%s has no property %q", e.Design, e.Property)
}

// UnboundDesignError reports a design that implements no subsystem.
type UnboundDesignError struct {
	Design string
}

func (e *UnboundDesignError) Error() string {
	return fmt.Sprintf("%s is not linked to a subsystem", e.Design)
}

// NonNumericError reports a boolean value where a quantity was required.
type NonNumericError struct {
	Property string
	Value    string
}

func (e *NonNumericError) Error() string {
	return fmt.Sprintf("property %q is %s, not a quantity", e.Property, e.Value)
}
