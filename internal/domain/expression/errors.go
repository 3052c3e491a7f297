package expression

import "fmt"

// SyntaxError reports malformed expression input at a byte offset.
type SyntaxError struct {
	Source string
	Msg    string
	Pos    int
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at offset %d in %q: %s", e.Pos, e.Source, e.Msg)
}

// UnresolvedReferenceError reports a name that the resolver could not bind.
type UnresolvedReferenceError struct {
	Name   string
	Reason string
}

func (e *UnresolvedReferenceError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("unresolved reference %q", e.Name)
	}
	return fmt.Sprintf("unresolved reference %q: %s", e.Name, e.Reason)
}
