package entities

import "fmt"

// SystemDefinitionError indicates structural misuse while building a model:
// a second System, a duplicate name, an illegal re-allocation or a malformed
// parametric constraint. It is fatal to the build.
type SystemDefinitionError struct {
	Subject string
	Reason  string
}

func (e *SystemDefinitionError) Error() string {
	if e.Subject == "" {
		return fmt.Sprintf("system definition error: %s", e.Reason)
	}
	return fmt.Sprintf("system definition error: %s: %s", e.Subject, e.Reason)
}

func definitionError(subject, format string, args ...any) *SystemDefinitionError {
	return &SystemDefinitionError{Subject: subject, Reason: fmt.Sprintf(format, args...)}
}

// OperationError indicates a call made out of sequence, such as adding to a
// requirement set after it was allocated.
type OperationError struct {
	Operation string
	Reason    string
}

func (e *OperationError) Error() string {
	return fmt.Sprintf("invalid operation %s: %s", e.Operation, e.Reason)
}
