package services

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/reglet-dev/verity/internal/domain/execution"
	"github.com/reglet-dev/verity/internal/domain/values"
)

// ResultSpecification defines a condition a verification result must meet.
type ResultSpecification interface {
	// IsSatisfiedBy returns false with a reason when r is filtered out.
	IsSatisfiedBy(r execution.VerificationResult) (bool, string)
}

// AndSpecification combines specifications with logical AND.
type AndSpecification struct {
	specs []ResultSpecification
}

// NewAndSpecification creates a new AndSpecification.
func NewAndSpecification(specs ...ResultSpecification) *AndSpecification {
	return &AndSpecification{specs: specs}
}

// IsSatisfiedBy checks if all specifications are satisfied.
func (s *AndSpecification) IsSatisfiedBy(r execution.VerificationResult) (bool, string) {
	for _, spec := range s.specs {
		if ok, reason := spec.IsSatisfiedBy(r); !ok {
			return false, reason
		}
	}
	return true, ""
}

// MinSeveritySpecification keeps results at or above a severity.
type MinSeveritySpecification struct {
	min values.Severity
}

// NewMinSeveritySpecification creates a new MinSeveritySpecification.
func NewMinSeveritySpecification(min values.Severity) *MinSeveritySpecification {
	return &MinSeveritySpecification{min: min}
}

// IsSatisfiedBy checks the result severity against the minimum.
func (s *MinSeveritySpecification) IsSatisfiedBy(r execution.VerificationResult) (bool, string) {
	if r.Severity.IsHigherOrEqual(s.min) {
		return true, ""
	}
	return false, fmt.Sprintf("below --min-severity %s", s.min.Short())
}

// CodesSpecification keeps results with one of the listed codes.
type CodesSpecification struct {
	codes map[string]bool
}

// NewCodesSpecification creates a new CodesSpecification.
func NewCodesSpecification(codes map[string]bool) *CodesSpecification {
	return &CodesSpecification{codes: codes}
}

// IsSatisfiedBy checks if the result code is listed.
func (s *CodesSpecification) IsSatisfiedBy(r execution.VerificationResult) (bool, string) {
	if len(s.codes) == 0 || s.codes[r.Code] {
		return true, ""
	}
	return false, "excluded by --code filter"
}

// OwnerKindsSpecification keeps results owned by one of the listed kinds.
type OwnerKindsSpecification struct {
	kinds map[string]bool
}

// NewOwnerKindsSpecification creates a new OwnerKindsSpecification.
func NewOwnerKindsSpecification(kinds map[string]bool) *OwnerKindsSpecification {
	return &OwnerKindsSpecification{kinds: kinds}
}

// IsSatisfiedBy checks if the result owner kind is listed.
func (s *OwnerKindsSpecification) IsSatisfiedBy(r execution.VerificationResult) (bool, string) {
	if len(s.kinds) == 0 || s.kinds[r.OwnerKind] {
		return true, ""
	}
	return false, "excluded by --owner-kind filter"
}

// ExpressionSpecification filters results with a compiled expr program.
type ExpressionSpecification struct {
	program *vm.Program
}

// NewExpressionSpecification creates a new ExpressionSpecification.
func NewExpressionSpecification(program *vm.Program) *ExpressionSpecification {
	return &ExpressionSpecification{program: program}
}

// IsSatisfiedBy runs the program against the result.
func (s *ExpressionSpecification) IsSatisfiedBy(r execution.VerificationResult) (bool, string) {
	out, err := expr.Run(s.program, NewResultEnv(r))
	if err != nil {
		return false, fmt.Sprintf("filter error: %v", err)
	}
	if matched, ok := out.(bool); ok && matched {
		return true, ""
	}
	return false, "excluded by --filter expression"
}
