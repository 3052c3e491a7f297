package services

import (
	"github.com/expr-lang/expr/vm"
	"github.com/reglet-dev/verity/internal/domain/execution"
	"github.com/reglet-dev/verity/internal/domain/values"
)

// ResultSelector decides which results of a report are shown. Criteria
// combine with AND; an unconfigured selector keeps everything.
type ResultSelector struct {
	minSeverity   *values.Severity
	codes         map[string]bool
	ownerKinds    map[string]bool
	filterProgram *vm.Program
}

// NewResultSelector initializes an empty selector.
func NewResultSelector() *ResultSelector {
	return &ResultSelector{
		codes:      make(map[string]bool),
		ownerKinds: make(map[string]bool),
	}
}

// WithMinSeverity drops results below sev.
func (s *ResultSelector) WithMinSeverity(sev values.Severity) *ResultSelector {
	s.minSeverity = &sev
	return s
}

// WithCodes keeps only results carrying one of codes.
func (s *ResultSelector) WithCodes(codes []string) *ResultSelector {
	s.codes = toSet(codes)
	return s
}

// WithOwnerKinds keeps only results owned by one of kinds.
func (s *ResultSelector) WithOwnerKinds(kinds []string) *ResultSelector {
	s.ownerKinds = toSet(kinds)
	return s
}

// WithFilterExpression applies a compiled expr program (see ResultFilter.Compile).
func (s *ResultSelector) WithFilterExpression(program *vm.Program) *ResultSelector {
	s.filterProgram = program
	return s
}

// Keep evaluates r against every configured criterion.
func (s *ResultSelector) Keep(r execution.VerificationResult) (bool, string) {
	var specs []ResultSpecification
	if s.minSeverity != nil {
		specs = append(specs, NewMinSeveritySpecification(*s.minSeverity))
	}
	if len(s.codes) > 0 {
		specs = append(specs, NewCodesSpecification(s.codes))
	}
	if len(s.ownerKinds) > 0 {
		specs = append(specs, NewOwnerKindsSpecification(s.ownerKinds))
	}
	if s.filterProgram != nil {
		specs = append(specs, NewExpressionSpecification(s.filterProgram))
	}
	return NewAndSpecification(specs...).IsSatisfiedBy(r)
}

// Select returns a copy of report holding the kept results.
func (s *ResultSelector) Select(report *execution.Report) *execution.Report {
	return report.Filter(func(r execution.VerificationResult) bool {
		ok, _ := s.Keep(r)
		return ok
	})
}

func toSet(slice []string) map[string]bool {
	set := make(map[string]bool, len(slice))
	for _, item := range slice {
		set[item] = true
	}
	return set
}
