package services

import (
	"fmt"
	"log/slog"

	"github.com/reglet-dev/verity/internal/domain/entities"
	"github.com/reglet-dev/verity/internal/domain/execution"
	"github.com/reglet-dev/verity/internal/domain/values"
)

// Verifier walks a subsystem tree and reports on every requirement it finds.
type Verifier struct {
	resolver *PropertyResolver
	logger   *slog.Logger
}

// NewVerifier creates a verifier. A nil resolver gets a narrow-scope default.
func NewVerifier(resolver *PropertyResolver, logger *slog.Logger) *Verifier {
	if logger == nil {
		logger = slog.Default()
	}
	if resolver == nil {
		resolver = NewPropertyResolver(ResolverOptions{Logger: logger})
	}
	return &Verifier{resolver: resolver, logger: logger}
}

// Verify checks root, its descendants, the requirements allocated to them and
// to the interfaces they take part in, then any extra requirements. Every
// requirement is verified at most once. Verify never fails: resolution
// problems are reported as results.
func (v *Verifier) Verify(root *entities.Subsystem, extra ...*entities.Requirement) []execution.VerificationResult {
	run := &verification{
		Verifier:       v,
		seen:           make(map[*entities.Requirement]bool),
		seenInterfaces: make(map[*entities.Interface]bool),
	}
	if root != nil {
		run.subsystem(root)
	}
	for _, i := range run.interfaces {
		for _, r := range i.Requirements() {
			run.requirement(r)
		}
	}
	for _, r := range extra {
		run.requirement(r)
	}

	v.logger.Debug("verification walk complete", "results", len(run.results), "requirements", len(run.seen))
	return run.results
}

// verification holds the state of one Verify call.
type verification struct {
	*Verifier
	seen           map[*entities.Requirement]bool
	seenInterfaces map[*entities.Interface]bool
	interfaces     []*entities.Interface
	results        []execution.VerificationResult
}

func (run *verification) subsystem(s *entities.Subsystem) {
	owner := subsystemOwner(s)

	if s.Kind() == entities.KindSystem && len(s.Children()) == 0 {
		run.emit(owner, execution.CodeNoChildren, values.SevWarn, "System has no children")
	}
	reqs := s.Requirements()
	if len(reqs) == 0 {
		run.emit(owner, execution.CodeNoRequirements, values.SevWarn, "System has not been allocated any requirements")
	}
	for _, r := range reqs {
		run.requirement(r)
	}
	for _, i := range s.Interfaces() {
		if !run.seenInterfaces[i] {
			run.seenInterfaces[i] = true
			run.interfaces = append(run.interfaces, i)
		}
	}
	for _, c := range s.Children() {
		run.subsystem(c)
	}
}

func (run *verification) requirement(r *entities.Requirement) {
	if r == nil || run.seen[r] {
		return
	}
	run.seen[r] = true

	owner := requirementOwner(r)
	target := r.AllocatedTo()
	p := r.Parameter()

	if target == nil {
		run.emit(owner, execution.CodeUnallocated, values.SevInfo, "Requirement isn't allocated to anything")
	}
	if p == nil && len(r.Children()) == 0 {
		run.emit(owner, execution.CodeNotVerifiable, values.SevWarn,
			"Requirement isn't itself verifiable and has no requirements derived from it")
	}
	if p != nil {
		run.parametric(owner, r, target, p)
	}

	for _, c := range r.Children() {
		run.requirement(c)
	}
}

func (run *verification) parametric(owner execution.VerificationResult, r *entities.Requirement, target entities.AllocationTarget, p *entities.Parameter) {
	owner.Property = p.Property

	if target == nil {
		run.emit(owner, execution.CodeUnbound, values.SevWarn,
			"Requirement has a parametric test but isn't bound to a subsystem to test against")
		return
	}
	design := target.Design()
	if design == nil {
		run.emit(owner, execution.CodeNoDesign, values.SevWarn,
			"Parametric design can't be verified because there's no implementing design attached")
		return
	}

	res, err := run.resolver.ResolveDetailed(design, p.Property)
	for _, ex := range res.Exclusions {
		run.emit(owner, execution.CodeCandidateExcluded, values.SevWarn,
			fmt.Sprintf("Excluded %s from %s: %v", ex.Subsystem, ex.Property, ex.Err))
	}
	if err != nil {
		run.emit(owner, execution.CodeResolutionFailed, values.SevWarn,
			fmt.Sprintf("Can't resolve %s: %v", p.Property, err))
		return
	}

	threshold, err := values.NormalizeIn(design.Project().Registry(), p.Threshold)
	if err != nil {
		run.emit(owner, execution.CodeResolutionFailed, values.SevWarn,
			fmt.Sprintf("Can't interpret threshold %v: %v", p.Threshold, err))
		return
	}

	actual, limit := values.Align(res.Value, threshold)
	owner.Actual, owner.Threshold = actual.String(), limit.String()

	ok, err := p.Operator.Apply(actual, limit)
	if err != nil {
		run.emit(owner, execution.CodeResolutionFailed, values.SevWarn,
			fmt.Sprintf("Can't compare %s %s %s: %v", actual, p.Operator, limit, err))
		return
	}

	run.logger.Debug("requirement checked", "requirement", r.ID(), "property", p.Property,
		"actual", owner.Actual, "operator", p.Operator.String(), "threshold", owner.Threshold, "passed", ok)

	if ok {
		run.emit(owner, execution.CodePassed, values.SevInfo,
			fmt.Sprintf("Requirement passed: %s %s %s", actual, p.Operator, limit))
		return
	}
	run.emit(owner, execution.CodeFailed, values.SevError,
		fmt.Sprintf("Requirement failed: %s %s %s", actual, p.Operator, limit))
}

// emit appends a result built from the owner template.
func (run *verification) emit(owner execution.VerificationResult, code string, sev values.Severity, msg string) {
	owner.Code = code
	owner.Severity = sev
	owner.Message = msg
	run.results = append(run.results, owner)
}

func subsystemOwner(s *entities.Subsystem) execution.VerificationResult {
	kind := execution.OwnerSubsystem
	switch s.Kind() {
	case entities.KindSystem:
		kind = execution.OwnerSystem
	case entities.KindUser:
		kind = execution.OwnerUser
	}
	return execution.VerificationResult{Owner: s.String(), OwnerKind: kind, OwnerID: s.Name()}
}

func requirementOwner(r *entities.Requirement) execution.VerificationResult {
	return execution.VerificationResult{Owner: r.String(), OwnerKind: execution.OwnerRequirement, OwnerID: r.ID()}
}
