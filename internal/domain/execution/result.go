// Package execution provides domain models for verification results.
package execution

import (
	"fmt"

	"github.com/reglet-dev/verity/internal/domain/values"
)

// Result codes identify the rule that produced a VerificationResult.
const (
	CodeNoRequirements    = "no-requirements"
	CodeNoChildren        = "no-children"
	CodeUnallocated       = "unallocated"
	CodeNotVerifiable     = "not-verifiable"
	CodeUnbound           = "unbound"
	CodeNoDesign          = "no-design"
	CodeResolutionFailed  = "resolution-failed"
	CodeCandidateExcluded = "candidate-excluded"
	CodePassed            = "passed"
	CodeFailed            = "failed"
)

// Owner kinds.
const (
	OwnerSystem      = "system"
	OwnerSubsystem   = "subsystem"
	OwnerUser        = "user"
	OwnerRequirement = "requirement"
)

// VerificationResult is one outcome produced while checking a model. It is
// created once and never mutated.
type VerificationResult struct {
	Owner     string          `json:"owner" yaml:"owner"`
	OwnerKind string          `json:"owner_kind" yaml:"owner_kind"`
	OwnerID   string          `json:"owner_id,omitempty" yaml:"owner_id,omitempty"`
	Code      string          `json:"code" yaml:"code"`
	Message   string          `json:"message" yaml:"message"`
	Property  string          `json:"property,omitempty" yaml:"property,omitempty"`
	Actual    string          `json:"actual,omitempty" yaml:"actual,omitempty"`
	Threshold string          `json:"threshold,omitempty" yaml:"threshold,omitempty"`
	Severity  values.Severity `json:"severity" yaml:"severity"`
}

// String renders "<severity padded to 16><message> (<owner>)".
func (r VerificationResult) String() string {
	return fmt.Sprintf("%-16s%s (%s)", r.Severity.String(), r.Message, r.Owner)
}

// Key identifies a result across runs of the same model.
func (r VerificationResult) Key() string {
	return r.OwnerKind + "|" + r.Owner + "|" + r.Code + "|" + r.Property
}

// IsPass reports whether the result records a passed parametric check.
func (r VerificationResult) IsPass() bool { return r.Code == CodePassed }

// IsFail reports whether the result records a failed parametric check.
func (r VerificationResult) IsFail() bool { return r.Code == CodeFailed }
