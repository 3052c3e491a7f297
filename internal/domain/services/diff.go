package services

import (
	"github.com/reglet-dev/verity/internal/domain/execution"
	"github.com/reglet-dev/verity/internal/domain/values"
)

// ReportDiff lists the warnings and errors that changed between two runs of
// the same model. Results are matched by VerificationResult.Key and message.
type ReportDiff struct {
	Introduced []execution.VerificationResult
	Resolved   []execution.VerificationResult
}

// IsEmpty reports whether nothing changed.
func (d ReportDiff) IsEmpty() bool {
	return len(d.Introduced) == 0 && len(d.Resolved) == 0
}

// DiffReports compares previous and current. A nil previous report treats
// every warning and error in current as introduced.
func DiffReports(previous, current *execution.Report) ReportDiff {
	before := problems(previous)
	after := problems(current)

	var diff ReportDiff
	for _, r := range after.order {
		if before.count[diffKey(r)] > 0 {
			before.count[diffKey(r)]--
			continue
		}
		diff.Introduced = append(diff.Introduced, r)
	}

	after = problems(current)
	for _, r := range before.order {
		if after.count[diffKey(r)] > 0 {
			after.count[diffKey(r)]--
			continue
		}
		diff.Resolved = append(diff.Resolved, r)
	}
	return diff
}

type problemSet struct {
	count map[string]int
	order []execution.VerificationResult
}

func problems(report *execution.Report) problemSet {
	set := problemSet{count: make(map[string]int)}
	if report == nil {
		return set
	}
	for _, r := range report.Results {
		if !r.Severity.IsHigherOrEqual(values.SevWarn) {
			continue
		}
		set.count[diffKey(r)]++
		set.order = append(set.order, r)
	}
	return set
}

func diffKey(r execution.VerificationResult) string {
	return r.Key() + "|" + r.Message
}
