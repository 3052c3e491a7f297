package execution

import (
	"time"

	"github.com/reglet-dev/verity/internal/domain/values"
)

// Report is the complete outcome of verifying one model.
type Report struct {
	StartTime     time.Time            `json:"start_time" yaml:"start_time"`
	EndTime       time.Time            `json:"end_time" yaml:"end_time"`
	VerityVersion string               `json:"verity_version,omitempty" yaml:"verity_version,omitempty"`
	ModelName     string               `json:"model_name" yaml:"model_name"`
	ModelVersion  string               `json:"model_version,omitempty" yaml:"model_version,omitempty"`
	Source        string               `json:"source,omitempty" yaml:"source,omitempty"`
	Results       []VerificationResult `json:"results" yaml:"results"`
	Summary       Summary              `json:"summary" yaml:"summary"`
	Duration      time.Duration        `json:"duration_ms" yaml:"duration_ms"`
	RunID         values.RunID         `json:"run_id" yaml:"run_id"`
}

// Summary provides aggregate statistics about a report.
type Summary struct {
	Total    int `json:"total" yaml:"total"`
	Info     int `json:"info" yaml:"info"`
	Warnings int `json:"warnings" yaml:"warnings"`
	Errors   int `json:"errors" yaml:"errors"`
	Passed   int `json:"passed" yaml:"passed"`
	Failed   int `json:"failed" yaml:"failed"`
}

// NewReport creates a report with a fresh run ID.
func NewReport(modelName, modelVersion string) *Report {
	return NewReportWithID(values.NewRunID(), modelName, modelVersion)
}

// NewReportWithID creates a report with a specific run ID.
func NewReportWithID(id values.RunID, modelName, modelVersion string) *Report {
	return &Report{
		RunID:        id,
		ModelName:    modelName,
		ModelVersion: modelVersion,
		StartTime:    time.Now(),
		Results:      make([]VerificationResult, 0),
	}
}

// AddResults appends results in order.
func (r *Report) AddResults(results ...VerificationResult) {
	r.Results = append(r.Results, results...)
}

// Finalize stamps the end time and computes the summary.
func (r *Report) Finalize() {
	r.EndTime = time.Now()
	r.Duration = r.EndTime.Sub(r.StartTime)
	r.calculateSummary()
}

func (r *Report) calculateSummary() {
	r.Summary = Summary{Total: len(r.Results)}

	for _, res := range r.Results {
		switch {
		case res.Severity.Equals(values.SevError):
			r.Summary.Errors++
		case res.Severity.Equals(values.SevWarn):
			r.Summary.Warnings++
		default:
			r.Summary.Info++
		}

		if res.IsPass() {
			r.Summary.Passed++
		}
		if res.IsFail() {
			r.Summary.Failed++
		}
	}
}

// HighestSeverity returns the most severe result level, and false when the
// report is empty.
func (r *Report) HighestSeverity() (values.Severity, bool) {
	if len(r.Results) == 0 {
		return values.Severity{}, false
	}
	highest := r.Results[0].Severity
	for _, res := range r.Results[1:] {
		if res.Severity.IsHigherThan(highest) {
			highest = res.Severity
		}
	}
	return highest, true
}

// HasAtLeast reports whether any result is at or above sev.
func (r *Report) HasAtLeast(sev values.Severity) bool {
	highest, ok := r.HighestSeverity()
	return ok && highest.IsHigherOrEqual(sev)
}

// Filter returns a copy of the report holding only the results keep accepts,
// with a recomputed summary.
func (r *Report) Filter(keep func(VerificationResult) bool) *Report {
	out := *r
	out.Results = make([]VerificationResult, 0, len(r.Results))
	for _, res := range r.Results {
		if keep(res) {
			out.Results = append(out.Results, res)
		}
	}
	out.calculateSummary()
	return &out
}
