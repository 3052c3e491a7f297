package output

import (
	"bytes"
	"testing"

	"github.com/reglet-dev/verity/internal/domain/execution"
	"github.com/reglet-dev/verity/internal/domain/values"
)

// FuzzSARIFGeneration fuzzes SARIF output generation
func FuzzSARIFGeneration(f *testing.F) {
	seeds := []string{
		"Requirement failed: 40 kg lte 30 kg",
		"",
		"Excluded \"battery\" from \"mass\": \x00",
	}
	for _, seed := range seeds {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, message string) {
		report := execution.NewReport("fuzz", "1.0.0")
		report.AddResults(execution.VerificationResult{
			Owner:     message,
			OwnerKind: execution.OwnerRequirement,
			Code:      execution.CodeFailed,
			Severity:  values.SevError,
			Message:   message,
		})
		report.Finalize()

		var buf bytes.Buffer
		if err := NewSARIFFormatter(&buf, "").Format(report); err != nil {
			t.Errorf("Format failed: %v", err)
		}
	})
}
