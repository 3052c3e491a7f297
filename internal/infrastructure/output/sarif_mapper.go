package output

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/owenrumney/go-sarif/v3/pkg/report/v210/sarif"
	"github.com/reglet-dev/verity/internal/domain/execution"
	"github.com/reglet-dev/verity/internal/domain/values"
)

// Manifests larger than this are referenced but not embedded.
const maxContentSize = 512 * 1024

// ruleDescriptions describes each result code.
var ruleDescriptions = map[string]string{
	execution.CodeNoRequirements:    "A subsystem has no requirements allocated to it",
	execution.CodeNoChildren:        "The system has no subsystems",
	execution.CodeUnallocated:       "A requirement is not allocated to anything",
	execution.CodeNotVerifiable:     "A requirement has no parametric constraint and no derived requirements",
	execution.CodeUnbound:           "A parametric requirement is not allocated",
	execution.CodeNoDesign:          "The allocation target of a parametric requirement has no design",
	execution.CodeResolutionFailed:  "A design property could not be resolved or compared",
	execution.CodeCandidateExcluded: "A subsystem was left out of an aggregate property",
	execution.CodePassed:            "A parametric requirement is met by the design",
	execution.CodeFailed:            "A parametric requirement is violated by the design",
}

type sarifMapper struct {
	report    *execution.Report
	modelPath string
	cwd       string // Current working directory
	uri       string // Normalized manifest URI, empty when unknown
}

func newSARIFMapper(report *execution.Report, modelPath string) *sarifMapper {
	cwd, _ := os.Getwd() // Best effort, ignore error
	m := &sarifMapper{
		report:    report,
		modelPath: modelPath,
		cwd:       cwd,
	}
	if modelPath != "" {
		m.uri = m.normalizeURI(modelPath)
	}
	return m
}

// mapToRun populates the SARIF run with rules, results, artifacts and
// invocations.
func (m *sarifMapper) mapToRun(run *sarif.Run) {
	m.addRules(run)
	m.addResults(run)
	m.addArtifact(run)
	m.addInvocation(run)
	m.addProperties(run)
}

// addRules registers one rule per result code, in order of first use.
func (m *sarifMapper) addRules(run *sarif.Run) {
	seen := make(map[string]bool)
	for _, r := range m.report.Results {
		if seen[r.Code] {
			continue
		}
		seen[r.Code] = true

		rule := sarif.NewReportingDescriptor().WithID(r.Code)
		rule.WithName(r.Code)

		desc, ok := ruleDescriptions[r.Code]
		if !ok {
			desc = r.Code
		}
		rule.WithShortDescription(&sarif.MultiformatMessageString{
			Text: &desc,
		})
		rule.WithDefaultConfiguration(&sarif.ReportingConfiguration{
			Level: m.mapSeverityToLevel(r.Severity),
		})

		run.Tool.Driver.AddRule(rule)
	}
}

func (m *sarifMapper) addResults(run *sarif.Run) {
	for _, r := range m.report.Results {
		run.AddResult(m.mapResult(r))
	}
}

func (m *sarifMapper) mapResult(r execution.VerificationResult) *sarif.Result {
	result := sarif.NewRuleResult(r.Code)
	result.Level = m.mapSeverityToLevel(r.Severity)
	result.Kind = m.mapKind(r)
	result.Message = sarif.NewTextMessage(r.Message)

	if m.uri != "" {
		loc := sarif.NewLocation().WithPhysicalLocation(
			sarif.NewPhysicalLocation().
				WithArtifactLocation(sarif.NewArtifactLocation().WithURI(m.uri)))
		result.Locations = []*sarif.Location{loc}
	}

	props := sarif.NewPropertyBag()
	props.Add("owner", r.Owner)
	props.Add("ownerKind", r.OwnerKind)
	props.Add("severity", r.Severity.String())
	if r.OwnerID != "" {
		props.Add("ownerId", r.OwnerID)
	}
	if r.Property != "" {
		props.Add("property", r.Property)
	}
	if r.Actual != "" {
		props.Add("actual", r.Actual)
	}
	if r.Threshold != "" {
		props.Add("threshold", r.Threshold)
	}
	result.WithProperties(props)

	return result
}

// mapSeverityToLevel converts a severity to a SARIF level.
func (m *sarifMapper) mapSeverityToLevel(sev values.Severity) string {
	switch {
	case sev.Equals(values.SevError):
		return "error"
	case sev.Equals(values.SevWarn):
		return "warning"
	default:
		return "note"
	}
}

// mapKind converts a result to a SARIF kind.
func (m *sarifMapper) mapKind(r execution.VerificationResult) string {
	switch {
	case r.IsPass():
		return "pass"
	case r.IsFail():
		return "fail"
	case r.Severity.Equals(values.SevWarn):
		return "review"
	default:
		return "informational"
	}
}

// normalizeURI converts a file path to a SARIF-compliant URI.
func (m *sarifMapper) normalizeURI(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.ToSlash(path) // Fallback to original
	}

	// Try to make relative to CWD
	if m.cwd != "" {
		if rel, err := filepath.Rel(m.cwd, abs); err == nil && !strings.HasPrefix(rel, "..") {
			return filepath.ToSlash(rel)
		}
	}

	return "file://" + filepath.ToSlash(abs)
}

// addArtifact registers the manifest, embedding its content when small.
func (m *sarifMapper) addArtifact(run *sarif.Run) {
	if m.uri == "" || len(m.report.Results) == 0 {
		return
	}

	artifact := sarif.NewArtifact().
		WithLocation(sarif.NewArtifactLocation().WithURI(m.uri))

	if info, err := os.Stat(m.modelPath); err == nil && !info.IsDir() {
		artifact.WithLength(int(info.Size()))
		if info.Size() < maxContentSize {
			//nolint:gosec // G304: modelPath is the manifest the user asked to verify
			if content, err := os.ReadFile(m.modelPath); err == nil {
				artifact.WithContents(sarif.NewArtifactContent().WithText(string(content)))
			}
		}
	}

	run.AddArtifact(artifact)
}

// addInvocation adds run metadata.
func (m *sarifMapper) addInvocation(run *sarif.Run) {
	invocation := sarif.NewInvocation()

	invocation.ExecutionSuccessful = ptrBool(m.report.Summary.Errors == 0)

	// Timestamps (UTC, ISO 8601 format)
	startTime := m.report.StartTime.UTC().Format("2006-01-02T15:04:05.000Z")
	endTime := m.report.EndTime.UTC().Format("2006-01-02T15:04:05.000Z")
	invocation.StartTimeUtc = &startTime
	invocation.EndTimeUtc = &endTime

	if hostname, err := os.Hostname(); err == nil {
		invocation.Machine = &hostname
	}

	if m.cwd != "" {
		cwd := "file://" + filepath.ToSlash(m.cwd)
		invocation.WorkingDirectory = sarif.NewArtifactLocation().WithURI(cwd)
	}

	props := sarif.NewPropertyBag()
	props.Add("modelName", m.report.ModelName)
	props.Add("modelVersion", m.report.ModelVersion)
	props.Add("runId", m.report.RunID.String())
	invocation.WithProperties(props)

	run.AddInvocation(invocation)
}

// addProperties adds summary statistics to run properties.
func (m *sarifMapper) addProperties(run *sarif.Run) {
	props := sarif.NewPropertyBag()
	props.Add("summary", m.report.Summary)
	run.WithProperties(props)
}
