package output

import (
	"encoding/xml"
	"fmt"
	"io"

	"github.com/reglet-dev/verity/internal/domain/execution"
	"github.com/reglet-dev/verity/internal/domain/values"
)

// JUnitFormatter formats reports as JUnit XML. Every result becomes a test
// case: errors are failures, warnings are skipped checks.
type JUnitFormatter struct {
	writer io.Writer
}

// NewJUnitFormatter creates a new JUnit formatter.
func NewJUnitFormatter(w io.Writer) *JUnitFormatter {
	return &JUnitFormatter{
		writer: w,
	}
}

// JUnitTestSuites JUnit XML structures
type JUnitTestSuites struct {
	XMLName    xml.Name         `xml:"testsuites"`
	Name       string           `xml:"name,attr"`
	Tests      int              `xml:"tests,attr"`
	Failures   int              `xml:"failures,attr"`
	Errors     int              `xml:"errors,attr"`
	Time       float64          `xml:"time,attr"`
	TestSuites []JUnitTestSuite `xml:"testsuite"`
}

type JUnitTestSuite struct {
	XMLName   xml.Name        `xml:"testsuite"`
	Name      string          `xml:"name,attr"`
	Tests     int             `xml:"tests,attr"`
	Failures  int             `xml:"failures,attr"`
	Errors    int             `xml:"errors,attr"`
	Skipped   int             `xml:"skipped,attr"`
	Time      float64         `xml:"time,attr"`
	TestCases []JUnitTestCase `xml:"testcase"`
}

type JUnitTestCase struct {
	XMLName   xml.Name      `xml:"testcase"`
	Name      string        `xml:"name,attr"`
	ClassName string        `xml:"classname,attr"`
	Failure   *JUnitFailure `xml:"failure,omitempty"`
	Skipped   *JUnitSkipped `xml:"skipped,omitempty"`
	SystemOut string        `xml:"system-out,omitempty"`
}

type JUnitFailure struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr,omitempty"`
	Content string `xml:",chardata"`
}

type JUnitSkipped struct {
	Message string `xml:"message,attr,omitempty"`
}

// Format writes the report as JUnit XML.
func (f *JUnitFormatter) Format(report *execution.Report) error {
	suite := JUnitTestSuite{
		Name:     report.ModelName,
		Tests:    report.Summary.Total,
		Failures: report.Summary.Errors,
		Skipped:  report.Summary.Warnings,
		Time:     report.Duration.Seconds(),
	}

	for _, r := range report.Results {
		c := JUnitTestCase{
			Name:      r.Owner,
			ClassName: r.OwnerKind + "." + r.Code,
		}

		switch {
		case r.Severity.Equals(values.SevError):
			c.Failure = &JUnitFailure{
				Message: r.Message,
				Type:    r.Code,
				Content: describe(r),
			}
		case r.Severity.Equals(values.SevWarn):
			c.Skipped = &JUnitSkipped{Message: r.Message}
		default:
			c.SystemOut = r.Message
		}

		suite.TestCases = append(suite.TestCases, c)
	}

	suites := JUnitTestSuites{
		Name:       "Verity Verification",
		Tests:      report.Summary.Total,
		Failures:   report.Summary.Errors,
		Time:       report.Duration.Seconds(),
		TestSuites: []JUnitTestSuite{suite},
	}

	_, err := f.writer.Write([]byte(xml.Header))
	if err != nil {
		return err
	}

	encoder := xml.NewEncoder(f.writer)
	encoder.Indent("", "  ")
	if err := encoder.Encode(suites); err != nil {
		return err
	}

	_, err = f.writer.Write([]byte("\n"))
	return err
}

func describe(r execution.VerificationResult) string {
	out := fmt.Sprintf("Owner: %s\n", r.Owner)
	if r.Property != "" {
		out += fmt.Sprintf("Property: %s\n", r.Property)
	}
	if r.Actual != "" {
		out += fmt.Sprintf("Actual: %s\n", r.Actual)
	}
	if r.Threshold != "" {
		out += fmt.Sprintf("Threshold: %s\n", r.Threshold)
	}
	return out
}
