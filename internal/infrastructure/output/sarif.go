package output

import (
	"fmt"
	"io"

	"github.com/owenrumney/go-sarif/v3/pkg/report/v210/sarif"
	"github.com/reglet-dev/verity/internal/domain/execution"
)

// SARIFFormatter formats reports as SARIF 2.1.0 JSON.
// Result codes become SARIF rules and every verification result a SARIF
// result located in the model manifest.
//
// Usage:
//
//	formatter := output.NewSARIFFormatter(os.Stdout, "model.yaml")
//	if err := formatter.Format(report); err != nil {
//	    log.Fatal(err)
//	}
type SARIFFormatter struct {
	writer    io.Writer
	modelPath string
}

// NewSARIFFormatter creates a new SARIF formatter.
// modelPath is the manifest used as the location of every result.
func NewSARIFFormatter(writer io.Writer, modelPath string) *SARIFFormatter {
	return &SARIFFormatter{
		writer:    writer,
		modelPath: modelPath,
	}
}

// Format writes the report as SARIF 2.1.0 JSON.
func (f *SARIFFormatter) Format(report *execution.Report) error {
	out := sarif.NewReport()

	run := sarif.NewRunWithInformationURI("Verity", "https://reglet.dev/verity")
	run.Tool.Driver.Version = &report.VerityVersion
	run.Tool.Driver.Organization = ptrString("Reglet")

	mapper := newSARIFMapper(report, f.modelPath)
	mapper.mapToRun(run)

	out.AddRun(run)

	if err := out.Write(f.writer); err != nil {
		return fmt.Errorf("failed to write SARIF output: %w", err)
	}

	_, err := f.writer.Write([]byte("\n"))
	return err
}

func ptrString(s string) *string {
	return &s
}

func ptrBool(b bool) *bool {
	return &b
}
