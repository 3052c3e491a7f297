package output

import (
	"fmt"
	"io"

	"github.com/reglet-dev/verity/internal/domain/execution"
)

// TextFormatter writes one line per result in the plain
// "<severity padded to 16><message> (<owner>)" rendering.
type TextFormatter struct {
	writer io.Writer
}

// NewTextFormatter creates a new text formatter.
func NewTextFormatter(w io.Writer) *TextFormatter {
	return &TextFormatter{writer: w}
}

// Format writes the report results in order.
func (f *TextFormatter) Format(report *execution.Report) error {
	for _, r := range report.Results {
		if _, err := fmt.Fprintln(f.writer, r.String()); err != nil {
			return err
		}
	}
	return nil
}
