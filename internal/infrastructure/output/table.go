package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/reglet-dev/verity/internal/domain/execution"
	"github.com/reglet-dev/verity/internal/domain/values"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorGray   = "\033[90m"
	colorBold   = "\033[1m"
)

// TableFormatter formats reports as a human-readable table grouped by owner.
type TableFormatter struct {
	writer      io.Writer
	EnableColor bool
}

// NewTableFormatter creates a new table formatter.
func NewTableFormatter(w io.Writer) *TableFormatter {
	return &TableFormatter{
		writer:      w,
		EnableColor: true, // Default to true, caller can disable
	}
}

// colorize returns the string wrapped in ANSI color codes if enabled.
func (f *TableFormatter) colorize(text, code string) string {
	if !f.EnableColor {
		return text
	}
	return code + text + colorReset
}

// Format writes the report as a table.
//
//nolint:errcheck // Table formatting errors are non-critical (best-effort terminal output)
func (f *TableFormatter) Format(report *execution.Report) error {
	rule := f.colorize(strings.Repeat("─", 80), colorGray)

	fmt.Fprintln(f.writer, rule)
	if report.ModelVersion != "" {
		fmt.Fprintf(f.writer, "Model: %s (v%s)\n", f.colorize(report.ModelName, colorBold), report.ModelVersion)
	} else {
		fmt.Fprintf(f.writer, "Model: %s\n", f.colorize(report.ModelName, colorBold))
	}
	if report.Source != "" {
		fmt.Fprintf(f.writer, "Source: %s\n", report.Source)
	}
	fmt.Fprintf(f.writer, "Verified: %s\n", report.StartTime.Format(time.RFC3339))
	fmt.Fprintf(f.writer, "Duration: %s\n", report.Duration.Round(time.Millisecond))
	fmt.Fprintln(f.writer)

	if len(report.Results) == 0 {
		fmt.Fprintln(f.writer, "No results.")
		fmt.Fprintln(f.writer)
		f.formatSummary(report.Summary)
		return nil
	}

	fmt.Fprintln(f.writer, f.colorize("Results:", colorBold))
	fmt.Fprintln(f.writer, rule)

	owner := ""
	for _, r := range report.Results {
		if r.Owner != owner {
			if owner != "" {
				fmt.Fprintln(f.writer)
			}
			owner = r.Owner
			fmt.Fprintln(f.writer, f.colorize(owner, colorBold))
		}
		f.formatResult(r)
	}

	fmt.Fprintln(f.writer, rule)
	fmt.Fprintln(f.writer)
	f.formatSummary(report.Summary)
	return nil
}

//nolint:errcheck // Best-effort terminal output
func (f *TableFormatter) formatResult(r execution.VerificationResult) {
	symbol, color := f.statusInfo(r)
	fmt.Fprintf(f.writer, "  %s %-5s %s %s\n",
		f.colorize(symbol, color),
		f.colorize(r.Severity.Short(), color),
		r.Message,
		f.colorize("["+r.Code+"]", colorGray))
}

// statusInfo picks the symbol and color for a result.
func (f *TableFormatter) statusInfo(r execution.VerificationResult) (string, string) {
	switch {
	case r.IsPass():
		return "✓", colorGreen
	case r.Severity.Equals(values.SevError):
		return "✗", colorRed
	case r.Severity.Equals(values.SevWarn):
		return "⚠", colorYellow
	default:
		return "ℹ", colorBlue
	}
}

//nolint:errcheck // Best-effort terminal output
func (f *TableFormatter) formatSummary(s execution.Summary) {
	fmt.Fprintln(f.writer, f.colorize("Summary:", colorBold))
	fmt.Fprintf(f.writer, "  Total:    %d\n", s.Total)
	fmt.Fprintf(f.writer, "  Passed:   %s\n", f.colorize(fmt.Sprint(s.Passed), colorGreen))
	fmt.Fprintf(f.writer, "  Failed:   %s\n", f.colorize(fmt.Sprint(s.Failed), colorRed))
	fmt.Fprintf(f.writer, "  Info:     %d\n", s.Info)
	fmt.Fprintf(f.writer, "  Warnings: %s\n", f.colorize(fmt.Sprint(s.Warnings), colorYellow))
	fmt.Fprintf(f.writer, "  Errors:   %s\n", f.colorize(fmt.Sprint(s.Errors), colorRed))
}
