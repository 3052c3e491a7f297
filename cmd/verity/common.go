package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"time"

	"github.com/spf13/cobra"
)

// CommonOptions contains flags shared across commands that produce reports.
type CommonOptions struct {
	// Output
	Format string
	Output string

	// Execution
	Timeout time.Duration
}

// DefaultCommonOptions returns sensible defaults.
func DefaultCommonOptions() CommonOptions {
	return CommonOptions{
		Timeout: 2 * time.Minute,
		Format:  "table",
	}
}

// RegisterFlags adds common flags to a cobra command.
func (opts *CommonOptions) RegisterFlags(cmd *cobra.Command, formats []string) {
	cmd.Flags().DurationVar(&opts.Timeout, "timeout", opts.Timeout,
		"Timeout for a single run (0 to disable)")
	cmd.Flags().StringVar(&opts.Format, "format", opts.Format,
		fmt.Sprintf("Output format: %v", formats))
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "",
		"Output file path (default: stdout)")
}

// ApplyConfig takes the configured format unless --format was given.
func (opts *CommonOptions) ApplyConfig(cmd *cobra.Command, format string) {
	if !cmd.Flags().Changed("format") && format != "" {
		opts.Format = format
	}
}

// ApplyToContext applies timeout to context.
// Returns new context and cancel function.
func (opts *CommonOptions) ApplyToContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if opts.Timeout > 0 {
		return context.WithTimeout(ctx, opts.Timeout)
	}
	return ctx, func() {}
}

// ValidateFlags validates common options against the formats a command
// supports.
func (opts *CommonOptions) ValidateFlags(formats []string) error {
	if opts.Timeout < 0 {
		return fmt.Errorf("--timeout must not be negative")
	}
	if !slices.Contains(formats, opts.Format) {
		return fmt.Errorf("invalid format: %s (valid: %v)", opts.Format, formats)
	}
	return nil
}

// OpenOutput returns the writer for results: stdout when no output file is
// set. The returned close function is always safe to call.
func (opts *CommonOptions) OpenOutput(stdout io.Writer) (io.Writer, func() error, error) {
	if opts.Output == "" {
		return stdout, func() error { return nil }, nil
	}
	//nolint:gosec // G304: User-controlled output file path is intentional
	file, err := os.Create(opts.Output)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return file, file.Close, nil
}

// ToFile reports whether results go to a file rather than the terminal.
func (opts *CommonOptions) ToFile() bool {
	return opts.Output != ""
}
