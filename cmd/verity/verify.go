package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/reglet-dev/verity/internal/application/dto"
	"github.com/reglet-dev/verity/internal/application/ports"
	"github.com/reglet-dev/verity/internal/config"
	"github.com/reglet-dev/verity/internal/domain/services"
	"github.com/reglet-dev/verity/internal/infrastructure/output"
	"github.com/reglet-dev/verity/internal/infrastructure/watch"
	"github.com/spf13/cobra"
)

// verifyOptions holds the flags of the verify command.
type verifyOptions struct {
	CommonOptions

	Filter         string
	MinSeverity    string
	ReferenceScope string
	FailOn         string
	Codes          []string
	OwnerKinds     []string

	Debounce           time.Duration
	IncludeUnallocated bool
	Watch              bool
	NoColor            bool
}

var verifyOpts = verifyOptions{CommonOptions: DefaultCommonOptions()}

// verifyCmd represents the verify command
var verifyCmd = &cobra.Command{
	Use:   "verify <model.yaml>",
	Short: "Verify the requirements of a model",
	Long: `Load a model manifest, resolve every design property and verify each
requirement against the design of the subsystem it is allocated to.

Filtering:
  Filters select which results are printed. The exit status always
  considers the full report.
  --min-severity warn                   Only warnings and errors
  --code failed,unbound                 Only these result codes
  --owner-kind requirement              Only results owned by requirements
  --filter "owner == 'chassis'"         Advanced filtering expression

Watch mode:
  --watch re-verifies whenever the manifest changes and prints the
  warnings and errors introduced or resolved since the previous run.`,
	Example: `  verity verify model.yaml
  verity verify model.yaml --format sarif -o verity.sarif
  verity verify model.yaml --filter "severity == 'error' && code != 'unbound'"
  verity verify model.yaml --watch`,
	Args: cobra.ExactArgs(1),
	RunE: withContainer(func(ctx *CommandContext, cmd *cobra.Command, args []string) error {
		opts := verifyOpts
		opts.applyConfig(cmd, ctx.Config)
		if err := opts.validate(ctx.Container.FormatterFactory().SupportedFormats()); err != nil {
			return err
		}

		if opts.Watch {
			sigCtx, stop := signal.NotifyContext(ctx.Context, os.Interrupt, syscall.SIGTERM)
			defer stop()
			ctx.Context = sigCtx
			return runVerifyWatch(ctx, args[0], opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
		}
		return runVerify(ctx, args[0], opts, cmd.OutOrStdout())
	}),
}

func init() {
	rootCmd.AddCommand(verifyCmd)

	verifyOpts.RegisterFlags(verifyCmd, output.NewFormatterFactory().SupportedFormats())
	f := verifyCmd.Flags()
	f.StringVar(&verifyOpts.Filter, "filter", "", "Advanced filter expression (e.g. \"severity == 'error'\")")
	f.StringVar(&verifyOpts.MinSeverity, "min-severity", "", "Only show results at or above this severity: info, warn, error")
	f.StringSliceVar(&verifyOpts.Codes, "code", nil, "Only show results with these codes (comma-separated)")
	f.StringSliceVar(&verifyOpts.OwnerKinds, "owner-kind", nil, "Only show results owned by these kinds: system, subsystem, user, requirement")
	f.BoolVar(&verifyOpts.IncludeUnallocated, "include-unallocated", false, "Report requirements that are not allocated to any subsystem")
	f.StringVar(&verifyOpts.ReferenceScope, "reference-scope", "", "Which subsystems a property may reference: narrow, extended")
	f.StringVar(&verifyOpts.FailOn, "fail-on", "", "Exit non-zero when any result reaches this severity: info, warn, error, never")
	f.BoolVarP(&verifyOpts.Watch, "watch", "w", false, "Re-verify whenever the manifest changes")
	f.DurationVar(&verifyOpts.Debounce, "debounce", 0, "Quiet period before re-verifying in watch mode")
	f.BoolVar(&verifyOpts.NoColor, "no-color", false, "Disable colored table output")
}

// applyConfig fills unset flags from the runtime configuration.
func (o *verifyOptions) applyConfig(cmd *cobra.Command, cfg config.Config) {
	o.ApplyConfig(cmd, cfg.Format)
	if o.ReferenceScope == "" {
		o.ReferenceScope = cfg.ReferenceScope
	}
	if o.FailOn == "" {
		o.FailOn = cfg.FailOn
	}
	if o.Debounce == 0 {
		o.Debounce = cfg.WatchDebounce
	}
	if !cfg.Color {
		o.NoColor = true
	}
}

func (o *verifyOptions) validate(formats []string) error {
	if err := o.ValidateFlags(formats); err != nil {
		return err
	}
	if _, err := services.ParseReferenceScope(o.ReferenceScope); err != nil {
		return fmt.Errorf("--reference-scope: %w", err)
	}
	return o.failPolicy().Validate()
}

// failPolicy reuses the config validation for the fail-on severity.
func (o *verifyOptions) failPolicy() config.Config {
	cfg := config.Default()
	if o.FailOn != "" {
		cfg.FailOn = o.FailOn
	}
	return cfg
}

func (o *verifyOptions) request(path string) dto.VerifyModelRequest {
	return dto.VerifyModelRequest{
		ModelPath: path,
		Options: dto.VerifyOptions{
			ReferenceScope:     o.ReferenceScope,
			IncludeUnallocated: o.IncludeUnallocated,
		},
		Filters: dto.FilterOptions{
			FilterExpression: o.Filter,
			MinSeverity:      o.MinSeverity,
			Codes:            o.Codes,
			OwnerKinds:       o.OwnerKinds,
		},
	}
}

// ErrVerificationFailed is returned when the report reaches the fail-on
// severity.
var ErrVerificationFailed = errors.New("verification failed")

// runVerify verifies once, writes the report and applies the fail-on policy.
func runVerify(ctx *CommandContext, path string, opts verifyOptions, stdout io.Writer) error {
	resp, err := verifyOnce(ctx, path, opts, stdout)
	if err != nil {
		return err
	}

	threshold, enabled := opts.failPolicy().FailThreshold()
	if enabled && resp.Full.HasAtLeast(threshold) {
		s := resp.Full.Summary
		return fmt.Errorf("%w: %d passed, %d failed, %d errors, %d warnings",
			ErrVerificationFailed, s.Passed, s.Failed, s.Errors, s.Warnings)
	}
	return nil
}

func verifyOnce(ctx *CommandContext, path string, opts verifyOptions, stdout io.Writer) (*dto.VerifyModelResponse, error) {
	runCtx, cancel := opts.ApplyToContext(ctx.Context)
	defer cancel()

	resp, err := ctx.Container.VerifyModelUseCase().Execute(runCtx, opts.request(path))
	if err != nil {
		return nil, err
	}

	writer, closeOutput, err := opts.OpenOutput(stdout)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = closeOutput() // Best-effort cleanup
	}()
	if opts.ToFile() {
		ctx.Logger.Info("writing output", "file", opts.Output, "format", opts.Format)
	}

	formatter, err := ctx.Container.FormatterFactory().Create(opts.Format, writer, ports.FormatterOptions{
		ModelPath: path,
		Indent:    true,
		Color:     !opts.NoColor && !opts.ToFile(),
	})
	if err != nil {
		return nil, err
	}
	if err := formatter.Format(resp.Report); err != nil {
		return nil, fmt.Errorf("failed to format output: %w", err)
	}
	return resp, nil
}

// runVerifyWatch verifies, then re-verifies on every change to the manifest
// until the context is cancelled. Load errors are reported and watching
// continues.
func runVerifyWatch(ctx *CommandContext, path string, opts verifyOptions, stdout, stderr io.Writer) error {
	w, err := watch.NewWatcher(path, opts.Debounce, ctx.Logger)
	if err != nil {
		return err
	}

	if _, err := verifyOnce(ctx, path, opts, stdout); err != nil {
		fmt.Fprintf(stderr, "✗ %v\n", err)
	}
	fmt.Fprintf(stderr, "Watching %s for changes (Ctrl+C to stop)\n", w.Path())

	return w.Run(ctx.Context, func() {
		resp, err := verifyOnce(ctx, path, opts, stdout)
		if err != nil {
			fmt.Fprintf(stderr, "✗ %v\n", err)
			return
		}
		printDiff(stderr, resp.Diff)
	})
}

// printDiff lists warnings and errors that changed since the previous run.
func printDiff(w io.Writer, diff services.ReportDiff) {
	if diff.IsEmpty() {
		fmt.Fprintln(w, "No changes since last run.")
		return
	}
	fmt.Fprintf(w, "Changes since last run: %d introduced, %d resolved\n", len(diff.Introduced), len(diff.Resolved))
	for _, r := range diff.Introduced {
		fmt.Fprintf(w, "  + %s\n", r)
	}
	for _, r := range diff.Resolved {
		fmt.Fprintf(w, "  - %s\n", r)
	}
}

