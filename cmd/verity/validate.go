package main

import (
	"fmt"
	"io"

	"github.com/reglet-dev/verity/internal/application/dto"
	"github.com/spf13/cobra"
)

type validateOptions struct {
	ReferenceScope string
	Concurrency    int
	NoResolve      bool
}

var validateOpts validateOptions

// validateCmd represents the validate command
var validateCmd = &cobra.Command{
	Use:   "validate <model.yaml>...",
	Short: "Check that model manifests load and resolve",
	Long: `Load each manifest, build its model and resolve every design property,
without verifying requirements. Manifests are checked concurrently.`,
	Example: `  verity validate models/*.yaml
  verity validate model.yaml --no-resolve`,
	Args: cobra.MinimumNArgs(1),
	RunE: withContainer(func(ctx *CommandContext, cmd *cobra.Command, args []string) error {
		opts := validateOpts
		if !cmd.Flags().Changed("concurrency") {
			opts.Concurrency = ctx.Config.Concurrency
		}
		if opts.ReferenceScope == "" {
			opts.ReferenceScope = ctx.Config.ReferenceScope
		}
		return runValidate(ctx, args, opts, cmd.OutOrStdout())
	}),
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().IntVarP(&validateOpts.Concurrency, "concurrency", "j", 4, "Number of manifests checked at once (0 for unlimited)")
	validateCmd.Flags().StringVar(&validateOpts.ReferenceScope, "reference-scope", "", "Which subsystems a property may reference: narrow, extended")
	validateCmd.Flags().BoolVar(&validateOpts.NoResolve, "no-resolve", false, "Only load the manifests, do not resolve properties")
}

func runValidate(ctx *CommandContext, paths []string, opts validateOptions, stdout io.Writer) error {
	if opts.Concurrency < 0 {
		return fmt.Errorf("--concurrency must not be negative")
	}

	resp, err := ctx.Container.ValidateModelsUseCase().Execute(ctx.Context, dto.ValidateModelsRequest{
		Paths:             paths,
		Concurrency:       opts.Concurrency,
		ReferenceScope:    opts.ReferenceScope,
		ResolveProperties: !opts.NoResolve,
	})
	if err != nil {
		return err
	}

	invalid := 0
	for _, r := range resp.Results {
		if !r.Valid() {
			invalid++
			fmt.Fprintf(stdout, "✗ %s\n", r.Path)
			for _, e := range r.Errors {
				fmt.Fprintf(stdout, "    %s\n", e)
			}
			continue
		}
		if opts.NoResolve {
			fmt.Fprintf(stdout, "✓ %s (%s)\n", r.Path, r.Model)
		} else {
			fmt.Fprintf(stdout, "✓ %s (%s, %d properties)\n", r.Path, r.Model, r.Properties)
		}
	}

	if invalid > 0 {
		return fmt.Errorf("%d of %d manifests invalid", invalid, len(resp.Results))
	}
	return nil
}
