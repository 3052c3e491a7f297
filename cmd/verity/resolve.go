package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/reglet-dev/verity/internal/application/dto"
	"github.com/reglet-dev/verity/internal/domain/services"
	"github.com/spf13/cobra"
)

var resolveFormats = []string{"text", "json", "yaml"}

type resolveOptions struct {
	CommonOptions

	ReferenceScope string
}

var resolveOpts = resolveOptions{CommonOptions: CommonOptions{Format: "text"}}

// resolveCmd represents the resolve command
var resolveCmd = &cobra.Command{
	Use:   "resolve <model.yaml> <subsystem>.<property>",
	Short: "Resolve one design property of a model",
	Long: `Resolve a single design property and print its value in its own units
and in canonical units. Aggregates list the children they excluded.`,
	Example: `  verity resolve model.yaml chassis.mass
  verity resolve model.yaml "Sol Invictus.mass" --format json`,
	Args: cobra.ExactArgs(2),
	RunE: withContainer(func(ctx *CommandContext, cmd *cobra.Command, args []string) error {
		opts := resolveOpts
		if opts.ReferenceScope == "" {
			opts.ReferenceScope = ctx.Config.ReferenceScope
		}
		return runResolve(ctx, args[0], args[1], opts, cmd.OutOrStdout())
	}),
}

func init() {
	rootCmd.AddCommand(resolveCmd)

	resolveOpts.RegisterFlags(resolveCmd, resolveFormats)
	resolveCmd.Flags().StringVar(&resolveOpts.ReferenceScope, "reference-scope", "", "Which subsystems a property may reference: narrow, extended")
}

// splitPropertyPath splits "subsystem.property" at the last dot, so
// subsystem names may themselves contain dots.
func splitPropertyPath(s string) (string, string, error) {
	i := strings.LastIndex(s, ".")
	if i <= 0 || i == len(s)-1 {
		return "", "", fmt.Errorf("expected <subsystem>.<property>, got %q", s)
	}
	return s[:i], s[i+1:], nil
}

func runResolve(ctx *CommandContext, path, target string, opts resolveOptions, stdout io.Writer) error {
	if err := opts.ValidateFlags(resolveFormats); err != nil {
		return err
	}
	if _, err := services.ParseReferenceScope(opts.ReferenceScope); err != nil {
		return fmt.Errorf("--reference-scope: %w", err)
	}
	subsystem, property, err := splitPropertyPath(target)
	if err != nil {
		return err
	}

	runCtx, cancel := opts.ApplyToContext(ctx.Context)
	defer cancel()

	resp, err := ctx.Container.ResolvePropertyUseCase().Execute(runCtx, dto.ResolvePropertyRequest{
		ModelPath:      path,
		Subsystem:      subsystem,
		Property:       property,
		ReferenceScope: opts.ReferenceScope,
	})
	if err != nil {
		return err
	}

	writer, closeOutput, err := opts.OpenOutput(stdout)
	if err != nil {
		return err
	}
	defer func() {
		_ = closeOutput() // Best-effort cleanup
	}()

	return writeResolved(writer, opts.Format, resp)
}

func writeResolved(w io.Writer, format string, resp *dto.ResolvePropertyResponse) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	case "yaml":
		return yaml.NewEncoder(w, yaml.Indent(2)).Encode(resp)
	}

	fmt.Fprintf(w, "%s.%s = %s\n", resp.Subsystem, resp.Property, resp.Value)
	fmt.Fprintf(w, "  design:     %s\n", resp.Design)
	fmt.Fprintf(w, "  definition: %s (%s)\n", resp.Definition, resp.Kind)
	if resp.Canonical != resp.Value {
		fmt.Fprintf(w, "  canonical:  %s\n", resp.Canonical)
	}
	for _, ex := range resp.Exclusions {
		fmt.Fprintf(w, "  excluded:   %s\n", ex)
	}
	return nil
}
