package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/reglet-dev/verity/internal/templates"
	"github.com/spf13/cobra"
)

// InitOptions holds the answers used to scaffold a manifest.
type InitOptions struct {
	Template      string
	Name          string
	Subsystems    []string
	Users         []string
	MassLimit     string
	OutputPath    string
	Force         bool
	NoInteractive bool
}

var initCmd = &cobra.Command{
	Use:   "init [model.yaml]",
	Short: "Create a model manifest",
	Long: `Scaffold a model manifest. Without --no-interactive the name, subsystems
and users are asked for. --example writes a complete worked example instead.`,
	Example: `  verity init
  verity init rover.yaml --name Rover --subsystems body,wheels --no-interactive
  verity init --example`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := InitOptions{Template: templates.Model}
		opts.Name, _ = cmd.Flags().GetString("name")
		opts.Subsystems, _ = cmd.Flags().GetStringSlice("subsystems")
		opts.Users, _ = cmd.Flags().GetStringSlice("users")
		opts.MassLimit, _ = cmd.Flags().GetString("mass-limit")
		opts.Force, _ = cmd.Flags().GetBool("force")
		opts.NoInteractive, _ = cmd.Flags().GetBool("no-interactive")
		if example, _ := cmd.Flags().GetBool("example"); example {
			opts.Template = templates.Example
		}
		if len(args) > 0 {
			opts.OutputPath = args[0]
		}

		if !opts.NoInteractive {
			if err := promptInit(&opts); err != nil {
				return err
			}
		}
		return runInit(opts, cmd.OutOrStdout())
	},
}

func init() {
	initCmd.Flags().String("name", "", "Model name")
	initCmd.Flags().StringSlice("subsystems", nil, "Top-level subsystems (comma-separated)")
	initCmd.Flags().StringSlice("users", nil, "Users of the system (comma-separated)")
	initCmd.Flags().String("mass-limit", "", "Threshold of the generated mass requirement")
	initCmd.Flags().Bool("example", false, "Write the worked example model")
	initCmd.Flags().Bool("force", false, "Overwrite an existing file")
	initCmd.Flags().Bool("no-interactive", false, "Disable interactive prompts")

	rootCmd.AddCommand(initCmd)
}

// promptInit asks for anything not given on the command line.
func promptInit(opts *InitOptions) error {
	if opts.Template == templates.Model {
		err := huh.NewSelect[string]().
			Title("What should the manifest contain?").
			Options(
				huh.NewOption("A new model", templates.Model).Selected(true),
				huh.NewOption("The worked example (Sol Invictus solar car)", templates.Example),
			).
			Value(&opts.Template).
			Run()
		if err != nil {
			return err
		}
	}
	if opts.Template == templates.Example {
		return nil
	}

	if opts.Name == "" {
		err := huh.NewInput().
			Title("Model name").
			Placeholder("My System").
			Value(&opts.Name).
			Run()
		if err != nil {
			return err
		}
	}

	if len(opts.Subsystems) == 0 {
		var subsystems string
		err := huh.NewInput().
			Title("Top-level subsystems").
			Description("Comma-separated, e.g. chassis, battery, motor").
			Value(&subsystems).
			Run()
		if err != nil {
			return err
		}
		opts.Subsystems = splitList(subsystems)
	}

	if len(opts.Users) == 0 {
		err := huh.NewMultiSelect[string]().
			Title("Who uses the system?").
			Options(
				huh.NewOption("Operator", "operator").Selected(true),
				huh.NewOption("Maintainer", "maintainer"),
				huh.NewOption("Passenger", "passenger"),
			).
			Value(&opts.Users).
			Run()
		if err != nil {
			return err
		}
	}

	if opts.MassLimit == "" {
		err := huh.NewInput().
			Title("Mass limit of the system").
			Placeholder("100kg").
			Value(&opts.MassLimit).
			Run()
		if err != nil {
			return err
		}
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// runInit renders the chosen template and writes it.
func runInit(opts InitOptions, stdout io.Writer) error {
	if opts.OutputPath == "" {
		opts.OutputPath = opts.Template
	}

	if !opts.Force {
		if _, err := os.Stat(opts.OutputPath); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", opts.OutputPath)
		} else if !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}

	data := templates.ManifestData{
		FileName:   opts.OutputPath,
		Name:       opts.Name,
		Subsystems: opts.Subsystems,
		Users:      opts.Users,
		MassLimit:  opts.MassLimit,
	}
	var buf bytes.Buffer
	if err := templates.Render(&buf, opts.Template, data); err != nil {
		return fmt.Errorf("failed to render manifest: %w", err)
	}

	//nolint:gosec // G306: manifests are meant to be shared
	if err := os.WriteFile(opts.OutputPath, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}

	fmt.Fprintf(stdout, "✓ Manifest saved to %s\n", opts.OutputPath)
	fmt.Fprintf(stdout, "Run 'verity verify %s' to verify it.\n", opts.OutputPath)
	return nil
}
