package main

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	"github.com/reglet-dev/verity/internal/config"
	"github.com/reglet-dev/verity/internal/templates"
	"github.com/stretchr/testify/require"
)

// testContext returns a CommandContext with the default configuration.
func testContext(t *testing.T) *CommandContext {
	t.Helper()
	ctx, err := newCommandContext(context.Background(), config.Default())
	require.NoError(t, err)
	return ctx
}

// writeManifest scaffolds a manifest in a temp dir and returns its path.
func writeManifest(t *testing.T, opts InitOptions) string {
	t.Helper()
	if opts.Template == "" {
		opts.Template = templates.Model
	}
	opts.OutputPath = filepath.Join(t.TempDir(), "model.yaml")
	opts.NoInteractive = true
	require.NoError(t, runInit(opts, io.Discard))
	return opts.OutputPath
}

// rover is a two-subsystem model of 2kg.
func rover(t *testing.T, massLimit string) string {
	t.Helper()
	return writeManifest(t, InitOptions{
		Name:       "Rover",
		Subsystems: []string{"body", "wheels"},
		MassLimit:  massLimit,
	})
}
