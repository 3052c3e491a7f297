package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/reglet-dev/verity/internal/config"
	"github.com/reglet-dev/verity/internal/infrastructure/container"
	"github.com/spf13/cobra"
)

// CommandContext provides common command dependencies.
type CommandContext struct {
	Container *container.Container
	Logger    *slog.Logger
	Context   context.Context
	Config    config.Config
}

// CommandHandler is a function that executes with initialized dependencies.
type CommandHandler func(*CommandContext, *cobra.Command, []string) error

// withContainer wraps a command handler with container initialization,
// using the settings loaded by the root command.
func withContainer(handler CommandHandler) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx, err := newCommandContext(cmd.Context(), settings)
		if err != nil {
			return err
		}
		return handler(ctx, cmd, args)
	}
}

func newCommandContext(ctx context.Context, cfg config.Config) (*CommandContext, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	logger := slog.Default()

	c, err := container.New(container.Options{
		Logger: logger,
		Config: cfg,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize application: %w", err)
	}

	return &CommandContext{
		Container: c,
		Logger:    logger,
		Context:   ctx,
		Config:    cfg,
	}, nil
}
