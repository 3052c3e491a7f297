// Package ports defines interfaces for infrastructure dependencies.
// These are the "ports" in hexagonal architecture - abstractions that
// the application layer depends on but doesn't implement.
package ports

import (
	"context"
	"io"

	"github.com/reglet-dev/verity/internal/application/dto"
	"github.com/reglet-dev/verity/internal/domain/execution"
)

// ModelLoader reads a manifest and builds the model graph it describes.
type ModelLoader interface {
	LoadModel(ctx context.Context, path string) (*dto.Model, error)
}

// OutputFormatter formats verification reports.
type OutputFormatter interface {
	Format(report *execution.Report) error
}

// FormatterOptions configures output formatters.
type FormatterOptions struct {
	// ModelPath is the manifest the report came from, used for SARIF
	// artifact locations.
	ModelPath string
	Indent    bool
	Color     bool
}

// OutputFormatterFactory creates formatters by name.
type OutputFormatterFactory interface {
	Create(format string, writer io.Writer, options FormatterOptions) (OutputFormatter, error)
	SupportedFormats() []string
}
