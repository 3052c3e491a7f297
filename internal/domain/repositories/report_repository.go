// Package repositories defines interfaces for domain persistence.
package repositories

import (
	"context"

	"github.com/reglet-dev/verity/internal/domain/execution"
	"github.com/reglet-dev/verity/internal/domain/values"
)

// ReportRepository stores verification reports produced during a session,
// e.g. successive runs in watch mode.
type ReportRepository interface {
	// Save persists a report.
	Save(ctx context.Context, report *execution.Report) error

	// FindByID retrieves a report by its run ID.
	FindByID(ctx context.Context, id values.RunID) (*execution.Report, error)

	// FindByModel retrieves the most recent reports for a model, newest first.
	FindByModel(ctx context.Context, modelName string, limit int) ([]*execution.Report, error)

	// Latest returns the newest report for a model, or nil when there is none.
	Latest(ctx context.Context, modelName string) (*execution.Report, error)
}
