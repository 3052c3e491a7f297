// Package memory provides in-memory implementations of domain repositories.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/reglet-dev/verity/internal/domain/execution"
	"github.com/reglet-dev/verity/internal/domain/repositories"
	"github.com/reglet-dev/verity/internal/domain/values"
)

// Ensure interface compliance
var _ repositories.ReportRepository = (*ReportRepository)(nil)

// ReportRepository is an in-memory ReportRepository. Reports live for the
// lifetime of the process, which is what watch mode needs.
type ReportRepository struct {
	reports map[uuid.UUID]storedReport
	mu      sync.RWMutex
	seq     int
}

type storedReport struct {
	report *execution.Report
	seq    int
}

// NewReportRepository creates a new in-memory repository.
func NewReportRepository() *ReportRepository {
	return &ReportRepository{
		reports: make(map[uuid.UUID]storedReport),
	}
}

// Save stores a report. Callers should not modify the report after saving.
func (r *ReportRepository) Save(_ context.Context, report *execution.Report) error {
	if report == nil {
		return fmt.Errorf("cannot save a nil report")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.seq++
	r.reports[report.RunID.UUID()] = storedReport{report: report, seq: r.seq}
	return nil
}

// FindByID retrieves a report by its run ID.
func (r *ReportRepository) FindByID(_ context.Context, id values.RunID) (*execution.Report, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored, ok := r.reports[id.UUID()]
	if !ok {
		return nil, fmt.Errorf("report not found: %s", id)
	}
	return stored.report, nil
}

// FindByModel retrieves recent reports for a model, newest first. A limit of
// zero or less returns all of them.
func (r *ReportRepository) FindByModel(_ context.Context, modelName string, limit int) ([]*execution.Report, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matches []storedReport
	for _, stored := range r.reports {
		if stored.report.ModelName == modelName {
			matches = append(matches, stored)
		}
	}

	// Sort by start time descending, then by save order
	sort.Slice(matches, func(i, j int) bool {
		a, b := matches[i].report.StartTime, matches[j].report.StartTime
		if !a.Equal(b) {
			return a.After(b)
		}
		return matches[i].seq > matches[j].seq
	})

	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}

	out := make([]*execution.Report, len(matches))
	for i, m := range matches {
		out[i] = m.report
	}
	return out, nil
}

// Latest returns the newest report for a model, or nil when there is none.
func (r *ReportRepository) Latest(ctx context.Context, modelName string) (*execution.Report, error) {
	reports, err := r.FindByModel(ctx, modelName, 1)
	if err != nil || len(reports) == 0 {
		return nil, err
	}
	return reports[0], nil
}
