// Package services contains application use cases.
package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/reglet-dev/verity/internal/application/dto"
	apperrors "github.com/reglet-dev/verity/internal/application/errors"
	"github.com/reglet-dev/verity/internal/application/ports"
	"github.com/reglet-dev/verity/internal/domain/execution"
	"github.com/reglet-dev/verity/internal/domain/repositories"
	"github.com/reglet-dev/verity/internal/domain/services"
	"github.com/reglet-dev/verity/internal/domain/values"
	"github.com/reglet-dev/verity/internal/version"
)

// VerifyModelUseCase loads a model, verifies it, stores the report and
// returns the filtered view.
type VerifyModelUseCase struct {
	loader  ports.ModelLoader
	reports repositories.ReportRepository
	filter  *services.ResultFilter
	logger  *slog.Logger
}

// NewVerifyModelUseCase creates a new verify model use case. reports may be
// nil, in which case nothing is stored and no diff is computed.
func NewVerifyModelUseCase(
	loader ports.ModelLoader,
	reports repositories.ReportRepository,
	filter *services.ResultFilter,
	logger *slog.Logger,
) *VerifyModelUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	if filter == nil {
		filter = services.NewResultFilter()
	}
	return &VerifyModelUseCase{
		loader:  loader,
		reports: reports,
		filter:  filter,
		logger:  logger,
	}
}

// Execute runs the verify workflow.
func (uc *VerifyModelUseCase) Execute(ctx context.Context, req dto.VerifyModelRequest) (*dto.VerifyModelResponse, error) {
	startTime := time.Now()

	// Filters are checked before any work is done.
	selector, err := uc.buildSelector(req.Filters)
	if err != nil {
		return nil, err
	}
	scope, err := services.ParseReferenceScope(req.Options.ReferenceScope)
	if err != nil {
		return nil, apperrors.NewValidationError("reference_scope", err.Error())
	}

	uc.logger.Info("loading model", "path", req.ModelPath)
	model, err := uc.loader.LoadModel(ctx, req.ModelPath)
	if err != nil {
		return nil, err
	}

	report := execution.NewReport(model.Name, model.Version)
	report.Source = model.Source
	report.VerityVersion = version.Get().Version

	extra := model.Requirements
	if !req.Options.IncludeUnallocated {
		extra = nil
	}

	resolver := services.NewPropertyResolver(services.ResolverOptions{Logger: uc.logger, ReferenceScope: scope})
	verifier := services.NewVerifier(resolver, uc.logger)
	report.AddResults(verifier.Verify(model.Project.System(), extra...)...)
	report.Finalize()

	uc.logger.Info("verification complete",
		"model", model.Name,
		"results", report.Summary.Total,
		"errors", report.Summary.Errors,
		"warnings", report.Summary.Warnings,
		"duration", report.Duration)

	resp := &dto.VerifyModelResponse{
		Report: selector.Select(report),
		Full:   report,
		Metadata: dto.ResponseMetadata{
			RequestID:   req.Metadata.RequestID,
			ProcessedAt: time.Now(),
			Duration:    time.Since(startTime),
		},
	}

	if uc.reports != nil {
		previous, err := uc.reports.Latest(ctx, model.Name)
		if err != nil {
			uc.logger.Warn("failed to load previous report", "model", model.Name, "error", err)
		}
		resp.Diff = services.DiffReports(previous, report)
		if err := uc.reports.Save(ctx, report); err != nil {
			uc.logger.Warn("failed to store report", "run_id", report.RunID.Short(), "error", err)
		}
	}

	return resp, nil
}

func (uc *VerifyModelUseCase) buildSelector(f dto.FilterOptions) (*services.ResultSelector, error) {
	selector := services.NewResultSelector().
		WithCodes(f.Codes).
		WithOwnerKinds(f.OwnerKinds)

	if f.MinSeverity != "" {
		sev, err := values.NewSeverity(f.MinSeverity)
		if err != nil {
			return nil, apperrors.NewValidationError("min_severity", err.Error())
		}
		selector.WithMinSeverity(sev)
	}

	if f.FilterExpression != "" {
		program, err := uc.filter.Compile(f.FilterExpression)
		if err != nil {
			return nil, apperrors.NewValidationError("filter", "invalid filter expression", err.Error())
		}
		selector.WithFilterExpression(program)
	}
	return selector, nil
}
