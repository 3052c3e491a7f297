package services

import (
	"context"
	"log/slog"

	"github.com/reglet-dev/verity/internal/application/dto"
	apperrors "github.com/reglet-dev/verity/internal/application/errors"
	"github.com/reglet-dev/verity/internal/application/ports"
	"github.com/reglet-dev/verity/internal/domain/services"
	"golang.org/x/sync/errgroup"
)

// ValidateModelsUseCase checks many manifests concurrently. Each manifest
// builds its own independent graph.
type ValidateModelsUseCase struct {
	loader ports.ModelLoader
	logger *slog.Logger
}

// NewValidateModelsUseCase creates a new validate models use case.
func NewValidateModelsUseCase(loader ports.ModelLoader, logger *slog.Logger) *ValidateModelsUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &ValidateModelsUseCase{loader: loader, logger: logger}
}

// Execute validates every path. Problems are recorded per manifest; the
// returned error is reserved for an invalid request and cancellation.
func (uc *ValidateModelsUseCase) Execute(ctx context.Context, req dto.ValidateModelsRequest) (*dto.ValidateModelsResponse, error) {
	scope, err := services.ParseReferenceScope(req.ReferenceScope)
	if err != nil {
		return nil, apperrors.NewValidationError("reference_scope", err.Error())
	}

	results := make([]dto.ModelValidation, len(req.Paths))

	g, gctx := errgroup.WithContext(ctx)
	if req.Concurrency > 0 {
		g.SetLimit(req.Concurrency)
	}

	for i, path := range req.Paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = uc.validate(gctx, path, req.ResolveProperties, scope)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &dto.ValidateModelsResponse{Results: results}, nil
}

func (uc *ValidateModelsUseCase) validate(ctx context.Context, path string, resolve bool, scope services.ReferenceScope) dto.ModelValidation {
	out := dto.ModelValidation{Path: path}

	model, err := uc.loader.LoadModel(ctx, path)
	if err != nil {
		uc.logger.Debug("manifest rejected", "path", path, "error", err)
		out.Errors = append(out.Errors, err.Error())
		return out
	}
	out.Model = model.Name
	if !resolve {
		return out
	}

	resolver := services.NewPropertyResolver(services.ResolverOptions{Logger: uc.logger, ReferenceScope: scope})
	for _, s := range model.Project.Subsystems() {
		d := s.Design()
		if d == nil {
			continue
		}
		for _, name := range d.PropertyNames() {
			out.Properties++
			if _, err := resolver.Resolve(d, name); err != nil {
				out.Errors = append(out.Errors, err.Error())
			}
		}
	}
	uc.logger.Debug("manifest validated", "path", path, "properties", out.Properties, "errors", len(out.Errors))
	return out
}
