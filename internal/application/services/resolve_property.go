package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/reglet-dev/verity/internal/application/dto"
	apperrors "github.com/reglet-dev/verity/internal/application/errors"
	"github.com/reglet-dev/verity/internal/application/ports"
	"github.com/reglet-dev/verity/internal/domain/services"
)

// ResolvePropertyUseCase resolves a single design property of a model.
type ResolvePropertyUseCase struct {
	loader ports.ModelLoader
	logger *slog.Logger
}

// NewResolvePropertyUseCase creates a new resolve property use case.
func NewResolvePropertyUseCase(loader ports.ModelLoader, logger *slog.Logger) *ResolvePropertyUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &ResolvePropertyUseCase{loader: loader, logger: logger}
}

// Execute loads the model and resolves the requested property. Resolution
// failures are returned as errors wrapping the domain cause.
func (uc *ResolvePropertyUseCase) Execute(ctx context.Context, req dto.ResolvePropertyRequest) (*dto.ResolvePropertyResponse, error) {
	if req.Subsystem == "" || req.Property == "" {
		return nil, apperrors.NewValidationError("property", "expected <subsystem>.<property>")
	}
	scope, err := services.ParseReferenceScope(req.ReferenceScope)
	if err != nil {
		return nil, apperrors.NewValidationError("reference_scope", err.Error())
	}

	model, err := uc.loader.LoadModel(ctx, req.ModelPath)
	if err != nil {
		return nil, err
	}

	subsystem, ok := model.Project.Lookup(req.Subsystem)
	if !ok {
		return nil, apperrors.NewValidationError("subsystem", fmt.Sprintf("no subsystem named %q in %s", req.Subsystem, model.Name))
	}
	design := subsystem.Design()
	if design == nil {
		return nil, apperrors.NewValidationError("subsystem", fmt.Sprintf("%s has no design", subsystem))
	}
	pv, ok := design.Property(req.Property)
	if !ok {
		return nil, apperrors.NewValidationError("property", fmt.Sprintf("%s has no property %q", design, req.Property),
			design.PropertyNames()...)
	}

	resolver := services.NewPropertyResolver(services.ResolverOptions{Logger: uc.logger, ReferenceScope: scope})
	res, err := resolver.ResolveDetailed(design, req.Property)
	if err != nil {
		return nil, err
	}

	resp := &dto.ResolvePropertyResponse{
		Subsystem:  subsystem.Name(),
		Design:     design.Name(),
		Property:   req.Property,
		Kind:       pv.Kind().String(),
		Definition: pv.Text(),
		Value:      res.Value.String(),
		Canonical:  res.Value.Canonical().String(),
	}
	for _, ex := range res.Exclusions {
		resp.Exclusions = append(resp.Exclusions, fmt.Sprintf("%s: %v", ex.Subsystem.Name(), ex.Err))
	}
	return resp, nil
}
