package config

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"
	"github.com/reglet-dev/verity/internal/application/dto"
	apperrors "github.com/reglet-dev/verity/internal/application/errors"
	"github.com/reglet-dev/verity/internal/version"
)

// ModelLoader loads manifests from YAML files and builds their models.
type ModelLoader struct {
	builder     *Builder
	substitutor *VariableSubstitutor
	logger      *slog.Logger
	version     version.Info
}

// LoaderOption configures a ModelLoader.
type LoaderOption func(*ModelLoader)

// WithVersion sets the build version checked against a manifest's
// model.requires constraint.
func WithVersion(info version.Info) LoaderOption {
	return func(l *ModelLoader) { l.version = info }
}

// NewModelLoader creates a new model loader.
func NewModelLoader(logger *slog.Logger, opts ...LoaderOption) *ModelLoader {
	if logger == nil {
		logger = slog.Default()
	}
	l := &ModelLoader{
		builder:     NewBuilder(logger),
		substitutor: NewVariableSubstitutor(),
		logger:      logger,
		version:     version.Get(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// LoadModel reads the manifest at path and builds it.
func (l *ModelLoader) LoadModel(ctx context.Context, path string) (*dto.Model, error) {
	// Security: Use os.OpenRoot to prevent path traversal attacks
	root, err := os.OpenRoot(filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open manifest directory: %w", err)
	}
	defer func() {
		_ = root.Close() // Best-effort cleanup
	}()

	file, err := root.Open(filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open manifest: %w", err)
	}
	defer func() {
		_ = file.Close() // Best-effort cleanup
	}()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	return l.LoadModelFromBytes(ctx, data, path)
}

// LoadModelFromBytes builds a model from manifest YAML. source names the
// manifest in errors and reports.
func (l *ModelLoader) LoadModelFromBytes(ctx context.Context, data []byte, source string) (*dto.Model, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	manifest, err := l.parse(data)
	if err != nil {
		var manifestErr *ManifestError
		if errors.As(err, &manifestErr) {
			return nil, apperrors.NewValidationError("manifest", "invalid manifest "+source, manifestErr.Problems...)
		}
		return nil, apperrors.NewValidationError("manifest", fmt.Sprintf("%s: %v", source, err))
	}

	if manifest.Model.Requires != "" {
		ok, err := l.version.Satisfies(manifest.Model.Requires)
		if err != nil {
			return nil, apperrors.NewValidationError("model.requires", err.Error())
		}
		if !ok {
			return nil, apperrors.NewValidationError("model.requires",
				fmt.Sprintf("%s requires verity %s, this is %s", source, manifest.Model.Requires, l.version.Version))
		}
	}

	model, err := l.builder.Build(manifest)
	if err != nil {
		return nil, apperrors.NewModelError(source, manifest.Model.Name, err)
	}
	model.Source = source

	l.logger.Debug("manifest loaded", "source", source, "model", model.Name)
	return model, nil
}

// parse validates data against the schema, decodes it, expands variables
// and applies defaults.
func (l *ModelLoader) parse(data []byte) (*Manifest, error) {
	if err := ValidateSchema(data); err != nil {
		return nil, err
	}

	var manifest Manifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("failed to decode manifest YAML: %w", err)
	}
	if err := l.substitutor.Substitute(&manifest); err != nil {
		return nil, fmt.Errorf("variable substitution failed: %w", err)
	}

	manifest.ApplyDefaults()
	if err := manifest.Validate(); err != nil {
		return nil, err
	}
	return &manifest, nil
}
