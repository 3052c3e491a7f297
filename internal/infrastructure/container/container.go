// Package container provides dependency injection for the application.
package container

import (
	"log/slog"

	"github.com/reglet-dev/verity/internal/application/ports"
	"github.com/reglet-dev/verity/internal/application/services"
	"github.com/reglet-dev/verity/internal/config"
	domainservices "github.com/reglet-dev/verity/internal/domain/services"
	"github.com/reglet-dev/verity/internal/domain/repositories"
	infraconfig "github.com/reglet-dev/verity/internal/infrastructure/config"
	"github.com/reglet-dev/verity/internal/infrastructure/output"
	"github.com/reglet-dev/verity/internal/infrastructure/persistence/memory"
	"github.com/reglet-dev/verity/internal/version"
)

// Container holds all application dependencies.
type Container struct {
	modelLoader      ports.ModelLoader
	formatterFactory ports.OutputFormatterFactory
	reports          repositories.ReportRepository
	verifyModel      *services.VerifyModelUseCase
	resolveProperty  *services.ResolvePropertyUseCase
	validateModels   *services.ValidateModelsUseCase
	logger           *slog.Logger
	cfg              config.Config
}

// Options configure the container.
type Options struct {
	Logger  *slog.Logger
	Version *version.Info
	Config  config.Config
}

// New creates a new dependency injection container.
func New(opts Options) (*Container, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Config == (config.Config{}) {
		opts.Config = config.Default()
	}
	if err := opts.Config.Validate(); err != nil {
		return nil, err
	}
	info := version.Get()
	if opts.Version != nil {
		info = *opts.Version
	}

	loader := infraconfig.NewModelLoader(opts.Logger, infraconfig.WithVersion(info))

	// Reports live for the lifetime of the process; watch mode diffs
	// successive runs against them.
	reports := memory.NewReportRepository()
	filter := domainservices.NewResultFilter()

	return &Container{
		modelLoader:      loader,
		formatterFactory: output.NewFormatterFactory(),
		reports:          reports,
		verifyModel:      services.NewVerifyModelUseCase(loader, reports, filter, opts.Logger),
		resolveProperty:  services.NewResolvePropertyUseCase(loader, opts.Logger),
		validateModels:   services.NewValidateModelsUseCase(loader, opts.Logger),
		logger:           opts.Logger,
		cfg:              opts.Config,
	}, nil
}

// VerifyModelUseCase returns the verify model use case.
func (c *Container) VerifyModelUseCase() *services.VerifyModelUseCase {
	return c.verifyModel
}

// ResolvePropertyUseCase returns the resolve property use case.
func (c *Container) ResolvePropertyUseCase() *services.ResolvePropertyUseCase {
	return c.resolveProperty
}

// ValidateModelsUseCase returns the validate models use case.
func (c *Container) ValidateModelsUseCase() *services.ValidateModelsUseCase {
	return c.validateModels
}

// ModelLoader returns the model loader port.
func (c *Container) ModelLoader() ports.ModelLoader {
	return c.modelLoader
}

// FormatterFactory returns the output formatter factory.
func (c *Container) FormatterFactory() ports.OutputFormatterFactory {
	return c.formatterFactory
}

// Reports returns the report repository.
func (c *Container) Reports() repositories.ReportRepository {
	return c.reports
}

// Config returns the runtime configuration.
func (c *Container) Config() config.Config {
	return c.cfg
}

// Logger returns the configured logger.
func (c *Container) Logger() *slog.Logger {
	return c.logger
}
