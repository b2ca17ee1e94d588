//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"github.com/google/wire"
	"go.uber.org/zap"

	"github.com/makkenno/ittasu/application/services"
	"github.com/makkenno/ittasu/infrastructure/config"
	"github.com/makkenno/ittasu/infrastructure/observability"
	"github.com/makkenno/ittasu/interfaces/http/rest"
)

// Container holds all application dependencies
type Container struct {
	Config    *config.Config
	Logger    *zap.Logger
	Service   *services.WorkspaceService
	Collector *observability.Collector
	Router    *rest.Router
}

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	ProvideLogger,
	ProvideDomainConfig,
	ProvideIDGenerator,
	ProvideClock,
	ProvideAWSConfig,
	ProvideWorkspaceRepository,
	ProvideEventPublisher,
	ProvideTemplateCatalog,
	ProvideCollector,
	ProvideMetrics,
	services.NewWorkspaceService,
	rest.NewRouter,
	wire.Struct(new(Container), "*"),
)

// InitializeContainer creates a fully wired container
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, func(), error) {
	wire.Build(SuperSet)
	return nil, nil, nil // Wire will replace this
}
