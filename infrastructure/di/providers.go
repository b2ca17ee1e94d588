package di

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/makkenno/ittasu/application/ports"
	domainconfig "github.com/makkenno/ittasu/domain/config"
	"github.com/makkenno/ittasu/domain/core/valueobjects"
	"github.com/makkenno/ittasu/infrastructure/config"
	"github.com/makkenno/ittasu/infrastructure/messaging/eventbridge"
	"github.com/makkenno/ittasu/infrastructure/messaging/logbus"
	"github.com/makkenno/ittasu/infrastructure/observability"
	"github.com/makkenno/ittasu/infrastructure/persistence/dynamodb"
	"github.com/makkenno/ittasu/infrastructure/persistence/memory"
	"github.com/makkenno/ittasu/infrastructure/templates"
)

// ProvideLogger creates a new logger instance. The cleanup flushes buffered entries.
func ProvideLogger(cfg *config.Config) (*zap.Logger, func(), error) {
	var zapCfg zap.Config
	if cfg.IsProduction() {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", cfg.LogLevel, err)
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, nil, err
	}
	return logger, func() { _ = logger.Sync() }, nil
}

// ProvideDomainConfig selects the engine limits for the environment
func ProvideDomainConfig(cfg *config.Config) *domainconfig.DomainConfig {
	return domainconfig.LoadDomainConfig(cfg.Environment)
}

// ProvideIDGenerator creates the id generator for new tasks, edges and templates
func ProvideIDGenerator() valueobjects.IDGenerator {
	return valueobjects.NewUUIDGenerator()
}

// ProvideClock returns wall-clock time
func ProvideClock() valueobjects.Clock {
	return valueobjects.SystemClock
}

// ProvideAWSConfig creates AWS configuration
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
}

// ProvideWorkspaceRepository creates the repository for the configured storage backend
func ProvideWorkspaceRepository(awsCfg aws.Config, cfg *config.Config, logger *zap.Logger) ports.WorkspaceRepository {
	if cfg.StorageBackend == config.StorageDynamoDB {
		logger.Info("Using DynamoDB workspace storage", zap.String("table", cfg.DynamoDBTable))
		return dynamodb.NewWorkspaceRepository(awsdynamodb.NewFromConfig(awsCfg), cfg.DynamoDBTable, logger)
	}
	logger.Info("Using in-memory workspace storage")
	return memory.NewWorkspaceRepository()
}

// ProvideEventPublisher creates the publisher for the configured event bus
func ProvideEventPublisher(awsCfg aws.Config, cfg *config.Config, logger *zap.Logger) ports.EventPublisher {
	if cfg.EventBus == config.EventBusEventBridge {
		logger.Info("Publishing events to EventBridge", zap.String("eventBus", cfg.EventBusName))
		return eventbridge.NewPublisher(awseventbridge.NewFromConfig(awsCfg), cfg.EventBusName, cfg.EventSource, logger)
	}
	return logbus.NewPublisher(logger)
}

// ProvideTemplateCatalog loads the built-in templates
func ProvideTemplateCatalog(cfg *config.Config, logger *zap.Logger) (ports.TemplateCatalog, error) {
	return templates.LoadCatalog(cfg.TemplatesFile, logger)
}

// ProvideCollector creates the Prometheus collector, nil when metrics are disabled
func ProvideCollector(cfg *config.Config) *observability.Collector {
	if !cfg.EnableMetrics {
		return nil
	}
	return observability.NewCollector("ittasu")
}

// ProvideMetrics exposes the collector to the application layer
func ProvideMetrics(collector *observability.Collector) ports.Metrics {
	if collector == nil {
		return observability.Noop{}
	}
	return collector
}
