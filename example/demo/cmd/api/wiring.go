package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"

	"github.com/querymill/readmodel-go/readmodel"
	"github.com/querymill/readmodel-go/readmodel/oteladapters"
	"github.com/querymill/readmodel-go/readmodel/postgresengine"

	"github.com/querymill/readmodel-go/example/features/query/playersbyname"
	"github.com/querymill/readmodel-go/example/features/query/playersbyposition"
	"github.com/querymill/readmodel-go/example/features/query/playersbyteam"
	"github.com/querymill/readmodel-go/example/features/query/teamsbyseason"
	"github.com/querymill/readmodel-go/example/shared/core"
	"github.com/querymill/readmodel-go/example/shared/shell/config"
)

const instrumentationName = "readmodel-api"

// buildTypeRegistry registers every query shape the demo serves.
func buildTypeRegistry() (readmodel.TypeRegistry, error) {
	return readmodel.NewTypeRegistry(
		playersbyteam.Descriptor(),
		playersbyposition.Descriptor(),
		playersbyname.Descriptor(),
		teamsbyseason.Descriptor(),
	)
}

// buildHandlerRegistry binds each shape to its single handler.
func buildHandlerRegistry() (*readmodel.HandlerRegistry, error) {
	handlers := readmodel.NewHandlerRegistry()

	if err := readmodel.Register[playersbyteam.Query](handlers, playersbyteam.NewQueryHandler()); err != nil {
		return nil, err
	}
	if err := readmodel.Register[playersbyposition.Query](handlers, playersbyposition.NewQueryHandler()); err != nil {
		return nil, err
	}
	if err := readmodel.Register[playersbyname.Query](handlers, playersbyname.NewQueryHandler()); err != nil {
		return nil, err
	}
	if err := readmodel.Register[teamsbyseason.Query](handlers, teamsbyseason.NewQueryHandler()); err != nil {
		return nil, err
	}

	return handlers, nil
}

// buildCollectionResolver loads collections from the YAML file when one is
// configured, otherwise falls back to the compiled-in defaults.
func buildCollectionResolver(collectionsFile string) (readmodel.CollectionResolver, error) {
	descriptors := core.DefaultCollections()

	if collectionsFile != "" {
		loaded, err := config.LoadCollectionsFile(collectionsFile)
		if err != nil {
			return readmodel.CollectionResolver{}, err
		}
		if len(loaded) == 0 {
			return readmodel.CollectionResolver{}, fmt.Errorf("collections file %q declares no collections", collectionsFile)
		}
		descriptors = loaded
	}

	return readmodel.NewCollectionResolver(descriptors[0], descriptors[1:]...)
}

// observabilityOptions bundles the configured collaborators for the store and
// the dispatcher.
type observabilityOptions struct {
	logger           readmodel.Logger
	contextualLogger readmodel.ContextualLogger
	metricsCollector readmodel.MetricsCollector
	tracingCollector readmodel.TracingCollector
}

// buildObservability wires structured logging always, plus OpenTelemetry
// metrics, tracing, and trace-correlated logging when enabled.
func buildObservability(otelEnabled bool) observabilityOptions {
	opts := observabilityOptions{
		logger: slog.New(slog.NewJSONHandler(os.Stdout, nil)),
	}

	if otelEnabled {
		opts.contextualLogger = oteladapters.NewSlogBridgeLogger(instrumentationName)
		opts.metricsCollector = oteladapters.NewMetricsCollector(otel.Meter(instrumentationName))
		opts.tracingCollector = oteladapters.NewTracingCollector(otel.Tracer(instrumentationName))
	}

	return opts
}

// buildDocumentStore opens the configured driver and wraps it in the store.
func buildDocumentStore(ctx context.Context, driver string, obs observabilityOptions) (postgresengine.DocumentStore, error) {
	storeOptions := storeOptionsFrom(obs)

	switch driver {
	case "pgx":
		pool, err := pgxpool.NewWithConfig(ctx, config.PostgresPGXPoolConfig())
		if err != nil {
			return postgresengine.DocumentStore{}, fmt.Errorf("creating pgx pool: %w", err)
		}

		if replicaConfig := config.PostgresPGXPoolReplicaConfig(); replicaConfig != nil {
			replica, replicaErr := pgxpool.NewWithConfig(ctx, replicaConfig)
			if replicaErr != nil {
				return postgresengine.DocumentStore{}, fmt.Errorf("creating replica pool: %w", replicaErr)
			}

			return postgresengine.NewDocumentStoreFromPGXPoolWithReplica(pool, replica, storeOptions...)
		}

		return postgresengine.NewDocumentStoreFromPGXPool(pool, storeOptions...)

	case "sqldb":
		return postgresengine.NewDocumentStoreFromSQLDB(config.PostgresSQLDBConfig(), storeOptions...)

	case "sqlx":
		return postgresengine.NewDocumentStoreFromSQLX(config.PostgresSQLXConfig(), storeOptions...)
	}

	return postgresengine.DocumentStore{}, fmt.Errorf("unknown driver %q (want pgx, sqldb or sqlx)", driver)
}

func storeOptionsFrom(obs observabilityOptions) []postgresengine.Option {
	options := []postgresengine.Option{postgresengine.WithLogger(obs.logger)}

	if obs.contextualLogger != nil {
		options = append(options, postgresengine.WithContextualLogger(obs.contextualLogger))
	}
	if obs.metricsCollector != nil {
		options = append(options, postgresengine.WithMetrics(obs.metricsCollector))
	}
	if obs.tracingCollector != nil {
		options = append(options, postgresengine.WithTracing(obs.tracingCollector))
	}

	return options
}

// buildDispatcher assembles the dispatcher over the handler registry.
func buildDispatcher(handlers *readmodel.HandlerRegistry, obs observabilityOptions) (readmodel.Dispatcher, error) {
	dispatcherOptions := []readmodel.DispatcherOption{readmodel.WithLogger(obs.logger)}

	if obs.contextualLogger != nil {
		dispatcherOptions = append(dispatcherOptions, readmodel.WithContextualLogger(obs.contextualLogger))
	}
	if obs.metricsCollector != nil {
		dispatcherOptions = append(dispatcherOptions, readmodel.WithMetrics(obs.metricsCollector))
	}
	if obs.tracingCollector != nil {
		dispatcherOptions = append(dispatcherOptions, readmodel.WithTracing(obs.tracingCollector))
	}

	return readmodel.NewDispatcher(handlers, dispatcherOptions...)
}
