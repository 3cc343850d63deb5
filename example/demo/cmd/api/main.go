// The api command serves the example's read-model queries over HTTP.
//
// It wires the full dispatch pipeline: query shapes and handlers for the
// fantasy sports collections, the Postgres document store, and optional
// OpenTelemetry observability.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/querymill/readmodel-go/example/demo/httpapi"
	"github.com/querymill/readmodel-go/example/shared/shell/config"
	"github.com/querymill/readmodel-go/readmodel"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "api",
		Short:         "Read-model query API for fantasy sports statistics",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newServeCmd())
	root.AddCommand(newQueriesCmd())

	return root
}

func newServeCmd() *cobra.Command {
	var (
		addr            string
		driver          string
		collectionsFile string
		otelEnabled     bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP query API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), addr, driver, collectionsFile, otelEnabled)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().StringVar(&driver, "driver", "pgx", "database driver (pgx, sqldb or sqlx)")
	cmd.Flags().StringVar(&collectionsFile, "collections", "", "optional YAML file with collection descriptors")
	cmd.Flags().BoolVar(&otelEnabled, "observability", false, "enable OpenTelemetry metrics, tracing and log correlation")

	return cmd
}

func newQueriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "queries",
		Short: "List the registered query types and collections",
		RunE: func(cmd *cobra.Command, _ []string) error {
			types, err := buildTypeRegistry()
			if err != nil {
				return err
			}

			collections, err := buildCollectionResolver("")
			if err != nil {
				return err
			}

			cmd.Printf("query types: %s\n", strings.Join(types.Discriminators(), ", "))
			cmd.Printf("collections: %s\n", strings.Join(collections.Names(), ", "))

			return nil
		},
	}
}

func runServe(ctx context.Context, addr, driver, collectionsFile string, otelEnabled bool) error {
	config.LoadDotEnv()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	types, err := buildTypeRegistry()
	if err != nil {
		return err
	}

	handlers, err := buildHandlerRegistry()
	if err != nil {
		return err
	}

	collections, err := buildCollectionResolver(collectionsFile)
	if err != nil {
		return err
	}

	obs := buildObservability(otelEnabled)

	store, err := buildDocumentStore(ctx, driver, obs)
	if err != nil {
		return err
	}

	dispatcher, err := buildDispatcher(handlers, obs)
	if err != nil {
		return err
	}

	server := httpapi.NewServer(readmodel.NewDecoder(types), collections, dispatcher, store, obs.logger)

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           server.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- httpServer.ListenAndServe()
	}()

	obs.logger.Info("query api listening", "addr", addr, "driver", driver)

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err

	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		return httpServer.Shutdown(shutdownCtx)
	}
}
