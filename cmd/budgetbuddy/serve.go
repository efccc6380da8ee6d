package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/chrystalio/budget-buddy-api/internal/api"
	"github.com/chrystalio/budget-buddy-api/internal/app"
	"github.com/chrystalio/budget-buddy-api/internal/config"
	"github.com/chrystalio/budget-buddy-api/internal/store"
	"github.com/chrystalio/budget-buddy-api/pkg/notionclient"
	"github.com/chrystalio/budget-buddy-api/pkg/rabbitmq"
)

const shutdownTimeout = 10 * time.Second

func serveCmd(env *runtimeEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API (default)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), env)
		},
	}
}

// application is the object graph behind the HTTP server.
type application struct {
	router http.Handler
	probe  *app.UpstreamProbe
}

func newNotionClient(cfg *config.Config, logger *slog.Logger) *notionclient.Client {
	return notionclient.NewClient(cfg.NotionAPIBaseURL, cfg.NotionAPIKey,
		notionclient.WithVersion(cfg.NotionVersion),
		notionclient.WithTimeout(cfg.NotionTimeout()),
		notionclient.WithLogger(logger),
	)
}

func newUpstreamProbe(cfg *config.Config, client *notionclient.Client, logger *slog.Logger) *app.UpstreamProbe {
	return app.NewUpstreamProbe(client, []app.Collection{
		{Name: "transactions", DatabaseID: cfg.NotionTransactionsDatabaseID},
		{Name: "categories", DatabaseID: cfg.NotionCategoriesDatabaseID},
		{Name: "accounts", DatabaseID: cfg.NotionAccountsDatabaseID},
	}, logger)
}

// newPublisher connects to RabbitMQ when configured and falls back to the
// logging publisher otherwise.
func newPublisher(cfg *config.Config, logger *slog.Logger) rabbitmq.Publisher {
	if cfg.RabbitMQURL == "" {
		logger.Info("RABBITMQ_URL not set, category events will only be logged")
		return &rabbitmq.LogPublisher{Logger: logger}
	}
	producer, err := rabbitmq.NewEventProducer(cfg.RabbitMQURL)
	if err != nil {
		logger.Warn("failed to connect to RabbitMQ, using fallback publisher",
			"url", rabbitmq.RedactURL(cfg.RabbitMQURL), "error", err)
		return &rabbitmq.LogPublisher{Logger: logger}
	}
	logger.Info("connected to RabbitMQ", "url", rabbitmq.RedactURL(cfg.RabbitMQURL), "exchange", cfg.RabbitMQExchange)
	return producer
}

func newApplication(cfg *config.Config, logger *slog.Logger, publisher rabbitmq.Publisher) *application {
	client := newNotionClient(cfg, logger)

	categoryRepo := app.NewPublishingCategoryRepository(
		store.NewCategoryRepository(client, cfg.NotionCategoriesDatabaseID),
		publisher, cfg.RabbitMQExchange, logger,
	)
	categories := app.NewCategoryService(categoryRepo)
	accounts := app.NewRecordService(store.NewRecordRepository(client, cfg.NotionAccountsDatabaseID, "Account"))
	transactions := app.NewRecordService(store.NewRecordRepository(client, cfg.NotionTransactionsDatabaseID, "Transaction"))
	probe := newUpstreamProbe(cfg, client, logger)

	responder := api.NewErrorResponder(logger, !cfg.IsProduction())
	handler := api.NewHandler(categories, accounts, transactions, probe, responder, cfg.AppEnv)

	return &application{
		router: api.NewRouter(handler, logger, cfg.AllowedOrigins()),
		probe:  probe,
	}
}

func runServe(ctx context.Context, env *runtimeEnv) error {
	cfg, logger := env.cfg, env.logger

	publisher := newPublisher(cfg, logger)
	defer publisher.Close()

	wired := newApplication(cfg, logger, publisher)

	scheduler := app.NewScheduler(wired.probe, cfg.UpstreamProbeSchedule, logger)
	if err := scheduler.Start(); err != nil {
		return fmt.Errorf("schedule upstream probe: %w", err)
	}
	defer func() { <-scheduler.Stop().Done() }()

	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.ServerPort),
		Handler:           wired.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("starting server", "port", cfg.ServerPort, "environment", cfg.AppEnv, "version", version)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server failed to start: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	logger.Info("shutdown signal received, gracefully shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", "error", err)
	}

	logger.Info("server stopped")
	return nil
}
