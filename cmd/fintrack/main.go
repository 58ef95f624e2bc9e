package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/cache"
	"fintrack/internal/chart"
	"fintrack/internal/cli"
	apphttp "fintrack/internal/http"
	"fintrack/internal/log"
	"fintrack/internal/report"
	"fintrack/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentApp)

	cfg := cli.LoadAndValidateConfig(logger)
	loc := cfg.Location()

	repo := cli.InitRepository(context.Background(), logger, cfg)

	// Rendered charts are memoised and swept periodically.
	chartCache := cache.NewLRUCache[[]byte](cfg.ChartCacheSize, cfg.ChartCacheTTL)
	cacheManager := cache.NewManager(logger.WithComponent(log.ComponentCache).Logger)
	cacheManager.Register(chartCache)
	cacheManager.StartCleanup(time.Minute)

	agg := report.NewAggregator(repo)

	// Sheets exports are enabled only when a broker is configured.
	var publisher services.Publisher
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, Sheets export disabled", "error", err)
		} else {
			publisher = client
			logger.Info("Sheets export enabled", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	} else {
		logger.Info("AMQP disabled - Sheets export unavailable")
	}
	exports := services.NewExportService(agg, publisher)

	srv := apphttp.NewServer(apphttp.Options{
		Addr:            ":" + cfg.Port,
		OwnerHeader:     cfg.OwnerHeader,
		ReportTimeout:   cfg.ReportTimeout,
		ExportRateLimit: cfg.ExportRateLimit,
		Location:        loc,
		Logger:          logger,
	}, apphttp.Deps{
		Ledger:     services.NewLedgerService(repo),
		Aggregator: agg,
		Exports:    exports,
		Charts:     chart.NewRenderer(chartCache),
		Health:     repo,
	})

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		cacheManager.Stop()
		if err := exports.Close(); err != nil {
			logger.Warn("Failed to close AMQP client", "error", err)
		}
		if err := repo.Close(); err != nil {
			logger.Warn("Failed to close ledger", "error", err)
		}
	})

	logger.Info("Starting fintrack server",
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		"timezone", loc.String(),
		"sheets_export", exports.Enabled())
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		cli.Fatal("Server error", err)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
