package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/LukasAlexandre/Finance-Hub/internal/amqp"
	"github.com/LukasAlexandre/Finance-Hub/internal/categories"
	"github.com/LukasAlexandre/Finance-Hub/internal/cli"
	apphttp "github.com/LukasAlexandre/Finance-Hub/internal/http"
	"github.com/LukasAlexandre/Finance-Hub/internal/quotes"
	"github.com/LukasAlexandre/Finance-Hub/internal/services"
	"github.com/LukasAlexandre/Finance-Hub/internal/source"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()

	logger.Info("Starting financehub server")

	cfg := cli.LoadAndValidateConfig(logger)

	sqliteRepo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer sqliteRepo.Close()

	// Category rules come from the bundled defaults unless a YAML
	// ruleset is configured.
	ruleset := categories.DefaultRuleset()
	if cfg.RulesetPath != "" {
		var err error
		ruleset, err = categories.LoadRuleset(cfg.RulesetPath)
		if err != nil {
			logger.Error("Failed to load category ruleset", "error", err, "path", cfg.RulesetPath)
			os.Exit(1)
		}
		logger.Info("Loaded category ruleset", "path", cfg.RulesetPath, "categories", len(ruleset.Categories))
	}

	// AMQP is optional: without it syncs still persist locally, they
	// just never reach the export queue.
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		var err error
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		defer amqpClient.Close()
		logger.Info("AMQP client initialized", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	} else {
		logger.Info("AMQP disabled - no AMQP_URL provided")
	}

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)

	result, err := source.NewFactory(logger).CreateSource(ctx, cfg, sqliteRepo)
	if err != nil {
		logger.Error("Failed to initialize transaction source", "error", err)
		os.Exit(1)
	}
	if result.Cleanup != nil {
		defer result.Cleanup()
	}

	txService := services.NewTransactionService(result.Source, sqliteRepo, ruleset, amqpClient)

	// Periodic sync only makes sense against a remote source; the
	// sqlite source already is the local store.
	if cfg.DataSource == string(source.PluggySource) {
		go txService.SyncEvery(ctx, cfg.SyncInterval)
		logger.Info("Periodic sync enabled", "interval", cfg.SyncInterval)
	}

	quoteClient := quotes.NewClient(cfg.BrapiToken)
	assetService := services.NewAssetService(sqliteRepo, quoteClient, cfg.QuoteCacheTTL)

	srv := apphttp.NewServer(":"+cfg.Port, cfg.JWTSecret, sqliteRepo, txService, assetService)
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
	}()

	logger.Info("Starting financehub server", "port", cfg.Port, "data_source", cfg.DataSource)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	slog.Info("Server stopped gracefully")
}
