package main

import (
	"context"
	"os"
	"time"

	"github.com/LukasAlexandre/Finance-Hub/internal/amqp"
	"github.com/LukasAlexandre/Finance-Hub/internal/categories"
	"github.com/LukasAlexandre/Finance-Hub/internal/cli"
	"github.com/LukasAlexandre/Finance-Hub/internal/export"
	"github.com/LukasAlexandre/Finance-Hub/internal/services"
	"github.com/LukasAlexandre/Finance-Hub/internal/source"
	"github.com/LukasAlexandre/Finance-Hub/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()

	logger.Info("Starting export-worker")

	cfg := cli.LoadAndValidateConfig(logger)
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the export worker")
		os.Exit(1)
	}

	sqliteRepo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer sqliteRepo.Close()

	ruleset := categories.DefaultRuleset()
	if cfg.RulesetPath != "" {
		var err error
		ruleset, err = categories.LoadRuleset(cfg.RulesetPath)
		if err != nil {
			logger.Error("Failed to load category ruleset", "error", err, "path", cfg.RulesetPath)
			os.Exit(1)
		}
	}

	// The worker always exports what was synced into the local store,
	// regardless of which source the API serves from.
	localCfg := *cfg
	localCfg.DataSource = string(source.SQLiteSource)
	result, err := source.NewFactory(logger).CreateSource(context.Background(), &localCfg, sqliteRepo)
	if err != nil {
		logger.Error("Failed to initialize transaction source", "error", err)
		os.Exit(1)
	}

	txService := services.NewTransactionService(result.Source, sqliteRepo, ruleset, nil)

	exporter, err := export.NewSheetsExporter(context.Background(), export.Config{
		SpreadsheetID:   cfg.GoogleSpreadsheetID,
		SheetName:       cfg.GoogleSheetName,
		CredentialsFile: cfg.GoogleCredentialsFile,
		CredentialsJSON: cfg.GoogleCredentialsJSON,
	})
	if err != nil {
		logger.Error("Failed to initialize Google Sheets exporter", "error", err)
		os.Exit(1)
	}
	logger.Info("Google Sheets exporter initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID, "sheet", cfg.GoogleSheetName)

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	exportWorker := worker.NewExportWorker(txService, exporter, cfg.SyncBatchSize)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)

	go func() {
		if err := amqpClient.ConsumeExports(ctx, exportWorker.HandleExportMessage); err != nil && err != context.Canceled {
			logger.Error("Message consumption failed", "error", err)
		}
	}()

	logger.Info("Export worker ready", "queue", cfg.AMQPQueue, "batch_size", cfg.SyncBatchSize)
	cli.WaitForShutdown(ctx, done)
}
