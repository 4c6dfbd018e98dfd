package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/buslane/buslane/internal/config"
	"github.com/buslane/buslane/internal/domain"
	"github.com/buslane/buslane/internal/loader"
	"github.com/buslane/buslane/internal/logger"
	"github.com/buslane/buslane/internal/mapper"
	"github.com/buslane/buslane/internal/repository"
	"github.com/buslane/buslane/internal/schema"
	"github.com/buslane/buslane/internal/tabular"
	"github.com/google/uuid"
)

func main() {
	appLogger := logger.New(&logger.Config{
		Level:       "info",
		Format:      "text",
		ServiceName: "buslane-import-cli",
	})
	logger.SetDefault(appLogger)

	filePath := flag.String("file", "", "Path to the .csv/.tsv/.xlsx file to import")
	schemaID := flag.String("schema", "", "Target schema id (students, routes, stops, contracts, performance)")
	batchSize := flag.Int("batch", loader.DefaultBatchSize, "Records per sink write")
	actor := flag.String("actor", "cli", "Actor recorded on the audit row")
	configPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	if *filePath == "" || *schemaID == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to load config")
	}

	db, err := repository.InitDB(&cfg.Database)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize database")
	}

	registry := schema.NewRegistry()
	def, err := registry.Get(*schemaID)
	if err != nil {
		appLogger.WithError(err).Fatal("Unknown schema")
	}

	data, err := os.ReadFile(*filePath)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to read file")
	}

	doc, err := tabular.Parse(filepath.Base(*filePath), data)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to parse file")
	}

	mapping := mapper.AutoMap(doc.Headers, def)
	validation := mapper.Validate(doc, mapping, def, mapper.DefaultPreviewRows)
	if !validation.Ready() {
		appLogger.WithField("missing", strings.Join(validation.MissingRequiredFields, ", ")).
			Fatal("Required fields could not be mapped from the file headers")
	}

	appLogger.WithFields(logger.Fields{
		logger.FieldSchema: def.ID,
		"file":             doc.FileName,
		"rows":             doc.RowCount(),
		"invalid_rows":     validation.InvalidRowCount,
	}).Info("Starting import")

	// Cancel between batches on Ctrl-C; written batches stay written.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		appLogger.Info("Received shutdown signal, canceling...")
		cancel()
	}()

	sink := repository.NewSinkRepository(db, registry.SinkNames())
	result, err := loader.New(sink).Load(ctx, doc, mapping, def, loader.Options{
		BatchSize: *batchSize,
		Progress: func(percent int) {
			fmt.Fprintf(os.Stderr, "\rprogress: %3d%%", percent)
		},
	})
	fmt.Fprintln(os.Stderr)
	if err != nil {
		appLogger.WithError(err).Fatal("Load failed")
	}

	audit := &domain.ImportAudit{
		ID:           uuid.New().String(),
		SchemaID:     def.ID,
		FileName:     doc.FileName,
		TotalRows:    result.TotalRows,
		ImportedRows: result.ImportedCount,
		SkippedRows:  result.SkippedCount,
		ErrorRows:    result.ErrorCount,
		Actor:        *actor,
		CreatedAt:    time.Now(),
	}
	// The audit must land even when the run was canceled mid-file.
	if err := repository.NewAuditRepository(db).Create(context.Background(), audit); err != nil {
		appLogger.WithError(err).Error("Failed to persist import audit")
	}

	appLogger.WithFields(logger.Fields{
		"imported": result.ImportedCount,
		"skipped":  result.SkippedCount,
		"errored":  result.ErrorCount,
		"total":    result.TotalRows,
	}).Info("Import completed")
}
