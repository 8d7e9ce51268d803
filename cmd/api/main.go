package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"contextly/internal/backend"
	"contextly/internal/config"
	"contextly/internal/export"
	"contextly/internal/logger"
	"contextly/internal/otel"
	"contextly/internal/server"
	"contextly/internal/service"
	"contextly/internal/session"
	"contextly/internal/storage"
	"contextly/internal/validation"
)

// @title Contextly API
// @version 1.0
// @description Upload documents, ask questions about them, and export selected answers as PDF.
// @BasePath /
func main() {
	cfg := config.Load()

	log := logger.New(cfg.Log)
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx, log)
	if err != nil {
		log.Fatal("failed to initialize tracing", zap.Error(err))
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(sctx)
	}()

	// Export archiving is optional; without MinIO settings exports are only downloaded.
	var objStore storage.Storage
	if cfg.MinIO.Endpoint != "" {
		objStore, err = storage.NewMinIO(ctx, cfg.MinIO)
		if err != nil {
			log.Fatal("failed to initialize object storage", zap.Error(err))
		}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics, err := service.NewMetrics(reg)
	if err != nil {
		log.Fatal("failed to register metrics", zap.Error(err))
	}

	client := backend.New(cfg.Backend)
	layout := export.DefaultLayout()
	layout.Title = cfg.Export.Title
	layout.WrapWidth = cfg.Export.WrapWidth
	validator := validation.New(cfg.Upload.AcceptedExtensions)

	sessions := service.NewSessionService(client, client, export.NewPDFRenderer(layout, cfg.Export.FileName), objStore, service.Options{
		TTL:           time.Duration(cfg.Session.TTLMin) * time.Minute,
		CleanupEvery:  time.Duration(cfg.Session.CleanupMin) * time.Minute,
		CommitPolicy:  session.ParseCommitPolicy(cfg.Upload.CommitPolicy),
		ArchivePrefix: cfg.Export.ArchivePrefix,
		ExportName:    cfg.Export.FileName,
		Validator:     validator,
		Logger:        log,
		Metrics:       metrics,
	})

	app, err := server.New(cfg, server.Deps{
		Sessions:  sessions,
		Validator: validator,
		Probe:     client,
		Registry:  reg,
		Logger:    log,
	})
	if err != nil {
		log.Fatal("failed to build server", zap.Error(err))
	}

	go func() {
		<-ctx.Done()
		_ = app.ShutdownWithTimeout(10 * time.Second)
	}()

	addr := ":" + cfg.Port
	log.Info("server starting", zap.String("addr", addr), zap.String("backend", cfg.Backend.BaseURL))
	if err := app.Listen(addr); err != nil {
		log.Fatal("failed to start server", zap.Error(err))
	}
}
