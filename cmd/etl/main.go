package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/fire-inspection-etl/internal/adapter/buildingstore"
	"github.com/couchcryptid/fire-inspection-etl/internal/adapter/cache"
	httpadapter "github.com/couchcryptid/fire-inspection-etl/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/fire-inspection-etl/internal/adapter/kafka"
	"github.com/couchcryptid/fire-inspection-etl/internal/adapter/reportdir"
	"github.com/couchcryptid/fire-inspection-etl/internal/config"
	"github.com/couchcryptid/fire-inspection-etl/internal/domain"
	"github.com/couchcryptid/fire-inspection-etl/internal/observability"
	"github.com/couchcryptid/fire-inspection-etl/internal/pipeline"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
)

// extractor is a pipeline source that must be closed on shutdown.
type extractor interface {
	pipeline.BatchExtractor
	Close() error
}

// readinessChecks is ready only when every check passes.
type readinessChecks []sharedobs.ReadinessChecker

func (r readinessChecks) CheckReadiness(ctx context.Context) error {
	for _, c := range r {
		if err := c.CheckReadiness(ctx); err != nil {
			return err
		}
	}
	return nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	parser, err := newParser(cfg)
	if err != nil {
		logger.Error("failed to load building names", "file", cfg.BuildingsFile, "error", err)
		os.Exit(1)
	}

	source, err := newSource(cfg, logger)
	if err != nil {
		logger.Error("failed to open report source", "source", cfg.ReportSource, "error", err)
		os.Exit(1)
	}

	writer := kafkaadapter.NewWriter(cfg, logger)
	loaders := []pipeline.BatchLoader{writer}

	store, err := buildingstore.Open(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to open building store", "backend", cfg.StoreBackend, "error", err)
		os.Exit(1)
	}
	if store != nil {
		cached := cache.NewStore(store, cfg.StoreCacheSize, metrics)
		loaders = append(loaders, pipeline.NewPopulator(cached, cfg.InspectionYear, logger, metrics,
			pipeline.WithCreateMissing(cfg.PopulateCreateMissing)))
		metrics.StoreEnabled.Set(1)
		logger.Info("building store enabled", "backend", store.Backend, "cache_size", cfg.StoreCacheSize, "year", cfg.InspectionYear)
	} else {
		logger.Info("building store disabled")
	}

	transformer := pipeline.NewTransformer(parser, metrics, logger)
	p := pipeline.New(source, transformer, pipeline.NewMultiLoader(loaders...), logger, metrics, cfg.BatchSize)

	ready := readinessChecks{p}
	if store != nil {
		ready = append(ready, store)
	}
	srv := httpadapter.NewServer(cfg.HTTPAddr, ready, parser, logger)

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start ETL pipeline.
	go func() {
		if err := p.Run(ctx); err != nil {
			logger.Error("pipeline error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := source.Close(); err != nil {
		logger.Error("report source close error", "error", err)
	}
	if err := writer.Close(); err != nil {
		logger.Error("kafka writer close error", "error", err)
	}
	if store != nil {
		if err := store.Close(); err != nil {
			logger.Error("building store close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}

func newParser(cfg *config.Config) (*domain.Parser, error) {
	opts := []domain.ParserOption{domain.WithMaxLines(cfg.MaxReportLines)}
	if cfg.BuildingsFile != "" {
		names, err := domain.LoadBuildingNameMap(cfg.BuildingsFile)
		if err != nil {
			return nil, err
		}
		opts = append(opts, domain.WithBuildingNameMap(names))
	}
	return domain.NewParser(opts...), nil
}

func newSource(cfg *config.Config, logger *slog.Logger) (extractor, error) {
	if cfg.ReportSource == config.SourceDir {
		var opts []reportdir.SourceOption
		if cfg.ReportDirWatch {
			opts = append(opts, reportdir.WithWatch(cfg.BatchFlushInterval))
		}
		return reportdir.NewSource(cfg.ReportDir, logger, opts...)
	}
	return kafkaadapter.NewReader(cfg, logger), nil
}
