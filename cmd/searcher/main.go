// Command searcher starts the search service.
//
// It owns the in-memory vector-space engine, serves ranked queries over HTTP,
// consumes ingest events from Kafka to keep the index current, and runs the
// analytics aggregation pipeline with periodic PostgreSQL snapshots.
//
// Usage:
//
//	go run ./cmd/searcher [-config configs/development.yaml]
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/vectorsearchlab/platform/internal/analytics"
	"github.com/vectorsearchlab/platform/internal/analytics/aggregator"
	"github.com/vectorsearchlab/platform/internal/analytics/collector"
	"github.com/vectorsearchlab/platform/internal/indexer"
	"github.com/vectorsearchlab/platform/internal/searcher/cache"
	"github.com/vectorsearchlab/platform/internal/searcher/consumer"
	"github.com/vectorsearchlab/platform/internal/searcher/executor"
	"github.com/vectorsearchlab/platform/internal/searcher/handler"
	"github.com/vectorsearchlab/platform/pkg/config"
	"github.com/vectorsearchlab/platform/pkg/health"
	"github.com/vectorsearchlab/platform/pkg/kafka"
	"github.com/vectorsearchlab/platform/pkg/logger"
	"github.com/vectorsearchlab/platform/pkg/metrics"
	"github.com/vectorsearchlab/platform/pkg/middleware"
	"github.com/vectorsearchlab/platform/pkg/postgres"
	pkgredis "github.com/vectorsearchlab/platform/pkg/redis"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting search service", "port", cfg.Server.Port)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
	var metricsShutdown func(context.Context) error
	if cfg.Metrics.Enabled {
		metricsShutdown = metrics.StartServer(cfg.Metrics.Port)
	}

	engine := indexer.New()
	exec := executor.New(engine)

	// Postgres holds source documents and analytics snapshots; the service
	// degrades to in-memory-only operation without it.
	db, err := postgres.New(cfg.Postgres)
	if err != nil {
		slog.Warn("postgres unavailable, document status tracking disabled", "error", err)
		db = nil
	} else {
		defer db.Close()
		slog.Info("connected to postgres")
	}

	var queryCache *cache.QueryCache
	redisClient, err := pkgredis.NewClient(cfg.Redis)
	if err != nil {
		slog.Warn("redis unavailable, search caching disabled", "error", err)
	} else {
		defer redisClient.Close()
		queryCache = cache.New(redisClient, cfg.Redis)
		slog.Info("search cache enabled",
			"addr", cfg.Redis.Addr,
			"ttl", cfg.Redis.CacheTTL,
		)
	}

	analyticsProducer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.AnalyticsEvents)
	defer analyticsProducer.Close()

	searchCollector := analytics.NewCollector(analyticsProducer, cfg.Analytics.BufferSize)
	searchCollector.Start(ctx)
	defer searchCollector.Close()

	indexCollector := collector.NewBatchCollector(analyticsProducer, cfg.Analytics.BatchSize, cfg.Analytics.FlushInterval)
	indexCollector.Start(ctx)
	slog.Info("analytics collectors started", "topic", cfg.Kafka.Topics.AnalyticsEvents)

	ingestHandler := consumer.HandleMessage(exec, sqlDB(db), queryCache, indexCollector, m)
	ingestConsumer := consumer.New(kafka.NewConsumer(cfg.Kafka, cfg.Kafka.Topics.DocumentIngest, ingestHandler))
	go func() {
		if err := ingestConsumer.Start(ctx); err != nil {
			slog.Error("index consumer error", "error", err)
		}
	}()

	// The aggregator and its consumer reference each other; the consumer's
	// handler resolves the aggregator lazily, per message.
	var agg *analytics.Aggregator
	analyticsConsumer := kafka.NewConsumer(cfg.Kafka, cfg.Kafka.Topics.AnalyticsEvents,
		func(ctx context.Context, key, value []byte) error {
			return analytics.HandleEvent(agg)(ctx, key, value)
		})
	agg = analytics.NewAggregator(analyticsConsumer)
	analyticsH := analytics.NewHandler(agg)
	go func() {
		if err := agg.Start(ctx); err != nil {
			slog.Error("analytics aggregator error", "error", err)
		}
	}()
	slog.Info("analytics aggregator started")

	if db != nil {
		store := aggregator.NewStore(db)
		store.StartPeriodicSave(ctx, agg, cfg.Analytics.SnapshotInterval)
	}

	checker := health.NewChecker()
	checker.Register("engine", func(ctx context.Context) health.ComponentHealth {
		stats := exec.Stats()
		return health.ComponentHealth{
			Status:  health.StatusUp,
			Message: fmt.Sprintf("%d documents indexed", stats.TotalDocuments),
		}
	})
	checker.Register("redis", func(ctx context.Context) health.ComponentHealth {
		if redisClient == nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: "not configured"}
		}
		if err := redisClient.Ping(ctx); err != nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: err.Error()}
		}
		return health.ComponentHealth{Status: health.StatusUp}
	})
	checker.Register("postgres", func(ctx context.Context) health.ComponentHealth {
		if db == nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: "not configured"}
		}
		if err := db.DB.PingContext(ctx); err != nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: err.Error()}
		}
		return health.ComponentHealth{Status: health.StatusUp}
	})

	h := handler.New(exec, queryCache, searchCollector, m, cfg.Search.DefaultLimit, cfg.Search.MaxResults)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/search", h.Search)
	mux.HandleFunc("GET /api/v1/stats", h.Stats)
	mux.HandleFunc("GET /api/v1/cache/stats", h.CacheStats)
	mux.HandleFunc("POST /api/v1/cache/invalidate", h.CacheInvalidate)
	mux.HandleFunc("GET /api/v1/analytics", analyticsH.Stats)
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())

	var chain http.Handler = mux
	chain = middleware.Timeout(cfg.Server.WriteTimeout)(chain)
	chain = middleware.Metrics(m)(chain)
	chain = middleware.RequestID(chain)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      chain,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
		if metricsShutdown != nil {
			if err := metricsShutdown(shutdownCtx); err != nil {
				slog.Error("metrics server shutdown error", "error", err)
			}
		}
	}()

	slog.Info("search service listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
	slog.Info("search service stopped")
}

// sqlDB unwraps the raw handle, tolerating a nil client.
func sqlDB(db *postgres.Client) *sql.DB {
	if db == nil {
		return nil
	}
	return db.DB
}
