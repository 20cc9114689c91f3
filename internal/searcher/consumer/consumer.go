// Package consumer reads ingest events from Kafka and indexes them into the
// search engine via the query executor. After a successful index it marks the
// document INDEXED in PostgreSQL, invalidates the query cache, and emits an
// analytics index event.
package consumer

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/vectorsearchlab/platform/internal/analytics"
	"github.com/vectorsearchlab/platform/internal/analytics/collector"
	"github.com/vectorsearchlab/platform/internal/ingestion"
	"github.com/vectorsearchlab/platform/internal/searcher/cache"
	"github.com/vectorsearchlab/platform/internal/searcher/executor"
	"github.com/vectorsearchlab/platform/pkg/kafka"
	"github.com/vectorsearchlab/platform/pkg/metrics"
)

// IndexConsumer wraps a Kafka consumer to drive the indexing pipeline.
type IndexConsumer struct {
	consumer *kafka.Consumer
	logger   *slog.Logger
}

// New creates an IndexConsumer backed by the given Kafka consumer.
func New(kafkaConsumer *kafka.Consumer) *IndexConsumer {
	return &IndexConsumer{
		consumer: kafkaConsumer,
		logger:   slog.Default().With("component", "index-consumer"),
	}
}

// Start begins consuming Kafka messages. It blocks until ctx is cancelled.
func (ic *IndexConsumer) Start(ctx context.Context) error {
	ic.logger.Info("index consumer starting")
	return ic.consumer.Start(ctx)
}

// HandleMessage returns a Kafka MessageHandler that indexes each ingest
// event. db, queryCache, batch, and m may be nil; the corresponding side
// effects are then skipped. Undecodable events are logged and dropped so a
// poison message cannot wedge the partition.
func HandleMessage(
	exec *executor.Executor,
	db *sql.DB,
	queryCache *cache.QueryCache,
	batch *collector.BatchCollector,
	m *metrics.Metrics,
) kafka.MessageHandler {
	logger := slog.Default().With("component", "index-consumer")
	return func(ctx context.Context, key []byte, value []byte) error {
		event, err := kafka.DecodeJSON[ingestion.IngestEvent](value)
		if err != nil {
			logger.Error("failed to decode ingest event",
				"error", err,
				"key", string(key),
			)
			return nil
		}

		start := time.Now()
		tokenCount := exec.Index(event.DocumentID, event.Text)
		latencyMs := time.Since(start).Milliseconds()

		updateDocStatus(ctx, db, event.DocumentID, "INDEXED", logger)

		if queryCache != nil {
			// Cached rankings may be stale against the grown corpus.
			if err := queryCache.Invalidate(ctx); err != nil {
				logger.Error("cache invalidation failed", "error", err)
			}
		}

		if m != nil {
			m.DocsIndexedTotal.Inc()
			stats := exec.Stats()
			m.IndexedDocuments.Set(float64(stats.TotalDocuments))
			m.UniqueTerms.Set(float64(stats.UniqueTerms))
		}

		if batch != nil {
			batch.Track("analytics", analytics.IndexEvent{
				Type:       analytics.EventIndexDoc,
				DocumentID: event.DocumentID,
				TokenCount: tokenCount,
				SizeBytes:  len(event.Text),
				LatencyMs:  latencyMs,
				Timestamp:  time.Now().UTC(),
			})
		}

		logger.Info("document indexed",
			"doc_id", event.DocumentID,
			"token_count", tokenCount,
		)
		return nil
	}
}

// updateDocStatus updates the document's status and indexed_at timestamp in
// PostgreSQL. A nil db skips the update.
func updateDocStatus(ctx context.Context, db *sql.DB, docID, status string, logger *slog.Logger) {
	if db == nil {
		return
	}
	_, err := db.ExecContext(ctx,
		`UPDATE documents SET status = $1, indexed_at = NOW() WHERE id = $2`,
		status, docID,
	)
	if err != nil {
		logger.Error("failed to update document status",
			"doc_id", docID,
			"status", status,
			"error", err,
		)
	}
}
