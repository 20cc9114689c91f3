// Package publisher persists documents to PostgreSQL and publishes ingest
// events to Kafka for downstream indexing. Writes are idempotent: an
// idempotency key returns the original response, and re-ingesting an existing
// document ID overwrites the stored document.
//
// It requires a `documents` table:
//
//	CREATE TABLE documents (
//	    id              TEXT PRIMARY KEY,
//	    content         TEXT NOT NULL,
//	    content_hash    TEXT NOT NULL,
//	    content_size    INT NOT NULL,
//	    idempotency_key TEXT UNIQUE,
//	    status          TEXT NOT NULL,
//	    created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
//	    updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
//	    indexed_at      TIMESTAMPTZ
//	);
package publisher

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/vectorsearchlab/platform/internal/ingestion"
	apperrors "github.com/vectorsearchlab/platform/pkg/errors"
	"github.com/vectorsearchlab/platform/pkg/kafka"
	"github.com/vectorsearchlab/platform/pkg/postgres"
	"github.com/vectorsearchlab/platform/pkg/resilience"
)

// autoIDPrefixLen is the number of content-hash hex characters used when the
// caller does not supply a document ID.
const autoIDPrefixLen = 16

// Publisher coordinates document persistence and Kafka event production.
type Publisher struct {
	db       *postgres.Client
	producer *kafka.Producer
	logger   *slog.Logger
}

// New creates a Publisher with the given database and Kafka producer.
func New(db *postgres.Client, producer *kafka.Producer) *Publisher {
	return &Publisher{
		db:       db,
		producer: producer,
		logger:   slog.Default().With("component", "publisher"),
	}
}

// Ingest persists the document in PostgreSQL and publishes an IngestEvent to
// Kafka. A repeated idempotency key short-circuits to the original response.
// The Kafka publish is retried with backoff; on exhaustion the document stays
// PENDING in the database for later reconciliation.
func (p *Publisher) Ingest(ctx context.Context, req *ingestion.IngestRequest) (*ingestion.IngestResponse, error) {
	contentHash := fmt.Sprintf("%x", sha256.Sum256([]byte(req.Text)))

	if req.IdempotencyKey != "" {
		existing, err := p.findByIdempotencyKey(ctx, req.IdempotencyKey)
		if err != nil {
			return nil, fmt.Errorf("checking idempotency key: %w", err)
		}
		if existing != nil {
			p.logger.Info("duplicate ingestion detected",
				"idempotency_key", req.IdempotencyKey,
				"existing_id", existing.DocumentID,
			)
			return existing, nil
		}
	}

	docID := req.DocumentID
	if docID == "" {
		docID = contentHash[:autoIDPrefixLen]
	}

	err := p.db.InTx(ctx, func(tx *sql.Tx) error {
		var insertedID string
		err := tx.QueryRowContext(ctx,
			`INSERT INTO documents (id, content, content_hash, content_size, idempotency_key, status)
			 VALUES ($1, $2, $3, $4, $5, 'PENDING')
			 ON CONFLICT (id) DO UPDATE
			     SET content = EXCLUDED.content,
			         content_hash = EXCLUDED.content_hash,
			         content_size = EXCLUDED.content_size,
			         status = 'PENDING',
			         updated_at = NOW()
			 RETURNING id`,
			docID, req.Text, contentHash, len(req.Text), nullableString(req.IdempotencyKey),
		).Scan(&insertedID)
		if err == sql.ErrNoRows {
			return apperrors.New(apperrors.ErrIdempotencyConflict, http.StatusConflict, "idempotency key already in use")
		}
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("inserting document: %w", err)
	}

	event := kafka.Event{
		Key: docID,
		Value: ingestion.IngestEvent{
			DocumentID: docID,
			Text:       req.Text,
			IngestedAt: time.Now().UTC(),
		},
	}
	err = resilience.Retry(ctx, "kafka-publish", resilience.RetryConfig{}, func() error {
		return p.producer.Publish(ctx, event)
	})
	if err != nil {
		p.logger.Error("failed to publish to kafka, document stuck in PENDING",
			"doc_id", docID,
			"error", err,
		)
	}

	return &ingestion.IngestResponse{
		DocumentID: docID,
		Status:     "PENDING",
	}, nil
}

// findByIdempotencyKey returns the response for a previously accepted
// idempotency key, or nil, nil when unseen.
func (p *Publisher) findByIdempotencyKey(ctx context.Context, key string) (*ingestion.IngestResponse, error) {
	var resp ingestion.IngestResponse
	err := p.db.DB.QueryRowContext(ctx,
		`SELECT id, status FROM documents WHERE idempotency_key = $1`, key,
	).Scan(&resp.DocumentID, &resp.Status)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying by idempotency key: %w", err)
	}
	return &resp, nil
}

// nullableString converts a Go string to a sql.NullString, treating the empty
// string as NULL.
func nullableString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
