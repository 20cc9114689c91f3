// Package ingestion defines the request/response types and Kafka event
// schemas used by the document ingestion pipeline.
package ingestion

import "time"

// IngestRequest is the JSON body accepted by the ingestion HTTP endpoint.
// DocumentID is optional; when empty the publisher derives a stable ID from
// the content hash. Re-ingesting an existing DocumentID overwrites the
// document.
type IngestRequest struct {
	DocumentID     string `json:"document_id,omitempty"`
	Text           string `json:"text"`
	IdempotencyKey string `json:"idempotency_key,omitempty"`
}

// IngestResponse is returned to the caller after a document is accepted.
type IngestResponse struct {
	DocumentID string `json:"document_id"`
	Status     string `json:"status"`
}

// IngestEvent is the Kafka message payload produced after a document is
// persisted and ready for indexing.
type IngestEvent struct {
	DocumentID string    `json:"document_id"`
	Text       string    `json:"text"`
	IngestedAt time.Time `json:"ingested_at"`
}
