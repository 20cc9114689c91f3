// Package validator provides input validation for ingestion requests with
// per-field error details.
package validator

import (
	"fmt"
	"strings"

	"github.com/vectorsearchlab/platform/internal/ingestion"
)

const (
	maxDocIDLength = 255
	maxTextLength  = 1048576
	maxKeyLength   = 255
)

// ValidationError holds per-field validation failure messages.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	var parts []string
	for field, msg := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s:%s", field, msg))
	}
	return strings.Join(parts, "; ")
}

// ValidateIngestRequest checks length constraints on the document ID, text,
// and idempotency key.
func ValidateIngestRequest(req *ingestion.IngestRequest) error {
	errs := make(map[string]string)

	if strings.TrimSpace(req.Text) == "" {
		errs["text"] = "text is required and must not be empty"
	} else if len(req.Text) > maxTextLength {
		errs["text"] = fmt.Sprintf("text must be at most %d bytes", maxTextLength)
	}
	if len(req.DocumentID) > maxDocIDLength {
		errs["document_id"] = fmt.Sprintf("document id must be at most %d characters", maxDocIDLength)
	}
	if len(req.IdempotencyKey) > maxKeyLength {
		errs["idempotency_key"] = fmt.Sprintf("idempotency key must be at most %d characters", maxKeyLength)
	}
	if len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}
