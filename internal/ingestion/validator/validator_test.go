package validator

import (
	"errors"
	"strings"
	"testing"

	"github.com/vectorsearchlab/platform/internal/ingestion"
)

func TestValidateIngestRequest(t *testing.T) {
	tests := []struct {
		name      string
		req       ingestion.IngestRequest
		wantField string
	}{
		{"valid minimal", ingestion.IngestRequest{Text: "hello"}, ""},
		{"valid full", ingestion.IngestRequest{DocumentID: "doc-1", Text: "hello", IdempotencyKey: "key-1"}, ""},
		{"empty text", ingestion.IngestRequest{Text: ""}, "text"},
		{"whitespace text", ingestion.IngestRequest{Text: "   \n"}, "text"},
		{"oversized text", ingestion.IngestRequest{Text: strings.Repeat("x", 1048577)}, "text"},
		{"oversized doc id", ingestion.IngestRequest{DocumentID: strings.Repeat("a", 256), Text: "ok"}, "document_id"},
		{"oversized idempotency key", ingestion.IngestRequest{Text: "ok", IdempotencyKey: strings.Repeat("k", 256)}, "idempotency_key"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateIngestRequest(&tt.req)
			if tt.wantField == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if _, ok := vErr.Fields[tt.wantField]; !ok {
				t.Errorf("expected failure on field %q, got %v", tt.wantField, vErr.Fields)
			}
		})
	}
}
