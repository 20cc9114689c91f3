package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestAppErrorUnwrap(t *testing.T) {
	err := New(ErrInvalidQuery, http.StatusBadRequest, "empty query")
	if !errors.Is(err, ErrInvalidQuery) {
		t.Error("AppError does not unwrap to its sentinel")
	}
	wrapped := fmt.Errorf("handling request: %w", err)
	if !errors.Is(wrapped, ErrInvalidQuery) {
		t.Error("wrapped AppError does not unwrap to its sentinel")
	}
}

func TestHTTPStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"app error status wins", New(ErrInternal, http.StatusTeapot, "odd"), http.StatusTeapot},
		{"not found", ErrDocumentNotFound, http.StatusNotFound},
		{"conflict", ErrIdempotencyConflict, http.StatusConflict},
		{"invalid query", ErrInvalidQuery, http.StatusBadRequest},
		{"invalid input", ErrInvalidInput, http.StatusBadRequest},
		{"timeout", ErrTimeout, http.StatusServiceUnavailable},
		{"unknown", errors.New("mystery"), http.StatusInternalServerError},
		{"wrapped sentinel", fmt.Errorf("outer: %w", ErrDocumentNotFound), http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HTTPStatusCode(tt.err); got != tt.want {
				t.Errorf("HTTPStatusCode = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestNewf(t *testing.T) {
	err := Newf(ErrInvalidInput, http.StatusBadRequest, "field %q too long", "title")
	if err.Message != `field "title" too long` {
		t.Errorf("Message = %q", err.Message)
	}
}
