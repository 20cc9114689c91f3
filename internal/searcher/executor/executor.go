// Package executor wraps the core engine with the external serialization
// its contract requires: a read-write lock around the whole instance.
// Indexing takes the write lock; queries take the read lock, so concurrent
// searches proceed in parallel while a write is exclusive.
package executor

import (
	"context"
	"log/slog"
	"sync"

	"github.com/vectorsearchlab/platform/internal/indexer"
	"github.com/vectorsearchlab/platform/internal/indexer/tokenizer"
)

// SearchResult is the response payload for one executed query.
type SearchResult struct {
	Query     string                 `json:"query"`
	TotalHits int                    `json:"total_hits"`
	Results   []indexer.SearchResult `json:"results"`
}

// Executor owns a single engine instance and serialises access to it.
type Executor struct {
	mu     sync.RWMutex
	engine *indexer.Engine
	logger *slog.Logger
}

// New creates an Executor around the given engine.
func New(engine *indexer.Engine) *Executor {
	return &Executor{
		engine: engine,
		logger: slog.Default().With("component", "query-executor"),
	}
}

// Execute runs a ranked query against the engine.
func (e *Executor) Execute(ctx context.Context, query string, limit int) (*SearchResult, error) {
	e.mu.RLock()
	results, err := e.engine.Search(query, limit)
	e.mu.RUnlock()
	if err != nil {
		return nil, err
	}

	e.logger.Info("query executed",
		"query", query,
		"results", len(results),
	)
	return &SearchResult{
		Query:     query,
		TotalHits: len(results),
		Results:   results,
	}, nil
}

// Index adds or overwrites a document in the engine and returns the token
// count of the indexed text.
func (e *Executor) Index(docID, text string) int {
	tokens := len(tokenizer.Tokenize(text))
	e.mu.Lock()
	e.engine.AddDocument(docID, text)
	e.mu.Unlock()

	e.logger.Debug("document indexed",
		"doc_id", docID,
		"token_count", tokens,
	)
	return tokens
}

// Stats reports the engine's corpus statistics.
func (e *Executor) Stats() indexer.Statistics {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.engine.Stats()
}

// TotalDocuments returns the number of indexed documents.
func (e *Executor) TotalDocuments() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.engine.TotalDocuments()
}
