// Package indexer implements the in-memory vector-space search engine. An
// Engine owns the document store and corpus-wide term statistics, builds
// TF-IDF weighted vectors on demand, and ranks documents against free-text
// queries by cosine similarity.
//
// An Engine is an explicit instance with no interior locking and is not safe
// for concurrent use. Callers that mix indexing and searching across
// goroutines must serialize access externally; see searcher/executor for the
// read-write-lock wrapper the services use.
package indexer

import (
	"math"
	"net/http"
	"sort"
	"strings"

	"github.com/vectorsearchlab/platform/internal/indexer/tokenizer"
	"github.com/vectorsearchlab/platform/internal/indexer/vector"
	apperrors "github.com/vectorsearchlab/platform/pkg/errors"
)

const (
	// DefaultMaxResults caps a result list when the caller passes a
	// non-positive limit.
	DefaultMaxResults = 10

	// previewRunes is the number of leading runes of the stored text
	// included in a result preview before the ellipsis marker.
	previewRunes = 100
)

// SearchResult is a single ranked hit.
type SearchResult struct {
	Score   float64 `json:"score"`
	DocID   string  `json:"doc_id"`
	Preview string  `json:"preview"`
}

// Statistics summarises the indexed corpus. AvgDocLength is the mean count
// of distinct terms per document, rounded to two decimal places.
type Statistics struct {
	TotalDocuments int     `json:"total_documents"`
	UniqueTerms    int     `json:"unique_terms"`
	AvgDocLength   float64 `json:"avg_doc_length"`
}

// Engine holds the document store, per-document term-frequency maps, and
// corpus document-frequency counts. Document IDs are opaque strings;
// callers with integer IDs format them before indexing.
type Engine struct {
	documents map[string]string
	termFreqs map[string]map[string]int
	docFreq   map[string]int
	totalDocs int
}

// New creates an empty Engine.
func New() *Engine {
	return &Engine{
		documents: make(map[string]string),
		termFreqs: make(map[string]map[string]int),
		docFreq:   make(map[string]int),
	}
}

// AddDocument indexes text under id. The original text is stored verbatim
// and its term-frequency map is derived once, at insertion.
//
// Re-adding an existing id overwrites the stored text. Document-frequency
// counts are adjusted by delta: terms dropped by the new text are
// decremented, terms present in both versions keep their count, and terms
// new to the document are incremented. This keeps the invariant that the
// document frequency of a term equals the number of stored documents whose
// frequency map contains it.
func (e *Engine) AddDocument(id, text string) {
	freq := tokenizer.FrequencyMap(text)

	if old, exists := e.termFreqs[id]; exists {
		for term := range old {
			if _, still := freq[term]; still {
				continue
			}
			if e.docFreq[term]--; e.docFreq[term] <= 0 {
				delete(e.docFreq, term)
			}
		}
		for term := range freq {
			if _, had := old[term]; !had {
				e.docFreq[term]++
			}
		}
	} else {
		for term := range freq {
			e.docFreq[term]++
		}
	}

	e.documents[id] = text
	e.termFreqs[id] = freq
	e.totalDocs = len(e.documents)
}

// TotalDocuments returns the number of indexed documents.
func (e *Engine) TotalDocuments() int {
	return e.totalDocs
}

// Document returns the stored text for id.
func (e *Engine) Document(id string) (string, bool) {
	text, ok := e.documents[id]
	return text, ok
}

// Search ranks every indexed document against query and returns at most
// maxResults hits with similarity strictly greater than zero, ordered by
// score descending and by document ID ascending among equal scores. A
// non-positive maxResults falls back to DefaultMaxResults.
//
// An empty or whitespace-only query is rejected with ErrInvalidQuery. An
// empty index yields an empty result list, not an error.
func (e *Engine) Search(query string, maxResults int) ([]SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, apperrors.New(apperrors.ErrInvalidQuery, http.StatusBadRequest, "empty query")
	}
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	if len(e.documents) == 0 {
		return []SearchResult{}, nil
	}

	queryVec := e.queryVector(query)

	results := make([]SearchResult, 0, maxResults)
	for id, freq := range e.termFreqs {
		similarity := vector.Cosine(queryVec, e.buildVector(freq))
		if similarity <= 0 {
			continue
		}
		results = append(results, SearchResult{
			Score:   similarity,
			DocID:   id,
			Preview: preview(e.documents[id]),
		})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].DocID < results[j].DocID
	})
	if len(results) > maxResults {
		results = results[:maxResults]
	}
	return results, nil
}

// Stats reports corpus-level statistics. An empty engine reports the zero
// value.
func (e *Engine) Stats() Statistics {
	if len(e.documents) == 0 {
		return Statistics{}
	}
	totalDistinct := 0
	for _, freq := range e.termFreqs {
		totalDistinct += len(freq)
	}
	avg := float64(totalDistinct) / float64(len(e.documents))
	return Statistics{
		TotalDocuments: e.totalDocs,
		UniqueTerms:    len(e.docFreq),
		AvgDocLength:   math.Round(avg*100) / 100,
	}
}

// tfidfWeight computes the TF-IDF weight for one term of one document. Term
// frequency is normalised by the document's total token count; IDF is the
// natural log of total documents over document frequency, so a term present
// in every document weighs zero.
func (e *Engine) tfidfWeight(termFreq, docLength, docFreq int) float64 {
	if docFreq == 0 {
		return 0
	}
	var tf float64
	if docLength > 0 {
		tf = float64(termFreq) / float64(docLength)
	}
	idf := math.Log(float64(e.totalDocs) / float64(docFreq))
	return tf * idf
}

// buildVector converts a term-frequency map into a TF-IDF weighted vector
// using the corpus statistics as of the call. Nothing is cached: vectors
// always reflect the current corpus.
func (e *Engine) buildVector(freq map[string]int) vector.Vector {
	docLength := 0
	for _, count := range freq {
		docLength += count
	}
	vec := make(vector.Vector, len(freq))
	for term, count := range freq {
		vec[term] = e.tfidfWeight(count, docLength, e.docFreq[term])
	}
	return vec
}

// queryVector builds the normalised term-frequency vector for a query.
// Terms unknown to the corpus cannot match any document and are dropped.
// No IDF is applied on the query side; the asymmetry against document
// vectors is deliberate.
func (e *Engine) queryVector(query string) vector.Vector {
	freq := tokenizer.FrequencyMap(query)
	total := 0
	for _, count := range freq {
		total += count
	}
	vec := make(vector.Vector, len(freq))
	for term, count := range freq {
		if _, known := e.docFreq[term]; known {
			vec[term] = float64(count) / float64(total)
		}
	}
	return vec
}

// preview returns the first previewRunes runes of text, appending an
// ellipsis marker when the text is longer.
func preview(text string) string {
	runes := []rune(text)
	if len(runes) <= previewRunes {
		return text
	}
	return string(runes[:previewRunes]) + "..."
}
