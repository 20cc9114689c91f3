package indexer

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"

	apperrors "github.com/vectorsearchlab/platform/pkg/errors"
)

const epsilon = 1e-9

func TestSearchRejectsEmptyQuery(t *testing.T) {
	e := New()
	e.AddDocument("1", "some text")

	for _, query := range []string{"", "   ", "\t\n"} {
		_, err := e.Search(query, 10)
		if !errors.Is(err, apperrors.ErrInvalidQuery) {
			t.Errorf("Search(%q) error = %v, want ErrInvalidQuery", query, err)
		}
	}
}

func TestSearchEmptyIndex(t *testing.T) {
	e := New()
	results, err := e.Search("anything", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected no results, got %d", len(results))
	}
}

func TestSearchRanking(t *testing.T) {
	e := New()
	e.AddDocument("a", "cat dog cat")
	e.AddDocument("b", "dog bird")

	results, err := e.Search("cat", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].DocID != "a" {
		t.Errorf("top result = %q, want %q", results[0].DocID, "a")
	}
	// The query vector has a single dimension the document shares, so the
	// similarity collapses to 1.
	if math.Abs(results[0].Score-1.0) > epsilon {
		t.Errorf("score = %v, want 1.0", results[0].Score)
	}
}

// A term present in every document has zero IDF weight, so it cannot
// contribute to any score.
func TestSearchUbiquitousTermScoresZero(t *testing.T) {
	e := New()
	e.AddDocument("a", "common alpha")
	e.AddDocument("b", "common beta")

	results, err := e.Search("common", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected no results for ubiquitous term, got %d", len(results))
	}
}

func TestSearchUnknownTerm(t *testing.T) {
	e := New()
	e.AddDocument("a", "cat dog")

	results, err := e.Search("zebra", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected no results for unknown term, got %d", len(results))
	}
}

func TestSearchTieBreakByDocID(t *testing.T) {
	e := New()
	e.AddDocument("b", "apple banana")
	e.AddDocument("a", "apple banana")
	e.AddDocument("c", "cherry")

	results, err := e.Search("apple", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if math.Abs(results[0].Score-results[1].Score) > epsilon {
		t.Fatalf("expected equal scores, got %v and %v", results[0].Score, results[1].Score)
	}
	if results[0].DocID != "a" || results[1].DocID != "b" {
		t.Errorf("tie broken wrong: got %q, %q; want a, b", results[0].DocID, results[1].DocID)
	}
}

func TestSearchResultLimits(t *testing.T) {
	e := New()
	for i := 0; i < 15; i++ {
		e.AddDocument(fmt.Sprintf("doc-%02d", i), fmt.Sprintf("zebra filler%d", i))
	}
	// One document without the term keeps its IDF above zero.
	e.AddDocument("other", "unrelated text")

	t.Run("explicit limit", func(t *testing.T) {
		results, err := e.Search("zebra", 3)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(results) != 3 {
			t.Errorf("expected 3 results, got %d", len(results))
		}
	})

	t.Run("default limit on non-positive", func(t *testing.T) {
		for _, limit := range []int{0, -5} {
			results, err := e.Search("zebra", limit)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(results) != DefaultMaxResults {
				t.Errorf("Search(limit=%d) returned %d results, want %d", limit, len(results), DefaultMaxResults)
			}
		}
	})
}

func TestSearchOrderedByScore(t *testing.T) {
	e := New()
	e.AddDocument("heavy", "gopher gopher gopher")
	e.AddDocument("light", "gopher and a lot of other words diluting the term weight")
	e.AddDocument("none", "completely different content")

	results, err := e.Search("gopher", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Score < results[1].Score {
		t.Errorf("results not sorted by score: %v then %v", results[0].Score, results[1].Score)
	}
	if results[0].DocID != "heavy" {
		t.Errorf("top result = %q, want %q", results[0].DocID, "heavy")
	}
}

func TestPreviewTruncation(t *testing.T) {
	long := "needle " + strings.Repeat("x", 150)
	short := "needle haystack"

	e := New()
	e.AddDocument("long", long)
	e.AddDocument("short", short)
	e.AddDocument("other", "different words entirely")

	results, err := e.Search("needle", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	previews := make(map[string]string, len(results))
	for _, r := range results {
		previews[r.DocID] = r.Preview
	}

	wantLong := string([]rune(long)[:100]) + "..."
	if previews["long"] != wantLong {
		t.Errorf("long preview = %q, want %q", previews["long"], wantLong)
	}
	if previews["short"] != short {
		t.Errorf("short preview = %q, want full text %q", previews["short"], short)
	}
}

func TestAddDocumentOverwrite(t *testing.T) {
	e := New()
	e.AddDocument("1", "hello world")
	e.AddDocument("2", "hello there")

	e.AddDocument("1", "goodbye there")

	if got := e.TotalDocuments(); got != 2 {
		t.Fatalf("TotalDocuments = %d, want 2", got)
	}
	if text, _ := e.Document("1"); text != "goodbye there" {
		t.Errorf("Document(1) = %q, want overwritten text", text)
	}

	// "world" left the corpus entirely with the overwrite.
	results, err := e.Search("world", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected no results for removed term, got %d", len(results))
	}

	// "goodbye" is now findable.
	results, err = e.Search("goodbye", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 || results[0].DocID != "1" {
		t.Errorf("expected doc 1 for new term, got %v", results)
	}

	// Vocabulary reflects the delta: hello, there, goodbye.
	if stats := e.Stats(); stats.UniqueTerms != 3 {
		t.Errorf("UniqueTerms = %d, want 3", stats.UniqueTerms)
	}
}

func TestStats(t *testing.T) {
	e := New()

	t.Run("empty engine", func(t *testing.T) {
		stats := e.Stats()
		if stats.TotalDocuments != 0 || stats.UniqueTerms != 0 || stats.AvgDocLength != 0 {
			t.Errorf("empty stats = %+v, want zero values", stats)
		}
	})

	t.Run("populated engine", func(t *testing.T) {
		e.AddDocument("a", "cat dog cat")
		e.AddDocument("b", "dog bird")

		stats := e.Stats()
		if stats.TotalDocuments != 2 {
			t.Errorf("TotalDocuments = %d, want 2", stats.TotalDocuments)
		}
		if stats.UniqueTerms != 3 {
			t.Errorf("UniqueTerms = %d, want 3", stats.UniqueTerms)
		}
		// Both documents hold two distinct terms.
		if stats.AvgDocLength != 2.0 {
			t.Errorf("AvgDocLength = %v, want 2.0", stats.AvgDocLength)
		}
	})

	t.Run("average rounds to two decimals", func(t *testing.T) {
		e := New()
		e.AddDocument("a", "one two three")
		e.AddDocument("b", "four five")
		e.AddDocument("c", "six")

		// (3 + 2 + 1) / 3 = 2.0
		if stats := e.Stats(); stats.AvgDocLength != 2.0 {
			t.Errorf("AvgDocLength = %v, want 2.0", stats.AvgDocLength)
		}

		e.AddDocument("d", "seven")
		// (3 + 2 + 1 + 1) / 4 = 1.75
		if stats := e.Stats(); stats.AvgDocLength != 1.75 {
			t.Errorf("AvgDocLength = %v, want 1.75", stats.AvgDocLength)
		}
	})
}

func TestDocument(t *testing.T) {
	e := New()
	e.AddDocument("42", "stored verbatim, Punctuation Included!")

	text, ok := e.Document("42")
	if !ok {
		t.Fatal("Document(42) not found")
	}
	if text != "stored verbatim, Punctuation Included!" {
		t.Errorf("stored text mutated: %q", text)
	}
	if _, ok := e.Document("missing"); ok {
		t.Error("Document(missing) unexpectedly found")
	}
}

// Adding documents must change rankings computed afterwards: vectors are
// never cached against a stale corpus.
func TestScoresReflectCorpusGrowth(t *testing.T) {
	e := New()
	e.AddDocument("a", "rare mid")
	e.AddDocument("b", "mid other")

	before, err := e.Search("rare", 10)
	if err != nil || len(before) != 1 {
		t.Fatalf("setup search failed: %v (%d results)", err, len(before))
	}

	// Growing the corpus shifts the relative IDF of "mid" against "rare",
	// changing document a's direction and therefore its score.
	e.AddDocument("c", "other filler")
	after, err := e.Search("rare", 10)
	if err != nil || len(after) != 1 {
		t.Fatalf("second search failed: %v (%d results)", err, len(after))
	}
	if after[0].Score <= 0 || before[0].Score <= 0 {
		t.Fatal("expected positive scores")
	}
	if after[0].Score == before[0].Score {
		t.Error("score unchanged after corpus growth; vectors appear cached")
	}
}
