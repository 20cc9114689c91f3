package analytics

import (
	"context"
	"encoding/json"
	"testing"
	"time"
)

func trackSearch(t *testing.T, agg *Aggregator, event SearchEvent) {
	t.Helper()
	event.Timestamp = time.Now().UTC()
	payload, err := json.Marshal(event)
	if err != nil {
		t.Fatalf("marshal event: %v", err)
	}
	if err := HandleEvent(agg)(context.Background(), []byte("analytics"), payload); err != nil {
		t.Fatalf("handle event: %v", err)
	}
}

func TestAggregatorSearchEvents(t *testing.T) {
	agg := NewAggregator(nil)

	trackSearch(t, agg, SearchEvent{Type: EventSearch, Query: "golang", TotalHits: 3, LatencyMs: 10, CacheHit: false})
	trackSearch(t, agg, SearchEvent{Type: EventSearch, Query: "golang", TotalHits: 3, LatencyMs: 20, CacheHit: true})
	trackSearch(t, agg, SearchEvent{Type: EventZeroResult, Query: "nomatches", TotalHits: 0, LatencyMs: 30, CacheHit: false})

	stats := agg.Stats()
	if stats.TotalSearches != 3 {
		t.Errorf("TotalSearches = %d, want 3", stats.TotalSearches)
	}
	if stats.CacheHits != 1 || stats.CacheMisses != 2 {
		t.Errorf("cache counters = %d/%d, want 1/2", stats.CacheHits, stats.CacheMisses)
	}
	if stats.ZeroResultCount != 1 {
		t.Errorf("ZeroResultCount = %d, want 1", stats.ZeroResultCount)
	}
	if stats.AvgLatencyMs != 20 {
		t.Errorf("AvgLatencyMs = %v, want 20", stats.AvgLatencyMs)
	}
	if len(stats.TopQueries) == 0 || stats.TopQueries[0].Query != "golang" {
		t.Errorf("TopQueries = %v, want golang first", stats.TopQueries)
	}
	if len(stats.ZeroResultQueries) != 1 || stats.ZeroResultQueries[0].Query != "nomatches" {
		t.Errorf("ZeroResultQueries = %v, want nomatches", stats.ZeroResultQueries)
	}
}

func TestAggregatorIndexEvents(t *testing.T) {
	agg := NewAggregator(nil)

	event := IndexEvent{Type: EventIndexDoc, DocumentID: "d1", TokenCount: 42, Timestamp: time.Now().UTC()}
	payload, _ := json.Marshal(event)
	if err := HandleEvent(agg)(context.Background(), nil, payload); err != nil {
		t.Fatalf("handle event: %v", err)
	}

	if stats := agg.Stats(); stats.TotalDocsIndexed != 1 {
		t.Errorf("TotalDocsIndexed = %d, want 1", stats.TotalDocsIndexed)
	}
}

// Malformed payloads are dropped, never returned as errors, so a poison
// message cannot stall the consumer.
func TestAggregatorSkipsBadPayloads(t *testing.T) {
	agg := NewAggregator(nil)

	for _, payload := range [][]byte{[]byte("not json"), []byte(`{"type":"mystery"}`)} {
		if err := HandleEvent(agg)(context.Background(), nil, payload); err != nil {
			t.Errorf("handler returned error for payload %q: %v", payload, err)
		}
	}
	if stats := agg.Stats(); stats.TotalSearches != 0 || stats.TotalDocsIndexed != 0 {
		t.Errorf("bad payloads were counted: %+v", agg.Stats())
	}
}

func TestPercentiles(t *testing.T) {
	agg := NewAggregator(nil)
	for i := 1; i <= 100; i++ {
		trackSearch(t, agg, SearchEvent{Type: EventSearch, Query: "q", TotalHits: 1, LatencyMs: int64(i)})
	}

	stats := agg.Stats()
	if stats.P50LatencyMs != 51 {
		t.Errorf("P50 = %d, want 51", stats.P50LatencyMs)
	}
	if stats.P95LatencyMs != 96 {
		t.Errorf("P95 = %d, want 96", stats.P95LatencyMs)
	}
	if stats.P99LatencyMs != 100 {
		t.Errorf("P99 = %d, want 100", stats.P99LatencyMs)
	}
}

func TestTopNTruncatesAndSorts(t *testing.T) {
	counts := map[string]int64{
		"a": 5, "b": 3, "c": 8, "d": 1, "e": 8,
	}
	top := topN(counts, 3)
	if len(top) != 3 {
		t.Fatalf("len = %d, want 3", len(top))
	}
	// Ties break alphabetically for a stable ordering.
	if top[0].Query != "c" || top[1].Query != "e" || top[2].Query != "a" {
		t.Errorf("topN order = %v, want c, e, a", top)
	}
}
