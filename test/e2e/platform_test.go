// Package e2e contains end-to-end tests that exercise the full platform
// stack: ingestion → Kafka → searcher, with real Kafka, PostgreSQL, and
// Redis.
//
// Prerequisites:
//   - PostgreSQL running with schema applied
//   - Kafka running
//   - Redis running
//
// Run with:
//
//	go test -v -timeout=120s ./test/e2e/...
package e2e

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"
)

type e2eConfig struct {
	IngestionURL string
	SearcherURL  string
}

func loadE2EConfig() e2eConfig {
	return e2eConfig{
		IngestionURL: envOrDefault("E2E_INGESTION_URL", "http://localhost:8081"),
		SearcherURL:  envOrDefault("E2E_SEARCHER_URL", "http://localhost:8080"),
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// TestPlatformHealth verifies both services respond to health checks.
func TestPlatformHealth(t *testing.T) {
	cfg := loadE2EConfig()

	services := []struct {
		name string
		url  string
	}{
		{"searcher /health/live", cfg.SearcherURL + "/health/live"},
		{"searcher /health/ready", cfg.SearcherURL + "/health/ready"},
		{"ingestion /health/live", cfg.IngestionURL + "/health/live"},
	}

	client := &http.Client{Timeout: 5 * time.Second}
	for _, svc := range services {
		t.Run(svc.name, func(t *testing.T) {
			resp, err := client.Get(svc.url)
			if err != nil {
				t.Skipf("service unavailable: %v", err)
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				body, _ := io.ReadAll(resp.Body)
				t.Errorf("expected 200, got %d: %s", resp.StatusCode, body)
			}
		})
	}
}

// TestIngestAndSearch exercises the full document lifecycle: ingest, wait
// for indexing, search, verify the ranked result.
func TestIngestAndSearch(t *testing.T) {
	cfg := loadE2EConfig()
	client := &http.Client{Timeout: 10 * time.Second}

	if _, err := client.Get(cfg.IngestionURL + "/health/live"); err != nil {
		t.Skipf("ingestion service unavailable: %v", err)
	}

	uniqueWord := fmt.Sprintf("e2etest%d", time.Now().UnixNano())
	payload := fmt.Sprintf(`{"text":"This end to end test document contains the word %s for verification purposes."}`, uniqueWord)

	resp, err := client.Post(
		cfg.IngestionURL+"/api/v1/documents",
		"application/json",
		strings.NewReader(payload),
	)
	if err != nil {
		t.Fatalf("ingest request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusAccepted {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("expected 202, got %d: %s", resp.StatusCode, body)
	}

	var ingestResult map[string]any
	json.NewDecoder(resp.Body).Decode(&ingestResult)
	docID, _ := ingestResult["document_id"].(string)
	if docID == "" {
		t.Fatal("ingest response missing document_id")
	}
	t.Logf("ingested document: id=%s", docID)

	t.Log("waiting for document to be indexed...")
	searchURL := fmt.Sprintf("%s/api/v1/search?q=%s", cfg.SearcherURL, uniqueWord)
	var found bool
	for attempt := 0; attempt < 30 && !found; attempt++ {
		time.Sleep(1 * time.Second)

		resp, err := client.Get(searchURL)
		if err != nil {
			continue
		}
		var searchResult struct {
			TotalHits int `json:"total_hits"`
			Results   []struct {
				DocID   string  `json:"doc_id"`
				Score   float64 `json:"score"`
				Preview string  `json:"preview"`
			} `json:"results"`
		}
		json.NewDecoder(resp.Body).Decode(&searchResult)
		resp.Body.Close()

		for _, r := range searchResult.Results {
			if r.DocID == docID {
				if r.Score <= 0 {
					t.Errorf("matched document has non-positive score %v", r.Score)
				}
				if !strings.Contains(r.Preview, uniqueWord[:10]) && !strings.Contains(r.Preview, "end to end") {
					t.Logf("preview: %s", r.Preview)
				}
				found = true
				break
			}
		}
	}
	if !found {
		t.Fatal("document never appeared in search results")
	}
	t.Log("document found in search results")
}

// TestIdempotentIngest verifies a repeated idempotency key returns the
// original document instead of creating a new one.
func TestIdempotentIngest(t *testing.T) {
	cfg := loadE2EConfig()
	client := &http.Client{Timeout: 10 * time.Second}

	if _, err := client.Get(cfg.IngestionURL + "/health/live"); err != nil {
		t.Skipf("ingestion service unavailable: %v", err)
	}

	key := fmt.Sprintf("e2e-key-%d", time.Now().UnixNano())
	payload := fmt.Sprintf(`{"text":"idempotency test content","idempotency_key":"%s"}`, key)

	ingest := func() string {
		resp, err := client.Post(
			cfg.IngestionURL+"/api/v1/documents",
			"application/json",
			strings.NewReader(payload),
		)
		if err != nil {
			t.Fatalf("ingest request failed: %v", err)
		}
		defer resp.Body.Close()
		var result map[string]any
		json.NewDecoder(resp.Body).Decode(&result)
		id, _ := result["document_id"].(string)
		return id
	}

	first := ingest()
	second := ingest()
	if first == "" || first != second {
		t.Errorf("idempotent ingest returned different ids: %q vs %q", first, second)
	}
}

// TestCorpusStats verifies the stats endpoint shape.
func TestCorpusStats(t *testing.T) {
	cfg := loadE2EConfig()
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(cfg.SearcherURL + "/api/v1/stats")
	if err != nil {
		t.Skipf("searcher unavailable: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var stats struct {
		TotalDocuments int     `json:"total_documents"`
		UniqueTerms    int     `json:"unique_terms"`
		AvgDocLength   float64 `json:"avg_doc_length"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		t.Fatalf("invalid stats response: %v", err)
	}
	if stats.TotalDocuments < 0 || stats.UniqueTerms < 0 {
		t.Errorf("negative stats: %+v", stats)
	}
}
