package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Search.DefaultLimit != 10 || cfg.Search.MaxResults != 100 {
		t.Errorf("search defaults = %+v", cfg.Search)
	}
	if cfg.Kafka.Topics.DocumentIngest != "document-ingest" {
		t.Errorf("DocumentIngest topic = %q", cfg.Kafka.Topics.DocumentIngest)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load("does/not/exist.yaml")
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if cfg.Redis.CacheTTL != 60*time.Second {
		t.Errorf("CacheTTL = %v, want 60s", cfg.Redis.CacheTTL)
	}
}

func TestLoadYAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.yaml")
	content := []byte("server:\n  port: 9999\nsearch:\n  defaultLimit: 25\n")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 9999 {
		t.Errorf("Server.Port = %d, want 9999", cfg.Server.Port)
	}
	if cfg.Search.DefaultLimit != 25 {
		t.Errorf("Search.DefaultLimit = %d, want 25", cfg.Search.DefaultLimit)
	}
	// Untouched values keep their defaults.
	if cfg.Postgres.Host != "localhost" {
		t.Errorf("Postgres.Host = %q, want default", cfg.Postgres.Host)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("VS_SERVER_PORT", "7001")
	t.Setenv("VS_REDIS_ADDR", "redis.internal:6379")
	t.Setenv("VS_SEARCH_MAX_RESULTS", "500")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 7001 {
		t.Errorf("Server.Port = %d, want 7001", cfg.Server.Port)
	}
	if cfg.Redis.Addr != "redis.internal:6379" {
		t.Errorf("Redis.Addr = %q", cfg.Redis.Addr)
	}
	if cfg.Search.MaxResults != 500 {
		t.Errorf("Search.MaxResults = %d, want 500", cfg.Search.MaxResults)
	}
}

func TestDSN(t *testing.T) {
	p := PostgresConfig{
		Host: "db", Port: 5433, Database: "search",
		User: "svc", Password: "secret", SSLMode: "require",
	}
	want := "host=db port=5433 user=svc password=secret dbname=search sslmode=require"
	if got := p.DSN(); got != want {
		t.Errorf("DSN = %q, want %q", got, want)
	}
}
