package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Server.Addr != ":8090" {
		t.Errorf("Addr = %q, want :8090", cfg.Server.Addr)
	}
	if cfg.Store.Backend != "redis" {
		t.Errorf("Backend = %q, want redis", cfg.Store.Backend)
	}
	if cfg.Fetch.Concurrency != 16 {
		t.Errorf("Concurrency = %d, want 16", cfg.Fetch.Concurrency)
	}
	if cfg.Scheduler.Enabled {
		t.Error("scheduler should be disabled by default")
	}
	if cfg.Scheduler.Interval != 24*time.Hour {
		t.Errorf("Interval = %s, want 24h", cfg.Scheduler.Interval)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("SERVER_ADDR", ":9000")
	t.Setenv("STORE_BACKEND", "postgres")
	t.Setenv("FETCH_CONCURRENCY", "8")
	t.Setenv("FETCH_RETRY_DELAY", "2s")
	t.Setenv("SCHEDULER_ENABLED", "true")
	t.Setenv("CORS_ORIGINS", "http://a.example, http://b.example")

	cfg := Load()

	if cfg.Server.Addr != ":9000" {
		t.Errorf("Addr = %q, want :9000", cfg.Server.Addr)
	}
	if cfg.Store.Backend != "postgres" {
		t.Errorf("Backend = %q, want postgres", cfg.Store.Backend)
	}
	if cfg.Fetch.Concurrency != 8 {
		t.Errorf("Concurrency = %d, want 8", cfg.Fetch.Concurrency)
	}
	if cfg.Fetch.RetryDelay != 2*time.Second {
		t.Errorf("RetryDelay = %s, want 2s", cfg.Fetch.RetryDelay)
	}
	if !cfg.Scheduler.Enabled {
		t.Error("scheduler should be enabled")
	}
	if len(cfg.Server.CORSOrigins) != 2 || cfg.Server.CORSOrigins[1] != "http://b.example" {
		t.Errorf("CORSOrigins = %v", cfg.Server.CORSOrigins)
	}
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("FETCH_CONCURRENCY", "many")
	t.Setenv("SCHEDULER_INTERVAL", "soon")

	cfg := Load()

	if cfg.Fetch.Concurrency != 16 {
		t.Errorf("Concurrency = %d, want the default 16", cfg.Fetch.Concurrency)
	}
	if cfg.Scheduler.Interval != 24*time.Hour {
		t.Errorf("Interval = %s, want the default 24h", cfg.Scheduler.Interval)
	}
}
