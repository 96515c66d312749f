package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hyperifyio/smartoverview/internal/app"
	"github.com/hyperifyio/smartoverview/internal/backend"
	"github.com/hyperifyio/smartoverview/internal/summary"
)

func TestNewHandler_MockServiceOverHTTP(t *testing.T) {
	cfg := app.DefaultConfig()
	cfg.Cache.Backend = app.BackendMemory
	h, closeFn, err := newHandler(context.Background(), cfg)
	if err != nil {
		t.Fatalf("newHandler: %v", err)
	}
	defer closeFn()
	srv := httptest.NewServer(h)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("health: %v", err)
	}
	var body map[string]string
	_ = json.NewDecoder(resp.Body).Decode(&body)
	resp.Body.Close()
	if body["status"] != "healthy" {
		t.Fatalf("health body = %v", body)
	}

	c := &backend.Client{HTTPClient: srv.Client()}
	r, err := c.Process(context.Background(), srv.URL, summary.Request{
		Transcript:   "def hello():\n    return 1\nWe define a function.",
		LectureTitle: "Functions",
	})
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if !strings.Contains(r.Summary, "Functions") || len(r.CodeBlocks) == 0 || len(r.KeyConcepts) == 0 {
		t.Fatalf("result = %+v", r)
	}
}

func TestLoadConfig_File(t *testing.T) {
	t.Setenv("LLM_MODEL", "")
	path := filepath.Join(t.TempDir(), "server.toml")
	writeConfig(t, path, "listen = \":9999\"\n[llm]\nmodel = \"m1\"\n")
	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.ListenAddr != ":9999" || cfg.LLM.Model != "m1" {
		t.Fatalf("cfg = %+v", cfg)
	}
	if _, err := loadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing config")
	}
}
