package app

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hyperifyio/smartoverview/internal/overview"
	"github.com/hyperifyio/smartoverview/internal/render"
)

func lectureHTML(url, title string) string {
	return `<html><head><title>` + title + `</title><link rel="canonical" href="` + url + `"></head><body>
<div data-purpose="transcript-container">` + strings.Repeat(title+" explains sets and maps. ", 4) + `</div></body></html>`
}

func newBackend(t *testing.T, hits *int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		if r.URL.Path != "/api/process" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"summary":"Sets overview","code_blocks":["s = set()"],"key_concepts":["Sets are unordered"]}`)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(t *testing.T, backendURL string) Config {
	t.Helper()
	t.Setenv("SMARTOVERVIEW_BACKEND_URL", "")
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.BackendURL = backendURL
	cfg.SettingsPath = filepath.Join(dir, "settings.yaml")
	cfg.Cache.Backend = BackendMemory
	cfg.OpenDelay = 0
	cfg.ExportDir = filepath.Join(dir, "exports")
	return cfg
}

func writeSnapshot(t *testing.T, dir, name, url, title string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	writeFile(t, path, lectureHTML(url, title))
	return path
}

func TestGenerate_CachesAndExports(t *testing.T) {
	var hits int32
	srv := newBackend(t, &hits)
	cfg := testConfig(t, srv.URL)
	a, err := New(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	defer a.Close()
	a.now = func() time.Time { return time.UnixMilli(1700000000000) }

	const url = "https://www.udemy.com/course/go/learn/lecture/1"
	snap := writeSnapshot(t, t.TempDir(), "l1.html", url, "Sets")
	ctx := context.Background()

	c, err := a.Generate(ctx, snap, "", false)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if c.State != overview.Rendered || c.FromCache {
		t.Fatalf("first cycle = %+v", c)
	}
	c, err = a.Generate(ctx, snap, "", false)
	if err != nil || !c.FromCache {
		t.Fatalf("second cycle should come from cache: %+v %v", c, err)
	}
	if got := atomic.LoadInt32(&hits); got != 1 {
		t.Fatalf("backend hits = %d, want 1", got)
	}

	if r, ok := a.Cached(ctx, url); !ok || r.Summary != "Sets overview" {
		t.Fatalf("Cached = %+v %v", r, ok)
	}
	if st := a.Stats(ctx); st.Total != 1 || st.Valid != 1 {
		t.Fatalf("stats = %+v", st)
	}

	path, err := a.Export(ctx, url, render.FormatMarkdown)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if filepath.Base(path) != "udemy-summary-1700000000000.md" {
		t.Fatalf("export path = %s", path)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if !strings.Contains(string(b), "Sets overview") {
		t.Fatalf("export missing summary: %s", b)
	}

	if n := a.ClearCache(ctx); n != 1 {
		t.Fatalf("cleared %d, want 1", n)
	}
	if _, err := a.Export(ctx, url, render.FormatMarkdown); !errors.Is(err, ErrNotCached) {
		t.Fatalf("export after clear: %v", err)
	}
	if n := a.PurgeCache(ctx); n != 0 {
		t.Fatalf("purged %d from empty cache", n)
	}
}

func TestGenerate_URLOverride(t *testing.T) {
	var hits int32
	srv := newBackend(t, &hits)
	a, err := New(context.Background(), testConfig(t, srv.URL), nil)
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	defer a.Close()

	snap := writeSnapshot(t, t.TempDir(), "l.html", "https://example.com/declared", "Maps")
	if _, err := a.Generate(context.Background(), snap, "https://example.com/override", false); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, ok := a.Cached(context.Background(), "https://example.com/override"); !ok {
		t.Fatalf("expected entry under override URL")
	}
	if _, ok := a.Cached(context.Background(), "https://example.com/declared"); ok {
		t.Fatalf("declared URL should not be cached")
	}
}

func TestGenerateAll_KeepsOrder(t *testing.T) {
	var hits int32
	srv := newBackend(t, &hits)
	cfg := testConfig(t, srv.URL)
	cfg.Concurrency = 2
	a, err := New(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	defer a.Close()

	dir := t.TempDir()
	refs := []string{
		writeSnapshot(t, dir, "a.html", "https://example.com/a", "Alpha"),
		filepath.Join(dir, "missing.html"),
		writeSnapshot(t, dir, "c.html", "https://example.com/c", "Gamma"),
	}
	results := a.GenerateAll(context.Background(), refs, false)
	if len(results) != len(refs) {
		t.Fatalf("got %d results", len(results))
	}
	for i, r := range results {
		if r.Ref != refs[i] {
			t.Fatalf("result %d ref = %s, want %s", i, r.Ref, refs[i])
		}
	}
	if results[0].Err != nil || results[2].Err != nil {
		t.Fatalf("unexpected errors: %v / %v", results[0].Err, results[2].Err)
	}
	if results[1].Err == nil || results[1].Cycle.State != overview.Failed {
		t.Fatalf("missing snapshot should fail: %+v", results[1])
	}
	if got := atomic.LoadInt32(&hits); got != 2 {
		t.Fatalf("backend hits = %d, want 2", got)
	}
}

func TestOpen_WaitsForTranscript(t *testing.T) {
	var loads int32
	lecture := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if atomic.AddInt32(&loads, 1) < 3 {
			_, _ = io.WriteString(w, "<html><head><title>Loading</title></head><body><div id=app></div></body></html>")
			return
		}
		_, _ = io.WriteString(w, lectureHTML(r.URL.String(), "Ready"))
	}))
	defer lecture.Close()

	cfg := testConfig(t, "http://unused.invalid")
	cfg.Wait = 10 * time.Second
	a, err := New(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	defer a.Close()

	p, err := a.Open(context.Background(), lecture.URL+"/lecture/9", "")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if got := atomic.LoadInt32(&loads); got != 3 {
		t.Fatalf("page loads = %d, want 3", got)
	}
	if p.Title() != "Ready" {
		t.Fatalf("title = %q", p.Title())
	}
}

func TestBackendURL_SettingsFile(t *testing.T) {
	cfg := testConfig(t, "")
	a, err := New(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	defer a.Close()
	ctx := context.Background()

	if got := a.BackendURL(ctx); got != "https://udemy-extension.onrender.com" {
		t.Fatalf("default backend = %q", got)
	}
	if err := a.SaveBackendURL("  http://localhost:8000/ "); err != nil {
		t.Fatalf("save: %v", err)
	}
	if got := a.BackendURL(ctx); got != "http://localhost:8000" {
		t.Fatalf("saved backend = %q", got)
	}
	if err := a.SaveBackendURL("   "); err == nil {
		t.Fatalf("expected error for blank URL")
	}
}

func TestNewService_MockWithoutModel(t *testing.T) {
	cfg := DefaultConfig()
	if s := NewService(cfg, nil); s.Configured() {
		t.Fatalf("service without model should not be configured")
	}
	cfg.LLM.Model = "m"
	cfg.LLM.BaseURL = "http://localhost:1/v1"
	s := NewService(cfg, nil)
	if !s.Configured() || s.Cache != nil {
		t.Fatalf("service = %+v", s)
	}
}

func TestNew_RejectsInvalidConfig(t *testing.T) {
	cfg := testConfig(t, "")
	cfg.Cache.Backend = "etcd"
	if _, err := New(context.Background(), cfg, nil); err == nil {
		t.Fatalf("expected config error")
	}
}
