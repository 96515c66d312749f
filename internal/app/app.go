package app

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/pool"

	"github.com/hyperifyio/smartoverview/internal/backend"
	"github.com/hyperifyio/smartoverview/internal/cache"
	"github.com/hyperifyio/smartoverview/internal/fetch"
	"github.com/hyperifyio/smartoverview/internal/llm"
	"github.com/hyperifyio/smartoverview/internal/overview"
	"github.com/hyperifyio/smartoverview/internal/page"
	"github.com/hyperifyio/smartoverview/internal/render"
	"github.com/hyperifyio/smartoverview/internal/settings"
	"github.com/hyperifyio/smartoverview/internal/summarize"
	"github.com/hyperifyio/smartoverview/internal/summary"
	"github.com/hyperifyio/smartoverview/internal/transcript"
	"github.com/hyperifyio/smartoverview/internal/watch"
)

// ErrNotCached is returned by Export when no valid entry exists for a URL.
var ErrNotCached = errors.New("no cached overview for this page")

// App wires the overview pipeline to the configured storage, fetcher and
// settings.
type App struct {
	cfg          Config
	storage      cache.Storage
	closeStorage func() error
	store        *cache.Store
	settings     *settings.FileProvider
	fetcher      *fetch.Client
	extractor    *transcript.Extractor
	overview     *overview.Overview
	now          func() time.Time
}

// New opens storage and builds the pipeline. r receives lifecycle events of
// single-page runs; nil discards them.
func New(ctx context.Context, cfg Config, r render.Renderer) (*App, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	storage, closeFn, err := OpenStorage(ctx, cfg.Cache)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	store := cache.New(storage)
	store.TTL = cfg.Cache.TTL

	fp := &settings.FileProvider{Path: cfg.SettingsPath}
	var provider settings.Provider = fp
	if cfg.BackendURL != "" {
		provider = settings.Static(cfg.BackendURL)
	}

	fetcher := &fetch.Client{
		HTTPClient:        newHTTPClient(0),
		UserAgent:         cfg.UserAgent,
		Cookie:            cfg.Cookie,
		MaxAttempts:       cfg.FetchAttempts,
		PerRequestTimeout: cfg.FetchTimeout,
		MaxConcurrent:     cfg.Concurrency,
	}
	extractor := transcript.New()
	extractor.OpenDelay = cfg.OpenDelay

	ov := overview.New(overview.Deps{
		Extractor:    extractor,
		Cache:        store,
		Settings:     provider,
		Backend:      &backend.Client{HTTPClient: newHTTPClient(0), UserAgent: cfg.UserAgent, Timeout: cfg.BackendTimeout},
		Renderer:     r,
		SingleFlight: cfg.SingleFlight,
	})

	return &App{
		cfg:          cfg,
		storage:      storage,
		closeStorage: closeFn,
		store:        store,
		settings:     fp,
		fetcher:      fetcher,
		extractor:    extractor,
		overview:     ov,
		now:          time.Now,
	}, nil
}

// Close releases the cache storage.
func (a *App) Close() error {
	if a == nil || a.closeStorage == nil {
		return nil
	}
	return a.closeStorage()
}

// Open loads ref as a page. With Config.Wait set, a remote page is
// re-fetched on a backoff schedule until a transcript is detectable or the
// wait elapses; a timeout is not an error.
func (a *App) Open(ctx context.Context, ref, urlOverride string) (page.Page, error) {
	p, err := page.Load(ctx, ref, urlOverride, a.fetcher)
	if err != nil {
		return nil, err
	}
	if a.cfg.Wait <= 0 {
		return p, nil
	}
	refresher, canRefresh := p.(interface{ Refresh() })
	attempt := 0
	err = watch.Until(ctx, a.cfg.WaitSchedule(), func(ctx context.Context) (bool, error) {
		if attempt > 0 && canRefresh {
			refresher.Refresh()
		}
		attempt++
		doc, err := p.Document(ctx)
		if err != nil {
			log.Debug().Err(err).Str("url", p.URL()).Msg("page not ready")
			return false, nil
		}
		return a.extractor.Ready(doc), nil
	})
	switch {
	case errors.Is(err, watch.ErrTimeout):
		log.Warn().Str("url", p.URL()).Dur("waited", a.cfg.Wait).Msg("transcript did not appear; continuing")
	case err != nil:
		return nil, err
	}
	return p, nil
}

// Generate runs one overview cycle for ref.
func (a *App) Generate(ctx context.Context, ref, urlOverride string, force bool) (overview.Cycle, error) {
	p, err := a.Open(ctx, ref, urlOverride)
	if err != nil {
		return overview.Cycle{State: overview.Failed, Err: err}, err
	}
	return a.overview.Run(ctx, p, force)
}

// BatchResult is the outcome for one ref of GenerateAll.
type BatchResult struct {
	Ref   string
	Cycle overview.Cycle
	Err   error

	index int
}

// GenerateAll runs Generate for each ref with at most Config.Concurrency
// cycles in flight. Results keep the order of refs.
func (a *App) GenerateAll(ctx context.Context, refs []string, force bool) []BatchResult {
	n := a.cfg.Concurrency
	if n < 1 {
		n = 1
	}
	p := pool.NewWithResults[BatchResult]().WithMaxGoroutines(n)
	for i, ref := range refs {
		p.Go(func() BatchResult {
			c, err := a.Generate(ctx, ref, "", force)
			if err != nil {
				log.Warn().Err(err).Str("ref", ref).Msg("overview failed")
			}
			return BatchResult{Ref: ref, Cycle: c, Err: err, index: i}
		})
	}
	results := p.Wait()
	sort.Slice(results, func(i, j int) bool { return results[i].index < results[j].index })
	return results
}

// Cached returns the newest valid overview for url without fetching.
func (a *App) Cached(ctx context.Context, url string) (summary.Result, bool) {
	return a.overview.Cached(ctx, url)
}

func (a *App) Stats(ctx context.Context) cache.Stats { return a.store.Stats(ctx) }

// ClearCache removes every overview entry and returns how many were removed.
func (a *App) ClearCache(ctx context.Context) int { return a.store.ClearAll(ctx) }

// PurgeCache removes expired and unreadable entries.
func (a *App) PurgeCache(ctx context.Context) int { return a.store.Purge(ctx) }

// Export writes the cached overview for url into Config.ExportDir and
// returns the written path.
func (a *App) Export(ctx context.Context, url string, f render.Format) (string, error) {
	r, ok := a.Cached(ctx, url)
	if !ok {
		return "", ErrNotCached
	}
	path, err := render.Export(a.cfg.ExportDir, f, r, a.now())
	if err != nil {
		return "", err
	}
	log.Info().Str("path", path).Str("format", string(f)).Msg("overview exported")
	return path, nil
}

// BackendURL is the effective backend base URL.
func (a *App) BackendURL(ctx context.Context) string {
	if a.cfg.BackendURL != "" {
		return a.cfg.BackendURL
	}
	return a.settings.BackendURL(ctx)
}

// SaveBackendURL persists url to the settings file.
func (a *App) SaveBackendURL(url string) error {
	return a.settings.Save(url)
}

// NewService builds the summarization service used by the backend server.
// Model responses are cached in storage; a nil storage disables the cache.
func NewService(cfg Config, storage cache.Storage) *summarize.Service {
	s := &summarize.Service{AssistCode: cfg.LLM.AssistCode}
	if cfg.LLM.Model == "" {
		log.Warn().Msg("no model configured; serving mock summaries")
		return s
	}
	s.Client = llm.New(cfg.LLM.BaseURL, cfg.LLM.APIKey, newHTTPClient(cfg.ProcessTimeout))
	s.Model = cfg.LLM.Model
	if storage != nil {
		s.Cache = &summarize.ResponseCache{Storage: storage, MaxAge: cfg.Cache.TTL}
	}
	return s
}
