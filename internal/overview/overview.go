// Package overview drives one generation cycle: extract the transcript,
// consult the cache, call the backend on a miss or forced refresh, write the
// result back, and hand it to a renderer.
package overview

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/hyperifyio/smartoverview/internal/cache"
	"github.com/hyperifyio/smartoverview/internal/page"
	"github.com/hyperifyio/smartoverview/internal/render"
	"github.com/hyperifyio/smartoverview/internal/settings"
	"github.com/hyperifyio/smartoverview/internal/summary"
	"github.com/hyperifyio/smartoverview/internal/transcript"
)

// State is the display state of the most recent cycle.
type State int

const (
	Idle State = iota
	Loading
	Rendered
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Rendered:
		return "rendered"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Cache is the subset of *cache.Store the orchestrator needs.
type Cache interface {
	Get(ctx context.Context, url, transcript string) (summary.Result, bool)
	GetByURL(ctx context.Context, url string) (summary.Result, bool)
	Set(ctx context.Context, url, transcript string, data summary.Result, opts ...cache.SetOption) error
}

// Backend produces a result for a request.
type Backend interface {
	Process(ctx context.Context, baseURL string, req summary.Request) (summary.Result, error)
}

// ErrNoBackend is returned when a cycle needs the backend but none is wired.
var ErrNoBackend = errors.New("no backend configured")

// Deps are the collaborators of an Overview. Only Backend is required for a
// cache miss; a nil Extractor degrades to the placeholder transcript and a
// nil Cache disables caching.
type Deps struct {
	Extractor transcript.Source
	Cache     Cache
	Settings  settings.Provider
	Backend   Backend
	Renderer  render.Renderer
	// SingleFlight collapses concurrent cycles for the same URL and force
	// flag into one. Off by default: overlapping cycles race and the last
	// to finish wins.
	SingleFlight bool
}

// Cycle is the outcome of one Run.
type Cycle struct {
	State      State
	Result     summary.Result
	FromCache  bool
	Transcript transcript.Outcome
	Err        error
	Elapsed    time.Duration
}

// Overview is re-entrant: every Run starts a fresh cycle from Idle.
type Overview struct {
	deps  Deps
	group singleflight.Group

	mu    sync.Mutex
	state State
}

// New wires d, filling in default settings and a discarding renderer.
func New(d Deps) *Overview {
	if d.Settings == nil {
		d.Settings = settings.Static("")
	}
	if d.Renderer == nil {
		d.Renderer = render.Discard{}
	}
	return &Overview{deps: d}
}

// State reports the state set by the most recent transition of any cycle.
func (o *Overview) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

func (o *Overview) transition(s State) {
	o.mu.Lock()
	o.state = s
	o.mu.Unlock()
}

// Cached looks up a result for url before any transcript is extracted.
func (o *Overview) Cached(ctx context.Context, url string) (summary.Result, bool) {
	if o.deps.Cache == nil {
		return summary.Result{}, false
	}
	return o.deps.Cache.GetByURL(ctx, url)
}

// Run executes one generation cycle for p. The returned error is the same
// as Cycle.Err and is non-nil only when the cycle ends Failed.
func (o *Overview) Run(ctx context.Context, p page.Page, forceRefresh bool) (Cycle, error) {
	if !o.deps.SingleFlight || p == nil {
		c := o.run(ctx, p, forceRefresh)
		return c, c.Err
	}
	key := fmt.Sprintf("%s|%t", p.URL(), forceRefresh)
	v, _, shared := o.group.Do(key, func() (any, error) {
		return o.run(ctx, p, forceRefresh), nil
	})
	c := v.(Cycle)
	if shared {
		log.Debug().Str("url", p.URL()).Bool("force", forceRefresh).Msg("joined in-flight generation")
	}
	return c, c.Err
}

func (o *Overview) run(ctx context.Context, p page.Page, forceRefresh bool) Cycle {
	start := time.Now()
	o.transition(Loading)
	o.deps.Renderer.Loading()

	outcome := o.extract(ctx, p)
	c := Cycle{Transcript: outcome}
	url, title := pageIdentity(p)
	logger := log.With().Str("url", url).Bool("force", forceRefresh).Logger()

	if !forceRefresh && o.deps.Cache != nil {
		if data, ok := o.deps.Cache.Get(ctx, url, outcome.Text); ok {
			c.Result, c.FromCache = data, true
			return o.finish(c, start)
		}
	}

	if o.deps.Backend == nil {
		c.Err = ErrNoBackend
		return o.finish(c, start)
	}
	baseURL := o.deps.Settings.BackendURL(ctx)
	logger.Info().Str("backend", baseURL).Str("strategy", outcome.Strategy).Msg("calling backend")
	data, err := o.deps.Backend.Process(ctx, baseURL, summary.Request{
		Transcript:   outcome.Text,
		LectureTitle: title,
		ForceRefresh: forceRefresh,
	})
	if err != nil {
		c.Err = err
		return o.finish(c, start)
	}
	data = data.Normalize()

	if o.deps.Cache != nil {
		if err := o.deps.Cache.Set(ctx, url, outcome.Text, data, cache.WithLectureTitle(title)); err != nil {
			logger.Warn().Err(err).Msg("could not store overview in cache")
		}
	}
	c.Result = data
	return o.finish(c, start)
}

func (o *Overview) extract(ctx context.Context, p page.Page) transcript.Outcome {
	if o.deps.Extractor == nil {
		log.Warn().Msg("no transcript extractor available; using placeholder")
		return transcript.NotFound().OrPlaceholder()
	}
	out := o.deps.Extractor.Extract(ctx, p)
	if !out.Found() {
		log.Info().Msg("no transcript found; using placeholder")
	}
	return out.OrPlaceholder()
}

func (o *Overview) finish(c Cycle, start time.Time) Cycle {
	c.Elapsed = time.Since(start)
	if c.Err != nil {
		c.State = Failed
		o.transition(Failed)
		log.Error().Err(c.Err).Dur("elapsed", c.Elapsed).Msg("generation failed")
		o.deps.Renderer.Error(c.Err)
		return c
	}
	c.State = Rendered
	o.transition(Rendered)
	log.Info().Bool("fromCache", c.FromCache).Dur("elapsed", c.Elapsed).Msg("overview rendered")
	o.deps.Renderer.Render(c.Result, c.FromCache)
	return c
}

func pageIdentity(p page.Page) (url, title string) {
	if p == nil {
		return "", summary.DefaultLectureTitle
	}
	title = strings.TrimSpace(p.Title())
	if title == "" {
		title = summary.DefaultLectureTitle
	}
	return p.URL(), title
}
