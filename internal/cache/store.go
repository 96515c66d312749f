// Package cache stores generated lecture overviews keyed by a hash of the
// page URL and transcript text.
//
// The hash is 32 bits and collisions are expected. Correctness rests on the
// URL recorded inside each entry: URL-only lookups accept an entry only when
// its stored url equals the query exactly.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/smartoverview/internal/summary"
)

// DefaultTTL is how long an entry stays valid after it is written.
const DefaultTTL = 24 * time.Hour

// Entry is the persisted form of one cached overview.
type Entry struct {
	Data         summary.Result `json:"data"`
	Timestamp    int64          `json:"timestamp"`
	URL          string         `json:"url"`
	LectureTitle string         `json:"lectureTitle"`
}

// Stats summarises the namespace without modifying it.
type Stats struct {
	Total   int `json:"total"`
	Valid   int `json:"valid"`
	Expired int `json:"expired"`
}

// Store is the overview cache. Storage errors never escape Get/GetByURL;
// they are logged and reported as misses.
type Store struct {
	Storage Storage
	TTL     time.Duration
	// Now returns the current time. Nil uses time.Now.
	Now func() time.Time
}

// New returns a Store over s with the default TTL.
func New(s Storage) *Store {
	return &Store{Storage: s, TTL: DefaultTTL}
}

// SetOption adjusts an entry before it is written.
type SetOption func(*Entry)

// WithLectureTitle records the page title alongside the entry.
func WithLectureTitle(title string) SetOption {
	return func(e *Entry) { e.LectureTitle = title }
}

func (s *Store) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Store) ttl() time.Duration {
	if s.TTL > 0 {
		return s.TTL
	}
	return DefaultTTL
}

func (s *Store) valid(e Entry) bool {
	return s.now().UnixMilli()-e.Timestamp < s.ttl().Milliseconds()
}

// Get returns the overview cached for (url, transcript). Expired entries are
// removed as a side effect. An entry recorded for a different url (a hash
// collision) is a miss and is left in place.
func (s *Store) Get(ctx context.Context, url, transcript string) (summary.Result, bool) {
	key := Key(url, transcript)
	e, ok, err := s.read(ctx, key)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache read failed; treating as miss")
		return summary.Result{}, false
	}
	if !ok {
		log.Debug().Str("key", key).Msg("cache miss")
		return summary.Result{}, false
	}
	if !s.valid(e) {
		log.Debug().Str("key", key).Msg("cache miss: entry expired")
		s.remove(ctx, key)
		return summary.Result{}, false
	}
	if e.URL != url {
		log.Debug().Str("key", key).Msg("cache miss: key collision with another url")
		return summary.Result{}, false
	}
	log.Debug().Str("key", key).Msg("cache hit")
	return e.Data.Normalize(), true
}

// GetByURL finds an overview for url without knowing the transcript. Among
// keys whose url-hash segment matches, expired entries are removed and the
// first whose stored url equals url wins.
func (s *Store) GetByURL(ctx context.Context, url string) (summary.Result, bool) {
	urlHash := Hash(url)
	keys, err := s.Storage.Keys(ctx, Prefix+urlHash+"_")
	if err != nil {
		log.Warn().Err(err).Msg("cache key listing failed; treating as miss")
		return summary.Result{}, false
	}
	for _, key := range keys {
		if seg, ok := urlSegment(key); !ok || seg != urlHash {
			continue
		}
		e, ok, err := s.read(ctx, key)
		if err != nil {
			log.Warn().Err(err).Str("key", key).Msg("skipping unreadable cache entry")
			continue
		}
		if !ok {
			continue
		}
		if !s.valid(e) {
			log.Debug().Str("key", key).Msg("removing expired cache entry")
			s.remove(ctx, key)
			continue
		}
		if e.URL == url {
			log.Debug().Str("key", key).Msg("cache hit by url")
			return e.Data.Normalize(), true
		}
	}
	log.Debug().Str("url", url).Msg("cache miss by url")
	return summary.Result{}, false
}

// Set writes data for (url, transcript), overwriting any previous entry.
// data is normalized first, so nil slices read back as empty ones.
func (s *Store) Set(ctx context.Context, url, transcript string, data summary.Result, opts ...SetOption) error {
	e := Entry{Data: data.Normalize(), Timestamp: s.now().UnixMilli(), URL: url}
	for _, opt := range opts {
		opt(&e)
	}
	b, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}
	key := Key(url, transcript)
	if err := s.Storage.SetItem(ctx, key, string(b)); err != nil {
		return fmt.Errorf("store cache entry: %w", err)
	}
	log.Debug().Str("key", key).Msg("stored overview in cache")
	return nil
}

// ClearAll deletes every namespaced entry and returns how many were removed.
func (s *Store) ClearAll(ctx context.Context) int {
	keys, err := s.Storage.Keys(ctx, Prefix)
	if err != nil {
		log.Warn().Err(err).Msg("cache clear: key listing failed")
		return 0
	}
	cleared := 0
	for _, key := range keys {
		if err := s.Storage.RemoveItem(ctx, key); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("cache clear: remove failed")
			continue
		}
		cleared++
	}
	log.Info().Int("cleared", cleared).Msg("cleared cached overviews")
	return cleared
}

// Stats classifies every namespaced entry. Unreadable entries count as
// expired. Nothing is removed.
func (s *Store) Stats(ctx context.Context) Stats {
	var st Stats
	keys, err := s.Storage.Keys(ctx, Prefix)
	if err != nil {
		log.Warn().Err(err).Msg("cache stats: key listing failed")
		return st
	}
	for _, key := range keys {
		e, ok, err := s.read(ctx, key)
		if err == nil && !ok {
			continue
		}
		st.Total++
		if err == nil && s.valid(e) {
			st.Valid++
		} else {
			st.Expired++
		}
	}
	return st
}

// Purge removes expired and unreadable entries and returns how many went.
func (s *Store) Purge(ctx context.Context) int {
	keys, err := s.Storage.Keys(ctx, Prefix)
	if err != nil {
		log.Warn().Err(err).Msg("cache purge: key listing failed")
		return 0
	}
	removed := 0
	for _, key := range keys {
		e, ok, err := s.read(ctx, key)
		if err == nil && (!ok || s.valid(e)) {
			continue
		}
		if s.remove(ctx, key) {
			removed++
		}
	}
	return removed
}

func (s *Store) read(ctx context.Context, key string) (Entry, bool, error) {
	raw, ok, err := s.Storage.GetItem(ctx, key)
	if err != nil || !ok {
		return Entry{}, false, err
	}
	var e Entry
	if err := json.Unmarshal([]byte(raw), &e); err != nil {
		return Entry{}, false, fmt.Errorf("decode cache entry: %w", err)
	}
	return e, true, nil
}

func (s *Store) remove(ctx context.Context, key string) bool {
	if err := s.Storage.RemoveItem(ctx, key); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache remove failed")
		return false
	}
	return true
}
