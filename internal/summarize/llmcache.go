package summarize

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/smartoverview/internal/cache"
)

// ResponsePrefix namespaces model responses inside a shared cache.Storage.
const ResponsePrefix = "smartoverview_llm_"

// ResponseCache memoizes model output by model and prompt.
type ResponseCache struct {
	Storage cache.Storage
	// MaxAge discards older responses. Zero keeps them forever.
	MaxAge time.Duration
	Now    func() time.Time
}

type cachedResponse struct {
	Content string `json:"content"`
	Model   string `json:"model"`
	Created int64  `json:"created"`
}

// ResponseKey is a stable digest of model and prompt.
func ResponseKey(model, prompt string) string {
	h := sha256.New()
	h.Write([]byte(model))
	h.Write([]byte{0})
	h.Write([]byte(prompt))
	return ResponsePrefix + hex.EncodeToString(h.Sum(nil))
}

func (c *ResponseCache) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

// Get returns the cached response. Any failure is a miss.
func (c *ResponseCache) Get(ctx context.Context, model, prompt string) (string, bool) {
	if c == nil || c.Storage == nil {
		return "", false
	}
	key := ResponseKey(model, prompt)
	raw, ok, err := c.Storage.GetItem(ctx, key)
	if err != nil || !ok {
		return "", false
	}
	var cr cachedResponse
	if err := json.Unmarshal([]byte(raw), &cr); err != nil || strings.TrimSpace(cr.Content) == "" {
		return "", false
	}
	if c.MaxAge > 0 && c.now().Sub(time.UnixMilli(cr.Created)) >= c.MaxAge {
		_ = c.Storage.RemoveItem(ctx, key)
		return "", false
	}
	return cr.Content, true
}

// Save stores content; failures are logged only.
func (c *ResponseCache) Save(ctx context.Context, model, prompt, content string) {
	if c == nil || c.Storage == nil {
		return
	}
	b, _ := json.Marshal(cachedResponse{Content: content, Model: model, Created: c.now().UnixMilli()})
	if err := c.Storage.SetItem(ctx, ResponseKey(model, prompt), string(b)); err != nil {
		log.Warn().Err(err).Msg("could not cache model response")
	}
}
