package gemini

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cespare/xxhash/v2"
)

// defaultCacheTTL is how long a cached response stays valid. Selector
// generation is deterministic enough that a week-old answer for the same
// prompt is still good.
const defaultCacheTTL = 7 * 24 * time.Hour

// keyPrefixLen bounds how much of the prompt feeds the cache key. The
// head of a prompt contains the URL and instructions, which is enough to
// distinguish pages without hashing 30KB of markup.
const keyPrefixLen = 500

// PromptCache is a file-backed cache of generation responses keyed by a
// hash of the prompt head.
type PromptCache struct {
	dir string
	ttl time.Duration
	now func() time.Time
}

// CacheOption configures a PromptCache.
type CacheOption func(*PromptCache)

// WithTTL overrides the cache expiry window.
func WithTTL(ttl time.Duration) CacheOption {
	return func(c *PromptCache) { c.ttl = ttl }
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) CacheOption {
	return func(c *PromptCache) { c.now = now }
}

// NewPromptCache creates a PromptCache rooted at dir.
func NewPromptCache(dir string, opts ...CacheOption) *PromptCache {
	c := &PromptCache{dir: dir, ttl: defaultCacheTTL, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type cacheEntry struct {
	Response  string    `json:"response"`
	CreatedAt time.Time `json:"created_at"`
}

func (c *PromptCache) path(prompt string) string {
	if len(prompt) > keyPrefixLen {
		prompt = prompt[:keyPrefixLen]
	}
	key := fmt.Sprintf("%016x", xxhash.Sum64String(prompt))
	return filepath.Join(c.dir, key+".json")
}

// Get returns the cached response for the prompt, if present and fresh.
func (c *PromptCache) Get(prompt string) (string, bool) {
	data, err := os.ReadFile(c.path(prompt))
	if err != nil {
		return "", false
	}

	var entry cacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return "", false
	}
	if c.now().Sub(entry.CreatedAt) > c.ttl {
		return "", false
	}
	return entry.Response, true
}

// Put stores a response for the prompt.
func (c *PromptCache) Put(prompt, response string) error {
	if err := os.MkdirAll(c.dir, 0755); err != nil {
		return err
	}

	data, err := json.Marshal(cacheEntry{Response: response, CreatedAt: c.now()})
	if err != nil {
		return err
	}
	return os.WriteFile(c.path(prompt), data, 0644)
}
