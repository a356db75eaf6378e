package slog

import (
	"context"
	"log/slog"

	"github.com/fcoelho/arremate"
)

// Ensure LoggingSelectorCache implements arremate.SelectorCacheService.
var _ arremate.SelectorCacheService = (*LoggingSelectorCache)(nil)

// LoggingSelectorCache wraps a SelectorCacheService with debug logging
// for hits, misses, and outcome feedback.
type LoggingSelectorCache struct {
	next   arremate.SelectorCacheService
	logger *slog.Logger
}

// NewLoggingSelectorCache creates a new LoggingSelectorCache.
func NewLoggingSelectorCache(next arremate.SelectorCacheService, logger *slog.Logger) *LoggingSelectorCache {
	return &LoggingSelectorCache{next: next, logger: logger}
}

// Get delegates to the wrapped cache and logs the hit or miss.
func (c *LoggingSelectorCache) Get(ctx context.Context, url string, pageType arremate.PageType) (*arremate.SelectorCacheEntry, error) {
	entry, err := c.next.Get(ctx, url, pageType)
	if err != nil {
		if arremate.ErrorCode(err) == arremate.ENOTFOUND {
			c.logger.Debug("selector cache miss", "url", url, "pageType", string(pageType))
		}
		return nil, err
	}
	c.logger.Debug("selector cache hit",
		"url", url,
		"pageType", string(pageType),
		"successRate", entry.SuccessRate,
		"useCount", entry.UseCount,
	)
	return entry, nil
}

// Put delegates to the wrapped cache.
func (c *LoggingSelectorCache) Put(ctx context.Context, url, domain string, pageType arremate.PageType, selectors arremate.SelectorSet) error {
	return c.next.Put(ctx, url, domain, pageType, selectors)
}

// RecordOutcome delegates to the wrapped cache and logs the outcome.
func (c *LoggingSelectorCache) RecordOutcome(ctx context.Context, url string, success bool) error {
	err := c.next.RecordOutcome(ctx, url, success)
	if err == nil {
		c.logger.Debug("selector outcome recorded", "url", url, "success", success)
	}
	return err
}

// Invalidate delegates to the wrapped cache.
func (c *LoggingSelectorCache) Invalidate(ctx context.Context, url string) error {
	c.logger.Info("selector cache entry invalidated", "url", url)
	return c.next.Invalidate(ctx, url)
}
