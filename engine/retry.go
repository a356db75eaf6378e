package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/fcoelho/arremate"
)

// DefaultRetryDelays returns the backoff delays for fetch retries:
// 1s, 2s, 4s.
func DefaultRetryDelays() []time.Duration {
	return []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}
}

// fetchWithRetry fetches a request, retrying transport failures with the
// given backoff delays. One initial attempt plus one retry per delay.
func fetchWithRetry(ctx context.Context, fetcher arremate.Fetcher, req arremate.Request, delays []time.Duration, logger *slog.Logger) (*arremate.Page, error) {
	maxAttempts := len(delays) + 1

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		page, err := fetcher.Fetch(ctx, req)
		if err == nil {
			return page, nil
		}
		lastErr = err

		if attempt >= maxAttempts-1 {
			break
		}

		logger.Debug("retrying fetch", "url", req.URL, "attempt", attempt+2, "error", err)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delays[attempt]):
		}
	}

	return nil, lastErr
}
