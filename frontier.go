package arremate

import "context"

// URLFrontier manages the fetch engine's work queue with deduplication.
type URLFrontier interface {
	// Push adds a request to the frontier.
	// Returns false if the URL has already been seen.
	Push(req Request) bool

	// Pop returns the next request in schedule order.
	// Returns false if the frontier is empty.
	Pop() (Request, bool)

	// Len returns the number of queued requests.
	Len() int

	// Seen returns true if the URL has been processed or queued.
	Seen(url string) bool
}

// DomainLimiter provides per-domain rate limiting.
type DomainLimiter interface {
	// Wait blocks until the rate limit allows a request to the domain.
	// Returns an error if the context is canceled.
	Wait(ctx context.Context, domain string) error
}
