package arremate

import (
	"context"
	"net/http"
	"strings"
)

// RequestMeta carries crawl-control state across the fetch boundary.
// The engine passes it through untouched; only the controller reads it.
type RequestMeta struct {
	// Domain the URL belongs to, for quota accounting.
	Domain string

	// Depth is the navigation distance from the seed URL.
	Depth int

	// ForcedType pins the page type decided at scheduling time.
	// Empty means the classifier decides when the response arrives.
	ForcedType PageType

	// Seed marks a run's starting URL, which is always treated as a
	// listing so child links can be discovered.
	Seed bool

	// ManualCookies marks a request carrying operator-supplied cookies.
	// Challenge detection is skipped for such requests to avoid an
	// endless challenge loop on a single cookie set.
	ManualCookies bool
}

// Request asks the fetch engine to retrieve a URL.
type Request struct {
	URL  string
	Meta RequestMeta
}

// Page is one fetched response delivered by the fetch engine.
type Page struct {
	URL        string
	Body       string
	Header     http.Header
	StatusCode int
	Meta       RequestMeta
}

// textContentTypes are the content types challenge detection and
// classification are willing to inspect.
var textContentTypes = []string{
	"text/html", "text/plain", "application/json", "application/xml",
	"text/xml", "application/javascript", "text/css",
}

// IsText reports whether the response body is textual. Binary responses
// are never classified or challenge-checked.
func (p *Page) IsText() bool {
	ct := strings.ToLower(p.Header.Get("Content-Type"))
	if ct == "" {
		return false
	}
	for _, t := range textContentTypes {
		if strings.Contains(ct, t) {
			return true
		}
	}
	return false
}

// HandleResult is the outcome of handling one fetched page: follow-up
// requests to schedule and, for detail pages, an extracted record for the
// pipeline to persist.
type HandleResult struct {
	Next   []Request
	Record *AuctionRecord
}

// Handler consumes fetched pages on behalf of the fetch engine.
// Implementations must tolerate arbitrary interleaving of completions but
// are invoked one response at a time.
type Handler interface {
	// StartRequests returns the initial request set for a run.
	// Returns EINVALID when the seed set is empty; that is the only
	// error that aborts a run outright.
	StartRequests(ctx context.Context, seeds []string) ([]Request, error)

	// HandleResponse processes one fetched page and returns follow-up
	// work. Recoverable failures return an empty result, not an error.
	HandleResponse(ctx context.Context, page *Page) (*HandleResult, error)
}

// Fetcher retrieves one URL on behalf of the fetch engine.
type Fetcher interface {
	// Fetch retrieves the request's URL and returns the full response.
	// Non-2xx responses are returned as pages, not errors; errors are
	// reserved for transport failures.
	Fetch(ctx context.Context, req Request) (*Page, error)

	// Close releases transport resources.
	Close() error
}
