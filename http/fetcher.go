// Package http provides the HTTP transport implementation of
// arremate.Fetcher.
package http

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/fcoelho/arremate"
)

// DefaultFetchTimeout is the default timeout for HTTP requests.
const DefaultFetchTimeout = 30 * time.Second

// defaultUserAgent mirrors a desktop browser. Auction sites routinely
// serve challenge pages to anything that announces itself as a bot.
const defaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// maxBodySize caps how much of a response is read. Listing pages fit
// comfortably; anything larger is not worth classifying.
const maxBodySize = 10 << 20

// Ensure Fetcher implements arremate.Fetcher at compile time.
var _ arremate.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves pages over plain HTTP. Requests flagged as carrying
// manual cookies get the domain's stored cookie set attached.
type Fetcher struct {
	client  *http.Client
	cookies arremate.CookieStore
	timeout time.Duration
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the timeout for HTTP requests.
// Defaults to DefaultFetchTimeout if not specified.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithCookieStore supplies the store manual cookies are read from.
func WithCookieStore(store arremate.CookieStore) Option {
	return func(f *Fetcher) {
		f.cookies = store
	}
}

// NewFetcher creates a new HTTP-based Fetcher.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		timeout: DefaultFetchTimeout,
	}
	for _, opt := range opts {
		opt(f)
	}

	f.client = &http.Client{
		Timeout: f.timeout,
	}

	return f
}

// Fetch retrieves the request's URL and returns the full response.
// Non-2xx responses are returned as pages, not errors; errors are
// reserved for transport failures.
func (f *Fetcher) Fetch(ctx context.Context, req arremate.Request) (*arremate.Page, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, req.URL, nil)
	if err != nil {
		return nil, arremate.Errorf(arremate.EINVALID, "invalid request URL: %v", err)
	}
	httpReq.Header.Set("User-Agent", defaultUserAgent)
	httpReq.Header.Set("Accept-Language", "pt-BR,pt;q=0.9,en;q=0.5")

	if req.Meta.ManualCookies && f.cookies != nil {
		if cookies, ok, err := f.cookies.LoadCookies(req.Meta.Domain); err == nil && ok {
			for _, c := range cookies {
				httpReq.AddCookie(&http.Cookie{Name: c.Name, Value: c.Value})
			}
		}
	}

	resp, err := f.client.Do(httpReq)
	if err != nil {
		return nil, arremate.Errorf(arremate.EUNAVAILABLE, "fetch %s: %v", req.URL, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, arremate.Errorf(arremate.EUNAVAILABLE, "read %s: %v", req.URL, err)
	}

	return &arremate.Page{
		URL:        req.URL,
		Body:       string(body),
		Header:     resp.Header,
		StatusCode: resp.StatusCode,
		Meta:       req.Meta,
	}, nil
}

// Close releases resources. A no-op for the plain HTTP client.
func (f *Fetcher) Close() error {
	return nil
}
