// Package rod captures page screenshots using Chrome browser automation.
// Screenshots exist for operators: they show what a challenge page or an
// extracted listing actually looked like at fetch time.
package rod

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fcoelho/arremate"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// Ensure Screenshotter implements arremate.Screenshotter at compile time.
var _ arremate.Screenshotter = (*Screenshotter)(nil)

// Screenshotter captures rendered pages to PNG files using a headless
// Chrome browser. Safe for concurrent use by multiple goroutines.
type Screenshotter struct {
	browser *rod.Browser
	dir     string
	cookies arremate.CookieStore
	now     func() time.Time
}

// ScreenshotterOption configures a Screenshotter.
type ScreenshotterOption func(*Screenshotter)

// WithCookieStore makes captures apply a domain's stored manual cookies
// before navigating, so pages behind a cleared challenge render.
func WithCookieStore(store arremate.CookieStore) ScreenshotterOption {
	return func(s *Screenshotter) { s.cookies = store }
}

// NewScreenshotter launches a headless Chrome browser and saves captures
// under dir. Close must be called when the Screenshotter is no longer
// needed.
func NewScreenshotter(dir string, opts ...ScreenshotterOption) (*Screenshotter, error) {
	l := launcher.New().Headless(true)
	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launching browser: %w", err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("connecting to browser: %w", err)
	}

	s := &Screenshotter{browser: browser, dir: dir, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Capture navigates to the URL, waits for the page to settle, and writes
// a full-page PNG. It returns the file path.
func (s *Screenshotter) Capture(ctx context.Context, pageURL string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	u, err := url.Parse(pageURL)
	if err != nil {
		return "", arremate.Errorf(arremate.EINVALID, "invalid URL: %v", err)
	}

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return "", err
	}

	page, err := s.browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return "", err
	}
	defer page.Close()

	page = page.Context(ctx)

	if s.cookies != nil {
		if cookies, ok, err := s.cookies.LoadCookies(u.Host); err == nil && ok {
			if err := page.SetCookies(cookieParams(cookies, u.Host)); err != nil {
				return "", err
			}
		}
	}

	if err := page.Navigate(pageURL); err != nil {
		return "", err
	}
	if err := page.WaitLoad(); err != nil {
		return "", err
	}

	// Nudge lazy-loaded content into view before capturing.
	if _, err := page.Eval("() => window.scrollTo(0, document.body.scrollHeight / 2)"); err == nil {
		page.WaitRequestIdle(time.Second, nil, nil, nil)()
	}

	data, err := page.Screenshot(true, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
	if err != nil {
		return "", err
	}

	path := filepath.Join(s.dir, Filename(u.Host, s.now()))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", err
	}
	return path, nil
}

// Close releases browser resources.
func (s *Screenshotter) Close() error {
	return s.browser.Close()
}

// Filename names a capture after its domain and timestamp, dots replaced
// with underscores so the name is shell-friendly.
func Filename(domain string, ts time.Time) string {
	return fmt.Sprintf("%s_%s.png", strings.ReplaceAll(domain, ".", "_"), ts.Format("20060102_150405"))
}

func cookieParams(cookies []arremate.Cookie, host string) []*proto.NetworkCookieParam {
	params := make([]*proto.NetworkCookieParam, 0, len(cookies))
	for _, c := range cookies {
		domain := c.Domain
		if domain == "" {
			domain = host
		}
		path := c.Path
		if path == "" {
			path = "/"
		}
		params = append(params, &proto.NetworkCookieParam{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   domain,
			Path:     path,
			Secure:   c.Secure,
			HTTPOnly: c.HTTPOnly,
		})
	}
	return params
}
