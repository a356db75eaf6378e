package mock

import (
	"context"
	"time"

	"github.com/fcoelho/arremate"
)

var _ arremate.ChallengeStore = (*ChallengeStore)(nil)

// ChallengeStore is a mock implementation of arremate.ChallengeStore.
type ChallengeStore struct {
	PutFn           func(ctx context.Context, artifact *arremate.ChallengeArtifact) error
	PollCompletedFn func(ctx context.Context) ([]*arremate.ChallengeArtifact, error)
	MarkProcessedFn func(ctx context.Context, domain string, timestamp time.Time) error
}

func (s *ChallengeStore) Put(ctx context.Context, artifact *arremate.ChallengeArtifact) error {
	return s.PutFn(ctx, artifact)
}

func (s *ChallengeStore) PollCompleted(ctx context.Context) ([]*arremate.ChallengeArtifact, error) {
	return s.PollCompletedFn(ctx)
}

func (s *ChallengeStore) MarkProcessed(ctx context.Context, domain string, timestamp time.Time) error {
	return s.MarkProcessedFn(ctx, domain, timestamp)
}

var _ arremate.CookieStore = (*CookieStore)(nil)

// CookieStore is a mock implementation of arremate.CookieStore.
type CookieStore struct {
	SaveCookiesFn func(domain string, cookies []arremate.Cookie) error
	LoadCookiesFn func(domain string) ([]arremate.Cookie, bool, error)
}

func (s *CookieStore) SaveCookies(domain string, cookies []arremate.Cookie) error {
	return s.SaveCookiesFn(domain, cookies)
}

func (s *CookieStore) LoadCookies(domain string) ([]arremate.Cookie, bool, error) {
	return s.LoadCookiesFn(domain)
}

var _ arremate.Screenshotter = (*Screenshotter)(nil)

// Screenshotter is a mock implementation of arremate.Screenshotter.
type Screenshotter struct {
	CaptureFn func(ctx context.Context, url string) (string, error)
}

func (s *Screenshotter) Capture(ctx context.Context, url string) (string, error) {
	return s.CaptureFn(ctx, url)
}
