package arremate

import (
	"context"
	"time"
)

// ChallengeStatus is the lifecycle state of a challenge artifact.
type ChallengeStatus string

// Challenge artifact states. Pending artifacts wait for an operator;
// Completed and Skipped are operator decisions; Processed means the
// controller has consumed the cookies and will never revisit the artifact.
const (
	ChallengePending   ChallengeStatus = "pending"
	ChallengeCompleted ChallengeStatus = "completed"
	ChallengeSkipped   ChallengeStatus = "skipped"
	ChallengeProcessed ChallengeStatus = "processed"
)

// Cookie is a browser cookie supplied by an operator after manually
// clearing an anti-bot challenge.
type Cookie struct {
	Name     string `json:"name"`
	Value    string `json:"value"`
	Domain   string `json:"domain,omitempty"`
	Path     string `json:"path,omitempty"`
	Secure   bool   `json:"secure,omitempty"`
	HTTPOnly bool   `json:"httpOnly,omitempty"`
}

// ChallengeArtifact records one detected anti-bot challenge, keyed by
// (domain, timestamp). The screenshot reference exists to show the
// operator what the challenge page looked like.
type ChallengeArtifact struct {
	Domain     string          `json:"domain"`
	Timestamp  time.Time       `json:"timestamp"`
	URL        string          `json:"url"`
	Screenshot string          `json:"screenshot,omitempty"`
	Status     ChallengeStatus `json:"status"`
	Cookies    []Cookie        `json:"cookies,omitempty"`
}

// Validate returns an error if the artifact contains invalid fields.
func (a *ChallengeArtifact) Validate() error {
	if a.Domain == "" {
		return Errorf(EINVALID, "challenge artifact domain required")
	}
	if a.URL == "" {
		return Errorf(EINVALID, "challenge artifact URL required")
	}
	return nil
}

// ChallengeStore persists challenge artifacts for out-of-process
// resolution. The handshake is asynchronous: an operator's completion is
// only observed by PollCompleted at the start of the next crawl run.
type ChallengeStore interface {
	// Put persists a newly detected challenge with status pending.
	Put(ctx context.Context, artifact *ChallengeArtifact) error

	// PollCompleted returns artifacts an operator has completed but the
	// controller has not yet processed. Skipped artifacts are never
	// returned.
	PollCompleted(ctx context.Context) ([]*ChallengeArtifact, error)

	// MarkProcessed flips a completed artifact to processed so it is
	// never re-applied.
	MarkProcessed(ctx context.Context, domain string, timestamp time.Time) error
}

// CookieStore holds the manually obtained cookies for a domain.
type CookieStore interface {
	// SaveCookies stores the cookie set for a domain, replacing any
	// previous set.
	SaveCookies(domain string, cookies []Cookie) error

	// LoadCookies returns the stored cookie set for a domain.
	// The bool result is false when no cookies are stored.
	LoadCookies(domain string) ([]Cookie, bool, error)
}

// Screenshotter captures a page for operator inspection and returns an
// opaque reference (a file path or URI) to the image.
type Screenshotter interface {
	Capture(ctx context.Context, url string) (string, error)
}
