package arremate

import (
	"context"
	"time"
)

// MaxProblemAttempts is the failure count past which a domain is skipped
// at the start of a crawl run. Failures never stop a run mid-flight.
const MaxProblemAttempts = 3

// ProblemSite tracks a domain that has repeatedly failed.
// Attempts only ever increases. Blocked is set manually by an operator,
// never derived by the core.
type ProblemSite struct {
	Domain       string    `json:"domain"`
	FirstErrorAt time.Time `json:"firstErrorAt"`
	LastError    string    `json:"lastError"`
	Attempts     int       `json:"attempts"`
	Blocked      bool      `json:"blocked"`
}

// Skippable reports whether the domain should be excluded from the next
// run's initial request set.
func (p *ProblemSite) Skippable() bool {
	return p.Attempts > MaxProblemAttempts || p.Blocked
}

// ProblemSiteService is the registry of failing domains.
type ProblemSiteService interface {
	// RegisterError records a failure for the domain: a new registration
	// starts at attempts=1, an existing one increments attempts and
	// replaces the last error text.
	RegisterError(ctx context.Context, domain, errText string) error

	// FindProblemSite retrieves the record for a domain.
	// Returns ENOTFOUND if the domain has never failed.
	FindProblemSite(ctx context.Context, domain string) (*ProblemSite, error)

	// FindProblemSites retrieves all registered problem sites.
	FindProblemSites(ctx context.Context) ([]*ProblemSite, error)

	// SetBlocked sets the manual block flag for a domain.
	// Returns ENOTFOUND if the domain is not registered.
	SetBlocked(ctx context.Context, domain string, blocked bool) error
}
