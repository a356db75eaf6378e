package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/fcoelho/arremate"
)

// Compile-time interface verification.
var _ arremate.ProblemSiteService = (*ProblemSiteService)(nil)

// ProblemSiteService implements arremate.ProblemSiteService using SQLite.
type ProblemSiteService struct {
	db *DB
}

// NewProblemSiteService creates a new ProblemSiteService.
func NewProblemSiteService(db *DB) *ProblemSiteService {
	return &ProblemSiteService{db: db}
}

// RegisterError records a failure for the domain. The attempt counter
// only ever increases.
func (s *ProblemSiteService) RegisterError(ctx context.Context, domain, errText string) error {
	if domain == "" {
		return arremate.Errorf(arremate.EINVALID, "domain required")
	}

	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO problem_sites (domain, first_error_at, last_error, attempts, blocked)
		VALUES (?, ?, ?, 1, 0)
		ON CONFLICT (domain) DO UPDATE SET
			attempts = attempts + 1,
			last_error = excluded.last_error
	`, domain, now, errText)

	return err
}

// FindProblemSite retrieves the record for a domain.
func (s *ProblemSiteService) FindProblemSite(ctx context.Context, domain string) (*arremate.ProblemSite, error) {
	var site arremate.ProblemSite
	var firstErrorAt string

	err := s.db.QueryRowContext(ctx, `
		SELECT domain, first_error_at, last_error, attempts, blocked
		FROM problem_sites
		WHERE domain = ?
	`, domain).Scan(&site.Domain, &firstErrorAt, &site.LastError, &site.Attempts, &site.Blocked)

	if err == sql.ErrNoRows {
		return nil, arremate.Errorf(arremate.ENOTFOUND, "domain %s has no recorded failures", domain)
	}
	if err != nil {
		return nil, err
	}

	if site.FirstErrorAt, err = parseRFC3339(firstErrorAt, "first_error_at"); err != nil {
		return nil, err
	}
	return &site, nil
}

// FindProblemSites retrieves all registered problem sites.
func (s *ProblemSiteService) FindProblemSites(ctx context.Context) ([]*arremate.ProblemSite, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT domain, first_error_at, last_error, attempts, blocked
		FROM problem_sites
		ORDER BY domain
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sites []*arremate.ProblemSite
	for rows.Next() {
		var site arremate.ProblemSite
		var firstErrorAt string
		if err := rows.Scan(&site.Domain, &firstErrorAt, &site.LastError, &site.Attempts, &site.Blocked); err != nil {
			return nil, err
		}
		if site.FirstErrorAt, err = parseRFC3339(firstErrorAt, "first_error_at"); err != nil {
			return nil, err
		}
		sites = append(sites, &site)
	}

	return sites, rows.Err()
}

// SetBlocked sets the manual block flag for a domain.
func (s *ProblemSiteService) SetBlocked(ctx context.Context, domain string, blocked bool) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE problem_sites SET blocked = ? WHERE domain = ?
	`, blocked, domain)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return arremate.Errorf(arremate.ENOTFOUND, "domain %s has no recorded failures", domain)
	}
	return nil
}
