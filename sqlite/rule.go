package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/fcoelho/arremate"
)

// Compile-time interface verification.
var _ arremate.RuleService = (*RuleService)(nil)

// RuleService implements arremate.RuleService using SQLite.
type RuleService struct {
	db *DB
}

// NewRuleService creates a new RuleService.
func NewRuleService(db *DB) *RuleService {
	return &RuleService{db: db}
}

// FindRuleByDomain retrieves the rule for a domain.
func (s *RuleService) FindRuleByDomain(ctx context.Context, domain string) (*arremate.ScrapingRule, error) {
	var rule arremate.ScrapingRule
	var detailJSON, createdAt, updatedAt string

	err := s.db.QueryRowContext(ctx, `
		SELECT domain, list_selector, detail_selectors, created_at, updated_at
		FROM scraping_rules
		WHERE domain = ?
	`, domain).Scan(&rule.Domain, &rule.ListSelector, &detailJSON, &createdAt, &updatedAt)

	if err == sql.ErrNoRows {
		return nil, arremate.Errorf(arremate.ENOTFOUND, "no rule for domain %s", domain)
	}
	if err != nil {
		return nil, err
	}

	if detailJSON != "" {
		var sel arremate.DetailSelectors
		if err := json.Unmarshal([]byte(detailJSON), &sel); err != nil {
			return nil, arremate.Errorf(arremate.EINTERNAL, "corrupt detail selectors for %s: %v", domain, err)
		}
		rule.DetailSelectors = &sel
	}

	if rule.CreatedAt, err = parseRFC3339(createdAt, "created_at"); err != nil {
		return nil, err
	}
	if rule.UpdatedAt, err = parseRFC3339(updatedAt, "updated_at"); err != nil {
		return nil, err
	}

	return &rule, nil
}

// SaveRule inserts or updates the rule for rule.Domain.
func (s *RuleService) SaveRule(ctx context.Context, rule *arremate.ScrapingRule) error {
	if err := rule.Validate(); err != nil {
		return err
	}

	detailJSON := ""
	if rule.DetailSelectors != nil && !rule.DetailSelectors.IsZero() {
		b, err := json.Marshal(rule.DetailSelectors)
		if err != nil {
			return err
		}
		detailJSON = string(b)
	}

	now := time.Now().UTC()
	if rule.CreatedAt.IsZero() {
		rule.CreatedAt = now
	}
	rule.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO scraping_rules (domain, list_selector, detail_selectors, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (domain) DO UPDATE SET
			list_selector = excluded.list_selector,
			detail_selectors = excluded.detail_selectors,
			updated_at = excluded.updated_at
	`, rule.Domain, rule.ListSelector, detailJSON,
		rule.CreatedAt.Format(time.RFC3339), rule.UpdatedAt.Format(time.RFC3339))

	return err
}
