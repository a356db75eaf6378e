package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/url"
	"time"

	"github.com/fcoelho/arremate"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ arremate.SelectorCacheService = (*SelectorCacheService)(nil)

// SelectorCacheService implements arremate.SelectorCacheService using
// SQLite.
type SelectorCacheService struct {
	db *DB
}

// NewSelectorCacheService creates a new SelectorCacheService.
func NewSelectorCacheService(db *DB) *SelectorCacheService {
	return &SelectorCacheService{db: db}
}

const cacheColumns = "id, url, domain, page_type, selectors, success_rate, use_count, created_at, last_used_at, is_valid"

// Get returns the entry for the exact URL and page type, falling back to
// the best-performing entry for the same domain. Only the exact hit
// counts as a use.
func (s *SelectorCacheService) Get(ctx context.Context, pageURL string, pageType arremate.PageType) (*arremate.SelectorCacheEntry, error) {
	entry, err := s.scanOne(ctx, `
		SELECT `+cacheColumns+`
		FROM selector_cache
		WHERE url = ? AND page_type = ? AND is_valid = 1
	`, pageURL, string(pageType))
	if err == nil {
		now := time.Now().UTC()
		if _, err := s.db.ExecContext(ctx, `
			UPDATE selector_cache SET use_count = use_count + 1, last_used_at = ? WHERE id = ?
		`, now.Format(time.RFC3339), entry.ID); err != nil {
			return nil, err
		}
		entry.UseCount++
		entry.LastUsedAt = now
		return entry, nil
	}
	if arremate.ErrorCode(err) != arremate.ENOTFOUND {
		return nil, err
	}

	u, perr := url.Parse(pageURL)
	if perr != nil {
		return nil, arremate.Errorf(arremate.EINVALID, "invalid URL: %v", perr)
	}

	entry, err = s.scanOne(ctx, `
		SELECT `+cacheColumns+`
		FROM selector_cache
		WHERE domain = ? AND page_type = ? AND is_valid = 1 AND success_rate > ?
		ORDER BY success_rate DESC
		LIMIT 1
	`, u.Host, string(pageType), arremate.SimilarityThreshold)
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// Put inserts or updates the entry for the URL and page type. Both paths
// leave the entry at neutral trust: a fresh or replaced selector starts
// over at a 0.5 success rate and a use count of one, so its first
// outcome carries half weight.
func (s *SelectorCacheService) Put(ctx context.Context, pageURL, domain string, pageType arremate.PageType, selectors arremate.SelectorSet) error {
	selJSON, err := json.Marshal(selectors)
	if err != nil {
		return err
	}

	now := time.Now().UTC().Format(time.RFC3339)
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO selector_cache (id, url, domain, page_type, selectors, success_rate, use_count, created_at, last_used_at, is_valid)
		VALUES (?, ?, ?, ?, ?, 0.5, 1, ?, ?, 1)
		ON CONFLICT (url, page_type) DO UPDATE SET
			selectors = excluded.selectors,
			success_rate = 0.5,
			use_count = 1,
			last_used_at = excluded.last_used_at,
			is_valid = 1
	`, uuid.New().String(), pageURL, domain, string(pageType), string(selJSON), now, now)

	return err
}

// RecordOutcome folds one extraction outcome into the entry's success
// rate. The update weight is 1/(useCount+1), so a well-used entry's rate
// moves less per outcome.
func (s *SelectorCacheService) RecordOutcome(ctx context.Context, pageURL string, success bool) error {
	var id string
	var rate float64
	var useCount int

	err := s.db.QueryRowContext(ctx, `
		SELECT id, success_rate, use_count FROM selector_cache WHERE url = ?
	`, pageURL).Scan(&id, &rate, &useCount)
	if err == sql.ErrNoRows {
		return arremate.Errorf(arremate.ENOTFOUND, "no cache entry for %s", pageURL)
	}
	if err != nil {
		return err
	}

	outcome := 0.0
	if success {
		outcome = 1.0
	}
	weight := 1.0 / float64(useCount+1)
	rate = rate*(1-weight) + outcome*weight
	if rate < 0 {
		rate = 0
	} else if rate > 1 {
		rate = 1
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE selector_cache SET success_rate = ? WHERE id = ?
	`, rate, id)
	return err
}

// Invalidate marks the entry for the URL as invalid. Invalid entries are
// excluded from lookups but kept for diagnostics. Invalidating a URL
// with no entry is a no-op.
func (s *SelectorCacheService) Invalidate(ctx context.Context, pageURL string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE selector_cache SET is_valid = 0 WHERE url = ?
	`, pageURL)
	return err
}

func (s *SelectorCacheService) scanOne(ctx context.Context, query string, args ...any) (*arremate.SelectorCacheEntry, error) {
	var entry arremate.SelectorCacheEntry
	var pageType, selJSON, createdAt, lastUsedAt string

	err := s.db.QueryRowContext(ctx, query, args...).Scan(
		&entry.ID, &entry.URL, &entry.Domain, &pageType, &selJSON,
		&entry.SuccessRate, &entry.UseCount, &createdAt, &lastUsedAt, &entry.Valid)
	if err == sql.ErrNoRows {
		return nil, arremate.Errorf(arremate.ENOTFOUND, "no cached selector")
	}
	if err != nil {
		return nil, err
	}

	entry.PageType = arremate.PageType(pageType)
	if err := json.Unmarshal([]byte(selJSON), &entry.Selectors); err != nil {
		return nil, arremate.Errorf(arremate.EINTERNAL, "corrupt cached selectors for %s: %v", entry.URL, err)
	}
	if entry.CreatedAt, err = parseRFC3339(createdAt, "created_at"); err != nil {
		return nil, err
	}
	if entry.LastUsedAt, err = parseRFC3339(lastUsedAt, "last_used_at"); err != nil {
		return nil, err
	}
	return &entry, nil
}
