package arremate

import (
	"context"
	"strings"
	"time"
)

// PageType classifies a fetched page as a listing or a detail page.
type PageType string

// Page types recognized by the classifier and the selector cache.
const (
	PageTypeList   PageType = "list"
	PageTypeDetail PageType = "detail"
)

// DetailFields lists the named record fields a detail selector set covers,
// in extraction order.
var DetailFields = []string{
	"title",
	"price",
	"description",
	"address",
	"location",
	"area",
	"property_type",
	"auction_date",
	"image_url",
}

// DetailSelectors maps each named record field to a CSS selector.
// An empty field means no selector is known for it; fields are validated
// independently so a single bad selector never discards the whole set.
type DetailSelectors struct {
	Title        string `json:"title,omitempty"`
	Price        string `json:"price,omitempty"`
	Description  string `json:"description,omitempty"`
	Address      string `json:"address,omitempty"`
	Location     string `json:"location,omitempty"`
	Area         string `json:"area,omitempty"`
	PropertyType string `json:"property_type,omitempty"`
	AuctionDate  string `json:"auction_date,omitempty"`
	ImageURL     string `json:"image_url,omitempty"`
}

// Get returns the selector for a named field.
func (s *DetailSelectors) Get(field string) string {
	switch field {
	case "title":
		return s.Title
	case "price":
		return s.Price
	case "description":
		return s.Description
	case "address":
		return s.Address
	case "location":
		return s.Location
	case "area":
		return s.Area
	case "property_type":
		return s.PropertyType
	case "auction_date":
		return s.AuctionDate
	case "image_url":
		return s.ImageURL
	}
	return ""
}

// Set assigns the selector for a named field. Unknown fields are ignored.
func (s *DetailSelectors) Set(field, selector string) {
	switch field {
	case "title":
		s.Title = selector
	case "price":
		s.Price = selector
	case "description":
		s.Description = selector
	case "address":
		s.Address = selector
	case "location":
		s.Location = selector
	case "area":
		s.Area = selector
	case "property_type":
		s.PropertyType = selector
	case "auction_date":
		s.AuctionDate = selector
	case "image_url":
		s.ImageURL = selector
	}
}

// IsZero reports whether no field has a selector.
func (s *DetailSelectors) IsZero() bool {
	for _, f := range DetailFields {
		if s.Get(f) != "" {
			return false
		}
	}
	return true
}

// SelectorSet holds the selectors cached for a page. List pages carry only
// the link selector; detail pages carry only the per-field selectors.
type SelectorSet struct {
	ListSelector    string           `json:"list_selector,omitempty"`
	DetailSelectors *DetailSelectors `json:"detail_selectors,omitempty"`
}

// ScrapingRule holds the known-good selectors for a domain.
// A rule is created the first time selector generation succeeds for a
// domain and updated whenever a better selector is produced. The core
// never deletes rules; that is an external maintenance operation.
type ScrapingRule struct {
	Domain          string           `json:"domain"`
	ListSelector    string           `json:"listSelector,omitempty"`
	DetailSelectors *DetailSelectors `json:"detailSelectors,omitempty"`
	CreatedAt       time.Time        `json:"createdAt"`
	UpdatedAt       time.Time        `json:"updatedAt"`
}

// Validate returns an error if the rule contains invalid fields.
func (r *ScrapingRule) Validate() error {
	if r.Domain == "" {
		return Errorf(EINVALID, "rule domain required")
	}
	return nil
}

// RuleService manages per-domain scraping rules.
type RuleService interface {
	// FindRuleByDomain retrieves the rule for a domain.
	// Returns ENOTFOUND if no rule exists.
	FindRuleByDomain(ctx context.Context, domain string) (*ScrapingRule, error)

	// SaveRule inserts or updates the rule for rule.Domain.
	SaveRule(ctx context.Context, rule *ScrapingRule) error
}

// SimilarityThreshold is the minimum success rate a cache entry needs
// before it may be reused for a different URL on the same domain.
const SimilarityThreshold = 0.7

// SelectorCacheEntry is a per-URL record of selectors and how well they
// have performed.
type SelectorCacheEntry struct {
	ID          string      `json:"id"`
	URL         string      `json:"url"`
	Domain      string      `json:"domain"`
	PageType    PageType    `json:"pageType"`
	Selectors   SelectorSet `json:"selectors"`
	SuccessRate float64     `json:"successRate"`
	UseCount    int         `json:"useCount"`
	CreatedAt   time.Time   `json:"createdAt"`
	LastUsedAt  time.Time   `json:"lastUsedAt"`
	Valid       bool        `json:"valid"`
}

// SelectorCacheService persists, looks up, and scores selectors per URL.
type SelectorCacheService interface {
	// Get returns the entry for the exact URL and page type. If none
	// exists, it falls back to the best entry for the same domain and
	// page type whose success rate exceeds SimilarityThreshold.
	// An exact hit increments the entry's use count and refreshes its
	// last-used timestamp; a similarity hit does not.
	// Returns ENOTFOUND on a miss. Invalid entries are never returned.
	Get(ctx context.Context, url string, pageType PageType) (*SelectorCacheEntry, error)

	// Put inserts or updates the entry for the URL and page type.
	// Both paths set the success rate to 0.5: fresh selectors start at
	// (or are reset to) neutral trust.
	Put(ctx context.Context, url, domain string, pageType PageType, selectors SelectorSet) error

	// RecordOutcome folds one extraction outcome into the entry's
	// success rate using an exponential moving average weighted by
	// 1/(useCount+1), so a well-used entry's rate stabilizes rather
	// than oscillating on single outcomes.
	RecordOutcome(ctx context.Context, url string, success bool) error

	// Invalidate marks the entry for the URL as invalid. Invalid entries
	// are excluded from lookups but kept for diagnostics.
	Invalidate(ctx context.Context, url string) error
}

// maxSelectorLen bounds candidate selectors; anything longer is almost
// certainly prose or markup that leaked out of the generation service.
const maxSelectorLen = 200

var selectorForbidden = "<>{}\\`|"

// selectorStarts are the tokens a simple selector may begin with: a class
// or id marker, a known tag name, or the wildcard.
var selectorStarts = []string{
	".", "#", "*",
	"a", "div", "span", "p", "h1", "h2", "h3", "h4", "h5", "h6",
	"img", "ul", "li", "table", "tr", "td", "th", "section", "article",
	"main", "header", "footer", "nav", "aside", "figure", "figcaption",
	"time", "strong", "em", "i", "b", "small", "button", "input", "form",
	"iframe", "meta",
}

// ValidateSelector reports whether a candidate CSS selector is plausible
// and safe to apply. It gates every selector coming out of the cache, the
// rule store, or the generation service before it is trusted.
func ValidateSelector(selector string) error {
	if selector == "" {
		return Errorf(EINVALID, "selector is empty")
	}
	if strings.ContainsAny(selector, selectorForbidden) {
		return Errorf(EINVALID, "selector %q contains forbidden characters", selector)
	}
	if strings.HasPrefix(selector, "http") {
		return Errorf(EINVALID, "selector %q looks like a URL", selector)
	}
	if len(selector) > maxSelectorLen {
		return Errorf(EINVALID, "selector exceeds %d characters", maxSelectorLen)
	}
	if strings.Count(selector, "[") != strings.Count(selector, "]") ||
		strings.Count(selector, "(") != strings.Count(selector, ")") {
		return Errorf(EINVALID, "selector %q has unbalanced brackets", selector)
	}

	// Comma-separated alternatives must each validate on their own.
	if strings.Contains(selector, ",") {
		for _, part := range strings.Split(selector, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			if err := ValidateSelector(part); err != nil {
				return err
			}
		}
		return nil
	}

	for _, start := range selectorStarts {
		if strings.HasPrefix(selector, start) ||
			strings.Contains(selector, " "+start) ||
			strings.Contains(selector, ">"+start) {
			return nil
		}
	}
	return Errorf(EINVALID, "selector %q does not begin with a recognized token", selector)
}

// ValidateFieldSelector validates a detail-field selector, attributing
// failures to the field for diagnostics.
func ValidateFieldSelector(field, selector string) error {
	if err := ValidateSelector(selector); err != nil {
		return Errorf(EINVALID, "field %s: %s", field, ErrorMessage(err))
	}
	return nil
}
