package mock

import (
	"context"

	"github.com/fcoelho/arremate"
)

var _ arremate.SelectorCacheService = (*SelectorCacheService)(nil)

// SelectorCacheService is a mock implementation of
// arremate.SelectorCacheService.
type SelectorCacheService struct {
	GetFn           func(ctx context.Context, url string, pageType arremate.PageType) (*arremate.SelectorCacheEntry, error)
	PutFn           func(ctx context.Context, url, domain string, pageType arremate.PageType, selectors arremate.SelectorSet) error
	RecordOutcomeFn func(ctx context.Context, url string, success bool) error
	InvalidateFn    func(ctx context.Context, url string) error
}

func (s *SelectorCacheService) Get(ctx context.Context, url string, pageType arremate.PageType) (*arremate.SelectorCacheEntry, error) {
	return s.GetFn(ctx, url, pageType)
}

func (s *SelectorCacheService) Put(ctx context.Context, url, domain string, pageType arremate.PageType, selectors arremate.SelectorSet) error {
	return s.PutFn(ctx, url, domain, pageType, selectors)
}

func (s *SelectorCacheService) RecordOutcome(ctx context.Context, url string, success bool) error {
	return s.RecordOutcomeFn(ctx, url, success)
}

func (s *SelectorCacheService) Invalidate(ctx context.Context, url string) error {
	return s.InvalidateFn(ctx, url)
}

var _ arremate.RuleService = (*RuleService)(nil)

// RuleService is a mock implementation of arremate.RuleService.
type RuleService struct {
	FindRuleByDomainFn func(ctx context.Context, domain string) (*arremate.ScrapingRule, error)
	SaveRuleFn         func(ctx context.Context, rule *arremate.ScrapingRule) error
}

func (s *RuleService) FindRuleByDomain(ctx context.Context, domain string) (*arremate.ScrapingRule, error) {
	return s.FindRuleByDomainFn(ctx, domain)
}

func (s *RuleService) SaveRule(ctx context.Context, rule *arremate.ScrapingRule) error {
	return s.SaveRuleFn(ctx, rule)
}
