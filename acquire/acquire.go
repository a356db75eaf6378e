// Package acquire implements selector acquisition: finding a working CSS
// selector for a page through a precedence chain of cached entries,
// per-domain rules, LLM generation, static fallbacks, and generic
// defaults. Acquisition for detail fields never fails outright; the
// worst case is the full generic dictionary.
package acquire

import (
	"context"
	"log/slog"

	"github.com/fcoelho/arremate"
	"github.com/fcoelho/arremate/goquery"
)

// Source says which step of the precedence chain produced a selector.
type Source string

// Acquisition sources, in precedence order.
const (
	SourceCache     Source = "cache"
	SourceRule      Source = "rule"
	SourceGenerated Source = "generated"
	SourceFallback  Source = "fallback"
	SourceGeneric   Source = "generic"
)

// Acquirer resolves selectors for listing and detail pages.
type Acquirer struct {
	cache     arremate.SelectorCacheService
	rules     arremate.RuleService
	generator arremate.Generator
	logger    *slog.Logger
}

// New creates an Acquirer. A nil logger defaults to slog.Default().
func New(cache arremate.SelectorCacheService, rules arremate.RuleService, generator arremate.Generator, logger *slog.Logger) *Acquirer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Acquirer{cache: cache, rules: rules, generator: generator, logger: logger}
}

// ListSelector resolves a link selector for a listing page. Cache and
// rule hits are trusted as-is; generated selectors are normalized to
// target anchors and tested against the page before acceptance, falling
// through to the static candidates and finally the generic pass.
// Selectors resolved below the cache are written back to it, and the
// first successful acquisition for a domain seeds its rule.
func (a *Acquirer) ListSelector(ctx context.Context, url, domain, markup string) (string, Source, error) {
	if entry, err := a.cache.Get(ctx, url, arremate.PageTypeList); err == nil {
		sel := entry.Selectors.ListSelector
		if sel != "" && arremate.ValidateSelector(sel) == nil {
			return sel, SourceCache, nil
		}
	} else if arremate.ErrorCode(err) != arremate.ENOTFOUND {
		a.logger.Warn("selector cache lookup failed", "url", url, "error", err)
	}

	if rule, err := a.rules.FindRuleByDomain(ctx, domain); err == nil {
		sel := rule.ListSelector
		if sel != "" && arremate.ValidateSelector(sel) == nil {
			a.writeBackList(ctx, url, domain, sel)
			return sel, SourceRule, nil
		}
	} else if arremate.ErrorCode(err) != arremate.ENOTFOUND {
		a.logger.Warn("rule lookup failed", "domain", domain, "error", err)
	}

	if sel := a.generateListSelector(ctx, url, markup); sel != "" {
		a.writeBackList(ctx, url, domain, sel)
		return sel, SourceGenerated, nil
	}

	for _, candidate := range staticListSelectors {
		if n := goquery.Count(markup, candidate); n > 0 {
			a.logger.Info("using fallback list selector", "selector", candidate, "matches", n)
			a.writeBackList(ctx, url, domain, candidate)
			return candidate, SourceFallback, nil
		}
	}

	for _, candidate := range genericListSelectors {
		if n := goquery.Count(markup, candidate); n > 0 && n < maxGenericMatches {
			a.logger.Info("using generic list selector", "selector", candidate, "matches", n)
			a.writeBackList(ctx, url, domain, candidate)
			return candidate, SourceGeneric, nil
		}
	}

	return "", "", arremate.Errorf(arremate.ENOTFOUND, "no list selector found for %s", url)
}

func (a *Acquirer) generateListSelector(ctx context.Context, url, markup string) string {
	resp, err := a.generator.Generate(ctx, BuildListPrompt(url, markup))
	if err != nil {
		a.logger.Warn("list selector generation failed", "url", url, "error", err)
		return ""
	}

	sel := ParseSelectorResponse(resp)["list_selector"]
	if sel == "" {
		return ""
	}
	if err := arremate.ValidateSelector(sel); err != nil {
		a.logger.Warn("generated list selector rejected", "selector", sel, "error", err)
		return ""
	}

	sel = goquery.NormalizeLinkSelector(sel)
	links, err := goquery.Links(markup, url, sel)
	if err != nil || len(links) == 0 {
		a.logger.Warn("generated list selector matched nothing", "selector", sel)
		return ""
	}
	a.logger.Info("generated list selector", "selector", sel, "links", len(links))
	return sel
}

// DetailSelectors resolves the per-field selector set for a detail page.
// Fields the generation service misses or botches are replaced with their
// generic fallback individually, so the result always covers every field
// that has a generic entry.
func (a *Acquirer) DetailSelectors(ctx context.Context, url, domain, markup string) (*arremate.DetailSelectors, Source, error) {
	if entry, err := a.cache.Get(ctx, url, arremate.PageTypeDetail); err == nil {
		if sel := entry.Selectors.DetailSelectors; sel != nil && !sel.IsZero() {
			return sel, SourceCache, nil
		}
	} else if arremate.ErrorCode(err) != arremate.ENOTFOUND {
		a.logger.Warn("selector cache lookup failed", "url", url, "error", err)
	}

	if rule, err := a.rules.FindRuleByDomain(ctx, domain); err == nil {
		if sel := rule.DetailSelectors; sel != nil && !sel.IsZero() {
			a.writeBackDetail(ctx, url, domain, sel)
			return sel, SourceRule, nil
		}
	} else if arremate.ErrorCode(err) != arremate.ENOTFOUND {
		a.logger.Warn("rule lookup failed", "domain", domain, "error", err)
	}

	if sel := a.generateDetailSelectors(ctx, url, markup); sel != nil {
		a.writeBackDetail(ctx, url, domain, sel)
		return sel, SourceGenerated, nil
	}

	sel := GenericDetailSelectors()
	a.writeBackDetail(ctx, url, domain, sel)
	return sel, SourceGeneric, nil
}

func (a *Acquirer) generateDetailSelectors(ctx context.Context, url, markup string) *arremate.DetailSelectors {
	resp, err := a.generator.Generate(ctx, BuildDetailPrompt(url, markup))
	if err != nil {
		a.logger.Warn("detail selector generation failed", "url", url, "error", err)
		return nil
	}

	parsed := ParseSelectorResponse(resp)
	if len(parsed) == 0 {
		a.logger.Warn("unparseable detail selector response", "url", url)
		return nil
	}

	sel := &arremate.DetailSelectors{}
	for _, field := range arremate.DetailFields {
		v := parsed[field]
		if v != "" && arremate.ValidateFieldSelector(field, v) == nil {
			sel.Set(field, v)
			continue
		}
		if v != "" {
			a.logger.Warn("generated field selector rejected", "field", field, "selector", v)
		}
		sel.Set(field, genericFieldSelectors[field])
	}
	return sel
}

// writeBackList records a freshly acquired list selector in the cache
// and seeds the domain rule when none carries a list selector yet.
func (a *Acquirer) writeBackList(ctx context.Context, url, domain, selector string) {
	set := arremate.SelectorSet{ListSelector: selector}
	if err := a.cache.Put(ctx, url, domain, arremate.PageTypeList, set); err != nil {
		a.logger.Warn("selector cache write failed", "url", url, "error", err)
	}

	rule, err := a.rules.FindRuleByDomain(ctx, domain)
	switch {
	case arremate.ErrorCode(err) == arremate.ENOTFOUND:
		rule = &arremate.ScrapingRule{Domain: domain, ListSelector: selector}
	case err != nil:
		return
	case rule.ListSelector != "":
		return
	default:
		rule.ListSelector = selector
	}
	if err := a.rules.SaveRule(ctx, rule); err != nil {
		a.logger.Warn("rule save failed", "domain", domain, "error", err)
	}
}

// writeBackDetail is the detail-page counterpart of writeBackList.
func (a *Acquirer) writeBackDetail(ctx context.Context, url, domain string, selectors *arremate.DetailSelectors) {
	set := arremate.SelectorSet{DetailSelectors: selectors}
	if err := a.cache.Put(ctx, url, domain, arremate.PageTypeDetail, set); err != nil {
		a.logger.Warn("selector cache write failed", "url", url, "error", err)
	}

	rule, err := a.rules.FindRuleByDomain(ctx, domain)
	switch {
	case arremate.ErrorCode(err) == arremate.ENOTFOUND:
		rule = &arremate.ScrapingRule{Domain: domain, DetailSelectors: selectors}
	case err != nil:
		return
	case rule.DetailSelectors != nil && !rule.DetailSelectors.IsZero():
		return
	default:
		rule.DetailSelectors = selectors
	}
	if err := a.rules.SaveRule(ctx, rule); err != nil {
		a.logger.Warn("rule save failed", "domain", domain, "error", err)
	}
}
