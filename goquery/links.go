package goquery

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fcoelho/arremate"
)

// NormalizeLinkSelector rewrites a list selector so it targets anchor
// elements. Generated selectors often name the card container rather
// than the link inside it; each comma alternative whose last simple
// part is not an anchor gets " a" appended.
func NormalizeLinkSelector(selector string) string {
	parts := strings.Split(selector, ",")
	for i, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if !targetsAnchor(part) {
			part += " a"
		}
		parts[i] = part
	}
	return strings.Join(parts, ", ")
}

func targetsAnchor(selector string) bool {
	fields := strings.FieldsFunc(selector, func(r rune) bool {
		return r == ' ' || r == '>'
	})
	if len(fields) == 0 {
		return false
	}
	last := fields[len(fields)-1]
	if last == "a" || strings.HasPrefix(last, "a.") ||
		strings.HasPrefix(last, "a#") || strings.HasPrefix(last, "a[") ||
		strings.HasPrefix(last, "a:") {
		return true
	}
	return false
}

// Count returns how many elements the selector matches in the markup.
// A selector that fails to parse counts as zero matches.
func Count(markup, selector string) int {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return 0
	}
	if !ValidSyntax(selector) {
		return 0
	}
	return doc.Find(selector).Length()
}

// Links harvests same-host anchor URLs matched by the list selector.
// The selector is normalized to target anchors first. Relative hrefs are
// resolved against baseURL, non-HTTP schemes and external hosts are
// dropped, and duplicates are removed preserving document order.
func Links(markup, baseURL, selector string) ([]string, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, arremate.Errorf(arremate.EINVALID, "invalid base URL: %v", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, arremate.Errorf(arremate.EINVALID, "failed to parse HTML: %v", err)
	}

	normalized := NormalizeLinkSelector(selector)
	if !ValidSyntax(normalized) {
		return nil, arremate.Errorf(arremate.EINVALID, "selector %q does not parse", normalized)
	}

	seen := make(map[string]bool)
	var links []string
	doc.Find(normalized).Each(func(_ int, sel *goquery.Selection) {
		href, exists := sel.Attr("href")
		if !exists || href == "" {
			return
		}
		if isNonHTTPLink(href) {
			return
		}
		resolved := resolveURL(base, href)
		if resolved == "" {
			return
		}
		if !isSameHost(base, resolved) {
			return
		}
		if seen[resolved] {
			return
		}
		seen[resolved] = true
		links = append(links, resolved)
	})
	return links, nil
}
