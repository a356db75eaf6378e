package classify

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// challengeMarkers are phrases that show up in anti-bot interstitials.
// Matching is case-insensitive against the raw markup.
var challengeMarkers = []string{
	"captcha",
	"recaptcha",
	"validate",
	"verification",
	"robot",
	"human",
	"bot check",
	"security check",
	"perfdrive",
	"cloudflare",
	"ddos",
	"protection",
	"verify you are human",
}

// challengeSelectors are structural shapes of challenge widgets.
var challengeSelectors = []string{
	`iframe[src*="captcha"]`,
	`iframe[src*="recaptcha"]`,
	`div.g-recaptcha`,
	`div[class*="captcha"]`,
	`input[name*="captcha"]`,
}

// IsChallenge reports whether the page looks like an anti-bot challenge
// rather than site content. Interstitials often redirect to a telltale
// URL while serving an opaque body, so the URL is scanned against the
// same markers as the markup. Callers should only pass text responses;
// binary bodies trivially fail the marker scan anyway.
func (c *Classifier) IsChallenge(markup, pageURL string) bool {
	lowerURL := strings.ToLower(pageURL)
	lower := strings.ToLower(markup)
	for _, marker := range challengeMarkers {
		if strings.Contains(lowerURL, marker) {
			c.logger.Debug("challenge marker in URL", "marker", marker)
			return true
		}
		if strings.Contains(lower, marker) {
			c.logger.Debug("challenge marker found", "marker", marker)
			return true
		}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return false
	}
	for _, sel := range challengeSelectors {
		if doc.Find(sel).Length() > 0 {
			c.logger.Debug("challenge element found", "selector", sel)
			return true
		}
	}
	return false
}
