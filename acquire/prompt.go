package acquire

import (
	"fmt"
	"regexp"
	"strings"
)

// maxListMarkup caps the markup excerpt sent with a list-selector
// request.
const maxListMarkup = 30000

// maxDetailMarkup caps the markup excerpt sent with a detail-selector
// request.
const maxDetailMarkup = 15000

// BuildListPrompt assembles the generation request for a listing-link
// selector. The response contract is a bare JSON object with a single
// list_selector key.
func BuildListPrompt(url, markup string) string {
	if len(markup) > maxListMarkup {
		markup = markup[:maxListMarkup]
	}
	return fmt.Sprintf(`You are a web scraping expert. Analyze the HTML below from a Brazilian real-estate auction site and provide one precise CSS selector that finds the links to each property's detail page.

Site URL: %s

Requirements:
1. The selector must capture ONLY links (<a> elements) leading to individual property detail pages
2. Ignore navigation, menu, and footer links
3. Be as specific as possible to avoid false positives
4. If multiple card styles exist, provide a selector covering all of them
5. The selector should end with 'a' or include 'a[' so it targets links

Good selector examples:
- ".property-card a.property-link"
- "div.auction-item a.details-link"
- "a[href*='/detalhe/']"

IMPORTANT: respond with ONLY a valid JSON object in this exact format, no extra text, markdown, or explanation:
{"list_selector": "your_css_selector_here"}

Use null as the value if no suitable selector exists.

Site HTML:
%s`, url, markup)
}

// BuildDetailPrompt assembles the generation request for per-field
// detail selectors over a size-reduced markup sample.
func BuildDetailPrompt(url, markup string) string {
	return fmt.Sprintf(`Analyze the HTML below and provide CSS selectors to extract information about an auctioned property.

URL: %s

HTML:
`+"```"+`
%s
`+"```"+`

Provide CSS selectors for these fields:
1. title: property title
2. price: property price or minimum bid
3. description: property description
4. address: property address
5. location: city/state
6. area: property area (m2)
7. property_type: house, apartment, land, etc.
8. auction_date: auction date
9. image_url: main property image

Rules:
1. Return ONLY valid CSS selectors for each field
2. Be as specific as possible
3. Use null for any field you cannot identify
4. Respond with a single JSON object, keys exactly as listed, no extra text

Example response:
`+"```json"+`
{"title": ".property-title", "price": ".property-price", "description": ".property-description", "address": ".property-address", "location": ".property-location", "area": ".property-area", "property_type": ".property-type", "auction_date": ".auction-date", "image_url": ".property-image"}
`+"```", url, SampleHTML(markup))
}

var (
	bodyRx    = regexp.MustCompile(`(?is)<body[^>]*>(.*?)</body>`)
	menuEndRx = regexp.MustCompile(`(?i)</(?:nav|header|menu)[^>]*>`)

	// relevantRxs locate the blocks most likely to hold the property
	// details when the body alone is too large to send.
	relevantRxs = []*regexp.Regexp{
		regexp.MustCompile(`(?is)<(?:div|section|article|main)[^>]*(?:id|class)=["'][^"']*(?:content|main|property|detail|produto|imovel)[^"']*["'][^>]*>.*?</(?:div|section|article|main)>`),
		regexp.MustCompile(`(?is)<(?:div|section|article)[^>]*(?:id|class)=["'][^"']*(?:container|wrapper|auction|leilao|details|detalhes)[^"']*["'][^>]*>.*?</(?:div|section|article)>`),
		regexp.MustCompile(`(?is)<h1[^>]*>.*?</h1>.*?<div[^>]*>.*?</div>`),
	}
)

// SampleHTML reduces a page to a structurally relevant excerpt that fits
// the detail-prompt size cap. Small pages pass through whole; otherwise
// the body, then known content blocks, then a head/middle/tail split are
// tried in order.
func SampleHTML(markup string) string {
	if len(markup) <= maxDetailMarkup {
		return markup
	}

	if m := bodyRx.FindStringSubmatch(markup); m != nil {
		body := m[1]
		if len(body) <= maxDetailMarkup {
			return "<body>" + body + "</body>"
		}

		var relevant strings.Builder
		for _, re := range relevantRxs {
			for _, match := range re.FindAllString(body, -1) {
				relevant.WriteString(match)
				if relevant.Len() >= maxDetailMarkup/2 {
					break
				}
			}
			if relevant.Len() >= maxDetailMarkup/2 {
				break
			}
		}
		if relevant.Len() > 200 {
			sample := relevant.String()
			if len(sample) > maxDetailMarkup {
				sample = sample[:maxDetailMarkup]
			}
			return "<body>" + sample + "</body>"
		}
	}

	// Head plus a middle slice past the navigation plus the tail.
	headSize := 2000
	remaining := maxDetailMarkup - headSize
	middleSize := remaining * 6 / 10
	endSize := remaining - middleSize

	head := markup[:headSize]
	middleStart := headSize
	if loc := menuEndRx.FindStringIndex(markup[headSize:]); loc != nil {
		middleStart = headSize + loc[1]
	}
	middleEnd := min(middleStart+middleSize, len(markup))
	middle := markup[middleStart:middleEnd]
	tail := markup[max(0, len(markup)-endSize):]

	return head + "..." + middle + "..." + tail
}
