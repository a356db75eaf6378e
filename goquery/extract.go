package goquery

import (
	"log/slog"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fcoelho/arremate"
	"golang.org/x/net/html"
)

// imageAttrs are tried in order on each element matched by an image
// selector. Lazy-loading libraries park the real URL in data attributes.
var imageAttrs = []string{"src", "data-src", "data-lazy-src", "data-original"}

// gallerySelectors locate a representative image when no image selector
// is known or the known one matched nothing.
var gallerySelectors = []string{
	".galeria img",
	".gallery img",
	".fotos img",
	".carousel img",
	".slider img",
	"div[class*='foto'] img",
	"div[class*='image'] img",
	"figure img",
}

// Extractor applies detail-field selectors to a page and assembles an
// auction record.
type Extractor struct {
	logger *slog.Logger
}

// NewExtractor creates an Extractor. A nil logger defaults to
// slog.Default().
func NewExtractor(logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{logger: logger}
}

// ExtractDetail applies the field selectors to the markup and returns
// the assembled record plus a per-field flag saying whether the field's
// own selector produced its value.
//
// Each field tries direct text, then a content attribute, then inner
// markup with tags stripped. Fields the selectors miss fall back to
// page-level heuristics: first h1 or title element for the title, the
// first currency amount in the body for the price, the first date-like
// phrase for the auction date, and the location value for the address.
func (e *Extractor) ExtractDetail(markup, pageURL string, selectors *arremate.DetailSelectors) (*arremate.AuctionRecord, map[string]bool, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, nil, arremate.Errorf(arremate.EINVALID, "failed to parse HTML: %v", err)
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, nil, arremate.Errorf(arremate.EINVALID, "invalid page URL: %v", err)
	}

	values := make(map[string]string, len(arremate.DetailFields))
	matched := make(map[string]bool, len(arremate.DetailFields))
	for _, field := range arremate.DetailFields {
		sel := selectors.Get(field)
		if sel == "" || !ValidSyntax(sel) {
			continue
		}
		var v string
		if field == "image_url" {
			v = extractImage(doc, base, sel)
		} else {
			v = arremate.CleanText(extractValue(doc, sel))
		}
		if v != "" {
			values[field] = v
			matched[field] = true
		}
	}

	if values["image_url"] == "" {
		for _, sel := range gallerySelectors {
			if v := extractImage(doc, base, sel); v != "" {
				values["image_url"] = v
				break
			}
		}
	}

	if values["title"] == "" {
		for _, sel := range []string{"h1", "title"} {
			if v := arremate.CleanText(doc.Find(sel).First().Text()); v != "" {
				values["title"] = v
				break
			}
		}
	}

	bodyText := ""
	if values["price"] == "" || values["auction_date"] == "" {
		bodyText = arremate.CleanText(doc.Find("body").Text())
	}
	if values["price"] == "" {
		values["price"] = arremate.FirstPrice(bodyText)
	}
	if values["auction_date"] == "" {
		values["auction_date"] = arremate.FirstDate(bodyText)
	}
	if values["address"] == "" {
		values["address"] = values["location"]
	}

	record := &arremate.AuctionRecord{
		URL:          pageURL,
		Title:        values["title"],
		Price:        values["price"],
		Description:  values["description"],
		Address:      values["address"],
		Area:         values["area"],
		PropertyType: values["property_type"],
		AuctionDate:  values["auction_date"],
		ImageURL:     values["image_url"],
		SourceDomain: base.Host,
	}
	return record, matched, nil
}

// extractValue tries the extraction ladder on the first element matched
// by the selector.
func extractValue(doc *goquery.Document, selector string) string {
	sel := doc.Find(selector).First()
	if sel.Length() == 0 {
		return ""
	}
	if txt := strings.TrimSpace(sel.Text()); txt != "" {
		return txt
	}
	if content, ok := sel.Attr("content"); ok && strings.TrimSpace(content) != "" {
		return content
	}
	if inner, err := sel.Html(); err == nil {
		return stripTags(inner)
	}
	return ""
}

// extractImage returns the first resolvable image URL matched by the
// selector, trying each known image attribute in order.
func extractImage(doc *goquery.Document, base *url.URL, selector string) string {
	var found string
	doc.Find(selector).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		for _, attr := range imageAttrs {
			v, ok := sel.Attr(attr)
			if !ok || strings.TrimSpace(v) == "" {
				continue
			}
			if resolved := resolveURL(base, strings.TrimSpace(v)); resolved != "" {
				found = resolved
				return false
			}
		}
		return true
	})
	return found
}

// stripTags returns the text content of an HTML fragment.
func stripTags(fragment string) string {
	z := html.NewTokenizer(strings.NewReader(fragment))
	var b strings.Builder
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			break
		}
		if tt == html.TextToken {
			b.Write(z.Text())
			b.WriteByte(' ')
		}
	}
	return strings.TrimSpace(b.String())
}
