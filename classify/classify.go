// Package classify provides heuristic page and link classification for
// auction-site crawling. Pages are scored as listings or detail pages
// from URL and markup evidence; the same URL patterns classify outgoing
// links. It also detects anti-bot challenge pages.
package classify

import (
	"log/slog"
	"regexp"
)

// detailURLPatterns mark URLs that unambiguously point at a single
// property. URL evidence is authoritative: a match classifies the page as
// detail regardless of what its markup looks like.
var detailURLPatterns = []*regexp.Regexp{
	regexp.MustCompile(`/imovel/\d+`),
	regexp.MustCompile(`/detalhe`),
	regexp.MustCompile(`/detalhes`),
	regexp.MustCompile(`/item/\d+`),
	regexp.MustCompile(`/lote/\d+`),
	regexp.MustCompile(`/auction/\d+`),
	regexp.MustCompile(`/leilao/\d+`),
	regexp.MustCompile(`/lance/\d+`),
	regexp.MustCompile(`/bem/\d+`),
	regexp.MustCompile(`/property/\d+`),
	regexp.MustCompile(`/ficha`),
	regexp.MustCompile(`/info`),
	regexp.MustCompile(`/produto/\d+`),
	regexp.MustCompile(`/imovel-`),
	regexp.MustCompile(`/lote-`),
	regexp.MustCompile(`/bem-`),
	regexp.MustCompile(`/propriedade-`),
	regexp.MustCompile(`/id-\d+`),
	regexp.MustCompile(`/codigo-\d+`),
	regexp.MustCompile(`/ref-\d+`),
	regexp.MustCompile(`/oferta/\d+`),
	regexp.MustCompile(`/oportunidade/\d+`),
}

// IsDetailURL reports whether the URL matches a known detail-page shape.
func IsDetailURL(url string) bool {
	for _, re := range detailURLPatterns {
		if re.MatchString(url) {
			return true
		}
	}
	return false
}

// Classifier scores fetched pages and detects challenge pages.
type Classifier struct {
	logger *slog.Logger
}

// New creates a Classifier. A nil logger defaults to slog.Default().
func New(logger *slog.Logger) *Classifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Classifier{logger: logger}
}
