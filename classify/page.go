package classify

import (
	"regexp"
	"unicode/utf8"

	"github.com/fcoelho/arremate"
)

// Result is a page classification with its score breakdown, so callers
// can log why a page was routed the way it was.
type Result struct {
	Type        arremate.PageType
	ListScore   int
	DetailScore int

	// URLMatch is true when a detail URL pattern decided the outcome
	// and the markup was never scored.
	URLMatch bool

	// SeedOverride is true when a depth-0 seed was forced to list.
	SeedOverride bool
}

// listPatterns are markup shapes typical of listing pages: result grids,
// card collections, search and catalog wrappers.
var listPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)class=".*?lista.*?"`),
	regexp.MustCompile(`(?i)class=".*?grid.*?"`),
	regexp.MustCompile(`(?i)class=".*?results.*?"`),
	regexp.MustCompile(`(?i)class=".*?catalog.*?"`),
	regexp.MustCompile(`(?i)class=".*?listing.*?"`),
	regexp.MustCompile(`(?i)class=".*?search.*?results.*?"`),
	regexp.MustCompile(`(?i)class=".*?cards.*?"`),
	regexp.MustCompile(`(?i)class=".*?properties.*?"`),
	regexp.MustCompile(`(?i)class=".*?imoveis.*?"`),
	regexp.MustCompile(`(?i)<div[^>]*id=".*?lista.*?"`),
	regexp.MustCompile(`(?i)<div[^>]*id=".*?grid.*?"`),
	regexp.MustCompile(`(?i)<div[^>]*id=".*?results.*?"`),
	regexp.MustCompile(`(?i)class=".*?pagination.*?"`),
	regexp.MustCompile(`(?i)class=".*?paginacao.*?"`),
	regexp.MustCompile(`(?i)class=".*?pages.*?"`),
	regexp.MustCompile(`(?i)class=".*?resultados.*?"`),
	regexp.MustCompile(`(?i)class=".*?busca.*?"`),
	regexp.MustCompile(`(?i)class=".*?search.*?"`),
}

// detailPatterns are markup shapes typical of a single-property page:
// price and spec blocks, galleries, bid widgets.
var detailPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)class=".*?detalhe.*?"`),
	regexp.MustCompile(`(?i)class=".*?produto.*?"`),
	regexp.MustCompile(`(?i)class=".*?imovel.*?info.*?"`),
	regexp.MustCompile(`(?is)<h1.*?>.*?</h1>`),
	regexp.MustCompile(`(?i)class=".*?price.*?"`),
	regexp.MustCompile(`(?i)class=".*?valor.*?"`),
	regexp.MustCompile(`(?i)class=".*?property.*?detail.*?"`),
	regexp.MustCompile(`(?i)class=".*?auction-details.*?"`),
	regexp.MustCompile(`(?i)class=".*?product-info.*?"`),
	regexp.MustCompile(`(?i)class=".*?item-detail.*?"`),
	regexp.MustCompile(`(?i)<div[^>]*id=".*?detalhe.*?"`),
	regexp.MustCompile(`(?i)<div[^>]*id=".*?produto.*?"`),
	regexp.MustCompile(`(?i)class=".*?caracteristicas.*?"`),
	regexp.MustCompile(`(?i)class=".*?especificacoes.*?"`),
	regexp.MustCompile(`(?i)class=".*?ficha.*?tecnica.*?"`),
	regexp.MustCompile(`(?i)class=".*?descricao.*?imovel.*?"`),
	regexp.MustCompile(`(?i)class=".*?galeria.*?"`),
	regexp.MustCompile(`(?i)class=".*?gallery.*?"`),
	regexp.MustCompile(`(?i)class=".*?fotos.*?"`),
	regexp.MustCompile(`(?i)class=".*?lances.*?"`),
	regexp.MustCompile(`(?i)class=".*?ofertas.*?"`),
	regexp.MustCompile(`(?i)class=".*?bid.*?"`),
}

// Boosted signals. Each strongly implies one page type, so they count
// for more than a single pattern hit.
var (
	priceRx      = regexp.MustCompile(`R\$\s*[\d.,]+`)
	areaRx       = regexp.MustCompile(`(?i)(área|area)\s*:?\s*\d+\s*(m²|m2)`)
	auctionRx    = regexp.MustCompile(`(?i)(data\s*do\s*leilão|leilão\s*em|data\s*:)`)
	cardsRx      = regexp.MustCompile(`(?is)(<div[^>]*class="[^"]*(?:card|item|produto|imovel|property)[^"]*".*?){3,}`)
	paginationRx = regexp.MustCompile(`(?i)class="[^"]*(?:pag(?:ination|inacao|e)|pages|numeros)[^"]*"`)
	navRx        = regexp.MustCompile(`(?i)(?:próxima|proxima|próximo|proximo|anterior|seguinte|next|prev|previous)`)
	filterRx     = regexp.MustCompile(`(?i)(?:filtrar|ordenar|filtros|filtro por|ordernar por|classificar)`)
	shareRx      = regexp.MustCompile(`(?i)(?:compartilhar|compartilhe|enviar|contato|contate|whatsapp|email|telefone)`)
	galleryRx    = regexp.MustCompile(`(?i)(?:galeria|slideshow|carrossel|carousel|slider|slide)`)
)

// PageType classifies a fetched page as a listing or a detail page.
//
// A depth-0 seed is always a list so the crawl can discover child
// links, even when its URL looks like a detail page. Past the seed,
// detail URL patterns decide immediately. Otherwise the markup is
// scored against listing and detail pattern sets; ties favor list, and
// malformed markup defaults to list rather than failing.
func (c *Classifier) PageType(markup, url string, depth int, seed bool) Result {
	if seed && depth == 0 {
		return Result{Type: arremate.PageTypeList, SeedOverride: true}
	}

	if IsDetailURL(url) {
		return Result{Type: arremate.PageTypeDetail, URLMatch: true}
	}

	if markup == "" || !utf8.ValidString(markup) {
		c.logger.Warn("malformed markup, defaulting to list", "url", url)
		return Result{Type: arremate.PageTypeList}
	}

	var listScore, detailScore int
	for _, re := range listPatterns {
		if re.MatchString(markup) {
			listScore++
		}
	}
	for _, re := range detailPatterns {
		if re.MatchString(markup) {
			detailScore++
		}
	}

	if priceRx.MatchString(markup) {
		detailScore += 2
	}
	if areaRx.MatchString(markup) {
		detailScore += 2
	}
	if auctionRx.MatchString(markup) {
		detailScore += 2
	}
	if shareRx.MatchString(markup) {
		detailScore++
	}
	if galleryRx.MatchString(markup) {
		detailScore++
	}

	if cardsRx.MatchString(markup) {
		listScore += 3
	}
	if paginationRx.MatchString(markup) {
		listScore += 2
	}
	if navRx.MatchString(markup) {
		listScore++
	}
	if filterRx.MatchString(markup) {
		listScore++
	}

	res := Result{ListScore: listScore, DetailScore: detailScore}
	if detailScore > listScore {
		res.Type = arremate.PageTypeDetail
	} else {
		res.Type = arremate.PageTypeList
	}
	return res
}
