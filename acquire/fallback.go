package acquire

import "github.com/fcoelho/arremate"

// staticListSelectors are domain-idiom candidates for Brazilian auction
// sites, tried in order when generation fails. The first one matching at
// least one anchor wins.
var staticListSelectors = []string{
	"a[href*='/imovel']",
	"a[href*='detalhe']",
	"a[href*='lote']",
	"a[href*='leilao']",
	"a.card",
	".card a",
	".item a",
	".produto a",
	"a.item",
	"a.produto",
	"a[href*='item']",
	"a[href*='bem']",
	"a[href*='auction']",
	".property a",
	"a.property",
	"a[href*='imovel']",
	"a[href*='detalhes']",
	"a[href*='ficha']",
	"a[href*='lance']",
	".imovel a",
	"a.imovel",
	".lote a",
	"a.lote",
	".card-imovel a",
	"a.card-imovel",
	".bloco-imovel a",
	"a.bloco-imovel",
	".resultado a",
	"a.resultado",
	".thumb-imovel a",
	"a.thumb-imovel",
	".leilao-item a",
	"a.leilao-item",
	".imovel-card a",
	"a.imovel-card",
	".propriedade a",
	"a.propriedade",
	".anuncio a",
	"a.anuncio",
	".oferta a",
	"a.oferta",
	".oportunidade a",
	"a.oportunidade",
	".grid-item a",
	"a.grid-item",
	".lista-item a",
	"a.lista-item",
}

// genericListSelectors are the last-resort candidates. One is accepted
// only when it matches between 1 and 99 anchors, so a selector that
// sweeps up a whole page of navigation is never chosen.
var genericListSelectors = []string{
	"a[href]",
	".container a",
	"#content a",
	"main a",
	"article a",
	"section a",
	".results a",
	".listing a",
}

// maxGenericMatches bounds the generic pass.
const maxGenericMatches = 100

// genericFieldSelectors are known-good multi-alternative selectors per
// detail field. Any field the generation service misses or botches falls
// back to its entry here, so detail acquisition never fails outright.
var genericFieldSelectors = map[string]string{
	"title":         "h1, .title, .product-title, .property-title, .auction-title, .main-title, .imovel-titulo, .leilao-titulo, .nome-imovel",
	"price":         ".price, .value, .auction-price, .property-price, span[itemprop='price'], .valor, .lance-minimo, .valor-lance, .preco, .valor-inicial, .lance-inicial, .avaliacao",
	"description":   ".description, .details, .property-description, .descricao, div[itemprop='description'], .content p, .detalhes, .caracteristicas, .imovel-descricao, .texto-descritivo",
	"address":       ".address, .location, .property-address, .endereco, div[itemprop='address'], .localizacao, .local, .local-imovel, .imovel-endereco",
	"location":      ".location, .localizacao, .cidade, .cidade-estado, .local, span[itemprop='addressLocality']",
	"area":          ".area, .property-area, .tamanho, .metros, span[itemprop='size'], .area-total, .area-construida, .area-terreno, .area-util, .metragem",
	"property_type": ".type, .property-type, .categoria, .imovel-tipo, span[itemprop='category'], .tipo-imovel, .tipo, .categoria-imovel",
	"auction_date":  ".date, .auction-date, .data-leilao, .leilao-data, time, span[itemprop='date'], .data, .data-evento, .data-inicio, .data-termino, .data-realizacao",
	"image_url":     ".main-image img, .property-image img, .foto-principal img, .carousel img, img[itemprop='image'], .gallery img, .imagem-principal img, .foto img, .imagem-destaque img, .slide img",
}

// GenericDetailSelectors returns the full generic fallback set.
func GenericDetailSelectors() *arremate.DetailSelectors {
	sel := &arremate.DetailSelectors{}
	for _, field := range arremate.DetailFields {
		sel.Set(field, genericFieldSelectors[field])
	}
	return sel
}
