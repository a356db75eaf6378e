package goquery_test

import (
	"testing"

	"github.com/fcoelho/arremate"
	"github.com/fcoelho/arremate/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractor_ExtractDetail(t *testing.T) {
	t.Parallel()

	e := goquery.NewExtractor(nil)

	t.Run("SelectorsMatch", func(t *testing.T) {
		t.Parallel()

		markup := `<html><body>
			<h1 class="titulo">Apartamento no Centro</h1>
			<span class="valor">R$ 320.000,00</span>
			<div class="descricao">Apartamento de  85 m² <b>desocupado</b>.</div>
			<span class="endereco">Rua XV de Novembro, 100</span>
			<img class="foto-principal" src="/fotos/1.jpg">
		</body></html>`

		sel := &arremate.DetailSelectors{
			Title:       "h1.titulo",
			Price:       "span.valor",
			Description: "div.descricao",
			Address:     "span.endereco",
			ImageURL:    "img.foto-principal",
		}

		rec, matched, err := e.ExtractDetail(markup, "https://leiloes.example.com/imovel/55", sel)
		require.NoError(t, err)
		assert.Equal(t, "Apartamento no Centro", rec.Title)
		assert.Equal(t, "R$ 320.000,00", rec.Price)
		assert.Equal(t, "Apartamento de 85 m² desocupado.", rec.Description)
		assert.Equal(t, "Rua XV de Novembro, 100", rec.Address)
		assert.Equal(t, "https://leiloes.example.com/fotos/1.jpg", rec.ImageURL)
		assert.Equal(t, "leiloes.example.com", rec.SourceDomain)
		assert.True(t, matched["title"])
		assert.True(t, matched["price"])
		assert.False(t, matched["auction_date"])
	})

	t.Run("ContentAttributeLadder", func(t *testing.T) {
		t.Parallel()

		markup := `<html><head><meta class="preco" content="R$ 99.000,00"></head><body></body></html>`
		sel := &arremate.DetailSelectors{Price: "meta.preco"}

		rec, matched, err := e.ExtractDetail(markup, "https://example.com/lote/1", sel)
		require.NoError(t, err)
		assert.Equal(t, "R$ 99.000,00", rec.Price)
		assert.True(t, matched["price"])
	})

	t.Run("LazyImageAttribute", func(t *testing.T) {
		t.Parallel()

		markup := `<html><body><img class="foto" data-lazy-src="https://cdn.example.com/2.jpg"></body></html>`
		sel := &arremate.DetailSelectors{ImageURL: "img.foto"}

		rec, _, err := e.ExtractDetail(markup, "https://example.com/lote/2", sel)
		require.NoError(t, err)
		assert.Equal(t, "https://cdn.example.com/2.jpg", rec.ImageURL)
	})

	t.Run("GalleryFallback", func(t *testing.T) {
		t.Parallel()

		markup := `<html><body><div class="galeria"><img src="/g/1.jpg"></div></body></html>`
		rec, matched, err := e.ExtractDetail(markup, "https://example.com/lote/3", &arremate.DetailSelectors{})
		require.NoError(t, err)
		assert.Equal(t, "https://example.com/g/1.jpg", rec.ImageURL)
		assert.False(t, matched["image_url"])
	})

	t.Run("PageLevelFallbacks", func(t *testing.T) {
		t.Parallel()

		markup := `<html><body>
			<h1>Casa em Curitiba</h1>
			<p>Lance mínimo R$ 250.000,00. Leilão em 15/03/2025.</p>
		</body></html>`

		rec, matched, err := e.ExtractDetail(markup, "https://example.com/lote/4", &arremate.DetailSelectors{})
		require.NoError(t, err)
		assert.Equal(t, "Casa em Curitiba", rec.Title)
		assert.Equal(t, "R$ 250.000,00", rec.Price)
		assert.Equal(t, "15/03/2025", rec.AuctionDate)
		assert.Empty(t, matched)
	})

	t.Run("LocationFillsAddress", func(t *testing.T) {
		t.Parallel()

		markup := `<html><body><h1>Lote</h1><span class="cidade">Curitiba - PR</span></body></html>`
		sel := &arremate.DetailSelectors{Location: "span.cidade"}

		rec, _, err := e.ExtractDetail(markup, "https://example.com/lote/5", sel)
		require.NoError(t, err)
		assert.Equal(t, "Curitiba - PR", rec.Address)
	})
}
