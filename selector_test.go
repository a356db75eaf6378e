package arremate_test

import (
	"strings"
	"testing"

	"github.com/fcoelho/arremate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateSelector(t *testing.T) {
	t.Parallel()

	valid := []string{
		".property-card a.property-link",
		"div.auction-item a.details-link",
		"a[href*='/imovel/']",
		"#content a",
		"h1",
		"*",
		".price, .valor, span.lance",
		"img.foto-principal",
	}
	for _, sel := range valid {
		t.Run("valid/"+sel, func(t *testing.T) {
			t.Parallel()
			assert.NoError(t, arremate.ValidateSelector(sel))
		})
	}

	invalid := []struct {
		name string
		sel  string
	}{
		{"empty", ""},
		{"markup", "<div class='card'>"},
		{"braces", "{list_selector: .card}"},
		{"url", "https://leiloes.example.com.br/imovel/1"},
		{"unbalanced brackets", "a[href*='/lote'"},
		{"unbalanced parens", "div:nth-child(2"},
		{"too long", "." + strings.Repeat("x", 200)},
		{"unrecognized start", "@media screen"},
		{"bad alternative", ".valor, https://example.com"},
	}
	for _, tt := range invalid {
		t.Run("invalid/"+tt.name, func(t *testing.T) {
			t.Parallel()
			err := arremate.ValidateSelector(tt.sel)
			require.Error(t, err)
			assert.Equal(t, arremate.EINVALID, arremate.ErrorCode(err))
		})
	}
}

func TestValidateFieldSelector(t *testing.T) {
	t.Parallel()

	err := arremate.ValidateFieldSelector("price", "<b>")
	require.Error(t, err)
	assert.Contains(t, arremate.ErrorMessage(err), "price")
}

func TestDetailSelectors_GetSet(t *testing.T) {
	t.Parallel()

	var sel arremate.DetailSelectors
	assert.True(t, sel.IsZero())

	for _, field := range arremate.DetailFields {
		sel.Set(field, "."+field)
	}
	assert.False(t, sel.IsZero())
	assert.Equal(t, ".title", sel.Title)
	assert.Equal(t, ".image_url", sel.ImageURL)
	assert.Equal(t, ".auction_date", sel.Get("auction_date"))

	sel.Set("unknown", ".x")
	assert.Empty(t, sel.Get("unknown"))
}
