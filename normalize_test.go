package arremate_test

import (
	"testing"

	"github.com/fcoelho/arremate"
	"github.com/stretchr/testify/assert"
)

func TestNormalizePrice(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"brazilian thousands and decimal", "R$ 1.500.000,00", "1500000.00"},
		{"comma decimal only", "R$ 1.234,56", "1234.56"},
		{"plain integer", "R$ 950", "950"},
		{"no currency marker", "1.234,56", "1234.56"},
		{"empty", "", ""},
		{"not a number returns input", "consulte o edital", "consulte o edital"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, arremate.NormalizePrice(tt.input))
		})
	}
}

func TestCleanText(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Casa em Curitiba", arremate.CleanText("  Casa \n\t em   Curitiba \x00"))
	assert.Empty(t, arremate.CleanText("   \n  "))
}

func TestFirstPrice(t *testing.T) {
	t.Parallel()

	desc := "Imóvel desocupado. Lance mínimo R$ 250.000,00 conforme edital."
	assert.Equal(t, "R$ 250.000,00", arremate.FirstPrice(desc))
	assert.Empty(t, arremate.FirstPrice("sem valor definido"))
}

func TestFirstDate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"numeric date", "Leilão em 15/03/2025 às 14h", "15/03/2025"},
		{"written date", "ocorre em 2 de março de 2025", "2 de março de 2025"},
		{"no date", "sem data prevista", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, arremate.FirstDate(tt.input))
		})
	}
}
