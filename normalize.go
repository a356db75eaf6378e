package arremate

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// CleanText collapses runs of whitespace into single spaces and drops
// non-printable characters. Every extracted raw value passes through it.
func CleanText(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsPrint(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

var nonPriceChars = regexp.MustCompile(`[^\d,.]`)

// NormalizePrice converts a displayed Brazilian price to a plain decimal
// string, e.g. "R$ 1.500.000,00" -> "1500000.00". When both separators
// appear, "." is the thousands separator and "," the decimal mark; a lone
// "," is decimal. If the result does not parse as a number the input is
// returned unchanged.
func NormalizePrice(price string) string {
	if price == "" {
		return price
	}

	clean := nonPriceChars.ReplaceAllString(price, "")
	switch {
	case strings.Contains(clean, ",") && strings.Contains(clean, "."):
		clean = strings.ReplaceAll(clean, ".", "")
		clean = strings.ReplaceAll(clean, ",", ".")
	case strings.Contains(clean, ","):
		clean = strings.ReplaceAll(clean, ",", ".")
	}

	if _, err := strconv.ParseFloat(clean, 64); err != nil {
		return price
	}
	return clean
}

var pricePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)R\$\s*[\d.,]+`),
	regexp.MustCompile(`(?i)valor[:\s]+R\$\s*[\d.,]+`),
	regexp.MustCompile(`(?i)preço[:\s]+R\$\s*[\d.,]+`),
	regexp.MustCompile(`(?i)lance[:\s]+R\$\s*[\d.,]+`),
	regexp.MustCompile(`(?i)avaliado[^R]*R\$\s*[\d.,]+`),
}

// FirstPrice returns the first currency amount found in free text, or ""
// when none is present. Used as the price fallback when no selector
// matched.
func FirstPrice(text string) string {
	for _, re := range pricePatterns {
		if m := re.FindString(text); m != "" {
			return m
		}
	}
	return ""
}

var datePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\d{2}/\d{2}/\d{4}`),
	regexp.MustCompile(`(?i)\d{1,2}\s+de\s+[a-zA-Zçãé]+\s+de\s+\d{4}`),
	regexp.MustCompile(`(?i)dia\s+\d{1,2}\D+\d{1,2}\D+\d{4}`),
	regexp.MustCompile(`(?i)data[:\s]+\d{1,2}\D+\d{1,2}\D+\d{4}`),
}

// FirstDate returns the first date-like phrase found in free text, either
// numeric (dd/mm/yyyy) or written out ("12 de março de 2025").
func FirstDate(text string) string {
	for _, re := range datePatterns {
		if m := re.FindString(text); m != "" {
			return m
		}
	}
	return ""
}
