package extract

import (
	"regexp"
	"strings"
)

var thousandsRe = regexp.MustCompile(`(\d),(\d)`)

// unitExpansions maps abbreviated units to their full words, matched as
// whole words only.
var unitExpansions = []struct {
	re          *regexp.Regexp
	replacement string
}{
	{regexp.MustCompile(`\bkm\b`), "kilometer"},
	{regexp.MustCompile(`\bmi\b`), "mile"},
	{regexp.MustCompile(`\bkg\b`), "kilogram"},
	{regexp.MustCompile(`\blb\b`), "pound"},
	{regexp.MustCompile(`\bhr\b`), "hour"},
	{regexp.MustCompile(`\bmin\b`), "minute"},
	{regexp.MustCompile(`\bsec\b`), "second"},
}

// NormalizeClaim canonicalizes claim text for matching: lowercase, strip
// thousands separators inside digit runs ("1,000" -> "1000"), expand unit
// abbreviations, collapse whitespace. The function is idempotent.
func NormalizeClaim(claim string) string {
	normalized := strings.ToLower(claim)

	// Repeat until fixed point so "1,000,000" fully collapses.
	for {
		next := thousandsRe.ReplaceAllString(normalized, "${1}${2}")
		if next == normalized {
			break
		}
		normalized = next
	}

	for _, u := range unitExpansions {
		normalized = u.re.ReplaceAllString(normalized, u.replacement)
	}

	return strings.Join(strings.Fields(normalized), " ")
}
