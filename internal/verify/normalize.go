package verify

import (
	"strings"
	"unicode"

	"github.com/pmezard/go-difflib/difflib"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// hebrewMarks covers cantillation, points and the punctuation marks that
// sit among them (maqaf, paseq, sof pasuq).
var hebrewMarks = runes.Predicate(func(r rune) bool {
	return r >= 0x0591 && r <= 0x05C7
})

// Normalize strips diacritics and cantillation, collapses whitespace and
// trims. OCR engines drop or garble marks far more often than letters, so
// comparisons are made on bare consonants.
func Normalize(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), runes.Remove(hebrewMarks), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.Join(strings.Fields(out), " ")
}

// Similarity is the sequence-matching ratio of the normalized strings:
// 2*M/T where M is the number of matched characters and T the total length.
// Either side being empty yields 0.
func Similarity(a, b string) float64 {
	return ratio(Normalize(a), Normalize(b))
}

func ratio(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	m := difflib.NewMatcher(chars(a), chars(b))
	return m.Ratio()
}

func chars(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}
