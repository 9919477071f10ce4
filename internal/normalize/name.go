package normalize

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripAccents decomposes accented Latin characters and removes the
// combining marks, so Á->A, Ñ->N, Ü->U and so on.
var stripAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// abbrevRule is an ordered expansion rule. Order matters: the longer
// "N SRA" form must be tried before the bare "N S" form, and all rules
// run after punctuation has been turned into whitespace.
type abbrevRule struct {
	re   *regexp.Regexp
	repl string
}

// Spanish religious/honorific abbreviations as they appear in SEPE and
// padron municipality columns. The bare S prefix is only expanded at the
// start of the name so tokens like "VILLAR S" are left alone.
var abbrevRules = []abbrevRule{
	{regexp.MustCompile(`\bSTA\b`), "SANTA"},
	{regexp.MustCompile(`\bSTO\b`), "SANTO"},
	{regexp.MustCompile(`^N\s+SRA\b`), "NUESTRA SENORA"},
	{regexp.MustCompile(`^N\s+S\b`), "NUESTRA SENORA"},
	{regexp.MustCompile(`^S\s+`), "SAN "},
}

// Name canonicalizes a raw municipality or province name for comparison.
// The result is upper-case ASCII-range text with single spaces; empty
// input yields empty output. Connector phrases (DE, DEL, DE LA) come out
// single-spaced through the final whitespace collapse.
//
// The rule order is fixed: abbreviation expansion has to run after accent
// stripping so "Stá." variants still match, and before the whitespace
// collapse because expansions introduce new spaces.
func Name(raw string) string {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if s == "" {
		return ""
	}

	if out, _, err := transform.String(stripAccents, s); err == nil {
		s = out
	}

	// Punctuation to whitespace: periods, commas, parentheses, hyphens
	// and slashes all separate tokens in source spellings.
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}
	s = b.String()

	for _, rule := range abbrevRules {
		s = rule.re.ReplaceAllString(s, rule.repl)
	}

	return strings.Join(strings.Fields(s), " ")
}

// IsBlank reports whether a raw name is empty after normalization.
func IsBlank(raw string) bool {
	return Name(raw) == ""
}

// connector tokens dropped by ComparableKey. Articles are only dropped
// when they follow DE, so "Palmas, Las" keeps its article.
var connectorArticles = map[string]bool{"LA": true, "LAS": true, "EL": true, "LOS": true}

// ComparableKey reduces a normalized name further for equality checks
// that must tolerate missing connector words, the usual divergence
// between SEPE spellings ("SANTA CRUZ TENERIFE") and the registry's full
// form ("Santa Cruz de Tenerife"). Input is expected to already be in
// Name() form; raw input is normalized first.
func ComparableKey(raw string) string {
	tokens := strings.Fields(Name(raw))
	kept := tokens[:0]
	afterDe := false
	for _, tok := range tokens {
		switch {
		case tok == "DE" || tok == "DEL":
			afterDe = true
			continue
		case afterDe && connectorArticles[tok]:
			afterDe = false
			continue
		}
		afterDe = false
		kept = append(kept, tok)
	}
	return strings.Join(kept, " ")
}
