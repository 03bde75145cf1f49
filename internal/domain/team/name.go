package team

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var clubAffixes = map[string]struct{}{
	"fc":  {},
	"afc": {},
	"cf":  {},
	"sc":  {},
	"ac":  {},
	"ssc": {},
}

// NormalizeName folds a display name into a comparison key: accents stripped,
// lower case, punctuation collapsed to single spaces, club affixes removed.
func NormalizeName(name string) string {
	folded, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), name)
	if err != nil {
		folded = name
	}
	folded = strings.ToLower(folded)

	fields := strings.FieldsFunc(folded, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := fields[:0]
	for _, field := range fields {
		if _, ok := clubAffixes[field]; ok && len(fields) > 1 {
			continue
		}
		out = append(out, field)
	}
	return strings.Join(out, " ")
}

// ContainsWords reports whether fragment occurs in name as a run of whole
// words. Both arguments are normalized keys.
func ContainsWords(name, fragment string) bool {
	if fragment == "" {
		return false
	}
	return strings.Contains(" "+name+" ", " "+fragment+" ")
}
