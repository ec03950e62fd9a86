package parts

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var stripAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeName folds a component name for lookup: trimmed, lowercased and
// accent-free (e.g. "LM317-Régulateur.TXT" -> "lm317-regulateur.txt").
func NormalizeName(s string) string {
	result, _, _ := transform.String(stripAccents, strings.ToLower(strings.TrimSpace(s)))
	return result
}
