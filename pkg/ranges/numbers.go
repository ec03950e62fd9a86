package ranges

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// numberRe finds signed or unsigned decimal tokens. Whitespace may sit between
// the sign and the digits ("- 40"). Digits from any script are accepted, the
// same set the pattern engine treats as \d.
var numberRe = regexp.MustCompile(`[-+]?[\s\p{Z}]*\p{Nd}+\.?\p{Nd}*`)

// Numbers returns every numeric token in s, in order of appearance.
func Numbers(s string) []string {
	return numberRe.FindAllString(s, -1)
}

// ExtractPair resolves the first two numeric tokens of a matched span into an
// ascending Range. It reports false when the span holds fewer than two
// tokens or a token does not parse.
//
// A token whose first occurrence in the span is immediately preceded by '-'
// is negative even when the scanner did not capture the sign itself.
func ExtractPair(match string) (Range, bool) {
	tokens := Numbers(match)
	if len(tokens) < 2 {
		return Range{}, false
	}
	start, ok := resolveToken(match, tokens[0])
	if !ok {
		return Range{}, false
	}
	end, ok := resolveToken(match, tokens[1])
	if !ok {
		return Range{}, false
	}
	return NewRange(start, end), true
}

func resolveToken(match, token string) (float64, bool) {
	v, err := strconv.ParseFloat(normalizeToken(token), 64)
	if err != nil {
		return 0, false
	}
	if i := strings.Index(match, token); i > 0 && match[i-1] == '-' && !strings.HasPrefix(token, "-") {
		v = -v
	}
	return v, true
}

// normalizeToken drops interior whitespace and folds non-ASCII decimal digits
// ("٣", "５") to their ASCII value so strconv can parse the token.
func normalizeToken(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case unicode.IsSpace(r) || unicode.Is(unicode.Z, r):
			return -1
		case r > unicode.MaxASCII && unicode.IsDigit(r):
			return '0' + digitValue(r)
		}
		return r
	}, s)
}

// digitValue returns the value of a Unicode decimal digit. Nd code points come
// in runs of ten starting at zero, and adjacent runs (the mathematical digit
// styles) stay aligned, so the value is the offset from the start of the run
// modulo ten.
func digitValue(r rune) rune {
	start := r
	for unicode.IsDigit(start - 1) {
		start--
	}
	return (r - start) % 10
}
