package ranges

import (
	"fmt"
	"strings"
	"time"

	"github.com/dlclark/regexp2"
)

// Category selects which physical quantity a pattern recognises.
type Category int

const (
	Voltage Category = iota
	Temperature
)

func (c Category) String() string {
	switch c {
	case Voltage:
		return "voltage"
	case Temperature:
		return "temperature"
	default:
		return fmt.Sprintf("category(%d)", int(c))
	}
}

// ParseCategory maps "voltage" / "temperature" (any case) to a Category.
func ParseCategory(s string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "voltage", "v":
		return Voltage, nil
	case "temperature", "temp", "t":
		return Temperature, nil
	}
	return 0, fmt.Errorf("unknown category %q", s)
}

// Both patterns need backtracking and a negative lookahead, which RE2 lacks.
const (
	// A number with a volt unit, e.g. "3.3V", "-12 V", "5-V".
	voltNumber = `(?:[-+]?\s*\d+\.?\d*\s*-?[Vv])`
	voltSep    = `\s*(?:to|[-–]|,)\s*`

	voltageExpr = `(?:` +
		`(?:•\s*)?` +
		`(?:` +
		voltNumber + voltSep + voltNumber +
		`(?:\s+(?:Operation|operation))?` +
		`|` +
		`(?:(?:v(?:dd|ref|in)?|input|supply|voltage|power)` +
		`(?:\s+(?:range|voltage))?` +
		`(?:\s*(?:of|from|:))?)` +
		`\s*` +
		voltNumber + voltSep + voltNumber +
		`)` +
		`(?![.\d])` +
		`)`

	temperatureExpr = `(?:` +
		`(?:•\s*)?` +
		`(?:` +
		`(?:` +
		`(?:temperature|t(?:a|j))` +
		`(?:\s+(?:grade|range))?` +
		`(?:\s*(?:\d+\s*:|:))?` +
		`|` +
		`(?:industrial\s+temperature)` +
		`|` +
		`(?:operation\s+(?:over|at))` +
		`|` +
		`(?:operating)` +
		`)` +
		`[^.]*?` +
		`(?:[-+]?\s*\d+\.?\d*)` +
		`(?:\s*°?\s*[Cc])?` +
		`(?:\s*(?:to|[-–]|,|\s+))\s*` +
		`(?:[-+]?\s*\d+\.?\d*)` +
		`(?:\s*°?\s*[Cc])` +
		`)` +
		`(?![.\d])` +
		`)`
)

// Pattern is a compiled range recogniser for one category.
// A Pattern is safe for concurrent use.
type Pattern struct {
	category Category
	re       *regexp2.Regexp
}

// CompilePattern compiles the range pattern for c. Matching is
// case-insensitive and '.' spans newlines. A zero timeout means no limit.
func CompilePattern(c Category, timeout time.Duration) (*Pattern, error) {
	var expr string
	switch c {
	case Voltage:
		expr = voltageExpr
	case Temperature:
		expr = temperatureExpr
	default:
		return nil, fmt.Errorf("compile pattern: unknown category %d", int(c))
	}
	re, err := regexp2.Compile(expr, regexp2.IgnoreCase|regexp2.Singleline)
	if err != nil {
		return nil, fmt.Errorf("compile %s pattern: %w", c, err)
	}
	if timeout > 0 {
		re.MatchTimeout = timeout
	}
	return &Pattern{category: c, re: re}, nil
}

// MustCompilePattern is CompilePattern without a timeout, panicking on error.
func MustCompilePattern(c Category) *Pattern {
	p, err := CompilePattern(c, 0)
	if err != nil {
		panic(err)
	}
	return p
}

// Category returns the category the pattern recognises.
func (p *Pattern) Category() Category { return p.category }

// FindAll returns the text of every non-overlapping match in s, left to right.
// The error is non-nil only when the match timeout expires; matches found
// before that point are still returned.
func (p *Pattern) FindAll(s string) ([]string, error) {
	var out []string
	m, err := p.re.FindStringMatch(s)
	for m != nil {
		out = append(out, m.String())
		m, err = p.re.FindNextMatch(m)
	}
	if err != nil {
		return out, fmt.Errorf("%s pattern: %w", p.category, err)
	}
	return out, nil
}
