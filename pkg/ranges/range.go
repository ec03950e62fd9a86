// Package ranges extracts operating voltage and temperature ranges from datasheet text.
package ranges

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

// Range is an inclusive numeric interval. Low <= High always holds for ranges
// produced by a Resolver.
type Range struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// NewRange returns the range spanning a and b, ordered ascending.
func NewRange(a, b float64) Range {
	if a > b {
		a, b = b, a
	}
	return Range{Low: a, High: b}
}

// Contains reports whether x lies within the range, bounds included.
func (r Range) Contains(x float64) bool {
	return r.Low <= x && x <= r.High
}

// Span returns High - Low.
func (r Range) Span() float64 {
	return r.High - r.Low
}

func (r Range) String() string {
	return fmt.Sprintf("(%s, %s)", formatBound(r.Low), formatBound(r.High))
}

func formatBound(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	for _, c := range s {
		if c == '.' {
			return s
		}
	}
	return s + ".0"
}

// Set is an unordered collection of distinct ranges.
// The zero value is not usable; create one with NewSet.
type Set struct {
	m map[Range]struct{}
}

// NewSet returns a set holding the given ranges.
func NewSet(rs ...Range) *Set {
	s := &Set{m: make(map[Range]struct{}, len(rs))}
	for _, r := range rs {
		s.Add(r)
	}
	return s
}

// Add inserts r. Adding a range already present is a no-op.
func (s *Set) Add(r Range) {
	s.m[r] = struct{}{}
}

// Len returns the number of distinct ranges.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.m)
}

// Contains reports whether r is a member.
func (s *Set) Contains(r Range) bool {
	if s == nil {
		return false
	}
	_, ok := s.m[r]
	return ok
}

// Ranges returns the members sorted by Low, then High.
func (s *Set) Ranges() []Range {
	if s == nil {
		return []Range{}
	}
	out := make([]Range, 0, len(s.m))
	for r := range s.m {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Low != out[j].Low {
			return out[i].Low < out[j].Low
		}
		return out[i].High < out[j].High
	})
	return out
}

// Equal reports whether both sets hold exactly the same ranges.
func (s *Set) Equal(o *Set) bool {
	if s.Len() != o.Len() {
		return false
	}
	if s == nil {
		return true
	}
	for r := range s.m {
		if !o.Contains(r) {
			return false
		}
	}
	return true
}

// MarshalJSON encodes the set as a sorted list.
func (s *Set) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Ranges())
}

// Verdict classifies a candidate set for consensus.
type Verdict int

const (
	// VerdictNone means no candidate was found.
	VerdictNone Verdict = iota
	// VerdictAuthoritative means exactly one distinct candidate exists.
	VerdictAuthoritative
	// VerdictConflicting means the document disagrees with itself.
	VerdictConflicting
)

func (v Verdict) String() string {
	switch v {
	case VerdictAuthoritative:
		return "authoritative"
	case VerdictConflicting:
		return "conflicting"
	default:
		return "none"
	}
}

// Verdict returns the consensus classification of the set.
func (s *Set) Verdict() Verdict {
	switch s.Len() {
	case 0:
		return VerdictNone
	case 1:
		return VerdictAuthoritative
	default:
		return VerdictConflicting
	}
}

// Consensus returns the single authoritative range. It reports false when the
// set is empty or holds two or more distinct ranges.
func (s *Set) Consensus() (Range, bool) {
	if s.Verdict() != VerdictAuthoritative {
		return Range{}, false
	}
	for r := range s.m {
		return r, true
	}
	return Range{}, false
}
