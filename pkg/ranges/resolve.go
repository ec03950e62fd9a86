package ranges

import (
	"log/slog"
	"strings"
	"time"
)

// Report counts what a Resolve call saw and discarded.
type Report struct {
	// DocumentMatches is the number of matches over the whole text, before
	// per-line extraction. Diagnostic only.
	DocumentMatches int
	LineMatches     int
	Malformed       int
	Implausible     int
	Timeouts        int
}

// Resolver turns a document into the set of distinct candidate ranges of one
// category. A Resolver is safe for concurrent use.
type Resolver struct {
	pattern  *Pattern
	validate func(Range) bool
	logger   *slog.Logger
}

// ResolverOptions configures a Resolver.
type ResolverOptions struct {
	// Logger receives per-match diagnostics at debug level. Nil uses slog.Default().
	Logger *slog.Logger
	// MatchTimeout bounds a single pattern scan. Zero means no limit.
	MatchTimeout time.Duration
}

// NewResolver builds a Resolver for c. Voltage pairs are filtered through
// ValidVoltage; temperature pairs are accepted as matched.
func NewResolver(c Category, opts ResolverOptions) (*Resolver, error) {
	p, err := CompilePattern(c, opts.MatchTimeout)
	if err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	r := &Resolver{pattern: p, logger: logger.With("category", c.String())}
	if c == Voltage {
		r.validate = ValidVoltage
	}
	return r, nil
}

// Category returns the category this resolver extracts.
func (r *Resolver) Category() Category { return r.pattern.Category() }

// Resolve extracts the candidate set from text. It never fails: malformed
// matches, implausible voltages and timed-out scans are dropped and counted
// in the Report.
//
// The pattern may span line breaks; pairs are only taken from matches within
// a single line.
func (r *Resolver) Resolve(text string) (*Set, Report) {
	var rep Report
	set := NewSet()

	whole, err := r.pattern.FindAll(text)
	rep.DocumentMatches = len(whole)
	if err != nil {
		rep.Timeouts++
		r.logger.Warn("document scan aborted", "error", err)
	}

	for n, line := range strings.Split(text, "\n") {
		matches, err := r.pattern.FindAll(line)
		if err != nil {
			rep.Timeouts++
			r.logger.Warn("line scan aborted", "line", n+1, "error", err)
		}
		for _, m := range matches {
			rep.LineMatches++
			pair, ok := ExtractPair(m)
			if !ok {
				rep.Malformed++
				r.logger.Debug("match without two numbers", "line", n+1, "match", m)
				continue
			}
			if r.validate != nil && !r.validate(pair) {
				rep.Implausible++
				r.logger.Debug("implausible range dropped", "line", n+1, "range", pair.String())
				continue
			}
			set.Add(pair)
		}
	}

	r.logger.Debug("resolved",
		"document_matches", rep.DocumentMatches,
		"line_matches", rep.LineMatches,
		"candidates", set.Len(),
	)
	return set, rep
}
