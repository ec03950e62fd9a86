package parts

import (
	"context"
	"log/slog"
	"time"

	"github.com/hazyhaar/partmatch/pkg/ranges"
)

// Observer is notified of every extracted component. Implementations must be
// safe for concurrent use.
type Observer interface {
	ObserveComponent(c *Component, volts, temps ranges.Report)
}

// Options configures an Extractor.
type Options struct {
	// Logger receives extraction diagnostics. Nil uses slog.Default().
	Logger *slog.Logger
	// Verbose logs each component's candidates and verdicts at info level
	// instead of debug.
	Verbose bool
	// MatchTimeout bounds a single pattern scan. Zero means no limit.
	MatchTimeout time.Duration
	// Observer, if set, sees every extracted component.
	Observer Observer
}

// Extractor builds components from document text. It holds no per-document
// state and is safe for concurrent use.
type Extractor struct {
	volts    *ranges.Resolver
	temps    *ranges.Resolver
	logger   *slog.Logger
	verbose  bool
	observer Observer
}

// NewExtractor compiles the voltage and temperature resolvers.
func NewExtractor(opts Options) (*Extractor, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	ropts := ranges.ResolverOptions{Logger: logger, MatchTimeout: opts.MatchTimeout}
	volts, err := ranges.NewResolver(ranges.Voltage, ropts)
	if err != nil {
		return nil, err
	}
	temps, err := ranges.NewResolver(ranges.Temperature, ropts)
	if err != nil {
		return nil, err
	}
	return &Extractor{
		volts:    volts,
		temps:    temps,
		logger:   logger,
		verbose:  opts.Verbose,
		observer: opts.Observer,
	}, nil
}

// Extract resolves both candidate sets for text, then applies consensus.
// name is used verbatim as the component name.
func (e *Extractor) Extract(name, text string) *Component {
	volts, vrep := e.volts.Resolve(text)
	temps, trep := e.temps.Resolve(text)
	c := NewComponent(name, volts, temps)

	level := slog.LevelDebug
	if e.verbose {
		level = slog.LevelInfo
	}
	if e.logger.Enabled(context.Background(), level) {
		v, vok := c.Voltage()
		t, tok := c.Temperature()
		e.logger.Log(context.Background(), level, "component extracted",
			"component", name,
			"voltage_candidates", volts.Ranges(),
			"temperature_candidates", temps.Ranges(),
			"voltage", rangeAttr(v, vok),
			"temperature", rangeAttr(t, tok),
			"malformed", vrep.Malformed+trep.Malformed,
			"implausible", vrep.Implausible,
		)
	}

	if e.observer != nil {
		e.observer.ObserveComponent(c, vrep, trep)
	}
	return c
}

func rangeAttr(r ranges.Range, ok bool) string {
	if !ok {
		return "none"
	}
	return r.String()
}
