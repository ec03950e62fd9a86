package parts

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/hazyhaar/partmatch/pkg/ranges"
)

// LoadStats summarises a directory load, classified by voltage consensus.
type LoadStats struct {
	TotalFiles             int `json:"total_files"`
	SuccessfulParse        int `json:"successful_parse"`
	MultipleRangesRejected int `json:"multiple_ranges_rejected"`
	InvalidRangesRejected  int `json:"invalid_ranges_rejected"`
}

func (s *LoadStats) add(c *Component) {
	s.TotalFiles++
	switch c.Verdict(ranges.Voltage) {
	case ranges.VerdictConflicting:
		s.MultipleRangesRejected++
	case ranges.VerdictNone:
		s.InvalidRangesRejected++
	default:
		s.SuccessfulParse++
	}
}

// LoaderOptions configures a Loader.
type LoaderOptions struct {
	// Extension selects files to load (default ".txt").
	Extension string
	// Workers bounds parallel extraction (default GOMAXPROCS).
	Workers int
	// Encodings are tried in order (default utf-8, then iso-8859-1).
	Encodings []string
	Logger    *slog.Logger
	Verbose   bool
}

// Loader reads datasheet files from disk and extracts components.
type Loader struct {
	extractor *Extractor
	opts      LoaderOptions
	logger    *slog.Logger
}

// NewLoader returns a Loader using e for extraction.
func NewLoader(e *Extractor, opts LoaderOptions) *Loader {
	if opts.Extension == "" {
		opts.Extension = ".txt"
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	if len(opts.Encodings) == 0 {
		opts.Encodings = []string{DefaultPrimaryEncoding, DefaultSecondaryEncoding}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{extractor: e, opts: opts, logger: logger}
}

// Extractor returns the loader's extractor.
func (l *Loader) Extractor() *Extractor { return l.extractor }

// LoadFile extracts the component for one file, named after its base name.
// Read and decode failures degrade to a component with no ranges.
func (l *Loader) LoadFile(path string) *Component {
	name := filepath.Base(path)
	data, err := os.ReadFile(path)
	if err != nil {
		if l.opts.Verbose {
			l.logger.Error("read datasheet", "path", path, "error", err)
		}
		return NewComponent(name, nil, nil)
	}
	text, err := DecodeText(data, l.opts.Encodings...)
	if err != nil {
		if l.opts.Verbose {
			l.logger.Error("decode datasheet", "path", path, "error", err)
		}
		return NewComponent(name, nil, nil)
	}
	return l.extractor.Extract(name, text)
}

// LoadDir walks dir recursively and extracts every file with the configured
// extension, in parallel. Components are returned in sorted path order.
func (l *Loader) LoadDir(ctx context.Context, dir string) ([]*Component, LoadStats, error) {
	var stats LoadStats

	info, err := os.Stat(dir)
	if err != nil {
		return nil, stats, fmt.Errorf("library dir %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, stats, fmt.Errorf("library dir %s: not a directory", dir)
	}

	files, err := listFiles(dir, l.opts.Extension)
	if err != nil {
		return nil, stats, fmt.Errorf("walk %s: %w", dir, err)
	}

	components := make([]*Component, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.opts.Workers)
	for i, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			components[i] = l.LoadFile(path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, stats, err
	}

	for _, c := range components {
		stats.add(c)
	}
	if l.opts.Verbose {
		l.logger.Info("parsing statistics",
			"total_files", stats.TotalFiles,
			"successful_parse", stats.SuccessfulParse,
			"multiple_ranges_rejected", stats.MultipleRangesRejected,
			"invalid_ranges_rejected", stats.InvalidRangesRejected,
		)
	}
	return components, stats, nil
}

func listFiles(dir, ext string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), ext) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}
