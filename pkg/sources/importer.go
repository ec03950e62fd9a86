package sources

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"golang.org/x/sync/errgroup"
)

// Importer fetches catalog sources into per-source subdirectories of the
// library directory.
type Importer struct {
	db         *SourceDB
	fetcher    *Fetcher
	libraryDir string
	logger     *slog.Logger
	workers    int
}

// NewImporter creates an Importer. A nil logger uses slog.Default().
func NewImporter(db *SourceDB, fetcher *Fetcher, libraryDir string, logger *slog.Logger) *Importer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Importer{db: db, fetcher: fetcher, libraryDir: libraryDir, logger: logger, workers: 4}
}

// Import fetches one source into <library>/<name>/ and returns the files
// written.
func (im *Importer) Import(ctx context.Context, name string) ([]string, error) {
	src, err := im.db.Get(name)
	if err != nil {
		return nil, err
	}
	files, err := im.fetcher.Fetch(ctx, src.URL, filepath.Join(im.libraryDir, src.Name))
	if err != nil {
		return nil, fmt.Errorf("import %s: %w", name, err)
	}
	im.logger.Info("source imported", "source", name, "files", len(files))
	return files, nil
}

// ImportAll imports every source, a few at a time. A failing source does not
// stop the others; all failures are returned joined.
func (im *Importer) ImportAll(ctx context.Context) (map[string][]string, error) {
	srcs, err := im.db.List()
	if err != nil {
		return nil, err
	}

	files := make([][]string, len(srcs))
	errs := make([]error, len(srcs))
	var g errgroup.Group
	g.SetLimit(im.workers)
	for i, src := range srcs {
		g.Go(func() error {
			files[i], errs[i] = im.Import(ctx, src.Name)
			if errs[i] != nil {
				im.logger.Error("source import failed", "source", src.Name, "error", errs[i])
			}
			return nil
		})
	}
	g.Wait()

	out := make(map[string][]string, len(srcs))
	for i, src := range srcs {
		if errs[i] == nil {
			out[src.Name] = files[i]
		}
	}
	return out, errors.Join(errs...)
}
