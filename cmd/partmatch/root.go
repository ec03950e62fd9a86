package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/hazyhaar/partmatch/pkg/config"
	"github.com/hazyhaar/partmatch/pkg/parts"
)

// app carries the state shared by all subcommands.
type app struct {
	cfgPath string
	verbose bool
	noColor bool

	cfg    *config.Config
	level  *slog.LevelVar
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "partmatch",
		Short: "Match electronic components to an operating voltage and temperature",
		Long: `partmatch reads a library of datasheet text files, extracts each component's
operating voltage and temperature ranges, and lists the components that work at
a given operating point.`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
	}

	root.PersistentFlags().StringVarP(&a.cfgPath, "config", "c", "partmatch.yaml", "config file path")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log extraction details and parsing statistics")
	root.PersistentFlags().BoolVar(&a.noColor, "no-color", false, "disable colored output")

	root.AddCommand(
		newMatchCmd(a),
		newExtractCmd(a),
		newServeCmd(a),
		newMCPCmd(a),
		newImportCmd(a),
		newSourcesCmd(a),
	)
	return root
}

func (a *app) init(cmd *cobra.Command) error {
	if a.noColor {
		color.NoColor = true
	}

	a.level = new(slog.LevelVar)
	a.level.Set(slog.LevelWarn)
	if a.verbose {
		a.level.Set(slog.LevelInfo)
	}
	a.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: a.level}))

	cfg, err := config.Load(a.cfgPath)
	if err != nil {
		return err
	}
	if a.verbose {
		cfg.Extract.Verbose = true
	}
	a.cfg = cfg
	return nil
}

// raiseLogLevel makes info logs visible for long-running commands.
func (a *app) raiseLogLevel() {
	if a.level.Level() > slog.LevelInfo {
		a.level.Set(slog.LevelInfo)
	}
}

func (a *app) newExtractor(obs parts.Observer) (*parts.Extractor, error) {
	return parts.NewExtractor(parts.Options{
		Logger:       a.logger,
		Verbose:      a.cfg.Extract.Verbose,
		MatchTimeout: a.cfg.Extract.MatchTimeout,
		Observer:     obs,
	})
}

func (a *app) newLoader(ex *parts.Extractor) *parts.Loader {
	return parts.NewLoader(ex, parts.LoaderOptions{
		Extension: a.cfg.Library.Extension,
		Workers:   a.cfg.Library.Workers,
		Encodings: a.cfg.Encodings(),
		Logger:    a.logger,
		Verbose:   a.cfg.Extract.Verbose,
	})
}

// loadCatalog extracts every datasheet in the library directory.
func (a *app) loadCatalog(ctx context.Context, obs parts.Observer) (*parts.Catalog, *parts.Extractor, error) {
	ex, err := a.newExtractor(obs)
	if err != nil {
		return nil, nil, err
	}
	dir := a.cfg.Library.Dir
	if _, err := os.Stat(dir); err != nil {
		return nil, nil, fmt.Errorf("component directory not found: %s", dir)
	}
	cat := parts.NewCatalog(a.newLoader(ex), dir)
	if err := cat.Load(ctx); err != nil {
		return nil, nil, err
	}
	return cat, ex, nil
}
