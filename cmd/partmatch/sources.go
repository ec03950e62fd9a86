package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/hazyhaar/partmatch/pkg/sources"
)

// openSources opens the source catalog and seeds it from the YAML catalog
// file when one exists.
func (a *app) openSources() (*sources.SourceDB, error) {
	sdb, err := sources.OpenSourceDB(a.cfg.Sources.DB)
	if err != nil {
		return nil, err
	}
	path := a.cfg.Sources.Catalog
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		a.logger.Info("no source catalog file, skipping seed", "path", path)
		return sdb, nil
	}
	srcs, err := sources.LoadCatalogFile(path)
	if err == nil {
		err = sdb.Seed(srcs)
	}
	if err != nil {
		sdb.Close()
		return nil, err
	}
	return sdb, nil
}

func newImportCmd(a *app) *cobra.Command {
	var (
		source string
		all    bool
	)
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Download datasheet bundles into the library directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a.raiseLogLevel()
			sdb, err := a.openSources()
			if err != nil {
				return err
			}
			defer sdb.Close()

			out := cmd.OutOrStdout()
			if !all && source == "" {
				if err := listSources(out, sdb); err != nil {
					return err
				}
				fmt.Fprintln(out)
				fmt.Fprintln(out, "Usage:")
				fmt.Fprintln(out, "  partmatch import --source <name>")
				fmt.Fprintln(out, "  partmatch import --all")
				return nil
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Hour)
			defer cancel()

			im := sources.NewImporter(sdb, sources.NewFetcher(a.cfg.Library.Extension), a.cfg.Library.Dir, a.logger)
			if all {
				imported, err := im.ImportAll(ctx)
				names := make([]string, 0, len(imported))
				for name := range imported {
					names = append(names, name)
				}
				sort.Strings(names)
				for _, name := range names {
					fmt.Fprintf(out, "[%s] OK (%d files)\n", name, len(imported[name]))
				}
				return err
			}

			files, err := im.Import(ctx, source)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "[%s] OK (%d files)\n", source, len(files))
			return nil
		},
	}
	cmd.Flags().StringVar(&source, "source", "", "source name to import")
	cmd.Flags().BoolVar(&all, "all", false, "import every catalog source")
	cmd.MarkFlagsMutuallyExclusive("source", "all")
	return cmd
}

func newSourcesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sources",
		Short: "List the datasheet bundle catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sdb, err := a.openSources()
			if err != nil {
				return err
			}
			defer sdb.Close()
			return listSources(cmd.OutOrStdout(), sdb)
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "check",
		Short: "Check that every source URL is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sdb, err := a.openSources()
			if err != nil {
				return err
			}
			defer sdb.Close()
			res := sources.NewChecker(sdb, a.logger, 0).CheckAll(cmd.Context())
			fmt.Fprintf(cmd.OutOrStdout(), "%d sources checked: %d ok, %d failed\n", res.Total, res.OK, res.Failed)
			if res.Failed > 0 {
				return fmt.Errorf("%d sources unavailable", res.Failed)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set-url NAME URL",
		Short: "Override the download URL of a source",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sdb, err := a.openSources()
			if err != nil {
				return err
			}
			defer sdb.Close()
			return sdb.SetURL(args[0], args[1])
		},
	})
	return cmd
}

func listSources(out io.Writer, sdb *sources.SourceDB) error {
	srcs, err := sdb.List()
	if err != nil {
		return err
	}
	if len(srcs) == 0 {
		fmt.Fprintln(out, "No sources in catalog.")
		return nil
	}
	fmt.Fprintln(out, "Sources:")
	for _, src := range srcs {
		status := ""
		if src.LastStatus != nil {
			status = fmt.Sprintf("  [%d]", *src.LastStatus)
		}
		fmt.Fprintf(out, "  %-25s  %s%s\n", src.Name, src.URL, status)
	}
	return nil
}
