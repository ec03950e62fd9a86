package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/hazyhaar/partmatch/pkg/parts"
	"github.com/hazyhaar/partmatch/pkg/ranges"
)

var verdictColors = map[ranges.Verdict]*color.Color{
	ranges.VerdictAuthoritative: color.New(color.FgGreen),
	ranges.VerdictConflicting:   color.New(color.FgRed),
	ranges.VerdictNone:          color.New(color.FgYellow),
}

func newExtractCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "extract FILE...",
		Short: "Show the ranges extracted from datasheet files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ex, err := a.newExtractor(nil)
			if err != nil {
				return err
			}
			// Unreadable or undecodable files degrade to an empty component,
			// exactly as they do when the library is loaded.
			loader := a.newLoader(ex)
			comps := make([]*parts.Component, 0, len(args))
			for _, path := range args {
				comps = append(comps, loader.LoadFile(path))
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(comps)
			}
			for _, c := range comps {
				printComponent(out, c)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print components as JSON")
	return cmd
}

func printComponent(out io.Writer, c *parts.Component) {
	fmt.Fprintln(out, c.Name())
	for _, cat := range []ranges.Category{ranges.Voltage, ranges.Temperature} {
		v := c.Verdict(cat)
		cands := c.Candidates(cat)
		strs := make([]string, len(cands))
		for i, r := range cands {
			strs[i] = r.String()
		}
		fmt.Fprintf(out, "  %-12s ", cat)
		verdictColors[v].Fprintf(out, "%-13s", v)
		fmt.Fprintf(out, " %s\n", strings.Join(strs, " "))
	}
}
