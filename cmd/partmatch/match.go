package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/hazyhaar/partmatch/pkg/parts"
)

var (
	headerColor = color.New(color.FgGreen, color.Bold)
	noneColor   = color.New(color.FgYellow)
)

func newMatchCmd(a *app) *cobra.Command {
	var voltage, temperature string
	cmd := &cobra.Command{
		Use:   "match",
		Short: "List components compatible with an operating point",
		Long: `Load the component library and list the components whose voltage and
temperature ranges both contain the operating point. Values not given as flags
are prompted for on standard input.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cat, _, err := a.loadCatalog(cmd.Context(), nil)
			if err != nil {
				return err
			}
			if cat.Count() == 0 {
				return fmt.Errorf("no components found in directory %s", cat.Dir())
			}

			in := bufio.NewReader(cmd.InOrStdin())
			out := cmd.OutOrStdout()
			if !cmd.Flags().Changed("voltage") {
				if voltage, err = prompt(in, out, "Enter operating voltage (V): "); err != nil {
					return err
				}
			}
			if !cmd.Flags().Changed("temperature") {
				if temperature, err = prompt(in, out, "Enter operating temperature (°C): "); err != nil {
					return err
				}
			}

			q, err := parts.ParseQuery(voltage, temperature)
			if err != nil {
				return fmt.Errorf("%w: please enter numeric values", err)
			}
			names, err := cat.Compatible(q)
			if err != nil {
				return err
			}
			printCompatible(out, names)
			return nil
		},
	}
	cmd.Flags().StringVar(&voltage, "voltage", "", "operating voltage in volts")
	cmd.Flags().StringVar(&temperature, "temperature", "", "operating temperature in degrees Celsius")
	return cmd
}

func prompt(in *bufio.Reader, out io.Writer, label string) (string, error) {
	fmt.Fprint(out, label)
	line, err := in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func printCompatible(out io.Writer, names []string) {
	fmt.Fprintln(out)
	if len(names) == 0 {
		noneColor.Fprintln(out, "No compatible components found.")
		return
	}
	headerColor.Fprintln(out, "Compatible components:")
	for _, name := range names {
		fmt.Fprintf(out, "- %s\n", name)
	}
}
