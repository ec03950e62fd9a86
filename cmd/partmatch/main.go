// Command partmatch extracts operating ranges from datasheet text files and
// finds the components that work at a given voltage and temperature.
package main

import (
	"os"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
