package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "divergence-signals",
	Short: "A CLI for querying and delivering technical-divergence trading signals",
	Long:  `Divergence Signals queries a store of detected price/indicator divergences and turns events that are valid on a given day into actionable signals with concrete entry prices.`,
}

func main() {

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Whoops. There was an error while executing your CLI '%s'", err)
		os.Exit(1)
	}
}
