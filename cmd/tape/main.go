package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "tape",
	Short: "Measure distances between points placed on tracked surfaces",
	Long: `tape places points on surfaces found by an AR tracking session and
measures the distance between each consecutive pair. The commands here run the
engine against a simulated session, which is handy for checking configuration
and reproducing placement sequences.

Configuration is read from TAPE_* environment variables; see "tape config".`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
