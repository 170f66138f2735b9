package main

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "spikesim",
	Short: "Spikesim runs banks of Poisson spike sources in real time.",
	Long: `Spikesim runs banks of Poisson spike sources in real time. Each ` +
		`instance draws spikes tick by tick, paces them onto the event ` +
		`fabric, records them to SQLite, and accepts live rate updates ` +
		`over UDP and HTTP.`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
