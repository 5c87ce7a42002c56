package main

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "psyscene",
	Short: "psyscene runs reaction time experiments",
	Long: `psyscene presents scene based reaction time paradigms (simple,
identification, selection) and saves one row per trial to a wide text file.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
}
