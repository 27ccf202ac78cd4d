package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "wayfind",
	Short: "Autonomous goal-driven task agent",
	Long: `Wayfind breaks a goal into tasks, works through them one by one,
and proposes follow-up tasks from what it learns along the way.

Each task is analyzed (reason from model knowledge, or search the web)
and executed, with results cached so repeated runs against the same
goal stay cheap. Sessions stop when the task queue drains or the loop
budget is spent.

Start with:
  wayfind run "research the history of the transistor"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)
}
