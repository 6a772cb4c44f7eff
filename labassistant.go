package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "labassistant",
		Short: "LabAssistant - stream schedule bot for DistGeniusMadLabs",
		Long: `LabAssistant tracks games and scheduled streams for the community Discord.
Run "labassistant bot" to connect to Discord, or use the other commands to
manage the schedule database directly.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().String("db", "", "path to the schedule database (overrides LABASSISTANT_DB_PATH)")
	rootCmd.PersistentFlags().String("driver", "", "sqlite driver: sqlite3 or sqlite (overrides LABASSISTANT_DB_DRIVER)")

	rootCmd.AddCommand(botCmd())
	rootCmd.AddCommand(initCmd())
	rootCmd.AddCommand(addGameCmd())
	rootCmd.AddCommand(setGameCmd())
	rootCmd.AddCommand(addStreamCmd())
	rootCmd.AddCommand(nextStreamCmd())
	rootCmd.AddCommand(streamsCmd())
	rootCmd.AddCommand(startStreamCmd())
	rootCmd.AddCommand(stopStreamCmd())

	return rootCmd
}
