// Package cli is the homedash command line: the server, migrations, and a
// terminal view of the household calendar.
package cli

import (
	"os"

	"github.com/homedash/homedash/internal/config"
	"github.com/spf13/cobra"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "homedash",
	Short: "Household dashboard backend",
	Long: `homedash serves the household dashboard: calendar events from the connected
Google account, todo and chore lists, and the Today/Tomorrow agenda.

Without a subcommand it starts the HTTP server.`,
	SilenceUsage: true,
	RunE:         runServe,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "./config/application.yaml", "config file")
}

func loadConfig() (config.Application, error) {
	return config.Load(cfgFile)
}
