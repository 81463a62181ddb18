package cli

import (
	"github.com/spf13/cobra"

	"police-dashboard/config"
	"police-dashboard/logging"
)

var (
	verbose bool
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "police-dashboard",
	Short: "Traffic-stop pipeline and dashboard for police check posts",
	Long: `police-dashboard cleans a raw traffic-stop export, bulk-loads it into
PostgreSQL and serves a dashboard to log new stops, run canned insight
queries and download the country/violation report.

Configuration is read from the environment and an optional .env file.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg = config.LoadFromEnv()

		level := cfg.LogLevel
		if verbose {
			level = "debug"
		}
		logging.Init(logging.Config{Level: level, Format: cfg.LogFormat})

		return cfg.Validate()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
