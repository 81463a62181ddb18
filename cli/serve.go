package cli

import (
	"github.com/spf13/cobra"

	"police-dashboard/app"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the dashboard",
	Long: `Start the three-tab dashboard: add a police log, run advanced insight
queries and view or download the summary report.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "listen port (overrides API_PORT)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	if servePort > 0 {
		cfg.APIPort = servePort
	}
	return app.New(cfg).Start()
}
