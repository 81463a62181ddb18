package cli

import (
	"github.com/spf13/cobra"

	"police-dashboard/loader"
)

var loadFile string

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Append the cleaned file to the police_stops table",
	Long: `Test the database connection, then append every row of the cleaned
file to police_stops. Existing rows are kept; running load twice loads the
file twice.`,
	Example: `  police-dashboard load
  police-dashboard load --file data/clean_stops.csv`,
	Args: cobra.NoArgs,
	RunE: runLoad,
}

func init() {
	loadCmd.Flags().StringVarP(&loadFile, "file", "f", "", "cleaned file (overrides CLEAN_DATA_PATH)")
	rootCmd.AddCommand(loadCmd)
}

func runLoad(cmd *cobra.Command, args []string) error {
	if loadFile != "" {
		cfg.Data.CleanPath = loadFile
	}
	return loader.New(cfg).Run(cmd.Context())
}
