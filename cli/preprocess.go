package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"police-dashboard/logging"
	"police-dashboard/preprocess"
)

var (
	preprocessIn  string
	preprocessOut string
)

var preprocessCmd = &cobra.Command{
	Use:   "preprocess",
	Short: "Clean the raw traffic-stop export",
	Long: `Drop empty columns, fill missing ages, genders, violations and vehicle
numbers, normalize stop dates and times, and keep only the police_stops
columns. Every input row is written to the cleaned file.`,
	Args: cobra.NoArgs,
	RunE: runPreprocess,
}

func init() {
	preprocessCmd.Flags().StringVarP(&preprocessIn, "in", "i", "", "raw file (overrides RAW_DATA_PATH)")
	preprocessCmd.Flags().StringVarP(&preprocessOut, "out", "o", "", "cleaned file (overrides CLEAN_DATA_PATH)")
	rootCmd.AddCommand(preprocessCmd)
}

func runPreprocess(cmd *cobra.Command, args []string) error {
	in, out := cfg.Data.RawPath, cfg.Data.CleanPath
	if preprocessIn != "" {
		in = preprocessIn
	}
	if preprocessOut != "" {
		out = preprocessOut
	}

	stats, err := preprocess.CleanFile(in, out)
	if err != nil {
		fmt.Printf("❌ Preprocessing failed: %v\n", err)
		return err
	}

	logging.Info().
		Int("rows", stats.Rows).
		Strs("dropped_columns", stats.DroppedColumns).
		Float64("age_median", stats.AgeMedian).
		Int("ages_filled", stats.AgesFilled).
		Int("null_dates", stats.NullDates).
		Int("null_times", stats.NullTimes).
		Msg("Preprocessing finished")
	fmt.Printf("✅ Cleaned dataset saved to: %s\n", out)
	return nil
}
