package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"spotify-tools/internal/analysis"
)

var reportOut string
var reportTop int

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Writes a full dataset report as YAML",
	Long: `Builds a machine-readable report of the loaded dataset: counts and
regions, per-playlist averages, the top tracks by TikTok score, feature
correlations, and the popularity regression.`,
	Run: func(cmd *cobra.Command, args []string) {
		out := io.Writer(os.Stdout)
		if reportOut != "" {
			f, err := os.Create(reportOut)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error creating report file: %v\n", err)
				os.Exit(1)
			}
			defer f.Close()
			out = f
		}

		err := renderReport(out, viper.GetString("database"), reportTop)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error generating report: %v\n", err)
			os.Exit(1)
		}
		if reportOut != "" {
			fmt.Printf("Wrote report to %s\n", reportOut)
		}
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().StringVarP(&reportOut, "out", "o", "", "Write the report to this file instead of stdout")
	reportCmd.Flags().IntVarP(&reportTop, "top", "n", 10, "Number of top tracks to include")
}

func renderReport(out io.Writer, dbPath string, topN int) error {
	db, err := openStore(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := requireDataset(db); err != nil {
		return err
	}

	rows, err := db.Dataset()
	if err != nil {
		return fmt.Errorf("reading dataset: %w", err)
	}

	report, err := analysis.GenerateReport(rows, analysis.DefaultWeights(), topN)
	if err != nil {
		return fmt.Errorf("analyzing data: %w", err)
	}

	encoder := yaml.NewEncoder(out)
	encoder.SetIndent(2)
	if err := encoder.Encode(report); err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	return encoder.Close()
}
