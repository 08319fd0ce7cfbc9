package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/xuri/excelize/v2"

	"spotify-tools/internal/analysis"
)

var exportCmd = &cobra.Command{
	Use:   "export <path.xlsx>",
	Short: "Exports the dataset and scores to an xlsx workbook",
	Long: `Writes two sheets: Dataset, with one row per playlist membership
including audio features and the TikTok score, and Scores, with the
deduplicated tracks ranked by score.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		err := exportWorkbook(viper.GetString("database"), args[0])
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
}

func exportWorkbook(dbPath, outPath string) error {
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
	if len(rows) == 0 {
		return fmt.Errorf("no tracks loaded")
	}

	tracks := analysis.TrackRecords(rows)
	scored := analysis.ScoreAll(tracks, analysis.DefaultWeights())
	scoreByID := make(map[string]float64, len(scored))
	for _, s := range scored {
		scoreByID[s.ID] = s.Score
	}

	f := excelize.NewFile()
	defer f.Close()

	const datasetSheet = "Dataset"
	if err := f.SetSheetName("Sheet1", datasetSheet); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}
	header := []interface{}{
		"Playlist", "Region", "Track", "Artist", "Album", "Popularity",
		"Energy", "Tempo", "Danceability", "Mode", "Acousticness", "Score",
	}
	if err := f.SetSheetRow(datasetSheet, "A1", &header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("exporting row %d: %w", i, err)
		}
		row := []interface{}{
			r.Playlist, r.Region, r.Name, r.Artist, r.Album, r.Popularity,
			r.Energy, r.Tempo, r.Danceability, r.Mode, r.Acousticness, scoreByID[r.ID],
		}
		if err := f.SetSheetRow(datasetSheet, cell, &row); err != nil {
			return fmt.Errorf("exporting row %d: %w", i, err)
		}
	}

	const scoreSheet = "Scores"
	if _, err := f.NewSheet(scoreSheet); err != nil {
		return fmt.Errorf("adding sheet: %w", err)
	}
	scoreHeader := []interface{}{"Rank", "Track", "Artist", "Score", "Popularity"}
	if err := f.SetSheetRow(scoreSheet, "A1", &scoreHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, s := range scored {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("exporting score %d: %w", i, err)
		}
		row := []interface{}{i + 1, s.Name, s.Artist, s.Score, s.Popularity}
		if err := f.SetSheetRow(scoreSheet, cell, &row); err != nil {
			return fmt.Errorf("exporting score %d: %w", i, err)
		}
	}

	if err := f.SaveAs(outPath); err != nil {
		return fmt.Errorf("saving workbook to %q: %w", outPath, err)
	}

	fmt.Printf("Exported %d rows and %d scored tracks to %s\n", len(rows), len(scored), outPath)
	return nil
}
