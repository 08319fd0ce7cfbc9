/*
Copyright 2020 Google LLC

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"spotify-tools/internal/analysis"
	"spotify-tools/internal/store"
)

var correlateBy string

var correlateCmd = &cobra.Command{
	Use:   "correlate",
	Short: "Correlates audio features with track popularity",
	Long: `Computes the Pearson correlation of each audio feature against track
popularity, plus a linear regression of popularity on the TikTok score,
for the whole dataset and per group.`,
	Run: func(cmd *cobra.Command, args []string) {
		err := printCorrelations(os.Stdout, viper.GetString("database"), correlateBy)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(correlateCmd)

	correlateCmd.Flags().StringVar(&correlateBy, "by", "region", "Group tracks by 'region' or 'playlist'")
}

// Groups with fewer tracks than this produce meaningless correlations
// and are skipped.
const minGroupSize = 3

func printCorrelations(out io.Writer, dbPath string, groupBy string) error {
	if groupBy != "region" && groupBy != "playlist" {
		return fmt.Errorf("invalid group %q, expected 'region' or 'playlist'", groupBy)
	}

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
	tracks := analysis.TrackRecords(rows)
	if len(tracks) == 0 {
		return fmt.Errorf("no tracks loaded")
	}

	fmt.Fprintf(out, "## All tracks (%d)\n", len(tracks))
	fmt.Fprintln(out, correlationAnalysis(tracks))

	groups, byGroup := groupRows(rows, groupBy)
	for _, group := range groups {
		grouped := analysis.TrackRecords(byGroup[group])
		if len(grouped) < minGroupSize {
			fmt.Fprintf(out, "## %s: only %d tracks, skipped\n\n", group, len(grouped))
			continue
		}
		fmt.Fprintf(out, "## %s (%d tracks)\n", group, len(grouped))
		fmt.Fprintln(out, correlationAnalysis(grouped))
	}

	return nil
}

func correlationAnalysis(tracks []store.TrackRecord) Analysis {
	results := [][]string{{"Feature", "Correlation vs Popularity"}}
	for _, c := range analysis.Correlations(tracks) {
		results = append(results, []string{c.Feature, fmt.Sprintf("%+.3f", c.Correlation)})
	}

	scored := analysis.ScoreAll(tracks, analysis.DefaultWeights())
	reg := analysis.RegressPopularityOnScore(scored)

	return Analysis{
		results: results,
		summary: fmt.Sprintf("popularity = %.1f + %.1f*score (R^2 %.3f, n=%d)", reg.Intercept, reg.Slope, reg.RSquared, reg.N),
	}
}

func groupRows(rows []store.DatasetRow, by string) ([]string, map[string][]store.DatasetRow) {
	if by == "region" {
		return analysis.GroupByRegion(rows)
	}

	groups := make(map[string][]store.DatasetRow)
	for _, row := range rows {
		groups[row.Playlist] = append(groups[row.Playlist], row)
	}
	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, groups
}

type CorrelateAnalyzer struct{}

func (c *CorrelateAnalyzer) GetName() string {
	return "Feature Correlations"
}

func (c *CorrelateAnalyzer) GetResults(dbPath string) (Analysis, error) {
	db, err := openStore(dbPath)
	if err != nil {
		return Analysis{}, err
	}
	defer db.Close()
	if err := requireDataset(db); err != nil {
		return Analysis{}, err
	}

	tracks, err := db.Tracks()
	if err != nil {
		return Analysis{}, fmt.Errorf("reading tracks: %w", err)
	}
	if len(tracks) == 0 {
		return Analysis{}, fmt.Errorf("no tracks loaded")
	}

	return correlationAnalysis(tracks), nil
}
