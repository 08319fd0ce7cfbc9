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
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"spotify-tools/internal/analysis"
)

var scoreTop int
var scoreWeights string

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Ranks tracks by TikTok score",
	Long: `Scores every track on the weighted blend of energy, tempo,
danceability, mode, and acousticness, then prints the ranking. Weights
default to equal; override with --weights e,t,d,m,a.`,
	Run: func(cmd *cobra.Command, args []string) {
		weights, err := parseWeights(scoreWeights)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		analyzer := &ScoreAnalyzer{
			Config:  AnalyserConfig{NumToReturn: scoreTop},
			Weights: weights,
		}
		res, err := analyzer.GetResults(viper.GetString("database"))
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		fmt.Println(res)
	},
}

func init() {
	rootCmd.AddCommand(scoreCmd)

	scoreCmd.Flags().IntVarP(&scoreTop, "top", "n", 20, "Number of tracks to show")
	scoreCmd.Flags().StringVar(&scoreWeights, "weights", "", "Comma-separated weights for energy,tempo,danceability,mode,acousticness")
}

type ScoreAnalyzer struct {
	Config  AnalyserConfig
	Weights analysis.Weights
}

func (s *ScoreAnalyzer) GetName() string {
	return "TikTok Score"
}

func (s *ScoreAnalyzer) Configure(params map[string]string) error {
	if val, ok := params["n"]; ok {
		n, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("invalid value for 'n': %v", err)
		}
		s.Config.NumToReturn = n
	}
	if val, ok := params["min_score"]; ok {
		m, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return fmt.Errorf("invalid value for 'min_score': %v", err)
		}
		s.Config.MinScore = m
	}
	if val, ok := params["weights"]; ok {
		w, err := parseWeights(val)
		if err != nil {
			return err
		}
		s.Weights = w
	}
	return nil
}

func (s *ScoreAnalyzer) GetResults(dbPath string) (Analysis, error) {
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

	weights := s.Weights
	if weights == (analysis.Weights{}) {
		weights = analysis.DefaultWeights()
	}
	if err := weights.Validate(); err != nil {
		return Analysis{}, err
	}

	scored := analysis.ScoreAll(tracks, weights)

	n := s.Config.NumToReturn
	if n <= 0 || n > len(scored) {
		n = len(scored)
	}

	results := [][]string{{"Rank", "Track", "Artist", "Score", "Popularity"}}
	shown := 0
	for i, t := range scored[:n] {
		if t.Score < s.Config.MinScore {
			break
		}
		results = append(results, []string{
			strconv.Itoa(i + 1),
			t.Name,
			t.Artist,
			fmt.Sprintf("%.3f", t.Score),
			strconv.FormatInt(t.Popularity, 10),
		})
		shown++
	}

	return Analysis{
		results: results,
		summary: fmt.Sprintf("Scored %d tracks, showing %d", len(scored), shown),
	}, nil
}

// parseWeights parses the --weights value: five comma-separated floats
// in feature order. Empty means equal weights.
func parseWeights(arg string) (analysis.Weights, error) {
	if arg == "" {
		return analysis.DefaultWeights(), nil
	}
	parts := strings.Split(arg, ",")
	if len(parts) != 5 {
		return analysis.Weights{}, fmt.Errorf("expected 5 comma-separated weights, got %d", len(parts))
	}
	vals := make([]float64, len(parts))
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return analysis.Weights{}, fmt.Errorf("invalid weight %q: %v", part, err)
		}
		vals[i] = v
	}
	w := analysis.Weights{
		Energy:       vals[0],
		Tempo:        vals[1],
		Danceability: vals[2],
		Mode:         vals[3],
		Acousticness: vals[4],
	}
	if err := w.Validate(); err != nil {
		return analysis.Weights{}, err
	}
	return w, nil
}
