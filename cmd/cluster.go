package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"spotify-tools/internal/analysis"
)

var clusterEps float64
var clusterMinPts int

var clusterCmd = &cobra.Command{
	Use:   "cluster",
	Short: "Groups tracks by audio-feature similarity",
	Long: `Runs DBSCAN over the normalized feature vectors and summarizes each
cluster. Tracks that fit no cluster are reported as noise.`,
	Run: func(cmd *cobra.Command, args []string) {
		analyzer := &ClusterAnalyzer{Eps: clusterEps, MinPoints: clusterMinPts}
		res, err := analyzer.GetResults(viper.GetString("database"))
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		fmt.Println(res)
	},
}

func init() {
	rootCmd.AddCommand(clusterCmd)

	clusterCmd.Flags().Float64Var(&clusterEps, "eps", 0.25, "Neighborhood radius in normalized feature space")
	clusterCmd.Flags().IntVar(&clusterMinPts, "min-pts", 4, "Minimum neighbors for a core point")
}

type ClusterAnalyzer struct {
	Eps       float64
	MinPoints int
}

func (c *ClusterAnalyzer) GetName() string {
	return "Feature Clusters"
}

func (c *ClusterAnalyzer) Configure(params map[string]string) error {
	if val, ok := params["eps"]; ok {
		e, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return fmt.Errorf("invalid value for 'eps': %v", err)
		}
		c.Eps = e
	}
	if val, ok := params["min_pts"]; ok {
		m, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("invalid value for 'min_pts': %v", err)
		}
		c.MinPoints = m
	}
	return nil
}

func (c *ClusterAnalyzer) GetResults(dbPath string) (Analysis, error) {
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

	eps := c.Eps
	if eps <= 0 {
		eps = 0.25
	}
	minPts := c.MinPoints
	if minPts <= 0 {
		minPts = 4
	}

	points := analysis.FeatureVectors(tracks)
	labels := analysis.DBSCAN(points, eps, minPts)
	summaries := analysis.SummarizeClusters(tracks, labels, analysis.DefaultWeights())

	results := [][]string{{"Cluster", "Tracks", "Avg Score", "Avg Energy", "Avg Tempo", "Avg Danceability", "Avg Acousticness"}}
	clusters := 0
	noise := 0
	for _, s := range summaries {
		label := strconv.Itoa(s.Label)
		if s.Label == analysis.Noise {
			label = "noise"
			noise = s.Size
		} else {
			clusters++
		}
		results = append(results, []string{
			label,
			strconv.Itoa(s.Size),
			fmt.Sprintf("%.3f", s.MeanScore),
			fmt.Sprintf("%.3f", s.MeanEnergy),
			fmt.Sprintf("%.1f", s.MeanTempo),
			fmt.Sprintf("%.3f", s.MeanDanceability),
			fmt.Sprintf("%.3f", s.MeanAcousticness),
		})
	}

	return Analysis{
		results: results,
		summary: fmt.Sprintf("Found %d clusters and %d noise tracks (eps=%.2f, min_pts=%d)", clusters, noise, eps, minPts),
	}, nil
}
