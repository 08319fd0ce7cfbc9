package analysis

import (
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"spotify-tools/internal/store"
)

// Noise labels points DBSCAN assigned to no cluster.
const Noise = -1

// FeatureVectors maps each track to the five score features, normalized
// the same way the score normalizes them, so distances compare like
// with like.
func FeatureVectors(tracks []store.TrackRecord) [][]float64 {
	tempos := TempoRangeOf(tracks)

	points := make([][]float64, len(tracks))
	for i, t := range tracks {
		points[i] = []float64{
			t.Energy,
			tempos.normalize(t.Tempo),
			t.Danceability,
			float64(t.Mode),
			1 - t.Acousticness,
		}
	}
	return points
}

// DBSCAN labels each point with a cluster index, or Noise. A point is a
// core point when at least minPoints points (itself included) sit
// within eps of it; a cluster is everything density-reachable from one
// core point. Labels are deterministic for a fixed input order.
func DBSCAN(points [][]float64, eps float64, minPoints int) []int {
	const unvisited = -2

	labels := make([]int, len(points))
	for i := range labels {
		labels[i] = unvisited
	}

	cluster := 0
	for i := range points {
		if labels[i] != unvisited {
			continue
		}

		neighbors := regionQuery(points, i, eps)
		if len(neighbors) < minPoints {
			labels[i] = Noise
			continue
		}

		labels[i] = cluster
		// The frontier grows as new core points contribute their
		// neighborhoods.
		for q := 0; q < len(neighbors); q++ {
			j := neighbors[q]
			if labels[j] == Noise {
				labels[j] = cluster
			}
			if labels[j] != unvisited {
				continue
			}
			labels[j] = cluster

			reachable := regionQuery(points, j, eps)
			if len(reachable) >= minPoints {
				neighbors = append(neighbors, reachable...)
			}
		}
		cluster++
	}

	return labels
}

func regionQuery(points [][]float64, i int, eps float64) []int {
	var neighbors []int
	for j := range points {
		if floats.Distance(points[i], points[j], 2) <= eps {
			neighbors = append(neighbors, j)
		}
	}
	return neighbors
}

// ClusterSummary describes one cluster of the feature space. The noise
// bucket, if any, comes last with Label -1.
type ClusterSummary struct {
	Label            int     `yaml:"label"`
	Size             int     `yaml:"size"`
	MeanScore        float64 `yaml:"mean_score"`
	MeanEnergy       float64 `yaml:"mean_energy"`
	MeanTempo        float64 `yaml:"mean_tempo"`
	MeanDanceability float64 `yaml:"mean_danceability"`
	MeanAcousticness float64 `yaml:"mean_acousticness"`
}

// SummarizeClusters aggregates per-cluster sizes and feature means.
// Tempo means stay in BPM so the summary reads in familiar units.
func SummarizeClusters(tracks []store.TrackRecord, labels []int, w Weights) []ClusterSummary {
	tempos := TempoRangeOf(tracks)

	byLabel := make(map[int][]int)
	for i, label := range labels {
		byLabel[label] = append(byLabel[label], i)
	}

	order := make([]int, 0, len(byLabel))
	for label := range byLabel {
		order = append(order, label)
	}
	sort.Slice(order, func(i, j int) bool {
		if order[i] == Noise {
			return false
		}
		if order[j] == Noise {
			return true
		}
		return order[i] < order[j]
	})

	summaries := make([]ClusterSummary, 0, len(order))
	for _, label := range order {
		members := byLabel[label]
		scores := make([]float64, len(members))
		energy := make([]float64, len(members))
		tempo := make([]float64, len(members))
		dance := make([]float64, len(members))
		acoustic := make([]float64, len(members))
		for i, idx := range members {
			t := tracks[idx]
			scores[i] = TikTokScore(t, w, tempos)
			energy[i] = t.Energy
			tempo[i] = t.Tempo
			dance[i] = t.Danceability
			acoustic[i] = t.Acousticness
		}

		summaries = append(summaries, ClusterSummary{
			Label:            label,
			Size:             len(members),
			MeanScore:        round3(stat.Mean(scores, nil)),
			MeanEnergy:       round3(stat.Mean(energy, nil)),
			MeanTempo:        round1(stat.Mean(tempo, nil)),
			MeanDanceability: round3(stat.Mean(dance, nil)),
			MeanAcousticness: round3(stat.Mean(acoustic, nil)),
		})
	}
	return summaries
}
