package analysis

import (
	"testing"

	"spotify-tools/internal/store"
)

func TestDBSCANTwoClustersAndNoise(t *testing.T) {
	points := [][]float64{
		{0, 0}, {0, 0.05}, {0.05, 0},
		{1, 1}, {1, 0.95}, {0.95, 1},
		{0.5, 0.5},
	}

	labels := DBSCAN(points, 0.2, 2)
	if len(labels) != len(points) {
		t.Fatalf("got %d labels for %d points", len(labels), len(points))
	}

	if labels[0] != 0 || labels[1] != 0 || labels[2] != 0 {
		t.Errorf("first blob labels = %v, want all 0", labels[:3])
	}
	if labels[3] != 1 || labels[4] != 1 || labels[5] != 1 {
		t.Errorf("second blob labels = %v, want all 1", labels[3:6])
	}
	if labels[6] != Noise {
		t.Errorf("outlier label = %d, want %d", labels[6], Noise)
	}
}

func TestDBSCANTinyEpsIsAllNoise(t *testing.T) {
	points := [][]float64{{0, 0}, {0.1, 0}, {0.2, 0}}

	labels := DBSCAN(points, 1e-6, 2)
	for i, label := range labels {
		if label != Noise {
			t.Errorf("labels[%d] = %d, want noise with tiny eps", i, label)
		}
	}
}

func TestDBSCANLargeEpsIsOneCluster(t *testing.T) {
	points := [][]float64{{0, 0}, {0.3, 0.1}, {0.9, 0.8}, {0.5, 0.5}}

	labels := DBSCAN(points, 10, 2)
	for i, label := range labels {
		if label != 0 {
			t.Errorf("labels[%d] = %d, want one cluster", i, label)
		}
	}
}

func TestDBSCANReclaimsBorderPoint(t *testing.T) {
	// The border point comes first, gets marked noise, and is later
	// absorbed when the dense run expands out to it.
	points := [][]float64{
		{0.32, 0},
		{0, 0}, {0.1, 0}, {0.2, 0}, {0.15, 0.05},
	}

	labels := DBSCAN(points, 0.16, 3)
	if labels[0] != 0 {
		t.Errorf("border point label = %d, want cluster 0", labels[0])
	}
	for i, label := range labels {
		if label != 0 {
			t.Errorf("labels[%d] = %d, want cluster 0", i, label)
		}
	}
}

func TestDBSCANDeterministic(t *testing.T) {
	points := [][]float64{
		{0, 0}, {0.05, 0}, {1, 1}, {0.95, 1}, {0.5, 0.5},
	}

	first := DBSCAN(points, 0.2, 2)
	second := DBSCAN(points, 0.2, 2)
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("labels differ between runs at %d: %d vs %d", i, first[i], second[i])
		}
	}
}

func TestFeatureVectors(t *testing.T) {
	tracks := []store.TrackRecord{
		{Energy: 0.8, Tempo: 100, Danceability: 0.9, Mode: 1, Acousticness: 0.2},
		{Energy: 0.4, Tempo: 140, Danceability: 0.3, Mode: 0, Acousticness: 0.7},
	}

	points := FeatureVectors(tracks)
	if len(points) != 2 || len(points[0]) != 5 {
		t.Fatalf("got %dx%d vectors, want 2x5", len(points), len(points[0]))
	}

	want := []float64{0.8, 0, 0.9, 1, 0.8}
	for i, v := range want {
		if !almostEqual(points[0][i], v) {
			t.Errorf("points[0][%d] = %v, want %v", i, points[0][i], v)
		}
	}
	if !almostEqual(points[1][1], 1) {
		t.Errorf("tempo 140 normalized to %v, want 1", points[1][1])
	}
}

func TestSummarizeClusters(t *testing.T) {
	tracks := []store.TrackRecord{
		{ID: "a1", Energy: 0.8, Tempo: 120, Danceability: 0.8, Mode: 1, Acousticness: 0.2},
		{ID: "a2", Energy: 0.6, Tempo: 130, Danceability: 0.6, Mode: 1, Acousticness: 0.4},
		{ID: "noise", Energy: 0.1, Tempo: 80, Danceability: 0.1, Mode: 0, Acousticness: 0.9},
		{ID: "b1", Energy: 0.5, Tempo: 100, Danceability: 0.5, Mode: 0, Acousticness: 0.5},
	}
	labels := []int{0, 0, Noise, 1}

	summaries := SummarizeClusters(tracks, labels, DefaultWeights())
	if len(summaries) != 3 {
		t.Fatalf("got %d summaries, want 3", len(summaries))
	}

	if summaries[0].Label != 0 || summaries[1].Label != 1 || summaries[2].Label != Noise {
		t.Errorf("label order = %d, %d, %d; want 0, 1, noise last",
			summaries[0].Label, summaries[1].Label, summaries[2].Label)
	}
	if summaries[0].Size != 2 {
		t.Errorf("cluster 0 size = %d, want 2", summaries[0].Size)
	}
	if !almostEqual(summaries[0].MeanEnergy, 0.7) {
		t.Errorf("cluster 0 mean energy = %v, want 0.7", summaries[0].MeanEnergy)
	}
	if !almostEqual(summaries[0].MeanTempo, 125) {
		t.Errorf("cluster 0 mean tempo = %v, want 125", summaries[0].MeanTempo)
	}
	if summaries[2].Size != 1 {
		t.Errorf("noise size = %d, want 1", summaries[2].Size)
	}
}
