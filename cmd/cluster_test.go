package cmd

import (
	"strings"
	"testing"
)

func TestClusterAnalyzerConfigure(t *testing.T) {
	analyzer := &ClusterAnalyzer{}
	err := analyzer.Configure(map[string]string{"eps": "0.4", "min_pts": "3"})
	if err != nil {
		t.Fatalf("Configure: %v", err)
	}
	if analyzer.Eps != 0.4 {
		t.Errorf("Eps = %v, want 0.4", analyzer.Eps)
	}
	if analyzer.MinPoints != 3 {
		t.Errorf("MinPoints = %d, want 3", analyzer.MinPoints)
	}

	if err := analyzer.Configure(map[string]string{"eps": "wide"}); err == nil {
		t.Error("Configure with bad eps should fail")
	}
	if err := analyzer.Configure(map[string]string{"min_pts": "few"}); err == nil {
		t.Error("Configure with bad min_pts should fail")
	}
}

func TestClusterAnalyzerSingleCluster(t *testing.T) {
	db, dbPath := createTestStore(t)
	seedDataset(t, db)

	// Radius big enough to cover the whole fixture.
	analyzer := &ClusterAnalyzer{Eps: 5, MinPoints: 2}
	res, err := analyzer.GetResults(dbPath)
	if err != nil {
		t.Fatalf("GetResults: %v", err)
	}

	if len(res.results) != 2 {
		t.Fatalf("got %d result rows, want header + 1 cluster", len(res.results))
	}
	row := res.results[1]
	if row[0] != "0" {
		t.Errorf("cluster label = %q, want \"0\"", row[0])
	}
	if row[1] != "4" {
		t.Errorf("cluster size = %q, want \"4\"", row[1])
	}
	if !strings.Contains(res.summary, "Found 1 clusters and 0 noise tracks") {
		t.Errorf("unexpected summary: %q", res.summary)
	}
}

func TestClusterAnalyzerAllNoise(t *testing.T) {
	db, dbPath := createTestStore(t)
	seedDataset(t, db)

	// Radius so small nothing has neighbors.
	analyzer := &ClusterAnalyzer{Eps: 0.001, MinPoints: 2}
	res, err := analyzer.GetResults(dbPath)
	if err != nil {
		t.Fatalf("GetResults: %v", err)
	}

	if len(res.results) != 2 {
		t.Fatalf("got %d result rows, want header + noise row", len(res.results))
	}
	row := res.results[1]
	if row[0] != "noise" {
		t.Errorf("label = %q, want \"noise\"", row[0])
	}
	if row[1] != "4" {
		t.Errorf("noise size = %q, want \"4\"", row[1])
	}
}
