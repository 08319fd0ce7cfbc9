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
	"strings"
	"testing"

	"spotify-tools/internal/analysis"
)

func TestParseWeights(t *testing.T) {
	w, err := parseWeights("")
	if err != nil {
		t.Fatalf("parseWeights(\"\") error: %v", err)
	}
	if w != analysis.DefaultWeights() {
		t.Errorf("empty weights = %+v, want defaults", w)
	}

	w, err = parseWeights("1, 2, 3, 4, 5")
	if err != nil {
		t.Fatalf("parseWeights error: %v", err)
	}
	want := analysis.Weights{Energy: 1, Tempo: 2, Danceability: 3, Mode: 4, Acousticness: 5}
	if w != want {
		t.Errorf("parseWeights = %+v, want %+v", w, want)
	}

	bad := []string{
		"1,2,3",
		"1,2,3,4,5,6",
		"a,b,c,d,e",
		"0,0,0,0,0",
		"-1,1,1,1,1",
	}
	for _, arg := range bad {
		if _, err := parseWeights(arg); err == nil {
			t.Errorf("parseWeights(%q) should fail", arg)
		}
	}
}

func TestScoreAnalyzerRanksTracks(t *testing.T) {
	db, dbPath := createTestStore(t)
	seedDataset(t, db)

	analyzer := &ScoreAnalyzer{}
	res, err := analyzer.GetResults(dbPath)
	if err != nil {
		t.Fatalf("GetResults: %v", err)
	}

	if len(res.results) != 5 {
		t.Fatalf("got %d result rows, want header + 4 tracks", len(res.results))
	}

	header := res.results[0]
	if header[0] != "Rank" || header[1] != "Track" {
		t.Errorf("unexpected header: %v", header)
	}

	wantOrder := []string{"Alpha", "Beta", "Gamma", "Delta"}
	for i, want := range wantOrder {
		if got := res.results[i+1][1]; got != want {
			t.Errorf("rank %d = %q, want %q", i+1, got, want)
		}
	}

	// Alpha: (0.9 + 1.0 + 0.8 + 1 + 0.9) / 5 with tempo 140 at the top
	// of the 90-140 range.
	if got := res.results[1][3]; got != "0.920" {
		t.Errorf("top score = %q, want 0.920", got)
	}
}

func TestScoreAnalyzerLimitsResults(t *testing.T) {
	db, dbPath := createTestStore(t)
	seedDataset(t, db)

	analyzer := &ScoreAnalyzer{Config: AnalyserConfig{NumToReturn: 2}}
	res, err := analyzer.GetResults(dbPath)
	if err != nil {
		t.Fatalf("GetResults: %v", err)
	}

	if len(res.results) != 3 {
		t.Errorf("got %d result rows, want header + 2 tracks", len(res.results))
	}
}

func TestScoreAnalyzerMinScore(t *testing.T) {
	db, dbPath := createTestStore(t)
	seedDataset(t, db)

	analyzer := &ScoreAnalyzer{Config: AnalyserConfig{MinScore: 0.5}}
	res, err := analyzer.GetResults(dbPath)
	if err != nil {
		t.Fatalf("GetResults: %v", err)
	}

	// Only Alpha (0.92) and Beta (0.64) clear 0.5.
	if len(res.results) != 3 {
		t.Errorf("got %d result rows, want header + 2 tracks", len(res.results))
	}
	if !strings.Contains(res.summary, "showing 2") {
		t.Errorf("unexpected summary: %q", res.summary)
	}
}

func TestScoreAnalyzerConfigure(t *testing.T) {
	analyzer := &ScoreAnalyzer{}
	err := analyzer.Configure(map[string]string{"n": "5", "min_score": "0.3", "weights": "1,1,1,1,2"})
	if err != nil {
		t.Fatalf("Configure: %v", err)
	}
	if analyzer.Config.NumToReturn != 5 {
		t.Errorf("NumToReturn = %d, want 5", analyzer.Config.NumToReturn)
	}
	if analyzer.Config.MinScore != 0.3 {
		t.Errorf("MinScore = %v, want 0.3", analyzer.Config.MinScore)
	}
	if analyzer.Weights.Acousticness != 2 {
		t.Errorf("Acousticness weight = %v, want 2", analyzer.Weights.Acousticness)
	}

	if err := analyzer.Configure(map[string]string{"n": "x"}); err == nil {
		t.Error("Configure with bad n should fail")
	}
}

func TestScoreAnalyzerWithoutDataset(t *testing.T) {
	_, dbPath := createTestStore(t)

	analyzer := &ScoreAnalyzer{}
	_, err := analyzer.GetResults(dbPath)
	if err == nil {
		t.Fatal("GetResults on empty database should fail")
	}
	if !strings.Contains(err.Error(), "no dataset loaded") {
		t.Errorf("unexpected error: %v", err)
	}
}
