package cmd

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"spotify-tools/internal/spotify"
	"spotify-tools/internal/store"
)

func createTestStore(t *testing.T) (*store.Store, string) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "spotify.db")

	db, err := store.New(dbPath)
	if err != nil {
		t.Fatalf("store.New(%s) error: %v", dbPath, err)
	}
	t.Cleanup(func() { db.Close() })

	return db, dbPath
}

// Fixture tracks with strictly decreasing scores under equal weights:
// Alpha 0.92, Beta 0.64, Gamma 0.24, Delta 0.10 (tempo range 90-140).
var seedTracks = []store.TrackRecord{
	{ID: "t1", Name: "Alpha", Artist: "Artist A", Album: "Album A", Popularity: 80, Energy: 0.9, Tempo: 140, Danceability: 0.8, Mode: 1, Acousticness: 0.1},
	{ID: "t2", Name: "Beta", Artist: "Artist B", Album: "Album B", Popularity: 60, Energy: 0.5, Tempo: 120, Danceability: 0.5, Mode: 1, Acousticness: 0.4},
	{ID: "t3", Name: "Gamma", Artist: "Artist C", Album: "Album C", Popularity: 40, Energy: 0.3, Tempo: 100, Danceability: 0.4, Mode: 0, Acousticness: 0.7},
	{ID: "t4", Name: "Delta", Artist: "Artist D", Album: "Album D", Popularity: 20, Energy: 0.2, Tempo: 90, Danceability: 0.2, Mode: 0, Acousticness: 0.9},
}

var seedUSA = store.PlaylistRecord{ID: "pl_usa", Name: "Top 50 - USA", Region: "USA"}
var seedUK = store.PlaylistRecord{ID: "pl_uk", Name: "Top 50 - UK", Region: "UK"}

// seedDataset loads two overlapping playlists: USA holds Alpha, Beta,
// Gamma and UK holds Beta, Gamma, Delta. 4 unique tracks, 6 links.
func seedDataset(t *testing.T, db *store.Store) {
	t.Helper()

	playlists := []store.PlaylistRecord{seedUSA, seedUK}
	if err := db.CreateTables(buildTables(seedTracks, playlists)...); err != nil {
		t.Fatalf("CreateTables: %v", err)
	}
	if err := db.AddPlaylistTracks(seedUSA, seedTracks[:3]); err != nil {
		t.Fatalf("AddPlaylistTracks(USA): %v", err)
	}
	if err := db.AddPlaylistTracks(seedUK, seedTracks[1:]); err != nil {
		t.Fatalf("AddPlaylistTracks(UK): %v", err)
	}
}

func TestRegionOf(t *testing.T) {
	cases := []struct {
		name string
		want string
	}{
		{"Top 50 - UK", "UK"},
		{"Top 50 - USA", "USA"},
		{"Viral 50 Singapore", "Singapore"},
		{"Top 50 - Global", "Global"},
		{"Viral Hits", "Global"},
	}

	for _, c := range cases {
		if got := regionOf(c.name); got != c.want {
			t.Errorf("regionOf(%q) = %q, want %q", c.name, got, c.want)
		}
	}
}

func TestJoinFeatures(t *testing.T) {
	logger := log.WithRun("test", "test-run")

	tracks := []spotify.PlaylistTrack{
		{ID: "t1", Name: "Alpha", Artist: "Artist A", Album: "Album A", Popularity: 80},
		{ID: "t2", Name: "Beta", Artist: "Artist B", Album: "Album B", Popularity: 60},
		{ID: "t9", Name: "Unmatched", Artist: "Artist X", Album: "Album X", Popularity: 10},
	}
	features := []spotify.AudioFeatures{
		{ID: "t1", Energy: 0.91236, Tempo: 140.004, Danceability: 0.8, Mode: 1, Acousticness: 0.1},
		{ID: "t2", Energy: 0.5, Tempo: 120, Danceability: 0.5, Mode: 1, Acousticness: 0.4},
	}

	records := joinFeatures(tracks, features, logger)
	if len(records) != 2 {
		t.Fatalf("joinFeatures returned %d records, want 2", len(records))
	}

	alpha := records[0]
	if alpha.ID != "t1" || alpha.Name != "Alpha" || alpha.Popularity != 80 {
		t.Errorf("unexpected first record: %+v", alpha)
	}
	if alpha.Energy != 0.912 {
		t.Errorf("Energy = %v, want 0.912 (rounded to 3 decimals)", alpha.Energy)
	}
	if alpha.Tempo != 140.004 {
		t.Errorf("Tempo = %v, want 140.004", alpha.Tempo)
	}
	for _, r := range records {
		if r.ID == "t9" {
			t.Error("track without features should have been dropped")
		}
	}
}

func TestBuildTables(t *testing.T) {
	playlists := []store.PlaylistRecord{seedUSA, seedUK}
	tables := buildTables(seedTracks, playlists)
	if len(tables) != 3 {
		t.Fatalf("buildTables returned %d tables, want 3", len(tables))
	}

	trackDDL := tables[0].DDL()
	if !strings.Contains(trackDDL, "CREATE TABLE IF NOT EXISTS Tracks") {
		t.Errorf("Tracks DDL missing create statement:\n%s", trackDDL)
	}
	if !strings.Contains(trackDDL, "Track_ID VARCHAR(50)") {
		t.Errorf("Tracks DDL missing fixed-width id:\n%s", trackDDL)
	}
	// Popularity fits in a byte for this fixture.
	if !strings.Contains(trackDDL, "Popularity TINYINT") {
		t.Errorf("Tracks DDL missing narrow Popularity:\n%s", trackDDL)
	}

	junctionDDL := tables[2].DDL()
	if !strings.Contains(junctionDDL, "PRIMARY KEY (Track_ID, Playlist_ID)") {
		t.Errorf("junction DDL missing composite key:\n%s", junctionDDL)
	}
	if !strings.Contains(junctionDDL, "FOREIGN KEY") {
		t.Errorf("junction DDL missing foreign keys:\n%s", junctionDDL)
	}
}

func TestLoadFromSnapshots(t *testing.T) {
	dataDir := t.TempDir()
	dbPath := filepath.Join(t.TempDir(), "spotify.db")

	usa := spotify.TracksSnapshot{
		PlaylistID:   "pl_usa",
		PlaylistName: "Top 50 - USA",
		CollectedAt:  time.Now().UTC(),
		RunID:        "run-1",
		Tracks: []spotify.PlaylistTrack{
			{ID: "t1", Name: "Alpha", Artist: "Artist A", Album: "Album A", Popularity: 80},
			{ID: "t2", Name: "Beta", Artist: "Artist B", Album: "Album B", Popularity: 60},
			{ID: "t9", Name: "NoFeatures", Artist: "Artist X", Album: "Album X", Popularity: 10},
		},
	}
	if err := spotify.WriteTracksSnapshot(dataDir, usa.PlaylistName, usa); err != nil {
		t.Fatalf("WriteTracksSnapshot: %v", err)
	}
	err := spotify.WriteFeaturesSnapshot(dataDir, usa.PlaylistName, []spotify.AudioFeatures{
		{ID: "t1", Energy: 0.91236, Tempo: 140, Danceability: 0.8, Mode: 1, Acousticness: 0.1},
		{ID: "t2", Energy: 0.5, Tempo: 120, Danceability: 0.5, Mode: 1, Acousticness: 0.4},
	})
	if err != nil {
		t.Fatalf("WriteFeaturesSnapshot: %v", err)
	}

	uk := spotify.TracksSnapshot{
		PlaylistID:   "pl_uk",
		PlaylistName: "Top 50 - UK",
		CollectedAt:  time.Now().UTC(),
		RunID:        "run-1",
		Tracks: []spotify.PlaylistTrack{
			{ID: "t2", Name: "Beta", Artist: "Artist B", Album: "Album B", Popularity: 60},
			{ID: "t3", Name: "Gamma", Artist: "Artist C", Album: "Album C", Popularity: 40},
		},
	}
	if err := spotify.WriteTracksSnapshot(dataDir, uk.PlaylistName, uk); err != nil {
		t.Fatalf("WriteTracksSnapshot: %v", err)
	}
	err = spotify.WriteFeaturesSnapshot(dataDir, uk.PlaylistName, []spotify.AudioFeatures{
		{ID: "t2", Energy: 0.5, Tempo: 120, Danceability: 0.5, Mode: 1, Acousticness: 0.4},
		{ID: "t3", Energy: 0.3, Tempo: 100, Danceability: 0.4, Mode: 0, Acousticness: 0.7},
	})
	if err != nil {
		t.Fatalf("WriteFeaturesSnapshot: %v", err)
	}

	if err := load(LoadConfig{DbPath: dbPath, DataDir: dataDir}); err != nil {
		t.Fatalf("load failed: %v", err)
	}

	db, err := store.New(dbPath)
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	defer db.Close()

	counts, err := db.Counts()
	if err != nil {
		t.Fatalf("Counts: %v", err)
	}
	// t9 had no features and is dropped; t2 is shared and stored once.
	if counts.Tracks != 3 {
		t.Errorf("Tracks = %d, want 3", counts.Tracks)
	}
	if counts.Playlists != 2 {
		t.Errorf("Playlists = %d, want 2", counts.Playlists)
	}
	if counts.Links != 4 {
		t.Errorf("Links = %d, want 4", counts.Links)
	}

	rows, err := db.Dataset()
	if err != nil {
		t.Fatalf("Dataset: %v", err)
	}
	for _, row := range rows {
		switch row.Playlist {
		case "Top 50 - USA":
			if row.Region != "USA" {
				t.Errorf("playlist %q has region %q, want USA", row.Playlist, row.Region)
			}
		case "Top 50 - UK":
			if row.Region != "UK" {
				t.Errorf("playlist %q has region %q, want UK", row.Playlist, row.Region)
			}
		default:
			t.Errorf("unexpected playlist %q", row.Playlist)
		}
		if row.ID == "t1" && row.Energy != 0.912 {
			t.Errorf("Alpha energy = %v, want 0.912 (rounded on load)", row.Energy)
		}
	}
}

func TestLoadWithoutSnapshots(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "spotify.db")

	err := load(LoadConfig{DbPath: dbPath, DataDir: t.TempDir()})
	if err == nil {
		t.Fatal("load with empty data dir should fail")
	}
	if !strings.Contains(err.Error(), "no snapshots") {
		t.Errorf("unexpected error: %v", err)
	}
}
