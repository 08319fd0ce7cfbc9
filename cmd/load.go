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
	"math"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"spotify-tools/internal/schema"
	"spotify-tools/internal/spotify"
	"spotify-tools/internal/store"
)

type LoadConfig struct {
	DbPath  string
	DataDir string
}

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Loads collected snapshots into the SQLite database",
	Long: `Reads the raw JSON snapshots written by 'collect', joins tracks with
their audio features, derives playlist regions, infers column types from the
data, and fills the Tracks, Playlists, and Track_to_Playlist tables. A track
is stored once no matter how many playlists contain it.`,
	Run: func(cmd *cobra.Command, args []string) {
		config := LoadConfig{
			DbPath:  viper.GetString("database"),
			DataDir: viper.GetString("data-dir"),
		}
		err := load(config)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(loadCmd)
}

type playlistBatch struct {
	playlist store.PlaylistRecord
	tracks   []store.TrackRecord
}

func load(config LoadConfig) error {
	keys, err := spotify.ListSnapshots(config.DataDir)
	if err != nil {
		return fmt.Errorf("listing snapshots in %q: %w", config.DataDir, err)
	}
	if len(keys) == 0 {
		return fmt.Errorf("no snapshots found in %q, run 'collect' first", config.DataDir)
	}

	logger := log.WithRun("load", uuid.New().String())

	var batches []playlistBatch
	var allTracks []store.TrackRecord
	var allPlaylists []store.PlaylistRecord
	for _, key := range keys {
		snap, err := spotify.ReadTracksSnapshot(config.DataDir, key)
		if err != nil {
			return fmt.Errorf("reading tracks snapshot %q: %w", key, err)
		}
		features, err := spotify.ReadFeaturesSnapshot(config.DataDir, key)
		if err != nil {
			return fmt.Errorf("reading features snapshot %q: %w", key, err)
		}

		playlist := store.PlaylistRecord{
			ID:     snap.PlaylistID,
			Name:   snap.PlaylistName,
			Region: regionOf(snap.PlaylistName),
		}
		tracks := joinFeatures(snap.Tracks, features, logger)

		batches = append(batches, playlistBatch{playlist: playlist, tracks: tracks})
		allTracks = append(allTracks, tracks...)
		allPlaylists = append(allPlaylists, playlist)
	}

	db, err := openStore(config.DbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.CreateTables(buildTables(allTracks, allPlaylists)...); err != nil {
		return fmt.Errorf("creating tables: %w", err)
	}

	for _, batch := range batches {
		if err := db.AddPlaylistTracks(batch.playlist, batch.tracks); err != nil {
			return fmt.Errorf("loading playlist %q: %w", batch.playlist.Name, err)
		}
		fmt.Printf("Loaded %d tracks for %q (%s)\n", len(batch.tracks), batch.playlist.Name, batch.playlist.Region)
	}

	counts, err := db.Counts()
	if err != nil {
		return fmt.Errorf("counting rows: %w", err)
	}
	fmt.Printf("Database has %d tracks, %d playlists, %d links\n", counts.Tracks, counts.Playlists, counts.Links)
	return nil
}

// regionOf derives the chart region from the playlist name.
func regionOf(playlistName string) string {
	switch {
	case strings.Contains(playlistName, "UK"):
		return "UK"
	case strings.Contains(playlistName, "USA"):
		return "USA"
	case strings.Contains(playlistName, "Singapore"):
		return "Singapore"
	default:
		return "Global"
	}
}

// joinFeatures pairs playlist tracks with their audio features by track
// id. Tracks the features endpoint knew nothing about are dropped, same
// as an inner join would.
func joinFeatures(tracks []spotify.PlaylistTrack, features []spotify.AudioFeatures, logger *logrus.Entry) []store.TrackRecord {
	byID := make(map[string]spotify.AudioFeatures, len(features))
	for _, f := range features {
		byID[f.ID] = f
	}

	records := make([]store.TrackRecord, 0, len(tracks))
	for _, t := range tracks {
		f, ok := byID[t.ID]
		if !ok {
			logger.Warnf("No audio features for track %q, skipping", t.Name)
			continue
		}
		records = append(records, store.TrackRecord{
			ID:           t.ID,
			Name:         t.Name,
			Artist:       t.Artist,
			Album:        t.Album,
			Popularity:   t.Popularity,
			Energy:       round3(f.Energy),
			Tempo:        round3(f.Tempo),
			Danceability: round3(f.Danceability),
			Mode:         f.Mode,
			Acousticness: round3(f.Acousticness),
		})
	}
	return records
}

func round3(x float64) float64 {
	return math.Round(x*1000) / 1000
}

// buildTables infers the narrowest column types that hold the data about
// to be loaded. Spotify ids are fixed-width, everything else is measured.
func buildTables(tracks []store.TrackRecord, playlists []store.PlaylistRecord) []schema.Table {
	names := make([]string, len(tracks))
	artists := make([]string, len(tracks))
	albums := make([]string, len(tracks))
	popularity := make([]int64, len(tracks))
	modes := make([]int64, len(tracks))
	energy := make([]float64, len(tracks))
	tempo := make([]float64, len(tracks))
	danceability := make([]float64, len(tracks))
	acousticness := make([]float64, len(tracks))
	for i, t := range tracks {
		names[i] = t.Name
		artists[i] = t.Artist
		albums[i] = t.Album
		popularity[i] = t.Popularity
		modes[i] = t.Mode
		energy[i] = t.Energy
		tempo[i] = t.Tempo
		danceability[i] = t.Danceability
		acousticness[i] = t.Acousticness
	}

	playlistNames := make([]string, len(playlists))
	regions := make([]string, len(playlists))
	for i, p := range playlists {
		playlistNames[i] = p.Name
		regions[i] = p.Region
	}

	trackTable := schema.Table{
		Name: "Tracks",
		Columns: []schema.Column{
			schema.FixedString("Track_ID", 50),
			schema.InferString("Track_Name", names),
			schema.InferString("Artist", artists),
			schema.InferString("Album", albums),
			schema.InferInteger("Popularity", popularity),
			schema.InferFloat("Energy", energy),
			schema.InferFloat("Tempo", tempo),
			schema.InferFloat("Danceability", danceability),
			schema.InferInteger("Mode", modes),
			schema.InferFloat("Acousticness", acousticness),
		},
		PrimaryKey: []string{"Track_ID"},
	}

	playlistTable := schema.Table{
		Name: "Playlists",
		Columns: []schema.Column{
			schema.FixedString("Playlist_ID", 50),
			schema.InferString("Playlist_Name", playlistNames),
			schema.InferString("Region", regions),
		},
		PrimaryKey: []string{"Playlist_ID"},
	}

	junctionTable := schema.Table{
		Name: "Track_to_Playlist",
		Columns: []schema.Column{
			schema.FixedString("Track_ID", 50),
			schema.FixedString("Playlist_ID", 50),
		},
		PrimaryKey: []string{"Track_ID", "Playlist_ID"},
		ForeignKeys: []schema.ForeignKey{
			{Column: "Track_ID", RefTable: "Tracks", RefColumn: "Track_ID"},
			{Column: "Playlist_ID", RefTable: "Playlists", RefColumn: "Playlist_ID"},
		},
	}

	return []schema.Table{trackTable, playlistTable, junctionTable}
}
