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
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"spotify-tools/internal/spotify"
)

type CollectConfig struct {
	ClientID     string
	ClientSecret string
	Playlists    []string
	DataDir      string
	BatchSize    int
	Attempts     uint
}

var collectBatchSize int
var collectAttempts uint

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Fetches playlist tracks and audio features from Spotify",
	Long: `Downloads the track listing and audio features for each configured
playlist and writes raw JSON snapshots to the data directory. Credentials
come from --client_id/--client_secret, the config file, or a .env file with
SPOTIFY_CLIENT_ID and SPOTIFY_CLIENT_SECRET.`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if viper.GetString("client_id") == "" || viper.GetString("client_secret") == "" {
			return fmt.Errorf("client_id and client_secret must be set")
		}
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		config := CollectConfig{
			ClientID:     viper.GetString("client_id"),
			ClientSecret: viper.GetString("client_secret"),
			Playlists:    viper.GetStringSlice("playlists"),
			DataDir:      viper.GetString("data-dir"),
			BatchSize:    collectBatchSize,
			Attempts:     collectAttempts,
		}
		err := collect(config)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(collectCmd)

	collectCmd.Flags().IntVar(&collectBatchSize, "batch_size", spotify.DefaultBatchSize, "Track ids per audio-features request")
	collectCmd.Flags().UintVar(&collectAttempts, "attempts", 5, "Attempts per request when rate limited")
}

func collect(config CollectConfig) error {
	targets, err := parsePlaylists(config.Playlists)
	if err != nil {
		return err
	}
	if len(targets) == 0 {
		return fmt.Errorf("no playlists specified, use --playlists id=name")
	}

	runID := uuid.New().String()
	logger := log.WithRun("collect", runID)
	ctx := context.Background()

	client := spotify.New(ctx, spotify.Config{
		ClientID:     config.ClientID,
		ClientSecret: config.ClientSecret,
		BatchSize:    config.BatchSize,
		Attempts:     config.Attempts,
		Log:          logger,
	})

	for _, target := range targets {
		fmt.Printf("Fetching %q\n", target.Name)
		tracks, err := client.PlaylistTracks(ctx, target.ID)
		if err != nil {
			if spotify.IsAuthFailure(err) {
				return fmt.Errorf("fetching playlist %q: %w", target.Name, err)
			}
			logger.Warnf("Error fetching playlist %q: %v", target.Name, err)
			continue
		}

		snap := spotify.TracksSnapshot{
			PlaylistID:   target.ID,
			PlaylistName: target.Name,
			CollectedAt:  time.Now().UTC(),
			RunID:        runID,
			Tracks:       tracks,
		}
		if err := spotify.WriteTracksSnapshot(config.DataDir, target.Name, snap); err != nil {
			return fmt.Errorf("writing tracks snapshot for %q: %w", target.Name, err)
		}

		ids := make([]string, 0, len(tracks))
		for _, t := range tracks {
			ids = append(ids, t.ID)
		}
		features, err := client.AudioFeatures(ctx, ids)
		if err != nil {
			if spotify.IsAuthFailure(err) {
				return fmt.Errorf("fetching audio features for %q: %w", target.Name, err)
			}
			logger.Warnf("Error fetching audio features for %q: %v", target.Name, err)
			continue
		}
		if err := spotify.WriteFeaturesSnapshot(config.DataDir, target.Name, features); err != nil {
			return fmt.Errorf("writing features snapshot for %q: %w", target.Name, err)
		}

		fmt.Printf("Saved %d tracks (%d with features) for %q\n", len(tracks), len(features), target.Name)
	}

	return nil
}

type playlistRef struct {
	ID   string
	Name string
}

// parsePlaylists turns id=name flag values into collection targets.
// The name part is optional and defaults to the id; repeated ids are
// collected once.
func parsePlaylists(args []string) ([]playlistRef, error) {
	refs := make([]playlistRef, 0, len(args))
	seen := make(map[string]bool)
	for _, arg := range args {
		kv := strings.SplitN(arg, "=", 2)
		if kv[0] == "" {
			return nil, fmt.Errorf("invalid playlist %q, expected id=name", arg)
		}
		name := kv[0]
		if len(kv) == 2 && kv[1] != "" {
			name = kv[1]
		}
		if seen[kv[0]] {
			continue
		}
		seen[kv[0]] = true
		refs = append(refs, playlistRef{ID: kv[0], Name: name})
	}
	return refs, nil
}
