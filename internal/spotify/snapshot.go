package spotify

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	tracksSuffix   = "_tracks.json"
	featuresSuffix = "_features.json"
)

// TracksSnapshot is the collect-stage output for one playlist's track
// listing. The load stage consumes it together with the matching
// features snapshot.
type TracksSnapshot struct {
	PlaylistID   string          `json:"playlist_id"`
	PlaylistName string          `json:"playlist_name"`
	CollectedAt  time.Time       `json:"collected_at"`
	RunID        string          `json:"run_id"`
	Tracks       []PlaylistTrack `json:"tracks"`
}

// snapshotKey turns a playlist name into a file-safe base name. It is
// idempotent, so keys listed from disk resolve back to the same files.
func snapshotKey(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			return r
		default:
			return '_'
		}
	}, name)
}

// WriteTracksSnapshot writes snap to <key>_tracks.json under dir,
// creating dir if needed.
func WriteTracksSnapshot(dir, name string, snap TracksSnapshot) error {
	return writeSnapshotFile(dir, snapshotKey(name)+tracksSuffix, snap)
}

// ReadTracksSnapshot reads the tracks snapshot for the named playlist.
// The name may be either the playlist name or a key from ListSnapshots.
func ReadTracksSnapshot(dir, name string) (TracksSnapshot, error) {
	var snap TracksSnapshot
	err := readSnapshotFile(dir, snapshotKey(name)+tracksSuffix, &snap)
	return snap, err
}

// WriteFeaturesSnapshot writes features to <key>_features.json under dir.
func WriteFeaturesSnapshot(dir, name string, features []AudioFeatures) error {
	return writeSnapshotFile(dir, snapshotKey(name)+featuresSuffix, features)
}

// ReadFeaturesSnapshot reads the features snapshot for the named
// playlist.
func ReadFeaturesSnapshot(dir, name string) ([]AudioFeatures, error) {
	var features []AudioFeatures
	err := readSnapshotFile(dir, snapshotKey(name)+featuresSuffix, &features)
	return features, err
}

// ListSnapshots returns the keys of every tracks snapshot under dir, so
// the load stage can discover what a collect run produced.
func ListSnapshots(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("listing snapshots in %s: %w", dir, err)
	}

	var keys []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), tracksSuffix) {
			continue
		}
		keys = append(keys, strings.TrimSuffix(entry.Name(), tracksSuffix))
	}
	return keys, nil
}

func writeSnapshotFile(dir, file string, v interface{}) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating snapshot directory %s: %w", dir, err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", file, err)
	}
	if err := os.WriteFile(filepath.Join(dir, file), data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", file, err)
	}
	return nil
}

func readSnapshotFile(dir, file string, v interface{}) error {
	data, err := os.ReadFile(filepath.Join(dir, file))
	if err != nil {
		return fmt.Errorf("reading %s: %w", file, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decoding %s: %w", file, err)
	}
	return nil
}
