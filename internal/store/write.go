package store

import (
	"database/sql"
	"fmt"
)

// TrackRecord is one row of the Tracks table.
type TrackRecord struct {
	ID           string
	Name         string
	Artist       string
	Album        string
	Popularity   int64
	Energy       float64
	Tempo        float64
	Danceability float64
	Mode         int64
	Acousticness float64
}

// PlaylistRecord is one row of the Playlists table.
type PlaylistRecord struct {
	ID     string
	Name   string
	Region string
}

// AddPlaylistTracks inserts a playlist, its tracks, and their links in
// one transaction. Rows already present are left untouched, so loading
// the same snapshot twice adds nothing.
func (s *Store) AddPlaylistTracks(playlist PlaylistRecord, tracks []TrackRecord) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := createPlaylist(tx, playlist); err != nil {
		return err
	}
	for _, track := range tracks {
		if err := createTrack(tx, track); err != nil {
			return err
		}
		if err := linkTrack(tx, track.ID, playlist.ID); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func createPlaylist(tx *sql.Tx, playlist PlaylistRecord) error {
	var dummy string
	err := tx.QueryRow("SELECT Playlist_ID FROM Playlists WHERE Playlist_ID = ?", playlist.ID).Scan(&dummy)
	if err == nil {
		return nil
	}
	if err != sql.ErrNoRows {
		return fmt.Errorf("checking playlist %q: %w", playlist.Name, err)
	}

	_, err = tx.Exec("INSERT INTO Playlists (Playlist_ID, Playlist, Region) VALUES (?, ?, ?)",
		playlist.ID, playlist.Name, playlist.Region)
	if err != nil {
		return fmt.Errorf("inserting playlist %q: %w", playlist.Name, err)
	}
	return nil
}

func createTrack(tx *sql.Tx, track TrackRecord) error {
	var dummy string
	err := tx.QueryRow("SELECT Track_ID FROM Tracks WHERE Track_ID = ?", track.ID).Scan(&dummy)
	if err == nil {
		return nil
	}
	if err != sql.ErrNoRows {
		return fmt.Errorf("checking track %q: %w", track.Name, err)
	}

	_, err = tx.Exec(`INSERT INTO Tracks
		(Track_ID, Track_Name, Artist, Album, Popularity, Energy, Tempo, Danceability, Mode, Acousticness)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		track.ID, track.Name, track.Artist, track.Album, track.Popularity,
		track.Energy, track.Tempo, track.Danceability, track.Mode, track.Acousticness)
	if err != nil {
		return fmt.Errorf("inserting track %q: %w", track.Name, err)
	}
	return nil
}

func linkTrack(tx *sql.Tx, trackID, playlistID string) error {
	_, err := tx.Exec("INSERT OR IGNORE INTO Track_to_Playlist (Track_ID, Playlist_ID) VALUES (?, ?)",
		trackID, playlistID)
	if err != nil {
		return fmt.Errorf("linking track %s to playlist %s: %w", trackID, playlistID, err)
	}
	return nil
}
