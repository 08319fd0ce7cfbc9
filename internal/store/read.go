package store

import (
	"fmt"
)

// DatasetRow is one track-playlist pairing joined across all three
// tables. A track carried by two playlists appears twice, once per
// playlist.
type DatasetRow struct {
	TrackRecord
	Playlist string
	Region   string
}

// Dataset returns every track-playlist pairing, ordered by playlist and
// track name for stable output.
func (s *Store) Dataset() ([]DatasetRow, error) {
	query := `
		SELECT t.Track_ID, t.Track_Name, t.Artist, t.Album, t.Popularity,
		       t.Energy, t.Tempo, t.Danceability, t.Mode, t.Acousticness,
		       p.Playlist, p.Region
		FROM Tracks t
		JOIN Track_to_Playlist tp ON t.Track_ID = tp.Track_ID
		JOIN Playlists p ON tp.Playlist_ID = p.Playlist_ID
		ORDER BY p.Playlist, t.Track_Name
	`
	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("querying dataset: %w", err)
	}
	defer rows.Close()

	var dataset []DatasetRow
	for rows.Next() {
		var r DatasetRow
		if err := rows.Scan(&r.ID, &r.Name, &r.Artist, &r.Album, &r.Popularity,
			&r.Energy, &r.Tempo, &r.Danceability, &r.Mode, &r.Acousticness,
			&r.Playlist, &r.Region); err != nil {
			return nil, err
		}
		dataset = append(dataset, r)
	}
	return dataset, rows.Err()
}

// Tracks returns every stored track once, ordered by name.
func (s *Store) Tracks() ([]TrackRecord, error) {
	query := `
		SELECT Track_ID, Track_Name, Artist, Album, Popularity,
		       Energy, Tempo, Danceability, Mode, Acousticness
		FROM Tracks
		ORDER BY Track_Name
	`
	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("querying tracks: %w", err)
	}
	defer rows.Close()

	var tracks []TrackRecord
	for rows.Next() {
		var t TrackRecord
		if err := rows.Scan(&t.ID, &t.Name, &t.Artist, &t.Album, &t.Popularity,
			&t.Energy, &t.Tempo, &t.Danceability, &t.Mode, &t.Acousticness); err != nil {
			return nil, err
		}
		tracks = append(tracks, t)
	}
	return tracks, rows.Err()
}

// Playlists returns every stored playlist, ordered by name.
func (s *Store) Playlists() ([]PlaylistRecord, error) {
	rows, err := s.db.Query("SELECT Playlist_ID, Playlist, Region FROM Playlists ORDER BY Playlist")
	if err != nil {
		return nil, fmt.Errorf("querying playlists: %w", err)
	}
	defer rows.Close()

	var playlists []PlaylistRecord
	for rows.Next() {
		var p PlaylistRecord
		if err := rows.Scan(&p.ID, &p.Name, &p.Region); err != nil {
			return nil, err
		}
		playlists = append(playlists, p)
	}
	return playlists, rows.Err()
}

// Counts summarizes table sizes for reports and consistency checks.
type Counts struct {
	Tracks    int64
	Playlists int64
	Links     int64
}

func (s *Store) Counts() (Counts, error) {
	var c Counts
	if err := s.db.QueryRow("SELECT COUNT(*) FROM Tracks").Scan(&c.Tracks); err != nil {
		return c, fmt.Errorf("counting tracks: %w", err)
	}
	if err := s.db.QueryRow("SELECT COUNT(*) FROM Playlists").Scan(&c.Playlists); err != nil {
		return c, fmt.Errorf("counting playlists: %w", err)
	}
	if err := s.db.QueryRow("SELECT COUNT(*) FROM Track_to_Playlist").Scan(&c.Links); err != nil {
		return c, fmt.Errorf("counting links: %w", err)
	}
	return c, nil
}

// OrphanLinks counts junction rows that reference a missing track or
// playlist.
func (s *Store) OrphanLinks() (int64, error) {
	query := `
		SELECT COUNT(*)
		FROM Track_to_Playlist tp
		LEFT JOIN Tracks t ON tp.Track_ID = t.Track_ID
		LEFT JOIN Playlists p ON tp.Playlist_ID = p.Playlist_ID
		WHERE t.Track_ID IS NULL OR p.Playlist_ID IS NULL
	`
	var count int64
	if err := s.db.QueryRow(query).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting orphan links: %w", err)
	}
	return count, nil
}

// EmptyPlaylists returns the names of playlists with no linked tracks.
func (s *Store) EmptyPlaylists() ([]string, error) {
	query := `
		SELECT p.Playlist
		FROM Playlists p
		LEFT JOIN Track_to_Playlist tp ON p.Playlist_ID = tp.Playlist_ID
		WHERE tp.Track_ID IS NULL
		ORDER BY p.Playlist
	`
	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("querying empty playlists: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}
