package spotify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// PlaylistTrack is one playlist entry flattened for storage and
// snapshots. Artist holds all credited artists joined with ", ".
type PlaylistTrack struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Artist     string `json:"artist"`
	Album      string `json:"album"`
	Popularity int64  `json:"popularity"`
}

// AudioFeatures is the per-track feature vector used by scoring.
type AudioFeatures struct {
	ID           string  `json:"id"`
	Energy       float64 `json:"energy"`
	Tempo        float64 `json:"tempo"`
	Danceability float64 `json:"danceability"`
	Mode         int64   `json:"mode"`
	Acousticness float64 `json:"acousticness"`
}

type trackObject struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Popularity int64  `json:"popularity"`
	Artists    []struct {
		Name string `json:"name"`
	} `json:"artists"`
	Album struct {
		Name string `json:"name"`
	} `json:"album"`
}

type playlistTracksPage struct {
	Items []struct {
		Track trackObject `json:"track"`
	} `json:"items"`
	Next  string `json:"next"`
	Total int    `json:"total"`
}

func flattenTrack(t trackObject) PlaylistTrack {
	names := make([]string, 0, len(t.Artists))
	for _, artist := range t.Artists {
		names = append(names, artist.Name)
	}

	return PlaylistTrack{
		ID:         t.ID,
		Name:       t.Name,
		Artist:     strings.Join(names, ", "),
		Album:      t.Album.Name,
		Popularity: t.Popularity,
	}
}

func (c *Client) playlistTracksPage(ctx context.Context, playlistID string, limit, offset int) (playlistTracksPage, error) {
	var page playlistTracksPage

	u := fmt.Sprintf("%s/playlists/%s/tracks?limit=%d&offset=%d",
		c.baseURL, url.PathEscape(playlistID), limit, offset)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return page, fmt.Errorf("building playlist request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return page, fmt.Errorf("requesting playlist tracks: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return page, newAPIError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return page, fmt.Errorf("decoding playlist tracks: %w", err)
	}
	return page, nil
}

// audioFeaturesChunk fetches one batch. The response array mirrors the
// request order, with null for ids the catalog does not know; those are
// logged and dropped.
func (c *Client) audioFeaturesChunk(ctx context.Context, ids []string) ([]AudioFeatures, error) {
	u := fmt.Sprintf("%s/audio-features?ids=%s",
		c.baseURL, url.QueryEscape(strings.Join(ids, ",")))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("building audio-features request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("requesting audio features: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, newAPIError(resp)
	}

	var body struct {
		AudioFeatures []*AudioFeatures `json:"audio_features"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decoding audio features: %w", err)
	}

	features := make([]AudioFeatures, 0, len(body.AudioFeatures))
	for i, f := range body.AudioFeatures {
		if f == nil {
			if i < len(ids) {
				c.log.Warnf("no audio features for track %s", ids[i])
			}
			continue
		}
		features = append(features, *f)
	}
	return features, nil
}
