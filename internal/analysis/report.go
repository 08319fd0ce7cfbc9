package analysis

import (
	"math"
	"sort"
	"time"

	"spotify-tools/internal/store"
)

// GenerateReport builds the dataset report: size metadata, per-playlist
// summaries, the top scored tracks, and how features relate to
// popularity.
func GenerateReport(rows []store.DatasetRow, w Weights, topN int) (*Report, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}

	unique := uniqueTracks(rows)
	scored := ScoreAll(unique, w)

	scoreByID := make(map[string]float64, len(scored))
	for _, s := range scored {
		scoreByID[s.ID] = s.Score
	}

	report := &Report{
		Metadata:     datasetMetadata(rows, len(unique)),
		Playlists:    playlistSummaries(rows, scoreByID),
		Correlations: Correlations(unique),
		Regression:   RegressPopularityOnScore(scored),
	}

	if topN > len(scored) {
		topN = len(scored)
	}
	for _, s := range scored[:topN] {
		report.TopTracks = append(report.TopTracks, TrackSummary{
			Name:       s.Name,
			Artist:     s.Artist,
			Score:      round3(s.Score),
			Popularity: s.Popularity,
		})
	}

	return report, nil
}

// uniqueTracks keeps the first row seen per track id, ordered by id so
// downstream numbers are reproducible.
func uniqueTracks(rows []store.DatasetRow) []store.TrackRecord {
	seen := make(map[string]bool)
	var tracks []store.TrackRecord
	for _, row := range rows {
		if seen[row.ID] {
			continue
		}
		seen[row.ID] = true
		tracks = append(tracks, row.TrackRecord)
	}

	sort.Slice(tracks, func(i, j int) bool { return tracks[i].ID < tracks[j].ID })
	return tracks
}

func datasetMetadata(rows []store.DatasetRow, trackCount int) DatasetMetadata {
	playlists := make(map[string]bool)
	regions := make(map[string]bool)
	for _, row := range rows {
		playlists[row.Playlist] = true
		regions[row.Region] = true
	}

	regionNames := make([]string, 0, len(regions))
	for region := range regions {
		regionNames = append(regionNames, region)
	}
	sort.Strings(regionNames)

	return DatasetMetadata{
		GeneratedDate: time.Now().Format("2006-01-02"),
		Tracks:        trackCount,
		Playlists:     len(playlists),
		Links:         len(rows),
		Regions:       regionNames,
	}
}

func playlistSummaries(rows []store.DatasetRow, scoreByID map[string]float64) []PlaylistSummary {
	type agg struct {
		region   string
		count    int
		scoreSum float64
		popSum   float64
	}

	byPlaylist := make(map[string]*agg)
	for _, row := range rows {
		a := byPlaylist[row.Playlist]
		if a == nil {
			a = &agg{region: row.Region}
			byPlaylist[row.Playlist] = a
		}
		a.count++
		a.scoreSum += scoreByID[row.ID]
		a.popSum += float64(row.Popularity)
	}

	names := make([]string, 0, len(byPlaylist))
	for name := range byPlaylist {
		names = append(names, name)
	}
	sort.Strings(names)

	summaries := make([]PlaylistSummary, 0, len(names))
	for _, name := range names {
		a := byPlaylist[name]
		summaries = append(summaries, PlaylistSummary{
			Name:              name,
			Region:            a.region,
			Tracks:            a.count,
			AverageScore:      round3(a.scoreSum / float64(a.count)),
			AveragePopularity: round1(a.popSum / float64(a.count)),
		})
	}
	return summaries
}

func round3(x float64) float64 {
	return math.Round(x*1000) / 1000
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}
