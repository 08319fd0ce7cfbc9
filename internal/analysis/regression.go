package analysis

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"spotify-tools/internal/store"
)

// FeatureCorrelation is the Pearson correlation of one audio feature
// against track popularity. The value is NaN when the sample is too
// small or the feature never varies.
type FeatureCorrelation struct {
	Feature     string  `yaml:"feature"`
	Correlation float64 `yaml:"correlation_vs_popularity"`
}

var featureColumns = []struct {
	name  string
	value func(store.TrackRecord) float64
}{
	{"Energy", func(t store.TrackRecord) float64 { return t.Energy }},
	{"Tempo", func(t store.TrackRecord) float64 { return t.Tempo }},
	{"Danceability", func(t store.TrackRecord) float64 { return t.Danceability }},
	{"Mode", func(t store.TrackRecord) float64 { return float64(t.Mode) }},
	{"Acousticness", func(t store.TrackRecord) float64 { return 1 - t.Acousticness }},
}

// Correlations computes the Pearson correlation of each audio feature
// against popularity. Acousticness goes in inverted, matching its
// treatment in the score.
func Correlations(tracks []store.TrackRecord) []FeatureCorrelation {
	popularity := make([]float64, len(tracks))
	for i, t := range tracks {
		popularity[i] = float64(t.Popularity)
	}

	correlations := make([]FeatureCorrelation, 0, len(featureColumns))
	for _, col := range featureColumns {
		values := make([]float64, len(tracks))
		for i, t := range tracks {
			values[i] = col.value(t)
		}
		correlations = append(correlations, FeatureCorrelation{
			Feature:     col.name,
			Correlation: stat.Correlation(values, popularity, nil),
		})
	}
	return correlations
}

// Regression is an ordinary least squares fit of popularity against the
// TikTok score.
type Regression struct {
	Slope     float64 `yaml:"slope"`
	Intercept float64 `yaml:"intercept"`
	RSquared  float64 `yaml:"r_squared"`
	N         int     `yaml:"n"`
}

// RegressPopularityOnScore fits popularity = intercept + slope*score
// over the scored tracks.
func RegressPopularityOnScore(scored []ScoredTrack) Regression {
	x := make([]float64, len(scored))
	y := make([]float64, len(scored))
	for i, s := range scored {
		x[i] = s.Score
		y[i] = float64(s.Popularity)
	}

	intercept, slope := stat.LinearRegression(x, y, nil, false)
	return Regression{
		Slope:     slope,
		Intercept: intercept,
		RSquared:  stat.RSquared(x, y, nil, intercept, slope),
		N:         len(scored),
	}
}

// GroupByRegion splits dataset rows by region, with region names
// returned sorted so output order is stable.
func GroupByRegion(rows []store.DatasetRow) ([]string, map[string][]store.DatasetRow) {
	groups := make(map[string][]store.DatasetRow)
	for _, row := range rows {
		groups[row.Region] = append(groups[row.Region], row)
	}

	regions := make([]string, 0, len(groups))
	for region := range groups {
		regions = append(regions, region)
	}
	sort.Strings(regions)
	return regions, groups
}

// TrackRecords strips the playlist columns off dataset rows. Rows for
// the same track on different playlists stay separate entries.
func TrackRecords(rows []store.DatasetRow) []store.TrackRecord {
	tracks := make([]store.TrackRecord, len(rows))
	for i, row := range rows {
		tracks[i] = row.TrackRecord
	}
	return tracks
}
