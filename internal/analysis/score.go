package analysis

import (
	"fmt"
	"sort"

	"spotify-tools/internal/store"
)

// Weights controls how much each audio feature contributes to the
// TikTok score. Weights are relative: doubling all of them changes
// nothing.
type Weights struct {
	Energy       float64
	Tempo        float64
	Danceability float64
	Mode         float64
	Acousticness float64
}

// DefaultWeights weighs every feature equally.
func DefaultWeights() Weights {
	return Weights{
		Energy:       1,
		Tempo:        1,
		Danceability: 1,
		Mode:         1,
		Acousticness: 1,
	}
}

func (w Weights) total() float64 {
	return w.Energy + w.Tempo + w.Danceability + w.Mode + w.Acousticness
}

// Validate rejects negative weights and all-zero weight sets, which
// would make the score meaningless.
func (w Weights) Validate() error {
	for _, v := range []float64{w.Energy, w.Tempo, w.Danceability, w.Mode, w.Acousticness} {
		if v < 0 {
			return fmt.Errorf("weights must not be negative, got %+v", w)
		}
	}
	if w.total() == 0 {
		return fmt.Errorf("at least one weight must be positive")
	}
	return nil
}

// TempoRange spans the observed tempos of a dataset, for min-max
// scaling into [0, 1].
type TempoRange struct {
	Min float64
	Max float64
}

// TempoRangeOf scans the tempos of all tracks. An empty input yields a
// degenerate range.
func TempoRangeOf(tracks []store.TrackRecord) TempoRange {
	if len(tracks) == 0 {
		return TempoRange{}
	}

	r := TempoRange{Min: tracks[0].Tempo, Max: tracks[0].Tempo}
	for _, t := range tracks[1:] {
		if t.Tempo < r.Min {
			r.Min = t.Tempo
		}
		if t.Tempo > r.Max {
			r.Max = t.Tempo
		}
	}
	return r
}

// normalize maps tempo into [0, 1]. When every track has the same tempo
// the feature carries no signal, so it sits at the midpoint.
func (r TempoRange) normalize(tempo float64) float64 {
	if r.Max == r.Min {
		return 0.5
	}
	return (tempo - r.Min) / (r.Max - r.Min)
}

// TikTokScore is the weighted average of the five normalized features.
// Energy, danceability, and mode are already in [0, 1]; tempo is scaled
// by the dataset range; acousticness counts inverted, since acoustic
// tracks trend less.
func TikTokScore(t store.TrackRecord, w Weights, tempos TempoRange) float64 {
	sum := w.Energy*t.Energy +
		w.Tempo*tempos.normalize(t.Tempo) +
		w.Danceability*t.Danceability +
		w.Mode*float64(t.Mode) +
		w.Acousticness*(1-t.Acousticness)
	return sum / w.total()
}

// ScoredTrack pairs a track with its TikTok score.
type ScoredTrack struct {
	store.TrackRecord
	Score float64
}

// ScoreAll scores every track against the tempo range of the whole
// input and returns them ranked best first. Ties break by track name so
// the ranking is stable.
func ScoreAll(tracks []store.TrackRecord, w Weights) []ScoredTrack {
	tempos := TempoRangeOf(tracks)

	scored := make([]ScoredTrack, 0, len(tracks))
	for _, t := range tracks {
		scored = append(scored, ScoredTrack{
			TrackRecord: t,
			Score:       TikTokScore(t, w, tempos),
		})
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].Name < scored[j].Name
	})
	return scored
}
