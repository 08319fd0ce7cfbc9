package analysis

// Report is the top-level structure of the dataset report.
type Report struct {
	Metadata     DatasetMetadata      `yaml:"dataset_metadata"`
	Playlists    []PlaylistSummary    `yaml:"playlists"`
	TopTracks    []TrackSummary       `yaml:"top_tracks"`
	Correlations []FeatureCorrelation `yaml:"feature_correlations"`
	Regression   Regression           `yaml:"popularity_regression"`
}

type DatasetMetadata struct {
	GeneratedDate string   `yaml:"generated_date"`
	Tracks        int      `yaml:"tracks"`
	Playlists     int      `yaml:"playlists"`
	Links         int      `yaml:"track_playlist_links"`
	Regions       []string `yaml:"regions"`
}

type PlaylistSummary struct {
	Name              string  `yaml:"name"`
	Region            string  `yaml:"region"`
	Tracks            int     `yaml:"tracks"`
	AverageScore      float64 `yaml:"average_score"`
	AveragePopularity float64 `yaml:"average_popularity"`
}

type TrackSummary struct {
	Name       string  `yaml:"name"`
	Artist     string  `yaml:"artist"`
	Score      float64 `yaml:"tiktok_score"`
	Popularity int64   `yaml:"popularity"`
}
