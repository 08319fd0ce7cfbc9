package cmd

import (
	"bytes"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"spotify-tools/internal/store"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Checks the loaded dataset for consistency problems",
	Long: `Looks for playlist links pointing at missing rows, playlists with no
tracks, and audio features outside their documented ranges. Prints nothing
alarming when the dataset is clean.`,
	Run: func(cmd *cobra.Command, args []string) {
		err := checkDataset(viper.GetString("database"))
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func checkDataset(dbPath string) error {
	analyzer := &CheckAnalyzer{}
	res, err := analyzer.GetResults(dbPath)
	if err == ErrSkipReport {
		fmt.Println("No data issues detected.")
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Println(res.BodyOverride)
	return nil
}

type CheckAnalyzer struct{}

func (c *CheckAnalyzer) GetName() string {
	return "Data Check"
}

func (c *CheckAnalyzer) GetResults(dbPath string) (Analysis, error) {
	db, err := openStore(dbPath)
	if err != nil {
		return Analysis{}, err
	}
	defer db.Close()
	if err := requireDataset(db); err != nil {
		return Analysis{}, err
	}

	orphans, err := db.OrphanLinks()
	if err != nil {
		return Analysis{}, fmt.Errorf("checking links: %w", err)
	}
	empty, err := db.EmptyPlaylists()
	if err != nil {
		return Analysis{}, fmt.Errorf("checking playlists: %w", err)
	}
	tracks, err := db.Tracks()
	if err != nil {
		return Analysis{}, fmt.Errorf("reading tracks: %w", err)
	}

	type violation struct {
		track   string
		problem string
	}
	var violations []violation
	for _, t := range tracks {
		for _, problem := range featureViolations(t) {
			violations = append(violations, violation{track: t.Name, problem: problem})
		}
	}

	if orphans == 0 && len(empty) == 0 && len(violations) == 0 {
		return Analysis{}, ErrSkipReport
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "Data check for %s\n\n", dbPath)

	if orphans > 0 {
		fmt.Fprintf(&buf, "%d playlist links point at missing tracks or playlists\n", orphans)
	}
	for _, name := range empty {
		fmt.Fprintf(&buf, "Playlist %q has no tracks\n", name)
	}

	if len(violations) > 0 {
		fmt.Fprintln(&buf)
		w := tabwriter.NewWriter(&buf, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "Track\tProblem")
		for _, v := range violations {
			fmt.Fprintf(w, "%s\t%s\n", v.track, v.problem)
		}
		w.Flush()
	}

	return Analysis{
		BodyOverride: buf.String(),
		summary:      "Data issues detected",
	}, nil
}

// featureViolations lists range violations for one track. Energy,
// danceability, and acousticness are defined on [0, 1]; popularity on
// [0, 100]; mode is a binary major/minor flag; tempo is BPM.
func featureViolations(t store.TrackRecord) []string {
	var problems []string
	if t.Popularity < 0 || t.Popularity > 100 {
		problems = append(problems, fmt.Sprintf("popularity %d outside [0, 100]", t.Popularity))
	}
	unitFeatures := []struct {
		name  string
		value float64
	}{
		{"energy", t.Energy},
		{"danceability", t.Danceability},
		{"acousticness", t.Acousticness},
	}
	for _, f := range unitFeatures {
		if f.value < 0 || f.value > 1 {
			problems = append(problems, fmt.Sprintf("%s %.3f outside [0, 1]", f.name, f.value))
		}
	}
	if t.Tempo <= 0 {
		problems = append(problems, fmt.Sprintf("tempo %.3f not positive", t.Tempo))
	}
	if t.Mode != 0 && t.Mode != 1 {
		problems = append(problems, fmt.Sprintf("mode %d not 0 or 1", t.Mode))
	}
	return problems
}
