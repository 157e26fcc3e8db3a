package commands

import (
	"github.com/spf13/cobra"

	"github.com/haivivi/musicseg/pkg/cli"
)

type trackInfo struct {
	Track      string `json:"track" yaml:"track"`
	References bool   `json:"references" yaml:"references"`
}

var tracksCmd = &cobra.Command{
	Use:   "tracks",
	Short: "List the tracks of the dataset",
	Long: `List every track with a feature bundle, and whether it has reference
annotations.

Examples:
  musicseg tracks
  musicseg tracks -o json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := GetConfig()
		if err != nil {
			return err
		}
		ds, err := cfg.OpenDataset()
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		names, err := ds.Tracks(ctx)
		if err != nil {
			return err
		}
		tracks := make(trackList, 0, len(names))
		for _, name := range names {
			ok, err := ds.Track(name).HasReferences(ctx)
			if err != nil {
				return err
			}
			tracks = append(tracks, trackInfo{Track: name, References: ok})
		}
		return output(cmd, tracks)
	},
}

type trackList []trackInfo

func (l trackList) Table(s cli.Styles) string {
	if len(l) == 0 {
		return "No tracks"
	}
	rows := make([][]string, len(l))
	for i, t := range l {
		refs := "no"
		if t.References {
			refs = "yes"
		}
		rows[i] = []string{t.Track, refs}
	}
	return s.Table([]string{"TRACK", "REFERENCES"}, rows, nil)
}

func init() {
	rootCmd.AddCommand(tracksCmd)
}
