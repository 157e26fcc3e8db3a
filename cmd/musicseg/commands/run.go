package commands

import (
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/haivivi/musicseg/pkg/algorithms"
	"github.com/haivivi/musicseg/pkg/annotations"
	"github.com/haivivi/musicseg/pkg/cli"
	"github.com/haivivi/musicseg/pkg/runner"
	"github.com/haivivi/musicseg/pkg/segment"
)

var configFlags runFlags

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the run configuration of an algorithm pair",
	Long: `Print the configuration a run would use: the feature settings and the
merged default hyperparameters of the boundary and label algorithms.

It fails if both algorithms define the same hyperparameter with different
values.

Examples:
  musicseg config --boundaries foote --labels fmc2d
  musicseg config -b scluster -l scluster --hier -o json
  musicseg config -b sf -p M_gaussian=33`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := GetConfig()
		if err != nil {
			return err
		}
		m, err := GetMux()
		if err != nil {
			return err
		}
		s, err := configFlags.settings(cmd, cfg)
		if err != nil {
			return err
		}
		algCfg, err := buildConfig(m, s)
		if err != nil {
			return err
		}
		return output(cmd, algCfg.Map())
	},
}

var (
	runFlagsVar runFlags
	runRefsDB   string
)

var runTrackCmd = &cobra.Command{
	Use:   "run TRACK",
	Short: "Segment one track with an algorithm pair",
	Long: `Segment a track of the configured dataset and print the normalized result.

The boundary source is an algorithm id or "gt" for the reference annotation
of --annotator. The label source is an algorithm id or "none".

Examples:
  musicseg run SALAMI_2 --boundaries foote --labels fmc2d
  musicseg run SALAMI_2 -b gt -l scluster -o json
  musicseg run SALAMI_2 -b scluster -l scluster --hier
  musicseg run SALAMI_2 -f request.yaml
  musicseg run SALAMI_2 -b gt --refs ./refs`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := GetConfig()
		if err != nil {
			return err
		}
		m, err := GetMux()
		if err != nil {
			return err
		}
		s, err := runFlagsVar.settings(cmd, cfg)
		if err != nil {
			return err
		}
		ds, err := cfg.OpenDataset()
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		track := ds.Track(args[0])
		feats, err := track.Features(ctx, s.Feature, s.AnnotBeats, s.Framesync)
		if err != nil {
			return err
		}
		algCfg, err := buildConfig(m, s, algorithms.Attach(feats))
		if err != nil {
			return err
		}

		var fc runner.FileContext = track
		if runRefsDB != "" {
			db, err := annotations.NewBadger(annotations.BadgerOptions{Dir: runRefsDB, Logger: globalLogger})
			if err != nil {
				return err
			}
			defer db.Close()
			fc = annotations.TrackRef{Store: db, Track: track.Name()}
		}

		r := &runner.Runner{
			Mux:           m,
			Logger:        globalLogger,
			MinimumFrames: cfg.Defaults.MinimumFrames,
			Annotator:     s.Annotator,
		}
		bound, label := s.sources()
		start := time.Now()
		seg, err := r.Process(ctx, fc, bound, label, algCfg)
		if err != nil {
			return err
		}
		globalLogger.Debug("run finished", "track", track.Name(), "pair", runner.Pair{Boundaries: bound, Labels: label}, "elapsed", time.Since(start))

		return output(cmd, runResult{
			Track:      track.Name(),
			Boundaries: bound,
			Labels:     label,
			Result:     seg,
		})
	},
}

type runResult struct {
	Track      string                    `json:"track" yaml:"track"`
	Boundaries algorithms.BoundarySource `json:"boundaries" yaml:"boundaries"`
	Labels     algorithms.LabelSource    `json:"labels" yaml:"labels"`
	Result     segment.Segmentation      `json:"result" yaml:"result"`
}

func buildConfig(m *algorithms.Mux, s runSettings, opts ...algorithms.ConfigOption) (algorithms.Config, error) {
	bound, label := s.sources()
	opts = append([]algorithms.ConfigOption{algorithms.Hierarchical(s.Hier)}, opts...)
	if len(s.Params) > 0 {
		opts = append(opts, algorithms.Override(s.Params))
	}
	return algorithms.BuildConfig(m, s.Feature, s.AnnotBeats, s.Framesync, bound, label, opts...)
}

// Table renders one row per segment of every level.
func (r runResult) Table(s cli.Styles) string {
	var rows [][]string
	for i, lvl := range r.Result.Levels {
		for j := range lvl.Segments() {
			rows = append(rows, []string{
				strconv.Itoa(i),
				strconv.Itoa(j),
				cli.FormatTimestamp(lvl.Times[j]),
				cli.FormatTimestamp(lvl.Times[j+1]),
				strconv.Itoa(lvl.Labels[j]),
			})
		}
	}
	return s.Table([]string{"LEVEL", "SEGMENT", "START", "END", "LABEL"}, rows, nil)
}

func init() {
	configFlags.register(configCmd.Flags(), false)
	runFlagsVar.register(runTrackCmd.Flags(), true)
	runTrackCmd.Flags().StringVar(&runRefsDB, "refs", "", "read ground truth from this reference database instead of the dataset")
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(runTrackCmd)
}
