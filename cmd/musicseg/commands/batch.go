package commands

import (
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/haivivi/musicseg/pkg/algorithms"
	"github.com/haivivi/musicseg/pkg/cli"
	"github.com/haivivi/musicseg/pkg/runner"
	"github.com/haivivi/musicseg/pkg/segment"
)

var (
	batchBoundaries []string
	batchLabels     []string
	batchFeature    string
	batchHier       bool
	batchAnnotator  int
	batchWorkers    int
)

type batchRow struct {
	RunID      string                    `json:"run_id" yaml:"run_id"`
	Boundaries algorithms.BoundarySource `json:"boundaries" yaml:"boundaries"`
	Labels     algorithms.LabelSource    `json:"labels" yaml:"labels"`
	ElapsedMS  int64                     `json:"elapsed_ms" yaml:"elapsed_ms"`
	Result     *segment.Segmentation     `json:"result,omitempty" yaml:"result,omitempty"`
	Error      string                    `json:"error,omitempty" yaml:"error,omitempty"`
}

var batchCmd = &cobra.Command{
	Use:   "batch TRACK",
	Short: "Run every algorithm pair on one track",
	Long: `Run the cross product of boundary and label sources on one track.

By default every registered boundary algorithm plus "gt" is paired with every
registered labeler plus "none". A failing pair is reported in its row and
does not stop the others.

Examples:
  musicseg batch SALAMI_2
  musicseg batch SALAMI_2 --boundaries foote,sf --labels fmc2d --workers 2
  musicseg batch SALAMI_2 -o json`,
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
		ds, err := cfg.OpenDataset()
		if err != nil {
			return err
		}

		feature := batchFeature
		if feature == "" {
			feature = cfg.Defaults.Feature
		}
		workers := batchWorkers
		if workers <= 0 {
			workers = cfg.Defaults.Workers
		}

		ctx := cmd.Context()
		track := ds.Track(args[0])
		feats, err := track.Features(ctx, feature, cfg.Defaults.AnnotBeats, cfg.Defaults.Framesync)
		if err != nil {
			return err
		}

		opts := runner.BatchOptions{
			Feature:    feature,
			AnnotBeats: cfg.Defaults.AnnotBeats,
			Framesync:  cfg.Defaults.Framesync,
			Hier:       batchHier,
			Features:   feats,
			Workers:    workers,
		}
		for _, b := range batchBoundaries {
			opts.Boundaries = append(opts.Boundaries, algorithms.ParseBoundarySource(b))
		}
		for _, l := range batchLabels {
			opts.Labels = append(opts.Labels, algorithms.ParseLabelSource(l))
		}

		r := &runner.Runner{
			Mux:           m,
			Logger:        globalLogger,
			MinimumFrames: cfg.Defaults.MinimumFrames,
			Annotator:     batchAnnotator,
		}
		outcomes, err := r.Batch(ctx, track, opts)
		if err != nil {
			return err
		}

		rows := make(batchRows, len(outcomes))
		for i, o := range outcomes {
			rows[i] = batchRow{
				RunID:      o.RunID,
				Boundaries: o.Pair.Boundaries,
				Labels:     o.Pair.Labels,
				ElapsedMS:  o.Elapsed.Milliseconds(),
			}
			if o.Err != nil {
				rows[i].Error = o.Err.Error()
			} else {
				rows[i].Result = &o.Result
			}
		}
		return output(cmd, rows)
	},
}

type batchRows []batchRow

// Table renders one row per pair followed by a summary line. Failed pairs
// use the error style.
func (rows batchRows) Table(s cli.Styles) string {
	cells := make([][]string, len(rows))
	failed := 0
	for i, r := range rows {
		levels, segs := "-", "-"
		if r.Result != nil {
			levels = strconv.Itoa(len(r.Result.Levels))
			first, _ := r.Result.First()
			segs = strconv.Itoa(first.Segments())
		} else {
			failed++
		}
		pair := runner.Pair{Boundaries: r.Boundaries, Labels: r.Labels}
		elapsed := time.Duration(r.ElapsedMS) * time.Millisecond
		cells[i] = []string{pair.String(), levels, segs, cli.FormatDuration(elapsed), r.Error}
	}

	var b strings.Builder
	b.WriteString(s.Table([]string{"PAIR", "LEVELS", "SEGMENTS", "ELAPSED", "ERROR"}, cells,
		func(row int) bool { return rows[row].Error != "" }))
	b.WriteByte('\n')
	if failed > 0 {
		cli.PrintWarning(&b, "%d of %d pairs failed", failed, len(rows))
	} else {
		cli.PrintSuccess(&b, "%d pairs succeeded", len(rows))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func init() {
	batchCmd.Flags().StringSliceVar(&batchBoundaries, "boundaries", nil, `boundary sources (default "gt" and every boundary algorithm)`)
	batchCmd.Flags().StringSliceVar(&batchLabels, "labels", nil, `label sources (default "none" and every labeler)`)
	batchCmd.Flags().StringVar(&batchFeature, "feature", "", "feature family (default from settings)")
	batchCmd.Flags().BoolVar(&batchHier, "hier", false, "hierarchical segmentation")
	batchCmd.Flags().IntVar(&batchAnnotator, "annotator", 0, "reference annotator used for ground truth")
	batchCmd.Flags().IntVar(&batchWorkers, "workers", 0, "pairs run at once (default from settings, then GOMAXPROCS)")
	rootCmd.AddCommand(batchCmd)
}
