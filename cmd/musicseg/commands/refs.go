package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/haivivi/musicseg/pkg/annotations"
	"github.com/haivivi/musicseg/pkg/cli"
)

var refsCmd = &cobra.Command{
	Use:   "refs",
	Short: "Manage the reference annotation database",
	Long: `Copy reference annotations out of the dataset into a Badger database, and
inspect it. "musicseg run --refs DB_DIR" reads ground truth from it.

Examples:
  musicseg refs import ./refs SALAMI_2 SALAMI_4
  musicseg refs import ./refs
  musicseg refs list ./refs
  musicseg refs list ./refs SALAMI_2 -o json`,
}

var refsImportCmd = &cobra.Command{
	Use:   "import DB_DIR [TRACK...]",
	Short: "Copy dataset references into the database",
	Long: `Copy the references of the named tracks into the database. Without
track names every track of the dataset is imported.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := GetConfig()
		if err != nil {
			return err
		}
		ds, err := cfg.OpenDataset()
		if err != nil {
			return err
		}
		db, err := annotations.NewBadger(annotations.BadgerOptions{Dir: args[0], Logger: globalLogger})
		if err != nil {
			return err
		}
		defer db.Close()

		ctx := cmd.Context()
		tracks := args[1:]
		if len(tracks) == 0 {
			if tracks, err = ds.Tracks(ctx); err != nil {
				return err
			}
		}
		out := cmd.OutOrStdout()
		for _, name := range tracks {
			n, err := annotations.Import(ctx, db, ds.Track(name).References(ctx))
			if err != nil {
				return fmt.Errorf("import %s: %w", name, err)
			}
			if n == 0 {
				cli.PrintWarning(out, "%s: no references", name)
				continue
			}
			cli.PrintSuccess(out, "%s: imported %d references", name, n)
		}
		return nil
	},
}

var refsListCmd = &cobra.Command{
	Use:   "list DB_DIR [TRACK]",
	Short: "List references in the database",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := annotations.NewBadger(annotations.BadgerOptions{Dir: args[0], Logger: globalLogger})
		if err != nil {
			return err
		}
		defer db.Close()

		ctx := cmd.Context()
		tracks := args[1:]
		if len(tracks) == 0 {
			if tracks, err = db.Tracks(ctx); err != nil {
				return err
			}
		}

		var refs refList
		for _, track := range tracks {
			for ref, err := range db.List(ctx, track) {
				if err != nil {
					return err
				}
				refs = append(refs, ref)
			}
		}

		return output(cmd, refs)
	},
}

type refList []*annotations.Reference

func (l refList) Table(s cli.Styles) string {
	if len(l) == 0 {
		return "No references"
	}
	rows := make([][]string, 0, len(l))
	for _, ref := range l {
		end := "-"
		if n := len(ref.Times); n > 0 {
			end = cli.FormatTimestamp(ref.Times[n-1])
		}
		rows = append(rows, []string{
			ref.Track,
			strconv.Itoa(ref.Annotator),
			strconv.Itoa(ref.Segments()),
			end,
			strings.Join(ref.Labels, " "),
		})
	}
	return s.Table([]string{"TRACK", "ANNOTATOR", "SEGMENTS", "END", "LABELS"}, rows, nil)
}

func init() {
	refsCmd.AddCommand(refsImportCmd)
	refsCmd.AddCommand(refsListCmd)
	rootCmd.AddCommand(refsCmd)
}
