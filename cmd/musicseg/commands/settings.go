package commands

import (
	"errors"
	"fmt"
	"maps"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/haivivi/musicseg/pkg/algorithms"
	"github.com/haivivi/musicseg/pkg/cli"
)

// runSettings selects an algorithm pair and its configuration. It is the
// shape of a request file; flags given on the command line win over it.
type runSettings struct {
	Boundaries string            `json:"boundaries" yaml:"boundaries"`
	Labels     string            `json:"labels" yaml:"labels"`
	Feature    string            `json:"feature" yaml:"feature"`
	AnnotBeats bool              `json:"annot_beats" yaml:"annot_beats"`
	Framesync  bool              `json:"framesync" yaml:"framesync"`
	Hier       bool              `json:"hier" yaml:"hier"`
	Annotator  int               `json:"annotator" yaml:"annotator"`
	Params     algorithms.Params `json:"params" yaml:"params"`
}

// runFlags binds runSettings to a command's flags.
type runFlags struct {
	flags  runSettings
	file   string
	params []string
}

func (f *runFlags) register(fs *pflag.FlagSet, withFile bool) {
	fs.StringVarP(&f.flags.Boundaries, "boundaries", "b", "", `boundary source: an algorithm id or "gt"`)
	fs.StringVarP(&f.flags.Labels, "labels", "l", "", `label source: an algorithm id or "none"`)
	fs.StringVar(&f.flags.Feature, "feature", "", "feature family (default from settings)")
	fs.BoolVar(&f.flags.AnnotBeats, "annot-beats", false, "use annotated beats")
	fs.BoolVar(&f.flags.Framesync, "framesync", false, "use frame-synchronous features")
	fs.BoolVar(&f.flags.Hier, "hier", false, "hierarchical segmentation")
	fs.StringArrayVarP(&f.params, "param", "p", nil, "override a hyperparameter (key=value, repeatable)")
	if withFile {
		fs.StringVarP(&f.file, "file", "f", "", "request YAML/JSON file (use '-' for stdin)")
		fs.IntVar(&f.flags.Annotator, "annotator", 0, "reference annotator used for ground truth")
	}
}

// settings merges the request file with the flags set on the command line.
// Configured defaults fill the feature, and the beat and frame sync options
// when there is no request file.
func (f *runFlags) settings(cmd *cobra.Command, cfg *cli.Config) (runSettings, error) {
	var s runSettings
	if f.file != "" {
		if err := cli.LoadRequest(f.file, &s); err != nil {
			return runSettings{}, err
		}
	}

	changed := cmd.Flags().Changed
	if changed("boundaries") {
		s.Boundaries = f.flags.Boundaries
	}
	if changed("labels") {
		s.Labels = f.flags.Labels
	}
	if changed("feature") {
		s.Feature = f.flags.Feature
	}
	if changed("annot-beats") {
		s.AnnotBeats = f.flags.AnnotBeats
	}
	if changed("framesync") {
		s.Framesync = f.flags.Framesync
	}
	if changed("hier") {
		s.Hier = f.flags.Hier
	}
	if changed("annotator") {
		s.Annotator = f.flags.Annotator
	}
	if len(f.params) > 0 {
		p, err := parseParams(f.params)
		if err != nil {
			return runSettings{}, err
		}
		if s.Params == nil {
			s.Params = algorithms.Params{}
		}
		maps.Copy(s.Params, p)
	}

	if s.Boundaries == "" {
		return runSettings{}, errors.New("boundary source is required (--boundaries or request file)")
	}
	if s.Feature == "" {
		s.Feature = cfg.Defaults.Feature
	}
	if f.file == "" && !changed("annot-beats") {
		s.AnnotBeats = cfg.Defaults.AnnotBeats
	}
	if f.file == "" && !changed("framesync") {
		s.Framesync = cfg.Defaults.Framesync
	}
	return s, nil
}

func (s runSettings) sources() (algorithms.BoundarySource, algorithms.LabelSource) {
	return algorithms.ParseBoundarySource(s.Boundaries), algorithms.ParseLabelSource(s.Labels)
}

// parseParams parses key=value pairs. Values are decoded as YAML scalars, so
// "66" is an int and "true" a bool.
func parseParams(kvs []string) (algorithms.Params, error) {
	p := algorithms.Params{}
	for _, kv := range kvs {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid param %q: want key=value", kv)
		}
		var val any
		if err := yaml.Unmarshal([]byte(v), &val); err != nil || val == nil {
			val = v
		}
		p[k] = val
	}
	return p, nil
}

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show the CLI settings",
	Long: `Show the loaded settings with secrets masked.

Examples:
  musicseg settings
  musicseg settings path`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := GetConfig()
		if err != nil {
			return err
		}
		return output(cmd, cfg.Masked())
	},
}

var settingsPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the settings file path",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := GetConfig()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), cfg.Path())
		return nil
	},
}

func init() {
	settingsCmd.AddCommand(settingsPathCmd)
	rootCmd.AddCommand(settingsCmd)
}
