package commands

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/haivivi/musicseg/pkg/algorithms"
	"github.com/haivivi/musicseg/pkg/cli"
)

type algorithmInfo struct {
	ID           string                  `json:"id" yaml:"id"`
	Capabilities algorithms.Capabilities `json:"capabilities" yaml:"capabilities"`
	Defaults     algorithms.Params       `json:"defaults,omitempty" yaml:"defaults,omitempty"`
	Preset       bool                    `json:"preset,omitempty" yaml:"preset,omitempty"`
}

var algorithmsCmd = &cobra.Command{
	Use:     "algorithms",
	Aliases: []string{"algos", "ls"},
	Short:   "List registered algorithms",
	Long: `List every registered algorithm with its roles and default hyperparameters.

Presets loaded from the presets directory are listed alongside the bundled
algorithms.

Examples:
  musicseg algorithms
  musicseg algorithms -o json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := GetMux()
		if err != nil {
			return err
		}

		var infos algorithmList
		for _, id := range m.IDs() {
			caps, _ := m.Capabilities(id)
			defaults, _ := m.Defaults(id)
			infos = append(infos, algorithmInfo{
				ID:           id,
				Capabilities: caps,
				Defaults:     defaults,
				Preset:       slices.Contains(presetsLoaded, id),
			})
		}

		return output(cmd, infos)
	},
}

type algorithmList []algorithmInfo

func (l algorithmList) Table(s cli.Styles) string {
	rows := make([][]string, 0, len(l))
	presets := false
	for _, info := range l {
		id := info.ID
		if info.Preset {
			id += " *"
			presets = true
		}
		rows = append(rows, []string{id, info.Capabilities.String(), formatParams(info.Defaults)})
	}
	out := s.Table([]string{"ID", "ROLES", "DEFAULTS"}, rows, nil)
	if presets {
		out += "\n" + s.Help.Render("* preset")
	}
	return out
}

// formatParams renders params as sorted key=value pairs.
func formatParams(p algorithms.Params) string {
	keys := p.Keys()
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, p[k]))
	}
	return strings.Join(parts, " ")
}

func init() {
	rootCmd.AddCommand(algorithmsCmd)
}
