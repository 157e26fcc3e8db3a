package commands

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/haivivi/musicseg/pkg/algorithms"
	"github.com/haivivi/musicseg/pkg/algorithms/builtin"
	"github.com/haivivi/musicseg/pkg/algorithms/preset"
	"github.com/haivivi/musicseg/pkg/cli"
)

// ConfigEnv overrides the config file location.
const ConfigEnv = "MUSICSEG_CONFIG"

var (
	// Global flags
	verbose      bool
	configFile   string
	formatOutput string
	outputFile   string

	// Global state, rebuilt on every execution
	globalConfig  *cli.Config
	configLoadErr error
	globalMux     *algorithms.Mux
	globalLogger  *slog.Logger
	presetsLoaded []string
)

var rootCmd = &cobra.Command{
	Use:   "musicseg",
	Short: "Music structure analysis from precomputed features",
	Long: `musicseg - segment music tracks with boundary and labeling algorithms.

A run pairs a boundary source (an algorithm id, or "gt" for the reference
annotation) with a label source (an algorithm id, or "none"). Tracks are read
from a dataset of precomputed features and JAMS references, either a local
directory or an S3 bucket.

Configuration is stored in the OS config directory:
  macOS:   ~/Library/Application Support/musicseg/config.yaml
  Linux:   ~/.config/musicseg/config.yaml
  Windows: %AppData%/musicseg/config.yaml

Set MUSICSEG_CONFIG or pass --config to use another file.

Examples:
  musicseg algorithms
  musicseg config --boundaries foote --labels fmc2d
  musicseg run SALAMI_2 --boundaries sf --labels scluster -o json
  musicseg batch SALAMI_2 --workers 4`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. Cancelling ctx stops running algorithms.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is $"+ConfigEnv+" or the OS config directory)")
	rootCmd.PersistentFlags().StringVarP(&formatOutput, "output", "o", "table", "output format (table, yaml, json)")
	rootCmd.PersistentFlags().StringVar(&outputFile, "out-file", "", "write output to a file instead of stdout")
}

func initConfig() {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	globalLogger = slog.New(slog.NewTextHandler(rootCmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	globalMux = nil
	presetsLoaded = nil

	path := configFile
	if path == "" {
		path = os.Getenv(ConfigEnv)
	}
	globalConfig, configLoadErr = cli.LoadConfig(path)
}

// GetConfig returns the global configuration.
func GetConfig() (*cli.Config, error) {
	if configLoadErr != nil {
		return nil, fmt.Errorf("config not available: %w", configLoadErr)
	}
	return globalConfig, nil
}

// GetMux returns the algorithm registry: the bundled algorithms plus any
// presets found in the presets directory.
func GetMux() (*algorithms.Mux, error) {
	if globalMux != nil {
		return globalMux, nil
	}
	m := algorithms.NewMux()
	if err := builtin.Register(m); err != nil {
		return nil, err
	}

	dir, err := presetsDir()
	if err != nil {
		return nil, err
	}
	names, err := preset.LoadFromDir(m, dir)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		globalLogger.Debug("no presets directory", "dir", dir)
	case err != nil:
		return nil, fmt.Errorf("load presets: %w", err)
	default:
		globalLogger.Debug("loaded presets", "dir", dir, "names", names)
		presetsLoaded = names
	}
	globalMux = m
	return m, nil
}

func presetsDir() (string, error) {
	cfg, err := GetConfig()
	if err != nil {
		return "", err
	}
	if cfg.PresetsDir != "" {
		return cfg.Resolve(cfg.PresetsDir), nil
	}
	return filepath.Join(cfg.Dir(), "presets"), nil
}

// IsVerbose returns whether verbose mode is enabled.
func IsVerbose() bool {
	return verbose
}

func outputFormat() (cli.OutputFormat, error) {
	return cli.ParseFormat(formatOutput)
}

func output(cmd *cobra.Command, v any) error {
	f, err := outputFormat()
	if err != nil {
		return err
	}
	opts := cli.OutputOptions{Format: f, File: outputFile}
	if outputFile == "" {
		opts.Writer = cmd.OutOrStdout()
	}
	return cli.Output(v, opts)
}
