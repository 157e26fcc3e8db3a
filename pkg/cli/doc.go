// Package cli provides common utilities for the musicseg command-line tool.
//
// This package includes:
//   - Application configuration (dataset location, run defaults, presets)
//   - Output formatting (JSON, YAML, styled tables)
//   - Request file loading (YAML/JSON)
//
// Configuration is stored in <user config dir>/musicseg/config.yaml. Relative
// paths in the file are resolved against its directory.
//
// Example usage:
//
//	cfg, err := cli.LoadConfig("")
//	ds, err := cfg.OpenDataset()
//
//	cli.Output(result, cli.OutputOptions{
//	    Format: cli.FormatJSON,
//	    File:   outputPath,
//	})
package cli
