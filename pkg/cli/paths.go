package cli

import (
	"os"
	"path/filepath"
)

// Paths provides access to the musicseg directory structure
type Paths struct {
	// AppName is the application name
	AppName string

	// ConfigDir is the user's configuration directory
	ConfigDir string
}

// NewPaths creates a new Paths instance for the given app
func NewPaths(appName string) (*Paths, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return nil, err
	}
	return &Paths{
		AppName:   appName,
		ConfigDir: dir,
	}, nil
}

// AppDir returns the app-specific directory (<config dir>/<app>)
func (p *Paths) AppDir() string {
	return filepath.Join(p.ConfigDir, p.AppName)
}

// ConfigFile returns the config file path (<config dir>/<app>/config.yaml)
func (p *Paths) ConfigFile() string {
	return filepath.Join(p.AppDir(), DefaultConfigFile)
}

// PresetsDir returns the default presets directory (<config dir>/<app>/presets)
func (p *Paths) PresetsDir() string {
	return filepath.Join(p.AppDir(), "presets")
}

// EnsureAppDir creates the app directory if it doesn't exist
func (p *Paths) EnsureAppDir() error {
	return os.MkdirAll(p.AppDir(), 0755)
}
