package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/goccy/go-yaml"

	"github.com/haivivi/musicseg/pkg/annotations"
	"github.com/haivivi/musicseg/pkg/dataset"
)

const (
	// AppName is the application name used for the configuration directory.
	AppName = "musicseg"
	// DefaultConfigFile is the default configuration filename
	DefaultConfigFile = "config.yaml"
	// DefaultFeature is the feature family used when none is configured.
	DefaultFeature = "pcp"
)

// ErrNoDataset is returned when the configuration names no dataset.
var ErrNoDataset = errors.New("cli: no dataset configured")

// Config is the musicseg application configuration.
type Config struct {
	// Dataset locates the dataset files.
	Dataset DatasetConfig `yaml:"dataset"`

	// Defaults are the run settings used when flags are not given.
	Defaults Defaults `yaml:"defaults"`

	// PresetsDir holds algorithm preset files registered at startup.
	PresetsDir string `yaml:"presets_dir,omitempty"`

	// RefsDB is the directory of the reference annotation database.
	RefsDB string `yaml:"refs_db,omitempty"`

	// configPath is the path to the config file
	configPath string
}

// DatasetConfig selects a local or S3 dataset. Root wins if both are set.
type DatasetConfig struct {
	Root string    `yaml:"root,omitempty"`
	S3   *S3Config `yaml:"s3,omitempty"`
}

// S3Config locates a dataset in an S3-compatible bucket. Credentials fall
// back to the AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY and AWS_SESSION_TOKEN
// environment variables.
type S3Config struct {
	Bucket          string `yaml:"bucket"`
	Prefix          string `yaml:"prefix,omitempty"`
	Region          string `yaml:"region,omitempty"`
	Endpoint        string `yaml:"endpoint,omitempty"`
	AccessKeyID     string `yaml:"access_key_id,omitempty"`
	SecretAccessKey string `yaml:"secret_access_key,omitempty"`
}

// Defaults are the default run settings.
type Defaults struct {
	Feature       string `yaml:"feature,omitempty"`
	AnnotBeats    bool   `yaml:"annot_beats,omitempty"`
	Framesync     bool   `yaml:"framesync,omitempty"`
	MinimumFrames int    `yaml:"minimum_frames,omitempty"`
	Workers       int    `yaml:"workers,omitempty"`
}

// LoadConfig loads the configuration from path, or from the default location
// if path is empty. A missing file yields the default configuration.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		paths, err := NewPaths(AppName)
		if err != nil {
			return nil, fmt.Errorf("failed to get config directory: %w", err)
		}
		path = paths.ConfigFile()
	}

	cfg := &Config{configPath: path}
	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, fmt.Errorf("failed to read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}
	cfg.configPath = path
	if cfg.Defaults.Feature == "" {
		cfg.Defaults.Feature = DefaultFeature
	}
	return cfg, nil
}

// Save writes the configuration to its path, creating the directory.
func (c *Config) Save() error {
	if err := os.MkdirAll(c.Dir(), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(c.configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Path returns the config file path
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the config directory path
func (c *Config) Dir() string {
	return filepath.Dir(c.configPath)
}

// Resolve returns p made absolute against the config directory. Empty
// paths stay empty.
func (c *Config) Resolve(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	if strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, p[2:])
		}
	}
	return filepath.Join(c.Dir(), p)
}

// RefsDBDir returns the reference database directory, defaulting to a
// directory next to the config file.
func (c *Config) RefsDBDir() string {
	if c.RefsDB != "" {
		return c.Resolve(c.RefsDB)
	}
	return filepath.Join(c.Dir(), "refs")
}

// FileStore opens the configured dataset storage.
func (c *Config) FileStore() (dataset.FileStore, error) {
	switch {
	case c.Dataset.Root != "":
		return dataset.NewLocal(c.Resolve(c.Dataset.Root))
	case c.Dataset.S3 != nil:
		s := c.Dataset.S3
		return dataset.NewS3FromConfig(s.awsConfig(), dataset.S3Options{
			Bucket:   s.Bucket,
			Prefix:   s.Prefix,
			Region:   s.Region,
			Endpoint: s.Endpoint,
		})
	default:
		return nil, ErrNoDataset
	}
}

// OpenDataset opens the configured dataset.
func (c *Config) OpenDataset() (*dataset.Dataset, error) {
	store, err := c.FileStore()
	if err != nil {
		return nil, err
	}
	return dataset.New(store), nil
}

// OpenRefs opens the reference database on disk.
func (c *Config) OpenRefs(logger *slog.Logger) (*annotations.Badger, error) {
	return annotations.NewBadger(annotations.BadgerOptions{Dir: c.RefsDBDir(), Logger: logger})
}

func (s *S3Config) awsConfig() aws.Config {
	region := s.Region
	if region == "" {
		region = os.Getenv("AWS_REGION")
	}
	return aws.Config{
		Region:      region,
		Credentials: aws.NewCredentialsCache(s),
	}
}

// Retrieve implements aws.CredentialsProvider.
func (s *S3Config) Retrieve(context.Context) (aws.Credentials, error) {
	creds := aws.Credentials{
		AccessKeyID:     s.AccessKeyID,
		SecretAccessKey: s.SecretAccessKey,
		Source:          "musicseg config",
	}
	if creds.AccessKeyID == "" {
		creds = aws.Credentials{
			AccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
			SessionToken:    os.Getenv("AWS_SESSION_TOKEN"),
			Source:          "environment",
		}
	}
	if creds.AccessKeyID == "" || creds.SecretAccessKey == "" {
		return aws.Credentials{}, errors.New("cli: no s3 credentials in config or environment")
	}
	return creds, nil
}

// Masked returns a copy of c with secrets masked for display.
func (c *Config) Masked() *Config {
	m := *c
	if c.Dataset.S3 != nil {
		s3 := *c.Dataset.S3
		s3.AccessKeyID = MaskSecret(s3.AccessKeyID)
		s3.SecretAccessKey = MaskSecret(s3.SecretAccessKey)
		m.Dataset.S3 = &s3
	}
	return &m
}

// MaskSecret masks a secret for display
func MaskSecret(key string) string {
	if len(key) <= 8 {
		return strings.Repeat("*", len(key))
	}
	return key[:4] + strings.Repeat("*", len(key)-8) + key[len(key)-4:]
}
