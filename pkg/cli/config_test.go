package cli

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/haivivi/musicseg/pkg/dataset"
)

func TestMaskSecret(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"", ""},
		{"1234", "****"},
		{"12345678", "********"},
		{"123456789", "1234*6789"},
		{"abcdefghij", "abcd**ghij"},
		{"AKIA1234567890abcdef", "AKIA************cdef"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got := MaskSecret(tt.key)
			if got != tt.want {
				t.Errorf("MaskSecret(%q) = %q, want %q", tt.key, got, tt.want)
			}
		})
	}
}

func TestLoadConfig_Missing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "musicseg", "config.yaml")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig error: %v", err)
	}
	if cfg.Path() != path {
		t.Errorf("Path() = %q, want %q", cfg.Path(), path)
	}
	if cfg.Defaults.Feature != DefaultFeature {
		t.Errorf("Defaults.Feature = %q, want %q", cfg.Defaults.Feature, DefaultFeature)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("LoadConfig should not create the file, stat error = %v", err)
	}
}

func TestLoadConfig_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := `dataset:
  root: salami
defaults:
  feature: mfcc
  framesync: true
  minimum_frames: 20
  workers: 4
presets_dir: presets
refs_db: /var/lib/musicseg/refs
`
	if err := os.WriteFile(path, []byte(data), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig error: %v", err)
	}
	want := Defaults{Feature: "mfcc", Framesync: true, MinimumFrames: 20, Workers: 4}
	if diff := cmp.Diff(want, cfg.Defaults); diff != "" {
		t.Errorf("Defaults mismatch (-want +got):\n%s", diff)
	}
	if got := cfg.Resolve(cfg.PresetsDir); got != filepath.Join(dir, "presets") {
		t.Errorf("Resolve(presets) = %q", got)
	}
	if got := cfg.RefsDBDir(); got != "/var/lib/musicseg/refs" {
		t.Errorf("RefsDBDir() = %q", got)
	}

	store, err := cfg.FileStore()
	if err != nil {
		t.Fatalf("FileStore error: %v", err)
	}
	local, ok := store.(*dataset.Local)
	if !ok || local.Root() != filepath.Join(dir, "salami") {
		t.Errorf("FileStore() = %#v, want Local at salami", store)
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	os.WriteFile(path, []byte("dataset: [unclosed"), 0600)
	if _, err := LoadConfig(path); err == nil {
		t.Fatal("LoadConfig should fail on invalid YAML")
	}
}

func TestConfig_Persistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg, _ := LoadConfig(path)
	cfg.Dataset.S3 = &S3Config{Bucket: "msaf", Prefix: "salami", Region: "us-west-2"}
	cfg.Defaults.Workers = 8
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig error: %v", err)
	}
	if diff := cmp.Diff(cfg, loaded, cmpopts.IgnoreUnexported(Config{})); diff != "" {
		t.Errorf("round trip mismatch (-saved +loaded):\n%s", diff)
	}
	if loaded.Dir() != filepath.Dir(path) {
		t.Errorf("Dir() = %q", loaded.Dir())
	}
}

func TestConfig_RefsDBDirDefault(t *testing.T) {
	cfg, _ := LoadConfig(filepath.Join(t.TempDir(), "config.yaml"))
	if got, want := cfg.RefsDBDir(), filepath.Join(cfg.Dir(), "refs"); got != want {
		t.Errorf("RefsDBDir() = %q, want %q", got, want)
	}
}

func TestConfig_NoDataset(t *testing.T) {
	cfg, _ := LoadConfig(filepath.Join(t.TempDir(), "config.yaml"))
	if _, err := cfg.OpenDataset(); !errors.Is(err, ErrNoDataset) {
		t.Fatalf("OpenDataset() error = %v, want ErrNoDataset", err)
	}
}

func TestConfig_S3Dataset(t *testing.T) {
	cfg, _ := LoadConfig(filepath.Join(t.TempDir(), "config.yaml"))
	cfg.Dataset.S3 = &S3Config{Bucket: "msaf", Endpoint: "http://localhost:9000", AccessKeyID: "AKIA1234567890abcdef", SecretAccessKey: "secretsecret"}

	store, err := cfg.FileStore()
	if err != nil {
		t.Fatalf("FileStore error: %v", err)
	}
	if _, ok := store.(*dataset.S3Store); !ok {
		t.Fatalf("FileStore() = %T, want *dataset.S3Store", store)
	}

	creds, err := cfg.Dataset.S3.Retrieve(context.Background())
	if err != nil || creds.AccessKeyID != "AKIA1234567890abcdef" {
		t.Fatalf("Retrieve() = %+v, %v", creds, err)
	}

	masked := cfg.Masked()
	if strings.Contains(masked.Dataset.S3.SecretAccessKey, "secret") {
		t.Errorf("Masked() leaks secret: %q", masked.Dataset.S3.SecretAccessKey)
	}
	if cfg.Dataset.S3.SecretAccessKey != "secretsecret" {
		t.Error("Masked() modified the original config")
	}
}

func TestS3Config_EnvCredentials(t *testing.T) {
	t.Setenv("AWS_ACCESS_KEY_ID", "envkey")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "envsecret")
	creds, err := (&S3Config{Bucket: "b"}).Retrieve(context.Background())
	if err != nil || creds.AccessKeyID != "envkey" || creds.Source != "environment" {
		t.Fatalf("Retrieve() = %+v, %v", creds, err)
	}

	t.Setenv("AWS_ACCESS_KEY_ID", "")
	if _, err := (&S3Config{Bucket: "b"}).Retrieve(context.Background()); err == nil {
		t.Fatal("Retrieve() without credentials should fail")
	}
}
