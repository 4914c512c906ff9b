package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"github.com/RyanBlaney/sonido-phonon/errs"
)

func writeConfig(t *testing.T, path, body string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.normalize(); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if cfg.Features.NumCoefficients != 13 || cfg.Features.MFCC.NumMelFilters != 32 {
		t.Fatalf("unexpected feature defaults %+v", cfg.Features)
	}
	if cfg.Annotation.Separator != "\t" {
		t.Fatalf("separator = %q", cfg.Annotation.Separator)
	}
}

func TestLoadMissingExplicitPathUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.toml")
	cfg, resolved, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if exists {
		t.Fatal("exists = true for a missing file")
	}
	if resolved != path {
		t.Fatalf("resolved = %q, want %q", resolved, path)
	}
	if cfg.Pipeline.Workers != 1 || cfg.Dataset.Mode != "append" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
}

func TestLoadOverridesAndExpandsHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path := filepath.Join(t.TempDir(), "phonon.toml")
	writeConfig(t, path, `
[paths]
data_dir = "~/recordings"
output_dir = "~/mfcc"

[features]
hop_seconds = 0.005
num_coefficients = 20

[features.mfcc]
num_mel_filters = 40

[dataset]
mode = "Truncate"

[pipeline]
workers = 4
`)

	cfg, _, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists {
		t.Fatal("exists = false")
	}
	if cfg.Paths.DataDir != filepath.Join(home, "recordings") {
		t.Fatalf("data_dir = %q", cfg.Paths.DataDir)
	}
	if cfg.Paths.OutputDir != filepath.Join(home, "mfcc") {
		t.Fatalf("output_dir = %q", cfg.Paths.OutputDir)
	}
	if cfg.Features.HopSeconds != 0.005 || cfg.Features.WindowSeconds != 0.02 {
		t.Fatalf("features = %+v", cfg.Features)
	}
	if cfg.Features.NumCoefficients != 20 || cfg.Features.MFCC.NumMelFilters != 40 {
		t.Fatalf("features = %+v", cfg.Features)
	}
	if cfg.Features.MFCC.Window != "hann" {
		t.Fatalf("mfcc window default lost: %q", cfg.Features.MFCC.Window)
	}
	if cfg.Dataset.Mode != "truncate" || cfg.Pipeline.Workers != 4 {
		t.Fatalf("dataset/pipeline = %+v %+v", cfg.Dataset, cfg.Pipeline)
	}
}

func TestLoadFindsProjectConfig(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()
	t.Chdir(dir)
	writeConfig(t, filepath.Join(dir, projectConfigName), "[pipeline]\nworkers = 2\n")

	cfg, resolved, exists, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists || filepath.Base(resolved) != projectConfigName {
		t.Fatalf("resolved = %q exists = %v", resolved, exists)
	}
	if cfg.Pipeline.Workers != 2 {
		t.Fatalf("workers = %d", cfg.Pipeline.Workers)
	}
}

func TestLoadFindsUserConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Chdir(t.TempDir())
	writeConfig(t, filepath.Join(home, ".config", "phonon", "config.toml"), "[logging]\nlevel = \"DEBUG\"\n")

	cfg, _, exists, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists || cfg.Logging.Level != "debug" {
		t.Fatalf("exists = %v level = %q", exists, cfg.Logging.Level)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "phonon.toml")
	writeConfig(t, path, "[features]\nhop_ms = 10\n")
	if _, _, _, err := Load(path); !errors.Is(err, errs.ErrConfiguration) {
		t.Fatalf("err = %v, want ErrConfiguration", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"zero hop", func(c *Config) { c.Features.HopSeconds = 0 }, "hop_seconds"},
		{"negative window", func(c *Config) { c.Features.WindowSeconds = -1 }, "window_seconds"},
		{"one coefficient", func(c *Config) { c.Features.NumCoefficients = 1 }, "num_coefficients"},
		{"too many coefficients", func(c *Config) { c.Features.NumCoefficients = 33 }, "exceeds"},
		{"pre-emphasis of one", func(c *Config) { c.Features.Preprocess.PreEmphasis = 1 }, "pre_emphasis"},
		{"negative dc cutoff", func(c *Config) { c.Features.Preprocess.DCCutoffHz = -5 }, "dc_cutoff_hz"},
		{"bad window", func(c *Config) { c.Features.MFCC.Window = "kaiser" }, "mfcc.window"},
		{"bad pattern", func(c *Config) { c.Discovery.AudioPattern = "([" }, "audio_pattern"},
		{"bad mode", func(c *Config) { c.Dataset.Mode = "overwrite" }, "dataset mode"},
		{"no workers", func(c *Config) { c.Pipeline.Workers = 0 }, "workers"},
		{"bad level", func(c *Config) { c.Logging.Level = "loud" }, "logging.level"},
		{"bad color", func(c *Config) { c.Logging.Color = "sometimes" }, "logging.color"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if !errors.Is(err, errs.ErrConfiguration) {
				t.Fatalf("err = %v, want ErrConfiguration", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("err = %q, want mention of %q", err, tt.want)
			}
		})
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	cfg := Default()
	data, err := cfg.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	var decoded Config
	if err := toml.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if decoded.Discovery != cfg.Discovery || decoded.Features != cfg.Features {
		t.Fatalf("decoded = %+v", decoded)
	}
}
