package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/RyanBlaney/sonido-phonon/algorithms/spectral"
	"github.com/RyanBlaney/sonido-phonon/errs"
)

// Paths holds the input root and the dataset output directory.
type Paths struct {
	DataDir   string `toml:"data_dir"`
	OutputDir string `toml:"output_dir"`
}

// Features fixes the frame geometry and transform for the whole run.
type Features struct {
	HopSeconds      float64             `toml:"hop_seconds"`
	WindowSeconds   float64             `toml:"window_seconds"`
	NumCoefficients int                 `toml:"num_coefficients"`
	MFCC            spectral.MFCCParams `toml:"mfcc"`
	Preprocess      Preprocess          `toml:"preprocess"`
}

// Preprocess configures filters applied to the whole recording before it is
// segmented. Zero disables a filter.
type Preprocess struct {
	PreEmphasis float64 `toml:"pre_emphasis"` // α in [0, 1)
	DCCutoffHz  float64 `toml:"dc_cutoff_hz"`
}

// Annotation configures label file parsing.
type Annotation struct {
	Separator string `toml:"separator"`
}

// Discovery holds the file name patterns matched inside each subject directory.
type Discovery struct {
	AudioPattern      string `toml:"audio_pattern"`
	AnnotationPattern string `toml:"annotation_pattern"`
	MetadataPattern   string `toml:"metadata_pattern"`
}

// Dataset configures the persisted per-phoneme files.
type Dataset struct {
	Mode                string `toml:"mode"`
	IncludeUnrecognized bool   `toml:"include_unrecognized"`
}

// Pipeline configures subject scheduling.
type Pipeline struct {
	Workers  int  `toml:"workers"`
	Progress bool `toml:"progress"`
}

// Decoder configures the ffmpeg fallback for non-WAV recordings.
type Decoder struct {
	FFmpegPath     string `toml:"ffmpeg_path"`
	FFprobePath    string `toml:"ffprobe_path"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Logging configures the global logger.
type Logging struct {
	Level string `toml:"level"`
	Color string `toml:"color"` // auto, always, never
}

// Config is the full run configuration.
type Config struct {
	Paths      Paths      `toml:"paths"`
	Features   Features   `toml:"features"`
	Annotation Annotation `toml:"annotation"`
	Discovery  Discovery  `toml:"discovery"`
	Dataset    Dataset    `toml:"dataset"`
	Pipeline   Pipeline   `toml:"pipeline"`
	Decoder    Decoder    `toml:"decoder"`
	Logging    Logging    `toml:"logging"`
}

const projectConfigName = "phonon.toml"

// DefaultConfigPath returns the per-user configuration file location.
func DefaultConfigPath() (string, error) {
	return ExpandPath("~/.config/phonon/config.toml")
}

// Load locates, parses, and validates a configuration file. With an empty
// path it tries ./phonon.toml, then the per-user file. A missing file is not
// an error; defaults are used and exists is false.
func Load(path string) (cfg *Config, resolvedPath string, exists bool, err error) {
	c := Default()

	resolvedPath, exists, err = resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, errs.Configurationf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&c); err != nil {
			return nil, "", false, errs.Configurationf("parse config %s: %w", resolvedPath, err)
		}
	}

	if err := c.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := c.Validate(); err != nil {
		return nil, "", false, err
	}

	return &c, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := ExpandPath(path)
		if err != nil {
			return "", false, errs.Configurationf("config path: %w", err)
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, errs.Configurationf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	projectPath, err := filepath.Abs(projectConfigName)
	if err != nil {
		return "", false, errs.Configurationf("config path: %w", err)
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, errs.Configurationf("config path: %w", err)
	}
	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}

	return defaultPath, false, nil
}

// Encode renders the configuration as TOML.
func (c *Config) Encode() ([]byte, error) {
	return toml.Marshal(c)
}

// ExpandPath resolves a leading tilde and makes pathValue absolute. An empty
// value stays empty.
func ExpandPath(pathValue string) (string, error) {
	if strings.TrimSpace(pathValue) == "" {
		return "", nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	absolute, err := filepath.Abs(filepath.Clean(pathValue))
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", pathValue, err)
	}
	return absolute, nil
}
