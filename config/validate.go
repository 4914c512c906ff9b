package config

import (
	"regexp"

	"github.com/RyanBlaney/sonido-phonon/dataset"
	"github.com/RyanBlaney/sonido-phonon/errs"
	"github.com/RyanBlaney/sonido-phonon/logging"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateFeatures(); err != nil {
		return err
	}
	if err := c.validateDiscovery(); err != nil {
		return err
	}
	if _, err := dataset.ParseMode(c.Dataset.Mode); err != nil {
		return err
	}
	if c.Pipeline.Workers < 1 {
		return errs.Configurationf("pipeline.workers must be at least 1, got %d", c.Pipeline.Workers)
	}
	if c.Decoder.TimeoutSeconds < 0 {
		return errs.Configurationf("decoder.timeout_seconds must not be negative")
	}
	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		return errs.Configurationf("logging.level: %w", err)
	}
	switch c.Logging.Color {
	case "auto", "always", "never":
	default:
		return errs.Configurationf("logging.color must be auto, always or never, got %q", c.Logging.Color)
	}
	if c.Paths.OutputDir == "" {
		return errs.Configurationf("paths.output_dir is required")
	}
	return nil
}

func (c *Config) validateFeatures() error {
	f := c.Features
	if f.HopSeconds <= 0 {
		return errs.Configurationf("features.hop_seconds must be positive, got %g", f.HopSeconds)
	}
	if f.WindowSeconds <= 0 {
		return errs.Configurationf("features.window_seconds must be positive, got %g", f.WindowSeconds)
	}
	if f.NumCoefficients < 2 {
		return errs.Configurationf("features.num_coefficients must be at least 2, got %d", f.NumCoefficients)
	}
	melFilters := f.MFCC.NumMelFilters
	if melFilters <= 0 {
		return errs.Configurationf("features.mfcc.num_mel_filters must be positive, got %d", melFilters)
	}
	if f.NumCoefficients > melFilters {
		return errs.Configurationf("features.num_coefficients (%d) exceeds features.mfcc.num_mel_filters (%d)", f.NumCoefficients, melFilters)
	}
	if f.Preprocess.PreEmphasis < 0 || f.Preprocess.PreEmphasis >= 1 {
		return errs.Configurationf("features.preprocess.pre_emphasis must be in [0, 1), got %g", f.Preprocess.PreEmphasis)
	}
	if f.Preprocess.DCCutoffHz < 0 {
		return errs.Configurationf("features.preprocess.dc_cutoff_hz must not be negative, got %g", f.Preprocess.DCCutoffHz)
	}
	switch f.MFCC.Window {
	case "", "hann", "hamming":
	default:
		return errs.Configurationf("features.mfcc.window must be hann or hamming, got %q", f.MFCC.Window)
	}
	return nil
}

func (c *Config) validateDiscovery() error {
	patterns := map[string]string{
		"discovery.audio_pattern":      c.Discovery.AudioPattern,
		"discovery.annotation_pattern": c.Discovery.AnnotationPattern,
		"discovery.metadata_pattern":   c.Discovery.MetadataPattern,
	}
	for key, pattern := range patterns {
		if pattern == "" {
			return errs.Configurationf("%s is required", key)
		}
		if _, err := regexp.Compile(pattern); err != nil {
			return errs.Configurationf("%s: %w", key, err)
		}
	}
	return nil
}
