package config

import (
	"strings"

	"github.com/RyanBlaney/sonido-phonon/annotation"
	"github.com/RyanBlaney/sonido-phonon/errs"
)

func (c *Config) normalize() error {
	var err error
	if c.Paths.DataDir, err = ExpandPath(c.Paths.DataDir); err != nil {
		return errs.Configurationf("paths.data_dir: %w", err)
	}
	if c.Paths.OutputDir, err = ExpandPath(c.Paths.OutputDir); err != nil {
		return errs.Configurationf("paths.output_dir: %w", err)
	}

	if c.Annotation.Separator == "" {
		c.Annotation.Separator = annotation.DefaultSeparator
	}

	c.Dataset.Mode = strings.ToLower(strings.TrimSpace(c.Dataset.Mode))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Logging.Color = strings.ToLower(strings.TrimSpace(c.Logging.Color))
	if c.Logging.Color == "" {
		c.Logging.Color = "auto"
	}
	if strings.TrimSpace(c.Decoder.FFmpegPath) == "" {
		c.Decoder.FFmpegPath = "ffmpeg"
	}
	if strings.TrimSpace(c.Decoder.FFprobePath) == "" {
		c.Decoder.FFprobePath = "ffprobe"
	}
	return nil
}
