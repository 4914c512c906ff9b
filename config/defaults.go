package config

import (
	"github.com/RyanBlaney/sonido-phonon/algorithms/spectral"
	"github.com/RyanBlaney/sonido-phonon/annotation"
	"github.com/RyanBlaney/sonido-phonon/features"
)

// Default discovery patterns: the pre-session recording, its label file and
// the subject's biodata record.
const (
	DefaultAudioPattern      = `^.+before.+[.]wav$`
	DefaultAnnotationPattern = `^.+before.+[.]anote[.]txt$`
	DefaultMetadataPattern   = `^.+[.]json$`
)

// Default returns the configuration the datasets were originally built with:
// 10 ms hop, 20 ms window, 13 coefficients over 32 mel filters.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:   "data",
			OutputDir: "mfcc_data",
		},
		Features: Features{
			HopSeconds:      0.010,
			WindowSeconds:   0.020,
			NumCoefficients: features.DefaultCoefficients,
			MFCC:            spectral.DefaultMFCCParams(),
		},
		Annotation: Annotation{
			Separator: annotation.DefaultSeparator,
		},
		Discovery: Discovery{
			AudioPattern:      DefaultAudioPattern,
			AnnotationPattern: DefaultAnnotationPattern,
			MetadataPattern:   DefaultMetadataPattern,
		},
		Dataset: Dataset{
			Mode: "append",
		},
		Pipeline: Pipeline{
			Workers: 1,
		},
		Decoder: Decoder{
			FFmpegPath:     "ffmpeg",
			FFprobePath:    "ffprobe",
			TimeoutSeconds: 60,
		},
		Logging: Logging{
			Level: "info",
			Color: "auto",
		},
	}
}
