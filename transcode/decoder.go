package transcode

import (
	"errors"
	"path/filepath"
	"strings"
	"time"

	"github.com/RyanBlaney/sonido-phonon/logging"
)

// AudioData represents decoded audio data
type AudioData struct {
	PCM        []float64     `json:"-"` // interleaved samples in [-1, 1]
	SampleRate int           `json:"sample_rate"`
	Channels   int           `json:"channels"`
	Duration   time.Duration `json:"duration"`
	Codec      string        `json:"codec,omitempty"`
}

// Frames returns the number of samples per channel
func (a *AudioData) Frames() int {
	if a.Channels <= 0 {
		return 0
	}
	return len(a.PCM) / a.Channels
}

// Decoder turns a recording on disk into PCM samples
type Decoder interface {
	DecodeFile(filename string) (*AudioData, error)
}

// DecoderConfig holds decoder configuration
type DecoderConfig struct {
	FFmpegPath  string        `toml:"ffmpeg_path"`  // Path to ffmpeg binary
	FFprobePath string        `toml:"ffprobe_path"` // Path to ffprobe binary
	Timeout     time.Duration `toml:"-"`            // Timeout for ffmpeg operations
}

// DefaultDecoderConfig returns default decoder configuration
func DefaultDecoderConfig() *DecoderConfig {
	return &DecoderConfig{
		FFmpegPath:  "ffmpeg",  // Assume in PATH
		FFprobePath: "ffprobe", // Assume in PATH
		Timeout:     60 * time.Second,
	}
}

// AutoDecoder reads integer PCM WAV natively and hands everything else,
// including float WAV, to ffmpeg
type AutoDecoder struct {
	wav      *WAVDecoder
	fallback Decoder
}

// NewAutoDecoder creates a decoder that picks a backend by file extension
func NewAutoDecoder(config *DecoderConfig) *AutoDecoder {
	return &AutoDecoder{
		wav:      NewWAVDecoder(),
		fallback: NewFFmpegDecoder(config),
	}
}

func (d *AutoDecoder) DecodeFile(filename string) (*AudioData, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".wav", ".wave":
		audio, err := d.wav.DecodeFile(filename)
		if errors.Is(err, ErrUnsupportedWAVFormat) {
			logging.Debug("Handing non-PCM wav to ffmpeg", logging.Fields{
				"component": "auto_decoder",
				"filename":  filename,
			})
			return d.fallback.DecodeFile(filename)
		}
		return audio, err
	default:
		return d.fallback.DecodeFile(filename)
	}
}

// FirstChannel de-interleaves channel 0. Mono input is returned as is.
func FirstChannel(pcm []float64, channels int) []float64 {
	if channels <= 1 {
		return pcm
	}
	frames := len(pcm) / channels
	out := make([]float64, frames)
	for i := range frames {
		out[i] = pcm[i*channels]
	}
	return out
}

func durationOf(frames, sampleRate int) time.Duration {
	if sampleRate <= 0 {
		return 0
	}
	return time.Duration(frames) * time.Second / time.Duration(sampleRate)
}
