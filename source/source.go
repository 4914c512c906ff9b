// Package source loads a subject's recording as a single-channel waveform and
// derives the analysis frame geometry for it.
package source

import (
	"math"

	"github.com/RyanBlaney/sonido-phonon/errs"
	"github.com/RyanBlaney/sonido-phonon/logging"
	"github.com/RyanBlaney/sonido-phonon/transcode"
)

// Recording is one subject's waveform together with its frame geometry.
type Recording struct {
	Waveform   []float64
	SampleRate int
	FrameSize  int // samples per analysis window
	HopSize    int // samples between consecutive windows
	Channels   int // channel count of the source file; only channel 0 is kept
}

// Source loads recordings through a transcode.Decoder.
type Source struct {
	decoder transcode.Decoder
	logger  logging.Logger
}

// New creates a Source. A nil decoder falls back to transcode.NewAutoDecoder.
func New(decoder transcode.Decoder) *Source {
	if decoder == nil {
		decoder = transcode.NewAutoDecoder(nil)
	}
	return &Source{
		decoder: decoder,
		logger: logging.WithFields(logging.Fields{
			"component": "audio_source",
		}),
	}
}

// Load decodes path and returns its first channel with frame and hop sizes
// derived from the window and hop durations in seconds.
func (s *Source) Load(path string, hopSeconds, windowSeconds float64) (*Recording, error) {
	audio, err := s.decoder.DecodeFile(path)
	if err != nil {
		return nil, errs.Loadf("decode %s: %w", path, err)
	}
	if audio.SampleRate <= 0 {
		return nil, errs.Loadf("%s reports sample rate %d", path, audio.SampleRate)
	}
	if audio.Frames() == 0 {
		return nil, errs.Loadf("%s has no audio samples", path)
	}

	frameSize, hopSize, err := Geometry(audio.SampleRate, hopSeconds, windowSeconds)
	if err != nil {
		return nil, err
	}

	if audio.Channels > 1 {
		s.logger.Debug("Using first channel of multi-channel recording", logging.Fields{
			"path":     path,
			"channels": audio.Channels,
		})
	}

	return &Recording{
		Waveform:   transcode.FirstChannel(audio.PCM, audio.Channels),
		SampleRate: audio.SampleRate,
		FrameSize:  frameSize,
		HopSize:    hopSize,
		Channels:   audio.Channels,
	}, nil
}

// Geometry converts durations to sample counts with round(duration * rate).
// Either size rounding below one sample is a configuration error.
func Geometry(sampleRate int, hopSeconds, windowSeconds float64) (frameSize, hopSize int, err error) {
	frameSize = int(math.Round(windowSeconds * float64(sampleRate)))
	hopSize = int(math.Round(hopSeconds * float64(sampleRate)))

	if frameSize < 1 {
		return 0, 0, errs.Configurationf("window %gs at %d Hz gives frame size %d", windowSeconds, sampleRate, frameSize)
	}
	if hopSize < 1 {
		return 0, 0, errs.Configurationf("hop %gs at %d Hz gives hop size %d", hopSeconds, sampleRate, hopSize)
	}
	return frameSize, hopSize, nil
}
