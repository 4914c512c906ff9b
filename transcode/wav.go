package transcode

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-audio/wav"

	"github.com/RyanBlaney/sonido-phonon/logging"
)

// wavFormatPCM is the integer PCM format tag of the fmt chunk.
const wavFormatPCM = 1

// ErrUnsupportedWAVFormat is returned for WAV files whose samples are not
// integer PCM, such as IEEE float (format 3) or WAVE_FORMAT_EXTENSIBLE.
var ErrUnsupportedWAVFormat = errors.New("unsupported wav sample format")

// WAVDecoder reads integer PCM WAV files through go-audio/wav
type WAVDecoder struct{}

// NewWAVDecoder creates a WAV decoder
func NewWAVDecoder() *WAVDecoder {
	return &WAVDecoder{}
}

// DecodeFile decodes a PCM WAV file and scales samples to [-1, 1]
func (d *WAVDecoder) DecodeFile(filename string) (*AudioData, error) {
	logger := logging.WithFields(logging.Fields{
		"component": "wav_decoder",
		"function":  "DecodeFile",
		"filename":  filename,
	})

	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("open wav: %w", err)
	}
	defer f.Close()

	decoder := wav.NewDecoder(f)
	if !decoder.IsValidFile() {
		return nil, fmt.Errorf("%s is not a valid wav file", filename)
	}
	if decoder.WavAudioFormat != wavFormatPCM {
		return nil, fmt.Errorf("%s: format tag %d: %w", filename, decoder.WavAudioFormat, ErrUnsupportedWAVFormat)
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("read pcm buffer: %w", err)
	}
	if buf == nil || buf.Format == nil {
		return nil, fmt.Errorf("wav file %s has no format chunk", filename)
	}

	bitDepth := int(decoder.BitDepth)
	if buf.SourceBitDepth > 0 {
		bitDepth = buf.SourceBitDepth
	}
	if bitDepth <= 0 || bitDepth > 32 {
		return nil, fmt.Errorf("unsupported bit depth %d", bitDepth)
	}

	channels := buf.Format.NumChannels
	if channels <= 0 {
		channels = 1
	}

	pcm := scaleInts(buf.Data, bitDepth)

	logger.Debug("WAV decoded", logging.Fields{
		"sample_rate": buf.Format.SampleRate,
		"channels":    channels,
		"bit_depth":   bitDepth,
		"samples":     len(pcm),
	})

	return &AudioData{
		PCM:        pcm,
		SampleRate: buf.Format.SampleRate,
		Channels:   channels,
		Duration:   durationOf(len(pcm)/channels, buf.Format.SampleRate),
		Codec:      fmt.Sprintf("pcm_s%d", bitDepth),
	}, nil
}

// scaleInts maps signed integer PCM to [-1, 1]. 8-bit WAV is unsigned.
func scaleInts(data []int, bitDepth int) []float64 {
	out := make([]float64, len(data))
	if bitDepth == 8 {
		for i, v := range data {
			out[i] = float64(v-128) / 128.0
		}
		return out
	}

	full := float64(int64(1) << (bitDepth - 1))
	for i, v := range data {
		out[i] = float64(v) / full
	}
	return out
}
