package source

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/RyanBlaney/sonido-phonon/errs"
	"github.com/RyanBlaney/sonido-phonon/internal/testsupport"
	"github.com/RyanBlaney/sonido-phonon/transcode"
)

type stubDecoder struct {
	audio *transcode.AudioData
	err   error
}

func (s stubDecoder) DecodeFile(string) (*transcode.AudioData, error) {
	return s.audio, s.err
}

func TestGeometry(t *testing.T) {
	frame, hop, err := Geometry(16000, 0.01, 0.02)
	if err != nil {
		t.Fatalf("Geometry: %v", err)
	}
	if frame != 320 || hop != 160 {
		t.Fatalf("frame, hop = %d, %d, want 320, 160", frame, hop)
	}

	// 0.0104 * 44100 = 458.64 rounds up
	frame, hop, err = Geometry(44100, 0.0104, 0.02)
	if err != nil {
		t.Fatalf("Geometry: %v", err)
	}
	if frame != 882 || hop != 459 {
		t.Fatalf("frame, hop = %d, %d, want 882, 459", frame, hop)
	}
}

func TestGeometryZeroIsConfigurationError(t *testing.T) {
	tests := []struct {
		name        string
		hop, window float64
	}{
		{"hop", 0.00001, 0.02},
		{"window", 0.01, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Geometry(16000, tt.hop, tt.window)
			if !errors.Is(err, errs.ErrConfiguration) {
				t.Fatalf("err = %v, want ErrConfiguration", err)
			}
		})
	}
}

func TestLoadStereoKeepsFirstChannel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.wav")
	testsupport.WriteWAV(t, path, 8000, 2, []int{100, -5, 200, -5, 300, -5})

	rec, err := New(nil).Load(path, 0.01, 0.02)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if rec.Channels != 2 || len(rec.Waveform) != 3 {
		t.Fatalf("channels=%d len=%d, want 2 and 3", rec.Channels, len(rec.Waveform))
	}
	for i, v := range rec.Waveform {
		if v <= 0 {
			t.Errorf("waveform[%d] = %f, first channel is positive", i, v)
		}
	}
	if rec.FrameSize != 160 || rec.HopSize != 80 {
		t.Fatalf("frame, hop = %d, %d, want 160, 80", rec.FrameSize, rec.HopSize)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		decoder stubDecoder
		want    error
	}{
		{"decode failure", stubDecoder{err: errors.New("corrupt")}, errs.ErrLoad},
		{"empty payload", stubDecoder{audio: &transcode.AudioData{SampleRate: 16000, Channels: 1}}, errs.ErrLoad},
		{"bad rate", stubDecoder{audio: &transcode.AudioData{PCM: []float64{1}, Channels: 1}}, errs.ErrLoad},
		{"tiny rate", stubDecoder{audio: &transcode.AudioData{PCM: []float64{1}, SampleRate: 10, Channels: 1}}, errs.ErrConfiguration},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.decoder).Load("x.wav", 0.01, 0.02)
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := New(nil).Load(filepath.Join(t.TempDir(), "nope.wav"), 0.01, 0.02)
	if !errors.Is(err, errs.ErrLoad) {
		t.Fatalf("err = %v, want ErrLoad", err)
	}
}
