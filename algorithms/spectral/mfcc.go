package spectral

import (
	"fmt"
	"math"
	"sync"

	"gonum.org/v1/gonum/mat"

	"github.com/RyanBlaney/sonido-phonon/algorithms/windowing"
)

// MFCC computes Mel-Frequency Cepstral Coefficients for whole segments.
// The defaults follow librosa's mfcc: periodic Hann window, power
// spectrum, power_to_db with an 80 dB range and an orthonormal DCT-II.
type MFCC struct {
	numMelFilters int
	lowFreq       float64
	highFreq      float64
	windowType    string
	amin          float64
	topDB         float64

	melScale *MelScale
	stft     *STFT

	mu          sync.Mutex
	windows     map[int]windowing.Window
	filterBanks map[filterBankKey][][]float64
	dctMatrices map[int]*mat.Dense
}

type filterBankKey struct {
	sampleRate int
	fftSize    int
}

// MFCCParams contains parameters for MFCC computation
type MFCCParams struct {
	NumMelFilters int     `toml:"num_mel_filters"` // default 32
	LowFreq       float64 `toml:"low_freq"`        // default 0
	HighFreq      float64 `toml:"high_freq"`       // default sampleRate/2
	Window        string  `toml:"window"`          // "hann" (default) or "hamming"
	AMin          float64 `toml:"amin"`            // power floor before log, default 1e-10
	TopDB         float64 `toml:"top_db"`          // dynamic range clamp, default 80; negative disables
}

// DefaultMFCCParams returns the parameters the phoneme datasets are built with
func DefaultMFCCParams() MFCCParams {
	return MFCCParams{
		NumMelFilters: 32,
		Window:        "hann",
		AMin:          1e-10,
		TopDB:         80,
	}
}

// NewMFCC creates a new MFCC computer
func NewMFCC(params MFCCParams) *MFCC {
	defaults := DefaultMFCCParams()
	if params.NumMelFilters <= 0 {
		params.NumMelFilters = defaults.NumMelFilters
	}
	if params.Window == "" {
		params.Window = defaults.Window
	}
	if params.AMin <= 0 {
		params.AMin = defaults.AMin
	}
	if params.TopDB == 0 {
		params.TopDB = defaults.TopDB
	}

	return &MFCC{
		numMelFilters: params.NumMelFilters,
		lowFreq:       params.LowFreq,
		highFreq:      params.HighFreq,
		windowType:    params.Window,
		amin:          params.AMin,
		topDB:         params.TopDB,
		melScale:      NewMelScale(),
		stft:          NewSTFT(),
		windows:       make(map[int]windowing.Window),
		filterBanks:   make(map[filterBankKey][][]float64),
		dctMatrices:   make(map[int]*mat.Dense),
	}
}

// NumMelFilters returns the size of the mel filter bank
func (m *MFCC) NumMelFilters() int {
	return m.numMelFilters
}

// Coefficients returns a frames x numCoefficients matrix for samples, one row
// per analysis frame of frameSize samples advanced by hopSize. A segment
// shorter than frameSize yields a nil matrix.
func (m *MFCC) Coefficients(samples []float64, sampleRate, frameSize, hopSize, numCoefficients int) (*mat.Dense, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate: %d", sampleRate)
	}
	if frameSize <= 0 || hopSize <= 0 {
		return nil, fmt.Errorf("invalid frame geometry: frame %d, hop %d", frameSize, hopSize)
	}
	if numCoefficients <= 0 || numCoefficients > m.numMelFilters {
		return nil, fmt.Errorf("coefficient count %d outside 1..%d", numCoefficients, m.numMelFilters)
	}

	numFrames := NumFrames(len(samples), frameSize, hopSize)
	if numFrames == 0 {
		return nil, nil
	}

	window, filterBank, dct, err := m.plan(sampleRate, frameSize, numCoefficients)
	if err != nil {
		return nil, err
	}

	power, err := m.stft.PowerFrames(samples, frameSize, hopSize, window)
	if err != nil {
		return nil, fmt.Errorf("failed to compute spectrogram: %w", err)
	}

	melFrames := make([][]float64, len(power))
	for t, frame := range power {
		melFrames[t] = m.melScale.ApplyFilterBank(frame, filterBank)
	}
	PowerToDB(melFrames, m.amin, m.topDB)

	logMel := mat.NewDense(numFrames, m.numMelFilters, nil)
	for t, frame := range melFrames {
		logMel.SetRow(t, frame)
	}

	var coeffs mat.Dense
	coeffs.Mul(logMel, dct.T())
	return &coeffs, nil
}

// plan returns the cached window, filter bank and DCT basis for a geometry
func (m *MFCC) plan(sampleRate, frameSize, numCoefficients int) (windowing.Window, [][]float64, *mat.Dense, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	window, ok := m.windows[frameSize]
	if !ok {
		var err error
		window, err = windowing.New(m.windowType, frameSize)
		if err != nil {
			return nil, nil, nil, err
		}
		m.windows[frameSize] = window
	}

	key := filterBankKey{sampleRate: sampleRate, fftSize: frameSize}
	filterBank, ok := m.filterBanks[key]
	if !ok {
		highFreq := m.highFreq
		if highFreq <= 0 || highFreq > float64(sampleRate)/2 {
			highFreq = float64(sampleRate) / 2
		}
		filterBank = m.melScale.CreateMelFilterBank(m.numMelFilters, frameSize, sampleRate, m.lowFreq, highFreq)
		if len(filterBank) == 0 {
			return nil, nil, nil, fmt.Errorf("failed to create mel filter bank")
		}
		m.filterBanks[key] = filterBank
	}

	dct, ok := m.dctMatrices[numCoefficients]
	if !ok {
		dct = createDCTMatrix(numCoefficients, m.numMelFilters)
		m.dctMatrices[numCoefficients] = dct
	}

	return window, filterBank, dct, nil
}

// createDCTMatrix builds the orthonormal DCT-II basis, numCoefficients x numFilters
func createDCTMatrix(numCoefficients, numFilters int) *mat.Dense {
	dct := mat.NewDense(numCoefficients, numFilters, nil)
	n := float64(numFilters)

	for k := range numCoefficients {
		scale := math.Sqrt(2.0 / n)
		if k == 0 {
			scale = math.Sqrt(1.0 / n)
		}
		for j := range numFilters {
			dct.Set(k, j, scale*math.Cos(math.Pi*float64(k)*(float64(j)+0.5)/n))
		}
	}

	return dct
}
