package spectral

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/RyanBlaney/sonido-phonon/algorithms/windowing"
)

// STFT frames a signal without centering or padding and transforms each frame.
type STFT struct {
	fft *FFT
}

// NewSTFT creates a new STFT calculator
func NewSTFT() *STFT {
	return &STFT{
		fft: NewFFT(),
	}
}

// NumFrames is the frame count produced for a signal of length n:
// floor((n-windowSize)/hopSize)+1 when n >= windowSize, otherwise 0.
func NumFrames(n, windowSize, hopSize int) int {
	if windowSize <= 0 || hopSize <= 0 || n < windowSize {
		return 0
	}
	return (n-windowSize)/hopSize + 1
}

// PowerFrames returns one power spectrum (windowSize/2+1 bins) per frame, in
// frame order. A signal shorter than windowSize yields nil.
func (s *STFT) PowerFrames(signal []float64, windowSize, hopSize int, window windowing.Window) ([][]float64, error) {
	if windowSize <= 0 {
		return nil, fmt.Errorf("window size must be positive")
	}
	if hopSize <= 0 {
		return nil, fmt.Errorf("hop size must be positive")
	}
	if window != nil && window.Size() != windowSize {
		return nil, fmt.Errorf("window length (%d) doesn't match window size (%d)", window.Size(), windowSize)
	}

	numFrames := NumFrames(len(signal), windowSize, hopSize)
	if numFrames == 0 {
		return nil, nil
	}

	power := make([][]float64, numFrames)
	numWorkers := s.workerCount(numFrames)

	jobs := make(chan int, numFrames)
	var wg sync.WaitGroup

	for range numWorkers {
		wg.Add(1)
		go func() {
			defer wg.Done()

			// Reuse frame buffer for this worker
			frameBuffer := make([]float64, windowSize)

			for frameIdx := range jobs {
				start := frameIdx * hopSize
				copy(frameBuffer, signal[start:start+windowSize])

				if window != nil {
					// sizes were checked above, so this cannot fail
					_ = window.ApplyInPlace(frameBuffer)
				}

				power[frameIdx] = s.fft.PowerSpectrum(frameBuffer)
			}
		}()
	}

	for frameIdx := range numFrames {
		jobs <- frameIdx
	}
	close(jobs)

	wg.Wait()

	return power, nil
}

// workerCount scales the pool with the workload
func (s *STFT) workerCount(numFrames int) int {
	numCPU := runtime.NumCPU()

	// Short phoneme segments are the common case; a pool is overhead there
	if numFrames < 16 {
		return 1
	}

	if numFrames < 1000 {
		return max(1, min(numCPU, 8))
	}

	return numCPU
}
