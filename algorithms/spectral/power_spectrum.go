package spectral

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// PowerToDB converts a power spectrogram to decibels in place:
// 10*log10(max(amin, S)), then clamps every value to at least max-topDB.
// topDB <= 0 disables the clamp.
func PowerToDB(spectrogram [][]float64, amin, topDB float64) {
	peak := math.Inf(-1)
	for _, frame := range spectrogram {
		for i, p := range frame {
			frame[i] = 10 * math.Log10(math.Max(amin, p))
		}
		if len(frame) > 0 {
			peak = math.Max(peak, floats.Max(frame))
		}
	}

	if topDB <= 0 || math.IsInf(peak, -1) {
		return
	}

	floor := peak - topDB
	for _, frame := range spectrogram {
		for i, v := range frame {
			if v < floor {
				frame[i] = floor
			}
		}
	}
}
