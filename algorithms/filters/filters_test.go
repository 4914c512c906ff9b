package filters

import (
	"math"
	"testing"
)

func TestPreEmphasis(t *testing.T) {
	pe, err := NewPreEmphasis(0.5)
	if err != nil {
		t.Fatalf("NewPreEmphasis: %v", err)
	}
	got := pe.ProcessBuffer([]float64{1, 2, 3})
	want := []float64{1, 1.5, 2}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-12 {
			t.Fatalf("output[%d] = %f, want %f", i, got[i], want[i])
		}
	}

	pe.Reset()
	if out := pe.Process(4); out != 4 {
		t.Fatalf("after Reset = %f, want 4", out)
	}
}

func TestPreEmphasisZeroIsIdentity(t *testing.T) {
	pe, _ := NewPreEmphasis(0)
	in := []float64{0.3, -0.2, 0.9}
	for i, v := range pe.ProcessBuffer(in) {
		if v != in[i] {
			t.Fatalf("output[%d] = %f, want %f", i, v, in[i])
		}
	}
}

func TestPreEmphasisRejectsCoefficient(t *testing.T) {
	for _, c := range []float64{-0.1, 1, 1.5} {
		if _, err := NewPreEmphasis(c); err == nil {
			t.Errorf("coefficient %g accepted", c)
		}
	}
}

func TestDCRemovalDrivesOffsetToZero(t *testing.T) {
	dc, err := NewDCRemoval(16000, 20)
	if err != nil {
		t.Fatalf("NewDCRemoval: %v", err)
	}
	in := make([]float64, 16000)
	for i := range in {
		in[i] = 0.5
	}
	out := dc.ProcessBuffer(in)
	if tail := out[len(out)-1]; math.Abs(tail) > 1e-3 {
		t.Fatalf("residual offset %f", tail)
	}
	if out[0] != 0.5 {
		t.Fatalf("first sample = %f, want 0.5", out[0])
	}
}

func TestDCRemovalRejectsCutoff(t *testing.T) {
	if _, err := NewDCRemoval(0, 20); err == nil {
		t.Error("zero sample rate accepted")
	}
	if _, err := NewDCRemoval(16000, 9000); err == nil {
		t.Error("cutoff above Nyquist accepted")
	}
}
