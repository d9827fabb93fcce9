package fft

import (
	"math"
	"testing"
)

func TestMagnitudesPeakAtSineBin(t *testing.T) {
	size := 1024
	p, err := NewProcessor(size)
	if err != nil {
		t.Fatal(err)
	}

	bin := 64
	x := make([]float64, size)
	for i := range x {
		x[i] = math.Sin(2 * math.Pi * float64(bin) * float64(i) / float64(size))
	}
	mags := p.Magnitudes(nil, x)
	if len(mags) != size/2 {
		t.Fatal("expected", size/2, "bins, got", len(mags))
	}

	peak := 0
	for i := range mags {
		if mags[i] > mags[peak] {
			peak = i
		}
	}
	if peak != bin {
		t.Fatal("expected peak at bin", bin, "got", peak)
	}
	if math.Abs(mags[bin]-1) > 0.05 {
		t.Fatal("expected a full scale sine to measure ~1, got", mags[bin])
	}
}

func TestMagnitudesShortInput(t *testing.T) {
	p, err := NewProcessor(256)
	if err != nil {
		t.Fatal(err)
	}
	mags := p.Magnitudes(make([]float64, 128), make([]float64, 10))
	for i, m := range mags {
		if m != 0 {
			t.Fatal("silence should have no energy, bin", i, m)
		}
	}
}

func TestNewProcessorRejectsBadSizes(t *testing.T) {
	for _, size := range []int{0, -4, 100, 1000} {
		if _, err := NewProcessor(size); err != ErrSize {
			t.Error("expected ErrSize for", size, "got", err)
		}
	}
}

func TestNextPowerOf2(t *testing.T) {
	for in, exp := range map[int]int{1: 1, 3: 4, 512: 512, 513: 1024} {
		if got := NextPowerOf2(in); got != exp {
			t.Error("NextPowerOf2", in, "=", got, "want", exp)
		}
	}
}
