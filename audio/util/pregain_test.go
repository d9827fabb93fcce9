package util

import (
	"math"
	"testing"
)

func TestPreGainRaisesQuietInput(t *testing.T) {
	p := NewPreGain(DefaultPreGainParams)
	frame := make([]float64, 512)
	for n := 0; n < 200; n++ {
		for i := range frame {
			frame[i] = 0.05 * math.Sin(2*math.Pi*float64(i)/64)
		}
		p.Apply(frame)
	}
	if p.Gain() <= 1 {
		t.Fatal("expected gain to rise above unity for a quiet signal, got", p.Gain())
	}

	p.Reset()
	if p.Gain() != 1 {
		t.Fatal("Reset should restore unity gain")
	}
}

func TestPreGainEmptyFrame(t *testing.T) {
	p := NewPreGain(DefaultPreGainParams)
	p.Apply(nil)
	if p.Gain() != 1 {
		t.Fatal("an empty frame must not move the gain")
	}
}
