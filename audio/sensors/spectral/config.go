package spectral

import (
	"github.com/peragwin/vuzicshader/audio/util"
)

// Range is a frequency span in Hz.
type Range struct {
	Low, High float64
}

// Config configures an Analyzer.
type Config struct {
	// Bands is the number of measured bands M in every Frame.
	Bands int
	// MinFrequency and MaxFrequency bound the measured bands.
	MinFrequency float64
	MaxFrequency float64
	// Scale spaces the band edges. Defaults to util.LogScale2.
	Scale util.Scale

	// FFTSize is the transform size at full quality. The size actually used is
	// scaled by the quality scalar and never drops below MinFFTSize.
	FFTSize    int
	MinFFTSize int

	// Smoothing blends each bin with its previous value: s*prev + (1-s)*cur.
	Smoothing float64

	MinDecibels float64
	MaxDecibels float64

	Bass   Range
	Mid    Range
	Treble Range

	// SilenceFloor is the peak sample level below which input counts as silent.
	SilenceFloor float64

	// AutoGain runs the input through a PreGain controller before analysis.
	AutoGain bool
}

// DefaultConfig returns the configuration used by the visualizer.
func DefaultConfig() *Config {
	return &Config{
		Bands:        32,
		MinFrequency: 30,
		MaxFrequency: 16000,
		Scale:        util.LogScale2,
		FFTSize:      2048,
		MinFFTSize:   512,
		Smoothing:    0.8,
		MinDecibels:  -100,
		MaxDecibels:  -30,
		Bass:         Range{20, 250},
		Mid:          Range{250, 4000},
		Treble:       Range{4000, 16000},
		SilenceFloor: 1e-6,
	}
}
