package onset

import (
	"github.com/peragwin/vuzicshader/render/envelope"
)

// Config configures a Detector. The thresholds are empirically tuned; treat the defaults
// as a starting point rather than a model.
type Config struct {
	// PerBand also tracks every measured band, not just bass, mid and treble.
	PerBand bool
	// Window is how many past frames make up the rolling baseline.
	Window int
	// ThresholdRatio is how far above the baseline energy must rise to trigger.
	ThresholdRatio float64
	// MinThreshold keeps near silent passages from triggering on noise.
	MinThreshold float64
	// Refractory is the minimum time in seconds between onsets in one band.
	Refractory float64
	// RefractoryNote, when set and the tempo is known, replaces Refractory.
	RefractoryNote envelope.Note

	// Capacity bounds the number of live events.
	Capacity int
	// Lifetime of each event in seconds.
	Lifetime float64
	Decay    Decay
	// DecayK is the steepness k of the decay envelope.
	DecayK float64
}

// DefaultConfig returns the detector settings used by the visualizer.
func DefaultConfig() *Config {
	return &Config{
		Window:         43,
		ThresholdRatio: 1.5,
		MinThreshold:   0.05,
		Refractory:     0.1,
		Capacity:       8,
		Lifetime:       1.5,
		Decay:          Gaussian,
		DecayK:         4,
	}
}
