// Package palette derives audio reactive color ramps from a pair of perceptual color
// anchors.
package palette

// DefaultEpsilon is the smallest level change that recomputes the ramp.
const DefaultEpsilon = 1e-3

// Modulator derives ramps from audio levels. It only recomputes the ramp when one of the levels
// moved by more than its epsilon since the last computation.
type Modulator struct {
	cfg     Config
	epsilon float64
	last    Levels
	ramp    Ramp
	valid   bool
}

// NewModulator creates a Modulator for @cfg; a negative @epsilon uses DefaultEpsilon.
func NewModulator(cfg *Config, epsilon float64) *Modulator {
	if epsilon < 0 {
		epsilon = DefaultEpsilon
	}
	m := &Modulator{epsilon: epsilon}
	m.SetConfig(cfg)
	return m
}

// SetConfig swaps the anchor configuration; the next Update always recomputes.
func (m *Modulator) SetConfig(cfg *Config) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	m.cfg = *cfg
	m.valid = false
}

// Config returns the active configuration.
func (m *Modulator) Config() Config {
	return m.cfg
}

// Update returns the ramp for @lv and whether it was recomputed. The ramp is a copy, so
// callers may modify it without touching the cached one.
func (m *Modulator) Update(lv Levels) (Ramp, bool) {
	if m.valid && lv.maxDelta(m.last) <= m.epsilon {
		return m.ramp.Clone(), false
	}
	m.ramp = DeriveRamp(&m.cfg, lv)
	m.last = lv
	m.valid = true
	return m.ramp.Clone(), true
}

// Ramp is the most recently computed ramp, derived at rest if none was computed yet.
func (m *Modulator) Ramp() Ramp {
	if !m.valid {
		r, _ := m.Update(Levels{})
		return r
	}
	return m.ramp.Clone()
}
