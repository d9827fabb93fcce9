// Package envelope smooths control signals with attack and release times measured in
// musical note lengths instead of seconds, so the motion keeps pace with the track.
package envelope

import (
	"math"
)

const (
	// DefaultTimeConstant is used whenever the tempo is unknown (bpm <= 0).
	DefaultTimeConstant = 0.1
	// DefaultMaxStep caps dt so a stalled frame clock cannot snap values to target.
	DefaultMaxStep = 0.1
)

// Note is a note length as a fraction of a 4 beat bar, so 1.0/16 is a sixteenth note.
type Note float64

// Common note lengths.
const (
	Whole        Note = 1
	Half         Note = 1.0 / 2
	Quarter      Note = 1.0 / 4
	Eighth       Note = 1.0 / 8
	Sixteenth    Note = 1.0 / 16
	ThirtySecond Note = 1.0 / 32
)

// Seconds is how long the note lasts at @bpm, or DefaultTimeConstant when either the
// tempo or the note is not positive.
func (n Note) Seconds(bpm float64) float64 {
	return TimeConstant(n, bpm)
}

// TimeConstant converts a note length to seconds: note * 4 beats * 60 / bpm.
func TimeConstant(n Note, bpm float64) float64 {
	if bpm <= 0 || n <= 0 || math.IsNaN(bpm) || math.IsInf(bpm, 0) {
		return DefaultTimeConstant
	}
	return float64(n) * 4 * 60 / bpm
}

// ChannelConfig declares one smoothed channel.
type ChannelConfig struct {
	Name    string
	Attack  Note
	Release Note
	// Default seeds Current when there is nothing better to start from.
	Default float64
	// SlowAttack and Knee give a two stage rise: Attack until Current reaches
	// Knee*Target, then SlowAttack for the rest. Knee <= 0 disables it.
	SlowAttack Note
	Knee       float64
}

// Channel is one smoothed value. Current moves toward Target with an exponential step
// and never passes it.
type Channel struct {
	ChannelConfig
	Current float64
	Target  float64
	MaxStep float64
}

// NewChannel creates a channel seeded at its default.
func NewChannel(cfg ChannelConfig) *Channel {
	return &Channel{
		ChannelConfig: cfg,
		Current:       cfg.Default,
		Target:        cfg.Default,
		MaxStep:       DefaultMaxStep,
	}
}

// Update moves Current toward @target over @dt seconds at tempo @bpm and returns the new
// Current.
func (c *Channel) Update(target, bpm, dt float64) float64 {
	if math.IsNaN(target) || math.IsInf(target, 0) {
		return c.Current
	}
	c.Target = target
	if dt <= 0 || math.IsNaN(dt) {
		return c.Current
	}
	maxStep := c.MaxStep
	if maxStep <= 0 {
		maxStep = DefaultMaxStep
	}
	if dt > maxStep || math.IsInf(dt, 1) {
		dt = maxStep
	}

	rising := target > c.Current
	tau := TimeConstant(c.Release, bpm)
	if rising {
		tau = TimeConstant(c.Attack, bpm)
		if c.Knee > 0 && c.SlowAttack > 0 && c.Current >= c.Knee*target {
			tau = TimeConstant(c.SlowAttack, bpm)
		}
	}

	next := c.Current + (target-c.Current)*(1-math.Exp(-dt/tau))
	if rising && next > target || !rising && next < target {
		next = target
	}
	c.Current = next
	return next
}

// Seed jumps Current and Target to @v.
func (c *Channel) Seed(v float64) {
	c.Current = v
	c.Target = v
}
