package scheduler

import (
	"fmt"
	"math"

	"github.com/golang/glog"
	"gonum.org/v1/gonum/stat"

	"github.com/peragwin/vuzicshader/audio/util"
)

// GovernorConfig configures the PerformanceGovernor.
type GovernorConfig struct {
	// TargetFrameTime is the frame time in seconds the governor aims for.
	TargetFrameTime float64
	// Window is the number of frames averaged before a decision.
	Window int
	// Quality drops when the average exceeds TargetFrameTime / LowFPSThreshold.
	LowFPSThreshold float64
	// Quality rises when the average is under TargetFrameTime * HighFPSThreshold.
	HighFPSThreshold float64
	Step             float64
	Min              float64
	Max              float64
	// Initial is the starting quality, Max when zero.
	Initial float64
}

// DefaultGovernorConfig targets 60fps over a one second window.
func DefaultGovernorConfig() *GovernorConfig {
	return &GovernorConfig{
		TargetFrameTime:  1.0 / 60,
		Window:           60,
		LowFPSThreshold:  0.85,
		HighFPSThreshold: 1.05,
		Step:             0.1,
		Min:              0.5,
		Max:              1,
		Initial:          1,
	}
}

func (c *GovernorConfig) validate() error {
	switch {
	case !(c.TargetFrameTime > 0):
		return fmt.Errorf("target frame time must be positive, got %v", c.TargetFrameTime)
	case c.Window < 1:
		return fmt.Errorf("window must hold at least one frame, got %d", c.Window)
	case !(c.LowFPSThreshold > 0) || !(c.HighFPSThreshold > 0):
		return fmt.Errorf("fps thresholds must be positive")
	case c.HighFPSThreshold >= 1/c.LowFPSThreshold:
		return fmt.Errorf("thresholds leave no hysteresis: raise at %v, drop at %v",
			c.HighFPSThreshold, 1/c.LowFPSThreshold)
	case c.Min > c.Max:
		return fmt.Errorf("min quality %v above max %v", c.Min, c.Max)
	case c.Step < 0:
		return fmt.Errorf("negative step %v", c.Step)
	}
	return nil
}

// Governor adapts rendering quality to the frame rate. It owns the quality scalar: nothing else
// changes it.
type Governor struct {
	cfg     GovernorConfig
	times   *util.RingBuffer
	quality float64
}

// NewGovernor creates a Governor.
func NewGovernor(cfg *GovernorConfig) (*Governor, error) {
	c := *DefaultGovernorConfig()
	if cfg != nil {
		c = *cfg
	}
	if err := c.validate(); err != nil {
		return nil, fmt.Errorf("governor: %w", err)
	}
	g := &Governor{cfg: c, times: util.NewRingBuffer(c.Window)}
	g.Reset()
	return g, nil
}

// Quality is the current quality scalar in [Min, Max].
func (g *Governor) Quality() float64 {
	return g.quality
}

// Average is the mean frame time over the current window, 0 when empty.
func (g *Governor) Average() float64 {
	h := g.times.Recent(g.times.Cap())
	if len(h) == 0 {
		return 0
	}
	return stat.Mean(h, nil)
}

// Reset restores the initial quality and forgets all measurements.
func (g *Governor) Reset() {
	g.times.Reset()
	g.quality = g.cfg.Initial
	if g.quality == 0 {
		g.quality = g.cfg.Max
	}
	g.quality = math.Max(g.cfg.Min, math.Min(g.cfg.Max, g.quality))
}

// Observe records one frame time @dt in seconds and reports whether quality changed.
// A decision needs a full window, and the window starts over after every change, so
// quality moves at most one step per window.
func (g *Governor) Observe(dt float64) bool {
	if !(dt > 0) || math.IsInf(dt, 0) {
		return false
	}
	g.times.Push(dt)
	if g.times.Len() < g.cfg.Window {
		return false
	}

	avg := g.Average()
	q := g.quality
	switch {
	case avg > g.cfg.TargetFrameTime/g.cfg.LowFPSThreshold:
		q = math.Max(g.cfg.Min, q-g.cfg.Step)
	case avg < g.cfg.TargetFrameTime*g.cfg.HighFPSThreshold:
		q = math.Min(g.cfg.Max, q+g.cfg.Step)
	}
	if q == g.quality {
		return false
	}

	if glog.V(2) {
		glog.Infof("governor: average frame %.2fms, quality %.2f -> %.2f", avg*1000, g.quality, q)
	}
	g.quality = q
	g.times.Reset()
	return true
}
