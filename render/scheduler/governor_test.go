package scheduler

import (
	"testing"

	"gonum.org/v1/gonum/floats/scalar"
)

func TestGovernorStepsDown(t *testing.T) {
	g, err := NewGovernor(nil)
	if err != nil {
		t.Fatal(err)
	}
	slow := 2 * g.cfg.TargetFrameTime
	for i := 0; i < 60; i++ {
		changed := g.Observe(slow)
		if changed != (i == 59) {
			t.Fatal("quality should change exactly once, on the 60th frame; frame", i, "changed", changed)
		}
	}
	if !scalar.EqualWithinAbs(g.Quality(), 0.9, 1e-9) {
		t.Fatal("expected one step down, got", g.Quality())
	}

	for i := 0; i < 6000; i++ {
		g.Observe(slow)
		if g.Quality() < g.cfg.Min {
			t.Fatal("quality dropped below the minimum", g.Quality())
		}
	}
	if g.Quality() != g.cfg.Min {
		t.Fatal("quality should settle at the minimum, got", g.Quality())
	}
}

func TestGovernorHysteresis(t *testing.T) {
	g, _ := NewGovernor(nil)
	target := g.cfg.TargetFrameTime
	for i := 0; i < 60; i++ {
		g.Observe(2 * target)
	}
	q := g.Quality()

	// between the two thresholds nothing moves
	for i := 0; i < 600; i++ {
		if g.Observe(1.1 * target) {
			t.Fatal("quality changed inside the hysteresis band")
		}
	}

	for i := 0; i < 60; i++ {
		g.Observe(target)
	}
	if !scalar.EqualWithinAbs(g.Quality(), q+g.cfg.Step, 1e-9) {
		t.Fatal("quality should recover with headroom", q, g.Quality())
	}
	for i := 0; i < 6000; i++ {
		g.Observe(target)
	}
	if g.Quality() != g.cfg.Max {
		t.Fatal("quality should cap at the maximum", g.Quality())
	}
}

func TestGovernorIgnoresBadTimes(t *testing.T) {
	g, _ := NewGovernor(nil)
	for _, dt := range []float64{0, -1} {
		if g.Observe(dt) {
			t.Fatal("bad frame time changed quality")
		}
	}
	if g.Average() != 0 {
		t.Fatal("bad frame times should not be recorded")
	}
}

func TestGovernorConfigErrors(t *testing.T) {
	bad := []func(c *GovernorConfig){
		func(c *GovernorConfig) { c.TargetFrameTime = 0 },
		func(c *GovernorConfig) { c.Window = 0 },
		func(c *GovernorConfig) { c.Min, c.Max = 1, 0.5 },
		func(c *GovernorConfig) { c.LowFPSThreshold, c.HighFPSThreshold = 0.9, 1.2 },
		func(c *GovernorConfig) { c.Step = -0.1 },
	}
	for i, mod := range bad {
		c := DefaultGovernorConfig()
		mod(c)
		if _, err := NewGovernor(c); err == nil {
			t.Error("expected an error for config", i)
		}
	}
}
