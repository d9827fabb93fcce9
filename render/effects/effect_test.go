package effects

import (
	"errors"
	"reflect"
	"testing"

	"github.com/peragwin/vuzicshader/audio/sensors/onset"
	"github.com/peragwin/vuzicshader/audio/sensors/spectral"
	"github.com/peragwin/vuzicshader/render/palette"
	"github.com/peragwin/vuzicshader/render/uniform"
)

func TestLookup(t *testing.T) {
	for _, name := range Names() {
		e, err := Lookup(name)
		if err != nil {
			t.Fatal(name, err)
		}
		if e.Name() != name || e.Kind().String() != name {
			t.Fatal("lookup returned", e.Name(), "for", name)
		}
	}

	e, err := Lookup("warp-tunnel")
	if !errors.Is(err, ErrUnknownEffect) {
		t.Fatal("expected ErrUnknownEffect, got", err)
	}
	if e == nil || e.Kind() != Passthrough {
		t.Fatal("unknown effects fall back to passthrough")
	}
	if Get(Kind(42)).Kind() != Passthrough {
		t.Fatal("unknown kinds fall back to passthrough")
	}
	if Kind(42).String() != "kind(42)" {
		t.Fatal("unexpected kind name", Kind(42))
	}
}

func testFrame() spectral.Frame {
	f := spectral.Zero(8)
	f.Bass, f.Mid, f.Treble, f.Volume = 0.7, 0.4, 0.2, 0.5
	for i := range f.Bands {
		f.Bands[i] = float64(i) / 8
		f.Balance[i] = -0.5
	}
	return f
}

func TestTargetsCoverChannels(t *testing.T) {
	for _, name := range Names() {
		e, _ := Lookup(name)
		targets := e.Targets(testFrame())
		if len(targets) != len(e.Channels()) {
			t.Fatal(name, "targets and channels differ", targets, e.Channels())
		}
		for _, ch := range e.Channels() {
			if _, ok := targets[ch.Name]; !ok {
				t.Fatal(name, "has no target for channel", ch.Name)
			}
		}
		if _, err := palette.Preset(e.Palette()); err != nil {
			t.Fatal(name, "uses a missing palette", err)
		}
	}
}

func stateFor(e Effect) *uniform.State {
	levels := make(map[string]float64)
	for k, v := range e.Targets(testFrame()) {
		levels[k] = v
	}
	return &uniform.State{
		Frame:      testFrame(),
		Levels:     levels,
		Ramp:       palette.DeriveRamp(palette.DefaultConfig(), palette.Levels{}),
		Pool:       onset.NewPool(8, onset.Gaussian, 4),
		Ripples:    []onset.Event{{Seq: 1, Band: onset.Bass, Position: 0.1, Intensity: 0.9, Birth: 0, Lifetime: 1.5}},
		Now:        0.5,
		Quality:    1,
		Time:       3,
		BPM:        120,
		Resolution: [2]float64{800, 600},
		Params:     Defaults(e),
	}
}

func TestUniformsMapCleanly(t *testing.T) {
	for _, name := range Names() {
		e, _ := Lookup(name)
		m := uniform.NewMapper()
		set := m.Map(e.Uniforms(), stateFor(e))
		if len(m.Failed()) != 0 {
			t.Fatal(name, "derivations failed", m.Failures())
		}
		if len(set) != len(e.Uniforms()) {
			t.Fatal(name, "duplicate uniform names", e.Uniforms().Names())
		}
		for _, u := range []string{"uTime", "uResolution", "uPalette", "uQuality"} {
			if _, ok := set[u]; !ok {
				t.Fatal(name, "is missing common uniform", u)
			}
		}
	}
}

func TestRippleSlots(t *testing.T) {
	e := Get(Ripple)
	s := stateFor(e)
	s.Ripples = append(s.Ripples,
		onset.Event{Seq: 2, Band: onset.Treble, Position: 0.9, Intensity: 0.5, Birth: -5, Lifetime: 1},
		onset.Event{Seq: 3, Band: onset.Mid, Position: 0.5, Intensity: 0.3, Birth: 0.4, Lifetime: 1.5},
	)
	set := uniform.NewMapper().Map(e.Uniforms(), s)

	if !reflect.DeepEqual(set["uRippleCount"], uniform.Value{2}) {
		t.Fatal("expired ripples must not count", set["uRippleCount"])
	}
	slots := set["uRipples"]
	if len(slots) != 4*MaxRipples {
		t.Fatal("unexpected slot size", len(slots))
	}
	// newest first
	if slots[0] != 0.5 || slots[3] != float32(onset.Mid) || slots[4] != 0.1 || slots[7] != float32(onset.Bass) {
		t.Fatal("unexpected slots", slots[:8])
	}
	if slots[1] <= 0 || slots[1] > 0.3 {
		t.Fatal("amplitude should be decayed intensity", slots[1])
	}
	for _, v := range slots[8:] {
		if v != 0 {
			t.Fatal("unused slots should be zero", slots)
		}
	}
}

func TestBlurFollowsQuality(t *testing.T) {
	e := Get(Sphere)
	blur := func(q float64) float32 {
		s := stateFor(e)
		s.Quality = q
		return uniform.NewMapper().Map(e.Uniforms(), s)["uBlurSamples"][0]
	}
	if blur(1) != 24 || blur(0.5) != 12 || blur(0) != 1 {
		t.Fatal("unexpected blur samples", blur(1), blur(0.5), blur(0))
	}
}

func TestParamClamp(t *testing.T) {
	p := Param{Name: "scale", Default: 1, Min: 0.1, Max: 4, Step: 0.1}
	tests := []struct{ in, exp float64 }{
		{1.04, 1},
		{1.06, 1.1},
		{-3, 0.1},
		{9, 4},
	}
	for _, tt := range tests {
		if got := p.Clamp(tt.in); got < tt.exp-1e-9 || got > tt.exp+1e-9 {
			t.Errorf("Clamp(%v) = %v, expected %v", tt.in, got, tt.exp)
		}
	}
	if _, ok := FindParam(Get(Sphere), "scale"); !ok {
		t.Fatal("sphere should have a scale parameter")
	}
	if _, ok := FindParam(Get(Passthrough), "scale"); ok {
		t.Fatal("passthrough has no parameters")
	}
}
