package palette

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"
)

func TestCurveEndpointsAndLinear(t *testing.T) {
	for _, c := range []Curve{Linear, Ease, EaseIn, EaseOut, EaseInOut} {
		if c.At(0) != 0 || c.At(1) != 1 {
			t.Fatal("curve must run from 0 to 1", c)
		}
		if c.At(-1) != 0 || c.At(2) != 1 || c.At(math.NaN()) != 0 {
			t.Fatal("curve input must be clamped", c)
		}
	}
	for x := 0.0; x <= 1; x += 0.05 {
		if !scalar.EqualWithinAbs(Linear.At(x), x, 1e-9) {
			t.Fatal("linear curve should be the identity at", x, Linear.At(x))
		}
	}
}

func TestCurveMonotonic(t *testing.T) {
	for _, c := range []Curve{Ease, EaseIn, EaseOut, EaseInOut} {
		prev := 0.0
		for x := 0.0; x <= 1; x += 0.01 {
			y := c.At(x)
			if y < prev-1e-12 {
				t.Fatal("curve decreased", c, x)
			}
			prev = y
		}
	}
	if EaseIn.At(0.5) >= 0.5 || EaseOut.At(0.5) <= 0.5 {
		t.Fatal("ease-in should lag and ease-out should lead the diagonal")
	}
}

func TestDeriveRampShape(t *testing.T) {
	for _, cfg := range Presets() {
		r := DeriveRamp(cfg, Levels{})
		if r.Len() < MinStops || r.Len() > MaxStops {
			t.Fatal(cfg.Name, "unexpected stop count", r.Len())
		}
		if len(r.Thresholds) != r.Len()-1 || len(r.LCH) != r.Len() {
			t.Fatal(cfg.Name, "unexpected ramp sizes")
		}
		for i, th := range r.Thresholds {
			if th < 0 || th > 1 || (i > 0 && th < r.Thresholds[i-1]) {
				t.Fatal(cfg.Name, "thresholds must be non-decreasing in [0,1]", r.Thresholds)
			}
		}
		for _, c := range r.Stops {
			if !c.IsValid() {
				t.Fatal(cfg.Name, "stop out of gamut", c)
			}
		}
		first, last := r.LCH[0][0], r.LCH[r.Len()-1][0]
		if !scalar.EqualWithinAbs(first, cfg.Darkest.Lightness, 1e-12) || !scalar.EqualWithinAbs(last, cfg.Brightest.Lightness, 1e-12) {
			t.Fatal(cfg.Name, "ramp should start and end on the anchors", first, last)
		}
	}
}

func TestDeriveRampDeterministic(t *testing.T) {
	cfg := DefaultConfig()
	lv := Levels{Bass: 0.31, Mid: 0.77, Treble: 0.12, Volume: 0.5}
	a, b := DeriveRamp(cfg, lv), DeriveRamp(cfg, lv)
	for i := range a.Stops {
		for _, p := range [][2]float64{{a.Stops[i].R, b.Stops[i].R}, {a.Stops[i].G, b.Stops[i].G}, {a.Stops[i].B, b.Stops[i].B}} {
			if math.Float64bits(p[0]) != math.Float64bits(p[1]) {
				t.Fatal("ramp is not bit identical at stop", i)
			}
		}
	}
	if !a.Equal(b) {
		t.Fatal("ramps differ")
	}
}

func TestAudioOffsets(t *testing.T) {
	cfg := DefaultConfig()
	rest := DeriveRamp(cfg, Levels{})
	last := rest.Len() - 1

	loud := DeriveRamp(cfg, Levels{Mid: 1})
	if loud.LCH[last][0] <= rest.LCH[last][0] {
		t.Fatal("mid should brighten the brightest stop", rest.LCH[last][0], loud.LCH[last][0])
	}
	if loud.LCH[0][0] != rest.LCH[0][0] {
		t.Fatal("mid should leave the darkest stop alone")
	}

	bassy := DeriveRamp(cfg, Levels{Bass: 1})
	if bassy.LCH[last][1] <= rest.LCH[last][1] {
		t.Fatal("bass should raise chroma")
	}

	bright := DeriveRamp(cfg, Levels{Treble: 1})
	shift := bright.LCH[0][2] - rest.LCH[0][2]
	if !scalar.EqualWithinAbs(wrapHue(shift), wrapHue(cfg.HueShift), 1e-9) {
		t.Fatal("treble should shift the hue by HueShift degrees, got", shift)
	}

	clipped := DeriveRamp(&Config{Brightest: Anchor{Lightness: 0.9}, BrightnessGain: 10}, Levels{Mid: 1})
	if clipped.LCH[clipped.Len()-1][0] != 1 {
		t.Fatal("lightness should be clamped to 1")
	}
}

func TestDeriveRampIgnoresNonFiniteLevels(t *testing.T) {
	cfg := DefaultConfig()
	r := DeriveRamp(cfg, Levels{Bass: math.NaN(), Mid: math.Inf(1), Treble: math.Inf(-1)})
	if !r.Equal(DeriveRamp(cfg, Levels{})) {
		t.Fatal("non-finite levels should act like silence")
	}
}

func TestIndexAndColorFor(t *testing.T) {
	r := DeriveRamp(&Config{Threshold: Linear, Stops: 10, Brightest: Anchor{Lightness: 1}}, Levels{})
	tests := []struct {
		v   float64
		exp int
	}{
		{-1, 0},
		{0, 0},
		{0.05, 0},
		{0.15, 1},
		{0.55, 5},
		{0.95, 9},
		{1, 9},
		{5, 9},
		{math.NaN(), 0},
	}
	for _, tt := range tests {
		if got := r.Index(tt.v); got != tt.exp {
			t.Errorf("Index(%v) = %d, expected %d", tt.v, got, tt.exp)
		}
	}
	if r.ColorFor(1) != r.Stops[9] {
		t.Fatal("ColorFor should return the indexed stop")
	}
}

func TestThresholdCurveSkewsBands(t *testing.T) {
	linear := DeriveRamp(&Config{Threshold: Linear}, Levels{})
	late := DeriveRamp(&Config{Threshold: EaseIn}, Levels{})
	// with an ease-in threshold curve low feed values climb the ramp sooner
	if late.Index(0.35) <= linear.Index(0.35) {
		t.Fatal("ease-in thresholds should reach higher stops for the same feed", late.Index(0.35), linear.Index(0.35))
	}
}

func TestGradient(t *testing.T) {
	r := DeriveRamp(DefaultConfig(), Levels{})
	g := r.Gradient()
	if g.At(0) != r.Stops[0] || g.At(1) != r.Stops[r.Len()-1] {
		t.Fatal("gradient should start and end on the ramp")
	}
	if c := g.At(0.5); !c.IsValid() {
		t.Fatal("blended color out of gamut", c)
	}
}

func TestFloats(t *testing.T) {
	r := DeriveRamp(DefaultConfig(), Levels{})
	f := r.Floats()
	if len(f) != 3*r.Len() {
		t.Fatal("unexpected length", len(f))
	}
	if f[3] != float32(r.Stops[1].R) {
		t.Fatal("floats should be r, g, b per stop")
	}
}

func TestModulatorEpsilon(t *testing.T) {
	m := NewModulator(DefaultConfig(), 0.01)
	r0, changed := m.Update(Levels{Mid: 0.5})
	if !changed {
		t.Fatal("first update must compute")
	}
	if _, changed := m.Update(Levels{Mid: 0.505}); changed {
		t.Fatal("a move below epsilon must not recompute")
	}
	// drift is measured from the last computation, not the last call
	if _, changed := m.Update(Levels{Mid: 0.509}); changed {
		t.Fatal("a move below epsilon must not recompute")
	}
	r1, changed := m.Update(Levels{Mid: 0.52})
	if !changed {
		t.Fatal("a move above epsilon must recompute")
	}
	if r0.Equal(r1) {
		t.Fatal("recomputed ramp should differ")
	}
	if !m.Ramp().Equal(r1) {
		t.Fatal("Ramp should return the last computation")
	}

	ember, err := Preset("ember")
	if err != nil {
		t.Fatal(err)
	}
	m.SetConfig(ember)
	r2, changed := m.Update(Levels{Mid: 0.52})
	if !changed || r2.Len() != 9 {
		t.Fatal("a new config must recompute")
	}
}

func TestModulatorRampBeforeUpdate(t *testing.T) {
	m := NewModulator(nil, -1)
	if m.Ramp().Len() == 0 {
		t.Fatal("expected a resting ramp")
	}
	if m.Config().Name != DefaultConfig().Name {
		t.Fatal("nil config should use the default")
	}
}

func TestPreset(t *testing.T) {
	for _, name := range Names() {
		c, err := Preset(name)
		if err != nil || c.Name != name {
			t.Fatal("preset", name, err)
		}
	}
	c, err := Preset("nope")
	if !errors.Is(err, ErrUnknownPalette) {
		t.Fatal("expected ErrUnknownPalette, got", err)
	}
	if c.Name != DefaultConfig().Name {
		t.Fatal("unknown palettes fall back to the default")
	}

	a, _ := Preset("ember")
	a.BaseHue = 99
	b, _ := Preset("ember")
	if b.BaseHue == 99 {
		t.Fatal("presets must be copies")
	}
}

func TestModulatorRampIsACopy(t *testing.T) {
	m := NewModulator(DefaultConfig(), 0.01)
	r0, _ := m.Update(Levels{Bass: 0.3})
	want := r0.Clone()

	r0.Stops[0].R = 42
	r0.LCH[0][0] = -1
	r0.Thresholds[0] = 2

	r1, changed := m.Update(Levels{Bass: 0.3})
	if changed {
		t.Fatal("same levels must not recompute")
	}
	if !r1.Equal(want) || r1.LCH[0] != want.LCH[0] {
		t.Fatal("changing a returned ramp must not change the cached one")
	}
	r2 := m.Ramp()
	r2.Thresholds[0] = 2
	if m.Ramp().Thresholds[0] != want.Thresholds[0] {
		t.Fatal("Ramp must hand out copies")
	}
}
