package palette

import (
	"math"
	"sort"

	"github.com/hsluv/hsluv-go"
	colorful "github.com/lucasb-eyer/go-colorful"
)

// Ramp is an ordered set of stops plus the thresholds that map a scalar
// feed value to one of them.
type Ramp struct {
	Stops []colorful.Color
	// LCH holds each stop's lightness, chroma and hue before conversion.
	LCH [][3]float64
	// Thresholds has one entry fewer than Stops and is non-decreasing.
	Thresholds []float64
}

// DeriveRamp computes the ramp for @cfg under audio levels @lv. It has no side effects
// and always returns the same ramp for the same inputs.
func DeriveRamp(cfg *Config, lv Levels) Ramp {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	n := cfg.stops()

	dark, bright := cfg.Darkest, cfg.Brightest
	bright.Lightness *= 1 + cfg.BrightnessGain*finite(lv.Mid)
	dark.Lightness = clamp01(dark.Lightness)
	bright.Lightness = clamp01(bright.Lightness)
	chroma := 1 + cfg.ChromaGain*finite(lv.Bass)
	if chroma < 0 {
		chroma = 0
	}
	dark.Chroma *= chroma
	bright.Chroma *= chroma
	shift := cfg.HueShift * finite(lv.Treble)

	r := Ramp{
		Stops:      make([]colorful.Color, n),
		LCH:        make([][3]float64, n),
		Thresholds: make([]float64, n-1),
	}
	for i := 0; i < n; i++ {
		t := float64(i) / float64(n-1)
		l := lerp(dark.Lightness, bright.Lightness, cfg.Lightness.At(t))
		c := lerp(dark.Chroma, bright.Chroma, cfg.Chroma.At(t))
		h := wrapHue(cfg.BaseHue + lerp(dark.HueOffset, bright.HueOffset, cfg.Hue.At(t)) + shift)
		r.LCH[i] = [3]float64{l, c, h}
		r.Stops[i] = toColor(cfg.Space, l, c, h)
	}

	prev := 0.0
	for i := range r.Thresholds {
		v := clamp01(cfg.Threshold.At(float64(i+1) / float64(n)))
		if v < prev {
			v = prev
		}
		r.Thresholds[i] = v
		prev = v
	}
	return r
}

func toColor(space Space, l, c, h float64) colorful.Color {
	if space == HSLuv {
		r, g, b := hsluv.HsluvToRGB(h, clamp01(c)*100, l*100)
		return colorful.Color{R: r, G: g, B: b}.Clamped()
	}
	return colorful.OkLch(l, c, h).Clamped()
}

// Clone copies the ramp so it shares no slices with @r.
func (r Ramp) Clone() Ramp {
	return Ramp{
		Stops:      append([]colorful.Color(nil), r.Stops...),
		LCH:        append([][3]float64(nil), r.LCH...),
		Thresholds: append([]float64(nil), r.Thresholds...),
	}
}

// Len is the number of stops.
func (r Ramp) Len() int {
	return len(r.Stops)
}

// Index maps feed value @v to a stop index.
func (r Ramp) Index(v float64) int {
	if len(r.Stops) == 0 {
		return 0
	}
	if math.IsNaN(v) {
		v = 0
	}
	return sort.Search(len(r.Thresholds), func(i int) bool { return r.Thresholds[i] > v })
}

// ColorFor is the stop feed value @v maps to.
func (r Ramp) ColorFor(v float64) colorful.Color {
	if len(r.Stops) == 0 {
		return colorful.Color{}
	}
	return r.Stops[r.Index(v)]
}

// Gradient spreads the stops evenly over [0,1].
func (r Ramp) Gradient() Gradient {
	g := make(Gradient, len(r.Stops))
	for i, c := range r.Stops {
		pos := 0.0
		if len(r.Stops) > 1 {
			pos = float64(i) / float64(len(r.Stops)-1)
		}
		g[i] = Keypoint{Col: c, Pos: pos}
	}
	return g
}

// Floats flattens the stops to r, g, b triples.
func (r Ramp) Floats() []float32 {
	out := make([]float32, 0, 3*len(r.Stops))
	for _, c := range r.Stops {
		out = append(out, float32(c.R), float32(c.G), float32(c.B))
	}
	return out
}

// Equal reports whether two ramps are identical.
func (r Ramp) Equal(o Ramp) bool {
	if len(r.Stops) != len(o.Stops) || len(r.Thresholds) != len(o.Thresholds) {
		return false
	}
	for i := range r.Stops {
		if r.Stops[i] != o.Stops[i] || r.LCH[i] != o.LCH[i] {
			return false
		}
	}
	for i := range r.Thresholds {
		if r.Thresholds[i] != o.Thresholds[i] {
			return false
		}
	}
	return true
}

// Keypoint is a gradient color at a position in [0,1].
type Keypoint struct {
	Col colorful.Color
	Pos float64
}

// Gradient is a sorted list of keypoints.
type Gradient []Keypoint

// At returns an HCL blend between the keypoints around @t. It relies on the keypoints
// being sorted.
func (g Gradient) At(t float64) colorful.Color {
	if len(g) == 0 {
		return colorful.Color{}
	}
	if t <= g[0].Pos {
		return g[0].Col
	}
	if t >= g[len(g)-1].Pos {
		return g[len(g)-1].Col
	}
	for i := 0; i < len(g)-1; i++ {
		c1, c2 := g[i], g[i+1]
		if c1.Pos <= t && t <= c2.Pos {
			if c2.Pos == c1.Pos {
				return c2.Col
			}
			t := (t - c1.Pos) / (c2.Pos - c1.Pos)
			return c1.Col.BlendHcl(c2.Col, t).Clamped()
		}
	}
	return g[len(g)-1].Col
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

func wrapHue(h float64) float64 {
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	return h
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
