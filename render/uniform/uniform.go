// Package uniform turns pipeline state into named shader uniform values through
// declarative derivation tables.
package uniform

import (
	"math"
	"sort"

	"github.com/peragwin/vuzicshader/audio/sensors/onset"
	"github.com/peragwin/vuzicshader/audio/sensors/spectral"
	"github.com/peragwin/vuzicshader/render/palette"
)

// Value is a uniform's components: one for a float, up to four for a vector, more for
// arrays.
type Value []float32

// Finite reports whether every component is a finite number.
func (v Value) Finite() bool {
	for _, x := range v {
		if math.IsNaN(float64(x)) || math.IsInf(float64(x), 0) {
			return false
		}
	}
	return true
}

// Set is one frame's uniforms by name.
type Set map[string]Value

// Names returns the uniform names in order.
func (s Set) Names() []string {
	out := make([]string, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// State is everything a derivation may read for the current frame.
type State struct {
	Frame spectral.Frame
	// Levels are the smoothed channel values by channel name.
	Levels  map[string]float64
	Ramp    palette.Ramp
	Ripples []onset.Event
	// Pool gives ripple amplitudes their decay shape; without it ripples keep their
	// initial intensity.
	Pool *onset.Pool
	// Now is the clock ripples are aged against.
	Now     float64
	Quality float64
	// Time is seconds since the effect was activated.
	Time       float64
	BPM        float64
	Resolution [2]float64
	Params     map[string]float64
}

// Level returns smoothed channel @name, 0 when absent.
func (s *State) Level(name string) float64 {
	return s.Levels[name]
}

// Param returns tunable parameter @name, or @def when unset.
func (s *State) Param(name string, def float64) float64 {
	if v, ok := s.Params[name]; ok {
		return v
	}
	return def
}

// Amplitude is ripple @ev's decayed intensity at Now.
func (s *State) Amplitude(ev onset.Event) float64 {
	if s.Pool == nil {
		if ev.Expired(s.Now) {
			return 0
		}
		return ev.Intensity
	}
	return s.Pool.Amplitude(ev, s.Now)
}

// Derivation computes one uniform.
type Derivation func(s *State) Value

// Entry binds a uniform name to its derivation. Size is the expected number of
// components; 0 accepts any length and falls back to a single zero on failure.
type Entry struct {
	Name   string
	Size   int
	Derive Derivation
}

func (e Entry) zero() Value {
	if e.Size > 0 {
		return make(Value, e.Size)
	}
	return Value{0}
}

// Table is a uniform derivation table.
type Table []Entry

// Names lists the uniforms a table produces, in table order.
func (t Table) Names() []string {
	out := make([]string, len(t))
	for i, e := range t {
		out[i] = e.Name
	}
	return out
}

// Scalar makes a single component value.
func Scalar(x float64) Value {
	return Value{float32(x)}
}

// Vec2 makes a two component value.
func Vec2(x, y float64) Value {
	return Value{float32(x), float32(y)}
}

// Vec3 makes a three component value.
func Vec3(x, y, z float64) Value {
	return Value{float32(x), float32(y), float32(z)}
}

// Vec4 makes a four component value.
func Vec4(x, y, z, w float64) Value {
	return Value{float32(x), float32(y), float32(z), float32(w)}
}

// Floats converts a float64 slice.
func Floats(xs []float64) Value {
	out := make(Value, len(xs))
	for i, x := range xs {
		out[i] = float32(x)
	}
	return out
}

// Level derives a uniform from smoothed channel @name.
func Level(name string) Derivation {
	return func(s *State) Value { return Scalar(s.Level(name)) }
}

// Param derives a uniform from tunable parameter @name.
func Param(name string, def float64) Derivation {
	return func(s *State) Value { return Scalar(s.Param(name, def)) }
}

// Time derives the elapsed time.
func Time(s *State) Value {
	return Scalar(s.Time)
}

// Resolution derives the surface size.
func Resolution(s *State) Value {
	return Vec2(s.Resolution[0], s.Resolution[1])
}

// Palette derives the flattened ramp colors.
func Palette(s *State) Value {
	return Value(s.Ramp.Floats())
}
