package effects

import (
	"github.com/chewxy/math32"

	"github.com/peragwin/vuzicshader/audio/sensors/onset"
	"github.com/peragwin/vuzicshader/audio/sensors/spectral"
	"github.com/peragwin/vuzicshader/render/envelope"
	"github.com/peragwin/vuzicshader/render/uniform"
)

// MaxRipples is the number of ripple slots in the ripple uniforms.
const MaxRipples = 8

// ripple draws expanding rings for every live onset.
type ripple struct{}

func (ripple) Kind() Kind   { return Ripple }
func (ripple) Name() string { return Ripple.String() }

func (ripple) Channels() []envelope.ChannelConfig {
	return []envelope.ChannelConfig{
		{Name: "energy", Attack: envelope.ThirtySecond, Release: envelope.Quarter},
		{Name: "bass", Attack: envelope.Sixteenth, Release: envelope.Eighth},
	}
}

func (ripple) Targets(f spectral.Frame) map[string]float64 {
	return map[string]float64{
		"energy": f.Volume,
		"bass":   f.Bass,
	}
}

func (ripple) Params() []Param {
	return []Param{
		{Name: "speed", Default: 0.6, Min: 0.1, Max: 3, Step: 0.1},
		{Name: "width", Default: 0.05, Min: 0.01, Max: 0.3, Step: 0.01},
		{Name: "blur", Default: 12, Min: 1, Max: 32, Step: 1},
	}
}

func (ripple) Palette() string { return "ocean" }

func (ripple) Uniforms() uniform.Table {
	return append(common(),
		uniform.Entry{Name: "uEnergy", Size: 1, Derive: uniform.Level("energy")},
		uniform.Entry{Name: "uBass", Size: 1, Derive: uniform.Level("bass")},
		uniform.Entry{Name: "uWidth", Size: 1, Derive: uniform.Param("width", 0.05)},
		uniform.Entry{Name: "uBlurSamples", Size: 1, Derive: func(s *uniform.State) uniform.Value {
			return uniform.Value{samples(s.Param("blur", 12), s.Quality)}
		}},
		uniform.Entry{Name: "uRippleCount", Size: 1, Derive: func(s *uniform.State) uniform.Value {
			return uniform.Scalar(float64(len(live(s))))
		}},
		uniform.Entry{Name: "uRipples", Size: 4 * MaxRipples, Derive: rippleSlots},
		uniform.Entry{Name: "uRippleColors", Size: 3 * MaxRipples, Derive: rippleColors},
	)
}

// live returns the newest ripples that still have amplitude, at most MaxRipples.
func live(s *uniform.State) []onset.Event {
	var out []onset.Event
	for i := len(s.Ripples) - 1; i >= 0 && len(out) < MaxRipples; i-- {
		if s.Amplitude(s.Ripples[i]) > 0 {
			out = append(out, s.Ripples[i])
		}
	}
	return out
}

// rippleSlots packs each ripple as {position, amplitude, radius, band}. Unused slots are
// zero.
func rippleSlots(s *uniform.State) uniform.Value {
	out := make(uniform.Value, 4*MaxRipples)
	speed := float32(s.Param("speed", 0.6))
	for i, ev := range live(s) {
		age := float32(ev.Age(s.Now))
		radius := math32.Max(age*speed, 0)
		out[4*i] = float32(ev.Position)
		out[4*i+1] = clamp32(float32(s.Amplitude(ev)), 0, 1)
		out[4*i+2] = radius
		out[4*i+3] = float32(ev.Band)
	}
	return out
}

func rippleColors(s *uniform.State) uniform.Value {
	out := make(uniform.Value, 3*MaxRipples)
	for i, ev := range live(s) {
		c := s.Ramp.ColorFor(ev.Intensity)
		out[3*i], out[3*i+1], out[3*i+2] = float32(c.R), float32(c.G), float32(c.B)
	}
	return out
}
