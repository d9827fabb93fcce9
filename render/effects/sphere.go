package effects

import (
	"github.com/chewxy/math32"

	"github.com/peragwin/vuzicshader/audio/sensors/spectral"
	"github.com/peragwin/vuzicshader/render/envelope"
	"github.com/peragwin/vuzicshader/render/uniform"
)

// sphere is a glowing orb: mid drives brightness, bass the radius and treble the hue.
type sphere struct{}

func (sphere) Kind() Kind   { return Sphere }
func (sphere) Name() string { return Sphere.String() }

func (sphere) Channels() []envelope.ChannelConfig {
	return []envelope.ChannelConfig{
		{
			Name:    "brightness",
			Attack:  envelope.Sixteenth,
			Release: envelope.Quarter,
			Default: 0.2,
			// snap most of the way, then ease into the peak
			SlowAttack: envelope.Eighth,
			Knee:       0.7,
		},
		{Name: "radius", Attack: envelope.Eighth, Release: envelope.Half, Default: 0.5},
		{Name: "hue", Attack: envelope.Quarter, Release: envelope.Whole},
		{Name: "balance", Attack: envelope.Eighth, Release: envelope.Eighth},
	}
}

func (sphere) Targets(f spectral.Frame) map[string]float64 {
	return map[string]float64{
		"brightness": f.Mid,
		"radius":     0.4 + 0.6*f.Bass,
		"hue":        f.Treble,
		"balance":    mean(f.Balance),
	}
}

func (sphere) Params() []Param {
	return []Param{
		{Name: "scale", Default: 1, Min: 0.1, Max: 4, Step: 0.1},
		{Name: "spin", Default: 0.1, Min: 0, Max: 2, Step: 0.05},
		{Name: "blur", Default: 24, Min: 1, Max: 64, Step: 1},
		{Name: "glow", Default: 0.6, Min: 0, Max: 1, Step: 0.05},
	}
}

func (sphere) Palette() string { return "aurora" }

func (sphere) Uniforms() uniform.Table {
	return append(common(),
		uniform.Entry{Name: "uBrightness", Size: 1, Derive: func(s *uniform.State) uniform.Value {
			b := float32(s.Level("brightness")) * (1 + float32(s.Param("glow", 0.6)))
			return uniform.Value{clamp32(b, 0, 2)}
		}},
		uniform.Entry{Name: "uRadius", Size: 1, Derive: func(s *uniform.State) uniform.Value {
			return uniform.Scalar(s.Level("radius") * s.Param("scale", 1))
		}},
		uniform.Entry{Name: "uHue", Size: 1, Derive: uniform.Level("hue")},
		uniform.Entry{Name: "uBalance", Size: 1, Derive: uniform.Level("balance")},
		uniform.Entry{Name: "uRotation", Size: 2, Derive: func(s *uniform.State) uniform.Value {
			a := phase(s.Time, s.Param("spin", 0.1))
			return uniform.Value{math32.Cos(a), math32.Sin(a)}
		}},
		uniform.Entry{Name: "uBlurSamples", Size: 1, Derive: func(s *uniform.State) uniform.Value {
			return uniform.Value{samples(s.Param("blur", 24), s.Quality)}
		}},
		uniform.Entry{Name: "uColor", Size: 3, Derive: func(s *uniform.State) uniform.Value {
			c := s.Ramp.ColorFor(s.Level("brightness"))
			return uniform.Vec3(c.R, c.G, c.B)
		}},
	)
}
