package effects

import (
	"github.com/chewxy/math32"

	"github.com/peragwin/vuzicshader/audio/sensors/spectral"
	"github.com/peragwin/vuzicshader/render/envelope"
	"github.com/peragwin/vuzicshader/render/uniform"
)

// spectrum draws the measured bands as bars.
type spectrum struct{}

func (spectrum) Kind() Kind   { return Spectrum }
func (spectrum) Name() string { return Spectrum.String() }

func (spectrum) Channels() []envelope.ChannelConfig {
	return []envelope.ChannelConfig{
		{Name: "volume", Attack: envelope.Sixteenth, Release: envelope.Half},
	}
}

func (spectrum) Targets(f spectral.Frame) map[string]float64 {
	return map[string]float64{"volume": f.Volume}
}

func (spectrum) Params() []Param {
	return []Param{
		{Name: "gain", Default: 1, Min: 0, Max: 4, Step: 0.05},
		{Name: "floor", Default: 0.02, Min: 0, Max: 0.5, Step: 0.01},
	}
}

func (spectrum) Palette() string { return "spectral" }

func (spectrum) Uniforms() uniform.Table {
	return append(common(),
		uniform.Entry{Name: "uVolume", Size: 1, Derive: uniform.Level("volume")},
		uniform.Entry{Name: "uBandCount", Size: 1, Derive: func(s *uniform.State) uniform.Value {
			return uniform.Scalar(float64(len(s.Frame.Bands)))
		}},
		uniform.Entry{Name: "uBands", Derive: func(s *uniform.State) uniform.Value {
			gain := float32(s.Param("gain", 1))
			floor := float32(s.Param("floor", 0.02))
			out := make(uniform.Value, len(s.Frame.Bands))
			for i, b := range s.Frame.Bands {
				v := float32(b) * gain
				if v < floor {
					v = 0
				}
				out[i] = math32.Min(v, 1)
			}
			return nonEmpty(out)
		}},
		uniform.Entry{Name: "uBalance", Derive: func(s *uniform.State) uniform.Value {
			return nonEmpty(uniform.Floats(s.Frame.Balance))
		}},
	)
}

func nonEmpty(v uniform.Value) uniform.Value {
	if len(v) == 0 {
		return uniform.Value{0}
	}
	return v
}
