package effects

import (
	"github.com/chewxy/math32"

	"github.com/peragwin/vuzicshader/render/uniform"
)

// Uniforms every effect provides.
func common() uniform.Table {
	return uniform.Table{
		{Name: "uTime", Size: 1, Derive: uniform.Time},
		{Name: "uResolution", Size: 2, Derive: uniform.Resolution},
		{Name: "uQuality", Size: 1, Derive: func(s *uniform.State) uniform.Value { return uniform.Scalar(s.Quality) }},
		{Name: "uTempo", Size: 1, Derive: func(s *uniform.State) uniform.Value { return uniform.Scalar(s.BPM) }},
		{Name: "uPalette", Derive: uniform.Palette},
		{Name: "uPaletteSize", Size: 1, Derive: func(s *uniform.State) uniform.Value { return uniform.Scalar(float64(s.Ramp.Len())) }},
	}
}

// samples scales a sample count by the render quality, never dropping below one.
func samples(max, quality float64) float32 {
	n := math32.Floor(float32(max)*clamp32(float32(quality), 0, 1) + 0.5)
	return math32.Max(n, 1)
}

// phase turns elapsed time into an angle in [0, 2pi) at @speed turns per second.
func phase(t, speed float64) float32 {
	return math32.Mod(float32(t*speed)*2*math32.Pi, 2*math32.Pi)
}

func clamp32(v, lo, hi float32) float32 {
	return math32.Min(math32.Max(v, lo), hi)
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	s := 0.0
	for _, x := range xs {
		s += x
	}
	return s / float64(len(xs))
}
