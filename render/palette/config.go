package palette

// Space is the color space stops are interpolated in.
type Space int

// Supported color spaces.
const (
	// OKLCH takes Lightness in [0,1], Chroma around [0,0.37] and hue in degrees.
	OKLCH Space = iota
	// HSLuv reads Lightness and Chroma as lightness and saturation in [0,1].
	HSLuv
)

func (s Space) String() string {
	if s == HSLuv {
		return "hsluv"
	}
	return "oklch"
}

// Stop count bounds.
const (
	MinStops = 9
	MaxStops = 10
)

// Anchor is one end of the ramp.
type Anchor struct {
	Lightness float64 `json:"lightness"`
	Chroma    float64 `json:"chroma"`
	HueOffset float64 `json:"hueOffset"`
}

// Config is a color anchor configuration: two anchors, a base hue and the curves that
// shape the ramp between them.
type Config struct {
	Name  string `json:"name"`
	Space Space  `json:"space"`

	BaseHue   float64 `json:"baseHue"`
	Darkest   Anchor  `json:"darkest"`
	Brightest Anchor  `json:"brightest"`

	Lightness Curve `json:"lightness"`
	Chroma    Curve `json:"chroma"`
	Hue       Curve `json:"hue"`
	// Threshold decides how much of the [0,1] feed range each stop covers.
	Threshold Curve `json:"threshold"`

	Stops int `json:"stops"`

	// BrightnessGain scales the brightest lightness by 1 + gain*mid.
	BrightnessGain float64 `json:"brightnessGain"`
	// ChromaGain scales both chromas by 1 + gain*bass.
	ChromaGain float64 `json:"chromaGain"`
	// HueShift is added to the hue in degrees, scaled by treble.
	HueShift float64 `json:"hueShift"`
}

// DefaultConfig returns the default palette.
func DefaultConfig() *Config {
	c := presets[0]
	return &c
}

func (c *Config) stops() int {
	switch {
	case c.Stops <= 0:
		return MaxStops
	case c.Stops < MinStops:
		return MinStops
	case c.Stops > MaxStops:
		return MaxStops
	}
	return c.Stops
}

// Levels are the smoothed audio levels that modulate the palette.
type Levels struct {
	Bass   float64
	Mid    float64
	Treble float64
	Volume float64
}

// maxDelta is the largest absolute difference between two sets of levels.
func (l Levels) maxDelta(o Levels) float64 {
	d := 0.0
	for _, v := range [...]float64{l.Bass - o.Bass, l.Mid - o.Mid, l.Treble - o.Treble, l.Volume - o.Volume} {
		if v < 0 {
			v = -v
		}
		if v > d {
			d = v
		}
	}
	return d
}
