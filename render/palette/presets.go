package palette

import (
	"errors"
	"fmt"
)

// ErrUnknownPalette is returned for palette names that have no preset.
var ErrUnknownPalette = errors.New("unknown palette")

var presets = []Config{
	{
		Name:           "aurora",
		BaseHue:        250,
		Darkest:        Anchor{Lightness: 0.12, Chroma: 0.05, HueOffset: 0},
		Brightest:      Anchor{Lightness: 0.85, Chroma: 0.16, HueOffset: 140},
		Lightness:      EaseIn,
		Chroma:         Ease,
		Hue:            EaseInOut,
		Threshold:      EaseOut,
		Stops:          10,
		BrightnessGain: 0.2,
		ChromaGain:     0.5,
		HueShift:       40,
	},
	{
		Name:           "ember",
		BaseHue:        20,
		Darkest:        Anchor{Lightness: 0.08, Chroma: 0.04, HueOffset: -10},
		Brightest:      Anchor{Lightness: 0.9, Chroma: 0.18, HueOffset: 70},
		Lightness:      EaseIn,
		Chroma:         EaseOut,
		Hue:            Linear,
		Threshold:      Linear,
		Stops:          9,
		BrightnessGain: 0.15,
		ChromaGain:     0.4,
		HueShift:       15,
	},
	{
		Name:           "ocean",
		BaseHue:        200,
		Darkest:        Anchor{Lightness: 0.1, Chroma: 0.06, HueOffset: 30},
		Brightest:      Anchor{Lightness: 0.8, Chroma: 0.12, HueOffset: -30},
		Lightness:      Ease,
		Chroma:         Linear,
		Hue:            Ease,
		Threshold:      EaseInOut,
		Stops:          10,
		BrightnessGain: 0.25,
		ChromaGain:     0.3,
		HueShift:       -25,
	},
	{
		Name:           "spectral",
		Space:          HSLuv,
		BaseHue:        0,
		Darkest:        Anchor{Lightness: 0.3, Chroma: 0.9, HueOffset: 0},
		Brightest:      Anchor{Lightness: 0.75, Chroma: 0.9, HueOffset: 300},
		Lightness:      Linear,
		Chroma:         Linear,
		Hue:            Linear,
		Threshold:      Linear,
		Stops:          10,
		BrightnessGain: 0.1,
		HueShift:       60,
	},
}

// Presets returns copies of the named palette configurations.
func Presets() []*Config {
	out := make([]*Config, len(presets))
	for i := range presets {
		c := presets[i]
		out[i] = &c
	}
	return out
}

// Names lists the preset names.
func Names() []string {
	out := make([]string, len(presets))
	for i := range presets {
		out[i] = presets[i].Name
	}
	return out
}

// Preset returns a copy of the named palette. Unknown names return the default palette
// along with ErrUnknownPalette.
func Preset(name string) (*Config, error) {
	for i := range presets {
		if presets[i].Name == name {
			c := presets[i]
			return &c, nil
		}
	}
	return DefaultConfig(), fmt.Errorf("palette %q: %w", name, ErrUnknownPalette)
}
