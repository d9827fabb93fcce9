// Package effects is the registry of known visual effects. Each kind declares its
// smoothed channels, how the latest audio frame drives them, its tunable parameters,
// its palette and its uniform derivation table.
package effects

import (
	"errors"
	"fmt"
	"sort"

	"github.com/peragwin/vuzicshader/audio/sensors/spectral"
	"github.com/peragwin/vuzicshader/render/envelope"
	"github.com/peragwin/vuzicshader/render/uniform"
)

// ErrUnknownEffect is returned when activating an effect that is not registered.
var ErrUnknownEffect = errors.New("unknown effect")

// Kind tags an effect implementation.
type Kind int

// Known effect kinds.
const (
	Passthrough Kind = iota
	Sphere
	Ripple
	Spectrum
)

var kindNames = map[Kind]string{
	Passthrough: "passthrough",
	Sphere:      "sphere",
	Ripple:      "ripple",
	Spectrum:    "spectrum",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Effect is implemented by every registered kind.
type Effect interface {
	Kind() Kind
	Name() string
	// Channels declares the smoothed channels the effect reads.
	Channels() []envelope.ChannelConfig
	// Targets maps the latest frame to a target for every declared channel.
	Targets(f spectral.Frame) map[string]float64
	Uniforms() uniform.Table
	Params() []Param
	// Palette names the palette preset the effect starts with.
	Palette() string
}

// Param is a user tunable control.
type Param struct {
	Name    string  `json:"name"`
	Default float64 `json:"default"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Step    float64 `json:"step"`
}

// Clamp snaps @v to the parameter's step and range.
func (p Param) Clamp(v float64) float64 {
	if v != v {
		return p.Default
	}
	if p.Step > 0 {
		n := (v - p.Min) / p.Step
		v = p.Min + float64(int64(n+0.5))*p.Step
	}
	if v < p.Min {
		v = p.Min
	}
	if v > p.Max {
		v = p.Max
	}
	return v
}

// Defaults returns the default value of every parameter of @e.
func Defaults(e Effect) map[string]float64 {
	out := make(map[string]float64)
	for _, p := range e.Params() {
		out[p.Name] = p.Default
	}
	return out
}

// FindParam looks up parameter @name of @e.
func FindParam(e Effect, name string) (Param, bool) {
	for _, p := range e.Params() {
		if p.Name == name {
			return p, true
		}
	}
	return Param{}, false
}

var registry = map[Kind]Effect{
	Passthrough: passthrough{},
	Sphere:      sphere{},
	Ripple:      ripple{},
	Spectrum:    spectrum{},
}

// Get returns the implementation of @k, or Passthrough for an unknown kind.
func Get(k Kind) Effect {
	if e, ok := registry[k]; ok {
		return e
	}
	return registry[Passthrough]
}

// Lookup finds an effect by name. Unknown names return Passthrough along with
// ErrUnknownEffect.
func Lookup(name string) (Effect, error) {
	for k, n := range kindNames {
		if n == name {
			return Get(k), nil
		}
	}
	return Get(Passthrough), fmt.Errorf("effect %q: %w", name, ErrUnknownEffect)
}

// Names lists the registered effect names.
func Names() []string {
	out := make([]string, 0, len(registry))
	for k := range registry {
		out = append(out, k.String())
	}
	sort.Strings(out)
	return out
}
