package effects

import (
	"github.com/peragwin/vuzicshader/audio/sensors/spectral"
	"github.com/peragwin/vuzicshader/render/envelope"
	"github.com/peragwin/vuzicshader/render/uniform"
)

// passthrough drives nothing from audio. It is what runs when activation fails.
type passthrough struct{}

func (passthrough) Kind() Kind { return Passthrough }
func (passthrough) Name() string { return Passthrough.String() }
func (passthrough) Channels() []envelope.ChannelConfig { return nil }
func (passthrough) Targets(spectral.Frame) map[string]float64 { return map[string]float64{} }
func (passthrough) Uniforms() uniform.Table { return common() }
func (passthrough) Params() []Param { return nil }
func (passthrough) Palette() string { return "aurora" }
