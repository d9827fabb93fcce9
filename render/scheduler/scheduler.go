// Package scheduler runs the per frame pipeline: pull audio, analyze it, detect onsets,
// smooth channels, modulate color, map uniforms and submit the frame. A governor
// trades quality for frame time.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/golang/glog"

	"github.com/peragwin/vuzicshader/audio"
	"github.com/peragwin/vuzicshader/audio/sensors/onset"
	"github.com/peragwin/vuzicshader/audio/sensors/spectral"
	"github.com/peragwin/vuzicshader/render/effects"
	"github.com/peragwin/vuzicshader/render/envelope"
	"github.com/peragwin/vuzicshader/render/palette"
	"github.com/peragwin/vuzicshader/render/uniform"
)

// ErrUnknownParam is returned when setting a parameter the active effect lacks.
var ErrUnknownParam = errors.New("unknown parameter")

// State is the scheduler's run state.
type State int

// Run states.
const (
	Idle State = iota
	Running
	Paused
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Paused:
		return "paused"
	}
	return "idle"
}

// Config configures a Scheduler.
type Config struct {
	Spectral *spectral.Config
	Onset    *onset.Config
	Governor *GovernorConfig
	// Epsilon is the level change that recomputes the color ramp.
	Epsilon float64
	// Levels declares the smoothed audio levels that drive the palette.
	Levels []envelope.ChannelConfig

	Source  audio.Source
	Surface Surface

	// OnOnset, when set, receives the onsets created each frame.
	OnOnset func([]onset.Event)
}

// DefaultConfig returns a headless, silent configuration.
func DefaultConfig() *Config {
	return &Config{
		Spectral: spectral.DefaultConfig(),
		Onset:    onset.DefaultConfig(),
		Governor: DefaultGovernorConfig(),
		Epsilon:  palette.DefaultEpsilon,
		Levels: []envelope.ChannelConfig{
			{Name: "bass", Attack: envelope.Sixteenth, Release: envelope.Quarter},
			{Name: "mid", Attack: envelope.Sixteenth, Release: envelope.Quarter},
			{Name: "treble", Attack: envelope.Sixteenth, Release: envelope.Quarter},
			{Name: "volume", Attack: envelope.Sixteenth, Release: envelope.Half},
		},
	}
}

// PipelineState is all the mutable state of the pipeline. The scheduler owns it and
// hands it to each stage in turn.
type PipelineState struct {
	Effect effects.Effect
	Params map[string]float64

	// Frame is the latest analysis; HasFrame is false until one was made for the
	// current track.
	Frame    spectral.Frame
	HasFrame bool

	Channels  *envelope.Smoother
	Levels    *envelope.Smoother
	Modulator *palette.Modulator
	Uniforms  uniform.Set

	// Now is the pipeline clock in seconds.
	Now float64
	// EffectTime is the time since the effect was activated.
	EffectTime float64
	BPM        float64

	Frames  uint64
	Skipped uint64
}

// Scheduler drives one frame of the pipeline per tick.
type Scheduler struct {
	mu sync.Mutex

	cfg      Config
	state    State
	source   audio.Source
	surface  Surface
	analyzer *spectral.Analyzer
	detector *onset.Detector
	mapper   *uniform.Mapper
	governor *Governor

	pipe   PipelineState
	failed map[string]bool
}

// New creates an idle Scheduler running the passthrough effect.
func New(cfg *Config) (*Scheduler, error) {
	c := *DefaultConfig()
	if cfg != nil {
		c = *cfg
	}
	gov, err := NewGovernor(c.Governor)
	if err != nil {
		return nil, err
	}
	levels, err := envelope.New(c.Levels...)
	if err != nil {
		return nil, fmt.Errorf("palette levels: %w", err)
	}

	s := &Scheduler{
		cfg:      c,
		source:   c.Source,
		surface:  c.Surface,
		analyzer: spectral.New(c.Spectral),
		detector: onset.NewDetector(c.Onset),
		mapper:   uniform.NewMapper(),
		governor: gov,
		failed:   make(map[string]bool),
	}
	if s.source == nil {
		s.source = audio.Silence{}
	}
	if s.surface == nil {
		s.surface = &NullSurface{}
	}
	s.pipe.Levels = levels
	s.pipe.Modulator = palette.NewModulator(nil, c.Epsilon)
	if err := s.install(effects.Get(effects.Passthrough)); err != nil {
		return nil, err
	}
	return s, nil
}

// State is the run state.
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Quality is the governor's quality scalar.
func (s *Scheduler) Quality() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.governor.Quality()
}

// AverageFrameTime is the governor's rolling frame time average in seconds.
func (s *Scheduler) AverageFrameTime() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.governor.Average()
}

// Pipeline returns a snapshot of the pipeline state. The smoothers and modulator are
// shared, not copied.
func (s *Scheduler) Pipeline() PipelineState {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.pipe
	p.Params = copyParams(s.pipe.Params)
	return p
}

// Start moves an idle scheduler to Running.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Idle {
		s.state = Running
	}
}

// Pause stops frames from being produced.
func (s *Scheduler) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Running {
		s.state = Paused
	}
}

// Resume continues a paused scheduler.
func (s *Scheduler) Resume() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Paused {
		s.state = Running
	}
}

// Stop returns to Idle and clears every analysis and smoothing state.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = Idle
	s.analyzer.Reset()
	s.detector.Reset()
	s.pipe.HasFrame = false
	s.pipe.BPM = 0
	s.reseed()
}

// Activate switches to the named effect. An unknown name installs the passthrough effect
// and returns an error wrapping effects.ErrUnknownEffect.
func (s *Scheduler) Activate(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	eff, lookupErr := effects.Lookup(name)
	if lookupErr != nil {
		glog.Warningf("scheduler: %v, falling back to %s", lookupErr, eff.Name())
	}
	if err := s.install(eff); err != nil {
		glog.Errorf("scheduler: activate %s: %v", eff.Name(), err)
		if eff.Kind() != effects.Passthrough {
			if perr := s.install(effects.Get(effects.Passthrough)); perr != nil {
				glog.Errorf("scheduler: passthrough: %v", perr)
			}
		}
		return fmt.Errorf("activate %s: %w", name, err)
	}
	return lookupErr
}

// install swaps effects. The loop is held while the channels are reseeded so the first
// frame of the new effect never sees the old channel values.
func (s *Scheduler) install(eff effects.Effect) error {
	prev := s.state
	if s.state == Running {
		s.state = Paused
	}
	defer func() { s.state = prev }()

	channels, err := envelope.New(eff.Channels()...)
	if err != nil {
		return fmt.Errorf("channels: %w", err)
	}
	if err := s.surface.SetProgram(eff.Name()); err != nil {
		return fmt.Errorf("program: %w", err)
	}

	pal, err := palette.Preset(eff.Palette())
	if err != nil {
		glog.Warningf("scheduler: effect %s: %v", eff.Name(), err)
	}
	s.pipe.Effect = eff
	s.pipe.Params = effects.Defaults(eff)
	s.pipe.Channels = channels
	s.pipe.Modulator.SetConfig(pal)
	s.pipe.EffectTime = 0
	s.mapper.Reset()
	s.reseed()
	return nil
}

// ChangeTrack swaps the audio source. Analysis restarts from scratch and the channels
// fall back to their defaults until the new track produces a frame.
func (s *Scheduler) ChangeTrack(src audio.Source) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.state
	if s.state == Running {
		s.state = Paused
	}
	if src == nil {
		src = audio.Silence{}
	}
	s.source = src
	s.analyzer.Reset()
	s.detector.Reset()
	s.pipe.HasFrame = false
	s.pipe.BPM = 0
	s.reseed()
	s.state = prev
}

// reseed sets every channel to the target of the latest frame, or to its default when
// there is none.
func (s *Scheduler) reseed() {
	if !s.pipe.HasFrame {
		s.pipe.Channels.Reset()
		s.pipe.Levels.Reset()
		return
	}
	s.pipe.Channels.Seed(s.pipe.Effect.Targets(s.pipe.Frame))
	s.pipe.Levels.Seed(levelTargets(s.pipe.Frame))
}

func levelTargets(f spectral.Frame) map[string]float64 {
	return map[string]float64{
		"bass":   f.Bass,
		"mid":    f.Mid,
		"treble": f.Treble,
		"volume": f.Volume,
	}
}

// SetPalette overrides the active effect's palette. An unknown name installs the
// default palette and returns the error.
func (s *Scheduler) SetPalette(name string) error {
	cfg, err := palette.Preset(name)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pipe.Modulator.SetConfig(cfg)
	return err
}

// Palette names the palette being rendered.
func (s *Scheduler) Palette() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pipe.Modulator.Config().Name
}

// Params returns the active effect's parameter values.
func (s *Scheduler) Params() map[string]float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyParams(s.pipe.Params)
}

// Effect is the active effect.
func (s *Scheduler) Effect() effects.Effect {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pipe.Effect
}

// SetParam sets a parameter of the active effect, clamped to its range, and returns the
// value that was stored.
func (s *Scheduler) SetParam(name string, v float64) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := effects.FindParam(s.pipe.Effect, name)
	if !ok {
		return 0, fmt.Errorf("%s.%s: %w", s.pipe.Effect.Name(), name, ErrUnknownParam)
	}
	v = p.Clamp(v)
	s.pipe.Params[name] = v
	return v, nil
}

// Tick runs one frame @dt seconds after the previous one and reports whether a frame
// was submitted. It never panics: a failing frame is logged once and skipped.
func (s *Scheduler) Tick(dt float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Running {
		return false
	}
	if !(dt >= 0) || math.IsInf(dt, 0) {
		dt = 0
	}

	ok := s.frame(dt)
	if ok {
		s.pipe.Frames++
	} else {
		s.pipe.Skipped++
	}
	s.governor.Observe(dt)
	return ok
}

func (s *Scheduler) frame(dt float64) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			s.logOnce(fmt.Sprintf("frame panicked: %v", r))
			ok = false
		}
	}()

	p := &s.pipe
	p.Now += dt
	p.EffectTime += dt

	sample, pulled := s.source.Pull()
	if !pulled {
		sample = audio.Sample{}
	}
	p.BPM = sample.BPM

	quality := s.governor.Quality()
	p.Frame = s.analyzer.Analyze(sample, quality)
	p.HasFrame = true

	created := s.detector.Detect(p.Frame, p.Now, p.BPM)
	if len(created) > 0 && s.cfg.OnOnset != nil {
		s.cfg.OnOnset(created)
	}

	p.Channels.UpdateAll(p.Effect.Targets(p.Frame), p.BPM, dt)
	p.Levels.UpdateAll(levelTargets(p.Frame), p.BPM, dt)

	ramp, _ := p.Modulator.Update(palette.Levels{
		Bass:   p.Levels.Value("bass"),
		Mid:    p.Levels.Value("mid"),
		Treble: p.Levels.Value("treble"),
		Volume: p.Levels.Value("volume"),
	})

	pool := s.detector.Pool()
	st := &uniform.State{
		Frame:      p.Frame,
		Levels:     p.Channels.Values(),
		Ramp:       ramp,
		Ripples:    pool.Events(),
		Pool:       pool,
		Now:        p.Now,
		Quality:    quality,
		Time:       p.EffectTime,
		BPM:        p.BPM,
		Resolution: s.resolution(),
		Params:     p.Params,
	}
	p.Uniforms = s.mapper.Map(p.Effect.Uniforms(), st)

	if err := s.surface.SetUniforms(p.Uniforms); err != nil {
		s.logOnce(fmt.Sprintf("set uniforms: %v", err))
		return false
	}
	if err := s.surface.Draw(); err != nil {
		s.logOnce(fmt.Sprintf("draw: %v", err))
		return false
	}
	return true
}

func (s *Scheduler) resolution() [2]float64 {
	if sz, ok := s.surface.(Sizer); ok {
		w, h := sz.Size()
		return [2]float64{float64(w), float64(h)}
	}
	return [2]float64{}
}

func (s *Scheduler) logOnce(msg string) {
	if s.failed[msg] {
		return
	}
	s.failed[msg] = true
	glog.Errorf("scheduler: %s, skipping frame", msg)
}

// Run starts the scheduler and ticks it on every value from @ticks until @ctx is done,
// then stops it.
func (s *Scheduler) Run(ctx context.Context, ticks <-chan time.Time) error {
	s.Start()
	defer s.Stop()

	var last time.Time
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case t, ok := <-ticks:
			if !ok {
				return nil
			}
			dt := s.cfg.governorTarget()
			if !last.IsZero() {
				dt = t.Sub(last).Seconds()
			}
			last = t
			s.Tick(dt)
		}
	}
}

func (c *Config) governorTarget() float64 {
	if c.Governor != nil && c.Governor.TargetFrameTime > 0 {
		return c.Governor.TargetFrameTime
	}
	return DefaultGovernorConfig().TargetFrameTime
}

func copyParams(in map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
