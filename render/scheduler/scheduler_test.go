package scheduler

import (
	"context"
	"errors"
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/peragwin/vuzicshader/audio"
	"github.com/peragwin/vuzicshader/audio/sensors/onset"
	"github.com/peragwin/vuzicshader/render/effects"
	"github.com/peragwin/vuzicshader/render/palette"
)

const frameTime = 1.0 / 60

func tone(freq, amp float64) audio.Sample {
	x := make([]float64, 2048)
	for i := range x {
		x[i] = amp * math.Sin(2*math.Pi*freq*float64(i)/44100)
	}
	return audio.Sample{Left: x, SampleRate: 44100, BPM: 120}
}

func newScheduler(t *testing.T, src audio.Source) (*Scheduler, *NullSurface) {
	t.Helper()
	surface := &NullSurface{}
	cfg := DefaultConfig()
	cfg.Source = src
	cfg.Surface = surface
	s, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	return s, surface
}

func TestStates(t *testing.T) {
	s, surface := newScheduler(t, audio.Silence{})
	if s.State() != Idle || s.Tick(frameTime) {
		t.Fatal("an idle scheduler must not draw")
	}
	s.Start()
	if s.State() != Running || !s.Tick(frameTime) {
		t.Fatal("a running scheduler draws")
	}
	s.Pause()
	if s.State() != Paused || s.Tick(frameTime) {
		t.Fatal("a paused scheduler must not draw")
	}
	s.Resume()
	if !s.Tick(frameTime) {
		t.Fatal("a resumed scheduler draws")
	}
	s.Stop()
	if s.State() != Idle {
		t.Fatal("expected idle after Stop")
	}
	if surface.Frames() != 2 {
		t.Fatal("expected two frames, got", surface.Frames())
	}
	if s.Pipeline().Effect.Kind() != effects.Passthrough {
		t.Fatal("new schedulers run the passthrough effect")
	}
}

func TestEffectSwitchReseeds(t *testing.T) {
	src := audio.NewStaticSource(tone(100, 0.5))
	s, surface := newScheduler(t, src)
	if err := s.Activate("sphere"); err != nil {
		t.Fatal(err)
	}
	s.Start()
	for i := 0; i < 30; i++ {
		s.Tick(frameTime)
	}

	if err := s.Activate("ripple"); err != nil {
		t.Fatal(err)
	}
	if s.State() != Running {
		t.Fatal("switching must resume the prior state")
	}

	p := s.Pipeline()
	expected := p.Effect.Targets(p.Frame)
	if !reflect.DeepEqual(p.Channels.Values(), expected) {
		t.Fatalf("channels should be seeded from the latest frame before the next frame: %v vs %v",
			p.Channels.Values(), expected)
	}

	if !s.Tick(frameTime) {
		t.Fatal("expected a frame")
	}
	u := surface.Uniforms()
	if got, exp := u["uEnergy"][0], float32(expected["energy"]); got != exp {
		t.Fatal("first frame after the switch carries stale energy", got, exp)
	}
	if _, ok := u["uBrightness"]; ok {
		t.Fatal("uniforms of the previous effect leaked into the new one")
	}
	if !reflect.DeepEqual(surface.Programs(), []string{"passthrough", "sphere", "ripple"}) {
		t.Fatal("unexpected program switches", surface.Programs())
	}
}

func TestChangeTrackResetsToDefaults(t *testing.T) {
	s, _ := newScheduler(t, audio.NewStaticSource(tone(1000, 0.8)))
	if err := s.Activate("sphere"); err != nil {
		t.Fatal(err)
	}
	s.Start()
	for i := 0; i < 20; i++ {
		s.Tick(frameTime)
	}
	s.ChangeTrack(audio.Silence{})

	p := s.Pipeline()
	if p.HasFrame {
		t.Fatal("a new track has no frame yet")
	}
	for _, ch := range effects.Get(effects.Sphere).Channels() {
		if v := p.Channels.Value(ch.Name); v != ch.Default {
			t.Fatal("channel", ch.Name, "should be back at its default, got", v)
		}
	}
	if s.State() != Running {
		t.Fatal("changing track must resume the prior state")
	}
}

func TestUnknownEffect(t *testing.T) {
	s, surface := newScheduler(t, audio.Silence{})
	if err := s.Activate("sphere"); err != nil {
		t.Fatal(err)
	}
	err := s.Activate("warp-tunnel")
	if !errors.Is(err, effects.ErrUnknownEffect) {
		t.Fatal("expected ErrUnknownEffect, got", err)
	}
	if s.Effect().Kind() != effects.Passthrough || surface.Program() != "passthrough" {
		t.Fatal("unknown effects install passthrough")
	}
	s.Start()
	if !s.Tick(frameTime) {
		t.Fatal("passthrough should still render")
	}
}

type panicSource struct{ pulls int }

func (p *panicSource) Pull() (audio.Sample, bool) {
	p.pulls++
	if p.pulls%2 == 1 {
		panic("decoder exploded")
	}
	return audio.Sample{}, false
}

func TestPanicSkipsFrame(t *testing.T) {
	s, surface := newScheduler(t, &panicSource{})
	s.Start()
	for i := 0; i < 10; i++ {
		drew := s.Tick(frameTime)
		if drew != (i%2 == 1) {
			t.Fatal("frame", i, "drew", drew)
		}
	}
	p := s.Pipeline()
	if p.Frames != 5 || p.Skipped != 5 || surface.Frames() != 5 {
		t.Fatal("unexpected counts", p.Frames, p.Skipped, surface.Frames())
	}
	if len(s.failed) != 1 {
		t.Fatal("one distinct failure should be remembered, got", s.failed)
	}
	if s.State() != Running {
		t.Fatal("a panicking frame must not stop the scheduler")
	}
}

type brokenSurface struct{ NullSurface }

func (b *brokenSurface) Draw() error { return errors.New("context lost") }

func TestSurfaceErrorSkipsFrame(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Surface = &brokenSurface{}
	s, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	s.Start()
	if s.Tick(frameTime) {
		t.Fatal("a failed draw is a skipped frame")
	}
}

func TestSetParam(t *testing.T) {
	s, _ := newScheduler(t, audio.Silence{})
	if err := s.Activate("sphere"); err != nil {
		t.Fatal(err)
	}
	v, err := s.SetParam("scale", 100)
	if err != nil || v != 4 {
		t.Fatal("expected the value clamped to 4, got", v, err)
	}
	if s.Params()["scale"] != 4 {
		t.Fatal("parameter not stored")
	}
	if _, err := s.SetParam("nope", 1); !errors.Is(err, ErrUnknownParam) {
		t.Fatal("expected ErrUnknownParam, got", err)
	}
	if err := s.SetPalette("ember"); err != nil {
		t.Fatal(err)
	}
	if s.Pipeline().Modulator.Config().Name != "ember" {
		t.Fatal("palette not applied")
	}
}

func TestOnsetHook(t *testing.T) {
	src := audio.NewStaticSource(audio.Sample{})
	src.Clear()
	var got []onset.Event
	cfg := DefaultConfig()
	cfg.Source = src
	cfg.OnOnset = func(evs []onset.Event) { got = append(got, evs...) }
	s, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	s.Start()
	for i := 0; i < 10; i++ {
		s.Tick(frameTime)
	}
	if len(got) != 0 {
		t.Fatal("silence must not trigger onsets", got)
	}
	src.Set(tone(100, 0.5))
	s.Tick(frameTime)
	if len(got) == 0 {
		t.Fatal("expected onsets when the music starts")
	}
}

func TestRun(t *testing.T) {
	s, surface := newScheduler(t, audio.Silence{})
	ticks := make(chan time.Time, 3)
	start := time.Now()
	for i := 0; i < 3; i++ {
		ticks <- start.Add(time.Duration(i) * 16 * time.Millisecond)
	}
	close(ticks)
	if err := s.Run(context.Background(), ticks); err != nil {
		t.Fatal(err)
	}
	if surface.Frames() != 3 || s.State() != Idle {
		t.Fatal("expected three frames and an idle scheduler", surface.Frames(), s.State())
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.Run(ctx, make(chan time.Time)); !errors.Is(err, context.Canceled) {
		t.Fatal("expected context.Canceled, got", err)
	}
}

func TestUnknownPaletteInstallsDefault(t *testing.T) {
	s, _ := newScheduler(t, audio.Silence{})
	if err := s.SetPalette("ember"); err != nil {
		t.Fatal(err)
	}
	if err := s.SetPalette("neon"); !errors.Is(err, palette.ErrUnknownPalette) {
		t.Fatal("expected ErrUnknownPalette, got", err)
	}
	if s.Palette() != palette.DefaultConfig().Name {
		t.Fatal("expected the default palette, got", s.Palette())
	}
}
