package uniform

import (
	"math"
	"reflect"
	"testing"

	"github.com/peragwin/vuzicshader/audio/sensors/onset"
	"github.com/peragwin/vuzicshader/audio/sensors/spectral"
	"github.com/peragwin/vuzicshader/render/palette"
)

func testState() *State {
	return &State{
		Frame:      spectral.Zero(4),
		Levels:     map[string]float64{"brightness": 0.5},
		Ramp:       palette.DeriveRamp(palette.DefaultConfig(), palette.Levels{}),
		Time:       2.5,
		Resolution: [2]float64{640, 480},
		Params:     map[string]float64{"zoom": 3},
	}
}

func TestMap(t *testing.T) {
	table := Table{
		{Name: "uBrightness", Derive: Level("brightness")},
		{Name: "uMissing", Derive: Level("missing")},
		{Name: "uZoom", Derive: Param("zoom", 1)},
		{Name: "uSpeed", Derive: Param("speed", 0.25)},
		{Name: "uTime", Derive: Time},
		{Name: "uResolution", Size: 2, Derive: Resolution},
	}
	m := NewMapper()
	set := m.Map(table, testState())

	expected := Set{
		"uBrightness": {0.5},
		"uMissing":    {0},
		"uZoom":       {3},
		"uSpeed":      {0.25},
		"uTime":       {2.5},
		"uResolution": {640, 480},
	}
	if !reflect.DeepEqual(set, expected) {
		t.Fatalf("expected %v, got %v", expected, set)
	}
	if len(m.Failed()) != 0 {
		t.Fatal("nothing should have failed", m.Failures())
	}
	if !reflect.DeepEqual(set.Names(), []string{"uBrightness", "uMissing", "uResolution", "uSpeed", "uTime", "uZoom"}) {
		t.Fatal("unexpected names", set.Names())
	}
}

func TestMapFailuresYieldZero(t *testing.T) {
	var idx []int
	table := Table{
		{Name: "uNaN", Derive: func(*State) Value { return Scalar(math.NaN()) }},
		{Name: "uInf", Size: 3, Derive: func(*State) Value { return Vec3(1, math.Inf(1), 2) }},
		{Name: "uPanic", Size: 4, Derive: func(*State) Value { return Scalar(float64(idx[3])) }},
		{Name: "uShort", Size: 2, Derive: func(*State) Value { return Scalar(1) }},
		{Name: "uNil"},
		{Name: "uOK", Derive: func(*State) Value { return Scalar(1) }},
	}
	m := NewMapper()
	for i := 0; i < 3; i++ {
		set := m.Map(table, testState())
		expected := Set{
			"uNaN":   {0},
			"uInf":   {0, 0, 0},
			"uPanic": {0, 0, 0, 0},
			"uShort": {0, 0},
			"uNil":   {0},
			"uOK":    {1},
		}
		if !reflect.DeepEqual(set, expected) {
			t.Fatalf("expected %v, got %v", expected, set)
		}
	}
	if !reflect.DeepEqual(m.Failed(), []string{"uInf", "uNaN", "uNil", "uPanic", "uShort"}) {
		t.Fatal("unexpected failures", m.Failed())
	}
	m.Reset()
	if len(m.Failures()) != 0 {
		t.Fatal("Reset should clear failures")
	}
}

func TestAmplitude(t *testing.T) {
	ev := onset.Event{Intensity: 0.8, Birth: 0, Lifetime: 1}
	s := &State{Now: 0.5}
	if s.Amplitude(ev) != 0.8 {
		t.Fatal("without a pool ripples keep their intensity")
	}
	s.Now = 2
	if s.Amplitude(ev) != 0 {
		t.Fatal("expired ripples have no amplitude")
	}
	s.Pool = onset.NewPool(4, onset.Gaussian, 4)
	s.Now = 0.5
	if a := s.Amplitude(ev); a <= 0 || a >= 0.8 {
		t.Fatal("pool decay should apply, got", a)
	}
}

func TestPaletteDerivation(t *testing.T) {
	s := testState()
	v := Palette(s)
	if len(v) != 3*s.Ramp.Len() || !v.Finite() {
		t.Fatal("unexpected palette value", v)
	}
	if !reflect.DeepEqual(Floats([]float64{1, 2}), Value{1, 2}) || len(Vec4(1, 2, 3, 4)) != 4 {
		t.Fatal("helpers")
	}
	if !reflect.DeepEqual((Table{{Name: "a"}, {Name: "b"}}).Names(), []string{"a", "b"}) {
		t.Fatal("table names")
	}
}
