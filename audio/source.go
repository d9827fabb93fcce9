package audio

import "sync"

// Sample is the most recent window of decoded audio handed to the analyzer. Right is
// empty for mono input.
type Sample struct {
	Left       []float64
	Right      []float64
	SampleRate float64
	// BPM is the current playback tempo, or 0 when unknown.
	BPM float64
}

// Stereo reports whether the sample carries a distinct right channel.
func (s Sample) Stereo() bool {
	return len(s.Right) > 0
}

// Source is pulled once per rendered frame. Pull must not block; ok is false while there
// is no audio (paused, loading, between tracks), which downstream treats as silence.
type Source interface {
	Pull() (s Sample, ok bool)
}

// Silence is a Source that never has audio.
type Silence struct{}

// Pull implements Source.
func (Silence) Pull() (Sample, bool) { return Sample{}, false }

// StaticSource replays a fixed sample every pull. The sample can be swapped between
// frames, which makes it handy for demos and tests.
type StaticSource struct {
	mu     sync.Mutex
	sample Sample
	ok     bool
}

// NewStaticSource creates a StaticSource serving @s.
func NewStaticSource(s Sample) *StaticSource {
	return &StaticSource{sample: s, ok: true}
}

// Set replaces the served sample.
func (st *StaticSource) Set(s Sample) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.sample = s
	st.ok = true
}

// Clear makes the source report no audio.
func (st *StaticSource) Clear() {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.ok = false
}

// Pull implements Source.
func (st *StaticSource) Pull() (Sample, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.sample, st.ok
}
