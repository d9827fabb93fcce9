// Package onset finds transients in band energies and keeps a bounded pool of the
// decaying "ripple" events they produce.
package onset

import (
	"fmt"

	"github.com/golang/glog"
	"gonum.org/v1/gonum/stat"

	"github.com/peragwin/vuzicshader/audio/sensors/spectral"
	"github.com/peragwin/vuzicshader/audio/util"
)

// Band identifies what an onset was detected in. Values from BandMeasured upward are
// measured band indices offset by BandMeasured.
type Band int

// Tracked bands.
const (
	Bass Band = iota
	Mid
	Treble
	BandMeasured
)

// Measured returns the Band for measured band @i.
func Measured(i int) Band {
	return BandMeasured + Band(i)
}

func (b Band) String() string {
	switch b {
	case Bass:
		return "bass"
	case Mid:
		return "mid"
	case Treble:
		return "treble"
	}
	return fmt.Sprintf("band%d", int(b-BandMeasured))
}

// State is a band's detector state.
type State int

// Detector states.
const (
	Quiet State = iota
	Triggered
)

func (s State) String() string {
	if s == Triggered {
		return "triggered"
	}
	return "quiet"
}

type tracker struct {
	band        Band
	state       State
	history     *util.RingBuffer
	lastTrigger float64
	fired       bool
}

func (t *tracker) baseline() float64 {
	h := t.history.Recent(t.history.Cap())
	if len(h) == 0 {
		return 0
	}
	return stat.Mean(h, nil)
}

// Detector turns frames into onset events. It is deterministic: the same frames, times and
// settings always produce the same events.
type Detector struct {
	cfg      Config
	trackers []*tracker
	pool     *Pool
	seq      uint64
	bands    int
}

// NewDetector creates a Detector.
func NewDetector(cfg *Config) *Detector {
	c := *DefaultConfig()
	if cfg != nil {
		c = *cfg
	}
	if c.Window < 1 {
		c.Window = 1
	}
	d := &Detector{
		cfg:  c,
		pool: NewPool(c.Capacity, c.Decay, c.DecayK),
	}
	for _, b := range []Band{Bass, Mid, Treble} {
		d.trackers = append(d.trackers, d.newTracker(b))
	}
	return d
}

func (d *Detector) newTracker(b Band) *tracker {
	return &tracker{band: b, history: util.NewRingBuffer(d.cfg.Window)}
}

// Pool is the event pool the detector feeds.
func (d *Detector) Pool() *Pool {
	return d.pool
}

// State reports the state of band @b; untracked bands are Quiet.
func (d *Detector) State(b Band) State {
	for _, t := range d.trackers {
		if t.band == b {
			return t.state
		}
	}
	return Quiet
}

// Reset clears all baselines, states and events.
func (d *Detector) Reset() {
	for _, t := range d.trackers {
		t.history.Reset()
		t.state = Quiet
		t.fired = false
		t.lastTrigger = 0
	}
	d.pool.Clear()
}

// Detect feeds one frame observed at time @now (seconds) with tempo @bpm, ages the pool,
// and returns the events created by this frame.
func (d *Detector) Detect(f spectral.Frame, now, bpm float64) []Event {
	if d.cfg.PerBand && d.bands != len(f.Bands) {
		d.trackers = d.trackers[:3]
		for i := range f.Bands {
			d.trackers = append(d.trackers, d.newTracker(Measured(i)))
		}
		d.bands = len(f.Bands)
	}

	refractory := d.cfg.Refractory
	if d.cfg.RefractoryNote > 0 && bpm > 0 {
		refractory = d.cfg.RefractoryNote.Seconds(bpm)
	}

	d.pool.Age(now)

	var created []Event
	for _, t := range d.trackers {
		energy := d.energy(f, t.band)
		threshold := t.baseline() * d.cfg.ThresholdRatio
		if threshold < d.cfg.MinThreshold {
			threshold = d.cfg.MinThreshold
		}

		switch t.state {
		case Quiet:
			// a band with no history has no baseline to compare against yet
			armed := t.history.Len() > 0 && (!t.fired || now-t.lastTrigger >= refractory)
			if armed && energy > threshold {
				t.state = Triggered
				t.fired = true
				t.lastTrigger = now
				ev := d.newEvent(t.band, intensity(energy, threshold), now)
				if evicted := d.pool.Add(ev, now); evicted != nil && glog.V(2) {
					glog.Infof("onset: pool full, evicted %s #%d", evicted.Band, evicted.Seq)
				}
				created = append(created, ev)
			}
		case Triggered:
			if energy < threshold {
				t.state = Quiet
			}
		}

		t.history.Push(energy)
	}
	return created
}

func (d *Detector) newEvent(b Band, intensity, now float64) Event {
	d.seq++
	return Event{
		Seq:       d.seq,
		Band:      b,
		Position:  d.position(b),
		Intensity: intensity,
		Birth:     now,
		Lifetime:  d.cfg.Lifetime,
		Active:    true,
	}
}

func (d *Detector) energy(f spectral.Frame, b Band) float64 {
	switch b {
	case Bass:
		return f.Bass
	case Mid:
		return f.Mid
	case Treble:
		return f.Treble
	}
	i := int(b - BandMeasured)
	if i < len(f.Bands) {
		return f.Bands[i]
	}
	return 0
}

// position places a band along the spectrum in [0,1].
func (d *Detector) position(b Band) float64 {
	switch b {
	case Bass:
		return 0.1
	case Mid:
		return 0.5
	case Treble:
		return 0.9
	}
	if d.bands == 0 {
		return 0.5
	}
	return (float64(b-BandMeasured) + 0.5) / float64(d.bands)
}

// intensity is the normalized excess of @energy over @threshold.
func intensity(energy, threshold float64) float64 {
	den := 1 - threshold
	if den < 1e-9 {
		return 1
	}
	v := (energy - threshold) / den
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
