package envelope

import (
	"fmt"
	"sort"
)

// Smoother is an ordered set of named channels updated once per
// frame.
type Smoother struct {
	channels []*Channel
	index    map[string]*Channel
}

// New creates a Smoother with one channel per config. Duplicate names are an error.
func New(cfgs ...ChannelConfig) (*Smoother, error) {
	s := &Smoother{index: make(map[string]*Channel, len(cfgs))}
	for _, cfg := range cfgs {
		if _, ok := s.index[cfg.Name]; ok {
			return nil, fmt.Errorf("duplicate envelope channel %q", cfg.Name)
		}
		ch := NewChannel(cfg)
		s.channels = append(s.channels, ch)
		s.index[cfg.Name] = ch
	}
	return s, nil
}

// Update advances the named channel. Unknown names are ignored and return 0.
func (s *Smoother) Update(name string, target, bpm, dt float64) float64 {
	ch, ok := s.index[name]
	if !ok {
		return 0
	}
	return ch.Update(target, bpm, dt)
}

// UpdateAll advances every channel that has a target in @targets.
func (s *Smoother) UpdateAll(targets map[string]float64, bpm, dt float64) {
	for _, ch := range s.channels {
		if t, ok := targets[ch.Name]; ok {
			ch.Update(t, bpm, dt)
		}
	}
}

// Channel returns the named channel, or nil.
func (s *Smoother) Channel(name string) *Channel {
	return s.index[name]
}

// Value returns the current value of the named channel, or 0.
func (s *Smoother) Value(name string) float64 {
	if ch, ok := s.index[name]; ok {
		return ch.Current
	}
	return 0
}

// Values snapshots every channel's current value.
func (s *Smoother) Values() map[string]float64 {
	out := make(map[string]float64, len(s.channels))
	for _, ch := range s.channels {
		out[ch.Name] = ch.Current
	}
	return out
}

// Names lists the channels in sorted order.
func (s *Smoother) Names() []string {
	names := make([]string, 0, len(s.channels))
	for _, ch := range s.channels {
		names = append(names, ch.Name)
	}
	sort.Strings(names)
	return names
}

// Seed sets every channel to the value given for it, or to its default.
func (s *Smoother) Seed(values map[string]float64) {
	for _, ch := range s.channels {
		if v, ok := values[ch.Name]; ok {
			ch.Seed(v)
		} else {
			ch.Seed(ch.Default)
		}
	}
}

// Reset seeds every channel with its default.
func (s *Smoother) Reset() {
	s.Seed(nil)
}
