package onset

import (
	"math"
)

// Decay selects the envelope an event's amplitude follows over its lifetime.
type Decay int

// Decay shapes.
const (
	// Gaussian is I * exp(-(age/lifetime)^2 * k).
	Gaussian Decay = iota
	// Power is I * (1 - age/lifetime)^k.
	Power
)

// Event is an OnsetEvent, also called a ripple: a detected transient that fades out
// over a bounded lifetime.
type Event struct {
	// Seq numbers events in creation order.
	Seq       uint64
	Band      Band
	Position  float64
	Intensity float64
	Birth     float64
	Lifetime  float64
	Active    bool
}

// Age is the event's age at @now.
func (e Event) Age(now float64) float64 {
	return now - e.Birth
}

// Expired reports whether the event outlived its lifetime at @now.
func (e Event) Expired(now float64) bool {
	return e.Age(now) > e.Lifetime
}

func (e Event) expiry() float64 {
	return e.Birth + e.Lifetime
}

// Pool holds live events up to a fixed capacity, ordered by birth.
type Pool struct {
	events []Event
	decay  Decay
	k      float64
}

// NewPool creates a pool holding at most @capacity events.
func NewPool(capacity int, decay Decay, k float64) *Pool {
	if capacity < 1 {
		capacity = 1
	}
	return &Pool{events: make([]Event, 0, capacity), decay: decay, k: k}
}

// Cap is the maximum number of live events.
func (p *Pool) Cap() int {
	return cap(p.events)
}

// Len is the number of live events.
func (p *Pool) Len() int {
	return len(p.events)
}

// Add inserts @ev after pruning events that expired by @now. When the pool is still full
// the event closest to expiry is evicted and returned; ties go to the oldest birth.
// The event being added is never the one dropped.
func (p *Pool) Add(ev Event, now float64) (evicted *Event) {
	p.Age(now)
	if len(p.events) == cap(p.events) {
		victim := 0
		for i, e := range p.events {
			v := p.events[victim]
			if e.expiry() < v.expiry() || e.expiry() == v.expiry() && e.Seq < v.Seq {
				victim = i
			}
		}
		out := p.events[victim]
		out.Active = false
		evicted = &out
		copy(p.events[victim:], p.events[victim+1:])
		p.events = p.events[:len(p.events)-1]
	}
	ev.Active = true
	p.events = append(p.events, ev)
	return evicted
}

// Age drops every event that expired by @now.
func (p *Pool) Age(now float64) {
	live := p.events[:0]
	for _, e := range p.events {
		if !e.Expired(now) {
			live = append(live, e)
		}
	}
	for i := len(live); i < len(p.events); i++ {
		p.events[i] = Event{}
	}
	p.events = live
}

// Events returns a copy of the live events, oldest first.
func (p *Pool) Events() []Event {
	out := make([]Event, len(p.events))
	copy(out, p.events)
	return out
}

// Clear drops every event.
func (p *Pool) Clear() {
	p.events = p.events[:0]
}

// Amplitude is the event's decayed intensity at @now, 0 outside its lifetime.
func (p *Pool) Amplitude(e Event, now float64) float64 {
	return amplitude(e, now, p.decay, p.k)
}

func amplitude(e Event, now float64, decay Decay, k float64) float64 {
	age := e.Age(now)
	if age < 0 || e.Lifetime <= 0 || age > e.Lifetime {
		return 0
	}
	x := age / e.Lifetime
	switch decay {
	case Power:
		return e.Intensity * math.Pow(1-x, k)
	default:
		return e.Intensity * math.Exp(-x*x*k)
	}
}
