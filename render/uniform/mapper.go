package uniform

import (
	"fmt"
	"sort"

	"github.com/golang/glog"
)

// Mapper evaluates uniform tables. A failing derivation never stops the frame: it yields a
// zero value and is logged the first time it fails.
type Mapper struct {
	failed map[string]string
}

// NewMapper creates a Mapper.
func NewMapper() *Mapper {
	return &Mapper{failed: make(map[string]string)}
}

// Map evaluates every entry of @t against @s.
func (m *Mapper) Map(t Table, s *State) Set {
	out := make(Set, len(t))
	for _, e := range t {
		out[e.Name] = m.derive(e, s)
	}
	return out
}

func (m *Mapper) derive(e Entry, s *State) (v Value) {
	defer func() {
		if r := recover(); r != nil {
			m.fail(e.Name, fmt.Sprintf("derivation panicked: %v", r))
			v = e.zero()
		}
	}()
	if e.Derive == nil {
		m.fail(e.Name, "no derivation")
		return e.zero()
	}

	v = e.Derive(s)
	switch {
	case e.Size > 0 && len(v) != e.Size:
		m.fail(e.Name, fmt.Sprintf("expected %d components, got %d", e.Size, len(v)))
		return e.zero()
	case len(v) == 0:
		m.fail(e.Name, "empty value")
		return e.zero()
	case !v.Finite():
		m.fail(e.Name, fmt.Sprintf("non-finite value %v", v))
		return make(Value, len(v))
	}
	return v
}

func (m *Mapper) fail(name, reason string) {
	if _, ok := m.failed[name]; ok {
		return
	}
	m.failed[name] = reason
	glog.Warningf("uniform %s: %s, using zero", name, reason)
}

// Failures lists the uniforms that have failed at least once, with the first reason.
func (m *Mapper) Failures() map[string]string {
	out := make(map[string]string, len(m.failed))
	for k, v := range m.failed {
		out[k] = v
	}
	return out
}

// Failed returns the names of failed uniforms in order.
func (m *Mapper) Failed() []string {
	out := make([]string, 0, len(m.failed))
	for k := range m.failed {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Reset forgets past failures so they are logged again.
func (m *Mapper) Reset() {
	m.failed = make(map[string]string)
}
