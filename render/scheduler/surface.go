package scheduler

import (
	"sync"

	"github.com/peragwin/vuzicshader/render/uniform"
)

// Surface is where frames are submitted.
type Surface interface {
	// SetProgram switches to the shader program of the named effect.
	SetProgram(name string) error
	SetUniforms(u uniform.Set) error
	Draw() error
}

// Sizer is implemented by surfaces that know their resolution.
type Sizer interface {
	Size() (width, height int)
}

// NullSurface discards frames but remembers the last one. It is used headless and in
// tests.
type NullSurface struct {
	mu       sync.Mutex
	program  string
	uniforms uniform.Set
	frames   int
	// Programs lists every program switch in order.
	programs []string
}

// SetProgram implements Surface.
func (n *NullSurface) SetProgram(name string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.program = name
	n.programs = append(n.programs, name)
	return nil
}

// SetUniforms implements Surface.
func (n *NullSurface) SetUniforms(u uniform.Set) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.uniforms = u
	return nil
}

// Draw implements Surface.
func (n *NullSurface) Draw() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.frames++
	return nil
}

// Program is the active program name.
func (n *NullSurface) Program() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.program
}

// Programs lists every program switch in order.
func (n *NullSurface) Programs() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.programs...)
}

// Uniforms is the last submitted uniform set.
func (n *NullSurface) Uniforms() uniform.Set {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.uniforms
}

// Frames counts Draw calls.
func (n *NullSurface) Frames() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.frames
}
