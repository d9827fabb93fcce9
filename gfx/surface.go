// Package gfx renders effects as a full screen quad with OpenGL.
package gfx

import (
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/golang/glog"

	"github.com/peragwin/vuzicshader/render/uniform"
)

func init() {
	// OpenGL requires that rendering functions be called from the main thread
	runtime.LockOSThread()
}

// ErrClosed is returned once the window was closed.
var ErrClosed = errors.New("window closed")

// paletteUniform is the uniform whose value also feeds the palette texture.
const paletteUniform = "uPalette"

// Surface draws frames into a glfw window. It must only be used from the main thread.
type Surface struct {
	Window *Window

	mu       sync.Mutex
	pending  string
	programs map[string]*Program
	active   *Program
	quad     *VertexArrayObject
	palette  *TextureObject
	// unknown remembers uniform names the active program does not declare.
	unknown map[string]bool
}

// NewSurface opens a window and prepares the quad and palette texture.
func NewSurface(cfg *WindowConfig) (*Surface, error) {
	window, err := NewWindow(cfg)
	if err != nil {
		return nil, fmt.Errorf("window: %w", err)
	}
	if err := gl.Init(); err != nil {
		window.Terminate()
		return nil, fmt.Errorf("gl: %w", err)
	}
	glog.Infof("OpenGL version %s", gl.GoStr(gl.GetString(gl.VERSION)))

	return &Surface{
		Window:   window,
		programs: make(map[string]*Program),
		quad:     newQuad(),
		palette:  newTexture(paletteImage(nil)),
		unknown:  make(map[string]bool),
	}, nil
}

// SetProgram selects the named effect's program. It may be called from any goroutine;
// the switch happens on the rendering thread at the next SetUniforms.
func (s *Surface) SetProgram(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = name
	return nil
}

// use compiles the program on first use and makes it current.
func (s *Surface) use(name string) error {
	prog, ok := s.programs[name]
	if !ok {
		var err error
		if prog, err = buildProgram(name); err != nil {
			return fmt.Errorf("program %s: %w", name, err)
		}
		s.programs[name] = prog
	}
	s.active = prog
	s.unknown = make(map[string]bool)
	gl.UseProgram(prog.ProgramID)
	if u, ok := prog.Uniforms["uPaletteTex"]; ok {
		gl.Uniform1i(u.Location, paletteUnit)
	}
	return nil
}

func buildProgram(name string) (*Program, error) {
	frag, known := fragmentSource(name)
	if !known {
		glog.Warningf("gfx: no shader for %s, using passthrough", name)
	}
	prog, err := NewProgram()
	if err != nil {
		return nil, err
	}
	for _, cfg := range []*ShaderConfig{
		{Typ: VertexShaderType, Source: vertexShaderSource},
		{Typ: FragmentShaderType, Source: frag},
	} {
		if err := prog.AttachShader(cfg); err != nil {
			prog.Delete()
			return nil, err
		}
	}
	if err := prog.Link(); err != nil {
		prog.Delete()
		return nil, err
	}
	return prog, nil
}

// SetUniforms uploads every uniform the active program declares. Uniforms the program
// does not use are ignored.
func (s *Surface) SetUniforms(set uniform.Set) error {
	if s.Window.ShouldClose() {
		return ErrClosed
	}
	s.mu.Lock()
	pending := s.pending
	s.pending = ""
	s.mu.Unlock()
	if pending != "" {
		if err := s.use(pending); err != nil {
			glog.Errorf("gfx: %v, using passthrough", err)
			if err := s.use("passthrough"); err != nil {
				return err
			}
		}
	}
	if s.active == nil {
		return errors.New("no active program")
	}
	for name, v := range set {
		if name == paletteUniform {
			s.palette.Update(paletteImage(v))
		}
		u, ok := s.active.Uniforms[name]
		if !ok {
			if !s.unknown[name] && bool(glog.V(2)) {
				glog.Infof("gfx: program ignores uniform %s", name)
			}
			s.unknown[name] = true
			continue
		}
		if !u.set(v) && !s.unknown[name] {
			s.unknown[name] = true
			glog.Warningf("gfx: cannot upload %d floats to uniform %s of type 0x%x", len(v), name, u.Type)
		}
	}
	return nil
}

// Draw renders the quad and presents the frame.
func (s *Surface) Draw() error {
	if s.Window.ShouldClose() {
		return ErrClosed
	}
	w, h := s.Size()
	gl.Viewport(0, 0, int32(w), int32(h))
	gl.Clear(gl.COLOR_BUFFER_BIT)
	s.palette.Bind()
	s.quad.Draw()
	s.Window.Swap()
	if code := gl.GetError(); code != gl.NO_ERROR {
		return fmt.Errorf("gl error 0x%x", code)
	}
	return nil
}

// Size is the framebuffer size.
func (s *Surface) Size() (int, int) {
	return s.Window.Size()
}

// ShouldClose reports whether the window was closed.
func (s *Surface) ShouldClose() bool {
	return s.Window.ShouldClose()
}

// Terminate frees every GL object and closes the window.
func (s *Surface) Terminate() {
	for _, p := range s.programs {
		p.Delete()
	}
	s.quad.Delete()
	s.palette.Delete()
	s.Window.Terminate()
}
