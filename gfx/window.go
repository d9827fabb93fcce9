package gfx

import (
	"github.com/go-gl/glfw/v3.3/glfw"
)

const (
	openglVersionMajor = 4
	openglVersionMinor = 1
)

// Window represents a wrapped glfw window object.
type Window struct {
	Config     *WindowConfig
	GlfwWindow *glfw.Window
}

// WindowConfig contains a new window configuration
type WindowConfig struct {
	Width      int
	Height     int
	Title      string
	Fullscreen bool
	// VSync locks buffer swaps to the display refresh.
	VSync bool
}

// NewWindow initializes a new window object with glfw and makes its context current.
func NewWindow(cfg *WindowConfig) (*Window, error) {
	if err := glfw.Init(); err != nil {
		return nil, err
	}

	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.ContextVersionMajor, openglVersionMajor)
	glfw.WindowHint(glfw.ContextVersionMinor, openglVersionMinor)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)

	var monitor *glfw.Monitor
	width, height := cfg.Width, cfg.Height
	if cfg.Fullscreen {
		monitor = glfw.GetPrimaryMonitor()
		mode := monitor.GetVideoMode()
		width, height = mode.Width, mode.Height
	}

	window, err := glfw.CreateWindow(width, height, cfg.Title, monitor, nil)
	if err != nil {
		glfw.Terminate()
		return nil, err
	}
	window.MakeContextCurrent()
	if cfg.VSync {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}

	return &Window{Config: cfg, GlfwWindow: window}, nil
}

// Size is the framebuffer size in pixels.
func (w *Window) Size() (int, int) {
	return w.GlfwWindow.GetFramebufferSize()
}

// ShouldClose reports whether the user asked to close the window.
func (w *Window) ShouldClose() bool {
	return w.GlfwWindow.ShouldClose()
}

// Swap presents the back buffer and processes pending window events.
func (w *Window) Swap() {
	w.GlfwWindow.SwapBuffers()
	glfw.PollEvents()
}

// Poll processes pending window events without presenting a frame.
func (w *Window) Poll() {
	glfw.PollEvents()
}

// Terminate ends the glfw session
func (w *Window) Terminate() {
	w.GlfwWindow.Destroy()
	glfw.Terminate()
}
