package gfx

import (
	"fmt"
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// Vertex attribute locations shared by every program, so one quad serves them all.
const (
	vertPosLocation = 0
	texPosLocation  = 1
)

// Uniform describes an active uniform of a linked program.
type Uniform struct {
	Location int32
	Type     uint32
	// Count is the array length, 1 for plain uniforms.
	Count int32
}

// Program represents an OpenGL program.
type Program struct {
	ProgramID uint32
	Shaders   []*Shader
	Uniforms  map[string]Uniform
}

// NewProgram creates a new Program
func NewProgram() (*Program, error) {
	prog := gl.CreateProgram()
	if prog == 0 {
		return nil, fmt.Errorf("no programs available")
	}
	return &Program{
		ProgramID: prog,
		Uniforms:  make(map[string]Uniform),
	}, nil
}

// AttachShader attaches a shader from source to a program, defering compilation
// so that calls can be chained together and finished with a call to Link()
func (p *Program) AttachShader(cfg *ShaderConfig) error {
	shader, err := NewShader(cfg)
	if err != nil {
		return err
	}
	p.Shaders = append(p.Shaders, shader)
	gl.AttachShader(p.ProgramID, shader.ShaderID)

	return nil
}

// Link links the program and collects the locations of all active uniforms.
func (p *Program) Link() error {
	gl.BindAttribLocation(p.ProgramID, vertPosLocation, gl.Str("vertPos\x00"))
	gl.BindAttribLocation(p.ProgramID, texPosLocation, gl.Str("texPos\x00"))
	gl.BindFragDataLocation(p.ProgramID, 0, gl.Str("fragColor\x00"))
	gl.LinkProgram(p.ProgramID)

	var status int32
	gl.GetProgramiv(p.ProgramID, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(p.ProgramID, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(p.ProgramID, logLength, nil, gl.Str(log))
		return fmt.Errorf("failed to link program: %v", strings.TrimRight(log, "\x00"))
	}

	for _, sh := range p.Shaders {
		gl.DetachShader(p.ProgramID, sh.ShaderID)
		sh.Delete()
	}

	var n, maxLen int32
	gl.GetProgramiv(p.ProgramID, gl.ACTIVE_UNIFORMS, &n)
	gl.GetProgramiv(p.ProgramID, gl.ACTIVE_UNIFORM_MAX_LENGTH, &maxLen)
	buf := make([]uint8, maxLen+1)
	for i := int32(0); i < n; i++ {
		var length, size int32
		var typ uint32
		gl.GetActiveUniform(p.ProgramID, uint32(i), maxLen, &length, &size, &typ, &buf[0])
		name := uniformName(string(buf[:length]))
		loc := gl.GetUniformLocation(p.ProgramID, gl.Str(name+"\x00"))
		if loc < 0 {
			continue
		}
		p.Uniforms[name] = Uniform{Location: loc, Type: typ, Count: size}
	}
	return nil
}

// Delete frees the program.
func (p *Program) Delete() {
	gl.DeleteProgram(p.ProgramID)
}

// uniformName strips the array suffix GL reports for array uniforms.
func uniformName(name string) string {
	return strings.TrimSuffix(name, "[0]")
}

// components is the number of floats per element of a uniform type, 0 when the type
// is not a float type.
func components(typ uint32) int32 {
	switch typ {
	case gl.FLOAT:
		return 1
	case gl.FLOAT_VEC2:
		return 2
	case gl.FLOAT_VEC3:
		return 3
	case gl.FLOAT_VEC4:
		return 4
	}
	return 0
}

// set uploads @v to uniform @u. Values are truncated to whole elements and to the
// declared array length.
func (u Uniform) set(v []float32) bool {
	per := components(u.Type)
	if per == 0 {
		return false
	}
	count := int32(len(v)) / per
	if count > u.Count {
		count = u.Count
	}
	if count == 0 {
		return false
	}
	switch per {
	case 1:
		gl.Uniform1fv(u.Location, count, &v[0])
	case 2:
		gl.Uniform2fv(u.Location, count, &v[0])
	case 3:
		gl.Uniform3fv(u.Location, count, &v[0])
	case 4:
		gl.Uniform4fv(u.Location, count, &v[0])
	}
	return true
}
