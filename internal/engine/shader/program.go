package shader

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"

	pmath "github.com/meridianmaps/meridian/pkg/math"
)

// Program is a linked GLSL program that keeps its sources around so it
// can be compiled again after the GL context is replaced. Uniform
// locations are cached per link.
type Program struct {
	name      string
	vertexSrc string
	fragSrc   string

	handle   uint32
	uniforms map[string]int32
}

// NewProgram wraps the given sources. No GL calls happen until Build.
func NewProgram(name, vertexSrc, fragmentSrc string) *Program {
	return &Program{name: name, vertexSrc: vertexSrc, fragSrc: fragmentSrc}
}

// Name returns the identifier the program was created with.
func (p *Program) Name() string { return p.name }

// Valid reports whether the program is linked against the live context.
func (p *Program) Valid() bool { return p.handle != 0 }

// Build compiles and links the program. Calling it again after
// Invalidate relinks against the new context.
func (p *Program) Build() error {
	handle, err := CompileProgram(p.vertexSrc, p.fragSrc)
	if err != nil {
		return fmt.Errorf("program %s: %w", p.name, err)
	}
	p.handle = handle
	p.uniforms = make(map[string]int32)
	return nil
}

// Use makes the program current.
func (p *Program) Use() {
	gl.UseProgram(p.handle)
}

// Invalidate forgets the program object after a context loss. Sources
// are kept; Build restores the program.
func (p *Program) Invalidate() {
	p.handle = 0
	p.uniforms = nil
}

// Dispose deletes the program object while the context is alive.
func (p *Program) Dispose() {
	if p.handle != 0 {
		gl.DeleteProgram(p.handle)
	}
	p.Invalidate()
}

func (p *Program) uniform(name string) int32 {
	if loc, ok := p.uniforms[name]; ok {
		return loc
	}
	loc := gl.GetUniformLocation(p.handle, gl.Str(name+"\x00"))
	if p.uniforms != nil {
		p.uniforms[name] = loc
	}
	return loc
}

// SetMat4 assigns a matrix uniform on the bound program.
func (p *Program) SetMat4(name string, m pmath.Mat4) {
	if loc := p.uniform(name); loc >= 0 {
		gl.UniformMatrix4fv(loc, 1, false, m.Ptr())
	}
}

// SetVec3 assigns a vec3 uniform on the bound program.
func (p *Program) SetVec3(name string, v pmath.Vec3) {
	if loc := p.uniform(name); loc >= 0 {
		gl.Uniform3f(loc, v.X, v.Y, v.Z)
	}
}

// SetFloat assigns a float uniform on the bound program.
func (p *Program) SetFloat(name string, v float32) {
	if loc := p.uniform(name); loc >= 0 {
		gl.Uniform1f(loc, v)
	}
}

// SetInt assigns an int uniform on the bound program.
func (p *Program) SetInt(name string, v int32) {
	if loc := p.uniform(name); loc >= 0 {
		gl.Uniform1i(loc, v)
	}
}
