// Package mesh separates the CPU and GPU halves of renderable geometry.
//
// Data is plain vertex and index arrays, safe to build on any goroutine.
// Mesh wraps Data with lazily created GL buffer objects and must only be
// touched from the thread owning the GL context.
package mesh

import (
	"github.com/go-gl/gl/v4.1-core/gl"
)

// Attribute describes one interleaved float32 vertex attribute.
type Attribute struct {
	Name string
	Size int32
}

// Layout is the ordered attribute list of an interleaved vertex buffer.
type Layout []Attribute

// Stride returns the byte size of one vertex.
func (l Layout) Stride() int32 {
	var floats int32
	for _, a := range l {
		floats += a.Size
	}
	return floats * 4
}

// Data is CPU-side mesh content. Once handed to a Mesh it must not be
// mutated.
type Data struct {
	Layout   Layout
	Vertices []float32
	Indices  []uint32
}

// Empty reports whether there is nothing to draw.
func (d *Data) Empty() bool {
	return d == nil || len(d.Indices) == 0
}

// Mesh owns the GL objects for one vertex/index buffer pair. Buffers are
// created on first Draw, so building a Mesh is free of GL calls.
type Mesh struct {
	data *Data
	reg  *Registry

	vao, vbo, ebo uint32
	count         int32
	uploaded      bool
}

// New wraps data in a Mesh. The mesh registers with reg on upload so a
// lost context can reach it.
func New(data *Data, reg *Registry) *Mesh {
	return &Mesh{data: data, reg: reg}
}

// Empty reports whether drawing would be a no-op.
func (m *Mesh) Empty() bool {
	return m == nil || m.data.Empty()
}

// Draw binds the mesh and issues the indexed draw call, uploading the
// buffers first if the current context has not seen them.
func (m *Mesh) Draw() {
	if m.Empty() {
		return
	}
	if !m.uploaded {
		m.upload()
	}
	gl.BindVertexArray(m.vao)
	gl.DrawElementsWithOffset(gl.TRIANGLES, m.count, gl.UNSIGNED_INT, 0)
	gl.BindVertexArray(0)
}

func (m *Mesh) upload() {
	gl.GenVertexArrays(1, &m.vao)
	gl.BindVertexArray(m.vao)

	gl.GenBuffers(1, &m.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, m.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(m.data.Vertices)*4, gl.Ptr(m.data.Vertices), gl.STATIC_DRAW)

	gl.GenBuffers(1, &m.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, m.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(m.data.Indices)*4, gl.Ptr(m.data.Indices), gl.STATIC_DRAW)

	stride := m.data.Layout.Stride()
	var offset uintptr
	for i, attr := range m.data.Layout {
		gl.EnableVertexAttribArray(uint32(i))
		gl.VertexAttribPointerWithOffset(uint32(i), attr.Size, gl.FLOAT, false, stride, offset)
		offset += uintptr(attr.Size) * 4
	}

	gl.BindVertexArray(0)
	m.count = int32(len(m.data.Indices))
	m.uploaded = true
	if m.reg != nil {
		m.reg.Add(m)
	}
}

// Invalidate forgets the GL handles without deleting them. Called after
// the context that owned them is gone; the next Draw re-uploads from the
// retained Data.
func (m *Mesh) Invalidate() {
	m.vao, m.vbo, m.ebo = 0, 0, 0
	m.count = 0
	m.uploaded = false
}

// Dispose deletes the GL buffers while the context is still alive and
// drops the mesh from its registry. The CPU data stays usable.
func (m *Mesh) Dispose() {
	if m == nil {
		return
	}
	if m.uploaded {
		gl.DeleteBuffers(1, &m.vbo)
		gl.DeleteBuffers(1, &m.ebo)
		gl.DeleteVertexArrays(1, &m.vao)
	}
	m.Invalidate()
	if m.reg != nil {
		m.reg.Remove(m)
	}
}
