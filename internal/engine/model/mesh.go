package model

import (
	"fmt"

	"github.com/Faultbox/microwave-sim/internal/engine/gpu"
)

// Validate checks the stream lengths and index bounds.
func (m *Mesh) Validate() error {
	n := len(m.Positions)
	if len(m.Normals) != n || len(m.UVs) != n {
		return fmt.Errorf("%w %q: %d positions, %d normals, %d uvs",
			ErrInvalidMesh, m.Name, n, len(m.Normals), len(m.UVs))
	}
	for i, idx := range m.Indices {
		if int(idx) >= n {
			return fmt.Errorf("%w %q: index %d at %d out of range (%d vertices)",
				ErrInvalidMesh, m.Name, idx, i, n)
		}
	}
	return nil
}

// Bound reports whether the mesh has been uploaded and not yet released.
func (m *Mesh) Bound() bool {
	return m.GPU.VertexArray != gpu.Unbound && !m.released
}

// Released reports whether Release has freed the mesh's GPU objects.
// A released mesh is never uploaded again.
func (m *Mesh) Released() bool {
	return m.released
}

// Release deletes the mesh's vertex array and buffers. Later calls are no-ops.
// The texture handle is owned by the Model and is not touched here.
func (m *Mesh) Release(dev gpu.Device) {
	if m.released || m.GPU.VertexArray == gpu.Unbound {
		return
	}
	for _, buf := range []gpu.Handle{m.GPU.Positions, m.GPU.Normals, m.GPU.UVs, m.GPU.Indices} {
		if buf != gpu.Unbound {
			dev.DeleteBuffer(buf)
		}
	}
	dev.DeleteVertexArray(m.GPU.VertexArray)
	m.GPU = Handles{}
	m.IndexCount = 0
	m.Texture = gpu.Unbound
	m.released = true
}

// Clone deep-copies the CPU-side data. The copy starts unbound so that no
// two meshes ever share GPU objects.
func (m *Mesh) Clone() *Mesh {
	return &Mesh{
		Name:        m.Name,
		Positions:   append(m.Positions[:0:0], m.Positions...),
		Normals:     append(m.Normals[:0:0], m.Normals...),
		UVs:         append(m.UVs[:0:0], m.UVs...),
		Indices:     append(m.Indices[:0:0], m.Indices...),
		TexturePath: m.TexturePath,
	}
}

// Release deletes the texture. Later calls are no-ops.
func (t *Texture) Release(dev gpu.Device) {
	if t.released || t.Handle == gpu.Unbound {
		return
	}
	dev.DeleteTexture(t.Handle)
	t.Handle = gpu.Unbound
	t.released = true
}
