package model

import "github.com/Faultbox/microwave-sim/internal/engine/gpu"

// Validate checks every mesh.
func (m *Model) Validate() error {
	for _, mesh := range m.Meshes {
		if err := mesh.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Bound reports whether every mesh has been uploaded.
func (m *Model) Bound() bool {
	for _, mesh := range m.Meshes {
		if !mesh.Bound() {
			return false
		}
	}
	return true
}

// FindTexture looks a texture up by exact source name.
func (m *Model) FindTexture(sourceName string) (*Texture, bool) {
	for _, tex := range m.Textures {
		if tex.SourceName == sourceName {
			return tex, true
		}
	}
	return nil, false
}

// AddTexture registers a texture unless one with the same source name
// exists, in which case the existing entry is returned and added is false.
func (m *Model) AddTexture(sourceName string, handle gpu.Handle) (tex *Texture, added bool) {
	if existing, ok := m.FindTexture(sourceName); ok {
		return existing, false
	}
	tex = &Texture{SourceName: sourceName, Handle: handle}
	m.Textures = append(m.Textures, tex)
	return tex, true
}

// IndexCount sums the recorded index counts of all meshes.
func (m *Model) IndexCount() int {
	total := 0
	for _, mesh := range m.Meshes {
		total += int(mesh.IndexCount)
	}
	return total
}

// Destroy releases every GPU resource the model owns. Safe to call twice.
func (m *Model) Destroy(dev gpu.Device) {
	for _, mesh := range m.Meshes {
		mesh.Release(dev)
	}
	for _, tex := range m.Textures {
		tex.Release(dev)
	}
}

// Clone deep-copies the CPU-side scene data into a new unbound model.
// Textures are not copied; they are created again when the clone is bound.
func (m *Model) Clone() *Model {
	c := &Model{
		Name:        m.Name,
		Position:    m.Position,
		Temperature: m.Temperature,
		Meshes:      make([]*Mesh, len(m.Meshes)),
	}
	for i, mesh := range m.Meshes {
		c.Meshes[i] = mesh.Clone()
	}
	return c
}
