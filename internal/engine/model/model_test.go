package model

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/microwave-sim/internal/engine/gpu"
	"github.com/Faultbox/microwave-sim/internal/engine/gpu/gputest"
)

func quad() *Mesh {
	return &Mesh{
		Name:      "quad",
		Positions: []mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0}},
		Normals:   []mgl32.Vec3{{0, 0, 1}, {0, 0, 1}, {0, 0, 1}, {0, 0, 1}},
		UVs:       []mgl32.Vec2{{0, 0}, {1, 0}, {1, 1}, {0, 1}},
		Indices:   []uint32{0, 1, 2, 2, 3, 0},
	}
}

func TestMeshValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(m *Mesh)
		ok     bool
	}{
		{name: "valid", mutate: func(m *Mesh) {}, ok: true},
		{name: "short normals", mutate: func(m *Mesh) { m.Normals = m.Normals[:3] }},
		{name: "long uvs", mutate: func(m *Mesh) { m.UVs = append(m.UVs, mgl32.Vec2{}) }},
		{name: "index out of range", mutate: func(m *Mesh) { m.Indices[4] = 4 }},
		{name: "empty", mutate: func(m *Mesh) { *m = Mesh{} }, ok: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := quad()
			tt.mutate(m)
			err := m.Validate()
			if tt.ok && err != nil {
				t.Errorf("Validate() = %v, want nil", err)
			}
			if !tt.ok && !errors.Is(err, ErrInvalidMesh) {
				t.Errorf("Validate() = %v, want ErrInvalidMesh", err)
			}
		})
	}
}

func TestMeshReleaseExactlyOnce(t *testing.T) {
	dev := gputest.New()
	m := quad()
	m.GPU = Handles{
		VertexArray: dev.GenVertexArray(),
		Positions:   dev.GenBuffer(),
		Normals:     dev.GenBuffer(),
		UVs:         dev.GenBuffer(),
		Indices:     dev.GenBuffer(),
	}
	handles := m.GPU

	if !m.Bound() {
		t.Fatal("expected mesh to be bound")
	}

	m.Release(dev)
	m.Release(dev)

	for _, h := range []gpu.Handle{handles.VertexArray, handles.Positions, handles.Normals, handles.UVs, handles.Indices} {
		if got := dev.Deletes[h]; got != 1 {
			t.Errorf("handle %d deleted %d times, want 1", h, got)
		}
	}
	if m.Bound() {
		t.Error("mesh still bound after release")
	}
}

func TestReleaseUnboundIsNoop(t *testing.T) {
	dev := gputest.New()
	m := quad()
	m.Release(dev)
	if len(dev.Deletes) != 0 {
		t.Errorf("unbound release issued %d deletes", len(dev.Deletes))
	}
}

func TestAddTextureDedup(t *testing.T) {
	var m Model
	first, added := m.AddTexture("tex/wood.png", 7)
	if !added {
		t.Fatal("first AddTexture should add")
	}
	second, added := m.AddTexture("tex/wood.png", 9)
	if added {
		t.Error("second AddTexture with same name should not add")
	}
	if first != second {
		t.Error("expected same texture entry")
	}
	if second.Handle != 7 {
		t.Errorf("Handle = %d, want 7", second.Handle)
	}
	// Dedup is by exact string.
	if _, added := m.AddTexture("tex/Wood.png", 11); !added {
		t.Error("differently cased name should be a distinct texture")
	}
	if len(m.Textures) != 2 {
		t.Errorf("len(Textures) = %d, want 2", len(m.Textures))
	}
}

func TestModelDestroyReleasesSharedTextureOnce(t *testing.T) {
	dev := gputest.New()
	tex := dev.GenTexture()

	m := &Model{Meshes: []*Mesh{quad(), quad()}}
	m.AddTexture("shared.png", tex)
	for _, mesh := range m.Meshes {
		mesh.GPU.VertexArray = dev.GenVertexArray()
		mesh.Texture = tex
	}

	m.Destroy(dev)
	m.Destroy(dev)

	if got := dev.Deletes[tex]; got != 1 {
		t.Errorf("texture deleted %d times, want 1", got)
	}
	if dev.Live() != 0 {
		t.Errorf("Live() = %d after destroy, want 0", dev.Live())
	}
}

func TestModelClone(t *testing.T) {
	orig := &Model{
		Name:        "oven",
		Position:    mgl32.Vec3{1, 2, 3},
		Temperature: 21,
		Meshes:      []*Mesh{quad()},
	}
	orig.Meshes[0].TexturePath = "a.png"
	orig.Meshes[0].GPU.VertexArray = 5
	orig.AddTexture("a.png", 6)

	c := orig.Clone()
	if c.Meshes[0] == orig.Meshes[0] {
		t.Fatal("clone shares mesh pointer")
	}
	if c.Meshes[0].Bound() {
		t.Error("cloned mesh should start unbound")
	}
	if len(c.Textures) != 0 {
		t.Errorf("clone copied %d textures, want 0", len(c.Textures))
	}
	if c.Meshes[0].TexturePath != "a.png" {
		t.Errorf("TexturePath = %q, want a.png", c.Meshes[0].TexturePath)
	}
	c.Meshes[0].Positions[0] = mgl32.Vec3{9, 9, 9}
	if orig.Meshes[0].Positions[0] == (mgl32.Vec3{9, 9, 9}) {
		t.Error("clone shares position storage")
	}
	if c.Position != orig.Position || c.Temperature != orig.Temperature {
		t.Error("clone lost position or temperature")
	}
}
