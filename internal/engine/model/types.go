// Package model holds the CPU-side scene data and owns its GPU handles.
package model

import (
	"errors"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/microwave-sim/internal/engine/gpu"
)

// ErrInvalidMesh is returned when a mesh breaks its array invariants.
var ErrInvalidMesh = errors.New("invalid mesh")

// Handles are the GPU objects backing one mesh.
type Handles struct {
	VertexArray gpu.Handle
	Positions   gpu.Handle
	Normals     gpu.Handle
	UVs         gpu.Handle
	Indices     gpu.Handle
}

// Mesh is one indexed triangle list with non-interleaved vertex streams.
//
// Positions, Normals and UVs always have the same length and every index
// addresses a vertex. GPU handles stay Unbound until the binder uploads the
// mesh, and are released exactly once by Release.
type Mesh struct {
	Name      string
	Positions []mgl32.Vec3
	Normals   []mgl32.Vec3
	UVs       []mgl32.Vec2
	Indices   []uint32

	// TexturePath is the diffuse image the material points at, if any.
	TexturePath string

	GPU Handles
	// IndexCount is recorded at upload time and drives the draw call.
	IndexCount int32
	// Texture is borrowed from the owning Model's texture list.
	Texture gpu.Handle

	released bool
}

// Texture is a decoded image living on the GPU, keyed by its source path.
type Texture struct {
	SourceName string
	Handle     gpu.Handle

	released bool
}

// Model exclusively owns its meshes, its textures and their GPU resources.
type Model struct {
	Name        string
	Meshes      []*Mesh
	Textures    []*Texture
	Position    mgl32.Vec3
	Temperature float32
}
