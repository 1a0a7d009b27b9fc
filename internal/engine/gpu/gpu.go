// Package gpu defines the narrow set of GPU operations the viewer issues.
//
// The engine, binder and shader packages talk to a Device instead of calling
// OpenGL directly, so the frame loop can be driven without a live context.
// The OpenGL implementation lives in the glgpu subpackage.
package gpu

import "github.com/go-gl/mathgl/mgl32"

// Handle is an opaque GPU object name (vertex array, buffer, texture, program).
type Handle uint32

// Unbound is the sentinel for a handle that has not been allocated yet.
// OpenGL never hands out name 0 for generated objects.
const Unbound Handle = 0

// Location identifies a shader uniform.
type Location int32

// NoLocation is returned for uniforms the program does not expose.
// Uploads to it are silently ignored by the driver.
const NoLocation Location = -1

// PixelFormat is the channel layout of uploaded texel data.
type PixelFormat int

const (
	FormatRed PixelFormat = iota
	FormatRGB
	FormatRGBA
)

func (f PixelFormat) String() string {
	switch f {
	case FormatRed:
		return "RED"
	case FormatRGB:
		return "RGB"
	case FormatRGBA:
		return "RGBA"
	default:
		return "UNKNOWN"
	}
}

// Wrap is a texture coordinate wrapping mode.
type Wrap int

const (
	WrapRepeat Wrap = iota
	WrapMirroredRepeat
	WrapClampToEdge
)

// Filter is a texture sampling filter.
type Filter int

const (
	FilterNearest Filter = iota
	FilterLinear
	FilterLinearMipmapLinear
)

// TextureParams holds sampler state applied to the bound 2D texture.
type TextureParams struct {
	WrapS     Wrap
	WrapT     Wrap
	MinFilter Filter
	MagFilter Filter
}

// Device is the GPU command surface used by the viewer.
// All methods must be called from the thread that owns the GL context.
type Device interface {
	// Vertex arrays
	GenVertexArray() Handle
	BindVertexArray(vao Handle)
	DeleteVertexArray(vao Handle)

	// Buffers. Data is uploaded with static usage.
	GenBuffer() Handle
	DeleteBuffer(buf Handle)
	ArrayBufferData(buf Handle, data []float32)
	ElementBufferData(buf Handle, data []uint32)
	// VertexAttrib wires slot to the bound array buffer as tightly
	// packed float vectors of the given component count and enables it.
	VertexAttrib(slot uint32, components int32)

	// Textures
	GenTexture() Handle
	BindTexture(tex Handle)
	DeleteTexture(tex Handle)
	ActiveTexture(unit uint32)
	TexImage2D(format PixelFormat, width, height int, pixels []byte)
	TexParameters(p TextureParams)
	GenerateMipmap()

	// Programs and uniforms
	UseProgram(program Handle)
	DeleteProgram(program Handle)
	UniformLocation(program Handle, name string) Location
	UniformMatrix4(loc Location, m mgl32.Mat4)
	UniformVec3(loc Location, v mgl32.Vec3)
	Uniform1f(loc Location, v float32)
	Uniform1i(loc Location, v int32)

	// Frame
	Viewport(width, height int)
	Clear()
	DrawTriangles(indexCount int32)
	ReadPixels(width, height int) []byte

	// Errors drains the driver error queue. Debug aid only.
	Errors() []uint32
}
