// Package glgpu implements gpu.Device on top of OpenGL 4.1 core.
package glgpu

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/microwave-sim/internal/engine/gpu"
	"github.com/Faultbox/microwave-sim/internal/logger"
)

// maxDrainedErrors bounds Errors() in case the driver keeps reporting.
const maxDrainedErrors = 32

// Config holds initial pipeline state.
type Config struct {
	ClearColor  [3]float32
	Multisample bool
}

// Device issues OpenGL calls. The GL context must be current.
type Device struct{}

var _ gpu.Device = (*Device)(nil)

// New loads GL function pointers and sets the default pipeline state.
// IMPORTANT: Must be called AFTER the surface has made its context current!
func New(cfg Config) (*Device, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	logger.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
		zap.String("glsl", gl.GoStr(gl.GetString(gl.SHADING_LANGUAGE_VERSION))),
	)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.Disable(gl.CULL_FACE)
	gl.ClearColor(cfg.ClearColor[0], cfg.ClearColor[1], cfg.ClearColor[2], 0)
	if cfg.Multisample {
		gl.Enable(gl.MULTISAMPLE)
	}

	return &Device{}, nil
}

func (d *Device) GenVertexArray() gpu.Handle {
	var vao uint32
	gl.GenVertexArrays(1, &vao)
	return gpu.Handle(vao)
}

func (d *Device) BindVertexArray(vao gpu.Handle) {
	gl.BindVertexArray(uint32(vao))
}

func (d *Device) DeleteVertexArray(vao gpu.Handle) {
	id := uint32(vao)
	gl.DeleteVertexArrays(1, &id)
}

func (d *Device) GenBuffer() gpu.Handle {
	var buf uint32
	gl.GenBuffers(1, &buf)
	return gpu.Handle(buf)
}

func (d *Device) DeleteBuffer(buf gpu.Handle) {
	id := uint32(buf)
	gl.DeleteBuffers(1, &id)
}

func (d *Device) ArrayBufferData(buf gpu.Handle, data []float32) {
	gl.BindBuffer(gl.ARRAY_BUFFER, uint32(buf))
	if len(data) == 0 {
		gl.BufferData(gl.ARRAY_BUFFER, 0, nil, gl.STATIC_DRAW)
		return
	}
	gl.BufferData(gl.ARRAY_BUFFER, len(data)*4, gl.Ptr(data), gl.STATIC_DRAW)
}

func (d *Device) ElementBufferData(buf gpu.Handle, data []uint32) {
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, uint32(buf))
	if len(data) == 0 {
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, 0, nil, gl.STATIC_DRAW)
		return
	}
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(data)*4, gl.Ptr(data), gl.STATIC_DRAW)
}

func (d *Device) VertexAttrib(slot uint32, components int32) {
	gl.EnableVertexAttribArray(slot)
	gl.VertexAttribPointerWithOffset(slot, components, gl.FLOAT, false, components*4, 0)
}

func (d *Device) GenTexture() gpu.Handle {
	var tex uint32
	gl.GenTextures(1, &tex)
	return gpu.Handle(tex)
}

func (d *Device) BindTexture(tex gpu.Handle) {
	gl.BindTexture(gl.TEXTURE_2D, uint32(tex))
}

func (d *Device) DeleteTexture(tex gpu.Handle) {
	id := uint32(tex)
	gl.DeleteTextures(1, &id)
}

func (d *Device) ActiveTexture(unit uint32) {
	gl.ActiveTexture(gl.TEXTURE0 + unit)
}

func (d *Device) TexImage2D(format gpu.PixelFormat, width, height int, pixels []byte) {
	glFormat := pixelFormat(format)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	if len(pixels) == 0 {
		gl.TexImage2D(gl.TEXTURE_2D, 0, int32(glFormat), int32(width), int32(height), 0,
			glFormat, gl.UNSIGNED_BYTE, nil)
		return
	}
	gl.TexImage2D(gl.TEXTURE_2D, 0, int32(glFormat), int32(width), int32(height), 0,
		glFormat, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
}

func (d *Device) TexParameters(p gpu.TextureParams) {
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, wrapMode(p.WrapS))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, wrapMode(p.WrapT))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, filterMode(p.MinFilter))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, filterMode(p.MagFilter))
}

func (d *Device) GenerateMipmap() {
	gl.GenerateMipmap(gl.TEXTURE_2D)
}

func (d *Device) UseProgram(program gpu.Handle) {
	gl.UseProgram(uint32(program))
}

func (d *Device) DeleteProgram(program gpu.Handle) {
	gl.DeleteProgram(uint32(program))
}

func (d *Device) UniformLocation(program gpu.Handle, name string) gpu.Location {
	return gpu.Location(gl.GetUniformLocation(uint32(program), gl.Str(name+"\x00")))
}

func (d *Device) UniformMatrix4(loc gpu.Location, m mgl32.Mat4) {
	gl.UniformMatrix4fv(int32(loc), 1, false, &m[0])
}

func (d *Device) UniformVec3(loc gpu.Location, v mgl32.Vec3) {
	gl.Uniform3f(int32(loc), v[0], v[1], v[2])
}

func (d *Device) Uniform1f(loc gpu.Location, v float32) {
	gl.Uniform1f(int32(loc), v)
}

func (d *Device) Uniform1i(loc gpu.Location, v int32) {
	gl.Uniform1i(int32(loc), v)
}

func (d *Device) Viewport(width, height int) {
	gl.Viewport(0, 0, int32(width), int32(height))
}

func (d *Device) Clear() {
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

func (d *Device) DrawTriangles(indexCount int32) {
	gl.DrawElementsWithOffset(gl.TRIANGLES, indexCount, gl.UNSIGNED_INT, 0)
}

// ReadPixels reads the back buffer as tightly packed RGBA, bottom row first.
func (d *Device) ReadPixels(width, height int) []byte {
	pixels := make([]byte, width*height*4)
	if len(pixels) == 0 {
		return pixels
	}
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(width), int32(height), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	return pixels
}

func (d *Device) Errors() []uint32 {
	var errs []uint32
	for i := 0; i < maxDrainedErrors; i++ {
		e := gl.GetError()
		if e == gl.NO_ERROR {
			break
		}
		errs = append(errs, e)
	}
	return errs
}

func pixelFormat(f gpu.PixelFormat) uint32 {
	switch f {
	case gpu.FormatRed:
		return gl.RED
	case gpu.FormatRGB:
		return gl.RGB
	default:
		return gl.RGBA
	}
}

func wrapMode(w gpu.Wrap) int32 {
	switch w {
	case gpu.WrapMirroredRepeat:
		return gl.MIRRORED_REPEAT
	case gpu.WrapClampToEdge:
		return gl.CLAMP_TO_EDGE
	default:
		return gl.REPEAT
	}
}

func filterMode(f gpu.Filter) int32 {
	switch f {
	case gpu.FilterNearest:
		return gl.NEAREST
	case gpu.FilterLinearMipmapLinear:
		return gl.LINEAR_MIPMAP_LINEAR
	default:
		return gl.LINEAR
	}
}
