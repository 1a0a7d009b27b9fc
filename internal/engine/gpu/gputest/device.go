// Package gputest provides an in-memory gpu.Device that records every call.
package gputest

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/microwave-sim/internal/engine/gpu"
)

// Attrib is a vertex attribute slot wired inside a vertex array.
type Attrib struct {
	Buffer     gpu.Handle
	Components int32
}

// Draw is one recorded indexed draw call.
type Draw struct {
	VertexArray gpu.Handle
	Texture     gpu.Handle
	Program     gpu.Handle
	IndexCount  int32
}

// TextureImage is the last image uploaded to a texture.
type TextureImage struct {
	Format        gpu.PixelFormat
	Width, Height int
	Pixels        []byte
	Params        gpu.TextureParams
	Mipmapped     bool
}

// Device records GPU state transitions without a driver.
type Device struct {
	next gpu.Handle

	// Live objects by kind. Deleting removes the entry.
	VertexArrays map[gpu.Handle]map[uint32]Attrib
	Buffers      map[gpu.Handle][]float32
	Elements     map[gpu.Handle][]uint32
	Textures     map[gpu.Handle]*TextureImage

	// Deletes counts delete calls per handle, used to assert exactly-once release.
	Deletes map[gpu.Handle]int

	// MissingUniforms lists names the fake program does not expose.
	MissingUniforms map[string]bool
	locations       map[string]gpu.Location
	Uniforms        map[gpu.Location]any

	Draws        []Draw
	Clears       int
	BoundProgram gpu.Handle
	ActiveUnit   uint32
	Viewports    [][2]int

	// PendingErrors is returned and cleared by Errors.
	PendingErrors []uint32

	boundVAO     gpu.Handle
	boundArray   gpu.Handle
	boundTexture gpu.Handle
}

var _ gpu.Device = (*Device)(nil)

// New returns an empty recording device.
func New() *Device {
	return &Device{
		VertexArrays:    make(map[gpu.Handle]map[uint32]Attrib),
		Buffers:         make(map[gpu.Handle][]float32),
		Elements:        make(map[gpu.Handle][]uint32),
		Textures:        make(map[gpu.Handle]*TextureImage),
		Deletes:         make(map[gpu.Handle]int),
		MissingUniforms: make(map[string]bool),
		locations:       make(map[string]gpu.Location),
		Uniforms:        make(map[gpu.Location]any),
	}
}

func (d *Device) gen() gpu.Handle {
	d.next++
	return d.next
}

// Live reports the number of allocated, not yet deleted objects.
func (d *Device) Live() int {
	return len(d.VertexArrays) + len(d.Buffers) + len(d.Elements) + len(d.Textures)
}

func (d *Device) GenVertexArray() gpu.Handle {
	h := d.gen()
	d.VertexArrays[h] = make(map[uint32]Attrib)
	return h
}

func (d *Device) BindVertexArray(vao gpu.Handle) { d.boundVAO = vao }

func (d *Device) DeleteVertexArray(vao gpu.Handle) {
	d.Deletes[vao]++
	delete(d.VertexArrays, vao)
}

func (d *Device) GenBuffer() gpu.Handle { return d.gen() }

func (d *Device) DeleteBuffer(buf gpu.Handle) {
	d.Deletes[buf]++
	delete(d.Buffers, buf)
	delete(d.Elements, buf)
}

func (d *Device) ArrayBufferData(buf gpu.Handle, data []float32) {
	d.boundArray = buf
	d.Buffers[buf] = append([]float32(nil), data...)
}

func (d *Device) ElementBufferData(buf gpu.Handle, data []uint32) {
	d.Elements[buf] = append([]uint32(nil), data...)
}

func (d *Device) VertexAttrib(slot uint32, components int32) {
	if attribs, ok := d.VertexArrays[d.boundVAO]; ok {
		attribs[slot] = Attrib{Buffer: d.boundArray, Components: components}
	}
}

func (d *Device) GenTexture() gpu.Handle {
	h := d.gen()
	d.Textures[h] = &TextureImage{}
	return h
}

func (d *Device) BindTexture(tex gpu.Handle) { d.boundTexture = tex }

func (d *Device) DeleteTexture(tex gpu.Handle) {
	d.Deletes[tex]++
	delete(d.Textures, tex)
}

func (d *Device) ActiveTexture(unit uint32) { d.ActiveUnit = unit }

func (d *Device) TexImage2D(format gpu.PixelFormat, width, height int, pixels []byte) {
	if img, ok := d.Textures[d.boundTexture]; ok {
		img.Format = format
		img.Width = width
		img.Height = height
		img.Pixels = append([]byte(nil), pixels...)
	}
}

func (d *Device) TexParameters(p gpu.TextureParams) {
	if img, ok := d.Textures[d.boundTexture]; ok {
		img.Params = p
	}
}

func (d *Device) GenerateMipmap() {
	if img, ok := d.Textures[d.boundTexture]; ok {
		img.Mipmapped = true
	}
}

func (d *Device) UseProgram(program gpu.Handle) { d.BoundProgram = program }

func (d *Device) DeleteProgram(program gpu.Handle) { d.Deletes[program]++ }

func (d *Device) UniformLocation(_ gpu.Handle, name string) gpu.Location {
	if d.MissingUniforms[name] {
		return gpu.NoLocation
	}
	if loc, ok := d.locations[name]; ok {
		return loc
	}
	loc := gpu.Location(len(d.locations))
	d.locations[name] = loc
	return loc
}

// LocationOf returns the location handed out for name, or NoLocation.
func (d *Device) LocationOf(name string) gpu.Location {
	if loc, ok := d.locations[name]; ok {
		return loc
	}
	return gpu.NoLocation
}

func (d *Device) set(loc gpu.Location, v any) {
	if loc == gpu.NoLocation {
		return
	}
	d.Uniforms[loc] = v
}

func (d *Device) UniformMatrix4(loc gpu.Location, m mgl32.Mat4) { d.set(loc, m) }
func (d *Device) UniformVec3(loc gpu.Location, v mgl32.Vec3)    { d.set(loc, v) }
func (d *Device) Uniform1f(loc gpu.Location, v float32)         { d.set(loc, v) }
func (d *Device) Uniform1i(loc gpu.Location, v int32)           { d.set(loc, v) }

// Matrix returns the last matrix uploaded to the named uniform.
func (d *Device) Matrix(name string) (mgl32.Mat4, bool) {
	m, ok := d.Uniforms[d.LocationOf(name)].(mgl32.Mat4)
	return m, ok
}

func (d *Device) Viewport(width, height int) {
	d.Viewports = append(d.Viewports, [2]int{width, height})
}

func (d *Device) Clear() { d.Clears++ }

func (d *Device) DrawTriangles(indexCount int32) {
	d.Draws = append(d.Draws, Draw{
		VertexArray: d.boundVAO,
		Texture:     d.boundTexture,
		Program:     d.BoundProgram,
		IndexCount:  indexCount,
	})
}

// ReadPixels returns an opaque mid-grey frame.
func (d *Device) ReadPixels(width, height int) []byte {
	pixels := make([]byte, width*height*4)
	for i := range pixels {
		pixels[i] = 0x80
	}
	return pixels
}

func (d *Device) Errors() []uint32 {
	errs := d.PendingErrors
	d.PendingErrors = nil
	return errs
}
