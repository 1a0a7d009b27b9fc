// Package binder uploads model data to the GPU.
package binder

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/microwave-sim/internal/engine/gpu"
	"github.com/Faultbox/microwave-sim/internal/engine/model"
	"github.com/Faultbox/microwave-sim/internal/engine/texture"
	"github.com/Faultbox/microwave-sim/internal/logger"
)

// Vertex attribute slots shared with the shaders.
const (
	AttribPosition uint32 = 0
	AttribNormal   uint32 = 1
	AttribUV       uint32 = 2
)

var (
	// ErrAlreadyBound is returned instead of allocating a second set of
	// handles for a mesh, which would leak the first.
	ErrAlreadyBound = errors.New("mesh already bound")
	// ErrReleased is returned for meshes whose model was destroyed.
	ErrReleased = errors.New("mesh already released")
	// ErrDecode wraps image read and decode failures.
	ErrDecode = errors.New("texture decode failed")
	// ErrChannels is returned for images with an unsupported channel count.
	ErrChannels = errors.New("unsupported texture channel count")
)

// SamplerParams is the sampler state applied to every loaded texture.
var SamplerParams = gpu.TextureParams{
	WrapS:     gpu.WrapMirroredRepeat,
	WrapT:     gpu.WrapMirroredRepeat,
	MinFilter: gpu.FilterLinearMipmapLinear,
	MagFilter: gpu.FilterLinear,
}

// Bind uploads every mesh of m and then its textures.
func Bind(dev gpu.Device, m *model.Model) error {
	if err := BindToGPU(dev, m); err != nil {
		return err
	}
	BindTextures(dev, m)
	return nil
}

// BindToGPU allocates one vertex array, three vertex buffers and one index
// buffer per mesh, uploads the arrays, and wires attribute slots 0/1/2 to
// position/normal/UV. Meshes are validated before anything is allocated.
func BindToGPU(dev gpu.Device, m *model.Model) error {
	for _, mesh := range m.Meshes {
		if mesh.GPU.VertexArray != gpu.Unbound {
			return fmt.Errorf("%w: %q", ErrAlreadyBound, mesh.Name)
		}
		if mesh.Released() {
			return fmt.Errorf("%w: %q", ErrReleased, mesh.Name)
		}
		if err := mesh.Validate(); err != nil {
			return err
		}
	}

	for _, mesh := range m.Meshes {
		bindMesh(dev, mesh)
		logger.Debug("mesh uploaded",
			zap.String("mesh", mesh.Name),
			zap.Int("vertices", len(mesh.Positions)),
			zap.Int32("indices", mesh.IndexCount),
			zap.Uint32("vao", uint32(mesh.GPU.VertexArray)),
		)
	}
	return nil
}

func bindMesh(dev gpu.Device, mesh *model.Mesh) {
	h := model.Handles{VertexArray: dev.GenVertexArray()}
	dev.BindVertexArray(h.VertexArray)

	h.Positions = dev.GenBuffer()
	dev.ArrayBufferData(h.Positions, flatten3(mesh.Positions))
	dev.VertexAttrib(AttribPosition, 3)

	h.Normals = dev.GenBuffer()
	dev.ArrayBufferData(h.Normals, flatten3(mesh.Normals))
	dev.VertexAttrib(AttribNormal, 3)

	h.UVs = dev.GenBuffer()
	dev.ArrayBufferData(h.UVs, flatten2(mesh.UVs))
	dev.VertexAttrib(AttribUV, 2)

	// The element buffer binding is captured by the bound vertex array.
	h.Indices = dev.GenBuffer()
	dev.ElementBufferData(h.Indices, mesh.Indices)

	dev.BindVertexArray(gpu.Unbound)

	mesh.GPU = h
	mesh.IndexCount = int32(len(mesh.Indices))
}

// BindTextures loads each mesh's diffuse image once per distinct path and
// points the mesh at it. A texture that fails to load is logged and the mesh
// is left untextured.
func BindTextures(dev gpu.Device, m *model.Model) {
	failed := make(map[string]bool)
	for _, mesh := range m.Meshes {
		path := mesh.TexturePath
		if path == "" || failed[path] {
			continue
		}
		if tex, ok := m.FindTexture(path); ok {
			mesh.Texture = tex.Handle
			continue
		}

		handle, err := LoadTextureFromImage(dev, path)
		if err != nil {
			failed[path] = true
			logger.Warn("texture skipped",
				zap.String("mesh", mesh.Name),
				zap.String("path", path),
				zap.Error(err),
			)
			continue
		}
		tex, _ := m.AddTexture(path, handle)
		mesh.Texture = tex.Handle
	}
}

// LoadTextureFromImage decodes the image at path and uploads it as a
// mipmapped 2D texture. Nothing is allocated when decoding fails.
func LoadTextureFromImage(dev gpu.Device, path string) (gpu.Handle, error) {
	px, err := texture.Load(path)
	if err != nil {
		return gpu.Unbound, fmt.Errorf("%w: %s: %w", ErrDecode, path, err)
	}
	return UploadTexture(dev, px)
}

// UploadTexture uploads decoded pixels, choosing the format from the channel count.
func UploadTexture(dev gpu.Device, px *texture.Pixels) (gpu.Handle, error) {
	if px.Width <= 0 || px.Height <= 0 || len(px.Data) < px.Width*px.Height*px.Channels {
		return gpu.Unbound, fmt.Errorf("%w: %dx%d image with %d bytes", ErrDecode, px.Width, px.Height, len(px.Data))
	}
	format, err := formatFor(px.Channels)
	if err != nil {
		return gpu.Unbound, err
	}

	tex := dev.GenTexture()
	dev.BindTexture(tex)
	dev.TexImage2D(format, px.Width, px.Height, px.Data)
	dev.GenerateMipmap()
	dev.TexParameters(SamplerParams)
	dev.BindTexture(gpu.Unbound)

	logger.Debug("texture uploaded",
		zap.Uint32("texture", uint32(tex)),
		zap.Int("width", px.Width),
		zap.Int("height", px.Height),
		zap.Stringer("format", format),
	)
	return tex, nil
}

func formatFor(channels int) (gpu.PixelFormat, error) {
	switch channels {
	case 1:
		return gpu.FormatRed, nil
	case 3:
		return gpu.FormatRGB, nil
	case 4:
		return gpu.FormatRGBA, nil
	default:
		return 0, fmt.Errorf("%w: %d", ErrChannels, channels)
	}
}
