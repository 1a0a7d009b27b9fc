// Package scene imports glTF 2.0 files into unbound models.
package scene

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"go.uber.org/zap"

	"github.com/Faultbox/microwave-sim/internal/engine/model"
	"github.com/Faultbox/microwave-sim/internal/logger"
)

// ErrImport is returned for any scene that cannot be turned into a model.
var ErrImport = errors.New("scene import failed")

// Load opens a .gltf or .glb file. Texture paths are resolved against
// textureDir, or against the scene's directory when textureDir is empty.
func Load(path, textureDir string) (*model.Model, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrImport, path, err)
	}
	if textureDir == "" {
		textureDir = filepath.Dir(path)
	}

	m, err := FromDocument(doc, textureDir)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	m.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	logger.Info("scene loaded",
		zap.String("path", path),
		zap.Int("meshes", len(m.Meshes)),
		zap.Int("textures", len(TexturePaths(m))),
	)
	return m, nil
}

// FromDocument converts every triangle primitive of doc into one mesh.
// Indices stay local to their primitive.
func FromDocument(doc *gltf.Document, textureDir string) (*model.Model, error) {
	m := &model.Model{}
	for mi, gm := range doc.Meshes {
		for pi, prim := range gm.Primitives {
			mesh, err := readPrimitive(doc, prim)
			if err != nil {
				return nil, fmt.Errorf("%w: mesh %d primitive %d: %w", ErrImport, mi, pi, err)
			}
			mesh.Name = primitiveName(gm.Name, mi, pi, len(gm.Primitives))
			mesh.TexturePath = texturePath(doc, prim, textureDir)
			m.Meshes = append(m.Meshes, mesh)
		}
	}
	if len(m.Meshes) == 0 {
		return nil, fmt.Errorf("%w: no meshes", ErrImport)
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrImport, err)
	}
	return m, nil
}

// accessor returns doc.Accessors[idx], rejecting references outside the
// document.
func accessor(doc *gltf.Document, idx int) (*gltf.Accessor, error) {
	if idx < 0 || idx >= len(doc.Accessors) {
		return nil, fmt.Errorf("accessor %d out of range (%d accessors)", idx, len(doc.Accessors))
	}
	if doc.Accessors[idx] == nil {
		return nil, fmt.Errorf("accessor %d is null", idx)
	}
	return doc.Accessors[idx], nil
}

func readPrimitive(doc *gltf.Document, prim *gltf.Primitive) (*model.Mesh, error) {
	if prim.Mode != gltf.PrimitiveTriangles {
		return nil, fmt.Errorf("unsupported primitive mode %v", prim.Mode)
	}

	posIdx, ok := prim.Attributes[gltf.POSITION]
	if !ok {
		return nil, errors.New("no POSITION attribute")
	}
	acc, err := accessor(doc, posIdx)
	if err != nil {
		return nil, fmt.Errorf("position: %w", err)
	}
	positions, err := modeler.ReadPosition(doc, acc, nil)
	if err != nil {
		return nil, fmt.Errorf("read positions: %w", err)
	}
	n := len(positions)

	mesh := &model.Mesh{
		Positions: make([]mgl32.Vec3, n),
		Normals:   make([]mgl32.Vec3, n),
		UVs:       make([]mgl32.Vec2, n),
	}
	for i, p := range positions {
		mesh.Positions[i] = mgl32.Vec3(p)
	}

	// Missing normals and UVs stay zero.
	if idx, ok := prim.Attributes[gltf.NORMAL]; ok {
		acc, err := accessor(doc, idx)
		if err != nil {
			return nil, fmt.Errorf("normal: %w", err)
		}
		normals, err := modeler.ReadNormal(doc, acc, nil)
		if err != nil {
			return nil, fmt.Errorf("read normals: %w", err)
		}
		if len(normals) != n {
			return nil, fmt.Errorf("%d normals for %d positions", len(normals), n)
		}
		for i, v := range normals {
			mesh.Normals[i] = mgl32.Vec3(v)
		}
	}
	if idx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
		acc, err := accessor(doc, idx)
		if err != nil {
			return nil, fmt.Errorf("texture coord: %w", err)
		}
		uvs, err := modeler.ReadTextureCoord(doc, acc, nil)
		if err != nil {
			return nil, fmt.Errorf("read texture coords: %w", err)
		}
		if len(uvs) != n {
			return nil, fmt.Errorf("%d texture coords for %d positions", len(uvs), n)
		}
		for i, v := range uvs {
			mesh.UVs[i] = mgl32.Vec2(v)
		}
	}

	if prim.Indices != nil {
		acc, err := accessor(doc, *prim.Indices)
		if err != nil {
			return nil, fmt.Errorf("indices: %w", err)
		}
		mesh.Indices, err = modeler.ReadIndices(doc, acc, nil)
		if err != nil {
			return nil, fmt.Errorf("read indices: %w", err)
		}
	} else {
		mesh.Indices = make([]uint32, n)
		for i := range mesh.Indices {
			mesh.Indices[i] = uint32(i)
		}
	}
	if len(mesh.Indices)%3 != 0 {
		return nil, fmt.Errorf("%d indices is not a triangle list", len(mesh.Indices))
	}
	return mesh, nil
}

// texturePath returns textureDir joined with the base colour image URI,
// or "" when the primitive has no file-backed base colour texture.
func texturePath(doc *gltf.Document, prim *gltf.Primitive, textureDir string) string {
	if prim.Material == nil || *prim.Material >= len(doc.Materials) {
		return ""
	}
	mat := doc.Materials[*prim.Material]
	if mat.PBRMetallicRoughness == nil || mat.PBRMetallicRoughness.BaseColorTexture == nil {
		return ""
	}
	texIdx := mat.PBRMetallicRoughness.BaseColorTexture.Index
	if texIdx >= len(doc.Textures) || doc.Textures[texIdx].Source == nil {
		return ""
	}
	src := *doc.Textures[texIdx].Source
	if src >= len(doc.Images) {
		return ""
	}
	img := doc.Images[src]
	if img.URI == "" || img.IsEmbeddedResource() {
		logger.Debug("skipping embedded image", zap.Int("image", src))
		return ""
	}
	return filepath.Join(textureDir, filepath.FromSlash(img.URI))
}

func primitiveName(meshName string, mi, pi, count int) string {
	if meshName == "" {
		meshName = fmt.Sprintf("mesh%d", mi)
	}
	if count > 1 {
		return fmt.Sprintf("%s#%d", meshName, pi)
	}
	return meshName
}

// TexturePaths lists the distinct texture paths the model's meshes reference.
func TexturePaths(m *model.Model) []string {
	seen := make(map[string]bool)
	var paths []string
	for _, mesh := range m.Meshes {
		if mesh.TexturePath == "" || seen[mesh.TexturePath] {
			continue
		}
		seen[mesh.TexturePath] = true
		paths = append(paths, mesh.TexturePath)
	}
	return paths
}

// Instantiate places one copy of base at each position. The first instance
// is base itself; the rest are unbound clones with their own GPU resources.
// With no positions base is returned alone at its current position.
func Instantiate(base *model.Model, positions []mgl32.Vec3) []*model.Model {
	if len(positions) == 0 {
		return []*model.Model{base}
	}
	models := make([]*model.Model, 0, len(positions))
	for i, pos := range positions {
		m := base
		if i > 0 {
			m = base.Clone()
			m.Name = fmt.Sprintf("%s[%d]", base.Name, i)
		}
		m.Position = pos
		models = append(models, m)
	}
	return models
}
