package shader

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultVertexShader is the built-in vertex stage.
//
//go:embed glsl/vertex.glsl
var DefaultVertexShader string

// DefaultFragmentShader is the built-in fragment stage.
//
//go:embed glsl/fragment.glsl
var DefaultFragmentShader string

// WriteDefaults writes the built-in shaders into dir and returns their paths.
func WriteDefaults(dir string) (vertexPath, fragmentPath string, err error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", "", fmt.Errorf("creating shader dir: %w", err)
	}
	vertexPath = filepath.Join(dir, "vertex.glsl")
	fragmentPath = filepath.Join(dir, "fragment.glsl")
	if err := os.WriteFile(vertexPath, []byte(DefaultVertexShader), 0644); err != nil {
		return "", "", fmt.Errorf("writing vertex shader: %w", err)
	}
	if err := os.WriteFile(fragmentPath, []byte(DefaultFragmentShader), 0644); err != nil {
		return "", "", fmt.Errorf("writing fragment shader: %w", err)
	}
	return vertexPath, fragmentPath, nil
}
