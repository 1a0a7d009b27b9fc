// Package shader loads the viewer's shader program and caches its uniforms.
package shader

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/microwave-sim/internal/engine/gpu"
	"github.com/Faultbox/microwave-sim/internal/logger"
)

// Uniform names declared by the viewer shaders.
const (
	UniformModel       = "model_mat"
	UniformView        = "view_mat"
	UniformProjection  = "projection_mat"
	UniformRotation    = "rotation_mat"
	UniformImage       = "image"
	UniformTemperature = "temperature"
	UniformSource      = "source_position"
	UniformPosition    = "model_position"
)

var (
	ErrCompile = errors.New("shader compile failed")
	ErrLink    = errors.New("shader link failed")
)

// Stage names the pipeline step that failed.
type Stage string

const (
	StageVertex   Stage = "vertex"
	StageFragment Stage = "fragment"
	StageLink     Stage = "link"
)

// CompileError carries the driver's diagnostic log.
type CompileError struct {
	Stage Stage
	Path  string
	Log   string
}

func (e *CompileError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s shader %s: %s", e.Stage, e.Path, e.Log)
	}
	return fmt.Sprintf("%s: %s", e.Stage, e.Log)
}

func (e *CompileError) Unwrap() error {
	if e.Stage == StageLink {
		return ErrLink
	}
	return ErrCompile
}

// Compiler turns vertex and fragment source files into a linked program.
type Compiler interface {
	Compile(vertexPath, fragmentPath string) (gpu.Handle, error)
}

// Uniforms caches resolved uniform locations. Names the program does not
// expose resolve to gpu.NoLocation, and uploads to them are dropped.
type Uniforms struct {
	Model       gpu.Location
	View        gpu.Location
	Projection  gpu.Location
	Rotation    gpu.Location
	Image       gpu.Location
	Temperature gpu.Location
	Source      gpu.Location
	Position    gpu.Location
}

// Program is a linked shader program. It is immutable after Load.
type Program struct {
	Handle   gpu.Handle
	Uniforms Uniforms
}

// Load compiles and links the program and resolves its uniforms once.
// Any compile or link failure is returned; there is no fallback program.
func Load(dev gpu.Device, c Compiler, vertexPath, fragmentPath string) (*Program, error) {
	handle, err := c.Compile(vertexPath, fragmentPath)
	if err != nil {
		return nil, err
	}

	p := &Program{Handle: handle}
	p.Uniforms = Uniforms{
		Model:       resolve(dev, handle, UniformModel),
		View:        resolve(dev, handle, UniformView),
		Projection:  resolve(dev, handle, UniformProjection),
		Rotation:    resolve(dev, handle, UniformRotation),
		Image:       resolve(dev, handle, UniformImage),
		Temperature: resolve(dev, handle, UniformTemperature),
		Source:      resolve(dev, handle, UniformSource),
		Position:    resolve(dev, handle, UniformPosition),
	}

	logger.Debug("shader program ready",
		zap.Uint32("program", uint32(handle)),
		zap.String("vertex", vertexPath),
		zap.String("fragment", fragmentPath),
	)
	return p, nil
}

func resolve(dev gpu.Device, program gpu.Handle, name string) gpu.Location {
	loc := dev.UniformLocation(program, name)
	if loc == gpu.NoLocation {
		logger.Debug("uniform not active", zap.String("name", name))
	}
	return loc
}

// Delete releases the program.
func (p *Program) Delete(dev gpu.Device) {
	if p.Handle == gpu.Unbound {
		return
	}
	dev.DeleteProgram(p.Handle)
	p.Handle = gpu.Unbound
}
