// Package renderer drives the per-frame render loop.
package renderer

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/microwave-sim/internal/engine/camera"
	"github.com/Faultbox/microwave-sim/internal/engine/debug"
	"github.com/Faultbox/microwave-sim/internal/engine/gpu"
	"github.com/Faultbox/microwave-sim/internal/engine/input"
	"github.com/Faultbox/microwave-sim/internal/engine/model"
	"github.com/Faultbox/microwave-sim/internal/engine/shader"
	"github.com/Faultbox/microwave-sim/internal/engine/surface"
	"github.com/Faultbox/microwave-sim/internal/logger"
	"github.com/Faultbox/microwave-sim/internal/thermal"
)

var (
	ErrNoModels = errors.New("no models to render")
	ErrNotBound = errors.New("model not uploaded to GPU")
)

// Projection parameters.
const (
	FieldOfView = 45.0
	AspectRatio = 4.0 / 3.0
	NearPlane   = 0.1
	FarPlane    = 1000.0
)

// DefaultStep is the camera rotation per frame per held key, in radians.
const DefaultStep = 0.02

// TimelineStep is the simulated time that passes per tick.
const TimelineStep = time.Millisecond

// TextureUnit is the sampler unit every mesh texture is bound to.
const TextureUnit = 0

// State is the engine's loop state.
type State int

const (
	Running State = iota
	Interrupted
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Interrupted:
		return "interrupted"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Config holds engine configuration. The caller validates it.
type Config struct {
	SourceFrequencyHz  float64
	SourcePosition     mgl32.Vec3
	VertexShaderPath   string
	FragmentShaderPath string

	// Step is the camera rotation per frame per key; 0 means DefaultStep.
	Step float32
	// CheckErrors drains the GL error queue after every frame.
	CheckErrors bool
	// CaptureDir enables F12 frame capture into this directory.
	CaptureDir string
}

// Option customises an Engine.
type Option func(*Engine)

// WithHeater replaces the default heat source.
func WithHeater(h thermal.Heater) Option {
	return func(e *Engine) { e.heater = h }
}

// Engine renders a fixed list of models every tick until interrupted.
type Engine struct {
	config  Config
	dev     gpu.Device
	surface surface.Provider
	program *shader.Program
	camera  *camera.Camera
	heater  thermal.Heater
	capture *debug.FrameCapture

	models []*model.Model

	projection mgl32.Mat4
	modelMat   mgl32.Mat4
	rotation   mgl32.Mat4

	state       State
	frame       uint64
	elapsed     time.Duration
	viewport    [2]int
	captureHeld bool
}

// New builds the engine. The surface must already own a current GL context
// and every model must have been bound with binder.Bind.
// Shader failures are returned and no engine is created.
func New(cfg Config, dev gpu.Device, surf surface.Provider, c shader.Compiler, models []*model.Model, opts ...Option) (*Engine, error) {
	if len(models) == 0 {
		return nil, ErrNoModels
	}
	for i, m := range models {
		if !m.Bound() {
			return nil, fmt.Errorf("model %d (%s): %w", i, m.Name, ErrNotBound)
		}
	}

	program, err := shader.Load(dev, c, cfg.VertexShaderPath, cfg.FragmentShaderPath)
	if err != nil {
		return nil, fmt.Errorf("loading shader program: %w", err)
	}

	if cfg.Step == 0 {
		cfg.Step = DefaultStep
	}

	e := &Engine{
		config:  cfg,
		dev:     dev,
		surface: surf,
		program: program,
		camera:  camera.New(),
		models:  append([]*model.Model(nil), models...),
		heater: thermal.NewSource(thermal.Config{
			FrequencyHz: cfg.SourceFrequencyHz,
			Position:    cfg.SourcePosition,
			Ambient:     thermal.DefaultAmbient,
			Absorption:  thermal.DefaultAbsorption,
		}),
		projection: mgl32.Perspective(mgl32.DegToRad(FieldOfView), AspectRatio, NearPlane, FarPlane),
		modelMat:   mgl32.Ident4(),
		rotation:   mgl32.Ident4(),
		state:      Running,
	}
	for _, opt := range opts {
		opt(e)
	}
	if cfg.CaptureDir != "" {
		e.capture = debug.NewFrameCapture(cfg.CaptureDir, "frame")
	}

	for _, m := range e.models {
		e.heater.Prime(m)
	}

	dev.UseProgram(program.Handle)
	dev.ActiveTexture(TextureUnit)
	dev.Uniform1i(program.Uniforms.Image, TextureUnit)

	logger.Info("engine ready",
		zap.Int("models", len(e.models)),
		zap.Float64("source_hz", cfg.SourceFrequencyHz),
		zap.Float32("step", cfg.Step),
	)
	return e, nil
}

// Tick renders one frame and reports whether the loop should continue.
// Once Interrupted is returned every later call returns it without drawing.
func (e *Engine) Tick() State {
	if e.state == Interrupted {
		return Interrupted
	}

	e.dev.UseProgram(e.program.Handle)
	e.syncViewport()
	e.dev.Clear()

	e.navigate()

	u := e.program.Uniforms
	view := e.camera.ViewMatrix()
	e.dev.UniformMatrix4(u.Projection, e.projection)
	e.dev.UniformMatrix4(u.Model, e.modelMat)
	e.dev.UniformMatrix4(u.Rotation, e.rotation)
	e.dev.UniformMatrix4(u.View, view)
	e.dev.UniformVec3(u.Source, e.config.SourcePosition)

	e.elapsed += TimelineStep
	for _, m := range e.models {
		e.heater.Step(m, TimelineStep)
	}

	for i, m := range e.models {
		if err := e.renderModel(m, u.View, view); err != nil {
			panic(fmt.Sprintf("render model %d (%s): %v", i, m.Name, err))
		}
	}

	e.captureIfRequested()

	e.surface.Present()
	e.surface.PollEvents()

	if e.config.CheckErrors {
		debug.DrainErrors(e.dev, e.frame)
	}
	e.frame++

	if e.surface.IsKeyPressed(input.KeyEscape) || e.surface.ShouldClose() {
		e.state = Interrupted
	}
	return e.state
}

// navigate turns held keys into a camera update focused on the first model.
func (e *Engine) navigate() {
	if e.surface.IsKeyPressed(input.KeyReset) {
		e.camera.Reset()
	}

	var azimuth, elevation float32
	if e.surface.IsKeyPressed(input.KeyLeft) {
		azimuth -= e.config.Step
	}
	if e.surface.IsKeyPressed(input.KeyRight) {
		azimuth += e.config.Step
	}
	if e.surface.IsKeyPressed(input.KeyUp) {
		elevation += e.config.Step
	}
	if e.surface.IsKeyPressed(input.KeyDown) {
		elevation -= e.config.Step
	}

	focus := e.models[0].Position
	e.camera.Update(azimuth, elevation, &focus)
}

// renderModel uploads the model's translated view and draws every mesh.
func (e *Engine) renderModel(m *model.Model, viewLoc gpu.Location, base mgl32.Mat4) error {
	if !m.Bound() {
		return ErrNotBound
	}

	p := m.Position
	e.dev.UniformMatrix4(viewLoc, base.Mul4(mgl32.Translate3D(p.X(), p.Y(), p.Z())))
	e.dev.UniformVec3(e.program.Uniforms.Position, p)
	e.dev.Uniform1f(e.program.Uniforms.Temperature, m.Temperature)

	for _, mesh := range m.Meshes {
		e.dev.BindTexture(mesh.Texture)
		e.dev.BindVertexArray(mesh.GPU.VertexArray)
		e.dev.DrawTriangles(mesh.IndexCount)
	}
	e.dev.BindVertexArray(gpu.Unbound)
	return nil
}

func (e *Engine) syncViewport() {
	w, h := e.surface.Size()
	if w <= 0 || h <= 0 || (w == e.viewport[0] && h == e.viewport[1]) {
		return
	}
	e.viewport = [2]int{w, h}
	e.dev.Viewport(w, h)
	logger.Debug("viewport resized", zap.Int("width", w), zap.Int("height", h))
}

// captureIfRequested saves the frame once per capture key press.
func (e *Engine) captureIfRequested() {
	pressed := e.surface.IsKeyPressed(input.KeyCapture)
	trigger := pressed && !e.captureHeld
	e.captureHeld = pressed
	if !trigger || e.capture == nil {
		return
	}
	if _, err := e.capture.Capture(e.dev, e.viewport[0], e.viewport[1]); err != nil {
		logger.Warn("frame capture failed", zap.Error(err))
	}
}

// Run ticks until the engine is interrupted.
func (e *Engine) Run() {
	logger.Info("render loop started")
	start := time.Now()
	for e.Tick() == Running {
	}
	logger.Info("render loop stopped",
		zap.Uint64("frames", e.frame),
		zap.Duration("simulated", e.elapsed),
		zap.Duration("wall", time.Since(start)),
	)
}

// Close releases every model and the shader program.
func (e *Engine) Close() {
	logger.Info("closing engine")
	for _, m := range e.models {
		m.Destroy(e.dev)
	}
	e.program.Delete(e.dev)
}

// State returns the current loop state.
func (e *Engine) State() State { return e.state }

// Camera returns the engine's camera.
func (e *Engine) Camera() *camera.Camera { return e.camera }

// Models returns the models the engine renders.
func (e *Engine) Models() []*model.Model { return e.models }

// Elapsed returns the simulated time since the first tick.
func (e *Engine) Elapsed() time.Duration { return e.elapsed }

// Frames returns the number of completed ticks.
func (e *Engine) Frames() uint64 { return e.frame }
