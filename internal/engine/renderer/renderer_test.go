package renderer

import (
	"errors"
	"os"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/microwave-sim/internal/engine/binder"
	"github.com/Faultbox/microwave-sim/internal/engine/gpu"
	"github.com/Faultbox/microwave-sim/internal/engine/gpu/gputest"
	"github.com/Faultbox/microwave-sim/internal/engine/input"
	"github.com/Faultbox/microwave-sim/internal/engine/model"
	"github.com/Faultbox/microwave-sim/internal/engine/shader"
	"github.com/Faultbox/microwave-sim/internal/thermal"
)

type fakeSurface struct {
	held          map[input.Key]bool
	closeAsked    bool
	width, height int
	presents      int
	polls         int
}

func newFakeSurface() *fakeSurface {
	return &fakeSurface{held: make(map[input.Key]bool), width: 8, height: 6}
}

func (s *fakeSurface) IsKeyPressed(k input.Key) bool { return s.held[k] }
func (s *fakeSurface) ShouldClose() bool             { return s.closeAsked }
func (s *fakeSurface) Present()                      { s.presents++ }
func (s *fakeSurface) PollEvents()                   { s.polls++ }
func (s *fakeSurface) Context() any                  { return nil }
func (s *fakeSurface) Size() (int, int)              { return s.width, s.height }
func (s *fakeSurface) Close()                        {}

type stubCompiler struct {
	err error
}

func (c stubCompiler) Compile(_, _ string) (gpu.Handle, error) {
	if c.err != nil {
		return gpu.Unbound, c.err
	}
	return 100, nil
}

func triangleModel(t *testing.T, dev gpu.Device, pos mgl32.Vec3) *model.Model {
	t.Helper()
	m := &model.Model{
		Name:     "triangle",
		Position: pos,
		Meshes: []*model.Mesh{{
			Name:      "tri",
			Positions: []mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
			Normals:   []mgl32.Vec3{{0, 0, 1}, {0, 0, 1}, {0, 0, 1}},
			UVs:       []mgl32.Vec2{{0, 0}, {1, 0}, {0, 1}},
			Indices:   []uint32{0, 1, 2},
		}},
	}
	if err := binder.BindToGPU(dev, m); err != nil {
		t.Fatalf("BindToGPU() error = %v", err)
	}
	return m
}

func testConfig() Config {
	return Config{
		SourceFrequencyHz:  thermal.DefaultFrequencyHz,
		VertexShaderPath:   "vertex.glsl",
		FragmentShaderPath: "fragment.glsl",
	}
}

func newEngine(t *testing.T, cfg Config, models ...mgl32.Vec3) (*Engine, *gputest.Device, *fakeSurface) {
	t.Helper()
	dev := gputest.New()
	surf := newFakeSurface()
	var ms []*model.Model
	for _, pos := range models {
		ms = append(ms, triangleModel(t, dev, pos))
	}
	e, err := New(cfg, dev, surf, stubCompiler{}, ms)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return e, dev, surf
}

func TestFirstTickRunning(t *testing.T) {
	e, dev, surf := newEngine(t, testConfig(), mgl32.Vec3{})

	if got := e.Tick(); got != Running {
		t.Fatalf("Tick() = %v, want %v", got, Running)
	}
	if dev.Clears != 1 {
		t.Errorf("Clears = %d, want 1", dev.Clears)
	}
	if len(dev.Draws) != 1 || dev.Draws[0].IndexCount != 3 {
		t.Fatalf("Draws = %+v, want one draw of 3 indices", dev.Draws)
	}
	if dev.Draws[0].Program != 100 {
		t.Errorf("draw used program %d, want 100", dev.Draws[0].Program)
	}
	if surf.presents != 1 || surf.polls != 1 {
		t.Errorf("presents = %d, polls = %d, want 1 each", surf.presents, surf.polls)
	}
}

func TestHeldKeyMovesView(t *testing.T) {
	tests := []struct {
		name string
		key  input.Key
	}{
		{"left", input.KeyLeft},
		{"right", input.KeyRight},
		{"up", input.KeyUp},
		{"down", input.KeyDown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, dev, surf := newEngine(t, testConfig(), mgl32.Vec3{})
			surf.held[tt.key] = true

			e.Tick()
			first, ok := dev.Matrix(shader.UniformView)
			if !ok {
				t.Fatal("view matrix not uploaded")
			}
			e.Tick()
			second, _ := dev.Matrix(shader.UniformView)

			if first.ApproxEqual(second) {
				t.Errorf("view unchanged with %s held", tt.name)
			}
		})
	}
}

func TestIdleViewIsStable(t *testing.T) {
	e, dev, _ := newEngine(t, testConfig(), mgl32.Vec3{})
	e.Tick()
	first, _ := dev.Matrix(shader.UniformView)
	e.Tick()
	second, _ := dev.Matrix(shader.UniformView)
	if !first.ApproxEqual(second) {
		t.Errorf("view changed without input: %v -> %v", first, second)
	}
}

func TestBothAxesSameFrame(t *testing.T) {
	e, _, surf := newEngine(t, testConfig(), mgl32.Vec3{})
	surf.held[input.KeyRight] = true
	surf.held[input.KeyUp] = true

	e.Tick()
	s := e.Camera().Sphere()
	if s.Azimuth != DefaultStep || s.Elevation != DefaultStep {
		t.Errorf("Sphere() = %+v, want azimuth and elevation %v", s, DefaultStep)
	}
}

func TestResetKey(t *testing.T) {
	e, _, surf := newEngine(t, testConfig(), mgl32.Vec3{})
	surf.held[input.KeyLeft] = true
	e.Tick()
	e.Tick()

	surf.held[input.KeyLeft] = false
	surf.held[input.KeyReset] = true
	e.Tick()

	if s := e.Camera().Sphere(); s.Azimuth != 0 || s.Elevation != 0 {
		t.Errorf("Sphere() after reset = %+v, want zero angles", s)
	}
}

func TestUniformsAtConstruction(t *testing.T) {
	e, dev, _ := newEngine(t, testConfig(), mgl32.Vec3{})
	if dev.ActiveUnit != TextureUnit {
		t.Errorf("ActiveUnit = %d, want %d", dev.ActiveUnit, TextureUnit)
	}
	if got := dev.Uniforms[dev.LocationOf(shader.UniformImage)]; got != int32(TextureUnit) {
		t.Errorf("image sampler = %v, want %d", got, TextureUnit)
	}

	e.Tick()
	wantProj := mgl32.Perspective(mgl32.DegToRad(FieldOfView), AspectRatio, NearPlane, FarPlane)
	if got, _ := dev.Matrix(shader.UniformProjection); !got.ApproxEqual(wantProj) {
		t.Errorf("projection = %v, want %v", got, wantProj)
	}
	for _, name := range []string{shader.UniformModel, shader.UniformRotation} {
		if got, _ := dev.Matrix(name); !got.ApproxEqual(mgl32.Ident4()) {
			t.Errorf("%s = %v, want identity", name, got)
		}
	}
	if len(dev.Viewports) != 1 || dev.Viewports[0] != [2]int{8, 6} {
		t.Errorf("Viewports = %v, want [[8 6]]", dev.Viewports)
	}
}

func TestFragmentFailureBlocksConstruction(t *testing.T) {
	dev := gputest.New()
	m := triangleModel(t, dev, mgl32.Vec3{})
	fail := &shader.CompileError{Stage: shader.StageFragment, Path: "fragment.glsl", Log: "0:3: 'vec5' : undeclared identifier"}

	e, err := New(testConfig(), dev, newFakeSurface(), stubCompiler{err: fail}, []*model.Model{m})
	if e != nil {
		t.Error("engine returned despite fragment failure")
	}
	if !errors.Is(err, shader.ErrCompile) {
		t.Errorf("New() error = %v, want ErrCompile", err)
	}
}

func TestConstructionPreconditions(t *testing.T) {
	dev := gputest.New()
	unbound := &model.Model{Name: "raw", Meshes: []*model.Mesh{{
		Positions: []mgl32.Vec3{{}},
		Normals:   []mgl32.Vec3{{}},
		UVs:       []mgl32.Vec2{{}},
		Indices:   []uint32{0},
	}}}

	tests := []struct {
		name   string
		models []*model.Model
		want   error
	}{
		{"no models", nil, ErrNoModels},
		{"unbound model", []*model.Model{unbound}, ErrNotBound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(testConfig(), dev, newFakeSurface(), stubCompiler{}, tt.models)
			if !errors.Is(err, tt.want) {
				t.Errorf("New() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestInterruptConditions(t *testing.T) {
	tests := []struct {
		name  string
		setup func(*fakeSurface)
	}{
		{"escape", func(s *fakeSurface) { s.held[input.KeyEscape] = true }},
		{"close request", func(s *fakeSurface) { s.closeAsked = true }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, dev, surf := newEngine(t, testConfig(), mgl32.Vec3{})
			tt.setup(surf)

			if got := e.Tick(); got != Interrupted {
				t.Fatalf("Tick() = %v, want %v", got, Interrupted)
			}
			draws := len(dev.Draws)
			if got := e.Tick(); got != Interrupted {
				t.Errorf("Tick() after interrupt = %v, want %v", got, Interrupted)
			}
			if len(dev.Draws) != draws {
				t.Error("interrupted engine kept drawing")
			}
		})
	}
}

func TestRunStopsOnInterrupt(t *testing.T) {
	e, _, surf := newEngine(t, testConfig(), mgl32.Vec3{})
	surf.held[input.KeyEscape] = true
	e.Run()
	if e.State() != Interrupted || e.Frames() != 1 {
		t.Errorf("State() = %v, Frames() = %d, want interrupted after 1", e.State(), e.Frames())
	}
}

func TestPerModelViewTranslation(t *testing.T) {
	second := mgl32.Vec3{5, 0, -2}
	e, dev, _ := newEngine(t, testConfig(), mgl32.Vec3{}, second)
	e.Tick()

	if len(dev.Draws) != 2 {
		t.Fatalf("Draws = %d, want 2", len(dev.Draws))
	}
	if dev.Draws[0].VertexArray == dev.Draws[1].VertexArray {
		t.Error("models share a vertex array")
	}

	// The last view upload belongs to the second model.
	want := e.Camera().ViewMatrix().Mul4(mgl32.Translate3D(second.X(), second.Y(), second.Z()))
	if got, _ := dev.Matrix(shader.UniformView); !got.ApproxEqual(want) {
		t.Errorf("view = %v, want %v", got, want)
	}
}

func TestPerModelLightingPosition(t *testing.T) {
	tests := []struct {
		name      string
		positions []mgl32.Vec3
	}{
		{"origin", []mgl32.Vec3{{}}},
		{"offset second", []mgl32.Vec3{{}, {5, 0, -2}}},
		{"offset only", []mgl32.Vec3{{-3, 1, 4}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, dev, _ := newEngine(t, testConfig(), tt.positions...)
			e.Tick()

			// The last upload belongs to the last model drawn.
			want := tt.positions[len(tt.positions)-1]
			got, ok := dev.Uniforms[dev.LocationOf(shader.UniformPosition)].(mgl32.Vec3)
			if !ok {
				t.Fatalf("%s was never uploaded", shader.UniformPosition)
			}
			if !got.ApproxEqual(want) {
				t.Errorf("%s = %v, want %v", shader.UniformPosition, got, want)
			}
		})
	}
}

func TestRenderUnboundMeshPanics(t *testing.T) {
	e, _, _ := newEngine(t, testConfig(), mgl32.Vec3{})
	e.Models()[0].Meshes = append(e.Models()[0].Meshes, &model.Mesh{Name: "late"})

	defer func() {
		if recover() == nil {
			t.Error("Tick() did not panic on an unbound mesh")
		}
	}()
	e.Tick()
}

func TestRenderModelDirect(t *testing.T) {
	e, dev, _ := newEngine(t, testConfig(), mgl32.Vec3{})
	loc := dev.LocationOf(shader.UniformView)

	empty := &model.Model{Name: "empty"}
	if err := e.renderModel(empty, loc, mgl32.Ident4()); err != nil {
		t.Errorf("renderModel(empty) = %v, want nil", err)
	}

	raw := &model.Model{Meshes: []*model.Mesh{{Name: "raw"}}}
	if err := e.renderModel(raw, loc, mgl32.Ident4()); !errors.Is(err, ErrNotBound) {
		t.Errorf("renderModel(unbound) = %v, want ErrNotBound", err)
	}
}

func TestTimelineAndHeating(t *testing.T) {
	e, dev, _ := newEngine(t, testConfig(), mgl32.Vec3{})
	m := e.Models()[0]
	if m.Temperature != thermal.DefaultAmbient {
		t.Fatalf("Temperature = %v, want ambient %v", m.Temperature, thermal.DefaultAmbient)
	}

	e.Tick()
	e.Tick()
	if e.Elapsed() != 2*time.Millisecond {
		t.Errorf("Elapsed() = %v, want 2ms", e.Elapsed())
	}
	if !(m.Temperature > thermal.DefaultAmbient) {
		t.Errorf("Temperature = %v, want above ambient", m.Temperature)
	}
	if got := dev.Uniforms[dev.LocationOf(shader.UniformTemperature)]; got != m.Temperature {
		t.Errorf("temperature uniform = %v, want %v", got, m.Temperature)
	}
}

func TestWithIdleHeater(t *testing.T) {
	dev := gputest.New()
	m := triangleModel(t, dev, mgl32.Vec3{})
	m.Temperature = 42

	e, err := New(testConfig(), dev, newFakeSurface(), stubCompiler{}, []*model.Model{m}, WithHeater(thermal.Idle{}))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	e.Tick()
	if m.Temperature != 42 {
		t.Errorf("Temperature = %v, want 42", m.Temperature)
	}
}

func TestModelListIsCopied(t *testing.T) {
	dev := gputest.New()
	models := []*model.Model{triangleModel(t, dev, mgl32.Vec3{})}
	e, err := New(testConfig(), dev, newFakeSurface(), stubCompiler{}, models)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	models[0] = nil
	if e.Models()[0] == nil {
		t.Error("engine shares the caller's slice")
	}
}

func TestCloseReleasesEverything(t *testing.T) {
	e, dev, _ := newEngine(t, testConfig(), mgl32.Vec3{}, mgl32.Vec3{1, 0, 0})
	e.Close()
	e.Close()

	if dev.Live() != 0 {
		t.Errorf("Live() = %d after Close, want 0", dev.Live())
	}
	if dev.Deletes[100] != 1 {
		t.Errorf("program deleted %d times, want 1", dev.Deletes[100])
	}
}

func TestCaptureOncePerPress(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig()
	cfg.CaptureDir = dir
	e, _, surf := newEngine(t, cfg, mgl32.Vec3{})

	surf.held[input.KeyCapture] = true
	e.Tick()
	e.Tick()

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("captured %d frames, want 1", len(entries))
	}
}

func TestCheckErrorsDrainsQueue(t *testing.T) {
	cfg := testConfig()
	cfg.CheckErrors = true
	e, dev, _ := newEngine(t, cfg, mgl32.Vec3{})
	dev.PendingErrors = []uint32{0x0502}

	e.Tick()
	if len(dev.PendingErrors) != 0 {
		t.Errorf("PendingErrors = %v, want drained", dev.PendingErrors)
	}
}

func TestStateString(t *testing.T) {
	if Running.String() != "running" || Interrupted.String() != "interrupted" {
		t.Errorf("State strings = %q, %q", Running, Interrupted)
	}
}
