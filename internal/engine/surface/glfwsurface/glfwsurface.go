// Package glfwsurface opens the viewer window with GLFW.
package glfwsurface

import (
	"fmt"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"
	"go.uber.org/zap"

	"github.com/Faultbox/microwave-sim/internal/engine/input"
	"github.com/Faultbox/microwave-sim/internal/engine/surface"
	"github.com/Faultbox/microwave-sim/internal/logger"
)

func init() {
	// GLFW must be driven from the main thread
	runtime.LockOSThread()
}

var glfwKeys = map[input.Key]glfw.Key{
	input.KeyEscape:  glfw.KeyEscape,
	input.KeyLeft:    glfw.KeyLeft,
	input.KeyRight:   glfw.KeyRight,
	input.KeyUp:      glfw.KeyUp,
	input.KeyDown:    glfw.KeyDown,
	input.KeyReset:   glfw.KeyR,
	input.KeyCapture: glfw.KeyF12,
}

// Window wraps a GLFW window and its OpenGL context.
type Window struct {
	config surface.Config
	window *glfw.Window
}

var _ surface.Provider = (*Window)(nil)

// New initialises GLFW and creates the window with an OpenGL 4.1 core context.
func New(cfg surface.Config) (*Window, error) {
	if err := surface.Acquire(); err != nil {
		return nil, err
	}

	logger.Info("initializing GLFW")
	if err := glfw.Init(); err != nil {
		surface.Release()
		return nil, fmt.Errorf("glfw init failed: %w", err)
	}

	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.DepthBits, 24)
	if cfg.Samples > 0 {
		glfw.WindowHint(glfw.Samples, cfg.Samples)
	}

	var monitor *glfw.Monitor
	if cfg.Fullscreen {
		monitor = glfw.GetPrimaryMonitor()
	}

	win, err := glfw.CreateWindow(cfg.Width, cfg.Height, cfg.Title, monitor, nil)
	if err != nil {
		glfw.Terminate()
		surface.Release()
		return nil, fmt.Errorf("glfw create window failed: %w", err)
	}
	win.MakeContextCurrent()

	// Sticky keys keep a tap between two polls visible to GetKey.
	win.SetInputMode(glfw.StickyKeysMode, glfw.True)

	if cfg.VSync {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}

	logger.Info("window created",
		zap.String("backend", string(surface.BackendGLFW)),
		zap.String("title", cfg.Title),
		zap.Int("width", cfg.Width),
		zap.Int("height", cfg.Height),
		zap.Bool("fullscreen", cfg.Fullscreen),
		zap.Bool("vsync", cfg.VSync),
		zap.Int("samples", cfg.Samples),
	)

	return &Window{config: cfg, window: win}, nil
}

func (w *Window) IsKeyPressed(k input.Key) bool {
	key, ok := glfwKeys[k]
	if !ok {
		return false
	}
	return w.window.GetKey(key) == glfw.Press
}

func (w *Window) ShouldClose() bool {
	return w.window.ShouldClose()
}

func (w *Window) Present() {
	w.window.SwapBuffers()
}

func (w *Window) PollEvents() {
	glfw.PollEvents()
}

// Context returns the *glfw.Window that owns the context.
func (w *Window) Context() any {
	return w.window
}

// Size returns the framebuffer size in pixels.
func (w *Window) Size() (int, int) {
	return w.window.GetFramebufferSize()
}

// Close destroys the window and terminates GLFW.
func (w *Window) Close() {
	if w.window == nil {
		return
	}
	logger.Info("closing window")
	w.window.Destroy()
	w.window = nil
	glfw.Terminate()
	surface.Release()
}
