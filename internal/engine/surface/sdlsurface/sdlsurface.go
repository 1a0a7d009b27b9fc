// Package sdlsurface opens the viewer window with SDL2.
package sdlsurface

import (
	"fmt"
	"runtime"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/microwave-sim/internal/engine/input"
	"github.com/Faultbox/microwave-sim/internal/engine/surface"
	"github.com/Faultbox/microwave-sim/internal/logger"
)

func init() {
	// OpenGL calls must be made from the main thread
	runtime.LockOSThread()
}

var scancodes = map[sdl.Scancode]input.Key{
	sdl.SCANCODE_ESCAPE: input.KeyEscape,
	sdl.SCANCODE_LEFT:   input.KeyLeft,
	sdl.SCANCODE_RIGHT:  input.KeyRight,
	sdl.SCANCODE_UP:     input.KeyUp,
	sdl.SCANCODE_DOWN:   input.KeyDown,
	sdl.SCANCODE_R:      input.KeyReset,
	sdl.SCANCODE_F12:    input.KeyCapture,
}

// Window wraps an SDL2 window and its OpenGL context.
type Window struct {
	config     surface.Config
	sdlWindow  *sdl.Window
	glContext  sdl.GLContext
	keys       *input.State
	closeAsked bool
}

var _ surface.Provider = (*Window)(nil)

// New creates the window with an OpenGL 4.1 core context.
func New(cfg surface.Config) (*Window, error) {
	if err := surface.Acquire(); err != nil {
		return nil, err
	}

	w := &Window{
		config: cfg,
		keys:   input.New(),
	}

	logger.Info("initializing SDL2")
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		surface.Release()
		return nil, fmt.Errorf("SDL_Init failed: %w", err)
	}

	// Attributes must be set before the window exists.
	sdl.GLSetAttribute(sdl.GL_CONTEXT_MAJOR_VERSION, 4)
	sdl.GLSetAttribute(sdl.GL_CONTEXT_MINOR_VERSION, 1)
	sdl.GLSetAttribute(sdl.GL_CONTEXT_PROFILE_MASK, sdl.GL_CONTEXT_PROFILE_CORE)
	sdl.GLSetAttribute(sdl.GL_DOUBLEBUFFER, 1)
	sdl.GLSetAttribute(sdl.GL_DEPTH_SIZE, 24)
	if cfg.Samples > 0 {
		sdl.GLSetAttribute(sdl.GL_MULTISAMPLEBUFFERS, 1)
		sdl.GLSetAttribute(sdl.GL_MULTISAMPLESAMPLES, cfg.Samples)
	}

	flags := uint32(sdl.WINDOW_OPENGL | sdl.WINDOW_RESIZABLE | sdl.WINDOW_ALLOW_HIGHDPI)
	if cfg.Fullscreen {
		flags |= sdl.WINDOW_FULLSCREEN
	}

	var err error
	w.sdlWindow, err = sdl.CreateWindow(
		cfg.Title,
		sdl.WINDOWPOS_CENTERED,
		sdl.WINDOWPOS_CENTERED,
		int32(cfg.Width),
		int32(cfg.Height),
		flags,
	)
	if err != nil {
		sdl.Quit()
		surface.Release()
		return nil, fmt.Errorf("SDL_CreateWindow failed: %w", err)
	}

	w.glContext, err = w.sdlWindow.GLCreateContext()
	if err != nil {
		w.sdlWindow.Destroy()
		sdl.Quit()
		surface.Release()
		return nil, fmt.Errorf("SDL_GL_CreateContext failed: %w", err)
	}

	interval := 0
	if cfg.VSync {
		interval = 1
	}
	if err := sdl.GLSetSwapInterval(interval); err != nil {
		logger.Warn("failed to set swap interval", zap.Int("interval", interval), zap.Error(err))
	}

	logger.Info("window created",
		zap.String("backend", string(surface.BackendSDL)),
		zap.String("title", cfg.Title),
		zap.Int("width", cfg.Width),
		zap.Int("height", cfg.Height),
		zap.Bool("fullscreen", cfg.Fullscreen),
		zap.Bool("vsync", cfg.VSync),
		zap.Int("samples", cfg.Samples),
	)

	return w, nil
}

// IsKeyPressed reports whether the key is down or was tapped since the last poll.
func (w *Window) IsKeyPressed(k input.Key) bool {
	return w.keys.IsKeyPressed(k)
}

// ShouldClose reports whether the user asked to close the window.
func (w *Window) ShouldClose() bool {
	return w.closeAsked
}

// Present swaps the OpenGL buffers.
func (w *Window) Present() {
	w.sdlWindow.GLSwap()
}

// PollEvents drains the SDL event queue into the key state.
func (w *Window) PollEvents() {
	w.keys.BeginFrame()

	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch e := event.(type) {
		case *sdl.QuitEvent:
			w.closeAsked = true

		case *sdl.WindowEvent:
			switch e.Event {
			case sdl.WINDOWEVENT_CLOSE:
				w.closeAsked = true
			case sdl.WINDOWEVENT_FOCUS_LOST:
				w.keys.Reset()
			}

		case *sdl.KeyboardEvent:
			key, ok := scancodes[e.Keysym.Scancode]
			if !ok {
				continue
			}
			if e.Type == sdl.KEYDOWN {
				w.keys.Press(key)
			} else if e.Type == sdl.KEYUP {
				w.keys.Release(key)
			}
		}
	}
}

// Context returns the sdl.GLContext.
func (w *Window) Context() any {
	return w.glContext
}

// Size returns the drawable size in pixels.
func (w *Window) Size() (int, int) {
	width, height := w.sdlWindow.GLGetDrawableSize()
	return int(width), int(height)
}

// Close destroys the window and cleans up SDL2.
func (w *Window) Close() {
	if w.sdlWindow == nil {
		return
	}
	logger.Info("closing window")

	if w.glContext != nil {
		sdl.GLDeleteContext(w.glContext)
		w.glContext = nil
	}
	w.sdlWindow.Destroy()
	w.sdlWindow = nil

	sdl.Quit()
	surface.Release()
}
