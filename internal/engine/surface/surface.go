// Package surface defines the window and GL context owner the engine draws to.
package surface

import (
	"errors"
	"sync/atomic"

	"github.com/Faultbox/microwave-sim/internal/engine/input"
)

// ErrAlreadyOpen is returned when a second surface is opened in one process.
var ErrAlreadyOpen = errors.New("surface already open")

// Backend names a windowing library.
type Backend string

const (
	BackendSDL  Backend = "sdl"
	BackendGLFW Backend = "glfw"
)

// Valid reports whether b names a supported backend.
func (b Backend) Valid() bool {
	return b == BackendSDL || b == BackendGLFW
}

// Config holds window configuration.
type Config struct {
	Title      string
	Width      int
	Height     int
	Fullscreen bool
	VSync      bool
	Samples    int // MSAA samples, 0 disables
}

// Provider owns the OS window and its GL context.
type Provider interface {
	IsKeyPressed(k input.Key) bool
	ShouldClose() bool
	// Present swaps the back buffer to screen.
	Present()
	// PollEvents drains pending window and key events.
	PollEvents()
	// Context returns the backend's native context handle.
	Context() any
	// Size returns the drawable size in pixels.
	Size() (width, height int)
	// Close tears down the window and the windowing subsystem.
	Close()
}

var open atomic.Bool

// Acquire claims the process-wide surface slot. Backends call it before
// touching the windowing library.
func Acquire() error {
	if !open.CompareAndSwap(false, true) {
		return ErrAlreadyOpen
	}
	return nil
}

// Release frees the slot claimed by Acquire.
func Release() {
	open.Store(false)
}
