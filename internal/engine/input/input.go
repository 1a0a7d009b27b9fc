// Package input tracks viewer key state independent of the windowing backend.
package input

// Key is a viewer action key.
type Key int

const (
	KeyUnknown Key = iota
	KeyEscape
	KeyLeft
	KeyRight
	KeyUp
	KeyDown
	KeyReset
	KeyCapture
)

var keyNames = map[Key]string{
	KeyEscape:  "escape",
	KeyLeft:    "left",
	KeyRight:   "right",
	KeyUp:      "up",
	KeyDown:    "down",
	KeyReset:   "reset",
	KeyCapture: "capture",
}

func (k Key) String() string {
	if name, ok := keyNames[k]; ok {
		return name
	}
	return "unknown"
}

// State holds which keys are down plus presses latched since the last frame.
// A key pressed and released between two polls still reads as pressed once.
type State struct {
	held    map[Key]bool
	latched map[Key]bool
}

// New creates an empty key state.
func New() *State {
	return &State{
		held:    make(map[Key]bool),
		latched: make(map[Key]bool),
	}
}

// BeginFrame drops latched presses. Call before draining backend events.
func (s *State) BeginFrame() {
	for k := range s.latched {
		delete(s.latched, k)
	}
}

// Press records a key-down event.
func (s *State) Press(k Key) {
	if k == KeyUnknown {
		return
	}
	s.held[k] = true
	s.latched[k] = true
}

// Release records a key-up event.
func (s *State) Release(k Key) {
	delete(s.held, k)
}

// Held reports whether the key is currently down.
func (s *State) Held(k Key) bool {
	return s.held[k]
}

// IsKeyPressed reports whether the key is down or was pressed since BeginFrame.
func (s *State) IsKeyPressed(k Key) bool {
	return s.held[k] || s.latched[k]
}

// Reset forgets every key, e.g. when the window loses focus.
func (s *State) Reset() {
	for k := range s.held {
		delete(s.held, k)
	}
	s.BeginFrame()
}
