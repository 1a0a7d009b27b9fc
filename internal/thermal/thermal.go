// Package thermal advances each model's temperature under the microwave source.
//
// This is a visual placeholder, not a field solver: heating scales with the
// source frequency and falls off with the squared distance to the source.
package thermal

import (
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/microwave-sim/internal/engine/model"
)

// Default source and material values.
const (
	DefaultFrequencyHz = 300e6
	DefaultAmbient     = 20.0
	DefaultAbsorption  = 5.0
)

// Heater is the per-frame temperature hook the engine calls.
type Heater interface {
	// Prime sets the starting temperature before the first frame.
	Prime(m *model.Model)
	// Step advances m by dt of simulated time.
	Step(m *model.Model, dt time.Duration)
}

// Config describes the source and the absorbing material.
type Config struct {
	FrequencyHz float64
	Position    mgl32.Vec3
	Ambient     float32
	// Absorption is degrees per second at 1 GHz and unit distance.
	Absorption float32
}

// DefaultConfig returns a 300 MHz source at the origin.
func DefaultConfig() Config {
	return Config{
		FrequencyHz: DefaultFrequencyHz,
		Ambient:     DefaultAmbient,
		Absorption:  DefaultAbsorption,
	}
}

// Source heats models with an inverse-square falloff.
type Source struct {
	cfg Config
}

var _ Heater = (*Source)(nil)

// NewSource creates a heater for cfg.
func NewSource(cfg Config) *Source {
	return &Source{cfg: cfg}
}

// Position returns the source position.
func (s *Source) Position() mgl32.Vec3 { return s.cfg.Position }

func (s *Source) Prime(m *model.Model) {
	m.Temperature = s.cfg.Ambient
}

func (s *Source) Step(m *model.Model, dt time.Duration) {
	if dt <= 0 {
		return
	}
	d := m.Position.Sub(s.cfg.Position)
	falloff := 1 / (1 + d.Dot(d))
	ghz := float32(s.cfg.FrequencyHz / 1e9)
	m.Temperature += s.cfg.Absorption * ghz * float32(dt.Seconds()) * falloff
}

// Idle leaves temperatures untouched. Used when heating is disabled.
type Idle struct{}

func (Idle) Prime(*model.Model)                {}
func (Idle) Step(*model.Model, time.Duration) {}
