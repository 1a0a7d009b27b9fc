// Package config handles viewer configuration loading and management.
package config

import (
	"errors"
	"fmt"

	"go.uber.org/zap/zapcore"

	"github.com/Faultbox/microwave-sim/internal/engine/surface"
)

// Config holds all viewer settings.
type Config struct {
	Window  WindowConfig  `yaml:"window"`
	Engine  EngineConfig  `yaml:"engine"`
	Scene   SceneConfig   `yaml:"scene"`
	Thermal ThermalConfig `yaml:"thermal"`
	Debug   DebugConfig   `yaml:"debug"`
	Logging LoggingConfig `yaml:"logging"`
}

// WindowConfig holds display settings.
type WindowConfig struct {
	Title      string `yaml:"title"`
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Fullscreen bool   `yaml:"fullscreen"`
	VSync      bool   `yaml:"vsync"`
	Backend    string `yaml:"backend"` // sdl or glfw
	Samples    int    `yaml:"samples"`
}

// EngineConfig holds render loop and source settings.
type EngineConfig struct {
	SourceFrequencyHz float64    `yaml:"source_frequency_hz"`
	SourcePosition    [3]float32 `yaml:"source_position,flow"`
	// Empty shader paths select the built-in shaders.
	VertexShader   string     `yaml:"vertex_shader"`
	FragmentShader string     `yaml:"fragment_shader"`
	ClearColor     [3]float32 `yaml:"clear_color,flow"`
	Step           float32    `yaml:"step"`
}

// SceneConfig holds the scene file and its instances.
type SceneConfig struct {
	Path       string       `yaml:"path"`
	TextureDir string       `yaml:"texture_dir"`
	Instances  [][3]float32 `yaml:"instances,flow"`
}

// ThermalConfig holds the placeholder heating settings.
type ThermalConfig struct {
	Enabled    bool    `yaml:"enabled"`
	Ambient    float32 `yaml:"ambient"`
	Absorption float32 `yaml:"absorption"`
}

// DebugConfig holds opt-in diagnostics.
type DebugConfig struct {
	GLErrors   bool   `yaml:"gl_errors"`
	CaptureDir string `yaml:"capture_dir"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level      string `yaml:"level"`
	LogFile    string `yaml:"log_file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Title:   "Microwave Heating Simulation",
			Width:   1280,
			Height:  720,
			VSync:   true,
			Backend: string(surface.BackendSDL),
			Samples: 4,
		},
		Engine: EngineConfig{
			SourceFrequencyHz: 300e6,
			ClearColor:        [3]float32{0.1, 0.1, 0.1},
			Step:              0.02,
		},
		Scene: SceneConfig{
			Path: "models/model.glb",
		},
		Thermal: ThermalConfig{
			Enabled:    true,
			Ambient:    20,
			Absorption: 5,
		},
		Logging: LoggingConfig{
			Level:      "info",
			MaxSizeMB:  20,
			MaxBackups: 3,
			MaxAgeDays: 7,
			Compress:   true,
		},
	}
}

// Validate checks settings the engine and surface rely on.
func (c *Config) Validate() error {
	var errs []error
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		errs = append(errs, fmt.Errorf("window size %dx%d must be positive", c.Window.Width, c.Window.Height))
	}
	if !surface.Backend(c.Window.Backend).Valid() {
		errs = append(errs, fmt.Errorf("unknown window backend %q", c.Window.Backend))
	}
	if c.Window.Samples < 0 {
		errs = append(errs, fmt.Errorf("samples %d must not be negative", c.Window.Samples))
	}
	if c.Engine.SourceFrequencyHz <= 0 {
		errs = append(errs, fmt.Errorf("source frequency %g Hz must be positive", c.Engine.SourceFrequencyHz))
	}
	if (c.Engine.VertexShader == "") != (c.Engine.FragmentShader == "") {
		errs = append(errs, errors.New("vertex and fragment shaders must be set together"))
	}
	if c.Engine.Step <= 0 {
		errs = append(errs, fmt.Errorf("camera step %g must be positive", c.Engine.Step))
	}
	if c.Scene.Path == "" {
		errs = append(errs, errors.New("scene path is empty"))
	}
	if c.Thermal.Absorption < 0 {
		errs = append(errs, fmt.Errorf("absorption %g must not be negative", c.Thermal.Absorption))
	}
	if _, err := zapcore.ParseLevel(c.Logging.Level); err != nil {
		errs = append(errs, fmt.Errorf("logging level: %w", err))
	}
	return errors.Join(errs...)
}
