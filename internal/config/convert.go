package config

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/microwave-sim/internal/engine/surface"
	"github.com/Faultbox/microwave-sim/internal/logger"
	"github.com/Faultbox/microwave-sim/internal/thermal"
)

// LoggerOptions maps the logging section onto logger options.
func (c *Config) LoggerOptions() logger.Options {
	return logger.Options{
		Level:      c.Logging.Level,
		Console:    true,
		FilePath:   c.Logging.LogFile,
		MaxSizeMB:  c.Logging.MaxSizeMB,
		MaxBackups: c.Logging.MaxBackups,
		MaxAgeDays: c.Logging.MaxAgeDays,
		Compress:   c.Logging.Compress,
	}
}

// SurfaceConfig maps the window section onto the surface settings.
func (c *Config) SurfaceConfig() surface.Config {
	return surface.Config{
		Title:      c.Window.Title,
		Width:      c.Window.Width,
		Height:     c.Window.Height,
		Fullscreen: c.Window.Fullscreen,
		VSync:      c.Window.VSync,
		Samples:    c.Window.Samples,
	}
}

// HeaterConfig maps the engine source and thermal sections onto a heater config.
func (c *Config) HeaterConfig() thermal.Config {
	return thermal.Config{
		FrequencyHz: c.Engine.SourceFrequencyHz,
		Position:    mgl32.Vec3(c.Engine.SourcePosition),
		Ambient:     c.Thermal.Ambient,
		Absorption:  c.Thermal.Absorption,
	}
}

// InstancePositions returns the configured scene instance positions.
func (c *Config) InstancePositions() []mgl32.Vec3 {
	positions := make([]mgl32.Vec3, len(c.Scene.Instances))
	for i, p := range c.Scene.Instances {
		positions[i] = mgl32.Vec3(p)
	}
	return positions
}
