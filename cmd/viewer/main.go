// Package main is the entry point for the microwave heating viewer.
package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/Faultbox/microwave-sim/internal/config"
	"github.com/Faultbox/microwave-sim/internal/engine/binder"
	"github.com/Faultbox/microwave-sim/internal/engine/gpu/glgpu"
	"github.com/Faultbox/microwave-sim/internal/engine/model"
	"github.com/Faultbox/microwave-sim/internal/engine/renderer"
	"github.com/Faultbox/microwave-sim/internal/engine/shader"
	"github.com/Faultbox/microwave-sim/internal/engine/shader/glshader"
	"github.com/Faultbox/microwave-sim/internal/engine/surface"
	"github.com/Faultbox/microwave-sim/internal/engine/surface/glfwsurface"
	"github.com/Faultbox/microwave-sim/internal/engine/surface/sdlsurface"
	"github.com/Faultbox/microwave-sim/internal/logger"
	"github.com/Faultbox/microwave-sim/internal/scene"
	"github.com/Faultbox/microwave-sim/internal/thermal"
)

func main() {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.LoggerOptions()); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}

	logger.Info("=== Microwave Heating Simulation ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	if err := run(cfg); err != nil {
		logger.Error("viewer failed", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}

	logger.Info("viewer closed normally")
	logger.Sync()
}

// run owns every resource so deferred cleanup happens before exit.
func run(cfg *config.Config) error {
	base, err := scene.Load(cfg.Scene.Path, cfg.Scene.TextureDir)
	if err != nil {
		return err
	}
	models := scene.Instantiate(base, cfg.InstancePositions())

	surf, err := openSurface(cfg)
	if err != nil {
		return fmt.Errorf("opening window: %w", err)
	}
	defer surf.Close()

	dev, err := glgpu.New(glgpu.Config{
		ClearColor:  cfg.Engine.ClearColor,
		Multisample: cfg.Window.Samples > 0,
	})
	if err != nil {
		return err
	}

	for _, m := range models {
		if err := binder.Bind(dev, m); err != nil {
			destroyAll(dev, models)
			return fmt.Errorf("uploading %s: %w", m.Name, err)
		}
	}

	vertexPath, fragmentPath, cleanup, err := shaderPaths(cfg)
	if err != nil {
		destroyAll(dev, models)
		return err
	}
	defer cleanup()

	var opts []renderer.Option
	if cfg.Thermal.Enabled {
		opts = append(opts, renderer.WithHeater(thermal.NewSource(cfg.HeaterConfig())))
	} else {
		opts = append(opts, renderer.WithHeater(thermal.Idle{}))
	}

	engine, err := renderer.New(renderer.Config{
		SourceFrequencyHz:  cfg.Engine.SourceFrequencyHz,
		SourcePosition:     cfg.HeaterConfig().Position,
		VertexShaderPath:   vertexPath,
		FragmentShaderPath: fragmentPath,
		Step:               cfg.Engine.Step,
		CheckErrors:        cfg.Debug.GLErrors,
		CaptureDir:         cfg.Debug.CaptureDir,
	}, dev, surf, glshader.Compiler{}, models, opts...)
	if err != nil {
		destroyAll(dev, models)
		return err
	}
	defer engine.Close()

	engine.Run()
	return nil
}

func openSurface(cfg *config.Config) (surface.Provider, error) {
	sc := cfg.SurfaceConfig()
	switch surface.Backend(cfg.Window.Backend) {
	case surface.BackendGLFW:
		return glfwsurface.New(sc)
	default:
		return sdlsurface.New(sc)
	}
}

// shaderPaths returns the configured shaders, or writes the built-in ones
// to a temporary directory removed by cleanup.
func shaderPaths(cfg *config.Config) (vertexPath, fragmentPath string, cleanup func(), err error) {
	if cfg.Engine.VertexShader != "" {
		return cfg.Engine.VertexShader, cfg.Engine.FragmentShader, func() {}, nil
	}

	dir, err := os.MkdirTemp("", "microwave-sim-shaders")
	if err != nil {
		return "", "", nil, fmt.Errorf("creating shader dir: %w", err)
	}
	cleanup = func() { os.RemoveAll(dir) }

	vertexPath, fragmentPath, err = shader.WriteDefaults(dir)
	if err != nil {
		cleanup()
		return "", "", nil, fmt.Errorf("writing built-in shaders: %w", err)
	}
	logger.Debug("using built-in shaders", zap.String("dir", dir))
	return vertexPath, fragmentPath, cleanup, nil
}

func destroyAll(dev *glgpu.Device, models []*model.Model) {
	for _, m := range models {
		m.Destroy(dev)
	}
}
