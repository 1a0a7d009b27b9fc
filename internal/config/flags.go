package config

import "flag"

var (
	flagConfig     = flag.String("config", "", "Path to config file")
	flagDebug      = flag.Bool("debug", false, "Enable debug logging and GL error checks")
	flagScene      = flag.String("scene", "", "Scene file (.gltf or .glb)")
	flagTextures   = flag.String("textures", "", "Texture directory")
	flagBackend    = flag.String("backend", "", "Window backend: sdl or glfw")
	flagWindowed   = flag.Bool("windowed", false, "Run in windowed mode")
	flagFullscreen = flag.Bool("fullscreen", false, "Run in fullscreen mode")
	flagWidth      = flag.Int("width", 0, "Window width")
	flagHeight     = flag.Int("height", 0, "Window height")
	flagVertex     = flag.String("vertex", "", "Vertex shader path")
	flagFragment   = flag.String("fragment", "", "Fragment shader path")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
		cfg.Debug.GLErrors = true
	}
	if *flagScene != "" {
		cfg.Scene.Path = *flagScene
	}
	if *flagTextures != "" {
		cfg.Scene.TextureDir = *flagTextures
	}
	if *flagBackend != "" {
		cfg.Window.Backend = *flagBackend
	}
	if *flagWindowed {
		cfg.Window.Fullscreen = false
	}
	if *flagFullscreen {
		cfg.Window.Fullscreen = true
	}
	if *flagWidth > 0 {
		cfg.Window.Width = *flagWidth
	}
	if *flagHeight > 0 {
		cfg.Window.Height = *flagHeight
	}
	if *flagVertex != "" {
		cfg.Engine.VertexShader = *flagVertex
	}
	if *flagFragment != "" {
		cfg.Engine.FragmentShader = *flagFragment
	}
}
