package config

import "flag"

var (
	flagConfig = flag.String("config", "", "Path to config file")
	flagDebug  = flag.Bool("debug", false, "Enable debug logging")
	flagScale  = flag.Int("scale", 0, "Room scale (32 or 64)")
	flagVis    = flag.String("vis", "", "Room visualization document")
	flagTex    = flag.String("textures", "", "Texture directory")
	flagStatic = flag.Bool("static", false, "Disable landscape animation")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the config path given with -config.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI overrides to cfg.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagScale > 0 {
		cfg.Room.Scale = *flagScale
	}
	if *flagVis != "" {
		cfg.Assets.Visualization = *flagVis
	}
	if *flagTex != "" {
		cfg.Assets.TextureDir = *flagTex
	}
	if *flagStatic {
		cfg.Room.Animate = false
	}
}
