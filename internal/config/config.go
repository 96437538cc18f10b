// Package config loads the room viewer settings.
package config

// Config holds all viewer settings.
type Config struct {
	Window  WindowConfig  `yaml:"window"`
	Room    RoomConfig    `yaml:"room"`
	Assets  AssetsConfig  `yaml:"assets"`
	Logging LoggingConfig `yaml:"logging"`
}

// WindowConfig holds window settings.
type WindowConfig struct {
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Title  string `yaml:"title"`
}

// RoomConfig describes the demo room the viewer builds.
type RoomConfig struct {
	Scale       int    `yaml:"scale"`        // 32 or 64
	Size        int    `yaml:"size"`         // floor tiles per side
	WallHeight  int    `yaml:"wall_height"`  // world units
	FloorID     string `yaml:"floor_id"`     // visualization plane id
	WallID      string `yaml:"wall_id"`      // visualization plane id
	LandscapeID string `yaml:"landscape_id"` // visualization plane id
	Animate     bool   `yaml:"animate"`
	Reflections bool   `yaml:"reflections"`
}

// AssetsConfig holds asset locations.
type AssetsConfig struct {
	Visualization string `yaml:"visualization"` // YAML or JSON room visualization document
	TextureDir    string `yaml:"texture_dir"`   // PNG files named after their asset
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Width:  960,
			Height: 640,
			Title:  "roomview",
		},
		Room: RoomConfig{
			Scale:       64,
			Size:        6,
			WallHeight:  3,
			FloorID:     "default",
			WallID:      "default",
			LandscapeID: "default",
			Animate:     true,
			Reflections: true,
		},
		Assets: AssetsConfig{
			Visualization: "assets/room_visualization.yaml",
			TextureDir:    "assets/textures",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Validate clamps values the viewer cannot use.
func (c *Config) Validate() {
	if c.Room.Scale != 32 {
		c.Room.Scale = 64
	}
	c.Room.Size = max(c.Room.Size, 1)
	c.Room.WallHeight = max(c.Room.WallHeight, 1)
	c.Window.Width = max(c.Window.Width, 320)
	c.Window.Height = max(c.Window.Height, 240)
}
