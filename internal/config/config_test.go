package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Room.Scale != 64 {
		t.Errorf("Room.Scale = %d, want 64", cfg.Room.Scale)
	}
	if cfg.Room.LandscapeID != "default" {
		t.Errorf("Room.LandscapeID = %q, want default", cfg.Room.LandscapeID)
	}
	if !cfg.Room.Animate {
		t.Error("Room.Animate should default to true")
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want info", cfg.Logging.Level)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roomview.yaml")
	content := `
window:
  width: 1280
room:
  scale: 32
  landscape_id: "sunset"
  reflections: false
assets:
  texture_dir: "/srv/room"
logging:
  level: "debug"
  log_file: "roomview.log"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, path); err != nil {
		t.Fatalf("loadFromFile: %v", err)
	}

	if cfg.Window.Width != 1280 {
		t.Errorf("Window.Width = %d, want 1280", cfg.Window.Width)
	}
	if cfg.Window.Height != 640 {
		t.Errorf("Window.Height = %d, want default 640", cfg.Window.Height)
	}
	if cfg.Room.Scale != 32 {
		t.Errorf("Room.Scale = %d, want 32", cfg.Room.Scale)
	}
	if cfg.Room.LandscapeID != "sunset" {
		t.Errorf("Room.LandscapeID = %q, want sunset", cfg.Room.LandscapeID)
	}
	if cfg.Room.Reflections {
		t.Error("Room.Reflections = true, want false")
	}
	if cfg.Assets.TextureDir != "/srv/room" {
		t.Errorf("Assets.TextureDir = %q, want /srv/room", cfg.Assets.TextureDir)
	}
	if cfg.Logging.LogFile != "roomview.log" {
		t.Errorf("Logging.LogFile = %q, want roomview.log", cfg.Logging.LogFile)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("room:\n  scale: [1, 2\n"), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	if err := loadFromFile(Default(), path); err == nil {
		t.Error("expected error for malformed YAML")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	if err := loadFromFile(Default(), filepath.Join(t.TempDir(), "none.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Room.Scale = 48
	cfg.Room.Size = 0
	cfg.Window.Width = 10
	cfg.Validate()

	if cfg.Room.Scale != 64 {
		t.Errorf("Room.Scale = %d, want 64", cfg.Room.Scale)
	}
	if cfg.Room.Size != 1 {
		t.Errorf("Room.Size = %d, want 1", cfg.Room.Size)
	}
	if cfg.Window.Width != 320 {
		t.Errorf("Window.Width = %d, want 320", cfg.Window.Width)
	}
}
