package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Window  WindowConfig  `toml:"window"`
	Render  RenderConfig  `toml:"render"`
	Sim     SimConfig     `toml:"sim"`
	Logging LoggingConfig `toml:"logging"`
	Scripts ScriptsConfig `toml:"scripts"`
	Scene   SceneConfig   `toml:"scene"`
}

type WindowConfig struct {
	Width     int    `toml:"width"`
	Height    int    `toml:"height"`
	Title     string `toml:"title"`
	Resizable bool   `toml:"resizable"`
}

type RenderConfig struct {
	PostEnabled bool       `toml:"post_enabled"`
	Tint        [4]float32 `toml:"tint"` // rgba multiplier applied by the post effect
	DebugUI     bool       `toml:"debug_ui"`
}

type SimConfig struct {
	TickRate time.Duration `toml:"tick_rate"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

type ScriptsConfig struct {
	Dir string `toml:"dir"`
}

type SceneConfig struct {
	Prefab string `toml:"prefab"`
}

// Load reads a TOML file over the defaults. Keys missing from the file keep
// their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes TOML data over the defaults.
func Parse(data []byte) (*Config, error) {
	cfg := Defaults()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if cfg.Sim.TickRate <= 0 {
		return nil, fmt.Errorf("sim.tick_rate must be positive, got %s", cfg.Sim.TickRate)
	}
	if cfg.Window.Width <= 0 || cfg.Window.Height <= 0 {
		return nil, fmt.Errorf("window size must be positive, got %dx%d", cfg.Window.Width, cfg.Window.Height)
	}
	return cfg, nil
}

// Defaults returns the configuration used when no file overrides it.
func Defaults() *Config {
	return &Config{
		Window: WindowConfig{
			Width:     1280,
			Height:    720,
			Title:     "scenecs sandbox",
			Resizable: true,
		},
		Render: RenderConfig{
			PostEnabled: false,
			Tint:        [4]float32{1, 1, 1, 1},
		},
		Sim: SimConfig{
			TickRate: time.Second / 60,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Scripts: ScriptsConfig{
			Dir: "scripts",
		},
		Scene: SceneConfig{
			Prefab: "scene.yaml",
		},
	}
}
