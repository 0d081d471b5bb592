package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/l1jgo/tickframe/internal/core/sched"
)

type Config struct {
	Scheduler SchedulerConfig `toml:"scheduler"`
	Host      HostConfig      `toml:"host"`
	Game      GameConfig      `toml:"game"`
	Logging   LoggingConfig   `toml:"logging"`
}

type SchedulerConfig struct {
	TickRate   float64 `toml:"tick_rate"`   // simulation ticks per simulated second
	MaxBacklog int     `toml:"max_backlog"` // ticks per frame before excess is dropped (0 = unbounded)
}

type HostConfig struct {
	RefreshRate float64 `toml:"refresh_rate"` // display refreshes per second
}

type GameConfig struct {
	AssetsDir  string `toml:"assets_dir"`
	Scene      string `toml:"scene"`       // relative to assets_dir
	ScriptsDir string `toml:"scripts_dir"` // relative to assets_dir
	Render     bool   `toml:"render"`
	Progress   bool   `toml:"progress"` // show preload progress bars
	Columns    int    `toml:"columns"`
	Rows       int    `toml:"rows"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

// Load reads a TOML file over the defaults and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects settings the scheduler or host cannot run with.
func (c *Config) Validate() error {
	if c.Scheduler.TickRate <= 0 {
		return fmt.Errorf("%w: scheduler.tick_rate must be positive, got %v", sched.ErrInvalidConfiguration, c.Scheduler.TickRate)
	}
	if c.Scheduler.MaxBacklog < 0 {
		return fmt.Errorf("%w: scheduler.max_backlog must not be negative, got %d", sched.ErrInvalidConfiguration, c.Scheduler.MaxBacklog)
	}
	if c.Host.RefreshRate <= 0 {
		return fmt.Errorf("%w: host.refresh_rate must be positive, got %v", sched.ErrInvalidConfiguration, c.Host.RefreshRate)
	}
	if c.Game.Columns <= 0 || c.Game.Rows <= 0 {
		return fmt.Errorf("%w: game.columns and game.rows must be positive", sched.ErrInvalidConfiguration)
	}
	return nil
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Scheduler: SchedulerConfig{
			TickRate:   60,
			MaxBacklog: 0, // unbounded catch-up
		},
		Host: HostConfig{
			RefreshRate: 60,
		},
		Game: GameConfig{
			AssetsDir:  "assets",
			Scene:      "scene.yaml",
			ScriptsDir: "scripts",
			Render:     true,
			Progress:   true,
			Columns:    64,
			Rows:       20,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
