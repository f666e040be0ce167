package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Dendekky/vibe-racing/internal/physics"
	"github.com/Dendekky/vibe-racing/internal/race"
)

// Server holds the network and loop settings.
type Server struct {
	Addr string `yaml:"addr"`
	TPS  int    `yaml:"tps"`
	// PaceCar spawns an autopilot vehicle at boot so a lone player has
	// something on track.
	PaceCar bool `yaml:"pace_car"`
}

// Terrain holds the generated-track settings.
type Terrain struct {
	Width         float64 `yaml:"width"`
	Depth         float64 `yaml:"depth"`
	ObstacleCount int     `yaml:"obstacle_count"`
}

// Config is the full server configuration. Physics and vehicle tuning
// reuse the simulation packages' own parameter types so the YAML file
// and the code never drift apart.
type Config struct {
	Server  Server         `yaml:"server"`
	Terrain Terrain        `yaml:"terrain"`
	Physics physics.Tuning `yaml:"physics"`
	Vehicle race.Params    `yaml:"vehicle"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: Server{
			Addr: ":8080",
			TPS:  60,
		},
		Terrain: Terrain{
			Width:         200,
			Depth:         400,
			ObstacleCount: 24,
		},
		Physics: physics.DefaultTuning(),
		Vehicle: race.DefaultParams(),
	}
}

// Load reads a YAML file over the defaults. An empty path returns the
// defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}
