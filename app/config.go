package app

import (
	"os"
	"time"

	yaml "github.com/goccy/go-yaml"
)

// Config mirrors ember.yaml.
type Config struct {
	Brightness   int    `yaml:"brightness"`     // 0..10, duty-cycle level
	HoldMS       int    `yaml:"hold_ms"`        // glyph hold after a press
	DebounceMS   int    `yaml:"debounce_ms"`    // settle time before resampling
	ScrollStepMS int    `yaml:"scroll_step_ms"` // delay between scroll columns
	Greeting     string `yaml:"greeting"`       // scrolled once at boot; empty skips
}

func defaultConfig() Config {
	return Config{
		Brightness:   5,
		HoldMS:       500,
		DebounceMS:   20,
		ScrollStepMS: 100,
		Greeting:     "",
	}
}

// LoadConfig reads YAML and overrides defaults; empty or missing path
// yields defaults only.
func LoadConfig(path string) Config {
	cfg := defaultConfig()

	if path == "" {
		return cfg
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg
	}

	_ = yaml.Unmarshal(data, &cfg)

	// sanity clamps
	if cfg.Brightness < 0 {
		cfg.Brightness = 0
	}
	if cfg.Brightness > 10 {
		cfg.Brightness = 10
	}
	if cfg.HoldMS <= 0 {
		cfg.HoldMS = 500
	}
	if cfg.DebounceMS < 0 {
		cfg.DebounceMS = 0
	}
	if cfg.ScrollStepMS <= 0 {
		cfg.ScrollStepMS = 100
	}

	return cfg
}

func (c Config) hold() time.Duration       { return time.Duration(c.HoldMS) * time.Millisecond }
func (c Config) debounce() time.Duration   { return time.Duration(c.DebounceMS) * time.Millisecond }
func (c Config) scrollStep() time.Duration { return time.Duration(c.ScrollStepMS) * time.Millisecond }
