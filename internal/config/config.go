// Package config loads wisecrack.yaml, the interpreter's tunable
// knobs that would otherwise be hard-coded constants — grounded on
// GlyphLang's pkg/config/defaults.go, generalized from a single
// DefaultPort constant into a real yaml.v3-backed settings struct with
// defaults and a loader, the way GlyphLang's own cmd/glyph wires
// config for its HTTP server.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ColorMode selects how the REPL and diagnostics colorize output.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

// Config is the full set of tunable knobs wisecrack.yaml can override
// (§6 "a small standard library"/"host interface" ambient stack).
type Config struct {
	// DispatchSafetyLimit bounds the WhenDispatcher's mutation-queue
	// drain loop (§4.5); <=0 is rejected at load time rather than
	// silently disabling the safety net.
	DispatchSafetyLimit int `yaml:"dispatch_safety_limit"`

	// MaxDisplayWidth truncates the rendered form of a `?`-terminated
	// debug-print or history trace past this many characters (0
	// disables truncation).
	MaxDisplayWidth int `yaml:"max_display_width"`

	// HistoryBoundsError switches `reverse`/`forward` past a
	// variable's history bounds from §4.2's default no-op into a
	// reported error — useful for scripts that want to catch a
	// mistaken extra reverse/forward rather than silently ignore it.
	HistoryBoundsError bool `yaml:"history_bounds_error"`

	// Color selects the REPL/diagnostics color mode.
	Color ColorMode `yaml:"color"`
}

// Default returns the built-in defaults: a 100,000-iteration dispatch
// safety limit (§4.5), untruncated display width, no-op history
// over-travel (§4.2), and auto color detection.
func Default() Config {
	return Config{
		DispatchSafetyLimit: 100000,
		MaxDisplayWidth:     0,
		HistoryBoundsError:  false,
		Color:               ColorAuto,
	}
}

// Load reads a wisecrack.yaml at path, layering it over Default(); a
// missing file is not an error (the defaults stand), matching
// GlyphLang's config loader's "config file is optional" behavior.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("config: reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Validate rejects settings that would silently disable a safety net
// rather than fail loudly at startup.
func (c Config) Validate() error {
	if c.DispatchSafetyLimit <= 0 {
		return fmt.Errorf("config: dispatch_safety_limit must be positive, got %d", c.DispatchSafetyLimit)
	}
	if c.MaxDisplayWidth < 0 {
		return fmt.Errorf("config: max_display_width must be >= 0, got %d", c.MaxDisplayWidth)
	}
	switch c.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return fmt.Errorf("config: color must be one of auto/always/never, got %q", c.Color)
	}
	return nil
}
