// Package config handles asset tool configuration loading and management.
package config

import "fmt"

// Winding modes for index lists.
const (
	WindingForward  = "forward"  // indices kept in authored order
	WindingMirrored = "mirrored" // indices reversed, texture coordinates shifted
)

// Config holds all tool settings.
type Config struct {
	Build   BuildConfig   `yaml:"build"`
	Texture TextureConfig `yaml:"texture"`
	Window  WindowConfig  `yaml:"window"`
	Logging LoggingConfig `yaml:"logging"`
}

// BuildConfig holds asset build settings.
type BuildConfig struct {
	Winding string `yaml:"winding"` // forward or mirrored
	Jobs    int    `yaml:"jobs"`    // concurrent build workers
}

// Mirrored reports whether the mirrored winding policy is selected.
func (b BuildConfig) Mirrored() bool {
	return b.Winding == WindingMirrored
}

// TextureConfig holds texture upload settings.
type TextureConfig struct {
	Unit uint32 `yaml:"unit"` // texture unit used when binding after upload
}

// WindowConfig holds settings for the window that hosts the GL context.
type WindowConfig struct {
	Title  string `yaml:"title"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Hidden bool   `yaml:"hidden"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Build: BuildConfig{
			Winding: WindingForward,
			Jobs:    1,
		},
		Texture: TextureConfig{
			Unit: 0,
		},
		Window: WindowConfig{
			Title:  "assetforge",
			Width:  640,
			Height: 480,
			Hidden: true,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate checks values that have a fixed set of choices.
func (c *Config) Validate() error {
	switch c.Build.Winding {
	case WindingForward, WindingMirrored:
	default:
		return fmt.Errorf("build.winding must be %q or %q, got %q", WindingForward, WindingMirrored, c.Build.Winding)
	}
	if c.Build.Jobs < 1 {
		return fmt.Errorf("build.jobs must be at least 1, got %d", c.Build.Jobs)
	}
	return nil
}
