// Package config handles viewer configuration loading and management.
package config

import (
	"errors"
	"fmt"

	"github.com/Faultbox/plyview/pkg/formats"
)

// Config holds all viewer settings.
type Config struct {
	Window  WindowConfig  `yaml:"window"`
	Viewer  ViewerConfig  `yaml:"viewer"`
	Loader  LoaderConfig  `yaml:"loader"`
	Logging LoggingConfig `yaml:"logging"`
}

// WindowConfig holds display settings.
type WindowConfig struct {
	Title      string `yaml:"title"`
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Fullscreen bool   `yaml:"fullscreen"`
	VSync      bool   `yaml:"vsync"`
}

// ViewerConfig holds camera and drawing settings.
type ViewerConfig struct {
	InitialDistance    float32    `yaml:"initial_distance"`
	MinDistance        float32    `yaml:"min_distance"`
	RotateSensitivity  float32    `yaml:"rotate_sensitivity"`
	GestureSensitivity float32    `yaml:"gesture_sensitivity"`
	PointSize          float32    `yaml:"point_size"`
	ClearColor         [4]float32 `yaml:"clear_color"`
}

// LoaderConfig holds PLY loading settings.
type LoaderConfig struct {
	// HeaderPrefixBytes bounds how much of the file is scanned for the header.
	HeaderPrefixBytes int `yaml:"header_prefix_bytes"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
	JSON    bool   `yaml:"json"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Title:      "PLY Viewer",
			Width:      1280,
			Height:     720,
			Fullscreen: false,
			VSync:      true,
		},
		Viewer: ViewerConfig{
			InitialDistance:    1.5,
			MinDistance:        0.5,
			RotateSensitivity:  1.0,
			GestureSensitivity: 0.005,
			PointSize:          2.0,
			ClearColor:         [4]float32{0.1, 0.1, 0.15, 1.0},
		},
		Loader: LoaderConfig{
			HeaderPrefixBytes: formats.DefaultPLYHeaderPrefix,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate reports settings that cannot work.
func (c *Config) Validate() error {
	var errs []error
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		errs = append(errs, fmt.Errorf("window size must be positive, got %dx%d", c.Window.Width, c.Window.Height))
	}
	if c.Viewer.MinDistance <= 0 {
		errs = append(errs, fmt.Errorf("viewer.min_distance must be positive, got %v", c.Viewer.MinDistance))
	}
	if c.Viewer.InitialDistance < c.Viewer.MinDistance {
		errs = append(errs, fmt.Errorf("viewer.initial_distance %v is below viewer.min_distance %v",
			c.Viewer.InitialDistance, c.Viewer.MinDistance))
	}
	if c.Viewer.RotateSensitivity <= 0 {
		errs = append(errs, fmt.Errorf("viewer.rotate_sensitivity must be positive, got %v", c.Viewer.RotateSensitivity))
	}
	if c.Viewer.PointSize <= 0 {
		errs = append(errs, fmt.Errorf("viewer.point_size must be positive, got %v", c.Viewer.PointSize))
	}
	if c.Viewer.GestureSensitivity <= 0 {
		errs = append(errs, fmt.Errorf("viewer.gesture_sensitivity must be positive, got %v", c.Viewer.GestureSensitivity))
	}
	if c.Loader.HeaderPrefixBytes <= 0 {
		errs = append(errs, fmt.Errorf("loader.header_prefix_bytes must be positive, got %d", c.Loader.HeaderPrefixBytes))
	}
	return errors.Join(errs...)
}
