package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/INLOpen/inklog/core"
)

// DimensionsConfig holds a surface size in pixels.
type DimensionsConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// Dims converts the config value to the core type.
func (d DimensionsConfig) Dims() core.Dimensions {
	return core.Dimensions{Width: d.Width, Height: d.Height}
}

// EngineConfig holds annotation engine configurations.
type EngineConfig struct {
	Slide      DimensionsConfig `yaml:"slide"`
	Webcam     DimensionsConfig `yaml:"webcam"`
	Normalized DimensionsConfig `yaml:"normalized"`
	DrawTarget string           `yaml:"draw_target"` // "slide", "webcam", or "both"
	BrushSize  int              `yaml:"brush_size"`
}

// StoreConfig holds record store configurations.
type StoreConfig struct {
	DataDir     string `yaml:"data_dir"`
	Compression string `yaml:"compression"` // "none", "snappy", "zstd", "lz4"
	SyncMode    string `yaml:"sync_mode"`   // "always" or "disabled"
}

// LoggingConfig holds logging-specific configurations.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // e.g., "debug", "info", "warn", "error"
	Output string `yaml:"output"` // e.g., "stdout", "file", "none"
	File   string `yaml:"file"`   // Path to the log file, used if output is "file"
}

// Config is the top-level configuration struct.
type Config struct {
	Engine  EngineConfig  `yaml:"engine"`
	Store   StoreConfig   `yaml:"store"`
	Logging LoggingConfig `yaml:"logging"`
}

// ParseLevel maps a config level string onto a slog level. Unknown strings
// fall back to info.
func ParseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger builds a slog.Logger from the logging section. The returned
// closer is non-nil when a log file was opened.
func NewLogger(cfg LoggingConfig) (*slog.Logger, io.Closer, error) {
	var w io.Writer
	var closer io.Closer
	switch cfg.Output {
	case "none":
		w = io.Discard
	case "file":
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file %s: %w", cfg.File, err)
		}
		w = f
		closer = f
	default:
		w = os.Stdout
	}
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: ParseLevel(cfg.Level)})
	return slog.New(handler), closer, nil
}

// Load reads configuration from an io.Reader.
// This is the core logic, separated for testability.
func Load(r io.Reader) (*Config, error) {
	// Set default values
	cfg := &Config{
		Engine: EngineConfig{
			Slide:      DimensionsConfig{Width: 1920, Height: 1080},
			Webcam:     DimensionsConfig{Width: 1280, Height: 720},
			Normalized: DimensionsConfig{Width: 800, Height: 600},
			DrawTarget: "both",
			BrushSize:  core.DefaultBrushSize,
		},
		Store: StoreConfig{
			DataDir:     "./data",
			Compression: "snappy",
			SyncMode:    "always",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: "stdout",
			File:   "inklog.log",
		},
	}

	// If the reader is nil, it's like an empty file, return defaults.
	if r == nil {
		return cfg, nil
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read config data: %w", err)
	}
	if len(data) == 0 {
		return cfg, nil
	}

	// Unmarshal YAML into the config struct, overwriting defaults
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config yaml: %w", err)
	}

	return cfg, nil
}

// LoadConfig reads configuration from a YAML file by path. A missing file
// yields the defaults.
func LoadConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Load(nil)
		}
		return nil, fmt.Errorf("failed to open config file %s: %w", path, err)
	}
	defer file.Close()

	return Load(file)
}
