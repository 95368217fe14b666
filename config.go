package ggcompose

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/gogpu/gg"
	"github.com/pelletier/go-toml/v2"

	"github.com/gogpu/ggcompose/render"
)

// ErrInvalidConfig is returned when a configuration value is out of range
// or cannot be parsed.
var ErrInvalidConfig = errors.New("ggcompose: invalid config")

// Config is the file form of the App options.
//
//	width = 1280
//	height = 720
//	antialiasing = "msaa16"
//	base_color = "#202020"
//	workers = 4
//	log_level = "debug"
type Config struct {
	Width        int    `toml:"width"`
	Height       int    `toml:"height"`
	Antialiasing string `toml:"antialiasing"`
	BaseColor    string `toml:"base_color"`
	Workers      int    `toml:"workers"`
	LogLevel     string `toml:"log_level"`
}

// DefaultConfig returns an 800x600 transparent canvas with area
// antialiasing and logging off.
func DefaultConfig() Config {
	return Config{
		Width:        800,
		Height:       600,
		Antialiasing: render.AntialiasArea.String(),
	}
}

// ParseConfig decodes TOML on top of DefaultConfig and validates it.
// Unknown keys are rejected.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfig reads and parses a TOML config file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("ggcompose: read config: %w", err)
	}
	return ParseConfig(data)
}

// Validate checks every field.
func (c Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("%w: size %dx%d", ErrInvalidConfig, c.Width, c.Height)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers %d", ErrInvalidConfig, c.Workers)
	}
	if _, err := render.ParseAntialiasing(c.Antialiasing); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if _, err := parseColor(c.BaseColor); err != nil {
		return err
	}
	if _, _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// Options converts the config into App options. When a log level is set the
// options carry a logger writing to w (see WithLogger).
func (c Config) Options(w io.Writer) ([]Option, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	aa, _ := render.ParseAntialiasing(c.Antialiasing)
	color, _ := parseColor(c.BaseColor)
	opts := []Option{
		WithAntialiasing(aa),
		WithBaseColor(color),
		WithWorkers(c.Workers),
	}
	if l := c.Logger(w); l != nil {
		opts = append(opts, WithLogger(l))
	}
	return opts, nil
}

// Logger returns a text logger writing to w at the configured level, or nil
// when logging is off.
func (c Config) Logger(w io.Writer) *slog.Logger {
	level, on, err := parseLevel(c.LogLevel)
	if err != nil || !on || w == nil {
		return nil
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// parseColor accepts "", "transparent" or a gg.Hex color ("#RGB", "#RGBA",
// "#RRGGBB", "#RRGGBBAA", '#' optional).
func parseColor(s string) (gg.RGBA, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "transparent":
		return gg.Transparent, nil
	}
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	switch len(hex) {
	case 3, 4, 6, 8:
	default:
		return gg.RGBA{}, fmt.Errorf("%w: base color %q", ErrInvalidConfig, s)
	}
	for _, r := range hex {
		if !strings.ContainsRune("0123456789abcdefABCDEF", r) {
			return gg.RGBA{}, fmt.Errorf("%w: base color %q", ErrInvalidConfig, s)
		}
	}
	return gg.Hex(hex), nil
}

// parseLevel accepts "" or "off" (logging disabled) and the slog level names.
func parseLevel(s string) (level slog.Level, on bool, err error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "off":
		return 0, false, nil
	}
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, false, fmt.Errorf("%w: log level %q", ErrInvalidConfig, s)
	}
	return level, true, nil
}
