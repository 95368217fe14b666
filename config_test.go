package ggcompose

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gogpu/gg"

	"github.com/gogpu/ggcompose/render"
)

func TestParseConfig(t *testing.T) {
	cfg, err := ParseConfig([]byte(`
width = 1280
height = 720
antialiasing = "msaa16"
base_color = "#ff0000"
workers = 4
log_level = "debug"
`))
	if err != nil {
		t.Fatalf("ParseConfig() error = %v", err)
	}
	want := Config{Width: 1280, Height: 720, Antialiasing: "msaa16", BaseColor: "#ff0000", Workers: 4, LogLevel: "debug"}
	if cfg != want {
		t.Errorf("ParseConfig() = %+v, want %+v", cfg, want)
	}
}

func TestParseConfigDefaults(t *testing.T) {
	cfg, err := ParseConfig([]byte(`width = 320`))
	if err != nil {
		t.Fatalf("ParseConfig() error = %v", err)
	}
	if cfg.Width != 320 || cfg.Height != 600 || cfg.Antialiasing != "area" {
		t.Errorf("ParseConfig() = %+v, want defaults besides width", cfg)
	}
}

func TestParseConfigInvalid(t *testing.T) {
	tests := []struct {
		name string
		toml string
	}{
		{"unknown key", `colour = "red"`},
		{"bad toml", `width = `},
		{"zero width", `width = 0`},
		{"negative workers", `workers = -1`},
		{"antialiasing", `antialiasing = "fxaa"`},
		{"color length", `base_color = "#12345"`},
		{"color digits", `base_color = "#gg0000"`},
		{"log level", `log_level = "verbose"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseConfig([]byte(tt.toml)); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("ParseConfig(%q) error = %v, want %v", tt.toml, err, ErrInvalidConfig)
			}
		})
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "compose.toml")
	if err := os.WriteFile(path, []byte("height = 480\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Height != 480 {
		t.Errorf("Height = %d, want 480", cfg.Height)
	}

	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("LoadConfig(missing) error = %v, want %v", err, os.ErrNotExist)
	}
}

func TestConfigOptions(t *testing.T) {
	cfg := Config{Width: 10, Height: 10, Antialiasing: "msaa8", BaseColor: "#00f", Workers: 3, LogLevel: "warn"}
	var buf bytes.Buffer
	opts, err := cfg.Options(&buf)
	if err != nil {
		t.Fatalf("Options() error = %v", err)
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.antialiasing != render.AntialiasMSAA8 {
		t.Errorf("antialiasing = %v, want msaa8", o.antialiasing)
	}
	if o.baseColor != gg.Hex("00f") {
		t.Errorf("baseColor = %+v, want blue", o.baseColor)
	}
	if o.workers != 3 {
		t.Errorf("workers = %d, want 3", o.workers)
	}
	if o.logger == nil {
		t.Fatal("logger = nil with log_level set")
	}

	o.logger.Info("hidden")
	o.logger.Warn("shown")
	if out := buf.String(); strings.Contains(out, "hidden") || !strings.Contains(out, "shown") {
		t.Errorf("log output = %q, want only the warning", out)
	}
}

func TestConfigLoggerOff(t *testing.T) {
	for _, level := range []string{"", "off", "OFF"} {
		cfg := DefaultConfig()
		cfg.LogLevel = level
		if l := cfg.Logger(&bytes.Buffer{}); l != nil {
			t.Errorf("Logger() with level %q = %v, want nil", level, l)
		}
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want gg.RGBA
	}{
		{"", gg.Transparent},
		{"transparent", gg.Transparent},
		{"#fff", gg.Hex("fff")},
		{"000000ff", gg.Hex("000000ff")},
	}
	for _, tt := range tests {
		got, err := parseColor(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("parseColor(%q) = %+v, %v, want %+v", tt.in, got, err, tt.want)
		}
	}
}
