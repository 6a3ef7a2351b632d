package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/BurntSushi/toml"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if errs := Validate(cfg); len(errs) != 0 {
		t.Fatalf("default config should validate, got %v", errs)
	}
	if cfg.Editor.PixelsPerSecond != 4 {
		t.Errorf("PixelsPerSecond = %v, want 4", cfg.Editor.PixelsPerSecond)
	}
	if cfg.PollInterval() != 100*time.Millisecond {
		t.Errorf("PollInterval() = %v", cfg.PollInterval())
	}
	if cfg.AutosaveInterval() != 30*time.Second {
		t.Errorf("AutosaveInterval() = %v", cfg.AutosaveInterval())
	}
}

func TestDefaultPath(t *testing.T) {
	t.Run("env", func(t *testing.T) {
		t.Setenv("MTA_CONFIG", "/etc/mta.toml")
		if got := DefaultPath(); got != "/etc/mta.toml" {
			t.Errorf("DefaultPath() = %q", got)
		}
	})
	t.Run("xdg", func(t *testing.T) {
		t.Setenv("MTA_CONFIG", "")
		t.Setenv("XDG_CONFIG_HOME", "/xdg")
		if got := DefaultPath(); got != filepath.Join("/xdg", "mta", "config.toml") {
			t.Errorf("DefaultPath() = %q", got)
		}
	})
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Cannot get user home dir")
	}

	tests := []struct {
		input    string
		expected string
	}{
		{"~", home},
		{"~/foo", filepath.Join(home, "foo")},
		{"/abs/path", "/abs/path"},
		{"rel/path", "rel/path"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ExpandHome(tt.input); got != tt.expected {
				t.Errorf("ExpandHome(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Playback.Provider != "simulated" {
		t.Errorf("Provider = %q", cfg.Playback.Provider)
	}
}

func TestLoadPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[student]
name = "Ana"
surname = "García"

[editor]
zoom = 2.5

[autosave]
backend = "memory"
interval_seconds = 10
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("MTA_STUDENT_SURNAME", "López")
	t.Setenv("MTA_AUTOSAVE_INTERVAL", "5")
	t.Setenv("DATABASE_URL", "postgres://localhost/mta")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Student.Name != "Ana" {
		t.Errorf("Name = %q, want from file", cfg.Student.Name)
	}
	if cfg.Student.Surname != "López" {
		t.Errorf("Surname = %q, want env override", cfg.Student.Surname)
	}
	if cfg.Editor.Zoom != 2.5 {
		t.Errorf("Zoom = %v", cfg.Editor.Zoom)
	}
	if cfg.Editor.PixelsPerSecond != 4 {
		t.Errorf("unset keys should keep defaults, PixelsPerSecond = %v", cfg.Editor.PixelsPerSecond)
	}
	if cfg.Autosave.IntervalSeconds != 5 {
		t.Errorf("IntervalSeconds = %d, want 5", cfg.Autosave.IntervalSeconds)
	}
	if cfg.Autosave.DSN != "postgres://localhost/mta" {
		t.Errorf("DSN = %q, want DATABASE_URL fallback", cfg.Autosave.DSN)
	}
}

func TestLoadInvalidTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[editor\nzoom = "), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("Load() should fail on malformed TOML")
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("MTA_TEST_DOTENV=from-file\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("MTA_TEST_DOTENV", "")
	os.Unsetenv("MTA_TEST_DOTENV")

	if err := LoadDotEnv(path, filepath.Join(dir, "missing.env")); err != nil {
		t.Fatalf("LoadDotEnv() error = %v", err)
	}
	if got := os.Getenv("MTA_TEST_DOTENV"); got != "from-file" {
		t.Errorf("MTA_TEST_DOTENV = %q", got)
	}
}

func TestPrintRoundTrips(t *testing.T) {
	cfg := Default()
	cfg.Student = StudentConfig{Name: "Ana", Surname: "García"}
	cfg.Autosave.Backend = "postgres"
	cfg.Autosave.DSN = "postgres://localhost/mta"

	var buf bytes.Buffer
	if err := Print(cfg, &buf); err != nil {
		t.Fatal(err)
	}

	parsed := &Config{}
	if _, err := toml.Decode(buf.String(), parsed); err != nil {
		t.Fatalf("printed config is not valid TOML: %v\n%s", err, buf.String())
	}
	if *parsed != *cfg {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", parsed, cfg)
	}
}

func TestCreateDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.toml")
	t.Setenv("MTA_CONFIG", path)

	got, err := CreateDefault()
	if err != nil {
		t.Fatalf("CreateDefault() error = %v", err)
	}
	if got != path {
		t.Errorf("CreateDefault() = %q, want %q", got, path)
	}
	if _, err := CreateDefault(); err == nil {
		t.Error("second CreateDefault() should refuse to overwrite")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"zoom too high", func(c *Config) { c.Editor.Zoom = 11 }, "editor.zoom"},
		{"zoom too low", func(c *Config) { c.Editor.Zoom = 0.25 }, "editor.zoom"},
		{"zero scale", func(c *Config) { c.Editor.PixelsPerSecond = 0 }, "editor.pixels_per_second"},
		{"step", func(c *Config) { c.Editor.Step = 8 }, "editor.step"},
		{"provider", func(c *Config) { c.Playback.Provider = "vlc" }, "playback.provider"},
		{"poll", func(c *Config) { c.Playback.PollIntervalMs = 0 }, "playback.poll_interval_ms"},
		{"backend", func(c *Config) { c.Autosave.Backend = "s3" }, "autosave.backend"},
		{"postgres without dsn", func(c *Config) { c.Autosave.Backend = "postgres" }, "autosave.dsn"},
		{"log level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
		{"missing catalog", func(c *Config) { c.Catalog.File = "/nonexistent/catalog.yaml" }, "catalog.file"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			errs := Validate(cfg)
			if len(errs) != 1 {
				t.Fatalf("Validate() = %v, want exactly one error", errs)
			}
			if !strings.HasPrefix(errs[0].Error(), tt.field+":") {
				t.Errorf("error %q does not name %s", errs[0], tt.field)
			}
		})
	}
}

func TestSlogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"INFO":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
		"":      slog.LevelInfo,
	}
	for in, want := range tests {
		cfg := Default()
		cfg.Log.Level = in
		if got := cfg.SlogLevel(); got != want {
			t.Errorf("SlogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestGetValue(t *testing.T) {
	cfg := Default()
	v, err := GetValue(cfg, "editor.zoom")
	if err != nil || v != 1.0 {
		t.Errorf("GetValue(editor.zoom) = %v, %v", v, err)
	}
	if _, err := GetValue(cfg, "playback"); err != nil {
		t.Errorf("GetValue(playback) error = %v", err)
	}
	if _, err := GetValue(cfg, "editor.nope"); err == nil {
		t.Error("unknown key should error")
	}
}
