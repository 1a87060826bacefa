package persistence

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/detent/glctl/internal/terminal"
)

// setupTestHome points GLCTL_HOME at a temp directory and clears overrides.
func setupTestHome(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv(HomeEnv, dir)
	t.Setenv(ColorEnv, "")
	t.Setenv(StepEnv, "")
	t.Setenv(LogLevelEnv, "")
	return dir
}

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, globalConfigFile), []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func TestLoad_Defaults(t *testing.T) {
	dir := setupTestHome(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Color != terminal.Auto {
		t.Errorf("Color = %v, want auto", cfg.Color)
	}
	if cfg.Step != DefaultStep {
		t.Errorf("Step = %q, want %q", cfg.Step, DefaultStep)
	}
	if cfg.LogLevel != DefaultLogLevel {
		t.Errorf("LogLevel = %v, want %v", cfg.LogLevel, DefaultLogLevel)
	}
	if want := filepath.Join(dir, databaseFile); cfg.Database != want {
		t.Errorf("Database = %q, want %q", cfg.Database, want)
	}
}

func TestLoad_EmptyFile(t *testing.T) {
	dir := setupTestHome(t)
	writeConfig(t, dir, "")

	if _, err := Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	dir := setupTestHome(t)
	writeConfig(t, dir, "color: [unterminated\n")

	if _, err := Load(); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoadWithSources_Precedence(t *testing.T) {
	tests := []struct {
		name       string
		file       string
		env        map[string]string
		wantStep   string
		wantSource ValueSource
		wantColor  terminal.ColorMode
	}{
		{
			name:       "default",
			wantStep:   DefaultStep,
			wantSource: SourceDefault,
			wantColor:  terminal.Auto,
		},
		{
			name:       "global file",
			file:       "step: build\ncolor: never\n",
			wantStep:   "build",
			wantSource: SourceGlobal,
			wantColor:  terminal.Never,
		},
		{
			name:       "env beats file",
			file:       "step: build\ncolor: never\n",
			env:        map[string]string{StepEnv: "test", ColorEnv: "always"},
			wantStep:   "test",
			wantSource: SourceEnv,
			wantColor:  terminal.Always,
		},
		{
			name:       "invalid color ignored",
			file:       "color: rainbow\n",
			wantStep:   DefaultStep,
			wantSource: SourceDefault,
			wantColor:  terminal.Auto,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := setupTestHome(t)
			if tt.file != "" {
				writeConfig(t, dir, tt.file)
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := LoadWithSources()
			if err != nil {
				t.Fatalf("LoadWithSources() error = %v", err)
			}
			if cfg.Step.Value != tt.wantStep || cfg.Step.Source != tt.wantSource {
				t.Errorf("Step = %+v, want %q from %v", cfg.Step, tt.wantStep, tt.wantSource)
			}
			if cfg.Color.Value != tt.wantColor {
				t.Errorf("Color = %v, want %v", cfg.Color.Value, tt.wantColor)
			}
		})
	}
}

func TestLoadWithSources_Warnings(t *testing.T) {
	tests := []struct {
		name         string
		file         string
		env          map[string]string
		wantWarnings []string
		wantColor    terminal.ColorMode
		wantLevel    log.Level
	}{
		{
			name:      "valid settings",
			file:      "color: never\nlog_level: info\n",
			env:       map[string]string{ColorEnv: "always", LogLevelEnv: "debug"},
			wantColor: terminal.Always,
			wantLevel: log.DebugLevel,
		},
		{
			name:         "invalid env color",
			env:          map[string]string{ColorEnv: "rainbow"},
			wantWarnings: []string{ColorEnv},
			wantColor:    terminal.Auto,
			wantLevel:    DefaultLogLevel,
		},
		{
			name:         "invalid env log level keeps file value",
			file:         "log_level: info\n",
			env:          map[string]string{LogLevelEnv: "chatty"},
			wantWarnings: []string{LogLevelEnv},
			wantColor:    terminal.Auto,
			wantLevel:    log.InfoLevel,
		},
		{
			name:         "invalid file values",
			file:         "color: rainbow\nlog_level: chatty\n",
			wantWarnings: []string{"color", "log_level"},
			wantColor:    terminal.Auto,
			wantLevel:    DefaultLogLevel,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := setupTestHome(t)
			if tt.file != "" {
				writeConfig(t, dir, tt.file)
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := LoadWithSources()
			if err != nil {
				t.Fatalf("LoadWithSources() error = %v", err)
			}
			if len(cfg.Warnings) != len(tt.wantWarnings) {
				t.Fatalf("Warnings = %q, want %d entries", cfg.Warnings, len(tt.wantWarnings))
			}
			for i, want := range tt.wantWarnings {
				if !strings.Contains(cfg.Warnings[i], want) {
					t.Errorf("Warnings[%d] = %q, want mention of %q", i, cfg.Warnings[i], want)
				}
			}
			if cfg.Color.Value != tt.wantColor {
				t.Errorf("Color = %v, want %v", cfg.Color.Value, tt.wantColor)
			}
			if cfg.LogLevel.Value != tt.wantLevel {
				t.Errorf("LogLevel = %v, want %v", cfg.LogLevel.Value, tt.wantLevel)
			}
		})
	}
}

func TestLoad_CarriesWarnings(t *testing.T) {
	setupTestHome(t)
	t.Setenv(ColorEnv, "rainbow")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(cfg.Warnings) != 1 || !strings.Contains(cfg.Warnings[0], "rainbow") {
		t.Errorf("Warnings = %q, want one mentioning the rejected value", cfg.Warnings)
	}
}

func TestConfig_SetPersists(t *testing.T) {
	dir := setupTestHome(t)

	cfg := NewConfigWithDefaults()
	if err := cfg.Set("step", "deploy"); err != nil {
		t.Fatalf("Set(step) error = %v", err)
	}
	if err := cfg.Set("log_level", "debug"); err != nil {
		t.Fatalf("Set(log_level) error = %v", err)
	}
	if err := cfg.Set("color", "ALWAYS"); err != nil {
		t.Fatalf("Set(color) error = %v", err)
	}

	info, err := os.Stat(filepath.Join(dir, globalConfigFile))
	if err != nil {
		t.Fatalf("config file not written: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("config perm = %o, want 600", perm)
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.Step != "deploy" {
		t.Errorf("Step = %q, want deploy", loaded.Step)
	}
	if loaded.LogLevel != log.DebugLevel {
		t.Errorf("LogLevel = %v, want debug", loaded.LogLevel)
	}
	if loaded.Color != terminal.Always {
		t.Errorf("Color = %v, want always", loaded.Color)
	}
}

func TestConfig_SetRejectsInvalid(t *testing.T) {
	setupTestHome(t)
	cfg := NewConfigWithDefaults()

	tests := []struct{ key, value string }{
		{"color", "sometimes"},
		{"log_level", "loud"},
		{"database", ""},
		{"editor", "vim"},
	}
	for _, tt := range tests {
		if err := cfg.Set(tt.key, tt.value); err == nil {
			t.Errorf("Set(%q, %q) expected error", tt.key, tt.value)
		}
	}
}

func TestValueSource_String(t *testing.T) {
	tests := map[ValueSource]string{
		SourceDefault:   "default",
		SourceGlobal:    "global",
		SourceEnv:       "env",
		ValueSource(99): "unknown",
	}
	for src, want := range tests {
		if got := src.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", src, got, want)
		}
	}
}
