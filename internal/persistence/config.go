package persistence

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/goccy/go-yaml"

	"github.com/detent/glctl/internal/terminal"
)

// --- File paths ---

const (
	glctlDirName     = ".glctl"
	globalConfigFile = "config.yaml"
	databaseFile     = "jobs.db"

	// HomeEnv overrides ~/.glctl.
	HomeEnv = "GLCTL_HOME"

	// Environment overrides for individual settings.
	ColorEnv    = "GLCTL_COLOR"
	StepEnv     = "GLCTL_STEP"
	LogLevelEnv = "GLCTL_LOG_LEVEL"
)

var (
	cachedDir   string
	cachedDirMu sync.RWMutex
)

// --- Structs ---

// GlobalConfig is the persisted settings file (~/.glctl/config.yaml).
type GlobalConfig struct {
	Color    string `yaml:"color,omitempty"`
	Step     string `yaml:"step,omitempty"`
	Database string `yaml:"database,omitempty"`
	LogLevel string `yaml:"log_level,omitempty"`
}

// Config is the merged, resolved config used by the application.
// Values are resolved from: env var > global config > defaults.
type Config struct {
	Color    terminal.ColorMode
	Step     string
	Database string
	LogLevel log.Level

	// Warnings lists settings that were ignored because they did not parse.
	Warnings []string

	global *GlobalConfig
}

// --- Defaults ---

const (
	// DefaultStep is the section shown when no step is configured.
	DefaultStep = "step_script"
	// DefaultLogLevel is the diagnostic log level.
	DefaultLogLevel = log.WarnLevel
)

// --- Value Source Tracking ---

// ValueSource indicates where a configuration value originated.
type ValueSource int

// Value sources indicate where configuration values originated.
const (
	SourceDefault ValueSource = iota // SourceDefault indicates the value is a hardcoded default.
	SourceGlobal                     // SourceGlobal indicates the value comes from ~/.glctl/config.yaml.
	SourceEnv                        // SourceEnv indicates the value comes from an environment variable.
)

// String returns the display name for a value source.
func (s ValueSource) String() string {
	switch s {
	case SourceDefault:
		return "default"
	case SourceGlobal:
		return "global"
	case SourceEnv:
		return "env"
	}
	return "unknown"
}

// ConfigValue holds a resolved value with its source.
type ConfigValue[T any] struct {
	Value  T
	Source ValueSource
}

// ConfigWithSources provides resolved values with source information.
// Used by `config show` to print where each value came from.
type ConfigWithSources struct {
	Color    ConfigValue[terminal.ColorMode]
	Step     ConfigValue[string]
	Database ConfigValue[string]
	LogLevel ConfigValue[log.Level]

	// Warnings lists settings that were ignored because they did not parse.
	Warnings []string

	// Internal reference for saving
	Global *GlobalConfig
}

// --- Path helpers ---

// GetDir returns the glctl directory path (~/.glctl).
// If GLCTL_HOME is set, uses that instead.
// This function is safe for concurrent use.
func GetDir() (string, error) {
	if override := os.Getenv(HomeEnv); override != "" {
		return filepath.Clean(override), nil
	}

	cachedDirMu.RLock()
	cached := cachedDir
	cachedDirMu.RUnlock()
	if cached != "" {
		return cached, nil
	}

	cachedDirMu.Lock()
	defer cachedDirMu.Unlock()

	if cachedDir != "" {
		return cachedDir, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	cachedDir = filepath.Join(home, glctlDirName)
	return cachedDir, nil
}

// GetConfigPath returns the path to the global config file.
func GetConfigPath() (string, error) {
	dir, err := GetDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, globalConfigFile), nil
}

// DefaultDatabasePath returns the job store location used when none is configured.
func DefaultDatabasePath() (string, error) {
	dir, err := GetDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, databaseFile), nil
}

// --- Loading ---

// Load loads the global config, returning the resolved Config.
func Load() (*Config, error) {
	src, err := LoadWithSources()
	if err != nil {
		return nil, err
	}
	return &Config{
		Color:    src.Color.Value,
		Step:     src.Step.Value,
		Database: src.Database.Value,
		LogLevel: src.LogLevel.Value,
		Warnings: src.Warnings,
		global:   src.Global,
	}, nil
}

// LoadWithSources loads config and tracks the source of each value.
func LoadWithSources() (*ConfigWithSources, error) {
	global, err := loadGlobal()
	if err != nil {
		return nil, fmt.Errorf("global config: %w", err)
	}

	dbPath, err := DefaultDatabasePath()
	if err != nil {
		return nil, err
	}

	return mergeInternal(global, dbPath), nil
}

// mergeInternal combines global config with defaults, tracking value sources.
// Invalid values are ignored and recorded in Warnings.
func mergeInternal(global *GlobalConfig, dbPath string) *ConfigWithSources {
	c := &ConfigWithSources{
		Color:    ConfigValue[terminal.ColorMode]{Value: terminal.Auto, Source: SourceDefault},
		Step:     ConfigValue[string]{Value: DefaultStep, Source: SourceDefault},
		Database: ConfigValue[string]{Value: dbPath, Source: SourceDefault},
		LogLevel: ConfigValue[log.Level]{Value: DefaultLogLevel, Source: SourceDefault},
		Global:   global,
	}

	if global != nil {
		if global.Color != "" {
			if mode, err := terminal.ParseColorMode(global.Color); err == nil {
				c.Color = ConfigValue[terminal.ColorMode]{Value: mode, Source: SourceGlobal}
			} else {
				c.warn("ignoring color in %s: %v", globalConfigFile, err)
			}
		}
		if global.Step != "" {
			c.Step = ConfigValue[string]{Value: global.Step, Source: SourceGlobal}
		}
		if global.Database != "" {
			c.Database = ConfigValue[string]{Value: global.Database, Source: SourceGlobal}
		}
		if global.LogLevel != "" {
			if level, err := log.ParseLevel(global.LogLevel); err == nil {
				c.LogLevel = ConfigValue[log.Level]{Value: level, Source: SourceGlobal}
			} else {
				c.warn("ignoring invalid log_level %q in %s", global.LogLevel, globalConfigFile)
			}
		}
	}

	if env := os.Getenv(ColorEnv); env != "" {
		if mode, err := terminal.ParseColorMode(env); err == nil {
			c.Color = ConfigValue[terminal.ColorMode]{Value: mode, Source: SourceEnv}
		} else {
			c.warn("ignoring %s: %v", ColorEnv, err)
		}
	}
	if env := os.Getenv(StepEnv); env != "" {
		c.Step = ConfigValue[string]{Value: env, Source: SourceEnv}
	}
	if env := os.Getenv(LogLevelEnv); env != "" {
		if level, err := log.ParseLevel(env); err == nil {
			c.LogLevel = ConfigValue[log.Level]{Value: level, Source: SourceEnv}
		} else {
			c.warn("ignoring invalid %s %q", LogLevelEnv, env)
		}
	}

	return c
}

func (c *ConfigWithSources) warn(format string, args ...any) {
	c.Warnings = append(c.Warnings, fmt.Sprintf(format, args...))
}

// loadGlobal loads the global config from ~/.glctl/config.yaml.
// A missing or empty file yields an empty config.
func loadGlobal() (*GlobalConfig, error) {
	path, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	// #nosec G304 - path is derived from user's home directory
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &GlobalConfig{}, nil
		}
		return nil, fmt.Errorf("reading: %w", err)
	}

	if len(data) == 0 {
		return &GlobalConfig{}, nil
	}

	var cfg GlobalConfig
	if unmarshalErr := yaml.Unmarshal(data, &cfg); unmarshalErr != nil {
		return nil, fmt.Errorf("parsing: %w", unmarshalErr)
	}

	return &cfg, nil
}

// --- Saving ---

// saveGlobalConfig persists GlobalConfig to disk.
func saveGlobalConfig(global *GlobalConfig) error {
	dir, err := GetDir()
	if err != nil {
		return err
	}

	// #nosec G301 - 0700 is intentionally restrictive
	if mkdirErr := os.MkdirAll(dir, 0o700); mkdirErr != nil {
		return fmt.Errorf("creating config directory: %w", mkdirErr)
	}

	data, marshalErr := yaml.Marshal(global)
	if marshalErr != nil {
		return fmt.Errorf("marshaling: %w", marshalErr)
	}

	path := filepath.Join(dir, globalConfigFile)
	// #nosec G306 - 0600 is intentionally restrictive
	if writeErr := os.WriteFile(path, data, 0o600); writeErr != nil {
		return fmt.Errorf("writing: %w", writeErr)
	}
	return nil
}

// SaveGlobal persists the global config to disk.
func (c *Config) SaveGlobal() error {
	if c.global == nil {
		c.global = &GlobalConfig{}
	}
	return saveGlobalConfig(c.global)
}

// Keys lists the settings accepted by Set.
var Keys = []string{"color", "step", "database", "log_level"}

// Set validates and updates one setting in the global config and saves.
func (c *Config) Set(key, value string) error {
	if c.global == nil {
		c.global = &GlobalConfig{}
	}

	switch strings.ToLower(key) {
	case "color":
		mode, err := terminal.ParseColorMode(value)
		if err != nil {
			return err
		}
		c.global.Color = mode.String()
		c.Color = mode
	case "step":
		c.global.Step = strings.TrimSpace(value)
		c.Step = c.global.Step
	case "database":
		if value == "" {
			return fmt.Errorf("database path cannot be empty")
		}
		c.global.Database = value
		c.Database = value
	case "log_level":
		level, err := log.ParseLevel(value)
		if err != nil {
			return fmt.Errorf("invalid log level %q: %w", value, err)
		}
		c.global.LogLevel = level.String()
		c.LogLevel = level
	default:
		return fmt.Errorf("unknown config key %q (valid keys: %s)", key, strings.Join(Keys, ", "))
	}

	return c.SaveGlobal()
}

// NewConfigWithDefaults creates a Config with default values and an empty GlobalConfig.
func NewConfigWithDefaults() *Config {
	return &Config{
		Color:    terminal.Auto,
		Step:     DefaultStep,
		LogLevel: DefaultLogLevel,
		global:   &GlobalConfig{},
	}
}
