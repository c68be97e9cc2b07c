// Package config handles the powerpanel configuration files.
//
// Two documents live under $XDG_CONFIG_HOME/powerpanel: config.toml holds the
// application settings edited by hand, and config.json holds the theme
// selection written by the controller.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// AppName is used for config and data directory names.
const AppName = "powerpanel"

// Default configuration values.
const (
	DefaultPanelWidth  = 450
	DefaultPanelHeight = 250
	DefaultFadeStep    = 0.05
	DefaultFadeTick    = 16 * time.Millisecond
	DefaultLayer       = "overlay"
	DefaultVolume      = 80
	DefaultLogLevel    = "info"
)

// Duration is a time.Duration that can be unmarshaled from human-readable strings.
// Supports formats like "16ms", "1s", or integer milliseconds.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler for TOML parsing.
func (d *Duration) UnmarshalText(text []byte) error {
	s := string(text)

	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		*d = Duration(time.Duration(ms) * time.Millisecond)
		return nil
	}

	dur, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: must be like '16ms', '1s' or milliseconds: %w", s, err)
	}
	*d = Duration(dur)
	return nil
}

// MarshalText implements encoding.TextMarshaler for TOML output.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Duration returns the underlying time.Duration.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// Config is the powerpanel application configuration.
// Loaded from ~/.config/powerpanel/config.toml
type Config struct {
	Themes     ThemesConfig     `toml:"themes"`
	Appearance AppearanceConfig `toml:"appearance"`
	Panel      PanelConfig      `toml:"panel"`
	Actions    ActionsConfig    `toml:"actions"`
	Audio      AudioConfig      `toml:"audio"`
	Log        LogConfig        `toml:"log"`
}

// ThemesConfig holds the theme root directories.
type ThemesConfig struct {
	BuiltinDir string `toml:"builtin_dir"` // Bundles shipped with the application
	CustomDir  string `toml:"custom_dir"`  // Per-user bundles
}

// AppearanceConfig holds the dark/light preference override.
type AppearanceConfig struct {
	ColorScheme string `toml:"color_scheme"` // "system", "light", or "dark"
}

// PanelConfig contains window and fade settings.
type PanelConfig struct {
	Width    int      `toml:"width"`
	Height   int      `toml:"height"`
	FadeStep float64  `toml:"fade_step"` // Opacity change per tick
	FadeTick Duration `toml:"fade_tick"` // e.g., "16ms" or 16
	Layer    string   `toml:"layer"`     // "overlay", "top", "bottom", "background"
}

// ActionsConfig contains power action settings.
type ActionsConfig struct {
	UseLogind bool              `toml:"use_logind"` // Prefer systemd-logind over commands
	Commands  map[string]string `toml:"commands"`   // action -> shell command
}

// AudioConfig contains audio settings.
type AudioConfig struct {
	Enabled bool        `toml:"enabled"`
	Volume  int         `toml:"volume"` // 0-100
	Sounds  SoundConfig `toml:"sounds"`
}

// SoundConfig contains per-action sound file paths.
type SoundConfig struct {
	Shutdown string `toml:"shutdown"`
	Restart  string `toml:"restart"`
	Sleep    string `toml:"sleep"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level string `toml:"level"` // "debug", "info", "warn", "error"
}

// ColorScheme represents the color scheme preference.
type ColorScheme string

const (
	ColorSchemeSystem ColorScheme = "system"
	ColorSchemeLight  ColorScheme = "light"
	ColorSchemeDark   ColorScheme = "dark"
)

// ValidColorSchemes returns all valid color scheme values.
func ValidColorSchemes() []ColorScheme {
	return []ColorScheme{ColorSchemeSystem, ColorSchemeLight, ColorSchemeDark}
}

// ValidLayers returns the layer-shell layer names accepted in [panel].
func ValidLayers() []string {
	return []string{"background", "bottom", "top", "overlay"}
}

// ValidLogLevels returns the accepted [log] levels.
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Themes: ThemesConfig{
			BuiltinDir: BuiltinThemesDir(),
			CustomDir:  CustomThemesDir(),
		},
		Appearance: AppearanceConfig{
			ColorScheme: string(ColorSchemeSystem),
		},
		Panel: PanelConfig{
			Width:    DefaultPanelWidth,
			Height:   DefaultPanelHeight,
			FadeStep: DefaultFadeStep,
			FadeTick: Duration(DefaultFadeTick),
			Layer:    DefaultLayer,
		},
		Actions: ActionsConfig{
			UseLogind: true,
			Commands:  make(map[string]string),
		},
		Audio: AudioConfig{
			Enabled: false,
			Volume:  DefaultVolume,
		},
		Log: LogConfig{
			Level: DefaultLogLevel,
		},
	}
}

// ConfigDir returns the powerpanel config directory.
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config.
func ConfigDir() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, AppName)
}

// DataDir returns the powerpanel data directory.
// Uses XDG_DATA_HOME if set, otherwise ~/.local/share.
func DataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, AppName)
}

// ConfigPath returns the path to the TOML application config.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// SelectionPath returns the path to the JSON selection document.
func SelectionPath() string {
	return filepath.Join(ConfigDir(), "config.json")
}

// BuiltinThemesDir returns the default built-in theme root.
func BuiltinThemesDir() string {
	return filepath.Join(DataDir(), "themes")
}

// CustomThemesDir returns the default custom theme root.
func CustomThemesDir() string {
	return filepath.Join(ConfigDir(), "custom_theme")
}

// LoadConfig loads configuration from the specified path.
// If path is empty, uses the default config path.
// Returns default config if file doesn't exist.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		path = ConfigPath()
	}

	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.Themes.BuiltinDir = expandPath(cfg.Themes.BuiltinDir)
	cfg.Themes.CustomDir = expandPath(cfg.Themes.CustomDir)
	if cfg.Actions.Commands == nil {
		cfg.Actions.Commands = make(map[string]string)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to the specified path.
// Creates parent directories if needed.
func (c *Config) Save(path string) error {
	if path == "" {
		path = ConfigPath()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return os.Rename(tmpPath, path)
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	validScheme := false
	for _, s := range ValidColorSchemes() {
		if c.Appearance.ColorScheme == string(s) {
			validScheme = true
			break
		}
	}
	if !validScheme {
		return fmt.Errorf("invalid color_scheme %q, must be one of: %v", c.Appearance.ColorScheme, ValidColorSchemes())
	}

	if c.Panel.FadeStep <= 0 || c.Panel.FadeStep > 1 {
		return fmt.Errorf("fade_step must be in (0, 1], got %v", c.Panel.FadeStep)
	}
	if c.Panel.FadeTick.Duration() <= 0 {
		return fmt.Errorf("fade_tick must be positive, got %s", c.Panel.FadeTick.Duration())
	}
	if c.Panel.Width < 100 || c.Panel.Width > 4000 {
		return fmt.Errorf("width must be between 100 and 4000, got %d", c.Panel.Width)
	}
	if c.Panel.Height < 50 || c.Panel.Height > 4000 {
		return fmt.Errorf("height must be between 50 and 4000, got %d", c.Panel.Height)
	}
	if !contains(ValidLayers(), c.Panel.Layer) {
		return fmt.Errorf("invalid layer %q, must be one of: %v", c.Panel.Layer, ValidLayers())
	}

	if c.Audio.Volume < 0 || c.Audio.Volume > 100 {
		return fmt.Errorf("volume must be between 0 and 100, got %d", c.Audio.Volume)
	}

	if !contains(ValidLogLevels(), strings.ToLower(c.Log.Level)) {
		return fmt.Errorf("invalid log level %q, must be one of: %v", c.Log.Level, ValidLogLevels())
	}

	return nil
}

// SoundForAction returns the sound file path for the given action.
// Expands ~ to home directory.
func (c *Config) SoundForAction(action string) string {
	var path string
	switch action {
	case "shutdown":
		path = c.Audio.Sounds.Shutdown
	case "restart":
		path = c.Audio.Sounds.Restart
	case "sleep":
		path = c.Audio.Sounds.Sleep
	}
	return expandPath(path)
}

// CommandForAction returns the configured command override for an action.
func (c *Config) CommandForAction(action string) (string, bool) {
	cmd, ok := c.Actions.Commands[action]
	if !ok || strings.TrimSpace(cmd) == "" {
		return "", false
	}
	return cmd, true
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}

// expandPath expands ~ to the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
