package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")
	t.Setenv("XDG_DATA_HOME", "/custom/data")

	cfg := DefaultConfig()

	assert.Equal(t, "/custom/data/powerpanel/themes", cfg.Themes.BuiltinDir)
	assert.Equal(t, "/custom/config/powerpanel/custom_theme", cfg.Themes.CustomDir)
	assert.Equal(t, "system", cfg.Appearance.ColorScheme)
	assert.Equal(t, 450, cfg.Panel.Width)
	assert.Equal(t, 250, cfg.Panel.Height)
	assert.InDelta(t, 0.05, cfg.Panel.FadeStep, 1e-9)
	assert.Equal(t, 16*time.Millisecond, cfg.Panel.FadeTick.Duration())
	assert.Equal(t, "overlay", cfg.Panel.Layer)
	assert.True(t, cfg.Actions.UseLogind)
	assert.NotNil(t, cfg.Actions.Commands)
	assert.False(t, cfg.Audio.Enabled)
	assert.Equal(t, 80, cfg.Audio.Volume)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_DefaultsWhenNoFile(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/path/config.toml")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Panel, cfg.Panel)
}

func TestLoadConfig_ParsesTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	content := `
[themes]
builtin_dir = "/opt/powerpanel/themes"
custom_dir = "/srv/themes"

[appearance]
color_scheme = "dark"

[panel]
width = 600
height = 300
fade_step = 0.1
fade_tick = "10ms"
layer = "top"

[actions]
use_logind = false

[actions.commands]
sleep = "loginctl suspend"

[audio]
enabled = true
volume = 40

[audio.sounds]
shutdown = "/usr/share/sounds/bye.ogg"

[log]
level = "debug"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "/opt/powerpanel/themes", cfg.Themes.BuiltinDir)
	assert.Equal(t, "/srv/themes", cfg.Themes.CustomDir)
	assert.Equal(t, "dark", cfg.Appearance.ColorScheme)
	assert.Equal(t, 600, cfg.Panel.Width)
	assert.Equal(t, 300, cfg.Panel.Height)
	assert.InDelta(t, 0.1, cfg.Panel.FadeStep, 1e-9)
	assert.Equal(t, 10*time.Millisecond, cfg.Panel.FadeTick.Duration())
	assert.Equal(t, "top", cfg.Panel.Layer)
	assert.False(t, cfg.Actions.UseLogind)
	assert.True(t, cfg.Audio.Enabled)
	assert.Equal(t, 40, cfg.Audio.Volume)
	assert.Equal(t, "/usr/share/sounds/bye.ogg", cfg.SoundForAction("shutdown"))
	assert.Equal(t, "debug", cfg.Log.Level)

	cmd, ok := cfg.CommandForAction("sleep")
	assert.True(t, ok)
	assert.Equal(t, "loginctl suspend", cmd)

	_, ok = cfg.CommandForAction("restart")
	assert.False(t, ok)
}

func TestLoadConfig_PartialConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	content := `
[panel]
fade_tick = "20ms"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 20*time.Millisecond, cfg.Panel.FadeTick.Duration())

	// Unchanged fields should have defaults
	assert.Equal(t, 450, cfg.Panel.Width)
	assert.InDelta(t, 0.05, cfg.Panel.FadeStep, 1e-9)
	assert.True(t, cfg.Actions.UseLogind)
}

func TestLoadConfig_ExpandsHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[themes]\ncustom_dir = \"~/themes\"\n"), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "themes"), cfg.Themes.CustomDir)
}

func TestLoadConfig_InvalidTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`this is not valid toml [`), 0644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestLoadConfig_InvalidValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[panel]\nfade_step = 0\n"), 0644))

	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fade_step")
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"bad color scheme", func(c *Config) { c.Appearance.ColorScheme = "purple" }, "color_scheme"},
		{"negative fade step", func(c *Config) { c.Panel.FadeStep = -0.1 }, "fade_step"},
		{"fade step above one", func(c *Config) { c.Panel.FadeStep = 1.5 }, "fade_step"},
		{"fade step of one", func(c *Config) { c.Panel.FadeStep = 1 }, ""},
		{"zero tick", func(c *Config) { c.Panel.FadeTick = 0 }, "fade_tick"},
		{"tiny width", func(c *Config) { c.Panel.Width = 10 }, "width"},
		{"tiny height", func(c *Config) { c.Panel.Height = 10 }, "height"},
		{"bad layer", func(c *Config) { c.Panel.Layer = "floating" }, "layer"},
		{"volume too high", func(c *Config) { c.Audio.Volume = 101 }, "volume"},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }, "log level"},
		{"uppercase log level", func(c *Config) { c.Log.Level = "DEBUG" }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConfig_Save(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "subdir", "config.toml")

	cfg := DefaultConfig()
	cfg.Panel.Layer = "top"
	cfg.Panel.FadeTick = Duration(25 * time.Millisecond)
	cfg.Actions.Commands["shutdown"] = "poweroff"

	require.NoError(t, cfg.Save(path))

	_, err := os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "top", loaded.Panel.Layer)
	assert.Equal(t, 25*time.Millisecond, loaded.Panel.FadeTick.Duration())
	assert.Equal(t, "poweroff", loaded.Actions.Commands["shutdown"])
}

func TestDuration_UnmarshalText(t *testing.T) {
	var d Duration
	require.NoError(t, d.UnmarshalText([]byte("16ms")))
	assert.Equal(t, 16*time.Millisecond, d.Duration())

	require.NoError(t, d.UnmarshalText([]byte("250")))
	assert.Equal(t, 250*time.Millisecond, d.Duration())

	assert.Error(t, d.UnmarshalText([]byte("soon")))

	text, err := Duration(16 * time.Millisecond).MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "16ms", string(text))
}

func TestPaths(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")
	t.Setenv("XDG_DATA_HOME", "/custom/data")

	assert.Equal(t, "/custom/config/powerpanel", ConfigDir())
	assert.Equal(t, "/custom/config/powerpanel/config.toml", ConfigPath())
	assert.Equal(t, "/custom/config/powerpanel/config.json", SelectionPath())
	assert.Equal(t, "/custom/config/powerpanel/custom_theme", CustomThemesDir())
	assert.Equal(t, "/custom/data/powerpanel", DataDir())
	assert.Equal(t, "/custom/data/powerpanel/themes", BuiltinThemesDir())
}

func TestPathsDefault(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("XDG_DATA_HOME", "")
	t.Setenv("HOME", "/home/tester")

	assert.Equal(t, "/home/tester/.config/powerpanel/config.toml", ConfigPath())
	assert.Equal(t, "/home/tester/.local/share/powerpanel", DataDir())
}
