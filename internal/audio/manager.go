package audio

import (
	"context"
	"log/slog"
	"maps"
	"os"
	"sync"
	"time"

	"github.com/jmylchreest/powerpanel/internal/config"
)

// MaxConfirmation bounds how long a power action waits for its sound.
const MaxConfirmation = 3 * time.Second

// Manager plays the configured sound for each power action.
type Manager struct {
	mu      sync.RWMutex
	logger  *slog.Logger
	player  *Player
	watcher *Watcher
	config  *config.Config

	// Action name to sound path mapping
	sounds map[string]string
}

// NewManager creates a new audio manager.
func NewManager(cfg *config.Config, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}

	player := NewPlayer(logger)

	m := &Manager{
		logger:  logger,
		player:  player,
		watcher: NewWatcher(player, logger),
		config:  cfg,
		sounds:  make(map[string]string),
	}
	m.loadSoundConfig()
	return m
}

// loadSoundConfig resolves per-action sounds from the configuration.
// Missing files are logged and skipped.
func (m *Manager) loadSoundConfig() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sounds = make(map[string]string)
	if m.config == nil {
		return
	}

	m.player.SetVolume(float64(m.config.Audio.Volume) / 100.0)

	for _, action := range []string{"shutdown", "restart", "sleep"} {
		path := m.config.SoundForAction(action)
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); err != nil {
			m.logger.Warn("sound file not found", "action", action, "path", path)
			continue
		}
		m.sounds[action] = path
		m.logger.Debug("loaded sound", "action", action, "path", path)
	}
}

// Enabled reports whether sounds are turned on.
func (m *Manager) Enabled() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config != nil && m.config.Audio.Enabled
}

// SoundFor returns the resolved sound path for an action.
func (m *Manager) SoundFor(action string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	path, ok := m.sounds[action]
	return path, ok
}

// Start preloads sounds and starts the file watcher.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.RLock()
	sounds := maps.Clone(m.sounds)
	enabled := m.config != nil && m.config.Audio.Enabled
	m.mu.RUnlock()

	if !enabled {
		m.logger.Debug("audio disabled")
		return nil
	}

	for _, path := range sounds {
		if err := m.player.Preload(path); err != nil {
			m.logger.Warn("failed to preload sound", "path", path, "error", err)
		}
		m.watcher.Watch(path)
	}

	if err := m.watcher.Start(ctx); err != nil {
		return err
	}

	m.logger.Info("audio manager started", "sounds", len(sounds))
	return nil
}

// Stop shuts down the audio manager.
func (m *Manager) Stop() {
	m.watcher.Stop()
	m.player.Close()
	m.logger.Debug("audio manager stopped")
}

// PlayForAction plays the action's sound and waits for it to finish, up to
// MaxConfirmation. It is a no-op when audio is disabled or no sound is set.
func (m *Manager) PlayForAction(ctx context.Context, action string) error {
	if !m.Enabled() {
		return nil
	}

	path, ok := m.SoundFor(action)
	if !ok {
		m.logger.Debug("no sound configured for action", "action", action)
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, MaxConfirmation)
	defer cancel()
	return m.player.PlayWait(ctx, path)
}

// UpdateConfig swaps the configuration and reloads sounds.
func (m *Manager) UpdateConfig(cfg *config.Config) {
	m.mu.Lock()
	m.config = cfg
	m.mu.Unlock()

	m.player.ClearCache()
	m.loadSoundConfig()
	m.logger.Debug("audio manager config updated")
}
