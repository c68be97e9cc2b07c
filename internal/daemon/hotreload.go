package daemon

import (
	"context"
	"crypto/sha256"
	"errors"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/jmylchreest/powerpanel/internal/config"
)

// fingerprint identifies one version of the config file on disk.
type fingerprint struct {
	exists  bool
	modTime time.Time
	sum     [sha256.Size]byte
}

// ConfigWatcher polls config.toml and hands validated configs to a callback.
// A config that fails to parse or validate is reported and the previous one
// stays current. Removing the file reverts to the defaults.
type ConfigWatcher struct {
	mu     sync.RWMutex
	logger *slog.Logger

	path         string
	last         fingerprint
	current      *config.Config
	pollInterval time.Duration

	onReload func(*config.Config)
	onError  func(error)

	stopCh  chan struct{}
	doneCh  chan struct{}
	running bool
}

// NewConfigWatcher creates a watcher for the config file at path.
func NewConfigWatcher(path string, logger *slog.Logger) *ConfigWatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &ConfigWatcher{
		logger:       logger,
		path:         path,
		pollInterval: time.Second,
	}
}

// SetPollInterval sets how often the file is checked. Takes effect on Start.
func (w *ConfigWatcher) SetPollInterval(interval time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pollInterval = interval
}

// SetReloadCallback sets the function called with each newly loaded config.
func (w *ConfigWatcher) SetReloadCallback(callback func(newConfig *config.Config)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onReload = callback
}

// SetErrorCallback sets the function called when a changed file is rejected.
func (w *ConfigWatcher) SetErrorCallback(callback func(err error)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onError = callback
}

// Start records the file's current version and begins polling.
// initial becomes the current config until the file changes.
func (w *ConfigWatcher) Start(ctx context.Context, initial *config.Config) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.current = initial
	w.last = w.read()
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})
	interval := w.pollInterval
	w.mu.Unlock()

	go w.watchLoop(ctx, interval)

	w.logger.Debug("config watcher started", "path", w.path, "interval", interval)
	return nil
}

// Stop stops polling and waits for the loop to exit.
func (w *ConfigWatcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	close(w.stopCh)
	w.mu.Unlock()

	<-w.doneCh
	w.logger.Debug("config watcher stopped")
}

// CurrentConfig returns the last config that loaded successfully.
func (w *ConfigWatcher) CurrentConfig() *config.Config {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

func (w *ConfigWatcher) watchLoop(ctx context.Context, interval time.Duration) {
	defer close(w.doneCh)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.check()
		}
	}
}

// read fingerprints the file. Unreadable files count as missing.
func (w *ConfigWatcher) read() fingerprint {
	info, err := os.Stat(w.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			w.logger.Debug("failed to stat config file", "path", w.path, "error", err)
		}
		return fingerprint{}
	}
	data, err := os.ReadFile(w.path)
	if err != nil {
		w.logger.Debug("failed to read config file", "path", w.path, "error", err)
		return fingerprint{}
	}
	return fingerprint{exists: true, modTime: info.ModTime(), sum: sha256.Sum256(data)}
}

// check reloads when the file content changed since the last check.
// Touching the file without changing it is ignored.
func (w *ConfigWatcher) check() {
	next := w.read()

	w.mu.Lock()
	prev := w.last
	w.last = next
	onReload, onError := w.onReload, w.onError
	w.mu.Unlock()

	if next.exists == prev.exists && next.sum == prev.sum {
		return
	}

	if !next.exists {
		w.logger.Info("config file removed, using defaults", "path", w.path)
	} else {
		w.logger.Debug("config file changed", "path", w.path, "modTime", next.modTime)
	}

	newConfig, err := config.LoadConfig(w.path)
	if err != nil {
		w.logger.Warn("config file changed but is invalid, keeping previous", "error", err)
		if onError != nil {
			onError(err)
		}
		return
	}

	w.mu.Lock()
	w.current = newConfig
	w.mu.Unlock()

	w.logger.Info("config reloaded", "path", w.path)
	if onReload != nil {
		onReload(newConfig)
	}
}
