package audio

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Watcher drops cached sounds when their files change on disk, so an edited
// sound is decoded again on next play.
type Watcher struct {
	mu     sync.RWMutex
	logger *slog.Logger
	player *Player

	fsw   *fsnotify.Watcher
	paths map[string]bool // watched sound files
	dirs  map[string]bool // directories registered with fsnotify

	stopCh chan struct{}
	doneCh chan struct{}

	running bool
}

// NewWatcher creates a new sound file watcher.
func NewWatcher(player *Player, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}

	return &Watcher{
		logger: logger,
		player: player,
		paths:  make(map[string]bool),
		dirs:   make(map[string]bool),
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

// Watch adds a sound file to the watch list. Its directory is watched
// rather than the file so editors that replace files are seen.
func (w *Watcher) Watch(path string) {
	if path == "" {
		return
	}
	path = filepath.Clean(expandPath(path))

	w.mu.Lock()
	defer w.mu.Unlock()

	w.paths[path] = true
	if w.fsw != nil {
		w.addDirLocked(filepath.Dir(path))
	}
}

// Watched reports whether path is on the watch list.
func (w *Watcher) Watched(path string) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.paths[filepath.Clean(expandPath(path))]
}

// Start begins watching sound files for changes.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		w.mu.Unlock()
		return err
	}
	w.fsw = fsw
	w.running = true
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})
	for path := range w.paths {
		w.addDirLocked(filepath.Dir(path))
	}
	w.mu.Unlock()

	go w.watchLoop(ctx, fsw)

	w.logger.Debug("audio watcher started", "files", len(w.paths))
	return nil
}

// Stop stops watching sound files.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	close(w.stopCh)
	fsw := w.fsw
	w.fsw = nil
	w.dirs = make(map[string]bool)
	w.mu.Unlock()

	<-w.doneCh
	_ = fsw.Close()
	w.logger.Debug("audio watcher stopped")
}

// IsRunning returns whether the watcher is currently running.
func (w *Watcher) IsRunning() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.running
}

func (w *Watcher) addDirLocked(dir string) {
	if w.dirs[dir] {
		return
	}
	if err := w.fsw.Add(dir); err != nil {
		w.logger.Debug("cannot watch sound directory", "dir", dir, "error", err)
		return
	}
	w.dirs[dir] = true
}

func (w *Watcher) watchLoop(ctx context.Context, fsw *fsnotify.Watcher) {
	defer close(w.doneCh)

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return

		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}

			path := filepath.Clean(event.Name)
			w.mu.RLock()
			watched := w.paths[path]
			w.mu.RUnlock()
			if !watched {
				continue
			}

			w.logger.Debug("sound file changed, invalidating cache", "path", path)
			if w.player != nil {
				w.player.InvalidateCache(path)
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("audio watcher error", "error", err)
		}
	}
}
