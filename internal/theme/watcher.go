package theme

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period after the last filesystem event before
// the change callback fires. Copying a bundle produces a burst of events.
const DefaultDebounce = 250 * time.Millisecond

// CatalogWatcher watches the theme roots and their bundles for changes.
type CatalogWatcher struct {
	mu     sync.RWMutex
	logger *slog.Logger

	watcher *fsnotify.Watcher
	roots   []string

	debounce time.Duration

	// Callback for changes
	onChangeCallback func()

	// Control channels
	stopCh chan struct{}
	doneCh chan struct{}

	running bool
}

// NewCatalogWatcher creates a watcher over the given theme roots.
// Empty roots are ignored.
func NewCatalogWatcher(logger *slog.Logger, roots ...string) (*CatalogWatcher, error) {
	if logger == nil {
		logger = slog.Default()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	var cleaned []string
	for _, root := range roots {
		if root != "" {
			cleaned = append(cleaned, filepath.Clean(root))
		}
	}

	return &CatalogWatcher{
		logger:   logger,
		watcher:  watcher,
		roots:    cleaned,
		debounce: DefaultDebounce,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// SetDebounce sets the quiet period before the callback fires.
func (w *CatalogWatcher) SetDebounce(d time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.debounce = d
}

// SetChangeCallback sets the callback to invoke when a theme root changes.
// The callback runs on the watcher goroutine.
func (w *CatalogWatcher) SetChangeCallback(callback func()) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onChangeCallback = callback
}

// Start begins watching. Roots that don't exist yet are skipped.
func (w *CatalogWatcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})
	w.mu.Unlock()

	for _, root := range w.roots {
		w.addTree(root)
	}

	go w.watchLoop(ctx)

	w.logger.Debug("theme watcher started", "roots", w.roots)
	return nil
}

// Stop stops watching and releases the inotify handle.
func (w *CatalogWatcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	close(w.stopCh)
	w.mu.Unlock()

	<-w.doneCh
	if err := w.watcher.Close(); err != nil {
		w.logger.Debug("failed to close theme watcher", "error", err)
	}
	w.logger.Debug("theme watcher stopped")
}

// IsRunning returns whether the watcher is currently running.
func (w *CatalogWatcher) IsRunning() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.running
}

// addTree watches a root and its bundle directories, including ico/.
func (w *CatalogWatcher) addTree(root string) {
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return
	}

	_ = filepath.WalkDir(root, func(p string, d os.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		// root, root/<bundle>, root/<bundle>/ico
		if depth(root, p) > 2 {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(p); err != nil {
			w.logger.Debug("failed to watch theme directory", "path", p, "error", err)
		}
		return nil
	})
}

// watchLoop is the main event loop.
func (w *CatalogWatcher) watchLoop(ctx context.Context) {
	defer close(w.doneCh)

	var (
		timer   *time.Timer
		timerCh <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Chmod) && !event.Has(fsnotify.Write) {
				continue
			}

			// New bundle directories need their own watches.
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					w.addTree(event.Name)
				}
			}

			w.mu.RLock()
			debounce := w.debounce
			w.mu.RUnlock()

			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			timerCh = timer.C

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("theme watcher error", "error", err)

		case <-timerCh:
			timerCh = nil
			w.mu.RLock()
			callback := w.onChangeCallback
			w.mu.RUnlock()

			w.logger.Info("theme directories changed")
			if callback != nil {
				callback()
			}
		}
	}
}

// depth returns how many path elements p is below root.
func depth(root, p string) int {
	rel, err := filepath.Rel(root, p)
	if err != nil || rel == "." {
		return 0
	}
	return strings.Count(filepath.ToSlash(rel), "/") + 1
}
