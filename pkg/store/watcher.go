package store

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/marmos91/htstore/internal/logger"
)

// watchReloadTimeout bounds the reload triggered by a file event.
const watchReloadTimeout = 10 * time.Second

// Watcher pushes file changes into a Store, reloading the index as soon as
// a configured credential file is written, created, or replaced. It
// complements the per-operation lazy reload for hosts that want the index
// fresh between operations too.
//
// The watch is placed on the files' parent directories, not the files
// themselves: credential files are routinely replaced atomically via
// rename, which would silently detach a direct file watch.
//
// Thread safety: all methods are safe for concurrent use.
type Watcher struct {
	store *Store

	mu     sync.Mutex
	fsw    *fsnotify.Watcher
	paths  map[string]struct{}
	stopCh chan struct{}
}

// NewWatcher creates a watcher for the store's configured files (not yet
// started).
func NewWatcher(s *Store) *Watcher {
	return &Watcher{
		store:  s,
		stopCh: make(chan struct{}),
	}
}

// Start begins watching the configured files' directories and runs the
// event loop in a background goroutine.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.fsw != nil {
		return fmt.Errorf("watcher already started")
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create file watcher: %w", err)
	}

	w.paths = make(map[string]struct{}, len(w.store.files))
	dirs := make(map[string]struct{})
	for _, f := range w.store.files {
		w.paths[f.path] = struct{}{}
		dirs[filepath.Dir(f.path)] = struct{}{}
	}

	for dir := range dirs {
		if err := fsw.Add(dir); err != nil {
			_ = fsw.Close()
			return fmt.Errorf("watch %s: %w", dir, err)
		}
	}

	w.fsw = fsw
	go w.loop(fsw)

	logger.Info("credential file watcher started",
		logger.Op("watch"),
		slog.Int(logger.KeyFiles, len(w.paths)),
	)
	return nil
}

// Stop stops the event loop and releases the underlying watches. Safe to
// call multiple times or on a watcher that was never started.
func (w *Watcher) Stop() {
	select {
	case <-w.stopCh:
		// Already stopped
	default:
		close(w.stopCh)
	}
}

// loop dispatches file events until the watcher is stopped or the event
// channel closes.
func (w *Watcher) loop(fsw *fsnotify.Watcher) {
	defer func() { _ = fsw.Close() }()

	for {
		select {
		case <-w.stopCh:
			return

		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			if !w.relevant(event) {
				continue
			}
			w.reload(event.Name)

		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			logger.Error("file watcher error", logger.Op("watch"), logger.Err(err))
		}
	}
}

// relevant reports whether the event touches a configured credential file
// in a way that can change its content.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return false
	}
	_, ok := w.paths[filepath.Clean(event.Name)]
	return ok
}

// reload refreshes the index after a relevant file event.
func (w *Watcher) reload(path string) {
	ctx, cancel := context.WithTimeout(context.Background(), watchReloadTimeout)
	defer cancel()

	if err := w.store.Reload(ctx); err != nil {
		logger.Error("reload after file change failed",
			logger.Op("watch"),
			logger.Path(path),
			logger.Err(err),
		)
		return
	}

	logger.Debug("index refreshed after file change",
		logger.Op("watch"),
		logger.Path(path),
	)
}
