// Package watch reports when a generated scene file has been rewritten.
package watch

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const DefaultDebounce = 200 * time.Millisecond

// FileWatcher watches one file. Bursts of writes within the debounce window
// collapse into a single change, and unread changes coalesce.
type FileWatcher struct {
	watcher  *fsnotify.Watcher
	path     string
	debounce time.Duration
	logger   *slog.Logger

	mu      sync.Mutex
	timer   *time.Timer
	closed  bool
	changes chan string
}

// NewFileWatcher watches the directory holding path so that files replaced
// by rename are still seen.
func NewFileWatcher(path string, debounce time.Duration, logger *slog.Logger) (*FileWatcher, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path %s: %w", path, err)
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(absPath)); err != nil {
		w.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", absPath, err)
	}

	return &FileWatcher{
		watcher:  w,
		path:     absPath,
		debounce: debounce,
		logger:   logger,
		changes:  make(chan string, 1),
	}, nil
}

func (fw *FileWatcher) Path() string {
	return fw.path
}

// Changes delivers the watched path after each settled burst of writes. It
// is closed by Close.
func (fw *FileWatcher) Changes() <-chan string {
	return fw.changes
}

// Start begins watching in the background until Close.
func (fw *FileWatcher) Start() {
	go func() {
		for {
			select {
			case event, ok := <-fw.watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != fw.path {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
					fw.handleFileChange()
				}

			case err, ok := <-fw.watcher.Errors:
				if !ok {
					return
				}
				fw.logger.Warn("watcher error", "path", fw.path, "error", err)
			}
		}
	}()
}

func (fw *FileWatcher) handleFileChange() {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	if fw.closed {
		return
	}
	if fw.timer != nil {
		fw.timer.Stop()
	}
	fw.timer = time.AfterFunc(fw.debounce, fw.emit)
}

func (fw *FileWatcher) emit() {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	if fw.closed {
		return
	}
	select {
	case fw.changes <- fw.path:
		fw.logger.Debug("scene file changed", "path", fw.path)
	default:
	}
}

// Close stops the watcher and closes Changes. Pending changes are dropped.
func (fw *FileWatcher) Close() error {
	fw.mu.Lock()
	if fw.closed {
		fw.mu.Unlock()
		return nil
	}
	fw.closed = true
	if fw.timer != nil {
		fw.timer.Stop()
	}
	close(fw.changes)
	fw.mu.Unlock()
	return fw.watcher.Close()
}
