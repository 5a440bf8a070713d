// Package watch recompiles a source file whenever it changes on disk.
package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"choosec/pkg/utils"
)

// DefaultDebounce is used when Config.Debounce is zero.
const DefaultDebounce = 100 * time.Millisecond

var (
	// ErrRunning is returned by Watch when the watcher is already running.
	ErrRunning = errors.New("watcher already running")
	// ErrClosed is returned by Watch after an earlier Watch has returned.
	ErrClosed = errors.New("watcher closed")
)

// Config contains configuration for the file watcher.
type Config struct {
	// Path is the source file to watch.
	Path string

	// Debounce is the quiet period after the last event before onChange runs.
	Debounce time.Duration
}

// FileWatcher watches a single source file. The containing directory is
// watched rather than the file itself so that editors which save by
// rename-and-replace are still seen.
type FileWatcher struct {
	watcher  *fsnotify.Watcher
	logger   *slog.Logger
	path     string
	dir      string
	interval time.Duration
	debounce *Debouncer

	mu       sync.Mutex
	running  bool
	closed   bool
	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}

	// held while onChange runs so recompiles never overlap
	callMu sync.Mutex
}

// NewFileWatcher creates a watcher for cfg.Path.
func NewFileWatcher(cfg Config, logger *slog.Logger) (*FileWatcher, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("watch path is empty")
	}
	if logger == nil {
		logger = slog.Default()
	}
	interval := cfg.Debounce
	if interval <= 0 {
		interval = DefaultDebounce
	}

	path, dir, err := utils.GetPathInfo(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %q: %w", cfg.Path, err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &FileWatcher{
		watcher:  w,
		logger:   logger,
		path:     path,
		dir:      dir,
		interval: interval,
		debounce: NewDebouncer(interval),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Watch blocks until ctx is cancelled or Stop is called, running onChange
// once per burst of writes to the file. Errors from onChange are logged and
// watching continues.
func (fw *FileWatcher) Watch(ctx context.Context, onChange func() error) error {
	fw.mu.Lock()
	if fw.running {
		fw.mu.Unlock()
		return ErrRunning
	}
	if fw.closed {
		fw.mu.Unlock()
		return ErrClosed
	}
	fw.running = true
	fw.mu.Unlock()

	defer func() {
		fw.debounce.Stop()
		_ = fw.watcher.Close()
		fw.mu.Lock()
		fw.running = false
		fw.closed = true
		fw.mu.Unlock()
		close(fw.doneCh)
	}()

	if err := fw.watcher.Add(fw.dir); err != nil {
		return fmt.Errorf("failed to watch %q: %w", fw.dir, err)
	}

	fw.logger.Info("watching for changes",
		"path", fw.path,
		"debounce_ms", fw.interval.Milliseconds(),
	)

	for {
		select {
		case <-ctx.Done():
			fw.logger.Info("watcher stopped", "reason", ctx.Err())
			return nil

		case <-fw.stopCh:
			fw.logger.Info("watcher stopped")
			return nil

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if !fw.shouldProcessEvent(event) {
				continue
			}

			fw.logger.Debug("file event", "path", event.Name, "op", event.Op.String())

			fw.debounce.Trigger(func() {
				fw.callMu.Lock()
				defer fw.callMu.Unlock()
				if err := onChange(); err != nil {
					fw.logger.Error("recompile failed", "path", fw.path, "error", err)
				}
			})

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			fw.logger.Error("file watcher error", "error", err)
		}
	}
}

// Stop ends a running Watch and waits for it to return. The watcher cannot
// be started again afterwards.
func (fw *FileWatcher) Stop() {
	fw.mu.Lock()
	running := fw.running
	fw.closed = true
	fw.mu.Unlock()

	fw.stopOnce.Do(func() { close(fw.stopCh) })
	if running {
		<-fw.doneCh
		return
	}
	_ = fw.watcher.Close()
}

// shouldProcessEvent keeps writes, creates and renames of the watched file.
func (fw *FileWatcher) shouldProcessEvent(event fsnotify.Event) bool {
	if event.Op&fsnotify.Chmod == fsnotify.Chmod {
		return false
	}
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return false
	}
	return filepath.Clean(event.Name) == fw.path
}
