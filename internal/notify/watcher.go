// Package notify watches configuration files and reports when they change.
package notify

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const defaultDebounce = 200 * time.Millisecond

// FileWatcher calls a callback after a single file is written, created or
// renamed into place. Bursts of events are collapsed into one call.
type FileWatcher struct {
	path     string
	onChange func(path string)
	debounce time.Duration
	logger   *zap.Logger

	watcher *fsnotify.Watcher
	done    chan struct{}

	mu    sync.Mutex
	timer *time.Timer
}

// NewFileWatcher creates a watcher for path. debounce <= 0 uses 200ms.
func NewFileWatcher(path string, debounce time.Duration, onChange func(path string), logger *zap.Logger) *FileWatcher {
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileWatcher{
		path:     filepath.Clean(path),
		onChange: onChange,
		debounce: debounce,
		logger:   logger,
		done:     make(chan struct{}),
	}
}

// Start begins watching. The parent directory is watched rather than the
// file itself so that editors replacing the file atomically are seen.
// Call Stop() to clean up.
func (fw *FileWatcher) Start() error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := w.Add(filepath.Dir(fw.path)); err != nil {
		_ = w.Close()
		return err
	}
	fw.watcher = w

	go fw.loop()
	fw.logger.Info("watching file for changes", zap.String("path", fw.path))
	return nil
}

// Stop shuts down the watcher. Pending callbacks are cancelled.
func (fw *FileWatcher) Stop() {
	if fw.watcher == nil {
		return
	}
	_ = fw.watcher.Close()
	<-fw.done

	fw.mu.Lock()
	if fw.timer != nil {
		fw.timer.Stop()
	}
	fw.mu.Unlock()
}

func (fw *FileWatcher) loop() {
	defer close(fw.done)
	for {
		select {
		case evt, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(evt.Name) != fw.path {
				continue
			}
			if evt.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				fw.schedule()
			}
		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			fw.logger.Warn("file watcher error", zap.Error(err))
		}
	}
}

func (fw *FileWatcher) schedule() {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	if fw.timer != nil {
		fw.timer.Stop()
	}
	fw.timer = time.AfterFunc(fw.debounce, func() {
		if fw.onChange != nil {
			fw.onChange(fw.path)
		}
	})
}
