// Package watcher triggers workspace re-initialization when configuration
// relevant files change on disk.
package watcher

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/simonheimlicher/dprint-vscode/internal/discovery"
	"github.com/simonheimlicher/dprint-vscode/internal/logging"
	"github.com/simonheimlicher/dprint-vscode/internal/workspace"
)

const debounceInterval = 500 * time.Millisecond

// Watcher observes folder roots (and the user config directory) for changes
// to dprint configuration files and re-initializes the workspace service
// after a quiet period. Bursts of events collapse into one re-initialization.
type Watcher struct {
	svc *workspace.Service
	fsw *fsnotify.Watcher

	stopOnce sync.Once
	stopCh   chan struct{}
}

// New creates a watcher over the given directories. Directories that cannot
// be watched are skipped with a log entry.
func New(svc *workspace.Service, dirs []string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := fsw.Add(dir); err != nil {
			logging.Debug("Cannot watch directory", "dir", dir, "error", err)
		}
	}

	return &Watcher{
		svc:    svc,
		fsw:    fsw,
		stopCh: make(chan struct{}),
	}, nil
}

// Start runs the event loop until ctx is cancelled or Stop is called.
func (w *Watcher) Start(ctx context.Context) {
	go func() {
		defer logging.RecoverPanic("config-watcher", nil)
		w.run(ctx)
	}()
}

func (w *Watcher) run(ctx context.Context) {
	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !relevant(event.Name) {
				continue
			}
			logging.Debug("Configuration change detected", "path", event.Name, "op", event.Op.String())
			if timer == nil {
				timer = time.NewTimer(debounceInterval)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(debounceInterval)
			}
			fire = timer.C
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			logging.Warn("Watcher error", "error", err)
		case <-fire:
			fire = nil
			if _, err := w.svc.InitializeFolders(ctx); err != nil {
				logging.Warn("Re-initialization after config change failed", "error", err)
			}
		}
	}
}

// Stop closes the watcher. Idempotent.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		w.fsw.Close()
	})
}

func relevant(path string) bool {
	name := filepath.Base(path)
	for _, candidate := range discovery.ConfigFileNames {
		if name == candidate {
			return true
		}
	}
	return name == ".dprintd.json"
}
