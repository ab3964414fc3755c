package server

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/Konsultn-Engineering/valueset/catalog"
	"github.com/Konsultn-Engineering/valueset/internal/logging"
	"github.com/Konsultn-Engineering/valueset/resolver"
	"github.com/fsnotify/fsnotify"
)

const reloadDebounce = 100 * time.Millisecond

// Reloader serves the current engine and swaps in a new one when the catalog
// file is reloaded. A reload that fails leaves the current engine in place.
type Reloader struct {
	path   string
	exec   resolver.Executor
	logger *slog.Logger
	engine atomic.Pointer[resolver.Engine]
}

// NewReloader loads the catalog at path and builds the first engine.
func NewReloader(path string, exec resolver.Executor, logger *slog.Logger) (*Reloader, error) {
	if logger == nil {
		logger = logging.Discard()
	}
	r := &Reloader{path: path, exec: exec, logger: logger}
	if err := r.Reload(); err != nil {
		return nil, err
	}
	return r, nil
}

// Engine returns the engine currently in service.
func (r *Reloader) Engine() *resolver.Engine {
	return r.engine.Load()
}

// Reload rebuilds the engine from the catalog file.
func (r *Reloader) Reload() error {
	cat, err := catalog.LoadFile(r.path)
	if err != nil {
		return err
	}
	r.engine.Store(resolver.New(cat, r.exec, resolver.WithLogger(r.logger)))
	r.logger.Info("catalog loaded", "path", r.path, "tables", cat.Len(), "templates", cat.TemplateCount())
	return nil
}

// Watch reloads the catalog whenever its file changes, until ctx is done.
// The parent directory is watched so editors that replace the file are seen.
func (r *Reloader) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	abs, err := filepath.Abs(r.path)
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}
	r.logger.Debug("watching catalog", "path", abs)

	var debounce *time.Timer
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}

			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(reloadDebounce, func() {
				if err := r.Reload(); err != nil {
					r.logger.Error("catalog reload failed, keeping previous catalog", "error", err)
				}
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			r.logger.Error("watcher error", "error", err)
		}
	}
}
