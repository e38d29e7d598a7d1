// Package watch triggers organization runs from filesystem events and
// a periodic schedule.
package watch

import (
	"fmt"
	"os"

	"github.com/fsnotify/fsnotify"

	"tidyd/internal/log"
)

// Watcher wraps fsnotify and delivers the paths of files that were
// created, written or renamed into a watched directory.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	events    chan string
	done      chan struct{}
}

// NewWatcher creates an idle watcher. Call AddDirectory, then Start.
func NewWatcher() (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	return &Watcher{
		fsWatcher: fsw,
		events:    make(chan string, 64),
		done:      make(chan struct{}),
	}, nil
}

// AddDirectory registers a directory for watching.
func (w *Watcher) AddDirectory(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("access directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}
	if err := w.fsWatcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	log.L().Info().Str("dir", dir).Msg("watching directory")
	return nil
}

// Events delivers paths of files seen changing in watched
// directories.
func (w *Watcher) Events() <-chan string {
	return w.events
}

// Start launches the event pump. It returns immediately.
func (w *Watcher) Start() {
	go func() {
		for {
			select {
			case ev, ok := <-w.fsWatcher.Events:
				if !ok {
					return
				}
				if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
					continue
				}
				select {
				case w.events <- ev.Name:
				case <-w.done:
					return
				}
			case err, ok := <-w.fsWatcher.Errors:
				if !ok {
					return
				}
				log.L().Error().Err(err).Msg("watcher error")
			case <-w.done:
				return
			}
		}
	}()
}

// Close stops the event pump and releases the fsnotify watcher.
func (w *Watcher) Close() error {
	close(w.done)
	return w.fsWatcher.Close()
}
