package config

import (
	"os"
	"sync"
	"time"
)

// Loader reads a config file and hands out the parsed snapshot,
// re-reading only when the file's mtime has changed. A supervising
// process calls Current before each run so edits take effect without
// a restart.
type Loader struct {
	path string

	mu      sync.Mutex
	cfg     *Config
	modTime time.Time
}

// NewLoader returns a loader for the given path. Nothing is read
// until Load or Current is called.
func NewLoader(path string) *Loader {
	return &Loader{path: path}
}

// Path returns the config file location this loader watches.
func (l *Loader) Path() string {
	return l.path
}

// Load unconditionally reads and validates the config file.
func (l *Loader) Load() (*Config, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loadLocked()
}

// Current returns the cached config, re-reading the file first if it
// has been modified since the last load. A file that disappears after
// a successful load keeps serving the cached snapshot.
func (l *Loader) Current() (*Config, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.cfg == nil {
		return l.loadLocked()
	}

	info, err := os.Stat(l.path)
	if err != nil {
		return l.cfg, nil
	}
	if info.ModTime().Equal(l.modTime) {
		return l.cfg, nil
	}
	return l.loadLocked()
}

func (l *Loader) loadLocked() (*Config, error) {
	cfg, err := Load(l.path)
	if err != nil {
		return nil, err
	}
	l.cfg = cfg
	if info, statErr := os.Stat(l.path); statErr == nil {
		l.modTime = info.ModTime()
	}
	return cfg, nil
}
