package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"tidyd/internal/config"
	"tidyd/internal/log"
	"tidyd/internal/organize"
	"tidyd/pkg/types"
)

// minStableAge is the floor for the stability window so files still
// being written are never organized mid-copy.
const minStableAge = 5 * time.Second

// Daemon watches the source and watch directories, organizes files
// once they have been stable for the configured age, and runs a full
// organization on the configured interval. The config file is
// re-read (mtime check) before every scheduled run.
type Daemon struct {
	loader  *config.Loader
	watcher *Watcher
	lock    *flock.Flock

	// OnRun, when set, observes every completed run result.
	OnRun func(*types.RunResult)

	mu      sync.Mutex
	pending map[string]time.Time
}

// NewDaemon builds a daemon around a config loader. The flock keeps a
// second daemon from organizing the same directories concurrently.
func NewDaemon(loader *config.Loader) (*Daemon, error) {
	watcher, err := NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Daemon{
		loader:  loader,
		watcher: watcher,
		lock:    flock.New(filepath.Join(os.TempDir(), "tidyd.lock")),
		pending: make(map[string]time.Time),
	}, nil
}

// Run blocks until the context is cancelled.
func (d *Daemon) Run(ctx context.Context) error {
	locked, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire daemon lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("another tidyd daemon is already running")
	}
	defer d.lock.Unlock()
	defer d.watcher.Close()

	cfg, err := d.loader.Load()
	if err != nil {
		return err
	}
	for _, dir := range watchedDirs(cfg) {
		if err := d.watcher.AddDirectory(dir); err != nil {
			log.L().Warn().Str("dir", dir).Err(err).Msg("cannot watch directory")
		}
	}
	d.watcher.Start()

	interval := time.Duration(cfg.OrganizeInterval) * time.Second
	nextRun := time.Now().Add(interval)
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	log.L().Info().Dur("interval", interval).Msg("daemon started")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case path := <-d.watcher.Events():
			d.note(cfg, path)
		case now := <-ticker.C:
			d.flushStable(ctx, now)
			if now.After(nextRun) {
				d.organizeAll(ctx)
				nextRun = now.Add(interval)
			}
		}
	}
}

// note records a file event. Events for paths already inside the
// target tree are the daemon's own moves and are ignored.
func (d *Daemon) note(cfg *config.Config, path string) {
	if strings.HasPrefix(path, cfg.TargetDirectory+string(filepath.Separator)) {
		return
	}
	d.mu.Lock()
	d.pending[path] = time.Now()
	d.mu.Unlock()
}

// flushStable organizes pending files that have not changed for the
// configured minimum age.
func (d *Daemon) flushStable(ctx context.Context, now time.Time) {
	cfg, err := d.loader.Current()
	if err != nil {
		log.L().Error().Err(err).Msg("config reload failed, keeping pending files queued")
		return
	}

	age := time.Duration(cfg.Advanced.MinFileAgeMinutes) * time.Minute
	if age < minStableAge {
		age = minStableAge
	}

	var ready []string
	d.mu.Lock()
	for path, seen := range d.pending {
		if now.Sub(seen) < age {
			continue
		}
		delete(d.pending, path)
		if _, err := os.Stat(path); err == nil {
			ready = append(ready, path)
		}
	}
	d.mu.Unlock()

	if len(ready) == 0 {
		return
	}

	engine, err := organize.New(cfg)
	if err != nil {
		log.L().Error().Err(err).Msg("cannot build engine")
		return
	}
	result, err := engine.ProcessFiles(ctx, ready)
	if err != nil {
		log.L().Error().Err(err).Msg("triggered run aborted")
	}
	if result != nil && d.OnRun != nil {
		d.OnRun(result)
	}
}

// organizeAll runs a full organization over every watched directory,
// re-reading the config first so edits apply without a restart.
func (d *Daemon) organizeAll(ctx context.Context) {
	cfg, err := d.loader.Current()
	if err != nil {
		log.L().Error().Err(err).Msg("config reload failed, skipping scheduled run")
		return
	}

	for _, dir := range watchedDirs(cfg) {
		engine, err := organize.New(cfg)
		if err != nil {
			log.L().Error().Err(err).Msg("cannot build engine")
			return
		}
		result, err := engine.OrganizeDirectory(ctx, dir)
		if err != nil {
			log.L().Error().Str("dir", dir).Err(err).Msg("scheduled run failed")
			continue
		}
		if d.OnRun != nil {
			d.OnRun(result)
		}
	}
}

// watchedDirs is the source directory plus the extra watch
// directories, deduplicated.
func watchedDirs(cfg *config.Config) []string {
	seen := map[string]struct{}{}
	var dirs []string
	for _, dir := range append([]string{cfg.SourceDirectory}, cfg.WatchDirectories...) {
		if _, ok := seen[dir]; ok || dir == "" {
			continue
		}
		seen[dir] = struct{}{}
		dirs = append(dirs, dir)
	}
	return dirs
}
