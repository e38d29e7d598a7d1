// Package organize walks a source tree, classifies every discovered
// file, resolves duplicate destinations and moves files in bounded
// concurrent batches.
package organize

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/panjf2000/ants/v2"
	"github.com/spf13/afero"

	"tidyd/internal/classify"
	"tidyd/internal/config"
	"tidyd/internal/dupe"
	"tidyd/internal/log"
	"tidyd/internal/rules"
	"tidyd/internal/stats"
	"tidyd/pkg/types"
)

// MoveHook is called after every completed move with the source path,
// the final destination and the bucket label the classifier chose.
type MoveHook func(src, dest, category string)

// Engine is the organization run coordinator. Construct one per
// config snapshot; it is safe to run sequential organizes from the
// same engine.
type Engine struct {
	fs           afero.Fs
	cfg          *config.Config
	classifier   *classify.Classifier
	resolver     *dupe.Resolver
	excludeFiles rules.NameSet
	excludeDirs  rules.NameSet
	clock        func() time.Time
	onFileMoved  MoveHook
}

// Option adjusts engine construction.
type Option func(*Engine)

// WithFilesystem substitutes the filesystem capability, primarily for
// tests.
func WithFilesystem(fs afero.Fs) Option {
	return func(e *Engine) { e.fs = fs }
}

// WithClock substitutes the time source used for elapsed measurement.
func WithClock(clock func() time.Time) Option {
	return func(e *Engine) { e.clock = clock }
}

// WithMoveHook registers an observer invoked once per moved file.
func WithMoveHook(hook MoveHook) Option {
	return func(e *Engine) { e.onFileMoved = hook }
}

// New builds an engine from a validated config.
func New(cfg *config.Config, opts ...Option) (*Engine, error) {
	e := &Engine{
		fs:    afero.NewOsFs(),
		cfg:   cfg,
		clock: time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}

	var err error
	if e.classifier, err = classify.New(e.fs, cfg); err != nil {
		return nil, err
	}
	e.resolver = dupe.New(e.fs, cfg.DuplicateHandling, cfg.Advanced.RenamePattern)

	if e.excludeFiles, err = rules.CompileNames(cfg.ExcludeFiles); err != nil {
		return nil, fmt.Errorf("compile exclude_files: %w", err)
	}
	if e.excludeDirs, err = rules.CompileNames(cfg.ExcludeDirs); err != nil {
		return nil, fmt.Errorf("compile exclude_dirs: %w", err)
	}
	return e, nil
}

// Organize runs a full organization of the configured source
// directory.
func (e *Engine) Organize(ctx context.Context) (*types.RunResult, error) {
	return e.OrganizeDirectory(ctx, e.cfg.SourceDirectory)
}

// OrganizeDirectory organizes a specific directory tree. Setup
// failures (missing or unreadable source) are returned as errors;
// per-file failures are counted in the result and never abort the
// run.
func (e *Engine) OrganizeDirectory(ctx context.Context, dir string) (*types.RunResult, error) {
	info, err := e.fs.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("source directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("source is not a directory: %s", dir)
	}

	acc := stats.NewAccumulator(e.clock())
	tasks, err := e.discover(dir)
	if err != nil {
		return nil, err
	}
	log.L().Info().Str("dir", dir).Int("files", len(tasks)).Msg("starting organization run")

	runErr := e.runBatches(ctx, tasks, acc)
	result := e.finish(acc, dir)
	return result, runErr
}

// ProcessFiles organizes an explicit list of files, used by the watch
// daemon for files that just became stable. Paths that vanished are
// counted as errors; excluded names are dropped.
func (e *Engine) ProcessFiles(ctx context.Context, paths []string) (*types.RunResult, error) {
	acc := stats.NewAccumulator(e.clock())

	tasks := make([]types.FileTask, 0, len(paths))
	for _, path := range paths {
		if e.excludeFiles.Match(filepath.Base(path)) {
			continue
		}
		info, err := e.fs.Stat(path)
		if err != nil {
			log.L().Error().Str("path", path).Err(err).Msg("cannot stat file")
			acc.FileFailed()
			continue
		}
		if info.IsDir() {
			continue
		}
		tasks = append(tasks, types.FileTask{Path: path, Size: info.Size(), ModTime: info.ModTime()})
	}

	runErr := e.runBatches(ctx, tasks, acc)
	result := e.finish(acc, "")
	return result, runErr
}

// discover walks the tree, pruning excluded directories before
// descent and dropping excluded file names before task creation.
func (e *Engine) discover(root string) ([]types.FileTask, error) {
	var tasks []types.FileTask
	err := afero.Walk(e.fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			log.L().Warn().Str("path", path).Err(err).Msg("skipping unreadable entry")
			return nil
		}
		if info.IsDir() {
			if path != root && e.excludeDirs.Match(info.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if e.excludeFiles.Match(info.Name()) {
			return nil
		}
		tasks = append(tasks, types.FileTask{Path: path, Size: info.Size(), ModTime: info.ModTime()})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}
	return tasks, nil
}

// runBatches partitions tasks into consecutive batches and processes
// each batch under a bounded worker pool. Batch N fully completes
// before batch N+1 starts; cancellation is honored between batches
// only.
func (e *Engine) runBatches(ctx context.Context, tasks []types.FileTask, acc *stats.Accumulator) error {
	if len(tasks) == 0 {
		return nil
	}

	workers := e.cfg.Performance.MaxThreads
	if workers > len(tasks) {
		workers = len(tasks)
	}
	pool, err := ants.NewPool(workers)
	if err != nil {
		return fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	batchSize := e.cfg.Performance.BatchSize
	for start := 0; start < len(tasks); start += batchSize {
		if err := ctx.Err(); err != nil {
			log.L().Warn().Err(err).Msg("run abandoned between batches")
			return err
		}

		end := start + batchSize
		if end > len(tasks) {
			end = len(tasks)
		}
		log.L().Debug().Int("files", end-start).Msg("processing batch")

		var wg sync.WaitGroup
		for _, task := range tasks[start:end] {
			task := task
			wg.Add(1)
			if err := pool.Submit(func() {
				defer wg.Done()
				e.processTask(task, acc)
			}); err != nil {
				wg.Done()
				log.L().Error().Str("path", task.Path).Err(err).Msg("cannot dispatch file")
				acc.FileFailed()
			}
		}
		wg.Wait()
	}
	return nil
}

// processTask runs the per-file pipeline: size filter, classify,
// ensure destination, resolve duplicates, move. Every failure is
// recovered here so one file never aborts its batch.
func (e *Engine) processTask(task types.FileTask, acc *stats.Accumulator) {
	if skipped, reason := e.sizeFiltered(task); skipped {
		log.L().Debug().Str("path", task.Path).Str("reason", reason).Msg("skipping file")
		acc.FileSkipped()
		return
	}

	acc.FileProcessed()

	destDir, category, ok := e.classifier.Destination(task.Path, task.Size, task.ModTime)
	if !ok {
		acc.FileSkipped()
		return
	}

	// Two workers may need the same new directory at once; creation
	// is idempotent.
	if err := e.fs.MkdirAll(destDir, 0o755); err != nil {
		log.L().Error().Str("dir", destDir).Err(err).Msg("cannot create destination directory")
		acc.FileFailed()
		return
	}

	target := filepath.Join(destDir, filepath.Base(task.Path))
	if filepath.Clean(target) == filepath.Clean(task.Path) {
		acc.FileSkipped()
		return
	}

	final, dup, err := e.resolver.Resolve(task.Path, target)
	if dup {
		acc.DuplicateFound()
	}
	if err != nil {
		if errors.Is(err, dupe.ErrRenameExhausted) {
			log.L().Warn().Str("target", target).Msg("no free rename slot after 1000 attempts, skipping")
			acc.FileSkipped()
			return
		}
		log.L().Error().Str("path", task.Path).Err(err).Msg("duplicate resolution failed")
		acc.FileFailed()
		return
	}
	if final == "" {
		log.L().Debug().Str("path", task.Path).Msg("skipping duplicate")
		acc.FileSkipped()
		return
	}

	if err := e.fs.Rename(task.Path, final); err != nil {
		log.L().Error().Str("path", task.Path).Str("dest", final).Err(err).Msg("move failed")
		acc.FileFailed()
		return
	}

	log.L().Info().
		Str("path", task.Path).
		Str("dest", final).
		Str("size", humanize.Bytes(uint64(task.Size))).
		Msg("moved file")
	acc.FileMoved()

	if e.onFileMoved != nil {
		e.onFileMoved(task.Path, final, category)
	}
}

// sizeFiltered applies the min/max thresholds; a zero threshold
// disables its bound.
func (e *Engine) sizeFiltered(task types.FileTask) (bool, string) {
	if min := e.cfg.MinFileSizeKB; min > 0 && task.Size < min*1024 {
		return true, "below min_file_size_kb"
	}
	if max := e.cfg.MaxFileSizeMB; max > 0 && task.Size > max*1024*1024 {
		return true, "above max_file_size_mb"
	}
	return false, ""
}

func (e *Engine) finish(acc *stats.Accumulator, source string) *types.RunResult {
	result := acc.Snapshot(e.clock())
	result.Source = source
	result.Mode = e.cfg.OrganizeBy
	log.L().Info().
		Int64("processed", result.Processed).
		Int64("moved", result.Moved).
		Int64("skipped", result.Skipped).
		Int64("errors", result.Errors).
		Int64("duplicates", result.DuplicatesFound).
		Dur("elapsed", result.Elapsed).
		Msg("organization run finished")
	return &result
}
