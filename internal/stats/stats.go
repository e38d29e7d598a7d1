// Package stats tracks per-run counters shared by concurrent workers.
package stats

import (
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"tidyd/pkg/types"
)

// Accumulator collects run counters. Every method is safe for
// concurrent use; each field is an independent atomic so a snapshot
// never blocks writers longer than a single counter update.
type Accumulator struct {
	runID     string
	startedAt time.Time

	processed  atomic.Int64
	moved      atomic.Int64
	skipped    atomic.Int64
	failures   atomic.Int64
	duplicates atomic.Int64
}

// NewAccumulator starts counting a new run at the given instant.
func NewAccumulator(startedAt time.Time) *Accumulator {
	return &Accumulator{
		runID:     uuid.NewString(),
		startedAt: startedAt,
	}
}

// RunID identifies the run the accumulator belongs to.
func (a *Accumulator) RunID() string { return a.runID }

// FileProcessed records a file entering processing.
func (a *Accumulator) FileProcessed() { a.processed.Add(1) }

// FileMoved records a completed move.
func (a *Accumulator) FileMoved() { a.moved.Add(1) }

// FileSkipped records a skip condition (exclusion, size bounds,
// duplicate policy, exhausted rename slots).
func (a *Accumulator) FileSkipped() { a.skipped.Add(1) }

// FileFailed records a per-file processing failure.
func (a *Accumulator) FileFailed() { a.failures.Add(1) }

// DuplicateFound records an identical-content detection, independent
// of the file's final outcome.
func (a *Accumulator) DuplicateFound() { a.duplicates.Add(1) }

// Snapshot returns the counters as of now. It may be taken at any
// time, including while workers are still running.
func (a *Accumulator) Snapshot(now time.Time) types.RunResult {
	return types.RunResult{
		RunID:           a.runID,
		StartedAt:       a.startedAt,
		Elapsed:         now.Sub(a.startedAt),
		Processed:       a.processed.Load(),
		Moved:           a.moved.Load(),
		Skipped:         a.skipped.Load(),
		Errors:          a.failures.Load(),
		DuplicatesFound: a.duplicates.Load(),
	}
}
