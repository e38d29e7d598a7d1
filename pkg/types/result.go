package types

import "time"

// RunResult summarizes the outcome of one organization run.
// It is created at run start, mutated only through the owning run's
// stats accumulator, and immutable once returned to the caller.
type RunResult struct {
	RunID           string        `json:"run_id"`
	Source          string        `json:"source"`
	Mode            OrganizeMode  `json:"mode"`
	StartedAt       time.Time     `json:"started_at"`
	Elapsed         time.Duration `json:"elapsed"`
	Processed       int64         `json:"files_processed"`
	Moved           int64         `json:"files_moved"`
	Skipped         int64         `json:"files_skipped"`
	Errors          int64         `json:"errors"`
	DuplicatesFound int64         `json:"duplicates_found"`
}

// Add folds another result's counters into r, used when summarizing
// several runs. Identity fields (RunID, Source, timestamps) are left
// untouched.
func (r *RunResult) Add(other RunResult) {
	r.Processed += other.Processed
	r.Moved += other.Moved
	r.Skipped += other.Skipped
	r.Errors += other.Errors
	r.DuplicatesFound += other.DuplicatesFound
	r.Elapsed += other.Elapsed
}
