package types

import "time"

// FileTask is a file discovered by traversal, consumed exactly once by
// a worker. Size and ModTime are captured at discovery so workers do
// not re-stat the file.
type FileTask struct {
	Path    string
	Size    int64
	ModTime time.Time
}
