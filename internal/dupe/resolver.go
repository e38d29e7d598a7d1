// Package dupe decides the final destination for a file whose target
// path is already occupied.
package dupe

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/spf13/afero"

	"tidyd/pkg/types"
)

// fingerprintCap bounds how much of a file is hashed: the first
// 10 MiB, or the whole file when smaller.
const fingerprintCap = 10 << 20

// maxRenameAttempts bounds the rename probe loop.
const maxRenameAttempts = 1000

// ErrRenameExhausted is returned when no free rename slot exists
// within maxRenameAttempts. Callers treat it as a skip, not a failure.
var ErrRenameExhausted = errors.New("rename attempts exhausted")

// Resolver applies the configured duplicate policy.
type Resolver struct {
	fs      afero.Fs
	policy  types.DuplicatePolicy
	pattern string
}

// New returns a resolver for the given policy and rename pattern.
// The pattern substitutes {name}, {counter} (rendered as _N) and
// {ext}.
func New(fs afero.Fs, policy types.DuplicatePolicy, pattern string) *Resolver {
	return &Resolver{fs: fs, policy: policy, pattern: pattern}
}

// Resolve returns the path src should be moved to. An empty path with
// a nil error means the move is skipped. dup reports whether src and
// the existing occupant have identical content; it is informational
// under rename and overwrite, and coincides with the skip under the
// skip policy.
func (r *Resolver) Resolve(src, target string) (final string, dup bool, err error) {
	exists, err := afero.Exists(r.fs, target)
	if err != nil {
		return "", false, fmt.Errorf("check destination %s: %w", target, err)
	}
	if !exists {
		return target, false, nil
	}

	srcSum, err := r.Fingerprint(src)
	if err != nil {
		return "", false, fmt.Errorf("fingerprint source %s: %w", src, err)
	}
	dstSum, err := r.Fingerprint(target)
	if err != nil {
		return "", false, fmt.Errorf("fingerprint destination %s: %w", target, err)
	}
	dup = srcSum == dstSum

	switch r.policy {
	case types.PolicyOverwrite:
		return target, dup, nil
	case types.PolicySkip:
		return "", dup, nil
	case types.PolicyRename:
		final, err = r.probe(target)
		return final, dup, err
	}
	return "", dup, fmt.Errorf("unknown duplicate policy: %s", r.policy)
}

// probe tries rename slots until a free path is found.
func (r *Resolver) probe(target string) (string, error) {
	dir := filepath.Dir(target)
	ext := filepath.Ext(target)
	name := strings.TrimSuffix(filepath.Base(target), ext)

	for counter := 1; counter <= maxRenameAttempts; counter++ {
		candidate := filepath.Join(dir, r.render(name, counter, ext))
		exists, err := afero.Exists(r.fs, candidate)
		if err != nil {
			return "", fmt.Errorf("check rename slot %s: %w", candidate, err)
		}
		if !exists {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w for %s", ErrRenameExhausted, target)
}

func (r *Resolver) render(name string, counter int, ext string) string {
	return strings.NewReplacer(
		"{name}", name,
		"{counter}", fmt.Sprintf("_%d", counter),
		"{ext}", ext,
	).Replace(r.pattern)
}

// Fingerprint hashes up to the first 10 MiB of the file's content.
func (r *Resolver) Fingerprint(path string) (uint64, error) {
	f, err := r.fs.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	h := xxhash.New()
	if _, err := io.Copy(h, io.LimitReader(f, fingerprintCap)); err != nil {
		return 0, err
	}
	return h.Sum64(), nil
}
