// Package testutils holds filesystem fixtures shared by package
// tests.
package testutils

import (
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

// WriteFile creates a test file with the given content, creating
// parent directories as needed.
func WriteFile(t *testing.T, fs afero.Fs, path, content string) {
	t.Helper()
	WriteBytes(t, fs, path, []byte(content))
}

// WriteBytes creates a test file from raw bytes, creating parent
// directories as needed.
func WriteBytes(t *testing.T, fs afero.Fs, path string, data []byte) {
	t.Helper()
	require.NoError(t, fs.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, afero.WriteFile(fs, path, data, 0o644))
}
