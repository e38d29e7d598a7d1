package watch

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddDirectoryValidation(t *testing.T) {
	w, err := NewWatcher()
	require.NoError(t, err)
	defer w.Close()

	dir := t.TempDir()
	assert.NoError(t, w.AddDirectory(dir))

	assert.Error(t, w.AddDirectory(filepath.Join(dir, "missing")))

	file := filepath.Join(dir, "plain.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))
	assert.Error(t, w.AddDirectory(file))
}

func TestWatcherDeliversCreatedFiles(t *testing.T) {
	w, err := NewWatcher()
	require.NoError(t, err)
	defer w.Close()

	dir := t.TempDir()
	require.NoError(t, w.AddDirectory(dir))
	w.Start()

	path := filepath.Join(dir, "incoming.pdf")
	require.NoError(t, os.WriteFile(path, []byte("content"), 0o644))

	select {
	case got := <-w.Events():
		assert.Equal(t, path, got)
	case <-time.After(5 * time.Second):
		t.Fatal("no event for created file")
	}
}

func TestCloseStopsEventDelivery(t *testing.T) {
	w, err := NewWatcher()
	require.NoError(t, err)

	dir := t.TempDir()
	require.NoError(t, w.AddDirectory(dir))
	w.Start()

	require.NoError(t, w.Close())

	// Writes after close must not hang the pump or the test.
	_ = os.WriteFile(filepath.Join(dir, "late.txt"), []byte("x"), 0o644)
	time.Sleep(50 * time.Millisecond)
}
