package dupe

import (
	"bytes"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tidyd/pkg/testutils"
	"tidyd/pkg/types"
)

const defaultPattern = "{name}{counter}{ext}"

func TestResolveNoCollision(t *testing.T) {
	fs := afero.NewMemMapFs()
	testutils.WriteFile(t, fs, "/src/doc.pdf", "content")

	r := New(fs, types.PolicyRename, defaultPattern)
	final, dup, err := r.Resolve("/src/doc.pdf", "/dst/doc.pdf")
	require.NoError(t, err)
	assert.False(t, dup)
	assert.Equal(t, "/dst/doc.pdf", final)
}

func TestResolveSkipPolicy(t *testing.T) {
	fs := afero.NewMemMapFs()
	testutils.WriteFile(t, fs, "/src/doc.pdf", "same")
	testutils.WriteFile(t, fs, "/dst/doc.pdf", "same")

	r := New(fs, types.PolicySkip, defaultPattern)
	final, dup, err := r.Resolve("/src/doc.pdf", "/dst/doc.pdf")
	require.NoError(t, err)
	assert.True(t, dup)
	assert.Empty(t, final, "skip policy never moves")
}

func TestResolveSkipPolicyDifferentContent(t *testing.T) {
	fs := afero.NewMemMapFs()
	testutils.WriteFile(t, fs, "/src/doc.pdf", "one")
	testutils.WriteFile(t, fs, "/dst/doc.pdf", "two")

	r := New(fs, types.PolicySkip, defaultPattern)
	final, dup, err := r.Resolve("/src/doc.pdf", "/dst/doc.pdf")
	require.NoError(t, err)
	assert.False(t, dup, "a name collision is not a duplicate")
	assert.Empty(t, final)
}

func TestResolveOverwritePolicy(t *testing.T) {
	fs := afero.NewMemMapFs()
	testutils.WriteFile(t, fs, "/src/doc.pdf", "new")
	testutils.WriteFile(t, fs, "/dst/doc.pdf", "old")

	r := New(fs, types.PolicyOverwrite, defaultPattern)
	final, dup, err := r.Resolve("/src/doc.pdf", "/dst/doc.pdf")
	require.NoError(t, err)
	assert.False(t, dup)
	assert.Equal(t, "/dst/doc.pdf", final, "overwrite keeps the original target")
}

func TestResolveRenameProbesSequentially(t *testing.T) {
	fs := afero.NewMemMapFs()
	testutils.WriteFile(t, fs, "/src/doc.pdf", "incoming")
	testutils.WriteFile(t, fs, "/dst/doc.pdf", "existing")

	r := New(fs, types.PolicyRename, defaultPattern)

	final, _, err := r.Resolve("/src/doc.pdf", "/dst/doc.pdf")
	require.NoError(t, err)
	assert.Equal(t, "/dst/doc_1.pdf", final)

	// Occupy the first slot; the next collision takes the second.
	testutils.WriteFile(t, fs, "/dst/doc_1.pdf", "occupied")
	final, _, err = r.Resolve("/src/doc.pdf", "/dst/doc.pdf")
	require.NoError(t, err)
	assert.Equal(t, "/dst/doc_2.pdf", final)
}

func TestResolveRenameCustomPattern(t *testing.T) {
	fs := afero.NewMemMapFs()
	testutils.WriteFile(t, fs, "/src/doc.pdf", "incoming")
	testutils.WriteFile(t, fs, "/dst/doc.pdf", "existing")

	r := New(fs, types.PolicyRename, "{name} (copy{counter}){ext}")
	final, _, err := r.Resolve("/src/doc.pdf", "/dst/doc.pdf")
	require.NoError(t, err)
	assert.Equal(t, "/dst/doc (copy_1).pdf", final)
}

func TestResolveRenameExhaustion(t *testing.T) {
	fs := afero.NewMemMapFs()
	testutils.WriteFile(t, fs, "/src/doc.pdf", "incoming")
	testutils.WriteFile(t, fs, "/dst/doc.pdf", "existing")

	// A pattern that ignores the counter renders the same occupied
	// path on every probe, exhausting all attempts.
	r := New(fs, types.PolicyRename, "{name}{ext}")
	_, _, err := r.Resolve("/src/doc.pdf", "/dst/doc.pdf")
	require.ErrorIs(t, err, ErrRenameExhausted)
}

func TestResolveIdenticalContentStillRenames(t *testing.T) {
	fs := afero.NewMemMapFs()
	testutils.WriteFile(t, fs, "/src/doc.pdf", "same bytes")
	testutils.WriteFile(t, fs, "/dst/doc.pdf", "same bytes")

	r := New(fs, types.PolicyRename, defaultPattern)
	final, dup, err := r.Resolve("/src/doc.pdf", "/dst/doc.pdf")
	require.NoError(t, err)
	assert.True(t, dup, "identical content is reported even though the move proceeds")
	assert.Equal(t, "/dst/doc_1.pdf", final)
}

func TestFingerprintCapsAtTenMiB(t *testing.T) {
	fs := afero.NewMemMapFs()

	a := append(bytes.Repeat([]byte{0xAB}, fingerprintCap), 1, 2, 3)
	b := append(bytes.Repeat([]byte{0xAB}, fingerprintCap), 9, 8, 7)
	testutils.WriteBytes(t, fs, "/a.bin", a)
	testutils.WriteBytes(t, fs, "/b.bin", b)

	r := New(fs, types.PolicyRename, defaultPattern)
	sumA, err := r.Fingerprint("/a.bin")
	require.NoError(t, err)
	sumB, err := r.Fingerprint("/b.bin")
	require.NoError(t, err)

	assert.Equal(t, sumA, sumB, "bytes past the cap must not affect the fingerprint")
}

func TestFingerprintMissingFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	r := New(fs, types.PolicyRename, defaultPattern)
	_, err := r.Fingerprint("/gone.bin")
	require.Error(t, err)
}
