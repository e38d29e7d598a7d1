package classify

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tidyd/internal/config"
	"tidyd/pkg/testutils"
	"tidyd/pkg/types"
)

const mebibyte = 1 << 20

func testConfig(mode types.OrganizeMode) *config.Config {
	cfg := config.Default()
	cfg.SourceDirectory = "/src"
	cfg.TargetDirectory = "/dst"
	cfg.OrganizeBy = mode
	return cfg
}

func newClassifier(t *testing.T, cfg *config.Config) (*Classifier, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	c, err := New(fs, cfg)
	require.NoError(t, err)
	return c, fs
}

func TestDestinationByExtension(t *testing.T) {
	c, _ := newClassifier(t, testConfig(types.ModeExtension))

	dir, label, ok := c.Destination("/src/report.PDF", 100, time.Now())
	require.True(t, ok)
	assert.Equal(t, filepath.Join("/dst", "documents"), dir)
	assert.Equal(t, "documents", label)

	dir, label, ok = c.Destination("/src/blob.xyz", 100, time.Now())
	require.True(t, ok)
	assert.Equal(t, filepath.Join("/dst", "others"), dir)
	assert.Equal(t, "others", label)
}

func TestDestinationExcludedName(t *testing.T) {
	c, _ := newClassifier(t, testConfig(types.ModeExtension))

	_, _, ok := c.Destination("/src/sub/.DS_Store", 10, time.Now())
	assert.False(t, ok)
}

func TestDestinationByDate(t *testing.T) {
	mtime := time.Date(2024, time.March, 7, 10, 30, 0, 0, time.UTC)

	cfg := testConfig(types.ModeDate)
	c, _ := newClassifier(t, cfg)
	dir, _, ok := c.Destination("/src/a.bin", 10, mtime)
	require.True(t, ok)
	assert.Equal(t, filepath.Join("/dst", "2024", "03"), dir)

	cfg = testConfig(types.ModeDate)
	cfg.CreateDateFolders = true
	c, _ = newClassifier(t, cfg)
	dir, _, ok = c.Destination("/src/a.bin", 10, mtime)
	require.True(t, ok)
	assert.Equal(t, filepath.Join("/dst", "2024", "03", "07"), dir)
}

func TestDateModeSameMonthDifferentDays(t *testing.T) {
	c, _ := newClassifier(t, testConfig(types.ModeDate))

	first, _, ok := c.Destination("/src/a.bin", 10, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	require.True(t, ok)
	second, _, ok := c.Destination("/src/b.bin", 10, time.Date(2024, 3, 28, 0, 0, 0, 0, time.UTC))
	require.True(t, ok)

	assert.Equal(t, first, second, "same year/month should share a directory when date folders are off")
}

func TestDestinationBySize(t *testing.T) {
	c, _ := newClassifier(t, testConfig(types.ModeSize))

	cases := []struct {
		size  int64
		label string
	}{
		{0, "small"},
		{mebibyte - 1, "small"},
		{1 * mebibyte, "medium"},
		{10*mebibyte - 1, "medium"},
		{10 * mebibyte, "large"},
		{100*mebibyte - 1, "large"},
		{100 * mebibyte, "very_large"},
	}
	for _, tc := range cases {
		dir, label, ok := c.Destination("/src/f.bin", tc.size, time.Now())
		require.True(t, ok)
		assert.Equal(t, tc.label, label, "size %d", tc.size)
		assert.Equal(t, filepath.Join("/dst", tc.label), dir)
	}
}

func TestContentSniffingFallback(t *testing.T) {
	cfg := testConfig(types.ModeExtension)
	cfg.Advanced.DetectContentType = true
	c, fs := newClassifier(t, cfg)

	// PNG magic bytes behind an extension no rule claims.
	png := append([]byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}, make([]byte, 64)...)
	testutils.WriteBytes(t, fs, "/src/photo.download", png)

	dir, label, ok := c.Destination("/src/photo.download", int64(len(png)), time.Now())
	require.True(t, ok)
	assert.Equal(t, "images", label)
	assert.Equal(t, filepath.Join("/dst", "images"), dir)
}

func TestContentSniffingDisabledFallsBack(t *testing.T) {
	c, fs := newClassifier(t, testConfig(types.ModeExtension))

	png := []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}
	testutils.WriteBytes(t, fs, "/src/photo.download", png)

	_, label, ok := c.Destination("/src/photo.download", int64(len(png)), time.Now())
	require.True(t, ok)
	assert.Equal(t, "others", label)
}

func TestExifDatesFallBackToModTime(t *testing.T) {
	cfg := testConfig(types.ModeDate)
	cfg.Advanced.ExifDates = true
	c, fs := newClassifier(t, cfg)

	// No EXIF data present, so the modification time wins.
	testutils.WriteFile(t, fs, "/src/pic.jpg", "not a real jpeg")
	mtime := time.Date(2022, time.December, 31, 0, 0, 0, 0, time.UTC)

	dir, _, ok := c.Destination("/src/pic.jpg", 10, mtime)
	require.True(t, ok)
	assert.Equal(t, filepath.Join("/dst", "2022", "12"), dir)
}
