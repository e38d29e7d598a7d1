package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableCategory(t *testing.T) {
	table := NewTable(map[string][]string{
		"documents": {".pdf", "TXT"},
		"images":    {".jpg", ".png"},
	})

	assert.Equal(t, "documents", table.Category(".pdf"))
	assert.Equal(t, "documents", table.Category(".PDF"), "lookup should be case-insensitive")
	assert.Equal(t, "documents", table.Category(".txt"), "extensions are normalized with a leading dot")
	assert.Equal(t, "images", table.Category(".png"))
	assert.Equal(t, Fallback, table.Category(".xyz"))
	assert.Equal(t, Fallback, table.Category(""))
}

func TestTableFirstMatchIsDeterministic(t *testing.T) {
	// Both categories claim .dat; sorted category order breaks the tie.
	table := NewTable(map[string][]string{
		"zeta":  {".dat"},
		"alpha": {".dat"},
	})

	for i := 0; i < 10; i++ {
		assert.Equal(t, "alpha", table.Category(".dat"))
	}
}

func TestTableHas(t *testing.T) {
	table := NewTable(DefaultRules())
	assert.True(t, table.Has("documents"))
	assert.False(t, table.Has("nope"))
}

func TestNameSetMatch(t *testing.T) {
	set, err := CompileNames([]string{".DS_Store", "*.tmp"})
	require.NoError(t, err)

	assert.True(t, set.Match(".DS_Store"), "literal names match literally")
	assert.True(t, set.Match("download.tmp"))
	assert.False(t, set.Match("report.pdf"))
	assert.False(t, set.Match("DS_Store"))
}

func TestCompileNamesRejectsBadPattern(t *testing.T) {
	_, err := CompileNames([]string{"[unterminated"})
	require.Error(t, err)
}

func TestNameSetEmpty(t *testing.T) {
	set, err := CompileNames(nil)
	require.NoError(t, err)
	assert.False(t, set.Match("anything"))
}
