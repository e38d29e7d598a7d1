// Package rules maps file extensions to category labels and compiles
// the exclusion name sets used during traversal.
package rules

import (
	"sort"
	"strings"
)

// Fallback is the category for extensions no rule claims.
const Fallback = "others"

// Table is an extension -> category lookup built from the configured
// rules. Categories are probed in sorted name order so the first match
// is deterministic even though the config shape is an unordered JSON
// object.
type Table struct {
	categories []string
	extensions map[string]map[string]struct{}
}

// NewTable builds a lookup table from category -> extension list.
// Extensions are lower-cased and dot-prefixed on the way in, so
// "PDF" and ".pdf" configure the same rule.
func NewTable(rules map[string][]string) *Table {
	t := &Table{
		categories: make([]string, 0, len(rules)),
		extensions: make(map[string]map[string]struct{}, len(rules)),
	}
	for category, exts := range rules {
		set := make(map[string]struct{}, len(exts))
		for _, ext := range exts {
			set[normalizeExt(ext)] = struct{}{}
		}
		t.categories = append(t.categories, category)
		t.extensions[category] = set
	}
	sort.Strings(t.categories)
	return t
}

// Category returns the first category whose extension set contains
// ext, or Fallback when none does.
func (t *Table) Category(ext string) string {
	ext = normalizeExt(ext)
	for _, category := range t.categories {
		if _, ok := t.extensions[category][ext]; ok {
			return category
		}
	}
	return Fallback
}

// Has reports whether the table defines the named category.
func (t *Table) Has(category string) bool {
	_, ok := t.extensions[category]
	return ok
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

// DefaultRules is the out-of-the-box category table.
func DefaultRules() map[string][]string {
	return map[string][]string{
		"documents": {".pdf", ".doc", ".docx", ".txt", ".rtf", ".odt"},
		"images":    {".jpg", ".jpeg", ".png", ".gif", ".bmp", ".tiff", ".webp"},
		"videos":    {".mp4", ".mov", ".avi", ".mkv", ".wmv", ".flv"},
		"audio":     {".mp3", ".wav", ".ogg", ".flac", ".aac", ".m4a"},
		"archives":  {".zip", ".rar", ".7z", ".tar", ".gz", ".bz2"},
		"code":      {".py", ".js", ".html", ".css", ".java", ".cpp", ".c", ".php", ".rb", ".go"},
	}
}
