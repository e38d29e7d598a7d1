// Package classify computes the destination directory for a file
// under the active organization mode.
package classify

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rwcarlsen/goexif/exif"
	"github.com/spf13/afero"

	"tidyd/internal/config"
	"tidyd/internal/log"
	"tidyd/internal/rules"
	"tidyd/pkg/types"
)

const mib = 1 << 20

// mimeCategories maps a sniffed MIME type's top-level family to the
// conventional category name, used only when the category exists in
// the active rule table.
var mimeCategories = map[string]string{
	"image": "images",
	"video": "videos",
	"audio": "audio",
	"text":  "documents",
}

// Classifier resolves destination directories. It performs no writes;
// the filesystem is only consulted for optional content sniffing and
// EXIF dates.
type Classifier struct {
	fs      afero.Fs
	cfg     *config.Config
	table   *rules.Table
	exclude rules.NameSet
}

// New builds a classifier from the config's rule table and exclusion
// list.
func New(fs afero.Fs, cfg *config.Config) (*Classifier, error) {
	exclude, err := rules.CompileNames(cfg.ExcludeFiles)
	if err != nil {
		return nil, fmt.Errorf("compile exclude_files: %w", err)
	}
	return &Classifier{
		fs:      fs,
		cfg:     cfg,
		table:   rules.NewTable(cfg.Rules),
		exclude: exclude,
	}, nil
}

// Destination returns the directory the file belongs in and a label
// naming the chosen bucket (category, date path, or size class).
// ok is false when the file should be skipped.
func (c *Classifier) Destination(path string, size int64, modTime time.Time) (dir, label string, ok bool) {
	if c.exclude.Match(filepath.Base(path)) {
		return "", "", false
	}

	switch c.cfg.OrganizeBy {
	case types.ModeExtension:
		label = c.category(path)
		return filepath.Join(c.cfg.TargetDirectory, label), label, true

	case types.ModeDate:
		t := c.fileDate(path, modTime)
		if c.cfg.CreateDateFolders {
			label = t.Format("2006/01/02")
		} else {
			label = t.Format("2006/01")
		}
		return filepath.Join(c.cfg.TargetDirectory, filepath.FromSlash(label)), label, true

	case types.ModeSize:
		label = sizeBucket(size)
		return filepath.Join(c.cfg.TargetDirectory, label), label, true
	}

	return "", "", false
}

func (c *Classifier) category(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	category := c.table.Category(ext)
	if category == rules.Fallback && c.cfg.Advanced.DetectContentType {
		if sniffed, ok := c.sniffCategory(path); ok {
			return sniffed
		}
	}
	return category
}

// sniffCategory detects the MIME family of an unmatched file and maps
// it onto a configured category.
func (c *Classifier) sniffCategory(path string) (string, bool) {
	f, err := c.fs.Open(path)
	if err != nil {
		return "", false
	}
	defer f.Close()

	mt, err := mimetype.DetectReader(f)
	if err != nil {
		return "", false
	}
	family, _, _ := strings.Cut(mt.String(), "/")
	category, ok := mimeCategories[family]
	if !ok || !c.table.Has(category) {
		return "", false
	}
	return category, true
}

// fileDate prefers the EXIF capture time for JPEG/TIFF files when
// configured, falling back to the modification time.
func (c *Classifier) fileDate(path string, modTime time.Time) time.Time {
	if !c.cfg.Advanced.ExifDates {
		return modTime
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg", ".tif", ".tiff":
	default:
		return modTime
	}

	f, err := c.fs.Open(path)
	if err != nil {
		return modTime
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil {
		log.L().Debug().Str("path", path).Err(err).Msg("no exif data, using mtime")
		return modTime
	}
	if t, err := x.DateTime(); err == nil {
		return t
	}
	return modTime
}

// sizeBucket places a byte count into the size-mode buckets. The
// boundaries are exclusive below: a file of exactly 1 MiB is medium.
func sizeBucket(size int64) string {
	switch {
	case size < 1*mib:
		return "small"
	case size < 10*mib:
		return "medium"
	case size < 100*mib:
		return "large"
	default:
		return "very_large"
	}
}
