// Package filesystem summarizes sets of files: sizes, counts and per-extension
// totals, kept current by an optional directory watcher.
package filesystem

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"toolbox/internal/conversions/bytesize"
)

// File is a snapshot of one regular file.
type File struct {
	Path      string
	Name      string
	Extension string // as on disk, including the dot; empty if none
	Size      int64
	ModTime   time.Time
}

// Stat snapshots the file at path.
func Stat(path string) (File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return File{}, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.IsDir() {
		return File{}, fmt.Errorf("%s is a directory", path)
	}
	return File{
		Path:      path,
		Name:      info.Name(),
		Extension: filepath.Ext(path),
		Size:      info.Size(),
		ModTime:   info.ModTime(),
	}, nil
}

// SizeInLowestUnit expresses the file size in its largest whole byte unit.
func (f File) SizeInLowestUnit() bytesize.Size {
	return bytesize.FromBytes(float64(f.Size)).LowestUnit()
}

// NormalizeExtension lower-cases ext and ensures a leading dot.
func NormalizeExtension(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
