package filesystem

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"toolbox/internal/conversions/bytesize"
	"toolbox/internal/humanize"
	"toolbox/internal/logging"
	"toolbox/internal/pathman"
)

var (
	// ErrNeedsProcessing is returned by accessors before Process has run, or
	// after the collection has been marked stale.
	ErrNeedsProcessing = errors.New("filesystem: collection needs processing")

	// ErrNotInCollection is returned by Find and Remove for unknown paths.
	ErrNotInCollection = errors.New("filesystem: file not in collection")

	// ErrUnknownExtension is returned by ExtensionSize for extensions with no files.
	ErrUnknownExtension = errors.New("filesystem: no files with extension")
)

// ExtensionStats aggregates the files sharing one extension.
type ExtensionStats struct {
	TotalSize  int64
	TotalFiles int
}

// Collection is a set of files with aggregate statistics.
type Collection struct {
	mu      sync.RWMutex
	paths   []string
	workers int

	// Set when built from a directory; Process re-scans it.
	dir     string
	gather  pathman.GatherOptions
	removed map[string]bool

	files     []File
	byExt     map[string]ExtensionStats
	totalSize int64
	processed bool
}

// CollectionOption configures a Collection.
type CollectionOption func(*Collection)

// WithWorkers bounds how many files are stat'ed concurrently.
func WithWorkers(n int) CollectionOption {
	return func(c *Collection) {
		if n > 0 {
			c.workers = n
		}
	}
}

// NewCollection returns an unprocessed collection over paths.
func NewCollection(paths []string, opts ...CollectionOption) *Collection {
	c := &Collection{
		paths:   append([]string(nil), paths...),
		workers: runtime.NumCPU(),
		removed: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FromDir returns an unprocessed collection over the files in dir. Each
// Process call re-scans the directory.
func FromDir(dir string, gather pathman.GatherOptions, opts ...CollectionOption) (*Collection, error) {
	p, err := pathman.Provision(dir, pathman.ProvisionOptions{})
	if err != nil {
		return nil, err
	}
	if !pathman.IsDir(p) {
		return nil, fmt.Errorf("not a directory: %s", dir)
	}
	c := NewCollection(nil, opts...)
	c.dir = p
	c.gather = gather
	return c, nil
}

// Dir returns the scanned directory, empty for explicit path lists.
func (c *Collection) Dir() string { return c.dir }

// Process stats every file concurrently and recomputes the totals.
func (c *Collection) Process(ctx context.Context) error {
	timer := logging.StartTimer(logging.CategoryFilesystem, "collection process")
	defer timer.Stop()

	paths, err := c.currentPaths()
	if err != nil {
		return err
	}

	files := make([]File, len(paths))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(c.workers)
	for i, p := range paths {
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			f, err := Stat(p)
			if err != nil {
				return err
			}
			files[i] = f
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		logging.FilesystemWarn("collection process failed: %v", err)
		return err
	}

	byExt := make(map[string]ExtensionStats)
	var total int64
	for _, f := range files {
		total += f.Size
		key := NormalizeExtension(f.Extension)
		s := byExt[key]
		s.TotalSize += f.Size
		s.TotalFiles++
		byExt[key] = s
	}

	c.mu.Lock()
	c.paths = paths
	c.files = files
	c.byExt = byExt
	c.totalSize = total
	c.processed = true
	c.mu.Unlock()

	logging.Filesystem("processed %d files, %d bytes", len(files), total)
	return nil
}

func (c *Collection) currentPaths() ([]string, error) {
	c.mu.RLock()
	dir, gather := c.dir, c.gather
	c.mu.RUnlock()

	if dir == "" {
		c.mu.RLock()
		defer c.mu.RUnlock()
		return append([]string(nil), c.paths...), nil
	}

	found, err := pathman.GatherFiles(dir, gather)
	if err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	paths := found[:0]
	for _, p := range found {
		if !c.removed[p] {
			paths = append(paths, p)
		}
	}
	return paths, nil
}

// MarkStale forces the next accessor call to report ErrNeedsProcessing.
func (c *Collection) MarkStale() {
	c.mu.Lock()
	c.processed = false
	c.mu.Unlock()
}

// NeedsProcessing reports whether Process must run before the totals are valid.
func (c *Collection) NeedsProcessing() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return !c.processed
}

// Files returns the processed files in path order.
func (c *Collection) Files() ([]File, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.processed {
		return nil, ErrNeedsProcessing
	}
	return append([]File(nil), c.files...), nil
}

// Count returns the number of processed files.
func (c *Collection) Count() (int, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.processed {
		return 0, ErrNeedsProcessing
	}
	return len(c.files), nil
}

// TotalSize returns the summed size in bytes.
func (c *Collection) TotalSize() (int64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.processed {
		return 0, ErrNeedsProcessing
	}
	return c.totalSize, nil
}

// TotalSizeLowestUnit returns the total size in its largest whole byte unit.
func (c *Collection) TotalSizeLowestUnit() (bytesize.Size, error) {
	total, err := c.TotalSize()
	if err != nil {
		return bytesize.Size{}, err
	}
	return bytesize.FromBytes(float64(total)).LowestUnit(), nil
}

// Extensions returns per-extension totals keyed by normalized extension.
// Files without an extension are keyed by "".
func (c *Collection) Extensions() (map[string]ExtensionStats, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.processed {
		return nil, ErrNeedsProcessing
	}
	out := make(map[string]ExtensionStats, len(c.byExt))
	for k, v := range c.byExt {
		out[k] = v
	}
	return out, nil
}

// SortedExtensions returns the extension keys by descending total size.
func (c *Collection) SortedExtensions() ([]string, error) {
	exts, err := c.Extensions()
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(exts))
	for k := range exts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := exts[keys[i]], exts[keys[j]]
		if a.TotalSize != b.TotalSize {
			return a.TotalSize > b.TotalSize
		}
		return keys[i] < keys[j]
	})
	return keys, nil
}

// ExtensionSize returns the total size of files with ext (".GO", "go" and
// ".go" are equivalent) in its largest whole byte unit.
func (c *Collection) ExtensionSize(ext string) (bytesize.Size, error) {
	exts, err := c.Extensions()
	if err != nil {
		return bytesize.Size{}, err
	}
	key := NormalizeExtension(ext)
	s, ok := exts[key]
	if !ok {
		return bytesize.Size{}, fmt.Errorf("%w %q", ErrUnknownExtension, key)
	}
	return bytesize.FromBytes(float64(s.TotalSize)).LowestUnit(), nil
}

// ExtensionSizeString is ExtensionSize rendered for people, e.g. "1.5 megabytes".
func (c *Collection) ExtensionSizeString(ext string) (string, error) {
	size, err := c.ExtensionSize(ext)
	if err != nil {
		return "", err
	}
	return SizeString(size), nil
}

// SizeString renders a size with its unit name spelled out and pluralized.
func SizeString(s bytesize.Size) string {
	opts := humanize.DefaultCountOptions()
	opts.Round = 2
	return humanize.New(s.Value, s.Unit.Name).CountNoun(opts)
}

// Find returns the processed file at path.
func (c *Collection) Find(path string) (File, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.processed {
		return File{}, ErrNeedsProcessing
	}
	for _, f := range c.files {
		if f.Path == path {
			return f, nil
		}
	}
	return File{}, fmt.Errorf("%w: %s", ErrNotInCollection, path)
}

// Remove drops path from the collection and reprocesses it.
func (c *Collection) Remove(ctx context.Context, path string) error {
	c.mu.Lock()
	idx := -1
	for i, p := range c.paths {
		if p == path {
			idx = i
			break
		}
	}
	if idx < 0 {
		c.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNotInCollection, path)
	}
	c.paths = append(c.paths[:idx:idx], c.paths[idx+1:]...)
	c.removed[path] = true
	c.processed = false
	c.mu.Unlock()

	logging.FilesystemDebug("removed %s from collection", path)
	return c.Process(ctx)
}

// Summary renders e.g. "12 files totaling 3.4 megabytes".
func (c *Collection) Summary() (string, error) {
	n, err := c.Count()
	if err != nil {
		return "", err
	}
	size, err := c.TotalSizeLowestUnit()
	if err != nil {
		return "", err
	}
	return humanize.NewInt(int64(n), "file").String() + " totaling " + SizeString(size), nil
}
