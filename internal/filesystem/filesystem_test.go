package filesystem

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"toolbox/internal/pathman"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func writeFile(t *testing.T, path string, size int) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(strings.Repeat("x", size)), 0644))
}

func TestStat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.MD")
	writeFile(t, path, 2048)

	f, err := Stat(path)
	require.NoError(t, err)
	assert.Equal(t, "notes.MD", f.Name)
	assert.Equal(t, ".MD", f.Extension)
	assert.Equal(t, int64(2048), f.Size)
	assert.Equal(t, "2 KB", f.SizeInLowestUnit().String())

	_, err = Stat(filepath.Dir(path))
	assert.Error(t, err)
}

func TestNormalizeExtension(t *testing.T) {
	assert.Equal(t, ".go", NormalizeExtension("GO"))
	assert.Equal(t, ".go", NormalizeExtension(".Go"))
	assert.Equal(t, "", NormalizeExtension(""))
}

func newFixture(t *testing.T) (string, []string) {
	dir := t.TempDir()
	paths := []string{
		filepath.Join(dir, "a.go"),
		filepath.Join(dir, "b.GO"),
		filepath.Join(dir, "c.txt"),
		filepath.Join(dir, "Makefile"),
	}
	sizes := []int{1024, 512, 100, 10}
	for i, p := range paths {
		writeFile(t, p, sizes[i])
	}
	return dir, paths
}

func TestCollectionNeedsProcessing(t *testing.T) {
	_, paths := newFixture(t)
	c := NewCollection(paths)

	assert.True(t, c.NeedsProcessing())
	_, err := c.TotalSize()
	assert.True(t, errors.Is(err, ErrNeedsProcessing))
	_, err = c.Files()
	assert.ErrorIs(t, err, ErrNeedsProcessing)
	_, err = c.Find(paths[0])
	assert.ErrorIs(t, err, ErrNeedsProcessing)
	_, err = c.ExtensionSize("go")
	assert.ErrorIs(t, err, ErrNeedsProcessing)
}

func TestCollectionProcess(t *testing.T) {
	_, paths := newFixture(t)
	c := NewCollection(paths, WithWorkers(2))
	require.NoError(t, c.Process(context.Background()))

	n, err := c.Count()
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	total, err := c.TotalSize()
	require.NoError(t, err)
	assert.Equal(t, int64(1646), total)

	exts, err := c.Extensions()
	require.NoError(t, err)
	assert.Equal(t, ExtensionStats{TotalSize: 1536, TotalFiles: 2}, exts[".go"])
	assert.Equal(t, ExtensionStats{TotalSize: 100, TotalFiles: 1}, exts[".txt"])
	assert.Equal(t, ExtensionStats{TotalSize: 10, TotalFiles: 1}, exts[""])

	keys, err := c.SortedExtensions()
	require.NoError(t, err)
	assert.Equal(t, []string{".go", ".txt", ""}, keys)

	size, err := c.ExtensionSize("GO")
	require.NoError(t, err)
	assert.Equal(t, 1.5, size.Value)
	assert.Equal(t, "kilobyte", size.Unit.Name)

	s, err := c.ExtensionSizeString(".go")
	require.NoError(t, err)
	assert.Equal(t, "1.5 kilobytes", s)

	_, err = c.ExtensionSize(".rs")
	assert.ErrorIs(t, err, ErrUnknownExtension)

	f, err := c.Find(paths[2])
	require.NoError(t, err)
	assert.Equal(t, int64(100), f.Size)

	summary, err := c.Summary()
	require.NoError(t, err)
	assert.Equal(t, "4 files totaling 1.61 kilobytes", summary)
}

func TestCollectionProcessMissingFile(t *testing.T) {
	dir, paths := newFixture(t)
	c := NewCollection(append(paths, filepath.Join(dir, "ghost.txt")))
	assert.Error(t, c.Process(context.Background()))
	assert.True(t, c.NeedsProcessing())
}

func TestCollectionProcessCancelled(t *testing.T) {
	_, paths := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, NewCollection(paths).Process(ctx), context.Canceled)
}

func TestCollectionRemove(t *testing.T) {
	_, paths := newFixture(t)
	c := NewCollection(paths)
	require.NoError(t, c.Process(context.Background()))

	require.NoError(t, c.Remove(context.Background(), paths[0]))
	n, err := c.Count()
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	exts, err := c.Extensions()
	require.NoError(t, err)
	assert.Equal(t, ExtensionStats{TotalSize: 512, TotalFiles: 1}, exts[".go"])

	_, err = c.Find(paths[0])
	assert.ErrorIs(t, err, ErrNotInCollection)
	assert.ErrorIs(t, c.Remove(context.Background(), paths[0]), ErrNotInCollection)
}

func TestFromDir(t *testing.T) {
	dir, _ := newFixture(t)
	writeFile(t, filepath.Join(dir, "sub", "d.go"), 1)

	c, err := FromDir(dir, pathman.GatherOptions{Recursive: true})
	require.NoError(t, err)
	require.NoError(t, c.Process(context.Background()))

	n, err := c.Count()
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	files, err := c.Files()
	require.NoError(t, err)
	require.NoError(t, c.Remove(context.Background(), files[0].Path))
	n, err = c.Count()
	require.NoError(t, err)
	assert.Equal(t, 4, n, "removed files stay out after a re-scan")

	_, err = FromDir(filepath.Join(dir, "a.go"), pathman.GatherOptions{})
	assert.Error(t, err)
}

func TestWatchMarksStale(t *testing.T) {
	dir, _ := newFixture(t)
	c, err := FromDir(dir, pathman.GatherOptions{})
	require.NoError(t, err)
	require.NoError(t, c.Process(context.Background()))

	var mu sync.Mutex
	var changed []string
	w, err := c.Watch(context.Background(), c.Dir(),
		WithDebounce(20*time.Millisecond),
		OnChange(func(paths []string) {
			mu.Lock()
			changed = append(changed, paths...)
			mu.Unlock()
		}),
	)
	require.NoError(t, err)
	defer w.Stop()

	writeFile(t, filepath.Join(c.Dir(), "new.txt"), 5)

	require.Eventually(t, c.NeedsProcessing, 5*time.Second, 10*time.Millisecond)
	require.Eventually(t, func() bool {
		if err := c.Process(context.Background()); err != nil {
			return false
		}
		n, err := c.Count()
		return err == nil && n == 5
	}, 5*time.Second, 50*time.Millisecond)

	stats := w.Stats()
	assert.GreaterOrEqual(t, stats.FilesCreated, 1)
	assert.GreaterOrEqual(t, stats.Invalidations, 1)

	mu.Lock()
	assert.Contains(t, changed, filepath.Join(c.Dir(), "new.txt"))
	mu.Unlock()
}

func TestWatchStopsOnCancel(t *testing.T) {
	dir := t.TempDir()
	c := NewCollection(nil)
	ctx, cancel := context.WithCancel(context.Background())

	w, err := c.Watch(ctx, dir)
	require.NoError(t, err)
	cancel()

	select {
	case <-w.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop after cancel")
	}
	w.Stop()
}

func TestWatchMissingDir(t *testing.T) {
	_, err := NewCollection(nil).Watch(context.Background(), filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}
