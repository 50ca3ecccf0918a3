package pathman

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
}

func TestProvisionExpandsHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)

	got, err := Provision("~/notes", ProvisionOptions{NoResolve: true})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "notes"), got)

	got, err = Provision("~/notes", ProvisionOptions{NoExpand: true, NoResolve: true})
	require.NoError(t, err)
	assert.Equal(t, "~/notes", got)
}

func TestProvisionAbsolute(t *testing.T) {
	got, err := Provision("some/../rel", ProvisionOptions{})
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(got))
	assert.Equal(t, "rel", filepath.Base(got))
}

func TestProvisionResolvesSymlinks(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "target")
	require.NoError(t, os.Mkdir(target, 0755))
	link := filepath.Join(dir, "link")
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	got, err := Provision(link, ProvisionOptions{})
	require.NoError(t, err)
	want, _ := filepath.EvalSymlinks(target)
	assert.Equal(t, want, got)
}

func TestProvisionAll(t *testing.T) {
	dir := t.TempDir()
	got, err := ProvisionAll([]string{dir, filepath.Join(dir, "missing")})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "missing", filepath.Base(got[1]))
}

func TestPrepareCreatesDirectory(t *testing.T) {
	target := filepath.Join(t.TempDir(), "a", "b")

	got, err := Prepare(target, PrepareOptions{})
	require.NoError(t, err)
	assert.True(t, IsDir(got))
}

func TestPrepareNoCreate(t *testing.T) {
	target := filepath.Join(t.TempDir(), "later")

	_, err := Prepare(target, PrepareOptions{NoCreate: true})
	require.NoError(t, err)
	assert.False(t, Exists(target))
}

func TestPrepareFilePath(t *testing.T) {
	dir := t.TempDir()

	_, err := Prepare(filepath.Join(dir, "missing.txt"), PrepareOptions{})
	assert.True(t, errors.Is(err, ErrFileNotFound))
	assert.False(t, Exists(filepath.Join(dir, "missing.txt")))

	file := filepath.Join(dir, "present.txt")
	touch(t, file)
	got, err := Prepare(file, PrepareOptions{})
	require.NoError(t, err)
	assert.True(t, IsFile(got))
	assert.False(t, IsDir(got))
}

func TestGatherFiles(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "a.go"))
	touch(t, filepath.Join(dir, "b.TXT"))
	touch(t, filepath.Join(dir, "sub", "c.go"))
	touch(t, filepath.Join(dir, "vendor", "d.go"))

	rel := func(paths []string) []string {
		out := make([]string, len(paths))
		for i, p := range paths {
			r, err := filepath.Rel(dir, p)
			require.NoError(t, err)
			out[i] = filepath.ToSlash(r)
		}
		return out
	}

	tests := []struct {
		name string
		opts GatherOptions
		want []string
	}{
		{"top level", GatherOptions{}, []string{"a.go", "b.TXT"}},
		{"recursive", GatherOptions{Recursive: true}, []string{"a.go", "b.TXT", "sub/c.go", "vendor/d.go"}},
		{"ignore dirs", GatherOptions{Recursive: true, IgnoreDirs: []string{"vendor"}}, []string{"a.go", "b.TXT", "sub/c.go"}},
		{"extension filter", GatherOptions{Recursive: true, Extensions: []string{"go"}}, []string{"a.go", "sub/c.go", "vendor/d.go"}},
		{"case sensitive miss", GatherOptions{Extensions: []string{".txt"}}, nil},
		{"ignore case", GatherOptions{Extensions: []string{".txt"}, IgnoreCase: true}, []string{"b.TXT"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			files, err := GatherFiles(dir, tt.opts)
			require.NoError(t, err)
			got := rel(files)
			if len(got) == 0 {
				got = nil
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("GatherFiles mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestGatherFilesNotDir(t *testing.T) {
	_, err := GatherFiles(filepath.Join(t.TempDir(), "nope"), GatherOptions{})
	assert.Error(t, err)
}

func TestDataDir(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_DATA_HOME", xdg)

	got, err := DataDir("toolbox")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(xdg, "toolbox"), got)
}
