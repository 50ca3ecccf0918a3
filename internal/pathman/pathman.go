// Package pathman normalizes, prepares and scans filesystem paths.
package pathman

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"toolbox/internal/logging"
)

// ErrFileNotFound is returned by Prepare for a file path that does not exist.
var ErrFileNotFound = errors.New("pathman: file does not exist")

// ProvisionOptions control Provision.
type ProvisionOptions struct {
	NoExpand  bool // keep a leading "~" as is
	NoResolve bool // skip making the path absolute and resolving symlinks
}

// Provision expands a leading "~" to the home directory and returns the
// absolute, cleaned path. Symlinks are resolved when the path exists.
func Provision(path string, opts ProvisionOptions) (string, error) {
	p := path
	if !opts.NoExpand {
		expanded, err := expandHome(p)
		if err != nil {
			return "", err
		}
		p = expanded
	}
	if opts.NoResolve {
		return filepath.Clean(p), nil
	}

	abs, err := filepath.Abs(p)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	if real, err := filepath.EvalSymlinks(abs); err == nil {
		return real, nil
	}
	return abs, nil
}

func expandHome(p string) (string, error) {
	if p != "~" && !strings.HasPrefix(p, "~/") && !strings.HasPrefix(p, `~\`) {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate home directory: %w", err)
	}
	return filepath.Join(home, p[1:]), nil
}

// ProvisionAll provisions every path with default options.
func ProvisionAll(paths []string) ([]string, error) {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		pp, err := Provision(p, ProvisionOptions{})
		if err != nil {
			return nil, err
		}
		out = append(out, pp)
	}
	return out, nil
}

// PrepareOptions control Prepare.
type PrepareOptions struct {
	ProvisionOptions
	NoCreate bool // never create directories
}

// Prepare provisions path and makes sure it is usable. A path with an
// extension is treated as a file and must already exist; any other path is
// a directory and is created when missing unless NoCreate is set.
func Prepare(path string, opts PrepareOptions) (string, error) {
	p, err := Provision(path, opts.ProvisionOptions)
	if err != nil {
		return "", err
	}

	if filepath.Ext(p) != "" {
		if !Exists(p) {
			return "", fmt.Errorf("%w: %s", ErrFileNotFound, p)
		}
		return p, nil
	}

	if opts.NoCreate || IsDir(p) {
		return p, nil
	}
	if err := CreateDirectory(p); err != nil {
		return "", err
	}
	return p, nil
}

// CreateDirectory creates path and any missing parents.
func CreateDirectory(path string) error {
	if err := os.MkdirAll(path, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", path, err)
	}
	logging.FilesystemDebug("created directory %s", path)
	return nil
}

// Exists reports whether anything exists at path.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// IsDir reports whether path is an existing directory.
func IsDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// IsFile reports whether path is an existing regular file.
func IsFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// DataDir returns the per-user data directory for app, e.g.
// ~/.local/share/<app> on Linux. It is not created.
func DataDir(app string) (string, error) {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, app), nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate user data directory: %w", err)
	}
	if filepath.Base(base) == ".config" {
		// Unix: prefer the XDG data location next to ~/.config.
		return filepath.Join(filepath.Dir(base), ".local", "share", app), nil
	}
	return filepath.Join(base, app), nil
}

// GatherOptions control GatherFiles.
type GatherOptions struct {
	Recursive  bool
	Extensions []string // e.g. ".go" or "go"; empty means all files
	IgnoreDirs []string // directory names to skip while walking
	IgnoreCase bool     // match extensions case-insensitively
}

// GatherFiles lists regular files in dir, sorted lexically.
func GatherFiles(dir string, opts GatherOptions) ([]string, error) {
	timer := logging.StartTimer(logging.CategoryFilesystem, "gather "+dir)
	defer timer.Stop()

	if !IsDir(dir) {
		return nil, fmt.Errorf("not a directory: %s", dir)
	}

	exts := make(map[string]bool, len(opts.Extensions))
	for _, e := range opts.Extensions {
		exts[normalizeExt(e, opts.IgnoreCase)] = true
	}
	ignore := make(map[string]bool, len(opts.IgnoreDirs))
	for _, d := range opts.IgnoreDirs {
		ignore[d] = true
	}

	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path == dir {
				return nil
			}
			if !opts.Recursive || ignore[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if len(exts) > 0 && !exts[normalizeExt(filepath.Ext(path), opts.IgnoreCase)] {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", dir, err)
	}

	logging.FilesystemDebug("gathered %d files from %s", len(files), dir)
	return files, nil
}

func normalizeExt(ext string, ignoreCase bool) string {
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	if ignoreCase {
		return strings.ToLower(ext)
	}
	return ext
}
