// Package version parses and manipulates release versions of the form
// MAJOR.MINOR.PATCH[-RELEASE[.NUM]], where RELEASE is one of dev, alpha,
// beta, rc or final.
package version

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"

	"toolbox/internal/pathman"
)

// ErrInvalidVersion is returned for strings Parse cannot read.
var ErrInvalidVersion = errors.New("version: invalid version")

// Release is a release channel. Channels order dev < alpha < beta < rc < final.
type Release int

const (
	Dev Release = iota
	Alpha
	Beta
	RC
	Final
)

var releaseNames = map[Release]struct{ abbr, long string }{
	Dev:   {"dev", "Development Build"},
	Alpha: {"alpha", "Alpha Build"},
	Beta:  {"beta", "Beta Build"},
	RC:    {"rc", "Release Candidate Build"},
	Final: {"final", "Final Release Build"},
}

// ParseRelease maps an abbreviation such as "rc" to its Release.
func ParseRelease(s string) (Release, error) {
	lower := strings.ToLower(s)
	for r, n := range releaseNames {
		if n.abbr == lower {
			return r, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown release type %q (want dev, alpha, beta, rc or final)", ErrInvalidVersion, s)
}

// String returns the abbreviation, e.g. "beta".
func (r Release) String() string { return releaseNames[r].abbr }

// Description returns the long form, e.g. "Beta Build".
func (r Release) Description() string { return releaseNames[r].long }

// Version is a parsed release version.
type Version struct {
	Major      uint64
	Minor      uint64
	Patch      uint64
	Release    Release
	ReleaseNum int
}

// Parse reads strings like "1.6.0", "v1.6.0-alpha.3" or "2.0.0-rc1".
// Build metadata after "+" is ignored. Missing minor or patch parts count as zero.
func Parse(s string) (Version, error) {
	sv, err := semver.NewVersion(strings.TrimSpace(s))
	if err != nil {
		return Version{}, fmt.Errorf("%w: %q: %v", ErrInvalidVersion, s, err)
	}

	v := Version{
		Major:   sv.Major(),
		Minor:   sv.Minor(),
		Patch:   sv.Patch(),
		Release: Final,
	}
	pre := sv.Prerelease()
	if pre == "" {
		return v, nil
	}

	kind, num, _ := strings.Cut(pre, ".")
	if num == "" {
		// "rc1" style: trailing digits are the release number.
		i := strings.IndexFunc(kind, func(r rune) bool { return r >= '0' && r <= '9' })
		if i > 0 {
			kind, num = kind[:i], kind[i:]
		}
	}

	if v.Release, err = ParseRelease(kind); err != nil {
		return Version{}, err
	}
	if num != "" {
		n, err := strconv.Atoi(num)
		if err != nil || n < 0 {
			return Version{}, fmt.Errorf("%w: %q: bad release number %q", ErrInvalidVersion, s, num)
		}
		v.ReleaseNum = n
	}
	return v, nil
}

// MustParse is Parse for known-good literals; it panics on error.
func MustParse(s string) Version {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

// String renders the canonical form, e.g. "1.6.0-alpha.3" or "1.6.0".
func (v Version) String() string {
	s := fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
	if v.Release == Final {
		return s
	}
	s += "-" + v.Release.String()
	if v.ReleaseNum > 0 {
		s += "." + strconv.Itoa(v.ReleaseNum)
	}
	return s
}

// FullString renders a reader-facing form, e.g. "v1.6.0 Alpha Build 3".
// Final releases omit the channel.
func (v Version) FullString() string {
	s := fmt.Sprintf("v%d.%d.%d", v.Major, v.Minor, v.Patch)
	if v.Release != Final {
		s += " " + v.Release.Description()
	}
	if v.ReleaseNum > 0 {
		s += " " + strconv.Itoa(v.ReleaseNum)
	}
	return s
}

// Semver converts v to a semver value for use with constraint checks. The
// pre-release part holds the channel rank and release number ("1.0.0-1.2"
// for alpha.2), so semver ordering agrees with Compare.
func (v Version) Semver() *semver.Version {
	if v.Release == Final {
		return semver.New(v.Major, v.Minor, v.Patch, "", "")
	}
	return semver.New(v.Major, v.Minor, v.Patch, fmt.Sprintf("%d.%d", v.Release, v.ReleaseNum), "")
}

var constraintVersion = regexp.MustCompile(`v?\d+(?:\.\d+){0,2}-[0-9A-Za-z][0-9A-Za-z.]*`)

// Satisfies reports whether v meets a constraint such as ">= 1.2, < 2".
// Pre-release versions in the constraint are ranked by channel the same way
// as v, so "1.0.0-dev" does not satisfy ">= 1.0.0-alpha".
func (v Version) Satisfies(constraint string) (bool, error) {
	var parseErr error
	ranked := constraintVersion.ReplaceAllStringFunc(constraint, func(tok string) string {
		cv, err := Parse(tok)
		if err != nil {
			parseErr = err
			return tok
		}
		return cv.Semver().String()
	})
	if parseErr != nil {
		return false, fmt.Errorf("invalid constraint %q: %w", constraint, parseErr)
	}

	c, err := semver.NewConstraint(ranked)
	if err != nil {
		return false, fmt.Errorf("invalid constraint %q: %w", constraint, err)
	}
	return c.Check(v.Semver()), nil
}

// Compare returns -1, 0 or 1 as v is older than, equal to or newer than o.
func (v Version) Compare(o Version) int {
	for _, pair := range [][2]uint64{
		{v.Major, o.Major},
		{v.Minor, o.Minor},
		{v.Patch, o.Patch},
		{uint64(v.Release), uint64(o.Release)},
		{uint64(v.ReleaseNum), uint64(o.ReleaseNum)},
	} {
		switch {
		case pair[0] < pair[1]:
			return -1
		case pair[0] > pair[1]:
			return 1
		}
	}
	return 0
}

func (v Version) Less(o Version) bool  { return v.Compare(o) < 0 }
func (v Version) Equal(o Version) bool { return v.Compare(o) == 0 }

// Add sums the numeric components of v and o. The channel of v is kept.
func (v Version) Add(o Version) Version {
	v.Major += o.Major
	v.Minor += o.Minor
	v.Patch += o.Patch
	return v
}

// Sub subtracts o component-wise. A component that would go negative is an error.
func (v Version) Sub(o Version) (Version, error) {
	if o.Major > v.Major || o.Minor > v.Minor || o.Patch > v.Patch {
		return Version{}, fmt.Errorf("%w: %s - %s underflows", ErrInvalidVersion, v, o)
	}
	v.Major -= o.Major
	v.Minor -= o.Minor
	v.Patch -= o.Patch
	return v, nil
}

// Part names a component for Bump.
type Part string

const (
	PartMajor   Part = "major"
	PartMinor   Part = "minor"
	PartPatch   Part = "patch"
	PartRelease Part = "release" // advance the channel, e.g. beta -> rc
	PartNum     Part = "num"     // advance the release number within the channel
)

// Bump returns the next version for part. Bumping major, minor or patch
// yields a final release with lower components zeroed.
func (v Version) Bump(part Part) (Version, error) {
	switch part {
	case PartMajor:
		return Version{Major: v.Major + 1, Release: Final}, nil
	case PartMinor:
		return Version{Major: v.Major, Minor: v.Minor + 1, Release: Final}, nil
	case PartPatch:
		if v.Release != Final {
			// A pre-release of x.y.z bumps to x.y.z itself.
			return Version{Major: v.Major, Minor: v.Minor, Patch: v.Patch, Release: Final}, nil
		}
		return Version{Major: v.Major, Minor: v.Minor, Patch: v.Patch + 1, Release: Final}, nil
	case PartRelease:
		if v.Release == Final {
			return Version{}, fmt.Errorf("%w: %s is already final", ErrInvalidVersion, v)
		}
		v.Release++
		v.ReleaseNum = 0
		return v, nil
	case PartNum:
		if v.Release == Final {
			return Version{}, fmt.Errorf("%w: final releases have no release number", ErrInvalidVersion)
		}
		v.ReleaseNum++
		return v, nil
	}
	return Version{}, fmt.Errorf("unknown version part %q", part)
}

// ReadFile reads and parses a plain VERSION file.
func ReadFile(path string) (Version, error) {
	p, err := pathman.Provision(path, pathman.ProvisionOptions{})
	if err != nil {
		return Version{}, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return Version{}, fmt.Errorf("failed to read version file: %w", err)
	}
	return Parse(string(data))
}

// WriteFile writes v to path followed by a newline.
func WriteFile(path string, v Version) error {
	p, err := pathman.Provision(path, pathman.ProvisionOptions{})
	if err != nil {
		return err
	}
	if err := os.WriteFile(p, []byte(v.String()+"\n"), 0644); err != nil {
		return fmt.Errorf("failed to write version file: %w", err)
	}
	return nil
}
