// Package bytesize converts quantities between byte and bit units.
//
// Units are binary: a kilobyte is 1024 bytes and a kilobit is 1024 bits.
package bytesize

import (
	"fmt"
	"math"
	"strings"

	"github.com/agnivade/levenshtein"
)

// Unit is a storage unit measured in bytes.
type Unit struct {
	Name    string  // canonical singular name, e.g. "kilobyte"
	Abbrev  string  // e.g. "KB", "Kb"
	IEC     string  // e.g. "KiB", empty for bits and the base units
	Bit     bool    // bit family
	inBytes float64 // size of one unit in bytes
}

// InBytes returns the size of one unit in bytes.
func (u Unit) InBytes() float64 { return u.inBytes }

func (u Unit) String() string { return u.Name }

var prefixes = []struct{ name, abbrev string }{
	{"", ""},
	{"kilo", "K"},
	{"mega", "M"},
	{"giga", "G"},
	{"tera", "T"},
	{"peta", "P"},
	{"exa", "E"},
	{"zetta", "Z"},
	{"yotta", "Y"},
}

var (
	// ByteUnits lists byte units from smallest to largest.
	ByteUnits []Unit
	// BitUnits lists bit units from smallest to largest.
	BitUnits []Unit

	byName   = map[string]Unit{}
	byAbbrev = map[string]Unit{}
)

func init() {
	for i, p := range prefixes {
		size := math.Pow(1024, float64(i))

		b := Unit{Name: p.name + "byte", Abbrev: p.abbrev + "B", inBytes: size}
		bit := Unit{Name: p.name + "bit", Abbrev: p.abbrev + "b", Bit: true, inBytes: size / 8}
		if p.abbrev != "" {
			b.IEC = p.abbrev + "iB"
		}
		ByteUnits = append(ByteUnits, b)
		BitUnits = append(BitUnits, bit)

		byName[b.Name] = b
		byName[bit.Name] = bit
		byAbbrev[b.Abbrev] = b
		byAbbrev[bit.Abbrev] = bit
		if b.IEC != "" {
			byAbbrev[b.IEC] = b
			byAbbrev[p.abbrev+"ib"] = bit
		}
	}
	// Older single-t spelling.
	byName["zetabyte"] = byName["zettabyte"]
	byName["zetabit"] = byName["zettabit"]
}

// UnknownUnitError reports a unit name that could not be resolved.
type UnknownUnitError struct {
	Name       string
	Suggestion string // closest known unit name, may be empty
}

func (e *UnknownUnitError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("bytesize: unknown unit %q (did you mean %q?)", e.Name, e.Suggestion)
	}
	return fmt.Sprintf("bytesize: unknown unit %q", e.Name)
}

// ParseUnit resolves a unit name. Full names are case-insensitive and may be
// plural ("Gigabytes"). Abbreviations are matched exactly first so "Gb" is a
// gigabit and "GB" a gigabyte; an abbreviation that only matches
// case-insensitively resolves to the byte unit.
func ParseUnit(name string) (Unit, error) {
	s := strings.TrimSpace(name)
	if u, ok := byAbbrev[s]; ok {
		return u, nil
	}

	lower := strings.ToLower(s)
	if u, ok := byName[lower]; ok {
		return u, nil
	}
	if u, ok := byName[strings.TrimSuffix(lower, "s")]; ok {
		return u, nil
	}
	if u, ok := byAbbrev[strings.ToUpper(s)]; ok {
		return u, nil
	}
	for _, u := range ByteUnits {
		if u.IEC != "" && strings.EqualFold(u.IEC, s) {
			return u, nil
		}
	}

	return Unit{}, &UnknownUnitError{Name: name, Suggestion: suggest(lower)}
}

func suggest(name string) string {
	if name == "" {
		return ""
	}
	best, bestDist := "", math.MaxInt
	for _, units := range [][]Unit{ByteUnits, BitUnits} {
		for _, u := range units {
			if d := levenshtein.ComputeDistance(name, u.Name); d < bestDist {
				best, bestDist = u.Name, d
			}
		}
	}
	// Only suggest when the name is plausibly a typo.
	if bestDist > len(best)/2 {
		return ""
	}
	return best
}

// Abbreviation returns the short form of a unit name, "B" when unknown.
func Abbreviation(unit string) string {
	u, err := ParseUnit(unit)
	if err != nil {
		return "B"
	}
	return u.Abbrev
}
