package bytesize

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/dustin/go-humanize"
)

// Size is a quantity of storage expressed in some unit.
type Size struct {
	Value float64
	Unit  Unit
}

// New builds a Size from a value and a unit name.
func New(value float64, unit string) (Size, error) {
	u, err := ParseUnit(unit)
	if err != nil {
		return Size{}, err
	}
	return Size{Value: value, Unit: u}, nil
}

// FromBytes wraps a byte count.
func FromBytes(n float64) Size {
	return Size{Value: n, Unit: ByteUnits[0]}
}

// Bytes returns the size in bytes.
func (s Size) Bytes() float64 {
	return s.Value * s.Unit.inBytes
}

// In returns the size expressed in u.
func (s Size) In(u Unit) float64 {
	return s.Bytes() / u.inBytes
}

// Convert returns the size expressed in the named unit.
func (s Size) Convert(unit string) (float64, error) {
	u, err := ParseUnit(unit)
	if err != nil {
		return 0, err
	}
	return s.In(u), nil
}

func (s Size) Bits() float64       { return s.In(BitUnits[0]) }
func (s Size) Kilobytes() float64  { return s.In(ByteUnits[1]) }
func (s Size) Megabytes() float64  { return s.In(ByteUnits[2]) }
func (s Size) Gigabytes() float64  { return s.In(ByteUnits[3]) }
func (s Size) Terabytes() float64  { return s.In(ByteUnits[4]) }
func (s Size) Petabytes() float64  { return s.In(ByteUnits[5]) }
func (s Size) Exabytes() float64   { return s.In(ByteUnits[6]) }
func (s Size) Zettabytes() float64 { return s.In(ByteUnits[7]) }
func (s Size) Yottabytes() float64 { return s.In(ByteUnits[8]) }

// LowestUnit re-expresses the size in the largest byte unit whose value is
// still at least one.
func (s Size) LowestUnit() Size {
	v, u := LowestUnit(s.Bytes())
	return Size{Value: v, Unit: u}
}

func (s Size) String() string {
	return strconv.FormatFloat(s.Value, 'f', -1, 64) + " " + s.Unit.Abbrev
}

// LowestUnit returns bytes in the largest byte unit in which the value is >= 1.
// Values below one byte stay in bytes.
func LowestUnit(bytes float64) (float64, Unit) {
	abs := bytes
	if abs < 0 {
		abs = -abs
	}
	unit := ByteUnits[0]
	for _, u := range ByteUnits {
		if abs/u.inBytes < 1 {
			break
		}
		unit = u
	}
	return bytes / unit.inBytes, unit
}

// Parse reads a human string such as "1.5 GiB", "512kb" or "2 megabytes"
// and returns the number of bytes. A bare number is taken as bytes.
func Parse(s string) (float64, error) {
	in := strings.TrimSpace(s)
	split := strings.IndexFunc(in, func(r rune) bool {
		return !(unicode.IsDigit(r) || r == '.' || r == ',' || r == '-' || r == '+')
	})

	num, unit := in, "B"
	if split >= 0 {
		num, unit = in[:split], strings.TrimSpace(in[split:])
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(num), ",", ""), 64)
	if err != nil {
		return 0, fmt.Errorf("bytesize: invalid size %q: %w", s, err)
	}
	size, err := New(v, unit)
	if err != nil {
		return 0, err
	}
	return size.Bytes(), nil
}

// Humanize renders a byte count with IEC units, e.g. "1.5 GiB".
func Humanize(bytes uint64) string {
	return humanize.IBytes(bytes)
}
