// Package roman converts between Roman numerals and integers.
package roman

import (
	"fmt"
	"strings"

	"toolbox/internal/humanize"
)

// Bounds of representable values in standard notation.
const (
	MinValue = 1
	MaxValue = 3999
)

var numerals = []struct {
	symbol string
	value  int
}{
	{"M", 1000},
	{"CM", 900},
	{"D", 500},
	{"CD", 400},
	{"C", 100},
	{"XC", 90},
	{"L", 50},
	{"XL", 40},
	{"X", 10},
	{"IX", 9},
	{"V", 5},
	{"IV", 4},
	{"I", 1},
}

var symbolValue = map[string]int{}

func init() {
	for _, n := range numerals {
		symbolValue[n.symbol] = n.value
	}
}

// InvalidNumeralError reports input that is not a well-formed numeral.
type InvalidNumeralError struct {
	Input  string
	Reason string
}

func (e *InvalidNumeralError) Error() string {
	return fmt.Sprintf("roman: invalid numeral %q: %s", e.Input, e.Reason)
}

// Validate reports whether s is a canonical numeral, i.e. one that FromInt
// would produce for its value.
func Validate(s string) error {
	_, err := ToInt(s)
	return err
}

// ToInt parses a numeral, case-insensitively. Subtractive pairs (IV, CM, ...)
// are read before single symbols. Non-canonical forms such as "IIII" or "IC"
// are rejected.
func ToInt(s string) (int, error) {
	in := strings.ToUpper(strings.TrimSpace(s))
	if in == "" {
		return 0, &InvalidNumeralError{Input: s, Reason: "empty"}
	}

	total := 0
	for i := 0; i < len(in); {
		if i+1 < len(in) {
			if v, ok := symbolValue[in[i:i+2]]; ok {
				total += v
				i += 2
				continue
			}
		}
		v, ok := symbolValue[in[i:i+1]]
		if !ok {
			return 0, &InvalidNumeralError{Input: s, Reason: fmt.Sprintf("unexpected character %q", in[i])}
		}
		total += v
		i++
	}

	if total > MaxValue {
		return 0, &InvalidNumeralError{Input: s, Reason: "value out of range"}
	}
	if canonical, _ := FromInt(total); canonical != in {
		return 0, &InvalidNumeralError{Input: s, Reason: "not in canonical form, expected " + canonical}
	}
	return total, nil
}

// FromInt renders n (1 to 3999) as a numeral.
func FromInt(n int) (string, error) {
	if n < MinValue || n > MaxValue {
		return "", fmt.Errorf("roman: %d out of range [%d, %d]", n, MinValue, MaxValue)
	}
	var b strings.Builder
	for _, num := range numerals {
		for n >= num.value {
			b.WriteString(num.symbol)
			n -= num.value
		}
	}
	return b.String(), nil
}

// ToNumerical parses s and wraps the value for humanized output.
func ToNumerical(s, noun string) (humanize.Numerical, error) {
	v, err := ToInt(s)
	if err != nil {
		return humanize.Numerical{}, err
	}
	return humanize.NewInt(int64(v), noun), nil
}
