// Package humanize renders numbers for people: thousands separators, English
// words, and counted nouns such as "1,204 files".
package humanize

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	gohumanize "github.com/dustin/go-humanize"
)

var (
	// ErrDivideByZero is returned by Div with a zero divisor.
	ErrDivideByZero = errors.New("humanize: division by zero")

	// ErrNotANumber is returned by Parse for input that is not numeric.
	ErrNotANumber = errors.New("humanize: not a number")
)

// Numerical is a number with an optional noun it counts.
type Numerical struct {
	Number  float64
	Noun    string
	IsFloat bool
}

// New wraps n. IsFloat is set when n has a fractional part.
func New(n float64, noun string) Numerical {
	return Numerical{Number: n, Noun: noun, IsFloat: n != math.Trunc(n)}
}

// NewInt wraps an integer count.
func NewInt(n int64, noun string) Numerical {
	return Numerical{Number: float64(n), Noun: noun}
}

// Parse reads a decimal number, ignoring thousands separators and
// surrounding space. A decimal point marks the value as a float.
func Parse(s, noun string) (Numerical, error) {
	clean := strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if clean == "" {
		return Numerical{}, fmt.Errorf("%w: %q", ErrNotANumber, s)
	}
	if i, err := strconv.ParseInt(clean, 10, 64); err == nil {
		return NewInt(i, noun), nil
	}
	f, err := strconv.ParseFloat(clean, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return Numerical{}, fmt.Errorf("%w: %q", ErrNotANumber, s)
	}
	n := New(f, noun)
	n.IsFloat = n.IsFloat || strings.Contains(clean, ".")
	return n, nil
}

// Commify renders the number with thousands separators.
func (n Numerical) Commify() string {
	if n.IsFloat {
		return gohumanize.Commaf(n.Number)
	}
	return gohumanize.Comma(int64(n.Number))
}

// CommifyNumber renders n with thousands separators, keeping any fractional digits.
func CommifyNumber(n float64) string {
	return New(n, "").Commify()
}

// Words renders the number in English words.
func (n Numerical) Words() string {
	return ToWords(n.Number)
}

// CountOptions control CountNoun output.
type CountOptions struct {
	OnlyNoun    bool // omit the count, return just the inflected noun
	SkipCommify bool // no thousands separators
	ToWords     bool // spell the count out
	Capitalize  bool // upper-case the first letter
	FullStop    bool // end with a period
	Round       int  // decimal digits to round to; NoRounding leaves the value alone
	AsInt       bool // truncate to an integer first
}

// NoRounding disables CountOptions.Round.
const NoRounding = -1

// DefaultCountOptions returns options that print the commified count.
func DefaultCountOptions() CountOptions {
	return CountOptions{Round: NoRounding}
}

// CountNoun renders "<count> <noun>" with the noun pluralized to agree with
// the count, e.g. "1 file", "2,048 files", "Three mice.".
func (n Numerical) CountNoun(opts CountOptions) string {
	v := n
	if opts.Round >= 0 {
		p := math.Pow(10, float64(opts.Round))
		v.Number = math.Round(v.Number*p) / p
		v.IsFloat = opts.Round > 0 && v.Number != math.Trunc(v.Number)
	}
	if opts.AsInt {
		v.Number = math.Trunc(v.Number)
		v.IsFloat = false
	}

	noun := Plural(v.Noun, v.Number)

	var out string
	switch {
	case opts.OnlyNoun:
		out = noun
	default:
		var count string
		switch {
		case opts.ToWords:
			count = v.Words()
		case opts.SkipCommify:
			count = v.plain()
		default:
			count = v.Commify()
		}
		out = strings.TrimSpace(count + " " + noun)
	}

	if opts.Capitalize {
		out = capitalize(out)
	}
	if opts.FullStop && !strings.HasSuffix(out, ".") {
		out += "."
	}
	return out
}

func (n Numerical) plain() string {
	if n.IsFloat {
		return strconv.FormatFloat(n.Number, 'f', -1, 64)
	}
	return strconv.FormatInt(int64(n.Number), 10)
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// String renders the commified count with its noun, or just the number.
func (n Numerical) String() string {
	if n.Noun == "" {
		return n.Commify()
	}
	return n.CountNoun(DefaultCountOptions())
}

// Add returns n + x.
func (n Numerical) Add(x float64) Numerical {
	return n.with(n.Number + x)
}

// Sub returns n - x.
func (n Numerical) Sub(x float64) Numerical {
	return n.with(n.Number - x)
}

// Mul returns n * x.
func (n Numerical) Mul(x float64) Numerical {
	return n.with(n.Number * x)
}

// Div returns n / x, or ErrDivideByZero.
func (n Numerical) Div(x float64) (Numerical, error) {
	if x == 0 {
		return Numerical{}, ErrDivideByZero
	}
	return n.with(n.Number / x), nil
}

func (n Numerical) with(v float64) Numerical {
	out := New(v, n.Noun)
	out.IsFloat = out.IsFloat || n.IsFloat
	return out
}
