package humanize

import (
	"math"
	"strconv"
	"strings"

	"github.com/divan/num2words"
)

// Scale names for each group of three digits, as long as the short scale
// has common names for them.
var scales = []string{
	"", "thousand", "million", "billion", "trillion", "quadrillion",
	"quintillion", "sextillion", "septillion", "octillion", "nonillion",
	"decillion", "undecillion", "duodecillion", "tredecillion",
	"quattuordecillion", "quindecillion", "sexdecillion", "septendecillion",
	"octodecillion", "novemdecillion", "vigintillion",
}

// ToWords spells n in British-style English: "one hundred and twenty-three",
// "minus four", "two point five". Fractional digits are read one by one, as
// is any whole part too large for the named scales.
func ToWords(n float64) string {
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return strconv.FormatFloat(n, 'f', -1, 64)
	}

	var parts []string
	if n < 0 {
		parts = append(parts, "minus")
		n = -n
	}

	whole, frac, _ := strings.Cut(strconv.FormatFloat(n, 'f', -1, 64), ".")
	parts = append(parts, wholeWords(whole))

	if frac != "" {
		parts = append(parts, "point", digitWords(frac))
	}
	return strings.Join(parts, " ")
}

// wholeWords spells a string of decimal digits three at a time, leaving the
// words within each group to num2words.
func wholeWords(digits string) string {
	digits = strings.TrimLeft(digits, "0")
	if digits == "" {
		return num2words.Convert(0)
	}

	var groups []int
	for end := len(digits); end > 0; end -= 3 {
		g, _ := strconv.Atoi(digits[max(0, end-3):end])
		groups = append(groups, g)
	}
	if len(groups) > len(scales) {
		return digitWords(digits)
	}

	var words []string
	for i := len(groups) - 1; i >= 0; i-- {
		if groups[i] == 0 {
			continue
		}
		w := num2words.ConvertAnd(groups[i])
		if scales[i] != "" {
			w += " " + scales[i]
		}
		words = append(words, w)
	}

	// A trailing group below one hundred joins with "and" rather than a comma.
	if len(words) > 1 && groups[0] > 0 && groups[0] < 100 {
		last := words[len(words)-1]
		return strings.Join(words[:len(words)-1], ", ") + " and " + last
	}
	return strings.Join(words, ", ")
}

func digitWords(digits string) string {
	words := make([]string, 0, len(digits))
	for _, d := range digits {
		words = append(words, num2words.Convert(int(d-'0')))
	}
	return strings.Join(words, " ")
}
