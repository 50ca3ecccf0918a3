package roman

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToInt(t *testing.T) {
	tests := map[string]int{
		"I":         1,
		"iv":        4,
		"IX":        9,
		"XIV":       14,
		"XL":        40,
		"XC":        90,
		"CD":        400,
		"MCMXCIV":   1994,
		"MMXXIV":    2024,
		"MMMCMXCIX": 3999,
	}
	for in, want := range tests {
		got, err := ToInt(in)
		require.NoError(t, err, "ToInt(%q)", in)
		assert.Equal(t, want, got, "ToInt(%q)", in)
	}
}

func TestToIntInvalid(t *testing.T) {
	for _, in := range []string{"", "ABC", "IIII", "IC", "VV", "MMMM", "XM"} {
		_, err := ToInt(in)
		var nerr *InvalidNumeralError
		assert.True(t, errors.As(err, &nerr), "ToInt(%q) should fail with InvalidNumeralError, got %v", in, err)
	}
}

func TestFromIntRoundTrip(t *testing.T) {
	for n := MinValue; n <= MaxValue; n++ {
		s, err := FromInt(n)
		require.NoError(t, err)
		back, err := ToInt(s)
		require.NoError(t, err, "numeral %q", s)
		require.Equal(t, n, back)
	}
}

func TestFromIntRange(t *testing.T) {
	_, err := FromInt(0)
	assert.Error(t, err)
	_, err = FromInt(4000)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate("XLII"))
	assert.Error(t, Validate("XXXX"))
}

func TestToNumerical(t *testing.T) {
	n, err := ToNumerical("MMXXIV", "year")
	require.NoError(t, err)
	assert.Equal(t, "2,024 years", n.String())
}
