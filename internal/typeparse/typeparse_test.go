package typeparse

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBoolDefaults(t *testing.T) {
	for _, in := range []any{"true", "T", " Yes ", "y", "1", 1, true} {
		got, err := ParseBool(in, BoolOptions{})
		require.NoError(t, err, "ParseBool(%v)", in)
		assert.True(t, got, "ParseBool(%v)", in)
	}
	for _, in := range []any{"false", "F", "NO", "n", "0", 0, false} {
		got, err := ParseBool(in, BoolOptions{})
		require.NoError(t, err, "ParseBool(%v)", in)
		assert.False(t, got, "ParseBool(%v)", in)
	}
}

func TestParseBoolUnknown(t *testing.T) {
	_, err := ParseBool("maybe", BoolOptions{})
	assert.True(t, errors.Is(err, ErrNotBoolean))

	_, err = ParseBool(3.5, BoolOptions{})
	assert.True(t, errors.Is(err, ErrNotBoolean))

	got, err := ParseBool("maybe", BoolOptions{FalseOnNotFound: true})
	require.NoError(t, err)
	assert.False(t, got)
}

func TestParseBoolCustomSets(t *testing.T) {
	opts := BoolOptions{
		TruthyAdditional: []string{"On", "enabled"},
		FalseyAdditional: []string{"off"},
		TruthyExclude:    []string{"T"},
	}

	got, err := ParseBool("ON", opts)
	require.NoError(t, err)
	assert.True(t, got)

	got, err = ParseBool("Off", opts)
	require.NoError(t, err)
	assert.False(t, got)

	_, err = ParseBool("t", opts)
	assert.ErrorIs(t, err, ErrNotBoolean)
}

func TestString(t *testing.T) {
	s := String("Toolbox")
	assert.True(t, s.Equal("TOOLBOX"))
	assert.False(t, s.Equal("toolbelt"))
	assert.True(t, s.Contains("LBO"))
	assert.True(t, s.HasPrefix("tOOL"))
	assert.False(t, s.HasPrefix("toolboxes"))
	assert.Equal(t, "Toolbox", s.String())
}
