package generate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandomDecimalsRange(t *testing.T) {
	vals, err := RandomDecimals(500, -2.5, 7)
	require.NoError(t, err)
	require.Len(t, vals, 500)
	for _, v := range vals {
		assert.GreaterOrEqual(t, v, -2.5)
		assert.Less(t, v, 7.0)
	}
}

func TestRandomDecimalsSeeded(t *testing.T) {
	a, err := NewGenerator(42).RandomDecimals(5, 0, 1)
	require.NoError(t, err)
	b, err := NewGenerator(42).RandomDecimals(5, 0, 1)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestRandomDecimalsInvalid(t *testing.T) {
	_, err := RandomDecimals(-1, 0, 1)
	assert.Error(t, err)
	_, err = RandomDecimals(1, 5, 1)
	assert.Error(t, err)

	vals, err := RandomDecimals(0, 0, 1)
	require.NoError(t, err)
	assert.Empty(t, vals)
}
