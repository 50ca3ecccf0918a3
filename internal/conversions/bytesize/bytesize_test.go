package bytesize

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseUnit(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"byte", "byte"},
		{"Bytes", "byte"},
		{"B", "byte"},
		{"b", "bit"},
		{"KB", "kilobyte"},
		{"kb", "kilobyte"},
		{"Kb", "kilobit"},
		{"MiB", "megabyte"},
		{"mib", "megabyte"},
		{"Gb", "gigabit"},
		{"GB", "gigabyte"},
		{"terabytes", "terabyte"},
		{"zetabyte", "zettabyte"},
		{"zetabit", "zettabit"},
		{"Yottabyte", "yottabyte"},
		{" petabit ", "petabit"},
	}
	for _, tt := range tests {
		u, err := ParseUnit(tt.in)
		require.NoError(t, err, "ParseUnit(%q)", tt.in)
		assert.Equal(t, tt.want, u.Name, "ParseUnit(%q)", tt.in)
	}
}

func TestParseUnitSuggestion(t *testing.T) {
	_, err := ParseUnit("terrabyte")
	var uerr *UnknownUnitError
	require.True(t, errors.As(err, &uerr))
	assert.Equal(t, "terabyte", uerr.Suggestion)
	assert.Contains(t, err.Error(), `did you mean "terabyte"`)

	_, err = ParseUnit("parsec")
	require.True(t, errors.As(err, &uerr))
	assert.Empty(t, uerr.Suggestion)
}

func TestConvert(t *testing.T) {
	s, err := New(1, "gigabyte")
	require.NoError(t, err)

	assert.Equal(t, float64(1<<30), s.Bytes())
	assert.Equal(t, float64(1024), s.Megabytes())
	assert.Equal(t, float64(1<<20), s.Kilobytes())
	assert.Equal(t, float64(8<<30), s.Bits())

	mbit, err := s.Convert("megabit")
	require.NoError(t, err)
	assert.Equal(t, float64(8192), mbit)

	_, err = s.Convert("furlong")
	assert.Error(t, err)

	_, err = New(1, "furlong")
	assert.Error(t, err)
}

func TestBitsToBytes(t *testing.T) {
	s, err := New(16, "bit")
	require.NoError(t, err)
	assert.Equal(t, float64(2), s.Bytes())

	s, err = New(1, "Kb")
	require.NoError(t, err)
	assert.Equal(t, float64(128), s.Bytes())
}

func TestLargeUnits(t *testing.T) {
	s, err := New(1, "yottabyte")
	require.NoError(t, err)
	assert.InDelta(t, 1024, s.Zettabytes(), 1e-9)
	assert.InDelta(t, 1, s.Yottabytes(), 1e-12)
	assert.InDelta(t, 1024*1024, s.Exabytes(), 1e-6)
}

func TestLowestUnit(t *testing.T) {
	v, u := LowestUnit(512)
	assert.Equal(t, float64(512), v)
	assert.Equal(t, "byte", u.Name)

	v, u = LowestUnit(1536)
	assert.Equal(t, 1.5, v)
	assert.Equal(t, "kilobyte", u.Name)

	v, u = LowestUnit(3 << 30)
	assert.Equal(t, float64(3), v)
	assert.Equal(t, "gigabyte", u.Name)

	v, u = LowestUnit(0.5)
	assert.Equal(t, 0.5, v)
	assert.Equal(t, "byte", u.Name)

	s, err := New(2048, "megabyte")
	require.NoError(t, err)
	low := s.LowestUnit()
	assert.Equal(t, "2 GB", low.String())
}

func TestAbbreviation(t *testing.T) {
	assert.Equal(t, "KB", Abbreviation("kilobyte"))
	assert.Equal(t, "YB", Abbreviation("yottabytes"))
	assert.Equal(t, "Mb", Abbreviation("megabit"))
	assert.Equal(t, "B", Abbreviation("nonsense"))
}

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"1.5 GiB", 1.5 * (1 << 30)},
		{"512kb", 512 * 1024},
		{"2 megabytes", 2 << 20},
		{"1,024", 1024},
		{"8 bits", 1},
	}
	for _, tt := range tests {
		got, err := Parse(tt.in)
		require.NoError(t, err, "Parse(%q)", tt.in)
		assert.Equal(t, tt.want, got, "Parse(%q)", tt.in)
	}

	_, err := Parse("lots")
	assert.Error(t, err)
	_, err = Parse("3 smoots")
	assert.Error(t, err)
}

func TestHumanize(t *testing.T) {
	assert.Equal(t, "500 B", Humanize(500))
	assert.Equal(t, "1.5 GiB", Humanize(1610612736))
}
