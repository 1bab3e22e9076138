package source

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCompactInt(t *testing.T) {
	cases := []struct {
		input string
		want  int
	}{
		{"42", 42},
		{"1,234", 1234},
		{"1.2K", 1200},
		{"1.2k", 1200},
		{"3M", 3_000_000},
		{"2B", 2_000_000_000},
		{"5万", 50_000},
		{"1.2w", 12_000},
		{"1亿", 100_000_000},
		{"766,027 views", 766027},
		{"12.5万次观看", 125_000},
		{"3456 播放", 3456},
		{" 89 ", 89},
		{"abc 77 def", 77},
	}
	for _, tc := range cases {
		got := ParseCompactInt(tc.input)
		require.NotNil(t, got, "input %q", tc.input)
		assert.Equal(t, tc.want, *got, "input %q", tc.input)
	}
}

func TestParseCompactIntNil(t *testing.T) {
	for _, input := range []string{"", "   ", "45%", "98 %", "views", "n/a"} {
		assert.Nil(t, ParseCompactInt(input), "input %q", input)
	}
}

func TestParsePercentInt(t *testing.T) {
	got := ParsePercentInt("87%")
	require.NotNil(t, got)
	assert.Equal(t, 87, *got)

	got = ParsePercentInt("rating: 93 %")
	require.NotNil(t, got)
	assert.Equal(t, 93, *got)

	got = ParsePercentInt("250%")
	require.NotNil(t, got)
	assert.Equal(t, 100, *got)

	assert.Nil(t, ParsePercentInt("87"))
	assert.Nil(t, ParsePercentInt(""))
}
