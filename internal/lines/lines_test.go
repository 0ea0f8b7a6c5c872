package lines

import (
	"bufio"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect(t *testing.T, sc *bufio.Scanner) []string {
	t.Helper()
	got := []string{}
	for sc.Scan() {
		got = append(got, sc.Text())
	}
	require.NoError(t, sc.Err())
	return got
}

func TestScanner(t *testing.T) {
	tests := []struct {
		name      string
		document  string
		delimiter string
		want      []string
	}{
		{"two lines", "a\nb", "\n", []string{"a", "b"}},
		{"trailing delimiter", "a\nb\n", "\n", []string{"a", "b"}},
		{"empty document", "", "\n", []string{}},
		{"only a delimiter", "\n", "\n", []string{""}},
		{"empty lines kept", "a\n\n\nb", "\n", []string{"a", "", "", "b"}},
		{"carriage return kept", "a\r\nb", "\n", []string{"a\r", "b"}},
		{"custom delimiter", "x|y|z", "|", []string{"x", "y", "z"}},
		{"multibyte delimiter", "aébéc", "é", []string{"a", "b", "c"}},
		{"no delimiter", "single", ",", []string{"single"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc := NewScanner(strings.NewReader(tt.document), tt.delimiter)
			assert.Equal(t, tt.want, collect(t, sc))
		})
	}
}

// Lines longer than the initial buffer are still read whole.
func TestScanner_LongLine(t *testing.T) {
	long := strings.Repeat("x", 3*initialBuffer)
	sc := NewScanner(strings.NewReader(long+"\nshort"), "\n")
	got := collect(t, sc)
	require.Len(t, got, 2)
	assert.Len(t, got[0], len(long))
	assert.Equal(t, "short", got[1])
}

func TestCheckDelimiter(t *testing.T) {
	assert.NoError(t, CheckDelimiter("\n"))
	assert.NoError(t, CheckDelimiter(","))
	assert.NoError(t, CheckDelimiter("é"))

	for _, d := range []string{"", "xx", "\r\n"} {
		err := CheckDelimiter(d)
		require.Error(t, err, "%q", d)
		assert.True(t, errors.Is(err, ErrDelimiter))
	}
}

func TestVersionAndDebug(t *testing.T) {
	assert.Equal(t, "v0.1.0", VersionString())

	parts := strings.Split(Debug("2026-10-19", "https://example.com/src"), "\n")
	require.Len(t, parts, 3)
	assert.Equal(t, "Version: v0.1.0", parts[0])
	assert.Equal(t, "Date: 2026-10-19", parts[1])
	assert.Equal(t, "Source: https://example.com/src", parts[2])
}
