// Package lines splits text into delimited lines for the lines and
// lines_read relations.
//
// A delimiter ends the line before it and is not part of any line. Empty
// lines between delimiters are kept; a trailing delimiter does not start a
// final empty line, so "a\nb\n" and "a\nb" both hold two lines and an empty
// document holds none.
package lines

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"
)

const (
	// Version is the release of the line relations.
	Version = "0.1.0"

	// DefaultDelimiter is used when no delimiter is bound.
	DefaultDelimiter = "\n"

	// MaxLineLength bounds a single line, matching SQLite's default limit
	// on text values.
	MaxLineLength = 1_000_000_000

	initialBuffer = 64 * 1024
)

// ErrDelimiter is returned for delimiters that are not a single character.
var ErrDelimiter = errors.New("delimiter must be exactly one character")

// CheckDelimiter verifies that d is one character.
func CheckDelimiter(d string) error {
	if utf8.RuneCountInString(d) != 1 {
		return fmt.Errorf("%w, got %q", ErrDelimiter, d)
	}
	return nil
}

// NewScanner returns a scanner over the lines of r.
func NewScanner(r io.Reader, delimiter string) *bufio.Scanner {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, initialBuffer), MaxLineLength)
	sc.Split(splitOn([]byte(delimiter)))
	return sc
}

func splitOn(delim []byte) bufio.SplitFunc {
	return func(data []byte, atEOF bool) (int, []byte, error) {
		if atEOF && len(data) == 0 {
			return 0, nil, nil
		}
		if i := bytes.Index(data, delim); i >= 0 {
			return i + len(delim), data[:i], nil
		}
		if atEOF {
			return len(data), data, nil
		}
		return 0, nil, nil
	}
}

// VersionString implements lines_version.
func VersionString() string {
	return "v" + Version
}

// Debug implements lines_debug, in the same three-line layout as url_debug.
func Debug(buildDate, source string) string {
	return fmt.Sprintf("Version: %s\nDate: %s\nSource: %s", VersionString(), buildDate, source)
}
