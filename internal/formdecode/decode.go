// Package formdecode splits application/x-www-form-urlencoded payloads into
// ordered name/value entries.
//
// Decoding is total: it never fails. Malformed percent escapes are kept
// verbatim and byte sequences that are not valid UTF-8 are replaced with
// U+FFFD by the golang.org/x/text UTF-8 decoder. Order and duplicate names
// are preserved exactly as they appear.
package formdecode

import (
	"iter"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
)

// Entry is one decoded name/value pair.
type Entry struct {
	Name  string
	Value string
}

// Decode returns every entry of payload in appearance order.
// An empty payload yields an empty (non-nil) slice.
func Decode(payload string) []Entry {
	entries := make([]Entry, 0, strings.Count(payload, "&")+1)
	for _, e := range All(payload) {
		entries = append(entries, e)
	}
	return entries
}

// All lazily yields (ordinal, entry) pairs. Ordinals start at 0 and have no
// gaps; empty segments ("a=1&&b=2") are skipped without consuming one.
func All(payload string) iter.Seq2[int, Entry] {
	return func(yield func(int, Entry) bool) {
		ordinal := 0
		for segment := range strings.SplitSeq(payload, "&") {
			if segment == "" {
				continue
			}
			name, value, _ := strings.Cut(segment, "=")
			if !yield(ordinal, Entry{Name: decodeComponent(name), Value: decodeComponent(value)}) {
				return
			}
			ordinal++
		}
	}
}

// decodeComponent turns '+' into space, percent-decodes and repairs UTF-8.
func decodeComponent(s string) string {
	if strings.IndexByte(s, '+') >= 0 {
		s = strings.ReplaceAll(s, "+", " ")
	}
	return lossyUTF8(PercentDecode(s))
}

// PercentDecode decodes %XX escapes. A '%' not followed by two hex digits
// is copied through unchanged.
func PercentDecode(s string) []byte {
	if strings.IndexByte(s, '%') < 0 {
		return []byte(s)
	}
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '%' && i+2 < len(s) && isHex(s[i+1]) && isHex(s[i+2]) {
			out = append(out, unhex(s[i+1])<<4|unhex(s[i+2]))
			i += 2
			continue
		}
		out = append(out, c)
	}
	return out
}

// lossyUTF8 replaces invalid UTF-8 with U+FFFD. A decoder is created per
// call because x/text transformers carry state.
func lossyUTF8(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	s, err := unicode.UTF8.NewDecoder().Bytes(b)
	if err != nil {
		return strings.ToValidUTF8(string(b), "\uFFFD")
	}
	return string(s)
}

func isHex(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}

func unhex(c byte) byte {
	switch {
	case '0' <= c && c <= '9':
		return c - '0'
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10
	default:
		return c - 'A' + 10
	}
}
