package ident

import "strings"

// encodeSet reports whether a byte must be percent-encoded.
type encodeSet func(c byte) bool

// The sets below follow the WHATWG URL percent-encode sets. '%' is in none
// of them, which keeps encoding idempotent; Parse accepts the stray '%'
// that this leaves in place.

func c0ControlSet(c byte) bool {
	return c < 0x20 || c > 0x7e
}

// opaquePathSet also escapes the delimiters that would end an opaque path.
func opaquePathSet(c byte) bool {
	return c0ControlSet(c) || c == '?' || c == '#'
}

func fragmentSet(c byte) bool {
	return c0ControlSet(c) || c == ' ' || c == '"' || c == '<' || c == '>' || c == '`'
}

func querySet(c byte) bool {
	return c0ControlSet(c) || c == ' ' || c == '"' || c == '#' || c == '<' || c == '>'
}

func specialQuerySet(c byte) bool {
	return querySet(c) || c == '\''
}

func pathSet(c byte) bool {
	return querySet(c) || c == '?' || c == '`' || c == '{' || c == '}'
}

func userinfoSet(c byte) bool {
	if pathSet(c) {
		return true
	}
	switch c {
	case '/', ':', ';', '=', '@', '[', '\\', ']', '^', '|':
		return true
	}
	return false
}

const upperhex = "0123456789ABCDEF"

// percentEncode escapes every byte of s selected by set as %XX.
func percentEncode(s string, set encodeSet) string {
	n := 0
	for i := 0; i < len(s); i++ {
		if set(s[i]) {
			n++
		}
	}
	if n == 0 {
		return s
	}

	var b strings.Builder
	b.Grow(len(s) + 2*n)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if set(c) {
			b.WriteByte('%')
			b.WriteByte(upperhex[c>>4])
			b.WriteByte(upperhex[c&0x0f])
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}
