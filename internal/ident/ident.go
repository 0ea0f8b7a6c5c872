package ident

import (
	"net/url"
	"strconv"
	"strings"
)

// DefaultSeed is the identifier used when no base is given to a builder.
// It is meant to be overwritten by later scheme/host mutations.
const DefaultSeed = "scheme://"

// Identifier is a parsed URL.
//
// All fields hold serialized text. The zero value is not valid; use Parse
// or Default.
type Identifier struct {
	scheme string

	// authority is true when the URL carries "//" (a host, possibly empty).
	authority bool
	username  string
	password  string
	host      string
	ipv6      bool
	zone      string
	port      string

	path string

	query    string
	hasQuery bool

	fragment    string
	hasFragment bool
}

// Default returns the builder seed, DefaultSeed parsed.
func Default() *Identifier {
	return &Identifier{scheme: "scheme", authority: true}
}

// Parse parses an absolute URL.
//
// Parsing is lenient in the way browser URL parsers are: surrounding spaces
// and controls are trimmed, tabs and newlines are dropped, a '%' that does
// not start an escape is kept as is, and special schemes may omit the "//"
// before the host ("http:example.com") or spell it with backslashes.
// Returns *MalformedError if text has no scheme or violates the host rules
// of its scheme.
func Parse(text string) (*Identifier, error) {
	input := clean(text)

	colon := strings.IndexByte(input, ':')
	if colon <= 0 || !validScheme(strings.ToLower(input[:colon])) {
		return nil, &MalformedError{Input: text, Reason: "missing scheme"}
	}
	id := &Identifier{scheme: strings.ToLower(input[:colon])}
	special := isSpecial(id.scheme)

	rest, fragment, hasFragment := strings.Cut(input[colon+1:], "#")
	rest, query, hasQuery := strings.Cut(rest, "?")
	if special {
		rest = strings.ReplaceAll(rest, `\`, "/")
	}

	switch {
	case special && id.scheme != "file":
		id.authority = true
		rest = strings.TrimLeft(rest, "/")
	case strings.HasPrefix(rest, "//"):
		id.authority = true
		rest = rest[2:]
	}

	switch {
	case id.authority:
		end := strings.IndexByte(rest, '/')
		if end < 0 {
			end = len(rest)
		}
		if err := id.parseAuthority(rest[:end]); err != nil {
			return nil, &MalformedError{Input: text, Err: err}
		}
		id.path = normalizePath(id.scheme, true, percentEncode(rest[end:], pathSet))
	case rest != "" && rest[0] != '/':
		id.path = percentEncode(rest, opaquePathSet)
	default:
		id.path = percentEncode(rest, pathSet)
	}

	if hasQuery {
		id.hasQuery = true
		id.query = percentEncode(query, id.querySet())
	}
	if hasFragment {
		id.hasFragment = true
		id.fragment = percentEncode(fragment, fragmentSet)
	}
	return id, nil
}

// clean trims leading and trailing C0 controls and spaces and removes tabs
// and newlines.
func clean(s string) string {
	start, end := 0, len(s)
	for start < end && s[start] <= ' ' {
		start++
	}
	for end > start && s[end-1] <= ' ' {
		end--
	}
	s = s[start:end]
	if !strings.ContainsAny(s, "\t\n\r") {
		return s
	}

	b := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if c := s[i]; c != '\t' && c != '\n' && c != '\r' {
			b = append(b, c)
		}
	}
	return string(b)
}

// parseAuthority fills userinfo, host and port from the raw authority text
// between "//" and the path.
func (id *Identifier) parseAuthority(auth string) error {
	hasCredentials := false
	if at := strings.LastIndexByte(auth, '@'); at >= 0 {
		user, pass, hasPass := strings.Cut(auth[:at], ":")
		id.username = percentEncode(user, userinfoSet)
		if hasPass {
			id.password = percentEncode(pass, userinfoSet)
		}
		hasCredentials = id.username != "" || id.password != ""
		auth = auth[at+1:]
	}

	hostText, port, err := splitHostPort(auth)
	if err != nil {
		return err
	}

	if strings.HasPrefix(hostText, "[") {
		addr, zone, hasZone := strings.Cut(hostText[1:len(hostText)-1], "%25")
		if hasZone {
			z, err := url.PathUnescape(zone)
			if err != nil || !validZone(z) {
				return errIPv6
			}
			id.zone = z
		}
		hostText = "[" + addr + "]"
	} else if isSpecial(id.scheme) && strings.IndexByte(hostText, '%') >= 0 {
		decoded, err := url.PathUnescape(hostText)
		if err != nil {
			return fieldError("host", hostText, "invalid percent escape")
		}
		hostText = decoded
	}

	host, ipv6, err := parseHost(id.scheme, hostText)
	if err != nil {
		return err
	}
	if host == "" && isSpecial(id.scheme) && id.scheme != "file" {
		return errEmptyHost
	}
	id.host, id.ipv6 = host, ipv6

	if port != "" {
		n, err := strconv.Atoi(port)
		if err != nil || n < 0 || n > 65535 || strings.ContainsAny(port, "+-") {
			return fieldError("port", port, "must be a number between 0 and 65535")
		}
		id.port = strconv.Itoa(n)
		if id.port == defaultPort(id.scheme) {
			id.port = ""
		}
	}

	if (hasCredentials || id.port != "") && id.host == "" {
		return fieldError("host", "", "credentials or a port require a host")
	}
	if id.scheme == "file" && (hasCredentials || id.port != "") {
		return fieldError("host", id.host, "file URLs cannot carry credentials or a port")
	}
	return nil
}

// splitHostPort separates "host:port". Bracketed hosts must be closed and
// may only be followed by a port.
func splitHostPort(auth string) (host, port string, err error) {
	if strings.HasPrefix(auth, "[") {
		end := strings.IndexByte(auth, ']')
		if end < 0 {
			return "", "", errIPv6
		}
		host, tail := auth[:end+1], auth[end+1:]
		if tail == "" {
			return host, "", nil
		}
		if tail[0] != ':' {
			return "", "", errIPv6
		}
		return host, tail[1:], nil
	}
	if i := strings.LastIndexByte(auth, ':'); i >= 0 {
		return auth[:i], auth[i+1:], nil
	}
	return auth, "", nil
}

// normalizePath makes authority paths absolute; special schemes never have
// an empty path.
func normalizePath(scheme string, authority bool, p string) string {
	if !authority {
		return p
	}
	if p == "" {
		if isSpecial(scheme) {
			return "/"
		}
		return ""
	}
	if !strings.HasPrefix(p, "/") {
		return "/" + p
	}
	return p
}

func (id *Identifier) querySet() encodeSet {
	if isSpecial(id.scheme) {
		return specialQuerySet
	}
	return querySet
}

// String serializes the Identifier.
func (id *Identifier) String() string {
	var b strings.Builder
	b.WriteString(id.scheme)
	b.WriteByte(':')

	if id.authority {
		b.WriteString("//")
		if id.username != "" || id.password != "" {
			b.WriteString(id.username)
			if id.password != "" {
				b.WriteByte(':')
				b.WriteString(id.password)
			}
			b.WriteByte('@')
		}
		b.WriteString(id.hostWithZone())
		if id.port != "" {
			b.WriteByte(':')
			b.WriteString(id.port)
		}
	}

	b.WriteString(id.path)

	if id.hasQuery {
		b.WriteByte('?')
		b.WriteString(id.query)
	}
	if id.hasFragment {
		b.WriteByte('#')
		b.WriteString(id.fragment)
	}
	return b.String()
}

func (id *Identifier) hostWithZone() string {
	if !id.ipv6 {
		return id.host
	}
	if id.zone == "" {
		return "[" + id.host + "]"
	}
	return "[" + id.host + "%25" + url.PathEscape(id.zone) + "]"
}

// Validate checks invariants that span several fields and cannot be
// enforced by a single setter, such as a special scheme set on an
// identifier without a host.
func (id *Identifier) Validate() error {
	if isSpecial(id.scheme) && id.scheme != "file" && id.host == "" {
		return fieldError("host", id.host, "scheme "+id.scheme+" requires a host")
	}
	return nil
}

// Equal reports whether two identifiers have identical components.
func (id *Identifier) Equal(other *Identifier) bool {
	if id == nil || other == nil {
		return id == other
	}
	return *id == *other
}

// Clone returns an independent copy.
func (id *Identifier) Clone() *Identifier {
	c := *id
	return &c
}

// Scheme returns the lowercase scheme without ':'.
func (id *Identifier) Scheme() string { return id.scheme }

// Host returns the host, IPv6 literals in brackets. Empty when absent.
func (id *Identifier) Host() string {
	if id.ipv6 {
		return "[" + id.host + "]"
	}
	return id.host
}

// Zone returns the IPv6 zone identifier, empty when absent.
func (id *Identifier) Zone() string { return id.zone }

// Port returns the explicit non-default port, empty when absent.
func (id *Identifier) Port() string { return id.port }

// Path returns the encoded path.
func (id *Identifier) Path() string { return id.path }

// Query returns the encoded query without '?', empty when absent.
func (id *Identifier) Query() string { return id.query }

// HasQuery reports whether a query (possibly empty) is present.
func (id *Identifier) HasQuery() bool { return id.hasQuery }

// Fragment returns the encoded fragment without '#', empty when absent.
func (id *Identifier) Fragment() string { return id.fragment }

// Username returns the encoded username, empty when absent.
func (id *Identifier) Username() string { return id.username }

// Password returns the encoded password, empty when absent.
func (id *Identifier) Password() string { return id.password }
