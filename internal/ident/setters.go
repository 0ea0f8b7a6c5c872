package ident

import (
	"strings"
)

// Every setter validates first and assigns last, so a returned error
// always leaves the Identifier unchanged.

// SetScheme replaces the scheme.
// The value must match ALPHA *( ALPHA / DIGIT / "+" / "-" / "." ) and is
// stored lowercase. A port equal to the new scheme's default is dropped.
func (id *Identifier) SetScheme(value string) error {
	scheme := strings.ToLower(value)
	if !validScheme(scheme) {
		return fieldError("scheme", value, "must start with a letter followed by letters, digits, '+', '-' or '.'")
	}
	if scheme == "file" && (id.username != "" || id.password != "" || id.port != "") {
		return fieldError("scheme", value, "file URLs cannot carry credentials or a port")
	}
	if isSpecial(scheme) && !id.authority {
		return fieldError("scheme", value, "scheme "+scheme+" requires a host")
	}

	host, ipv6 := id.host, id.ipv6
	if id.host != "" && isSpecial(scheme) != isSpecial(id.scheme) {
		var err error
		host, ipv6, err = parseHost(scheme, id.Host())
		if err != nil {
			return fieldError("scheme", value, "host "+id.Host()+" is not valid for scheme "+scheme)
		}
	}

	id.scheme = scheme
	id.host, id.ipv6 = host, ipv6
	if id.port == defaultPort(scheme) {
		id.port = ""
	}
	id.path = normalizePath(scheme, id.authority, id.path)
	return nil
}

func validScheme(s string) bool {
	if s == "" || s[0] < 'a' || s[0] > 'z' {
		return false
	}
	for i := 1; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9', c == '+', c == '-', c == '.':
		default:
			return false
		}
	}
	return true
}

// SetHost replaces the host. Bracketed values are IPv6 literals; zones are
// set separately through SetZone. Ports are not accepted here.
//
// Fails for identifiers with an opaque path (e.g. "mailto:x"), for an empty
// host on special schemes, and for an empty host while credentials or a
// port remain.
func (id *Identifier) SetHost(value string) error {
	if !id.authority && id.path != "" && !strings.HasPrefix(id.path, "/") {
		return fieldError("host", value, "identifier has an opaque path and cannot carry a host")
	}

	host, ipv6, err := parseHost(id.scheme, value)
	if err != nil {
		return fieldError("host", value, err.Error())
	}
	if host == "" {
		if isSpecial(id.scheme) && id.scheme != "file" {
			return fieldError("host", value, "scheme "+id.scheme+" requires a host")
		}
		if id.username != "" || id.password != "" || id.port != "" {
			return fieldError("host", value, "cannot clear host while credentials or a port are set")
		}
	}

	id.host, id.ipv6 = host, ipv6
	id.zone = ""
	id.authority = true
	id.path = normalizePath(id.scheme, true, id.path)
	return nil
}

// SetZone sets the zone of an IPv6 host. An empty value clears it.
func (id *Identifier) SetZone(value string) error {
	if value == "" {
		id.zone = ""
		return nil
	}
	if !id.ipv6 {
		return fieldError("zone", value, "zone requires an IPv6 host")
	}
	if !validZone(value) {
		return fieldError("zone", value, "forbidden character in zone")
	}
	id.zone = value
	return nil
}

// SetPath replaces the path. Characters outside the path set are
// percent-encoded; existing escapes are kept. Authority paths are made
// absolute.
func (id *Identifier) SetPath(value string) error {
	if isSpecial(id.scheme) {
		value = strings.ReplaceAll(value, `\`, "/")
	}
	if !id.authority {
		if strings.HasPrefix(value, "//") {
			return fieldError("path", value, "path without a host cannot start with //")
		}
		if id.path != "" && !strings.HasPrefix(id.path, "/") {
			id.path = percentEncode(value, opaquePathSet)
			return nil
		}
	}
	id.path = normalizePath(id.scheme, id.authority, percentEncode(value, pathSet))
	return nil
}

// AppendPathOption appends ";value" to the path, reusing a trailing ';'.
func (id *Identifier) AppendPathOption(value string) error {
	p := id.path
	if !strings.HasSuffix(p, ";") {
		p += ";"
	}
	return id.SetPath(p + value)
}

// SetQuery sets the query. The value is stored even when empty, which
// serializes as a bare '?'.
func (id *Identifier) SetQuery(value string) error {
	id.query = percentEncode(value, id.querySet())
	id.hasQuery = true
	return nil
}

// ClearQuery removes the query entirely.
func (id *Identifier) ClearQuery() {
	id.query = ""
	id.hasQuery = false
}

// SetFragment sets the fragment. The value is stored even when empty.
func (id *Identifier) SetFragment(value string) error {
	id.fragment = percentEncode(value, fragmentSet)
	id.hasFragment = true
	return nil
}

// ClearFragment removes the fragment entirely.
func (id *Identifier) ClearFragment() {
	id.fragment = ""
	id.hasFragment = false
}

// SetUsername sets the username. Fails when there is no host or the
// scheme is file.
func (id *Identifier) SetUsername(value string) error {
	if err := id.credentialsAllowed("username", value); err != nil {
		return err
	}
	id.username = percentEncode(value, userinfoSet)
	return nil
}

// SetPassword sets the password; an empty value removes it. Fails when
// there is no host or the scheme is file.
func (id *Identifier) SetPassword(value string) error {
	if err := id.credentialsAllowed("password", value); err != nil {
		return err
	}
	id.password = percentEncode(value, userinfoSet)
	return nil
}

func (id *Identifier) credentialsAllowed(field, value string) error {
	if id.host == "" {
		return fieldError(field, value, "credentials require a host")
	}
	if id.scheme == "file" {
		return fieldError(field, value, "file URLs cannot carry credentials")
	}
	return nil
}
