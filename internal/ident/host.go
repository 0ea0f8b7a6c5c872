package ident

import (
	"errors"
	"fmt"
	"net/netip"
	"strings"

	"golang.org/x/net/idna"
)

// specialSchemes maps each special scheme to its default port.
// file has no port.
var specialSchemes = map[string]string{
	"ftp":   "21",
	"file":  "",
	"http":  "80",
	"https": "443",
	"ws":    "80",
	"wss":   "443",
}

func isSpecial(scheme string) bool {
	_, ok := specialSchemes[scheme]
	return ok
}

func defaultPort(scheme string) string {
	return specialSchemes[scheme]
}

// forbiddenHost holds the forbidden host code points; domains of special
// schemes additionally forbid '%' and DEL.
const (
	forbiddenHost   = "\x00\t\n\r #/:<>?@[\\]^|"
	forbiddenDomain = forbiddenHost + "%\x7f"
)

// domainProfile maps and validates domain names the way a URL parser does
// for lookup. STD3 rules are relaxed so names like "my_host" stay valid.
var domainProfile = idna.New(
	idna.MapForLookup(),
	idna.StrictDomainName(false),
	idna.Transitional(false),
)

var (
	errEmptyHost = errors.New("empty host")
	errIPv6      = errors.New("invalid IPv6 address")
)

// parseHost validates a host without port or zone and returns its
// serialized form. IPv6 addresses are returned without brackets and
// reported through ipv6.
func parseHost(scheme, input string) (host string, ipv6 bool, err error) {
	if strings.HasPrefix(input, "[") {
		if !strings.HasSuffix(input, "]") {
			return "", false, errIPv6
		}
		addr, perr := netip.ParseAddr(input[1 : len(input)-1])
		if perr != nil || !addr.Is6() || addr.Zone() != "" {
			return "", false, errIPv6
		}
		return addr.String(), true, nil
	}

	if input == "" {
		return "", false, nil
	}

	if !isSpecial(scheme) {
		if i := indexControlOr(input, forbiddenHost); i >= 0 {
			return "", false, fmt.Errorf("forbidden host character %q", input[i])
		}
		return input, false, nil
	}

	if i := indexControlOr(input, forbiddenDomain); i >= 0 {
		return "", false, fmt.Errorf("forbidden domain character %q", input[i])
	}

	ascii, err := domainProfile.ToASCII(input)
	if err != nil {
		return "", false, fmt.Errorf("invalid domain: %w", err)
	}
	if ascii == "" {
		return "", false, errEmptyHost
	}

	if endsInNumber(ascii) {
		addr, perr := netip.ParseAddr(ascii)
		if perr != nil || !addr.Is4() {
			return "", false, errors.New("invalid IPv4 address")
		}
		return addr.String(), false, nil
	}

	return ascii, false, nil
}

// indexControlOr returns the index of the first C0 control byte or byte in
// set, or -1.
func indexControlOr(s, set string) int {
	for i := 0; i < len(s); i++ {
		if s[i] < 0x20 || strings.IndexByte(set, s[i]) >= 0 {
			return i
		}
	}
	return -1
}

// endsInNumber reports whether the last label of a domain is numeric, in
// which case the whole host must be an IPv4 address.
func endsInNumber(host string) bool {
	host = strings.TrimSuffix(host, ".")
	label := host[strings.LastIndexByte(host, '.')+1:]
	if label == "" {
		return false
	}
	for i := 0; i < len(label); i++ {
		if label[i] < '0' || label[i] > '9' {
			return false
		}
	}
	return true
}

// validZone reports whether z can be carried inside an IPv6 literal.
func validZone(z string) bool {
	return z != "" && indexControlOr(z, "]%/?#@ ") < 0
}
