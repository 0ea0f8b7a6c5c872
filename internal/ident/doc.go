// Package ident provides a parsed, mutable URL model with validating setters.
//
// An Identifier is built by Parse (or Default for the builder seed) and then
// mutated field by field. Every setter validates its input against the URL
// grammar before touching the value, so a rejected mutation leaves the
// Identifier byte-for-byte unchanged.
//
// Components are stored in their serialized (percent-encoded) form, the same
// way WHATWG URL getters report them:
//   - Path(), Query(), Fragment(), Username() and Password() return encoded text
//   - Host() returns the ASCII host, IPv6 literals in brackets, without zone
//
// Encoding is idempotent: '%' is never escaped, so feeding a getter result
// back into its setter does not change the Identifier. Parse keeps a '%'
// that does not start an escape, which makes every serialized Identifier
// parse back to an equal one.
//
// Parse splits the text itself. net/url is used for unescaping hosts and
// zones, net/netip for IP literals and golang.org/x/net/idna for domain
// names of special schemes.
package ident
