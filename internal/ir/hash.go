package ir

import (
	"crypto/sha256"
	"encoding/hex"
)

// Domain prefixes for content digests. The version suffix allows the
// encoding to change without colliding with old digests.
const (
	DomainResult = "sqliteurl/result/v1"
	DomainTrace  = "sqliteurl/trace/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data). The separator keeps
// the domain/data boundary unambiguous.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Digest returns the hex SHA-256 of the canonical encoding of v under
// domain.
func Digest(domain string, v any) (string, error) {
	data, err := MarshalCanonical(v)
	if err != nil {
		return "", err
	}
	return hashWithDomain(domain, data), nil
}

// ResultDigest fingerprints a query result.
func ResultDigest(rows List) (string, error) {
	return Digest(DomainResult, rows)
}
