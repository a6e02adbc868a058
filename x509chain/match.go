package x509chain

import (
	"strings"

	"github.com/cert-manager/x509chain/internal/oid"
)

// nameCmp does an ASCII case-insensitive byte comparison, the same
// bit-0x20 trick the original's x509_memcasecmp uses rather than a
// locale-aware fold.
func nameCmp(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		ca, cb := a[i], b[i]
		if 'A' <= ca && ca <= 'Z' {
			ca |= 0x20
		}
		if 'A' <= cb && cb <= 'Z' {
			cb |= 0x20
		}
		if ca != cb {
			return false
		}
	}
	return true
}

// wildcardVerify reports whether pattern (a SAN/CN entry from a
// certificate) matches host, honoring only a single leftmost "*." label
// wildcard -- matches the original's x509_check_wildcard, which refuses
// to match a bare "*" or a wildcard anywhere but the leftmost label.
func wildcardVerify(host, pattern []byte) bool {
	if nameCmp(host, pattern) {
		return true
	}
	if len(pattern) < 3 || pattern[0] != '*' || pattern[1] != '.' {
		return false
	}
	dot := indexByte(host, '.')
	if dot < 0 {
		return false
	}
	return nameCmp(host[dot+1:], pattern[2:])
}

func indexByte(b []byte, c byte) int {
	for i, v := range b {
		if v == c {
			return i
		}
	}
	return -1
}

// MatchHostname checks host against crt's SubjectAltName dNSName entries
// if any were present, falling back to the Subject commonName RDN atoms
// only when the certificate carries no SubjectAltName extension at all --
// matches the original's x509_crt_verify hostname logic, which never
// falls back to the CN once a SAN extension is present (the CA/Browser
// Forum's "authorities MUST NOT fall back to CN once SAN is present" rule,
// which PolarSSL already implemented ahead of widespread deprecation).
func MatchHostname(crt *Certificate, host string) bool {
	h := []byte(strings.TrimSuffix(host, "."))

	if crt.ExtTypes&ExtSubjectAltName != 0 {
		for _, san := range crt.SubjectAltNames {
			if wildcardVerify(h, san) {
				return true
			}
		}
		return false
	}

	for _, atom := range crt.Subject {
		if atom.OID.Equal(oid.OIDCommonName) {
			if wildcardVerify(h, atom.Value) {
				return true
			}
		}
	}
	return false
}
