package x509chain

import (
	"bytes"
	"strings"

	"github.com/cert-manager/x509chain/internal/oid"
)

// CheckKeyUsage reports whether crt is permitted to be used for every bit
// set in usage. A certificate with no KeyUsage extension at all imposes no
// constraint and is treated as permitting any usage, matching the
// original's check_key_usage, which only enforces bits the certificate
// actually declared.
func CheckKeyUsage(crt *Certificate, usage uint8) bool {
	if crt.ExtTypes&ExtKeyUsage == 0 {
		return true
	}
	return crt.KeyUsage&usage == usage
}

// CheckExtendedKeyUsage reports whether crt's ExtendedKeyUsage extension
// lists id or the anyExtendedKeyUsage wildcard OID, or crt has no
// ExtendedKeyUsage extension at all (absence means unconstrained),
// matching the original's check_extended_key_usage.
func CheckExtendedKeyUsage(crt *Certificate, id oid.OID) bool {
	if crt.ExtTypes&ExtExtendedKeyUsage == 0 {
		return true
	}
	for _, have := range crt.ExtKeyUsage {
		if oid.IsAnyExtendedKeyUsage(have) || string(have) == string(id) {
			return true
		}
	}
	return false
}

var keyUsageNamesByFlag = map[string]uint8{
	"digitalSignature": KeyUsageDigitalSignature,
	"nonRepudiation":   KeyUsageNonRepudiation,
	"keyEncipherment":  KeyUsageKeyEncipherment,
	"dataEncipherment": KeyUsageDataEncipherment,
	"keyAgreement":     KeyUsageKeyAgreement,
	"keyCertSign":      KeyUsageKeyCertSign,
	"cRLSign":          KeyUsageCRLSign,
}

// ParseKeyUsage parses a comma-separated list of KeyUsage extension names
// (digitalSignature, nonRepudiation, keyEncipherment, dataEncipherment,
// keyAgreement, keyCertSign, cRLSign) into the bitmask CheckKeyUsage and
// VerifyOptions.EnforceKeyUsage expect.
func ParseKeyUsage(names string) (uint8, error) {
	var mask uint8
	for _, n := range strings.Split(names, ",") {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		bit, ok := keyUsageNamesByFlag[n]
		if !ok {
			return 0, newErr(KindInvalidExtensions, "unknown key usage name %q", n)
		}
		mask |= bit
	}
	return mask, nil
}

// Revoked reports whether crt's serial appears on any CRL in the list
// whose issuer matches crt's own issuer. Unlike checkCRL, this does not
// verify the CRL's signature or the issuing CA's cRLSign bit -- it is the
// standalone "is this serial on this list" query the original's revoked()
// exposes on its own, separate from the full verified walk Verify performs
// when CRLs is set.
func Revoked(crt *Certificate, crl *CRL) bool {
	for c := crl; c != nil; c = c.Next {
		if c.Version == 0 {
			continue
		}
		if !bytes.Equal(c.IssuerRaw, crt.IssuerRaw) {
			continue
		}
		for _, r := range c.Revoked {
			if bytes.Equal(r.Serial, crt.Serial) {
				return true
			}
		}
	}
	return false
}
