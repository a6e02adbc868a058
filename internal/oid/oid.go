// Package oid maps raw OID content octets to extension type tags,
// signature algorithm descriptions, and Extended Key Usage names. Modeled
// on the OID tables in boulder's ca/ca.go and dolly's
// xpki/authority/issuer.go, both of which use the same "table of known
// OIDs, unknown is an error/skip" shape for signature-algorithm and EKU
// lookups.
package oid

import (
	"bytes"
	"crypto"
	encasn1 "encoding/asn1"
)

// OID is the raw content octets of an OBJECT IDENTIFIER, compared
// bytewise -- exactly the x509chain certificate model's ByteSlice
// treatment of OIDs, and the original's OID_CMP macro.
type OID []byte

func (o OID) Equal(other OID) bool { return bytes.Equal(o, other) }

func mustOID(arcs ...int) OID {
	raw, err := encasn1.Marshal(encasn1.ObjectIdentifier(arcs))
	if err != nil {
		panic(err)
	}
	// Strip the 2-byte OBJECT IDENTIFIER tag+length header; every OID this
	// registry knows about is short enough for a single length octet.
	return OID(raw[2:])
}

// Extension type bits.
const (
	ExtBasicConstraints uint8 = 1 << iota
	ExtKeyUsage
	ExtExtendedKeyUsage
	ExtSubjectAltName
	ExtNSCertType
)

var (
	OIDBasicConstraints   = mustOID(2, 5, 29, 19)
	OIDKeyUsage           = mustOID(2, 5, 29, 15)
	OIDExtendedKeyUsage   = mustOID(2, 5, 29, 37)
	OIDSubjectAltName     = mustOID(2, 5, 29, 17)
	OIDNSCertType         = mustOID(2, 16, 840, 1, 113730, 1, 1)
	OIDAnyExtendedKeyUsage = mustOID(2, 5, 29, 37, 0)
	OIDCommonName         = mustOID(2, 5, 4, 3)
)

// ExtensionType resolves a certificate extension OID to the bitmask bit
// the parser should set, reporting ok=false for anything unrecognized
// (the caller decides whether that's fatal based on the extension's
// criticality).
func ExtensionType(id OID) (bit uint8, ok bool) {
	switch {
	case id.Equal(OIDBasicConstraints):
		return ExtBasicConstraints, true
	case id.Equal(OIDKeyUsage):
		return ExtKeyUsage, true
	case id.Equal(OIDExtendedKeyUsage):
		return ExtExtendedKeyUsage, true
	case id.Equal(OIDSubjectAltName):
		return ExtSubjectAltName, true
	case id.Equal(OIDNSCertType):
		return ExtNSCertType, true
	default:
		return 0, false
	}
}

// SignatureAlgorithm is the (digest, public-key) pair a signatureAlgorithm
// OID resolves to -- mirrors the original's sig_md/sig_pk split.
type SignatureAlgorithm struct {
	Digest crypto.Hash
	PubKey PubKeyAlgorithm
	Name   string
}

// PubKeyAlgorithm names the public-key family a signature was produced
// with, independent of the digest algorithm.
type PubKeyAlgorithm int

const (
	PubKeyUnknown PubKeyAlgorithm = iota
	PubKeyRSA
	PubKeyECDSA
	PubKeyEd25519
)

var sigAlgByOID = map[string]SignatureAlgorithm{}

func registerSigAlg(id OID, alg SignatureAlgorithm) {
	sigAlgByOID[string(id)] = alg
}

func init() {
	registerSigAlg(mustOID(1, 2, 840, 113549, 1, 1, 5), SignatureAlgorithm{crypto.SHA1, PubKeyRSA, "SHA1-RSA"})
	registerSigAlg(mustOID(1, 2, 840, 113549, 1, 1, 11), SignatureAlgorithm{crypto.SHA256, PubKeyRSA, "SHA256-RSA"})
	registerSigAlg(mustOID(1, 2, 840, 113549, 1, 1, 12), SignatureAlgorithm{crypto.SHA384, PubKeyRSA, "SHA384-RSA"})
	registerSigAlg(mustOID(1, 2, 840, 113549, 1, 1, 13), SignatureAlgorithm{crypto.SHA512, PubKeyRSA, "SHA512-RSA"})
	registerSigAlg(mustOID(1, 2, 840, 10045, 4, 1), SignatureAlgorithm{crypto.SHA1, PubKeyECDSA, "ECDSA-SHA1"})
	registerSigAlg(mustOID(1, 2, 840, 10045, 4, 3, 2), SignatureAlgorithm{crypto.SHA256, PubKeyECDSA, "ECDSA-SHA256"})
	registerSigAlg(mustOID(1, 2, 840, 10045, 4, 3, 3), SignatureAlgorithm{crypto.SHA384, PubKeyECDSA, "ECDSA-SHA384"})
	registerSigAlg(mustOID(1, 2, 840, 10045, 4, 3, 4), SignatureAlgorithm{crypto.SHA512, PubKeyECDSA, "ECDSA-SHA512"})
	registerSigAlg(mustOID(1, 3, 101, 112), SignatureAlgorithm{0, PubKeyEd25519, "Ed25519"})
}

// LookupSignatureAlgorithm resolves a signatureAlgorithm OID, ok=false for
// anything the registry does not know (the parser treats that as
// UNKNOWN_SIG_ALG).
func LookupSignatureAlgorithm(id OID) (SignatureAlgorithm, bool) {
	alg, ok := sigAlgByOID[string(id)]
	return alg, ok
}

var ekuNames = map[string]string{}

func registerEKU(id OID, name string) { ekuNames[string(id)] = name }

func init() {
	registerEKU(mustOID(2, 5, 29, 37, 0), "Any Extended Key Usage")
	registerEKU(mustOID(1, 3, 6, 1, 5, 5, 7, 3, 1), "TLS Web Server Authentication")
	registerEKU(mustOID(1, 3, 6, 1, 5, 5, 7, 3, 2), "TLS Web Client Authentication")
	registerEKU(mustOID(1, 3, 6, 1, 5, 5, 7, 3, 3), "Code Signing")
	registerEKU(mustOID(1, 3, 6, 1, 5, 5, 7, 3, 4), "E-mail Protection")
	registerEKU(mustOID(1, 3, 6, 1, 5, 5, 7, 3, 8), "Time Stamping")
	registerEKU(mustOID(1, 3, 6, 1, 5, 5, 7, 3, 9), "OCSP Signing")
}

// ExtKeyUsageName returns the human-readable name for an ExtendedKeyUsage
// OID, or "???" for an unrecognized one -- matches the original's
// x509_info_ext_key_usage fallback.
func ExtKeyUsageName(id OID) string {
	if name, ok := ekuNames[string(id)]; ok {
		return name
	}
	return "???"
}

// IsAnyExtendedKeyUsage reports whether id is the anyExtendedKeyUsage OID,
// which check_extended_key_usage treats as a wildcard match.
func IsAnyExtendedKeyUsage(id OID) bool {
	return id.Equal(OIDAnyExtendedKeyUsage)
}
