// Package x509chain parses X.509 v1/v2/v3 certificates (DER or PEM) into a
// strongly-typed in-memory model, links them into chains, and verifies a
// leaf certificate against a set of locally trusted roots, optionally
// consulting CRLs and matching a hostname against Subject/SubjectAltName.
//
// Low-level ASN.1/DER decoding, OID resolution, public-key parsing, and
// message digests are handled by the internal/asn1der, internal/oid,
// internal/pkey, and internal/digest packages respectively. This package
// is the certificate model and the chain-construction/verification
// algorithm itself.
package x509chain

import (
	"crypto"
	"time"

	"github.com/cert-manager/x509chain/internal/oid"
)

// KeyUsage bits. The BIT STRING content byte is stored and compared as
// the raw wire byte (bit 0 of the ASN.1 BIT STRING is the most
// significant bit of the first content octet per X.690), so these
// constants run MSB-first -- 0x80, 0x40, ... -- matching the original's
// own MBEDTLS_X509_KU_* constants, not an ascending 1<<iota.
const (
	KeyUsageDigitalSignature uint8 = 0x80
	KeyUsageNonRepudiation   uint8 = 0x40
	KeyUsageKeyEncipherment  uint8 = 0x20
	KeyUsageDataEncipherment uint8 = 0x10
	KeyUsageKeyAgreement     uint8 = 0x08
	KeyUsageKeyCertSign      uint8 = 0x04
	KeyUsageCRLSign          uint8 = 0x02
)

// NSCertType bits, matching the original's Netscape Cert Type extension
// and its MSB-first bit order for the same X.690 reason as KeyUsage above.
const (
	NSCertTypeSSLClient       uint8 = 0x80
	NSCertTypeSSLServer       uint8 = 0x40
	NSCertTypeEmail           uint8 = 0x20
	NSCertTypeObjectSigning   uint8 = 0x10
	NSCertTypeReserved        uint8 = 0x08
	NSCertTypeSSLCA           uint8 = 0x04
	NSCertTypeEmailCA         uint8 = 0x02
	NSCertTypeObjectSigningCA uint8 = 0x01
)

// Extension-presence bits.
const (
	ExtBasicConstraints = oid.ExtBasicConstraints
	ExtKeyUsage         = oid.ExtKeyUsage
	ExtExtendedKeyUsage = oid.ExtExtendedKeyUsage
	ExtSubjectAltName   = oid.ExtSubjectAltName
	ExtNSCertType       = oid.ExtNSCertType
)

// RDNAtom is one atom of a Relative Distinguished Name: an attribute OID
// and its value, as they appear (in order) across every RDN-SET in a Name.
type RDNAtom struct {
	OID   oid.OID
	Value []byte
}

// Certificate is one parsed X.509 certificate. Every []byte field aliases
// the Raw buffer: they are views, not copies, and remain valid exactly as
// long as Raw (and therefore the Certificate) is reachable -- see
// internal/asn1der's doc comment for why that is safe in Go without the
// lifetime bookkeeping the C original needs.
type Certificate struct {
	// Raw is the exact DER bytes this certificate was parsed from. Every
	// other []byte field below is a sub-slice of Raw.
	Raw []byte

	Version int // 1, 2, or 3 (already +1 normalized from the DER encoding)
	Serial  []byte

	// TBS is the signed region: the complete TBSCertificate DER encoding,
	// tag and length included.
	TBS []byte

	IssuerRaw  []byte // complete issuer Name DER encoding, tag+length included
	SubjectRaw []byte // complete subject Name DER encoding, tag+length included

	Issuer  []RDNAtom
	Subject []RDNAtom

	NotBefore time.Time
	NotAfter  time.Time

	PublicKey crypto.PublicKey

	SigOID1 oid.OID // signature algorithm inside TBSCertificate
	SigOID2 oid.OID // signature algorithm in the outer Certificate -- must equal SigOID1
	SigAlg  oid.SignatureAlgorithm
	Sig     []byte // signatureValue BIT STRING content

	IssuerUniqueID  []byte
	SubjectUniqueID []byte

	V3Extensions []byte // complete Extensions SEQUENCE DER encoding, tag+length included, version 3 only

	ExtTypes uint8 // bitmask over Ext* constants: which extensions were seen

	CAIsTrue   bool
	MaxPathLen int // stored as PKIX pathLenConstraint + 1; 0 means unbounded

	KeyUsage        uint8
	NSCertType      uint8
	SubjectAltNames [][]byte // raw dNSName entries only; all other GeneralName kinds dropped
	ExtKeyUsage     []oid.OID

	Next *Certificate // chain link
}

// Chain is a singly-linked, caller-owned list of certificates, built by
// Parse/ParseDER and walked by Verify. The head is lent by the caller;
// every node the builder appends is owned by the chain. There is no Free
// or teardown function: nodes are reclaimed by the garbage collector, and
// their Raw buffers are not scrubbed before that.
type Chain = Certificate

// RevokedEntry is one entry of a CRL's revokedCertificates list.
type RevokedEntry struct {
	Serial         []byte
	RevocationDate time.Time
}

// CRL is one parsed Certificate Revocation List.
type CRL struct {
	Raw        []byte
	Version    int
	IssuerRaw  []byte
	TBS        []byte
	ThisUpdate time.Time
	NextUpdate time.Time
	SigOID     oid.OID
	SigAlg     oid.SignatureAlgorithm
	Sig        []byte
	Revoked    []RevokedEntry
	Next       *CRL
}

// Flag is the bitmask Verify accumulates defects into.
type Flag uint32

const (
	BadCertExpired Flag = 1 << iota
	BadCertRevoked
	BadCertCNMismatch
	BadCertNotTrusted
	BadCertFuture
	BadCRLNotTrusted
	BadCRLExpired
	BadCRLFuture
	BadCertKeyUsage
)

func (f Flag) String() string {
	names := []struct {
		bit  Flag
		name string
	}{
		{BadCertExpired, "expired"},
		{BadCertRevoked, "revoked"},
		{BadCertCNMismatch, "cn-mismatch"},
		{BadCertNotTrusted, "not-trusted"},
		{BadCertFuture, "future"},
		{BadCRLNotTrusted, "crl-not-trusted"},
		{BadCRLExpired, "crl-expired"},
		{BadCRLFuture, "crl-future"},
		{BadCertKeyUsage, "key-usage"},
	}
	if f == 0 {
		return "ok"
	}
	out := ""
	for _, n := range names {
		if f&n.bit != 0 {
			if out != "" {
				out += "|"
			}
			out += n.name
		}
	}
	return out
}
