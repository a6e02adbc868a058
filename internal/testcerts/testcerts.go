// Package testcerts builds real, signed DER certificates for tests, using
// crypto/x509.CreateCertificate as the actual encoder so fixtures are
// byte-for-byte what a genuine CA would produce. A Builder's Template can
// also be passed as another Builder's signing parent, producing a proper
// (non-self-signed) multi-level chain instead of only self-signed leaves.

package testcerts

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/asn1"
	"math/big"
	"time"
)

// Builder accumulates the fields of one TBSCertificate before encoding it
// to DER and signing it.
type Builder struct {
	Version      int
	Serial       *big.Int
	Issuer       pkix.Name
	Subject      pkix.Name
	NotBefore    time.Time
	NotAfter     time.Time
	IsCA         bool
	MaxPathLen   int
	HasPathLen   bool
	KeyUsage     x509.KeyUsage
	ExtKeyUsage  []x509.ExtKeyUsage
	DNSNames     []string
	SkipSANExt   bool
	SignatureAlg x509.SignatureAlgorithm
}

// NewBuilder returns a Builder populated with reasonable defaults: version
// 3, a random serial, a one-year validity window starting now.
func NewBuilder(commonName string) *Builder {
	serial, _ := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	return &Builder{
		Version:      3,
		Serial:       serial,
		Subject:      pkix.Name{CommonName: commonName},
		Issuer:       pkix.Name{CommonName: commonName},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(365 * 24 * time.Hour),
		SignatureAlg: x509.ECDSAWithSHA256,
	}
}

// GenerateKey returns a fresh P-256 key, the key type Build signs with by
// default.
func GenerateKey() (*ecdsa.PrivateKey, error) {
	return ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
}

// Template returns the *x509.Certificate crypto/x509.CreateCertificate
// would sign, without signing it -- exposed so a child Builder can pass
// its issuer's template as the parent argument to Build, producing a
// proper (non-self-signed) chain link.
func (b *Builder) Template() *x509.Certificate {
	tmpl := &x509.Certificate{
		SerialNumber:          b.Serial,
		Issuer:                b.Issuer,
		Subject:               b.Subject,
		NotBefore:             b.NotBefore,
		NotAfter:              b.NotAfter,
		IsCA:                  b.IsCA,
		BasicConstraintsValid: b.IsCA || b.HasPathLen,
		KeyUsage:              b.KeyUsage,
		ExtKeyUsage:           b.ExtKeyUsage,
		DNSNames:              b.DNSNames,
		SignatureAlgorithm:    b.SignatureAlg,
	}
	if b.HasPathLen {
		tmpl.MaxPathLen = b.MaxPathLen
		tmpl.MaxPathLenZero = b.MaxPathLen == 0
	}
	if b.SkipSANExt {
		tmpl.ExtraExtensions = nil
	}
	return tmpl
}

// Build encodes b as a DER certificate using crypto/x509.CreateCertificate
// as the actual DER/ASN.1 encoder -- the fixture builder's job is choosing
// which fields to set, not reimplementing DER encoding a second time. If
// parent is nil, b is self-signed.
func (b *Builder) Build(pub crypto.PublicKey, signerKey crypto.Signer, parent *x509.Certificate) ([]byte, error) {
	tmpl := b.Template()
	if parent == nil {
		parent = tmpl
	}
	return x509.CreateCertificate(rand.Reader, tmpl, parent, pub, signerKey)
}

// BuildCRL encodes a CertificateList naming issuer as its issuer, using
// crypto/x509.CreateRevocationList as the actual encoder, the CRL
// counterpart to Build.
func BuildCRL(issuer *x509.Certificate, signerKey crypto.Signer, revoked []pkix.RevokedCertificate, thisUpdate, nextUpdate time.Time) ([]byte, error) {
	tmpl := &x509.RevocationList{
		SignatureAlgorithm:  x509.ECDSAWithSHA256,
		RevokedCertificates: revoked,
		Number:              big.NewInt(1),
		ThisUpdate:          thisUpdate,
		NextUpdate:          nextUpdate,
	}
	return x509.CreateRevocationList(rand.Reader, tmpl, issuer, signerKey)
}

// MalformedSequence wraps content in a SEQUENCE tag/length header, for
// tests that need to hand-assemble a field the Builder has no knob for
// (an extra trailing byte, a BOOLEAN encoded as an INTEGER, and so on).
func MalformedSequence(content []byte) []byte {
	raw, _ := asn1.Marshal(asn1.RawValue{
		Class:      asn1.ClassUniversal,
		Tag:        asn1.TagSequence,
		IsCompound: true,
		Bytes:      content,
	})
	return raw
}

// AppendTrailingByte returns der with one extra byte appended after its
// final content, for tests exercising the "trailing bytes" error path.
func AppendTrailingByte(der []byte) []byte {
	out := make([]byte, len(der)+1)
	copy(out, der)
	out[len(der)] = 0x00
	return out
}
