// Package pkey is the public-key parser and signature-verification
// backend, deliberately kept separate from certificate parsing:
// SubjectPublicKeyInfo decode plus verify(pk, hash_alg, digest, signature).
// It is intentionally the one place in this module that reaches for
// crypto/x509 and friends from the standard library rather than a
// third-party package: Go's own public-key and signature primitives are
// the natural backend for this, and both boulder and dolly -- which
// hand-roll their own certificate DER walking -- still call down into
// these same standard-library primitives for the actual key material and
// signature math (see DESIGN.md).
package pkey

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rsa"
	"crypto/x509"
	"errors"
	"fmt"

	"github.com/cert-manager/x509chain/internal/oid"
)

// ErrUnsupportedKey is returned when a SubjectPublicKeyInfo decodes to a
// key type this backend has no verifier for.
var ErrUnsupportedKey = errors.New("pkey: unsupported public key type")

// ParseSubjectPublicKeyInfo decodes a DER-encoded SubjectPublicKeyInfo
// (tag and length included) into a usable crypto.PublicKey.
func ParseSubjectPublicKeyInfo(der []byte) (crypto.PublicKey, error) {
	pub, err := x509.ParsePKIXPublicKey(der)
	if err != nil {
		return nil, fmt.Errorf("pkey: parse subject public key info: %w", err)
	}
	switch pub.(type) {
	case *rsa.PublicKey, *ecdsa.PublicKey, ed25519.PublicKey:
		return pub, nil
	default:
		return nil, ErrUnsupportedKey
	}
}

// CanVerify reports whether pub is of the key family alg expects --
// the Go equivalent of the original's pk_can_do guard before attempting
// a signature check.
func CanVerify(pub crypto.PublicKey, alg oid.PubKeyAlgorithm) bool {
	switch pub.(type) {
	case *rsa.PublicKey:
		return alg == oid.PubKeyRSA
	case *ecdsa.PublicKey:
		return alg == oid.PubKeyECDSA
	case ed25519.PublicKey:
		return alg == oid.PubKeyEd25519
	default:
		return false
	}
}

// Verify checks that sig is a valid signature by pub over the message
// digest computed with alg.Digest (or, for Ed25519, over msg directly --
// Ed25519 has no separate digest step).
func Verify(pub crypto.PublicKey, alg oid.SignatureAlgorithm, digest, msg, sig []byte) error {
	if !CanVerify(pub, alg.PubKey) {
		return fmt.Errorf("pkey: key type does not match signature algorithm %s", alg.Name)
	}
	switch k := pub.(type) {
	case *rsa.PublicKey:
		if err := rsa.VerifyPKCS1v15(k, alg.Digest, digest, sig); err != nil {
			return fmt.Errorf("pkey: rsa signature verification failed: %w", err)
		}
		return nil
	case *ecdsa.PublicKey:
		if !ecdsa.VerifyASN1(k, digest, sig) {
			return errors.New("pkey: ecdsa signature verification failed")
		}
		return nil
	case ed25519.PublicKey:
		if !ed25519.Verify(k, msg, sig) {
			return errors.New("pkey: ed25519 signature verification failed")
		}
		return nil
	default:
		return ErrUnsupportedKey
	}
}
