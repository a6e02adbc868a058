package x509chain

import (
	"bytes"

	"github.com/cert-manager/x509chain/internal/digest"
	"github.com/cert-manager/x509chain/internal/oid"
	"github.com/cert-manager/x509chain/internal/pkey"
)

// checkParent reports whether parent could plausibly have issued child:
// subject/issuer name equality, and -- unless child is self-signed -- that
// parent is marked as a CA (or passes one of the two exceptions the
// original carries forward from early X.509 deployments).
//
// The subject/issuer comparison deliberately reproduces the original's
// off-by-one: it compares child.IssuerRaw and parent.SubjectRaw for
// exactly len(child.IssuerRaw) bytes rather than requiring the two spans
// be the same length first. Where parent.SubjectRaw is longer, trailing
// bytes are silently ignored; where it is shorter, the candidate is
// rejected outright. This is preserved rather than corrected:
// any certificate chain that depends on this behavior for a match needs
// its issuer/subject DER encodings byte-identical length anyway, and
// fixing the comparison direction is an observable behavior change for
// existing chains built against it.
func checkParent(child, parent *Certificate, topOfChain, bottom bool) bool {
	if len(parent.SubjectRaw) < len(child.IssuerRaw) {
		return false
	}
	if !bytes.Equal(parent.SubjectRaw[:len(child.IssuerRaw)], child.IssuerRaw) {
		return false
	}

	if parent.CAIsTrue {
		return true
	}

	// Self-signed end-entity certificates (issuer == subject, raw spans
	// byte-identical) are tolerated as their own parent regardless of the
	// basicConstraints CA bit, matching the original's self-signed
	// shortcut used when no other trust anchor is available -- but only at
	// the very top of the chain (topOfChain) and only when child is the
	// bottom-most certificate being checked (bottom), matching the
	// original's top && bottom conjunction; a self-signed certificate
	// appearing mid-chain does not get this exemption.
	if topOfChain && bottom && bytes.Equal(child.Raw, parent.Raw) && bytes.Equal(child.IssuerRaw, child.SubjectRaw) {
		return true
	}

	// v1/v2 root certificates predate basicConstraints; a topOfChain
	// candidate lacking the extension entirely is still accepted as a CA,
	// matching the original's "no basicConstraints at all, and we're
	// already at the trusted root" exemption. A v3 parent without the
	// extension is not exempted: it had the chance to assert CA:TRUE and
	// didn't.
	if topOfChain && parent.Version < 3 {
		return true
	}

	return false
}

// verifyKeyUsageSign enforces that parent's KeyUsage, if the extension was
// present at all, includes keyCertSign before it is accepted as having
// issued child.
func verifyKeyUsageSign(parent *Certificate) bool {
	return CheckKeyUsage(parent, KeyUsageKeyCertSign)
}

// verifySignature checks child's signature against parent's public key,
// delegating digest and verify primitives to internal/pkey and
// internal/digest.
func verifySignature(child, parent *Certificate) error {
	if !pkey.CanVerify(parent.PublicKey, child.SigAlg.PubKey) {
		return newErr(KindUnknownSigAlg, "%s", child.SigAlg.Name)
	}

	var sum []byte
	if child.SigAlg.PubKey != oid.PubKeyEd25519 {
		var err error
		sum, err = digest.Sum(child.SigAlg.Digest, child.TBS)
		if err != nil {
			return wrap(KindUnknownSigAlg, err)
		}
	}

	if err := pkey.Verify(parent.PublicKey, child.SigAlg, sum, child.TBS, child.Sig); err != nil {
		return wrap(KindCertVerifyFailed, err)
	}
	return nil
}
