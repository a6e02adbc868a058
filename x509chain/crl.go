package x509chain

import (
	"bytes"
	"strings"
	"time"

	"github.com/cert-manager/x509chain/internal/asn1der"
	"github.com/cert-manager/x509chain/internal/digest"
	"github.com/cert-manager/x509chain/internal/oid"
	"github.com/cert-manager/x509chain/internal/pem"
	"github.com/cert-manager/x509chain/internal/pkey"
)

// ParseCRLDER parses a single DER-encoded CertificateList into crl. On
// failure crl is left untouched, same no-partial-state contract as
// ParseDER.
func ParseCRLDER(crl *CRL, buf []byte) error {
	parsed := &CRL{}
	if err := parseCRLDERCore(parsed, buf); err != nil {
		return err
	}
	*crl = *parsed
	return nil
}

// ParseCRL accepts one DER CertificateList or a PEM stream of "X509 CRL"
// blocks and appends them, in order, onto the end of crl's list (a
// zero-valued crl is filled in place first). Parsing stops at the first
// block that fails: its error is returned, and the CRLs appended before it
// stay in the list.
func ParseCRL(crl *CRL, buf []byte) error {
	cur := crl
	for cur.Next != nil {
		cur = cur.Next
	}
	if !strings.Contains(string(buf), "-----BEGIN X509 CRL-----") {
		if cur.Version == 0 {
			return ParseCRLDER(cur, buf)
		}
		next := &CRL{}
		if err := ParseCRLDER(next, buf); err != nil {
			return err
		}
		cur.Next = next
		return nil
	}

	rest := buf
	first := true
	for {
		block, remaining, ok := pem.DecodeCRL(rest)
		if !ok {
			break
		}
		rest = remaining

		if first && cur.Version == 0 {
			if err := ParseCRLDER(cur, block); err != nil {
				return err
			}
			first = false
			continue
		}
		next := &CRL{}
		if err := ParseCRLDER(next, block); err != nil {
			return err
		}
		cur.Next = next
		cur = next
	}
	return nil
}

// parseCRLDERCore decodes:
//
//	CertificateList ::= SEQUENCE {
//	     tbsCertList          TBSCertList,
//	     signatureAlgorithm   AlgorithmIdentifier,
//	     signatureValue       BIT STRING }
//
//	TBSCertList ::= SEQUENCE {
//	     version                 INTEGER OPTIONAL,
//	     signature               AlgorithmIdentifier,
//	     issuer                  Name,
//	     thisUpdate              Time,
//	     nextUpdate              Time OPTIONAL,
//	     revokedCertificates     SEQUENCE OF SEQUENCE {
//	          userCertificate    CertificateSerialNumber,
//	          revocationDate     Time,
//	          crlEntryExtensions Extensions OPTIONAL } OPTIONAL,
//	     crlExtensions      [0] EXPLICIT Extensions OPTIONAL }
//
// Per-entry and per-list extensions are parsed far enough to skip them but
// are not retained: nothing in this module's CRL checking needs them.
func parseCRLDERCore(crl *CRL, buf []byte) error {
	raw := make([]byte, len(buf))
	copy(raw, buf)

	top := asn1der.NewCursor(raw)
	_, body, err := top.ReadElement(asn1der.TagSequence)
	if err != nil {
		return wrap(KindInvalidFormat, err)
	}
	crl.Raw = raw

	tbsRaw, tbs, err := body.ReadElement(asn1der.TagSequence)
	if err != nil {
		return wrap(KindInvalidFormat, err)
	}
	crl.TBS = tbsRaw

	version := 1
	if v, present, err := tbs.ReadOptionalInt(); err != nil {
		return wrap(KindInvalidVersion, err)
	} else if present {
		version = v + 1
	}
	crl.Version = version

	sigOID, err := parseAlgorithmIdentifier(tbs)
	if err != nil {
		return err
	}
	crl.SigOID = sigOID
	alg, ok := oid.LookupSignatureAlgorithm(sigOID)
	if !ok {
		return newErr(KindUnknownSigAlg, "%x", []byte(sigOID))
	}
	crl.SigAlg = alg

	issuerRaw, _, err := tbs.ReadElement(asn1der.TagSequence)
	if err != nil {
		return wrap(KindInvalidFormat, err)
	}
	crl.IssuerRaw = issuerRaw

	thisUpdate, err := tbs.ReadTime()
	if err != nil {
		return wrap(KindInvalidDate, err)
	}
	crl.ThisUpdate = thisUpdate

	if tbs.PeekTag(asn1der.TagUTCTime) || tbs.PeekTag(asn1der.TagGeneralizedTime) {
		nextUpdate, err := tbs.ReadTime()
		if err != nil {
			return wrap(KindInvalidDate, err)
		}
		crl.NextUpdate = nextUpdate
	}

	if tbs.PeekTag(asn1der.TagSequence) {
		_, revokedSeq, err := tbs.ReadElement(asn1der.TagSequence)
		if err != nil {
			return wrap(KindInvalidFormat, err)
		}
		for !revokedSeq.Empty() {
			_, entry, err := revokedSeq.ReadElement(asn1der.TagSequence)
			if err != nil {
				return wrap(KindInvalidFormat, err)
			}
			serial, err := entry.ReadIntegerBytes()
			if err != nil {
				return wrap(KindInvalidSerial, err)
			}
			revDate, err := entry.ReadTime()
			if err != nil {
				return wrap(KindInvalidDate, err)
			}
			// crlEntryExtensions, if present, is skipped unread; entry is
			// discarded once this iteration ends regardless of what's left.
			crl.Revoked = append(crl.Revoked, RevokedEntry{Serial: serial, RevocationDate: revDate})
		}
	}

	// crlExtensions, if present, is consumed but not retained.
	if _, _, err := tbs.ReadOptionalExplicit(0); err != nil {
		return wrap(KindInvalidExtensions, err)
	}

	sigOID2, err := parseAlgorithmIdentifier(body)
	if err != nil {
		return err
	}
	if string(sigOID) != string(sigOID2) {
		return newErr(KindSigMismatch, "")
	}

	sig, err := body.ReadBitString()
	if err != nil {
		return wrap(KindInvalidSignature, err)
	}
	crl.Sig = sig

	return nil
}

// checkCRL reports whether crl covers a revocation check of child signed
// by parent, and if so, whether it actually finds child revoked. It
// returns the Flag bits to OR into the chain verification result
// (BadCRLExpired/BadCRLFuture are advisory; BadCertRevoked halts).
//
// A CRL whose issuer doesn't match parent's subject, or an uninitialized
// zero-value CRL node, is silently skipped in search of another candidate --
// matching the original's x509_crt_verifycrl, which has no path to report
// "no applicable CRL was found" as a failure; its own author left that gap
// as a documented TODO rather than a fix, and this implementation keeps the
// same gap. But once a CRL is found whose issuer does match, any further
// failure (parent not authorized to sign CRLs, unusable digest, bad
// signature) sets BadCRLNotTrusted and stops -- that CRL was the applicable
// one and it is untrustworthy, not merely inapplicable.
func checkCRL(child, parent *Certificate, crl *CRL, now time.Time) Flag {
	var flags Flag

	for c := crl; c != nil; c = c.Next {
		if c.Version == 0 {
			continue
		}
		if !bytes.Equal(c.IssuerRaw, parent.SubjectRaw) {
			continue
		}
		if parent.ExtTypes&ExtKeyUsage != 0 && parent.KeyUsage&KeyUsageCRLSign == 0 {
			flags |= BadCRLNotTrusted
			return flags
		}

		var sum []byte
		if c.SigAlg.PubKey != oid.PubKeyEd25519 {
			var err error
			sum, err = digest.Sum(c.SigAlg.Digest, c.TBS)
			if err != nil {
				flags |= BadCRLNotTrusted
				return flags
			}
		}
		if err := pkey.Verify(parent.PublicKey, c.SigAlg, sum, c.TBS, c.Sig); err != nil {
			flags |= BadCRLNotTrusted
			return flags
		}

		if !c.NextUpdate.IsZero() && !c.NextUpdate.After(now) {
			flags |= BadCRLExpired
		}
		if c.ThisUpdate.After(now) {
			flags |= BadCRLFuture
		}

		for _, r := range c.Revoked {
			if bytes.Equal(r.Serial, child.Serial) {
				flags |= BadCertRevoked
				return flags
			}
		}
		return flags
	}

	return flags
}
