package x509chain

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cert-manager/x509chain/internal/asn1der"
	"github.com/cert-manager/x509chain/internal/oid"
	"github.com/cert-manager/x509chain/internal/pem"
	"github.com/cert-manager/x509chain/internal/pkey"
)

// pemMarker is the literal substring Parse looks for to decide whether buf
// is PEM or a single DER certificate.
const pemMarker = "-----BEGIN CERTIFICATE-----"

// ParseDER appends one DER-encoded certificate to chain: if chain is
// freshly zero-valued, it is parsed in place; otherwise a new node is
// allocated and linked onto the end. On failure the chain is left exactly
// as it was before the call -- no partially-linked node is left dangling.
func ParseDER(chain *Chain, buf []byte) error {
	if chain == nil || buf == nil {
		return newErr(KindBadInputData, "nil chain or buffer")
	}

	crt := chain
	var prev *Certificate
	for crt.Version != 0 && crt.Next != nil {
		prev = crt
		crt = crt.Next
	}
	if crt.Version != 0 && crt.Next == nil {
		crt.Next = &Certificate{}
		prev = crt
		crt = crt.Next
	}

	parsed := &Certificate{}
	if err := parseDERCore(parsed, buf); err != nil {
		if prev != nil {
			prev.Next = nil
		}
		return err
	}
	*crt = *parsed
	return nil
}

// Parse accepts one DER certificate or a PEM stream of certificates and
// appends every one it can successfully parse onto chain. Return value
// semantics: when at least one certificate parsed, the error is nil and
// ParseResult.Failed carries the count of PEM blocks that failed to parse
// (0 on all-success); when none parsed, the result is nil and the first
// error encountered is returned, or a KindCertUnknownFormat error when the
// input held no CERTIFICATE PEM block at all.
func Parse(chain *Chain, buf []byte) (*ParseResult, error) {
	if chain == nil || buf == nil {
		return nil, newErr(KindBadInputData, "nil chain or buffer")
	}

	if !strings.Contains(string(buf), pemMarker) {
		if err := ParseDER(chain, buf); err != nil {
			return nil, err
		}
		return &ParseResult{Succeeded: 1}, nil
	}

	result := &ParseResult{}
	rest := buf
	var firstErr error

	for {
		block, remaining, ok := pem.DecodeCertificate(rest)
		if !ok {
			break
		}
		rest = remaining

		if err := ParseDER(chain, block); err != nil {
			result.Failed++
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		result.Succeeded++
	}

	if result.Succeeded == 0 {
		if firstErr != nil {
			return nil, firstErr
		}
		return nil, newErr(KindCertUnknownFormat, "no PEM or DER certificate recognized")
	}
	return result, nil
}

// ParseResult reports how many certificates Parse appended and how many
// PEM blocks it found but failed to parse.
type ParseResult struct {
	Succeeded int
	Failed    int
}

// ParseFile reads path and calls Parse, zeroing the scratch read buffer
// before it is released -- mirrors the original's
// x509_crt_parse_file scrubbing its temporary buffer before free.
func ParseFile(chain *Chain, path string) (*ParseResult, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, wrapf(KindFileIOError, err, "reading %s", path)
	}
	defer zero(buf)

	return Parse(chain, buf)
}

// ParsePath enumerates the regular files directly inside dir (no
// recursion, matching the original's single-directory FindFirstFile/
// FindNextFile walk) and sums the per-file failure counts from ParseFile.
// A directory enumeration failure is returned as an error rather than a
// negative count, the idiomatic Go way to report a directory-walk failure.
func ParsePath(chain *Chain, dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, wrapf(KindFileIOError, err, "reading directory %s", dir)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	failed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		result, err := ParseFile(chain, filepath.Join(dir, entry.Name()))
		if err != nil {
			failed++
			continue
		}
		failed += result.Failed
	}
	return failed, nil
}

// zero scrubs a buffer in place -- defense against key/cert material
// residue, mirroring the original's __stosb(buf, 0, n) scrubs.
func zero(buf []byte) {
	for i := range buf {
		buf[i] = 0
	}
}

// parseDERCore performs the full TBSCertificate traversal, populating crt
// or returning an error. On error crt may be left partially populated;
// the caller (ParseDER) parses into a scratch Certificate and discards it,
// so no partially-populated node is retained in the chain.
func parseDERCore(crt *Certificate, buf []byte) error {
	raw := make([]byte, len(buf))
	copy(raw, buf)

	top := asn1der.NewCursor(raw)
	_, certBody, err := top.ReadElement(asn1der.TagSequence)
	if err != nil {
		return wrap(KindInvalidFormat, err)
	}
	crt.Raw = raw

	tbsRaw, tbs, err := certBody.ReadElement(asn1der.TagSequence)
	if err != nil {
		return wrap(KindInvalidFormat, err)
	}
	crt.TBS = tbsRaw

	version := 0
	if verCur, present, err := tbs.ReadOptionalExplicit(0); err != nil {
		return wrap(KindInvalidVersion, err)
	} else if present {
		v, err := verCur.ReadInt()
		if err != nil {
			return wrap(KindInvalidVersion, err)
		}
		if !verCur.Empty() {
			return newErr(KindInvalidVersion, "trailing bytes in version")
		}
		version = v
	}
	crt.Version = version + 1
	if crt.Version < 1 || crt.Version > 3 {
		return newErr(KindUnknownVersion, "version %d", crt.Version)
	}

	serial, err := tbs.ReadIntegerBytes()
	if err != nil {
		return wrap(KindInvalidSerial, err)
	}
	crt.Serial = serial

	sigOID1, err := parseAlgorithmIdentifier(tbs)
	if err != nil {
		return err
	}
	crt.SigOID1 = sigOID1

	alg, ok := oid.LookupSignatureAlgorithm(sigOID1)
	if !ok {
		return newErr(KindUnknownSigAlg, "%x", []byte(sigOID1))
	}
	crt.SigAlg = alg

	issuerRaw, issuerBody, err := tbs.ReadElement(asn1der.TagSequence)
	if err != nil {
		return wrap(KindInvalidFormat, err)
	}
	issuer, err := parseName(issuerBody)
	if err != nil {
		return err
	}
	crt.IssuerRaw = issuerRaw
	crt.Issuer = issuer

	_, validity, err := tbs.ReadElement(asn1der.TagSequence)
	if err != nil {
		return wrapf(KindInvalidDate, err, "validity")
	}
	notBefore, err := validity.ReadTime()
	if err != nil {
		return wrap(KindInvalidDate, err)
	}
	notAfter, err := validity.ReadTime()
	if err != nil {
		return wrap(KindInvalidDate, err)
	}
	if !validity.Empty() {
		return newErr(KindInvalidDate, "trailing bytes in Validity")
	}
	crt.NotBefore = notBefore
	crt.NotAfter = notAfter

	subjectRaw, subjectBody, err := tbs.ReadElement(asn1der.TagSequence)
	if err != nil {
		return wrap(KindInvalidFormat, err)
	}
	subject, err := parseName(subjectBody)
	if err != nil {
		return err
	}
	crt.SubjectRaw = subjectRaw
	crt.Subject = subject

	spkiRaw, _, err := tbs.ReadElement(asn1der.TagSequence)
	if err != nil {
		return wrap(KindInvalidFormat, err)
	}
	pub, err := pkey.ParseSubjectPublicKeyInfo(spkiRaw)
	if err != nil {
		return wrapf(KindInvalidFormat, err, "subjectPublicKeyInfo")
	}
	crt.PublicKey = pub

	if crt.Version == 2 || crt.Version == 3 {
		issuerID, present, err := tbs.ReadOptionalImplicitRaw(1)
		if err != nil {
			return wrap(KindInvalidFormat, err)
		}
		if present {
			crt.IssuerUniqueID = issuerID
		}
	}
	if crt.Version == 2 || crt.Version == 3 {
		subjectID, present, err := tbs.ReadOptionalImplicitRaw(2)
		if err != nil {
			return wrap(KindInvalidFormat, err)
		}
		if present {
			crt.SubjectUniqueID = subjectID
		}
	}

	if crt.Version == 3 {
		if extWrap, present, err := tbs.ReadOptionalExplicit(3); err != nil {
			return wrap(KindInvalidExtensions, err)
		} else if present {
			extRaw, extSeq, err := extWrap.ReadElement(asn1der.TagSequence)
			if err != nil {
				return wrap(KindInvalidExtensions, err)
			}
			crt.V3Extensions = extRaw
			if err := parseCertExtensions(extSeq, crt); err != nil {
				return err
			}
			if !extWrap.Empty() {
				return newErr(KindInvalidExtensions, "trailing bytes after Extensions")
			}
		}
	}

	if !tbs.Empty() {
		return newErr(KindInvalidFormat, "trailing bytes in TBSCertificate")
	}

	sigOID2, err := parseAlgorithmIdentifier(certBody)
	if err != nil {
		return err
	}
	crt.SigOID2 = sigOID2
	if string(crt.SigOID1) != string(crt.SigOID2) {
		return newErr(KindSigMismatch, "")
	}

	sig, err := certBody.ReadBitString()
	if err != nil {
		return wrap(KindInvalidSignature, err)
	}
	crt.Sig = sig

	if !certBody.Empty() {
		return newErr(KindInvalidFormat, "trailing bytes in Certificate")
	}

	return nil
}

// parseAlgorithmIdentifier decodes:
//
//	AlgorithmIdentifier ::= SEQUENCE {
//	     algorithm    OBJECT IDENTIFIER,
//	     parameters   ANY DEFINED BY algorithm OPTIONAL }
//
// with an explicit NULL parameters tolerated, matching the original's
// x509_get_alg_null.
func parseAlgorithmIdentifier(parent *asn1der.Cursor) (oid.OID, error) {
	_, body, err := parent.ReadElement(asn1der.TagSequence)
	if err != nil {
		return nil, wrap(KindInvalidAlg, err)
	}
	id, err := body.ReadOID()
	if err != nil {
		return nil, wrap(KindInvalidAlg, err)
	}
	if err := body.ReadOptionalNull(); err != nil {
		return nil, wrap(KindInvalidAlg, err)
	}
	if !body.Empty() {
		return nil, newErr(KindInvalidAlg, "unexpected AlgorithmIdentifier parameters")
	}
	return oid.OID(id), nil
}

// parseName decodes a Name (RDNSequence) into a flat list of RDN atoms,
// same flattening the original performs: the SET-of-AttributeTypeAndValue
// grouping within each RDN is not preserved, only attribute order.
func parseName(body *asn1der.Cursor) ([]RDNAtom, error) {
	var atoms []RDNAtom
	for !body.Empty() {
		_, rdnSet, err := body.ReadElement(asn1der.TagSet)
		if err != nil {
			return nil, wrap(KindInvalidName, err)
		}
		for !rdnSet.Empty() {
			_, atav, err := rdnSet.ReadElement(asn1der.TagSequence)
			if err != nil {
				return nil, wrap(KindInvalidName, err)
			}
			id, err := atav.ReadOID()
			if err != nil {
				return nil, wrap(KindInvalidName, err)
			}
			_, value, err := atav.ReadAnyElement()
			if err != nil {
				return nil, wrap(KindInvalidName, err)
			}
			if !atav.Empty() {
				return nil, newErr(KindInvalidName, "trailing bytes in AttributeTypeAndValue")
			}
			atoms = append(atoms, RDNAtom{OID: oid.OID(id), Value: value})
		}
	}
	return atoms, nil
}

// parseCertExtensions walks the SEQUENCE OF Extension body, dispatching
// each recognized extension to its §4.1 parser and setting the
// corresponding ExtTypes bit. An unrecognized OID is skipped unless
// marked critical, in which case parsing fails.
func parseCertExtensions(seq *asn1der.Cursor, crt *Certificate) error {
	for !seq.Empty() {
		_, ext, err := seq.ReadElement(asn1der.TagSequence)
		if err != nil {
			return wrap(KindInvalidExtensions, err)
		}

		extOID, err := ext.ReadOID()
		if err != nil {
			return wrap(KindInvalidExtensions, err)
		}

		critical := false
		if b, present, err := ext.ReadOptionalBoolean(); err != nil {
			return wrap(KindInvalidExtensions, err)
		} else if present {
			critical = b
		}

		extRaw, extBody, err := ext.ReadElement(asn1der.TagOctetString)
		if err != nil {
			return wrap(KindInvalidExtensions, err)
		}
		_ = extRaw

		if !ext.Empty() {
			return newErr(KindInvalidExtensions, "trailing bytes in Extension")
		}

		bit, known := oid.ExtensionType(oid.OID(extOID))
		if !known {
			if critical {
				return newErr(KindInvalidExtensions, "unrecognized critical extension")
			}
			continue
		}
		crt.ExtTypes |= bit

		body := extBody.Rest()
		switch bit {
		case oid.ExtBasicConstraints:
			caIsTrue, maxPathLen, err := parseBasicConstraints(body)
			if err != nil {
				return err
			}
			crt.CAIsTrue = caIsTrue
			crt.MaxPathLen = maxPathLen
		case oid.ExtKeyUsage:
			mask, err := parseBitMask(body)
			if err != nil {
				return err
			}
			crt.KeyUsage = mask
		case oid.ExtExtendedKeyUsage:
			ekus, err := parseExtKeyUsage(body)
			if err != nil {
				return err
			}
			crt.ExtKeyUsage = ekus
		case oid.ExtSubjectAltName:
			names, err := parseSubjectAltName(body)
			if err != nil {
				return err
			}
			crt.SubjectAltNames = names
		case oid.ExtNSCertType:
			mask, err := parseBitMask(body)
			if err != nil {
				return err
			}
			crt.NSCertType = mask
		default:
			return newErr(KindFeatureUnavailable, "")
		}
	}
	return nil
}
