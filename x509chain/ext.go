package x509chain

import (
	"github.com/cert-manager/x509chain/internal/asn1der"
	"github.com/cert-manager/x509chain/internal/oid"
)

// parseBasicConstraints decodes:
//
//	BasicConstraints ::= SEQUENCE {
//	     cA                      BOOLEAN DEFAULT FALSE,
//	     pathLenConstraint       INTEGER (0..MAX) OPTIONAL }
//
// Some encoders mis-encode cA as an INTEGER; when the BOOLEAN tag is
// absent we tolerate an INTEGER in its place, matching the original
// decoder's fallback. The returned maxPathLen is already
// offset by +1 (0 means absent/unbounded).
func parseBasicConstraints(body []byte) (caIsTrue bool, maxPathLen int, err error) {
	seq, err := extSequence(body)
	if err != nil {
		return false, 0, err
	}

	if seq.Empty() {
		return false, 0, nil
	}

	if b, present, e := seq.ReadOptionalBoolean(); e != nil {
		return false, 0, wrap(KindInvalidExtensions, e)
	} else if present {
		caIsTrue = b
	} else {
		// Tolerate cA mis-encoded as an INTEGER.
		if v, present2, e2 := seq.ReadOptionalInt(); e2 != nil {
			return false, 0, wrap(KindInvalidExtensions, e2)
		} else if present2 {
			caIsTrue = v != 0
		}
	}

	if seq.Empty() {
		return caIsTrue, 0, nil
	}

	pathLen, err := seq.ReadInt()
	if err != nil {
		return false, 0, wrap(KindInvalidExtensions, err)
	}

	if !seq.Empty() {
		return false, 0, newErr(KindInvalidExtensions, "trailing bytes after BasicConstraints")
	}

	return caIsTrue, pathLen + 1, nil
}

// parseKeyUsage and parseNSCertType both decode a BIT STRING whose first
// content byte is the mask; an empty bitstring is rejected.
func parseBitMask(body []byte) (uint8, error) {
	cur := asn1der.NewCursor(body)
	bits, err := cur.ReadBitString()
	if err != nil {
		return 0, wrap(KindInvalidExtensions, err)
	}
	if len(bits) < 1 {
		return 0, newErr(KindInvalidExtensions, "empty bitstring")
	}
	return bits[0], nil
}

// parseExtKeyUsage decodes ExtKeyUsageSyntax ::= SEQUENCE SIZE (1..MAX) OF
// KeyPurposeId, requiring at least one element.
func parseExtKeyUsage(body []byte) ([]oid.OID, error) {
	seq, err := extSequence(body)
	if err != nil {
		return nil, err
	}
	var out []oid.OID
	for !seq.Empty() {
		id, err := seq.ReadOID()
		if err != nil {
			return nil, wrap(KindInvalidExtensions, err)
		}
		out = append(out, oid.OID(id))
	}
	if len(out) == 0 {
		return nil, newErr(KindInvalidExtensions, "empty ExtendedKeyUsage")
	}
	return out, nil
}

// parseSubjectAltName decodes a GeneralNames SEQUENCE, keeping only
// dNSName ([2]) entries -- every other GeneralName variant is
// length-skipped, per the original's
// "PolarSSL only parses and uses dNSName at this point" comment.
func parseSubjectAltName(body []byte) ([][]byte, error) {
	seq, err := extSequence(body)
	if err != nil {
		return nil, err
	}

	const contextSpecificClass = 0x80
	const dNSNameTag = contextSpecificClass | 2

	var names [][]byte
	for !seq.Empty() {
		tag, content, err := seq.ReadAnyElement()
		if err != nil {
			return nil, wrap(KindInvalidExtensions, err)
		}
		if tag&0xC0 != contextSpecificClass {
			return nil, newErr(KindInvalidExtensions, "non context-specific GeneralName tag %#x", tag)
		}
		if tag != dNSNameTag {
			continue
		}
		names = append(names, content)
	}
	return names, nil
}

// extSequence opens the extension body's outer SEQUENCE (every
// Extensions payload covered by §4.1 is itself a SEQUENCE).
func extSequence(body []byte) (*asn1der.Cursor, error) {
	_, seq, err := asn1der.NewCursor(body).ReadElement(asn1der.TagSequence)
	if err != nil {
		return nil, wrap(KindInvalidExtensions, err)
	}
	return seq, nil
}
