// Package asn1der is the low-level ASN.1/DER cursor the certificate and CRL
// parsers are built on. It is deliberately thin: tag/length/primitive reads
// only, no certificate semantics. Built on golang.org/x/crypto/cryptobyte,
// the same ASN.1 cursor library github.com/letsencrypt/boulder reaches for
// when it needs to walk DER by hand (see ca/ca.go's tbsCertIsDeterministic)
// and the one the Go standard library's own x509 parser has since adopted
// internally.
package asn1der

import (
	encasn1 "encoding/asn1"
	"fmt"
	"time"

	"golang.org/x/crypto/cryptobyte"
	casn1 "golang.org/x/crypto/cryptobyte/asn1"
)

// Kind is the low-level ASN.1 framing failure category. Higher layers
// (x509chain) wrap a Kind inside their own structural error kind, carrying
// both layers instead of composing them by integer addition the way the
// C original does.
type Kind int

const (
	KindUnexpectedTag Kind = iota
	KindOutOfData
	KindInvalidLength
	KindLengthMismatch
	KindInvalidData
)

func (k Kind) String() string {
	switch k {
	case KindUnexpectedTag:
		return "unexpected tag"
	case KindOutOfData:
		return "out of data"
	case KindInvalidLength:
		return "invalid length"
	case KindLengthMismatch:
		return "length mismatch"
	case KindInvalidData:
		return "invalid data"
	default:
		return "unknown asn1 error"
	}
}

// Error is the framing-level error returned by every Cursor method.
type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("asn1: %s: %s", e.Kind, e.Msg)
}

func errf(k Kind, format string, args ...any) error {
	return &Error{Kind: k, Msg: fmt.Sprintf(format, args...)}
}

// Tag re-exports cryptobyte's ASN.1 tag type so callers don't need a second
// import for well-known universal tags.
type Tag = casn1.Tag

const (
	TagBoolean        = casn1.BOOLEAN
	TagInteger        = casn1.INTEGER
	TagBitString      = casn1.BIT_STRING
	TagOctetString    = casn1.OCTET_STRING
	TagNull           = casn1.NULL
	TagOID            = casn1.OBJECT_IDENTIFIER
	TagSequence       = casn1.SEQUENCE
	TagSet            = casn1.SET
	TagUTCTime        = casn1.UTCTime
	TagGeneralizedTime = casn1.GeneralizedTime
)

// Cursor reads DER from a single contiguous buffer. Every []byte it ever
// returns is a sub-slice of that buffer: no copies are made, so a view
// returned by a Cursor keeps the owning buffer alive for as long as the
// view itself is reachable (the Go-idiomatic replacement for the C
// original's raw-pointer ByteSlice aliasing.
type Cursor struct {
	s cryptobyte.String
}

// NewCursor wraps buf for reading. buf is never copied or mutated.
func NewCursor(buf []byte) *Cursor {
	return &Cursor{s: cryptobyte.String(buf)}
}

// Empty reports whether the cursor has no bytes left.
func (c *Cursor) Empty() bool { return len(c.s) == 0 }

// Len reports the number of unread bytes.
func (c *Cursor) Len() int { return len(c.s) }

// Rest returns every remaining unread byte without consuming it.
func (c *Cursor) Rest() []byte { return []byte(c.s) }

// ReadElement reads one DER TLV matching tag and returns both the complete
// encoding (tag + length + content) and a Cursor over just its content.
// The "raw" return is what the certificate model's ByteSlice fields store
// for spans like tbs, issuer_raw, and subject_raw, which include their
// outer SEQUENCE header per the original's pointer bookkeeping.
func (c *Cursor) ReadElement(tag Tag) (raw []byte, body *Cursor, err error) {
	var elem cryptobyte.String
	if !c.s.ReadASN1Element(&elem, tag) {
		return nil, nil, errf(KindUnexpectedTag, "expected tag %#x", byte(tag))
	}
	rest := elem
	var content cryptobyte.String
	if !rest.ReadASN1(&content, tag) {
		return nil, nil, errf(KindInvalidData, "malformed element header")
	}
	return []byte(elem), &Cursor{s: content}, nil
}

// ReadAnyElement reads the next TLV regardless of tag, returning its raw
// identifier octet (valid for any low-tag-number per DER, which covers
// every GeneralName context tag used by SubjectAltName) and its content.
func (c *Cursor) ReadAnyElement() (tagByte byte, content []byte, err error) {
	var elem cryptobyte.String
	var tag casn1.Tag
	if !c.s.ReadAnyASN1Element(&elem, &tag) {
		return 0, nil, errf(KindOutOfData, "expected an ASN.1 element")
	}
	rest := elem
	var body cryptobyte.String
	if !rest.ReadASN1(&body, tag) {
		return 0, nil, errf(KindInvalidData, "malformed element header")
	}
	return byte(tag), []byte(body), nil
}

// PeekTag reports whether the next element carries tag, without consuming it.
func (c *Cursor) PeekTag(tag Tag) bool {
	return c.s.PeekASN1Tag(tag)
}

// SkipElement discards the next TLV matching tag.
func (c *Cursor) SkipElement(tag Tag) error {
	if !c.s.SkipASN1(tag) {
		return errf(KindUnexpectedTag, "expected tag %#x to skip", byte(tag))
	}
	return nil
}

// ReadOptionalExplicit reads an EXPLICIT context-specific constructed tag
// numbered n, if present. present is false (and inner nil) when the next
// element doesn't carry that tag at all -- the caller's "default" case.
func (c *Cursor) ReadOptionalExplicit(n int) (inner *Cursor, present bool, err error) {
	tag := casn1.Tag(n).ContextSpecific().Constructed()
	var body cryptobyte.String
	var ok bool
	if !c.s.ReadOptionalASN1(&body, &ok, tag) {
		return nil, false, errf(KindInvalidData, "malformed explicit [%d]", n)
	}
	if !ok {
		return nil, false, nil
	}
	return &Cursor{s: body}, true, nil
}

// ReadOptionalImplicitRaw reads an IMPLICIT context-specific tag numbered n
// (constructed, matching the original's own bookkeeping for unique
// identifiers), returning its raw content unconverted -- these fields are
// parsed but left uninterpreted by callers.
func (c *Cursor) ReadOptionalImplicitRaw(n int) (raw []byte, present bool, err error) {
	tag := casn1.Tag(n).ContextSpecific().Constructed()
	if !c.s.PeekASN1Tag(tag) {
		return nil, false, nil
	}
	_, body, err := c.ReadElement(tag)
	if err != nil {
		return nil, false, err
	}
	return body.Rest(), true, nil
}

// ReadOptionalBoolean reads a BOOLEAN, present reporting whether one was there at
// all (the caller applies the ASN.1 DEFAULT when it is not).
func (c *Cursor) ReadOptionalBoolean() (value bool, present bool, err error) {
	if !c.s.PeekASN1Tag(casn1.BOOLEAN) {
		return false, false, nil
	}
	var b bool
	if !c.s.ReadASN1Boolean(&b) {
		return false, false, errf(KindInvalidData, "malformed BOOLEAN")
	}
	return b, true, nil
}

// ReadInt reads an INTEGER small enough to fit an int.
func (c *Cursor) ReadInt() (int, error) {
	var v int
	if !c.s.ReadASN1Integer(&v) {
		return 0, errf(KindInvalidData, "malformed INTEGER")
	}
	return v, nil
}

// ReadOptionalInt reads an INTEGER if present.
func (c *Cursor) ReadOptionalInt() (value int, present bool, err error) {
	if !c.s.PeekASN1Tag(casn1.INTEGER) {
		return 0, false, nil
	}
	v, err := c.ReadInt()
	if err != nil {
		return 0, false, err
	}
	return v, true, nil
}

// ReadIntegerBytes reads an INTEGER's raw content octets (sign/leading
// zero included, exactly as encoded) -- used for serial numbers, which the
// spec keeps as an opaque ByteSlice rather than a decoded value.
func (c *Cursor) ReadIntegerBytes() ([]byte, error) {
	_, body, err := c.ReadElement(casn1.INTEGER)
	if err != nil {
		return nil, err
	}
	return body.Rest(), nil
}

// ReadBitString reads a BIT STRING and returns its content bytes with the
// leading unused-bits-count octet already stripped off by cryptobyte's
// decoder -- the Go-idiomatic equivalent of the original decoder's
// "leading-zero byte stripped" bitstring contract.
func (c *Cursor) ReadBitString() ([]byte, error) {
	var bs encasn1.BitString
	if !c.s.ReadASN1BitString(&bs) {
		return nil, errf(KindInvalidData, "malformed BIT STRING")
	}
	return bs.Bytes, nil
}

// ReadOID reads an OBJECT IDENTIFIER and returns its raw content octets
// (no outer tag/length), matching the rest of the certificate model's
// raw-ByteSlice treatment of OIDs.
func (c *Cursor) ReadOID() ([]byte, error) {
	_, body, err := c.ReadElement(casn1.OBJECT_IDENTIFIER)
	if err != nil {
		return nil, err
	}
	return body.Rest(), nil
}

// ReadOptionalNull consumes a NULL element if present (AlgorithmIdentifier
// parameters for many signature algorithms are an explicit NULL).
func (c *Cursor) ReadOptionalNull() error {
	if c.s.PeekASN1Tag(casn1.NULL) {
		if !c.s.SkipASN1(casn1.NULL) {
			return errf(KindInvalidData, "malformed NULL")
		}
	}
	return nil
}

// ReadTime reads a Time CHOICE (UTCTime or GeneralizedTime per RFC 5280).
func (c *Cursor) ReadTime() (time.Time, error) {
	switch {
	case c.s.PeekASN1Tag(casn1.UTCTime):
		var t time.Time
		if !c.s.ReadASN1UTCTime(&t) {
			return time.Time{}, errf(KindInvalidData, "malformed UTCTime")
		}
		return t, nil
	case c.s.PeekASN1Tag(casn1.GeneralizedTime):
		var t time.Time
		if !c.s.ReadASN1GeneralizedTime(&t) {
			return time.Time{}, errf(KindInvalidData, "malformed GeneralizedTime")
		}
		return t, nil
	default:
		return time.Time{}, errf(KindUnexpectedTag, "expected UTCTime or GeneralizedTime")
	}
}
