package x509chain

import (
	"errors"
	"fmt"

	"github.com/cert-manager/x509chain/internal/asn1der"
)

// Kind is the X.509 structural error category. Unlike the
// C original, which composes a lower-level ASN.1 code into a higher-level
// one by integer addition, Kind only ever names the X.509-level failure;
// the ASN.1-level cause (if any) is carried as the wrapped error and
// reached with errors.As, giving both layers without error-code
// arithmetic.
type Kind int

const (
	KindInvalidFormat Kind = iota
	KindInvalidVersion
	KindInvalidSerial
	KindInvalidAlg
	KindInvalidName
	KindInvalidDate
	KindInvalidSignature
	KindInvalidExtensions
	KindUnknownVersion
	KindUnknownSigAlg
	KindSigMismatch
	KindFeatureUnavailable
	KindBadInputData
	KindFileIOError
	KindCertUnknownFormat
	KindCertVerifyFailed
)

func (k Kind) String() string {
	switch k {
	case KindInvalidFormat:
		return "invalid format"
	case KindInvalidVersion:
		return "invalid version"
	case KindInvalidSerial:
		return "invalid serial"
	case KindInvalidAlg:
		return "invalid algorithm identifier"
	case KindInvalidName:
		return "invalid name"
	case KindInvalidDate:
		return "invalid date"
	case KindInvalidSignature:
		return "invalid signature"
	case KindInvalidExtensions:
		return "invalid extensions"
	case KindUnknownVersion:
		return "unknown version"
	case KindUnknownSigAlg:
		return "unknown signature algorithm"
	case KindSigMismatch:
		return "inner/outer signature algorithm mismatch"
	case KindFeatureUnavailable:
		return "feature unavailable"
	case KindBadInputData:
		return "bad input data"
	case KindFileIOError:
		return "file I/O error"
	case KindCertUnknownFormat:
		return "unknown certificate format"
	case KindCertVerifyFailed:
		return "certificate chain verification failed"
	default:
		return "unknown x509 error"
	}
}

// Error is the structural error type every parse operation returns. It
// wraps an optional lower-level cause (typically an *asn1der.Error) the
// way, instead of folding it into a single
// integer error code.
type Error struct {
	Kind  Kind
	Msg   string
	Cause error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		if e.Msg != "" {
			return fmt.Sprintf("x509: %s: %s: %v", e.Kind, e.Msg, e.Cause)
		}
		return fmt.Sprintf("x509: %s: %v", e.Kind, e.Cause)
	}
	if e.Msg != "" {
		return fmt.Sprintf("x509: %s: %s", e.Kind, e.Msg)
	}
	return fmt.Sprintf("x509: %s", e.Kind)
}

func (e *Error) Unwrap() error { return e.Cause }

// Is lets errors.Is(err, &x509chain.Error{Kind: x509chain.KindInvalidExtensions})
// match any *Error of the same Kind, whatever its Msg or Cause; callers
// that want the full *Error use errors.As.
func (e *Error) Is(target error) bool {
	var other *Error
	if errors.As(target, &other) {
		return e.Kind == other.Kind
	}
	return false
}

func wrap(kind Kind, cause error) error {
	return &Error{Kind: kind, Cause: cause}
}

func wrapf(kind Kind, cause error, format string, args ...any) error {
	return &Error{Kind: kind, Cause: cause, Msg: fmt.Sprintf(format, args...)}
}

func newErr(kind Kind, format string, args ...any) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// asASN1 reports whether err is (or wraps) an *asn1der.Error, matching the
// original's "+ ASN1_* " composed codes without the arithmetic.
func asASN1(err error) (*asn1der.Error, bool) {
	var a *asn1der.Error
	if errors.As(err, &a) {
		return a, true
	}
	return nil, false
}
