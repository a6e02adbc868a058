// Package pem strips BEGIN/END armor and base64 decoding around a DER
// certificate or CRL payload. encoding/pem already does exactly this, so
// this package is a thin domain-specific wrapper rather than a
// reimplementation.
package pem

import (
	"encoding/pem"
)

// CertificateBlockType is the PEM block type Parse recognizes, matching
// the original's "-----BEGIN CERTIFICATE-----" marker check.
const CertificateBlockType = "CERTIFICATE"

// DecodeCertificate extracts the DER payload of the first CERTIFICATE PEM
// block in buf, returning the bytes following that block so the caller
// can keep decoding subsequent blocks in a stream. ok is false once no
// further PEM blocks remain.
func DecodeCertificate(buf []byte) (der []byte, rest []byte, ok bool) {
	for {
		block, remaining := pem.Decode(buf)
		if block == nil {
			return nil, nil, false
		}
		if block.Type == CertificateBlockType {
			return block.Bytes, remaining, true
		}
		buf = remaining
	}
}

// DecodeCRL extracts the DER payload of the first "X509 CRL" PEM block in
// buf.
func DecodeCRL(buf []byte) (der []byte, rest []byte, ok bool) {
	for {
		block, remaining := pem.Decode(buf)
		if block == nil {
			return nil, nil, false
		}
		if block.Type == "X509 CRL" {
			return block.Bytes, remaining, true
		}
		buf = remaining
	}
}
