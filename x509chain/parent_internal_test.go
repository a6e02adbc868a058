package x509chain

import "testing"

// checkParent is unexported; these are white-box tests of the
// topOfChain/bottom gating on the self-signed end-entity exemption.

func selfSignedPair() (child, parent *Certificate) {
	raw := []byte("same certificate bytes")
	dn := []byte("CN=self-signed")
	crt := &Certificate{
		Raw:        raw,
		IssuerRaw:  dn,
		SubjectRaw: dn,
		Version:    3,
		CAIsTrue:   false,
	}
	return crt, crt
}

func TestCheckParentSelfSignedRequiresTopAndBottom(t *testing.T) {
	child, parent := selfSignedPair()

	if checkParent(child, parent, false, true) {
		t.Error("self-signed exemption must not fire when topOfChain is false")
	}
	if checkParent(child, parent, true, false) {
		t.Error("self-signed exemption must not fire when bottom is false")
	}
	if !checkParent(child, parent, true, true) {
		t.Error("self-signed exemption must fire when topOfChain && bottom")
	}
}

func TestCheckParentV1V2TopOfChainExemptionIgnoresBottom(t *testing.T) {
	dn := []byte("CN=legacy root")
	child := &Certificate{IssuerRaw: dn}
	parent := &Certificate{SubjectRaw: dn, Version: 2, CAIsTrue: false}

	// The v1/v2 exemption is gated on topOfChain alone, unlike the
	// self-signed shortcut -- it applies regardless of bottom.
	if !checkParent(child, parent, true, false) {
		t.Error("v1/v2 topOfChain exemption should not require bottom")
	}
	if checkParent(child, parent, false, false) {
		t.Error("v1/v2 exemption must not fire off the top of the chain")
	}
}
