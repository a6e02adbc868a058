package x509chain

import (
	"bytes"
	"time"
)

// VerifyCallback is invoked for every certificate visited during Verify,
// innermost (leaf) first, with the flags accumulated for that certificate
// so far and its 0-based depth in the chain. Returning a non-nil error
// aborts verification immediately -- the Go equivalent of the original's
// f_vrfy callback, minus its raw (void *) parameter, which a Go closure
// makes unnecessary.
type VerifyCallback func(crt *Certificate, depth int, flags Flag) error

// VerifyOptions configures Verify.
type VerifyOptions struct {
	// Roots is the set of locally trusted trust anchors. A candidate
	// parent is accepted as a root only if checkParent succeeds against
	// one of these, not merely because it is the last link in chain.
	Roots *Chain

	// CRLs, if non-nil, are consulted for every parent/child link exactly
	// as the original's optional ca_crl argument is.
	CRLs *CRL

	// Hostname, if non-empty, is matched against the leaf's
	// SubjectAltName/CN per MatchHostname; a mismatch sets
	// BadCertCNMismatch but does not by itself fail verification unless
	// Callback treats it that way.
	Hostname string

	// Now overrides the current time for expiry/future checks; the zero
	// value means time.Now().
	Now time.Time

	// EnforceKeyUsage, if non-zero, is checked against the leaf's KeyUsage
	// via CheckKeyUsage; a leaf missing any bit set here gets
	// BadCertKeyUsage merged into its flags. Build the mask with
	// ParseKeyUsage. The zero value (no bits) enforces nothing, matching
	// the original's check_key_usage only being invoked when the caller
	// actually asks for a specific usage.
	EnforceKeyUsage uint8

	// Callback, if non-nil, is invoked at every depth as described above.
	Callback VerifyCallback
}

// Verify walks chain from the leaf toward a trusted root, checking dates,
// signatures, basicConstraints pathLenConstraint, KeyUsage, and CRL
// revocation at every link, and reports the accumulated Flag bits. A
// non-zero returned error means verification could not establish a trust
// path at all (no matching root, broken signature, or the Callback
// aborted it); Flag bits alone (e.g. BadCertExpired) do not by themselves
// make Verify return an error -- callers that want expiry/CN-mismatch to
// be fatal check the returned Flag.
func Verify(chain *Certificate, opts VerifyOptions) (Flag, error) {
	if chain == nil {
		return 0, newErr(KindBadInputData, "nil chain")
	}
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	var totalFlags Flag
	child := chain
	depth := 0

	for {
		flags := leafFlags(child, now)

		if opts.Hostname != "" && depth == 0 {
			if !MatchHostname(child, opts.Hostname) {
				flags |= BadCertCNMismatch
			}
		}

		if opts.EnforceKeyUsage != 0 && depth == 0 {
			if !CheckKeyUsage(child, opts.EnforceKeyUsage) {
				flags |= BadCertKeyUsage
			}
		}

		parent, parentFlags, found := findParent(child, chain, opts.Roots, depth)
		flags |= parentFlags

		if found && opts.CRLs != nil {
			flags |= checkCRL(child, parent, opts.CRLs, now)
		}

		if found {
			if !verifyKeyUsageSign(parent) {
				flags |= BadCertNotTrusted
			} else if err := verifySignature(child, parent); err != nil {
				flags |= BadCertNotTrusted
			}
		}

		totalFlags |= flags

		if opts.Callback != nil {
			if err := opts.Callback(child, depth, flags); err != nil {
				return totalFlags, err
			}
		}

		if !found {
			return totalFlags, newErr(KindCertVerifyFailed, "no trusted path at depth %d", depth)
		}
		if flags&BadCertNotTrusted != 0 {
			return totalFlags, newErr(KindCertVerifyFailed, "signature or trust check failed at depth %d", depth)
		}
		if isTrustAnchor(parent, opts.Roots) {
			// The root itself is never anyone's child, so the loop above
			// never visits it as crt -- but its own expiry/future window
			// still needs checking, and Callback is still owed one call for
			// it, one depth further than the last certificate verified
			// against it.
			rootFlags := leafFlags(parent, now)
			totalFlags |= rootFlags
			if opts.Callback != nil {
				if err := opts.Callback(parent, depth+1, rootFlags); err != nil {
					return totalFlags, err
				}
			}
			return totalFlags, nil
		}

		child = parent
		depth++
	}
}

// leafFlags computes the date-based Flag bits for crt alone, independent
// of its position in the chain.
func leafFlags(crt *Certificate, now time.Time) Flag {
	var flags Flag
	if now.After(crt.NotAfter) {
		flags |= BadCertExpired
	}
	if now.Before(crt.NotBefore) {
		flags |= BadCertFuture
	}
	return flags
}

// findParent looks for a certificate that could have issued child: first
// within chain itself (the links the caller supplied), then within roots.
// It also enforces pathLenConstraint: a candidate CA whose MaxPathLen is
// non-zero must not have already certified more than MaxPathLen-1
// intermediates below it, counted by depth.
func findParent(child *Certificate, chain, roots *Chain, depth int) (*Certificate, Flag, bool) {
	bottom := depth == 0
	for cand := chain; cand != nil; cand = cand.Next {
		if cand == child {
			continue
		}
		if !checkParent(child, cand, false, bottom) {
			continue
		}
		if flags, ok := enforcePathLen(cand, child, depth); !ok {
			return cand, flags, true
		}
		return cand, 0, true
	}
	for cand := roots; cand != nil; cand = cand.Next {
		if !checkParent(child, cand, true, bottom) {
			continue
		}
		if flags, ok := enforcePathLen(cand, child, depth); !ok {
			return cand, flags, true
		}
		return cand, 0, true
	}
	return nil, BadCertNotTrusted, false
}

// enforcePathLen reports whether cand's basicConstraints pathLenConstraint
// (as stored, +1 offset, 0 = unbounded) still permits it to have certified
// a chain depth levels deep below it.
//
// The count checked is depth+1 (the hop being taken to cand counts too),
// discounted by one when cand's subject equals child's subject: a
// cross-signed or reissued root presented as its own trust anchor under a
// different key but the same subject DN is a self-match at the top of the
// chain, and the original does not charge that extra hop against
// pathLenConstraint.
func enforcePathLen(cand, child *Certificate, depth int) (Flag, bool) {
	if cand.ExtTypes&ExtBasicConstraints == 0 {
		return 0, true
	}
	if cand.MaxPathLen == 0 {
		return 0, true
	}
	checkPathCnt := depth + 1
	if bytes.Equal(cand.SubjectRaw, child.SubjectRaw) {
		checkPathCnt--
	}
	if checkPathCnt > cand.MaxPathLen {
		return BadCertNotTrusted, false
	}
	return 0, true
}

// isTrustAnchor reports whether crt is itself one of the caller-supplied
// trust anchors (by raw byte identity), which is when Verify stops
// climbing the chain.
func isTrustAnchor(crt *Certificate, roots *Chain) bool {
	for r := roots; r != nil; r = r.Next {
		if bytes.Equal(r.Raw, crt.Raw) {
			return true
		}
	}
	return false
}
