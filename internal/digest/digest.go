// Package digest is the message-digest backend: hash(alg, bytes) -> digest.
// Like internal/pkey, this is a deliberate standard-library leaf -- hashing
// is a backend primitive, and crypto.Hash is the idiomatic Go way to make
// an algorithm-indexed digest backend without a registry of our own.
package digest

import (
	"crypto"
	_ "crypto/sha1"
	_ "crypto/sha256"
	_ "crypto/sha512"
	"fmt"
)

// Sum hashes msg with alg, returning an error if the Go build has not
// linked in that hash's implementation (mirrors the original's
// md_info_from_type returning NULL for an unknown/unlinked digest).
func Sum(alg crypto.Hash, msg []byte) ([]byte, error) {
	if !alg.Available() {
		return nil, fmt.Errorf("digest: hash algorithm %s unavailable", alg)
	}
	h := alg.New()
	h.Write(msg)
	return h.Sum(nil), nil
}
