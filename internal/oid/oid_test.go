package oid

import (
	"crypto"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtensionType(t *testing.T) {
	bit, ok := ExtensionType(OIDBasicConstraints)
	require.True(t, ok)
	assert.Equal(t, ExtBasicConstraints, bit)

	_, ok = ExtensionType(mustOID(1, 2, 3, 4, 5))
	assert.False(t, ok)
}

func TestLookupSignatureAlgorithm(t *testing.T) {
	alg, ok := LookupSignatureAlgorithm(mustOID(1, 2, 840, 113549, 1, 1, 11))
	require.True(t, ok)
	assert.Equal(t, crypto.SHA256, alg.Digest)
	assert.Equal(t, PubKeyRSA, alg.PubKey)

	_, ok = LookupSignatureAlgorithm(mustOID(1, 2, 3, 4, 5))
	assert.False(t, ok)
}

func TestExtKeyUsageName(t *testing.T) {
	assert.Equal(t, "TLS Web Server Authentication", ExtKeyUsageName(mustOID(1, 3, 6, 1, 5, 5, 7, 3, 1)))
	assert.Equal(t, "???", ExtKeyUsageName(mustOID(1, 2, 3, 4, 5)))
}

func TestIsAnyExtendedKeyUsage(t *testing.T) {
	assert.True(t, IsAnyExtendedKeyUsage(OIDAnyExtendedKeyUsage))
	assert.False(t, IsAnyExtendedKeyUsage(OIDBasicConstraints))
}

func TestOIDEqual(t *testing.T) {
	assert.True(t, OIDBasicConstraints.Equal(mustOID(2, 5, 29, 19)))
	assert.False(t, OIDBasicConstraints.Equal(OIDKeyUsage))
}
