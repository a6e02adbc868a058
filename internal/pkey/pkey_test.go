package pkey

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cert-manager/x509chain/internal/digest"
	"github.com/cert-manager/x509chain/internal/oid"
)

func TestParseAndVerifyECDSA(t *testing.T) {
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	der, err := x509.MarshalPKIXPublicKey(&priv.PublicKey)
	require.NoError(t, err)

	pub, err := ParseSubjectPublicKeyInfo(der)
	require.NoError(t, err)

	alg := oid.SignatureAlgorithm{Digest: crypto.SHA256, PubKey: oid.PubKeyECDSA, Name: "ECDSA-SHA256"}
	assert.True(t, CanVerify(pub, alg.PubKey))

	msg := []byte("tbs certificate bytes")
	sum, err := digest.Sum(alg.Digest, msg)
	require.NoError(t, err)

	sig, err := ecdsa.SignASN1(rand.Reader, priv, sum)
	require.NoError(t, err)

	require.NoError(t, Verify(pub, alg, sum, msg, sig))

	badSig := append([]byte(nil), sig...)
	badSig[0] ^= 0xff
	assert.Error(t, Verify(pub, alg, sum, msg, badSig))
}

func TestParseSubjectPublicKeyInfoMalformed(t *testing.T) {
	_, err := ParseSubjectPublicKeyInfo([]byte{0x30, 0x00})
	assert.Error(t, err)
}
