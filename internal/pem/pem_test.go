package pem

import (
	"encoding/pem"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeCertificate(t *testing.T) {
	der := []byte{0x30, 0x03, 0x02, 0x01, 0x05}
	buf := pem.EncodeToMemory(&pem.Block{Type: CertificateBlockType, Bytes: der})

	got, rest, ok := DecodeCertificate(buf)
	require.True(t, ok)
	assert.Equal(t, der, got)
	assert.Empty(t, rest)
}

func TestDecodeCertificateSkipsOtherBlocks(t *testing.T) {
	der := []byte{0x30, 0x03, 0x02, 0x01, 0x05}
	buf := append(
		pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: []byte("nope")}),
		pem.EncodeToMemory(&pem.Block{Type: CertificateBlockType, Bytes: der})...,
	)

	got, _, ok := DecodeCertificate(buf)
	require.True(t, ok)
	assert.Equal(t, der, got)
}

func TestDecodeCertificateNoBlocks(t *testing.T) {
	_, _, ok := DecodeCertificate([]byte("not pem"))
	assert.False(t, ok)
}
