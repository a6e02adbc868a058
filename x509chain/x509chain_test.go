package x509chain_test

import (
	"crypto/x509"
	"crypto/x509/pkix"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cert-manager/x509chain/internal/testcerts"
	"github.com/cert-manager/x509chain/x509chain"
)

// buildChain returns DER bytes for a root CA and a leaf certificate it
// signs for dnsName.
func buildChain(t *testing.T, dnsName string) (rootDER, leafDER []byte) {
	t.Helper()

	rootKey, err := testcerts.GenerateKey()
	require.NoError(t, err)
	root := testcerts.NewBuilder("Test Root CA")
	root.IsCA = true
	root.HasPathLen = true
	root.MaxPathLen = 1
	root.KeyUsage = x509.KeyUsageCertSign | x509.KeyUsageCRLSign
	rootDER, err = root.Build(&rootKey.PublicKey, rootKey, nil)
	require.NoError(t, err)

	leafKey, err := testcerts.GenerateKey()
	require.NoError(t, err)
	leaf := testcerts.NewBuilder(dnsName)
	leaf.Issuer = root.Subject
	leaf.DNSNames = []string{dnsName}
	leaf.KeyUsage = x509.KeyUsageDigitalSignature
	leafDER, err = leaf.Build(&leafKey.PublicKey, rootKey, root.Template())
	require.NoError(t, err)

	return rootDER, leafDER
}

func TestParseDERPopulatesFields(t *testing.T) {
	rootDER, leafDER := buildChain(t, "www.example.com")
	_ = rootDER

	crt := &x509chain.Chain{}
	require.NoError(t, x509chain.ParseDER(crt, leafDER))

	assert.Equal(t, 3, crt.Version)
	assert.NotEmpty(t, crt.Serial)
	assert.NotEmpty(t, crt.Subject)
	assert.NotEmpty(t, crt.Issuer)
	assert.Equal(t, uint8(x509chain.KeyUsageDigitalSignature), crt.KeyUsage)
	assert.Equal(t, [][]byte{[]byte("www.example.com")}, crt.SubjectAltNames)
	assert.NotNil(t, crt.PublicKey)
}

func TestParseDERChainAppend(t *testing.T) {
	rootDER, leafDER := buildChain(t, "www.example.com")

	chain := &x509chain.Chain{}
	require.NoError(t, x509chain.ParseDER(chain, leafDER))
	require.NoError(t, x509chain.ParseDER(chain, rootDER))

	assert.NotNil(t, chain.Next)
	assert.Nil(t, chain.Next.Next)
}

func TestParseDERRejectsGarbage(t *testing.T) {
	crt := &x509chain.Chain{}
	err := x509chain.ParseDER(crt, []byte{0xff, 0xff, 0xff})
	assert.Error(t, err)
	assert.Equal(t, 0, crt.Version)
}

func TestVerifySucceeds(t *testing.T) {
	rootDER, leafDER := buildChain(t, "www.example.com")

	chain := &x509chain.Chain{}
	require.NoError(t, x509chain.ParseDER(chain, leafDER))

	roots := &x509chain.Chain{}
	require.NoError(t, x509chain.ParseDER(roots, rootDER))

	flags, err := x509chain.Verify(chain, x509chain.VerifyOptions{
		Roots:    roots,
		Hostname: "www.example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, x509chain.Flag(0), flags)
}

func TestVerifyHostnameMismatch(t *testing.T) {
	rootDER, leafDER := buildChain(t, "www.example.com")

	chain := &x509chain.Chain{}
	require.NoError(t, x509chain.ParseDER(chain, leafDER))
	roots := &x509chain.Chain{}
	require.NoError(t, x509chain.ParseDER(roots, rootDER))

	flags, err := x509chain.Verify(chain, x509chain.VerifyOptions{
		Roots:    roots,
		Hostname: "other.example.com",
	})
	require.NoError(t, err)
	assert.NotZero(t, flags&x509chain.BadCertCNMismatch)
}

func TestVerifyNoTrustedRoot(t *testing.T) {
	_, leafDER := buildChain(t, "www.example.com")

	chain := &x509chain.Chain{}
	require.NoError(t, x509chain.ParseDER(chain, leafDER))

	_, err := x509chain.Verify(chain, x509chain.VerifyOptions{})
	assert.Error(t, err)
}

func TestVerifyExpired(t *testing.T) {
	rootDER, leafDER := buildChain(t, "www.example.com")

	chain := &x509chain.Chain{}
	require.NoError(t, x509chain.ParseDER(chain, leafDER))
	roots := &x509chain.Chain{}
	require.NoError(t, x509chain.ParseDER(roots, rootDER))

	flags, err := x509chain.Verify(chain, x509chain.VerifyOptions{
		Roots: roots,
		Now:   time.Now().Add(365 * 24 * time.Hour * 10),
	})
	require.NoError(t, err)
	assert.NotZero(t, flags&x509chain.BadCertExpired)
}

func TestMatchHostnameWildcard(t *testing.T) {
	_, leafDER := buildChain(t, "*.example.com")
	crt := &x509chain.Chain{}
	require.NoError(t, x509chain.ParseDER(crt, leafDER))

	assert.True(t, x509chain.MatchHostname(crt, "www.example.com"))
	assert.False(t, x509chain.MatchHostname(crt, "www.sub.example.com"))
}

func TestVerifyInvokesCallbackForRoot(t *testing.T) {
	rootDER, leafDER := buildChain(t, "www.example.com")

	chain := &x509chain.Chain{}
	require.NoError(t, x509chain.ParseDER(chain, leafDER))
	roots := &x509chain.Chain{}
	require.NoError(t, x509chain.ParseDER(roots, rootDER))

	var depths []int
	_, err := x509chain.Verify(chain, x509chain.VerifyOptions{
		Roots: roots,
		Callback: func(crt *x509chain.Certificate, depth int, flags x509chain.Flag) error {
			depths = append(depths, depth)
			return nil
		},
	})
	require.NoError(t, err)
	// One call for the leaf at depth 0, plus one more for the root itself
	// at depth+1 -- the root is never anyone's child so the main walk
	// never visits it, but it still owes the callback a report of its
	// own expiry/future window.
	assert.Equal(t, []int{0, 1}, depths)
}

func TestVerifyRevokedViaCRL(t *testing.T) {
	rootKey, err := testcerts.GenerateKey()
	require.NoError(t, err)
	root := testcerts.NewBuilder("Test Root CA")
	root.IsCA = true
	root.KeyUsage = x509.KeyUsageCertSign | x509.KeyUsageCRLSign
	rootDER, err := root.Build(&rootKey.PublicKey, rootKey, nil)
	require.NoError(t, err)

	leafKey, err := testcerts.GenerateKey()
	require.NoError(t, err)
	leaf := testcerts.NewBuilder("www.example.com")
	leaf.Issuer = root.Subject
	leaf.DNSNames = []string{"www.example.com"}
	leafDER, err := leaf.Build(&leafKey.PublicKey, rootKey, root.Template())
	require.NoError(t, err)

	// The CRL issuer must carry a SubjectKeyId, which the parsed root has
	// and a bare Template() does not.
	rootCert, err := x509.ParseCertificate(rootDER)
	require.NoError(t, err)
	crlDER, err := testcerts.BuildCRL(rootCert, rootKey,
		[]pkix.RevokedCertificate{{SerialNumber: leaf.Serial, RevocationTime: time.Now()}},
		time.Now(), time.Now().Add(time.Hour))
	require.NoError(t, err)

	chain := &x509chain.Chain{}
	require.NoError(t, x509chain.ParseDER(chain, leafDER))
	roots := &x509chain.Chain{}
	require.NoError(t, x509chain.ParseDER(roots, rootDER))
	crl := &x509chain.CRL{}
	require.NoError(t, x509chain.ParseCRLDER(crl, crlDER))

	flags, err := x509chain.Verify(chain, x509chain.VerifyOptions{Roots: roots, CRLs: crl})
	require.NoError(t, err)
	assert.NotZero(t, flags&x509chain.BadCertRevoked)
}

func TestVerifyEnforceKeyUsage(t *testing.T) {
	rootDER, leafDER := buildChain(t, "www.example.com")
	roots := &x509chain.Chain{}
	require.NoError(t, x509chain.ParseDER(roots, rootDER))

	// buildChain's leaf only declares digitalSignature -- asking for
	// keyCertSign must fail.
	failing := &x509chain.Chain{}
	require.NoError(t, x509chain.ParseDER(failing, leafDER))
	flags, err := x509chain.Verify(failing, x509chain.VerifyOptions{
		Roots:           roots,
		EnforceKeyUsage: x509chain.KeyUsageKeyCertSign,
	})
	require.NoError(t, err)
	assert.NotZero(t, flags&x509chain.BadCertKeyUsage)

	// Asking only for the bit the leaf actually declares must succeed.
	passing := &x509chain.Chain{}
	require.NoError(t, x509chain.ParseDER(passing, leafDER))
	flags, err = x509chain.Verify(passing, x509chain.VerifyOptions{
		Roots:           roots,
		EnforceKeyUsage: x509chain.KeyUsageDigitalSignature,
	})
	require.NoError(t, err)
	assert.Zero(t, flags&x509chain.BadCertKeyUsage)
}

// TestVerifyPathLenDiscountForCrossSignedRoot builds a leaf signed by
// oldRoot, presents oldRoot as the last link of the chain, and trusts
// newRoot -- a different key pair under oldRoot's exact subject DN that
// cross-signs oldRoot, the cross-signed/reissued-root scenario. newRoot's
// pathLenConstraint of 0 (stored as MaxPathLen 1) is one unit too strict
// for the hop from newRoot to oldRoot at depth 1 unless the self-match
// discount in enforcePathLen applies.
func TestVerifyPathLenDiscountForCrossSignedRoot(t *testing.T) {
	newRootKey, err := testcerts.GenerateKey()
	require.NoError(t, err)
	newRoot := testcerts.NewBuilder("Test Root CA")
	newRoot.IsCA = true
	newRoot.HasPathLen = true
	newRoot.MaxPathLen = 0
	newRootDER, err := newRoot.Build(&newRootKey.PublicKey, newRootKey, nil)
	require.NoError(t, err)

	oldRootKey, err := testcerts.GenerateKey()
	require.NoError(t, err)
	oldRoot := testcerts.NewBuilder("Test Root CA")
	oldRoot.IsCA = true
	oldRootDER, err := oldRoot.Build(&oldRootKey.PublicKey, newRootKey, newRoot.Template())
	require.NoError(t, err)

	leafKey, err := testcerts.GenerateKey()
	require.NoError(t, err)
	leaf := testcerts.NewBuilder("www.example.com")
	leaf.Issuer = oldRoot.Subject
	leafDER, err := leaf.Build(&leafKey.PublicKey, oldRootKey, oldRoot.Template())
	require.NoError(t, err)

	chain := &x509chain.Chain{}
	require.NoError(t, x509chain.ParseDER(chain, leafDER))
	require.NoError(t, x509chain.ParseDER(chain, oldRootDER))

	roots := &x509chain.Chain{}
	require.NoError(t, x509chain.ParseDER(roots, newRootDER))

	flags, err := x509chain.Verify(chain, x509chain.VerifyOptions{Roots: roots})
	require.NoError(t, err)
	assert.Zero(t, flags&x509chain.BadCertNotTrusted)
}
