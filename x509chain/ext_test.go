package x509chain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBasicConstraintsEmpty(t *testing.T) {
	// SEQUENCE {} -- no cA, no pathLenConstraint.
	caIsTrue, maxPathLen, err := parseBasicConstraints([]byte{0x30, 0x00})
	require.NoError(t, err)
	assert.False(t, caIsTrue)
	assert.Equal(t, 0, maxPathLen)
}

func TestParseBasicConstraintsCAWithPathLen(t *testing.T) {
	// SEQUENCE { BOOLEAN true, INTEGER 2 }
	body := []byte{0x30, 0x06, 0x01, 0x01, 0xff, 0x02, 0x01, 0x02}
	caIsTrue, maxPathLen, err := parseBasicConstraints(body)
	require.NoError(t, err)
	assert.True(t, caIsTrue)
	assert.Equal(t, 3, maxPathLen) // stored as pathLenConstraint + 1
}

func TestParseBasicConstraintsTolerateIntegerCA(t *testing.T) {
	// SEQUENCE { INTEGER 1 } -- some encoders mis-encode cA as INTEGER.
	body := []byte{0x30, 0x03, 0x02, 0x01, 0x01}
	caIsTrue, _, err := parseBasicConstraints(body)
	require.NoError(t, err)
	assert.True(t, caIsTrue)
}

func TestParseBasicConstraintsTrailingBytes(t *testing.T) {
	// SEQUENCE { BOOLEAN true, INTEGER 1, INTEGER 1 } -- extra trailing field.
	body := []byte{0x30, 0x09, 0x01, 0x01, 0xff, 0x02, 0x01, 0x01, 0x02, 0x01, 0x01}
	_, _, err := parseBasicConstraints(body)
	assert.Error(t, err)
}

func TestParseBitMaskEmpty(t *testing.T) {
	// BIT STRING with zero content bytes.
	_, err := parseBitMask([]byte{0x03, 0x01, 0x00})
	assert.Error(t, err)
}

func TestParseSubjectAltNameFiltersNonDNS(t *testing.T) {
	// GeneralNames SEQUENCE { [2] dNSName "a", [1] rfc822Name "b" }
	body := []byte{
		0x30, 0x06,
		0x82, 0x01, 'a',
		0x81, 0x01, 'b',
	}
	names, err := parseSubjectAltName(body)
	require.NoError(t, err)
	require.Len(t, names, 1)
	assert.Equal(t, []byte("a"), names[0])
}

func TestParseExtKeyUsageRequiresAtLeastOne(t *testing.T) {
	_, err := parseExtKeyUsage([]byte{0x30, 0x00})
	assert.Error(t, err)
}
