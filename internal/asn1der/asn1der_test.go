package asn1der

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursorReadElement(t *testing.T) {
	// SEQUENCE { INTEGER 5 }
	der := []byte{0x30, 0x03, 0x02, 0x01, 0x05}
	c := NewCursor(der)

	raw, body, err := c.ReadElement(TagSequence)
	require.NoError(t, err)
	assert.Equal(t, der, raw)
	assert.True(t, c.Empty())

	v, err := body.ReadInt()
	require.NoError(t, err)
	assert.Equal(t, 5, v)
	assert.True(t, body.Empty())
}

func TestCursorReadElementWrongTag(t *testing.T) {
	der := []byte{0x02, 0x01, 0x05}
	c := NewCursor(der)
	_, _, err := c.ReadElement(TagSequence)
	require.Error(t, err)
}

func TestCursorReadOID(t *testing.T) {
	// OBJECT IDENTIFIER 2.5.29.19 (basicConstraints)
	der := []byte{0x06, 0x03, 0x55, 0x1d, 0x13}
	c := NewCursor(der)
	id, err := c.ReadOID()
	require.NoError(t, err)
	assert.Equal(t, []byte{0x55, 0x1d, 0x13}, id)
}

func TestCursorReadOptionalExplicit(t *testing.T) {
	// [0] EXPLICIT { INTEGER 2 }
	der := []byte{0xa0, 0x03, 0x02, 0x01, 0x02}
	c := NewCursor(der)
	inner, present, err := c.ReadOptionalExplicit(0)
	require.NoError(t, err)
	require.True(t, present)
	v, err := inner.ReadInt()
	require.NoError(t, err)
	assert.Equal(t, 2, v)

	c2 := NewCursor([]byte{0x02, 0x01, 0x02})
	_, present2, err := c2.ReadOptionalExplicit(0)
	require.NoError(t, err)
	assert.False(t, present2)
}

func TestCursorReadOptionalBoolean(t *testing.T) {
	der := []byte{0x01, 0x01, 0xff}
	c := NewCursor(der)
	v, present, err := c.ReadOptionalBoolean()
	require.NoError(t, err)
	require.True(t, present)
	assert.True(t, v)

	c2 := NewCursor([]byte{0x02, 0x01, 0x01})
	_, present2, err := c2.ReadOptionalBoolean()
	require.NoError(t, err)
	assert.False(t, present2)
}

func TestCursorReadBitString(t *testing.T) {
	// BIT STRING, 0 unused bits, content 0xa0 (digitalSignature|keyEncipherment)
	der := []byte{0x03, 0x02, 0x00, 0xa0}
	c := NewCursor(der)
	bits, err := c.ReadBitString()
	require.NoError(t, err)
	assert.Equal(t, []byte{0xa0}, bits)
}

func TestCursorReadTimeUTC(t *testing.T) {
	// UTCTime "230101000000Z"
	val := []byte("230101000000Z")
	der := append([]byte{0x17, byte(len(val))}, val...)
	c := NewCursor(der)
	tm, err := c.ReadTime()
	require.NoError(t, err)
	assert.Equal(t, 2023, tm.Year())
}

func TestCursorEmptyEnforced(t *testing.T) {
	// SEQUENCE with trailing content after reading one INTEGER.
	der := []byte{0x30, 0x06, 0x02, 0x01, 0x05, 0x02, 0x01, 0x06}
	c := NewCursor(der)
	_, body, err := c.ReadElement(TagSequence)
	require.NoError(t, err)

	_, err = body.ReadInt()
	require.NoError(t, err)
	assert.False(t, body.Empty())
}
