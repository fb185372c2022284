package gotds

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestCollationS7 checks a worked example against a known SQL Server
// en-US UTF8 collation: 09 04 e0 24 00 decodes to lcid 0x0409, sortId 0,
// version 2, UTF8 true, ignoreAccent/ignoreKana/ignoreWidth true, codepage
// "utf8".
func TestCollationS7(t *testing.T) {
	b := []byte{0x09, 0x04, 0xe0, 0x24, 0x00}
	c, err := parseCollation(b)
	require.NoError(t, err)

	assert.EqualValues(t, 0x0409, c.LCID)
	assert.EqualValues(t, 0, c.SortID)
	assert.EqualValues(t, 2, c.Version)
	assert.True(t, c.UTF8)
	assert.True(t, c.IgnoreAccent)
	assert.True(t, c.IgnoreKana)
	assert.True(t, c.IgnoreWidth)
	assert.Equal(t, "utf8", c.Codepage)
}

func TestCollationRejectsWrongLength(t *testing.T) {
	_, err := parseCollation([]byte{1, 2, 3})
	assert.Error(t, err)
	var protoErr *ProtocolError
	assert.ErrorAs(t, err, &protoErr)
}

func TestMarshalCollationRoundTripsParseCollation(t *testing.T) {
	b := []byte{0x09, 0x04, 0xe0, 0x24, 0x00}
	c, err := parseCollation(b)
	require.NoError(t, err)

	marshaled := marshalCollation(c)
	assert.Equal(t, b, marshaled[:])

	roundTripped, err := parseCollation(marshaled[:])
	require.NoError(t, err)
	assert.Equal(t, c, roundTripped)
}

func TestCollationFallsBackToCP1252(t *testing.T) {
	// lcid 0 (unknown), sortId 0 (unknown), no UTF8 flag.
	b := []byte{0x00, 0x00, 0x00, 0x00, 0x00}
	c, err := parseCollation(b)
	require.NoError(t, err)
	assert.Equal(t, "CP1252", c.Codepage)
}
