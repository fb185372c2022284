package gotds

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackingBufferPrimitiveWriters(t *testing.T) {
	buf := NewTrackingBuffer(4)
	buf.WriteByte(0x01)
	buf.WriteUint16LE(0x0203)
	buf.WriteUint32LE(0x04050607)

	got := buf.Bytes()
	assert.Equal(t, []byte{0x01, 0x03, 0x02, 0x07, 0x06, 0x05, 0x04}, got)
}

func TestTrackingBufferGrowsPastInitialCapacity(t *testing.T) {
	buf := NewTrackingBuffer(1)
	for i := 0; i < 1000; i++ {
		buf.WriteByte(byte(i))
	}
	assert.Equal(t, 1000, buf.Len())
	for i := 0; i < 1000; i++ {
		assert.Equal(t, byte(i), buf.Bytes()[i])
	}
}

func TestTrackingBufferBVarCharRoundTrip(t *testing.T) {
	buf := NewTrackingBuffer(16)
	require.NoError(t, buf.WriteBVarChar("hello"))

	b := buf.Bytes()
	require.Equal(t, byte(5), b[0])
	decoded, err := decodeUCS2(b[1:])
	require.NoError(t, err)
	assert.Equal(t, "hello", decoded)
}

func TestTrackingBufferUSVarCharRoundTrip(t *testing.T) {
	buf := NewTrackingBuffer(16)
	require.NoError(t, buf.WriteUSVarChar("wide string"))

	b := buf.Bytes()
	n := uint16(b[0]) | uint16(b[1])<<8
	assert.EqualValues(t, len("wide string"), n)
	decoded, err := decodeUCS2(b[2:])
	require.NoError(t, err)
	assert.Equal(t, "wide string", decoded)
}
