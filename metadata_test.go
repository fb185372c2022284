package gotds

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestColMetadataDecode1024IntColumns is the driver spec's invariant 8:
// 1024 Int columns, each carrying userType=2, flags=3, colName="name",
// decode to exactly 1024 descriptors with those values.
func TestColMetadataDecode1024IntColumns(t *testing.T) {
	const n = 1024

	buf := NewTrackingBuffer(n * 16)
	buf.WriteUint16LE(n)
	for i := 0; i < n; i++ {
		buf.WriteUint32LE(2) // userType
		buf.WriteUint16LE(3) // flags
		buf.WriteByte(byte(idInt))
		require.NoError(t, buf.WriteBVarChar("name"))
	}

	transport := &fakeTransport{}
	transport.FromServer.Write(packetize(packetReply, buf.Bytes()))

	// The payload is one 16394-byte packet, so the framer needs the largest
	// legal packet size to accept it.
	framer := NewPacketFramer(transport, 32767, nil)
	require.NoError(t, framer.BeginRead(context.Background()))
	parser := NewStreamParser(framer)

	tok, err := parser.readColMetadataVersion(TDS74)
	require.NoError(t, err)
	require.Len(t, tok.Columns, n)
	for _, col := range tok.Columns {
		require.Equal(t, "name", col.Name)
		require.True(t, col.Nullable) // flags bit 0 set
		require.Equal(t, idInt, col.Type.ID)
		require.EqualValues(t, 2, col.UserType)
	}
}
