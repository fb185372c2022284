package gotds

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPacketHeaderRoundTrip(t *testing.T) {
	h := packetHeader{
		Type:     packetBulkLoad,
		Status:   statusEOM,
		Length:   1234,
		SPID:     7,
		PacketID: 3,
		Window:   0,
	}
	marshaled := h.marshal()
	assert.Equal(t, byte(packetBulkLoad), marshaled[0])
	assert.Equal(t, byte(statusEOM), marshaled[1])

	got := unmarshalHeader(marshaled[:])
	assert.Equal(t, h, got)
}

func TestPacketHeaderStatusBits(t *testing.T) {
	eom := packetHeader{Status: statusEOM}
	assert.True(t, eom.isEOM())
	assert.False(t, eom.isIgnore())

	ignoreOnly := packetHeader{Status: statusIgnore}
	assert.False(t, ignoreOnly.isIgnore(), "IGNORE without EOM is not a complete discard signal")

	ignoreAndEOM := packetHeader{Status: statusIgnore | statusEOM}
	assert.True(t, ignoreAndEOM.isIgnore())

	reset := packetHeader{Status: statusResetConnection}
	assert.True(t, reset.isResetConnection())
}
