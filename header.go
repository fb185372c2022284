package gotds

import "encoding/binary"

// packetHeader is the 8-byte header that precedes every TDS packet payload.
// Length and SPID are transmitted big-endian; multi-byte fields inside the
// payload are little-endian.
type packetHeader struct {
	Type     packetType
	Status   packetStatus
	Length   uint16
	SPID     uint16
	PacketID uint8
	Window   uint8
}

const packetHeaderSize = 8

type packetType uint8

const (
	packetSQLBatch   packetType = 1
	packetRPC        packetType = 3
	packetReply      packetType = 4
	packetCancel     packetType = 6
	packetBulkLoad   packetType = 7
	packetTransMgr   packetType = 14
	packetLogin7     packetType = 16
	packetSSPI       packetType = 17
	packetPrelogin   packetType = 18
)

type packetStatus uint8

const (
	statusNormal            packetStatus = 0x00
	statusEOM               packetStatus = 0x01
	statusIgnore            packetStatus = 0x02
	statusResetConnection   packetStatus = 0x08
	statusResetConnSkipTran packetStatus = 0x10
)

func (h packetHeader) isEOM() bool { return h.Status&statusEOM != 0 }
func (h packetHeader) isIgnore() bool {
	return h.Status&statusIgnore != 0 && h.Status&statusEOM != 0
}
func (h packetHeader) isResetConnection() bool { return h.Status&statusResetConnection != 0 }

func (h packetHeader) marshal() [packetHeaderSize]byte {
	var buf [packetHeaderSize]byte
	buf[0] = byte(h.Type)
	buf[1] = byte(h.Status)
	binary.BigEndian.PutUint16(buf[2:4], h.Length)
	binary.BigEndian.PutUint16(buf[4:6], h.SPID)
	buf[6] = h.PacketID
	buf[7] = h.Window
	return buf
}

func unmarshalHeader(buf []byte) packetHeader {
	return packetHeader{
		Type:     packetType(buf[0]),
		Status:   packetStatus(buf[1]),
		Length:   binary.BigEndian.Uint16(buf[2:4]),
		SPID:     binary.BigEndian.Uint16(buf[4:6]),
		PacketID: buf[6],
		Window:   buf[7],
	}
}
