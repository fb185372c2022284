package gotds

import "bytes"

// fakeTransport is an in-memory io.ReadWriter standing in for a TCP/TLS
// socket in tests: writes accumulate in ToServer, reads are served from
// FromServer. Both sides are plain byte queues; callers populate
// FromServer with already-packetized bytes before reading.
type fakeTransport struct {
	ToServer   bytes.Buffer
	FromServer bytes.Buffer
}

func (f *fakeTransport) Write(p []byte) (int, error) { return f.ToServer.Write(p) }
func (f *fakeTransport) Read(p []byte) (int, error)  { return f.FromServer.Read(p) }

// packetize wraps payload in a single EOM-marked packet of the given type.
func packetize(pt packetType, payload []byte) []byte {
	h := packetHeader{
		Type:   pt,
		Status: statusEOM,
		Length: uint16(packetHeaderSize + len(payload)),
	}
	hdr := h.marshal()
	buf := make([]byte, 0, len(hdr)+len(payload))
	buf = append(buf, hdr[:]...)
	buf = append(buf, payload...)
	return buf
}

// doneTokenBytes builds a DONE token payload (tag included).
func doneTokenBytes(status doneStatus, rowCount uint64) []byte {
	buf := NewTrackingBuffer(13)
	buf.WriteByte(byte(tokenDone))
	buf.WriteUint16LE(uint16(status))
	buf.WriteUint16LE(0)
	buf.WriteUint64LE(rowCount)
	return buf.Bytes()
}
