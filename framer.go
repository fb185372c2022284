package gotds

import (
	"context"
	"io"

	"github.com/sq1dr/gotds/msdsn"
)

// PacketFramer turns a byte stream into TDS packets of the negotiated size
// on the way out, and turns a sequence of packets back into a byte stream on
// the way in, stopping at message boundaries (EOM).
type PacketFramer struct {
	transport io.ReadWriter
	logger    ContextLogger
	packetSize uint16

	// outbound
	outBuf    []byte
	outPos    int
	outPktID  uint8
	outType   packetType

	// inbound
	inBuf   []byte
	inPos   int
	inSize  int
	inFinal bool
	header  packetHeader
}

// NewPacketFramer wraps transport with the given negotiated packet size.
// logger may be nil, in which case diagnostics are discarded.
func NewPacketFramer(transport io.ReadWriter, packetSize uint16, logger ContextLogger) *PacketFramer {
	if logger == nil {
		logger = nopLogger{}
	}
	return &PacketFramer{
		transport:  transport,
		logger:     logger,
		packetSize: packetSize,
		outBuf:     make([]byte, packetSize),
		inBuf:      make([]byte, packetSize),
		outPktID:   1,
	}
}

// BeginMessage starts a new outbound message of the given packet type,
// resetting the write cursor to just past where the header will go.
func (f *PacketFramer) BeginMessage(pt packetType) {
	f.outType = pt
	f.outPos = packetHeaderSize
}

// Write buffers p into the current packet, flushing full packets to the
// transport as they fill rather than per byte.
func (f *PacketFramer) Write(p []byte) (int, error) {
	written := 0
	for len(p) > 0 {
		room := int(f.packetSize) - f.outPos
		n := copy(f.outBuf[f.outPos:], p[:min(room, len(p))])
		f.outPos += n
		p = p[n:]
		written += n
		if f.outPos == int(f.packetSize) {
			if err := f.flush(false); err != nil {
				return written, err
			}
		}
	}
	return written, nil
}

// EndMessage flushes the final, possibly short, packet with the EOM status
// bit set and resets the packet id sequence for the next message.
func (f *PacketFramer) EndMessage(ctx context.Context) error {
	if err := f.flush(true); err != nil {
		return err
	}
	f.outPktID = 1
	f.logger.Log(ctx, msdsn.LogPackets, "tds: flushed final packet")
	return nil
}

func (f *PacketFramer) flush(final bool) error {
	status := statusNormal
	if final {
		status = statusEOM
	}
	h := packetHeader{
		Type:     f.outType,
		Status:   status,
		Length:   uint16(f.outPos),
		SPID:     0,
		PacketID: f.outPktID,
		Window:   0,
	}
	hdr := h.marshal()
	copy(f.outBuf[:packetHeaderSize], hdr[:])
	if _, err := f.transport.Write(f.outBuf[:f.outPos]); err != nil {
		return &TransportError{Err: err}
	}
	f.outPktID++
	f.outPos = packetHeaderSize
	return nil
}

// nextPacket reads one full packet from the transport into inBuf.
func (f *PacketFramer) nextPacket(ctx context.Context) error {
	var hdr [packetHeaderSize]byte
	if _, err := io.ReadFull(f.transport, hdr[:]); err != nil {
		return &TransportError{Err: err}
	}
	f.header = unmarshalHeader(hdr[:])
	if int(f.header.Length) < packetHeaderSize || int(f.header.Length) > len(f.inBuf) {
		return &ProtocolError{Msg: "packet length out of range"}
	}
	payloadLen := int(f.header.Length) - packetHeaderSize
	if _, err := io.ReadFull(f.transport, f.inBuf[:payloadLen]); err != nil {
		return &TransportError{Err: err}
	}
	f.inPos = 0
	f.inSize = payloadLen
	f.inFinal = f.header.isEOM()
	f.logger.Log(ctx, msdsn.LogPackets, "tds: read packet")
	if f.header.isIgnore() {
		// Ignored packets carry no usable payload; treat as an immediate
		// end of a (discarded) message so the caller doesn't stall.
		f.inSize = 0
	}
	return nil
}

// BeginRead primes the inbound side for a new message.
func (f *PacketFramer) BeginRead(ctx context.Context) error {
	f.inPos, f.inSize, f.inFinal = 0, 0, false
	return f.nextPacket(ctx)
}

// Read implements io.Reader over the current message, pulling fresh packets
// from the transport as needed and returning io.EOF once the EOM-flagged
// packet has been fully consumed.
func (f *PacketFramer) Read(p []byte) (int, error) {
	return f.ReadContext(context.Background(), p)
}

// ReadContext is Read with an explicit context, used by the stream parser
// when it needs to pull more bytes mid-token.
func (f *PacketFramer) ReadContext(ctx context.Context, p []byte) (int, error) {
	for f.inPos == f.inSize {
		if f.inFinal {
			return 0, io.EOF
		}
		if err := f.nextPacket(ctx); err != nil {
			return 0, err
		}
	}
	n := copy(p, f.inBuf[f.inPos:f.inSize])
	f.inPos += n
	return n, nil
}
