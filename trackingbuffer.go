package gotds

import (
	"encoding/binary"
	"math"
)

// TrackingBuffer is a growable byte sink with a write cursor. It has
// no failure modes besides allocation failure: callers never need to check
// an error return from the primitive writers since a short write into its
// own backing array cannot happen.
type TrackingBuffer struct {
	buf []byte
}

// NewTrackingBuffer returns an empty buffer with capacity hint.
func NewTrackingBuffer(capHint int) *TrackingBuffer {
	return &TrackingBuffer{buf: make([]byte, 0, capHint)}
}

// Bytes returns the accumulated bytes. The returned slice aliases the
// buffer's backing array and must not be retained across further writes.
func (b *TrackingBuffer) Bytes() []byte { return b.buf }

// Len reports the number of bytes written so far.
func (b *TrackingBuffer) Len() int { return len(b.buf) }

// Reset discards all written bytes without releasing capacity.
func (b *TrackingBuffer) Reset() { b.buf = b.buf[:0] }

func (b *TrackingBuffer) grow(n int) []byte {
	l := len(b.buf)
	if cap(b.buf)-l < n {
		newCap := (cap(b.buf) + n) * 2
		grown := make([]byte, l, newCap)
		copy(grown, b.buf)
		b.buf = grown
	}
	b.buf = b.buf[:l+n]
	return b.buf[l : l+n]
}

func (b *TrackingBuffer) WriteByte(v byte) error {
	b.grow(1)[0] = v
	return nil
}

func (b *TrackingBuffer) WriteBytes(p []byte) (int, error) {
	copy(b.grow(len(p)), p)
	return len(p), nil
}

func (b *TrackingBuffer) WriteUint16LE(v uint16) {
	binary.LittleEndian.PutUint16(b.grow(2), v)
}

func (b *TrackingBuffer) WriteUint32LE(v uint32) {
	binary.LittleEndian.PutUint32(b.grow(4), v)
}

func (b *TrackingBuffer) WriteUint64LE(v uint64) {
	binary.LittleEndian.PutUint64(b.grow(8), v)
}

func (b *TrackingBuffer) WriteInt8(v int8)   { b.WriteByte(byte(v)) }
func (b *TrackingBuffer) WriteInt16LE(v int16) { b.WriteUint16LE(uint16(v)) }
func (b *TrackingBuffer) WriteInt32LE(v int32) { b.WriteUint32LE(uint32(v)) }
func (b *TrackingBuffer) WriteInt64LE(v int64) { b.WriteUint64LE(uint64(v)) }

func (b *TrackingBuffer) WriteFloat32LE(v float32) {
	b.WriteUint32LE(math.Float32bits(v))
}

func (b *TrackingBuffer) WriteFloat64LE(v float64) {
	b.WriteUint64LE(math.Float64bits(v))
}

// WriteBVarChar writes a B_VARCHAR: a one-byte character count followed by
// that many UCS-2 LE characters. s must already be at most 255 characters;
// callers validate that before encoding.
func (b *TrackingBuffer) WriteBVarChar(s string) error {
	encoded, err := encodeUCS2(s)
	if err != nil {
		return err
	}
	n := len(encoded) / 2
	if n > 0xff {
		return &ProtocolError{Msg: "BVARCHAR character count exceeds 255"}
	}
	b.WriteByte(byte(n))
	b.WriteBytes(encoded)
	return nil
}

// WriteUSVarChar writes a US_VARCHAR: a two-byte character count followed by
// that many UCS-2 LE characters.
func (b *TrackingBuffer) WriteUSVarChar(s string) error {
	encoded, err := encodeUCS2(s)
	if err != nil {
		return err
	}
	n := len(encoded) / 2
	if n > 0xffff {
		return &ProtocolError{Msg: "USVARCHAR character count exceeds 65535"}
	}
	b.WriteUint16LE(uint16(n))
	b.WriteBytes(encoded)
	return nil
}
