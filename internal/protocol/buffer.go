package protocol

import (
	"encoding/binary"
	"unicode/utf8"

	"github.com/google/uuid"
)

// MaxStringBytes caps every length-prefixed string on the wire. Names and
// passwords declare a tighter cap at their call sites.
const MaxStringBytes = 1024

// MaxBlobBytes caps opaque settings payloads. The codec frames their length
// only; their contents belong to the device layer.
const MaxBlobBytes = 64 * 1024

// GlobalPos addresses one device in the world.
type GlobalPos struct {
	Dim     int32
	X, Y, Z int32
}

// Buffer is a byte cursor over one message body. Writers append to the
// underlying slice; readers advance an offset and fail on underrun. A zero
// Buffer is a valid empty writer.
type Buffer struct {
	buf []byte
	off int
}

// NewBuffer wraps b for reading.
func NewBuffer(b []byte) *Buffer {
	return &Buffer{buf: b}
}

// Bytes returns the written body.
func (b *Buffer) Bytes() []byte {
	return b.buf
}

// Remaining reports unread bytes.
func (b *Buffer) Remaining() int {
	return len(b.buf) - b.off
}

// ExpectEOF asserts the cursor consumed the whole body. Leftover bytes mean
// the message shape did not match its declared fields and the connection is
// treated as violating protocol.
func (b *Buffer) ExpectEOF() error {
	if b.off != len(b.buf) {
		return ErrTrailingBytes
	}
	return nil
}

func (b *Buffer) WriteU8(v byte) {
	b.buf = append(b.buf, v)
}

func (b *Buffer) U8() (byte, error) {
	if b.Remaining() < 1 {
		return 0, ErrTruncated
	}
	v := b.buf[b.off]
	b.off++
	return v, nil
}

func (b *Buffer) WriteBool(v bool) {
	if v {
		b.WriteU8(1)
	} else {
		b.WriteU8(0)
	}
}

func (b *Buffer) Bool() (bool, error) {
	v, err := b.U8()
	if err != nil {
		return false, err
	}
	switch v {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, ErrInvalidBool
	}
}

func (b *Buffer) WriteU16(v uint16) {
	b.buf = binary.BigEndian.AppendUint16(b.buf, v)
}

func (b *Buffer) U16() (uint16, error) {
	if b.Remaining() < 2 {
		return 0, ErrTruncated
	}
	v := binary.BigEndian.Uint16(b.buf[b.off:])
	b.off += 2
	return v, nil
}

func (b *Buffer) WriteI32(v int32) {
	b.buf = binary.BigEndian.AppendUint32(b.buf, uint32(v))
}

func (b *Buffer) I32() (int32, error) {
	if b.Remaining() < 4 {
		return 0, ErrTruncated
	}
	v := int32(binary.BigEndian.Uint32(b.buf[b.off:]))
	b.off += 4
	return v, nil
}

func (b *Buffer) WriteI64(v int64) {
	b.buf = binary.BigEndian.AppendUint64(b.buf, uint64(v))
}

func (b *Buffer) I64() (int64, error) {
	if b.Remaining() < 8 {
		return 0, ErrTruncated
	}
	v := int64(binary.BigEndian.Uint64(b.buf[b.off:]))
	b.off += 8
	return v, nil
}

// WriteVarInt encodes v as unsigned LEB128 of its uint32 bit pattern,
// one to five bytes. Small non-negative values, the common case for ids and
// counts, take one byte.
func (b *Buffer) WriteVarInt(v int32) {
	u := uint32(v)
	for u >= 0x80 {
		b.buf = append(b.buf, byte(u)|0x80)
		u >>= 7
	}
	b.buf = append(b.buf, byte(u))
}

func (b *Buffer) VarInt() (int32, error) {
	var u uint32
	for shift := 0; shift < 35; shift += 7 {
		c, err := b.U8()
		if err != nil {
			return 0, err
		}
		u |= uint32(c&0x7f) << shift
		if c&0x80 == 0 {
			return int32(u), nil
		}
	}
	return 0, ErrVarIntTooLong
}

// WriteString writes s with a varint byte-length prefix. It refuses strings
// above max bytes; max itself must not exceed MaxStringBytes.
func (b *Buffer) WriteString(s string, max int) error {
	if max > MaxStringBytes {
		max = MaxStringBytes
	}
	if len(s) > max {
		return ErrStringTooLong
	}
	if !utf8.ValidString(s) {
		return ErrInvalidString
	}
	b.WriteVarInt(int32(len(s)))
	b.buf = append(b.buf, s...)
	return nil
}

func (b *Buffer) String(max int) (string, error) {
	if max > MaxStringBytes {
		max = MaxStringBytes
	}
	n, err := b.VarInt()
	if err != nil {
		return "", err
	}
	if n < 0 || int(n) > max {
		return "", ErrStringTooLong
	}
	if b.Remaining() < int(n) {
		return "", ErrTruncated
	}
	s := string(b.buf[b.off : b.off+int(n)])
	b.off += int(n)
	if !utf8.ValidString(s) {
		return "", ErrInvalidString
	}
	return s, nil
}

func (b *Buffer) WriteUUID(u uuid.UUID) {
	b.buf = append(b.buf, u[:]...)
}

func (b *Buffer) UUID() (uuid.UUID, error) {
	if b.Remaining() < 16 {
		return uuid.Nil, ErrTruncated
	}
	var u uuid.UUID
	copy(u[:], b.buf[b.off:])
	b.off += 16
	return u, nil
}

// PosMinBytes is the smallest wire size of a position: a one-byte dimension
// varint plus three fixed 32-bit coordinates. Batch decoders divide the
// remaining body by this before allocating.
const PosMinBytes = 13

func (b *Buffer) WritePos(p GlobalPos) {
	b.WriteVarInt(p.Dim)
	b.WriteI32(p.X)
	b.WriteI32(p.Y)
	b.WriteI32(p.Z)
}

func (b *Buffer) Pos() (GlobalPos, error) {
	dim, err := b.VarInt()
	if err != nil {
		return GlobalPos{}, err
	}
	x, err := b.I32()
	if err != nil {
		return GlobalPos{}, err
	}
	y, err := b.I32()
	if err != nil {
		return GlobalPos{}, err
	}
	z, err := b.I32()
	if err != nil {
		return GlobalPos{}, err
	}
	return GlobalPos{Dim: dim, X: x, Y: y, Z: z}, nil
}

// WriteBlob frames an opaque payload by length. The codec never inspects
// blob contents.
func (b *Buffer) WriteBlob(v []byte) error {
	if len(v) > MaxBlobBytes {
		return ErrBlobTooLarge
	}
	b.WriteVarInt(int32(len(v)))
	b.buf = append(b.buf, v...)
	return nil
}

func (b *Buffer) Blob() ([]byte, error) {
	n, err := b.VarInt()
	if err != nil {
		return nil, err
	}
	if n < 0 || n > MaxBlobBytes {
		return nil, ErrBlobTooLarge
	}
	if b.Remaining() < int(n) {
		return nil, ErrTruncated
	}
	out := make([]byte, n)
	copy(out, b.buf[b.off:])
	b.off += int(n)
	return out, nil
}

// WriteRaw appends bytes without any framing. Used for device-defined
// payload tails whose shape the codec does not know.
func (b *Buffer) WriteRaw(v []byte) {
	b.buf = append(b.buf, v...)
}

// Rest consumes and returns all unread bytes. Used for device-defined
// payload tails.
func (b *Buffer) Rest() []byte {
	out := make([]byte, b.Remaining())
	copy(out, b.buf[b.off:])
	b.off = len(b.buf)
	return out
}
