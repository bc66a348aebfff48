package protocol

import (
	"bytes"
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestRoundTripPrimitives(t *testing.T) {
	id := uuid.MustParse("9f3c42a1-57d4-4e0c-b2ce-8e4f0f27c001")
	pos := GlobalPos{Dim: -1, X: 120, Y: 64, Z: -3055}

	var w Buffer
	w.WriteU8(7)
	w.WriteBool(true)
	w.WriteU16(0xbeef)
	w.WriteI32(-12345)
	w.WriteI64(1 << 40)
	w.WriteVarInt(300)
	w.WriteVarInt(-1)
	if err := w.WriteString("Refined Network", MaxNameBytes); err != nil {
		t.Fatalf("write string: %v", err)
	}
	w.WriteUUID(id)
	w.WritePos(pos)
	if err := w.WriteBlob([]byte{0x01, 0x02, 0x03}); err != nil {
		t.Fatalf("write blob: %v", err)
	}

	r := NewBuffer(w.Bytes())
	if v, err := r.U8(); err != nil || v != 7 {
		t.Fatalf("u8: %v %v", v, err)
	}
	if v, err := r.Bool(); err != nil || !v {
		t.Fatalf("bool: %v %v", v, err)
	}
	if v, err := r.U16(); err != nil || v != 0xbeef {
		t.Fatalf("u16: %v %v", v, err)
	}
	if v, err := r.I32(); err != nil || v != -12345 {
		t.Fatalf("i32: %v %v", v, err)
	}
	if v, err := r.I64(); err != nil || v != 1<<40 {
		t.Fatalf("i64: %v %v", v, err)
	}
	if v, err := r.VarInt(); err != nil || v != 300 {
		t.Fatalf("varint: %v %v", v, err)
	}
	if v, err := r.VarInt(); err != nil || v != -1 {
		t.Fatalf("negative varint: %v %v", v, err)
	}
	if v, err := r.String(MaxNameBytes); err != nil || v != "Refined Network" {
		t.Fatalf("string: %q %v", v, err)
	}
	if v, err := r.UUID(); err != nil || v != id {
		t.Fatalf("uuid: %v %v", v, err)
	}
	if v, err := r.Pos(); err != nil || v != pos {
		t.Fatalf("pos: %v %v", v, err)
	}
	if v, err := r.Blob(); err != nil || !bytes.Equal(v, []byte{0x01, 0x02, 0x03}) {
		t.Fatalf("blob: %v %v", v, err)
	}
	if err := r.ExpectEOF(); err != nil {
		t.Fatalf("expected clean eof: %v", err)
	}
}

func TestTrailingBytesRejected(t *testing.T) {
	var w Buffer
	w.WriteVarInt(42)
	w.WriteU8(0xff)

	r := NewBuffer(w.Bytes())
	if _, err := r.VarInt(); err != nil {
		t.Fatalf("varint: %v", err)
	}
	if err := r.ExpectEOF(); !errors.Is(err, ErrTrailingBytes) {
		t.Fatalf("expected ErrTrailingBytes, got %v", err)
	}
}

func TestStringCapEnforced(t *testing.T) {
	long := make([]byte, MaxNameBytes+1)
	for i := range long {
		long[i] = 'a'
	}

	var w Buffer
	if err := w.WriteString(string(long), MaxNameBytes); !errors.Is(err, ErrStringTooLong) {
		t.Fatalf("expected ErrStringTooLong on write, got %v", err)
	}

	// A hostile length prefix must fail on read as well.
	var hostile Buffer
	hostile.WriteVarInt(int32(len(long)))
	hostile.buf = append(hostile.buf, long...)
	r := NewBuffer(hostile.Bytes())
	if _, err := r.String(MaxNameBytes); !errors.Is(err, ErrStringTooLong) {
		t.Fatalf("expected ErrStringTooLong on read, got %v", err)
	}
}

func TestVarIntBounds(t *testing.T) {
	for _, v := range []int32{0, 1, 127, 128, 16383, 16384, 1<<31 - 1, -1, -2147483648} {
		var w Buffer
		w.WriteVarInt(v)
		r := NewBuffer(w.Bytes())
		got, err := r.VarInt()
		if err != nil {
			t.Fatalf("varint %d: %v", v, err)
		}
		if got != v {
			t.Fatalf("varint %d: got %d", v, got)
		}
		if err := r.ExpectEOF(); err != nil {
			t.Fatalf("varint %d: %v", v, err)
		}
	}

	r := NewBuffer([]byte{0x80, 0x80, 0x80, 0x80, 0x80, 0x01})
	if _, err := r.VarInt(); !errors.Is(err, ErrVarIntTooLong) {
		t.Fatalf("expected ErrVarIntTooLong, got %v", err)
	}
}

func TestTruncatedReads(t *testing.T) {
	r := NewBuffer([]byte{0x01})
	if _, err := r.I32(); !errors.Is(err, ErrTruncated) {
		t.Fatalf("expected ErrTruncated, got %v", err)
	}

	var w Buffer
	if err := w.WriteString("abcdef", MaxNameBytes); err != nil {
		t.Fatalf("write: %v", err)
	}
	short := w.Bytes()[:3]
	if _, err := NewBuffer(short).String(MaxNameBytes); !errors.Is(err, ErrTruncated) {
		t.Fatalf("expected ErrTruncated, got %v", err)
	}
}
