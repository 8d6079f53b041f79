package dex

import (
	"errors"
	"testing"

	"github.com/dexbridge/dexscan/internal/dex/dextest"
)

func TestULEB128RoundTrip(t *testing.T) {
	values := []uint32{
		0, 1, 0x7f, 0x80, 0xff, 0x100, 0x3fff, 0x4000,
		0x1fffff, 0x200000, 0xfffffff, 0x10000000, 0xffffffff,
	}

	for _, v := range values {
		enc := dextest.ULEB(v)
		r := NewReader(enc)

		got, n, err := r.ULEB128(0)
		if err != nil {
			t.Fatalf("ULEB128(%#x): %v", v, err)
		}
		if got != v {
			t.Errorf("ULEB128(%#x) = %#x", v, got)
		}
		if n != uint32(len(enc)) {
			t.Errorf("ULEB128(%#x) consumed %d bytes, encoding is %d", v, n, len(enc))
		}

		// The encoder must be minimal for the round trip to mean anything.
		want := uint32(1)
		for x := v; x >= 0x80; x >>= 7 {
			want++
		}
		if uint32(len(enc)) != want {
			t.Errorf("ULEB(%#x) is %d bytes, want %d", v, len(enc), want)
		}
	}
}

func TestULEB128Malformed(t *testing.T) {
	// Five continuation bytes never terminate a 32-bit value.
	r := NewReader([]byte{0x80, 0x80, 0x80, 0x80, 0x80, 0x01})
	if _, _, err := r.ULEB128(0); !errors.Is(err, ErrMalformedVarint) {
		t.Errorf("err = %v, want ErrMalformedVarint", err)
	}
}

func TestULEB128Truncated(t *testing.T) {
	r := NewReader([]byte{0x80, 0x80})
	if _, _, err := r.ULEB128(0); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("err = %v, want ErrOutOfBounds", err)
	}
}

func TestFixedWidthBounds(t *testing.T) {
	r := NewReader([]byte{1, 2, 3, 4})

	if v, err := r.U32(0); err != nil || v != 0x04030201 {
		t.Errorf("U32(0) = %#x, %v", v, err)
	}
	if v, err := r.U16(2); err != nil || v != 0x0403 {
		t.Errorf("U16(2) = %#x, %v", v, err)
	}
	if _, err := r.U32(1); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("U32(1) err = %v, want ErrOutOfBounds", err)
	}
	if _, err := r.U16(3); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("U16(3) err = %v, want ErrOutOfBounds", err)
	}
	// Offsets near the uint32 ceiling must not wrap into range.
	if _, err := r.U32(0xfffffffe); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("U32(0xfffffffe) err = %v, want ErrOutOfBounds", err)
	}
}

func TestCString(t *testing.T) {
	r := NewReader([]byte("hello\x00world\x00"))

	s, err := r.CString(0)
	if err != nil || s != "hello" {
		t.Errorf("CString(0) = %q, %v", s, err)
	}
	s, err = r.CString(6)
	if err != nil || s != "world" {
		t.Errorf("CString(6) = %q, %v", s, err)
	}
	if _, err := r.CString(100); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("CString(100) err = %v, want ErrOutOfBounds", err)
	}

	// Unterminated data decodes to the rest of the buffer.
	r = NewReader([]byte("tail"))
	if s, err := r.CString(0); err != nil || s != "tail" {
		t.Errorf("CString unterminated = %q, %v", s, err)
	}
}
