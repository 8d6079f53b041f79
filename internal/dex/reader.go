// Package dex decodes class and method metadata from DEX bytecode
// containers. See https://source.android.com/docs/core/runtime/dex-format
// for the format specification.
//
// The package recovers class names, method signatures and access flags
// only. Instruction bodies, fields, annotations and debug info are not
// decoded.
package dex

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Decode failure kinds. ErrMalformedFormat invalidates a whole buffer.
// ErrOutOfBounds and ErrMalformedVarint are fatal while the string/type
// tables are being built, but recoverable when raised inside a single
// class_data block (see DecodeClasses).
var (
	ErrMalformedFormat = errors.New("not a dex file")
	ErrOutOfBounds     = errors.New("read past end of buffer")
	ErrMalformedVarint = errors.New("uleb128 does not terminate")
)

// Reader provides bounds-checked reads over a DEX buffer. The buffer is
// never mutated and all reads are addressed by absolute offset, so a
// single Reader can serve interleaved table lookups.
type Reader struct {
	data []byte
}

// NewReader wraps data without copying it.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Len returns the buffer length in bytes.
func (r *Reader) Len() uint32 {
	return uint32(len(r.data))
}

func (r *Reader) bytes(off, n uint32) ([]byte, error) {
	if uint64(off)+uint64(n) > uint64(len(r.data)) {
		return nil, fmt.Errorf("%d bytes at offset %d: %w", n, off, ErrOutOfBounds)
	}
	return r.data[off : off+n], nil
}

// U16 reads a little-endian uint16 at off.
func (r *Reader) U16(off uint32) (uint16, error) {
	b, err := r.bytes(off, 2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

// U32 reads a little-endian uint32 at off.
func (r *Reader) U32(off uint32) (uint32, error) {
	b, err := r.bytes(off, 4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// ULEB128 decodes an unsigned little-endian base-128 varint at off and
// returns the value together with the number of bytes consumed. An
// encoding that has not terminated after five bytes (the 32-bit value
// ceiling) is rejected.
func (r *Reader) ULEB128(off uint32) (uint32, uint32, error) {
	var v uint32
	var shift uint
	for i := uint32(0); i < 5; i++ {
		if uint64(off)+uint64(i) >= uint64(len(r.data)) {
			return 0, 0, fmt.Errorf("uleb128 at offset %d: %w", off, ErrOutOfBounds)
		}
		b := r.data[off+i]
		v |= uint32(b&0x7f) << shift
		if b&0x80 == 0 {
			return v, i + 1, nil
		}
		shift += 7
	}
	return 0, 0, fmt.Errorf("uleb128 at offset %d: %w", off, ErrMalformedVarint)
}

// CString decodes the modified-UTF-8 string starting at off, terminated
// by a single zero byte. MUTF-8 encodes an embedded U+0000 as the
// two-byte form 0xC0 0x80, which contains no zero byte and passes
// through undecoded. Unterminated data decodes to the remainder of the
// buffer.
func (r *Reader) CString(off uint32) (string, error) {
	if uint64(off) >= uint64(len(r.data)) {
		return "", fmt.Errorf("string at offset %d: %w", off, ErrOutOfBounds)
	}
	end := off
	for end < r.Len() && r.data[end] != 0 {
		end++
	}
	return string(r.data[off:end]), nil
}
