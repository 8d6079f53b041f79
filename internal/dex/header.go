package dex

import (
	"bytes"
	"fmt"
)

// dexMagic is the first four bytes of every DEX file ("dex\n"). The
// version digits that follow are not checked; all published versions
// share the same table layout for the fields read here.
var dexMagic = []byte{0x64, 0x65, 0x78, 0x0a}

// headerTableBase is the byte offset of the string_ids descriptor. The
// remaining (size, offset) pairs follow contiguously through byte 103.
const headerTableBase = 56

// Header carries the table descriptors a class walk needs. Offsets are
// taken at face value here; reads through them are bounds-checked at
// the point of use.
type Header struct {
	StringIDsSize uint32
	StringIDsOff  uint32
	TypeIDsSize   uint32
	TypeIDsOff    uint32
	ProtoIDsSize  uint32
	ProtoIDsOff   uint32
	FieldIDsSize  uint32
	FieldIDsOff   uint32
	MethodIDsSize uint32
	MethodIDsOff  uint32
	ClassDefsSize uint32
	ClassDefsOff  uint32
}

// ParseHeader validates the magic and reads the six table descriptor
// pairs. A magic mismatch is the one unrecoverable failure for the
// whole buffer; nothing downstream can salvage a file that is not DEX.
func ParseHeader(r *Reader) (Header, error) {
	magic, err := r.bytes(0, 4)
	if err != nil || !bytes.Equal(magic, dexMagic) {
		return Header{}, fmt.Errorf("bad magic: %w", ErrMalformedFormat)
	}

	var h Header
	fields := []*uint32{
		&h.StringIDsSize, &h.StringIDsOff,
		&h.TypeIDsSize, &h.TypeIDsOff,
		&h.ProtoIDsSize, &h.ProtoIDsOff,
		&h.FieldIDsSize, &h.FieldIDsOff,
		&h.MethodIDsSize, &h.MethodIDsOff,
		&h.ClassDefsSize, &h.ClassDefsOff,
	}
	for i, f := range fields {
		v, err := r.U32(headerTableBase + uint32(4*i))
		if err != nil {
			return Header{}, fmt.Errorf("header field %d: %w", i, err)
		}
		*f = v
	}
	return h, nil
}
