// Package dextest assembles minimal synthetic DEX buffers for tests.
// Buffers carry only the tables the decoder reads: string_ids,
// type_ids, proto_ids, method_ids and class_defs, with string and
// class data in a trailing data section.
package dextest

import "encoding/binary"

const headerSize = 112

// EncodedMethod is one entry of a class_data method list, given with
// its absolute method index. ClassData converts absolute indices to
// the diff encoding the format uses on the wire.
type EncodedMethod struct {
	Index   uint32
	Flags   uint32
	CodeOff uint32
}

type methodID struct {
	classIdx uint16
	protoIdx uint16
	nameIdx  uint32
}

type classDef struct {
	typeIdx uint32
	flags   uint32
	data    []byte
}

// Builder accumulates table entries and produces a DEX buffer.
type Builder struct {
	strs    []string
	strIdx  map[string]uint32
	types   []uint32
	typeIdx map[string]uint32
	protos  []uint32
	methods []methodID
	classes []classDef

	// Magic overrides the default "dex\n035\x00" when non-nil.
	Magic []byte
}

func NewBuilder() *Builder {
	return &Builder{
		strIdx:  map[string]uint32{},
		typeIdx: map[string]uint32{},
	}
}

// String interns s and returns its string index.
func (b *Builder) String(s string) uint32 {
	if i, ok := b.strIdx[s]; ok {
		return i
	}
	i := uint32(len(b.strs))
	b.strs = append(b.strs, s)
	b.strIdx[s] = i
	return i
}

// Type interns the descriptor and returns its type index.
func (b *Builder) Type(desc string) uint32 {
	if i, ok := b.typeIdx[desc]; ok {
		return i
	}
	si := b.String(desc)
	i := uint32(len(b.types))
	b.types = append(b.types, si)
	b.typeIdx[desc] = i
	return i
}

// Proto adds a prototype with the given return descriptor and returns
// its proto index. The shorty and parameter fields stay zero.
func (b *Builder) Proto(returnDesc string) uint32 {
	ti := b.Type(returnDesc)
	b.protos = append(b.protos, ti)
	return uint32(len(b.protos) - 1)
}

// Method adds a method_id record and returns its method index.
func (b *Builder) Method(classDesc, name, returnDesc string) uint32 {
	m := methodID{
		classIdx: uint16(b.Type(classDesc)),
		protoIdx: uint16(b.Proto(returnDesc)),
		nameIdx:  b.String(name),
	}
	b.methods = append(b.methods, m)
	return uint32(len(b.methods) - 1)
}

// Class adds a class_def record. data is the raw class_data_item (use
// ClassData), or nil for a class with no class_data.
func (b *Builder) Class(desc string, flags uint32, data []byte) {
	b.classes = append(b.classes, classDef{
		typeIdx: b.Type(desc),
		flags:   flags,
		data:    data,
	})
}

// ULEB encodes v as an unsigned little-endian base-128 varint.
func ULEB(v uint32) []byte {
	var out []byte
	for {
		c := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			c |= 0x80
		}
		out = append(out, c)
		if v == 0 {
			return out
		}
	}
}

// ClassData encodes a class_data_item. Field entries are emitted as
// zero pairs; method lists are diff-encoded from the absolute indices
// in direct and virtual.
func ClassData(staticFields, instanceFields int, direct, virtual []EncodedMethod) []byte {
	var out []byte
	out = append(out, ULEB(uint32(staticFields))...)
	out = append(out, ULEB(uint32(instanceFields))...)
	out = append(out, ULEB(uint32(len(direct)))...)
	out = append(out, ULEB(uint32(len(virtual)))...)
	for i := 0; i < staticFields+instanceFields; i++ {
		out = append(out, ULEB(0)...)
		out = append(out, ULEB(0)...)
	}
	for _, list := range [][]EncodedMethod{direct, virtual} {
		var prev uint32
		for i, m := range list {
			diff := m.Index
			if i > 0 {
				diff = m.Index - prev
			}
			prev = m.Index
			out = append(out, ULEB(diff)...)
			out = append(out, ULEB(m.Flags)...)
			out = append(out, ULEB(m.CodeOff)...)
		}
	}
	return out
}

// Build lays out the tables and returns the finished buffer.
func (b *Builder) Build() []byte {
	stringIDsOff := uint32(headerSize)
	typeIDsOff := stringIDsOff + 4*uint32(len(b.strs))
	protoIDsOff := typeIDsOff + 4*uint32(len(b.types))
	methodIDsOff := protoIDsOff + 12*uint32(len(b.protos))
	classDefsOff := methodIDsOff + 8*uint32(len(b.methods))
	dataOff := classDefsOff + 32*uint32(len(b.classes))

	var data []byte
	strPtrs := make([]uint32, len(b.strs))
	for i, s := range b.strs {
		strPtrs[i] = dataOff + uint32(len(data))
		data = append(data, ULEB(uint32(len(s)))...)
		data = append(data, s...)
		data = append(data, 0)
	}
	classDataOffs := make([]uint32, len(b.classes))
	for i, c := range b.classes {
		if len(c.data) == 0 {
			continue
		}
		classDataOffs[i] = dataOff + uint32(len(data))
		data = append(data, c.data...)
	}

	buf := make([]byte, dataOff, dataOff+uint32(len(data)))
	magic := []byte("dex\n035\x00")
	if b.Magic != nil {
		magic = b.Magic
	}
	copy(buf, magic)

	put := func(off, v uint32) {
		binary.LittleEndian.PutUint32(buf[off:], v)
	}
	put(56, uint32(len(b.strs)))
	put(60, stringIDsOff)
	put(64, uint32(len(b.types)))
	put(68, typeIDsOff)
	put(72, uint32(len(b.protos)))
	put(76, protoIDsOff)
	put(80, 0) // field_ids, unused
	put(84, 0)
	put(88, uint32(len(b.methods)))
	put(92, methodIDsOff)
	put(96, uint32(len(b.classes)))
	put(100, classDefsOff)

	for i, p := range strPtrs {
		put(stringIDsOff+4*uint32(i), p)
	}
	for i, si := range b.types {
		put(typeIDsOff+4*uint32(i), si)
	}
	for i, ti := range b.protos {
		put(protoIDsOff+12*uint32(i)+4, ti)
	}
	for i, m := range b.methods {
		base := methodIDsOff + 8*uint32(i)
		binary.LittleEndian.PutUint16(buf[base:], m.classIdx)
		binary.LittleEndian.PutUint16(buf[base+2:], m.protoIdx)
		put(base+4, m.nameIdx)
	}
	for i, c := range b.classes {
		base := classDefsOff + 32*uint32(i)
		put(base, c.typeIdx)
		put(base+4, c.flags)
		put(base+24, classDataOffs[i])
	}
	return append(buf, data...)
}
