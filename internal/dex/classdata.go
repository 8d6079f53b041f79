package dex

import (
	"fmt"
	"strings"
)

// Access flag bits shared by class_def_item and encoded_method.
const (
	accPublic    = 0x1
	accStatic    = 0x8
	accInterface = 0x200
	accAbstract  = 0x400
	accEnum      = 0x4000
)

// Fixed record strides.
const (
	classDefStride = 32
	methodIDStride = 8
	protoIDStride  = 12
)

// Method is one non-constructor method recovered from a class_data
// block. Parameter types are not recovered from DEX metadata (the
// prototype's type_list is never read), so ParamTypes stays empty and
// downstream consumers synthesize positional placeholders.
type Method struct {
	Name       string
	ReturnType string
	Public     bool
	Static     bool
	ParamTypes []string
}

// Class is one decoded class_def record. Identity past the decoder is
// the qualified Name, not the numeric class index.
type Class struct {
	Name      string
	Public    bool
	Interface bool
	Abstract  bool
	Enum      bool
	Methods   []Method
}

// ClassError records a recoverable failure inside one class's
// class_data block. The owning class is still emitted with the methods
// decoded before the failure.
type ClassError struct {
	Class string
	Err   error
}

func (e ClassError) Error() string {
	if e.Class == "" {
		return fmt.Sprintf("class data: %v", e.Err)
	}
	return fmt.Sprintf("class %s: %v", e.Class, e.Err)
}

func (e ClassError) Unwrap() error { return e.Err }

// Parse decodes every class in a single DEX buffer. Header and table
// construction errors abort; per-class failures are collected and
// returned alongside the classes that did decode.
func Parse(data []byte) ([]Class, []ClassError, error) {
	r := NewReader(data)
	h, err := ParseHeader(r)
	if err != nil {
		return nil, nil, err
	}
	strs, err := BuildStringTable(r, h)
	if err != nil {
		return nil, nil, fmt.Errorf("string table: %w", err)
	}
	types, err := BuildTypeTable(r, h, strs)
	if err != nil {
		return nil, nil, fmt.Errorf("type table: %w", err)
	}
	return DecodeClasses(r, h, strs, types)
}

// DecodeClasses walks the class_def table and decodes each class's
// method list. A failure inside one class_data block is recorded as a
// ClassError and the walk continues with the next 32-byte slot; only
// failures reading the class_def records themselves abort, since the
// walk can no longer trust its own cursor at that point.
func DecodeClasses(r *Reader, h Header, strs, types []string) ([]Class, []ClassError, error) {
	classes := make([]Class, 0, h.ClassDefsSize)
	var errs []ClassError

	for i := uint32(0); i < h.ClassDefsSize; i++ {
		base := h.ClassDefsOff + i*classDefStride
		typeIdx, err := r.U32(base)
		if err != nil {
			return nil, nil, fmt.Errorf("class_def %d: %w", i, err)
		}
		flags, err := r.U32(base + 4)
		if err != nil {
			return nil, nil, fmt.Errorf("class_def %d: %w", i, err)
		}
		dataOff, err := r.U32(base + 24)
		if err != nil {
			return nil, nil, fmt.Errorf("class_def %d: %w", i, err)
		}

		if typeIdx >= uint32(len(types)) {
			errs = append(errs, ClassError{Err: fmt.Errorf("class_def %d: type index %d out of range", i, typeIdx)})
			continue
		}
		desc := types[typeIdx]

		// Arrays and degenerate descriptors never carry bridgeable
		// methods; skip the slot without emitting a class.
		if strings.HasPrefix(desc, "[") || len(desc) <= 3 {
			continue
		}

		cls := Class{
			Name:      DescriptorToName(desc),
			Public:    flags&accPublic != 0,
			Interface: flags&accInterface != 0,
			Abstract:  flags&accAbstract != 0,
			Enum:      flags&accEnum != 0,
		}
		if dataOff != 0 {
			if err := decodeClassData(r, h, strs, types, dataOff, &cls); err != nil {
				errs = append(errs, ClassError{Class: cls.Name, Err: err})
			}
		}
		classes = append(classes, cls)
	}
	return classes, errs, nil
}

// decodeClassData fills cls.Methods from the class_data_item at off.
// An error unwinds to the caller with the methods decoded so far
// already appended; cursor state is local, so the next class_def is
// unaffected by a failure here.
func decodeClassData(r *Reader, h Header, strs, types []string, off uint32, cls *Class) error {
	cur := off

	var counts [4]uint32
	for i := range counts {
		v, n, err := r.ULEB128(cur)
		if err != nil {
			return err
		}
		counts[i] = v
		cur += n
	}
	staticFields, instanceFields := counts[0], counts[1]
	directMethods, virtualMethods := counts[2], counts[3]

	// Field entries are two ULEB128 values each (field_idx_diff and
	// access_flags). Fields are not extracted, but they sit between
	// the counts and the method lists and cannot be skipped by stride.
	for i := uint32(0); i < staticFields+instanceFields; i++ {
		for j := 0; j < 2; j++ {
			_, n, err := r.ULEB128(cur)
			if err != nil {
				return err
			}
			cur += n
		}
	}

	for _, count := range []uint32{directMethods, virtualMethods} {
		// method_idx_diff is relative to the previous entry in the
		// same list; the accumulator resets for each list.
		var methodIdx uint32
		for i := uint32(0); i < count; i++ {
			diff, n, err := r.ULEB128(cur)
			if err != nil {
				return err
			}
			cur += n
			if i == 0 {
				methodIdx = diff
			} else {
				methodIdx += diff
			}

			flags, n, err := r.ULEB128(cur)
			if err != nil {
				return err
			}
			cur += n

			// code_off, unused.
			_, n, err = r.ULEB128(cur)
			if err != nil {
				return err
			}
			cur += n

			m, ok, err := resolveMethod(r, h, strs, types, methodIdx, flags)
			if err != nil {
				return err
			}
			if ok {
				cls.Methods = append(cls.Methods, m)
			}
		}
	}
	return nil
}

// resolveMethod looks up one method_id record and builds its Method.
// ok is false for constructors and static initializers, which are not
// bridgeable and are dropped silently.
func resolveMethod(r *Reader, h Header, strs, types []string, methodIdx, flags uint32) (Method, bool, error) {
	if methodIdx >= h.MethodIDsSize {
		return Method{}, false, fmt.Errorf("method index %d out of range", methodIdx)
	}
	base := h.MethodIDsOff + methodIdx*methodIDStride

	protoIdx, err := r.U16(base + 2)
	if err != nil {
		return Method{}, false, err
	}
	nameIdx, err := r.U32(base + 4)
	if err != nil {
		return Method{}, false, err
	}
	if nameIdx >= uint32(len(strs)) {
		return Method{}, false, fmt.Errorf("method name index %d out of range", nameIdx)
	}
	name := strs[nameIdx]
	if name == "<init>" || name == "<clinit>" {
		return Method{}, false, nil
	}

	ret, err := returnType(r, h, types, uint32(protoIdx))
	if err != nil {
		return Method{}, false, err
	}
	return Method{
		Name:       name,
		ReturnType: ret,
		Public:     flags&accPublic != 0,
		Static:     flags&accStatic != 0,
	}, true, nil
}

// returnType resolves a prototype's return type, defaulting to void
// when the prototype index is out of range.
func returnType(r *Reader, h Header, types []string, protoIdx uint32) (string, error) {
	if protoIdx >= h.ProtoIDsSize {
		return "void", nil
	}
	typeIdx, err := r.U32(h.ProtoIDsOff + protoIdx*protoIDStride + 4)
	if err != nil {
		return "", err
	}
	if typeIdx >= uint32(len(types)) {
		return "", fmt.Errorf("return type index %d out of range", typeIdx)
	}
	return DescriptorToName(types[typeIdx]), nil
}
