package dex

import (
	"fmt"
	"strings"
)

// BuildStringTable resolves every string_id into its decoded text, in
// index order. Each string_id is a u32 pointer to a string_data item
// whose ULEB128 UTF-16 length prefix is skipped before the bytes are
// read. Pointer consistency is not verified beyond bounds checks; a
// table that lies about its offsets produces garbage strings, not an
// error.
func BuildStringTable(r *Reader, h Header) ([]string, error) {
	out := make([]string, h.StringIDsSize)
	for i := uint32(0); i < h.StringIDsSize; i++ {
		ptr, err := r.U32(h.StringIDsOff + 4*i)
		if err != nil {
			return nil, fmt.Errorf("string id %d: %w", i, err)
		}
		_, n, err := r.ULEB128(ptr)
		if err != nil {
			return nil, fmt.Errorf("string %d length prefix: %w", i, err)
		}
		s, err := r.CString(ptr + n)
		if err != nil {
			return nil, fmt.Errorf("string %d: %w", i, err)
		}
		out[i] = s
	}
	return out, nil
}

// BuildTypeTable resolves every type_id through the string table,
// yielding descriptor strings in type-index order.
func BuildTypeTable(r *Reader, h Header, strs []string) ([]string, error) {
	out := make([]string, h.TypeIDsSize)
	for i := uint32(0); i < h.TypeIDsSize; i++ {
		idx, err := r.U32(h.TypeIDsOff + 4*i)
		if err != nil {
			return nil, fmt.Errorf("type id %d: %w", i, err)
		}
		if idx >= uint32(len(strs)) {
			return nil, fmt.Errorf("type id %d: string index %d out of range", i, idx)
		}
		out[i] = strs[idx]
	}
	return out, nil
}

// primitiveNames maps single-letter field descriptors to their source
// keywords.
var primitiveNames = map[string]string{
	"V": "void",
	"Z": "boolean",
	"B": "byte",
	"S": "short",
	"C": "char",
	"I": "int",
	"J": "long",
	"F": "float",
	"D": "double",
}

// DescriptorToName converts an object descriptor ("Lcom/a/B;") to its
// dotted class name and a primitive code to its keyword. Anything else,
// notably array descriptors starting with '[', is returned unchanged;
// the class walk keys its skip heuristic off that shape.
func DescriptorToName(d string) string {
	if strings.HasPrefix(d, "L") && strings.HasSuffix(d, ";") {
		return strings.ReplaceAll(d[1:len(d)-1], "/", ".")
	}
	if name, ok := primitiveNames[d]; ok {
		return name
	}
	return d
}
