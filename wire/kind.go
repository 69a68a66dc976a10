package wire

import "fmt"

// Kind identifies a primitive value kind.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindU8
	KindBool
	KindI16
	KindU16
	KindI32
	KindU32
	KindI64
	KindU64
	KindI8
	KindF32
	KindF64
	KindString
	KindChar
	KindNonZeroU8
	KindNonZeroI8
	KindNonZeroI16
	KindNonZeroU16
	KindNonZeroI32
	KindNonZeroU32
	KindNonZeroI64
	KindNonZeroU64

	kindCount
)

var kindNames = [...]string{
	KindInvalid:        "invalid",
	KindU8:             "u8",
	KindBool:           "bool",
	KindI16:            "i16",
	KindU16:            "u16",
	KindI32:            "i32",
	KindU32:            "u32",
	KindI64:            "i64",
	KindU64:            "u64",
	KindI8:             "i8",
	KindF32:            "f32",
	KindF64:            "f64",
	KindString:         "string",
	KindChar:           "char",
	KindNonZeroU8:      "nonzero_u8",
	KindNonZeroI8:      "nonzero_i8",
	KindNonZeroI16:     "nonzero_i16",
	KindNonZeroU16:     "nonzero_u16",
	KindNonZeroI32:     "nonzero_i32",
	KindNonZeroU32:     "nonzero_u32",
	KindNonZeroI64:     "nonzero_i64",
	KindNonZeroU64:     "nonzero_u64",
}

// kindAliases are accepted by ParseKind in addition to the canonical names.
var kindAliases = map[string]Kind{
	"byte": KindU8,
	"str":  KindString,
}

var goTypes = [...]string{
	KindU8:     "byte",
	KindBool:   "bool",
	KindI16:    "int16",
	KindU16:    "uint16",
	KindI32:    "int32",
	KindU32:    "uint32",
	KindI64:    "int64",
	KindU64:    "uint64",
	KindI8:     "int8",
	KindF32:    "float32",
	KindF64:    "float64",
	KindString: "string",
	KindChar:   "string",
}

var nonZeroBase = map[Kind]Kind{
	KindNonZeroU8:  KindU8,
	KindNonZeroI8:  KindI8,
	KindNonZeroI16: KindI16,
	KindNonZeroU16: KindU16,
	KindNonZeroI32: KindI32,
	KindNonZeroU32: KindU32,
	KindNonZeroI64: KindI64,
	KindNonZeroU64: KindU64,
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Valid reports whether k is one of the declared primitive kinds.
func (k Kind) Valid() bool {
	return k > KindInvalid && k < kindCount
}

// IsNonZero reports whether k is a range-refined integer variant.
func (k Kind) IsNonZero() bool {
	_, ok := nonZeroBase[k]
	return ok
}

// Base returns the integer kind a non-zero variant refines, or k itself.
func (k Kind) Base() Kind {
	if base, ok := nonZeroBase[k]; ok {
		return base
	}
	return k
}

// GoType returns the Go type spelling used for k in generated code.
// Non-zero variants use their base type; the refinement is a contract on
// values, not a distinct Go type. char travels as text, so it is a string.
func (k Kind) GoType() string {
	b := k.Base()
	if int(b) < len(goTypes) && goTypes[b] != "" {
		return goTypes[b]
	}
	return ""
}

// ParseKind resolves a declaration type name such as "u32" or "nonzero_i64".
func ParseKind(name string) (Kind, bool) {
	if k, ok := kindAliases[name]; ok {
		return k, true
	}
	for k := KindInvalid + 1; k < kindCount; k++ {
		if kindNames[k] == name {
			return k, true
		}
	}
	return KindInvalid, false
}

// Kinds returns every valid primitive kind in declaration order.
func Kinds() []Kind {
	kinds := make([]Kind, 0, int(kindCount)-1)
	for k := KindInvalid + 1; k < kindCount; k++ {
		kinds = append(kinds, k)
	}
	return kinds
}

// MarshalText encodes k by its declaration name so IR dumps stay readable.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText is the inverse of MarshalText.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, ok := ParseKind(string(text))
	if !ok {
		return fmt.Errorf("unknown wire kind %q", text)
	}
	*k = parsed
	return nil
}
