package wire

import (
	"fmt"
	"reflect"
	"strings"
)

// TypeError reports a Go value that has no primitive wire kind.
type TypeError struct {
	Index int
	Type  reflect.Type
}

func (e *TypeError) Error() string {
	if e.Type == nil {
		return fmt.Sprintf("argument %d: nil has no wire type", e.Index)
	}
	return fmt.Sprintf("argument %d: %s has no wire type", e.Index, e.Type)
}

// TypeKind classifies a Go type. Pointers share the kind of their element,
// so a value and a reference to it always agree on signature and alignment.
//
// int32 and rune are the same Go type and classify as KindI32. A char is
// carried as a Go string, so KindChar and the non-zero variants are only
// reachable through declarations.
func TypeKind(t reflect.Type) (Kind, bool) {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return KindInvalid, false
	}

	switch t.Kind() {
	case reflect.Uint8:
		return KindU8, true
	case reflect.Bool:
		return KindBool, true
	case reflect.Int8:
		return KindI8, true
	case reflect.Int16:
		return KindI16, true
	case reflect.Uint16:
		return KindU16, true
	case reflect.Int32:
		return KindI32, true
	case reflect.Uint32:
		return KindU32, true
	case reflect.Int64:
		return KindI64, true
	case reflect.Uint64:
		return KindU64, true
	case reflect.Float32:
		return KindF32, true
	case reflect.Float64:
		return KindF64, true
	case reflect.String:
		return KindString, true
	default:
		return KindInvalid, false
	}
}

// KindOf classifies a Go value. See TypeKind.
func KindOf(v any) (Kind, bool) {
	if v == nil {
		return KindInvalid, false
	}
	return TypeKind(reflect.TypeOf(v))
}

// CallSignature joins the signatures of a call payload, e.g. "su" for a
// string followed by a uint32.
func CallSignature(args []any) (string, error) {
	var b strings.Builder
	for i, arg := range args {
		k, ok := KindOf(arg)
		if !ok {
			return "", &TypeError{Index: i, Type: reflect.TypeOf(arg)}
		}
		b.WriteByte(SignatureChar(k))
	}
	return b.String(), nil
}
