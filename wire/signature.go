package wire

import "fmt"

// rule is the wire contract of one kind. A kind with a delegate has no
// native wire type and reuses the delegate's signature and alignment.
type rule struct {
	sig      string
	dbus     int
	gvariant int
	delegate Kind
}

var rules = [...]rule{
	KindU8:     {sig: "y", dbus: 1, gvariant: 1},
	KindBool:   {sig: "b", dbus: 4, gvariant: 4},
	KindI16:    {sig: "n", dbus: 2, gvariant: 2},
	KindU16:    {sig: "q", dbus: 2, gvariant: 2},
	KindI32:    {sig: "i", dbus: 4, gvariant: 4},
	KindU32:    {sig: "u", dbus: 4, gvariant: 4},
	KindI64:    {sig: "x", dbus: 8, gvariant: 8},
	KindU64:    {sig: "t", dbus: 8, gvariant: 8},
	KindF64:    {sig: "d", dbus: 8, gvariant: 8},
	KindString: {sig: "s", dbus: 4, gvariant: 1},

	// No signed 8-bit type on the wire; pretend it's i16.
	KindI8: {delegate: KindI16},
	// No 32-bit float on the wire; pretend it's f64.
	KindF32:  {delegate: KindF64},
	KindChar: {delegate: KindString},

	KindNonZeroU8:  {delegate: KindU8},
	KindNonZeroI8:  {delegate: KindI8},
	KindNonZeroI16: {delegate: KindI16},
	KindNonZeroU16: {delegate: KindU16},
	KindNonZeroI32: {delegate: KindI32},
	KindNonZeroU32: {delegate: KindU32},
	KindNonZeroI64: {delegate: KindI64},
	KindNonZeroU64: {delegate: KindU64},
}

// lookup follows delegation to the kind that owns a native wire type.
// It panics on a kind outside the table: that is a programming error in the
// caller, never a property of runtime data.
func lookup(k Kind) rule {
	if !k.Valid() {
		panic(fmt.Sprintf("wire: no wire contract for kind %s", k))
	}
	r := rules[k]
	for r.delegate != KindInvalid {
		r = rules[r.delegate]
	}
	return r
}

// SignatureChar returns the one-character signature code of k.
func SignatureChar(k Kind) byte {
	return lookup(k).sig[0]
}

// SignatureString returns the signature of k as a string of length one.
func SignatureString(k Kind) string {
	return lookup(k).sig
}

// Alignment returns the byte boundary a value of kind k starts on under
// format f: 1, 2, 4 or 8.
func Alignment(k Kind, f Format) int {
	r := lookup(k)
	switch f {
	case FormatDBus:
		return r.dbus
	case FormatGVariant:
		return r.gvariant
	default:
		panic(fmt.Sprintf("wire: unknown format %s", f))
	}
}
