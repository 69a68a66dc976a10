// Package wire is the single source of truth for primitive wire types.
//
// Every primitive value kind maps to a one-character signature code and to a
// byte alignment. The alignment depends on the framing format: D-Bus and the
// more compact GVariant encoding disagree on text alignment, so every query
// takes the Format explicitly rather than selecting one at build time.
//
// Some kinds have no native wire type and borrow another kind's contract:
//
//	i8            -> i16
//	f32           -> f64
//	char          -> string
//	nonzero_<int> -> <int>
//
// Composite kinds (arrays, structs, dictionaries, variants) are not described
// here; serializers build their signatures out of these primitives.
package wire
