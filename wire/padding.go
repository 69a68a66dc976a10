package wire

// Align rounds offset up to the next multiple of n. n must be a power of two.
func Align(offset, n int) int {
	return (offset + n - 1) &^ (n - 1)
}

// PaddingFor returns how many zero bytes precede a value of kind k written at
// offset under format f.
func PaddingFor(offset int, k Kind, f Format) int {
	return Align(offset, Alignment(k, f)) - offset
}
