package wire

import "fmt"

// Format selects one of the two framing conventions.
type Format uint8

const (
	// FormatDBus is the primary D-Bus marshaling format.
	FormatDBus Format = iota
	// FormatGVariant is the compact GVariant serialization format.
	FormatGVariant
)

var formatNames = [...]string{
	FormatDBus:     "dbus",
	FormatGVariant: "gvariant",
}

func (f Format) String() string {
	if int(f) < len(formatNames) {
		return formatNames[f]
	}
	return fmt.Sprintf("format(%d)", uint8(f))
}

// ParseFormat accepts "dbus" or "gvariant".
func ParseFormat(s string) (Format, error) {
	for i, name := range formatNames {
		if name == s {
			return Format(i), nil
		}
	}
	return 0, fmt.Errorf("unknown wire format %q: must be one of %v", s, formatNames)
}

// Formats returns both formats, primary first.
func Formats() []Format {
	return []Format{FormatDBus, FormatGVariant}
}
