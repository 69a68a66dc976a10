package compiler

import (
	"go/token"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/roach88/busgen/internal/ir"
)

// Default naming policy for declarations without overrides.
const (
	DefaultInterfacePrefix = "org.freedesktop."
	DefaultPathPrefix      = "/org/freedesktop/"
	setterPrefix           = "set_"
	proxySuffix            = "Proxy"
)

// Names are the resolved bus coordinates of an interface.
type Names struct {
	Interface      string
	DefaultPath    string
	DefaultService string
}

// ResolveNames applies the default naming policy to a declaration name and
// its overrides. It has no side effects.
func ResolveNames(name string, d ir.Directives) Names {
	n := Names{
		Interface:      d.Interface,
		DefaultPath:    d.DefaultPath,
		DefaultService: d.DefaultService,
	}
	if n.Interface == "" {
		n.Interface = DefaultInterfacePrefix + name
	}
	if n.DefaultPath == "" {
		n.DefaultPath = DefaultPathPrefix + name
	}
	if n.DefaultService == "" {
		n.DefaultService = n.Interface
	}
	return n
}

func isWordSeparator(r rune) bool {
	return r == '_' || r == '-'
}

// PascalCase splits s on word separators, capitalizes each segment and joins
// them: "do_this" becomes "DoThis". The rest of each segment is kept as is.
func PascalCase(s string) string {
	caser := cases.Title(language.Und, cases.NoLower)
	var b strings.Builder
	for _, seg := range strings.FieldsFunc(s, isWordSeparator) {
		b.WriteString(caser.String(seg))
	}
	return b.String()
}

// camelCase is PascalCase with the first segment left untouched.
func camelCase(s string) string {
	segs := strings.FieldsFunc(s, isWordSeparator)
	if len(segs) == 0 {
		return ""
	}
	return segs[0] + PascalCase(strings.Join(segs[1:], "_"))
}

// reservedParamNames are identifiers a generated method body relies on.
// Parameters with these names get a trailing underscore.
var reservedParamNames = map[string]bool{
	"p": true, "reply": true, "value": true, "err": true,
	"any": true, "bool": true, "byte": true, "rune": true, "string": true,
	"int8": true, "int16": true, "int32": true, "int64": true,
	"uint8": true, "uint16": true, "uint32": true, "uint64": true,
	"float32": true, "float64": true, "error": true,
	"nil": true, "true": true, "false": true,
}

// paramName converts a declared argument name to a Go parameter name.
func paramName(s string) string {
	name := camelCase(s)
	if token.IsKeyword(name) || reservedParamNames[name] {
		name += "_"
	}
	return name
}

// isIdentifier reports whether s is a valid Go identifier.
func isIdentifier(s string) bool {
	return token.IsIdentifier(s)
}

// isExported reports whether s is a valid exported Go identifier.
func isExported(s string) bool {
	if !token.IsIdentifier(s) {
		return false
	}
	return unicode.IsUpper([]rune(s)[0])
}
