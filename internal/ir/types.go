package ir

import (
	"fmt"

	"github.com/roach88/busgen/wire"
)

// Position locates a construct in a declaration file.
type Position struct {
	File   string `json:"file,omitempty"`
	Line   int    `json:"line,omitempty"`
	Column int    `json:"column,omitempty"`
}

// IsValid reports whether the position carries a line number.
func (p Position) IsValid() bool {
	return p.Line > 0
}

func (p Position) String() string {
	if !p.IsValid() {
		return p.File
	}
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
}

// Directives holds the optional interface-level naming overrides.
// An empty field means the default derived from the declaration name applies.
type Directives struct {
	Interface      string `json:"interface,omitempty"`
	DefaultPath    string `json:"default_path,omitempty"`
	DefaultService string `json:"default_service,omitempty"`
}

// InterfaceDecl is a parsed interface declaration.
type InterfaceDecl struct {
	Name       string       `json:"name"`
	Doc        string       `json:"doc,omitempty"`
	Directives Directives   `json:"directives"`
	Methods    []MethodDecl `json:"methods"`
	Pos        Position     `json:"-"`
}

// MethodDecl is one declared method or property accessor.
type MethodDecl struct {
	Name     string   `json:"name"`
	Doc      string   `json:"doc,omitempty"`
	Args     []Arg    `json:"args"`
	Returns  string   `json:"returns,omitempty"`   // wire kind name, empty for no value
	Property bool     `json:"property,omitempty"`
	WireName string   `json:"wire_name,omitempty"` // explicit `name` override
	Pos      Position `json:"-"`
}

// Arg is a named, typed method argument in declaration order.
type Arg struct {
	Name string `json:"name"`
	Type string `json:"type"` // wire kind name
}

// MemberKind classifies a generated proxy member.
type MemberKind string

const (
	MemberCall       MemberKind = "call"
	MemberGetter     MemberKind = "getter"
	MemberSetter     MemberKind = "setter"
	MemberIntrospect MemberKind = "introspect"
)

// ProxySpec is a fully resolved proxy, ready for emission.
type ProxySpec struct {
	Name           string   `json:"name"`
	TypeName       string   `json:"type_name"`
	Doc            string   `json:"doc,omitempty"`
	Interface      string   `json:"interface"`
	DefaultPath    string   `json:"default_path"`
	DefaultService string   `json:"default_service"`
	Members        []Member `json:"members"`
	Hash           string   `json:"hash"`
}

// Member is one generated method on the proxy type.
type Member struct {
	Kind     MemberKind `json:"kind"`
	Method   string     `json:"method"`  // declared name
	GoName   string     `json:"go_name"` // exported Go identifier
	WireName string     `json:"wire_name"`
	Doc      string     `json:"doc,omitempty"`
	Params   []Param    `json:"params"`
	Result   wire.Kind  `json:"result,omitempty"`
}

// HasResult reports whether the member returns a decoded value besides the error.
func (m Member) HasResult() bool {
	return m.Result != wire.KindInvalid
}

// Param is a resolved argument.
type Param struct {
	Name   string    `json:"name"`
	GoName string    `json:"go_name"`
	Kind   wire.Kind `json:"kind"`
}

// Signature returns the concatenated wire signature of the parameters.
func (m Member) Signature() string {
	sig := make([]byte, 0, len(m.Params))
	for _, p := range m.Params {
		sig = append(sig, wire.SignatureChar(p.Kind))
	}
	return string(sig)
}
