package compiler

import (
	"fmt"
	"strings"

	"cuelang.org/go/cue"

	"github.com/roach88/busgen/internal/ir"
)

// directiveLabels maps each interface directive key to the word used in its
// "invalid <x> argument" message.
var directiveLabels = map[string]string{
	"interface":       "interface",
	"default_path":    "path",
	"default_service": "service",
}

// ParseInterface parses a CUE value into an InterfaceDecl.
// Uses CUE SDK's Go API directly (not CLI subprocess).
//
// The CUE value should be the interface struct itself, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`interface: SomeIface: { ... }`)
//	decl, err := ParseInterface(v.LookupPath(cue.ParsePath("interface.SomeIface")))
func ParseInterface(v cue.Value) (*ir.InterfaceDecl, error) {
	if err := v.Err(); err != nil {
		return nil, FormatCUEError(err)
	}

	decl := &ir.InterfaceDecl{Pos: position(v.Pos())}

	// Parse interface name from struct label (the path selector)
	labels := v.Path().Selectors()
	if len(labels) > 0 {
		decl.Name = labels[len(labels)-1].String()
	}
	if !isIdentifier(decl.Name) {
		return nil, &CompileError{
			Field:   "interface",
			Message: fmt.Sprintf("interface name %q is not an identifier", decl.Name),
			Pos:     decl.Pos,
		}
	}

	iter, err := v.Fields()
	if err != nil {
		return nil, FormatCUEError(err)
	}

	for iter.Next() {
		label := iter.Label()
		value := iter.Value()

		switch label {
		case "doc":
			doc, err := value.String()
			if err != nil {
				return nil, &CompileError{Field: "doc", Message: "doc must be a string", Pos: position(value.Pos())}
			}
			decl.Doc = doc
		case "directives":
			if decl.Directives, err = parseDirectives(value); err != nil {
				return nil, err
			}
		case "method":
			if decl.Methods, err = parseMethods(value); err != nil {
				return nil, err
			}
		default:
			return nil, &CompileError{
				Field:   label,
				Message: "unknown attribute",
				Pos:     position(value.Pos()),
			}
		}
	}

	// Doc comments stand in for an explicit doc field
	if decl.Doc == "" {
		decl.Doc = docComment(v)
	}

	return decl, nil
}

// parseDirectives reads interface-level naming overrides.
func parseDirectives(v cue.Value) (ir.Directives, error) {
	var d ir.Directives

	iter, err := v.Fields()
	if err != nil {
		return d, &CompileError{
			Field:   "directives",
			Message: "directives must be a struct",
			Pos:     position(v.Pos()),
		}
	}

	for iter.Next() {
		key := iter.Label()
		value := iter.Value()

		word, ok := directiveLabels[key]
		if !ok {
			return d, &CompileError{
				Field:   "directives." + key,
				Message: "unsupported argument",
				Pos:     position(value.Pos()),
			}
		}

		s, err := value.String()
		if err != nil {
			return d, &CompileError{
				Field:   "directives." + key,
				Message: fmt.Sprintf("invalid %s argument", word),
				Pos:     position(value.Pos()),
			}
		}
		if s == "" {
			return d, &CompileError{
				Field:   "directives." + key,
				Message: fmt.Sprintf("empty %s argument", word),
				Pos:     position(value.Pos()),
			}
		}

		switch key {
		case "interface":
			d.Interface = s
		case "default_path":
			d.DefaultPath = s
		case "default_service":
			d.DefaultService = s
		}
	}

	return d, nil
}

// parseMethods extracts method declarations in declaration order.
func parseMethods(v cue.Value) ([]ir.MethodDecl, error) {
	var methods []ir.MethodDecl

	iter, err := v.Fields()
	if err != nil {
		return nil, FormatCUEError(err)
	}

	for iter.Next() {
		m, err := parseMethod(iter.Label(), iter.Value())
		if err != nil {
			return nil, err
		}
		methods = append(methods, m)
	}

	return methods, nil
}

// parseMethod reads one method struct. Recognized keys are doc, args,
// returns, property and name.
func parseMethod(name string, v cue.Value) (ir.MethodDecl, error) {
	m := ir.MethodDecl{Name: name, Pos: position(v.Pos())}
	field := "method." + name

	iter, err := v.Fields()
	if err != nil {
		return m, &CompileError{Field: field, Message: "method must be a struct", Pos: m.Pos}
	}

	for iter.Next() {
		key := iter.Label()
		value := iter.Value()
		pos := position(value.Pos())

		switch key {
		case "doc":
			if m.Doc, err = value.String(); err != nil {
				return m, &CompileError{Field: field + ".doc", Message: "doc must be a string", Pos: pos}
			}
		case "args":
			if m.Args, err = parseArgs(field, value); err != nil {
				return m, err
			}
		case "returns":
			if m.Returns, err = value.String(); err != nil {
				return m, &CompileError{Field: field + ".returns", Message: "return type must be a string", Pos: pos}
			}
		case "property":
			if m.Property, err = value.Bool(); err != nil {
				return m, &CompileError{Field: field + ".property", Message: "invalid property argument", Pos: pos}
			}
		case "name":
			s, err := value.String()
			if err != nil || s == "" {
				return m, &CompileError{Field: field + ".name", Message: "invalid name argument", Pos: pos}
			}
			m.WireName = s
		default:
			return m, &CompileError{Field: field + "." + key, Message: "unsupported argument", Pos: pos}
		}
	}

	if m.Doc == "" {
		m.Doc = docComment(v)
	}

	return m, nil
}

// parseArgs reads the ordered argument struct: {name: "type", ...}.
func parseArgs(field string, v cue.Value) ([]ir.Arg, error) {
	var args []ir.Arg

	iter, err := v.Fields()
	if err != nil {
		return nil, &CompileError{Field: field + ".args", Message: "args must be a struct", Pos: position(v.Pos())}
	}

	for iter.Next() {
		typ, err := iter.Value().String()
		if err != nil {
			return nil, &CompileError{
				Field:   field + ".args." + iter.Label(),
				Message: "argument type must be a string",
				Pos:     position(iter.Value().Pos()),
			}
		}
		args = append(args, ir.Arg{Name: iter.Label(), Type: typ})
	}

	return args, nil
}

// docComment joins the doc comments attached to a CUE field.
func docComment(v cue.Value) string {
	var parts []string
	for _, cg := range v.Doc() {
		if text := strings.TrimRight(cg.Text(), "\n"); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "\n")
}
