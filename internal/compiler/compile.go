package compiler

import (
	"fmt"
	"strings"

	"github.com/roach88/busgen/internal/ir"
	"github.com/roach88/busgen/wire"
)

const introspectMethod = "introspect"

// closeMethod is generated on every proxy to release its handle.
const closeMethod = "Close"

// Compile resolves a parsed declaration into a ProxySpec.
//
// Each declaration is compiled independently in a single pass. The first
// problem is returned as a *CompileError and no spec is produced.
func Compile(decl ir.InterfaceDecl) (*ir.ProxySpec, error) {
	if !isIdentifier(decl.Name) {
		return nil, &CompileError{
			Field:   "interface",
			Message: fmt.Sprintf("interface name %q is not an identifier", decl.Name),
			Pos:     decl.Pos,
		}
	}

	hash, err := ir.DeclarationHash(decl)
	if err != nil {
		return nil, err
	}

	names := ResolveNames(decl.Name, decl.Directives)
	spec := &ir.ProxySpec{
		Name:           decl.Name,
		TypeName:       PascalCase(decl.Name) + proxySuffix,
		Doc:            decl.Doc,
		Interface:      names.Interface,
		DefaultPath:    names.DefaultPath,
		DefaultService: names.DefaultService,
		Hash:           hash,
	}

	// Go method names already taken, mapped to the declaration that took them
	taken := map[string]string{closeMethod: "the generated Close method"}
	hasIntrospect := false

	for _, m := range decl.Methods {
		if m.Name == introspectMethod {
			hasIntrospect = true
		}

		member, err := compileMethod(m)
		if err != nil {
			return nil, err
		}

		if owner, ok := taken[member.GoName]; ok {
			return nil, &CompileError{
				Field:   "method." + m.Name,
				Message: fmt.Sprintf("Go method %s collides with %s", member.GoName, owner),
				Pos:     m.Pos,
			}
		}
		taken[member.GoName] = fmt.Sprintf("method %q", m.Name)
		spec.Members = append(spec.Members, member)
	}

	if !hasIntrospect {
		member := introspectMember()
		if owner, ok := taken[member.GoName]; ok {
			return nil, &CompileError{
				Field:   "interface",
				Message: fmt.Sprintf("Go method %s collides with %s", member.GoName, owner),
				Pos:     decl.Pos,
			}
		}
		spec.Members = append(spec.Members, member)
	}

	return spec, nil
}

// introspectMember is synthesized when the declaration has no introspect method.
func introspectMember() ir.Member {
	return ir.Member{
		Kind:     ir.MemberIntrospect,
		Method:   introspectMethod,
		GoName:   PascalCase(introspectMethod),
		WireName: PascalCase(introspectMethod),
		Doc:      "Introspect returns the introspection data of the remote object.",
		Result:   wire.KindString,
	}
}

// compileMethod classifies a method and resolves its names and types.
func compileMethod(m ir.MethodDecl) (ir.Member, error) {
	field := "method." + m.Name
	member := ir.Member{
		Method: m.Name,
		GoName: PascalCase(m.Name),
		Doc:    m.Doc,
	}

	if !isExported(member.GoName) {
		return member, &CompileError{
			Field:   field,
			Message: fmt.Sprintf("method name %q does not form a Go identifier", m.Name),
			Pos:     m.Pos,
		}
	}

	// Resolve argument types and Go parameter names
	seen := make(map[string]string)
	for _, a := range m.Args {
		kind, ok := wire.ParseKind(a.Type)
		if !ok {
			return member, &CompileError{
				Field:   field + ".args." + a.Name,
				Message: fmt.Sprintf("unsupported type %q", a.Type),
				Pos:     m.Pos,
			}
		}
		goName := paramName(a.Name)
		if !isIdentifier(goName) {
			return member, &CompileError{
				Field:   field + ".args." + a.Name,
				Message: fmt.Sprintf("argument name %q does not form a Go identifier", a.Name),
				Pos:     m.Pos,
			}
		}
		if prev, ok := seen[goName]; ok {
			return member, &CompileError{
				Field:   field + ".args." + a.Name,
				Message: fmt.Sprintf("duplicate argument: %q and %q both become %s", prev, a.Name, goName),
				Pos:     m.Pos,
			}
		}
		seen[goName] = a.Name
		member.Params = append(member.Params, ir.Param{Name: a.Name, GoName: goName, Kind: kind})
	}

	if m.Returns != "" {
		kind, ok := wire.ParseKind(m.Returns)
		if !ok {
			return member, &CompileError{
				Field:   field + ".returns",
				Message: fmt.Sprintf("unsupported type %q", m.Returns),
				Pos:     m.Pos,
			}
		}
		member.Result = kind
	}

	// Classify: call, getter or setter
	switch {
	case !m.Property:
		member.Kind = ir.MemberCall
	case len(m.Args) == 0:
		member.Kind = ir.MemberGetter
		if !member.HasResult() {
			return member, &CompileError{
				Field:   field,
				Message: "property getter must return a value",
				Pos:     m.Pos,
			}
		}
	case len(m.Args) == 1:
		member.Kind = ir.MemberSetter
		if member.HasResult() {
			return member, &CompileError{
				Field:   field,
				Message: "property setter cannot return a value",
				Pos:     m.Pos,
			}
		}
	default:
		return member, &CompileError{
			Field:   field,
			Message: fmt.Sprintf("property setter takes exactly one argument, got %d", len(m.Args)),
			Pos:     m.Pos,
		}
	}

	wireName, err := resolveWireName(m, member.Kind)
	if err != nil {
		return member, err
	}
	member.WireName = wireName

	return member, nil
}

// resolveWireName picks the explicit override, else the PascalCase method
// name. Setters drop their set_ prefix first and must have one.
func resolveWireName(m ir.MethodDecl, kind ir.MemberKind) (string, error) {
	if m.WireName != "" {
		return m.WireName, nil
	}
	if kind != ir.MemberSetter {
		return PascalCase(m.Name), nil
	}
	if !strings.HasPrefix(m.Name, setterPrefix) || len(m.Name) == len(setterPrefix) {
		return "", &CompileError{
			Field:   "method." + m.Name,
			Message: fmt.Sprintf("property setter %q must be named %s<property>", m.Name, setterPrefix),
			Pos:     m.Pos,
		}
	}
	return PascalCase(strings.TrimPrefix(m.Name, setterPrefix)), nil
}
