package codegen

import (
	"bytes"
	"fmt"
	"go/format"
	"go/token"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"text/template"

	"github.com/roach88/busgen/internal/ir"
)

// DefaultRuntimeImport is the package providing proxy.Conn and proxy.Object.
const DefaultRuntimeImport = "github.com/roach88/busgen/proxy"

// DefaultFileSuffix is appended to the lowercased declaration name.
const DefaultFileSuffix = "_proxy.go"

// Options control how a proxy file is rendered.
type Options struct {
	// Package is the Go package clause of the generated file.
	Package string
	// RuntimeImport is the import path of the proxy runtime.
	// Empty means DefaultRuntimeImport.
	RuntimeImport string
	// Source names the declaration file in the generated header.
	Source string
}

var tmpl = template.Must(template.New("proxy").Funcs(template.FuncMap{
	"quote":       strconv.Quote,
	"comment":     comment,
	"fallbackDoc": fallbackDoc,
	"params":      params,
	"results":     results,
	"payload":     payload,
}).Parse(proxyTemplate))

type templateData struct {
	Spec          *ir.ProxySpec
	Package       string
	RuntimeImport string
	ImportAlias   string
	Source        string
	Prefix        string
	Version       string
}

// Emit renders the Go source of a proxy type for spec.
func Emit(spec *ir.ProxySpec, opts Options) ([]byte, error) {
	if spec == nil {
		return nil, fmt.Errorf("emit: nil proxy spec")
	}
	if !token.IsIdentifier(opts.Package) || token.IsKeyword(opts.Package) {
		return nil, fmt.Errorf("emit %s: invalid package name %q", spec.Name, opts.Package)
	}

	data := templateData{
		Spec:          spec,
		Package:       opts.Package,
		RuntimeImport: opts.RuntimeImport,
		Prefix:        strings.TrimSuffix(spec.TypeName, "Proxy"),
		Version:       ir.GeneratorVersion,
	}
	if opts.Source != "" {
		data.Source = filepath.Base(opts.Source)
	}
	if data.RuntimeImport == "" {
		data.RuntimeImport = DefaultRuntimeImport
	}
	if path.Base(data.RuntimeImport) != "proxy" {
		data.ImportAlias = "proxy "
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("emit %s: %w", spec.Name, err)
	}

	src, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("emit %s: format generated source: %w", spec.Name, err)
	}
	return src, nil
}

// FileName returns the generated file name for spec, e.g. "someiface_proxy.go".
func FileName(spec *ir.ProxySpec, suffix string) string {
	if suffix == "" {
		suffix = DefaultFileSuffix
	}
	return strings.ToLower(spec.Name) + suffix
}

// comment renders doc as a // comment block, or fallback when doc is empty.
func comment(doc, fallback string) string {
	if strings.TrimSpace(doc) == "" {
		doc = fallback
	}
	lines := strings.Split(strings.TrimRight(doc, "\n"), "\n")
	for i, line := range lines {
		line = strings.TrimRight(line, " \t")
		if line == "" {
			lines[i] = "//"
		} else {
			lines[i] = "// " + line
		}
	}
	return strings.Join(lines, "\n")
}

func fallbackDoc(m ir.Member) string {
	switch m.Kind {
	case ir.MemberGetter:
		return fmt.Sprintf("%s returns the %s property.", m.GoName, m.WireName)
	case ir.MemberSetter:
		return fmt.Sprintf("%s sets the %s property.", m.GoName, m.WireName)
	case ir.MemberIntrospect:
		return fmt.Sprintf("%s returns the introspection data of the remote object.", m.GoName)
	default:
		return fmt.Sprintf("%s calls the %s method.", m.GoName, m.WireName)
	}
}

func params(ps []ir.Param) string {
	parts := make([]string, len(ps))
	for i, p := range ps {
		parts[i] = p.GoName + " " + p.Kind.GoType()
	}
	return strings.Join(parts, ", ")
}

func results(m ir.Member) string {
	if m.HasResult() {
		return "(" + m.Result.GoType() + ", error)"
	}
	return "error"
}

// payload renders the ordered argument list passed to Object.Call.
func payload(ps []ir.Param) string {
	if len(ps) == 0 {
		return "nil"
	}
	names := make([]string, len(ps))
	for i, p := range ps {
		names[i] = p.GoName
	}
	return "[]any{" + strings.Join(names, ", ") + "}"
}
