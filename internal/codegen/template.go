package codegen

const proxyTemplate = `// Code generated by busgen{{with .Source}} from {{.}}{{end}}. DO NOT EDIT.
// Declaration hash: {{.Spec.Hash}}
// Generator: busgen {{.Version}}

package {{.Package}}

import {{.ImportAlias}}{{quote .RuntimeImport}}

// Bus coordinates of {{.Spec.Name}}.
const (
	{{.Prefix}}Interface = {{quote .Spec.Interface}}
	{{.Prefix}}DefaultPath = {{quote .Spec.DefaultPath}}
	{{.Prefix}}DefaultService = {{quote .Spec.DefaultService}}
)

{{comment .Spec.Doc (printf "%s is a client proxy for the %s interface." .Spec.TypeName .Spec.Interface)}}
type {{.Spec.TypeName}} struct {
	obj proxy.Object
}

// New{{.Spec.TypeName}} opens a {{.Spec.TypeName}} on the default service and path.
func New{{.Spec.TypeName}}(conn proxy.Conn) (*{{.Spec.TypeName}}, error) {
	return New{{.Spec.TypeName}}For(conn, {{.Prefix}}DefaultService, {{.Prefix}}DefaultPath)
}

// New{{.Spec.TypeName}}For opens a {{.Spec.TypeName}} on the given destination and path.
func New{{.Spec.TypeName}}For(conn proxy.Conn, destination, path string) (*{{.Spec.TypeName}}, error) {
	obj, err := conn.Open(destination, path, {{.Prefix}}Interface)
	if err != nil {
		return nil, err
	}
	return &{{.Spec.TypeName}}{obj: obj}, nil
}

// Close releases the remote object handle.
func (p *{{.Spec.TypeName}}) Close() error {
	return p.obj.Close()
}
{{range .Spec.Members}}
{{comment .Doc (fallbackDoc .)}}
func (p *{{$.Spec.TypeName}}) {{.GoName}}({{params .Params}}) {{results .}} {
{{- if eq .Kind "call"}}
{{- if .HasResult}}
	var reply {{.Result.GoType}}
	err := p.obj.Call({{quote .WireName}}, {{payload .Params}}, &reply)
	return reply, err
{{- else}}
	return p.obj.Call({{quote .WireName}}, {{payload .Params}})
{{- end}}
{{- else if eq .Kind "getter"}}
	var value {{.Result.GoType}}
	err := p.obj.Get({{quote .WireName}}, &value)
	return value, err
{{- else if eq .Kind "setter"}}
	return p.obj.Set({{quote .WireName}}, {{(index .Params 0).GoName}})
{{- else}}
	return p.obj.Introspect()
{{- end}}
}
{{end}}`
