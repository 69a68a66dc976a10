package compiler

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/roach88/busgen/internal/ir"
)

const (
	tagString = "!!str"
	tagBool   = "!!bool"
)

// ParseYAML parses a YAML declaration document:
//
//	interfaces:
//	  - name: SomeIface
//	    doc: Talks to some service.
//	    directives:
//	      interface: org.test.SomeIface
//	    methods:
//	      - method: do_this
//	        args:
//	          - with: string
//	          - some: u32
//	        returns: bool
//	      - method: a_property
//	        property: true
//	        returns: string
//
// Declarations are returned in document order. The first error stops parsing.
func ParseYAML(data []byte, filename string) ([]ir.InterfaceDecl, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &CompileError{Field: "yaml", Message: err.Error(), Pos: ir.Position{File: filename}}
	}
	if len(doc.Content) == 0 {
		return nil, nil
	}

	p := &yamlParser{file: filename}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, p.errorf(root, "yaml", "document must be a mapping")
	}

	var decls []ir.InterfaceDecl
	err := p.eachPair(root, func(key string, val *yaml.Node) error {
		if key != "interfaces" {
			return p.errorf(val, key, "unknown attribute")
		}
		if val.Kind != yaml.SequenceNode {
			return p.errorf(val, key, "interfaces must be a list")
		}
		for _, item := range val.Content {
			decl, err := p.parseInterface(item)
			if err != nil {
				return err
			}
			decls = append(decls, *decl)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return decls, nil
}

type yamlParser struct {
	file string
}

func (p *yamlParser) pos(n *yaml.Node) ir.Position {
	return ir.Position{File: p.file, Line: n.Line, Column: n.Column}
}

func (p *yamlParser) errorf(n *yaml.Node, field, format string, args ...any) *CompileError {
	return &CompileError{Field: field, Message: fmt.Sprintf(format, args...), Pos: p.pos(n)}
}

// eachPair walks a mapping node's key/value pairs in order.
func (p *yamlParser) eachPair(n *yaml.Node, fn func(key string, val *yaml.Node) error) error {
	for i := 0; i+1 < len(n.Content); i += 2 {
		if err := fn(n.Content[i].Value, n.Content[i+1]); err != nil {
			return err
		}
	}
	return nil
}

// str returns the node's value if it is a string scalar.
func str(n *yaml.Node) (string, bool) {
	if n.Kind != yaml.ScalarNode || n.Tag != tagString {
		return "", false
	}
	return n.Value, true
}

func (p *yamlParser) parseInterface(n *yaml.Node) (*ir.InterfaceDecl, error) {
	if n.Kind != yaml.MappingNode {
		return nil, p.errorf(n, "interface", "interface must be a mapping")
	}

	decl := &ir.InterfaceDecl{Pos: p.pos(n)}
	err := p.eachPair(n, func(key string, val *yaml.Node) error {
		switch key {
		case "name":
			s, ok := str(val)
			if !ok || !isIdentifier(s) {
				return p.errorf(val, "interface", "interface name %q is not an identifier", val.Value)
			}
			decl.Name = s
		case "doc":
			s, ok := str(val)
			if !ok {
				return p.errorf(val, "doc", "doc must be a string")
			}
			decl.Doc = s
		case "directives":
			d, err := p.parseDirectives(val)
			if err != nil {
				return err
			}
			decl.Directives = d
		case "methods":
			if val.Kind != yaml.SequenceNode {
				return p.errorf(val, "methods", "methods must be a list")
			}
			for _, item := range val.Content {
				m, err := p.parseMethod(item)
				if err != nil {
					return err
				}
				decl.Methods = append(decl.Methods, m)
			}
		default:
			return p.errorf(val, key, "unknown attribute")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if decl.Name == "" {
		return nil, p.errorf(n, "interface", "interface name is required")
	}

	return decl, nil
}

func (p *yamlParser) parseDirectives(n *yaml.Node) (ir.Directives, error) {
	var d ir.Directives
	if n.Kind != yaml.MappingNode {
		return d, p.errorf(n, "directives", "directives must be a mapping")
	}

	err := p.eachPair(n, func(key string, val *yaml.Node) error {
		word, ok := directiveLabels[key]
		if !ok {
			return p.errorf(val, "directives."+key, "unsupported argument")
		}
		s, ok := str(val)
		if !ok {
			return p.errorf(val, "directives."+key, "invalid %s argument", word)
		}
		if s == "" {
			return p.errorf(val, "directives."+key, "empty %s argument", word)
		}
		switch key {
		case "interface":
			d.Interface = s
		case "default_path":
			d.DefaultPath = s
		case "default_service":
			d.DefaultService = s
		}
		return nil
	})

	return d, err
}

func (p *yamlParser) parseMethod(n *yaml.Node) (ir.MethodDecl, error) {
	m := ir.MethodDecl{Pos: p.pos(n)}
	if n.Kind != yaml.MappingNode {
		return m, p.errorf(n, "method", "method must be a mapping")
	}

	// The declared name comes first so later errors can name the method.
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == "method" {
			m.Name, _ = str(n.Content[i+1])
		}
	}
	if !isIdentifier(m.Name) {
		return m, p.errorf(n, "method", "method name %q is not an identifier", m.Name)
	}
	field := "method." + m.Name

	err := p.eachPair(n, func(key string, val *yaml.Node) error {
		switch key {
		case "method":
		case "doc":
			s, ok := str(val)
			if !ok {
				return p.errorf(val, field+".doc", "doc must be a string")
			}
			m.Doc = s
		case "args":
			args, err := p.parseArgs(field, val)
			if err != nil {
				return err
			}
			m.Args = args
		case "returns":
			s, ok := str(val)
			if !ok {
				return p.errorf(val, field+".returns", "return type must be a string")
			}
			m.Returns = s
		case "property":
			if val.Kind != yaml.ScalarNode || val.Tag != tagBool {
				return p.errorf(val, field+".property", "invalid property argument")
			}
			var b bool
			if err := val.Decode(&b); err != nil {
				return p.errorf(val, field+".property", "invalid property argument")
			}
			m.Property = b
		case "name":
			s, ok := str(val)
			if !ok || s == "" {
				return p.errorf(val, field+".name", "invalid name argument")
			}
			m.WireName = s
		default:
			return p.errorf(val, field+"."+key, "unsupported argument")
		}
		return nil
	})

	return m, err
}

// parseArgs reads an ordered list of single-entry mappings: [{name: type}].
func (p *yamlParser) parseArgs(field string, n *yaml.Node) ([]ir.Arg, error) {
	if n.Kind != yaml.SequenceNode {
		return nil, p.errorf(n, field+".args", "args must be a list of name: type entries")
	}

	args := make([]ir.Arg, 0, len(n.Content))
	for _, item := range n.Content {
		if item.Kind != yaml.MappingNode || len(item.Content) != 2 {
			return nil, p.errorf(item, field+".args", "each argument must be a single name: type entry")
		}
		name := item.Content[0].Value
		typ, ok := str(item.Content[1])
		if !ok {
			return nil, p.errorf(item.Content[1], field+".args."+name, "argument type must be a string")
		}
		args = append(args, ir.Arg{Name: name, Type: typ})
	}

	return args, nil
}
