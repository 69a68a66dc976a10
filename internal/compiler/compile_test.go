package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/busgen/internal/ir"
	"github.com/roach88/busgen/wire"
)

func someIface() ir.InterfaceDecl {
	return ir.InterfaceDecl{
		Name: "SomeIface",
		Doc:  "Talks to some service.",
		Methods: []ir.MethodDecl{
			{
				Name:    "do_this",
				Doc:     "Does this.",
				Args:    []ir.Arg{{Name: "with", Type: "string"}, {Name: "some", Type: "u32"}},
				Returns: "bool",
			},
			{Name: "a_property", Property: true, Returns: "string"},
			{Name: "set_a_property", Property: true, Args: []ir.Arg{{Name: "a_property", Type: "string"}}},
		},
	}
}

func memberByGoName(t *testing.T, spec *ir.ProxySpec, goName string) ir.Member {
	t.Helper()
	for _, m := range spec.Members {
		if m.GoName == goName {
			return m
		}
	}
	t.Fatalf("member %s not found", goName)
	return ir.Member{}
}

func TestCompileDefaults(t *testing.T) {
	spec, err := Compile(ir.InterfaceDecl{Name: "Foo"})
	require.NoError(t, err)

	assert.Equal(t, "FooProxy", spec.TypeName)
	assert.Equal(t, "org.freedesktop.Foo", spec.Interface)
	assert.Equal(t, "/org/freedesktop/Foo", spec.DefaultPath)
	assert.Equal(t, "org.freedesktop.Foo", spec.DefaultService)
	assert.Len(t, spec.Hash, 64)
}

func TestCompileClassifiesMembers(t *testing.T) {
	spec, err := Compile(someIface())
	require.NoError(t, err)
	require.Len(t, spec.Members, 4)

	call := memberByGoName(t, spec, "DoThis")
	assert.Equal(t, ir.MemberCall, call.Kind)
	assert.Equal(t, "DoThis", call.WireName)
	assert.Equal(t, "Does this.", call.Doc)
	assert.Equal(t, wire.KindBool, call.Result)
	assert.Equal(t, "su", call.Signature())
	require.Len(t, call.Params, 2)
	assert.Equal(t, "with", call.Params[0].GoName)
	assert.Equal(t, wire.KindU32, call.Params[1].Kind)

	getter := memberByGoName(t, spec, "AProperty")
	assert.Equal(t, ir.MemberGetter, getter.Kind)
	assert.Equal(t, "AProperty", getter.WireName)
	assert.Equal(t, wire.KindString, getter.Result)

	setter := memberByGoName(t, spec, "SetAProperty")
	assert.Equal(t, ir.MemberSetter, setter.Kind)
	assert.Equal(t, "AProperty", setter.WireName)
	require.Len(t, setter.Params, 1)
	assert.Equal(t, "aProperty", setter.Params[0].GoName)
}

func TestCompileSynthesizesIntrospect(t *testing.T) {
	spec, err := Compile(someIface())
	require.NoError(t, err)

	last := spec.Members[len(spec.Members)-1]
	assert.Equal(t, ir.MemberIntrospect, last.Kind)
	assert.Equal(t, "Introspect", last.GoName)
	assert.Equal(t, wire.KindString, last.Result)
}

func TestCompileDeclaredIntrospectSuppressesSynthesis(t *testing.T) {
	decl := ir.InterfaceDecl{
		Name:    "Foo",
		Methods: []ir.MethodDecl{{Name: "introspect", Returns: "string"}},
	}

	spec, err := Compile(decl)
	require.NoError(t, err)
	require.Len(t, spec.Members, 1)
	assert.Equal(t, ir.MemberCall, spec.Members[0].Kind)
	assert.Equal(t, "Introspect", spec.Members[0].WireName)
}

func TestCompileWireNameOverride(t *testing.T) {
	decl := ir.InterfaceDecl{
		Name: "Foo",
		Methods: []ir.MethodDecl{
			{Name: "frob", WireName: "Frobnicate"},
			// An explicit name lifts the set_ requirement
			{Name: "volume", Property: true, Args: []ir.Arg{{Name: "v", Type: "f64"}}, WireName: "Volume"},
		},
	}

	spec, err := Compile(decl)
	require.NoError(t, err)
	assert.Equal(t, "Frobnicate", memberByGoName(t, spec, "Frob").WireName)

	vol := memberByGoName(t, spec, "Volume")
	assert.Equal(t, ir.MemberSetter, vol.Kind)
	assert.Equal(t, "Volume", vol.WireName)
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		name    string
		method  ir.MethodDecl
		message string
	}{
		{
			name:    "setter without prefix",
			method:  ir.MethodDecl{Name: "a_property", Property: true, Args: []ir.Arg{{Name: "v", Type: "string"}}},
			message: "must be named set_<property>",
		},
		{
			name:    "bare set_ prefix",
			method:  ir.MethodDecl{Name: "set_", Property: true, Args: []ir.Arg{{Name: "v", Type: "string"}}},
			message: "must be named set_<property>",
		},
		{
			name:    "setter with result",
			method:  ir.MethodDecl{Name: "set_x", Property: true, Args: []ir.Arg{{Name: "v", Type: "u8"}}, Returns: "u8"},
			message: "cannot return a value",
		},
		{
			name:    "getter without result",
			method:  ir.MethodDecl{Name: "x", Property: true},
			message: "must return a value",
		},
		{
			name:    "setter with two args",
			method:  ir.MethodDecl{Name: "set_x", Property: true, Args: []ir.Arg{{Name: "a", Type: "u8"}, {Name: "b", Type: "u8"}}},
			message: "exactly one argument",
		},
		{
			name:    "unknown arg type",
			method:  ir.MethodDecl{Name: "m", Args: []ir.Arg{{Name: "a", Type: "array"}}},
			message: `unsupported type "array"`,
		},
		{
			name:    "unknown return type",
			method:  ir.MethodDecl{Name: "m", Returns: "dict"},
			message: `unsupported type "dict"`,
		},
		{
			name:    "duplicate argument",
			method:  ir.MethodDecl{Name: "m", Args: []ir.Arg{{Name: "a_b", Type: "u8"}, {Name: "aB", Type: "u8"}}},
			message: "duplicate argument",
		},
		{
			name:    "reserved Close",
			method:  ir.MethodDecl{Name: "close"},
			message: "collides with the generated Close method",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec, err := Compile(ir.InterfaceDecl{Name: "Foo", Methods: []ir.MethodDecl{tt.method}})
			require.Error(t, err)
			assert.Nil(t, spec, "no partial proxy on failure")

			var compileErr *CompileError
			require.ErrorAs(t, err, &compileErr)
			assert.Contains(t, compileErr.Message, tt.message)
		})
	}
}

func TestCompileDuplicateGoNames(t *testing.T) {
	decl := ir.InterfaceDecl{
		Name:    "Foo",
		Methods: []ir.MethodDecl{{Name: "do_this"}, {Name: "do-this"}},
	}

	_, err := Compile(decl)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "collides")
}

func TestCompileRenamesReservedParams(t *testing.T) {
	decl := ir.InterfaceDecl{
		Name: "Foo",
		Methods: []ir.MethodDecl{{
			Name: "m",
			Args: []ir.Arg{{Name: "type", Type: "u8"}, {Name: "err", Type: "u8"}, {Name: "string", Type: "string"}},
		}},
	}

	spec, err := Compile(decl)
	require.NoError(t, err)
	params := spec.Members[0].Params
	assert.Equal(t, "type_", params[0].GoName)
	assert.Equal(t, "err_", params[1].GoName)
	assert.Equal(t, "string_", params[2].GoName)
}

func TestCompileInvalidInterfaceName(t *testing.T) {
	_, err := Compile(ir.InterfaceDecl{Name: "not-an-ident"})
	var compileErr *CompileError
	require.ErrorAs(t, err, &compileErr)
	assert.Equal(t, "interface", compileErr.Field)
}
