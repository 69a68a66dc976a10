package codegen

import (
	"go/parser"
	"go/token"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/busgen/internal/compiler"
	"github.com/roach88/busgen/internal/ir"
)

// fixedHash stands in for the declaration hash, which package ir tests.
const fixedHash = "0123abcd"

func compileDecl(t *testing.T, decl ir.InterfaceDecl) *ir.ProxySpec {
	t.Helper()
	spec, err := compiler.Compile(decl)
	require.NoError(t, err)
	spec.Hash = fixedHash
	return spec
}

func assertGolden(t *testing.T, name string, got []byte) {
	t.Helper()
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, got)
}

func TestEmitSomeIface(t *testing.T) {
	spec := compileDecl(t, ir.InterfaceDecl{
		Name: "SomeIface",
		Doc:  "Talks to some service.",
		Directives: ir.Directives{
			Interface:      "org.test.SomeIface",
			DefaultPath:    "/org/test/SomeObject",
			DefaultService: "org.test.SomeService",
		},
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
	})

	src, err := Emit(spec, Options{Package: "someiface", Source: "testdata/someiface.cue"})
	require.NoError(t, err)
	assertGolden(t, "someiface", src)
}

func TestEmitDefaultsAndDeclaredIntrospect(t *testing.T) {
	spec := compileDecl(t, ir.InterfaceDecl{
		Name: "Foo",
		Methods: []ir.MethodDecl{
			{Name: "ping"},
			{
				Name:     "frob",
				Doc:      "Frob calls the Frobnicate method.\n\nLevels below one are rejected.",
				Args:     []ir.Arg{{Name: "level", Type: "nonzero_u8"}, {Name: "mode", Type: "i8"}},
				Returns:  "f32",
				WireName: "Frobnicate",
			},
			{Name: "introspect", Returns: "string"},
		},
	})

	src, err := Emit(spec, Options{Package: "foo", RuntimeImport: "example.com/bus/runtime"})
	require.NoError(t, err)
	assertGolden(t, "foo_defaults", src)
}

func TestEmitProducesParseableGo(t *testing.T) {
	spec := compileDecl(t, ir.InterfaceDecl{
		Name: "Kinds",
		Methods: []ir.MethodDecl{
			{Name: "all", Args: []ir.Arg{
				{Name: "a", Type: "u8"}, {Name: "b", Type: "bool"}, {Name: "c", Type: "i16"},
				{Name: "d", Type: "u16"}, {Name: "e", Type: "i32"}, {Name: "f", Type: "u32"},
				{Name: "g", Type: "i64"}, {Name: "h", Type: "u64"}, {Name: "i", Type: "f64"},
				{Name: "j", Type: "char"}, {Name: "type", Type: "str"},
			}, Returns: "nonzero_i64"},
		},
	})

	src, err := Emit(spec, Options{Package: "kinds"})
	require.NoError(t, err)

	f, err := parser.ParseFile(token.NewFileSet(), "kinds_proxy.go", src, parser.ParseComments)
	require.NoError(t, err)
	assert.Equal(t, "kinds", f.Name.Name)
	assert.Contains(t, string(src), "func (p *KindsProxy) All(a byte, b bool, c int16, d uint16, e int32, f uint32, g int64, h uint64, i float64, j string, type_ string) (int64, error)")
}

func TestEmitCharTravelsAsString(t *testing.T) {
	spec := compileDecl(t, ir.InterfaceDecl{
		Name: "Keys",
		Methods: []ir.MethodDecl{
			{Name: "swap_case", Args: []ir.Arg{{Name: "key", Type: "char"}}, Returns: "char"},
		},
	})
	assert.Equal(t, "s", spec.Members[0].Signature())

	src, err := Emit(spec, Options{Package: "keys"})
	require.NoError(t, err)
	out := string(src)
	assert.Contains(t, out, "func (p *KeysProxy) SwapCase(key string) (string, error)")
	assert.Contains(t, out, "var reply string")
	assert.NotContains(t, out, "rune")
}

func TestEmitStampsGeneratorVersion(t *testing.T) {
	spec := compileDecl(t, ir.InterfaceDecl{Name: "Foo", Methods: []ir.MethodDecl{{Name: "ping"}}})

	src, err := Emit(spec, Options{Package: "foo"})
	require.NoError(t, err)
	assert.Contains(t, string(src), "\n// Generator: busgen "+ir.GeneratorVersion+"\n")
}

func TestEmitIsDeterministic(t *testing.T) {
	spec := compileDecl(t, ir.InterfaceDecl{Name: "Foo", Methods: []ir.MethodDecl{{Name: "ping"}}})

	first, err := Emit(spec, Options{Package: "foo"})
	require.NoError(t, err)
	second, err := Emit(spec, Options{Package: "foo"})
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestEmitRejectsBadPackage(t *testing.T) {
	spec := compileDecl(t, ir.InterfaceDecl{Name: "Foo"})

	for _, pkg := range []string{"", "my-pkg", "func"} {
		_, err := Emit(spec, Options{Package: pkg})
		assert.Error(t, err, "package %q", pkg)
	}

	_, err := Emit(nil, Options{Package: "foo"})
	assert.Error(t, err)
}

func TestFileName(t *testing.T) {
	spec := &ir.ProxySpec{Name: "SomeIface"}
	assert.Equal(t, "someiface_proxy.go", FileName(spec, ""))
	assert.Equal(t, "someiface.gen.go", FileName(spec, ".gen.go"))
}
