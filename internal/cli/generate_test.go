package cli

import (
	"bytes"
	"encoding/json"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateWritesOneFilePerInterface(t *testing.T) {
	dir := writeDeclarations(t, map[string]string{
		"some.cue":    someIfaceCUE,
		"player.yaml": mediaPlayerYAML,
	})
	outDir := filepath.Join(t.TempDir(), "busproxy")

	buf := &bytes.Buffer{}
	cmd := NewGenerateCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{dir, "--output-dir", outDir})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "✓ Generated 2 proxy file(s) in package busproxy")

	src, err := os.ReadFile(filepath.Join(outDir, "someiface_proxy.go"))
	require.NoError(t, err)
	assert.Contains(t, string(src), "// Code generated by busgen from some.cue. DO NOT EDIT.")
	assert.Contains(t, string(src), "package busproxy")
	assert.Contains(t, string(src), "type SomeIfaceProxy struct")
	assert.Contains(t, string(src), `p.obj.Call("DoThis", []any{with, some}, &reply)`)

	f, err := parser.ParseFile(token.NewFileSet(), "mediaplayer_proxy.go", mustRead(t, filepath.Join(outDir, "mediaplayer_proxy.go")), 0)
	require.NoError(t, err)
	assert.Equal(t, "busproxy", f.Name.Name)
}

func TestGenerateFlagsOverrideConfig(t *testing.T) {
	dir := writeDeclarations(t, map[string]string{"some.cue": someIfaceCUE})
	outDir := t.TempDir()

	buf := &bytes.Buffer{}
	cmd := NewGenerateCommand(&RootOptions{Format: "json"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{dir,
		"-o", outDir,
		"-p", "dbusapi",
		"--runtime-import", "example.com/bus/runtime",
		"--file-suffix", ".gen.go",
	})

	require.NoError(t, cmd.Execute())

	var resp struct {
		Status string         `json:"status"`
		Data   GenerateResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "dbusapi", resp.Data.Package)
	require.Len(t, resp.Data.Files, 1)

	file := resp.Data.Files[0]
	assert.Equal(t, filepath.Join(outDir, "someiface.gen.go"), file.Path)
	assert.Equal(t, "org.test.SomeIface", file.Interface)
	assert.NotEmpty(t, file.Hash)

	src := string(mustRead(t, file.Path))
	assert.Contains(t, src, "package dbusapi")
	assert.Contains(t, src, `import proxy "example.com/bus/runtime"`)
	assert.Contains(t, src, "// Declaration hash: "+file.Hash)
}

func TestGenerateWritesNothingOnError(t *testing.T) {
	dir := writeDeclarations(t, map[string]string{
		"good.cue": someIfaceCUE,
		"bad.cue": `
interface: Bad: {
	method: volume: {property: true, args: {v: "f64"}}
}
`,
	})
	outDir := filepath.Join(t.TempDir(), "out")

	buf := &bytes.Buffer{}
	cmd := NewGenerateCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{dir, "--output-dir", outDir})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, buf.String(), "✗ Generation failed")

	_, statErr := os.Stat(outDir)
	assert.True(t, os.IsNotExist(statErr), "output directory must not be created")
}

func TestGenerateRejectsDuplicateProxyTypes(t *testing.T) {
	dir := writeDeclarations(t, map[string]string{
		"a.yaml": "interfaces:\n  - name: Foo\n",
		"b.yaml": "interfaces:\n  - name: Foo\n",
	})
	outDir := filepath.Join(t.TempDir(), "out")

	buf := &bytes.Buffer{}
	cmd := NewGenerateCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{dir, "--output-dir", outDir})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, buf.String(), "E105")
	assert.Contains(t, buf.String(), `duplicate proxy type: "FooProxy"`)

	_, statErr := os.Stat(outDir)
	assert.True(t, os.IsNotExist(statErr), "output directory must not be created")
}

func TestGenerateRejectsCollidingFileNames(t *testing.T) {
	dir := writeDeclarations(t, map[string]string{
		"a.yaml": "interfaces:\n  - name: SomeBar\n",
		"b.yaml": "interfaces:\n  - name: Somebar\n",
	})
	outDir := filepath.Join(t.TempDir(), "out")

	buf := &bytes.Buffer{}
	cmd := NewGenerateCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{dir, "--output-dir", outDir})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, buf.String(), "E105")
	assert.Contains(t, buf.String(), `output file "somebar_proxy.go" is also written by`)

	_, statErr := os.Stat(outDir)
	assert.True(t, os.IsNotExist(statErr), "output directory must not be created")
}

func TestGenerateRejectsBadPackage(t *testing.T) {
	dir := writeDeclarations(t, map[string]string{"some.cue": someIfaceCUE})

	buf := &bytes.Buffer{}
	cmd := NewGenerateCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{dir, "--output-dir", t.TempDir(), "--package", "func"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, buf.String(), "invalid package name")
}

func mustRead(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return data
}
