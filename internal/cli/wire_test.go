package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/busgen/wire"
)

func TestBuildWireTable(t *testing.T) {
	dbus := BuildWireTable(wire.FormatDBus)
	gvariant := BuildWireTable(wire.FormatGVariant)

	assert.Equal(t, "dbus", dbus.Format)
	require.Len(t, dbus.Kinds, len(wire.Kinds()))
	require.Len(t, gvariant.Kinds, len(wire.Kinds()))

	rows := make(map[string]WireRow)
	for _, r := range gvariant.Kinds {
		rows[r.Kind] = r
	}
	assert.Equal(t, WireRow{Kind: "string", Signature: "s", Alignment: 1, GoType: "string"}, rows["string"])
	assert.Equal(t, WireRow{Kind: "f32", Signature: "d", Alignment: 8, GoType: "float32"}, rows["f32"])
	assert.Equal(t, WireRow{Kind: "nonzero_u16", Signature: "q", Alignment: 2, GoType: "uint16"}, rows["nonzero_u16"])

	for _, r := range dbus.Kinds {
		if r.Kind == "string" {
			assert.Equal(t, 4, r.Alignment)
		}
	}
}

func TestWireCommandText(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := NewWireCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--wire-format", "gvariant"})

	require.NoError(t, cmd.Execute())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, len(wire.Kinds())+1)
	assert.Equal(t, []string{"KIND", "SIG", "ALIGN", "GO", "TYPE"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"u8", "y", "1", "byte"}, strings.Fields(lines[1]))
}

func TestWireCommandJSON(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := NewWireCommand(&RootOptions{Format: "json"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{})

	require.NoError(t, cmd.Execute())

	var resp struct {
		Status string     `json:"status"`
		Data   WireResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "dbus", resp.Data.Format)
	assert.Equal(t, BuildWireTable(wire.FormatDBus), resp.Data)
}

func TestWireCommandUnknownFormat(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := NewWireCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--wire-format", "xdr"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, buf.String(), `unknown wire format "xdr"`)
}
