package loopback

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/busgen/proxy"
)

const (
	dest  = "org.test.SomeService"
	path  = "/org/test/SomeObject"
	iface = "org.test.SomeIface"
)

func newBus(t *testing.T) *Bus {
	t.Helper()
	b := New()
	err := b.Export(dest, path, iface, Interface{
		Methods: map[string]Method{
			"DoThis": {
				Signature: "su",
				Handler: func(args []any) ([]any, error) {
					return []any{args[0].(string) == "foo" && args[1].(uint32) == 32}, nil
				},
			},
			"Fail": {Handler: func([]any) ([]any, error) {
				return nil, errors.New("remote failure")
			}},
		},
		Properties:    map[string]any{"AProperty": "initial", "Version": uint32(3)},
		ReadOnly:      []string{"Version"},
		Introspection: "<node/>",
	})
	require.NoError(t, err)
	return b
}

func open(t *testing.T, b *Bus) proxy.Object {
	t.Helper()
	obj, err := b.Open(dest, path, iface)
	require.NoError(t, err)
	return obj
}

func TestCallDecodesReply(t *testing.T) {
	obj := open(t, newBus(t))

	var reply bool
	require.NoError(t, obj.Call("DoThis", []any{"foo", uint32(32)}, &reply))
	assert.True(t, reply)

	require.NoError(t, obj.Call("DoThis", []any{"bar", uint32(32)}, &reply))
	assert.False(t, reply)
}

func TestCallErrors(t *testing.T) {
	obj := open(t, newBus(t))

	tests := []struct {
		name   string
		method string
		args   []any
		reply  []any
		target error
	}{
		{"unknown method", "Nope", nil, nil, proxy.ErrUnknownMember},
		{"signature mismatch", "DoThis", []any{"foo", int32(32)}, nil, proxy.ErrSignature},
		{"unsupported arg", "DoThis", []any{[]string{"x"}}, nil, proxy.ErrSignature},
		{"reply kind mismatch", "DoThis", []any{"foo", uint32(1)}, []any{new(string)}, proxy.ErrSignature},
		{"too many replies", "DoThis", []any{"foo", uint32(1)}, []any{new(bool), new(bool)}, proxy.ErrSignature},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := obj.Call(tt.method, tt.args, tt.reply...)
			var te *proxy.TransportError
			require.ErrorAs(t, err, &te)
			assert.Equal(t, proxy.OpCall, te.Op)
			assert.Equal(t, tt.method, te.Member)
			assert.ErrorIs(t, err, tt.target)
		})
	}
}

func TestCallHandlerErrorIsReported(t *testing.T) {
	obj := open(t, newBus(t))

	err := obj.Call("Fail", nil)
	var te *proxy.TransportError
	require.ErrorAs(t, err, &te)
	assert.EqualError(t, te.Err, "remote failure")
}

func TestProperties(t *testing.T) {
	obj := open(t, newBus(t))

	var s string
	require.NoError(t, obj.Get("AProperty", &s))
	assert.Equal(t, "initial", s)

	require.NoError(t, obj.Set("AProperty", "updated"))
	require.NoError(t, obj.Get("AProperty", &s))
	assert.Equal(t, "updated", s)

	var v uint32
	require.NoError(t, obj.Get("Version", &v))
	assert.Equal(t, uint32(3), v)

	assert.ErrorIs(t, obj.Set("Version", uint32(4)), proxy.ErrReadOnly)
	assert.ErrorIs(t, obj.Set("AProperty", 42.0), proxy.ErrSignature)
	assert.ErrorIs(t, obj.Set("Missing", "x"), proxy.ErrUnknownMember)
	assert.ErrorIs(t, obj.Get("Missing", &s), proxy.ErrUnknownMember)
	assert.Error(t, obj.Get("AProperty", s), "non-pointer target")
}

func TestPropertiesAreIndependentPerBus(t *testing.T) {
	props := map[string]any{"AProperty": "shared"}
	def := Interface{Properties: props}

	a, b := New(), New()
	require.NoError(t, a.Export(dest, path, iface, def))
	require.NoError(t, b.Export(dest, path, iface, def))

	require.NoError(t, open(t, a).Set("AProperty", "changed"))

	var s string
	require.NoError(t, open(t, b).Get("AProperty", &s))
	assert.Equal(t, "shared", s)
	assert.Equal(t, "shared", props["AProperty"])
}

func TestIntrospect(t *testing.T) {
	obj := open(t, newBus(t))
	xml, err := obj.Introspect()
	require.NoError(t, err)
	assert.Equal(t, "<node/>", xml)
}

func TestOpenUnknownObject(t *testing.T) {
	b := newBus(t)
	_, err := b.Open(dest, "/elsewhere", iface)

	var te *proxy.TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, proxy.OpOpen, te.Op)
	assert.ErrorIs(t, err, proxy.ErrNoObject)
}

func TestCloseReleasesHandle(t *testing.T) {
	b := newBus(t)
	obj := open(t, b)
	assert.Equal(t, 1, b.OpenHandles())

	require.NoError(t, obj.Close())
	assert.Equal(t, 0, b.OpenHandles())

	assert.ErrorIs(t, obj.Close(), proxy.ErrClosed)
	assert.ErrorIs(t, obj.Call("DoThis", []any{"foo", uint32(1)}), proxy.ErrClosed)
	_, err := obj.Introspect()
	assert.ErrorIs(t, err, proxy.ErrClosed)
}

func TestUnexport(t *testing.T) {
	b := newBus(t)
	obj := open(t, b)

	b.Unexport(dest, path, iface)
	var s string
	assert.ErrorIs(t, obj.Get("AProperty", &s), proxy.ErrNoObject)
}

func TestExportValidation(t *testing.T) {
	b := newBus(t)
	assert.Error(t, b.Export(dest, path, iface, Interface{}), "duplicate export")
	assert.Error(t, New().Export(dest, path, iface, Interface{
		Methods: map[string]Method{"X": {}},
	}), "nil handler")
	assert.Error(t, New().Export(dest, path, iface, Interface{
		ReadOnly: []string{"Missing"},
	}), "undefined read-only property")
}

func TestExportRejectsPropertiesWithoutWireType(t *testing.T) {
	for name, v := range map[string]any{
		"nil":    nil,
		"map":    map[string]int{"a": 1},
		"struct": struct{ X int }{1},
	} {
		err := New().Export(dest, path, iface, Interface{
			Properties: map[string]any{"Odd": v},
		})
		require.Error(t, err, name)
		assert.Contains(t, err.Error(), "property Odd holds", name)
	}
}

func TestSetOnPropertyWithoutWireType(t *testing.T) {
	b := newBus(t)
	obj := open(t, b)

	b.mu.Lock()
	b.exports[objectKey{destination: dest, path: path, iface: iface}].props["Odd"] = []int{1}
	b.mu.Unlock()

	var err error
	assert.NotPanics(t, func() { err = obj.Set("Odd", "x") })
	var te *proxy.TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, proxy.OpSet, te.Op)
	assert.ErrorIs(t, err, proxy.ErrSignature)
}

func TestConcurrentUse(t *testing.T) {
	b := newBus(t)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			obj, err := b.Open(dest, path, iface)
			if !assert.NoError(t, err) {
				return
			}
			defer obj.Close()

			assert.NoError(t, obj.Set("AProperty", fmt.Sprintf("v%d", i)))
			var s string
			assert.NoError(t, obj.Get("AProperty", &s))
			var reply bool
			assert.NoError(t, obj.Call("DoThis", []any{"foo", uint32(i)}, &reply))
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 0, b.OpenHandles())
}
