// Package loopback is an in-process proxy.Conn.
//
// Objects are exported onto a Bus with a table of method handlers and
// property values; handles opened from the Bus dispatch to them directly.
// Payloads are checked against wire signatures on the way in and decoded
// into reply pointers on the way out, so generated proxies can be exercised
// end to end without a message bus.
package loopback

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/roach88/busgen/proxy"
	"github.com/roach88/busgen/wire"
)

// Handler serves one remote method. It receives the call payload in order
// and returns the reply values in order.
type Handler func(args []any) ([]any, error)

// Method is an exported method. A non-empty Signature is checked against
// the signature of every incoming payload.
type Method struct {
	Signature string
	Handler   Handler
}

// Interface describes one exported interface of an object.
type Interface struct {
	Methods    map[string]Method
	Properties map[string]any
	// ReadOnly lists properties that reject Set.
	ReadOnly []string
	// Introspection is returned verbatim by Introspect.
	Introspection string
}

type objectKey struct {
	destination string
	path        string
	iface       string
}

func (k objectKey) String() string {
	return fmt.Sprintf("%s %s %s", k.destination, k.path, k.iface)
}

// export is the live state of an exported interface. Property values are
// copied on export and guarded by the bus mutex.
type export struct {
	methods       map[string]Method
	props         map[string]any
	readOnly      map[string]bool
	introspection string
}

// Bus is an in-process message bus. It is safe for concurrent use.
type Bus struct {
	mu      sync.RWMutex
	exports map[objectKey]*export
	handles map[uuid.UUID]*handle
	log     zerolog.Logger
}

// Option configures a Bus.
type Option func(*Bus)

// WithLogger sets the logger for dispatch tracing.
func WithLogger(l zerolog.Logger) Option {
	return func(b *Bus) {
		b.log = l
	}
}

// New returns an empty Bus.
func New(opts ...Option) *Bus {
	b := &Bus{
		exports: make(map[objectKey]*export),
		handles: make(map[uuid.UUID]*handle),
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Export publishes iface of the object at path under destination.
// Exporting the same triple twice is an error.
func (b *Bus) Export(destination, path, iface string, def Interface) error {
	key := objectKey{destination: destination, path: path, iface: iface}

	e := &export{
		methods:       make(map[string]Method, len(def.Methods)),
		props:         make(map[string]any, len(def.Properties)),
		readOnly:      make(map[string]bool, len(def.ReadOnly)),
		introspection: def.Introspection,
	}
	for name, m := range def.Methods {
		if m.Handler == nil {
			return fmt.Errorf("export %s: method %s has no handler", key, name)
		}
		e.methods[name] = m
	}
	for name, v := range def.Properties {
		if _, ok := wire.KindOf(v); !ok {
			return fmt.Errorf("export %s: property %s holds %T, which has no wire type", key, name, v)
		}
		e.props[name] = v
	}
	for _, name := range def.ReadOnly {
		if _, ok := e.props[name]; !ok {
			return fmt.Errorf("export %s: read-only property %s is not defined", key, name)
		}
		e.readOnly[name] = true
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.exports[key]; ok {
		return fmt.Errorf("export %s: already exported", key)
	}
	b.exports[key] = e

	b.log.Debug().
		Str("destination", destination).
		Str("path", path).
		Str("interface", iface).
		Int("methods", len(e.methods)).
		Int("properties", len(e.props)).
		Msg("exported object")
	return nil
}

// Unexport removes an exported interface. Open handles to it start failing
// with proxy.ErrNoObject.
func (b *Bus) Unexport(destination, path, iface string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.exports, objectKey{destination: destination, path: path, iface: iface})
}

// Open implements proxy.Conn.
func (b *Bus) Open(destination, path, iface string) (proxy.Object, error) {
	key := objectKey{destination: destination, path: path, iface: iface}

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.exports[key]; !ok {
		return nil, &proxy.TransportError{
			Op:  proxy.OpOpen,
			Err: fmt.Errorf("%w: %s", proxy.ErrNoObject, key),
		}
	}

	h := &handle{id: uuid.New(), bus: b, key: key}
	b.handles[h.id] = h

	b.log.Debug().Str("handle", h.id.String()).Str("object", key.String()).Msg("opened handle")
	return h, nil
}

// OpenHandles returns the number of handles not yet closed.
func (b *Bus) OpenHandles() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handles)
}

// lookup returns the export a handle is bound to, or a TransportError.
// Callers hold b.mu.
func (b *Bus) lookup(h *handle, op, member string) (*export, error) {
	if _, ok := b.handles[h.id]; !ok {
		return nil, &proxy.TransportError{Op: op, Member: member, Err: proxy.ErrClosed}
	}
	e, ok := b.exports[h.key]
	if !ok {
		return nil, &proxy.TransportError{
			Op:     op,
			Member: member,
			Err:    fmt.Errorf("%w: %s", proxy.ErrNoObject, h.key),
		}
	}
	return e, nil
}
