package loopback

import (
	"fmt"
	"reflect"

	"github.com/google/uuid"

	"github.com/roach88/busgen/proxy"
	"github.com/roach88/busgen/wire"
)

// handle is the proxy.Object returned by Bus.Open.
type handle struct {
	id  uuid.UUID
	bus *Bus
	key objectKey
}

// ID returns the handle identity used in log output.
func (h *handle) ID() uuid.UUID {
	return h.id
}

// Call implements proxy.Object.
func (h *handle) Call(method string, args []any, reply ...any) error {
	h.bus.mu.RLock()
	e, err := h.bus.lookup(h, proxy.OpCall, method)
	var m Method
	var ok bool
	if err == nil {
		m, ok = e.methods[method]
	}
	h.bus.mu.RUnlock()

	if err != nil {
		return err
	}
	if !ok {
		return &proxy.TransportError{Op: proxy.OpCall, Member: method, Err: proxy.ErrUnknownMember}
	}

	sig, err := wire.CallSignature(args)
	if err != nil {
		return &proxy.TransportError{Op: proxy.OpCall, Member: method, Err: fmt.Errorf("%w: %w", proxy.ErrSignature, err)}
	}
	if m.Signature != "" && sig != m.Signature {
		return &proxy.TransportError{
			Op:     proxy.OpCall,
			Member: method,
			Err:    fmt.Errorf("%w: got %q, want %q", proxy.ErrSignature, sig, m.Signature),
		}
	}

	h.bus.log.Debug().
		Str("handle", h.id.String()).
		Str("method", method).
		Str("signature", sig).
		Msg("dispatch call")

	out, err := m.Handler(args)
	if err != nil {
		return &proxy.TransportError{Op: proxy.OpCall, Member: method, Err: err}
	}

	if len(out) < len(reply) {
		return &proxy.TransportError{
			Op:     proxy.OpCall,
			Member: method,
			Err:    fmt.Errorf("%w: reply has %d values, caller expects %d", proxy.ErrSignature, len(out), len(reply)),
		}
	}
	for i, dst := range reply {
		if err := decode(dst, out[i]); err != nil {
			return &proxy.TransportError{Op: proxy.OpCall, Member: method, Err: fmt.Errorf("reply %d: %w", i, err)}
		}
	}
	return nil
}

// Get implements proxy.Object.
func (h *handle) Get(property string, value any) error {
	h.bus.mu.RLock()
	e, err := h.bus.lookup(h, proxy.OpGet, property)
	var v any
	var ok bool
	if err == nil {
		v, ok = e.props[property]
	}
	h.bus.mu.RUnlock()

	if err != nil {
		return err
	}
	if !ok {
		return &proxy.TransportError{Op: proxy.OpGet, Member: property, Err: proxy.ErrUnknownMember}
	}
	if err := decode(value, v); err != nil {
		return &proxy.TransportError{Op: proxy.OpGet, Member: property, Err: err}
	}
	return nil
}

// Set implements proxy.Object. The new value must have the wire kind of the
// current one.
func (h *handle) Set(property string, value any) error {
	h.bus.mu.Lock()
	defer h.bus.mu.Unlock()

	e, err := h.bus.lookup(h, proxy.OpSet, property)
	if err != nil {
		return err
	}
	cur, ok := e.props[property]
	if !ok {
		return &proxy.TransportError{Op: proxy.OpSet, Member: property, Err: proxy.ErrUnknownMember}
	}
	if e.readOnly[property] {
		return &proxy.TransportError{Op: proxy.OpSet, Member: property, Err: proxy.ErrReadOnly}
	}

	want, ok := wire.KindOf(cur)
	if !ok {
		return &proxy.TransportError{
			Op:     proxy.OpSet,
			Member: property,
			Err:    fmt.Errorf("%w: property holds %T, which has no wire type", proxy.ErrSignature, cur),
		}
	}
	got, ok := wire.KindOf(value)
	v := reflect.Indirect(reflect.ValueOf(value))
	if !ok || !v.IsValid() || wire.SignatureChar(got) != wire.SignatureChar(want) {
		return &proxy.TransportError{
			Op:     proxy.OpSet,
			Member: property,
			Err:    fmt.Errorf("%w: cannot store %T in %s property", proxy.ErrSignature, value, want),
		}
	}

	e.props[property] = v.Interface()
	return nil
}

// Introspect implements proxy.Object.
func (h *handle) Introspect() (string, error) {
	h.bus.mu.RLock()
	defer h.bus.mu.RUnlock()

	e, err := h.bus.lookup(h, proxy.OpIntrospect, "")
	if err != nil {
		return "", err
	}
	return e.introspection, nil
}

// Close implements proxy.Object. Closing twice reports proxy.ErrClosed.
func (h *handle) Close() error {
	h.bus.mu.Lock()
	defer h.bus.mu.Unlock()

	if _, ok := h.bus.handles[h.id]; !ok {
		return &proxy.TransportError{Op: proxy.OpClose, Err: proxy.ErrClosed}
	}
	delete(h.bus.handles, h.id)

	h.bus.log.Debug().Str("handle", h.id.String()).Msg("closed handle")
	return nil
}

// decode stores src into the value dst points to. Both must share a wire
// signature.
func decode(dst, src any) error {
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("decode target %T is not a non-nil pointer", dst)
	}
	elem := rv.Elem()

	sv := reflect.Indirect(reflect.ValueOf(src))
	if !sv.IsValid() {
		return fmt.Errorf("%w: nil value", proxy.ErrSignature)
	}

	dk, dok := wire.TypeKind(elem.Type())
	sk, sok := wire.TypeKind(sv.Type())
	if !dok || !sok || wire.SignatureChar(dk) != wire.SignatureChar(sk) || !sv.Type().ConvertibleTo(elem.Type()) {
		return fmt.Errorf("%w: cannot decode %s into %s", proxy.ErrSignature, sv.Type(), elem.Type())
	}

	elem.Set(sv.Convert(elem.Type()))
	return nil
}
