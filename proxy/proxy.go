package proxy

import (
	"errors"
	"fmt"
)

// Conn is a bus connection able to open remote object handles.
type Conn interface {
	// Open returns a handle bound to one interface of the object at path,
	// owned by destination.
	Open(destination, path, iface string) (Object, error)
}

// Object is a handle to one interface of a remote object.
//
// Call forwards args as one ordered payload and decodes the reply values into
// the reply pointers in order. Get decodes the property into value, which
// must be a pointer. Blocking, timeouts and cancellation are the
// implementation's concern.
type Object interface {
	Call(method string, args []any, reply ...any) error
	Get(property string, value any) error
	Set(property string, value any) error
	Introspect() (string, error)
	Close() error
}

// Operation names used in TransportError and by decorators.
const (
	OpOpen       = "open"
	OpCall       = "call"
	OpGet        = "get"
	OpSet        = "set"
	OpIntrospect = "introspect"
	OpClose      = "close"
)

// Transport failure causes.
var (
	ErrClosed        = errors.New("object handle closed")
	ErrNoObject      = errors.New("no such object")
	ErrUnknownMember = errors.New("unknown member")
	ErrSignature     = errors.New("signature mismatch")
	ErrReadOnly      = errors.New("property is read-only")
)

// TransportError reports a failed operation on a handle.
type TransportError struct {
	Op     string // one of the Op constants
	Member string // method or property name, empty for open and close
	Err    error
}

func (e *TransportError) Error() string {
	if e.Member == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Member, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
