// Package journal records every operation performed through a proxy.Conn
// into a SQLite call journal.
//
// The recorder sits between generated proxies and the real transport. It
// never changes what the caller sees: values and errors from the wrapped
// handle are returned as is, and a failure to write the journal is logged
// rather than reported.
package journal

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/roach88/busgen/internal/store"
	"github.com/roach88/busgen/proxy"
	"github.com/roach88/busgen/wire"
)

// Store is the journal backend.
type Store interface {
	WriteCall(ctx context.Context, c store.Call) (int64, error)
}

// Recorder is a proxy.Conn that journals the handles it opens.
type Recorder struct {
	next  proxy.Conn
	store Store
	log   zerolog.Logger
}

// Option configures a Recorder.
type Option func(*Recorder)

// WithLogger sets the logger used to report journal write failures.
func WithLogger(l zerolog.Logger) Option {
	return func(r *Recorder) {
		r.log = l
	}
}

// New wraps conn so that every operation is written to s.
func New(conn proxy.Conn, s Store, opts ...Option) *Recorder {
	r := &Recorder{next: conn, store: s, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Open implements proxy.Conn.
func (r *Recorder) Open(destination, path, iface string) (proxy.Object, error) {
	o := &object{
		rec:         r,
		handleID:    uuid.NewString(),
		destination: destination,
		path:        path,
		iface:       iface,
	}

	start := time.Now()
	obj, err := r.next.Open(destination, path, iface)
	o.record(proxy.OpOpen, "", nil, start, err)
	if err != nil {
		return nil, err
	}

	o.next = obj
	return o, nil
}

type object struct {
	rec         *Recorder
	next        proxy.Object
	handleID    string
	destination string
	path        string
	iface       string
}

// record writes one journal entry. Payloads the wire model cannot classify
// are journaled without a signature.
func (o *object) record(op, member string, args []any, start time.Time, opErr error) {
	c := store.Call{
		ID:          uuid.NewString(),
		HandleID:    o.handleID,
		Destination: o.destination,
		Path:        o.path,
		Interface:   o.iface,
		Op:          op,
		Member:      member,
		Args:        args,
		Duration:    time.Since(start),
	}
	if sig, err := wire.CallSignature(args); err == nil {
		c.Signature = sig
	}
	if opErr != nil {
		c.Error = opErr.Error()
	}

	if _, err := o.rec.store.WriteCall(context.Background(), c); err != nil {
		o.rec.log.Warn().
			Err(err).
			Str("interface", o.iface).
			Str("op", op).
			Str("member", member).
			Msg("journal write failed")
	}
}

func (o *object) Call(method string, args []any, reply ...any) error {
	start := time.Now()
	err := o.next.Call(method, args, reply...)
	o.record(proxy.OpCall, method, args, start, err)
	return err
}

func (o *object) Get(property string, value any) error {
	start := time.Now()
	err := o.next.Get(property, value)
	o.record(proxy.OpGet, property, nil, start, err)
	return err
}

func (o *object) Set(property string, value any) error {
	start := time.Now()
	err := o.next.Set(property, value)
	o.record(proxy.OpSet, property, []any{value}, start, err)
	return err
}

func (o *object) Introspect() (string, error) {
	start := time.Now()
	xml, err := o.next.Introspect()
	o.record(proxy.OpIntrospect, "", nil, start, err)
	return xml, err
}

func (o *object) Close() error {
	start := time.Now()
	err := o.next.Close()
	o.record(proxy.OpClose, "", nil, start, err)
	return err
}
