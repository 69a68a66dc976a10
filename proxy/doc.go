// Package proxy defines the transport contract that generated client proxies
// are written against.
//
// A Conn opens an Object handle for a (destination, path, interface) triple.
// Generated proxies own exactly one handle and forward every member to it:
// remote calls go through Object.Call, property reads through Object.Get,
// property writes through Object.Set. Errors reported by the handle reach the
// caller unchanged.
//
// Subpackages provide an in-process transport (loopback) and Conn decorators
// that count calls (metrics) and record them to SQLite (journal).
package proxy
