// Package codegen emits Go source for compiled proxy specs.
//
// Emission is the last of the three stages: declarations are parsed into
// ir.InterfaceDecl, compiled into ir.ProxySpec, and rendered here. The output
// is passed through go/format, so it is stable byte for byte for a given spec
// and options.
package codegen
