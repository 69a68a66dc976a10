// Package ir provides the language-neutral records that sit between the
// interface compiler's stages.
//
// This package contains type definitions and pure helpers only. The
// declaration front-ends (CUE, YAML) produce an InterfaceDecl; the compiler
// resolves it into a ProxySpec; the emitter prints a ProxySpec as Go source.
// Nothing here knows about either front-end or about Go code generation.
//
// Key design constraints:
//   - Declarations are immutable once parsed; the compiler never mutates them
//   - ProxySpec carries every resolved name, so the emitter makes no decisions
//   - All JSON tags use snake_case
package ir
