package compiler

import (
	"fmt"

	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/busgen/internal/ir"
)

// CompileError represents a declaration error with source position.
// Compilation stops at the first CompileError; no proxy is produced.
type CompileError struct {
	Field   string
	Message string
	Pos     ir.Position
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s: %s: %s", e.Pos, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// position converts a CUE token position.
func position(p token.Pos) ir.Position {
	if !p.IsValid() {
		return ir.Position{}
	}
	return ir.Position{File: p.Filename(), Line: p.Line(), Column: p.Column()}
}

// FormatCUEError converts a CUE evaluation error into a CompileError carrying
// the position of its first underlying error.
func FormatCUEError(err error) error {
	if err == nil {
		return nil
	}

	// CUE errors may contain multiple errors
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	// Return first error with position info
	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     position(positions[0]),
		}
	}

	return err
}
