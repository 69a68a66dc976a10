package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/rs/zerolog"

	"github.com/roach88/busgen/internal/compiler"
	"github.com/roach88/busgen/internal/ir"
)

// LoadMode controls how errors are handled during declaration loading.
type LoadMode int

const (
	// LoadModeFailFast stops on the first error encountered.
	LoadModeFailFast LoadMode = iota
	// LoadModeCollectAll collects all errors before returning.
	LoadModeCollectAll
)

// Declaration is one compiled interface and the file it came from.
type Declaration struct {
	File string
	Decl ir.InterfaceDecl
	Spec *ir.ProxySpec
}

// LoadResult contains the results of loading declarations from a directory.
type LoadResult struct {
	Declarations []Declaration
	FileCount    int // Number of declaration files found
}

// Specs returns the compiled proxies in load order.
func (r *LoadResult) Specs() []ir.ProxySpec {
	specs := make([]ir.ProxySpec, len(r.Declarations))
	for i, d := range r.Declarations {
		specs[i] = *d.Spec
	}
	return specs
}

// LoadError represents an error that occurred during declaration loading.
type LoadError struct {
	Code    string
	Message string
	Pos     ir.Position
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s: %s: %s", e.Pos, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadDeclarations parses and compiles every .cue, .yaml and .yml file
// directly inside dir. Files are processed in name order and each file is
// parsed on its own.
//
// If mode is LoadModeFailFast, returns on first error.
// If mode is LoadModeCollectAll, collects all errors.
// A nil result means the directory itself could not be used.
func LoadDeclarations(dir string, mode LoadMode, log zerolog.Logger) (*LoadResult, []error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("declarations directory not found: %s", dir)}}
	}
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing declarations directory: %v", err)}}
	}
	if !info.IsDir() {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("not a directory: %s", dir)}}
	}

	files, err := FindDeclarationFiles(dir)
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}}
	}
	if len(files) == 0 {
		return nil, []error{&LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no declaration files (.cue, .yaml) found in %s", dir)}}
	}

	result := &LoadResult{FileCount: len(files)}
	ctx := cuecontext.New()
	var errs []error

	for _, file := range files {
		log.Debug().Str("file", file).Msg("loading declarations")

		decls, err := parseFile(ctx, file)
		if err != nil {
			errs = append(errs, convertCompileError(err, file))
			if mode == LoadModeFailFast {
				return result, errs
			}
			continue
		}

		for _, decl := range decls {
			spec, err := compiler.Compile(decl)
			if err != nil {
				errs = append(errs, convertCompileError(err, file))
				if mode == LoadModeFailFast {
					return result, errs
				}
				continue
			}
			log.Debug().
				Str("file", file).
				Str("interface", spec.Interface).
				Int("members", len(spec.Members)).
				Msg("compiled declaration")
			result.Declarations = append(result.Declarations, Declaration{File: file, Decl: decl, Spec: spec})
		}
	}

	// Check if we found anything
	if len(result.Declarations) == 0 && len(errs) == 0 {
		errs = append(errs, &LoadError{Code: ErrCodeGeneric, Message: "no interfaces declared"})
	}

	return result, errs
}

// parseFile reads the interface declarations of one file.
func parseFile(ctx *cue.Context, file string) ([]ir.InterfaceDecl, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("reading %s: %v", file, err)}
	}

	switch filepath.Ext(file) {
	case ".yaml", ".yml":
		return compiler.ParseYAML(data, file)
	default:
		return parseCUE(ctx, data, file)
	}
}

// parseCUE evaluates a CUE file and parses each field of its top-level
// interface struct.
func parseCUE(ctx *cue.Context, data []byte, file string) ([]ir.InterfaceDecl, error) {
	value := ctx.CompileBytes(data, cue.Filename(file))
	if err := value.Err(); err != nil {
		loadErr := &LoadError{Code: ErrCodeBuildFailed, Message: fmt.Sprintf("building CUE value: %v", err)}
		var compileErr *compiler.CompileError
		if errors.As(compiler.FormatCUEError(err), &compileErr) {
			loadErr.Pos = compileErr.Pos
		}
		return nil, loadErr
	}

	ifaces := value.LookupPath(cue.ParsePath("interface"))
	if !ifaces.Exists() {
		return nil, nil
	}

	iter, err := ifaces.Fields()
	if err != nil {
		return nil, &LoadError{Code: ErrCodeGeneric, Message: fmt.Sprintf("iterating interfaces: %v", err)}
	}

	var decls []ir.InterfaceDecl
	for iter.Next() {
		decl, err := compiler.ParseInterface(iter.Value())
		if err != nil {
			return nil, err
		}
		decls = append(decls, *decl)
	}
	return decls, nil
}

// FindDeclarationFiles returns the declaration files directly inside dir,
// sorted by name.
func FindDeclarationFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".cue", ".yaml", ".yml":
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

// convertCompileError converts a compiler error to a LoadError with position info.
func convertCompileError(err error, file string) *LoadError {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		return loadErr
	}
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		pos := compileErr.Pos
		if pos.File == "" {
			pos.File = file
		}
		return &LoadError{
			Code:    MapFieldToErrorCode(compileErr.Field),
			Message: fmt.Sprintf("%s: %s", compileErr.Field, compileErr.Message),
			Pos:     pos,
		}
	}
	return &LoadError{
		Code:    ErrCodeGeneric,
		Message: fmt.Sprintf("%s: %v", file, err),
	}
}

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeScanError   = "E002" // Directory scan error
	ErrCodeNoFiles     = "E003" // No declaration files found
	ErrCodeLoadFailed  = "E004" // File read failed
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeBuildFailed = "E006" // CUE evaluation or YAML syntax error
	ErrCodeWriteFailed = "E007" // File write error

	// Declaration errors
	ErrCodeDirective   = "E101" // Malformed or unsupported interface directive
	ErrCodeInterface   = "E102" // Invalid interface name or unknown attribute
	ErrCodeMethod      = "E103" // Malformed method declaration
	ErrCodeInvalidType = "E104" // Unsupported argument or return type
)

// MapFieldToErrorCode maps a compiler error field to an error code.
func MapFieldToErrorCode(field string) string {
	switch {
	case field == "cue" || field == "yaml":
		return ErrCodeBuildFailed
	case strings.HasPrefix(field, "directives"):
		return ErrCodeDirective
	case strings.HasPrefix(field, "method.") && (strings.Contains(field, ".args.") || strings.HasSuffix(field, ".returns")):
		return ErrCodeInvalidType
	case strings.HasPrefix(field, "method"):
		return ErrCodeMethod
	case field == "interface" || field == "doc":
		return ErrCodeInterface
	default:
		return ErrCodeGeneric
	}
}
