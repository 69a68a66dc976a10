package compiler

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/roach88/busgen/internal/ir"
)

// Validation error codes (E100-E199)
const (
	// General validation errors (E100)
	ErrUnsupportedIRType = "E100" // unsupported IR type for validation

	// Proxy set errors (E105)
	ErrDuplicateName = "E105" // two declarations produce the same proxy type

	// Bus naming errors (E107-E110)
	ErrInvalidInterfaceName = "E107" // interface name violates bus naming rules
	ErrInvalidObjectPath    = "E108" // default path is not an object path
	ErrInvalidBusName       = "E109" // default service is not a bus name
	ErrInvalidMemberName    = "E110" // wire name is not a member name
)

// maxNameLength bounds interface, bus and member names.
const maxNameLength = 255

var (
	nameElement   = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	busElement    = regexp.MustCompile(`^[A-Za-z_-][A-Za-z0-9_-]*$`)
	uniqueElement = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
	pathElement   = regexp.MustCompile(`^[A-Za-z0-9_]+$`)
)

// ValidationError represents a naming rule violation in a compiled proxy.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s: %s", e.Code, e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate checks compiled proxies against bus naming rules.
// Returns all errors found (does not fail-fast).
// Supports a single ProxySpec or a set of them.
func Validate(v any) []ValidationError {
	switch spec := v.(type) {
	case *ir.ProxySpec:
		return validateProxySpec(spec)
	case ir.ProxySpec:
		return validateProxySpec(&spec)
	case []ir.ProxySpec:
		return validateProxySet(spec)
	default:
		return []ValidationError{{
			Field:   "type",
			Message: fmt.Sprintf("unsupported IR type: %T", v),
			Code:    ErrUnsupportedIRType,
		}}
	}
}

// validateProxySet validates every spec and rejects duplicate proxy types.
func validateProxySet(specs []ir.ProxySpec) []ValidationError {
	var errs []ValidationError
	seen := make(map[string]bool)

	for i := range specs {
		// E105: duplicate proxy type
		if seen[specs[i].TypeName] {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("interfaces[%d].name", i),
				Message: fmt.Sprintf("duplicate proxy type: %q", specs[i].TypeName),
				Code:    ErrDuplicateName,
			})
		}
		seen[specs[i].TypeName] = true

		errs = append(errs, validateProxySpec(&specs[i])...)
	}

	return errs
}

// validateProxySpec validates the resolved names of one proxy.
func validateProxySpec(spec *ir.ProxySpec) []ValidationError {
	var errs []ValidationError
	prefix := "interface." + spec.Name

	// E107: interface name
	if msg := checkInterfaceName(spec.Interface); msg != "" {
		errs = append(errs, ValidationError{
			Field:   prefix + ".interface",
			Message: fmt.Sprintf("%q: %s", spec.Interface, msg),
			Code:    ErrInvalidInterfaceName,
		})
	}

	// E108: object path
	if msg := checkObjectPath(spec.DefaultPath); msg != "" {
		errs = append(errs, ValidationError{
			Field:   prefix + ".default_path",
			Message: fmt.Sprintf("%q: %s", spec.DefaultPath, msg),
			Code:    ErrInvalidObjectPath,
		})
	}

	// E109: bus name
	if msg := checkBusName(spec.DefaultService); msg != "" {
		errs = append(errs, ValidationError{
			Field:   prefix + ".default_service",
			Message: fmt.Sprintf("%q: %s", spec.DefaultService, msg),
			Code:    ErrInvalidBusName,
		})
	}

	// E110: member names
	for i, m := range spec.Members {
		if len(m.WireName) > maxNameLength || !nameElement.MatchString(m.WireName) {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("%s.members[%d].wire_name", prefix, i),
				Message: fmt.Sprintf("%q is not a valid member name", m.WireName),
				Code:    ErrInvalidMemberName,
			})
		}
	}

	return errs
}

// checkInterfaceName returns an empty string for a valid interface name.
func checkInterfaceName(name string) string {
	if len(name) > maxNameLength {
		return "longer than 255 bytes"
	}
	elems := strings.Split(name, ".")
	if len(elems) < 2 {
		return "needs at least two dot-separated elements"
	}
	for _, e := range elems {
		if !nameElement.MatchString(e) {
			return fmt.Sprintf("invalid element %q", e)
		}
	}
	return ""
}

// checkBusName returns an empty string for a valid well-known or unique bus name.
func checkBusName(name string) string {
	if len(name) > maxNameLength {
		return "longer than 255 bytes"
	}
	elemRule := busElement
	if strings.HasPrefix(name, ":") {
		name = name[1:]
		elemRule = uniqueElement
	}
	elems := strings.Split(name, ".")
	if len(elems) < 2 {
		return "needs at least two dot-separated elements"
	}
	for _, e := range elems {
		if !elemRule.MatchString(e) {
			return fmt.Sprintf("invalid element %q", e)
		}
	}
	return ""
}

// checkObjectPath returns an empty string for a valid object path.
func checkObjectPath(path string) string {
	if path == "/" {
		return ""
	}
	if !strings.HasPrefix(path, "/") {
		return "must start with /"
	}
	if strings.HasSuffix(path, "/") {
		return "must not end with /"
	}
	for _, e := range strings.Split(path[1:], "/") {
		if !pathElement.MatchString(e) {
			return fmt.Sprintf("invalid element %q", e)
		}
	}
	return ""
}
