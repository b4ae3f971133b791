package compiler

import (
	"fmt"

	"github.com/alephjs/aleph-compiler/internal/js_parser"
	"github.com/alephjs/aleph-compiler/internal/resolver"
	"github.com/alephjs/aleph-compiler/internal/transform"
)

// ParseError is returned for malformed source code, it carries the location
// of the first syntax error.
type ParseError = js_parser.ParseError

// ResolveError is returned when the specifier of the module is not a valid
// referrer, e.g. a remote URL without host.
type ResolveError = resolver.ResolveError

// TransformInvariantViolation indicates a bug of the transform pipeline.
type TransformInvariantViolation = transform.TransformInvariantViolation

// ConfigError is returned for malformed options, before anything is compiled.
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid option %q: %v", e.Field, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// EmitError is returned when esbuild fails to compile the transformed code.
type EmitError struct {
	Specifier string
	Line      int
	Column    int
	Message   string
}

func (e *EmitError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s", e.Specifier, e.Line, e.Column, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Specifier, e.Message)
}
