package errors

import (
	"fmt"
	"strconv"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseParse    Phase = "parse"    // IR text to tree
	PhaseFormat   Phase = "format"   // tree to IR text
	PhaseVerify   Phase = "verify"   // structural invariant checks
	PhaseRewrite  Phase = "rewrite"  // pattern application
	PhaseSimulate Phase = "simulate" // fork-join interpretation
	PhaseConfig   Phase = "config"   // option and environment handling
)

// Kind categorizes the error
type Kind string

const (
	KindSyntax           Kind = "syntax"
	KindUndefinedValue   Kind = "undefined_value"
	KindRedefinedValue   Kind = "redefined_value"
	KindInvalidStructure Kind = "invalid_structure"
	KindInvalidInput     Kind = "invalid_input"
	KindNotFound         Kind = "not_found"
	KindUnsupported      Kind = "unsupported"
	KindInvariant        Kind = "invariant"
	KindLimit            Kind = "limit"
)

// Error is the structured error type used throughout the module
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Op     string
	Detail string
	Path   []string
	Line   int
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Line > 0 {
		b.WriteString(" at line ")
		b.WriteString(strconv.Itoa(e.Line))
	}

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "/"))
	}

	if e.Op != "" {
		b.WriteString(": op ")
		b.WriteString(e.Op)
	}

	if e.Detail != "" {
		if e.Op != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the location path (function, op chain)
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Op sets the offending operation mnemonic
func (b *Builder) Op(name string) *Builder {
	b.err.Op = name
	return b
}

// Line sets the source line
func (b *Builder) Line(line int) *Builder {
	b.err.Line = line
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// Syntax creates a syntax error at a source line
func Syntax(line int, format string, args ...any) *Error {
	return &Error{
		Phase:  PhaseParse,
		Kind:   KindSyntax,
		Line:   line,
		Detail: fmt.Sprintf(format, args...),
	}
}

// UndefinedValue creates an error for a reference to an unknown SSA name
func UndefinedValue(line int, name string) *Error {
	return &Error{
		Phase:  PhaseParse,
		Kind:   KindUndefinedValue,
		Line:   line,
		Detail: fmt.Sprintf("value %s is not defined in scope", name),
		Value:  name,
	}
}

// RedefinedValue creates an error for an SSA name bound twice
func RedefinedValue(line int, name string) *Error {
	return &Error{
		Phase:  PhaseParse,
		Kind:   KindRedefinedValue,
		Line:   line,
		Detail: fmt.Sprintf("value %s is already defined", name),
		Value:  name,
	}
}

// InvalidStructure creates a structural error for an op
func InvalidStructure(phase Phase, op, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidStructure,
		Op:     op,
		Detail: detail,
	}
}

// Invariant creates a verifier finding
func Invariant(path []string, op, detail string) *Error {
	return &Error{
		Phase:  PhaseVerify,
		Kind:   KindInvariant,
		Path:   path,
		Op:     op,
		Detail: detail,
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// Limit creates an error for an exhausted step or size budget
func Limit(phase Phase, what string, limit int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindLimit,
		Detail: fmt.Sprintf("%s exceeded limit of %d", what, limit),
		Value:  limit,
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// ParseFailed creates a parsing error
func ParseFailed(what string, cause error) *Error {
	return &Error{
		Phase:  PhaseParse,
		Kind:   KindInvalidInput,
		Detail: fmt.Sprintf("parse %s", what),
		Cause:  cause,
	}
}
