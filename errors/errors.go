package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseConstruct Phase = "construct" // TypeRef factory
	PhaseDecode    Phase = "decode"    // mangled name to TypeRef
	PhaseParse     Phase = "parse"     // reflection section records
	PhaseLookup    Phase = "lookup"    // registry scans
	PhaseLayout    Phase = "layout"    // layout provider
	PhaseLoad      Phase = "load"      // image loading
	PhaseRead      Phase = "read"      // remote memory access
)

// Kind categorizes the error
type Kind string

const (
	KindInvalidShape Kind = "invalid_shape"
	KindNotFound     Kind = "not_found"
	KindUsage        Kind = "usage"
	KindMalformed    Kind = "malformed"
	KindOutOfBounds  Kind = "out_of_bounds"
	KindUnsupported  Kind = "unsupported"
	KindInvalidData  Kind = "invalid_data"
	KindInvalidInput Kind = "invalid_input"
	KindOverflow     Kind = "overflow"
)

// Error is the structured error type used throughout the module
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Type   string // mangled type name the error refers to
	Image  string // image the offending metadata came from
	Detail string
	Path   []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.Type != "" || e.Image != "" {
		b.WriteString(": ")
		if e.Type != "" && e.Image != "" {
			b.WriteString("type ")
			b.WriteString(e.Type)
			b.WriteString(" in image ")
			b.WriteString(e.Image)
		} else if e.Type != "" {
			b.WriteString("type ")
			b.WriteString(e.Type)
		} else {
			b.WriteString("image ")
			b.WriteString(e.Image)
		}
	}

	if e.Detail != "" {
		if e.Type != "" || e.Image != "" {
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

// Path sets the record path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Type sets the mangled type name
func (b *Builder) Type(name string) *Builder {
	b.err.Type = name
	return b
}

// Image sets the image name
func (b *Builder) Image(name string) *Builder {
	b.err.Image = name
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

// InvalidShape creates a construction failure for a partial factory
func InvalidShape(what, detail string) *Error {
	return &Error{
		Phase:  PhaseConstruct,
		Kind:   KindInvalidShape,
		Detail: fmt.Sprintf("%s: %s", what, detail),
	}
}

// NotFound creates a lookup miss
func NotFound(what, name string) *Error {
	return &Error{
		Phase:  PhaseLookup,
		Kind:   KindNotFound,
		Type:   name,
		Detail: fmt.Sprintf("no %s", what),
	}
}

// Usage creates an error for a query issued against the wrong TypeRef kind
func Usage(query, kind string) *Error {
	return &Error{
		Phase:  PhaseLookup,
		Kind:   KindUsage,
		Detail: fmt.Sprintf("%s is not defined for %s type references", query, kind),
	}
}

// Malformed creates a malformed metadata error
func Malformed(section string, addr uint64, cause error) *Error {
	return &Error{
		Phase:  PhaseParse,
		Kind:   KindMalformed,
		Path:   []string{section},
		Detail: fmt.Sprintf("record at %#x", addr),
		Value:  addr,
		Cause:  cause,
	}
}

// OutOfBounds creates an out of bounds error
func OutOfBounds(phase Phase, addr, size uint64) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOutOfBounds,
		Detail: fmt.Sprintf("address %#x (+%d) is outside of any mapped range", addr, size),
		Value:  addr,
	}
}

// Overflow creates an overflow error
func Overflow(phase Phase, value any, targetType string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOverflow,
		Detail: fmt.Sprintf("value %v overflows %s", value, targetType),
		Value:  value,
	}
}

// Unsupported creates an unsupported construct error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// InvalidData creates an invalid data error
func InvalidData(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidData,
		Detail: detail,
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

// Load creates an image loading error
func Load(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindInvalidData,
		Detail: detail,
		Cause:  cause,
	}
}

// KindOf returns the Kind of the first *Error in err's chain, or "" if none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// hasKind walks the whole tree, including errors.Join branches.
func hasKind(err error, kind Kind) bool {
	if err == nil {
		return false
	}
	if e, ok := err.(*Error); ok && e.Kind == kind {
		return true
	}
	switch u := err.(type) {
	case interface{ Unwrap() []error }:
		for _, inner := range u.Unwrap() {
			if hasKind(inner, kind) {
				return true
			}
		}
		return false
	case interface{ Unwrap() error }:
		return hasKind(u.Unwrap(), kind)
	}
	return false
}

// IsNotFound reports whether err is a recoverable lookup miss
func IsNotFound(err error) bool { return hasKind(err, KindNotFound) }

// IsMalformed reports whether err signals corrupt or incompatible metadata
func IsMalformed(err error) bool { return hasKind(err, KindMalformed) }

// IsUsage reports whether err signals a query on the wrong TypeRef kind
func IsUsage(err error) bool { return hasKind(err, KindUsage) }

// IsInvalidShape reports whether err is a partial-construction failure
func IsInvalidShape(err error) bool { return hasKind(err, KindInvalidShape) }

// Join combines errs the way the standard library does, dropping nils.
func Join(errs ...error) error { return errors.Join(errs...) }
