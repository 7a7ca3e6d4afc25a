package errors

import (
	stderrors "errors"
	"fmt"
	"sort"
	"strings"
)

// ArgcallError defines the base interface for all argcall generator errors
type ArgcallError interface {
	error
	ErrorCode() ErrorCode
	Location() SourceLocation
	Context() map[string]interface{}
	Suggestions() []string
	Unwrap() error
}

// ErrorCode represents the type of error that occurred
type ErrorCode int

const (
	UnknownErrorCode ErrorCode = iota

	// Annotation errors
	SyntaxErrorCode
	SchemaErrorCode

	// Binding errors
	MissingBindingErrorCode
	ConflictingBindingErrorCode
	UnknownFieldErrorCode
	DelegationErrorCode
	MissingOutputErrorCode
	ArityErrorCode
	TypeMismatchErrorCode
	UnresolvedFunctionErrorCode
	UnsupportedMemberErrorCode
	ContainerErrorCode

	// Tooling errors
	GenerationErrorCode
	FileSystemErrorCode
	ConfigurationErrorCode
)

// String returns the string representation of the error code
func (e ErrorCode) String() string {
	switch e {
	case SyntaxErrorCode:
		return "SyntaxError"
	case SchemaErrorCode:
		return "SchemaError"
	case MissingBindingErrorCode:
		return "MissingBinding"
	case ConflictingBindingErrorCode:
		return "ConflictingBinding"
	case UnknownFieldErrorCode:
		return "UnknownField"
	case DelegationErrorCode:
		return "DelegationError"
	case MissingOutputErrorCode:
		return "MissingOutput"
	case ArityErrorCode:
		return "ArityMismatch"
	case TypeMismatchErrorCode:
		return "TypeMismatch"
	case UnresolvedFunctionErrorCode:
		return "UnresolvedFunction"
	case UnsupportedMemberErrorCode:
		return "UnsupportedMember"
	case ContainerErrorCode:
		return "ContainerError"
	case GenerationErrorCode:
		return "GenerationError"
	case FileSystemErrorCode:
		return "FileSystemError"
	case ConfigurationErrorCode:
		return "ConfigurationError"
	default:
		return "UnknownError"
	}
}

// SourceLocation represents where an error occurred in source code
type SourceLocation struct {
	File   string // file path where error occurred
	Line   int    // line number (1-based)
	Column int    // column number (1-based)
}

// String returns a formatted string representation of the location
func (s SourceLocation) String() string {
	if s.File == "" {
		return "unknown location"
	}
	if s.Line == 0 {
		return s.File
	}
	if s.Column == 0 {
		return fmt.Sprintf("%s:%d", s.File, s.Line)
	}
	return fmt.Sprintf("%s:%d:%d", s.File, s.Line, s.Column)
}

// IsEmpty returns true if the location has no useful information
func (s SourceLocation) IsEmpty() bool {
	return s.File == ""
}

// BaseError provides a common implementation of the ArgcallError interface
type BaseError struct {
	Code        ErrorCode              // type of error
	Message     string                 // error message
	Loc         SourceLocation         // where the error occurred
	Cause       error                  // underlying error cause
	ContextData map[string]interface{} // additional context information
	Hints       []string               // helpful suggestions for fixing the error
}

// Error implements the error interface
func (e *BaseError) Error() string {
	msg := e.Message
	if e.Cause != nil {
		if msg == "" {
			msg = e.Cause.Error()
		} else {
			msg = fmt.Sprintf("%s: %v", msg, e.Cause)
		}
	}
	if e.Loc.IsEmpty() {
		return msg
	}
	return fmt.Sprintf("%s: %s", e.Loc.String(), msg)
}

// ErrorCode returns the error code
func (e *BaseError) ErrorCode() ErrorCode {
	return e.Code
}

// Location returns the source location where the error occurred
func (e *BaseError) Location() SourceLocation {
	return e.Loc
}

// Context returns the error context data
func (e *BaseError) Context() map[string]interface{} {
	if e.ContextData == nil {
		return make(map[string]interface{})
	}
	return e.ContextData
}

// Suggestions returns helpful suggestions for fixing the error
func (e *BaseError) Suggestions() []string {
	return e.Hints
}

// Unwrap returns the underlying error cause for error chain inspection
func (e *BaseError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a BaseError with the same code. A bare
// &BaseError{Code: X} can therefore be used as a sentinel with errors.Is.
func (e *BaseError) Is(target error) bool {
	t, ok := target.(*BaseError)
	if !ok {
		return false
	}
	return t.Message == "" && t.Code == e.Code
}

// IsCode reports whether any error in err's chain carries the given code
func IsCode(err error, code ErrorCode) bool {
	return stderrors.Is(err, &BaseError{Code: code})
}

// WithLocation adds location information to the error
func (e *BaseError) WithLocation(loc SourceLocation) *BaseError {
	e.Loc = loc
	return e
}

// WithCause adds an underlying error cause
func (e *BaseError) WithCause(cause error) *BaseError {
	e.Cause = cause
	return e
}

// WithContext adds context data to the error
func (e *BaseError) WithContext(key string, value interface{}) *BaseError {
	if e.ContextData == nil {
		e.ContextData = make(map[string]interface{})
	}
	e.ContextData[key] = value
	return e
}

// WithSuggestion adds a helpful suggestion for fixing the error
func (e *BaseError) WithSuggestion(suggestion string) *BaseError {
	e.Hints = append(e.Hints, suggestion)
	return e
}

// New creates a new BaseError with the specified code and message
func New(code ErrorCode, message string) *BaseError {
	return &BaseError{
		Code:    code,
		Message: message,
		Hints:   make([]string, 0),
	}
}

// Newf creates a new BaseError with formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *BaseError {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap creates a new error that wraps another error
func Wrap(code ErrorCode, message string, cause error) *BaseError {
	return &BaseError{
		Code:    code,
		Message: message,
		Cause:   cause,
		Hints:   make([]string, 0),
	}
}

// Diagnostics collects every problem found while processing a package.
// Generation for the package fails as a whole when it is non-empty.
type Diagnostics struct {
	Errors []ArgcallError
}

// Error implements the error interface
func (d *Diagnostics) Error() string {
	if len(d.Errors) == 0 {
		return "no errors"
	}

	if len(d.Errors) == 1 {
		return d.Errors[0].Error()
	}

	var messages []string
	for i, err := range d.Errors {
		messages = append(messages, fmt.Sprintf("  %d. %s", i+1, err.Error()))
	}

	return fmt.Sprintf("%d diagnostics:\n%s", len(d.Errors), strings.Join(messages, "\n"))
}

// Add appends err to the collection. Nested Diagnostics are flattened and
// plain errors are wrapped.
func (d *Diagnostics) Add(err error) {
	switch e := err.(type) {
	case nil:
	case *Diagnostics:
		d.Errors = append(d.Errors, e.Errors...)
	case ArgcallError:
		d.Errors = append(d.Errors, e)
	default:
		d.Errors = append(d.Errors, New(UnknownErrorCode, "").WithCause(e))
	}
}

// Len returns the number of collected errors
func (d *Diagnostics) Len() int {
	return len(d.Errors)
}

// Unwrap returns every collected error so errors.Is and errors.As see all of them
func (d *Diagnostics) Unwrap() []error {
	errs := make([]error, len(d.Errors))
	for i, err := range d.Errors {
		errs[i] = err
	}
	return errs
}

// Suggestions returns combined suggestions from all errors
func (d *Diagnostics) Suggestions() []string {
	var suggestions []string
	for _, err := range d.Errors {
		suggestions = append(suggestions, err.Suggestions()...)
	}
	return suggestions
}

// HasCode returns true if any error of the specified code exists
func (d *Diagnostics) HasCode(code ErrorCode) bool {
	for _, err := range d.Errors {
		if err.ErrorCode() == code {
			return true
		}
	}
	return false
}

// Sort orders the errors by file, line and column
func (d *Diagnostics) Sort() {
	sort.SliceStable(d.Errors, func(i, j int) bool {
		a, b := d.Errors[i].Location(), d.Errors[j].Location()
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Column < b.Column
	})
}

// Err returns nil when nothing was collected, otherwise the collection itself
func (d *Diagnostics) Err() error {
	if d == nil || len(d.Errors) == 0 {
		return nil
	}
	d.Sort()
	return d
}
