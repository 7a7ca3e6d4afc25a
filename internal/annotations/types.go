package annotations

import (
	"fmt"
	"strings"

	"github.com/toyz/argcall/internal/errors"
)

// AnnotationType represents the type of annotation
type AnnotationType int

const (
	CallableAnnotation AnnotationType = iota
	CallableMutAnnotation
	CallableOnceAnnotation
	FnAnnotation
	FnPathAnnotation
)

// String returns the string representation of the annotation type
func (a AnnotationType) String() string {
	switch a {
	case CallableAnnotation:
		return "callable"
	case CallableMutAnnotation:
		return "callable_mut"
	case CallableOnceAnnotation:
		return "callable_once"
	case FnAnnotation:
		return "fn"
	case FnPathAnnotation:
		return "fn_path"
	default:
		return "unknown"
	}
}

// IsContainer reports whether the annotation marks a callable container
func (a AnnotationType) IsContainer() bool {
	return a == CallableAnnotation || a == CallableMutAnnotation || a == CallableOnceAnnotation
}

// IsBinding reports whether the annotation binds a member to a function
func (a AnnotationType) IsBinding() bool {
	return a == FnAnnotation || a == FnPathAnnotation
}

// ParseAnnotationType converts string to AnnotationType
func ParseAnnotationType(s string) (AnnotationType, error) {
	switch s {
	case "callable":
		return CallableAnnotation, nil
	case "callable_mut":
		return CallableMutAnnotation, nil
	case "callable_once":
		return CallableOnceAnnotation, nil
	case "fn":
		return FnAnnotation, nil
	case "fn_path":
		return FnPathAnnotation, nil
	default:
		return 0, fmt.Errorf("unknown annotation type: %s", s)
	}
}

// Prefix is the marker every argcall annotation starts with after "//"
const Prefix = "argcall::"

// IsAnnotation reports whether a raw comment line is an argcall annotation
func IsAnnotation(comment string) bool {
	text := strings.TrimPrefix(comment, "//")
	return strings.HasPrefix(strings.TrimSpace(text), Prefix)
}

// CallExpr is the inline call of an argcall::fn annotation, e.g. add(X, Y)
type CallExpr struct {
	Func string   // function name, possibly qualified (pkg.Func)
	Args []string // field names, in call order
}

// String renders the call back in annotation syntax
func (c *CallExpr) String() string {
	return fmt.Sprintf("%s(%s)", c.Func, strings.Join(c.Args, ", "))
}

// ParsedAnnotation represents a fully parsed annotation
type ParsedAnnotation struct {
	Type       AnnotationType        // Annotation type enum
	Parameters map[string]string     // -Key=Value parameters (containers)
	Call       *CallExpr             // inline call (argcall::fn)
	Path       string                // function path (argcall::fn_path)
	Location   errors.SourceLocation // Source location
	Raw        string                // Original annotation text
}

// GetString returns a string parameter value with optional default
func (p *ParsedAnnotation) GetString(paramName string, defaultValue ...string) string {
	if value, exists := p.Parameters[paramName]; exists {
		return value
	}
	if len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return ""
}

// HasParameter checks if a parameter exists
func (p *ParsedAnnotation) HasParameter(paramName string) bool {
	_, exists := p.Parameters[paramName]
	return exists
}
