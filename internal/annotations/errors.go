package annotations

import (
	"github.com/toyz/argcall/internal/errors"
)

// NewSyntaxError reports annotation text that does not match the grammar
func NewSyntaxError(msg string, loc errors.SourceLocation, hint string) *errors.BaseError {
	err := errors.Newf(errors.SyntaxErrorCode, "syntax error: %s", msg).WithLocation(loc)
	if hint != "" {
		err.WithSuggestion(hint)
	}
	return err
}

// NewSchemaError reports a well-formed annotation that its schema rejects
func NewSchemaError(annotationType AnnotationType, msg string, loc errors.SourceLocation) *errors.BaseError {
	err := errors.Newf(errors.SchemaErrorCode, "argcall::%s: %s", annotationType, msg).
		WithLocation(loc).
		WithContext("annotation_type", annotationType.String())
	if schema, ok := Schemas[annotationType]; ok && len(schema.Examples) > 0 {
		err.WithSuggestion("e.g. " + schema.Examples[0])
	}
	return err
}
