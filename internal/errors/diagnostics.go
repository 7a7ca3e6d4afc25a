package errors

import (
	"fmt"
	"strings"
)

// Constructors for the diagnostics reported while resolving members.
// Each one carries the member location so the CLI can print file:line:col.

// NewMissingBinding reports a member that has no binding and cannot delegate
func NewMissingBinding(container, member string, loc SourceLocation) *BaseError {
	return Newf(MissingBindingErrorCode, "%s.%s: expected an argcall::fn or argcall::fn_path annotation", container, member).
		WithLocation(loc).
		WithContext("container", container).
		WithContext("member", member).
		WithSuggestion("add //argcall::fn name(Field, ...) or //argcall::fn_path \"pkg.Func\" above the type").
		WithSuggestion("members without a binding must embed exactly one value that is itself callable")
}

// NewConflictingBinding reports a member carrying more than one binding annotation
func NewConflictingBinding(container, member string, found []string, loc SourceLocation) *BaseError {
	return Newf(ConflictingBindingErrorCode, "%s.%s: conflicting binding annotations (%s)", container, member, strings.Join(found, ", ")).
		WithLocation(loc).
		WithContext("container", container).
		WithContext("member", member).
		WithSuggestion("keep exactly one of argcall::fn or argcall::fn_path")
}

// NewUnknownField reports an inline-call argument that is not a field of the member
func NewUnknownField(container, member, field string, available []string, loc SourceLocation) *BaseError {
	err := Newf(UnknownFieldErrorCode, "%s.%s: argument %q is not a field of %s", container, member, field, member).
		WithLocation(loc).
		WithContext("container", container).
		WithContext("member", member).
		WithContext("field", field)
	if len(available) > 0 {
		err.WithSuggestion(fmt.Sprintf("available fields: %s", strings.Join(available, ", ")))
	} else {
		err.WithSuggestion(fmt.Sprintf("%s has no fields; call the function without arguments", member))
	}
	return err
}

// NewDelegationError reports an unbound member whose inner value cannot be called
func NewDelegationError(container, member, inner, reason string, loc SourceLocation) *BaseError {
	return Newf(DelegationErrorCode, "%s.%s: cannot delegate to %s: %s", container, member, inner, reason).
		WithLocation(loc).
		WithContext("container", container).
		WithContext("member", member).
		WithContext("inner", inner).
		WithSuggestion(fmt.Sprintf("annotate %s with //argcall::callable using the same output type", inner)).
		WithSuggestion(fmt.Sprintf("or bind %s explicitly with //argcall::fn", member))
}

// NewMissingOutput reports a container whose output type cannot be determined
func NewMissingOutput(container string, loc SourceLocation) *BaseError {
	return Newf(MissingOutputErrorCode, "%s: missing output type", container).
		WithLocation(loc).
		WithContext("container", container).
		WithSuggestion("declare it explicitly, e.g. //argcall::callable -Output=int")
}

// NewArityMismatch reports a bound function called with the wrong number of arguments
func NewArityMismatch(container, member, fn string, want, got int, loc SourceLocation) *BaseError {
	return Newf(ArityErrorCode, "%s.%s: %s takes %d argument(s), binding passes %d", container, member, fn, want, got).
		WithLocation(loc).
		WithContext("container", container).
		WithContext("member", member).
		WithContext("function", fn)
}

// NewTypeMismatch reports a member whose call result disagrees with the output type
func NewTypeMismatch(container, member, got, want string, loc SourceLocation) *BaseError {
	return Newf(TypeMismatchErrorCode, "%s.%s: result type %s is not assignable to output type %s", container, member, got, want).
		WithLocation(loc).
		WithContext("container", container).
		WithContext("member", member).
		WithSuggestion("change the bound function's result or the container's -Output")
}

// NewArgumentMismatch reports a field that cannot be passed to the bound function's parameter
func NewArgumentMismatch(container, member, field, fieldType, paramType string, loc SourceLocation) *BaseError {
	return Newf(TypeMismatchErrorCode, "%s.%s: field %s of type %s cannot be passed as %s", container, member, field, fieldType, paramType).
		WithLocation(loc).
		WithContext("container", container).
		WithContext("member", member).
		WithContext("field", field)
}

// NewUnresolvedFunction reports a binding whose function cannot be found
func NewUnresolvedFunction(container, member, fn, reason string, loc SourceLocation) *BaseError {
	return Newf(UnresolvedFunctionErrorCode, "%s.%s: cannot resolve %s: %s", container, member, fn, reason).
		WithLocation(loc).
		WithContext("container", container).
		WithContext("member", member).
		WithContext("function", fn)
}

// NewUnsupportedMember reports a member whose shape the generator cannot dispatch on
func NewUnsupportedMember(container, member, reason string, loc SourceLocation) *BaseError {
	return Newf(UnsupportedMemberErrorCode, "%s.%s: %s", container, member, reason).
		WithLocation(loc).
		WithContext("container", container).
		WithContext("member", member)
}

// NewContainerError reports a problem with the annotated type itself
func NewContainerError(container, reason string, loc SourceLocation) *BaseError {
	return Newf(ContainerErrorCode, "%s: %s", container, reason).
		WithLocation(loc).
		WithContext("container", container)
}

// WrapFileSystemError wraps file system related errors
func WrapFileSystemError(operation, path string, cause error) *BaseError {
	message := fmt.Sprintf("failed to %s file '%s'", operation, path)
	return Wrap(FileSystemErrorCode, message, cause).
		WithContext("operation", operation).
		WithContext("path", path)
}

// WrapGenerateError wraps an error with a "failed to generate" message
func WrapGenerateError(item string, cause error) *BaseError {
	return Wrap(GenerationErrorCode, fmt.Sprintf("failed to generate %s", item), cause).
		WithContext("target", item)
}

// WrapConfigurationError wraps configuration-related errors
func WrapConfigurationError(source, operation string, cause error) *BaseError {
	message := fmt.Sprintf("failed to %s configuration '%s'", operation, source)
	return Wrap(ConfigurationErrorCode, message, cause).
		WithContext("source", source).
		WithContext("operation", operation)
}
