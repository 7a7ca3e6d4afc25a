package models

// Receiver names the receiver of generated methods and the parameter of
// dispatch functions. Bound functions and package qualifiers cannot use it.
const Receiver = "v"

// Flavor selects which capability method is generated
type Flavor int

const (
	FlavorCallable Flavor = iota // Call() on a value receiver
	FlavorMut                    // CallMut() on a pointer receiver
	FlavorOnce                   // CallOnce() on a value receiver
)

// String returns the annotation name of the flavor
func (f Flavor) String() string {
	switch f {
	case FlavorMut:
		return "callable_mut"
	case FlavorOnce:
		return "callable_once"
	default:
		return "callable"
	}
}

// MethodName returns the name of the generated capability method
func (f Flavor) MethodName() string {
	switch f {
	case FlavorMut:
		return "CallMut"
	case FlavorOnce:
		return "CallOnce"
	default:
		return "Call"
	}
}

// InterfaceName returns the matching interface in pkg/argcall
func (f Flavor) InterfaceName() string {
	switch f {
	case FlavorMut:
		return "CallableMut"
	case FlavorOnce:
		return "CallableOnce"
	default:
		return "Callable"
	}
}

// PointerReceiver reports whether the generated method uses a pointer receiver
func (f Flavor) PointerReceiver() bool {
	return f == FlavorMut
}

// ContainerKind distinguishes sum types from plain structs
type ContainerKind int

const (
	SumContainer    ContainerKind = iota // sealed interface with variant types
	StructContainer                      // struct acting as its own single member
)

// String returns a readable name for the kind
func (k ContainerKind) String() string {
	if k == StructContainer {
		return "struct"
	}
	return "sum"
}

// MemberShape is the field layout of a member
type MemberShape int

const (
	UnitMember  MemberShape = iota // struct{}
	TupleMember                    // exactly one embedded field
	NamedMember                    // named fields
)

// String returns a readable name for the shape
func (s MemberShape) String() string {
	switch s {
	case UnitMember:
		return "unit"
	case TupleMember:
		return "tuple"
	default:
		return "named"
	}
}

// Strategy is how a member produces the container's output
type Strategy int

const (
	CallStrategy     Strategy = iota // inline call: fn(Field, ...)
	PathStrategy                     // function path, fields in declaration order
	DelegateStrategy                 // inner value's own capability method
)

// String returns a readable name for the strategy
func (s Strategy) String() string {
	switch s {
	case CallStrategy:
		return "call"
	case PathStrategy:
		return "path"
	default:
		return "delegate"
	}
}

// ErrorType represents different types of generator errors
type ErrorType int

const (
	ErrorTypeAnnotationSyntax ErrorType = iota
	ErrorTypeValidation
	ErrorTypeGeneration
	ErrorTypeFileSystem
	ErrorTypeConfiguration
)

// String returns a readable name for the error type
func (e ErrorType) String() string {
	switch e {
	case ErrorTypeAnnotationSyntax:
		return "Annotation Syntax Error"
	case ErrorTypeValidation:
		return "Validation Error"
	case ErrorTypeGeneration:
		return "Generation Error"
	case ErrorTypeFileSystem:
		return "File System Error"
	case ErrorTypeConfiguration:
		return "Configuration Error"
	default:
		return "Error"
	}
}
