package annotations

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"strings"
)

// BodyKind describes what may follow the annotation type
type BodyKind int

const (
	ParamsBody BodyKind = iota // -Key=Value pairs
	CallBody                   // name(Arg, ...)
	PathBody                   // "pkg.Func"
)

// ParameterSpec defines the specification for an annotation parameter
type ParameterSpec struct {
	Required    bool                 // Whether parameter is required
	Description string               // Parameter description
	Validator   func(v string) error // Custom validator function
}

// AnnotationSchema defines the schema for an annotation type
type AnnotationSchema struct {
	Type        AnnotationType           // Annotation type enum
	Description string                   // Human-readable description
	Body        BodyKind                 // Expected body form
	Parameters  map[string]ParameterSpec // Parameter specifications
	Examples    []string                 // Usage examples
}

var containerParameters = map[string]ParameterSpec{
	"Output": {
		Description: "Result type of the generated method; inferred from the bindings when omitted and type information is available",
		Validator:   ValidateTypeExpr,
	},
	"Dispatch": {
		Description: "Name of the generated dispatch function for sum types (default Call<Type>)",
		Validator:   ValidateIdentifier,
	},
}

// Schemas holds the built-in annotation schemas
var Schemas = map[AnnotationType]AnnotationSchema{
	CallableAnnotation: {
		Type:        CallableAnnotation,
		Description: "Generates Call() on a value receiver",
		Body:        ParamsBody,
		Parameters:  containerParameters,
		Examples: []string{
			"//argcall::callable -Output=int",
			"//argcall::callable -Output=time.Duration -Dispatch=Eval",
			`//argcall::callable -Output="map[string]int"`,
		},
	},
	CallableMutAnnotation: {
		Type:        CallableMutAnnotation,
		Description: "Generates CallMut() on a pointer receiver; fields are passed by pointer",
		Body:        ParamsBody,
		Parameters:  containerParameters,
		Examples:    []string{"//argcall::callable_mut -Output=int"},
	},
	CallableOnceAnnotation: {
		Type:        CallableOnceAnnotation,
		Description: "Generates CallOnce() on a value receiver",
		Body:        ParamsBody,
		Parameters:  containerParameters,
		Examples:    []string{"//argcall::callable_once -Output=error"},
	},
	FnAnnotation: {
		Type:        FnAnnotation,
		Description: "Binds a member to an inline call whose arguments name the member's fields",
		Body:        CallBody,
		Examples:    []string{"//argcall::fn add(X)", "//argcall::fn mathx.Scale(X, Factor)", "//argcall::fn zero()"},
	},
	FnPathAnnotation: {
		Type:        FnPathAnnotation,
		Description: "Binds a member to a function by path; fields are passed in declaration order",
		Body:        PathBody,
		Examples:    []string{`//argcall::fn_path "add"`, `//argcall::fn_path "mathx.Add"`},
	},
}

// ValidateAgainstSchema checks body form and parameters of a parsed annotation
func ValidateAgainstSchema(annotation *ParsedAnnotation) error {
	schema, ok := Schemas[annotation.Type]
	if !ok {
		return NewSchemaError(annotation.Type, "no schema registered", annotation.Location)
	}

	switch schema.Body {
	case ParamsBody:
		if annotation.Call != nil || annotation.Path != "" {
			return NewSchemaError(annotation.Type, "expected -Key=Value parameters only", annotation.Location)
		}
	case CallBody:
		if annotation.Call == nil {
			return NewSchemaError(annotation.Type, "expected an inline call such as name(Field)", annotation.Location)
		}
	case PathBody:
		if annotation.Path == "" {
			return NewSchemaError(annotation.Type, "expected a quoted function path", annotation.Location)
		}
		if err := ValidateFuncPath(annotation.Path); err != nil {
			return NewSchemaError(annotation.Type, err.Error(), annotation.Location)
		}
	}

	if schema.Body != ParamsBody && len(annotation.Parameters) > 0 {
		return NewSchemaError(annotation.Type, "does not accept parameters", annotation.Location)
	}

	for name, value := range annotation.Parameters {
		spec, exists := schema.Parameters[name]
		if !exists {
			return NewSchemaError(annotation.Type, fmt.Sprintf("unknown parameter '%s'", name), annotation.Location)
		}
		if spec.Validator != nil {
			if err := spec.Validator(value); err != nil {
				return NewSchemaError(annotation.Type, fmt.Sprintf("parameter '%s': %v", name, err), annotation.Location)
			}
		}
	}

	for name, spec := range schema.Parameters {
		if spec.Required && !annotation.HasParameter(name) {
			return NewSchemaError(annotation.Type, fmt.Sprintf("missing required parameter '%s'", name), annotation.Location)
		}
	}

	return nil
}

// ValidateTypeExpr checks that v is a Go type expression
func ValidateTypeExpr(v string) error {
	if strings.TrimSpace(v) == "" {
		return fmt.Errorf("type must not be empty")
	}
	expr, err := parser.ParseExpr(v)
	if err != nil {
		return fmt.Errorf("invalid type %q", v)
	}
	if !isTypeExpr(expr) {
		return fmt.Errorf("%q is not a type", v)
	}
	return nil
}

func isTypeExpr(expr ast.Expr) bool {
	switch e := expr.(type) {
	case *ast.Ident, *ast.ArrayType, *ast.MapType, *ast.FuncType, *ast.ChanType, *ast.InterfaceType, *ast.StructType:
		return true
	case *ast.SelectorExpr:
		_, ok := e.X.(*ast.Ident)
		return ok
	case *ast.StarExpr:
		return isTypeExpr(e.X)
	case *ast.ParenExpr:
		return isTypeExpr(e.X)
	case *ast.IndexExpr:
		return isTypeExpr(e.X) && isTypeExpr(e.Index)
	case *ast.IndexListExpr:
		if !isTypeExpr(e.X) {
			return false
		}
		for _, idx := range e.Indices {
			if !isTypeExpr(idx) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// ValidateIdentifier checks that v is a Go identifier
func ValidateIdentifier(v string) error {
	if !token.IsIdentifier(v) {
		return fmt.Errorf("%q is not a valid identifier", v)
	}
	return nil
}

// ValidateFuncPath checks that v names a function: name or pkg.name
func ValidateFuncPath(v string) error {
	parts := strings.Split(v, ".")
	if len(parts) > 2 {
		return fmt.Errorf("function path %q must be name or pkg.name", v)
	}
	for _, part := range parts {
		if !token.IsIdentifier(part) {
			return fmt.Errorf("function path %q must be name or pkg.name", v)
		}
	}
	return nil
}
