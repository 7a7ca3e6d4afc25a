package annotations

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/argcall/internal/errors"
)

func TestParticipleParserValid(t *testing.T) {
	parser := NewParticipleParser()
	location := errors.SourceLocation{File: "test.go", Line: 1, Column: 1}

	tests := []struct {
		name     string
		input    string
		expected *ParsedAnnotation
	}{
		{
			name:  "bare callable",
			input: "//argcall::callable",
			expected: &ParsedAnnotation{
				Type:       CallableAnnotation,
				Parameters: map[string]string{},
			},
		},
		{
			name:  "callable with output",
			input: "//argcall::callable -Output=int",
			expected: &ParsedAnnotation{
				Type:       CallableAnnotation,
				Parameters: map[string]string{"Output": "int"},
			},
		},
		{
			name:  "qualified output and dispatch",
			input: "//argcall::callable_mut -Output=time.Duration -Dispatch=Eval",
			expected: &ParsedAnnotation{
				Type:       CallableMutAnnotation,
				Parameters: map[string]string{"Output": "time.Duration", "Dispatch": "Eval"},
			},
		},
		{
			name:  "composite output type",
			input: "//argcall::callable_once -Output=map[string][]*pkg.T",
			expected: &ParsedAnnotation{
				Type:       CallableOnceAnnotation,
				Parameters: map[string]string{"Output": "map[string][]*pkg.T"},
			},
		},
		{
			name:  "quoted output type with spaces",
			input: `//argcall::callable -Output="chan int"`,
			expected: &ParsedAnnotation{
				Type:       CallableAnnotation,
				Parameters: map[string]string{"Output": "chan int"},
			},
		},
		{
			name:  "leading space after slashes",
			input: "// argcall::callable -Output=string",
			expected: &ParsedAnnotation{
				Type:       CallableAnnotation,
				Parameters: map[string]string{"Output": "string"},
			},
		},
		{
			name:  "inline call without args",
			input: "//argcall::fn one()",
			expected: &ParsedAnnotation{
				Type:       FnAnnotation,
				Parameters: map[string]string{},
				Call:       &CallExpr{Func: "one", Args: []string{}},
			},
		},
		{
			name:  "inline call with args",
			input: "//argcall::fn add(X, Y)",
			expected: &ParsedAnnotation{
				Type:       FnAnnotation,
				Parameters: map[string]string{},
				Call:       &CallExpr{Func: "add", Args: []string{"X", "Y"}},
			},
		},
		{
			name:  "qualified inline call",
			input: "//argcall::fn mathx.Scale(X,Factor)",
			expected: &ParsedAnnotation{
				Type:       FnAnnotation,
				Parameters: map[string]string{},
				Call:       &CallExpr{Func: "mathx.Scale", Args: []string{"X", "Factor"}},
			},
		},
		{
			name:  "path",
			input: `//argcall::fn_path "mathx.Add"`,
			expected: &ParsedAnnotation{
				Type:       FnPathAnnotation,
				Parameters: map[string]string{},
				Path:       "mathx.Add",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := parser.ParseAnnotation(tt.input, location)
			require.NoError(t, err)

			assert.Equal(t, tt.expected.Type, result.Type)
			assert.Equal(t, tt.expected.Parameters, result.Parameters)
			assert.Equal(t, tt.expected.Call, result.Call)
			assert.Equal(t, tt.expected.Path, result.Path)
			assert.Equal(t, tt.input, result.Raw)
			assert.Equal(t, location, result.Location)
		})
	}
}

func TestParticipleParserErrors(t *testing.T) {
	parser := NewParticipleParser()
	location := errors.SourceLocation{File: "test.go", Line: 4, Column: 1}

	tests := []struct {
		name     string
		input    string
		code     errors.ErrorCode
		contains string
	}{
		{"not an annotation", "// plain comment", errors.SyntaxErrorCode, "must start with"},
		{"unknown type", "//argcall::derive", errors.SyntaxErrorCode, "unknown annotation type"},
		{"call without parens", "//argcall::fn add", errors.SyntaxErrorCode, "syntax error"},
		{"unterminated call", "//argcall::fn add(X", errors.SyntaxErrorCode, "syntax error"},
		{"call with nested qualifier", "//argcall::fn a.b.c(X)", errors.SyntaxErrorCode, "syntax error"},
		{"fn without call", "//argcall::fn", errors.SchemaErrorCode, "expected an inline call"},
		{"fn_path without path", "//argcall::fn_path", errors.SchemaErrorCode, "expected a quoted function path"},
		{"fn_path empty", `//argcall::fn_path ""`, errors.SchemaErrorCode, "must not be empty"},
		{"fn_path invalid", `//argcall::fn_path "a.b.c"`, errors.SchemaErrorCode, "must be name or pkg.name"},
		{"callable with call", "//argcall::callable add(X)", errors.SchemaErrorCode, "parameters only"},
		{"unknown parameter", "//argcall::callable -Mode=Fast", errors.SchemaErrorCode, "unknown parameter 'Mode'"},
		{"empty output", "//argcall::callable -Output", errors.SchemaErrorCode, "type must not be empty"},
		{"non-type output", "//argcall::callable -Output=1+2", errors.SchemaErrorCode, "is not a type"},
		{"bad dispatch", "//argcall::callable -Dispatch=9lives", errors.SchemaErrorCode, "not a valid identifier"},
		{"duplicate parameter", "//argcall::callable -Output=int -Output=string", errors.SchemaErrorCode, "duplicate parameter"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parser.ParseAnnotation(tt.input, location)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.contains)

			var base *errors.BaseError
			require.True(t, stderrors.As(err, &base))
			assert.Equal(t, tt.code, base.ErrorCode())
			assert.Equal(t, "test.go", base.Location().File)
			assert.Equal(t, 4, base.Location().Line)
		})
	}
}

func TestIsAnnotation(t *testing.T) {
	assert.True(t, IsAnnotation("//argcall::callable"))
	assert.True(t, IsAnnotation("// argcall::fn x()"))
	assert.False(t, IsAnnotation("// argcall is great"))
	assert.False(t, IsAnnotation("//wire::core"))
}

func TestAnnotationTypeRoundTrip(t *testing.T) {
	for _, at := range []AnnotationType{CallableAnnotation, CallableMutAnnotation, CallableOnceAnnotation, FnAnnotation, FnPathAnnotation} {
		parsed, err := ParseAnnotationType(at.String())
		require.NoError(t, err)
		assert.Equal(t, at, parsed)
	}
	assert.True(t, CallableMutAnnotation.IsContainer())
	assert.False(t, FnAnnotation.IsContainer())
	assert.True(t, FnPathAnnotation.IsBinding())
}

func TestValidateTypeExpr(t *testing.T) {
	valid := []string{"int", "error", "pkg.T", "*pkg.T", "[]byte", "map[string]int", "func() int", "chan int", "List[int]", "Pair[int, string]", "struct{}", "any"}
	for _, v := range valid {
		assert.NoError(t, ValidateTypeExpr(v), v)
	}
	invalid := []string{"", "1", "a+b", "f()", "a.b.c"}
	for _, v := range invalid {
		assert.Error(t, ValidateTypeExpr(v), v)
	}
}
