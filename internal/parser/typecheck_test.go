package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/argcall/internal/errors"
	"github.com/toyz/argcall/internal/models"
)

func parseTyped(t *testing.T, source string) (*models.PackageMetadata, error) {
	t.Helper()
	return NewParserWithOptions(Options{TypeCheck: true}).ParseSource("units.go", source)
}

func TestTypeCheck_InfersOutput(t *testing.T) {
	source := `package units

type Meters float64

//argcall::callable
type Length interface {
	isLength()
}

//argcall::fn fromKm(Km)
type Km struct {
	Km float64
}

func (Km) isLength() {}

type Lit struct {
	Fixed
}

func (Lit) isLength() {}

type Fixed struct{ V Meters }

func (f Fixed) Call() Meters { return f.V }

func fromKm(km float64) Meters { return Meters(km * 1000) }
`
	metadata, err := parseTyped(t, source)
	require.NoError(t, err)
	require.Len(t, metadata.Containers, 1)
	assert.Equal(t, "Meters", metadata.Containers[0].Output.Expr)
	assert.Empty(t, metadata.Containers[0].Output.Imports)
}

func TestTypeCheck_InfersThroughLocalContainer(t *testing.T) {
	source := `package units

//argcall::callable
type Outer interface {
	isOuter()
}

type Nested struct {
	Inner
}

func (Nested) isOuter() {}

//argcall::callable
//argcall::fn count(N)
type Inner struct {
	N int
}

func count(n int) int { return n }
`
	metadata, err := parseTyped(t, source)
	require.NoError(t, err)
	require.Len(t, metadata.Containers, 2)
	assert.Equal(t, "int", metadata.Containers[0].Output.Expr)
	assert.Equal(t, "int", metadata.Containers[1].Output.Expr)
}

func TestTypeCheck_Diagnostics(t *testing.T) {
	const header = "package units\n\n//argcall::callable -Output=int\ntype Op interface {\n\tisOp()\n}\n\n"

	tests := []struct {
		name    string
		source  string
		code    errors.ErrorCode
		message string
	}{
		{
			name:    "arity",
			source:  header + "//argcall::fn add(X)\ntype Add struct {\n\tX int\n}\n\nfunc (Add) isOp() {}\n\nfunc add(x, y int) int { return x + y }\n",
			code:    errors.ArityErrorCode,
			message: "add takes 2 argument(s), binding passes 1",
		},
		{
			name:    "result type",
			source:  header + "//argcall::fn name(X)\ntype Name struct {\n\tX int\n}\n\nfunc (Name) isOp() {}\n\nfunc name(x int) string { return \"\" }\n",
			code:    errors.TypeMismatchErrorCode,
			message: "result type string is not assignable to output type int",
		},
		{
			name:    "argument type",
			source:  header + "//argcall::fn half(X)\ntype Half struct {\n\tX string\n}\n\nfunc (Half) isOp() {}\n\nfunc half(x int) int { return x / 2 }\n",
			code:    errors.TypeMismatchErrorCode,
			message: "field X of type string cannot be passed as int",
		},
		{
			name:    "struct container without binding",
			source:  "package units\n\n//argcall::callable_mut -Output=int\ntype Counter struct {\n\tN int\n}\n\n//argcall::fn bump(N)\ntype Other struct{}\n\nfunc bump(n int) int { return n }\n",
			code:    errors.MissingBindingErrorCode,
			message: "Counter.Counter",
		},
		{
			name:    "multiple results",
			source:  header + "//argcall::fn pair()\ntype Pair struct{}\n\nfunc (Pair) isOp() {}\n\nfunc pair() (int, error) { return 0, nil }\n",
			code:    errors.TypeMismatchErrorCode,
			message: "result type (int, error) is not assignable",
		},
		{
			name:    "undefined",
			source:  header + "//argcall::fn nowhere()\ntype Zero struct{}\n\nfunc (Zero) isOp() {}\n",
			code:    errors.UnresolvedFunctionErrorCode,
			message: "undefined: nowhere",
		},
		{
			name:    "delegate without capability",
			source:  header + "type Plain struct{}\n\ntype Wrap struct {\n\tPlain\n}\n\nfunc (Wrap) isOp() {}\n",
			code:    errors.DelegationErrorCode,
			message: "it has no Call() method",
		},
		{
			name:    "members disagree",
			source:  "package units\n\n//argcall::callable\ntype Op interface {\n\tisOp()\n}\n\n//argcall::fn a()\ntype A struct{}\n\nfunc (A) isOp() {}\n\n//argcall::fn b()\ntype B struct{}\n\nfunc (B) isOp() {}\n\nfunc a() int { return 0 }\nfunc b() string { return \"\" }\n",
			code:    errors.MissingOutputErrorCode,
			message: "Op: missing output type",
		},
		{
			name:    "invalid output",
			source:  "package units\n\n//argcall::callable -Output=Missing\ntype Op interface {\n\tisOp()\n}\n\n//argcall::fn a()\ntype A struct{}\n\nfunc (A) isOp() {}\n\nfunc a() int { return 0 }\n",
			code:    errors.ContainerErrorCode,
			message: "output type Missing",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseTyped(t, tt.source)
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, tt.code), "got: %v", err)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestTypeCheck_MutablePointerArguments(t *testing.T) {
	valid := `package units

//argcall::callable_mut -Output=int
//argcall::fn bump(N)
type Counter struct {
	N int
}

func bump(n *int) int { *n++; return *n }
`
	_, err := parseTyped(t, valid)
	require.NoError(t, err)

	invalid := `package units

//argcall::callable_mut -Output=int
//argcall::fn bump(N)
type Counter struct {
	N int
}

func bump(n int) int { return n }
`
	_, err = parseTyped(t, invalid)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "field N of type *int cannot be passed as int")
}

func TestTypeCheck_VariadicAndGeneric(t *testing.T) {
	source := `package units

//argcall::callable -Output=int
type Op interface {
	isOp()
}

//argcall::fn sum(X, Y, Z)
type Sum struct {
	X, Y, Z int
}

func (Sum) isOp() {}

//argcall::fn first(X)
type First struct {
	X int
}

func (First) isOp() {}

func sum(xs ...int) int {
	total := 0
	for _, x := range xs {
		total += x
	}
	return total
}

func first[T any](v T) T { return v }
`
	metadata, err := parseTyped(t, source)
	require.NoError(t, err)
	assert.Empty(t, metadata.Warnings)
}

func TestTypeCheck_Conversions(t *testing.T) {
	source := `package units

import "time"

type Celsius float64

//argcall::callable -Output=time.Duration
//argcall::fn time.Duration(N)
type Wait struct {
	N int64
}

//argcall::callable -Output=Celsius
type Reading interface {
	isReading()
}

//argcall::fn Celsius(Raw)
type Raw struct {
	Raw float64
}

func (Raw) isReading() {}
`

	metadata, err := parseTyped(t, source)
	require.NoError(t, err)
	require.Len(t, metadata.Containers, 2)
	for _, c := range metadata.Containers {
		require.Len(t, c.Members, 1, c.Name)
		assert.Equal(t, models.CallStrategy, c.Members[0].Binding.Strategy, c.Name)
	}
}

func TestTypeCheck_ConversionDiagnostics(t *testing.T) {
	const header = "package units\n\ntype Celsius float64\n\n//argcall::callable -Output=Celsius\ntype Reading interface {\n\tisReading()\n}\n\n"

	tests := []struct {
		name    string
		source  string
		code    errors.ErrorCode
		message string
	}{
		{
			name:    "two fields",
			source:  header + "//argcall::fn Celsius(A, B)\ntype Pair struct {\n\tA, B float64\n}\n\nfunc (Pair) isReading() {}\n",
			code:    errors.ArityErrorCode,
			message: "Celsius takes 1 argument(s), binding passes 2",
		},
		{
			name:    "not convertible",
			source:  header + "//argcall::fn Celsius(Label)\ntype Text struct {\n\tLabel string\n}\n\nfunc (Text) isReading() {}\n",
			code:    errors.TypeMismatchErrorCode,
			message: "field Label of type string cannot be passed as",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseTyped(t, tt.source)
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, tt.code), "got: %v", err)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}
