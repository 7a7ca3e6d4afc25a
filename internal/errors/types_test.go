package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSourceLocationString(t *testing.T) {
	tests := []struct {
		name string
		loc  SourceLocation
		want string
	}{
		{"empty", SourceLocation{}, "unknown location"},
		{"file only", SourceLocation{File: "a.go"}, "a.go"},
		{"file and line", SourceLocation{File: "a.go", Line: 3}, "a.go:3"},
		{"full", SourceLocation{File: "a.go", Line: 3, Column: 7}, "a.go:3:7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.loc.String())
		})
	}
}

func TestBaseErrorFormatting(t *testing.T) {
	err := NewUnknownField("Op", "Add", "Z", []string{"X", "Y"}, SourceLocation{File: "op.go", Line: 10, Column: 1})

	assert.Equal(t, `op.go:10:1: Op.Add: argument "Z" is not a field of Add`, err.Error())
	assert.Equal(t, UnknownFieldErrorCode, err.ErrorCode())
	assert.Equal(t, "Z", err.Context()["field"])
	assert.Contains(t, err.Suggestions(), "available fields: X, Y")
}

func TestBaseErrorCause(t *testing.T) {
	cause := fmt.Errorf("permission denied")
	err := WrapFileSystemError("write", "x.go", cause)

	assert.Equal(t, "failed to write file 'x.go': permission denied", err.Error())
	assert.True(t, stderrors.Is(err, cause))
}

func TestDiagnosticsCollect(t *testing.T) {
	var diags Diagnostics
	assert.NoError(t, diags.Err())

	diags.Add(nil)
	diags.Add(NewMissingOutput("Op", SourceLocation{File: "b.go", Line: 2, Column: 1}))
	diags.Add(NewConflictingBinding("Op", "Add", []string{"fn", "fn_path"}, SourceLocation{File: "a.go", Line: 9, Column: 1}))
	diags.Add(fmt.Errorf("plain failure"))

	err := diags.Err()
	require.Error(t, err)
	assert.Equal(t, 3, diags.Len())

	// sorted by location, the unlocated error first
	assert.Equal(t, "plain failure", diags.Errors[0].Error())
	assert.Equal(t, ConflictingBindingErrorCode, diags.Errors[1].ErrorCode())
	assert.Equal(t, MissingOutputErrorCode, diags.Errors[2].ErrorCode())

	assert.True(t, diags.HasCode(MissingOutputErrorCode))
	assert.False(t, diags.HasCode(ArityErrorCode))
	assert.True(t, stderrors.Is(err, &BaseError{Code: ConflictingBindingErrorCode}))
	assert.Contains(t, err.Error(), "3 diagnostics:")

	var base *BaseError
	require.True(t, stderrors.As(err, &base))
}

func TestDiagnosticsFlatten(t *testing.T) {
	inner := &Diagnostics{}
	inner.Add(NewMissingOutput("A", SourceLocation{}))
	inner.Add(NewMissingOutput("B", SourceLocation{}))

	outer := &Diagnostics{}
	outer.Add(inner)
	assert.Equal(t, 2, outer.Len())
	assert.Len(t, outer.Suggestions(), 2)
}
