package generator

import (
	"bytes"
	"fmt"
	"os"

	"golang.org/x/tools/imports"

	"github.com/toyz/argcall/internal/errors"
	"github.com/toyz/argcall/internal/models"
)

// formatOptions groups and sorts imports without resolving missing ones;
// jennifer already wrote every import the file needs.
var formatOptions = &imports.Options{
	Comments:   true,
	TabIndent:  true,
	TabWidth:   8,
	FormatOnly: true,
}

// Format runs goimports formatting over generated source
func Format(filename string, src []byte) ([]byte, error) {
	formatted, err := imports.Process(filename, src, formatOptions)
	if err != nil {
		return nil, fmt.Errorf("format %s: %w", filename, err)
	}
	return formatted, nil
}

// IsGenerated reports whether src starts with the argcall header
func IsGenerated(src []byte) bool {
	return bytes.HasPrefix(src, []byte("// "+Header))
}

// WriteFile writes a generated file unless the file on disk already has the
// same content. It refuses to overwrite a file argcall did not generate.
func WriteFile(file *models.GeneratedFile) (bool, error) {
	existing, err := os.ReadFile(file.FilePath)
	switch {
	case err == nil:
		if bytes.Equal(existing, []byte(file.Content)) {
			return false, nil
		}
		if !IsGenerated(existing) {
			return false, errors.New(errors.FileSystemErrorCode,
				fmt.Sprintf("refusing to overwrite %s: it was not generated by argcall", file.FilePath)).
				WithSuggestion("rename the file or choose another output_file in argcall.yaml")
		}
	case !os.IsNotExist(err):
		return false, errors.WrapFileSystemError("read", file.FilePath, err)
	}

	if err := os.WriteFile(file.FilePath, []byte(file.Content), 0o644); err != nil {
		return false, errors.WrapFileSystemError("write", file.FilePath, err)
	}
	return true, nil
}

// Stale reports whether the file on disk differs from the generated content
func Stale(file *models.GeneratedFile) (bool, error) {
	existing, err := os.ReadFile(file.FilePath)
	if os.IsNotExist(err) {
		return true, nil
	}
	if err != nil {
		return false, errors.WrapFileSystemError("read", file.FilePath, err)
	}
	return !bytes.Equal(existing, []byte(file.Content)), nil
}
