package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeTree creates files below root; keys use forward slashes
func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

func TestSplitPattern(t *testing.T) {
	tests := []struct {
		in        string
		base      string
		recursive bool
	}{
		{"./...", ".", true},
		{"...", ".", true},
		{"/...", ".", true},
		{"internal/...", "internal", true},
		{".", ".", false},
		{"internal/shapes", "internal/shapes", false},
	}
	for _, tt := range tests {
		base, recursive := splitPattern(tt.in)
		assert.Equal(t, tt.base, base, tt.in)
		assert.Equal(t, tt.recursive, recursive, tt.in)
	}
}

func TestDirectoryScanner_ScanDirectories(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"go.mod":                        "module example.com/app\n",
		"main.go":                       "package main\n",
		"shapes/shapes.go":              "package shapes\n",
		"shapes/polygon/polygon.go":     "package polygon\n",
		"onlygen/autogen_argcall.go":    "package onlygen\n",
		"legacy/legacy.go":              "package legacy\n",
		"vendor/example.com/dep/dep.go": "package dep\n",
	})

	scanner := NewDirectoryScanner("autogen_argcall.go", []string{"legacy"})

	dirs, err := scanner.ScanDirectories([]string{filepath.Join(root, "...")})
	require.NoError(t, err)
	assert.Equal(t, []string{
		root,
		filepath.Join(root, "shapes"),
		filepath.Join(root, "shapes", "polygon"),
	}, dirs)

	dirs, err = scanner.ScanDirectories([]string{filepath.Join(root, "shapes"), filepath.Join(root, "shapes")})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "shapes")}, dirs, "plain directories are not recursive and are deduplicated")

	dirs, err = scanner.ScanDirectories([]string{filepath.Join(root, "onlygen")})
	require.NoError(t, err)
	assert.Empty(t, dirs)
}

func TestDirectoryScanner_Errors(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"file.go": "package x\n"})
	scanner := NewDirectoryScanner("autogen_argcall.go", nil)

	_, err := scanner.ScanDirectories([]string{filepath.Join(root, "missing")})
	assert.Error(t, err)

	_, err = scanner.ScanDirectories([]string{filepath.Join(root, "file.go")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is not a directory")
}
