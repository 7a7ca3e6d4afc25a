package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const generatedStub = "// Code generated by argcall. DO NOT EDIT.\n\npackage x\n"

func TestCleaner_CleanGeneratedFiles(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"autogen_argcall.go":             generatedStub,
		"a/autogen_argcall.go":           generatedStub,
		"a/b/autogen_argcall.go":         generatedStub,
		"handwritten/autogen_argcall.go": "package handwritten\n",
		"vendor/autogen_argcall.go":      generatedStub,
		"a/other.go":                     "package a\n",
	})

	cleaner := NewCleaner("autogen_argcall.go", nil)
	removed, err := cleaner.CleanGeneratedFiles([]string{filepath.Join(root, "...")})
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{
		filepath.Join(root, "autogen_argcall.go"),
		filepath.Join(root, "a", "autogen_argcall.go"),
		filepath.Join(root, "a", "b", "autogen_argcall.go"),
	}, removed)

	assert.FileExists(t, filepath.Join(root, "handwritten", "autogen_argcall.go"))
	assert.FileExists(t, filepath.Join(root, "vendor", "autogen_argcall.go"))
	assert.FileExists(t, filepath.Join(root, "a", "other.go"))
}

func TestCleaner_SingleDirectory(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"autogen_argcall.go":   generatedStub,
		"a/autogen_argcall.go": generatedStub,
	})

	cleaner := NewCleaner("autogen_argcall.go", nil)
	removed, err := cleaner.CleanGeneratedFiles([]string{root})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "autogen_argcall.go")}, removed)
	assert.FileExists(t, filepath.Join(root, "a", "autogen_argcall.go"))

	removed, err = cleaner.CleanGeneratedFiles([]string{root})
	require.NoError(t, err)
	assert.Empty(t, removed, "cleaning twice is a no-op")

	_, err = os.Stat(filepath.Join(root, "autogen_argcall.go"))
	assert.True(t, os.IsNotExist(err))
}
