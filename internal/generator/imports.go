package generator

import (
	"fmt"
	"sort"

	"github.com/dave/jennifer/jen"
)

// ImportManager tracks the packages a generated file refers to and the
// names they are imported under
type ImportManager struct {
	names map[string]string // path -> local name
	paths map[string]string // local name -> path
	guess func(path string) string
}

// NewImportManager creates a new import manager. guess returns the name a
// package is imported under when no alias is given.
func NewImportManager(guess func(path string) string) *ImportManager {
	return &ImportManager{
		names: make(map[string]string),
		paths: make(map[string]string),
		guess: guess,
	}
}

// AddImport records path under name and returns the name actually used.
// A name already taken by another path gets a numeric suffix.
func (im *ImportManager) AddImport(name, path string) string {
	if existing, ok := im.names[path]; ok {
		return existing
	}
	if name == "" {
		name = im.guess(path)
	}
	candidate := name
	for i := 2; ; i++ {
		if _, taken := im.paths[candidate]; !taken {
			break
		}
		candidate = fmt.Sprintf("%s%d", name, i)
	}
	im.names[path] = candidate
	im.paths[candidate] = path
	return candidate
}

// AddImports records every name -> path pair of a map
func (im *ImportManager) AddImports(imports map[string]string) {
	names := make([]string, 0, len(imports))
	for name := range imports {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		im.AddImport(name, imports[name])
	}
}

// Len returns the number of recorded imports
func (im *ImportManager) Len() int {
	return len(im.names)
}

// Apply registers the recorded names with a jennifer file so that
// qualified identifiers render with the same names the source uses
func (im *ImportManager) Apply(f *jen.File) {
	paths := make([]string, 0, len(im.names))
	for path := range im.names {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	for _, path := range paths {
		name := im.names[path]
		if name == im.guess(path) {
			f.ImportName(path, name)
		} else {
			f.ImportAlias(path, name)
		}
	}
}
