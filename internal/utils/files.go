package utils

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// FileFilter defines a function that determines whether a file should be processed
type FileFilter func(path string, info fs.DirEntry) bool

// DirectoryFilter defines a function that determines whether a directory should be descended into
type DirectoryFilter func(path string, info fs.DirEntry) bool

// FileWalkOptions configures file walking behavior
type FileWalkOptions struct {
	FileFilter      FileFilter
	DirectoryFilter DirectoryFilter
	SkipErrors      bool
}

// GoFileFilter accepts Go source files, excluding tests and the generated file
func GoFileFilter(outputFile string) FileFilter {
	return func(path string, info fs.DirEntry) bool {
		if info.IsDir() {
			return false
		}
		name := info.Name()
		return strings.HasSuffix(name, ".go") &&
			!strings.HasSuffix(name, "_test.go") &&
			name != outputFile
	}
}

// NameFilter accepts regular files called name
func NameFilter(name string) FileFilter {
	return func(path string, info fs.DirEntry) bool {
		return !info.IsDir() && info.Name() == name
	}
}

// DefaultDirectoryFilter skips directories the go tool ignores (vendor,
// testdata, names starting with . or _) plus node_modules. Each skip entry is
// a directory path or a glob (doublestar syntax) matched against the
// directory name and its slash-separated path.
func DefaultDirectoryFilter(skip ...string) DirectoryFilter {
	return func(path string, info fs.DirEntry) bool {
		name := info.Name()
		switch {
		case name == "vendor", name == "testdata", name == "node_modules":
			return false
		case strings.HasPrefix(name, "."), strings.HasPrefix(name, "_"):
			return false
		}
		for _, pattern := range skip {
			if skipMatches(pattern, path, name) {
				return false
			}
		}
		return true
	}
}

func skipMatches(pattern, path, name string) bool {
	if filepath.Clean(pattern) == filepath.Clean(path) {
		return true
	}
	pattern = filepath.ToSlash(pattern)
	if matched, err := doublestar.Match(pattern, name); err == nil && matched {
		return true
	}
	matched, err := doublestar.Match(pattern, filepath.ToSlash(path))
	return err == nil && matched
}

// WalkFiles walks rootDir and returns the files accepted by the file filter.
// The directory filter is not applied to rootDir itself.
func WalkFiles(rootDir string, options FileWalkOptions) ([]string, error) {
	var matched []string

	err := filepath.WalkDir(rootDir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			if options.SkipErrors {
				return nil
			}
			return err
		}

		if entry.IsDir() {
			if path != rootDir && options.DirectoryFilter != nil && !options.DirectoryFilter(path, entry) {
				return filepath.SkipDir
			}
			return nil
		}

		if options.FileFilter == nil || options.FileFilter(path, entry) {
			matched = append(matched, path)
		}
		return nil
	})

	return matched, err
}

// HasGoFiles reports whether dir directly contains a file accepted by filter
func HasGoFiles(dir string, filter FileFilter) (bool, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false, err
	}
	for _, entry := range entries {
		if filter(filepath.Join(dir, entry.Name()), entry) {
			return true, nil
		}
	}
	return false, nil
}

// sameModule wraps dirFilter so directories holding their own go.mod, which
// belong to another module, are skipped along with everything under them
func sameModule(rootDir string, dirFilter DirectoryFilter) DirectoryFilter {
	return func(path string, entry fs.DirEntry) bool {
		if path == rootDir {
			return true
		}
		if _, err := os.Stat(filepath.Join(path, "go.mod")); err == nil {
			return false
		}
		return dirFilter == nil || dirFilter(path, entry)
	}
}

// PackageDirs returns rootDir and every directory below it that holds Go
// files, in lexical order. Nested modules are skipped.
func PackageDirs(rootDir string, dirFilter DirectoryFilter, fileFilter FileFilter) ([]string, error) {
	files, err := WalkFiles(rootDir, FileWalkOptions{
		FileFilter:      fileFilter,
		DirectoryFilter: sameModule(rootDir, dirFilter),
	})
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var dirs []string
	for _, file := range files {
		dir := filepath.Dir(file)
		if !seen[dir] {
			seen[dir] = true
			dirs = append(dirs, dir)
		}
	}
	sort.Strings(dirs)
	return dirs, nil
}

// Directories returns rootDir and every directory below it accepted by
// dirFilter, whether or not it holds Go files. Nested modules are skipped.
func Directories(rootDir string, dirFilter DirectoryFilter) ([]string, error) {
	accept := sameModule(rootDir, dirFilter)
	var dirs []string
	err := filepath.WalkDir(rootDir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !entry.IsDir() {
			return nil
		}
		if !accept(path, entry) {
			return filepath.SkipDir
		}
		dirs = append(dirs, path)
		return nil
	})
	return dirs, err
}
