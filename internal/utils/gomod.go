package utils

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"
	"golang.org/x/mod/modfile"
)

// MinGoVersion is the oldest go directive generated code builds with; it
// relies on generic interfaces and sync.OnceValue
const MinGoVersion = "1.21"

// ModuleInfo describes the module a directory belongs to
type ModuleInfo struct {
	Path  string // module path from the module directive
	Dir   string // directory holding go.mod
	GoMod string // path of go.mod

	// GoVersion is the go directive, empty when the file has none
	GoVersion string
}

// moduleFile is the part of a go.mod file the parser keeps
type moduleFile struct {
	path      string
	goVersion string
}

// GoModParser finds and parses go.mod files. Parsed files are cached until
// they change on disk.
type GoModParser struct {
	cache *FileCache[moduleFile]
}

// NewGoModParser creates a new go.mod parser with caching
func NewGoModParser() *GoModParser {
	return &GoModParser{
		cache: NewFileCache[moduleFile](DefaultCacheSize),
	}
}

// ParseModuleName extracts the module path from a go.mod file
func (p *GoModParser) ParseModuleName(goModPath string) (string, error) {
	mf, err := p.parse(goModPath)
	if err != nil {
		return "", err
	}
	return mf.path, nil
}

func (p *GoModParser) parse(goModPath string) (moduleFile, error) {
	cleanPath := filepath.Clean(goModPath)
	if filepath.Base(cleanPath) != "go.mod" {
		return moduleFile{}, fmt.Errorf("file is not a go.mod file: %s", goModPath)
	}

	if mf, ok := p.cache.Get(cleanPath); ok {
		return mf, nil
	}

	content, err := os.ReadFile(cleanPath)
	if err != nil {
		return moduleFile{}, fmt.Errorf("failed to read go.mod file: %w", err)
	}

	parsed, err := modfile.ParseLax(cleanPath, content, nil)
	if err != nil {
		return moduleFile{}, fmt.Errorf("failed to parse go.mod file: %w", err)
	}
	if parsed.Module == nil || parsed.Module.Mod.Path == "" {
		return moduleFile{}, fmt.Errorf("no module declaration found in %s", cleanPath)
	}

	mf := moduleFile{path: parsed.Module.Mod.Path}
	if parsed.Go != nil {
		mf.goVersion = parsed.Go.Version
	}

	// a file that vanished between read and stat is simply not cached
	_ = p.cache.Set(cleanPath, mf)
	return mf, nil
}

// FindGoModFile searches for go.mod starting from startDir and walking up
func (p *GoModParser) FindGoModFile(startDir string) (string, error) {
	currentDir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		goModPath := filepath.Join(currentDir, "go.mod")
		if info, err := os.Stat(goModPath); err == nil && !info.IsDir() {
			return goModPath, nil
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			return "", fmt.Errorf("go.mod not found in %s or any parent directory", startDir)
		}
		currentDir = parentDir
	}
}

// Module returns the module enclosing dir
func (p *GoModParser) Module(dir string) (*ModuleInfo, error) {
	goMod, err := p.FindGoModFile(dir)
	if err != nil {
		return nil, err
	}
	mf, err := p.parse(goMod)
	if err != nil {
		return nil, err
	}
	return &ModuleInfo{
		Path:      mf.path,
		Dir:       filepath.Dir(goMod),
		GoMod:     goMod,
		GoVersion: mf.goVersion,
	}, nil
}

// SupportsGo reports whether the go directive is at least min. A module
// without a go directive is not checked. Release candidate suffixes such as
// 1.21rc1 are ignored.
func (m *ModuleInfo) SupportsGo(min string) (bool, error) {
	if m.GoVersion == "" {
		return true, nil
	}
	constraint, err := semver.NewConstraint(">= " + min)
	if err != nil {
		return false, err
	}
	version, err := semver.NewVersion(releasePrefix(m.GoVersion))
	if err != nil {
		return false, fmt.Errorf("invalid go version %q in %s: %w", m.GoVersion, m.GoMod, err)
	}
	return constraint.Check(version), nil
}

// releasePrefix cuts a go version at the first character that is neither a
// digit nor a dot
func releasePrefix(v string) string {
	if i := strings.IndexFunc(v, func(r rune) bool {
		return r != '.' && (r < '0' || r > '9')
	}); i >= 0 {
		return v[:i]
	}
	return v
}

// ImportPath builds the import path of the package in dir
func (m *ModuleInfo) ImportPath(dir string) (string, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(m.Dir, absDir)
	if err != nil {
		return "", err
	}
	rel = filepath.ToSlash(rel)
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return "", fmt.Errorf("%s is outside module %s", dir, m.Path)
	}
	if rel == "." {
		return m.Path, nil
	}
	return path.Join(m.Path, rel), nil
}
