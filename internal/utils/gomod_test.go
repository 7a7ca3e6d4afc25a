package utils

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestGoModParser_ParseModuleName(t *testing.T) {
	dir := t.TempDir()
	goMod := filepath.Join(dir, "go.mod")
	writeFile(t, goMod, "// comment\nmodule \"example.com/shapes\"\n\ngo 1.25\n")

	parser := NewGoModParser()
	name, err := parser.ParseModuleName(goMod)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if name != "example.com/shapes" {
		t.Errorf("expected example.com/shapes, got %s", name)
	}

	// served from the cache the second time
	name, err = parser.ParseModuleName(goMod)
	if err != nil || name != "example.com/shapes" {
		t.Errorf("expected cached module name, got %s %v", name, err)
	}
}

func TestGoModParser_ParseModuleNameErrors(t *testing.T) {
	dir := t.TempDir()
	parser := NewGoModParser()

	if _, err := parser.ParseModuleName(filepath.Join(dir, "main.go")); err == nil || !strings.Contains(err.Error(), "not a go.mod file") {
		t.Errorf("expected not a go.mod error, got %v", err)
	}
	if _, err := parser.ParseModuleName(filepath.Join(dir, "go.mod")); err == nil {
		t.Error("expected error for a missing go.mod")
	}

	writeFile(t, filepath.Join(dir, "go.mod"), "go 1.25\n")
	if _, err := parser.ParseModuleName(filepath.Join(dir, "go.mod")); err == nil || !strings.Contains(err.Error(), "no module declaration") {
		t.Errorf("expected missing module declaration error, got %v", err)
	}
}

func TestGoModParser_Module(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "go.mod"), "module example.com/shapes\n")
	nested := filepath.Join(root, "internal", "geometry")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	module, err := NewGoModParser().Module(nested)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if module.Path != "example.com/shapes" {
		t.Errorf("unexpected module path %s", module.Path)
	}

	tests := []struct {
		dir  string
		want string
	}{
		{root, "example.com/shapes"},
		{nested, "example.com/shapes/internal/geometry"},
	}
	for _, tt := range tests {
		got, err := module.ImportPath(tt.dir)
		if err != nil {
			t.Errorf("%s: unexpected error: %v", tt.dir, err)
			continue
		}
		if got != tt.want {
			t.Errorf("%s: expected %s, got %s", tt.dir, tt.want, got)
		}
	}

	if _, err := module.ImportPath(filepath.Dir(root)); err == nil {
		t.Error("expected error for a directory outside the module")
	}
}

func TestGoModParser_GoVersion(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "go.mod"), "module example.com/shapes\n\ngo 1.22.3\n")

	module, err := NewGoModParser().Module(root)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if module.GoVersion != "1.22.3" {
		t.Errorf("expected go version 1.22.3, got %q", module.GoVersion)
	}
}

func TestModuleInfo_SupportsGo(t *testing.T) {
	tests := []struct {
		version string
		want    bool
	}{
		{"", true},
		{"1.21", true},
		{"1.25.1", true},
		{"1.21rc2", true},
		{"1.20", false},
		{"1.18", false},
	}
	for _, tt := range tests {
		module := &ModuleInfo{Path: "example.com/shapes", GoMod: "go.mod", GoVersion: tt.version}
		got, err := module.SupportsGo(MinGoVersion)
		if err != nil {
			t.Errorf("%q: unexpected error: %v", tt.version, err)
			continue
		}
		if got != tt.want {
			t.Errorf("%q: expected %v, got %v", tt.version, tt.want, got)
		}
	}

	bad := &ModuleInfo{GoMod: "go.mod", GoVersion: "banana"}
	if _, err := bad.SupportsGo(MinGoVersion); err == nil {
		t.Error("expected error for an invalid go version")
	}
}
