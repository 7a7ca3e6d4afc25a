package cli

import (
	"fmt"

	"github.com/toyz/argcall/internal/utils"
)

// ModuleResolver maps package directories to import paths
type ModuleResolver struct {
	gomod *utils.GoModParser
}

// NewModuleResolver creates a new module resolver
func NewModuleResolver() *ModuleResolver {
	return &ModuleResolver{
		gomod: utils.NewGoModParser(),
	}
}

// ResolveModuleName returns the path of the module enclosing dir
func (r *ModuleResolver) ResolveModuleName(dir string) (string, error) {
	module, err := r.gomod.Module(dir)
	if err != nil {
		return "", fmt.Errorf("failed to determine module name: %w", err)
	}
	return module.Path, nil
}

// ResolveImportPath returns the import path of the package in dir
func (r *ModuleResolver) ResolveImportPath(dir string) (string, error) {
	module, err := r.gomod.Module(dir)
	if err != nil {
		return "", fmt.Errorf("failed to determine module name: %w", err)
	}
	return module.ImportPath(dir)
}

// CheckGoVersions returns one warning per module, among those enclosing
// dirs, whose go directive is older than generated code needs
func (r *ModuleResolver) CheckGoVersions(dirs []string) []string {
	var warnings []string
	checked := make(map[string]bool)
	for _, dir := range dirs {
		module, err := r.gomod.Module(dir)
		if err != nil || checked[module.GoMod] {
			continue
		}
		checked[module.GoMod] = true

		ok, err := module.SupportsGo(utils.MinGoVersion)
		switch {
		case err != nil:
			warnings = append(warnings, err.Error())
		case !ok:
			warnings = append(warnings, fmt.Sprintf("%s: module %s declares go %s; generated code needs go %s or later",
				displayPath(module.GoMod), module.Path, module.GoVersion, utils.MinGoVersion))
		}
	}
	return warnings
}
