package parser

import (
	"fmt"
	"go/ast"
	"go/importer"
	goparser "go/parser"
	"go/token"
	"go/types"
	"path/filepath"

	"golang.org/x/tools/go/packages"
)

// LoadMode specifies what information to load from packages.
const LoadMode = packages.NeedName |
	packages.NeedFiles |
	packages.NeedSyntax |
	packages.NeedTypes |
	packages.NeedTypesInfo |
	packages.NeedImports

// typeInfo is the type-checked view of the package being generated
type typeInfo struct {
	fset *token.FileSet
	pkg  *types.Package
	info *types.Info
}

// loadPackage loads the package in dir with full type information. The
// previously generated file is reduced to its package clause so stale
// methods never satisfy a check.
func (p *Parser) loadPackage(dir string) ([]*sourceFile, *typeInfo, error) {
	cfg := &packages.Config{
		Mode: LoadMode,
		Dir:  dir,
		Fset: p.fileSet,
		ParseFile: func(fset *token.FileSet, filename string, src []byte) (*ast.File, error) {
			mode := goparser.ParseComments | goparser.AllErrors
			if filepath.Base(filename) == p.outputFile {
				mode = goparser.PackageClauseOnly
			}
			return goparser.ParseFile(fset, filename, src, mode)
		},
	}

	pkgs, err := packages.Load(cfg, ".")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load package: %w", err)
	}
	if len(pkgs) != 1 {
		return nil, nil, fmt.Errorf("expected one package in %s, found %d", dir, len(pkgs))
	}
	pkg := pkgs[0]
	if pkg.Types == nil || len(pkg.Syntax) == 0 {
		if len(pkg.Errors) > 0 {
			return nil, nil, fmt.Errorf("failed to load package: %v", pkg.Errors[0])
		}
		return nil, nil, fmt.Errorf("no Go files in %s", dir)
	}

	// Type errors are tolerated: the package may not compile until the
	// generated file exists.
	var files []*sourceFile
	for _, file := range pkg.Syntax {
		name := pkg.Fset.Position(file.Package).Filename
		if filepath.Base(name) == p.outputFile {
			continue
		}
		files = append(files, &sourceFile{name: name, ast: file})
	}

	return files, &typeInfo{fset: pkg.Fset, pkg: pkg.Types, info: pkg.TypesInfo}, nil
}

// checkFiles type-checks in-memory files against the standard library
func (p *Parser) checkFiles(files []*sourceFile) *typeInfo {
	if len(files) == 0 {
		return nil
	}
	syntax := make([]*ast.File, 0, len(files))
	for _, f := range files {
		syntax = append(syntax, f.ast)
	}

	info := &types.Info{
		Types:  make(map[ast.Expr]types.TypeAndValue),
		Defs:   make(map[*ast.Ident]types.Object),
		Uses:   make(map[*ast.Ident]types.Object),
		Scopes: make(map[ast.Node]*types.Scope),
	}
	conf := types.Config{
		Importer: importer.Default(),
		Error:    func(error) {},
	}
	pkg, _ := conf.Check(files[0].ast.Name.Name, p.fileSet, syntax, info)
	return &typeInfo{fset: p.fileSet, pkg: pkg, info: info}
}
