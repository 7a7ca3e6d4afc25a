package parser

import (
	"go/ast"
	"go/token"
	"go/types"
	"sort"
	"strconv"
	"strings"

	"github.com/toyz/argcall/internal/annotations"
	"github.com/toyz/argcall/internal/errors"
)

// sourceFile is one parsed file of the package
type sourceFile struct {
	name    string
	ast     *ast.File
	imports map[string]string // local package name -> import path
}

// typeDecl is a type declaration together with the annotations above it
type typeDecl struct {
	name        string
	spec        *ast.TypeSpec
	file        *sourceFile
	pos         token.Pos
	location    errors.SourceLocation
	annotations []*annotations.ParsedAnnotation
	malformed   bool // an argcall comment failed to parse
}

// methodDecl is a method found in the package
type methodDecl struct {
	receiver string
	pointer  bool
	name     string
	params   int
	results  []string
	location errors.SourceLocation
}

// declarations is everything the resolver needs from a package
type declarations struct {
	packageName string
	files       []*sourceFile
	types       []*typeDecl
	byName      map[string]*typeDecl
	methods     map[string][]methodDecl // receiver type -> methods
	funcs       map[string]bool         // top-level functions and values
}

// method looks up a method declared on the named receiver type
func (d *declarations) method(receiver, name string) (methodDecl, bool) {
	for _, m := range d.methods[receiver] {
		if m.name == name {
			return m, true
		}
	}
	return methodDecl{}, false
}

// collect walks the files in name order and gathers declarations. Malformed
// annotations are returned as diagnostics; the declarations stay usable.
func (p *Parser) collect(files []*sourceFile) (*declarations, *errors.Diagnostics) {
	sort.Slice(files, func(i, j int) bool { return files[i].name < files[j].name })

	decls := &declarations{
		files:   files,
		byName:  make(map[string]*typeDecl),
		methods: make(map[string][]methodDecl),
		funcs:   make(map[string]bool),
	}
	diags := &errors.Diagnostics{}

	for _, file := range files {
		if decls.packageName == "" {
			decls.packageName = file.ast.Name.Name
		}
		file.imports = fileImports(file.ast)

		for _, decl := range file.ast.Decls {
			switch node := decl.(type) {
			case *ast.GenDecl:
				switch node.Tok {
				case token.TYPE:
					for _, spec := range node.Specs {
						typeSpec := spec.(*ast.TypeSpec)
						doc := typeSpec.Doc
						if doc == nil && len(node.Specs) == 1 {
							doc = node.Doc
						}
						td := &typeDecl{
							name:     typeSpec.Name.Name,
							spec:     typeSpec,
							file:     file,
							pos:      typeSpec.Pos(),
							location: p.location(typeSpec.Name.Pos()),
						}
						before := diags.Len()
						td.annotations = p.extractAnnotations(doc, diags)
						td.malformed = diags.Len() > before
						decls.types = append(decls.types, td)
						decls.byName[td.name] = td
					}
				case token.VAR, token.CONST:
					for _, spec := range node.Specs {
						for _, name := range spec.(*ast.ValueSpec).Names {
							decls.funcs[name.Name] = true
						}
					}
				}
			case *ast.FuncDecl:
				if node.Recv == nil || len(node.Recv.List) == 0 {
					decls.funcs[node.Name.Name] = true
					continue
				}
				receiver, pointer := receiverName(node.Recv.List[0].Type)
				if receiver == "" {
					continue
				}
				decls.methods[receiver] = append(decls.methods[receiver], methodDecl{
					receiver: receiver,
					pointer:  pointer,
					name:     node.Name.Name,
					params:   fieldCount(node.Type.Params),
					results:  fieldTypes(node.Type.Results),
					location: p.location(node.Name.Pos()),
				})
			}
		}
	}

	return decls, diags
}

// extractAnnotations parses every argcall comment of a doc group
func (p *Parser) extractAnnotations(doc *ast.CommentGroup, diags *errors.Diagnostics) []*annotations.ParsedAnnotation {
	if doc == nil {
		return nil
	}
	var parsed []*annotations.ParsedAnnotation
	for _, comment := range doc.List {
		if !annotations.IsAnnotation(comment.Text) {
			continue
		}
		annotation, err := p.annotations.ParseAnnotation(comment.Text, p.location(comment.Pos()))
		if err != nil {
			diags.Add(err)
			continue
		}
		parsed = append(parsed, annotation)
	}
	return parsed
}

func (p *Parser) location(pos token.Pos) errors.SourceLocation {
	position := p.fileSet.Position(pos)
	return errors.SourceLocation{
		File:   position.Filename,
		Line:   position.Line,
		Column: position.Column,
	}
}

// receiverName returns the base type name of a method receiver
func receiverName(expr ast.Expr) (string, bool) {
	pointer := false
	if star, ok := expr.(*ast.StarExpr); ok {
		pointer = true
		expr = star.X
	}
	switch t := expr.(type) {
	case *ast.Ident:
		return t.Name, pointer
	case *ast.IndexExpr:
		if ident, ok := t.X.(*ast.Ident); ok {
			return ident.Name, pointer
		}
	case *ast.IndexListExpr:
		if ident, ok := t.X.(*ast.Ident); ok {
			return ident.Name, pointer
		}
	}
	return "", pointer
}

func exprString(expr ast.Expr) string {
	return types.ExprString(expr)
}

func fieldCount(list *ast.FieldList) int {
	if list == nil {
		return 0
	}
	n := 0
	for _, f := range list.List {
		if len(f.Names) == 0 {
			n++
		} else {
			n += len(f.Names)
		}
	}
	return n
}

func fieldTypes(list *ast.FieldList) []string {
	if list == nil {
		return nil
	}
	var out []string
	for _, f := range list.List {
		count := len(f.Names)
		if count == 0 {
			count = 1
		}
		for i := 0; i < count; i++ {
			out = append(out, exprString(f.Type))
		}
	}
	return out
}

// fileImports maps the local name of each import to its path. Dot and blank
// imports are skipped.
func fileImports(file *ast.File) map[string]string {
	imports := make(map[string]string)
	for _, spec := range file.Imports {
		path, err := strconv.Unquote(spec.Path.Value)
		if err != nil {
			continue
		}
		name := ImportName(path)
		if spec.Name != nil {
			name = spec.Name.Name
		}
		if name == "_" || name == "." {
			continue
		}
		imports[name] = path
	}
	return imports
}

// ImportName guesses the package name of an import path the way goimports
// does: the last element, without a major version suffix or a go- prefix.
func ImportName(path string) string {
	parts := strings.Split(path, "/")
	name := parts[len(parts)-1]
	if len(parts) > 1 && isMajorVersion(name) {
		name = parts[len(parts)-2]
	}
	name = strings.TrimPrefix(name, "go-")
	for i, r := range name {
		if !(r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || i > 0 && r >= '0' && r <= '9') {
			name = name[:i]
			break
		}
	}
	return name
}

func isMajorVersion(s string) bool {
	if len(s) < 2 || s[0] != 'v' {
		return false
	}
	for _, r := range s[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
