package parser

import (
	"fmt"
	goparser "go/parser"
	"go/token"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/toyz/argcall/internal/annotations"
	"github.com/toyz/argcall/internal/errors"
	"github.com/toyz/argcall/internal/models"
)

// DefaultOutputFile is the name of the file written into each package
const DefaultOutputFile = "autogen_argcall.go"

// Options configures a Parser
type Options struct {
	TypeCheck  bool   // resolve output types and check bindings with go/types
	OutputFile string // generated file to ignore while parsing
}

// Parser extracts callable containers from Go packages
type Parser struct {
	fileSet     *token.FileSet
	annotations *annotations.ParticipleParser
	typeCheck   bool
	outputFile  string
}

// NewParser creates a parser that works on syntax alone
func NewParser() *Parser {
	return NewParserWithOptions(Options{})
}

// NewParserWithOptions creates a parser with the given options
func NewParserWithOptions(opts Options) *Parser {
	if opts.OutputFile == "" {
		opts.OutputFile = DefaultOutputFile
	}
	return &Parser{
		fileSet:     token.NewFileSet(),
		annotations: annotations.NewParticipleParser(),
		typeCheck:   opts.TypeCheck,
		outputFile:  opts.OutputFile,
	}
}

// FileSet returns the file set positions are reported against
func (p *Parser) FileSet() *token.FileSet {
	return p.fileSet
}

// ParseSource parses source code from a string for testing purposes
func (p *Parser) ParseSource(filename, source string) (*models.PackageMetadata, error) {
	return p.ParseSources(map[string]string{filename: source})
}

// ParseSources parses several in-memory files of one package. With type
// checking enabled the files may only import the standard library.
func (p *Parser) ParseSources(sources map[string]string) (*models.PackageMetadata, error) {
	names := make([]string, 0, len(sources))
	for name := range sources {
		names = append(names, name)
	}
	sort.Strings(names)

	diags := &errors.Diagnostics{}
	var files []*sourceFile
	for _, name := range names {
		file, err := goparser.ParseFile(p.fileSet, name, sources[name], goparser.ParseComments)
		if err != nil {
			diags.Add(errors.Wrap(errors.SyntaxErrorCode, "failed to parse source", err).
				WithLocation(errors.SourceLocation{File: name}))
			continue
		}
		files = append(files, &sourceFile{name: name, ast: file})
	}
	if err := diags.Err(); err != nil {
		return nil, err
	}

	var ti *typeInfo
	if p.typeCheck {
		ti = p.checkFiles(files)
	}
	metadata, err := p.parseFiles(files, ti)
	if metadata != nil {
		metadata.PackagePath = "./"
	}
	return metadata, err
}

// ParseDirectory parses the Go package in the given directory. Test files and
// the previously generated file are ignored.
func (p *Parser) ParseDirectory(path string) (*models.PackageMetadata, error) {
	var (
		files []*sourceFile
		ti    *typeInfo
		err   error
	)
	if p.typeCheck {
		files, ti, err = p.loadPackage(path)
	} else {
		files, err = p.parseDir(path)
	}
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no Go packages found in directory %s", path)
	}

	metadata, err := p.parseFiles(files, ti)
	if metadata != nil {
		metadata.PackagePath = path
	}
	return metadata, err
}

// parseDir parses the non-test Go files of a directory
func (p *Parser) parseDir(path string) ([]*sourceFile, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, errors.WrapFileSystemError("read", path, err)
	}

	var files []*sourceFile
	packageName := ""
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".go") || strings.HasSuffix(name, "_test.go") || name == p.outputFile {
			continue
		}
		fullPath := filepath.Join(path, name)
		file, err := goparser.ParseFile(p.fileSet, fullPath, nil, goparser.ParseComments)
		if err != nil {
			return nil, errors.Wrap(errors.SyntaxErrorCode, "failed to parse source", err).
				WithLocation(errors.SourceLocation{File: fullPath})
		}
		if packageName != "" && file.Name.Name != packageName {
			return nil, fmt.Errorf("multiple packages found in directory %s", path)
		}
		packageName = file.Name.Name
		files = append(files, &sourceFile{name: fullPath, ast: file})
	}
	return files, nil
}

// parseFiles collects declarations and resolves them into metadata. On
// failure the partial metadata is returned with all diagnostics.
func (p *Parser) parseFiles(files []*sourceFile, ti *typeInfo) (*models.PackageMetadata, error) {
	decls, syntax := p.collect(files)
	r := newResolver(decls, ti)
	r.diags.Add(syntax)
	return r.resolve()
}
