package generator

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dave/jennifer/jen"

	"github.com/toyz/argcall/internal/errors"
	"github.com/toyz/argcall/internal/models"
	"github.com/toyz/argcall/internal/parser"
)

const (
	// RuntimePackage holds the capability interfaces generated code asserts against
	RuntimePackage = "github.com/toyz/argcall/pkg/argcall"

	// Header is the first line of every generated file
	Header = "Code generated by argcall. DO NOT EDIT."

	receiver = models.Receiver
)

// Options configures a Generator
type Options struct {
	OutputFile string // name of the generated file in each package
}

// Generator turns package metadata into Go source
type Generator struct {
	outputFile string
}

// NewGenerator creates a new code generator instance
func NewGenerator() *Generator {
	return NewGeneratorWithOptions(Options{})
}

// NewGeneratorWithOptions creates a generator with the given options
func NewGeneratorWithOptions(opts Options) *Generator {
	if opts.OutputFile == "" {
		opts.OutputFile = parser.DefaultOutputFile
	}
	return &Generator{outputFile: opts.OutputFile}
}

// OutputFile returns the name of the generated file
func (g *Generator) OutputFile() string {
	return g.outputFile
}

// GenerateFile renders the capability methods and dispatch functions of a
// package. It returns nil when the package has no containers.
func (g *Generator) GenerateFile(metadata *models.PackageMetadata) (*models.GeneratedFile, error) {
	if metadata == nil {
		return nil, fmt.Errorf("metadata cannot be nil")
	}
	if len(metadata.Containers) == 0 {
		return nil, nil
	}

	imports := NewImportManager(parser.ImportName)
	imports.AddImport("argcall", RuntimePackage)
	for _, container := range metadata.Containers {
		if container.Kind == models.SumContainer {
			imports.AddImport("fmt", "fmt")
			break
		}
	}

	f := jen.NewFile(metadata.PackageName)
	f.HeaderComment(Header)

	var names []string
	for i := range metadata.Containers {
		container := &metadata.Containers[i]
		if err := g.generateContainer(f, imports, metadata.PackageName, container); err != nil {
			return nil, errors.WrapGenerateError(container.Name, err).WithLocation(container.Location)
		}
		names = append(names, container.Name)
	}
	imports.Apply(f)

	filePath := filepath.Join(metadata.PackagePath, g.outputFile)

	var buf bytes.Buffer
	if err := f.Render(&buf); err != nil {
		return nil, errors.WrapGenerateError(filePath, err)
	}
	content, err := Format(filePath, buf.Bytes())
	if err != nil {
		return nil, errors.WrapGenerateError(filePath, err)
	}

	return &models.GeneratedFile{
		PackageName: metadata.PackageName,
		FilePath:    filePath,
		Content:     string(content),
		Containers:  names,
	}, nil
}

// generateContainer emits the interface assertions, one method per member
// and, for sum types, the dispatch function
func (g *Generator) generateContainer(f *jen.File, imports *ImportManager, pkg string, container *models.ContainerMetadata) error {
	if container.Output == nil {
		return fmt.Errorf("missing output type")
	}
	imports.AddImports(container.Output.Imports)
	output, err := typeCode(container.Output.Expr, container.Output.Imports)
	if err != nil {
		return err
	}

	flavor := container.Flavor
	assertions := make([]jen.Code, 0, len(container.Members))
	for _, member := range container.Members {
		assertions = append(assertions, jen.Id("_").Qual(RuntimePackage, flavor.InterfaceName()).Types(output).
			Op("=").Parens(jen.Op("*").Id(member.Name)).Call(jen.Nil()))
	}
	f.Var().Defs(assertions...)

	for i := range container.Members {
		member := &container.Members[i]
		body, doc, err := g.memberBody(imports, container, member)
		if err != nil {
			return fmt.Errorf("%s: %w", member.Name, err)
		}

		var recv jen.Code = jen.Id(receiver).Id(member.Name)
		if flavor.PointerReceiver() {
			recv = jen.Id(receiver).Op("*").Id(member.Name)
		}
		f.Commentf("%s implements argcall.%s %s.", flavor.MethodName(), flavor.InterfaceName(), doc)
		f.Func().Params(recv).Id(flavor.MethodName()).Params().Add(output).Block(
			jen.Return(body),
		)
	}

	if container.Kind == models.SumContainer {
		g.generateDispatch(f, pkg, container, output)
	}
	return nil
}

// memberBody builds the expression a member's method returns
func (g *Generator) memberBody(imports *ImportManager, container *models.ContainerMetadata, member *models.MemberMetadata) (jen.Code, string, error) {
	binding := member.Binding
	method := container.Flavor.MethodName()

	if binding.Strategy == models.DelegateStrategy {
		inner := jen.Id(receiver).Dot(binding.Delegate)
		if binding.Dispatch != "" {
			return jen.Id(binding.Dispatch).Call(inner), "by dispatching " + binding.Delegate, nil
		}
		return inner.Dot(method).Call(), "by delegating to " + binding.Delegate, nil
	}

	args := make([]jen.Code, 0, len(binding.Args))
	for _, arg := range binding.Args {
		field := jen.Id(receiver).Dot(arg)
		if container.Flavor.PointerReceiver() {
			field = jen.Op("&").Id(receiver).Dot(arg)
		}
		args = append(args, field)
	}

	fn, err := g.funcCode(imports, member, binding.Func)
	if err != nil {
		return nil, "", err
	}
	return jen.Add(fn).Call(args...), "by calling " + binding.Func, nil
}

// funcCode resolves a possibly qualified function name
func (g *Generator) funcCode(imports *ImportManager, member *models.MemberMetadata, name string) (jen.Code, error) {
	pkg, fn, qualified := strings.Cut(name, ".")
	if !qualified {
		return jen.Id(name), nil
	}
	path, ok := member.Imports[pkg]
	if !ok {
		return nil, fmt.Errorf("package %s is not imported", pkg)
	}
	imports.AddImport(pkg, path)
	return jen.Qual(path, fn), nil
}

// generateDispatch emits the type switch over every variant of a sum type.
// Variants whose marker has a value receiver match both V and *V.
func (g *Generator) generateDispatch(f *jen.File, pkg string, container *models.ContainerMetadata, output jen.Code) {
	method := container.Flavor.MethodName()
	var cases []jen.Code
	for _, member := range container.Members {
		call := jen.Return(jen.Id(receiver).Dot(method).Call())
		if !member.PointerVariant {
			cases = append(cases, jen.Case(jen.Id(member.Name)).Block(call))
		}
		cases = append(cases, jen.Case(jen.Op("*").Id(member.Name)).Block(call))
	}
	cases = append(cases, jen.Default().Block(
		jen.Panic(jen.Qual("fmt", "Sprintf").Call(
			jen.Lit(fmt.Sprintf("%s: unexpected %s variant %%T", pkg, container.Name)),
			jen.Id(receiver),
		)),
	))

	f.Commentf("%s calls %s on the %s variant held by v.", container.Dispatch, method, container.Name)
	f.Comment("It panics if v is nil or holds a type that is not a variant.")
	f.Func().Id(container.Dispatch).Params(jen.Id(receiver).Id(container.Name)).Add(output).Block(
		jen.Switch(jen.Id(receiver).Op(":=").Id(receiver).Assert(jen.Type())).Block(cases...),
	)
}
