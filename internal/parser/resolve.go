package parser

import (
	"fmt"
	"go/ast"
	goparser "go/parser"
	"go/types"
	"strings"

	"github.com/go-openapi/inflect"

	"github.com/toyz/argcall/internal/annotations"
	"github.com/toyz/argcall/internal/errors"
	"github.com/toyz/argcall/internal/models"
)

// containerDraft keeps the declarations behind a container while it is resolved
type containerDraft struct {
	meta    *models.ContainerMetadata
	decl    *typeDecl
	members []*typeDecl // aligned with meta.Members
}

// resolver turns collected declarations into package metadata
type resolver struct {
	decls      *declarations
	typeInfo   *typeInfo
	drafts     []*containerDraft
	containers map[string]*containerDraft
	generated  map[string]string // Member.Method -> container generating it
	claimed    map[string]bool   // types whose bindings belong to a container
	diags      *errors.Diagnostics
	warnings   []string
}

func newResolver(decls *declarations, ti *typeInfo) *resolver {
	return &resolver{
		decls:      decls,
		typeInfo:   ti,
		containers: make(map[string]*containerDraft),
		generated:  make(map[string]string),
		claimed:    make(map[string]bool),
		diags:      &errors.Diagnostics{},
	}
}

// resolve runs the three passes: containers, members, then type checks
func (r *resolver) resolve() (*models.PackageMetadata, error) {
	for _, td := range r.decls.types {
		r.resolveContainer(td)
	}
	for _, draft := range r.drafts {
		r.resolveMembers(draft)
	}
	for _, draft := range r.drafts {
		for i := range draft.meta.Members {
			r.resolveBinding(draft, i)
		}
	}
	r.checkOutputs()
	r.reportUnclaimed()

	metadata := &models.PackageMetadata{
		PackageName: r.decls.packageName,
		Warnings:    r.warnings,
	}
	for _, draft := range r.drafts {
		metadata.Containers = append(metadata.Containers, *draft.meta)
	}
	if err := r.diags.Err(); err != nil {
		return metadata, err
	}
	return metadata, nil
}

func (r *resolver) resolveContainer(td *typeDecl) {
	var found []*annotations.ParsedAnnotation
	for _, a := range td.annotations {
		if a.Type.IsContainer() {
			found = append(found, a)
		}
	}
	if len(found) == 0 {
		return
	}
	if len(found) > 1 {
		r.diags.Add(errors.NewContainerError(td.name, "more than one callable annotation", found[1].Location))
		return
	}
	annotation := found[0]

	meta := &models.ContainerMetadata{
		Name:     td.name,
		Flavor:   flavorOf(annotation.Type),
		FileName: td.file.name,
		Location: td.location,
	}
	if td.spec.TypeParams != nil {
		r.diags.Add(errors.NewContainerError(td.name, "generic types cannot be callable containers", td.location))
		return
	}

	if output := annotation.GetString("Output"); output != "" {
		ref, err := newTypeRef(output, td.file.imports)
		if err != nil {
			r.diags.Add(errors.NewContainerError(td.name, fmt.Sprintf("output type: %v", err), annotation.Location))
			return
		}
		meta.Output = ref
	}

	switch t := td.spec.Type.(type) {
	case *ast.InterfaceType:
		meta.Kind = models.SumContainer
		meta.Marker = markerMethod(t)
		if meta.Marker == "" {
			r.diags.Add(errors.NewContainerError(td.name, "sum types must declare an unexported marker method such as is"+td.name+"()", td.location).
				WithSuggestion(fmt.Sprintf("add is%s() to the interface and declare it on every variant", td.name)))
			return
		}
		meta.Dispatch = annotation.GetString("Dispatch", dispatchName(meta.Flavor, td.name))
		if meta.Dispatch == models.Receiver {
			r.diags.Add(errors.NewContainerError(td.name, fmt.Sprintf("dispatch function cannot be named %s", models.Receiver), annotation.Location))
			return
		}
		if r.decls.funcs[meta.Dispatch] || r.decls.byName[meta.Dispatch] != nil {
			r.diags.Add(errors.NewContainerError(td.name, fmt.Sprintf("dispatch function %s collides with an existing declaration", meta.Dispatch), annotation.Location).
				WithSuggestion("choose another name with -Dispatch=Name"))
			return
		}
	case *ast.StructType:
		meta.Kind = models.StructContainer
		if annotation.HasParameter("Dispatch") {
			r.diags.Add(errors.NewContainerError(td.name, "-Dispatch only applies to sum types", annotation.Location))
			return
		}
	default:
		r.diags.Add(errors.NewContainerError(td.name, "callable containers must be an interface or a struct type", td.location))
		return
	}

	draft := &containerDraft{meta: meta, decl: td}
	r.drafts = append(r.drafts, draft)
	r.containers[td.name] = draft
}

// resolveMembers finds the variants of a sum type, or uses the struct itself
func (r *resolver) resolveMembers(draft *containerDraft) {
	meta := draft.meta
	if meta.Kind == models.StructContainer {
		r.addMember(draft, draft.decl, false)
		return
	}

	variants := 0
	for _, td := range r.decls.types {
		if td.name == meta.Name {
			continue
		}
		method, ok := r.decls.method(td.name, meta.Marker)
		if !ok || method.params != 0 || len(method.results) != 0 {
			continue
		}
		variants++
		r.addMember(draft, td, method.pointer)
	}
	if variants == 0 {
		r.diags.Add(errors.NewContainerError(meta.Name, fmt.Sprintf("no type in the package declares %s()", meta.Marker), meta.Location).
			WithSuggestion(fmt.Sprintf("declare func (Variant) %s() {} for every variant", meta.Marker)))
	}
}

func (r *resolver) addMember(draft *containerDraft, td *typeDecl, pointer bool) {
	meta := draft.meta
	r.claimed[td.name] = true

	st, ok := td.spec.Type.(*ast.StructType)
	if !ok {
		r.diags.Add(errors.NewUnsupportedMember(meta.Name, td.name, "members must be struct types", td.location))
		return
	}
	if td.spec.TypeParams != nil {
		r.diags.Add(errors.NewUnsupportedMember(meta.Name, td.name, "generic members are not supported", td.location))
		return
	}

	if meta.Kind == models.SumContainer && meta.Flavor.PointerReceiver() && !pointer {
		r.diags.Add(errors.NewUnsupportedMember(meta.Name, td.name,
			fmt.Sprintf("callable_mut variants must declare %s() on *%s", meta.Marker, td.name), td.location).
			WithSuggestion(fmt.Sprintf("declare func (*%s) %s() {}", td.name, meta.Marker)))
		return
	}

	method := meta.Flavor.MethodName()
	if _, exists := r.decls.method(td.name, method); exists {
		r.diags.Add(errors.NewUnsupportedMember(meta.Name, td.name, fmt.Sprintf("%s already declares %s()", td.name, method), td.location))
		return
	}
	key := td.name + "." + method
	if owner, taken := r.generated[key]; taken {
		r.diags.Add(errors.NewUnsupportedMember(meta.Name, td.name, fmt.Sprintf("%s() is already generated for %s by %s", method, td.name, owner), td.location))
		return
	}
	r.generated[key] = meta.Name

	member := models.MemberMetadata{
		Name:           td.name,
		Fields:         structFields(st),
		PointerVariant: pointer,
		Imports:        td.file.imports,
		FileName:       td.file.name,
		Location:       td.location,
	}
	switch {
	case st.Fields == nil || len(st.Fields.List) == 0:
		member.Shape = models.UnitMember
	case len(member.Fields) == 1 && member.Fields[0].Embedded:
		member.Shape = models.TupleMember
	default:
		member.Shape = models.NamedMember
	}

	meta.Members = append(meta.Members, member)
	draft.members = append(draft.members, td)
}

// resolveBinding decides how one member produces the container's output
func (r *resolver) resolveBinding(draft *containerDraft, index int) {
	meta := draft.meta
	member := &meta.Members[index]
	td := draft.members[index]

	var bindings []*annotations.ParsedAnnotation
	for _, a := range td.annotations {
		if a.Type.IsBinding() {
			bindings = append(bindings, a)
		}
	}

	if member.Shape == models.TupleMember {
		for _, b := range bindings {
			r.warnings = append(r.warnings, fmt.Sprintf("%s: argcall::%s on %s is ignored; a member with a single embedded field delegates to %s",
				b.Location, b.Type, member.Name, member.Fields[0].Name))
		}
		r.resolveDelegate(draft, member)
		return
	}

	switch len(bindings) {
	case 0:
		// a binding that failed to parse is already reported
		if !td.malformed {
			r.diags.Add(errors.NewMissingBinding(meta.Name, member.Name, member.Location))
		}
		return
	case 1:
	default:
		found := make([]string, 0, len(bindings))
		for _, b := range bindings {
			found = append(found, strings.TrimSpace(strings.TrimPrefix(b.Raw, "//")))
		}
		r.diags.Add(errors.NewConflictingBinding(meta.Name, member.Name, found, bindings[1].Location))
		return
	}

	annotation := bindings[0]
	binding := models.Binding{Location: annotation.Location}
	switch annotation.Type {
	case annotations.FnAnnotation:
		binding.Strategy = models.CallStrategy
		binding.Func = annotation.Call.Func
		binding.Args = annotation.Call.Args
		for _, arg := range binding.Args {
			if !member.HasField(arg) {
				r.diags.Add(errors.NewUnknownField(meta.Name, member.Name, arg, member.FieldNames(), annotation.Location))
				return
			}
		}
	case annotations.FnPathAnnotation:
		binding.Strategy = models.PathStrategy
		binding.Func = annotation.Path
		binding.Args = member.FieldNames()
	}

	if name, _, _ := strings.Cut(binding.Func, "."); name == models.Receiver {
		r.diags.Add(errors.NewUnresolvedFunction(meta.Name, member.Name, binding.Func,
			fmt.Sprintf("%s is shadowed by the receiver %s of the generated method", name, models.Receiver), annotation.Location).
			WithSuggestion("rename the function or import its package under another name"))
		return
	}

	if pkg, _, qualified := strings.Cut(binding.Func, "."); qualified {
		if _, ok := member.Imports[pkg]; !ok {
			r.diags.Add(errors.NewUnresolvedFunction(meta.Name, member.Name, binding.Func,
				fmt.Sprintf("package %s is not imported by %s", pkg, member.FileName), annotation.Location))
			return
		}
	} else if r.typeInfo == nil && !r.decls.funcs[binding.Func] && r.decls.byName[binding.Func] == nil &&
		types.Universe.Lookup(binding.Func) == nil {
		r.diags.Add(errors.NewUnresolvedFunction(meta.Name, member.Name, binding.Func,
			fmt.Sprintf("package %s declares no function %s", r.decls.packageName, binding.Func), annotation.Location))
		return
	}

	member.Binding = binding
}

// resolveDelegate binds a single-value member to its inner value's capability
func (r *resolver) resolveDelegate(draft *containerDraft, member *models.MemberMetadata) {
	meta := draft.meta
	inner := member.Fields[0]
	member.Binding = models.Binding{
		Strategy: models.DelegateStrategy,
		Delegate: inner.Name,
		Location: member.Location,
	}
	method := meta.Flavor.MethodName()

	base, qualified := baseTypeName(inner.Type)
	if qualified {
		if r.typeInfo == nil {
			r.warnings = append(r.warnings, fmt.Sprintf("%s: %s.%s delegates to %s; its %s() method is not checked without -typecheck",
				member.Location, meta.Name, member.Name, inner.Type, method))
		}
		return
	}

	if target, ok := r.containers[base]; ok {
		switch {
		case target.meta.Flavor != meta.Flavor:
			r.diags.Add(errors.NewDelegationError(meta.Name, member.Name, inner.Type,
				fmt.Sprintf("%s is %s, not %s", base, target.meta.Flavor, meta.Flavor), member.Location))
		case target.meta.Output != nil && meta.Output != nil && target.meta.Output.Expr != meta.Output.Expr:
			r.diags.Add(errors.NewDelegationError(meta.Name, member.Name, inner.Type,
				fmt.Sprintf("%s produces %s, not %s", base, target.meta.Output, meta.Output), member.Location))
		case target.meta.Kind == models.SumContainer:
			member.Binding.Dispatch = target.meta.Dispatch
		}
		return
	}

	if m, ok := r.decls.method(base, method); ok {
		if m.params != 0 || len(m.results) != 1 {
			r.diags.Add(errors.NewDelegationError(meta.Name, member.Name, inner.Type,
				fmt.Sprintf("%s() must take no arguments and return one value", method), member.Location))
			return
		}
		if r.typeInfo == nil && meta.Output != nil && m.results[0] != meta.Output.Expr {
			r.diags.Add(errors.NewDelegationError(meta.Name, member.Name, inner.Type,
				fmt.Sprintf("%s() returns %s, not %s", method, m.results[0], meta.Output), member.Location))
		}
		return
	}

	if r.typeInfo == nil {
		r.diags.Add(errors.NewDelegationError(meta.Name, member.Name, inner.Type,
			fmt.Sprintf("it has no %s() method", method), member.Location))
	}
}

// checkOutputs verifies output types, with type information when available
func (r *resolver) checkOutputs() {
	if r.typeInfo != nil {
		r.typeCheck()
		return
	}
	for _, draft := range r.drafts {
		if draft.meta.Output == nil {
			r.diags.Add(errors.NewMissingOutput(draft.meta.Name, draft.meta.Location).
				WithSuggestion("or run with -typecheck to infer it from the members"))
		}
	}
}

func (r *resolver) reportUnclaimed() {
	for _, td := range r.decls.types {
		if r.claimed[td.name] {
			continue
		}
		for _, a := range td.annotations {
			if a.Type.IsBinding() {
				r.warnings = append(r.warnings, fmt.Sprintf("%s: argcall::%s on %s has no effect; it is not a member of any callable container",
					a.Location, a.Type, td.name))
			}
		}
	}
}

func flavorOf(t annotations.AnnotationType) models.Flavor {
	switch t {
	case annotations.CallableMutAnnotation:
		return models.FlavorMut
	case annotations.CallableOnceAnnotation:
		return models.FlavorOnce
	default:
		return models.FlavorCallable
	}
}

// dispatchName builds the default dispatch function name, e.g. CallShape or
// callOp for an unexported container.
func dispatchName(flavor models.Flavor, container string) string {
	name := flavor.MethodName() + inflect.Capitalize(container)
	if !ast.IsExported(container) {
		name = strings.ToLower(name[:1]) + name[1:]
	}
	return name
}

// markerMethod returns the first unexported method without parameters or results
func markerMethod(iface *ast.InterfaceType) string {
	if iface.Methods == nil {
		return ""
	}
	for _, field := range iface.Methods.List {
		fn, ok := field.Type.(*ast.FuncType)
		if !ok || len(field.Names) != 1 {
			continue
		}
		name := field.Names[0].Name
		if ast.IsExported(name) || fieldCount(fn.Params) != 0 || fieldCount(fn.Results) != 0 {
			continue
		}
		return name
	}
	return ""
}

// structFields lists named fields; embedded fields are named by their type
func structFields(st *ast.StructType) []models.Field {
	var fields []models.Field
	if st.Fields == nil {
		return fields
	}
	for _, f := range st.Fields.List {
		typ := exprString(f.Type)
		if len(f.Names) == 0 {
			name, _ := baseTypeName(typ)
			fields = append(fields, models.Field{Name: name, Type: typ, Embedded: true})
			continue
		}
		for _, name := range f.Names {
			if name.Name == "_" {
				continue
			}
			fields = append(fields, models.Field{Name: name.Name, Type: typ})
		}
	}
	return fields
}

// baseTypeName strips pointers and type arguments: *pkg.T[int] -> T, true
func baseTypeName(typ string) (string, bool) {
	typ = strings.TrimPrefix(typ, "*")
	if i := strings.IndexByte(typ, '['); i >= 0 {
		typ = typ[:i]
	}
	if _, name, ok := strings.Cut(typ, "."); ok {
		return name, true
	}
	return typ, false
}

// newTypeRef parses a type expression and records the imports it refers to
func newTypeRef(expr string, imports map[string]string) (*models.TypeRef, error) {
	parsed, err := goparser.ParseExpr(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid type %q", expr)
	}
	ref := &models.TypeRef{Expr: exprString(parsed), Imports: make(map[string]string)}

	var missing string
	ast.Inspect(parsed, func(n ast.Node) bool {
		sel, ok := n.(*ast.SelectorExpr)
		if !ok {
			return true
		}
		ident, ok := sel.X.(*ast.Ident)
		if !ok {
			return true
		}
		path, ok := imports[ident.Name]
		if !ok {
			if missing == "" {
				missing = ident.Name
			}
			return false
		}
		ref.Imports[ident.Name] = path
		return false
	})
	if missing != "" {
		return nil, fmt.Errorf("package %s is not imported", missing)
	}
	return ref, nil
}
