package parser

import (
	"fmt"
	"go/token"
	"go/types"
	"strings"

	"github.com/toyz/argcall/internal/errors"
	"github.com/toyz/argcall/internal/models"
)

// typeCheck resolves every container's output type and checks each member
// against it. Containers whose output is inferred from a delegate that is
// itself still unresolved wait for a later round.
func (r *resolver) typeCheck() {
	outputs := make(map[string]types.Type)
	pending := make(map[string]*containerDraft)

	for _, draft := range r.drafts {
		if draft.meta.Output == nil {
			pending[draft.meta.Name] = draft
			continue
		}
		t, err := r.typeInfo.evalType(draft.meta.Output.Expr, draft.decl.pos)
		if err != nil {
			r.diags.Add(errors.NewContainerError(draft.meta.Name, fmt.Sprintf("output type %s: %v", draft.meta.Output, err), draft.meta.Location))
			continue
		}
		outputs[draft.meta.Name] = t
		pending[draft.meta.Name] = draft
	}

	for force := false; len(pending) > 0; {
		progress := false
		for _, draft := range r.drafts {
			if pending[draft.meta.Name] == nil {
				continue
			}
			if !force && r.waitsOn(draft, outputs, pending) {
				continue
			}
			r.checkContainer(draft, outputs)
			delete(pending, draft.meta.Name)
			progress = true
		}
		if !progress {
			force = true
		}
	}
}

// waitsOn reports whether a container without an output delegates to another
// pending container whose output is not known yet
func (r *resolver) waitsOn(draft *containerDraft, outputs map[string]types.Type, pending map[string]*containerDraft) bool {
	if _, known := outputs[draft.meta.Name]; known {
		return false
	}
	for _, member := range draft.meta.Members {
		if member.Binding.Strategy != models.DelegateStrategy || len(member.Fields) == 0 {
			continue
		}
		base, qualified := baseTypeName(member.Fields[0].Type)
		if qualified || base == draft.meta.Name {
			continue
		}
		if _, known := outputs[base]; !known && pending[base] != nil {
			return true
		}
	}
	return false
}

func (r *resolver) checkContainer(draft *containerDraft, outputs map[string]types.Type) {
	meta := draft.meta
	output, declared := outputs[meta.Name]

	var results []types.Type
	complete := true
	for i := range meta.Members {
		member := &meta.Members[i]
		if member.Binding.Strategy != models.DelegateStrategy && member.Binding.Func == "" {
			// binding failed earlier
			complete = false
			continue
		}
		result, ok := r.memberResult(draft, i, outputs)
		if !ok || result == nil {
			complete = false
			continue
		}
		if declared && !types.AssignableTo(result, output) {
			r.diags.Add(errors.NewTypeMismatch(meta.Name, member.Name, r.typeInfo.typeString(result), meta.Output.Expr, member.Binding.Location))
			continue
		}
		results = append(results, result)
	}

	if declared {
		return
	}
	if complete && len(results) > 0 {
		inferred := results[0]
		for _, t := range results[1:] {
			if !types.Identical(t, inferred) {
				r.diags.Add(errors.NewMissingOutput(meta.Name, meta.Location).
					WithSuggestion(fmt.Sprintf("members return different types (%s, %s)", r.typeInfo.typeString(inferred), r.typeInfo.typeString(t))))
				return
			}
		}
		meta.Output = r.typeInfo.typeRef(inferred)
		outputs[meta.Name] = inferred
		return
	}
	r.diags.Add(errors.NewMissingOutput(meta.Name, meta.Location))
}

// memberResult returns the type one member produces, reporting arity and
// argument problems along the way. A nil type with ok set means the result
// cannot be known statically (builtins, generic functions).
func (r *resolver) memberResult(draft *containerDraft, index int, outputs map[string]types.Type) (types.Type, bool) {
	meta := draft.meta
	member := &meta.Members[index]
	td := draft.members[index]
	binding := member.Binding
	ti := r.typeInfo

	if binding.Strategy == models.DelegateStrategy {
		inner := member.Fields[0]
		base, qualified := baseTypeName(inner.Type)
		if !qualified {
			if _, local := r.containers[base]; local {
				t, known := outputs[base]
				return t, known
			}
		}
		fieldType := ti.fieldType(member.Name, inner.Name)
		if fieldType == nil {
			return nil, false
		}
		method := meta.Flavor.MethodName()
		obj, _, _ := types.LookupFieldOrMethod(fieldType, true, ti.pkg, method)
		fn, ok := obj.(*types.Func)
		if !ok {
			r.diags.Add(errors.NewDelegationError(meta.Name, member.Name, inner.Type,
				fmt.Sprintf("it has no %s() method", method), member.Location))
			return nil, false
		}
		sig := fn.Type().(*types.Signature)
		if sig.Params().Len() != 0 || sig.Results().Len() != 1 {
			r.diags.Add(errors.NewDelegationError(meta.Name, member.Name, inner.Type,
				fmt.Sprintf("%s() must take no arguments and return one value", method), member.Location))
			return nil, false
		}
		return sig.Results().At(0).Type(), true
	}

	obj, err := ti.lookupFunc(binding.Func, td.pos)
	if err != nil {
		r.diags.Add(errors.NewUnresolvedFunction(meta.Name, member.Name, binding.Func, err.Error(), binding.Location))
		return nil, false
	}
	if _, builtin := obj.(*types.Builtin); builtin {
		return nil, true
	}
	if tn, ok := obj.(*types.TypeName); ok {
		return r.conversionResult(draft, index, tn)
	}
	sig, ok := obj.Type().Underlying().(*types.Signature)
	if !ok {
		r.diags.Add(errors.NewUnresolvedFunction(meta.Name, member.Name, binding.Func, "not a function", binding.Location))
		return nil, false
	}
	if sig.TypeParams().Len() > 0 {
		return nil, true
	}

	params := sig.Params()
	got := len(binding.Args)
	if (sig.Variadic() && got < params.Len()-1) || (!sig.Variadic() && got != params.Len()) {
		r.diags.Add(errors.NewArityMismatch(meta.Name, member.Name, binding.Func, params.Len(), got, binding.Location))
		return nil, false
	}

	for i, arg := range binding.Args {
		fieldType := ti.fieldType(member.Name, arg)
		if fieldType == nil {
			continue
		}
		if meta.Flavor.PointerReceiver() {
			fieldType = types.NewPointer(fieldType)
		}
		var paramType types.Type
		if sig.Variadic() && i >= params.Len()-1 {
			paramType = params.At(params.Len() - 1).Type().(*types.Slice).Elem()
		} else {
			paramType = params.At(i).Type()
		}
		if !types.AssignableTo(fieldType, paramType) {
			r.diags.Add(errors.NewArgumentMismatch(meta.Name, member.Name, arg,
				ti.typeString(fieldType), ti.typeString(paramType), binding.Location))
			return nil, false
		}
	}

	if sig.Results().Len() != 1 {
		r.diags.Add(errors.NewTypeMismatch(meta.Name, member.Name, ti.typeString(sig.Results()), meta.Output.String(), binding.Location).
			WithSuggestion(fmt.Sprintf("%s must return exactly one value", binding.Func)))
		return nil, false
	}
	return sig.Results().At(0).Type(), true
}

// evalType evaluates a type expression in the file scope enclosing pos
func (ti *typeInfo) evalType(expr string, pos token.Pos) (types.Type, error) {
	tv, err := types.Eval(ti.fset, ti.pkg, pos, expr)
	if err != nil {
		return nil, err
	}
	if !tv.IsType() {
		return nil, fmt.Errorf("%s is not a type", expr)
	}
	return tv.Type, nil
}

// lookupFunc finds a function by name, or by pkg.Name through the imports of
// the file enclosing pos
func (ti *typeInfo) lookupFunc(name string, pos token.Pos) (types.Object, error) {
	scope := ti.pkg.Scope().Innermost(pos)
	if scope == nil {
		scope = ti.pkg.Scope()
	}

	qualifier, fn, qualified := strings.Cut(name, ".")
	if !qualified {
		_, obj := scope.LookupParent(name, token.NoPos)
		if obj == nil {
			return nil, fmt.Errorf("undefined: %s", name)
		}
		return obj, nil
	}

	_, obj := scope.LookupParent(qualifier, token.NoPos)
	pkgName, ok := obj.(*types.PkgName)
	if !ok {
		return nil, fmt.Errorf("%s is not an imported package", qualifier)
	}
	member := pkgName.Imported().Scope().Lookup(fn)
	if member == nil || !member.Exported() {
		return nil, fmt.Errorf("undefined: %s", name)
	}
	return member, nil
}

// fieldType returns the type of a field of a named struct in the package
func (ti *typeInfo) fieldType(typeName, field string) types.Type {
	obj, ok := ti.pkg.Scope().Lookup(typeName).(*types.TypeName)
	if !ok {
		return nil
	}
	st, ok := obj.Type().Underlying().(*types.Struct)
	if !ok {
		return nil
	}
	for i := 0; i < st.NumFields(); i++ {
		if st.Field(i).Name() == field {
			return st.Field(i).Type()
		}
	}
	return nil
}

func (ti *typeInfo) typeString(t types.Type) string {
	return types.TypeString(t, types.RelativeTo(ti.pkg))
}

// typeRef renders an inferred type the way it is written inside the package
func (ti *typeInfo) typeRef(t types.Type) *models.TypeRef {
	ref := &models.TypeRef{Imports: make(map[string]string)}
	ref.Expr = types.TypeString(t, func(p *types.Package) string {
		if p == ti.pkg {
			return ""
		}
		ref.Imports[p.Name()] = p.Path()
		return p.Name()
	})
	return ref
}

// conversionResult checks a binding that names a type: a conversion of a
// single field to that type
func (r *resolver) conversionResult(draft *containerDraft, index int, tn *types.TypeName) (types.Type, bool) {
	meta := draft.meta
	member := &meta.Members[index]
	binding := member.Binding
	ti := r.typeInfo

	if len(binding.Args) != 1 {
		r.diags.Add(errors.NewArityMismatch(meta.Name, member.Name, binding.Func, 1, len(binding.Args), binding.Location).
			WithSuggestion(fmt.Sprintf("%s is a type; a conversion takes exactly one field", binding.Func)))
		return nil, false
	}

	target := tn.Type()
	fieldType := ti.fieldType(member.Name, binding.Args[0])
	if fieldType == nil {
		return target, true
	}
	if meta.Flavor.PointerReceiver() {
		fieldType = types.NewPointer(fieldType)
	}
	if !types.ConvertibleTo(fieldType, target) {
		r.diags.Add(errors.NewArgumentMismatch(meta.Name, member.Name, binding.Args[0],
			ti.typeString(fieldType), ti.typeString(target), binding.Location))
		return nil, false
	}
	return target, true
}
