package generator

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/types"

	"github.com/dave/jennifer/jen"
)

// typeCode converts a Go type expression into jennifer code. Package
// qualifiers are resolved through imports (local name -> path).
func typeCode(expr string, imports map[string]string) (jen.Code, error) {
	parsed, err := parser.ParseExpr(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid type %q: %w", expr, err)
	}
	return convertType(parsed, imports)
}

func convertType(expr ast.Expr, imports map[string]string) (jen.Code, error) {
	switch t := expr.(type) {
	case *ast.Ident:
		return jen.Id(t.Name), nil

	case *ast.SelectorExpr:
		pkg, ok := t.X.(*ast.Ident)
		if !ok {
			return nil, fmt.Errorf("unsupported type %s", types.ExprString(t))
		}
		path, ok := imports[pkg.Name]
		if !ok {
			return nil, fmt.Errorf("package %s is not imported", pkg.Name)
		}
		return jen.Qual(path, t.Sel.Name), nil

	case *ast.StarExpr:
		elem, err := convertType(t.X, imports)
		if err != nil {
			return nil, err
		}
		return jen.Op("*").Add(elem), nil

	case *ast.ParenExpr:
		return convertType(t.X, imports)

	case *ast.ArrayType:
		elem, err := convertType(t.Elt, imports)
		if err != nil {
			return nil, err
		}
		if t.Len == nil {
			return jen.Index().Add(elem), nil
		}
		return jen.Index(jen.Id(types.ExprString(t.Len))).Add(elem), nil

	case *ast.MapType:
		key, err := convertType(t.Key, imports)
		if err != nil {
			return nil, err
		}
		value, err := convertType(t.Value, imports)
		if err != nil {
			return nil, err
		}
		return jen.Map(key).Add(value), nil

	case *ast.ChanType:
		elem, err := convertType(t.Value, imports)
		if err != nil {
			return nil, err
		}
		switch t.Dir {
		case ast.RECV:
			return jen.Op("<-").Chan().Add(elem), nil
		case ast.SEND:
			return jen.Chan().Op("<-").Add(elem), nil
		default:
			return jen.Chan().Add(elem), nil
		}

	case *ast.FuncType:
		params, err := convertFields(t.Params, imports)
		if err != nil {
			return nil, err
		}
		results, err := convertFields(t.Results, imports)
		if err != nil {
			return nil, err
		}
		fn := jen.Func().Params(params...)
		switch len(results) {
		case 0:
			return fn, nil
		case 1:
			return fn.Add(results[0]), nil
		default:
			return fn.Params(results...), nil
		}

	case *ast.InterfaceType:
		if t.Methods != nil && len(t.Methods.List) > 0 {
			return nil, fmt.Errorf("interface literals with methods are not supported; declare a named interface")
		}
		return jen.Interface(), nil

	case *ast.StructType:
		if t.Fields != nil && len(t.Fields.List) > 0 {
			return nil, fmt.Errorf("struct literals with fields are not supported; declare a named struct")
		}
		return jen.Struct(), nil

	case *ast.IndexExpr:
		base, err := convertType(t.X, imports)
		if err != nil {
			return nil, err
		}
		arg, err := convertType(t.Index, imports)
		if err != nil {
			return nil, err
		}
		return jen.Add(base).Types(arg), nil

	case *ast.IndexListExpr:
		base, err := convertType(t.X, imports)
		if err != nil {
			return nil, err
		}
		args := make([]jen.Code, 0, len(t.Indices))
		for _, index := range t.Indices {
			arg, err := convertType(index, imports)
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
		}
		return jen.Add(base).Types(args...), nil
	}

	return nil, fmt.Errorf("unsupported type %s", types.ExprString(expr))
}

// convertFields converts a parameter or result list, one entry per name
func convertFields(list *ast.FieldList, imports map[string]string) ([]jen.Code, error) {
	if list == nil {
		return nil, nil
	}
	var out []jen.Code
	for _, field := range list.List {
		typ := field.Type
		variadic := false
		if ellipsis, ok := typ.(*ast.Ellipsis); ok {
			typ = ellipsis.Elt
			variadic = true
		}
		code, err := convertType(typ, imports)
		if err != nil {
			return nil, err
		}
		if variadic {
			code = jen.Op("...").Add(code)
		}
		count := len(field.Names)
		if count == 0 {
			count = 1
		}
		for i := 0; i < count; i++ {
			out = append(out, code)
		}
	}
	return out, nil
}
