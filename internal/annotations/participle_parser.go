package annotations

import (
	stderrors "errors"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/toyz/argcall/internal/errors"
)

// annotationNode is the root of the annotation grammar:
//
//	//argcall::callable -Output=int -Dispatch=Eval
//	//argcall::fn add(X, Y)
//	//argcall::fn_path "mathx.Add"
type annotationNode struct {
	Kind   string       `parser:"Marker @Ident"`
	Call   *callNode    `parser:"( @@"`
	Path   *string      `parser:"  | @String"`
	Params []*paramNode `parser:"  | @@+ )?"`
}

type callNode struct {
	Func []string `parser:"@Ident ( '.' @Ident )?"`
	Args []string `parser:"'(' ( @Ident ( ',' @Ident )* )? ')'"`
}

type paramNode struct {
	Key   string  `parser:"'-' @Ident"`
	Value *string `parser:"( Assign @( String | Bare ) )?"`
}

// annotationLexer switches to the Value state after '=' so that type
// expressions such as map[string]int or *pkg.T lex as a single token.
var annotationLexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		{Name: "Marker", Pattern: `//\s*argcall::`},
		{Name: "String", Pattern: `"(\\"|[^"])*"`},
		{Name: "Assign", Pattern: `=`, Action: lexer.Push("Value")},
		{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},
		{Name: "Punct", Pattern: `[-(),.]`},
		{Name: "Whitespace", Pattern: `\s+`},
	},
	"Value": {
		{Name: "String", Pattern: `"(\\"|[^"])*"`, Action: lexer.Pop()},
		{Name: "Bare", Pattern: `[^\s"]+`, Action: lexer.Pop()},
	},
})

// ParticipleParser parses argcall annotations using alecthomas/participle
type ParticipleParser struct {
	parser *participle.Parser[annotationNode]
}

// NewParticipleParser creates a new annotation parser
func NewParticipleParser() *ParticipleParser {
	parser := participle.MustBuild[annotationNode](
		participle.Lexer(annotationLexer),
		participle.Elide("Whitespace"),
		participle.Unquote("String"),
		participle.UseLookahead(2),
	)

	return &ParticipleParser{parser: parser}
}

// ParseAnnotation parses a single comment line. The location should point at
// the start of the comment; syntax errors are reported relative to it.
func (p *ParticipleParser) ParseAnnotation(comment string, location errors.SourceLocation) (*ParsedAnnotation, error) {
	comment = strings.TrimSpace(comment)
	if !IsAnnotation(comment) {
		return nil, NewSyntaxError("annotation must start with '//argcall::'", location, "")
	}

	node, err := p.parser.ParseString(location.File, comment)
	if err != nil {
		return nil, p.syntaxError(err, location)
	}

	annotationType, err := ParseAnnotationType(node.Kind)
	if err != nil {
		return nil, NewSyntaxError(err.Error(), location, "valid types: callable, callable_mut, callable_once, fn, fn_path")
	}

	parsed := &ParsedAnnotation{
		Type:       annotationType,
		Parameters: make(map[string]string),
		Location:   location,
		Raw:        comment,
	}

	if node.Call != nil {
		parsed.Call = &CallExpr{
			Func: strings.Join(node.Call.Func, "."),
			Args: node.Call.Args,
		}
		if parsed.Call.Args == nil {
			parsed.Call.Args = []string{}
		}
	}
	if node.Path != nil {
		parsed.Path = strings.TrimSpace(*node.Path)
		if parsed.Path == "" {
			return nil, NewSchemaError(annotationType, "function path must not be empty", location)
		}
	}
	for _, param := range node.Params {
		if _, dup := parsed.Parameters[param.Key]; dup {
			return nil, NewSchemaError(annotationType, "duplicate parameter '"+param.Key+"'", location)
		}
		value := ""
		if param.Value != nil {
			value = *param.Value
		}
		parsed.Parameters[param.Key] = value
	}

	if err := ValidateAgainstSchema(parsed); err != nil {
		return nil, err
	}

	return parsed, nil
}

// syntaxError converts a participle error into a located syntax error
func (p *ParticipleParser) syntaxError(err error, location errors.SourceLocation) error {
	var perr participle.Error
	if !stderrors.As(err, &perr) {
		return NewSyntaxError(err.Error(), location, "")
	}

	loc := location
	pos := perr.Position()
	if pos.Column > 0 && loc.Column > 0 {
		loc.Column += pos.Column - 1
	}
	return NewSyntaxError(perr.Message(), loc, "see //argcall:: annotation examples in the argcall package docs")
}
