package models

import "github.com/toyz/argcall/internal/errors"

// PackageMetadata represents all callable containers found in a package
type PackageMetadata struct {
	PackageName string              // name of the Go package
	PackagePath string              // file system path to the package
	ImportPath  string              // import path, when known
	Containers  []ContainerMetadata // annotated containers in source order
	Warnings    []string            // non-fatal findings, e.g. unchecked external delegates
}

// ContainerMetadata describes one annotated type
type ContainerMetadata struct {
	Name     string                // type name
	Kind     ContainerKind         // sum type or struct
	Flavor   Flavor                // which capability is generated
	Output   *TypeRef              // declared or inferred output type; nil until resolved
	Dispatch string                // dispatch function name (sum types only)
	Marker   string                // sealing method of a sum type
	Members  []MemberMetadata      // variants, or the struct itself
	FileName string                // file declaring the type
	Location errors.SourceLocation // position of the type declaration
}

// Member returns the member with the given name
func (c *ContainerMetadata) Member(name string) (*MemberMetadata, bool) {
	for i := range c.Members {
		if c.Members[i].Name == name {
			return &c.Members[i], true
		}
	}
	return nil, false
}

// MemberMetadata describes one variant (or the struct itself)
type MemberMetadata struct {
	Name           string                // type name of the member
	Shape          MemberShape           // unit, tuple or named
	Fields         []Field               // fields in declaration order
	PointerVariant bool                  // sum marker is declared on *Member
	Binding        Binding               // resolved dispatch
	Imports        map[string]string     // package name -> import path of the member's file
	FileName       string                // file declaring the member
	Location       errors.SourceLocation // position of the member declaration
}

// FieldNames returns the member's field names in declaration order
func (m *MemberMetadata) FieldNames() []string {
	names := make([]string, 0, len(m.Fields))
	for _, f := range m.Fields {
		names = append(names, f.Name)
	}
	return names
}

// HasField reports whether the member declares a field with the given name
func (m *MemberMetadata) HasField(name string) bool {
	for _, f := range m.Fields {
		if f.Name == name {
			return true
		}
	}
	return false
}

// Field is one field of a member
type Field struct {
	Name     string // field name; type name for embedded fields
	Type     string // source text of the field type
	Embedded bool   // declared without a name
}

// Binding is the resolved dispatch of a member
type Binding struct {
	Strategy Strategy              // call, path or delegate
	Func     string                // function name, possibly pkg.Func
	Args     []string              // field names passed to Func, in order
	Delegate string                // embedded field to delegate to
	Dispatch string                // dispatch function of the delegate when it is a local sum type
	Location errors.SourceLocation // position of the binding annotation
}

// TypeRef is a Go type expression together with the imports it needs
type TypeRef struct {
	Expr    string            // source text, e.g. time.Duration
	Imports map[string]string // package name used in Expr -> import path
}

// String returns the type expression
func (t *TypeRef) String() string {
	if t == nil {
		return ""
	}
	return t.Expr
}
