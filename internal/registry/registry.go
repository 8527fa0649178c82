// Package registry maps struct type names to their field sets.
//
// The registry is built once per compilation unit, before either
// checker runs, and is read-only during analysis. Fields can come
// from two places: struct declarations in the unit itself, and an
// external interop source for types defined in C headers.
package registry

import (
	"vel.dev/pkg/velc/internal/ast"
)

// StructRegistry holds the field names of every known struct type.
type StructRegistry struct {
	fields map[string]map[string]struct{}
}

// New creates an empty registry.
func New() *StructRegistry {
	return &StructRegistry{fields: make(map[string]map[string]struct{})}
}

// FromProgram builds a registry from the struct declarations of one
// compilation unit.
func FromProgram(prog *ast.Program) *StructRegistry {
	r := New()

	for _, decl := range prog.Decls {
		if sd, ok := decl.(*ast.StructDecl); ok {
			names := make([]string, 0, len(sd.Fields))
			for _, f := range sd.Fields {
				names = append(names, f.Name)
			}

			r.Add(sd.Name, names)
		}
	}

	return r
}

// Add registers fields for a type, merging with anything already
// present under the same name.
func (r *StructRegistry) Add(typeName string, fieldNames []string) {
	set, ok := r.fields[typeName]
	if !ok {
		set = make(map[string]struct{}, len(fieldNames))
		r.fields[typeName] = set
	}

	for _, name := range fieldNames {
		set[name] = struct{}{}
	}
}

// RegisterExternalFields merges field sets supplied by an external
// collaborator, e.g. types parsed out of C headers. Merging is
// additive: existing entries are extended, never replaced.
func (r *StructRegistry) RegisterExternalFields(mapping map[string][]string) {
	for typeName, fieldNames := range mapping {
		r.Add(typeName, fieldNames)
	}
}

// Has reports whether typeName is a registered struct type.
func (r *StructRegistry) Has(typeName string) bool {
	_, ok := r.fields[typeName]
	return ok
}

// HasField reports whether typeName is registered with the given field.
func (r *StructRegistry) HasField(typeName, field string) bool {
	set, ok := r.fields[typeName]
	if !ok {
		return false
	}

	_, ok = set[field]

	return ok
}

// Fields returns the field set of typeName, or nil when unknown. The
// returned map is the registry's own; callers must not mutate it.
func (r *StructRegistry) Fields(typeName string) map[string]struct{} {
	return r.fields[typeName]
}

// FieldCount returns how many fields typeName has.
func (r *StructRegistry) FieldCount(typeName string) int {
	return len(r.fields[typeName])
}
