package domain

import "strings"

// NullablePrefix is the reserved naming prefix for variables holding a
// possibly-NULL interop value. Only values under this prefix may be
// compared against the NULL literal.
const NullablePrefix = "c_"

// HasNullablePrefix reports whether name carries the reserved prefix.
func HasNullablePrefix(name string) bool {
	return strings.HasPrefix(name, NullablePrefix)
}

// NullableFunc describes an external C function known to return a
// value that may be the NULL sentinel.
type NullableFunc struct {
	Name    string
	Meaning string // what NULL means for this function
}

// nullableFuncs is the fixed allowlist of nullable-producing external
// functions. It is a static table, not derived from analysis.
var nullableFuncs = map[string]NullableFunc{
	"fopen":  {Name: "fopen", Meaning: "returns NULL when the file cannot be opened"},
	"fgets":  {Name: "fgets", Meaning: "returns NULL at end of stream or on a read error"},
	"getenv": {Name: "getenv", Meaning: "returns NULL when the environment variable is not set"},
	"strstr": {Name: "strstr", Meaning: "returns NULL when the substring does not occur"},
	"strchr": {Name: "strchr", Meaning: "returns NULL when the character does not occur"},
	"strrchr": {
		Name:    "strrchr",
		Meaning: "returns NULL when the character does not occur",
	},
}

// forbiddenFuncs is the fixed denylist. Calling any of these is an
// error in every context.
var forbiddenFuncs = map[string]string{
	"malloc":  "dynamic memory allocation is not supported; use fixed-capacity types instead",
	"calloc":  "dynamic memory allocation is not supported; use fixed-capacity types instead",
	"realloc": "dynamic memory allocation is not supported; use fixed-capacity types instead",
	"free":    "manual memory management is not supported; there is nothing to free",
}

// nullableCTypes are the interop types a c_-prefixed variable may
// legally carry.
var nullableCTypes = map[string]struct{}{
	"cstring": {},
	"file":    {},
}

// LookupNullableFunc returns the allowlist entry for name.
func LookupNullableFunc(name string) (NullableFunc, bool) {
	fn, ok := nullableFuncs[name]
	return fn, ok
}

// LookupForbiddenFunc returns the denylist reason for name.
func LookupForbiddenFunc(name string) (string, bool) {
	reason, ok := forbiddenFuncs[name]
	return reason, ok
}

// IsNullableCType reports whether typeName may legally hold NULL.
func IsNullableCType(typeName string) bool {
	_, ok := nullableCTypes[typeName]
	return ok
}
