// Package model defines the data structures shared by the velc
// analysis stages.
package model

import "fmt"

// Code identifies a diagnostic family.
type Code string

// Diagnostic codes emitted by the semantic checkers.
const (
	// CodeUninitialized flags a read of a variable or struct field
	// before any write is guaranteed to have happened.
	CodeUninitialized Code = "E0381"

	// CodeUncheckedCall flags a nullable-producing call whose result is
	// never compared against NULL.
	CodeUncheckedCall Code = "E0901"
	// CodeForbiddenFunc flags a call to a denylisted function.
	CodeForbiddenFunc Code = "E0902"
	// CodeNullOutsideComparison flags a NULL literal anywhere but an
	// equality comparison.
	CodeNullOutsideComparison Code = "E0903"
	// CodeNullableStored flags storing a nullable result into a name
	// without the c_ prefix.
	CodeNullableStored Code = "E0904"
	// CodeMissingPrefix flags a declaration taking a nullable result
	// under a name without the c_ prefix.
	CodeMissingPrefix Code = "E0905"
	// CodeInvalidPrefix flags a c_ name whose type cannot actually be
	// null.
	CodeInvalidPrefix Code = "E0906"
	// CodeNeverNullComparison flags comparing a value against NULL that
	// can never be null.
	CodeNeverNullComparison Code = "E0907"
	// CodeUncheckedUse flags passing an unverified c_ variable to a
	// function.
	CodeUncheckedUse Code = "E0908"
)

// DeclSite records where a variable was declared, for use in
// initialization diagnostics.
type DeclSite struct {
	Name   string
	Line   int
	Column int
}

// Diagnostic is one finding produced by a checker. Diagnostics are
// immutable once created and are collected in source-encounter order.
type Diagnostic struct {
	Code    Code
	Message string
	Line    int
	Column  int

	// Decl and MayBeUninitialized are set by the initialization
	// checker. MayBeUninitialized is carried for report compatibility
	// and is always false today: every emission is a definite read
	// before write on the modeled paths.
	Decl               *DeclSite
	MayBeUninitialized bool

	// Subject and Help are set by the null-safety checker: the function
	// or variable the finding is about, and a suggested fix.
	Subject string
	Help    string
}

// String renders the diagnostic the way the CLI prints it, without the
// file path prefix.
func (d Diagnostic) String() string {
	return fmt.Sprintf("%d:%d: error[%s]: %s", d.Line, d.Column, d.Code, d.Message)
}
