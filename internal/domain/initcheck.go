// Package domain implements the flow-sensitive semantic checks that
// gate Vel code generation: definite initialization and null safety.
//
// Each checker performs a single explicit recursive-descent walk over
// one compilation unit, threading its own scope stack and producing an
// ordered diagnostic list. The checkers never share state, so the
// workflow may run them concurrently.
package domain

import (
	"fmt"

	"vel.dev/pkg/velc/internal/ast"
	"vel.dev/pkg/velc/internal/model"
	"vel.dev/pkg/velc/internal/registry"
	velcpkg "vel.dev/pkg/velc/pkg"
)

// stringProps are the capacity-string properties whose reads require
// the string to be initialized first.
var stringProps = map[string]struct{}{
	"length":   {},
	"capacity": {},
	"size":     {},
}

// initState tracks one declared variable for the initialization
// checker.
type initState struct {
	decl        model.DeclSite
	typeName    string
	isStruct    bool
	isString    bool
	initialized bool
	fields      map[string]struct{} // initialized fields, structs only
}

func (s *initState) clone() *initState {
	dup := *s
	dup.fields = make(map[string]struct{}, len(s.fields))

	for f := range s.fields {
		dup.fields[f] = struct{}{}
	}

	return &dup
}

// restoreFrom resets the mutable flags back to a snapshot, undoing
// any initialization progress made inside an unproven construct.
func (s *initState) restoreFrom(saved *initState) {
	s.initialized = saved.initialized
	s.fields = make(map[string]struct{}, len(saved.fields))

	for f := range saved.fields {
		s.fields[f] = struct{}{}
	}
}

// mergeFrom keeps the post-body scalar flags and unions in the field
// set from before the loop: nothing initialized before a proven loop
// is ever un-initialized by the merge.
func (s *initState) mergeFrom(saved *initState) {
	for f := range saved.fields {
		s.fields[f] = struct{}{}
	}
}

// InitChecker rejects reads of variables and struct fields before a
// write is guaranteed on the modeled control-flow paths.
type InitChecker struct {
	reg    *registry.StructRegistry
	scopes *velcpkg.ScopeStack[*initState]
	diags  []model.Diagnostic
}

// NewInitChecker creates a checker against the given struct registry.
func NewInitChecker(reg *registry.StructRegistry) *InitChecker {
	return &InitChecker{
		reg:    reg,
		scopes: velcpkg.NewScopeStack[*initState](),
	}
}

// Check walks one compilation unit and returns its diagnostics in
// source order. The walk never stops early: every reachable violation
// is reported.
func (c *InitChecker) Check(prog *ast.Program) []model.Diagnostic {
	c.scopes.Enter() // global scope

	// Globals are seeded as initialized regardless of their source
	// form: the C target guarantees zero-initialization of statics.
	for _, decl := range prog.Decls {
		if vd, ok := decl.(*ast.VarDecl); ok {
			if vd.Init != nil {
				c.checkExpr(vd.Init)
			}

			c.DeclareVariable(vd.Name, true, vd.Type, vd.Pos())
		}
	}

	for _, decl := range prog.Decls {
		if fn, ok := decl.(*ast.FuncDecl); ok {
			c.checkFunc(fn)
		}
	}

	c.scopes.Exit()

	return c.diags
}

// DeclareVariable registers a local or global declaration. A
// full-struct initializer counts as initializing every field.
func (c *InitChecker) DeclareVariable(name string, hasInitializer bool, typ ast.TypeRef, pos ast.Position) {
	state := &initState{
		decl:        model.DeclSite{Name: name, Line: pos.Line, Column: pos.Column},
		typeName:    typ.Name,
		isStruct:    c.reg.Has(typ.Name),
		isString:    typ.IsString(),
		initialized: hasInitializer,
		fields:      make(map[string]struct{}),
	}

	if hasInitializer && state.isStruct {
		for f := range c.reg.Fields(typ.Name) {
			state.fields[f] = struct{}{}
		}
	}

	c.scopes.Declare(name, state)
}

// DeclareParameter registers a function parameter. Parameters are
// guaranteed initialized by the caller.
func (c *InitChecker) DeclareParameter(name string, typ ast.TypeRef, pos ast.Position) {
	c.DeclareVariable(name, true, typ, pos)
}

// RecordAssignment marks name (or name.field) as written. A
// whole-value assignment supersedes prior partial field state; a
// field assignment that completes the registered field set promotes
// the whole variable to initialized.
func (c *InitChecker) RecordAssignment(name, field string) {
	c.scopes.Update(name, func(state *initState) {
		if field == "" {
			state.initialized = true

			if state.isStruct {
				for f := range c.reg.Fields(state.typeName) {
					state.fields[f] = struct{}{}
				}
			}

			return
		}

		state.fields[field] = struct{}{}
		c.promote(state)
	})
}

// promote flips initialized once initializedFields covers the full
// registered field set.
func (c *InitChecker) promote(state *initState) {
	if !state.isStruct || state.initialized {
		return
	}

	for f := range c.reg.Fields(state.typeName) {
		if _, ok := state.fields[f]; !ok {
			return
		}
	}

	state.initialized = true
}

// CheckRead emits E0381 when name (or name.field) is read before any
// guaranteed write. Untracked names are skipped silently; undeclared
// identifiers belong to name resolution, not this pass.
func (c *InitChecker) CheckRead(name, field string, pos ast.Position) {
	state, ok := c.scopes.Lookup(name)
	if !ok {
		return
	}

	if field == "" {
		if !state.initialized {
			c.report(state, name, pos)
		}

		return
	}

	switch {
	case state.isStruct && c.reg.HasField(state.typeName, field):
		if _, done := state.fields[field]; !done {
			c.report(state, name+"."+field, pos)
		}
	case state.isString:
		if _, gated := stringProps[field]; gated && !state.initialized {
			c.report(state, name+"."+field, pos)
		}
	default:
		// Synthetic properties such as the scalar bit width are
		// compile-time constants and never require initialization.
	}
}

func (c *InitChecker) report(state *initState, subject string, pos ast.Position) {
	decl := state.decl

	c.diags = append(c.diags, model.Diagnostic{
		Code:               model.CodeUninitialized,
		Message:            fmt.Sprintf("'%s' is read here but may not have been initialized", subject),
		Line:               pos.Line,
		Column:             pos.Column,
		Decl:               &decl,
		MayBeUninitialized: false,
		Subject:            subject,
		Help:               fmt.Sprintf("'%s' is declared at line %d; assign it before this read", decl.Name, decl.Line),
	})
}

func (c *InitChecker) checkFunc(fn *ast.FuncDecl) {
	c.scopes.Enter()

	for _, param := range fn.Params {
		c.DeclareParameter(param.Name, param.Type, param.Pos())
	}

	c.checkBlockStmts(fn.Body)
	c.scopes.Exit()
}

func (c *InitChecker) checkBlock(block *ast.Block) {
	c.scopes.Enter()
	c.checkBlockStmts(block)
	c.scopes.Exit()
}

func (c *InitChecker) checkBlockStmts(block *ast.Block) {
	for _, stmt := range block.Stmts {
		c.checkStmt(stmt)
	}
}

func (c *InitChecker) checkStmt(stmt ast.Stmt) {
	switch s := stmt.(type) {
	case *ast.VarDecl:
		if s.Init != nil {
			c.checkExpr(s.Init)
		}

		c.DeclareVariable(s.Name, s.Init != nil, s.Type, s.Pos())

	case *ast.AssignStmt:
		c.checkAssign(s)

	case *ast.ExprStmt:
		c.checkExpr(s.X)

	case *ast.ReturnStmt:
		if s.Value != nil {
			c.checkExpr(s.Value)
		}

	case *ast.Block:
		c.checkBlock(s)

	case *ast.IfStmt:
		c.checkIf(s)

	case *ast.WhileStmt:
		c.checkWhile(s)

	case *ast.ForStmt:
		c.checkFor(s)
	}
}

// checkAssign processes the value first, then records the write. The
// left-hand side is never treated as a read.
func (c *InitChecker) checkAssign(s *ast.AssignStmt) {
	c.checkExpr(s.Value)

	switch target := s.Target.(type) {
	case *ast.Ident:
		c.RecordAssignment(target.Name, "")
	case *ast.FieldExpr:
		if base, field, ok := fieldAccess(target); ok {
			c.RecordAssignment(base.Name, field)
		}
	}
}

// checkIf applies the branch policy: without an else the body may not
// execute, so its effects are rolled back; with an else the state
// after walking both branches is deliberately kept as-is (no true
// branch join).
func (c *InitChecker) checkIf(s *ast.IfStmt) {
	c.checkExpr(s.Cond)

	if s.Else == nil {
		saved := c.snapshot()
		c.checkBlock(s.Then)
		c.restore(saved)

		return
	}

	c.checkBlock(s.Then)
	c.checkBlock(s.Else)
}

// checkWhile always rolls back: the body may execute zero times.
func (c *InitChecker) checkWhile(s *ast.WhileStmt) {
	c.checkExpr(s.Cond)

	saved := c.snapshot()
	c.checkBlock(s.Body)
	c.restore(saved)
}

// checkFor rolls back unless the loop is proven to run at least once,
// in which case the post-body state is kept and pre-loop field sets
// are unioned back in.
func (c *InitChecker) checkFor(s *ast.ForStmt) {
	c.checkAssign(s.Init)
	c.checkExpr(s.Cond)

	saved := c.snapshot()

	c.checkBlock(s.Body)
	c.checkAssign(s.Post)

	if IsDeterministicLoop(s) {
		c.merge(saved)
	} else {
		c.restore(saved)
	}
}

func (c *InitChecker) snapshot() map[string]*initState {
	return c.scopes.Snapshot((*initState).clone)
}

func (c *InitChecker) restore(saved map[string]*initState) {
	c.scopes.Apply(saved, func(current, snap *initState) {
		current.restoreFrom(snap)
	})
}

func (c *InitChecker) merge(saved map[string]*initState) {
	c.scopes.Apply(saved, func(current, snap *initState) {
		current.mergeFrom(snap)
		c.promote(current)
	})
}

func (c *InitChecker) checkExpr(expr ast.Expr) {
	switch e := expr.(type) {
	case *ast.Ident:
		c.CheckRead(e.Name, "", e.Pos())

	case *ast.FieldExpr:
		if base, field, ok := fieldAccess(e); ok {
			c.CheckRead(base.Name, field, e.Pos())
			return
		}

		c.checkExpr(e.X)

	case *ast.CallExpr:
		c.checkCallArgs(e)

	case *ast.BinaryExpr:
		c.checkExpr(e.Left)
		c.checkExpr(e.Right)

	case *ast.UnaryExpr:
		c.checkExpr(e.X)
	}
}

// checkCallArgs applies the call-argument policy: a simple identifier
// passed to a function is not checked as a read and is marked
// initialized afterwards, since it may be an output parameter. This
// trades soundness for silence on output-parameter patterns.
func (c *InitChecker) checkCallArgs(call *ast.CallExpr) {
	for _, arg := range call.Args {
		if ident, ok := arg.(*ast.Ident); ok {
			c.RecordAssignment(ident.Name, "")
			continue
		}

		c.checkExpr(arg)
	}
}

// fieldAccess resolves a selector chain to its base identifier and
// the first field hop. Deeper hops (`p.name.length`) still resolve to
// the struct field, so the field-level check applies to chains that
// pass through a possibly-uninitialized field.
func fieldAccess(e *ast.FieldExpr) (*ast.Ident, string, bool) {
	switch x := e.X.(type) {
	case *ast.Ident:
		return x, e.Field, true
	case *ast.FieldExpr:
		return fieldAccess(x)
	default:
		return nil, "", false
	}
}
