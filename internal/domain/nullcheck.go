package domain

import (
	"fmt"

	"vel.dev/pkg/velc/internal/ast"
	"vel.dev/pkg/velc/internal/model"
	velcpkg "vel.dev/pkg/velc/pkg"
)

// nullState is the verification state of a tracked c_ variable.
type nullState int

const (
	nullUnchecked nullState = iota
	nullCheckedNotNull
)

// nullVarState tracks one c_-prefixed variable for the null-safety
// checker.
type nullVarState struct {
	name     string
	declLine int
	typeName string
	state    nullState
}

func (s *nullVarState) clone() *nullVarState {
	dup := *s
	return &dup
}

func (s *nullVarState) restoreFrom(saved *nullVarState) {
	s.state = saved.state
}

// NullChecker rejects use of interop pointer values before they have
// been verified non-null, plus every misuse of the NULL literal and
// of the external function tables.
type NullChecker struct {
	scopes *velcpkg.ScopeStack[*nullVarState]
	diags  []model.Diagnostic
}

// NewNullChecker creates a checker. It needs no registry: the
// function tables are static.
func NewNullChecker() *NullChecker {
	return &NullChecker{
		scopes: velcpkg.NewScopeStack[*nullVarState](),
	}
}

// Check walks one compilation unit and returns its diagnostics in
// source order.
func (c *NullChecker) Check(prog *ast.Program) []model.Diagnostic {
	c.scopes.Enter() // global scope

	for _, decl := range prog.Decls {
		if vd, ok := decl.(*ast.VarDecl); ok {
			c.EnterVariableDeclaration(vd)
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

func (c *NullChecker) checkFunc(fn *ast.FuncDecl) {
	c.scopes.Enter()

	for i := range fn.Params {
		c.declareParam(&fn.Params[i])
	}

	c.checkBlockStmts(fn.Body)
	c.scopes.Exit()
}

// declareParam registers c_-prefixed parameters as unverified: the
// caller may well have passed a NULL it never checked.
func (c *NullChecker) declareParam(param *ast.Param) {
	if !HasNullablePrefix(param.Name) {
		return
	}

	if !IsNullableCType(param.Type.Name) {
		c.reportInvalidPrefix(param.Name, param.Type.Name, param.Pos())
		return
	}

	c.track(param.Name, param.Type.Name, param.Pos())
}

// EnterVariableDeclaration applies the declaration rules: nullable
// results demand the c_ prefix, the prefix demands a nullable type,
// and forbidden functions are an error no matter what the name is.
func (c *NullChecker) EnterVariableDeclaration(decl *ast.VarDecl) {
	hasPrefix := HasNullablePrefix(decl.Name)
	nullableInit := false

	if call, ok := decl.Init.(*ast.CallExpr); ok {
		switch {
		case c.checkForbidden(call):
			// Reported; still inspect the arguments.
			c.checkArgs(call, false)

		case isNullableCall(call):
			nullableInit = true

			c.checkArgs(call, false)

			if !hasPrefix {
				fn, _ := LookupNullableFunc(call.Func)
				c.diags = append(c.diags, model.Diagnostic{
					Code: model.CodeMissingPrefix,
					Message: fmt.Sprintf(
						"'%s' %s; its result must be stored under the %s prefix",
						call.Func, fn.Meaning, NullablePrefix,
					),
					Line:    decl.Pos().Line,
					Column:  decl.Pos().Column,
					Subject: decl.Name,
					Help:    fmt.Sprintf("rename the variable to '%s%s'", NullablePrefix, decl.Name),
				})
			}

		default:
			c.checkExpr(decl.Init, false)
		}
	} else if decl.Init != nil {
		c.checkExpr(decl.Init, false)
	}

	if !hasPrefix {
		return
	}

	if !nullableInit && !IsNullableCType(decl.Type.Name) {
		c.reportInvalidPrefix(decl.Name, decl.Type.Name, decl.Pos())
		return
	}

	c.track(decl.Name, decl.Type.Name, decl.Pos())
}

func (c *NullChecker) track(name, typeName string, pos ast.Position) {
	c.scopes.Declare(name, &nullVarState{
		name:     name,
		declLine: pos.Line,
		typeName: typeName,
		state:    nullUnchecked,
	})
}

func (c *NullChecker) reportInvalidPrefix(name, typeName string, pos ast.Position) {
	c.diags = append(c.diags, model.Diagnostic{
		Code: model.CodeInvalidPrefix,
		Message: fmt.Sprintf(
			"'%s' uses the %s prefix but its type '%s' can never be NULL",
			name, NullablePrefix, typeName,
		),
		Line:    pos.Line,
		Column:  pos.Column,
		Subject: name,
		Help:    fmt.Sprintf("drop the %s prefix, or use an interop type such as 'cstring'", NullablePrefix),
	})
}

func (c *NullChecker) checkBlock(block *ast.Block) {
	c.scopes.Enter()
	c.checkBlockStmts(block)
	c.scopes.Exit()
}

func (c *NullChecker) checkBlockStmts(block *ast.Block) {
	for _, stmt := range block.Stmts {
		c.checkStmt(stmt)
	}
}

func (c *NullChecker) checkStmt(stmt ast.Stmt) {
	switch s := stmt.(type) {
	case *ast.VarDecl:
		c.EnterVariableDeclaration(s)

	case *ast.AssignStmt:
		c.checkAssign(s)

	case *ast.ExprStmt:
		c.checkExpr(s.X, false)

	case *ast.ReturnStmt:
		if s.Value != nil {
			c.checkExpr(s.Value, false)
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

// checkAssign handles storage of nullable results and the
// reassignment reset: a fresh value from a nullable-producing call is
// unverified again.
func (c *NullChecker) checkAssign(s *ast.AssignStmt) {
	call, isCall := s.Value.(*ast.CallExpr)

	if isCall && c.checkForbidden(call) {
		c.checkArgs(call, false)
		return
	}

	if isCall && isNullableCall(call) {
		c.checkArgs(call, false)

		target, isIdent := s.Target.(*ast.Ident)
		if !isIdent || !HasNullablePrefix(target.Name) {
			fn, _ := LookupNullableFunc(call.Func)
			c.diags = append(c.diags, model.Diagnostic{
				Code: model.CodeNullableStored,
				Message: fmt.Sprintf(
					"result of '%s' (%s) stored without the %s prefix",
					call.Func, fn.Meaning, NullablePrefix,
				),
				Line:    s.Pos().Line,
				Column:  s.Pos().Column,
				Subject: call.Func,
				Help:    fmt.Sprintf("store it in a %s-prefixed 'cstring' or 'file' variable", NullablePrefix),
			})

			return
		}

		c.scopes.Update(target.Name, func(state *nullVarState) {
			state.state = nullUnchecked
		})

		return
	}

	c.checkExpr(s.Value, false)
}

// checkIf recognizes the two if-based verification patterns before
// falling back to the generic branch policy.
func (c *NullChecker) checkIf(s *ast.IfStmt) {
	cmp, isNullCmp := MatchNullComparison(s.Cond)

	if isNullCmp {
		c.checkComparisonOperand(cmp, s.Cond.Pos())
	} else {
		c.checkExpr(s.Cond, false)
	}

	// Guard clause: `if (c_x == NULL) { return; }` proves the variable
	// non-null for the rest of the enclosing scope.
	if guardVar, ok := IsGuardClause(s); ok && c.tracked(guardVar.Name) {
		saved := c.snapshot()
		c.checkBlock(s.Then)
		c.restore(saved)

		c.scopes.Update(guardVar.Name, func(state *nullVarState) {
			state.state = nullCheckedNotNull
		})

		return
	}

	// Inline check: `if (c_x != NULL) { ... }` verifies the variable
	// for the duration of the then branch only.
	if isNullCmp && cmp.Op == ast.OpNeq {
		if ident, ok := cmp.Operand.(*ast.Ident); ok && c.tracked(ident.Name) {
			saved := c.snapshot()

			c.scopes.Update(ident.Name, func(state *nullVarState) {
				state.state = nullCheckedNotNull
			})

			c.checkBlock(s.Then)
			c.restore(saved)

			if s.Else != nil {
				c.checkBlock(s.Else)
			}

			return
		}
	}

	if s.Else == nil {
		saved := c.snapshot()
		c.checkBlock(s.Then)
		c.restore(saved)

		return
	}

	c.checkBlock(s.Then)
	c.checkBlock(s.Else)
}

// checkWhile treats `while (c_x != NULL)` like the inline if check,
// scoped to the loop body.
func (c *NullChecker) checkWhile(s *ast.WhileStmt) {
	cmp, isNullCmp := MatchNullComparison(s.Cond)

	if isNullCmp {
		c.checkComparisonOperand(cmp, s.Cond.Pos())
	} else {
		c.checkExpr(s.Cond, false)
	}

	saved := c.snapshot()

	if isNullCmp && cmp.Op == ast.OpNeq {
		if ident, ok := cmp.Operand.(*ast.Ident); ok && c.tracked(ident.Name) {
			c.scopes.Update(ident.Name, func(state *nullVarState) {
				state.state = nullCheckedNotNull
			})
		}
	}

	c.checkBody(s.Body)
	c.restore(saved)
}

func (c *NullChecker) checkFor(s *ast.ForStmt) {
	c.checkAssign(s.Init)
	c.checkExpr(s.Cond, false)

	saved := c.snapshot()

	c.checkBody(s.Body)
	c.checkAssign(s.Post)
	c.restore(saved)
}

// checkBody is checkBlock without special casing, named for loop call
// sites.
func (c *NullChecker) checkBody(block *ast.Block) {
	c.checkBlock(block)
}

func (c *NullChecker) checkExpr(expr ast.Expr, inNullComparison bool) {
	switch e := expr.(type) {
	case *ast.NullLit:
		// A NULL literal is legal only as a comparison operand, and
		// comparisons never route their NULL side through here.
		c.diags = append(c.diags, model.Diagnostic{
			Code:    model.CodeNullOutsideComparison,
			Message: "NULL may only be used in an equality comparison",
			Line:    e.Pos().Line,
			Column:  e.Pos().Column,
			Subject: "NULL",
			Help:    "compare a c_ variable against NULL with '==' or '!=' instead",
		})

	case *ast.BinaryExpr:
		if cmp, ok := MatchNullComparison(e); ok {
			c.checkComparisonOperand(cmp, e.Pos())
			return
		}

		c.checkExpr(e.Left, false)
		c.checkExpr(e.Right, false)

	case *ast.UnaryExpr:
		c.checkExpr(e.X, false)

	case *ast.FieldExpr:
		c.checkExpr(e.X, false)

	case *ast.CallExpr:
		c.checkCall(e, inNullComparison)
	}
}

// checkComparisonOperand validates the non-NULL side of a NULL
// comparison: a plain identifier must carry the prefix, and a call
// operand is itself the sanctioned checking context.
func (c *NullChecker) checkComparisonOperand(cmp NullComparison, pos ast.Position) {
	switch operand := cmp.Operand.(type) {
	case *ast.Ident:
		if !HasNullablePrefix(operand.Name) {
			c.diags = append(c.diags, model.Diagnostic{
				Code: model.CodeNeverNullComparison,
				Message: fmt.Sprintf(
					"'%s' can never be NULL; only %s-prefixed interop values can",
					operand.Name, NullablePrefix,
				),
				Line:    pos.Line,
				Column:  pos.Column,
				Subject: operand.Name,
				Help:    "remove the comparison, or store a nullable result in the variable",
			})
		}

	case *ast.CallExpr:
		c.checkCall(operand, true)

	default:
		c.checkExpr(cmp.Operand, true)
	}
}

// checkCall enforces the function tables and the unchecked-argument
// rule.
func (c *NullChecker) checkCall(call *ast.CallExpr, inNullComparison bool) {
	if c.checkForbidden(call) {
		c.checkArgs(call, inNullComparison)
		return
	}

	if fn, ok := LookupNullableFunc(call.Func); ok && !inNullComparison {
		c.diags = append(c.diags, model.Diagnostic{
			Code: model.CodeUncheckedCall,
			Message: fmt.Sprintf(
				"result of '%s' must be checked: it %s", call.Func, fn.Meaning,
			),
			Line:    call.Pos().Line,
			Column:  call.Pos().Column,
			Subject: call.Func,
			Help: fmt.Sprintf(
				"store the result in a %s variable and compare it against NULL, e.g. 'if (%sres == NULL) { return; }'",
				NullablePrefix, NullablePrefix,
			),
		})
	}

	c.checkArgs(call, inNullComparison)
}

// checkForbidden reports a denylisted call. It returns true when the
// call was forbidden so callers skip the nullable handling.
func (c *NullChecker) checkForbidden(call *ast.CallExpr) bool {
	reason, ok := LookupForbiddenFunc(call.Func)
	if !ok {
		return false
	}

	c.diags = append(c.diags, model.Diagnostic{
		Code:    model.CodeForbiddenFunc,
		Message: fmt.Sprintf("call to forbidden function '%s'", call.Func),
		Line:    call.Pos().Line,
		Column:  call.Pos().Column,
		Subject: call.Func,
		Help:    reason,
	})

	return true
}

// checkArgs flags unverified c_ variables passed as arguments, unless
// the call itself sits inside the NULL-comparison context.
func (c *NullChecker) checkArgs(call *ast.CallExpr, inNullComparison bool) {
	for _, arg := range call.Args {
		ident, isIdent := arg.(*ast.Ident)
		if !isIdent {
			c.checkExpr(arg, false)
			continue
		}

		if !HasNullablePrefix(ident.Name) || inNullComparison {
			continue
		}

		if state, ok := c.scopes.Lookup(ident.Name); ok && state.state == nullUnchecked {
			c.diags = append(c.diags, model.Diagnostic{
				Code: model.CodeUncheckedUse,
				Message: fmt.Sprintf(
					"'%s' may be NULL here; it has not been checked since it was assigned",
					ident.Name,
				),
				Line:    ident.Pos().Line,
				Column:  ident.Pos().Column,
				Subject: ident.Name,
				Help: fmt.Sprintf(
					"add a guard before this call: 'if (%s == NULL) { return; }'", ident.Name,
				),
			})
		}
	}
}

func (c *NullChecker) tracked(name string) bool {
	_, ok := c.scopes.Lookup(name)
	return ok
}

func (c *NullChecker) snapshot() map[string]*nullVarState {
	return c.scopes.Snapshot((*nullVarState).clone)
}

func (c *NullChecker) restore(saved map[string]*nullVarState) {
	c.scopes.Apply(saved, func(current, snap *nullVarState) {
		current.restoreFrom(snap)
	})
}

func isNullableCall(call *ast.CallExpr) bool {
	_, ok := LookupNullableFunc(call.Func)
	return ok
}
