package domain

import (
	"vel.dev/pkg/velc/internal/ast"
)

// The matchers below work on the parsed condition subtrees directly.
// Matching rendered source text would be fragile against formatting
// and nesting; the structural form is the supported approach.

// IsDeterministicLoop proves, by syntactic pattern, that a for loop
// executes at least one iteration: the initializer must assign the
// literal 0 to the loop variable and the condition must be
// `<that variable> < <positive integer literal>`. Anything else
// (variable bound, non-zero start, `<=`, an external bound) is
// treated as non-deterministic.
func IsDeterministicLoop(loop *ast.ForStmt) bool {
	if loop.Init == nil || loop.Cond == nil {
		return false
	}

	loopVar, ok := loop.Init.Target.(*ast.Ident)
	if !ok {
		return false
	}

	start, ok := loop.Init.Value.(*ast.IntLit)
	if !ok || start.Value != 0 {
		return false
	}

	cond, ok := loop.Cond.(*ast.BinaryExpr)
	if !ok || cond.Op != ast.OpLt {
		return false
	}

	condVar, ok := cond.Left.(*ast.Ident)
	if !ok || condVar.Name != loopVar.Name {
		return false
	}

	bound, ok := cond.Right.(*ast.IntLit)

	return ok && bound.Value > 0
}

// NullComparison describes a condition of the form `<operand> == NULL`
// or `<operand> != NULL`.
type NullComparison struct {
	Operand ast.Expr
	Op      ast.Op // OpEq or OpNeq
}

// MatchNullComparison recognizes a NULL equality comparison in a
// condition subtree. The NULL literal may appear on either side.
func MatchNullComparison(cond ast.Expr) (NullComparison, bool) {
	bin, ok := cond.(*ast.BinaryExpr)
	if !ok || (bin.Op != ast.OpEq && bin.Op != ast.OpNeq) {
		return NullComparison{}, false
	}

	if _, ok := bin.Right.(*ast.NullLit); ok {
		return NullComparison{Operand: bin.Left, Op: bin.Op}, true
	}

	if _, ok := bin.Left.(*ast.NullLit); ok {
		return NullComparison{Operand: bin.Right, Op: bin.Op}, true
	}

	return NullComparison{}, false
}

// IsGuardClause recognizes `if (<var> == NULL) { ... return; }` with
// no else branch. After such a statement the variable is known
// non-null for the remainder of the enclosing scope.
func IsGuardClause(stmt *ast.IfStmt) (*ast.Ident, bool) {
	if stmt.Else != nil {
		return nil, false
	}

	cmp, ok := MatchNullComparison(stmt.Cond)
	if !ok || cmp.Op != ast.OpEq {
		return nil, false
	}

	ident, ok := cmp.Operand.(*ast.Ident)
	if !ok {
		return nil, false
	}

	if !blockReturns(stmt.Then) {
		return nil, false
	}

	return ident, true
}

// blockReturns reports whether the block's own statement list contains
// a return.
func blockReturns(block *ast.Block) bool {
	for _, stmt := range block.Stmts {
		if _, ok := stmt.(*ast.ReturnStmt); ok {
			return true
		}
	}

	return false
}
