package domain

import (
	"testing"

	"github.com/stretchr/testify/require"

	"vel.dev/pkg/velc/internal/ast"
	"vel.dev/pkg/velc/internal/parser"
)

// firstStmt parses a function wrapping body and returns its first
// statement.
func firstStmt(t *testing.T, body string) ast.Stmt {
	t.Helper()

	prog, err := parser.Parse("int main() {\n" + body + "\n}")
	require.NoError(t, err)

	fn, ok := prog.Decls[0].(*ast.FuncDecl)
	require.True(t, ok)
	require.NotEmpty(t, fn.Body.Stmts)

	return fn.Body.Stmts[0]
}

func TestIsDeterministicLoop(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want bool
	}{
		{"literal bound", "for (i <- 0; i < 4; i <- i + 1) { x <- 1; }", true},
		{"large literal bound", "for (i <- 0; i < 1000; i <- i + 1) { x <- 1; }", true},
		{"variable bound", "for (i <- 0; i < n; i <- i + 1) { x <- 1; }", false},
		{"non-zero start", "for (i <- 1; i < 4; i <- i + 1) { x <- 1; }", false},
		{"zero bound", "for (i <- 0; i < 0; i <- i + 1) { x <- 1; }", false},
		{"less-or-equal", "for (i <- 0; i <= 4; i <- i + 1) { x <- 1; }", false},
		{"different condition variable", "for (i <- 0; j < 4; i <- i + 1) { x <- 1; }", false},
		{"field loop variable", "for (p.i <- 0; i < 4; i <- i + 1) { x <- 1; }", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			loop, ok := firstStmt(t, tc.src).(*ast.ForStmt)
			require.True(t, ok)
			require.Equal(t, tc.want, IsDeterministicLoop(loop))
		})
	}
}

func TestMatchNullComparison(t *testing.T) {
	t.Run("NULL on the right", func(t *testing.T) {
		stmt := firstStmt(t, "if (c_f == NULL) { return 1; }").(*ast.IfStmt)

		cmp, ok := MatchNullComparison(stmt.Cond)
		require.True(t, ok)
		require.Equal(t, ast.OpEq, cmp.Op)

		ident, ok := cmp.Operand.(*ast.Ident)
		require.True(t, ok)
		require.Equal(t, "c_f", ident.Name)
	})

	t.Run("NULL on the left", func(t *testing.T) {
		stmt := firstStmt(t, "if (NULL != c_f) { return 1; }").(*ast.IfStmt)

		cmp, ok := MatchNullComparison(stmt.Cond)
		require.True(t, ok)
		require.Equal(t, ast.OpNeq, cmp.Op)
	})

	t.Run("call operand", func(t *testing.T) {
		stmt := firstStmt(t, "if (getenv(\"HOME\") != NULL) { return 1; }").(*ast.IfStmt)

		cmp, ok := MatchNullComparison(stmt.Cond)
		require.True(t, ok)

		_, ok = cmp.Operand.(*ast.CallExpr)
		require.True(t, ok)
	})

	t.Run("non-equality operator is no match", func(t *testing.T) {
		stmt := firstStmt(t, "if (a < b) { return 1; }").(*ast.IfStmt)

		_, ok := MatchNullComparison(stmt.Cond)
		require.False(t, ok)
	})

	t.Run("comparison without NULL is no match", func(t *testing.T) {
		stmt := firstStmt(t, "if (a == b) { return 1; }").(*ast.IfStmt)

		_, ok := MatchNullComparison(stmt.Cond)
		require.False(t, ok)
	})
}

func TestIsGuardClause(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want bool
	}{
		{"canonical guard", "if (c_f == NULL) { return 1; }", true},
		{"guard with extra statements", "if (c_f == NULL) { log(1); return 1; }", true},
		{"NULL on the left", "if (NULL == c_f) { return 1; }", true},
		{"no return in body", "if (c_f == NULL) { log(1); }", false},
		{"inequality is not a guard", "if (c_f != NULL) { return 1; }", false},
		{"else branch disqualifies", "if (c_f == NULL) { return 1; } else { log(1); }", false},
		{"call operand is not a guard", "if (getenv(\"X\") == NULL) { return 1; }", false},
		{"nested return does not count", "if (c_f == NULL) { if (x) { return 1; } }", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			stmt, ok := firstStmt(t, tc.src).(*ast.IfStmt)
			require.True(t, ok)

			ident, got := IsGuardClause(stmt)
			require.Equal(t, tc.want, got)

			if tc.want {
				require.Equal(t, "c_f", ident.Name)
			}
		})
	}
}
