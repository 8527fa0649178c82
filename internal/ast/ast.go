// Package ast defines the syntax tree for Vel compilation units.
//
// Every node carries its source position so later stages can attach
// diagnostics to the exact line and column that triggered them. The
// checkers walk these trees by explicit recursion; there is no visitor
// machinery here on purpose, so each analysis can be tested node by
// node.
package ast

// Position is a line/column pair inside a single source file.
// Lines and columns are 1-based.
type Position struct {
	Line   int
	Column int
}

// Pos returns the position itself, letting structs that embed Position
// satisfy Node for free.
func (p Position) Pos() Position { return p }

// Node is the common interface for every syntax tree node.
type Node interface {
	Pos() Position
}

// Program is one parsed compilation unit.
type Program struct {
	Decls []Decl
}

// Decl is a top-level declaration: a struct, a function or a global
// variable.
type Decl interface {
	Node
	declNode()
}

// TypeRef names a type as written in source. Capacity is only set for
// capacity strings (`string<64>` has Name "string" and Capacity 64).
type TypeRef struct {
	Name     string
	Capacity int
	Position
}

// IsString reports whether the reference names the capacity string type.
func (t TypeRef) IsString() bool { return t.Name == "string" }

// StructDecl declares a struct type and its fields.
type StructDecl struct {
	Name   string
	Fields []StructField
	Position
}

// StructField is a single field inside a struct declaration.
type StructField struct {
	Name string
	Type TypeRef
	Position
}

// FuncDecl declares a function. ReturnType.Name is "void" for
// functions that return nothing.
type FuncDecl struct {
	Name       string
	ReturnType TypeRef
	Params     []Param
	Body       *Block
	Position
}

// Param is a single function parameter.
type Param struct {
	Name string
	Type TypeRef
	Position
}

// VarDecl declares a variable, optionally with an initializer. It
// appears both at the top level (globals) and as a statement.
type VarDecl struct {
	Name string
	Type TypeRef
	Init Expr // nil when declared without an initializer
	Position
}

func (*StructDecl) declNode() {}
func (*FuncDecl) declNode()   {}
func (*VarDecl) declNode()    {}

// Stmt is a statement inside a function body.
type Stmt interface {
	Node
	stmtNode()
}

// Block is a braced statement list. Entering a block opens a new
// lexical scope.
type Block struct {
	Stmts []Stmt
	Position
}

// IfStmt is a conditional with an optional else branch.
type IfStmt struct {
	Cond Expr
	Then *Block
	Else *Block // nil when there is no else branch
	Position
}

// WhileStmt is a pre-tested loop.
type WhileStmt struct {
	Cond Expr
	Body *Block
	Position
}

// ForStmt is a C-style counted loop. Init and Post are assignments by
// grammar.
type ForStmt struct {
	Init *AssignStmt
	Cond Expr
	Post *AssignStmt
	Body *Block
	Position
}

// AssignStmt writes Value into Target. Target is an *Ident or a
// *FieldExpr; the grammar admits nothing else on the left of `<-`.
type AssignStmt struct {
	Target Expr
	Value  Expr
	Position
}

// ReturnStmt returns from the enclosing function.
type ReturnStmt struct {
	Value Expr // nil for a bare return
	Position
}

// ExprStmt is an expression in statement position, in practice a call.
type ExprStmt struct {
	X Expr
	Position
}

func (*VarDecl) stmtNode()    {}
func (*Block) stmtNode()      {}
func (*IfStmt) stmtNode()     {}
func (*WhileStmt) stmtNode()  {}
func (*ForStmt) stmtNode()    {}
func (*AssignStmt) stmtNode() {}
func (*ReturnStmt) stmtNode() {}
func (*ExprStmt) stmtNode()   {}

// Expr is an expression node.
type Expr interface {
	Node
	exprNode()
}

// Op enumerates binary and unary operators.
type Op string

// Operator values as written in source.
const (
	OpAdd Op = "+"
	OpSub Op = "-"
	OpMul Op = "*"
	OpDiv Op = "/"
	OpRem Op = "%"
	OpEq  Op = "=="
	OpNeq Op = "!="
	OpLt  Op = "<"
	OpLte Op = "<="
	OpGt  Op = ">"
	OpGte Op = ">="
	OpAnd Op = "&&"
	OpOr  Op = "||"
	OpNot Op = "!"
)

// Ident is a plain identifier reference.
type Ident struct {
	Name string
	Position
}

// FieldExpr selects a field or property: `p.x`, `s.length`, `n.bits`.
// Chains nest through X (`p.name.length` is FieldExpr(FieldExpr(p,
// name), length)).
type FieldExpr struct {
	X     Expr
	Field string
	Position
}

// CallExpr calls a named function.
type CallExpr struct {
	Func string
	Args []Expr
	Position
}

// BinaryExpr applies a binary operator.
type BinaryExpr struct {
	Op    Op
	Left  Expr
	Right Expr
	Position
}

// UnaryExpr applies a prefix operator.
type UnaryExpr struct {
	Op Op
	X  Expr
	Position
}

// IntLit is an integer literal. Text preserves the source spelling.
type IntLit struct {
	Value int64
	Text  string
	Position
}

// StringLit is a quoted string literal.
type StringLit struct {
	Value string
	Position
}

// BoolLit is `true` or `false`.
type BoolLit struct {
	Value bool
	Position
}

// NullLit is the NULL interop literal.
type NullLit struct {
	Position
}

func (*Ident) exprNode()      {}
func (*FieldExpr) exprNode()  {}
func (*CallExpr) exprNode()   {}
func (*BinaryExpr) exprNode() {}
func (*UnaryExpr) exprNode()  {}
func (*IntLit) exprNode()     {}
func (*StringLit) exprNode()  {}
func (*BoolLit) exprNode()    {}
func (*NullLit) exprNode()    {}
