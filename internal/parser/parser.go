// Package parser turns Vel source text into the syntax tree consumed
// by the semantic checkers. It is a plain recursive-descent parser
// over a pre-lexed token slice; the first syntax error aborts the
// parse, since the checkers must never see a broken tree.
package parser

import (
	"fmt"
	"strconv"

	"vel.dev/pkg/velc/internal/ast"
)

// Parse parses one compilation unit.
func Parse(src string) (*ast.Program, error) {
	toks, err := lexAll(src)
	if err != nil {
		return nil, err
	}

	p := &parser{toks: toks}

	return p.parseProgram()
}

type parser struct {
	toks []token
	pos  int
}

func (p *parser) cur() token { return p.toks[p.pos] }

func (p *parser) peek(n int) token {
	if p.pos+n >= len(p.toks) {
		return p.toks[len(p.toks)-1] // EOF
	}

	return p.toks[p.pos+n]
}

func (p *parser) advance() token {
	tok := p.toks[p.pos]
	if tok.kind != tokEOF {
		p.pos++
	}

	return tok
}

func (p *parser) expect(kind tokenKind, what string) (token, error) {
	tok := p.cur()
	if tok.kind != kind {
		return tok, p.errorf(tok, "expected %s, found %s", what, tok)
	}

	return p.advance(), nil
}

func (p *parser) errorf(tok token, format string, args ...interface{}) error {
	return fmt.Errorf("%d:%d: %s", tok.line, tok.column, fmt.Sprintf(format, args...))
}

func posOf(tok token) ast.Position {
	return ast.Position{Line: tok.line, Column: tok.column}
}

func (p *parser) parseProgram() (*ast.Program, error) {
	prog := &ast.Program{}

	for p.cur().kind != tokEOF {
		decl, err := p.parseTopLevel()
		if err != nil {
			return nil, err
		}

		prog.Decls = append(prog.Decls, decl)
	}

	return prog, nil
}

func (p *parser) parseTopLevel() (ast.Decl, error) {
	if p.cur().kind == tokStruct {
		return p.parseStructDecl()
	}

	typ, err := p.parseType()
	if err != nil {
		return nil, err
	}

	name, err := p.expect(tokIdent, "a name")
	if err != nil {
		return nil, err
	}

	if p.cur().kind == tokLParen {
		return p.parseFuncDecl(typ, name)
	}

	return p.parseVarDeclRest(typ, name)
}

func (p *parser) parseStructDecl() (*ast.StructDecl, error) {
	kw := p.advance()

	name, err := p.expect(tokIdent, "a struct name")
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(tokLBrace, "'{'"); err != nil {
		return nil, err
	}

	decl := &ast.StructDecl{Name: name.text, Position: posOf(kw)}

	for p.cur().kind != tokRBrace {
		fieldType, err := p.parseType()
		if err != nil {
			return nil, err
		}

		fieldName, err := p.expect(tokIdent, "a field name")
		if err != nil {
			return nil, err
		}

		if _, err := p.expect(tokSemi, "';'"); err != nil {
			return nil, err
		}

		decl.Fields = append(decl.Fields, ast.StructField{
			Name:     fieldName.text,
			Type:     fieldType,
			Position: posOf(fieldName),
		})
	}

	p.advance() // '}'

	return decl, nil
}

// parseType parses `IDENT` or `string<N>`.
func (p *parser) parseType() (ast.TypeRef, error) {
	name, err := p.expect(tokIdent, "a type name")
	if err != nil {
		return ast.TypeRef{}, err
	}

	ref := ast.TypeRef{Name: name.text, Position: posOf(name)}

	if name.text == "string" && p.cur().kind == tokLt {
		p.advance()

		capTok, err := p.expect(tokInt, "a string capacity")
		if err != nil {
			return ast.TypeRef{}, err
		}

		capValue, err := strconv.Atoi(capTok.text)
		if err != nil || capValue <= 0 {
			return ast.TypeRef{}, p.errorf(capTok, "invalid string capacity %q", capTok.text)
		}

		ref.Capacity = capValue

		if _, err := p.expect(tokGt, "'>'"); err != nil {
			return ast.TypeRef{}, err
		}
	}

	return ref, nil
}

func (p *parser) parseFuncDecl(ret ast.TypeRef, name token) (*ast.FuncDecl, error) {
	p.advance() // '('

	fn := &ast.FuncDecl{
		Name:       name.text,
		ReturnType: ret,
		Position:   ast.Position{Line: ret.Line, Column: ret.Column},
	}

	for p.cur().kind != tokRParen {
		if len(fn.Params) > 0 {
			if _, err := p.expect(tokComma, "','"); err != nil {
				return nil, err
			}
		}

		paramType, err := p.parseType()
		if err != nil {
			return nil, err
		}

		paramName, err := p.expect(tokIdent, "a parameter name")
		if err != nil {
			return nil, err
		}

		fn.Params = append(fn.Params, ast.Param{
			Name:     paramName.text,
			Type:     paramType,
			Position: posOf(paramName),
		})
	}

	p.advance() // ')'

	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}

	fn.Body = body

	return fn, nil
}

func (p *parser) parseVarDeclRest(typ ast.TypeRef, name token) (*ast.VarDecl, error) {
	decl := &ast.VarDecl{Name: name.text, Type: typ, Position: posOf(name)}

	if p.cur().kind == tokArrow {
		p.advance()

		init, err := p.parseExpr()
		if err != nil {
			return nil, err
		}

		decl.Init = init
	}

	if _, err := p.expect(tokSemi, "';'"); err != nil {
		return nil, err
	}

	return decl, nil
}

func (p *parser) parseBlock() (*ast.Block, error) {
	open, err := p.expect(tokLBrace, "'{'")
	if err != nil {
		return nil, err
	}

	block := &ast.Block{Position: posOf(open)}

	for p.cur().kind != tokRBrace {
		if p.cur().kind == tokEOF {
			return nil, p.errorf(p.cur(), "unexpected end of file inside a block")
		}

		stmt, err := p.parseStmt()
		if err != nil {
			return nil, err
		}

		block.Stmts = append(block.Stmts, stmt)
	}

	p.advance() // '}'

	return block, nil
}

func (p *parser) parseStmt() (ast.Stmt, error) {
	tok := p.cur()

	switch tok.kind {
	case tokLBrace:
		return p.parseBlock()
	case tokIf:
		return p.parseIfStmt()
	case tokWhile:
		return p.parseWhileStmt()
	case tokFor:
		return p.parseForStmt()
	case tokReturn:
		return p.parseReturnStmt()
	case tokIdent:
		if p.startsVarDecl() {
			typ, err := p.parseType()
			if err != nil {
				return nil, err
			}

			name, err := p.expect(tokIdent, "a name")
			if err != nil {
				return nil, err
			}

			return p.parseVarDeclRest(typ, name)
		}

		return p.parseAssignOrExprStmt()
	default:
		return nil, p.errorf(tok, "expected a statement, found %s", tok)
	}
}

// startsVarDecl reports whether the next tokens look like `type name`
// rather than an expression. `string<64> s` needs the longer look.
func (p *parser) startsVarDecl() bool {
	if p.peek(1).kind == tokIdent {
		return true
	}

	return p.cur().text == "string" &&
		p.peek(1).kind == tokLt &&
		p.peek(2).kind == tokInt &&
		p.peek(3).kind == tokGt &&
		p.peek(4).kind == tokIdent
}

func (p *parser) parseAssignOrExprStmt() (ast.Stmt, error) {
	start := p.cur()

	target, err := p.parsePostfix()
	if err != nil {
		return nil, err
	}

	if p.cur().kind == tokArrow {
		switch target.(type) {
		case *ast.Ident, *ast.FieldExpr:
		default:
			return nil, p.errorf(start, "cannot assign to this expression")
		}

		p.advance()

		value, err := p.parseExpr()
		if err != nil {
			return nil, err
		}

		if _, err := p.expect(tokSemi, "';'"); err != nil {
			return nil, err
		}

		return &ast.AssignStmt{Target: target, Value: value, Position: posOf(start)}, nil
	}

	if _, err := p.expect(tokSemi, "';'"); err != nil {
		return nil, err
	}

	return &ast.ExprStmt{X: target, Position: posOf(start)}, nil
}

func (p *parser) parseIfStmt() (*ast.IfStmt, error) {
	kw := p.advance()

	if _, err := p.expect(tokLParen, "'('"); err != nil {
		return nil, err
	}

	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(tokRParen, "')'"); err != nil {
		return nil, err
	}

	then, err := p.parseBlock()
	if err != nil {
		return nil, err
	}

	stmt := &ast.IfStmt{Cond: cond, Then: then, Position: posOf(kw)}

	if p.cur().kind == tokElse {
		elseTok := p.advance()

		if p.cur().kind == tokIf {
			// else-if chains nest as a single-statement block.
			nested, err := p.parseIfStmt()
			if err != nil {
				return nil, err
			}

			stmt.Else = &ast.Block{Stmts: []ast.Stmt{nested}, Position: posOf(elseTok)}
		} else {
			elseBlock, err := p.parseBlock()
			if err != nil {
				return nil, err
			}

			stmt.Else = elseBlock
		}
	}

	return stmt, nil
}

func (p *parser) parseWhileStmt() (*ast.WhileStmt, error) {
	kw := p.advance()

	if _, err := p.expect(tokLParen, "'('"); err != nil {
		return nil, err
	}

	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(tokRParen, "')'"); err != nil {
		return nil, err
	}

	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}

	return &ast.WhileStmt{Cond: cond, Body: body, Position: posOf(kw)}, nil
}

func (p *parser) parseForStmt() (*ast.ForStmt, error) {
	kw := p.advance()

	if _, err := p.expect(tokLParen, "'('"); err != nil {
		return nil, err
	}

	init, err := p.parseSimpleAssign()
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(tokSemi, "';'"); err != nil {
		return nil, err
	}

	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(tokSemi, "';'"); err != nil {
		return nil, err
	}

	post, err := p.parseSimpleAssign()
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(tokRParen, "')'"); err != nil {
		return nil, err
	}

	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}

	return &ast.ForStmt{Init: init, Cond: cond, Post: post, Body: body, Position: posOf(kw)}, nil
}

// parseSimpleAssign parses `target <- expr` without a trailing
// semicolon, as used in for-loop clauses.
func (p *parser) parseSimpleAssign() (*ast.AssignStmt, error) {
	start := p.cur()

	target, err := p.parsePostfix()
	if err != nil {
		return nil, err
	}

	switch target.(type) {
	case *ast.Ident, *ast.FieldExpr:
	default:
		return nil, p.errorf(start, "cannot assign to this expression")
	}

	if _, err := p.expect(tokArrow, "'<-'"); err != nil {
		return nil, err
	}

	value, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	return &ast.AssignStmt{Target: target, Value: value, Position: posOf(start)}, nil
}

func (p *parser) parseReturnStmt() (*ast.ReturnStmt, error) {
	kw := p.advance()

	stmt := &ast.ReturnStmt{Position: posOf(kw)}

	if p.cur().kind != tokSemi {
		value, err := p.parseExpr()
		if err != nil {
			return nil, err
		}

		stmt.Value = value
	}

	if _, err := p.expect(tokSemi, "';'"); err != nil {
		return nil, err
	}

	return stmt, nil
}

// Expression precedence, loosest first:
//
//	|| && (== !=) (< <= > >=) (+ -) (* / %) unary postfix
func (p *parser) parseExpr() (ast.Expr, error) {
	return p.parseBinary(0)
}

var binaryLevels = []map[tokenKind]ast.Op{
	{tokOrOr: ast.OpOr},
	{tokAndAnd: ast.OpAnd},
	{tokEq: ast.OpEq, tokNeq: ast.OpNeq},
	{tokLt: ast.OpLt, tokLte: ast.OpLte, tokGt: ast.OpGt, tokGte: ast.OpGte},
	{tokPlus: ast.OpAdd, tokMinus: ast.OpSub},
	{tokStar: ast.OpMul, tokSlash: ast.OpDiv, tokPercent: ast.OpRem},
}

func (p *parser) parseBinary(level int) (ast.Expr, error) {
	if level >= len(binaryLevels) {
		return p.parseUnary()
	}

	left, err := p.parseBinary(level + 1)
	if err != nil {
		return nil, err
	}

	for {
		op, ok := binaryLevels[level][p.cur().kind]
		if !ok {
			return left, nil
		}

		opTok := p.advance()

		right, err := p.parseBinary(level + 1)
		if err != nil {
			return nil, err
		}

		left = &ast.BinaryExpr{Op: op, Left: left, Right: right, Position: posOf(opTok)}
	}
}

func (p *parser) parseUnary() (ast.Expr, error) {
	tok := p.cur()

	switch tok.kind {
	case tokBang:
		p.advance()

		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}

		return &ast.UnaryExpr{Op: ast.OpNot, X: x, Position: posOf(tok)}, nil
	case tokMinus:
		p.advance()

		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}

		return &ast.UnaryExpr{Op: ast.OpSub, X: x, Position: posOf(tok)}, nil
	default:
		return p.parsePostfix()
	}
}

func (p *parser) parsePostfix() (ast.Expr, error) {
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}

	for p.cur().kind == tokDot {
		dot := p.advance()

		field, err := p.expect(tokIdent, "a field name")
		if err != nil {
			return nil, err
		}

		expr = &ast.FieldExpr{X: expr, Field: field.text, Position: posOf(dot)}
	}

	return expr, nil
}

func (p *parser) parsePrimary() (ast.Expr, error) {
	tok := p.cur()

	switch tok.kind {
	case tokInt:
		p.advance()

		value, err := strconv.ParseInt(tok.text, 10, 64)
		if err != nil {
			return nil, p.errorf(tok, "invalid integer literal %q", tok.text)
		}

		return &ast.IntLit{Value: value, Text: tok.text, Position: posOf(tok)}, nil
	case tokString:
		p.advance()
		return &ast.StringLit{Value: tok.text, Position: posOf(tok)}, nil
	case tokTrue:
		p.advance()
		return &ast.BoolLit{Value: true, Position: posOf(tok)}, nil
	case tokFalse:
		p.advance()
		return &ast.BoolLit{Value: false, Position: posOf(tok)}, nil
	case tokNull:
		p.advance()
		return &ast.NullLit{Position: posOf(tok)}, nil
	case tokIdent:
		p.advance()

		if p.cur().kind == tokLParen {
			p.advance()

			call := &ast.CallExpr{Func: tok.text, Position: posOf(tok)}

			for p.cur().kind != tokRParen {
				if len(call.Args) > 0 {
					if _, err := p.expect(tokComma, "','"); err != nil {
						return nil, err
					}
				}

				arg, err := p.parseExpr()
				if err != nil {
					return nil, err
				}

				call.Args = append(call.Args, arg)
			}

			p.advance() // ')'

			return call, nil
		}

		return &ast.Ident{Name: tok.text, Position: posOf(tok)}, nil
	case tokLParen:
		p.advance()

		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}

		if _, err := p.expect(tokRParen, "')'"); err != nil {
			return nil, err
		}

		return expr, nil
	default:
		return nil, p.errorf(tok, "expected an expression, found %s", tok)
	}
}
