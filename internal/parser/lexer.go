package parser

import "fmt"

// lexer turns Vel source text into a token stream. It tracks line and
// column so every token (and therefore every AST node) knows where it
// came from.
type lexer struct {
	src    string
	offset int
	line   int
	column int
}

func newLexer(src string) *lexer {
	return &lexer{src: src, line: 1, column: 1}
}

func (l *lexer) peekByte() byte {
	if l.offset >= len(l.src) {
		return 0
	}

	return l.src[l.offset]
}

func (l *lexer) peekByteAt(n int) byte {
	if l.offset+n >= len(l.src) {
		return 0
	}

	return l.src[l.offset+n]
}

func (l *lexer) advance() byte {
	ch := l.src[l.offset]
	l.offset++

	if ch == '\n' {
		l.line++
		l.column = 1
	} else {
		l.column++
	}

	return ch
}

func (l *lexer) skipSpaceAndComments() {
	for l.offset < len(l.src) {
		ch := l.peekByte()

		switch {
		case ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n':
			l.advance()
		case ch == '/' && l.peekByteAt(1) == '/':
			for l.offset < len(l.src) && l.peekByte() != '\n' {
				l.advance()
			}
		default:
			return
		}
	}
}

func isIdentStart(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdentPart(ch byte) bool {
	return isIdentStart(ch) || isDigit(ch)
}

func isDigit(ch byte) bool { return ch >= '0' && ch <= '9' }

// next returns the following token, or an error token position for
// unrecognized input.
func (l *lexer) next() (token, error) {
	l.skipSpaceAndComments()

	tok := token{line: l.line, column: l.column}

	if l.offset >= len(l.src) {
		tok.kind = tokEOF
		return tok, nil
	}

	ch := l.peekByte()

	switch {
	case isIdentStart(ch):
		start := l.offset
		for l.offset < len(l.src) && isIdentPart(l.peekByte()) {
			l.advance()
		}

		tok.text = l.src[start:l.offset]
		if kind, ok := keywords[tok.text]; ok {
			tok.kind = kind
		} else {
			tok.kind = tokIdent
		}

		return tok, nil

	case isDigit(ch):
		start := l.offset
		for l.offset < len(l.src) && isDigit(l.peekByte()) {
			l.advance()
		}

		tok.kind = tokInt
		tok.text = l.src[start:l.offset]

		return tok, nil

	case ch == '"':
		l.advance()
		start := l.offset

		for l.offset < len(l.src) && l.peekByte() != '"' {
			if l.peekByte() == '\n' {
				return tok, fmt.Errorf("%d:%d: unterminated string literal", tok.line, tok.column)
			}

			l.advance()
		}

		if l.offset >= len(l.src) {
			return tok, fmt.Errorf("%d:%d: unterminated string literal", tok.line, tok.column)
		}

		tok.kind = tokString
		tok.text = l.src[start:l.offset]
		l.advance() // closing quote

		return tok, nil
	}

	l.advance()

	switch ch {
	case '(':
		tok.kind, tok.text = tokLParen, "("
	case ')':
		tok.kind, tok.text = tokRParen, ")"
	case '{':
		tok.kind, tok.text = tokLBrace, "{"
	case '}':
		tok.kind, tok.text = tokRBrace, "}"
	case ';':
		tok.kind, tok.text = tokSemi, ";"
	case ',':
		tok.kind, tok.text = tokComma, ","
	case '.':
		tok.kind, tok.text = tokDot, "."
	case '+':
		tok.kind, tok.text = tokPlus, "+"
	case '-':
		tok.kind, tok.text = tokMinus, "-"
	case '*':
		tok.kind, tok.text = tokStar, "*"
	case '/':
		tok.kind, tok.text = tokSlash, "/"
	case '%':
		tok.kind, tok.text = tokPercent, "%"
	case '=':
		if l.peekByte() != '=' {
			return tok, fmt.Errorf("%d:%d: unexpected '=' (assignment is written '<-')", tok.line, tok.column)
		}

		l.advance()
		tok.kind, tok.text = tokEq, "=="
	case '!':
		if l.peekByte() == '=' {
			l.advance()
			tok.kind, tok.text = tokNeq, "!="
		} else {
			tok.kind, tok.text = tokBang, "!"
		}
	case '<':
		switch l.peekByte() {
		case '-':
			l.advance()
			tok.kind, tok.text = tokArrow, "<-"
		case '=':
			l.advance()
			tok.kind, tok.text = tokLte, "<="
		default:
			tok.kind, tok.text = tokLt, "<"
		}
	case '>':
		if l.peekByte() == '=' {
			l.advance()
			tok.kind, tok.text = tokGte, ">="
		} else {
			tok.kind, tok.text = tokGt, ">"
		}
	case '&':
		if l.peekByte() != '&' {
			return tok, fmt.Errorf("%d:%d: unexpected '&'", tok.line, tok.column)
		}

		l.advance()
		tok.kind, tok.text = tokAndAnd, "&&"
	case '|':
		if l.peekByte() != '|' {
			return tok, fmt.Errorf("%d:%d: unexpected '|'", tok.line, tok.column)
		}

		l.advance()
		tok.kind, tok.text = tokOrOr, "||"
	default:
		return tok, fmt.Errorf("%d:%d: unexpected character %q", tok.line, tok.column, ch)
	}

	return tok, nil
}

// lexAll tokenizes the whole input up front. Vel sources are small and
// the parser wants multi-token lookahead for declaration
// disambiguation.
func lexAll(src string) ([]token, error) {
	l := newLexer(src)

	var toks []token

	for {
		tok, err := l.next()
		if err != nil {
			return nil, err
		}

		toks = append(toks, tok)

		if tok.kind == tokEOF {
			return toks, nil
		}
	}
}
