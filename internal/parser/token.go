package parser

// tokenKind classifies lexical tokens.
type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokInt
	tokString

	// Keywords.
	tokStruct
	tokIf
	tokElse
	tokWhile
	tokFor
	tokReturn
	tokTrue
	tokFalse
	tokNull

	// Punctuation.
	tokLParen
	tokRParen
	tokLBrace
	tokRBrace
	tokSemi
	tokComma
	tokDot
	tokArrow // <-

	// Operators.
	tokPlus
	tokMinus
	tokStar
	tokSlash
	tokPercent
	tokEq  // ==
	tokNeq // !=
	tokLt
	tokLte
	tokGt
	tokGte
	tokAndAnd
	tokOrOr
	tokBang
)

var keywords = map[string]tokenKind{
	"struct": tokStruct,
	"if":     tokIf,
	"else":   tokElse,
	"while":  tokWhile,
	"for":    tokFor,
	"return": tokReturn,
	"true":   tokTrue,
	"false":  tokFalse,
	"NULL":   tokNull,
}

// token is a single lexeme with its source position.
type token struct {
	kind   tokenKind
	text   string
	line   int
	column int
}

func (t token) String() string {
	if t.kind == tokEOF {
		return "end of file"
	}

	return "'" + t.text + "'"
}
