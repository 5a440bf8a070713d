package compiler

import "fmt"

// TokenType identifies the category of a lexed token.
type TokenType int

const (
	EOF     TokenType = iota // sentinel: end of input, repeated forever
	EOL                      // end of a source line
	ILLEGAL                  // character the scanner does not recognise

	// Literals
	IDENTIFIER // variable name
	NUMBER     // decimal integer literal

	// Keywords
	PRINT  // "print"
	CHOOSE // "choose"
	IF     // "if"
	WHILE  // "while"

	// Arithmetic operators
	PLUS  // +
	MINUS // -
	STAR  // *
	SLASH // /

	ASSIGN // =

	// Paired delimiters
	LPAREN // (
	RPAREN // )
	LBRACE // {
	RBRACE // }

	COMMA // ,
)

var tokenNames = [...]string{
	EOF:        "EOF",
	EOL:        "EOL",
	ILLEGAL:    "ILLEGAL",
	IDENTIFIER: "IDENTIFIER",
	NUMBER:     "NUMBER",
	PRINT:      "PRINT",
	CHOOSE:     "CHOOSE",
	IF:         "IF",
	WHILE:      "WHILE",
	PLUS:       "PLUS",
	MINUS:      "MINUS",
	STAR:       "STAR",
	SLASH:      "SLASH",
	ASSIGN:     "ASSIGN",
	LPAREN:     "LPAREN",
	RPAREN:     "RPAREN",
	LBRACE:     "LBRACE",
	RBRACE:     "RBRACE",
	COMMA:      "COMMA",
}

func (tt TokenType) String() string {
	if int(tt) >= 0 && int(tt) < len(tokenNames) {
		return tokenNames[tt]
	}
	return fmt.Sprintf("TokenType(%d)", int(tt))
}

// TokenKind is the coarse classification a scanner reports for each token.
type TokenKind int

const (
	KindEOF TokenKind = iota
	KindEOL
	KindIdentifier
	KindNumber
	KindOperator
	KindKeyword
	KindIllegal
)

var kindNames = [...]string{
	KindEOF:        "eof",
	KindEOL:        "eol",
	KindIdentifier: "identifier",
	KindNumber:     "number",
	KindOperator:   "operator",
	KindKeyword:    "keyword",
	KindIllegal:    "illegal",
}

func (k TokenKind) String() string {
	if int(k) >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("TokenKind(%d)", int(k))
}

// Kind groups the token type into its scanner category.
func (tt TokenType) Kind() TokenKind {
	switch tt {
	case EOF:
		return KindEOF
	case EOL:
		return KindEOL
	case IDENTIFIER:
		return KindIdentifier
	case NUMBER:
		return KindNumber
	case PRINT, CHOOSE, IF, WHILE:
		return KindKeyword
	case ILLEGAL:
		return KindIllegal
	default:
		return KindOperator
	}
}

// Token is a single lexical unit produced by the Lexer.
type Token struct {
	Type   TokenType
	Lexeme string // the exact source text that was matched
	Line   int    // 1-based source line
}

func (t Token) String() string {
	return fmt.Sprintf("%-10s %-14q  line %d", t.Type, t.Lexeme, t.Line)
}
