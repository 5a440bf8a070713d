package compiler

// keywords maps source text to its keyword TokenType.
var keywords = map[string]TokenType{
	"print":  PRINT,
	"choose": CHOOSE,
	"if":     IF,
	"while":  WHILE,
}

// Lexer holds all mutable state for a single scanning pass over src.
// Tokens are produced on demand by NextToken.
type Lexer struct {
	src  []rune
	pos  int // index of the next rune to consume
	line int // current 1-based source line
}

// NewLexer returns a Lexer positioned at the start of src.
func NewLexer(src string) *Lexer {
	return &Lexer{src: []rune(src), pos: 0, line: 1}
}

// Line reports the line the cursor is currently on.
func (l *Lexer) Line() int { return l.line }

// peek returns the rune at the current position without advancing.
func (l *Lexer) peek() rune {
	if l.pos >= len(l.src) {
		return 0
	}
	return l.src[l.pos]
}

// advance consumes one rune and returns it. Line counting happens where the
// EOL token is emitted, not here.
func (l *Lexer) advance() rune {
	if l.pos >= len(l.src) {
		return 0
	}
	r := l.src[l.pos]
	l.pos++
	return r
}

func isSpace(r rune) bool { return r == ' ' || r == '\t' || r == '\r' || r == '\f' || r == '\v' }
func isDigit(r rune) bool { return r >= '0' && r <= '9' }
func isLetter(r rune) bool { return r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r == '_' }
func isIdentRune(r rune) bool { return isLetter(r) || isDigit(r) }

func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.src) && isSpace(l.peek()) {
		l.advance()
	}
}

// skipLineComment discards everything from the current position up to, but
// not including, the newline. The opening '#' must already have been consumed.
func (l *Lexer) skipLineComment() {
	for l.pos < len(l.src) && l.peek() != '\n' {
		l.advance()
	}
}

// scanIdent collects a full identifier or keyword token.
// The first character must still be at l.peek().
func (l *Lexer) scanIdent() Token {
	start := l.pos
	for l.pos < len(l.src) && isIdentRune(l.peek()) {
		l.advance()
	}
	lexeme := string(l.src[start:l.pos])
	tt := IDENTIFIER
	if kw, ok := keywords[lexeme]; ok {
		tt = kw
	}
	return Token{Type: tt, Lexeme: lexeme, Line: l.line}
}

// scanNumber collects a run of decimal digits.
func (l *Lexer) scanNumber() Token {
	start := l.pos
	for l.pos < len(l.src) && isDigit(l.peek()) {
		l.advance()
	}
	return Token{Type: NUMBER, Lexeme: string(l.src[start:l.pos]), Line: l.line}
}

// NextToken skips blanks and comments and returns the next Token. Once the
// input is exhausted every call returns EOF.
func (l *Lexer) NextToken() Token {
	for {
		l.skipWhitespace()
		if l.pos < len(l.src) && l.peek() == '#' {
			l.advance()
			l.skipLineComment()
			continue
		}
		break
	}

	if l.pos >= len(l.src) {
		return Token{Type: EOF, Lexeme: "", Line: l.line}
	}

	ch := l.peek()
	line := l.line

	if isLetter(ch) {
		return l.scanIdent()
	}
	if isDigit(ch) {
		return l.scanNumber()
	}

	l.advance()
	switch ch {
	case '\n':
		l.line++
		return Token{EOL, "\n", line}
	case '+':
		return Token{PLUS, "+", line}
	case '-':
		return Token{MINUS, "-", line}
	case '*':
		return Token{STAR, "*", line}
	case '/':
		return Token{SLASH, "/", line}
	case '=':
		return Token{ASSIGN, "=", line}
	case '(':
		return Token{LPAREN, "(", line}
	case ')':
		return Token{RPAREN, ")", line}
	case '{':
		return Token{LBRACE, "{", line}
	case '}':
		return Token{RBRACE, "}", line}
	case ',':
		return Token{COMMA, ",", line}
	default:
		return Token{ILLEGAL, string(ch), line}
	}
}

// Lex tokenises src and returns all tokens including the final EOF token.
func Lex(src string) []Token {
	l := NewLexer(src)
	var tokens []Token
	for {
		tok := l.NextToken()
		tokens = append(tokens, tok)
		if tok.Type == EOF {
			return tokens
		}
	}
}
