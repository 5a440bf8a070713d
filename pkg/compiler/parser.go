package compiler

import (
	"fmt"
	"strconv"
	"strings"
)

// Parser pulls tokens from a Lexer one at a time and builds an AST by
// recursive descent with a single token of lookahead.
//
// Grammar:
//
//	program     = { EOL | statement | conditional } EOF
//	conditional = ("if" | "while") "(" expr ")" { EOL } "{" { EOL | statement | conditional } "}"
//	statement   = print | assign | expr
//	print       = "print" "(" expr ")"
//	assign      = IDENTIFIER "=" expr
//	expr        = term { ("+" | "-") term }
//	term        = factor { ("*" | "/") factor }
//	factor      = IDENTIFIER | NUMBER | "(" expr ")" | choose | "-" factor
//	choose      = "choose" "(" expr "," expr "," expr "," expr ")"
//
// The first syntax error is sticky: once set, every parse function returns it
// and no further input is examined.
type Parser struct {
	lex         *Lexer
	cur         Token
	syms        *SymbolTable
	sourceLines []string
	err         *SyntaxError
}

func NewParser(src string) *Parser {
	p := &Parser{
		lex:         NewLexer(src),
		syms:        NewSymbolTable(),
		sourceLines: strings.Split(src, "\n"),
	}
	p.advance()
	return p
}

// Parse is shorthand for NewParser(src).ParseProgram().
func Parse(src string) (*Program, error) {
	return NewParser(src).ParseProgram()
}

// Err returns the sticky syntax error, or nil.
func (p *Parser) Err() *SyntaxError { return p.err }

// fail records the first syntax error at tok's line. Later calls keep the
// original error so the reported line is always the first mismatch.
func (p *Parser) fail(tok Token, format string, args ...any) error {
	if p.err != nil {
		return p.err
	}
	snippet := ""
	if idx := tok.Line - 1; idx >= 0 && idx < len(p.sourceLines) {
		snippet = strings.TrimSpace(p.sourceLines[idx])
	}
	p.err = &SyntaxError{Line: tok.Line, Msg: fmt.Sprintf(format, args...), Snippet: snippet}
	return p.err
}

// advance moves the lookahead to the next token.
func (p *Parser) advance() Token {
	tok := p.cur
	p.cur = p.lex.NextToken()
	return tok
}

// expect consumes the current token if it matches tt, otherwise fails.
func (p *Parser) expect(tt TokenType) (Token, error) {
	if p.err != nil {
		return p.cur, p.err
	}
	if p.cur.Type != tt {
		return p.cur, p.fail(p.cur, "expected %s, got %s", tt, describe(p.cur))
	}
	return p.advance(), nil
}

func (p *Parser) skipEOL() {
	for p.cur.Type == EOL {
		p.advance()
	}
}

// describe renders a token for error messages.
func describe(tok Token) string {
	switch tok.Type {
	case EOF:
		return "end of file"
	case EOL:
		return "end of line"
	default:
		return fmt.Sprintf("%s (%q)", tok.Type, tok.Lexeme)
	}
}

// identifier declares name in the symbol table and returns a node for it.
func (p *Parser) identifier(name string) *Identifier {
	p.syms.Declare(name)
	return &Identifier{Name: name}
}

// ParseProgram parses the whole input. On success it returns every top-level
// statement in source order; on failure it returns the first *SyntaxError.
func (p *Parser) ParseProgram() (*Program, error) {
	prog := &Program{Syms: p.syms}
	for p.err == nil {
		switch p.cur.Type {
		case EOF:
			return prog, nil
		case EOL:
			p.advance()
			continue
		}
		stmt, err := p.parseStatementOrConditional()
		if err != nil {
			return nil, err
		}
		prog.Stmts = append(prog.Stmts, stmt)
	}
	return nil, p.err
}

func (p *Parser) parseStatementOrConditional() (Node, error) {
	if p.cur.Type == IF || p.cur.Type == WHILE {
		return p.parseConditional()
	}
	return p.parseStatement()
}

// parseConditional handles both if and while; they differ only in Kind.
func (p *Parser) parseConditional() (Node, error) {
	kind := CondIf
	if p.advance().Type == WHILE {
		kind = CondWhile
	}

	if _, err := p.expect(LPAREN); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(RPAREN); err != nil {
		return nil, err
	}

	p.skipEOL()
	if _, err := p.expect(LBRACE); err != nil {
		return nil, err
	}

	node := &Conditional{Kind: kind, Cond: cond}
	for {
		p.skipEOL()
		switch p.cur.Type {
		case RBRACE:
			p.advance()
			return node, nil
		case EOF:
			return nil, p.fail(p.cur, "unterminated %s block, expected RBRACE", kind)
		}
		stmt, err := p.parseStatementOrConditional()
		if err != nil {
			return nil, err
		}
		node.Body = append(node.Body, stmt)
	}
}

// parseStatement handles print, assignment and bare expressions. An
// identifier is only an assignment target when the token after it is "=";
// otherwise it is the first factor of an expression.
func (p *Parser) parseStatement() (Node, error) {
	switch p.cur.Type {
	case PRINT:
		return p.parsePrint()

	case IDENTIFIER:
		name := p.advance().Lexeme
		if p.cur.Type == ASSIGN {
			p.advance()
			target := p.identifier(name)
			value, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			return &Assign{Target: target, Value: value}, nil
		}
		term, err := p.parseTermTail(p.identifier(name))
		if err != nil {
			return nil, err
		}
		return p.parseExprTail(term)

	default:
		return p.parseExpr()
	}
}

func (p *Parser) parsePrint() (Node, error) {
	p.advance() // print
	if _, err := p.expect(LPAREN); err != nil {
		return nil, err
	}
	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(RPAREN); err != nil {
		return nil, err
	}
	return &Print{Expr: expr}, nil
}

// parseExpr handles + and -, left-associative.
func (p *Parser) parseExpr() (Node, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	return p.parseExprTail(left)
}

func (p *Parser) parseExprTail(left Node) (Node, error) {
	for p.cur.Type == PLUS || p.cur.Type == MINUS {
		op := p.advance().Lexeme[0]
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		left = &BinaryOp{Op: op, Left: left, Right: right}
	}
	return left, nil
}

// parseTerm handles * and /, which bind tighter than + and -.
func (p *Parser) parseTerm() (Node, error) {
	left, err := p.parseFactor()
	if err != nil {
		return nil, err
	}
	return p.parseTermTail(left)
}

func (p *Parser) parseTermTail(left Node) (Node, error) {
	for p.cur.Type == STAR || p.cur.Type == SLASH {
		op := p.advance().Lexeme[0]
		right, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		left = &BinaryOp{Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseFactor() (Node, error) {
	if p.err != nil {
		return nil, p.err
	}
	switch p.cur.Type {
	case IDENTIFIER:
		return p.identifier(p.advance().Lexeme), nil

	case NUMBER:
		return p.number(p.advance(), "")

	case LPAREN:
		p.advance()
		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(RPAREN); err != nil {
			return nil, err
		}
		return expr, nil

	case CHOOSE:
		return p.parseChoose()

	case MINUS:
		p.advance()
		// A negated literal stays a literal so it never costs a register.
		if p.cur.Type == NUMBER {
			return p.number(p.advance(), "-")
		}
		operand, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		return &BinaryOp{Op: '-', Left: &NumberLiteral{Value: "0"}, Right: operand}, nil

	default:
		return nil, p.fail(p.cur, "unexpected %s", describe(p.cur))
	}
}

// number builds a literal node, rejecting values that do not fit in 32 bits.
func (p *Parser) number(tok Token, sign string) (Node, error) {
	text := sign + tok.Lexeme
	if _, err := strconv.ParseInt(text, 10, 32); err != nil {
		return nil, p.fail(tok, "integer literal %s out of 32-bit range", text)
	}
	return &NumberLiteral{Value: text}, nil
}

func (p *Parser) parseChoose() (Node, error) {
	p.advance() // choose
	if _, err := p.expect(LPAREN); err != nil {
		return nil, err
	}

	var args [4]Node
	for i := range args {
		if i > 0 {
			if _, err := p.expect(COMMA); err != nil {
				return nil, err
			}
		}
		arg, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		args[i] = arg
	}

	if _, err := p.expect(RPAREN); err != nil {
		return nil, err
	}
	return &Choose{Cond: args[0], Zero: args[1], Positive: args[2], Else: args[3]}, nil
}
