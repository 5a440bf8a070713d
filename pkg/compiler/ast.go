package compiler

import (
	"fmt"
	"strings"
)

// Node is implemented by the seven AST node kinds. The set is closed: the
// unexported marker keeps other packages from adding kinds the code
// generator's type switch does not know about.
//
// Expression nodes (Identifier, NumberLiteral, BinaryOp, Choose) produce an
// operand when emitted; statement nodes (Print, Conditional, Assign) do not.
type Node interface {
	node()
	String() string
}

// Identifier is a read of a named variable.
//
//	print(x)
//	      ^  Identifier{Name: "x"}
type Identifier struct {
	Name string
}

func (*Identifier) node()            {}
func (i *Identifier) String() string { return i.Name }

// NumberLiteral is an integer constant, kept as its source text.
type NumberLiteral struct {
	Value string
}

func (*NumberLiteral) node()            {}
func (n *NumberLiteral) String() string { return n.Value }

// BinaryOp represents Left Op Right where Op is one of + - * /.
//
//	x + 1
//	^ ^ ^
//	| | |
//	| | Right
//	| Op
//	Left
type BinaryOp struct {
	Op    byte
	Left  Node
	Right Node
}

func (*BinaryOp) node() {}
func (b *BinaryOp) String() string {
	return fmt.Sprintf("(%s %c %s)", b.Left, b.Op, b.Right)
}

// Choose selects one of three values by the sign of Cond:
// zero picks Zero, positive picks Positive, negative picks Else.
//
//	choose(c, a, b, d)
type Choose struct {
	Cond     Node
	Zero     Node
	Positive Node
	Else     Node
}

func (*Choose) node() {}
func (c *Choose) String() string {
	return fmt.Sprintf("choose(%s, %s, %s, %s)", c.Cond, c.Zero, c.Positive, c.Else)
}

// Print represents print(expr).
type Print struct {
	Expr Node
}

func (*Print) node()            {}
func (p *Print) String() string { return fmt.Sprintf("Print(%s)", p.Expr) }

// CondKind discriminates the two Conditional forms.
type CondKind int

const (
	CondIf CondKind = iota
	CondWhile
)

func (k CondKind) String() string {
	if k == CondWhile {
		return "while"
	}
	return "if"
}

// Conditional represents if (cond) { body } and while (cond) { body }.
// An if runs Body at most once; a while re-tests Cond after every pass.
type Conditional struct {
	Kind CondKind
	Cond Node
	Body []Node
}

func (*Conditional) node() {}
func (c *Conditional) String() string {
	parts := make([]string, len(c.Body))
	for i, s := range c.Body {
		parts[i] = s.String()
	}
	return fmt.Sprintf("Conditional(%s %s { %s })", c.Kind, c.Cond, strings.Join(parts, "; "))
}

// Assign represents  Target = Value.
type Assign struct {
	Target *Identifier
	Value  Node
}

func (*Assign) node() {}
func (a *Assign) String() string {
	return fmt.Sprintf("Assign(%s = %s)", a.Target, a.Value)
}

// Program is the parser's output: top-level statements in source order and
// every variable name they reference.
type Program struct {
	Stmts []Node
	Syms  *SymbolTable
}
