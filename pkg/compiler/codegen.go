package compiler

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// binaryOps maps source operators to IR arithmetic instructions.
var binaryOps = map[byte]string{
	'+': "add",
	'-': "sub",
	'*': "mul",
	'/': "sdiv",
}

// Session holds everything that must be fresh for one compilation unit: the
// virtual register counter, the two label counters and the output buffer.
// Nothing in a Session is shared with any other compilation.
//
// Generated names always contain a '.' (%tmp.3, choose.0.end, while.1.body)
// and source identifiers never do, so a variable can never shadow a register
// or a label.
type Session struct {
	ID string

	syms       *SymbolTable
	out        strings.Builder
	nextReg    int
	nextChoose int
	nextCond   int
	slots      []string // choose result slots, declared in the entry block
}

func newSession(syms *SymbolTable) *Session {
	return &Session{ID: uuid.NewString(), syms: syms}
}

// Generate emits the IR module for a parsed program using a fresh session.
func Generate(prog *Program) (string, error) {
	return newSession(prog.Syms).generate(prog.Stmts)
}

func (s *Session) newReg() string {
	r := fmt.Sprintf("%%tmp.%d", s.nextReg)
	s.nextReg++
	return r
}

func (s *Session) line(format string, args ...any) {
	s.out.WriteByte('\t')
	fmt.Fprintf(&s.out, format, args...)
	s.out.WriteByte('\n')
}

func (s *Session) label(name string) {
	fmt.Fprintf(&s.out, "\n%s:\n", name)
}

func (s *Session) br(target string) {
	s.line("br label %%%s", target)
}

func (s *Session) slot(name string) (string, error) {
	sym, ok := s.syms.Lookup(name)
	if !ok {
		return "", fmt.Errorf("variable %q has no storage slot", name)
	}
	return sym.Slot, nil
}

// generate emits the statements into the body buffer and then wraps them in
// the module preamble, slot declarations and epilogue.
func (s *Session) generate(stmts []Node) (string, error) {
	for _, stmt := range stmts {
		if _, err := s.emit(stmt); err != nil {
			return "", err
		}
	}

	names := s.syms.Names()

	var sb strings.Builder
	sb.WriteString(preamble)
	sb.WriteString("\ndefine i32 @main() {\n")
	for _, name := range names {
		fmt.Fprintf(&sb, "\t%%%s = alloca i32\n", name)
	}
	for _, slot := range s.slots {
		fmt.Fprintf(&sb, "\t%s = alloca i32\n", slot)
	}
	sb.WriteString("\n")
	for _, name := range names {
		fmt.Fprintf(&sb, "\tstore i32 0, ptr %%%s\n", name)
	}
	sb.WriteString("\n")
	sb.WriteString(s.out.String())
	sb.WriteString("\tret i32 0\n}\n")
	return sb.String(), nil
}

// emit writes the IR for n and returns the operand holding its value: a
// register, or the literal text for a NumberLiteral. Statements return "".
func (s *Session) emit(n Node) (string, error) {
	switch n := n.(type) {
	case *Identifier:
		slot, err := s.slot(n.Name)
		if err != nil {
			return "", err
		}
		reg := s.newReg()
		s.line("%s = load i32, ptr %s", reg, slot)
		return reg, nil

	case *NumberLiteral:
		return n.Value, nil

	case *BinaryOp:
		// Both sides are always evaluated, left first.
		left, err := s.emit(n.Left)
		if err != nil {
			return "", err
		}
		right, err := s.emit(n.Right)
		if err != nil {
			return "", err
		}
		op, ok := binaryOps[n.Op]
		if !ok {
			return "", fmt.Errorf("unknown binary operator %q", n.Op)
		}
		reg := s.newReg()
		s.line("%s = %s i32 %s, %s", reg, op, left, right)
		return reg, nil

	case *Choose:
		return s.emitChoose(n)

	case *Print:
		val, err := s.emit(n.Expr)
		if err != nil {
			return "", err
		}
		s.line("call i32 (ptr, ...) @printf(ptr @print.str, i32 %s)", val)
		return "", nil

	case *Conditional:
		return "", s.emitConditional(n)

	case *Assign:
		val, err := s.emit(n.Value)
		if err != nil {
			return "", err
		}
		slot, err := s.slot(n.Target.Name)
		if err != nil {
			return "", err
		}
		s.line("store i32 %s, ptr %s", val, slot)
		return "", nil

	default:
		return "", fmt.Errorf("unsupported node %T", n)
	}
}

// emitChoose lowers choose(c, zero, pos, neg). The condition is evaluated
// once; each arm stores into a private slot and joins at the end label.
//
//	choose.N.iszero:   c == 0 ? -> choose.N.zero : choose.N.ispositive
//	choose.N.ispositive: c > 0 ? -> choose.N.positive : choose.N.else
//	choose.N.end:      load the slot
func (s *Session) emitChoose(n *Choose) (string, error) {
	prefix := fmt.Sprintf("choose.%d.", s.nextChoose)
	s.nextChoose++

	result := s.newReg()
	s.slots = append(s.slots, result)

	cond, err := s.emit(n.Cond)
	if err != nil {
		return "", err
	}
	end := prefix + "end"

	s.br(prefix + "iszero")
	s.label(prefix + "iszero")
	isZero := s.newReg()
	s.line("%s = icmp eq i32 %s, 0", isZero, cond)
	s.line("br i1 %s, label %%%szero, label %%%sispositive", isZero, prefix, prefix)

	if err := s.emitArm(prefix+"zero", n.Zero, result, end); err != nil {
		return "", err
	}

	s.label(prefix + "ispositive")
	isPos := s.newReg()
	s.line("%s = icmp sgt i32 %s, 0", isPos, cond)
	s.line("br i1 %s, label %%%spositive, label %%%selse", isPos, prefix, prefix)

	if err := s.emitArm(prefix+"positive", n.Positive, result, end); err != nil {
		return "", err
	}
	if err := s.emitArm(prefix+"else", n.Else, result, end); err != nil {
		return "", err
	}

	s.label(end)
	val := s.newReg()
	s.line("%s = load i32, ptr %s", val, result)
	return val, nil
}

func (s *Session) emitArm(label string, expr Node, slot, end string) error {
	s.label(label)
	val, err := s.emit(expr)
	if err != nil {
		return err
	}
	s.line("store i32 %s, ptr %s", val, slot)
	s.br(end)
	return nil
}

// emitConditional lowers if and while with the same three blocks. They differ
// only in where the body jumps when it finishes: an if leaves, a while goes
// back to re-test the condition.
func (s *Session) emitConditional(n *Conditional) error {
	prefix := fmt.Sprintf("%s.%d.", n.Kind, s.nextCond)
	s.nextCond++
	entry, body, end := prefix+"entry", prefix+"body", prefix+"end"

	s.br(entry)
	s.label(entry)
	cond, err := s.emit(n.Cond)
	if err != nil {
		return err
	}
	test := s.newReg()
	s.line("%s = icmp ne i32 %s, 0", test, cond)
	s.line("br i1 %s, label %%%s, label %%%s", test, body, end)

	s.label(body)
	for _, stmt := range n.Body {
		if _, err := s.emit(stmt); err != nil {
			return err
		}
	}
	if n.Kind == CondWhile {
		s.br(entry)
	} else {
		s.br(end)
	}

	s.label(end)
	return nil
}
