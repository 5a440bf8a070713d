package irvm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

// DefaultMaxSteps bounds execution when Machine.MaxSteps is zero.
const DefaultMaxSteps = 1_000_000

var (
	ErrDivideByZero  = errors.New("integer division by zero")
	ErrOverflow      = errors.New("signed division overflow")
	ErrStepLimit     = errors.New("step limit exceeded")
	ErrUndefined     = errors.New("use of undefined value")
	ErrUninitialized = errors.New("load from uninitialized slot")
	ErrFallthrough   = errors.New("block ended without a terminator")
)

// Machine executes a loaded Program one instruction at a time.
type Machine struct {
	// Output receives printf output. If nil, os.Stdout is used.
	Output io.Writer
	// MaxSteps stops runaway programs; zero means DefaultMaxSteps.
	MaxSteps int

	Steps    int
	Halted   bool
	ExitCode int32

	prog  *Program
	regs  map[string]int32
	ptrs  map[string]int // register or slot name -> index into mem
	mem   []int32
	init  []bool
	block int
	pc    int
}

func NewMachine(prog *Program) *Machine {
	return &Machine{
		prog: prog,
		regs: make(map[string]int32),
		ptrs: make(map[string]int),
	}
}

// Exec loads ir and runs it to completion, writing program output to w.
func Exec(ctx context.Context, ir string, w io.Writer, maxSteps int) (int32, error) {
	prog, err := Load(ir)
	if err != nil {
		return 0, fmt.Errorf("load: %w", err)
	}
	vm := NewMachine(prog)
	vm.Output = w
	vm.MaxSteps = maxSteps
	return vm.Run(ctx)
}

func (m *Machine) outputSink() io.Writer {
	if m.Output != nil {
		return m.Output
	}
	return os.Stdout
}

// Slot returns the current value stored in the named slot, e.g. "%x".
func (m *Machine) Slot(name string) (int32, bool) {
	idx, ok := m.ptrs[name]
	if !ok || !m.init[idx] {
		return 0, false
	}
	return m.mem[idx], true
}

// Run steps until the program returns, faults, exceeds its step budget or
// ctx is cancelled.
func (m *Machine) Run(ctx context.Context) (int32, error) {
	limit := m.MaxSteps
	if limit <= 0 {
		limit = DefaultMaxSteps
	}
	for !m.Halted {
		if m.Steps&1023 == 0 {
			if err := ctx.Err(); err != nil {
				return 0, err
			}
		}
		if m.Steps >= limit {
			return 0, fmt.Errorf("%w (%d)", ErrStepLimit, limit)
		}
		if err := m.Step(); err != nil {
			return 0, err
		}
	}
	return m.ExitCode, nil
}

// Step executes a single instruction.
func (m *Machine) Step() error {
	if m.Halted {
		return nil
	}
	blk := m.prog.Blocks[m.block]
	if m.pc >= len(blk.Instrs) {
		return fmt.Errorf("block %q: %w", blk.Label, ErrFallthrough)
	}
	in := blk.Instrs[m.pc]
	m.pc++
	m.Steps++

	if err := m.exec(in); err != nil {
		return fmt.Errorf("line %d: %s: %w", in.Line, in.Op, err)
	}
	return nil
}

func (m *Machine) exec(in Instr) error {
	switch in.Op {
	case OpAlloca:
		m.ptrs[in.Dst] = len(m.mem)
		m.mem = append(m.mem, 0)
		m.init = append(m.init, false)

	case OpStore:
		val, err := m.value(in.Args[0])
		if err != nil {
			return err
		}
		idx, err := m.pointer(in.Args[1])
		if err != nil {
			return err
		}
		m.mem[idx] = val
		m.init[idx] = true

	case OpLoad:
		idx, err := m.pointer(in.Args[0])
		if err != nil {
			return err
		}
		if !m.init[idx] {
			return fmt.Errorf("%s: %w", in.Args[0], ErrUninitialized)
		}
		m.regs[in.Dst] = m.mem[idx]

	case OpAdd, OpSub, OpMul, OpSDiv:
		a, b, err := m.operands(in.Args)
		if err != nil {
			return err
		}
		res, err := arith(in.Op, a, b)
		if err != nil {
			return err
		}
		m.regs[in.Dst] = res

	case OpICmp:
		a, b, err := m.operands(in.Args)
		if err != nil {
			return err
		}
		m.regs[in.Dst] = boolToI32(compare(in.Pred, a, b))

	case OpBr:
		return m.jump(in.Args[0])

	case OpCondBr:
		c, err := m.value(in.Args[0])
		if err != nil {
			return err
		}
		if c != 0 {
			return m.jump(in.Args[1])
		}
		return m.jump(in.Args[2])

	case OpCall:
		return m.call(in.Args[0], in.Args[1:])

	case OpRet:
		val, err := m.value(in.Args[0])
		if err != nil {
			return err
		}
		m.ExitCode = val
		m.Halted = true

	default:
		return fmt.Errorf("unsupported opcode %d", in.Op)
	}
	return nil
}

func (m *Machine) jump(label string) error {
	idx, ok := m.prog.BlockIndex(label)
	if !ok {
		return fmt.Errorf("unknown label %q", label)
	}
	m.block = idx
	m.pc = 0
	return nil
}

// call implements the single external the compiler declares: printf with an
// integer argument list.
func (m *Machine) call(callee string, args []string) error {
	if callee != "@printf" {
		return fmt.Errorf("call to undeclared function %s", callee)
	}
	if len(args) == 0 {
		return fmt.Errorf("printf without format")
	}
	format, ok := m.prog.Globals[args[0]]
	if !ok {
		return fmt.Errorf("unknown format constant %s", args[0])
	}
	vals := make([]any, 0, len(args)-1)
	for _, a := range args[1:] {
		v, err := m.value(a)
		if err != nil {
			return err
		}
		vals = append(vals, v)
	}
	if n := strings.Count(format, "%d"); n != len(vals) {
		return fmt.Errorf("printf format %q wants %d values, got %d", format, n, len(vals))
	}
	_, err := fmt.Fprintf(m.outputSink(), format, vals...)
	return err
}

// value resolves an i32 operand: a register or a decimal literal.
func (m *Machine) value(operand string) (int32, error) {
	if strings.HasPrefix(operand, "%") {
		v, ok := m.regs[operand]
		if !ok {
			return 0, fmt.Errorf("%s: %w", operand, ErrUndefined)
		}
		return v, nil
	}
	v, err := strconv.ParseInt(operand, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid i32 literal %q", operand)
	}
	return int32(v), nil
}

func (m *Machine) operands(args []string) (int32, int32, error) {
	a, err := m.value(args[0])
	if err != nil {
		return 0, 0, err
	}
	b, err := m.value(args[1])
	if err != nil {
		return 0, 0, err
	}
	return a, b, nil
}

func (m *Machine) pointer(operand string) (int, error) {
	idx, ok := m.ptrs[operand]
	if !ok {
		return 0, fmt.Errorf("%s: %w", operand, ErrUndefined)
	}
	return idx, nil
}

// arith applies op with two's complement wraparound, as i32 arithmetic does.
func arith(op Opcode, a, b int32) (int32, error) {
	switch op {
	case OpAdd:
		return a + b, nil
	case OpSub:
		return a - b, nil
	case OpMul:
		return a * b, nil
	case OpSDiv:
		if b == 0 {
			return 0, ErrDivideByZero
		}
		if a == math.MinInt32 && b == -1 {
			return 0, ErrOverflow
		}
		return a / b, nil
	}
	return 0, fmt.Errorf("not an arithmetic opcode: %s", op)
}

func compare(pred string, a, b int32) bool {
	switch pred {
	case "eq":
		return a == b
	case "ne":
		return a != b
	case "sgt":
		return a > b
	case "sge":
		return a >= b
	case "slt":
		return a < b
	case "sle":
		return a <= b
	}
	return false
}

func boolToI32(b bool) int32 {
	if b {
		return 1
	}
	return 0
}
