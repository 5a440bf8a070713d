package compiler

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// ModuleID names every emitted IR module.
const ModuleID = "choosec"

// preamble is shared by the normal and the error program: the module header,
// the printf declaration and both format strings.
const preamble = `; ModuleID = '` + ModuleID + `'
declare i32 @printf(ptr, ...)

@print.str = private unnamed_addr constant [4 x i8] c"%d\0A\00"
@error.str = private unnamed_addr constant [23 x i8] c"Line %d: syntax error\0A\00"
`

// ErrorProgram returns the module emitted in place of real code when the
// source has a syntax error. Its only behaviour is printing the line.
func ErrorProgram(line int) string {
	return preamble +
		"\ndefine i32 @main() {\n" +
		fmt.Sprintf("\tcall i32 (ptr, ...) @printf(ptr @error.str, i32 %d)\n", line) +
		"\tret i32 0\n}\n"
}

// Unit is the result of compiling one source text.
type Unit struct {
	IR        string       // the emitted module; the error program if Err != nil
	Err       *SyntaxError // first syntax error, or nil
	SessionID string       // empty when parsing failed
	Vars      []string     // variable names, sorted
	Stmts     int          // number of top-level statements
}

// Recorder receives one observation per compilation.
type Recorder interface {
	ObserveCompile(ok bool, d time.Duration, irLines int)
}

// Compiler runs the parse and generate pipeline. It keeps no state between
// calls, so one Compiler may be used concurrently.
type Compiler struct {
	logger   *slog.Logger
	recorder Recorder
}

type Option func(*Compiler)

func WithLogger(l *slog.Logger) Option {
	return func(c *Compiler) { c.logger = l }
}

func WithRecorder(r Recorder) Option {
	return func(c *Compiler) { c.recorder = r }
}

func New(opts ...Option) *Compiler {
	c := &Compiler{}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// Compile compiles src with a default Compiler.
func Compile(src string) (*Unit, error) {
	return New().Compile(src)
}

// Compile parses src and emits its IR. A syntax error is not a Go error: the
// returned Unit carries it and its IR is the error program. The error return
// is reserved for internal code generation failures.
func (c *Compiler) Compile(src string) (*Unit, error) {
	start := time.Now()

	prog, err := Parse(src)
	if err != nil {
		var serr *SyntaxError
		if !errors.As(err, &serr) {
			return nil, err
		}
		unit := &Unit{IR: ErrorProgram(serr.Line), Err: serr}
		c.logger.Debug("syntax error", "line", serr.Line, "msg", serr.Msg)
		c.observe(false, start, unit.IR)
		return unit, nil
	}

	sess := newSession(prog.Syms)
	ir, err := sess.generate(prog.Stmts)
	if err != nil {
		return nil, fmt.Errorf("codegen: %w", err)
	}

	unit := &Unit{
		IR:        ir,
		SessionID: sess.ID,
		Vars:      prog.Syms.Names(),
		Stmts:     len(prog.Stmts),
	}
	c.logger.Debug("compiled",
		"session", sess.ID,
		"stmts", unit.Stmts,
		"vars", prog.Syms.Len(),
		"registers", sess.nextReg,
	)
	c.observe(true, start, ir)
	return unit, nil
}

func (c *Compiler) observe(ok bool, start time.Time, ir string) {
	if c.recorder == nil {
		return
	}
	c.recorder.ObserveCompile(ok, time.Since(start), strings.Count(ir, "\n"))
}
