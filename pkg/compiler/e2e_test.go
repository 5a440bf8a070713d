package compiler

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	"choosec/pkg/irvm"
)

// runCode compiles source, executes it and returns what it printed together
// with the finished machine for inspecting variables.
func runCode(t *testing.T, source string) (string, *irvm.Machine) {
	t.Helper()
	unit, err := Compile(source)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	if unit.Err != nil {
		t.Fatalf("unexpected syntax error: %v", unit.Err)
	}

	prog, err := irvm.Load(unit.IR)
	if err != nil {
		t.Fatalf("Load failed: %v\nIR:\n%s", err, unit.IR)
	}
	var out bytes.Buffer
	vm := irvm.NewMachine(prog)
	vm.Output = &out
	vm.MaxSteps = 100_000
	if _, err := vm.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v\nIR:\n%s", err, unit.IR)
	}
	return out.String(), vm
}

func slotValue(t *testing.T, vm *irvm.Machine, name string) int32 {
	t.Helper()
	v, ok := vm.Slot("%" + name)
	if !ok {
		t.Fatalf("no initialised slot for %s", name)
	}
	return v
}

func TestChoose_E2E(t *testing.T) {
	tests := []struct {
		cond     string
		expected string
	}{
		{"0", "5\n"},
		{"3", "7\n"},
		{"-2", "9\n"},
		{"1 - 1", "5\n"},
		{"-2147483648", "9\n"},
		{"2147483647", "7\n"},
	}
	for _, tt := range tests {
		src := fmt.Sprintf("print(choose(%s, 5, 7, 9))", tt.cond)
		out, _ := runCode(t, src)
		if out != tt.expected {
			t.Errorf("choose(%s, 5, 7, 9): expected %q, got %q", tt.cond, tt.expected, out)
		}
	}
}

func TestChoose_OnlySelectedArmRuns_E2E(t *testing.T) {
	// a division by zero in an unselected arm must never execute
	out, _ := runCode(t, "print(choose(1, 1 / 0, 42, 1 / 0))")
	if out != "42\n" {
		t.Errorf("expected 42, got %q", out)
	}
}

func TestChoose_Nested_E2E(t *testing.T) {
	out, _ := runCode(t, "x = -1\nprint(choose(choose(x, 1, 0, -1), 10, 20, 30))")
	if out != "30\n" {
		t.Errorf("expected 30, got %q", out)
	}
}

func TestArithmetic_E2E(t *testing.T) {
	tests := []struct {
		expr     string
		expected int32
	}{
		{"1 + 2 * 3", 7},
		{"(1 + 2) * 3", 9},
		{"1 - 2 - 3", -4},
		{"100 / 10 / 5", 2},
		{"7 / 2", 3},
		{"-7 / 2", -3},
		{"2 * -3", -6},
		{"-(4 - 10)", 6},
		{"2147483647 + 1", -2147483648},
	}
	for _, tt := range tests {
		out, _ := runCode(t, fmt.Sprintf("print(%s)", tt.expr))
		if want := fmt.Sprintf("%d\n", tt.expected); out != want {
			t.Errorf("%s: expected %q, got %q", tt.expr, want, out)
		}
	}
}

func TestIfFalse_E2E(t *testing.T) {
	_, vm := runCode(t, "if (0) { x = 1 }")
	if got := slotValue(t, vm, "x"); got != 0 {
		t.Errorf("x = %d, want 0", got)
	}
}

func TestIfTrue_E2E(t *testing.T) {
	_, vm := runCode(t, "if (-3) { x = 1 }")
	if got := slotValue(t, vm, "x"); got != 1 {
		t.Errorf("x = %d, want 1", got)
	}
}

func TestWhileZeroIterations_E2E(t *testing.T) {
	out, vm := runCode(t, "while (x) { x = x - 1 print(99) }")
	if out != "" {
		t.Errorf("body ran: output %q", out)
	}
	if got := slotValue(t, vm, "x"); got != 0 {
		t.Errorf("x = %d, want 0", got)
	}
}

func TestWhileCountdown_E2E(t *testing.T) {
	out, vm := runCode(t, "i = 3\nwhile (i) {\n  print(i)\n  i = i - 1\n}\n")
	if out != "3\n2\n1\n" {
		t.Errorf("expected countdown, got %q", out)
	}
	if got := slotValue(t, vm, "i"); got != 0 {
		t.Errorf("i = %d, want 0", got)
	}
}

func TestChooseInLoop_E2E(t *testing.T) {
	src := `
# sign of n - 2 for n = 4 down to 1
n = 4
while (n) {
	print(choose(n - 2, 0, 1, -1))
	n = n - 1
}
`
	out, _ := runCode(t, src)
	if out != "1\n1\n0\n-1\n" {
		t.Errorf("got %q", out)
	}
}

func TestNestedConditionals_E2E(t *testing.T) {
	src := `
total = 0
i = 4
while (i) {
	j = i
	while (j) {
		if (choose(j - 2, 0, 1, 0)) {
			total = total + j
		}
		j = j - 1
	}
	i = i - 1
}
print(total)
`
	// j > 2 for (i=4: 4,3) (i=3: 3)
	out, _ := runCode(t, src)
	if out != "10\n" {
		t.Errorf("expected 10, got %q", out)
	}
}

func TestFactorial_E2E(t *testing.T) {
	src := "n = 10\nf = 1\nwhile (n) {\n f = f * n\n n = n - 1\n}\nprint(f)\n"
	out, _ := runCode(t, src)
	if out != "3628800\n" {
		t.Errorf("expected 3628800, got %q", out)
	}
}

func TestUninitialisedVariablesAreZero_E2E(t *testing.T) {
	out, _ := runCode(t, "print(never + 1)")
	if out != "1\n" {
		t.Errorf("expected 1, got %q", out)
	}
}

func TestExpressionStatement_E2E(t *testing.T) {
	out, _ := runCode(t, "x = 4\nx * 2\nprint(x)")
	if out != "4\n" {
		t.Errorf("expected 4, got %q", out)
	}
}

func TestSyntaxErrorProgram_E2E(t *testing.T) {
	tests := []struct {
		src  string
		line int
	}{
		{"print(x", 1},
		{"x = 1\n\nprint(x\n", 3},
		{"if (1) {\n print(1)\n", 3},
		{"x = 1 @ 2", 1},
	}
	for _, tt := range tests {
		unit, err := Compile(tt.src)
		if err != nil {
			t.Fatalf("Compile(%q) error = %v", tt.src, err)
		}
		var out bytes.Buffer
		code, err := irvm.Exec(context.Background(), unit.IR, &out, 0)
		if err != nil {
			t.Fatalf("Exec(%q) error = %v", tt.src, err)
		}
		if code != 0 {
			t.Errorf("%q: exit code %d, want 0", tt.src, code)
		}
		if want := fmt.Sprintf("Line %d: syntax error\n", tt.line); out.String() != want {
			t.Errorf("%q: output %q, want %q", tt.src, out.String(), want)
		}
	}
}

func TestDivideByZeroIsRuntimeFailure_E2E(t *testing.T) {
	unit, err := Compile("x = 0\nprint(1 / x)")
	if err != nil || unit.Err != nil {
		t.Fatalf("Compile: %v %v", err, unit.Err)
	}
	_, err = irvm.Exec(context.Background(), unit.IR, &bytes.Buffer{}, 0)
	if err == nil || !strings.Contains(err.Error(), "division by zero") {
		t.Errorf("expected division by zero at run time, got %v", err)
	}
}
