package compiler

import (
	"bytes"
	"log/slog"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"
)

type recordedCompile struct {
	ok      bool
	irLines int
}

type fakeRecorder struct {
	mu    sync.Mutex
	calls []recordedCompile
}

func (r *fakeRecorder) ObserveCompile(ok bool, _ time.Duration, irLines int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, recordedCompile{ok, irLines})
}

func TestCompile_Success(t *testing.T) {
	unit, err := Compile("b = 2\na = b * 3\nprint(a)\n")
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	if unit.Err != nil {
		t.Fatalf("unexpected syntax error: %v", unit.Err)
	}
	if unit.SessionID == "" {
		t.Error("SessionID is empty")
	}
	if unit.Stmts != 3 {
		t.Errorf("Stmts = %d, want 3", unit.Stmts)
	}
	if want := []string{"a", "b"}; !reflect.DeepEqual(unit.Vars, want) {
		t.Errorf("Vars = %v, want %v", unit.Vars, want)
	}
}

func TestCompile_SyntaxErrorProgram(t *testing.T) {
	unit, err := Compile("x = 1\nprint(x\n")
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	if unit.Err == nil || unit.Err.Line != 2 {
		t.Fatalf("Err = %v, want line 2", unit.Err)
	}
	if unit.IR != ErrorProgram(2) {
		t.Errorf("IR is not the error program:\n%s", unit.IR)
	}
	assertContains(t, unit.IR, "call i32 (ptr, ...) @printf(ptr @error.str, i32 2)")
	assertContains(t, unit.IR, "ret i32 0")

	// nothing from the partially parsed program leaks into the output
	assertNotContains(t, unit.IR, "alloca")
	assertNotContains(t, unit.IR, "%x")
	if unit.SessionID != "" || unit.Vars != nil {
		t.Errorf("error unit carries session data: %+v", unit)
	}
}

func TestCompile_Deterministic(t *testing.T) {
	src := "while (n) {\n  print(choose(n - 5, 0, n, -n))\n  n = n - 1\n}\nq = n\n"
	first, err := Compile(src)
	if err != nil {
		t.Fatal(err)
	}
	second, err := Compile(src)
	if err != nil {
		t.Fatal(err)
	}
	if first.IR != second.IR {
		t.Errorf("two compilations differ:\n%s\n---\n%s", first.IR, second.IR)
	}
	if first.SessionID == second.SessionID {
		t.Error("sessions share an ID")
	}
}

func TestCompile_SlotPerDistinctIdentifier(t *testing.T) {
	unit, err := Compile("a = a + b\nwhile (a) { a = b - c }\nprint(choose(d, a, a, a))")
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"a", "b", "c", "d"} {
		if n := strings.Count(unit.IR, "%"+name+" = alloca i32"); n != 1 {
			t.Errorf("%%%s declared %d times, want 1", name, n)
		}
	}
	// four variables plus one choose slot
	if n := strings.Count(unit.IR, "alloca i32"); n != 5 {
		t.Errorf("alloca count = %d, want 5", n)
	}
}

func TestCompile_Concurrent(t *testing.T) {
	src := "x = choose(y, 1, 2, 3)\nif (x) { print(x) }\n"
	want, err := Compile(src)
	if err != nil {
		t.Fatal(err)
	}

	c := New()
	var wg sync.WaitGroup
	errs := make(chan string, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unit, err := c.Compile(src)
			if err != nil {
				errs <- err.Error()
				return
			}
			if unit.IR != want.IR {
				errs <- "IR differs under concurrency"
			}
		}()
	}
	wg.Wait()
	close(errs)
	for e := range errs {
		t.Error(e)
	}
}

func TestCompiler_Recorder(t *testing.T) {
	rec := &fakeRecorder{}
	c := New(WithRecorder(rec))

	if _, err := c.Compile("print(1)"); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Compile("print("); err != nil {
		t.Fatal(err)
	}

	if len(rec.calls) != 2 {
		t.Fatalf("recorder called %d times, want 2", len(rec.calls))
	}
	if !rec.calls[0].ok || rec.calls[1].ok {
		t.Errorf("ok flags = %v, %v; want true, false", rec.calls[0].ok, rec.calls[1].ok)
	}
	if rec.calls[0].irLines == 0 {
		t.Error("irLines not recorded")
	}
}

func TestCompiler_Logger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	c := New(WithLogger(logger))

	unit, err := c.Compile("x = 1")
	if err != nil {
		t.Fatal(err)
	}
	assertContains(t, buf.String(), "session="+unit.SessionID)

	buf.Reset()
	if _, err := c.Compile("x = "); err != nil {
		t.Fatal(err)
	}
	assertContains(t, buf.String(), "syntax error")
}
