package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"choosec/pkg/compiler"
)

var _ compiler.Recorder = (*Collector)(nil)

func TestObserveCompile(t *testing.T) {
	c := NewCollector("", nil)

	c.ObserveCompile(true, 2*time.Millisecond, 20)
	c.ObserveCompile(true, time.Millisecond, 40)
	c.ObserveCompile(false, time.Millisecond, 8)

	if got := testutil.ToFloat64(c.compilationsTotal.WithLabelValues(ResultOK)); got != 2 {
		t.Errorf("ok compilations = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.compilationsTotal.WithLabelValues(ResultSyntaxError)); got != 1 {
		t.Errorf("syntax_error compilations = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.syntaxErrorsTotal); got != 1 {
		t.Errorf("syntax errors = %v, want 1", got)
	}
	if n := testutil.CollectAndCount(c.compileDuration); n != 1 {
		t.Errorf("compile duration series = %d, want 1", n)
	}
}

func TestCollectorWithCompiler(t *testing.T) {
	c := NewCollector("test", nil)
	comp := compiler.New(compiler.WithRecorder(c))

	if _, err := comp.Compile("x = 1\nprint(x)\n"); err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if _, err := comp.Compile("print(\n"); err != nil {
		t.Fatalf("Compile: %v", err)
	}

	if got := testutil.ToFloat64(c.compilationsTotal.WithLabelValues(ResultOK)); got != 1 {
		t.Errorf("ok compilations = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.syntaxErrorsTotal); got != 1 {
		t.Errorf("syntax errors = %v, want 1", got)
	}
}

func TestHandler(t *testing.T) {
	c := NewCollector("choosec", nil)
	c.ObserveCompile(true, time.Millisecond, 12)

	srv := httptest.NewServer(c.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	for _, name := range []string{
		"choosec_compilations_total",
		"choosec_compile_duration_seconds",
		"choosec_ir_lines",
	} {
		if !strings.Contains(string(body), name) {
			t.Errorf("metrics output missing %s", name)
		}
	}
}
