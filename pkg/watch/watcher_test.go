package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
)

func TestNewFileWatcher(t *testing.T) {
	fw, err := NewFileWatcher(Config{Path: "prog.my"}, nil)
	if err != nil {
		t.Fatalf("NewFileWatcher() error = %v", err)
	}
	defer fw.Stop()

	if fw.interval != DefaultDebounce {
		t.Errorf("interval = %v, want %v", fw.interval, DefaultDebounce)
	}
	if !filepath.IsAbs(fw.path) {
		t.Errorf("path %q is not absolute", fw.path)
	}
}

func TestNewFileWatcher_EmptyPath(t *testing.T) {
	if _, err := NewFileWatcher(Config{}, nil); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestShouldProcessEvent(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "prog.my")
	fw, err := NewFileWatcher(Config{Path: target}, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer fw.Stop()

	tests := []struct {
		name  string
		event fsnotify.Event
		want  bool
	}{
		{"write to target", fsnotify.Event{Name: target, Op: fsnotify.Write}, true},
		{"create target", fsnotify.Event{Name: target, Op: fsnotify.Create}, true},
		{"chmod target", fsnotify.Event{Name: target, Op: fsnotify.Chmod}, false},
		{"remove target", fsnotify.Event{Name: target, Op: fsnotify.Remove}, false},
		{"write to sibling", fsnotify.Event{Name: filepath.Join(dir, "other.my"), Op: fsnotify.Write}, false},
		{"write to output", fsnotify.Event{Name: filepath.Join(dir, "prog.ll"), Op: fsnotify.Write}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := fw.shouldProcessEvent(tt.event); got != tt.want {
				t.Errorf("shouldProcessEvent(%v) = %v, want %v", tt.event, got, tt.want)
			}
		})
	}
}

func TestFileWatcher_Watch(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "prog.my")
	if err := os.WriteFile(target, []byte("print(1)\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	fw, err := NewFileWatcher(Config{Path: target, Debounce: 20 * time.Millisecond}, nil)
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changed := make(chan struct{}, 16)
	done := make(chan error, 1)
	go func() {
		done <- fw.Watch(ctx, func() error {
			changed <- struct{}{}
			return nil
		})
	}()

	// The directory may not be registered yet, so keep writing until an
	// event comes through.
	deadline := time.After(5 * time.Second)
	for got := false; !got; {
		if err := os.WriteFile(target, []byte("print(2)\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		select {
		case <-changed:
			got = true
		case <-time.After(100 * time.Millisecond):
		case <-deadline:
			t.Fatal("no change callback within 5s")
		}
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Watch() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Watch did not return after cancel")
	}
}

func TestFileWatcher_WatchTwice(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "prog.my")
	fw, err := NewFileWatcher(Config{Path: target}, nil)
	if err != nil {
		t.Fatal(err)
	}

	started := make(chan struct{})
	go func() {
		_ = fw.Watch(context.Background(), func() error { return nil })
	}()
	go func() {
		for {
			fw.mu.Lock()
			r := fw.running
			fw.mu.Unlock()
			if r {
				close(started)
				return
			}
			time.Sleep(time.Millisecond)
		}
	}()

	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not start")
	}

	if err := fw.Watch(context.Background(), func() error { return nil }); !errors.Is(err, ErrRunning) {
		t.Errorf("second Watch() error = %v, want ErrRunning", err)
	}
	fw.Stop()
}

func TestDebouncer(t *testing.T) {
	d := NewDebouncer(30 * time.Millisecond)
	var calls atomic.Int32

	for i := 0; i < 5; i++ {
		d.Trigger(func() { calls.Add(1) })
		time.Sleep(5 * time.Millisecond)
	}
	time.Sleep(150 * time.Millisecond)

	if got := calls.Load(); got != 1 {
		t.Errorf("callback ran %d times, want 1", got)
	}
}

func TestDebouncer_Stop(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)
	var calls atomic.Int32

	d.Trigger(func() { calls.Add(1) })
	d.Stop()
	d.Trigger(func() { calls.Add(1) })
	time.Sleep(80 * time.Millisecond)

	if got := calls.Load(); got != 0 {
		t.Errorf("callback ran %d times after Stop, want 0", got)
	}
}

func TestFileWatcher_WatchAfterReturn(t *testing.T) {
	dir := t.TempDir()
	fw, err := NewFileWatcher(Config{Path: filepath.Join(dir, "prog.my")}, nil)
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := fw.Watch(ctx, func() error { return nil }); err != nil {
		t.Fatalf("first Watch() error = %v", err)
	}

	if err := fw.Watch(context.Background(), func() error { return nil }); !errors.Is(err, ErrClosed) {
		t.Errorf("second Watch() error = %v, want ErrClosed", err)
	}
	fw.Stop()
}

func TestFileWatcher_WatchAfterStop(t *testing.T) {
	fw, err := NewFileWatcher(Config{Path: filepath.Join(t.TempDir(), "prog.my")}, nil)
	if err != nil {
		t.Fatal(err)
	}
	fw.Stop()

	if err := fw.Watch(context.Background(), func() error { return nil }); !errors.Is(err, ErrClosed) {
		t.Errorf("Watch() after Stop error = %v, want ErrClosed", err)
	}
}
