package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func TestDebouncerCoalesces(t *testing.T) {
	d := NewDebouncer(40 * time.Millisecond)
	var calls atomic.Int32
	for i := 0; i < 8; i++ {
		d.Trigger(func() { calls.Add(1) })
		time.Sleep(5 * time.Millisecond)
	}
	time.Sleep(120 * time.Millisecond)
	if got := calls.Load(); got != 1 {
		t.Errorf("calls = %d, want 1", got)
	}
}

func TestDebouncerCancel(t *testing.T) {
	d := NewDebouncer(30 * time.Millisecond)
	var called atomic.Bool
	d.Trigger(func() { called.Store(true) })
	d.Cancel()
	time.Sleep(80 * time.Millisecond)
	if called.Load() {
		t.Error("callback ran after Cancel()")
	}
}

func TestDebouncerDefault(t *testing.T) {
	if got := NewDebouncer(0).Duration(); got != DefaultDebounce {
		t.Errorf("Duration() = %v, want %v", got, DefaultDebounce)
	}
}

func waitFor[T any](t *testing.T, ch <-chan T, what string) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(3 * time.Second):
		t.Fatalf("timed out waiting for %s", what)
	}
	var zero T
	return zero
}

func TestWatcherChanges(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "analysis.json")
	if err := os.WriteFile(path, []byte(`{}`), 0o644); err != nil {
		t.Fatal(err)
	}

	w, err := New(path, WithDebounce(20*time.Millisecond))
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	defer w.Stop()

	if err := w.Start(ctx); !errors.Is(err, ErrAlreadyStarted) {
		t.Errorf("second Start() = %v, want ErrAlreadyStarted", err)
	}

	// unrelated files in the same directory are ignored
	if err := os.WriteFile(filepath.Join(dir, "other.json"), []byte(`{}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(`{"nodes":[]}`), 0o644); err != nil {
		t.Fatal(err)
	}
	waitFor(t, w.Changes(), "change")

	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	if err := waitFor(t, w.Errors(), "removal"); !errors.Is(err, ErrRemoved) {
		t.Errorf("error = %v, want ErrRemoved", err)
	}
}

func TestWatcherRenameSave(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "analysis.json")
	if err := os.WriteFile(path, []byte(`{}`), 0o644); err != nil {
		t.Fatal(err)
	}

	w, err := New(path, WithDebounce(20*time.Millisecond))
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(t.Context()); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	defer w.Stop()

	// save the way editors do: write a sibling, then rename it over the file
	for i := range 2 {
		tmp := filepath.Join(dir, ".analysis.json.swp")
		if err := os.WriteFile(tmp, []byte(`{"nodes":[]}`), 0o644); err != nil {
			t.Fatal(err)
		}
		if err := os.Rename(tmp, path); err != nil {
			t.Fatal(err)
		}
		waitFor(t, w.Changes(), "change after rename save")

		select {
		case err := <-w.Errors():
			t.Fatalf("save %d reported error %v", i, err)
		default:
		}
	}

	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	if err := waitFor(t, w.Errors(), "removal after rename saves"); !errors.Is(err, ErrRemoved) {
		t.Errorf("error = %v, want ErrRemoved", err)
	}
}

func TestWatcherStopIdempotent(t *testing.T) {
	w, err := New(filepath.Join(t.TempDir(), "a.json"))
	if err != nil {
		t.Fatal(err)
	}
	w.Stop()
	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	w.Stop()
	w.Stop()
}
