package object

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestFutureResolveOnce(t *testing.T) {
	var calls atomic.Int64
	fut := NewFuture(FutureString, func() (any, error) {
		calls.Add(1)
		time.Sleep(10 * time.Millisecond)
		return "done", nil
	})

	first := fut.Resolve()
	second := fut.Resolve()

	if first.Inspect() != "done" || second.Inspect() != "done" {
		t.Fatalf("wrong resolution: %s / %s", first.Inspect(), second.Inspect())
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("background work ran %d times, want 1", got)
	}
}

func TestFutureFailureIsCached(t *testing.T) {
	fut := NewFuture(FutureValue, func() (any, error) {
		return nil, errors.New("connection refused")
	})

	for i := 0; i < 2; i++ {
		res := fut.Resolve()
		errObj, ok := res.(*Error)
		if !ok {
			t.Fatalf("expected Error, got %s", res.Type())
		}
		if errObj.Message != "connection refused" {
			t.Fatalf("error message not surfaced verbatim: %q", errObj.Message)
		}
	}
}

func TestFutureDecodeKinds(t *testing.T) {
	tests := []struct {
		name     string
		kind     FutureKind
		raw      any
		expected string
	}{
		{"value scalar", FutureValue, 42, "42"},
		{"value nested", FutureValue, map[string]any{"a": []any{1.0, 2.0}}, "{a: [1, 2]}"},
		{"string", FutureString, "hello", "hello"},
		{"rows", FutureRows, []map[string]any{{"id": int64(1)}}, "[{id: 1}]"},
		{"exec", FutureExec, map[string]any{"last_insert_id": int64(5), "rows_affected": int64(1)}, "{last_insert_id: 5, rows_affected: 1}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := tt.raw
			fut := NewFuture(tt.kind, func() (any, error) { return raw, nil })
			res := fut.Resolve()
			if IsError(res) {
				t.Fatalf("unexpected error: %s", res.Inspect())
			}
			if res.Inspect() != tt.expected {
				t.Errorf("wrong decode. expected=%q, got=%q", tt.expected, res.Inspect())
			}
		})
	}
}

func TestResolvedFuture(t *testing.T) {
	fut := ResolvedFuture(&Integer{Value: 7})
	if got := fut.Resolve(); got.(*Integer).Value != 7 {
		t.Fatalf("resolved future lost its value")
	}
}

func TestResolvePassthrough(t *testing.T) {
	val := &Integer{Value: 1}
	if Resolve(val) != val {
		t.Errorf("Resolve must be identity for non-futures")
	}

	fut := ResolvedFuture(&String{Value: "x"})
	if Resolve(fut).Inspect() != "x" {
		t.Errorf("Resolve must unwrap futures")
	}
}

func TestResolveTimeout(t *testing.T) {
	fut := NewFuture(FutureValue, func() (any, error) {
		time.Sleep(50 * time.Millisecond)
		return int64(7), nil
	})

	if _, done := fut.ResolveTimeout(time.Millisecond); done {
		t.Fatalf("expected timeout")
	}

	// a timed-out wait leaves the future pending and resolvable
	if got := fut.Resolve(); got.(*Integer).Value != 7 {
		t.Fatalf("future not resolvable after timeout: %s", got.Inspect())
	}

	val, done := fut.ResolveTimeout(time.Millisecond)
	if !done || val.(*Integer).Value != 7 {
		t.Fatalf("settled future must return its cached value")
	}
}

func TestResolveTimeoutFailure(t *testing.T) {
	fut := NewFuture(FutureValue, func() (any, error) {
		return nil, errors.New("connection refused")
	})

	val, done := fut.ResolveTimeout(time.Second)
	if !done {
		t.Fatalf("expected completion")
	}
	errObj, ok := val.(*Error)
	if !ok || errObj.Message != "connection refused" {
		t.Fatalf("failure not surfaced: %v", val)
	}
}

func TestFutureInspectStates(t *testing.T) {
	blocked := make(chan struct{})
	fut := NewFuture(FutureString, func() (any, error) {
		<-blocked
		return "late", nil
	})

	if got := fut.Inspect(); got != "<future pending>" {
		t.Errorf("pending inspect wrong: %q", got)
	}

	close(blocked)
	fut.Resolve()
	if got := fut.Inspect(); got != "<future late>" {
		t.Errorf("settled inspect wrong: %q", got)
	}
}
