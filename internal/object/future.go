package object

import (
	"sync"
	"time"

	"github.com/solisoft/soli-lang-sub001/internal/util/future"
)

// FutureKind tags how a Future's raw background result decodes into an
// Object. Only plain Go data crosses the thread boundary, never a live
// Object, so the decode step always runs on the interpreter's thread.
type FutureKind int

const (
	// FutureValue decodes any JSON-shaped Go value.
	FutureValue FutureKind = iota
	// FutureString expects a raw string.
	FutureString
	// FutureRows expects []map[string]any from a database query.
	FutureRows
	// FutureExec expects the {last_insert_id, rows_affected} result shape.
	FutureExec
)

// Future is a handle to work running on a background goroutine, resolved
// synchronously on first access. Resolution happens at most once: the first
// Resolve blocks and caches the terminal state, later calls return it
// without touching the channel. There is no cancellation; unresolved
// futures are fire-and-forget.
type Future struct {
	Kind FutureKind
	fut  *future.Future[any]

	mu      sync.Mutex
	settled bool
	value   Object
	errMsg  string
}

// NewFuture spawns fn on a background goroutine immediately.
func NewFuture(kind FutureKind, fn func() (any, error)) *Future {
	return &Future{Kind: kind, fut: future.New(fn)}
}

// ResolvedFuture wraps an already-known value; Resolve never blocks.
func ResolvedFuture(val Object) *Future {
	return &Future{settled: true, value: val}
}

func (f *Future) Type() ObjectType { return FUTURE_OBJ }

func (f *Future) Inspect() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.settled {
		return "<future pending>"
	}
	if f.errMsg != "" {
		return "<future failed: " + f.errMsg + ">"
	}
	return "<future " + f.value.Inspect() + ">"
}

// Resolve blocks until the background work finishes, decodes the raw result
// per Kind and transitions to a terminal state. Idempotent.
func (f *Future) Resolve() Object {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.settled {
		if f.errMsg != "" {
			return &Error{Message: f.errMsg}
		}
		return f.value
	}

	raw, err := f.fut.Await()
	f.settled = true
	if err != nil {
		f.errMsg = err.Error()
		return &Error{Message: f.errMsg}
	}

	val := f.decode(raw)
	if IsError(val) {
		f.errMsg = val.(*Error).Message
		return val
	}
	f.value = val
	return val
}

// ResolveTimeout is Resolve bounded by d. The second result reports
// completion; on timeout the future stays pending and can still be
// resolved later.
func (f *Future) ResolveTimeout(d time.Duration) (Object, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.settled {
		if f.errMsg != "" {
			return &Error{Message: f.errMsg}, true
		}
		return f.value, true
	}

	raw, err, ok := f.fut.AwaitTimeout(d)
	if !ok {
		return nil, false
	}

	f.settled = true
	if err != nil {
		f.errMsg = err.Error()
		return &Error{Message: f.errMsg}, true
	}

	val := f.decode(raw)
	if IsError(val) {
		f.errMsg = val.(*Error).Message
		return val, true
	}
	f.value = val
	return val, true
}

func (f *Future) decode(raw any) Object {
	switch f.Kind {
	case FutureString:
		s, ok := raw.(string)
		if !ok {
			return NewError("future expected string result, got %T", raw)
		}
		return &String{Value: s}
	case FutureRows:
		rows, ok := raw.([]map[string]any)
		if !ok {
			return NewError("future expected row set, got %T", raw)
		}
		out := &Array{Elements: make([]Object, 0, len(rows))}
		for _, row := range rows {
			out.Elements = append(out.Elements, GoToObject(row))
		}
		return out
	case FutureExec:
		res, ok := raw.(map[string]any)
		if !ok {
			return NewError("future expected exec result, got %T", raw)
		}
		return GoToObject(res)
	default:
		return GoToObject(raw)
	}
}
