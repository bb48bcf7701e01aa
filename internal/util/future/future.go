package future

import (
	"sync"
	"time"
)

type result[T any] struct {
	v   T
	err error
}

// Future is a single-shot result that completes exactly once. The work is
// started eagerly; dropping the handle does not cancel it.
type Future[T any] struct {
	doneChannel chan struct{}
	res         result[T]
	once        sync.Once
}

// New runs fn in a goroutine and completes the Future when fn returns.
func New[T any](fn func() (T, error)) *Future[T] {
	f := &Future[T]{doneChannel: make(chan struct{})}
	go func() {
		v, err := fn()
		f.complete(v, err)
	}()
	return f
}

// Await blocks until completion and returns the result.
func (f *Future[T]) Await() (T, error) {
	<-f.doneChannel
	return f.res.v, f.res.err
}

// AwaitTimeout waits up to d for completion.
// Returns (value, err, ok). ok=false if timed out.
func (f *Future[T]) AwaitTimeout(d time.Duration) (T, error, bool) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-f.doneChannel:
		return f.res.v, f.res.err, true
	case <-timer.C:
		var zero T
		return zero, nil, false
	}
}

// complete sets the result exactly once and closes doneChannel.
func (f *Future[T]) complete(v T, err error) {
	f.once.Do(func() {
		f.res = result[T]{v: v, err: err}
		close(f.doneChannel)
	})
}
