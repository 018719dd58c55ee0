package util

import "sync"

// Future is a result cell that gets fulfilled exactly once by a producer while
// consumers poll it, block on it, or attach a continuation. The second and any
// later Fulfill calls are ignored.
type Future[V any] struct {
	once  sync.Once
	done  chan struct{}
	mu    sync.Mutex
	value V
	conts []func(V)
}

func NewFuture[V any]() *Future[V] {
	return &Future[V]{done: make(chan struct{})}
}

func (f *Future[V]) Fulfill(value V) {
	f.once.Do(func() {
		f.mu.Lock()
		f.value = value
		conts := f.conts
		f.conts = nil
		f.mu.Unlock()
		close(f.done)
		for _, cont := range conts {
			cont(value)
		}
	})
}

// Poll returns the value and true once fulfilled, the zero value and false before.
func (f *Future[V]) Poll() (V, bool) {
	select {
	case <-f.done:
		return f.value, true
	default:
		var zero V
		return zero, false
	}
}

// Wait blocks until the future is fulfilled.
func (f *Future[V]) Wait() V {
	<-f.done
	return f.value
}

// Done exposes the completion channel for select loops.
func (f *Future[V]) Done() <-chan struct{} {
	return f.done
}

// OnComplete attaches a continuation. It runs on the fulfilling goroutine, or
// immediately on the caller if the value is already there.
func (f *Future[V]) OnComplete(cont func(V)) {
	f.mu.Lock()
	select {
	case <-f.done:
		f.mu.Unlock()
		cont(f.value)
		return
	default:
	}
	f.conts = append(f.conts, cont)
	f.mu.Unlock()
}
