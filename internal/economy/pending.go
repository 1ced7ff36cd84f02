// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tollgate Contributors

package economy

import (
	"context"

	"github.com/samber/oops"
)

// Pending is a single-assignment deferred result. Producers resolve it
// exactly once; any number of consumers may await it. A Pending never
// carries both a value and an error.
type Pending[T any] struct {
	done chan struct{}
	val  T
	err  error
}

// NewPending returns an unresolved Pending. Callers that hold the
// producer side resolve it with Resolve or Fail.
func NewPending[T any]() *Pending[T] {
	return &Pending[T]{done: make(chan struct{})}
}

// Resolved returns a Pending that already holds val.
func Resolved[T any](val T) *Pending[T] {
	p := NewPending[T]()
	p.Resolve(val)
	return p
}

// Failed returns a Pending that already holds err.
func Failed[T any](err error) *Pending[T] {
	p := NewPending[T]()
	p.Fail(err)
	return p
}

// Go runs fn on its own goroutine and returns a Pending resolved with
// its result.
func Go[T any](fn func() (T, error)) *Pending[T] {
	p := NewPending[T]()
	go func() {
		v, err := fn()
		if err != nil {
			p.Fail(err)
			return
		}
		p.Resolve(v)
	}()
	return p
}

// Resolve completes the Pending with a value. Panics if already
// resolved; a Pending has exactly one producer.
func (p *Pending[T]) Resolve(val T) {
	p.val = val
	close(p.done)
}

// Fail completes the Pending with an error. Panics if already resolved.
func (p *Pending[T]) Fail(err error) {
	p.err = err
	close(p.done)
}

// Done returns a channel closed when the result is available.
func (p *Pending[T]) Done() <-chan struct{} {
	return p.done
}

// Await blocks until the result is available or ctx is done. On ctx
// expiry the Pending itself is untouched and may still resolve later.
func (p *Pending[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-p.done:
		return p.val, p.err
	case <-ctx.Done():
		var zero T
		return zero, oops.In("economy").
			Code("PROVIDER_FAILURE").
			Wrapf(ctx.Err(), "awaiting deferred result")
	}
}

// Then returns a Pending holding fn applied to p's value. Errors pass
// through without invoking fn.
func Then[T, U any](p *Pending[T], fn func(T) U) *Pending[U] {
	out := NewPending[U]()
	go func() {
		<-p.done
		if p.err != nil {
			out.Fail(p.err)
			return
		}
		out.Resolve(fn(p.val))
	}()
	return out
}

// Chain returns a Pending that resolves with the result of the Pending
// fn produces from p's value. Errors short-circuit.
func Chain[T, U any](p *Pending[T], fn func(T) *Pending[U]) *Pending[U] {
	out := NewPending[U]()
	go func() {
		<-p.done
		if p.err != nil {
			out.Fail(p.err)
			return
		}
		next := fn(p.val)
		<-next.done
		if next.err != nil {
			out.Fail(next.err)
			return
		}
		out.Resolve(next.val)
	}()
	return out
}
