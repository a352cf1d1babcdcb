// Copyright (c) 2026, Scenecore Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package fifo provides an unbounded FIFO queue used for the command and
// event channels between the control and render contexts. Senders never
// block; the receiver can block until a value or until the queue is closed.
package fifo

import (
	"sync"
	"sync/atomic"
)

// Queue is an unbounded lock-free FIFO freelist-based queue.
// Use [New] to create one.
// It is based on https://github.com/fyne-io/fyne/blob/master/internal/async/queue_canvasobject.go
type Queue[T any] struct {
	head atomic.Pointer[node[T]]
	tail atomic.Pointer[node[T]]
	len  atomic.Uint64

	// ready has capacity 1 and is signaled after each Send,
	// waking a receiver blocked in Recv.
	ready chan struct{}

	// done is closed by Close.
	done      chan struct{}
	closeOnce sync.Once

	pool sync.Pool
}

type node[T any] struct {
	next atomic.Pointer[node[T]]
	v    T
}

// New returns a new empty queue, ready for use.
func New[T any]() *Queue[T] {
	q := &Queue[T]{
		ready: make(chan struct{}, 1),
		done:  make(chan struct{}),
	}
	q.pool.New = func() any { return &node[T]{} }
	head := &node[T]{}
	q.head.Store(head)
	q.tail.Store(head)
	return q
}

// Send adds a value to the end of the queue without blocking.
// It reports whether the value was accepted: a closed queue
// rejects new values.
func (q *Queue[T]) Send(v T) bool {
	select {
	case <-q.done:
		return false
	default:
	}
	i := q.pool.Get().(*node[T])
	i.next.Store(nil)
	i.v = v

	var last, lastnext *node[T]
	for {
		last = q.tail.Load()
		lastnext = last.next.Load()
		if q.tail.Load() != last {
			continue
		}
		if lastnext == nil {
			if last.next.CompareAndSwap(lastnext, i) {
				q.tail.CompareAndSwap(last, i)
				q.len.Add(1)
				break
			}
		} else {
			q.tail.CompareAndSwap(last, lastnext)
		}
	}
	select {
	case q.ready <- struct{}{}:
	default:
	}
	return true
}

// TryRecv removes and returns the value at the front of the queue
// without blocking. It reports false if the queue is currently empty.
func (q *Queue[T]) TryRecv() (T, bool) {
	var first, last, firstnext *node[T]
	for {
		first = q.head.Load()
		last = q.tail.Load()
		firstnext = first.next.Load()
		if first != q.head.Load() {
			continue
		}
		if first == last {
			if firstnext == nil {
				var zero T
				return zero, false
			}
			q.tail.CompareAndSwap(last, firstnext)
		} else {
			v := firstnext.v
			if q.head.CompareAndSwap(first, firstnext) {
				q.len.Add(^uint64(0))
				var zero T
				first.v = zero
				q.pool.Put(first)
				return v, true
			}
		}
	}
}

// Recv removes and returns the value at the front of the queue,
// blocking until one is available. It reports false only when the
// queue has been closed and fully drained, which the receiver must
// treat as a disconnect from the sending side.
func (q *Queue[T]) Recv() (T, bool) {
	for {
		if v, ok := q.TryRecv(); ok {
			return v, true
		}
		select {
		case <-q.ready:
		case <-q.done:
			// drain anything that raced with Close
			if v, ok := q.TryRecv(); ok {
				return v, true
			}
			var zero T
			return zero, false
		}
	}
}

// Close marks the queue closed. Values already queued can still be
// received; subsequent Send calls are rejected. Close is idempotent
// and safe to call from any goroutine.
func (q *Queue[T]) Close() {
	q.closeOnce.Do(func() { close(q.done) })
}

// Len returns the number of values currently queued.
func (q *Queue[T]) Len() int {
	return int(q.len.Load())
}
