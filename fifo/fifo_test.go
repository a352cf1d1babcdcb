// Copyright (c) 2026, Scenecore Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fifo

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSendRecvOrder(t *testing.T) {
	q := New[int]()
	for i := range 100 {
		assert.True(t, q.Send(i))
	}
	assert.Equal(t, 100, q.Len())
	for i := range 100 {
		v, ok := q.TryRecv()
		assert.True(t, ok)
		assert.Equal(t, i, v)
	}
	_, ok := q.TryRecv()
	assert.False(t, ok)
	assert.Equal(t, 0, q.Len())
}

func TestRecvBlocks(t *testing.T) {
	q := New[string]()
	done := make(chan string)
	go func() {
		v, ok := q.Recv()
		assert.True(t, ok)
		done <- v
	}()
	q.Send("hello")
	assert.Equal(t, "hello", <-done)
}

func TestCloseDisconnects(t *testing.T) {
	q := New[int]()
	q.Send(1)
	q.Send(2)
	q.Close()
	assert.False(t, q.Send(3))

	// queued values remain receivable after close
	v, ok := q.Recv()
	assert.True(t, ok)
	assert.Equal(t, 1, v)
	v, ok = q.Recv()
	assert.True(t, ok)
	assert.Equal(t, 2, v)
	_, ok = q.Recv()
	assert.False(t, ok)
}

func TestConcurrentSenders(t *testing.T) {
	q := New[int]()
	nsend := 50
	per := 200
	var wg sync.WaitGroup
	for range nsend {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range per {
				q.Send(i)
			}
		}()
	}
	got := 0
	recvDone := make(chan struct{})
	go func() {
		for {
			if _, ok := q.Recv(); !ok {
				break
			}
			got++
		}
		close(recvDone)
	}()
	wg.Wait()
	q.Close()
	<-recvDone
	assert.Equal(t, nsend*per, got)
}
