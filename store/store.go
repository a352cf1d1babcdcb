// Copyright (c) 2026, Scenecore Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package store

// Store is a growable typed store of fixed-size records with stable
// integer handles and free-list slot reuse. It is the host-only variant;
// [ComponentStore] adds the GPU mirror. Every live entity maps to exactly
// one slot, and every slot is either live or on the free list exactly
// once. Deleting an entity releases its slot but leaves the record
// content in place until the slot is reused.
type Store[T any] struct {
	// Records is the dense record array, indexed by slot.
	Records []T

	// entity occupying each slot; stale once the slot is freed.
	entities []Entity

	index map[Entity]int
	free  []int
}

// NewStore returns a new host-only store. The capacity is a hint for the
// initial record allocation.
func NewStore[T any](capacity int) *Store[T] {
	capacity = max(capacity, 1)
	return &Store[T]{
		Records:  make([]T, 0, capacity),
		entities: make([]Entity, 0, capacity),
		index:    make(map[Entity]int, capacity),
	}
}

// Add inserts a record for the given entity and returns its handle.
// If the entity already has a record it is overwritten in place and the
// existing handle returned. Otherwise a free slot is reused, or the dense
// array is appended to.
func (st *Store[T]) Add(e Entity, v T) Handle[T] {
	if i, ok := st.index[e]; ok {
		st.Records[i] = v
		return Handle[T](i)
	}
	var i int
	if n := len(st.free); n > 0 {
		i = st.free[n-1]
		st.free = st.free[:n-1]
		st.Records[i] = v
		st.entities[i] = e
	} else {
		i = len(st.Records)
		st.Records = append(st.Records, v)
		st.entities = append(st.entities, e)
	}
	st.index[e] = i
	return Handle[T](i)
}

// Delete releases the entity's slot onto the free list, reporting whether
// the entity had a record. The record content is left in place.
func (st *Store[T]) Delete(e Entity) bool {
	i, ok := st.index[e]
	if !ok {
		return false
	}
	delete(st.index, e)
	st.free = append(st.free, i)
	return true
}

// Value returns the record for the given entity.
func (st *Store[T]) Value(e Entity) (T, bool) {
	i, ok := st.index[e]
	if !ok {
		var zero T
		return zero, false
	}
	return st.Records[i], true
}

// ValueByIndex returns the record at the given handle. The handle must be
// live; resolving a handle after its record's entity was deleted returns
// whatever currently occupies the slot.
func (st *Store[T]) ValueByIndex(h Handle[T]) T {
	return st.Records[h]
}

// IndexOf returns the handle for the given entity.
func (st *Store[T]) IndexOf(e Entity) (Handle[T], bool) {
	i, ok := st.index[e]
	return Handle[T](i), ok
}

// Contains reports whether the entity has a live record.
func (st *Store[T]) Contains(e Entity) bool {
	_, ok := st.index[e]
	return ok
}

// Len returns the number of live records.
func (st *Store[T]) Len() int {
	return len(st.index)
}

// DenseLen returns the length of the dense record array, including
// freed slots.
func (st *Store[T]) DenseLen() int {
	return len(st.Records)
}

// DoIndexed calls fn for every live record in slot order, which makes
// iteration deterministic for a fixed store state.
func (st *Store[T]) DoIndexed(fn func(i int, e Entity, v T)) {
	for i, e := range st.entities {
		if j, ok := st.index[e]; !ok || j != i {
			continue
		}
		fn(i, e, st.Records[i])
	}
}
