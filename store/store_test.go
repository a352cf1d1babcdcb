// Copyright (c) 2026, Scenecore Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHandleStability(t *testing.T) {
	cs := NewComponentStore[int](nil, "ints", 1)
	e := NewEntity()
	h := cs.Add(e, 42)

	// many unrelated adds, forcing repeated growth
	for i := range 100 {
		cs.Add(NewEntity(), i)
	}
	assert.Greater(t, cs.Capacity(), 64)
	assert.Equal(t, 42, cs.ValueByIndex(h))
	v, ok := cs.Value(e)
	assert.True(t, ok)
	assert.Equal(t, 42, v)
}

func TestGrowthCorrectness(t *testing.T) {
	cs := NewComponentStore[int](nil, "ints", 4)
	ents := make([]Entity, 4)
	for i := range ents {
		ents[i] = NewEntity()
		cs.Add(ents[i], i*10)
	}
	assert.Equal(t, 4, cs.Capacity())
	assert.False(t, cs.Dirty())

	// push past capacity: doubles and flags dirty
	cs.Add(NewEntity(), 99)
	assert.Equal(t, 8, cs.Capacity())
	assert.True(t, cs.Dirty())
	assert.False(t, cs.Dirty(), "Dirty must read-and-clear")

	for i, e := range ents {
		v, ok := cs.Value(e)
		assert.True(t, ok)
		assert.Equal(t, i*10, v)
	}
}

func TestAddOverwritesInPlace(t *testing.T) {
	cs := NewComponentStore[string](nil, "strings", 4)
	e := NewEntity()
	h1 := cs.Add(e, "a")
	h2 := cs.Add(e, "b")
	assert.Equal(t, h1, h2)
	assert.Equal(t, 1, cs.Len())
	v, _ := cs.Value(e)
	assert.Equal(t, "b", v)
}

func TestFreeSlotReuse(t *testing.T) {
	cs := NewComponentStore[int](nil, "ints", 8)
	a, b := NewEntity(), NewEntity()
	ha := cs.Add(a, 1)
	cs.Add(b, 2)

	assert.True(t, cs.Delete(a))
	assert.False(t, cs.Delete(a))
	// content left in place until the slot is reused
	assert.Equal(t, 1, cs.ValueByIndex(ha))

	c := NewEntity()
	hc := cs.Add(c, 3)
	assert.Equal(t, ha, hc, "freed slot is reused before appending")
	assert.Equal(t, 2, cs.DenseLen())
}

func TestSetRequiresLiveEntity(t *testing.T) {
	cs := NewComponentStore[int](nil, "ints", 4)
	e := NewEntity()
	_, ok := cs.Set(e, 5)
	assert.False(t, ok)
	h := cs.Add(e, 5)
	h2, ok := cs.Set(e, 6)
	assert.True(t, ok)
	assert.Equal(t, h, h2)
	assert.Equal(t, 6, cs.ValueByIndex(h))
}

func TestDoIndexedSkipsDead(t *testing.T) {
	st := NewStore[int](4)
	a, b, c := NewEntity(), NewEntity(), NewEntity()
	st.Add(a, 1)
	st.Add(b, 2)
	st.Add(c, 3)
	st.Delete(b)

	var got []int
	st.DoIndexed(func(i int, e Entity, v int) {
		got = append(got, v)
	})
	assert.Equal(t, []int{1, 3}, got)
}

func TestRelationIdempotence(t *testing.T) {
	rs := NewRelationStore(nil, "rel", 2)
	rs.Link(1, 7)
	rs.Link(3, 9)

	b, ok := rs.Mapping(1)
	assert.True(t, ok)
	assert.Equal(t, uint32(7), b)

	// re-linking overwrites, nothing else changes
	rs.Link(1, 8)
	b, _ = rs.Mapping(1)
	assert.Equal(t, uint32(8), b)
	b, _ = rs.Mapping(3)
	assert.Equal(t, uint32(9), b)

	// defaulted entries resolve to the slot-0 fallback
	b, ok = rs.Mapping(2)
	assert.True(t, ok)
	assert.Equal(t, uint32(0), b)

	// never linked at all
	_, ok = rs.Mapping(4)
	assert.False(t, ok)
}

func TestRelationGrowth(t *testing.T) {
	rs := NewRelationStore(nil, "rel", 2)
	rs.Link(0, 1)
	rs.Link(1, 2)
	assert.False(t, rs.Dirty())
	rs.Link(5, 3)
	assert.Equal(t, 6, rs.Len())
	assert.True(t, rs.Dirty())
	b, _ := rs.Mapping(5)
	assert.Equal(t, uint32(3), b)
	b, _ = rs.Mapping(1)
	assert.Equal(t, uint32(2), b)
}

func TestEntityUniqueness(t *testing.T) {
	seen := map[Entity]bool{}
	for range 1000 {
		e := NewEntity()
		assert.False(t, e.IsNil())
		assert.False(t, seen[e])
		seen[e] = true
	}
}
