// Copyright (c) 2026, Scenecore Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package store

import (
	"unsafe"

	"cogentcore.org/core/base/errors"
	"cogentcore.org/core/gpu"
	"github.com/cogentcore/webgpu/wgpu"
)

// ComponentStore is a [Store] whose dense record array is mirrored into a
// GPU storage buffer sized to the current capacity. Records must be
// fixed-size, tightly packed types suitable for direct upload.
//
// When the dense array outgrows the capacity, the capacity doubles and
// the mirror becomes a new device buffer: any bind group referencing the
// old buffer is stale from that point on. The store records this in its
// dirty flag, which the owner must poll once per frame via [ComponentStore.Dirty]
// and respond to by rebuilding bindings before the next submission.
type ComponentStore[T any] struct {
	Store[T]

	// Label is used for the device buffer and in log messages.
	Label string

	device   *gpu.Device
	buffer   *wgpu.Buffer
	capacity int
	dirty    bool
}

// NewComponentStore returns a new GPU-mirrored store with the given
// initial capacity (minimum 1). A nil device gives a host-only store
// with full index and dirty bookkeeping but no device buffer.
func NewComponentStore[T any](dev *gpu.Device, label string, capacity int) *ComponentStore[T] {
	capacity = max(capacity, 1)
	cs := &ComponentStore[T]{
		Store:    *NewStore[T](capacity),
		Label:    label,
		device:   dev,
		capacity: capacity,
	}
	cs.createBuffer()
	return cs
}

// RecordSize returns the size of one record in bytes.
func (cs *ComponentStore[T]) RecordSize() int {
	var zero T
	return int(unsafe.Sizeof(zero))
}

// Capacity returns the current capacity, in records, of the device
// buffer mirror.
func (cs *ComponentStore[T]) Capacity() int {
	return cs.capacity
}

// Add inserts or overwrites the record for the given entity, mirroring
// it to the device buffer, and returns its handle. Growth never fails
// the caller: if the dense array outgrows the capacity, the capacity
// doubles, a new buffer is created, and the entire dense array is
// re-uploaded.
func (cs *ComponentStore[T]) Add(e Entity, v T) Handle[T] {
	h := cs.Store.Add(e, v)
	if len(cs.Records) > cs.capacity {
		cs.grow()
		return h
	}
	cs.write(int(h))
	return h
}

// Set overwrites the record for an existing entity, mirroring the
// change. It is equivalent to Add for a live entity.
func (cs *ComponentStore[T]) Set(e Entity, v T) (Handle[T], bool) {
	if !cs.Contains(e) {
		return 0, false
	}
	return cs.Add(e, v), true
}

// Dirty reports whether the device buffer identity has changed since the
// last call, clearing the flag. A true result means any bind group
// referencing this store must be rebuilt before the next draw.
func (cs *ComponentStore[T]) Dirty() bool {
	d := cs.dirty
	cs.dirty = false
	return d
}

// Buffer returns the current device buffer, or nil in host-only mode.
// Callers must only bind it through a path that has checked [ComponentStore.Dirty]
// first; see [ComponentStore.BindGroupEntry].
func (cs *ComponentStore[T]) Buffer() *wgpu.Buffer {
	return cs.buffer
}

// BindGroupEntry returns the bind group entry exposing the store's
// buffer at the given binding, as a read-only storage buffer.
func (cs *ComponentStore[T]) BindGroupEntry(binding uint32) wgpu.BindGroupEntry {
	return wgpu.BindGroupEntry{
		Binding: binding,
		Buffer:  cs.buffer,
		Offset:  0,
		Size:    wgpu.WholeSize,
	}
}

// LayoutEntry returns the bind group layout entry for the store's buffer
// at the given binding, visible to the given shader stages.
func (cs *ComponentStore[T]) LayoutEntry(binding uint32, visibility wgpu.ShaderStage) wgpu.BindGroupLayoutEntry {
	return wgpu.BindGroupLayoutEntry{
		Binding:    binding,
		Visibility: visibility,
		Buffer: wgpu.BufferBindingLayout{
			Type: wgpu.BufferBindingTypeReadOnlyStorage,
		},
	}
}

// Release releases the device buffer.
func (cs *ComponentStore[T]) Release() {
	if cs.buffer == nil {
		return
	}
	cs.buffer.Release()
	cs.buffer = nil
}

func (cs *ComponentStore[T]) createBuffer() {
	if cs.device == nil {
		return
	}
	buf, err := cs.device.Device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: cs.Label,
		Size:  uint64(cs.capacity * cs.RecordSize()),
		Usage: wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst,
	})
	if errors.Log(err) != nil {
		return
	}
	cs.buffer = buf
}

// grow doubles the capacity until the dense array fits, replaces the
// device buffer, and re-uploads the entire dense array. The old buffer
// has no content relationship to the new one, so a full sync is the only
// correct option.
func (cs *ComponentStore[T]) grow() {
	for cs.capacity < len(cs.Records) {
		cs.capacity *= 2
	}
	cs.dirty = true
	if cs.device == nil {
		return
	}
	cs.Release()
	cs.createBuffer()
	cs.writeAll()
}

// write mirrors one record to the device buffer.
func (cs *ComponentStore[T]) write(i int) {
	if cs.buffer == nil {
		return
	}
	sz := cs.RecordSize()
	errors.Log(cs.device.Queue.WriteBuffer(cs.buffer, uint64(i*sz), wgpu.ToBytes(cs.Records[i:i+1])))
}

// writeAll mirrors the entire dense array to the device buffer.
func (cs *ComponentStore[T]) writeAll() {
	if cs.buffer == nil || len(cs.Records) == 0 {
		return
	}
	errors.Log(cs.device.Queue.WriteBuffer(cs.buffer, 0, wgpu.ToBytes(cs.Records)))
}
