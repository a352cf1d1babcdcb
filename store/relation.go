// Copyright (c) 2026, Scenecore Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package store

import (
	"cogentcore.org/core/base/errors"
	"cogentcore.org/core/base/slicesx"
	"cogentcore.org/core/gpu"
	"github.com/cogentcore/webgpu/wgpu"
)

// RelationStore maps slots of one component store to slots of another,
// e.g. render-node to transform, or light to transform. The mapping is a
// dense uint32 array indexed by the source slot, mirrored into a GPU
// storage buffer with the same growth and dirty semantics as
// [ComponentStore]. Unset entries default to 0, so slot 0 of the target
// store must always hold a valid, harmless fallback record (such as an
// identity transform).
//
// A relation is never unlinked: deleting a still-referenced target
// record is the caller's responsibility to avoid.
type RelationStore struct {
	// Label is used for the device buffer and in log messages.
	Label string

	mapping  []uint32
	device   *gpu.Device
	buffer   *wgpu.Buffer
	capacity int
	dirty    bool
}

// NewRelationStore returns a new relation store with the given initial
// capacity (minimum 1). A nil device gives a host-only store.
func NewRelationStore(dev *gpu.Device, label string, capacity int) *RelationStore {
	capacity = max(capacity, 1)
	rs := &RelationStore{
		Label:    label,
		mapping:  make([]uint32, 0, capacity),
		device:   dev,
		capacity: capacity,
	}
	rs.createBuffer()
	return rs
}

// Link records that source slot a maps to target slot b. Linking is
// idempotent: re-linking the same a overwrites the previous mapping.
// The mapping array is extended as needed, with intermediate entries
// defaulting to 0.
func (rs *RelationStore) Link(a, b uint32) {
	if int(a) >= len(rs.mapping) {
		rs.mapping = slicesx.SetLength(rs.mapping, int(a)+1)
	}
	rs.mapping[a] = b
	if len(rs.mapping) > rs.capacity {
		rs.grow()
		return
	}
	rs.write(int(a))
}

// Mapping returns the target slot for source slot a. It reports false
// only if a is beyond the mapping, i.e. was never linked; entries that
// were defaulted by intermediate growth resolve to the slot-0 fallback.
func (rs *RelationStore) Mapping(a uint32) (uint32, bool) {
	if int(a) >= len(rs.mapping) {
		return 0, false
	}
	return rs.mapping[a], true
}

// Len returns the length of the mapping array.
func (rs *RelationStore) Len() int {
	return len(rs.mapping)
}

// Dirty reports whether the device buffer identity has changed since the
// last call, clearing the flag.
func (rs *RelationStore) Dirty() bool {
	d := rs.dirty
	rs.dirty = false
	return d
}

// Buffer returns the current device buffer, or nil in host-only mode.
func (rs *RelationStore) Buffer() *wgpu.Buffer {
	return rs.buffer
}

// BindGroupEntry returns the bind group entry exposing the mapping at
// the given binding, as a read-only storage buffer.
func (rs *RelationStore) BindGroupEntry(binding uint32) wgpu.BindGroupEntry {
	return wgpu.BindGroupEntry{
		Binding: binding,
		Buffer:  rs.buffer,
		Offset:  0,
		Size:    wgpu.WholeSize,
	}
}

// LayoutEntry returns the bind group layout entry for the mapping buffer
// at the given binding, visible to the given shader stages.
func (rs *RelationStore) LayoutEntry(binding uint32, visibility wgpu.ShaderStage) wgpu.BindGroupLayoutEntry {
	return wgpu.BindGroupLayoutEntry{
		Binding:    binding,
		Visibility: visibility,
		Buffer: wgpu.BufferBindingLayout{
			Type: wgpu.BufferBindingTypeReadOnlyStorage,
		},
	}
}

// Release releases the device buffer.
func (rs *RelationStore) Release() {
	if rs.buffer == nil {
		return
	}
	rs.buffer.Release()
	rs.buffer = nil
}

func (rs *RelationStore) createBuffer() {
	if rs.device == nil {
		return
	}
	buf, err := rs.device.Device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: rs.Label,
		Size:  uint64(rs.capacity * 4),
		Usage: wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst,
	})
	if errors.Log(err) != nil {
		return
	}
	rs.buffer = buf
}

func (rs *RelationStore) grow() {
	for rs.capacity < len(rs.mapping) {
		rs.capacity *= 2
	}
	rs.dirty = true
	if rs.device == nil {
		return
	}
	rs.Release()
	rs.createBuffer()
	if rs.buffer == nil {
		return
	}
	errors.Log(rs.device.Queue.WriteBuffer(rs.buffer, 0, wgpu.ToBytes(rs.mapping)))
}

func (rs *RelationStore) write(i int) {
	if rs.buffer == nil {
		return
	}
	errors.Log(rs.device.Queue.WriteBuffer(rs.buffer, uint64(i*4), wgpu.ToBytes(rs.mapping[i:i+1])))
}
