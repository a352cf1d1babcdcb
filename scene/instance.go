// Copyright (c) 2026, Scenecore Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package scene

import (
	"unsafe"

	"cogentcore.org/core/base/errors"
	"cogentcore.org/core/gpu"
	"github.com/cogentcore/webgpu/wgpu"
)

// Instance is one per-draw record: the transform slot and the normal
// slot of the instanced node. 8 bytes, tightly packed.
type Instance struct {
	Transform uint32
	Normal    uint32
}

// InstancePool is a ring-buffer device array of [Instance] records.
// Batch rebuilds upload each batch's records contiguously; when an
// upload would run past the end, the cursor wraps to 0. Records from
// two rebuild generations may briefly coexist, which is safe because
// batches are fully rebuilt before every use, so a stale tail is never
// read.
type InstancePool struct {
	// Records mirrors the device array, indexed by slot.
	Records []Instance

	device   *gpu.Device
	buffer   *wgpu.Buffer
	capacity int
	cursor   int
	dirty    bool
}

// NewInstancePool returns a new pool with the given capacity in records
// (minimum 1). A nil device gives a host-only pool.
func NewInstancePool(dev *gpu.Device, capacity int) *InstancePool {
	capacity = max(capacity, 1)
	ip := &InstancePool{
		Records:  make([]Instance, capacity),
		device:   dev,
		capacity: capacity,
	}
	ip.createBuffer()
	return ip
}

// Capacity returns the pool capacity in records.
func (ip *InstancePool) Capacity() int {
	return ip.capacity
}

// Cursor returns the next write position.
func (ip *InstancePool) Cursor() int {
	return ip.cursor
}

// Upload writes the records contiguously at the cursor and returns the
// offset of the first one. If the records would run past the end of the
// pool, the cursor wraps to 0 first; if they exceed the capacity
// entirely, the pool grows like a component store (doubled capacity,
// new buffer, dirty flag).
func (ip *InstancePool) Upload(recs []Instance) uint32 {
	if len(recs) == 0 {
		return uint32(ip.cursor)
	}
	if len(recs) > ip.capacity {
		ip.grow(len(recs))
	}
	if ip.cursor+len(recs) > ip.capacity {
		ip.cursor = 0
	}
	off := ip.cursor
	copy(ip.Records[off:], recs)
	ip.cursor += len(recs)
	ip.write(off, len(recs))
	return uint32(off)
}

// Dirty reports whether the device buffer identity has changed since
// the last call, clearing the flag.
func (ip *InstancePool) Dirty() bool {
	d := ip.dirty
	ip.dirty = false
	return d
}

// Buffer returns the current device buffer, or nil in host-only mode.
func (ip *InstancePool) Buffer() *wgpu.Buffer {
	return ip.buffer
}

// BindGroupEntry returns the bind group entry exposing the pool at the
// given binding, as a read-only storage buffer.
func (ip *InstancePool) BindGroupEntry(binding uint32) wgpu.BindGroupEntry {
	return wgpu.BindGroupEntry{
		Binding: binding,
		Buffer:  ip.buffer,
		Offset:  0,
		Size:    wgpu.WholeSize,
	}
}

// LayoutEntry returns the bind group layout entry for the pool at the
// given binding.
func (ip *InstancePool) LayoutEntry(binding uint32, visibility wgpu.ShaderStage) wgpu.BindGroupLayoutEntry {
	return wgpu.BindGroupLayoutEntry{
		Binding:    binding,
		Visibility: visibility,
		Buffer: wgpu.BufferBindingLayout{
			Type: wgpu.BufferBindingTypeReadOnlyStorage,
		},
	}
}

// Release releases the device buffer.
func (ip *InstancePool) Release() {
	if ip.buffer == nil {
		return
	}
	ip.buffer.Release()
	ip.buffer = nil
}

func (ip *InstancePool) recordSize() int {
	var zero Instance
	return int(unsafe.Sizeof(zero))
}

func (ip *InstancePool) createBuffer() {
	if ip.device == nil {
		return
	}
	buf, err := ip.device.Device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "instance-pool",
		Size:  uint64(ip.capacity * ip.recordSize()),
		Usage: wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst,
	})
	if errors.Log(err) != nil {
		return
	}
	ip.buffer = buf
}

func (ip *InstancePool) grow(n int) {
	for ip.capacity < n {
		ip.capacity *= 2
	}
	old := ip.Records
	ip.Records = make([]Instance, ip.capacity)
	copy(ip.Records, old)
	ip.cursor = 0
	ip.dirty = true
	if ip.device == nil {
		return
	}
	ip.Release()
	ip.createBuffer()
	// the new buffer starts zeroed; re-mirror the surviving records
	ip.write(0, len(old))
}

func (ip *InstancePool) write(off, n int) {
	if ip.buffer == nil {
		return
	}
	sz := ip.recordSize()
	errors.Log(ip.device.Queue.WriteBuffer(ip.buffer, uint64(off*sz), wgpu.ToBytes(ip.Records[off:off+n])))
}
