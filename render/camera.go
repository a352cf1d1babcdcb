// Copyright (c) 2026, Scenecore Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package render

import (
	"log/slog"
	"unsafe"

	"cogentcore.org/core/base/errors"
	"cogentcore.org/core/gpu"
	"cogentcore.org/core/math32"
	"github.com/cogentcore/webgpu/wgpu"
)

// CameraUniform is the packed camera state consumed by the shaders.
type CameraUniform struct {
	Position          math32.Vector4
	ViewProjection    math32.Matrix4
	InverseView       math32.Matrix4
	InverseProjection math32.Matrix4
}

// Camera holds the current camera uniform and its device buffer in bind
// group 0. The buffer is created once at a fixed size, so unlike the
// component stores it never goes stale.
type Camera struct {
	Uniform CameraUniform

	device    *gpu.Device
	buffer    *wgpu.Buffer
	layout    *wgpu.BindGroupLayout
	bindGroup *wgpu.BindGroup
}

// NewCamera returns a new camera with an identity view and projection.
// A nil device gives a host-only camera.
func NewCamera(dev *gpu.Device) *Camera {
	ca := &Camera{device: dev}
	ca.Uniform.Position = math32.Vec4(0, 0, 0, 1)
	ca.Uniform.ViewProjection.SetIdentity()
	ca.Uniform.InverseView.SetIdentity()
	ca.Uniform.InverseProjection.SetIdentity()
	ca.initGPU()
	ca.write()
	return ca
}

// Set replaces the camera state from the given position, view, and
// projection matrices and uploads the uniform.
func (ca *Camera) Set(pos math32.Vector3, view, projection *math32.Matrix4) {
	ca.Uniform.Position = math32.Vec4(pos.X, pos.Y, pos.Z, 1)
	ca.Uniform.ViewProjection.MulMatrices(projection, view)
	if inv, err := view.Inverse(); err == nil {
		ca.Uniform.InverseView = *inv
	} else {
		slog.Warn("render: non-invertible view matrix", "err", err)
		ca.Uniform.InverseView.SetIdentity()
	}
	if inv, err := projection.Inverse(); err == nil {
		ca.Uniform.InverseProjection = *inv
	} else {
		slog.Warn("render: non-invertible projection matrix", "err", err)
		ca.Uniform.InverseProjection.SetIdentity()
	}
	ca.write()
}

// Layout returns the camera bind group layout, nil if host-only.
func (ca *Camera) Layout() *wgpu.BindGroupLayout {
	return ca.layout
}

// BindGroup returns the camera bind group, nil if host-only.
func (ca *Camera) BindGroup() *wgpu.BindGroup {
	return ca.bindGroup
}

// Release releases the device resources.
func (ca *Camera) Release() {
	if ca.bindGroup != nil {
		ca.bindGroup.Release()
		ca.bindGroup = nil
	}
	if ca.layout != nil {
		ca.layout.Release()
		ca.layout = nil
	}
	if ca.buffer != nil {
		ca.buffer.Release()
		ca.buffer = nil
	}
}

func (ca *Camera) initGPU() {
	if ca.device == nil {
		return
	}
	buf, err := ca.device.Device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "camera",
		Size:  uint64(unsafe.Sizeof(ca.Uniform)),
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if errors.Log(err) != nil {
		return
	}
	ca.buffer = buf
	layout, err := ca.device.Device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "camera",
		Entries: []wgpu.BindGroupLayoutEntry{{
			Binding:    0,
			Visibility: wgpu.ShaderStageVertex | wgpu.ShaderStageFragment,
			Buffer: wgpu.BufferBindingLayout{
				Type: wgpu.BufferBindingTypeUniform,
			},
		}},
	})
	if errors.Log(err) != nil {
		return
	}
	ca.layout = layout
	bg, err := ca.device.Device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "camera",
		Layout: ca.layout,
		Entries: []wgpu.BindGroupEntry{{
			Binding: 0,
			Buffer:  ca.buffer,
			Offset:  0,
			Size:    wgpu.WholeSize,
		}},
	})
	if errors.Log(err) != nil {
		return
	}
	ca.bindGroup = bg
}

func (ca *Camera) write() {
	if ca.buffer == nil {
		return
	}
	errors.Log(ca.device.Queue.WriteBuffer(ca.buffer, 0, wgpu.ToBytes([]CameraUniform{ca.Uniform})))
}
