// Copyright (c) 2026, Scenecore Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package render

import (
	_ "embed"
	"log/slog"
	"unsafe"

	"cogentcore.org/core/base/errors"
	"cogentcore.org/core/base/ordmap"
	"cogentcore.org/core/gpu"
	"github.com/cogentcore/webgpu/wgpu"

	"github.com/scenecore/scenecore/assets"
	"github.com/scenecore/scenecore/scene"
)

//go:embed shaders/mesh.wgsl
var meshShader string

//go:embed shaders/pointcloud.wgsl
var pointcloudShader string

//go:embed shaders/light.wgsl
var lightShader string

// Pipelines holds the render pipelines by name, in deterministic order.
// All pipelines share the camera bind group (0) and the scene bind
// group (1); per-draw instance data is read from the instance pool
// using the draw's first-instance offset.
type Pipelines struct {
	pipes *ordmap.Map[string, *wgpu.RenderPipeline]
}

// NewPipelines builds the mesh, pointcloud, and light pipelines for the
// given color target format and bind group layouts.
func NewPipelines(dev *gpu.Device, format wgpu.TextureFormat, camera, scn *wgpu.BindGroupLayout) *Pipelines {
	ps := &Pipelines{pipes: ordmap.New[string, *wgpu.RenderPipeline]()}
	layouts := []*wgpu.BindGroupLayout{camera, scn}

	meshLayout := wgpu.VertexBufferLayout{
		ArrayStride: uint64(unsafe.Sizeof(assets.Vertex{})),
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes: []wgpu.VertexAttribute{
			{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
			{Format: wgpu.VertexFormatFloat32x3, Offset: 12, ShaderLocation: 1},
			{Format: wgpu.VertexFormatFloat32x2, Offset: 24, ShaderLocation: 2},
		},
	}
	pointLayout := wgpu.VertexBufferLayout{
		ArrayStride: uint64(unsafe.Sizeof(assets.PointVertex{})),
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes: []wgpu.VertexAttribute{
			{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
			{Format: wgpu.VertexFormatFloat32x3, Offset: 12, ShaderLocation: 1},
		},
	}

	ps.add(dev, scene.MeshPipeline, meshShader, format, layouts, meshLayout,
		wgpu.PrimitiveTopologyTriangleList, wgpu.CullModeBack)
	ps.add(dev, scene.PointCloudPipeline, pointcloudShader, format, layouts, pointLayout,
		wgpu.PrimitiveTopologyPointList, wgpu.CullModeNone)
	ps.add(dev, scene.LightPipeline, lightShader, format, layouts, meshLayout,
		wgpu.PrimitiveTopologyTriangleList, wgpu.CullModeNone)
	return ps
}

// PipelineByName returns the pipeline with the given name.
// Returns nil if not found (error auto logged).
func (ps *Pipelines) PipelineByName(name string) *wgpu.RenderPipeline {
	pl, ok := ps.pipes.ValueByKeyTry(name)
	if !ok {
		slog.Error("render: pipeline not found", "pipeline", name)
		return nil
	}
	return pl
}

// Release releases all pipelines.
func (ps *Pipelines) Release() {
	for _, pl := range ps.pipes.Values() {
		pl.Release()
	}
	ps.pipes.Reset()
}

func (ps *Pipelines) add(dev *gpu.Device, name, src string, format wgpu.TextureFormat, bgls []*wgpu.BindGroupLayout, vtx wgpu.VertexBufferLayout, topo wgpu.PrimitiveTopology, cull wgpu.CullMode) {
	module, err := dev.Device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          name,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: src},
	})
	if errors.Log(err) != nil {
		return
	}
	defer module.Release()

	layout, err := dev.Device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            name,
		BindGroupLayouts: bgls,
	})
	if errors.Log(err) != nil {
		return
	}
	defer layout.Release()

	keep := wgpu.StencilFaceState{
		Compare:     wgpu.CompareFunctionAlways,
		FailOp:      wgpu.StencilOperationKeep,
		DepthFailOp: wgpu.StencilOperationKeep,
		PassOp:      wgpu.StencilOperationKeep,
	}
	pl, err := dev.Device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  name,
		Layout: layout,
		Vertex: wgpu.VertexState{
			Module:     module,
			EntryPoint: "vs_main",
			Buffers:    []wgpu.VertexBufferLayout{vtx},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  topo,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  cull,
		},
		DepthStencil: &wgpu.DepthStencilState{
			Format:            wgpu.TextureFormatDepth32Float,
			DepthWriteEnabled: true,
			DepthCompare:      wgpu.CompareFunctionLess,
			StencilFront:      keep,
			StencilBack:       keep,
			StencilReadMask:   0xFFFFFFFF,
			StencilWriteMask:  0xFFFFFFFF,
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
		Fragment: &wgpu.FragmentState{
			Module:     module,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{{
				Format:    format,
				Blend:     nil,
				WriteMask: wgpu.ColorWriteMaskAll,
			}},
		},
	})
	if errors.Log(err) != nil {
		return
	}
	ps.pipes.Add(name, pl)
}
