// Copyright (c) 2026, Scenecore Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package scene

import (
	"github.com/cogentcore/webgpu/wgpu"

	"github.com/scenecore/scenecore/assets"
	"github.com/scenecore/scenecore/store"
)

// RenderableKinds are the drawable unit types.
type RenderableKinds int32

const (
	// MeshRenderable is a list of (geometry, material) primitives.
	MeshRenderable RenderableKinds = iota

	// PointCloudRenderable is a single point-cloud geometry.
	PointCloudRenderable
)

// Pipeline identifiers, derived once from the renderable kind at batch
// build time.
const (
	MeshPipeline       = "mesh"
	PointCloudPipeline = "pointcloud"
	LightPipeline      = "light"
)

// Primitive pairs a geometry with the material it is drawn with.
type Primitive struct {
	Geometry store.Handle[Geometry]
	Material store.Handle[assets.Material]
}

// Renderable is a CPU-only record describing one drawable unit: either
// mesh primitives or a point cloud. Renderables are owned by the graph
// for the lifetime of the asset; their per-node instances are what is
// GPU-mirrored.
type Renderable struct {
	Kind RenderableKinds

	// Primitives is the primitive list for MeshRenderable.
	Primitives []Primitive

	// PointCloud is the geometry for PointCloudRenderable.
	PointCloud store.Handle[Geometry]
}

// PipelineID returns the pipeline identifier for the renderable kind.
func (r *Renderable) PipelineID() string {
	if r.Kind == PointCloudRenderable {
		return PointCloudPipeline
	}
	return MeshPipeline
}

// Geometry holds the device vertex data for one primitive or point
// cloud. The buffers are nil in host-only mode.
type Geometry struct {
	VertexBuffer *wgpu.Buffer
	IndexBuffer  *wgpu.Buffer
	VertexCount  uint32
	IndexCount   uint32
}

// Release releases the device buffers.
func (ge *Geometry) Release() {
	if ge.VertexBuffer != nil {
		ge.VertexBuffer.Release()
		ge.VertexBuffer = nil
	}
	if ge.IndexBuffer != nil {
		ge.IndexBuffer.Release()
		ge.IndexBuffer = nil
	}
}

// Node is one placed occurrence of a renderable in the scene. Its
// transform and normal records live in the graph's GPU stores, joined
// through the node relation stores.
type Node struct {
	Renderable store.Handle[Renderable]
}
