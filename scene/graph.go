// Copyright (c) 2026, Scenecore Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package scene implements the scene graph: the owner of all component
// and relation stores, the instance pool, and the render batch builder.
// It has no parent/child transform hierarchy; nodes are flat placements
// of renderables.
package scene

import (
	"log/slog"
	"slices"

	"cogentcore.org/core/base/errors"
	"cogentcore.org/core/gpu"
	"cogentcore.org/core/math32"
	"github.com/cogentcore/webgpu/wgpu"

	"github.com/scenecore/scenecore/assets"
	"github.com/scenecore/scenecore/store"
)

const (
	// DefaultStoreCapacity is the initial capacity of each component
	// store.
	DefaultStoreCapacity = 64

	// DefaultPoolCapacity is the initial capacity of the instance pool.
	DefaultPoolCapacity = 2048
)

// Graph owns every store of the renderer and turns the live nodes into
// sorted, contiguous render batches. All mutation happens on the render
// context; nothing here is safe for concurrent use.
//
// Renderables, geometries, and materials are never reclaimed: scenes are
// expected to be session-lived, so components accumulate for the process
// lifetime.
type Graph struct {
	// GPU-mirrored stores, aggregated into one bind group by Sync.
	Transforms *store.ComponentStore[math32.Matrix4]
	Normals    *store.ComponentStore[math32.Matrix4]
	Lights     *store.ComponentStore[LightUniform]

	// Relations joining store slots. NodeTransform and NodeNormal are
	// resolved on the CPU during batch rebuilds; LightTransform is also
	// read by the shaders.
	NodeTransform  *store.RelationStore
	NodeNormal     *store.RelationStore
	LightTransform *store.RelationStore

	// Host-only stores.
	Nodes       *store.Store[Node]
	Renderables *store.Store[Renderable]
	Geometries  *store.Store[Geometry]
	Materials   *store.Store[assets.Material]

	// Pool holds the per-draw instance records of the current batches.
	Pool *InstancePool

	// Batches is the current sorted batch list, rebuilt on every
	// topology change.
	Batches []Batch

	device    *gpu.Device
	layout    *wgpu.BindGroupLayout
	bindGroup *wgpu.BindGroup
	debugCube store.Handle[Renderable]
}

// NewGraph returns a new graph for the given device, with slot 0 of the
// transform, normal, light, and material stores holding harmless
// fallback records (identity transforms, a zero light, a default
// material), so that unset relation entries resolve safely. A nil
// device gives a fully host-only graph, used in tests.
func NewGraph(dev *gpu.Device) *Graph {
	g := &Graph{
		Transforms:     store.NewComponentStore[math32.Matrix4](dev, "transforms", DefaultStoreCapacity),
		Normals:        store.NewComponentStore[math32.Matrix4](dev, "normals", DefaultStoreCapacity),
		Lights:         store.NewComponentStore[LightUniform](dev, "lights", DefaultStoreCapacity),
		NodeTransform:  store.NewRelationStore(dev, "node-transform", DefaultStoreCapacity),
		NodeNormal:     store.NewRelationStore(dev, "node-normal", DefaultStoreCapacity),
		LightTransform: store.NewRelationStore(dev, "light-transform", DefaultStoreCapacity),
		Nodes:          store.NewStore[Node](DefaultStoreCapacity),
		Renderables:    store.NewStore[Renderable](DefaultStoreCapacity),
		Geometries:     store.NewStore[Geometry](DefaultStoreCapacity),
		Materials:      store.NewStore[assets.Material](DefaultStoreCapacity),
		Pool:           NewInstancePool(dev, DefaultPoolCapacity),
		device:         dev,
	}
	var ident math32.Matrix4
	ident.SetIdentity()
	g.Transforms.Add(store.NewEntity(), ident)
	g.Normals.Add(store.NewEntity(), ident)
	g.Lights.Add(store.NewEntity(), LightUniform{})
	g.AddMaterial(assets.Material{Name: "default", Color: math32.Vec4(1, 1, 1, 1), Roughness: 1})

	cube := g.AddMeshGeometry(assets.UnitCube())
	g.debugCube = g.AddMesh([]Primitive{{Geometry: cube, Material: 0}})

	g.createLayout()
	return g
}

// Device returns the device the graph mirrors into, nil if host-only.
func (g *Graph) Device() *gpu.Device {
	return g.device
}

// AddMaterial registers a material, returning its handle.
func (g *Graph) AddMaterial(mt assets.Material) store.Handle[assets.Material] {
	return g.Materials.Add(store.NewEntity(), mt)
}

// AddGeometry registers an existing geometry, returning its handle.
func (g *Graph) AddGeometry(ge Geometry) store.Handle[Geometry] {
	return g.Geometries.Add(store.NewEntity(), ge)
}

// AddMeshGeometry creates device vertex and index buffers for the mesh
// data and registers the resulting geometry.
func (g *Graph) AddMeshGeometry(md assets.MeshData) store.Handle[Geometry] {
	ge := Geometry{
		VertexCount: uint32(len(md.Vertices)),
		IndexCount:  uint32(len(md.Indices)),
	}
	if g.device != nil {
		ge.VertexBuffer = errors.Log1(g.device.Device.CreateBufferInit(&wgpu.BufferInitDescriptor{
			Label:    "mesh-vertices",
			Contents: wgpu.ToBytes(md.Vertices),
			Usage:    wgpu.BufferUsageVertex,
		}))
		ge.IndexBuffer = errors.Log1(g.device.Device.CreateBufferInit(&wgpu.BufferInitDescriptor{
			Label:    "mesh-indices",
			Contents: wgpu.ToBytes(md.Indices),
			Usage:    wgpu.BufferUsageIndex,
		}))
	}
	return g.AddGeometry(ge)
}

// AddPointGeometry creates a device vertex buffer for the points and
// registers the resulting geometry.
func (g *Graph) AddPointGeometry(pts []assets.PointVertex) store.Handle[Geometry] {
	ge := Geometry{VertexCount: uint32(len(pts))}
	if g.device != nil {
		ge.VertexBuffer = errors.Log1(g.device.Device.CreateBufferInit(&wgpu.BufferInitDescriptor{
			Label:    "pointcloud-vertices",
			Contents: wgpu.ToBytes(pts),
			Usage:    wgpu.BufferUsageVertex,
		}))
	}
	return g.AddGeometry(ge)
}

// AddMesh registers a mesh renderable made of the given primitives.
func (g *Graph) AddMesh(prims []Primitive) store.Handle[Renderable] {
	return g.Renderables.Add(store.NewEntity(), Renderable{
		Kind:       MeshRenderable,
		Primitives: prims,
	})
}

// AddPointCloud registers a point-cloud renderable for the geometry.
func (g *Graph) AddPointCloud(geom store.Handle[Geometry]) store.Handle[Renderable] {
	return g.Renderables.Add(store.NewEntity(), Renderable{
		Kind:       PointCloudRenderable,
		PointCloud: geom,
	})
}

// DebugCube returns the built-in unit-cube renderable used for
// point-light debug batches.
func (g *Graph) DebugCube() store.Handle[Renderable] {
	return g.debugCube
}

// AddNode places a renderable in the scene under the given entity:
// it creates the transform and inverse-transpose normal records, links
// node to transform and node to normal, and rebuilds the batches.
func (g *Graph) AddNode(e store.Entity, r store.Handle[Renderable], tf math32.Matrix4) {
	n := g.Nodes.Add(e, Node{Renderable: r})
	ti := g.Transforms.Add(e, tf)
	ni := g.Normals.Add(e, NormalMatrix(&tf))
	g.NodeTransform.Link(n.Index(), ti.Index())
	g.NodeNormal.Link(n.Index(), ni.Index())
	g.RebuildBatches()
}

// RemoveNode removes the entity's node along with its transform and
// normal records, then rebuilds the batches. It reports whether the
// entity had a node.
func (g *Graph) RemoveNode(e store.Entity) bool {
	if !g.Nodes.Delete(e) {
		return false
	}
	g.Transforms.Delete(e)
	g.Normals.Delete(e)
	g.RebuildBatches()
	return true
}

// AddLight adds a light under the given entity, deriving its placement
// into the shared transform store and linking light to transform.
// Point lights contribute a debug batch, so the batches are rebuilt.
func (g *Graph) AddLight(e store.Entity, lt Light) {
	li := g.Lights.Add(e, lt.Uniform())
	ti := g.Transforms.Add(e, lt.Transform())
	g.LightTransform.Link(li.Index(), ti.Index())
	g.RebuildBatches()
}

// SetLight overwrites the entity's light and placement, reporting
// whether the entity had a light.
func (g *Graph) SetLight(e store.Entity, lt Light) bool {
	if _, ok := g.Lights.Set(e, lt.Uniform()); !ok {
		return false
	}
	g.Transforms.Set(e, lt.Transform())
	return true
}

// SetTransform overwrites the entity's transform and recomputes its
// normal record, reporting whether the entity had a transform. Batches
// reference transforms by slot, so no rebuild is needed.
func (g *Graph) SetTransform(e store.Entity, tf math32.Matrix4) bool {
	if _, ok := g.Transforms.Set(e, tf); !ok {
		return false
	}
	g.Normals.Set(e, NormalMatrix(&tf))
	return true
}

// RebuildBatches regroups all live nodes by (pipeline, renderable),
// synthesizes one debug batch per point light using the built-in unit
// cube, uploads each group contiguously to the instance pool, and sorts
// the batches by key. A node whose slot lies beyond the relation
// mapping is skipped for this rebuild with a warning; once the mapping
// has grown over its slot it resolves to the slot-0 fallback records
// and is drawn.
func (g *Graph) RebuildBatches() {
	groups := map[Key][]Instance{}
	g.Nodes.DoIndexed(func(i int, e store.Entity, nd Node) {
		ti, ok := g.NodeTransform.Mapping(uint32(i))
		if !ok {
			slog.Warn("scene: node has no transform mapping, skipping", "entity", e)
			return
		}
		ni, ok := g.NodeNormal.Mapping(uint32(i))
		if !ok {
			slog.Warn("scene: node has no normal mapping, skipping", "entity", e)
			return
		}
		rend := g.Renderables.ValueByIndex(nd.Renderable)
		key := Key{Pipeline: rend.PipelineID(), Renderable: nd.Renderable}
		groups[key] = append(groups[key], Instance{Transform: ti, Normal: ni})
	})
	g.Lights.DoIndexed(func(i int, e store.Entity, lu LightUniform) {
		if lu.Kind != uint32(Point) {
			return
		}
		ti, ok := g.LightTransform.Mapping(uint32(i))
		if !ok {
			slog.Warn("scene: light has no transform mapping, skipping", "entity", e)
			return
		}
		key := Key{Pipeline: LightPipeline, Renderable: g.debugCube}
		groups[key] = append(groups[key], Instance{Transform: ti, Normal: 0})
	})

	keys := make([]Key, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, Key.Compare)

	g.Batches = g.Batches[:0]
	for _, k := range keys {
		recs := groups[k]
		off := g.Pool.Upload(recs)
		g.Batches = append(g.Batches, Batch{Key: k, Offset: off, Count: uint32(len(recs))})
	}
}

// Sync polls every owned store's dirty flag and rebuilds the aggregate
// bind group when any buffer identity changed (or none exists yet).
// It reports whether a rebuild happened. This is the only path that
// yields a usable bind group, which is what prevents a draw from ever
// referencing a freed buffer.
func (g *Graph) Sync() bool {
	// every flag must be read: Dirty clears on read
	dirty := g.Transforms.Dirty()
	dirty = g.Normals.Dirty() || dirty
	dirty = g.Lights.Dirty() || dirty
	dirty = g.NodeTransform.Dirty() || dirty
	dirty = g.NodeNormal.Dirty() || dirty
	dirty = g.LightTransform.Dirty() || dirty
	dirty = g.Pool.Dirty() || dirty
	if g.device == nil {
		return dirty
	}
	if !dirty && g.bindGroup != nil {
		return false
	}
	g.rebuildBindGroup()
	return true
}

// Layout returns the bind group layout of the aggregate scene bind
// group, nil if host-only.
func (g *Graph) Layout() *wgpu.BindGroupLayout {
	return g.layout
}

// BindGroup returns the aggregate bind group over the transform,
// normal, and light stores, the light-transform mapping, and the
// instance pool. It is only valid after the most recent Sync.
func (g *Graph) BindGroup() *wgpu.BindGroup {
	return g.bindGroup
}

// Release releases all device resources owned by the graph.
func (g *Graph) Release() {
	if g.bindGroup != nil {
		g.bindGroup.Release()
		g.bindGroup = nil
	}
	if g.layout != nil {
		g.layout.Release()
		g.layout = nil
	}
	g.Geometries.DoIndexed(func(i int, e store.Entity, ge Geometry) {
		ge.Release()
	})
	g.Transforms.Release()
	g.Normals.Release()
	g.Lights.Release()
	g.NodeTransform.Release()
	g.NodeNormal.Release()
	g.LightTransform.Release()
	g.Pool.Release()
}

func (g *Graph) createLayout() {
	if g.device == nil {
		return
	}
	vis := wgpu.ShaderStageVertex | wgpu.ShaderStageFragment
	layout, err := g.device.Device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "scene",
		Entries: []wgpu.BindGroupLayoutEntry{
			g.Transforms.LayoutEntry(0, vis),
			g.Normals.LayoutEntry(1, vis),
			g.Lights.LayoutEntry(2, vis),
			g.LightTransform.LayoutEntry(3, vis),
			g.Pool.LayoutEntry(4, vis),
		},
	})
	if errors.Log(err) != nil {
		return
	}
	g.layout = layout
}

func (g *Graph) rebuildBindGroup() {
	if g.layout == nil {
		return
	}
	if g.bindGroup != nil {
		g.bindGroup.Release()
		g.bindGroup = nil
	}
	bg, err := g.device.Device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "scene",
		Layout: g.layout,
		Entries: []wgpu.BindGroupEntry{
			g.Transforms.BindGroupEntry(0),
			g.Normals.BindGroupEntry(1),
			g.Lights.BindGroupEntry(2),
			g.LightTransform.BindGroupEntry(3),
			g.Pool.BindGroupEntry(4),
		},
	})
	if errors.Log(err) != nil {
		return
	}
	g.bindGroup = bg
}
