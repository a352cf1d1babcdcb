// Copyright (c) 2026, Scenecore Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package scene

import (
	"testing"

	"cogentcore.org/core/math32"
	"github.com/stretchr/testify/assert"

	"github.com/scenecore/scenecore/assets"
	"github.com/scenecore/scenecore/store"
)

func identity() math32.Matrix4 {
	var m math32.Matrix4
	m.SetIdentity()
	return m
}

func testMesh(g *Graph) store.Handle[Renderable] {
	geom := g.AddMeshGeometry(assets.UnitCube())
	return g.AddMesh([]Primitive{{Geometry: geom, Material: 0}})
}

func TestBatchSingleGroup(t *testing.T) {
	g := NewGraph(nil)
	mesh := testMesh(g)

	ents := make([]store.Entity, 100)
	for i := range ents {
		ents[i] = store.NewEntity()
		g.AddNode(ents[i], mesh, identity())
	}
	assert.Equal(t, 1, len(g.Batches))
	assert.Equal(t, uint32(100), g.Batches[0].Count)
	assert.Equal(t, Key{Pipeline: MeshPipeline, Renderable: mesh}, g.Batches[0].Key)

	for _, e := range ents[:50] {
		assert.True(t, g.RemoveNode(e))
	}
	assert.Equal(t, 1, len(g.Batches))
	assert.Equal(t, uint32(50), g.Batches[0].Count)
	assert.Equal(t, int(g.Batches[0].Offset)+50, g.Pool.Cursor())
}

func TestBatchDeterminism(t *testing.T) {
	g := NewGraph(nil)
	meshA := testMesh(g)
	meshB := testMesh(g)
	pts := g.AddPointGeometry([]assets.PointVertex{{}})
	cloud := g.AddPointCloud(pts)

	for range 5 {
		g.AddNode(store.NewEntity(), meshA, identity())
		g.AddNode(store.NewEntity(), meshB, identity())
		g.AddNode(store.NewEntity(), cloud, identity())
	}
	g.AddLight(store.NewEntity(), Light{Kind: Point, Position: math32.Vec3(1, 2, 3)})

	// pool offsets advance between rebuilds; the determinism contract is
	// identical key sequences and identical instance-range contents
	snapshot := func() ([]Key, [][]Instance) {
		keys := make([]Key, 0, len(g.Batches))
		contents := make([][]Instance, 0, len(g.Batches))
		for _, b := range g.Batches {
			keys = append(keys, b.Key)
			recs := make([]Instance, b.Count)
			copy(recs, g.Pool.Records[b.Offset:int(b.Offset)+int(b.Count)])
			contents = append(contents, recs)
		}
		return keys, contents
	}

	g.RebuildBatches()
	keys1, contents1 := snapshot()
	g.RebuildBatches()
	keys2, contents2 := snapshot()
	assert.Equal(t, keys1, keys2)
	assert.Equal(t, contents1, contents2)

	// sorted by key: light after mesh after... keys ordered by pipeline string
	for i := 1; i < len(g.Batches); i++ {
		assert.LessOrEqual(t, g.Batches[i-1].Key.Compare(g.Batches[i].Key), 0)
	}
}

func TestPointLightDebugBatch(t *testing.T) {
	g := NewGraph(nil)
	g.AddLight(store.NewEntity(), Light{Kind: Directional, Direction: math32.Vec3(0, -1, 0)})
	assert.Equal(t, 0, len(g.Batches), "directional lights have no debug batch")

	g.AddLight(store.NewEntity(), Light{Kind: Point, Position: math32.Vec3(1, 2, 3)})
	assert.Equal(t, 1, len(g.Batches))
	b := g.Batches[0]
	assert.Equal(t, LightPipeline, b.Key.Pipeline)
	assert.Equal(t, g.DebugCube(), b.Key.Renderable)
	assert.Equal(t, uint32(1), b.Count)

	// the debug instance points at the light's transform slot and the
	// fallback normal
	inst := g.Pool.Records[b.Offset]
	assert.Equal(t, uint32(0), inst.Normal)
	tf := g.Transforms.Records[inst.Transform]
	pos := math32.Vec3(0, 0, 0).MulMatrix4(&tf)
	assert.InDelta(t, 1, pos.X, 1e-5)
	assert.InDelta(t, 2, pos.Y, 1e-5)
	assert.InDelta(t, 3, pos.Z, 1e-5)
}

func TestRelationMissSkipsNode(t *testing.T) {
	g := NewGraph(nil)
	mesh := testMesh(g)

	// a node inserted without its relations, as when it arrives before
	// its dependencies
	g.Nodes.Add(store.NewEntity(), Node{Renderable: mesh})
	g.RebuildBatches()
	assert.Equal(t, 0, len(g.Batches))

	// linking a later node grows the mappings over the dangling slot,
	// which then resolves to the slot-0 fallback records and is drawn
	g.AddNode(store.NewEntity(), mesh, identity())
	assert.Equal(t, 1, len(g.Batches))
	assert.Equal(t, uint32(2), g.Batches[0].Count)
	assert.Equal(t, uint32(0), g.Pool.Records[g.Batches[0].Offset].Transform)
	assert.Equal(t, uint32(1), g.Pool.Records[g.Batches[0].Offset+1].Transform)
}

func TestSetTransformRecomputesNormal(t *testing.T) {
	g := NewGraph(nil)
	mesh := testMesh(g)
	e := store.NewEntity()
	g.AddNode(e, mesh, identity())

	var tf math32.Matrix4
	tf.SetTransform(math32.Vec3(0, 0, 0), math32.NewQuatAxisAngle(math32.Vec3(0, 1, 0), 0), math32.Vec3(2, 2, 2))
	assert.True(t, g.SetTransform(e, tf))

	h, ok := g.Normals.IndexOf(e)
	assert.True(t, ok)
	nm := g.Normals.ValueByIndex(h)
	// inverse-transpose of a uniform scale by 2 scales by 0.5
	v := math32.Vec3(1, 0, 0).MulMatrix4AsVector4(&nm, 0)
	assert.InDelta(t, 0.5, v.X, 1e-5)

	assert.False(t, g.SetTransform(store.NewEntity(), tf))
}

func TestSetLight(t *testing.T) {
	g := NewGraph(nil)
	e := store.NewEntity()
	g.AddLight(e, Light{Kind: Point, Intensity: 1, Position: math32.Vec3(0, 0, 0)})

	assert.True(t, g.SetLight(e, Light{Kind: Point, Intensity: 5, Position: math32.Vec3(1, 0, 0)}))
	h, _ := g.Lights.IndexOf(e)
	assert.Equal(t, float32(5), g.Lights.ValueByIndex(h).Intensity)

	assert.False(t, g.SetLight(store.NewEntity(), Light{}))
}

func TestSyncDirtyGate(t *testing.T) {
	g := NewGraph(nil)
	mesh := testMesh(g)

	// construction seeds the fallback records; nothing grew yet
	assert.False(t, g.Sync())

	// force transform store growth
	for range DefaultStoreCapacity + 1 {
		g.AddNode(store.NewEntity(), mesh, identity())
	}
	assert.True(t, g.Sync(), "growth must flag a binding rebuild")
	assert.False(t, g.Sync(), "dirty state must clear after a sync")
}

func TestPoolWraparound(t *testing.T) {
	p := NewInstancePool(nil, 8)
	off := p.Upload(make([]Instance, 5))
	assert.Equal(t, uint32(0), off)
	off = p.Upload(make([]Instance, 5))
	assert.Equal(t, uint32(0), off, "write past the end wraps to 0")
	assert.Equal(t, 5, p.Cursor())
	assert.False(t, p.Dirty())

	// a single upload larger than the pool grows it
	off = p.Upload(make([]Instance, 20))
	assert.Equal(t, uint32(0), off)
	assert.Equal(t, 32, p.Capacity())
	assert.True(t, p.Dirty())
}

func TestPoolGrowKeepsRecords(t *testing.T) {
	p := NewInstancePool(nil, 4)
	p.Upload([]Instance{{Transform: 1, Normal: 1}, {Transform: 2, Normal: 2}})

	big := make([]Instance, 6)
	for i := range big {
		big[i] = Instance{Transform: uint32(10 + i), Normal: uint32(10 + i)}
	}
	p.Upload(big)
	assert.Equal(t, 8, p.Capacity())
	assert.Equal(t, big, p.Records[:6])

	// writes after a grow land at the reset cursor, on the mirrored array
	p.Upload([]Instance{{Transform: 7, Normal: 7}})
	assert.Equal(t, Instance{Transform: 7, Normal: 7}, p.Records[6])
	assert.Equal(t, 7, p.Cursor())
}

func TestLightUniformLayout(t *testing.T) {
	lt := Light{Kind: Spot, Color: math32.Vec3(1, 0.5, 0.25), Intensity: 3, Cutoff: 0.9}
	lu := lt.Uniform()
	assert.Equal(t, uint32(2), lu.Kind)
	assert.Equal(t, float32(0.9), lu.Cutoff)
	assert.Equal(t, float32(3), lu.Intensity)
}
