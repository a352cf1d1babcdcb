// Copyright (c) 2026, Scenecore Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package render

import (
	"image"
	"testing"

	"cogentcore.org/core/gpu"
	"cogentcore.org/core/math32"
	"github.com/stretchr/testify/assert"
	"golang.org/x/sync/errgroup"

	"github.com/scenecore/scenecore/scene"
	"github.com/scenecore/scenecore/store"
)

func scenePointLight() scene.Light {
	return scene.Light{
		Kind:      scene.Point,
		Color:     math32.Vec3(1, 1, 1),
		Intensity: 3,
		Position:  math32.Vec3(2, 3, 1),
	}
}

func TestRenderTextureFrame(t *testing.T) {
	t.Skip("Need software GPU on CI")

	gp, dev, err := gpu.NoDisplayGPU()
	assert.NoError(t, err)
	rt := gpu.NewRenderTexture(gp, dev, image.Pt(640, 480), 1, gpu.Depth32)
	c := NewCore(gp, dev, rt)

	g := new(errgroup.Group)
	g.Go(func() error { c.Run(); return nil })

	c.Send(LoadAsset{Buffer: cubeScene("cube")})
	lc := waitFor[LoadComplete](t, c)
	c.Send(SpawnAsset{ID: store.NewEntity(), RenderID: lc.RenderID, Transform: identity()})
	c.Send(SpawnLight{ID: store.NewEntity(), Light: scenePointLight()})

	var projection math32.Matrix4
	projection.SetPerspective(45, 640.0/480.0, 0.01, 100)
	view := math32.NewLookAt(math32.Vec3(2, 2, 4), math32.Vec3(0, 0, 0), math32.Vec3(0, 1, 0))
	c.Send(UpdateCamera{Position: math32.Vec3(2, 2, 4), View: *view, Projection: projection})

	c.Send(RenderFrame{})
	waitFor[FrameComplete](t, c)

	stop(t, c, g)
	c.Scene.Release()
	c.Camera.Release()
	rt.Release()
	gp.Release()
}
