// Copyright (c) 2026, Scenecore Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package render

import (
	"image"
	"testing"

	"cogentcore.org/core/math32"
	"github.com/stretchr/testify/assert"

	"github.com/scenecore/scenecore/store"
)

func TestInboxCoalesces(t *testing.T) {
	ib := &Inbox{}
	for i := range 10 {
		_, ordered := ib.Receive(UpdateCamera{Position: math32.Vec3(float32(i), 0, 0)})
		assert.False(t, ordered)
	}
	_, ordered := ib.Receive(RenderFrame{})
	assert.False(t, ordered)
	_, ordered = ib.Receive(Resize{Size: image.Pt(100, 100)})
	assert.False(t, ordered)
	_, ordered = ib.Receive(Resize{Size: image.Pt(200, 200)})
	assert.False(t, ordered)

	ready := ib.TakeReady()
	assert.Equal(t, 3, len(ready))

	// fixed priority order: resize, camera, frame; each latest-wins
	rz, ok := ready[0].(Resize)
	assert.True(t, ok)
	assert.Equal(t, image.Pt(200, 200), rz.Size)
	cam, ok := ready[1].(UpdateCamera)
	assert.True(t, ok)
	assert.Equal(t, float32(9), cam.Position.X)
	_, ok = ready[2].(RenderFrame)
	assert.True(t, ok)

	assert.Empty(t, ib.TakeReady(), "TakeReady clears the slots")
}

func TestInboxPassesOrderedThrough(t *testing.T) {
	ib := &Inbox{}
	spawn := SpawnAsset{ID: store.NewEntity()}
	cmd, ordered := ib.Receive(spawn)
	assert.True(t, ordered)
	assert.Equal(t, spawn, cmd)

	cmd, ordered = ib.Receive(Stop{})
	assert.True(t, ordered)
	assert.Equal(t, Stop{}, cmd)
}
