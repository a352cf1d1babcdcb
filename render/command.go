// Copyright (c) 2026, Scenecore Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package render

import (
	"image"

	"cogentcore.org/core/math32"

	"github.com/scenecore/scenecore/assets"
	"github.com/scenecore/scenecore/scene"
	"github.com/scenecore/scenecore/store"
)

// Command is the tagged union of messages the control context sends to
// the render core. [UpdateCamera], [Resize], and [RenderFrame] are
// coalesced latest-wins by the [Inbox]; every other command is applied
// strictly in arrival order.
type Command interface {
	isCommand()
}

// RenderFrame requests that one frame be rendered. At most one frame is
// rendered per drain cycle regardless of how many requests queue up.
type RenderFrame struct{}

// UpdateCamera replaces the camera state. Only the most recent of a
// burst is applied.
type UpdateCamera struct {
	Position   math32.Vector3
	View       math32.Matrix4
	Projection math32.Matrix4
}

// Resize requests a new render target size. Only the most recent of a
// burst is applied, and always before any camera update or frame in the
// same drain cycle.
type Resize struct {
	Size image.Point
}

// LoadAsset hands a decoded asset buffer to the core. Each renderable
// the buffer yields is announced with a [LoadComplete] event carrying
// its render id.
type LoadAsset struct {
	Buffer assets.Buffer
}

// SpawnAsset places a previously loaded renderable in the scene under
// the given entity.
type SpawnAsset struct {
	ID        store.Entity
	RenderID  store.Entity
	Transform math32.Matrix4
}

// SpawnLight adds a light under the given entity.
type SpawnLight struct {
	ID    store.Entity
	Light scene.Light
}

// UpdateTransform overwrites the entity's transform.
type UpdateTransform struct {
	ID        store.Entity
	Transform math32.Matrix4
}

// UpdateLight overwrites the entity's light.
type UpdateLight struct {
	ID    store.Entity
	Light scene.Light
}

// Despawn removes the entity's node from the scene.
type Despawn struct {
	ID store.Entity
}

// Stop terminates the render loop. It is terminal: the core emits
// [Stopped] and returns, and the control context must join the render
// goroutine before tearing down shared device resources.
type Stop struct{}

func (RenderFrame) isCommand()     {}
func (UpdateCamera) isCommand()    {}
func (Resize) isCommand()          {}
func (LoadAsset) isCommand()       {}
func (SpawnAsset) isCommand()      {}
func (SpawnLight) isCommand()      {}
func (UpdateTransform) isCommand() {}
func (UpdateLight) isCommand()     {}
func (Despawn) isCommand()         {}
func (Stop) isCommand()            {}
