// Copyright (c) 2026, Scenecore Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package render

import (
	"image"

	"cogentcore.org/core/gpu"
	"cogentcore.org/core/math32"

	"github.com/scenecore/scenecore/store"
)

// Event is the tagged union of completion messages the render core
// sends back to the control context.
type Event interface {
	isEvent()
}

// FrameComplete signals that a requested frame was rendered (or that
// the frame request was serviced headlessly).
type FrameComplete struct{}

// LoadComplete announces one renderable produced by a [LoadAsset]
// command. RenderID is the handle to pass back in [SpawnAsset];
// Transform is the placement the asset itself suggests (a scene node's
// own transform, or the Z-up correction for point clouds).
type LoadComplete struct {
	RenderID  store.Entity
	Transform math32.Matrix4
	Label     string
}

// ResizeComplete signals that the render target was resized. The device
// is included for deployments where the control context needs it to
// reconfigure its own surfaces after the resize.
type ResizeComplete struct {
	Size   image.Point
	Device *gpu.Device
}

// Stopped is the final event: the render loop has exited.
type Stopped struct{}

func (FrameComplete) isEvent()  {}
func (LoadComplete) isEvent()   {}
func (ResizeComplete) isEvent() {}
func (Stopped) isEvent()        {}
