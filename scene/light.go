// Copyright (c) 2026, Scenecore Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package scene

import "cogentcore.org/core/math32"

// LightKinds are the supported light types. The numeric values are the
// kind codes consumed by the shaders.
type LightKinds int32

const (
	// Directional is an infinitely distant light along a direction.
	Directional LightKinds = iota

	// Point is an omnidirectional light at a position. Point lights
	// get a unit-cube debug batch during batch rebuilds.
	Point

	// Spot is a cone light at a position along a direction.
	Spot
)

// Light describes one light source. The graph stores its packed
// [LightUniform] form in the GPU light store and derives its placement
// transform into the shared transform store.
type Light struct {
	Kind      LightKinds
	Color     math32.Vector3
	Intensity float32

	// Position is used by Point and Spot lights.
	Position math32.Vector3

	// Direction is used by Directional and Spot lights.
	Direction math32.Vector3

	// Cutoff is the cosine of the cone half-angle for Spot lights.
	Cutoff float32
}

// LightUniform is the packed GPU record for a light: 32 bytes,
// 16-byte aligned.
type LightUniform struct {
	Color     math32.Vector3
	Cutoff    float32
	Intensity float32
	Kind      uint32
	pad       [2]uint32
}

// Uniform returns the packed GPU record for the light.
func (lt *Light) Uniform() LightUniform {
	return LightUniform{
		Color:     lt.Color,
		Cutoff:    lt.Cutoff,
		Intensity: lt.Intensity,
		Kind:      uint32(lt.Kind),
	}
}

// Transform returns the world transform placing the light: a pure
// translation for Point lights, otherwise a rotation facing the light
// direction. When the direction is nearly parallel to the Y axis, the
// Z axis is used as the up vector to keep the frame well defined.
func (lt *Light) Transform() math32.Matrix4 {
	one := math32.Vec3(1, 1, 1)
	var m math32.Matrix4
	if lt.Kind == Point {
		m.SetTransform(lt.Position, math32.NewQuatAxisAngle(math32.Vec3(0, 1, 0), 0), one)
		return m
	}
	dir := lt.Direction.Normal()
	up := math32.Vec3(0, 1, 0)
	if math32.Abs(dir.Y) > 0.999 {
		up = math32.Vec3(0, 0, 1)
	}
	look := math32.NewLookAt(lt.Position, lt.Position.Add(dir), up)
	var q math32.Quat
	q.SetFromRotationMatrix(look)
	m.SetTransform(lt.Position, q, one)
	return m
}
