// Copyright (c) 2026, Scenecore Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package assets defines the asset-ingestion boundary: the small closed
// set of already-decoded buffer kinds that an asset-loading collaborator
// posts to the render core with a LoadAsset command. File parsing and
// image decoding happen outside this module; these types carry only the
// decoded results.
package assets

import (
	"image"

	"cogentcore.org/core/math32"
)

// Vertex is one mesh vertex: position, normal, and texture coordinate,
// tightly packed for direct upload (32 bytes).
type Vertex struct {
	Position math32.Vector3
	Normal   math32.Vector3
	UV       math32.Vector2
}

// PointVertex is one point-cloud point: position and color, tightly
// packed for direct upload (24 bytes).
type PointVertex struct {
	Position math32.Vector3
	Color    math32.Vector3
}

// Material holds the surface parameters for a mesh primitive.
// Texture references are resolved by the surrounding application;
// the core only registers the factors.
type Material struct {
	Name      string
	Color     math32.Vector4
	Metallic  float32
	Roughness float32
}

// MeshData is one drawable primitive: vertices, triangle indices, and
// the index of its material within the owning scene buffer.
type MeshData struct {
	Vertices []Vertex
	Indices  []uint32
	Material int
}

// SceneNode is one named, placed mesh within a scene buffer.
type SceneNode struct {
	Label     string
	Mesh      MeshData
	Transform math32.Matrix4
}

// Buffer is the tagged union of decoded asset payloads accepted by the
// render core: [SceneBuffer], [PointCloudBuffer], or [EnvironmentBuffer].
type Buffer interface {
	// Label returns the name of the asset, used in completion events
	// and log messages.
	Label() string

	isBuffer()
}

// SceneBuffer is a decoded scene: a material table and a list of placed
// mesh nodes. Each node becomes one renderable in the scene graph.
type SceneBuffer struct {
	Name      string
	Materials []Material
	Nodes     []SceneNode
}

func (b *SceneBuffer) Label() string { return b.Name }
func (b *SceneBuffer) isBuffer()     {}

// PointCloudBuffer is a decoded point cloud.
type PointCloudBuffer struct {
	Name   string
	Points []PointVertex
}

func (b *PointCloudBuffer) Label() string { return b.Name }
func (b *PointCloudBuffer) isBuffer()     {}

// EnvironmentBuffer is a decoded equirectangular environment map
// (RGBA float pixels). The core accepts it at the boundary and hands it
// to an environment collaborator; irradiance processing is not part of
// this module.
type EnvironmentBuffer struct {
	Name   string
	Size   image.Point
	Pixels []float32
}

func (b *EnvironmentBuffer) Label() string { return b.Name }
func (b *EnvironmentBuffer) isBuffer()     {}
