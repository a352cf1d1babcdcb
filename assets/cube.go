// Copyright (c) 2026, Scenecore Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package assets

import "cogentcore.org/core/math32"

// UnitCube returns a unit cube mesh centered on the origin, with
// per-face normals. It is the built-in renderable used to visualize
// point lights.
func UnitCube() MeshData {
	md := MeshData{}
	addFace := func(normal, right, up math32.Vector3) {
		base := uint32(len(md.Vertices))
		center := normal.MulScalar(0.5)
		corners := [4][2]float32{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}}
		uvs := [4][2]float32{{0, 1}, {1, 1}, {1, 0}, {0, 0}}
		for i, c := range corners {
			pos := center.Add(right.MulScalar(0.5 * c[0])).Add(up.MulScalar(0.5 * c[1]))
			md.Vertices = append(md.Vertices, Vertex{
				Position: pos,
				Normal:   normal,
				UV:       math32.Vec2(uvs[i][0], uvs[i][1]),
			})
		}
		md.Indices = append(md.Indices,
			base, base+1, base+2,
			base, base+2, base+3)
	}
	px := math32.Vec3(1, 0, 0)
	py := math32.Vec3(0, 1, 0)
	pz := math32.Vec3(0, 0, 1)
	nx := math32.Vec3(-1, 0, 0)
	ny := math32.Vec3(0, -1, 0)
	nz := math32.Vec3(0, 0, -1)

	addFace(pz, px, py) // front
	addFace(nz, nx, py) // back
	addFace(px, nz, py) // right
	addFace(nx, pz, py) // left
	addFace(py, px, nz) // top
	addFace(ny, px, pz) // bottom
	return md
}
