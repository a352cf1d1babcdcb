// Copyright (c) 2026, Scenecore Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package scene

import (
	"log/slog"
	"unsafe"

	"cogentcore.org/core/math32"
)

// NormalMatrix returns the inverse-transpose of the given transform,
// used to carry normals through non-uniform scaling. It is recomputed
// whenever the transform changes, never incrementally updated. A
// non-invertible transform yields the identity, with a warning.
func NormalMatrix(m *math32.Matrix4) math32.Matrix4 {
	inv, err := m.Inverse()
	if err != nil {
		slog.Warn("scene: non-invertible transform, using identity normal matrix", "err", err)
		var ident math32.Matrix4
		ident.SetIdentity()
		return ident
	}
	return transposed(inv)
}

// transposed returns the transpose, treating the matrix as its flat
// column-major 16-float GPU layout.
func transposed(m *math32.Matrix4) math32.Matrix4 {
	src := (*[16]float32)(unsafe.Pointer(m))
	var out math32.Matrix4
	dst := (*[16]float32)(unsafe.Pointer(&out))
	for r := range 4 {
		for c := range 4 {
			dst[c*4+r] = src[r*4+c]
		}
	}
	return out
}
