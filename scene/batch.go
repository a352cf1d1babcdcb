// Copyright (c) 2026, Scenecore Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package scene

import (
	"cmp"

	"github.com/scenecore/scenecore/store"
)

// Key identifies one render batch: the pipeline it draws with and the
// renderable it instances.
type Key struct {
	Pipeline   string
	Renderable store.Handle[Renderable]
}

// Compare orders keys by pipeline, then renderable slot, giving the
// deterministic draw order required for reproducible frame output.
func (k Key) Compare(o Key) int {
	if c := cmp.Compare(k.Pipeline, o.Pipeline); c != 0 {
		return c
	}
	return cmp.Compare(k.Renderable, o.Renderable)
}

// Batch is one contiguous instance-pool range sharing a pipeline and a
// renderable. Batches are ephemeral: they are fully rebuilt whenever the
// scene topology changes, never incrementally patched.
type Batch struct {
	Key Key

	// Offset is the first record of the batch in the instance pool.
	Offset uint32

	// Count is the number of instances.
	Count uint32
}
