// Copyright (c) 2026, Scenecore Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package store provides growable, stably-indexed typed component
// containers, optionally mirrored into GPU storage buffers, plus the
// slot-to-slot relation stores that join them. All GPU mirroring is
// driven by an explicit [gpu.Device]; a nil device puts a store in
// host-only mode, which is used for CPU-only component kinds and in
// tests.
package store

import "github.com/google/uuid"

// Entity is the globally unique identifier for a spawned logical object
// (mesh instance, light, node). Entities are never reused and carry no
// data themselves; they are only join keys into the component stores.
type Entity uuid.UUID

// NoEntity is the zero Entity, matching no spawned object.
var NoEntity Entity

// NewEntity returns a new globally unique Entity.
func NewEntity() Entity {
	return Entity(uuid.New())
}

func (e Entity) String() string {
	return uuid.UUID(e).String()
}

// IsNil reports whether this is the zero Entity.
func (e Entity) IsNil() bool {
	return e == NoEntity
}

// Handle identifies a slot inside one typed store. It is stable for the
// lifetime of the occupying record; the index may be reused after the
// record's entity is deleted, so a handle must never outlive the explicit
// removal of its record.
type Handle[T any] uint32

// Index returns the raw slot index for GPU consumption.
func (h Handle[T]) Index() uint32 {
	return uint32(h)
}
