// Copyright (c) 2026, Scenecore Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package render

// Inbox partitions incoming commands into the coalesced slots and the
// ordered stream. Camera updates, resizes, and frame requests are
// latest-wins: a burst of any of them collapses to the most recent one.
// This is the backpressure mechanism that keeps a fast producer from
// building an unbounded backlog of stale state on a slower consumer,
// while state-mutating commands are never dropped.
type Inbox struct {
	camera *UpdateCamera
	resize *Resize
	frame  *RenderFrame
}

// Receive routes one command. Coalesced kinds are stored in their slot,
// replacing any previous occupant, and Receive reports false; every
// other command is returned as-is with true, for immediate in-order
// application.
func (ib *Inbox) Receive(cmd Command) (Command, bool) {
	switch c := cmd.(type) {
	case UpdateCamera:
		ib.camera = &c
	case Resize:
		ib.resize = &c
	case RenderFrame:
		ib.frame = &c
	default:
		return cmd, true
	}
	return nil, false
}

// TakeReady returns and clears the pending coalesced commands, in the
// fixed application order: resize, then camera, then frame, so a frame
// is never rendered against a stale surface size.
func (ib *Inbox) TakeReady() []Command {
	var ready []Command
	if ib.resize != nil {
		ready = append(ready, *ib.resize)
		ib.resize = nil
	}
	if ib.camera != nil {
		ready = append(ready, *ib.camera)
		ib.camera = nil
	}
	if ib.frame != nil {
		ready = append(ready, *ib.frame)
		ib.frame = nil
	}
	return ready
}
