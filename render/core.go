// Copyright (c) 2026, Scenecore Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package render implements the render core: the consumer side of the
// command pipeline between the control context and the GPU. Commands
// arrive on an unbounded FIFO queue, high-frequency state (camera,
// resize, frame requests) is coalesced latest-wins, and completion
// events flow back on a second queue.
package render

import (
	"image"
	"log/slog"
	"unsafe"

	"cogentcore.org/core/base/ordmap"
	"cogentcore.org/core/gpu"
	"cogentcore.org/core/math32"
	"github.com/cogentcore/webgpu/wgpu"

	"github.com/scenecore/scenecore/assets"
	"github.com/scenecore/scenecore/fifo"
	"github.com/scenecore/scenecore/scene"
	"github.com/scenecore/scenecore/store"
)

// EnvironmentHandler is the collaborator that consumes environment-map
// buffers. HDR and irradiance processing are outside this module; a
// core without a handler logs and drops environment assets.
type EnvironmentHandler interface {
	SetEnvironment(env *assets.EnvironmentBuffer)
}

// Core is the render-side endpoint of the command pipeline. It owns the
// scene graph, the camera, and the render pipelines, and drives them
// from the command queue on a single goroutine ([Core.Run]). All scene
// mutation is synchronous within that goroutine; the only cross-context
// communication is through the two queues.
type Core struct {
	// Scene is the scene graph the commands mutate.
	Scene *scene.Graph

	// Camera holds the current camera uniform.
	Camera *Camera

	// Environment, if set, receives environment-map assets.
	Environment EnvironmentHandler

	gp        *gpu.GPU
	device    *gpu.Device
	target    gpu.Renderer
	pipelines *Pipelines

	commands *fifo.Queue[Command]
	events   *fifo.Queue[Event]
	inbox    Inbox

	// loaded maps the render ids announced in LoadComplete events to
	// their renderables.
	loaded *ordmap.Map[store.Entity, store.Handle[scene.Renderable]]

	size    image.Point
	running bool
}

// NewCore returns a new render core drawing to the given target, which
// must have been configured with a Depth32 depth buffer. A nil target
// (with nil gp and device) gives a headless core that services the full
// command protocol without touching a GPU, used in tests and for
// protocol-level tooling.
func NewCore(gp *gpu.GPU, dev *gpu.Device, target gpu.Renderer) *Core {
	c := &Core{
		gp:       gp,
		device:   dev,
		target:   target,
		commands: fifo.New[Command](),
		events:   fifo.New[Event](),
		loaded:   ordmap.New[store.Entity, store.Handle[scene.Renderable]](),
	}
	c.Scene = scene.NewGraph(dev)
	c.Camera = NewCamera(dev)
	if target != nil && dev != nil {
		rd := target.Render()
		c.size = rd.Format.Size
		c.pipelines = NewPipelines(dev, rd.Format.Format, c.Camera.Layout(), c.Scene.Layout())
	}
	return c
}

// Commands returns the command queue. The control context sends on it
// and must close it (or send [Stop]) to shut the core down.
func (c *Core) Commands() *fifo.Queue[Command] {
	return c.commands
}

// Events returns the completion event queue.
func (c *Core) Events() *fifo.Queue[Event] {
	return c.events
}

// Send enqueues a command, reporting whether the queue accepted it.
func (c *Core) Send(cmd Command) bool {
	return c.commands.Send(cmd)
}

// Run is the render loop. It blocks for at least one command, drains
// everything else queued without blocking, applies the ordered commands
// in arrival order, then applies at most one coalesced resize, camera
// update, and frame, in that priority order. It returns after a [Stop]
// command or when the command queue is closed, emitting [Stopped] as
// its final event. Stop takes effect at the end of its drain cycle:
// coalesced commands already pending, including a frame request, are
// still applied before the loop exits. The control context must join
// this function before releasing shared device resources.
func (c *Core) Run() {
	c.running = true
	for c.running {
		cmd, ok := c.commands.Recv()
		if !ok {
			// disconnected peer is the Stop signal
			break
		}
		c.receive(cmd)
		for {
			cmd, ok := c.commands.TryRecv()
			if !ok {
				break
			}
			c.receive(cmd)
		}
		for _, rc := range c.inbox.TakeReady() {
			c.apply(rc)
		}
	}
	c.running = false
	c.events.Send(Stopped{})
}

// RunOnce drains and applies every queued command without blocking,
// for deployments that tick the core from an existing loop instead of
// dedicating a goroutine to [Run]. Commands are applied directly in
// arrival order, without coalescing.
func (c *Core) RunOnce() {
	for {
		cmd, ok := c.commands.TryRecv()
		if !ok {
			return
		}
		c.apply(cmd)
	}
}

// receive routes one command through the inbox, applying it immediately
// if it is of the ordered kind.
func (c *Core) receive(cmd Command) {
	if oc, ok := c.inbox.Receive(cmd); ok {
		c.apply(oc)
	}
}

func (c *Core) apply(cmd Command) {
	switch cm := cmd.(type) {
	case RenderFrame:
		c.renderFrame()
		c.events.Send(FrameComplete{})
	case UpdateCamera:
		c.Camera.Set(cm.Position, &cm.View, &cm.Projection)
	case Resize:
		c.resize(cm.Size)
	case LoadAsset:
		c.loadAsset(cm.Buffer)
	case SpawnAsset:
		h, ok := c.loaded.ValueByKeyTry(cm.RenderID)
		if !ok {
			slog.Warn("render: spawn references unknown render id", "renderID", cm.RenderID)
			return
		}
		c.Scene.AddNode(cm.ID, h, cm.Transform)
	case SpawnLight:
		c.Scene.AddLight(cm.ID, cm.Light)
	case UpdateTransform:
		if !c.Scene.SetTransform(cm.ID, cm.Transform) {
			slog.Warn("render: transform update for unknown entity", "entity", cm.ID)
		}
	case UpdateLight:
		if !c.Scene.SetLight(cm.ID, cm.Light) {
			slog.Warn("render: light update for unknown entity", "entity", cm.ID)
		}
	case Despawn:
		if !c.Scene.RemoveNode(cm.ID) {
			slog.Warn("render: despawn of unknown entity", "entity", cm.ID)
		}
	case Stop:
		c.running = false
	}
}

func (c *Core) resize(sz image.Point) {
	c.size = sz
	if c.target != nil {
		c.target.SetSize(sz)
	}
	c.events.Send(ResizeComplete{Size: sz, Device: c.device})
}

// renderFrame submits one frame. The scene's Sync runs first, so draws
// can never reference a buffer that was replaced by store growth. A
// surface-acquisition failure (lost or outdated swapchain) is recovered
// by resizing to the current size; any other device error is fatal to
// the loop.
func (c *Core) renderFrame() {
	c.Scene.Sync()
	if c.target == nil || c.pipelines == nil {
		return
	}
	view, err := c.target.GetCurrentTexture()
	if err != nil {
		slog.Warn("render: could not acquire surface texture, resizing", "err", err)
		c.resize(c.size)
		return
	}
	enc, err := c.device.Device.CreateCommandEncoder(nil)
	if err != nil {
		c.fatal(err)
		return
	}
	rp := c.target.Render().BeginRenderPass(enc, view)
	rp.SetBindGroup(0, c.Camera.BindGroup(), nil)
	rp.SetBindGroup(1, c.Scene.BindGroup(), nil)
	for _, b := range c.Scene.Batches {
		pl := c.pipelines.PipelineByName(b.Key.Pipeline)
		if pl == nil {
			continue
		}
		rp.SetPipeline(pl)
		rend := c.Scene.Renderables.ValueByIndex(b.Key.Renderable)
		switch rend.Kind {
		case scene.PointCloudRenderable:
			ge := c.Scene.Geometries.ValueByIndex(rend.PointCloud)
			rp.SetVertexBuffer(0, ge.VertexBuffer, 0, wgpu.WholeSize)
			rp.Draw(ge.VertexCount, b.Count, 0, b.Offset)
		default:
			for _, pr := range rend.Primitives {
				ge := c.Scene.Geometries.ValueByIndex(pr.Geometry)
				rp.SetVertexBuffer(0, ge.VertexBuffer, 0, wgpu.WholeSize)
				rp.SetIndexBuffer(ge.IndexBuffer, wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
				rp.DrawIndexed(ge.IndexCount, b.Count, 0, 0, b.Offset)
			}
		}
	}
	rp.End()
	rp.Release()
	buf, err := enc.Finish(nil)
	if err != nil {
		enc.Release()
		c.fatal(err)
		return
	}
	c.device.Queue.Submit(buf)
	buf.Release()
	enc.Release()
	c.target.Present()
}

// fatal logs a device error and terminates the loop; the render loop
// does not auto-restart.
func (c *Core) fatal(err error) {
	slog.Error("render: fatal device error, stopping render loop", "err", err)
	c.running = false
}

func (c *Core) loadAsset(buf assets.Buffer) {
	switch b := buf.(type) {
	case *assets.SceneBuffer:
		mats := make([]store.Handle[assets.Material], len(b.Materials))
		for i, mt := range b.Materials {
			mats[i] = c.Scene.AddMaterial(mt)
		}
		for _, nd := range b.Nodes {
			geom := c.Scene.AddMeshGeometry(nd.Mesh)
			var mat store.Handle[assets.Material]
			if nd.Mesh.Material >= 0 && nd.Mesh.Material < len(mats) {
				mat = mats[nd.Mesh.Material]
			}
			rh := c.Scene.AddMesh([]scene.Primitive{{Geometry: geom, Material: mat}})
			id := store.NewEntity()
			c.loaded.Add(id, rh)
			c.events.Send(LoadComplete{RenderID: id, Transform: nd.Transform, Label: nd.Label})
		}
	case *assets.PointCloudBuffer:
		geom := c.Scene.AddPointGeometry(b.Points)
		rh := c.Scene.AddPointCloud(geom)
		id := store.NewEntity()
		c.loaded.Add(id, rh)
		c.events.Send(LoadComplete{RenderID: id, Transform: swapYZMatrix(), Label: b.Name})
	case *assets.EnvironmentBuffer:
		if c.Environment == nil {
			slog.Warn("render: no environment handler configured, dropping asset", "asset", b.Name)
			return
		}
		c.Environment.SetEnvironment(b)
	default:
		slog.Warn("render: unknown asset buffer kind", "asset", buf.Label())
	}
}

// swapYZMatrix maps Z-up point-cloud data into the Y-up scene frame.
func swapYZMatrix() math32.Matrix4 {
	var m math32.Matrix4
	f := (*[16]float32)(unsafe.Pointer(&m))
	f[0] = 1
	f[6] = 1
	f[9] = 1
	f[15] = 1
	return m
}
