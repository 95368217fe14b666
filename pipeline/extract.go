// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package pipeline

import (
	"cmp"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/ggcompose/fragment"
	"github.com/gogpu/ggcompose/internal/logging"
	"github.com/gogpu/ggcompose/transform"
	"github.com/gogpu/ggcompose/world"
)

// Source is the read-only view of a host world the pipeline extracts from.
// Both iterations must visit entities in ascending entity order.
type Source interface {
	EachFragment(fn func(e world.Entity, h fragment.Handle, global transform.GlobalTransform, visible bool))
	EachCamera(fn func(e world.Entity, c world.Camera, global transform.GlobalTransform))
}

var _ Source = (*world.World)(nil)

// ExtractedInstance is the render-side copy of one visible fragment entity.
type ExtractedInstance struct {
	Entity          world.Entity
	Fragment        fragment.Handle
	GlobalTransform transform.GlobalTransform

	// Affine is valid only when Prepared is true.
	Affine   PreparedAffine
	Prepared bool
}

// Z returns the world-space depth used for ordering.
func (in *ExtractedInstance) Z() float32 {
	return in.GlobalTransform.Translation().Z()
}

// ExtractedCamera is the render-side copy of the active camera.
type ExtractedCamera struct {
	Entity         world.Entity
	ViewportWidth  uint32
	ViewportHeight uint32
	HasViewport    bool
	View           transform.GlobalTransform
	Projection     mgl32.Mat4
}

// RenderWorld holds everything extracted for one frame.
type RenderWorld struct {
	Instances []ExtractedInstance
	Camera    *ExtractedCamera
	Frame     uint64

	camera ExtractedCamera
}

// Reset empties the render world and keeps its instance storage.
func (rw *RenderWorld) Reset() {
	clear(rw.Instances)
	rw.Instances = rw.Instances[:0]
	rw.Camera = nil
}

// Extract replaces the contents of rw with the visible fragment instances
// and the active camera of src.
//
// Entities whose view visibility is false are skipped. Inactive cameras are
// ignored; when several cameras are active the one with the lowest Order
// (then the lowest entity) is used.
func Extract(src Source, rw *RenderWorld) {
	rw.Reset()

	src.EachFragment(func(e world.Entity, h fragment.Handle, global transform.GlobalTransform, visible bool) {
		if !visible {
			return
		}
		rw.Instances = append(rw.Instances, ExtractedInstance{
			Entity:          e,
			Fragment:        h,
			GlobalTransform: global,
		})
	})

	var (
		best   world.Camera
		found  bool
		active int
	)
	src.EachCamera(func(e world.Entity, c world.Camera, global transform.GlobalTransform) {
		if !c.IsActive {
			return
		}
		active++
		if found && cmp.Compare(c.Order, best.Order) >= 0 {
			return
		}
		best, found = c, true
		rw.camera = ExtractedCamera{
			Entity:     e,
			View:       global,
			Projection: c.ProjectionMatrix(),
		}
		if c.Viewport != nil {
			rw.camera.ViewportWidth = c.Viewport.PhysicalSize[0]
			rw.camera.ViewportHeight = c.Viewport.PhysicalSize[1]
			rw.camera.HasViewport = true
		}
	})
	if found {
		rw.Camera = &rw.camera
	}
	if active > 1 {
		logging.Logger().Debug("pipeline: several active cameras, using the first",
			"active", active, "camera", rw.camera.Entity.String())
	}
}
