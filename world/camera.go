package world

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Viewport is the physical pixel area a camera renders to.
type Viewport struct {
	PhysicalSize [2]uint32
}

// Projection produces a clip-space projection matrix for a viewport.
type Projection interface {
	Matrix(viewportWidth, viewportHeight float32) mgl32.Mat4
}

// OrthographicProjection covers Scale world units per physical pixel, with
// the origin at the viewport center and +Y up. A larger Scale zooms out.
type OrthographicProjection struct {
	Scale float32
	Near  float32
	Far   float32
}

// DefaultOrthographic returns the 2D camera projection.
func DefaultOrthographic() OrthographicProjection {
	return OrthographicProjection{Scale: 1, Near: -1000, Far: 1000}
}

// Matrix implements Projection. A zero Scale is treated as 1.
func (p OrthographicProjection) Matrix(w, h float32) mgl32.Mat4 {
	s := p.Scale
	if s == 0 {
		s = 1
	}
	hw, hh := w/2*s, h/2*s
	return mgl32.Ortho(-hw, hw, -hh, hh, p.Near, p.Far)
}

// PerspectiveProjection is a right-handed perspective projection.
// FovY is in radians.
type PerspectiveProjection struct {
	FovY float32
	Near float32
	Far  float32
}

// Matrix implements Projection.
func (p PerspectiveProjection) Matrix(w, h float32) mgl32.Mat4 {
	aspect := float32(1)
	if h > 0 {
		aspect = w / h
	}
	return mgl32.Perspective(p.FovY, aspect, p.Near, p.Far)
}

// MatrixProjection is a fixed projection, independent of the viewport.
type MatrixProjection struct {
	M mgl32.Mat4
}

// Matrix implements Projection.
func (p MatrixProjection) Matrix(_, _ float32) mgl32.Mat4 {
	return p.M
}

var (
	_ Projection = OrthographicProjection{}
	_ Projection = PerspectiveProjection{}
	_ Projection = MatrixProjection{}
)

// Camera describes how the world is viewed. Only active cameras are
// considered when a frame is extracted; Order breaks ties between them.
type Camera struct {
	Viewport   *Viewport
	Projection Projection
	IsActive   bool
	Order      int
}

// Camera2D returns an active orthographic camera covering a width x height
// physical viewport.
func Camera2D(width, height uint32) Camera {
	return Camera{
		Viewport:   &Viewport{PhysicalSize: [2]uint32{width, height}},
		Projection: DefaultOrthographic(),
		IsActive:   true,
	}
}

// ProjectionMatrix returns the camera's projection for its viewport, or the
// identity when the camera has no projection.
func (c Camera) ProjectionMatrix() mgl32.Mat4 {
	if c.Projection == nil {
		return mgl32.Ident4()
	}
	var w, h float32
	if c.Viewport != nil {
		w, h = float32(c.Viewport.PhysicalSize[0]), float32(c.Viewport.PhysicalSize[1])
	}
	return c.Projection.Matrix(w, h)
}

// clone copies the viewport so callers never share it with the world.
func (c Camera) clone() Camera {
	if c.Viewport != nil {
		vp := *c.Viewport
		c.Viewport = &vp
	}
	return c
}
