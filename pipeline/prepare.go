// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package pipeline

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gg"
	"github.com/gogpu/gg/scene"

	"github.com/gogpu/ggcompose/internal/logging"
	"github.com/gogpu/ggcompose/transform"
)

// PreparedAffine is a 2D affine in pixel space:
//
//	x' = A*x + C*y + E
//	y' = B*x + D*y + F
type PreparedAffine struct {
	A, B, C, D, E, F float64
}

// IdentityPrepared returns the identity affine.
func IdentityPrepared() PreparedAffine {
	return PreparedAffine{A: 1, D: 1}
}

// Coefficients returns [a b c d e f].
func (p PreparedAffine) Coefficients() [6]float64 {
	return [6]float64{p.A, p.B, p.C, p.D, p.E, p.F}
}

// Apply maps a point.
func (p PreparedAffine) Apply(x, y float64) (float64, float64) {
	return p.A*x + p.C*y + p.E, p.B*x + p.D*y + p.F
}

// Matrix returns the affine as a gg.Matrix.
func (p PreparedAffine) Matrix() gg.Matrix {
	return gg.Matrix{
		A: p.A, B: p.C, C: p.E,
		D: p.B, E: p.D, F: p.F,
	}
}

// Affine returns the affine in the scene encoding's float32 form.
func (p PreparedAffine) Affine() scene.Affine {
	return scene.AffineFromMatrix(p.Matrix())
}

// pixelMatrix maps clip space [-1, 1] to [0, width] x [0, height].
func pixelMatrix(width, height float32) mgl32.Mat4 {
	return mgl32.Mat4FromRows(
		mgl32.Vec4{width / 2, 0, 0, width / 2},
		mgl32.Vec4{0, height / 2, 0, height / 2},
		mgl32.Vec4{0, 0, 1, 0},
		mgl32.Vec4{0, 0, 0, 1},
	)
}

// flipY negates the Y translation of m. Vector documents are Y-down while
// the world is Y-up.
func flipY(m mgl32.Mat4) mgl32.Mat4 {
	m[13] = -m[13]
	return m
}

// ComputeAffine returns the pixel-space affine of a fragment with world
// transform model seen by a camera at view with the given projection, on a
// width x height viewport.
//
// The computation is pure float32 arithmetic, so identical inputs give
// bit-identical results.
func ComputeAffine(model, view transform.GlobalTransform, projection mgl32.Mat4, width, height uint32) PreparedAffine {
	modelM := flipY(model.ComputeMatrix())
	viewM := flipY(view.ComputeMatrix())
	viewProj := projection.Mul4(viewM.Inv())
	m := pixelMatrix(float32(width), float32(height)).Mul4(viewProj).Mul4(modelM)

	return PreparedAffine{
		A: float64(m.At(0, 0)),
		B: -float64(m.At(1, 0)),
		C: -float64(m.At(0, 1)),
		D: float64(m.At(1, 1)),
		E: float64(m.At(0, 3)),
		F: float64(m.At(1, 3)),
	}
}

// Prepare computes the affine of every extracted instance.
// Without a camera or a viewport of non-zero area it does nothing and returns
// 0; the instances stay unprepared and are not composited.
func Prepare(rw *RenderWorld) int {
	cam := rw.Camera
	if cam == nil {
		logging.Logger().Debug("pipeline: no active camera, prepare skipped")
		return 0
	}
	if !cam.HasViewport {
		logging.Logger().Debug("pipeline: camera has no viewport, prepare skipped",
			"camera", cam.Entity.String())
		return 0
	}
	if cam.ViewportWidth == 0 || cam.ViewportHeight == 0 {
		logging.Logger().Debug("pipeline: camera viewport is empty, prepare skipped",
			"camera", cam.Entity.String(),
			"width", cam.ViewportWidth, "height", cam.ViewportHeight)
		return 0
	}

	for i := range rw.Instances {
		in := &rw.Instances[i]
		in.Affine = ComputeAffine(in.GlobalTransform, cam.View, cam.Projection, cam.ViewportWidth, cam.ViewportHeight)
		in.Prepared = true
	}
	return len(rw.Instances)
}
