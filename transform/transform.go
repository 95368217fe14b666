// Package transform provides the 3D transforms hosts attach to entities.
//
// Transform is the local translation/rotation/scale of an entity relative to
// its parent. GlobalTransform is the composed world matrix produced by
// propagation. Both use column-major mgl32 matrices.
package transform

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Transform is a local translation, rotation and scale.
type Transform struct {
	Translation mgl32.Vec3
	Rotation    mgl32.Quat
	Scale       mgl32.Vec3
}

// Identity returns a transform that leaves points unchanged.
func Identity() Transform {
	return Transform{
		Rotation: mgl32.QuatIdent(),
		Scale:    mgl32.Vec3{1, 1, 1},
	}
}

// FromTranslation returns an identity transform moved to (x, y, z).
func FromTranslation(x, y, z float32) Transform {
	t := Identity()
	t.Translation = mgl32.Vec3{x, y, z}
	return t
}

// FromXYZ is FromTranslation for callers holding a vector.
func FromXYZ(v mgl32.Vec3) Transform {
	return FromTranslation(v.X(), v.Y(), v.Z())
}

// FromScale returns an identity transform with a uniform scale.
func FromScale(s float32) Transform {
	t := Identity()
	t.Scale = mgl32.Vec3{s, s, s}
	return t
}

// FromRotationZ returns an identity transform rotated by angle radians
// around the Z axis.
func FromRotationZ(angle float32) Transform {
	t := Identity()
	t.Rotation = mgl32.QuatRotate(angle, mgl32.Vec3{0, 0, 1})
	return t
}

// WithTranslation returns a copy of t moved to (x, y, z).
func (t Transform) WithTranslation(x, y, z float32) Transform {
	t.Translation = mgl32.Vec3{x, y, z}
	return t
}

// WithScale returns a copy of t with the given scale.
func (t Transform) WithScale(x, y, z float32) Transform {
	t.Scale = mgl32.Vec3{x, y, z}
	return t
}

// WithRotation returns a copy of t with the given rotation.
func (t Transform) WithRotation(q mgl32.Quat) Transform {
	t.Rotation = q
	return t
}

// ComputeMatrix returns T * R * S.
func (t Transform) ComputeMatrix() mgl32.Mat4 {
	m := mgl32.Translate3D(t.Translation.X(), t.Translation.Y(), t.Translation.Z())
	m = m.Mul4(t.Rotation.Mat4())
	return m.Mul4(mgl32.Scale3D(t.Scale.X(), t.Scale.Y(), t.Scale.Z()))
}

// GlobalTransform is an entity's world matrix.
// The zero value is not the identity; use IdentityGlobal.
type GlobalTransform struct {
	m mgl32.Mat4
}

// IdentityGlobal returns the identity world transform.
func IdentityGlobal() GlobalTransform {
	return GlobalTransform{m: mgl32.Ident4()}
}

// FromMatrix wraps a world matrix.
func FromMatrix(m mgl32.Mat4) GlobalTransform {
	return GlobalTransform{m: m}
}

// FromTransform returns the world transform of a root entity with local t.
func FromTransform(t Transform) GlobalTransform {
	return GlobalTransform{m: t.ComputeMatrix()}
}

// ComputeMatrix returns the world matrix.
func (g GlobalTransform) ComputeMatrix() mgl32.Mat4 {
	return g.m
}

// Translation returns the world-space translation.
func (g GlobalTransform) Translation() mgl32.Vec3 {
	return g.m.Col(3).Vec3()
}

// MulTransform composes a child's local transform under g.
func (g GlobalTransform) MulTransform(local Transform) GlobalTransform {
	return GlobalTransform{m: g.m.Mul4(local.ComputeMatrix())}
}
