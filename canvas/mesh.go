// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package canvas

import (
	"github.com/go-gl/mathgl/mgl32"
)

// DisplayDepth is the Z of the canvas display quad. Slightly negative so
// the canvas stays behind overlays drawn at Z = 0.
const DisplayDepth float32 = -0.001

// Mesh is an indexed triangle list.
type Mesh struct {
	Positions []mgl32.Vec3
	UVs       []mgl32.Vec2
	Indices   []uint32
}

// QuadMesh returns the full-screen quad the canvas is displayed on.
// Positions are clip-space corners; UV (0,0) is the top-left texel.
func QuadMesh() Mesh {
	return Mesh{
		Positions: []mgl32.Vec3{
			{-1, -1, 0},
			{1, -1, 0},
			{1, 1, 0},
			{-1, 1, 0},
		},
		UVs: []mgl32.Vec2{
			{0, 1},
			{1, 1},
			{1, 0},
			{0, 0},
		},
		Indices: []uint32{0, 1, 2, 0, 2, 3},
	}
}

// Display is the entity that presents the canvas: quad mesh, material and
// placement. It is never frustum-culled.
type Display struct {
	Mesh        Mesh
	Material    Material
	Translation mgl32.Vec3
}
