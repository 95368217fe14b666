// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package pipeline turns the fragments of a world into one rasterized
// canvas per frame.
//
// Each frame runs four stages in order:
//
//  1. Extract copies every view-visible fragment instance and the active
//     camera out of the host world into a RenderWorld. The previous frame's
//     instances are replaced, never accumulated.
//  2. Prepare computes a 2D screen-space affine per instance from its world
//     transform, the camera's view and projection and the viewport size.
//  3. Composite sorts the prepared instances by world Z (back to front) and
//     replays each resolved fragment into one aggregate scene under its
//     affine.
//  4. Render rasterizes the aggregate into the canvas target through the
//     shared renderer resource.
//
// Driver runs the stages synchronously on the caller's goroutine.
// Pipelined overlaps extraction of frame N+1 with rendering of frame N while
// keeping the stage order within every frame.
//
// Missing inputs are soft failures: no camera, no viewport, an unresolved
// fragment handle or a missing canvas image skip work for that frame and
// are logged at debug level. Render errors are returned.
package pipeline
