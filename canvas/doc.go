// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package canvas owns the offscreen texture every vector fragment is
// composited into, and the quad that shows it in the window.
//
// The data flow each frame is:
//
//	fragments -> aggregate scene -> rasterizer -> canvas texture -> window quad
//
// # Architecture
//
//   - New allocates an RGBA8 texture at the window's physical size, a
//     material bound to it and a full-screen quad mesh.
//   - Resize reallocates the texture when the window size changes and
//     rebinds the material. Zero sizes (minimized windows) are ignored.
//   - ResizeEvents collapses the resize notifications of one frame into one.
//   - Target resolves the current texture for the renderer on every frame.
//   - Present draws the texture through a gpucontext.TextureDrawer.
//
// # Usage
//
//	c, err := canvas.New(render.NewCreatorTextureFactory(dc.TextureCreator()), 800, 600)
//	if err != nil {
//	    return err
//	}
//	defer c.Close()
//
//	app.OnResize(func(w, h int) { events.Push(w, h) })
//	app.OnDraw(func(dc gpucontext.TextureDrawer) {
//	    if w, h, ok := events.Drain(); ok {
//	        _, _ = c.Resize(w, h)
//	    }
//	    // ... render into c.Target() ...
//	    _ = c.Present(dc, 0, 0)
//	})
//
// The display shader (ShaderSource, CompileShader) samples the canvas with
// clip-space positions, so the quad covers the viewport for any camera.
package canvas
