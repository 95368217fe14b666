// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package render is the GPU device service of ggcompose.
//
// The host application owns the GPU device. It hands a DeviceHandle (a
// gpucontext.DeviceProvider) to the compositor, and everything here allocates
// on that device: canvas textures through a TextureFactory and the vector
// rasterizer through SceneRenderer.
//
// # Texture factories
//
//   - HALTextureFactory: textures on a wgpu HAL device, uploads via the queue
//   - CreatorTextureFactory: textures from a gpucontext.TextureCreator
//   - MemoryTextureFactory: CPU textures for headless hosts and tests
//
// # Rendering
//
// SceneRenderer implements VectorRenderer: it clears a target to a base
// color and draws a gg scene over it. RendererResource holds the single
// process-wide renderer; it is initialized once, after the device exists,
// and hands out exclusive access through a Cell so that two renders never
// overlap.
//
//	res := render.NewRendererResource()
//	err := res.Init(func() (render.VectorRenderer, error) {
//	    return render.NewSceneRenderer(handle, render.DefaultRendererOptions())
//	})
//	...
//	err = res.Render(ctx, aggregate, render.NewTextureTarget(tex), params)
//
// # Thread Safety
//
// Textures and factories are safe for concurrent use. SceneRenderer is not;
// share it through RendererResource.
package render
