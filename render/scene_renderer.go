// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package render

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/scene"
	"github.com/gogpu/gpucontext"

	"github.com/gogpu/ggcompose/internal/logging"
)

// Renderer errors.
var (
	// ErrNilDeviceHandle is returned when the host passes no device.
	ErrNilDeviceHandle = errors.New("render: nil device handle")

	// ErrNoAntialiasing is returned when a renderer is built with an empty
	// antialiasing support set.
	ErrNoAntialiasing = errors.New("render: no antialiasing method enabled")

	// ErrUnsupportedAntialiasing is returned when a render requests a method
	// the renderer was not built with.
	ErrUnsupportedAntialiasing = errors.New("render: unsupported antialiasing method")

	// ErrSizeMismatch is returned when render params disagree with the
	// target size.
	ErrSizeMismatch = errors.New("render: render size does not match target")

	// ErrNilTarget is returned when rendering to a nil target.
	ErrNilTarget = errors.New("render: nil target")
)

// RendererOptions configures a SceneRenderer.
type RendererOptions struct {
	// Antialiasing is the set of methods renders may request.
	Antialiasing AntialiasingSupport

	// Workers is the number of tile workers. Zero uses GOMAXPROCS.
	Workers int
}

// DefaultRendererOptions enables every antialiasing method.
func DefaultRendererOptions() RendererOptions {
	return RendererOptions{Antialiasing: AntialiasAll}
}

// SceneRenderer rasterizes gg scenes into canvas targets.
//
// Tiles are rasterized in parallel by scene.Renderer with analytic coverage,
// which serves every Antialiasing method. When gg has a GPU accelerator
// registered, the host device is shared with it.
//
// SceneRenderer is NOT safe for concurrent use. Wrap it in a Cell (as
// RendererResource does) to share it.
type SceneRenderer struct {
	handle DeviceHandle
	opts   RendererOptions
	gpu    bool

	raster *scene.Renderer
	pixmap *gg.Pixmap
}

// NewSceneRenderer creates a renderer on the host's device.
//
// Construction failures are fatal for the compositor; the caller decides
// whether to exit.
func NewSceneRenderer(handle DeviceHandle, opts RendererOptions) (*SceneRenderer, error) {
	if handle == nil {
		return nil, ErrNilDeviceHandle
	}
	if opts.Antialiasing == 0 {
		return nil, ErrNoAntialiasing
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}

	log := logging.Logger()

	// Sharing is optional: the provider may not expose HAL objects or no
	// accelerator may be registered.
	gpu := false
	if handle.Device() != nil {
		if err := gg.SetAcceleratorDeviceProvider(handle); err != nil {
			log.Debug("render: accelerator device sharing unavailable", "err", err)
		} else {
			gpu = gg.Accelerator() != nil
		}
	}

	info := handle.AdapterInfo()
	log.Info("render: scene renderer ready",
		"adapter", info.Name,
		"adapterType", info.Type.String(),
		"gpu", gpu,
		"workers", opts.Workers)

	return &SceneRenderer{handle: handle, opts: opts, gpu: gpu}, nil
}

// RenderToTexture implements VectorRenderer.
func (r *SceneRenderer) RenderToTexture(ctx context.Context, s *scene.Scene, target RenderTarget, params RenderParams) error {
	if target == nil {
		return ErrNilTarget
	}
	if params.Width != target.Width() || params.Height != target.Height() {
		return fmt.Errorf("%w: params %dx%d, target %dx%d",
			ErrSizeMismatch, params.Width, params.Height, target.Width(), target.Height())
	}
	if params.Width <= 0 || params.Height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidTextureSize, params.Width, params.Height)
	}
	if !r.opts.Antialiasing.Supports(params.Antialiasing) {
		return fmt.Errorf("%w: %s", ErrUnsupportedAntialiasing, params.Antialiasing)
	}

	r.ensureSize(params.Width, params.Height)
	r.pixmap.Clear(params.BaseColor)
	if s != nil {
		if err := r.raster.RenderWithContext(ctx, r.pixmap, s); err != nil {
			return fmt.Errorf("render: rasterize: %w", err)
		}
	}
	return writeTarget(target, r.pixmap.Data(), params.Width, params.Height)
}

// ensureSize allocates or resizes the rasterizer and its pixmap.
func (r *SceneRenderer) ensureSize(width, height int) {
	if r.raster == nil {
		r.raster = scene.NewRenderer(width, height, scene.WithWorkers(r.opts.Workers))
	} else if r.raster.Width() != width || r.raster.Height() != height {
		r.raster.Resize(width, height)
	}
	if r.pixmap == nil || r.pixmap.Width() != width || r.pixmap.Height() != height {
		r.pixmap = gg.NewPixmap(width, height)
	}
}

// writeTarget copies a tightly packed RGBA frame into the target.
func writeTarget(target RenderTarget, data []byte, width, height int) error {
	if tex := target.Texture(); tex != nil {
		return tex.Write(data)
	}
	pixels, stride := target.Pixels(), target.Stride()
	row := width * BytesPerPixel
	if pixels == nil || stride < row || len(pixels) < stride*(height-1)+row {
		return fmt.Errorf("%w: target has no writable pixels", ErrDataSize)
	}
	for y := 0; y < height; y++ {
		copy(pixels[y*stride:y*stride+row], data[y*row:(y+1)*row])
	}
	return nil
}

// Capabilities returns the renderer's capabilities.
func (r *SceneRenderer) Capabilities() RendererCapabilities {
	return RendererCapabilities{
		IsGPU:        r.gpu,
		Antialiasing: r.opts.Antialiasing,
		Workers:      r.opts.Workers,
	}
}

// AdapterInfo returns the host adapter description.
func (r *SceneRenderer) AdapterInfo() gpucontext.AdapterInfo {
	return r.handle.AdapterInfo()
}

// Close releases rasterizer workers.
func (r *SceneRenderer) Close() {
	if r.raster != nil {
		r.raster.Close()
		r.raster = nil
	}
	r.pixmap = nil
}

var _ CapableRenderer = (*SceneRenderer)(nil)
