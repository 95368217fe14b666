// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/scene"

	"github.com/gogpu/ggcompose/asset"
	"github.com/gogpu/ggcompose/fragment"
	"github.com/gogpu/ggcompose/internal/logging"
	"github.com/gogpu/ggcompose/render"
)

// ErrRenderFailed wraps errors returned by the renderer. The frame is
// dropped; the next frame runs normally.
var ErrRenderFailed = errors.New("pipeline: render failed")

// Skip reasons reported in FrameStats.
const (
	SkipNoTarget   = "no canvas target"
	SkipEmptyQueue = "empty render queue"
)

// Renderer rasterizes an aggregate scene into a target.
// *render.RendererResource implements it.
type Renderer interface {
	Render(ctx context.Context, s *scene.Scene, target render.RenderTarget, params render.RenderParams) error
}

var _ Renderer = (*render.RendererResource)(nil)

// TargetSource resolves the canvas texture for the current frame.
// *canvas.Canvas implements it.
type TargetSource interface {
	Target() (render.RenderTarget, bool)
}

// FrameStats describes what one frame did.
type FrameStats struct {
	Frame            uint64
	Extracted        int
	Prepared         int
	Queued           int
	Appended         int
	MissingFragments int
	Rendered         bool
	SkipReason       string
}

// Option configures a Driver.
type Option func(*options)

type options struct {
	baseColor    gg.RGBA
	antialiasing render.Antialiasing
	logger       *slog.Logger
}

func defaultOptions() options {
	return options{
		baseColor:    gg.Transparent,
		antialiasing: render.AntialiasArea,
	}
}

// WithBaseColor sets the color the canvas is cleared to before
// compositing. The default is transparent.
func WithBaseColor(c gg.RGBA) Option {
	return func(o *options) {
		o.baseColor = c
	}
}

// WithAntialiasing sets the antialiasing method of every render.
func WithAntialiasing(a render.Antialiasing) Option {
	return func(o *options) {
		o.antialiasing = a
	}
}

// WithLogger sets a driver-specific logger. By default the package-wide
// logger is used.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// Driver runs Extract, Prepare, Composite and Render for each frame.
// A Driver runs one frame at a time; concurrent RunFrame calls are
// serialized.
type Driver struct {
	mu        sync.Mutex
	opts      options
	renderer  Renderer
	targets   TargetSource
	fragments asset.Reader[*fragment.Fragment]

	rw    RenderWorld
	agg   *scene.Scene
	queue []*ExtractedInstance
	frame uint64
}

// NewDriver creates a frame driver rendering fragments from the given
// store into the targets' canvas with renderer.
func NewDriver(renderer Renderer, targets TargetSource, fragments asset.Reader[*fragment.Fragment], opts ...Option) *Driver {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Driver{
		opts:      o,
		renderer:  renderer,
		targets:   targets,
		fragments: fragments,
		agg:       scene.NewScene(),
	}
}

func (d *Driver) log() *slog.Logger {
	if d.opts.logger != nil {
		return d.opts.logger
	}
	return logging.Logger()
}

// Scene returns the aggregate scene of the last frame. It is reused and
// overwritten by the next frame.
func (d *Driver) Scene() *scene.Scene {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.agg
}

// Frames returns the number of frames run so far.
func (d *Driver) Frames() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.frame
}

// RunFrame extracts from src and renders one frame.
func (d *Driver) RunFrame(ctx context.Context, src Source) (FrameStats, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.frame++
	Extract(src, &d.rw)
	d.rw.Frame = d.frame
	return d.process(ctx, &d.rw)
}

// process runs Prepare, Composite and Render on an extracted world.
// d.mu must be held.
func (d *Driver) process(ctx context.Context, rw *RenderWorld) (FrameStats, error) {
	stats := FrameStats{
		Frame:     rw.Frame,
		Extracted: len(rw.Instances),
	}
	stats.Prepared = Prepare(rw)

	target, ok := d.targets.Target()
	if !ok {
		stats.SkipReason = SkipNoTarget
		d.log().Debug("pipeline: canvas target unavailable, frame skipped", "frame", rw.Frame)
		return stats, nil
	}

	d.queue = Queue(rw, d.queue)
	stats.Queued, stats.Appended, stats.MissingFragments = composite(d.queue, d.fragments, d.agg)
	clear(d.queue)
	if stats.Queued == 0 {
		stats.SkipReason = SkipEmptyQueue
		return stats, nil
	}

	params := render.RenderParams{
		BaseColor:    d.opts.baseColor,
		Width:        target.Width(),
		Height:       target.Height(),
		Antialiasing: d.opts.antialiasing,
	}
	if err := d.renderer.Render(ctx, d.agg, target, params); err != nil {
		d.log().Warn("pipeline: frame dropped", "frame", rw.Frame, "error", err)
		return stats, fmt.Errorf("%w: frame %d: %w", ErrRenderFailed, rw.Frame, err)
	}
	stats.Rendered = true
	return stats, nil
}
