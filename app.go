package ggcompose

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/gogpu/gpucontext"

	"github.com/gogpu/ggcompose/canvas"
	"github.com/gogpu/ggcompose/fragment"
	"github.com/gogpu/ggcompose/internal/logging"
	"github.com/gogpu/ggcompose/pipeline"
	"github.com/gogpu/ggcompose/render"
	"github.com/gogpu/ggcompose/transform"
	"github.com/gogpu/ggcompose/world"
)

// ErrClosed is returned by App methods after Close.
var ErrClosed = errors.New("ggcompose: app closed")

// App owns everything one window needs to composite fragments: the world,
// the fragment store, the canvas, the renderer and the frame driver.
//
// Frame must be called from one goroutine at a time. OnResize may be called
// from any goroutine.
type App struct {
	window    gpucontext.WindowProvider
	world     *world.World
	fragments *fragment.Assets
	canvas    *canvas.Canvas
	renderer  *render.RendererResource
	driver    *pipeline.Driver
	resizes   canvas.ResizeEvents

	mu     sync.Mutex
	closed bool
}

// New creates an App with a width x height canvas on the host's device.
// textures allocates the canvas texture on that device.
//
// Renderer construction failures are returned; the caller decides whether
// to exit.
func New(handle render.DeviceHandle, textures render.TextureFactory, width, height int, opts ...Option) (*App, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger != nil && logging.IsSilent() {
		SetLogger(o.logger)
	}

	c, err := canvas.New(textures, width, height)
	if err != nil {
		return nil, fmt.Errorf("ggcompose: create canvas: %w", err)
	}

	res := render.NewRendererResource()
	err = res.Init(func() (render.VectorRenderer, error) {
		return o.newRenderer(handle, render.RendererOptions{
			Antialiasing: render.SupportOf(o.antialiasing),
			Workers:      o.workers,
		})
	})
	if err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("ggcompose: %w", err)
	}

	fragments := fragment.NewAssets()
	driverOpts := []pipeline.Option{
		pipeline.WithBaseColor(o.baseColor),
		pipeline.WithAntialiasing(o.antialiasing),
	}
	if o.logger != nil {
		driverOpts = append(driverOpts, pipeline.WithLogger(o.logger))
	}

	return &App{
		world:     world.New(),
		fragments: fragments,
		canvas:    c,
		renderer:  res,
		driver:    pipeline.NewDriver(res, c, fragments, driverOpts...),
	}, nil
}

// NewFromWindow creates an App whose canvas matches the physical size of
// win. Resize events are resolved against win on the next frame.
func NewFromWindow(handle render.DeviceHandle, textures render.TextureFactory, win gpucontext.WindowProvider, opts ...Option) (*App, error) {
	w, h := physicalSize(win)
	app, err := New(handle, textures, w, h, opts...)
	if err != nil {
		return nil, err
	}
	app.window = win
	return app, nil
}

// physicalSize converts the window's logical size to pixels.
func physicalSize(win gpucontext.WindowProvider) (int, int) {
	w, h := win.Size()
	s := win.ScaleFactor()
	if s <= 0 {
		s = 1
	}
	return int(math.Round(float64(w) * s)), int(math.Round(float64(h) * s))
}

// World returns the App's world.
func (a *App) World() *world.World { return a.world }

// Fragments returns the fragment store.
func (a *App) Fragments() *fragment.Assets { return a.fragments }

// Canvas returns the canvas.
func (a *App) Canvas() *canvas.Canvas { return a.canvas }

// Driver returns the frame driver, for hosts that run it through
// pipeline.NewPipelined instead of Frame.
func (a *App) Driver() *pipeline.Driver { return a.driver }

// AddFragment stores f and returns its handle.
func (a *App) AddFragment(f *fragment.Fragment) fragment.Handle {
	return a.fragments.Add(f)
}

// Spawn adds a fragment entity to the world.
func (a *App) Spawn(b world.FragmentBundle) world.Entity {
	return a.world.Spawn(b)
}

// SpawnCamera2D adds a 2D camera whose viewport is the canvas.
func (a *App) SpawnCamera2D() world.Entity {
	w, h := a.canvas.Size()
	return a.world.SpawnCamera(world.Camera2D(uint32(w), uint32(h)), transform.Identity())
}

// OnResize records a window resize. It is applied at the start of the next
// Frame; several resizes between frames collapse into one.
func (a *App) OnResize(width, height int) {
	a.resizes.Push(width, height)
}

// Attach routes the resize events of es to the App.
func (a *App) Attach(es gpucontext.EventSource) {
	es.OnResize(a.OnResize)
}

// Frame applies pending resizes, propagates the world and composites one
// frame into the canvas.
func (a *App) Frame(ctx context.Context) (pipeline.FrameStats, error) {
	a.mu.Lock()
	closed := a.closed
	a.mu.Unlock()
	if closed {
		return pipeline.FrameStats{}, ErrClosed
	}

	if err := a.applyResize(); err != nil {
		return pipeline.FrameStats{}, err
	}
	a.world.Propagate()
	return a.driver.RunFrame(ctx, a.world)
}

func (a *App) applyResize() error {
	w, h, ok := a.resizes.Drain()
	if !ok {
		return nil
	}
	if a.window != nil {
		w, h = physicalSize(a.window)
	}
	resized, err := a.canvas.Resize(w, h)
	if err != nil {
		return fmt.Errorf("ggcompose: resize canvas: %w", err)
	}
	if resized {
		a.world.ResizeViewports(uint32(w), uint32(h))
	}
	return nil
}

// Present draws the canvas into the host window.
func (a *App) Present(dc gpucontext.TextureDrawer) error {
	return a.canvas.Present(dc, 0, 0)
}

// Close releases the renderer and the canvas. Close is idempotent.
func (a *App) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return nil
	}
	a.closed = true
	a.renderer.Close()
	return a.canvas.Close()
}
