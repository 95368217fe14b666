package ggcompose

import (
	"log/slog"

	"github.com/gogpu/gg"

	"github.com/gogpu/ggcompose/render"
)

// Option configures an App during creation.
//
// Example:
//
//	app, err := ggcompose.New(handle, textures, 800, 600,
//	    ggcompose.WithBaseColor(gg.Black),
//	    ggcompose.WithAntialiasing(render.AntialiasMSAA16))
type Option func(*options)

// RendererFactory builds the vector renderer once the device exists.
type RendererFactory func(handle render.DeviceHandle, opts render.RendererOptions) (render.VectorRenderer, error)

type options struct {
	antialiasing render.Antialiasing
	baseColor    gg.RGBA
	workers      int
	logger       *slog.Logger
	newRenderer  RendererFactory
}

func defaultOptions() options {
	return options{
		antialiasing: render.AntialiasArea,
		baseColor:    gg.Transparent,
		newRenderer:  newSceneRenderer,
	}
}

func newSceneRenderer(handle render.DeviceHandle, opts render.RendererOptions) (render.VectorRenderer, error) {
	return render.NewSceneRenderer(handle, opts)
}

// WithAntialiasing sets the antialiasing method used for every frame.
func WithAntialiasing(a render.Antialiasing) Option {
	return func(o *options) {
		o.antialiasing = a
	}
}

// WithBaseColor sets the color the canvas is cleared to each frame.
// The default is transparent.
func WithBaseColor(c gg.RGBA) Option {
	return func(o *options) {
		o.baseColor = c
	}
}

// WithWorkers sets the number of rasterizer workers. Zero uses GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithLogger sets the logger of the App's frame driver. When no package-wide
// logger has been set, New also installs l with SetLogger so the canvas and
// render packages log to it too.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithRendererFactory replaces the default gg scene renderer.
func WithRendererFactory(f RendererFactory) Option {
	return func(o *options) {
		if f != nil {
			o.newRenderer = f
		}
	}
}
