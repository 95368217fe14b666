// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package canvas

import (
	"errors"
	"fmt"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gpucontext"

	"github.com/gogpu/ggcompose/asset"
	"github.com/gogpu/ggcompose/internal/logging"
	"github.com/gogpu/ggcompose/render"
)

// Common errors returned by Canvas operations.
var (
	// ErrCanvasClosed is returned when operations are attempted on a closed canvas.
	ErrCanvasClosed = errors.New("canvas: canvas is closed")

	// ErrInvalidDimensions is returned when width or height is invalid.
	ErrInvalidDimensions = errors.New("canvas: invalid dimensions")

	// ErrNilFactory is returned when a nil TextureFactory is passed.
	ErrNilFactory = errors.New("canvas: nil TextureFactory")

	// ErrTextureCreationFailed is returned when texture creation fails.
	ErrTextureCreationFailed = errors.New("canvas: texture creation failed")

	// ErrNotDrawable is returned by Present when the canvas texture was not
	// created by the drawer's texture creator.
	ErrNotDrawable = errors.New("canvas: texture is not drawable by this host")
)

// Image is the canvas texture together with the descriptor it was created from.
type Image struct {
	Descriptor render.TextureDescriptor
	Texture    render.Texture
}

// Material binds the canvas image for display. Revision increases every
// time the image is rebound, so hosts caching bind groups know to rebuild.
type Material struct {
	Texture  asset.Handle[*Image]
	Revision uint64
}

// Canvas is the offscreen RGBA texture every fragment is composited into,
// plus the quad and material that show it in the window.
//
// The texture lives in an image store and is looked up by handle on every
// frame, so a resize that swaps it is picked up without any caching.
//
// Canvas is safe for concurrent use.
type Canvas struct {
	mu         sync.Mutex
	factory    render.TextureFactory
	images     *asset.Assets[*Image]
	image      asset.Handle[*Image]
	material   Material
	mesh       Mesh
	oldTexture render.Texture // previous texture awaiting deferred destruction
	width      int
	height     int
	resizes    int
	closed     bool
}

// New creates the canvas texture, material and quad for a window of the
// given physical size.
//
// Returns error if dimensions are invalid, the factory is nil or texture
// creation fails.
func New(factory render.TextureFactory, width, height int) (*Canvas, error) {
	if factory == nil {
		return nil, ErrNilFactory
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: width=%d, height=%d", ErrInvalidDimensions, width, height)
	}

	desc := render.CanvasTextureDescriptor(width, height)
	tex, err := factory.CreateTexture(desc)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTextureCreationFailed, err)
	}

	images := asset.New[*Image]()
	h := images.Add(&Image{Descriptor: desc, Texture: tex})

	logging.Logger().Info("canvas: created", "width", width, "height", height)

	return &Canvas{
		factory:  factory,
		images:   images,
		image:    h,
		material: Material{Texture: h},
		mesh:     QuadMesh(),
		width:    width,
		height:   height,
	}, nil
}

// MustNew is like New but panics on error.
// Use only when errors are programming mistakes (e.g., hardcoded dimensions).
func MustNew(factory render.TextureFactory, width, height int) *Canvas {
	c, err := New(factory, width, height)
	if err != nil {
		panic(err)
	}
	return c
}

// Width returns the canvas width in pixels.
func (c *Canvas) Width() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.width
}

// Height returns the canvas height in pixels.
func (c *Canvas) Height() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.height
}

// Size returns width and height as a convenience.
func (c *Canvas) Size() (width, height int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.width, c.height
}

// Images returns the store holding the canvas image.
func (c *Canvas) Images() *asset.Assets[*Image] {
	return c.images
}

// ImageHandle returns the handle of the canvas image.
func (c *Canvas) ImageHandle() asset.Handle[*Image] {
	return c.image
}

// Material returns the current display material.
func (c *Canvas) Material() Material {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.material
}

// Mesh returns the display quad.
func (c *Canvas) Mesh() Mesh {
	return c.mesh
}

// Display returns the display entity description.
func (c *Canvas) Display() Display {
	return Display{
		Mesh:        c.mesh,
		Material:    c.Material(),
		Translation: mgl32.Vec3{0, 0, DisplayDepth},
	}
}

// Resizes returns how many times the texture has been reallocated.
func (c *Canvas) Resizes() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.resizes
}

// Texture returns the current canvas texture, or nil when the image cannot
// be resolved.
func (c *Canvas) Texture() render.Texture {
	img, ok := c.images.Get(c.image)
	if !ok || img == nil {
		return nil
	}
	return img.Texture
}

// Target resolves the current canvas texture as a render target.
// ok is false when the image is missing or the canvas is closed; the frame
// should then be skipped.
func (c *Canvas) Target() (render.RenderTarget, bool) {
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return nil, false
	}
	tex := c.Texture()
	if tex == nil {
		return nil, false
	}
	return render.NewTextureTarget(tex), true
}

// Resize reallocates the canvas texture at the new physical size.
//
// A zero dimension (minimized window) and an unchanged size are no-ops.
// resized reports whether a new texture was allocated. The previous texture
// is destroyed on the next successful Resize or on Close, so a frame still
// sampling it is not disturbed.
func (c *Canvas) Resize(width, height int) (resized bool, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	log := logging.Logger()
	if c.closed {
		return false, ErrCanvasClosed
	}
	if width <= 0 || height <= 0 {
		log.Debug("canvas: ignoring resize to empty size", "width", width, "height", height)
		return false, nil
	}
	if c.width == width && c.height == height {
		return false, nil
	}
	if !c.images.Contains(c.image) {
		log.Debug("canvas: image missing, resize skipped")
		return false, nil
	}

	desc := render.CanvasTextureDescriptor(width, height)
	tex, err := c.factory.CreateTexture(desc)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrTextureCreationFailed, err)
	}

	var prev render.Texture
	c.images.GetMut(c.image, func(img **Image) {
		prev = (*img).Texture
		*img = &Image{Descriptor: desc, Texture: tex}
	})

	if c.oldTexture != nil {
		c.oldTexture.Destroy()
	}
	c.oldTexture = prev

	// Rebind so the display picks up the new texture.
	c.material.Texture = c.image
	c.material.Revision++

	c.width, c.height = width, height
	c.resizes++

	log.Debug("canvas: resized", "width", width, "height", height)
	return true, nil
}

// Present draws the canvas texture at (x, y) through the host's drawer.
// The canvas must have been created with a factory backed by the drawer's
// TextureCreator.
func (c *Canvas) Present(dc gpucontext.TextureDrawer, x, y float32) error {
	tex, ok := c.Target()
	if !ok {
		return ErrCanvasClosed
	}
	var drawable gpucontext.Texture
	if host, ok := tex.Texture().(*render.HostTexture); ok {
		drawable = host.Host()
	} else {
		drawable = tex.Texture()
	}
	if err := dc.DrawTexture(drawable, x, y); err != nil {
		return fmt.Errorf("%w: %w", ErrNotDrawable, err)
	}
	return nil
}

// Close releases all textures. Close is idempotent.
func (c *Canvas) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true

	if c.oldTexture != nil {
		c.oldTexture.Destroy()
		c.oldTexture = nil
	}
	if img, ok := c.images.Get(c.image); ok && img != nil && img.Texture != nil {
		img.Texture.Destroy()
	}
	c.images.Remove(c.image)
	return nil
}
