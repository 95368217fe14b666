// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package render

import (
	"image"

	"github.com/gogpu/gputypes"
)

// RenderTarget defines where rasterized output goes.
//
//   - PixmapTarget: CPU-backed *image.RGBA
//   - TextureTarget: a Texture created by a TextureFactory
//
// Targets expose either CPU pixels (Pixels) or a texture (Texture).
// The renderer picks the access method the target supports.
type RenderTarget interface {
	// Width returns the target width in pixels.
	Width() int

	// Height returns the target height in pixels.
	Height() int

	// Format returns the pixel format of the target.
	Format() gputypes.TextureFormat

	// Texture returns the texture backing this target.
	// Returns nil for CPU-only targets.
	Texture() Texture

	// Pixels returns direct access to pixel data.
	// Returns nil for texture targets.
	Pixels() []byte

	// Stride returns the number of bytes per row of Pixels.
	Stride() int
}

// PixmapTarget is a CPU-backed render target using *image.RGBA.
type PixmapTarget struct {
	img *image.RGBA
}

// NewPixmapTarget creates a new CPU-backed render target.
func NewPixmapTarget(width, height int) *PixmapTarget {
	return &PixmapTarget{
		img: image.NewRGBA(image.Rect(0, 0, width, height)),
	}
}

// NewPixmapTargetFromImage wraps an existing *image.RGBA as a render target.
// The image is used directly without copying.
func NewPixmapTargetFromImage(img *image.RGBA) *PixmapTarget {
	return &PixmapTarget{img: img}
}

// Width returns the target width in pixels.
func (t *PixmapTarget) Width() int {
	return t.img.Bounds().Dx()
}

// Height returns the target height in pixels.
func (t *PixmapTarget) Height() int {
	return t.img.Bounds().Dy()
}

// Format returns the pixel format (RGBA8).
func (t *PixmapTarget) Format() gputypes.TextureFormat {
	return gputypes.TextureFormatRGBA8Unorm
}

// Texture returns nil as this is a CPU-only target.
func (t *PixmapTarget) Texture() Texture {
	return nil
}

// Pixels returns direct access to the pixel data.
func (t *PixmapTarget) Pixels() []byte {
	return t.img.Pix
}

// Stride returns the number of bytes per row.
func (t *PixmapTarget) Stride() int {
	return t.img.Stride
}

// Image returns the underlying *image.RGBA.
// The returned image shares memory with the target.
func (t *PixmapTarget) Image() *image.RGBA {
	return t.img
}

// Ensure PixmapTarget implements RenderTarget.
var _ RenderTarget = (*PixmapTarget)(nil)

// TextureTarget renders into a Texture. The target does not own the
// texture; whoever created it destroys it.
type TextureTarget struct {
	tex Texture
}

// NewTextureTarget wraps a texture as a render target.
func NewTextureTarget(tex Texture) *TextureTarget {
	return &TextureTarget{tex: tex}
}

// Width returns the target width in pixels.
func (t *TextureTarget) Width() int {
	return t.tex.Width()
}

// Height returns the target height in pixels.
func (t *TextureTarget) Height() int {
	return t.tex.Height()
}

// Format returns the pixel format.
func (t *TextureTarget) Format() gputypes.TextureFormat {
	return t.tex.Format()
}

// Texture returns the wrapped texture.
func (t *TextureTarget) Texture() Texture {
	return t.tex
}

// Pixels returns nil as this is a texture target.
func (t *TextureTarget) Pixels() []byte {
	return nil
}

// Stride returns 0 as this is a texture target.
func (t *TextureTarget) Stride() int {
	return 0
}

// Ensure TextureTarget implements RenderTarget.
var _ RenderTarget = (*TextureTarget)(nil)
