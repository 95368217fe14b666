// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package render

import (
	"image"
	"sync"

	"github.com/gogpu/gputypes"
)

// MemoryTextureFactory creates CPU-resident textures. Headless hosts and
// tests use it in place of a GPU device.
type MemoryTextureFactory struct {
	mu      sync.Mutex
	created int
}

// NewMemoryTextureFactory creates a factory for CPU textures.
func NewMemoryTextureFactory() *MemoryTextureFactory {
	return &MemoryTextureFactory{}
}

// CreateTexture allocates a zeroed RGBA buffer.
func (f *MemoryTextureFactory) CreateTexture(desc TextureDescriptor) (Texture, error) {
	if err := desc.Validate(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	f.created++
	f.mu.Unlock()
	return &MemoryTexture{
		desc: desc,
		img:  image.NewRGBA(image.Rect(0, 0, desc.Width, desc.Height)),
	}, nil
}

// Created returns the number of textures allocated so far.
func (f *MemoryTextureFactory) Created() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.created
}

// MemoryTexture is an RGBA texture held in system memory.
type MemoryTexture struct {
	desc TextureDescriptor

	mu        sync.Mutex
	img       *image.RGBA
	writes    int
	destroyed bool
}

// Width returns the texture width in pixels.
func (t *MemoryTexture) Width() int { return t.desc.Width }

// Height returns the texture height in pixels.
func (t *MemoryTexture) Height() int { return t.desc.Height }

// Format returns the texture pixel format.
func (t *MemoryTexture) Format() gputypes.TextureFormat { return t.desc.Format }

// Usage returns the texture usage flags.
func (t *MemoryTexture) Usage() gputypes.TextureUsage { return t.desc.Usage }

// Write copies pixels into the texture.
func (t *MemoryTexture) Write(pixels []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.destroyed {
		return ErrTextureDestroyed
	}
	if err := checkDataSize(t.desc.Width, t.desc.Height, pixels); err != nil {
		return err
	}
	copy(t.img.Pix, pixels)
	t.writes++
	return nil
}

// Writes returns how many uploads the texture has received.
func (t *MemoryTexture) Writes() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.writes
}

// Image returns a copy of the texture contents.
func (t *MemoryTexture) Image() *image.RGBA {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := image.NewRGBA(t.img.Rect)
	copy(out.Pix, t.img.Pix)
	return out
}

// Destroy marks the texture unusable.
func (t *MemoryTexture) Destroy() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.destroyed = true
}

// Destroyed reports whether Destroy was called.
func (t *MemoryTexture) Destroyed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.destroyed
}

var (
	_ TextureFactory = (*MemoryTextureFactory)(nil)
	_ Texture        = (*MemoryTexture)(nil)
)
