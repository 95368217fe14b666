// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package render

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
)

// ErrNotUpdatable is returned when a host texture cannot receive new pixels.
var ErrNotUpdatable = errors.New("render: host texture does not implement TextureUpdater")

// CreatorTextureFactory creates textures through a host's
// gpucontext.TextureCreator (for example the renderer of a gogpu window).
// Textures created this way can be drawn by the matching TextureDrawer.
type CreatorTextureFactory struct {
	creator gpucontext.TextureCreator
}

// NewCreatorTextureFactory wraps a host texture creator.
func NewCreatorTextureFactory(creator gpucontext.TextureCreator) *CreatorTextureFactory {
	return &CreatorTextureFactory{creator: creator}
}

// CreateTexture creates a cleared host texture.
func (f *CreatorTextureFactory) CreateTexture(desc TextureDescriptor) (Texture, error) {
	if err := desc.Validate(); err != nil {
		return nil, err
	}
	host, err := f.creator.NewTextureFromRGBA(desc.Width, desc.Height, make([]byte, desc.Width*desc.Height*BytesPerPixel))
	if err != nil {
		return nil, fmt.Errorf("render: host texture creation failed: %w", err)
	}
	return &HostTexture{desc: desc, host: host}, nil
}

// HostTexture wraps a texture owned by the host's renderer.
type HostTexture struct {
	desc TextureDescriptor

	mu        sync.Mutex
	host      gpucontext.Texture
	destroyed bool
}

// Width returns the texture width in pixels.
func (t *HostTexture) Width() int { return t.desc.Width }

// Height returns the texture height in pixels.
func (t *HostTexture) Height() int { return t.desc.Height }

// Format returns the texture pixel format.
func (t *HostTexture) Format() gputypes.TextureFormat { return t.desc.Format }

// Usage returns the texture usage flags.
func (t *HostTexture) Usage() gputypes.TextureUsage { return t.desc.Usage }

// Host returns the wrapped host texture for drawing.
func (t *HostTexture) Host() gpucontext.Texture {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.host
}

// Write uploads pixels through gpucontext.TextureUpdater.
func (t *HostTexture) Write(pixels []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.destroyed {
		return ErrTextureDestroyed
	}
	if err := checkDataSize(t.desc.Width, t.desc.Height, pixels); err != nil {
		return err
	}
	updater, ok := t.host.(gpucontext.TextureUpdater)
	if !ok {
		return ErrNotUpdatable
	}
	if err := updater.UpdateData(pixels); err != nil {
		return fmt.Errorf("render: texture update failed: %w", err)
	}
	return nil
}

// Destroy releases the host texture if it supports destruction.
func (t *HostTexture) Destroy() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.destroyed {
		return
	}
	t.destroyed = true
	if d, ok := t.host.(interface{ Destroy() }); ok {
		d.Destroy()
	}
}

var (
	_ TextureFactory = (*CreatorTextureFactory)(nil)
	_ Texture        = (*HostTexture)(nil)
)
