// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package render

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// ErrNoHALDevice is returned when a provider does not expose wgpu HAL objects.
var ErrNoHALDevice = errors.New("render: provider does not expose HAL device")

// HALTextureFactory allocates canvas textures directly on a wgpu HAL device
// and uploads pixels through the device queue.
type HALTextureFactory struct {
	device hal.Device
	queue  hal.Queue
}

// NewHALTextureFactory extracts the HAL device and queue from a provider
// implementing HalDevice() any and HalQueue() any (gogpu's provider does).
func NewHALTextureFactory(provider any) (*HALTextureFactory, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, ErrNoHALDevice
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("%w: HalDevice is not hal.Device", ErrNoHALDevice)
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("%w: HalQueue is not hal.Queue", ErrNoHALDevice)
	}
	return NewHALTextureFactoryFromDevice(device, queue), nil
}

// NewHALTextureFactoryFromDevice wraps an already opened device and queue.
func NewHALTextureFactoryFromDevice(device hal.Device, queue hal.Queue) *HALTextureFactory {
	return &HALTextureFactory{device: device, queue: queue}
}

// CreateTexture allocates a 2D texture.
func (f *HALTextureFactory) CreateTexture(desc TextureDescriptor) (Texture, error) {
	if err := desc.Validate(); err != nil {
		return nil, err
	}
	//nolint:gosec // G115: dimensions validated positive above
	raw, err := f.device.CreateTexture(&hal.TextureDescriptor{
		Label: desc.Label,
		Size: hal.Extent3D{
			Width:              uint32(desc.Width),
			Height:             uint32(desc.Height),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        desc.Format,
		Usage:         desc.Usage,
	})
	if err != nil {
		return nil, fmt.Errorf("render: create texture %dx%d: %w", desc.Width, desc.Height, err)
	}
	return &HALTexture{factory: f, raw: raw, desc: desc}, nil
}

// HALTexture is a texture owned by a HAL device.
type HALTexture struct {
	factory *HALTextureFactory
	desc    TextureDescriptor

	mu        sync.Mutex
	raw       hal.Texture
	destroyed bool
}

// Width returns the texture width in pixels.
func (t *HALTexture) Width() int { return t.desc.Width }

// Height returns the texture height in pixels.
func (t *HALTexture) Height() int { return t.desc.Height }

// Format returns the texture pixel format.
func (t *HALTexture) Format() gputypes.TextureFormat { return t.desc.Format }

// Usage returns the texture usage flags.
func (t *HALTexture) Usage() gputypes.TextureUsage { return t.desc.Usage }

// Raw returns the underlying HAL texture, or nil after Destroy.
func (t *HALTexture) Raw() hal.Texture {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.raw
}

// Write uploads a full frame of RGBA rows through the queue.
func (t *HALTexture) Write(pixels []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.destroyed {
		return ErrTextureDestroyed
	}
	if err := checkDataSize(t.desc.Width, t.desc.Height, pixels); err != nil {
		return err
	}
	//nolint:gosec // G115: dimensions validated positive at creation
	w, h := uint32(t.desc.Width), uint32(t.desc.Height)
	err := t.factory.queue.WriteTexture(
		&hal.ImageCopyTexture{
			Texture: t.raw,
			Aspect:  gputypes.TextureAspectAll,
		},
		pixels,
		&hal.ImageDataLayout{
			BytesPerRow:  w * BytesPerPixel,
			RowsPerImage: h,
		},
		&hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	)
	if err != nil {
		return fmt.Errorf("render: write texture: %w", err)
	}
	return nil
}

// Destroy releases the HAL texture.
func (t *HALTexture) Destroy() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.destroyed {
		return
	}
	t.destroyed = true
	t.factory.device.DestroyTexture(t.raw)
	t.raw = nil
}

var (
	_ TextureFactory = (*HALTextureFactory)(nil)
	_ Texture        = (*HALTexture)(nil)
)
