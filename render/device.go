// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"errors"
	"fmt"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
)

// DeviceHandle provides GPU device access from the host application.
//
// ggcompose RECEIVES the device from the host, it never creates one. The
// host (for example a gogpu.App) passes its provider when the compositor is
// built, and the same device backs the canvas texture and the rasterizer.
//
// DeviceHandle is an alias for gpucontext.DeviceProvider.
type DeviceHandle = gpucontext.DeviceProvider

// Texture errors.
var (
	// ErrInvalidTextureSize is returned when a texture is requested with a
	// zero or negative dimension.
	ErrInvalidTextureSize = errors.New("render: invalid texture size")

	// ErrTextureDestroyed is returned when writing to a destroyed texture.
	ErrTextureDestroyed = errors.New("render: texture destroyed")

	// ErrDataSize is returned when uploaded pixel data does not match the
	// texture size.
	ErrDataSize = errors.New("render: pixel data size mismatch")
)

// BytesPerPixel is the pixel size of the canvas format (RGBA8).
const BytesPerPixel = 4

// TextureDescriptor describes parameters for creating a texture.
// This mirrors the WebGPU GPUTextureDescriptor for single-level 2D textures.
type TextureDescriptor struct {
	// Label is an optional debug label for the texture.
	Label string

	// Width is the texture width in pixels.
	Width int

	// Height is the texture height in pixels.
	Height int

	// Format is the texture pixel format.
	Format gputypes.TextureFormat

	// Usage specifies how the texture will be used.
	Usage gputypes.TextureUsage
}

// CanvasUsage is the usage set of the canvas texture: the rasterizer writes
// it (storage, render attachment or copy) and the display material samples it.
const CanvasUsage = gputypes.TextureUsageRenderAttachment |
	gputypes.TextureUsageTextureBinding |
	gputypes.TextureUsageCopyDst |
	gputypes.TextureUsageStorageBinding

// CanvasTextureDescriptor returns the descriptor of a canvas texture:
// RGBA8 unorm, single mip, single sample.
func CanvasTextureDescriptor(width, height int) TextureDescriptor {
	return TextureDescriptor{
		Label:  "ggcompose canvas",
		Width:  width,
		Height: height,
		Format: gputypes.TextureFormatRGBA8Unorm,
		Usage:  CanvasUsage,
	}
}

// Validate checks that the descriptor describes a non-empty texture.
func (d TextureDescriptor) Validate() error {
	if d.Width <= 0 || d.Height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidTextureSize, d.Width, d.Height)
	}
	return nil
}

// Texture is a GPU (or CPU-emulated) texture the compositor can write.
//
// Every Texture is also a gpucontext.Texture.
type Texture interface {
	// Width returns the texture width in pixels.
	Width() int

	// Height returns the texture height in pixels.
	Height() int

	// Format returns the texture pixel format.
	Format() gputypes.TextureFormat

	// Usage returns the texture usage flags.
	Usage() gputypes.TextureUsage

	// Write replaces the full texture contents with tightly packed RGBA rows.
	Write(pixels []byte) error

	// Destroy releases resources associated with this texture.
	// Destroy is idempotent.
	Destroy()
}

// TextureFactory allocates textures on the host's device.
type TextureFactory interface {
	CreateTexture(desc TextureDescriptor) (Texture, error)
}

// checkDataSize validates a full-texture upload.
func checkDataSize(width, height int, data []byte) error {
	if want := width * height * BytesPerPixel; len(data) != want {
		return fmt.Errorf("%w: got %d bytes, want %d", ErrDataSize, len(data), want)
	}
	return nil
}

// NullDeviceHandle is a DeviceHandle that provides nil implementations.
// Used for CPU-only hosts where no GPU is available.
type NullDeviceHandle struct{}

// Device returns nil for the null device.
func (NullDeviceHandle) Device() gpucontext.Device { return nil }

// Queue returns nil for the null device.
func (NullDeviceHandle) Queue() gpucontext.Queue { return nil }

// Adapter returns nil for the null device.
func (NullDeviceHandle) Adapter() gpucontext.Adapter { return nil }

// SurfaceFormat returns undefined format for the null device.
func (NullDeviceHandle) SurfaceFormat() gputypes.TextureFormat {
	return gputypes.TextureFormatUndefined
}

// AdapterInfo reports a software adapter.
func (NullDeviceHandle) AdapterInfo() gpucontext.AdapterInfo {
	return gpucontext.AdapterInfo{Name: "ggcompose null device", Type: gpucontext.AdapterTypeSoftware}
}

// Ensure NullDeviceHandle implements DeviceHandle.
var _ DeviceHandle = NullDeviceHandle{}
