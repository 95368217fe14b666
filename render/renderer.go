// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"context"
	"fmt"
	"strings"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/scene"
)

// VectorRenderer rasterizes an aggregate scene into a render target.
//
// Example:
//
//	r, err := render.NewSceneRenderer(handle, render.DefaultRendererOptions())
//	if err != nil {
//	    log.Fatalf("no gpu device: %v", err)
//	}
//	err = r.RenderToTexture(ctx, s, render.NewTextureTarget(tex), render.RenderParams{
//	    BaseColor:    gg.Transparent,
//	    Width:        tex.Width(),
//	    Height:       tex.Height(),
//	    Antialiasing: render.AntialiasArea,
//	})
type VectorRenderer interface {
	// RenderToTexture clears the target to params.BaseColor and draws the
	// scene over it. Width and Height in params must equal the target size.
	RenderToTexture(ctx context.Context, s *scene.Scene, target RenderTarget, params RenderParams) error
}

// Antialiasing selects the edge antialiasing method for a render.
type Antialiasing uint8

const (
	// AntialiasArea computes analytic per-pixel area coverage.
	AntialiasArea Antialiasing = iota
	// AntialiasMSAA8 requests 8 coverage samples per pixel.
	AntialiasMSAA8
	// AntialiasMSAA16 requests 16 coverage samples per pixel.
	AntialiasMSAA16
)

// String returns the configuration name of the method.
func (a Antialiasing) String() string {
	switch a {
	case AntialiasArea:
		return "area"
	case AntialiasMSAA8:
		return "msaa8"
	case AntialiasMSAA16:
		return "msaa16"
	default:
		return fmt.Sprintf("Antialiasing(%d)", uint8(a))
	}
}

// ParseAntialiasing parses "area", "msaa8" or "msaa16" (case insensitive).
func ParseAntialiasing(s string) (Antialiasing, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "area":
		return AntialiasArea, nil
	case "msaa8":
		return AntialiasMSAA8, nil
	case "msaa16":
		return AntialiasMSAA16, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedAntialiasing, s)
	}
}

// AntialiasingSupport is the set of methods a renderer was built with.
type AntialiasingSupport uint8

// AntialiasAll enables every antialiasing method.
const AntialiasAll = AntialiasingSupport(1<<AntialiasArea | 1<<AntialiasMSAA8 | 1<<AntialiasMSAA16)

// SupportOf returns a support set holding the given methods.
func SupportOf(methods ...Antialiasing) AntialiasingSupport {
	var s AntialiasingSupport
	for _, m := range methods {
		s |= 1 << m
	}
	return s
}

// Supports reports whether a is in the set.
func (s AntialiasingSupport) Supports(a Antialiasing) bool {
	return a <= AntialiasMSAA16 && s&(1<<a) != 0
}

// RenderParams describes one render.
type RenderParams struct {
	// BaseColor fills the target before the scene is drawn.
	BaseColor gg.RGBA

	// Width and Height must equal the target size.
	Width, Height int

	// Antialiasing must be supported by the renderer.
	Antialiasing Antialiasing
}

// RendererCapabilities describes the features supported by a renderer.
type RendererCapabilities struct {
	// IsGPU indicates if the host device is used for rasterization.
	IsGPU bool

	// Antialiasing lists the supported antialiasing methods.
	Antialiasing AntialiasingSupport

	// Workers is the number of rasterization workers.
	Workers int
}

// CapableRenderer is an optional interface for renderers that can
// report their capabilities.
type CapableRenderer interface {
	VectorRenderer

	// Capabilities returns the renderer's capabilities.
	Capabilities() RendererCapabilities
}
