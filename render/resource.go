// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package render

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gogpu/gg/scene"

	"github.com/gogpu/ggcompose/internal/logging"
)

// Resource errors.
var (
	// ErrCellBusy is returned when a Cell is already held by another caller.
	ErrCellBusy = errors.New("render: renderer is in use")

	// ErrRendererNotReady is returned when rendering before Init.
	ErrRendererNotReady = errors.New("render: renderer not initialized")

	// ErrAlreadyInitialized is returned by a second Init.
	ErrAlreadyInitialized = errors.New("render: renderer already initialized")
)

// Cell grants exclusive access to a value. A caller that finds the value in
// use gets ErrCellBusy immediately instead of waiting.
type Cell[T any] struct {
	mu sync.Mutex
	v  T
}

// NewCell wraps v.
func NewCell[T any](v T) *Cell[T] {
	return &Cell[T]{v: v}
}

// With runs fn with exclusive access to the value.
func (c *Cell[T]) With(fn func(T) error) error {
	if !c.mu.TryLock() {
		return ErrCellBusy
	}
	defer c.mu.Unlock()
	return fn(c.v)
}

// ResourceState is the lifecycle state of a RendererResource.
type ResourceState uint32

const (
	// StateUninitialized means Init has not succeeded yet.
	StateUninitialized ResourceState = iota
	// StateReady means renders are accepted.
	StateReady
	// StateClosed means the renderer was released.
	StateClosed
)

// String returns the state name.
func (s ResourceState) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateReady:
		return "ready"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("ResourceState(%d)", uint32(s))
	}
}

// RendererResource is the process-wide vector renderer. It is created once
// after the device exists and then used by exactly one render at a time.
type RendererResource struct {
	initMu sync.Mutex
	state  atomic.Uint32
	cell   atomic.Pointer[Cell[VectorRenderer]]
}

// NewRendererResource returns an uninitialized resource.
func NewRendererResource() *RendererResource {
	return &RendererResource{}
}

// Init builds the renderer with factory. It succeeds at most once; later
// calls return ErrAlreadyInitialized. A factory error leaves the resource
// uninitialized and is returned wrapped.
func (r *RendererResource) Init(factory func() (VectorRenderer, error)) error {
	r.initMu.Lock()
	defer r.initMu.Unlock()

	if st := r.State(); st != StateUninitialized {
		return fmt.Errorf("%w (state %s)", ErrAlreadyInitialized, st)
	}
	vr, err := factory()
	if err != nil {
		return fmt.Errorf("render: renderer construction failed: %w", err)
	}
	if vr == nil {
		return fmt.Errorf("render: renderer construction failed: %w", ErrRendererNotReady)
	}
	r.cell.Store(NewCell(vr))
	r.state.Store(uint32(StateReady))
	logging.Logger().Debug("render: renderer resource ready")
	return nil
}

// State returns the current lifecycle state.
func (r *RendererResource) State() ResourceState {
	return ResourceState(r.state.Load())
}

// Ready reports whether renders are accepted.
func (r *RendererResource) Ready() bool {
	return r.State() == StateReady
}

// Render runs one exclusive render.
func (r *RendererResource) Render(ctx context.Context, s *scene.Scene, target RenderTarget, params RenderParams) error {
	cell := r.cell.Load()
	if cell == nil || !r.Ready() {
		return ErrRendererNotReady
	}
	return cell.With(func(vr VectorRenderer) error {
		return vr.RenderToTexture(ctx, s, target, params)
	})
}

// Close releases the renderer. Close is idempotent.
func (r *RendererResource) Close() {
	r.initMu.Lock()
	defer r.initMu.Unlock()
	if r.State() == StateClosed {
		return
	}
	r.state.Store(uint32(StateClosed))
	if cell := r.cell.Swap(nil); cell != nil {
		// Wait for an in-flight render before releasing.
		cell.mu.Lock()
		if c, ok := cell.v.(interface{ Close() }); ok {
			c.Close()
		}
		cell.mu.Unlock()
	}
}
