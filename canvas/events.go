// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package canvas

import "sync"

// ResizeEvents accumulates window resize notifications between frames.
// Only the most recent size matters; Drain returns it once.
//
// ResizeEvents is safe for concurrent use, so a windowing callback can Push
// while the frame loop drains.
type ResizeEvents struct {
	mu            sync.Mutex
	width, height int
	pending       bool
	count         int
}

// Push records a resize notification.
func (e *ResizeEvents) Push(width, height int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.width, e.height = width, height
	e.pending = true
	e.count++
}

// Drain returns the last pushed size and clears the queue.
// ok is false when nothing was pushed since the previous Drain.
func (e *ResizeEvents) Drain() (width, height int, ok bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.pending {
		return 0, 0, false
	}
	e.pending = false
	e.count = 0
	return e.width, e.height, true
}

// Pending returns the number of notifications waiting to be drained.
func (e *ResizeEvents) Pending() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.count
}
