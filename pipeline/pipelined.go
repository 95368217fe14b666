// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package pipeline

import (
	"context"
	"errors"
	"sync"
)

// ErrPipelineClosed is returned by Submit after Close.
var ErrPipelineClosed = errors.New("pipeline: closed")

type job struct {
	ctx context.Context
	rw  *RenderWorld
}

type result struct {
	stats FrameStats
	err   error
}

// Pipelined runs the render half of each frame on its own goroutine so the
// host can extract and simulate frame N+1 while frame N renders.
//
// Two render worlds alternate: Submit extracts into the spare one on the
// caller's goroutine, waits for the previous frame to finish and hands the
// new world over. Frames are rendered in submission order.
type Pipelined struct {
	driver *Driver

	worlds [2]RenderWorld
	next   int

	jobs    chan job
	results chan result
	done    chan struct{}

	mu       sync.Mutex
	inFlight bool
	last     result
	closed   bool
	wg       sync.WaitGroup
}

// NewPipelined starts the render goroutine of d. Close stops it.
// d must not be used directly while the Pipelined is running.
func NewPipelined(d *Driver) *Pipelined {
	p := &Pipelined{
		driver:  d,
		jobs:    make(chan job),
		results: make(chan result, 1),
		done:    make(chan struct{}),
	}
	p.wg.Add(1)
	go p.loop()
	return p
}

func (p *Pipelined) loop() {
	defer p.wg.Done()
	for {
		select {
		case j := <-p.jobs:
			p.driver.mu.Lock()
			stats, err := p.driver.process(j.ctx, j.rw)
			p.driver.mu.Unlock()
			p.results <- result{stats: stats, err: err}
		case <-p.done:
			return
		}
	}
}

// Submit extracts the next frame from src and queues it for rendering.
// It returns the result of the previous frame, which had to finish before
// the new one could start.
func (p *Pipelined) Submit(ctx context.Context, src Source) (FrameStats, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return FrameStats{}, ErrPipelineClosed
	}

	rw := &p.worlds[p.next]
	p.next ^= 1
	Extract(src, rw)

	p.driver.mu.Lock()
	p.driver.frame++
	rw.Frame = p.driver.frame
	p.driver.mu.Unlock()

	prev := p.collect()
	select {
	case p.jobs <- job{ctx: ctx, rw: rw}:
		p.inFlight = true
	case <-ctx.Done():
		return prev.stats, ctx.Err()
	}
	return prev.stats, prev.err
}

// collect waits for the in-flight frame. p.mu must be held.
func (p *Pipelined) collect() result {
	if p.inFlight {
		p.last = <-p.results
		p.inFlight = false
	}
	return p.last
}

// Wait blocks until the submitted frame has rendered and returns its result.
func (p *Pipelined) Wait() (FrameStats, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	r := p.collect()
	return r.stats, r.err
}

// Close waits for the in-flight frame and stops the render goroutine.
// Close is idempotent.
func (p *Pipelined) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	p.collect()
	close(p.done)
	p.wg.Wait()
}
