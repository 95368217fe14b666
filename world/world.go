// Package world is a small entity store: hierarchy, local and global
// transforms, visibility and cameras. It is the host side the compositor
// queries every frame.
package world

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gogpu/ggcompose/fragment"
	"github.com/gogpu/ggcompose/transform"
)

var (
	// ErrNoEntity is returned when an entity is not alive.
	ErrNoEntity = errors.New("world: no such entity")

	// ErrNotCamera is returned by camera setters on non-camera entities.
	ErrNotCamera = errors.New("world: entity is not a camera")

	// ErrCycle is returned when SetParent would make an entity its own ancestor.
	ErrCycle = errors.New("world: parent cycle")
)

// Entity identifies an entity. Generation changes when an index is reused,
// so stale Entity values stop resolving after Despawn.
type Entity struct {
	Index      uint32
	Generation uint32
}

func (e Entity) String() string {
	return fmt.Sprintf("Entity(%dv%d)", e.Index, e.Generation)
}

// Visibility is the user-set visibility of an entity.
type Visibility uint8

const (
	// VisibilityInherited takes the parent's visibility (visible at the root).
	VisibilityInherited Visibility = iota
	// VisibilityVisible is visible unless an ancestor is hidden.
	VisibilityVisible
	// VisibilityHidden hides the entity and its whole subtree.
	VisibilityHidden
)

func (v Visibility) String() string {
	switch v {
	case VisibilityInherited:
		return "inherited"
	case VisibilityVisible:
		return "visible"
	case VisibilityHidden:
		return "hidden"
	default:
		return fmt.Sprintf("Visibility(%d)", uint8(v))
	}
}

// FragmentBundle is what a host spawns to show a fragment: the fragment
// handle, its local transform, its computed world transform and its
// visibility. A zero Transform is treated as the identity, and a zero
// GlobalTransform is derived from Transform.
type FragmentBundle struct {
	Fragment        fragment.Handle
	Transform       transform.Transform
	GlobalTransform transform.GlobalTransform
	Visibility      Visibility
}

// NewFragmentBundle returns a visible bundle for h placed at t.
func NewFragmentBundle(h fragment.Handle, t transform.Transform) FragmentBundle {
	return FragmentBundle{
		Fragment:        h,
		Transform:       t,
		GlobalTransform: transform.FromTransform(t),
	}
}

type record struct {
	generation uint32
	alive      bool

	parent    uint32
	hasParent bool
	children  []uint32

	local      transform.Transform
	global     transform.GlobalTransform
	visibility Visibility
	visible    bool // inherited visibility, computed by Propagate

	hasFragment bool
	fragment    fragment.Handle

	camera *Camera
}

// World stores entities. It is safe for concurrent use; query callbacks
// run under a read lock and must not modify the world.
type World struct {
	mu      sync.RWMutex
	records []record
	free    []uint32
	alive   int
}

// New creates an empty world.
func New() *World {
	return &World{}
}

func orIdentity(t transform.Transform) transform.Transform {
	if t == (transform.Transform{}) {
		return transform.Identity()
	}
	return t
}

func (w *World) spawn(r record) Entity {
	r.alive = true
	var idx uint32
	if n := len(w.free); n > 0 {
		idx = w.free[n-1]
		w.free = w.free[:n-1]
		r.generation = w.records[idx].generation
		w.records[idx] = r
	} else {
		idx = uint32(len(w.records))
		w.records = append(w.records, r)
	}
	w.alive++
	return Entity{Index: idx, Generation: r.generation}
}

// Spawn adds a fragment entity.
func (w *World) Spawn(b FragmentBundle) Entity {
	local := orIdentity(b.Transform)
	global := b.GlobalTransform
	if global == (transform.GlobalTransform{}) {
		global = transform.FromTransform(local)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	return w.spawn(record{
		local:       local,
		global:      global,
		visibility:  b.Visibility,
		visible:     b.Visibility != VisibilityHidden,
		hasFragment: true,
		fragment:    b.Fragment,
	})
}

// SpawnEmpty adds an entity with only a transform, used to group children.
func (w *World) SpawnEmpty(t transform.Transform) Entity {
	t = orIdentity(t)
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.spawn(record{
		local:   t,
		global:  transform.FromTransform(t),
		visible: true,
	})
}

// SpawnCamera adds a camera entity placed at t.
func (w *World) SpawnCamera(c Camera, t transform.Transform) Entity {
	cam := c.clone()
	t = orIdentity(t)
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.spawn(record{
		local:   t,
		global:  transform.FromTransform(t),
		visible: true,
		camera:  &cam,
	})
}

func (w *World) lookup(e Entity) (*record, bool) {
	if int(e.Index) >= len(w.records) {
		return nil, false
	}
	r := &w.records[e.Index]
	if !r.alive || r.generation != e.Generation {
		return nil, false
	}
	return r, true
}

func (w *World) get(e Entity) (*record, error) {
	r, ok := w.lookup(e)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoEntity, e)
	}
	return r, nil
}

// Alive reports whether e refers to a live entity.
func (w *World) Alive(e Entity) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	_, ok := w.lookup(e)
	return ok
}

// Len returns the number of live entities.
func (w *World) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.alive
}

// Despawn removes e and all of its descendants.
func (w *World) Despawn(e Entity) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	r, err := w.get(e)
	if err != nil {
		return err
	}
	if r.hasParent {
		w.detach(e.Index)
	}
	w.despawnTree(e.Index)
	return nil
}

func (w *World) despawnTree(idx uint32) {
	children := w.records[idx].children
	for _, c := range children {
		w.despawnTree(c)
	}
	gen := w.records[idx].generation + 1
	w.records[idx] = record{generation: gen}
	w.free = append(w.free, idx)
	w.alive--
}

func (w *World) detach(idx uint32) {
	r := &w.records[idx]
	p := &w.records[r.parent]
	for i, c := range p.children {
		if c == idx {
			p.children = append(p.children[:i], p.children[i+1:]...)
			break
		}
	}
	r.hasParent = false
	r.parent = 0
}

// SetParent makes child a child of parent. Global transforms and
// visibility follow on the next Propagate.
func (w *World) SetParent(child, parent Entity) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, err := w.get(child); err != nil {
		return err
	}
	if _, err := w.get(parent); err != nil {
		return err
	}
	for idx, ok := parent.Index, true; ok; {
		if idx == child.Index {
			return fmt.Errorf("%w: %s under %s", ErrCycle, child, parent)
		}
		r := &w.records[idx]
		idx, ok = r.parent, r.hasParent
	}

	if w.records[child.Index].hasParent {
		w.detach(child.Index)
	}
	r := &w.records[child.Index]
	r.parent, r.hasParent = parent.Index, true
	p := &w.records[parent.Index]
	p.children = append(p.children, child.Index)
	return nil
}

// RemoveParent makes e a root again.
func (w *World) RemoveParent(e Entity) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	r, err := w.get(e)
	if err != nil {
		return err
	}
	if r.hasParent {
		w.detach(e.Index)
	}
	return nil
}

// Parent returns the parent of e.
func (w *World) Parent(e Entity) (Entity, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	r, ok := w.lookup(e)
	if !ok || !r.hasParent {
		return Entity{}, false
	}
	return Entity{Index: r.parent, Generation: w.records[r.parent].generation}, true
}

// SetTransform replaces the local transform of e.
func (w *World) SetTransform(e Entity, t transform.Transform) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	r, err := w.get(e)
	if err != nil {
		return err
	}
	r.local = t
	return nil
}

// Transform returns the local transform of e.
func (w *World) Transform(e Entity) (transform.Transform, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	r, ok := w.lookup(e)
	if !ok {
		return transform.Transform{}, false
	}
	return r.local, true
}

// GlobalTransform returns the world transform of e as of the last Propagate.
func (w *World) GlobalTransform(e Entity) (transform.GlobalTransform, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	r, ok := w.lookup(e)
	if !ok {
		return transform.GlobalTransform{}, false
	}
	return r.global, true
}

// SetVisibility sets the user visibility of e.
func (w *World) SetVisibility(e Entity, v Visibility) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	r, err := w.get(e)
	if err != nil {
		return err
	}
	r.visibility = v
	return nil
}

// Visibility returns the user visibility of e.
func (w *World) Visibility(e Entity) (Visibility, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	r, ok := w.lookup(e)
	if !ok {
		return VisibilityInherited, false
	}
	return r.visibility, true
}

// ViewVisible reports whether e is visible as of the last Propagate.
func (w *World) ViewVisible(e Entity) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	r, ok := w.lookup(e)
	return ok && r.visible
}

// SetFragment rebinds the fragment shown by e.
func (w *World) SetFragment(e Entity, h fragment.Handle) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	r, err := w.get(e)
	if err != nil {
		return err
	}
	r.fragment = h
	r.hasFragment = true
	return nil
}

// Fragment returns the fragment handle bound to e.
func (w *World) Fragment(e Entity) (fragment.Handle, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	r, ok := w.lookup(e)
	if !ok || !r.hasFragment {
		return fragment.Handle{}, false
	}
	return r.fragment, true
}

// Camera returns a copy of the camera on e.
func (w *World) Camera(e Entity) (Camera, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	r, ok := w.lookup(e)
	if !ok || r.camera == nil {
		return Camera{}, false
	}
	return r.camera.clone(), true
}

// SetCamera replaces the camera on e.
func (w *World) SetCamera(e Entity, c Camera) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	r, err := w.get(e)
	if err != nil {
		return err
	}
	if r.camera == nil {
		return fmt.Errorf("%w: %s", ErrNotCamera, e)
	}
	cam := c.clone()
	r.camera = &cam
	return nil
}

// SetCameraViewport sets the physical viewport of the camera on e.
func (w *World) SetCameraViewport(e Entity, width, height uint32) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	r, err := w.get(e)
	if err != nil {
		return err
	}
	if r.camera == nil {
		return fmt.Errorf("%w: %s", ErrNotCamera, e)
	}
	r.camera.Viewport = &Viewport{PhysicalSize: [2]uint32{width, height}}
	return nil
}

// ResizeViewports sets the physical size of every camera that has a
// viewport and returns how many were updated.
func (w *World) ResizeViewports(width, height uint32) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	n := 0
	for i := range w.records {
		r := &w.records[i]
		if r.alive && r.camera != nil && r.camera.Viewport != nil {
			r.camera.Viewport = &Viewport{PhysicalSize: [2]uint32{width, height}}
			n++
		}
	}
	return n
}

// Propagate recomputes global transforms (parent times local, roots first)
// and inherited visibility. A hidden entity hides its whole subtree.
func (w *World) Propagate() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for i := range w.records {
		r := &w.records[i]
		if r.alive && !r.hasParent {
			w.propagate(uint32(i), transform.IdentityGlobal(), true)
		}
	}
}

func (w *World) propagate(idx uint32, parent transform.GlobalTransform, parentVisible bool) {
	r := &w.records[idx]
	r.global = parent.MulTransform(r.local)
	r.visible = parentVisible && r.visibility != VisibilityHidden
	global, visible := r.global, r.visible
	for _, c := range r.children {
		w.propagate(c, global, visible)
	}
}

// EachFragment calls fn for every fragment entity in ascending entity
// order with its handle, world transform and computed visibility.
func (w *World) EachFragment(fn func(e Entity, h fragment.Handle, global transform.GlobalTransform, visible bool)) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	for i := range w.records {
		r := &w.records[i]
		if !r.alive || !r.hasFragment {
			continue
		}
		fn(Entity{Index: uint32(i), Generation: r.generation}, r.fragment, r.global, r.visible)
	}
}

// EachCamera calls fn for every camera entity in ascending entity order.
func (w *World) EachCamera(fn func(e Entity, c Camera, global transform.GlobalTransform)) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	for i := range w.records {
		r := &w.records[i]
		if !r.alive || r.camera == nil {
			continue
		}
		fn(Entity{Index: uint32(i), Generation: r.generation}, r.camera.clone(), r.global)
	}
}
