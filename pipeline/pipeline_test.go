// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package pipeline

import (
	"context"
	"errors"
	"image"
	"image/color"
	"math"
	"sync"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gg"
	"github.com/gogpu/gg/scene"

	"github.com/gogpu/ggcompose/fragment"
	"github.com/gogpu/ggcompose/render"
	"github.com/gogpu/ggcompose/transform"
	"github.com/gogpu/ggcompose/world"
)

// mockRenderer records render calls.
type mockRenderer struct {
	mu     sync.Mutex
	calls  int
	params []render.RenderParams
	bounds []scene.Rect
	failOn map[int]error
}

func (m *mockRenderer) Render(_ context.Context, s *scene.Scene, _ render.RenderTarget, p render.RenderParams) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if err := m.failOn[m.calls]; err != nil {
		return err
	}
	m.params = append(m.params, p)
	m.bounds = append(m.bounds, s.Bounds())
	return nil
}

func (m *mockRenderer) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// mockTargets serves a fixed CPU target.
type mockTargets struct {
	target  render.RenderTarget
	missing bool
}

func (m *mockTargets) Target() (render.RenderTarget, bool) {
	if m.missing {
		return nil, false
	}
	return m.target, true
}

func rectFragment(t *testing.T, w, h float32) *fragment.Fragment {
	t.Helper()
	return fragment.NewBuilder().
		Fill(scene.FillNonZero, scene.IdentityAffine(), scene.SolidBrush(gg.White), scene.NewRectShape(-w/2, -h/2, w, h)).
		MustBuild()
}

type fixture struct {
	world     *world.World
	fragments *fragment.Assets
	renderer  *mockRenderer
	targets   *mockTargets
	driver    *Driver
	frag      fragment.Handle
}

func newFixture(t *testing.T, width, height int, opts ...Option) *fixture {
	t.Helper()
	f := &fixture{
		world:     world.New(),
		fragments: fragment.NewAssets(),
		renderer:  &mockRenderer{},
		targets:   &mockTargets{target: render.NewPixmapTarget(width, height)},
	}
	f.frag = f.fragments.Add(rectFragment(t, 20, 20))
	f.driver = NewDriver(f.renderer, f.targets, f.fragments, opts...)
	return f
}

func (f *fixture) spawnAt(x, y, z float32) world.Entity {
	return f.world.Spawn(world.NewFragmentBundle(f.frag, transform.FromTranslation(x, y, z)))
}

func (f *fixture) addCamera(width, height uint32) world.Entity {
	return f.world.SpawnCamera(world.Camera2D(width, height), transform.Identity())
}

func TestExtractSkipsInvisible(t *testing.T) {
	f := newFixture(t, 8, 8)
	a := f.spawnAt(0, 0, 0)
	b := f.spawnAt(1, 0, 0)
	c := f.spawnAt(2, 0, 0)
	_ = f.world.SetVisibility(b, world.VisibilityHidden)
	f.world.Propagate()

	var rw RenderWorld
	Extract(f.world, &rw)
	if len(rw.Instances) != 2 || rw.Instances[0].Entity != a || rw.Instances[1].Entity != c {
		t.Fatalf("extracted %v, want [%s %s]", entities(rw.Instances), a, c)
	}

	// Next frame: b visible again, instances replaced rather than appended.
	_ = f.world.SetVisibility(b, world.VisibilityInherited)
	f.world.Propagate()
	Extract(f.world, &rw)
	if len(rw.Instances) != 3 || rw.Instances[1].Entity != b {
		t.Fatalf("extracted %v, want 3 with %s second", entities(rw.Instances), b)
	}

	// Hidden again: gone again.
	_ = f.world.SetVisibility(b, world.VisibilityHidden)
	f.world.Propagate()
	Extract(f.world, &rw)
	for _, in := range rw.Instances {
		if in.Entity == b {
			t.Errorf("hidden entity %s extracted", b)
		}
	}
}

func entities(ins []ExtractedInstance) []world.Entity {
	out := make([]world.Entity, len(ins))
	for i := range ins {
		out[i] = ins[i].Entity
	}
	return out
}

func TestExtractCameraSelection(t *testing.T) {
	w := world.New()
	inactive := world.Camera2D(10, 10)
	inactive.IsActive = false
	w.SpawnCamera(inactive, transform.Identity())

	var rw RenderWorld
	Extract(w, &rw)
	if rw.Camera != nil {
		t.Fatalf("Camera = %+v with only inactive cameras, want nil", rw.Camera)
	}

	late := world.Camera2D(100, 100)
	late.Order = 1
	w.SpawnCamera(late, transform.Identity())
	first := w.SpawnCamera(world.Camera2D(200, 200), transform.Identity())
	w.SpawnCamera(world.Camera2D(300, 300), transform.Identity())

	Extract(w, &rw)
	if rw.Camera == nil {
		t.Fatal("Camera = nil, want the lowest order camera")
	}
	if rw.Camera.Entity != first || rw.Camera.ViewportWidth != 200 || !rw.Camera.HasViewport {
		t.Errorf("Camera = %s %dx%d, want %s 200x200", rw.Camera.Entity, rw.Camera.ViewportWidth, rw.Camera.ViewportHeight, first)
	}

	noViewport := world.New()
	noViewport.SpawnCamera(world.Camera{IsActive: true, Projection: world.DefaultOrthographic()}, transform.Identity())
	Extract(noViewport, &rw)
	if rw.Camera == nil || rw.Camera.HasViewport {
		t.Errorf("Camera = %+v, want one without viewport", rw.Camera)
	}
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-4
}

func TestComputeAffine(t *testing.T) {
	ortho := world.DefaultOrthographic().Matrix(800, 600)
	id := transform.IdentityGlobal()

	tests := []struct {
		name       string
		model      transform.GlobalTransform
		view       transform.GlobalTransform
		projection mgl32.Mat4
		want       [6]float64
	}{
		{
			name:       "origin, 2D camera",
			model:      id,
			view:       id,
			projection: ortho,
			want:       [6]float64{1, 0, 0, 1, 400, 300},
		},
		{
			name:       "translated fragment, +Y is up on screen",
			model:      transform.FromTransform(transform.FromTranslation(100, 50, 0)),
			view:       id,
			projection: ortho,
			want:       [6]float64{1, 0, 0, 1, 500, 250},
		},
		{
			name:       "translated camera",
			model:      id,
			view:       transform.FromTransform(transform.FromTranslation(100, 0, 0)),
			projection: ortho,
			want:       [6]float64{1, 0, 0, 1, 300, 300},
		},
		{
			name:       "scaled fragment",
			model:      transform.FromTransform(transform.FromScale(2)),
			view:       id,
			projection: ortho,
			want:       [6]float64{2, 0, 0, 2, 400, 300},
		},
		{
			name:       "identity projection",
			model:      id,
			view:       id,
			projection: mgl32.Ident4(),
			want:       [6]float64{400, 0, 0, 300, 400, 300},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeAffine(tt.model, tt.view, tt.projection, 800, 600).Coefficients()
			for i := range got {
				if !approx(got[i], tt.want[i]) {
					t.Errorf("ComputeAffine() = %v, want %v", got, tt.want)
					break
				}
			}
		})
	}
}

func TestComputeAffineRotation(t *testing.T) {
	ortho := world.DefaultOrthographic().Matrix(800, 600)
	model := transform.FromTransform(transform.FromRotationZ(math.Pi / 2))
	p := ComputeAffine(model, transform.IdentityGlobal(), ortho, 800, 600)

	// A quarter turn counter-clockwise in world space points +X up on the
	// Y-down canvas.
	x, y := p.Apply(10, 0)
	if !approx(x, 400) || !approx(y, 290) {
		t.Errorf("Apply(10, 0) = (%v, %v), want (400, 290)", x, y)
	}
}

func TestComputeAffineDeterministic(t *testing.T) {
	model := transform.FromTransform(transform.FromTranslation(12.5, -7.25, 3).
		WithScale(1.5, 0.75, 1).
		WithRotation(mgl32.QuatRotate(0.3, mgl32.Vec3{0, 0, 1})))
	view := transform.FromTransform(transform.FromTranslation(-40, 22, 0))
	proj := world.DefaultOrthographic().Matrix(1280, 720)

	first := ComputeAffine(model, view, proj, 1280, 720)
	for range 100 {
		if got := ComputeAffine(model, view, proj, 1280, 720); got != first {
			t.Fatalf("ComputeAffine() = %v, want %v", got, first)
		}
	}
}

func TestPreparedAffineConversions(t *testing.T) {
	p := PreparedAffine{A: 1, B: 2, C: 3, D: 4, E: 5, F: 6}
	m := p.Matrix()
	want := gg.Matrix{A: 1, B: 3, C: 5, D: 2, E: 4, F: 6}
	if m != want {
		t.Errorf("Matrix() = %+v, want %+v", m, want)
	}

	a := p.Affine()
	x, y := a.TransformPoint(1, 1)
	wx, wy := p.Apply(1, 1)
	if float64(x) != wx || float64(y) != wy {
		t.Errorf("Affine() maps (1,1) to (%v,%v), want (%v,%v)", x, y, wx, wy)
	}
	if got := IdentityPrepared().Affine(); !got.IsIdentity() {
		t.Errorf("IdentityPrepared().Affine() = %+v", got)
	}
}

func TestPrepareWithoutCamera(t *testing.T) {
	rw := RenderWorld{Instances: []ExtractedInstance{{}, {}}}
	if n := Prepare(&rw); n != 0 {
		t.Errorf("Prepare() without camera = %d, want 0", n)
	}
	rw.Camera = &ExtractedCamera{}
	if n := Prepare(&rw); n != 0 {
		t.Errorf("Prepare() without viewport = %d, want 0", n)
	}
	for _, size := range [][2]uint32{{0, 0}, {0, 600}, {800, 0}} {
		rw.Camera = &ExtractedCamera{
			HasViewport:    true,
			ViewportWidth:  size[0],
			ViewportHeight: size[1],
			Projection:     world.DefaultOrthographic().Matrix(float32(size[0]), float32(size[1])),
			View:           transform.IdentityGlobal(),
		}
		if n := Prepare(&rw); n != 0 {
			t.Errorf("Prepare() with %dx%d viewport = %d, want 0", size[0], size[1], n)
		}
	}
	for i, in := range rw.Instances {
		if in.Prepared {
			t.Errorf("instance %d prepared", i)
		}
	}
}

func TestQueueOrder(t *testing.T) {
	at := func(idx uint32, z float32) ExtractedInstance {
		return ExtractedInstance{
			Entity:          world.Entity{Index: idx},
			GlobalTransform: transform.FromTransform(transform.FromTranslation(0, 0, z)),
			Prepared:        true,
		}
	}
	nan := float32(math.NaN())
	rw := RenderWorld{Instances: []ExtractedInstance{
		at(0, 1),
		at(1, -1),
		at(2, 0),
		at(3, 0),
		at(4, nan),
		{Entity: world.Entity{Index: 5}}, // unprepared
	}}

	q := Queue(&rw, nil)
	want := []uint32{4, 1, 2, 3, 0}
	if len(q) != len(want) {
		t.Fatalf("len(Queue()) = %d, want %d", len(q), len(want))
	}
	for i, idx := range want {
		if q[i].Entity.Index != idx {
			t.Errorf("Queue()[%d] = entity %d, want %d", i, q[i].Entity.Index, idx)
		}
	}
}

func TestCompositeMissingFragment(t *testing.T) {
	fragments := fragment.NewAssets()
	h := fragments.Add(rectFragment(t, 10, 10))
	dst := scene.NewScene()

	rw := RenderWorld{Instances: []ExtractedInstance{
		{Fragment: h, GlobalTransform: transform.IdentityGlobal(), Affine: IdentityPrepared(), Prepared: true},
		{Fragment: fragment.Handle{}, GlobalTransform: transform.IdentityGlobal(), Affine: IdentityPrepared(), Prepared: true},
	}}
	queued, appended, missing := Composite(&rw, fragments, dst)
	if queued != 2 || appended != 1 || missing != 1 {
		t.Errorf("Composite() = %d, %d, %d, want 2, 1, 1", queued, appended, missing)
	}
	if dst.IsEmpty() {
		t.Error("aggregate empty after compositing a resolved fragment")
	}

	// dst is reset between frames.
	rw.Instances = rw.Instances[1:]
	Composite(&rw, fragments, dst)
	if !dst.IsEmpty() {
		t.Error("aggregate not reset")
	}
}

func TestRunFrameSingleInstance(t *testing.T) {
	f := newFixture(t, 800, 600, WithBaseColor(gg.Black), WithAntialiasing(render.AntialiasMSAA8))
	f.spawnAt(0, 0, 0)
	f.addCamera(800, 600)
	f.world.Propagate()

	stats, err := f.driver.RunFrame(context.Background(), f.world)
	if err != nil {
		t.Fatalf("RunFrame() error = %v", err)
	}
	if !stats.Rendered || stats.Extracted != 1 || stats.Prepared != 1 || stats.Appended != 1 {
		t.Errorf("stats = %+v", stats)
	}
	if f.renderer.Calls() != 1 {
		t.Fatalf("render calls = %d, want 1", f.renderer.Calls())
	}

	p := f.renderer.params[0]
	if p.Width != 800 || p.Height != 600 || p.BaseColor != gg.Black || p.Antialiasing != render.AntialiasMSAA8 {
		t.Errorf("params = %+v", p)
	}
	// 20x20 rect centered at the canvas center.
	b := f.renderer.bounds[0]
	if b.MinX != 390 || b.MinY != 290 || b.MaxX != 410 || b.MaxY != 310 {
		t.Errorf("aggregate bounds = %+v, want [390,290,410,310]", b)
	}
}

func TestRunFrameSkips(t *testing.T) {
	tests := []struct {
		name       string
		setup      func(f *fixture)
		wantReason string
	}{
		{
			name:       "no instances",
			setup:      func(f *fixture) { f.addCamera(64, 64) },
			wantReason: SkipEmptyQueue,
		},
		{
			name:       "no camera",
			setup:      func(f *fixture) { f.spawnAt(0, 0, 0) },
			wantReason: SkipEmptyQueue,
		},
		{
			name: "all hidden",
			setup: func(f *fixture) {
				e := f.spawnAt(0, 0, 0)
				_ = f.world.SetVisibility(e, world.VisibilityHidden)
				f.addCamera(64, 64)
			},
			wantReason: SkipEmptyQueue,
		},
		{
			name: "no canvas target",
			setup: func(f *fixture) {
				f.spawnAt(0, 0, 0)
				f.addCamera(64, 64)
				f.targets.missing = true
			},
			wantReason: SkipNoTarget,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, 64, 64)
			tt.setup(f)
			f.world.Propagate()

			stats, err := f.driver.RunFrame(context.Background(), f.world)
			if err != nil {
				t.Fatalf("RunFrame() error = %v", err)
			}
			if stats.Rendered || stats.SkipReason != tt.wantReason {
				t.Errorf("stats = %+v, want skipped with %q", stats, tt.wantReason)
			}
			if f.renderer.Calls() != 0 {
				t.Errorf("render calls = %d, want 0", f.renderer.Calls())
			}
		})
	}
}

func TestRunFrameMissingFragmentsStillRenders(t *testing.T) {
	f := newFixture(t, 64, 64)
	f.world.Spawn(world.NewFragmentBundle(fragment.Handle{}, transform.Identity()))
	f.addCamera(64, 64)
	f.world.Propagate()

	stats, err := f.driver.RunFrame(context.Background(), f.world)
	if err != nil {
		t.Fatalf("RunFrame() error = %v", err)
	}
	if !stats.Rendered || stats.MissingFragments != 1 || stats.Appended != 0 {
		t.Errorf("stats = %+v, want a rendered frame with one missing fragment", stats)
	}
}

func TestRunFrameZOrder(t *testing.T) {
	f := newFixture(t, 64, 64)
	front := f.world.Spawn(world.NewFragmentBundle(f.frag, transform.FromTranslation(0, 0, 1)))
	back := f.world.Spawn(world.NewFragmentBundle(f.frag, transform.FromTranslation(0, 0, -1)))
	f.addCamera(64, 64)
	f.world.Propagate()

	if _, err := f.driver.RunFrame(context.Background(), f.world); err != nil {
		t.Fatal(err)
	}
	q := Queue(&f.driver.rw, nil)
	if len(q) != 2 || q[0].Entity != back || q[1].Entity != front {
		t.Errorf("queue = [%s %s], want [%s %s]", q[0].Entity, q[1].Entity, back, front)
	}
}

func TestRunFrameRenderError(t *testing.T) {
	f := newFixture(t, 64, 64)
	boom := errors.New("device lost")
	f.renderer.failOn = map[int]error{1: boom}
	f.spawnAt(0, 0, 0)
	f.addCamera(64, 64)
	f.world.Propagate()

	stats, err := f.driver.RunFrame(context.Background(), f.world)
	if !errors.Is(err, ErrRenderFailed) || !errors.Is(err, boom) {
		t.Fatalf("RunFrame() error = %v, want %v wrapping %v", err, ErrRenderFailed, boom)
	}
	if stats.Rendered {
		t.Error("Rendered = true for a failed frame")
	}

	stats, err = f.driver.RunFrame(context.Background(), f.world)
	if err != nil || !stats.Rendered || stats.Frame != 2 {
		t.Errorf("next frame = %+v, %v, want rendered frame 2", stats, err)
	}
	if f.driver.Frames() != 2 {
		t.Errorf("Frames() = %d, want 2", f.driver.Frames())
	}
}

func TestRunFrameWithSceneRenderer(t *testing.T) {
	res := render.NewRendererResource()
	err := res.Init(func() (render.VectorRenderer, error) {
		return render.NewSceneRenderer(render.NullDeviceHandle{}, render.DefaultRendererOptions())
	})
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	defer res.Close()

	tex, err := render.NewMemoryTextureFactory().CreateTexture(render.CanvasTextureDescriptor(64, 64))
	if err != nil {
		t.Fatal(err)
	}
	fragments := fragment.NewAssets()
	h := fragments.Add(rectFragment(t, 20, 20))

	w := world.New()
	w.Spawn(world.NewFragmentBundle(h, transform.Identity()))
	w.SpawnCamera(world.Camera2D(64, 64), transform.Identity())
	w.Propagate()

	d := NewDriver(res, &mockTargets{target: render.NewTextureTarget(tex)}, fragments)
	stats, err := d.RunFrame(context.Background(), w)
	if err != nil || !stats.Rendered {
		t.Fatalf("RunFrame() = %+v, %v", stats, err)
	}

	img := tex.(*render.MemoryTexture).Image()
	if c := img.RGBAAt(32, 32); c.A == 0 {
		t.Errorf("center pixel = %v, want covered", c)
	}
	if c := img.RGBAAt(2, 2); c.A != 0 {
		t.Errorf("corner pixel = %v, want transparent", c)
	}
}

func squareFragment(t *testing.T, c gg.RGBA, size float32) *fragment.Fragment {
	t.Helper()
	return fragment.NewBuilder().
		Fill(scene.FillNonZero, scene.IdentityAffine(), scene.SolidBrush(c), scene.NewRectShape(0, 0, size, size)).
		MustBuild()
}

// renderWorld runs one frame of w through a SceneRenderer into a
// size×size memory texture.
func renderWorld(t *testing.T, w *world.World, fragments *fragment.Assets, size int) *image.RGBA {
	t.Helper()
	res := render.NewRendererResource()
	err := res.Init(func() (render.VectorRenderer, error) {
		return render.NewSceneRenderer(render.NullDeviceHandle{}, render.DefaultRendererOptions())
	})
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	t.Cleanup(res.Close)

	tex, err := render.NewMemoryTextureFactory().CreateTexture(render.CanvasTextureDescriptor(size, size))
	if err != nil {
		t.Fatal(err)
	}
	d := NewDriver(res, &mockTargets{target: render.NewTextureTarget(tex)}, fragments)
	stats, err := d.RunFrame(context.Background(), w)
	if err != nil || !stats.Rendered {
		t.Fatalf("RunFrame() = %+v, %v", stats, err)
	}
	return tex.(*render.MemoryTexture).Image()
}

func isRed(c color.RGBA) bool  { return c.A > 240 && c.R > 240 && c.B < 16 }
func isBlue(c color.RGBA) bool { return c.A > 240 && c.B > 240 && c.R < 16 }

func TestRunFramePlacesEachInstance(t *testing.T) {
	fragments := fragment.NewAssets()
	h := fragments.Add(squareFragment(t, gg.Red, 10))

	w := world.New()
	// World (-50, 50) is the canvas top-left, so that instance's affine is
	// identity and it follows a translated one in the queue.
	w.Spawn(world.NewFragmentBundle(h, transform.FromTranslation(0, 0, 0)))
	w.Spawn(world.NewFragmentBundle(h, transform.FromTranslation(-50, 50, 1)))
	w.Spawn(world.NewFragmentBundle(h, transform.FromTranslation(20, -20, 2)))
	w.SpawnCamera(world.Camera2D(100, 100), transform.Identity())
	w.Propagate()

	img := renderWorld(t, w, fragments, 100)

	for _, p := range []image.Point{{55, 55}, {5, 5}, {75, 75}} {
		if c := img.RGBAAt(p.X, p.Y); !isRed(c) {
			t.Errorf("pixel %v = %v, want red", p, c)
		}
	}
	for _, p := range []image.Point{{30, 30}, {65, 65}, {95, 5}} {
		if c := img.RGBAAt(p.X, p.Y); c.A != 0 {
			t.Errorf("pixel %v = %v, want transparent", p, c)
		}
	}
}

func TestRunFrameOverlapFollowsZ(t *testing.T) {
	fragments := fragment.NewAssets()
	red := fragments.Add(squareFragment(t, gg.Red, 20))
	blue := fragments.Add(squareFragment(t, gg.Blue, 20))

	w := world.New()
	// Spawned front-first so extraction order disagrees with depth.
	w.Spawn(world.NewFragmentBundle(red, transform.FromTranslation(0, 0, 1)))
	w.Spawn(world.NewFragmentBundle(blue, transform.FromTranslation(-10, 10, -1)))
	w.SpawnCamera(world.Camera2D(100, 100), transform.Identity())
	w.Propagate()

	img := renderWorld(t, w, fragments, 100)

	// red covers [50,70)², blue covers [40,60)².
	if c := img.RGBAAt(55, 55); !isRed(c) {
		t.Errorf("overlap pixel = %v, want red from Z=1", c)
	}
	if c := img.RGBAAt(45, 45); !isBlue(c) {
		t.Errorf("blue-only pixel = %v, want blue", c)
	}
	if c := img.RGBAAt(65, 65); !isRed(c) {
		t.Errorf("red-only pixel = %v, want red", c)
	}
}
