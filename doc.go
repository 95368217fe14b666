// Package ggcompose composites independently authored 2D vector fragments
// into one offscreen canvas per frame and shows that canvas in a window.
//
// A host owns entities, transforms, cameras and the frame loop. It records
// each vector document once as a fragment.Fragment, spawns entities that
// reference it, and calls App.Frame every tick. Each frame the visible
// fragments are extracted from the world, mapped to pixel space through the
// active camera, sorted by depth, merged into a single gg scene and
// rasterized into the canvas texture.
//
// # Quick Start
//
//	app, err := ggcompose.New(render.NullDeviceHandle{}, render.NewMemoryTextureFactory(), 800, 600)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer app.Close()
//
//	circle := fragment.NewBuilder().
//	    Fill(scene.FillNonZero, scene.IdentityAffine(),
//	        scene.SolidBrush(gg.White), scene.NewCircleShape(0, 0, 100)).
//	    MustBuild()
//	h := app.AddFragment(circle)
//	app.Spawn(world.NewFragmentBundle(h, transform.Identity()))
//	app.SpawnCamera2D()
//
//	if _, err := app.Frame(context.Background()); err != nil {
//	    log.Print(err)
//	}
//
// # Windows
//
// With gogpu, build the App from the window so the canvas tracks the
// window's physical size, route resize events to it and present the canvas
// every draw:
//
//	app, err := ggcompose.NewFromWindow(provider,
//	    render.NewCreatorTextureFactory(dc.TextureCreator()), window)
//	app.Attach(events)
//	...
//	_, _ = app.Frame(ctx)
//	_ = app.Present(dc)
//
// # Packages
//
//   - fragment: immutable vector documents and their builder
//   - world: entities, hierarchy, visibility and cameras
//   - canvas: the canvas texture, its display quad and resize handling
//   - pipeline: extract, prepare, composite and render stages
//   - render: textures, render targets and the vector renderer
//
// # Logging
//
// ggcompose is silent by default. SetLogger enables structured logging for
// ggcompose and gg.
package ggcompose
