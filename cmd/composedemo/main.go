// Command composedemo composites an animated circle fragment offscreen and
// writes the last frame to a PNG file.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image/png"
	"log"
	"math"
	"os"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/scene"

	"github.com/gogpu/ggcompose"
	"github.com/gogpu/ggcompose/fragment"
	"github.com/gogpu/ggcompose/render"
	"github.com/gogpu/ggcompose/transform"
	"github.com/gogpu/ggcompose/world"
)

// whiteSmoke is #F5F5F5.
var whiteSmoke = gg.Hex("f5f5f5")

func main() {
	var (
		configPath = flag.String("config", "", "TOML config file")
		frames     = flag.Int("frames", 60, "number of frames to composite")
		fps        = flag.Float64("fps", 60, "simulated frames per second")
		output     = flag.String("output", "compose.png", "output file")
	)
	flag.Parse()

	cfg := ggcompose.DefaultConfig()
	if *configPath != "" {
		var err error
		cfg, err = ggcompose.LoadConfig(*configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
	}
	opts, err := cfg.Options(os.Stderr)
	if err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	textures := render.NewMemoryTextureFactory()
	app, err := ggcompose.New(render.NullDeviceHandle{}, textures, cfg.Width, cfg.Height, opts...)
	if err != nil {
		log.Fatalf("Failed to create compositor: %v", err)
	}
	err = run(app, *frames, *fps, *output)
	_ = app.Close()
	if err != nil {
		log.Fatal(err)
	}
}

// run composites frames animation steps and saves the last one to output.
func run(app *ggcompose.App, frames int, fps float64, output string) error {
	circle := fragment.NewBuilder().
		Fill(scene.FillNonZero, scene.IdentityAffine(), scene.SolidBrush(whiteSmoke), scene.NewCircleShape(0, 0, 100)).
		MustBuild()
	app.SpawnCamera2D()
	e := app.Spawn(world.NewFragmentBundle(app.AddFragment(circle), transform.Identity()))

	ctx := context.Background()
	rendered := 0
	for i := range frames {
		elapsed := float64(i) / fps
		animate(app.World(), e, elapsed)

		stats, err := app.Frame(ctx)
		if err != nil {
			ggcompose.Logger().Warn("frame failed", "frame", i, "err", err)
			continue
		}
		if stats.Rendered {
			rendered++
		}
	}

	tex, ok := app.Canvas().Texture().(*render.MemoryTexture)
	if !ok {
		return errors.New("canvas texture is not readable")
	}
	if err := savePNG(output, tex); err != nil {
		return fmt.Errorf("failed to save: %w", err)
	}
	log.Printf("Composited %d/%d frames, saved to %s (%dx%d)", rendered, frames, output, tex.Width(), tex.Height())
	return nil
}

// animate pulses the entity's scale between 0.5 and 1.
func animate(w *world.World, e world.Entity, elapsed float64) {
	t := float32(math.Sin(elapsed)*0.5 + 0.5)
	s := 0.5 + (1-0.5)*t
	tr, ok := w.Transform(e)
	if !ok {
		return
	}
	if err := w.SetTransform(e, tr.WithScale(s, s, s)); err != nil {
		ggcompose.Logger().Debug("animate failed", "err", err)
	}
}

func savePNG(path string, tex *render.MemoryTexture) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, tex.Image()); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
