package fragment

import (
	"errors"
	"fmt"
	"image"

	"github.com/gogpu/gg/scene"
	"golang.org/x/image/draw"
)

var errNilClip = errors.New("fragment: nil clip shape")

// Builder records drawing commands into a new Fragment.
//
// Builder is not safe for concurrent use.
type Builder struct {
	ops    []op
	layers int
	clips  int
	err    error
}

// NewBuilder creates an empty builder.
func NewBuilder() *Builder {
	return &Builder{ops: make([]op, 0, 8)}
}

// Fill records a shape fill.
func (b *Builder) Fill(style scene.FillStyle, t scene.Affine, brush scene.Brush, shape scene.Shape) *Builder {
	if shape == nil {
		return b
	}
	b.ops = append(b.ops, op{kind: opFill, fill: style, transform: t, brush: brush, shape: shape})
	return b
}

// Stroke records a shape outline. A nil style uses scene.DefaultStrokeStyle.
func (b *Builder) Stroke(style *scene.StrokeStyle, t scene.Affine, brush scene.Brush, shape scene.Shape) *Builder {
	if shape == nil {
		return b
	}
	if style == nil {
		style = scene.DefaultStrokeStyle()
	}
	b.ops = append(b.ops, op{kind: opStroke, stroke: *style, transform: t, brush: brush, shape: shape})
	return b
}

// DrawImage records an image draw. The image is copied into RGBA storage,
// so later changes to img do not affect the fragment.
func (b *Builder) DrawImage(img image.Image, t scene.Affine) *Builder {
	if img == nil {
		return b
	}
	bounds := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)
	return b.drawRGBA(rgba, t)
}

// DrawImageScaled records an image resampled to width x height pixels.
func (b *Builder) DrawImageScaled(img image.Image, width, height int, t scene.Affine) *Builder {
	if img == nil {
		return b
	}
	if width <= 0 || height <= 0 {
		b.setErr(fmt.Errorf("fragment: invalid image size %dx%d", width, height))
		return b
	}
	rgba := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.ApproxBiLinear.Scale(rgba, rgba.Bounds(), img, img.Bounds(), draw.Src, nil)
	return b.drawRGBA(rgba, t)
}

func (b *Builder) drawRGBA(rgba *image.RGBA, t scene.Affine) *Builder {
	w, h := rgba.Bounds().Dx(), rgba.Bounds().Dy()
	if w == 0 || h == 0 {
		return b
	}
	b.ops = append(b.ops, op{
		kind:      opImage,
		transform: t,
		image:     &scene.Image{Width: w, Height: h, Data: rgba.Pix},
	})
	return b
}

// PushLayer opens a compositing layer. clip may be nil.
func (b *Builder) PushLayer(blend scene.BlendMode, alpha float32, clip scene.Shape) *Builder {
	b.ops = append(b.ops, op{kind: opPushLayer, blend: blend, alpha: alpha, shape: clip})
	b.layers++
	return b
}

// PopLayer closes the innermost layer.
func (b *Builder) PopLayer() *Builder {
	if b.layers == 0 {
		b.setErr(fmt.Errorf("%w: PopLayer without PushLayer", ErrUnbalanced))
		return b
	}
	b.layers--
	b.ops = append(b.ops, op{kind: opPopLayer})
	return b
}

// PushClip opens a clip region.
func (b *Builder) PushClip(shape scene.Shape) *Builder {
	if shape == nil {
		b.setErr(errNilClip)
		return b
	}
	b.ops = append(b.ops, op{kind: opPushClip, shape: shape})
	b.clips++
	return b
}

// PopClip closes the innermost clip region.
func (b *Builder) PopClip() *Builder {
	if b.clips == 0 {
		b.setErr(fmt.Errorf("%w: PopClip without PushClip", ErrUnbalanced))
		return b
	}
	b.clips--
	b.ops = append(b.ops, op{kind: opPopClip})
	return b
}

func (b *Builder) setErr(err error) {
	if b.err == nil {
		b.err = err
	}
}

// Build returns the recorded fragment. The builder is reset afterwards and
// can record a new fragment.
func (b *Builder) Build() (*Fragment, error) {
	if b.err != nil {
		err := b.err
		b.reset()
		return nil, err
	}
	if b.layers != 0 || b.clips != 0 {
		err := fmt.Errorf("%w: %d open layers, %d open clips", ErrUnbalanced, b.layers, b.clips)
		b.reset()
		return nil, err
	}

	f := &Fragment{ops: b.ops}
	b.ops = make([]op, 0, 8)

	scratch := scene.NewScene()
	f.AppendTo(scratch, scene.IdentityAffine())
	f.bounds = scratch.Bounds()
	return f, nil
}

// MustBuild is like Build but panics on error.
// Use only for fragments assembled from constant input.
func (b *Builder) MustBuild() *Fragment {
	f, err := b.Build()
	if err != nil {
		panic(err)
	}
	return f
}

func (b *Builder) reset() {
	b.ops = make([]op, 0, 8)
	b.layers = 0
	b.clips = 0
	b.err = nil
}
