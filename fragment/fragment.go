// Package fragment holds immutable vector documents that are composited into
// the shared canvas every frame.
//
// A Fragment is recorded once with a Builder and then shared by pointer
// through an asset store. Each frame the pipeline replays every visible
// fragment into one aggregate scene.Scene under the fragment's screen-space
// affine with AppendTo.
package fragment

import (
	"errors"
	"fmt"

	"github.com/gogpu/gg/scene"

	"github.com/gogpu/ggcompose/asset"
)

// ErrUnbalanced is returned by Build when a layer or clip is left open or
// closed twice.
var ErrUnbalanced = errors.New("fragment: unbalanced layer or clip stack")

// Handle names a fragment stored in an Assets store.
type Handle = asset.Handle[*Fragment]

// Assets stores fragments by handle.
type Assets = asset.Assets[*Fragment]

// NewAssets creates an empty fragment store.
func NewAssets() *Assets { return asset.New[*Fragment]() }

type opKind uint8

const (
	opFill opKind = iota
	opStroke
	opImage
	opPushLayer
	opPopLayer
	opPushClip
	opPopClip
)

func (k opKind) String() string {
	switch k {
	case opFill:
		return "fill"
	case opStroke:
		return "stroke"
	case opImage:
		return "image"
	case opPushLayer:
		return "push-layer"
	case opPopLayer:
		return "pop-layer"
	case opPushClip:
		return "push-clip"
	case opPopClip:
		return "pop-clip"
	default:
		return fmt.Sprintf("op(%d)", uint8(k))
	}
}

// op is one recorded drawing command.
type op struct {
	kind      opKind
	fill      scene.FillStyle
	stroke    scene.StrokeStyle
	transform scene.Affine
	brush     scene.Brush
	shape     scene.Shape
	image     *scene.Image
	blend     scene.BlendMode
	alpha     float32
}

// Fragment is an immutable recorded vector document.
// It is safe to share between entities and goroutines.
type Fragment struct {
	ops    []op
	bounds scene.Rect
}

// Len returns the number of recorded commands.
func (f *Fragment) Len() int { return len(f.ops) }

// IsEmpty reports whether the fragment draws nothing.
func (f *Fragment) IsEmpty() bool { return len(f.ops) == 0 }

// Bounds returns the fragment's bounds in its own coordinate space.
func (f *Fragment) Bounds() scene.Rect { return f.bounds }

// AppendTo replays the fragment into dst with every command transformed by t.
// The transform state of dst is restored before returning.
//
// Every replayed path carries its own transform tag, so a command whose
// combined transform is identity never inherits the transform of whatever
// was appended before it.
func (f *Fragment) AppendTo(dst *scene.Scene, t scene.Affine) {
	if f == nil || dst == nil || len(f.ops) == 0 {
		return
	}
	dst.PushTransform(t)
	for i := range f.ops {
		o := &f.ops[i]
		switch o.kind {
		case opFill:
			markIdentity(dst, dst.Transform().Multiply(o.transform))
			dst.Fill(o.fill, o.transform, o.brush, o.shape)
		case opStroke:
			markIdentity(dst, dst.Transform().Multiply(o.transform))
			style := o.stroke
			dst.Stroke(&style, o.transform, o.brush, o.shape)
		case opImage:
			dst.DrawImage(o.image, o.transform)
		case opPushLayer:
			if o.shape != nil {
				markTransform(dst, dst.Transform())
			}
			dst.PushLayer(o.blend, o.alpha, o.shape)
		case opPopLayer:
			dst.PopLayer()
		case opPushClip:
			markIdentity(dst, dst.Transform())
			dst.PushClip(o.shape)
		case opPopClip:
			dst.PopClip()
		}
	}
	dst.PopTransform()
}

// identityMark holds a single identity transform tag. It is only read after
// construction, so it is shared by all replays.
var identityMark = newTransformMark(scene.IdentityAffine())

func newTransformMark(t scene.Affine) *scene.Scene {
	s := scene.NewScene()
	s.Encoding().EncodeTransform(t)
	return s
}

// markIdentity encodes an identity transform into the current layer of dst
// when t is identity. scene.Scene leaves identity transforms unencoded and
// the rasterizer keeps the last decoded one.
func markIdentity(dst *scene.Scene, t scene.Affine) {
	if t.IsIdentity() {
		dst.Append(identityMark)
	}
}

// markTransform encodes t into the current layer of dst. Layer clip paths
// are encoded by scene.Scene without any transform tag.
func markTransform(dst *scene.Scene, t scene.Affine) {
	if t.IsIdentity() {
		dst.Append(identityMark)
		return
	}
	dst.Append(newTransformMark(t))
}
