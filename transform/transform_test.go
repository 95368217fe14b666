package transform

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestIdentityMatrix(t *testing.T) {
	if got := Identity().ComputeMatrix(); got != mgl32.Ident4() {
		t.Errorf("Identity().ComputeMatrix() = %v, want identity", got)
	}
}

func TestComputeMatrixOrder(t *testing.T) {
	tr := FromTranslation(10, 20, 3).WithScale(2, 2, 1)
	m := tr.ComputeMatrix()

	// Scale applies before translation.
	p := m.Mul4x1(mgl32.Vec4{1, 1, 0, 1})
	want := mgl32.Vec4{12, 22, 3, 1}
	if !p.ApproxEqual(want) {
		t.Errorf("T*R*S applied to (1,1) = %v, want %v", p, want)
	}
}

func TestRotationZ(t *testing.T) {
	m := FromRotationZ(math.Pi / 2).ComputeMatrix()
	p := m.Mul4x1(mgl32.Vec4{1, 0, 0, 1})
	if !p.ApproxEqualThreshold(mgl32.Vec4{0, 1, 0, 1}, 1e-6) {
		t.Errorf("rotated (1,0) = %v, want (0,1)", p)
	}
}

func TestGlobalTranslation(t *testing.T) {
	g := FromTransform(FromTranslation(5, -7, 2))
	if got := g.Translation(); got != (mgl32.Vec3{5, -7, 2}) {
		t.Errorf("Translation() = %v, want (5,-7,2)", got)
	}
}

func TestMulTransform(t *testing.T) {
	parent := FromTransform(FromTranslation(100, 0, 0).WithScale(2, 2, 2))
	child := parent.MulTransform(FromTranslation(10, 5, 1))

	want := mgl32.Vec3{120, 10, 2}
	if got := child.Translation(); !got.ApproxEqual(want) {
		t.Errorf("child Translation() = %v, want %v", got, want)
	}
}
