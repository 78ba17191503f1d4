package fractal

import (
	"math"
	"testing"
)

func pointsNear(p, q Point, eps float64) bool {
	return math.Abs(p.X-q.X) <= eps && math.Abs(p.Y-q.Y) <= eps
}

func TestMatrixMultiplyOrder(t *testing.T) {
	// Translate after scale: (1,1) -> (2,2) -> (12,2).
	m := Translate(10, 0).Multiply(Scale(2, 2))
	if got := m.TransformPoint(Pt(1, 1)); !pointsNear(got, Pt(12, 2), 1e-12) {
		t.Errorf("TransformPoint = %v, want (12, 2)", got)
	}
}

func TestMatrixTransformVectorIgnoresTranslation(t *testing.T) {
	m := Translate(100, 100).Multiply(Rotate(math.Pi / 2))
	if got := m.TransformVector(Pt(1, 0)); !pointsNear(got, Pt(0, 1), 1e-12) {
		t.Errorf("TransformVector = %v, want (0, 1)", got)
	}
}

func TestBoundsOf(t *testing.T) {
	r := BoundsOf([]Point{{1, 2}, {-3, 5}, {0, -1}})
	if r.Min != Pt(-3, -1) || r.Max != Pt(1, 5) {
		t.Errorf("BoundsOf = %+v", r)
	}
	if r.Center() != Pt(-1, 2) || r.Size() != Pt(4, 6) {
		t.Errorf("Center = %v, Size = %v", r.Center(), r.Size())
	}
	if BoundsOf(nil) != (Rect{}) {
		t.Error("BoundsOf(nil) should be the zero Rect")
	}
}
