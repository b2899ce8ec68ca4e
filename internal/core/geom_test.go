package core

import (
	"math"
	"testing"
)

func TestRectIntersects(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Rect
		expected bool
	}{
		{"overlapping", NewRect(0, 0, 10, 10), NewRect(5, 5, 10, 10), true},
		{"disjoint horizontal", NewRect(0, 0, 10, 10), NewRect(15, 0, 10, 10), false},
		{"adjacent edges", NewRect(0, 0, 10, 10), NewRect(10, 0, 10, 10), false},
		{"contained", NewRect(0, 0, 20, 20), NewRect(5, 5, 5, 5), true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.a.Intersects(tc.b); got != tc.expected {
				t.Errorf("Intersects() = %v, expected %v", got, tc.expected)
			}
			if got := tc.b.Intersects(tc.a); got != tc.expected {
				t.Errorf("Intersects() (reversed) = %v, expected %v", got, tc.expected)
			}
		})
	}
}

func TestRectContains(t *testing.T) {
	r := NewRect(10, 10, 20, 15)

	if !r.Contains(10, 10) {
		t.Error("top-left corner should be inside")
	}
	if r.Contains(30, 25) {
		t.Error("bottom-right edge is exclusive")
	}
	if r.Contains(5, 15) {
		t.Error("point left of rect should be outside")
	}
}

func TestRectClip(t *testing.T) {
	bounds := NewRect(0, 0, 10, 10)

	got := NewRect(-3, 8, 6, 6).Clip(bounds)
	want := NewRect(0, 8, 3, 2)
	if got != want {
		t.Errorf("Clip() = %+v, expected %+v", got, want)
	}

	empty := NewRect(20, 20, 5, 5).Clip(bounds)
	if empty.W != 0 || empty.H != 0 {
		t.Errorf("Clip() of disjoint rect = %+v, expected zero size", empty)
	}
}

func TestPointDistance(t *testing.T) {
	a := Pt(0, 0)
	b := Pt(3, 4)

	if d := a.Dist(b); math.Abs(d-5) > 1e-9 {
		t.Errorf("Dist() = %f, expected 5", d)
	}
	if d := a.DistSq(b); d != 25 {
		t.Errorf("DistSq() = %f, expected 25", d)
	}

	x, y := Pt(2.7, -0.2).Floor()
	if x != 2 || y != -1 {
		t.Errorf("Floor() = (%d, %d), expected (2, -1)", x, y)
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		val, lo, hi, expected int
	}{
		{5, 0, 10, 5},
		{-5, 0, 10, 0},
		{15, 0, 10, 10},
	}

	for _, tc := range tests {
		if got := Clamp(tc.val, tc.lo, tc.hi); got != tc.expected {
			t.Errorf("Clamp(%d, %d, %d) = %d, expected %d", tc.val, tc.lo, tc.hi, got, tc.expected)
		}
	}

	if got := ClampF(-0.5, -1, 0); got != -0.5 {
		t.Errorf("ClampF(-0.5, -1, 0) = %f", got)
	}
	if got := ClampF(0.3, -1, 0); got != 0 {
		t.Errorf("ClampF(0.3, -1, 0) = %f, expected 0", got)
	}
}
