package math

import (
	"testing"
)

func TestVec3Add(t *testing.T) {
	a := Vec3{1, 2, 3}
	b := Vec3{4, 5, 6}
	got := a.Add(b)
	want := Vec3{5, 7, 9}
	if got != want {
		t.Errorf("Vec3.Add() = %v, want %v", got, want)
	}
}

func TestVec3Length(t *testing.T) {
	v := Vec3{2, 3, 6}
	got := v.Length()
	want := float32(7)
	if got != want {
		t.Errorf("Vec3.Length() = %v, want %v", got, want)
	}
}

func TestVec3LerpEndpoints(t *testing.T) {
	a := Vec3{0.1, -2, 3.3}
	b := Vec3{7, 8.25, -9}

	if got := a.Lerp(b, 0); got != a {
		t.Errorf("Lerp(0) = %v, want %v", got, a)
	}
	if got := a.Lerp(b, 1); got != b {
		t.Errorf("Lerp(1) = %v, want %v", got, b)
	}
}

func TestVec3LerpMidpoint(t *testing.T) {
	a := Vec3{0, 0, 0}
	b := Vec3{2, 4, -6}
	got := a.Lerp(b, 0.5)
	want := Vec3{1, 2, -3}
	if !got.ApproxEqual(want, 1e-6) {
		t.Errorf("Lerp(0.5) = %v, want %v", got, want)
	}
}

func TestVec3Distance(t *testing.T) {
	a := Vec3{1, 1, 1}
	b := Vec3{1, 4, 5}
	if d := a.Distance(b); d != 5 {
		t.Errorf("Distance() = %v, want 5", d)
	}
}
