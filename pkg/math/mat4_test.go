package math

import (
	"math"
	"testing"
)

func abs(f float32) float32 {
	if f < 0 {
		return -f
	}
	return f
}

func TestIdentity(t *testing.T) {
	m := Identity()
	if m[0] != 1 || m[5] != 1 || m[10] != 1 || m[15] != 1 {
		t.Error("Identity diagonal should be 1")
	}
	if m[1] != 0 || m[4] != 0 {
		t.Error("Identity off-diagonal should be 0")
	}
}

func TestMulIdentity(t *testing.T) {
	m := Translate(1, 2, 3)
	result := m.Mul(Identity())

	for i := 0; i < 16; i++ {
		if result[i] != m[i] {
			t.Errorf("M * I should equal M, element %d: got %f, want %f", i, result[i], m[i])
		}
	}
}

func TestTranslate(t *testing.T) {
	m := Translate(5, 10, 15)

	// Translation lives in column 4 (indices 12, 13, 14)
	if m[12] != 5 || m[13] != 10 || m[14] != 15 {
		t.Errorf("Translate: got (%f, %f, %f), want (5, 10, 15)", m[12], m[13], m[14])
	}
}

func TestTransformPointTranslate(t *testing.T) {
	m := Translate(10, 20, 30)
	result := m.TransformPoint([3]float32{1, 2, 3})

	expected := [3]float32{11, 22, 33}
	if result != expected {
		t.Errorf("TransformPoint: got %v, want %v", result, expected)
	}
}

func TestTransformPointDivides(t *testing.T) {
	m := Perspective(float32(math.Pi/4), 1.0, 0.1, 100.0)

	// Points on the near and far planes land on the NDC depth limits.
	if p := m.TransformPoint([3]float32{0, 0, -0.1}); abs(p[2]+1) > 0.001 {
		t.Errorf("near plane depth: got %f, want -1", p[2])
	}
	if p := m.TransformPoint([3]float32{0, 0, -100}); abs(p[2]-1) > 0.001 {
		t.Errorf("far plane depth: got %f, want 1", p[2])
	}
}

func TestPerspective(t *testing.T) {
	m := Perspective(float32(math.Pi/4), 1.0, 0.1, 100.0)

	if m[0] == 0 || m[5] == 0 {
		t.Error("Perspective should have non-zero focal elements")
	}
	if m[15] != 0 {
		t.Errorf("Perspective [15] should be 0, got %f", m[15])
	}
	if m[11] != -1 {
		t.Errorf("Perspective [11] should be -1, got %f", m[11])
	}
}

func TestLookAtCenterProjectsToAxis(t *testing.T) {
	eye := Vec3{0, 0, 5}
	m := LookAt(eye, Vec3{0, 0, 0}, Vec3{0, 1, 0})

	if m[15] != 1 {
		t.Errorf("LookAt [15] should be 1, got %f", m[15])
	}

	// The look-at center should end up on the -Z axis in eye space.
	p := m.TransformPoint([3]float32{0, 0, 0})
	if abs(p[0]) > 0.001 || abs(p[1]) > 0.001 || abs(p[2]+5) > 0.001 {
		t.Errorf("LookAt center: got %v, want (0, 0, -5)", p)
	}
}

func TestIsFinite(t *testing.T) {
	m := Identity()
	if !m.IsFinite() {
		t.Error("identity should be finite")
	}

	m[3] = float32(math.NaN())
	if m.IsFinite() {
		t.Error("matrix with NaN should not be finite")
	}

	m[3] = float32(math.Inf(1))
	if m.IsFinite() {
		t.Error("matrix with Inf should not be finite")
	}
}
