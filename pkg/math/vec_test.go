package math

import "testing"

func TestVec3Normalize(t *testing.T) {
	v := Vec3{3, 4, 0}.Normalize()
	if abs(v.Length()-1) > 0.0001 {
		t.Errorf("normalized length: got %f, want 1", v.Length())
	}

	zero := Vec3{}.Normalize()
	if zero.X != 0 || zero.Y != 0 || zero.Z != 0 {
		t.Errorf("normalizing zero vector: got %v, want zero", zero)
	}
}

func TestVec3Cross(t *testing.T) {
	x := Vec3{1, 0, 0}
	y := Vec3{0, 1, 0}
	z := x.Cross(y)

	if z.X != 0 || z.Y != 0 || z.Z != 1 {
		t.Errorf("X cross Y: got %v, want (0, 0, 1)", z)
	}

	if d := x.Dot(z); d != 0 {
		t.Errorf("cross product should be orthogonal, dot = %f", d)
	}
}

func TestVec3Arithmetic(t *testing.T) {
	a := Vec3{1, 2, 3}
	b := Vec3{4, 5, 6}

	if got := a.Add(b); got != (Vec3{5, 7, 9}) {
		t.Errorf("Add: got %v", got)
	}
	if got := b.Sub(a); got != (Vec3{3, 3, 3}) {
		t.Errorf("Sub: got %v", got)
	}
	if got := a.Scale(2); got != (Vec3{2, 4, 6}) {
		t.Errorf("Scale: got %v", got)
	}
}
