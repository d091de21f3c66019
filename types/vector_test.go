package types

import "testing"

func TestCross(t *testing.T) {
	type spec struct {
		a, b Vec3
		exp  Vec3
	}
	specs := []spec{
		{XYZ(1, 0, 0), XYZ(0, 1, 0), XYZ(0, 0, 1)},
		{XYZ(0, 0, 1), XYZ(0, 1, 0), XYZ(-1, 0, 0)},
		{XYZ(2, 0, 0), XYZ(4, 0, 0), XYZ(0, 0, 0)},
	}

	for index, s := range specs {
		out := s.a.Cross(s.b)
		if !ApproxEqual(out, s.exp, 1e-6) {
			t.Fatalf("[spec %d] expected %v x %v to be %v; got %v", index, s.a, s.b, s.exp, out)
		}
	}
}

func TestNormalize(t *testing.T) {
	v := XYZ(0, 3, 4).Normalize()
	if !ApproxEqual(v, XYZ(0, 0.6, 0.8), 1e-6) {
		t.Fatalf("expected normalized vector to be (0, 0.6, 0.8); got %v", v)
	}

	zero := Vec3{}.Normalize()
	if zero != (Vec3{}) {
		t.Fatalf("expected normalizing a zero vector to return a zero vector; got %v", zero)
	}
}

func TestLerp(t *testing.T) {
	if v := Lerp(-1, 1, 0); v != -1 {
		t.Fatalf("expected lerp(-1, 1, 0) to be -1; got %f", v)
	}
	if v := Lerp(-1, 1, 1); v != 1 {
		t.Fatalf("expected lerp(-1, 1, 1) to be 1; got %f", v)
	}
	if v := Lerp(-1, 1, 0.5); v != 0 {
		t.Fatalf("expected lerp(-1, 1, 0.5) to be 0; got %f", v)
	}
}
