package scene

import (
	"math"
	"testing"

	"github.com/achilleasa/polaris-live/types"
)

func TestCameraRightIsDerived(t *testing.T) {
	c := NewCamera(types.XYZ(0, 0, 0), types.XYZ(0, 0, 1), types.XYZ(0, 1, 0), 60, 1)
	if !types.ApproxEqual(c.Right(), types.XYZ(-1, 0, 0), 1e-6) {
		t.Fatalf("expected right to be (-1, 0, 0); got %v", c.Right())
	}

	c.Orient(types.XYZ(1, 2, 3), types.XYZ(1, 0, 0), types.XYZ(0, 1, 0))
	if !types.ApproxEqual(c.Right(), types.XYZ(0, 0, 1), 1e-6) {
		t.Fatalf("expected right to be (0, 0, 1) after re-orienting; got %v", c.Right())
	}
}

func TestCameraViewDir(t *testing.T) {
	c := NewCamera(types.XYZ(0, 0, 0), types.XYZ(0, 0, 1), types.XYZ(0, 1, 0), 90, 2)

	type spec struct {
		sx, sy float32
		exp    types.Vec3
	}
	specs := []spec{
		{0, 0, types.XYZ(0, 0, 1)},
		// tan(45) == 1 so the top edge is at 45 degrees
		{0, 1, types.XYZ(0, 1, 1).Normalize()},
		// aspect 2 widens the horizontal extent
		{1, 0, types.XYZ(-2, 0, 1).Normalize()},
	}

	for index, s := range specs {
		dir := c.ViewDir(s.sx, s.sy)
		if !types.ApproxEqual(dir, s.exp, 1e-5) {
			t.Fatalf("[spec %d] expected dir for (%f, %f) to be %v; got %v", index, s.sx, s.sy, s.exp, dir)
		}
	}
}

func TestCameraMove(t *testing.T) {
	c := NewCamera(types.XYZ(0, 0, 0), types.XYZ(0, 0, 1), types.XYZ(0, 1, 0), 60, 1)

	c.Move(Forward, 2)
	c.Move(Right, 1)
	c.Move(Up, 3)
	if !types.ApproxEqual(c.Position, types.XYZ(-1, 3, 2), 1e-6) {
		t.Fatalf("expected position to be (-1, 3, 2); got %v", c.Position)
	}

	c.Move(Backward, 2)
	c.Move(Left, 1)
	c.Move(Down, 3)
	if !types.ApproxEqual(c.Position, types.XYZ(0, 0, 0), 1e-6) {
		t.Fatalf("expected position to be back at the origin; got %v", c.Position)
	}
}

func TestCameraRotate(t *testing.T) {
	c := NewCamera(types.XYZ(0, 0, 0), types.XYZ(0, 0, 1), types.XYZ(0, 1, 0), 60, 1)

	if c.Rotate(0, 0) {
		t.Fatal("expected zero rotation to report no change")
	}

	if !c.Rotate(math.Pi/2, 0) {
		t.Fatal("expected yaw rotation to report a change")
	}
	if !types.ApproxEqual(c.Forward, types.XYZ(1, 0, 0), 1e-5) {
		t.Fatalf("expected forward to be (1, 0, 0) after a 90 degree yaw; got %v", c.Forward)
	}

	// Pitching straight up must be rejected
	if c.Rotate(0, math.Pi/2) {
		t.Fatal("expected rotation aligning forward with up to be rejected")
	}
	if !types.ApproxEqual(c.Forward, types.XYZ(1, 0, 0), 1e-5) {
		t.Fatalf("expected forward to be unchanged; got %v", c.Forward)
	}
}

func TestCameraSetAspect(t *testing.T) {
	c := NewCamera(types.XYZ(0, 0, 0), types.XYZ(0, 0, 1), types.XYZ(0, 1, 0), 60, 1)
	c.SetAspect(800, 400)
	if c.Aspect != 2 {
		t.Fatalf("expected aspect to be 2; got %f", c.Aspect)
	}
	c.SetAspect(10, 0)
	if c.Aspect != 2 {
		t.Fatalf("expected zero height to leave aspect unchanged; got %f", c.Aspect)
	}
}
