package renderer

import (
	"testing"
	"time"

	"github.com/achilleasa/polaris-live/scene"
	"github.com/achilleasa/polaris-live/types"
)

func TestInputControllerMovement(t *testing.T) {
	specs := []struct {
		dir    scene.CameraDirection
		fast   bool
		dt     time.Duration
		expPos types.Vec3
		moved  bool
	}{
		{scene.Forward, false, time.Second, types.XYZ(0, 0, 3), true},
		{scene.Forward, true, time.Second, types.XYZ(0, 0, 6), true},
		{scene.Up, false, 500 * time.Millisecond, types.XYZ(0, 1.5, 0), true},
		{scene.Right, false, time.Second, types.XYZ(-3, 0, 0), true},
		{scene.Forward, false, 0, types.XYZ(0, 0, 0), false},
	}

	for specIndex, spec := range specs {
		cam := scene.NewCamera(types.XYZ(0, 0, 0), types.XYZ(0, 0, 1), types.XYZ(0, 1, 0), 60, 1)
		in := NewInputController()
		in.SetMoving(spec.dir, true)
		in.SetFast(spec.fast)

		moved := in.Poll(cam, spec.dt)
		if moved != spec.moved {
			t.Fatalf("[spec %d] expected moved to be %t; got %t", specIndex, spec.moved, moved)
		}
		if !types.ApproxEqual(cam.Position, spec.expPos, 1e-5) {
			t.Fatalf("[spec %d] expected camera position %v; got %v", specIndex, spec.expPos, cam.Position)
		}
	}
}

func TestInputControllerDrag(t *testing.T) {
	cam := scene.NewCamera(types.XYZ(0, 0, 0), types.XYZ(0, 0, 1), types.XYZ(0, 1, 0), 60, 1)
	in := NewInputController()

	if in.Poll(cam, time.Millisecond) {
		t.Fatal("expected idle controller not to move the camera")
	}

	in.Drag(100, 0)
	if !in.Poll(cam, time.Millisecond) {
		t.Fatal("expected drag to rotate the camera")
	}
	if types.ApproxEqual(cam.Forward, types.XYZ(0, 0, 1), 1e-3) {
		t.Fatalf("expected forward vector to change; got %v", cam.Forward)
	}

	// Pending rotation is consumed by the poll.
	fwd := cam.Forward
	if in.Poll(cam, time.Millisecond) || cam.Forward != fwd {
		t.Fatal("expected rotation to be applied only once")
	}

	in.SetMoving(scene.Forward, true)
	in.SetMoving(scene.Forward, false)
	if in.Poll(cam, time.Second) {
		t.Fatal("expected released keys not to move the camera")
	}
}
