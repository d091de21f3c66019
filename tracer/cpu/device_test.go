package cpu

import (
	"errors"
	"strings"
	"testing"

	"github.com/achilleasa/polaris-live/scene"
	"github.com/achilleasa/polaris-live/tracer"
	"github.com/achilleasa/polaris-live/types"
)

func renderFrames(t *testing.T, dev *Device, sc *scene.Scene, frameW, frameH uint32, opts tracer.Options, frames int) []float32 {
	res := tracer.NewHostResource(frameW, frameH)
	k, err := tracer.NewRenderKernel(dev, res, sc, frameW, frameH, opts)
	if err != nil {
		t.Fatal(err)
	}
	defer k.Close()

	for i := 0; i < frames; i++ {
		if err = k.RenderFrame(); err != nil {
			t.Fatal(err)
		}
	}

	out := make([]float32, len(res.Pixels()))
	copy(out, res.Pixels())
	return out
}

func pixel(frame []float32, frameW, x, y uint32) types.Vec4 {
	offset := (y*frameW + x) * tracer.FrameComponents
	return types.XYZW(frame[offset], frame[offset+1], frame[offset+2], frame[offset+3])
}

func TestTraceSphereNormals(t *testing.T) {
	dev := NewDevice(3)
	defer dev.Close()

	// A single sphere straight ahead; the center ray hits it head-on so the
	// normal points back at the camera: (0, 0, -1) => color (0.5, 0.5, 0).
	sc := scene.NewScene()
	sc.SetCamera(scene.NewCamera(types.XYZ(0, 0, 0), types.XYZ(0, 0, 1), types.XYZ(0, 1, 0), 60, 1))
	sc.AddShape(scene.Sphere(types.XYZ(0, 0, 50), 30, types.XYZ(1, 0, 0)))
	sc.BgColor = types.XYZ(0.25, 0.25, 0.25)

	var frameW, frameH uint32 = 9, 9
	frame := renderFrames(t, dev, sc, frameW, frameH, tracer.Options{Shade: tracer.ShadeNormals}, 1)

	center := pixel(frame, frameW, 4, 4)
	if !types.ApproxEqual(center.Vec3(), types.XYZ(0.5, 0.5, 0), 1e-4) || center[3] != 1 {
		t.Fatalf("expected center pixel (0.5, 0.5, 0, 1); got %v", center)
	}

	for index, v := range frame {
		if v < 0 || v > 1+1e-5 {
			t.Fatalf("expected component %d to be in [0, 1]; got %f", index, v)
		}
	}

	// The sphere subtends ~37 degrees; with a 60 degree fov the corners miss.
	corner := pixel(frame, frameW, 0, 0)
	if corner.Vec3() != sc.BgColor {
		t.Fatalf("expected corner pixel to be the background color; got %v", corner)
	}
}

func TestTraceColorShading(t *testing.T) {
	dev := NewDevice(2)
	defer dev.Close()

	sc := scene.Default(1)
	var frameW, frameH uint32 = 16, 16
	frame := renderFrames(t, dev, sc, frameW, frameH, tracer.Options{Shade: tracer.ShadeColor}, 1)

	// The bottom row looks down onto the blue ground plane.
	bottom := pixel(frame, frameW, 8, frameH-1)
	if bottom[0] != 0 || bottom[1] != 0 || bottom[2] <= 0 {
		t.Fatalf("expected bottom pixel to be shaded blue; got %v", bottom)
	}
}

func TestTraceWithoutJitterIsStable(t *testing.T) {
	dev := NewDevice(4)
	defer dev.Close()

	sc := scene.Default(2)
	opts := tracer.Options{Seed: 7, Jitter: false}
	f1 := renderFrames(t, dev, sc, 32, 16, opts, 1)
	f5 := renderFrames(t, dev, sc, 32, 16, opts, 5)

	for index := range f1 {
		if f1[index] != f5[index] {
			t.Fatalf("expected identical frames without jitter; component %d differs: %f vs %f", index, f1[index], f5[index])
		}
	}
}

func TestTraceWithJitterVariesAcrossPasses(t *testing.T) {
	dev := NewDevice(4)
	defer dev.Close()

	sc := scene.Default(2)
	opts := tracer.Options{Seed: 7, Jitter: true}
	f1 := renderFrames(t, dev, sc, 32, 16, opts, 1)
	f2 := renderFrames(t, dev, sc, 32, 16, opts, 2)
	f1Again := renderFrames(t, dev, sc, 32, 16, opts, 1)

	differ := 0
	for index := range f1 {
		if f1[index] != f1Again[index] {
			t.Fatalf("expected the same seed to reproduce the first frame; component %d differs", index)
		}
		if f1[index] != f2[index] {
			differ++
		}
	}
	if differ == 0 {
		t.Fatal("expected consecutive jittered passes to differ")
	}
}

func TestMoreWorkersThanRows(t *testing.T) {
	dev := NewDevice(8)
	defer dev.Close()

	frame := renderFrames(t, dev, scene.Default(4), 4, 1, tracer.Options{}, 2)
	if len(frame) != 4*tracer.FrameComponents {
		t.Fatalf("expected 4 pixels; got %d components", len(frame))
	}

	var rows uint32
	for _, stats := range dev.BlockStats() {
		rows += stats.BlockH
	}
	if rows != 1 {
		t.Fatalf("expected exactly 1 row to be traced; got %d", rows)
	}
}

func TestTraceRejectsForeignBuffers(t *testing.T) {
	dev := NewDevice(1)
	defer dev.Close()
	other := NewDevice(1)
	defer other.Close()

	args := tracer.KernelArgs{
		Camera:   other.Buffer(tracer.CameraBuffer),
		Shapes:   dev.Buffer(tracer.ShapesBuffer),
		RngState: dev.Buffer(tracer.RngStateBuffer),
		Frame:    dev.Buffer(tracer.FrameBuffer),
		FrameW:   1,
		FrameH:   1,
	}
	_, err := dev.Trace(args)
	if err == nil || !strings.Contains(err.Error(), "not a buffer allocated by this device") {
		t.Fatalf("expected foreign buffer error; got %v", err)
	}

	dev.Close()
	if _, err = dev.Trace(args); !errors.Is(err, ErrDeviceClosed) {
		t.Fatalf("expected ErrDeviceClosed; got %v", err)
	}
}

func TestBufferBounds(t *testing.T) {
	dev := NewDevice(1)
	defer dev.Close()

	buf := dev.Buffer("test")
	if err := buf.Allocate(8); err != nil {
		t.Fatal(err)
	}

	if err := buf.WriteData([]float32{1, 2}, 4); err == nil {
		t.Fatal("expected out of bounds write to fail")
	}
	if err := buf.WriteData([]float32{1, 2}, 0); err != nil {
		t.Fatal(err)
	}

	out := make([]float32, 1)
	if err := buf.ReadData(4, 0, 4, out); err != nil {
		t.Fatal(err)
	}
	if out[0] != 2 {
		t.Fatalf("expected to read back 2; got %f", out[0])
	}
	if err := buf.ReadData(0, 0, 0, out); err == nil {
		t.Fatal("expected reading the whole buffer into a short host slice to fail")
	}
}
