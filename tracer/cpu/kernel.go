package cpu

import (
	"math"

	"github.com/achilleasa/polaris-live/scene"
	"github.com/achilleasa/polaris-live/tracer"
	"github.com/achilleasa/polaris-live/types"
)

// The inputs shared by all pixels of a trace pass.
type passData struct {
	camera tracer.PackedCamera
	shapes []scene.Shape
	args   tracer.KernelArgs

	rngState []uint32
	frame    []float32
}

// Map a pixel coordinate to [-1, 1].
func screenCoord(p float32, extent uint32) float32 {
	if extent < 2 {
		return 0
	}
	return types.Lerp(-1, 1, p/float32(extent-1))
}

// Trace the rows [rowStart, rowStart+rows) of a frame.
func traceRows(pass *passData, rowStart, rows uint32) {
	frameW := pass.args.FrameW
	for y := rowStart; y < rowStart+rows; y++ {
		for x := uint32(0); x < frameW; x++ {
			pixelIndex := y*frameW + x
			color := tracePixel(pass, x, y, &pass.rngState[pixelIndex])
			copy(pass.frame[pixelIndex*tracer.FrameComponents:], color[:])
		}
	}
}

// Generate the primary ray for pixel (x, y), find the nearest hit and shade it.
// Row 0 is the top of the frame.
func tracePixel(pass *passData, x, y uint32, rngState *uint32) types.Vec4 {
	args := &pass.args

	state := tracer.SaltStream(*rngState, args.Pass)
	var jx, jy float32
	if args.Jitter {
		jx = tracer.RandomFloat(&state) - 0.5
		jy = tracer.RandomFloat(&state) - 0.5
	}
	*rngState = state

	ray := pass.camera.Ray(
		screenCoord(float32(x)+jx, args.FrameW),
		-screenCoord(float32(y)+jy, args.FrameH),
	)

	hit, shapeIndex, ok := scene.Nearest(pass.shapes, ray)
	if !ok {
		return args.BgColor.Vec4(1)
	}

	return shade(args.Shade, hit, ray, &pass.shapes[shapeIndex]).Vec4(1)
}

func shade(mode tracer.ShadeMode, hit scene.Hit, ray scene.Ray, shape *scene.Shape) types.Vec3 {
	switch mode {
	case tracer.ShadeColor:
		cos := float32(math.Abs(float64(hit.Normal.Dot(ray.Dir))))
		return shape.Color.Mul(cos)
	default:
		return hit.Normal.Add(types.XYZ(1, 1, 1)).Mul(0.5)
	}
}
