package tracer

import (
	"math"
	"unsafe"

	"github.com/achilleasa/polaris-live/scene"
	"github.com/achilleasa/polaris-live/types"
)

// PackedCamera is the device-resident camera record. All fields are float4
// aligned so the same layout can be read by the OpenCL kernel.
type PackedCamera struct {
	Position types.Vec4
	Forward  types.Vec4
	Up       types.Vec4

	// Always Forward x Up of the values this record was packed from.
	Right types.Vec4

	// x: tan(fov/2), y: aspect ratio.
	Params types.Vec4
}

// PackedShape is the device-resident shape record.
type PackedShape struct {
	// xyz: sphere center or plane normal; w: sphere radius or plane distance.
	Data types.Vec4

	// rgb: base color.
	Color types.Vec4

	Type uint32
	_    [3]uint32
}

// Record sizes in bytes.
var (
	PackedCameraSize = int(unsafe.Sizeof(PackedCamera{}))
	PackedShapeSize  = int(unsafe.Sizeof(PackedShape{}))
)

// Pack camera parameters. The right vector is derived as forward x up; the up
// vector is re-orthogonalized so the basis stays orthonormal.
func PackCamera(position, forward, up types.Vec3, fov, aspect float32) (PackedCamera, error) {
	fwd := forward.Normalize()
	right := fwd.Cross(up).Normalize()
	if right.Len() == 0 {
		return PackedCamera{}, ErrDegenerateCamera
	}
	trueUp := right.Cross(fwd)

	return PackedCamera{
		Position: position.Vec4(1),
		Forward:  fwd.Vec4(0),
		Up:       trueUp.Vec4(0),
		Right:    right.Vec4(0),
		Params:   types.XYZW(float32(math.Tan(float64(fov)*math.Pi/360.0)), aspect, 0, 0),
	}, nil
}

// Generate the primary ray through screen coordinates sx, sy in [-1, 1].
func (c *PackedCamera) Ray(sx, sy float32) scene.Ray {
	tanHalfFOV, aspect := c.Params[0], c.Params[1]
	dir := c.Forward.Vec3().
		Add(c.Right.Vec3().Mul(sx * tanHalfFOV * aspect)).
		Add(c.Up.Vec3().Mul(sy * tanHalfFOV))

	return scene.Ray{
		Origin: c.Position.Vec3(),
		Dir:    dir.Normalize(),
	}
}

// Pack a shape list.
func PackShapes(shapes []scene.Shape) []PackedShape {
	packed := make([]PackedShape, len(shapes))
	for index, shape := range shapes {
		p := &packed[index]
		p.Type = uint32(shape.Type)
		p.Color = shape.Color.Vec4(1)
		switch shape.Type {
		case scene.SphereShape:
			p.Data = shape.Center.Vec4(shape.Radius)
		case scene.PlaneShape:
			p.Data = shape.Normal.Vec4(shape.Dist)
		}
	}
	return packed
}

// Convert a packed shape back to its host representation.
func UnpackShape(p PackedShape) scene.Shape {
	shape := scene.Shape{
		Type:  scene.ShapeType(p.Type),
		Color: p.Color.Vec3(),
	}
	switch shape.Type {
	case scene.SphereShape:
		shape.Center, shape.Radius = p.Data.Vec3(), p.Data[3]
	case scene.PlaneShape:
		shape.Normal, shape.Dist = p.Data.Vec3(), p.Data[3]
	}
	return shape
}
