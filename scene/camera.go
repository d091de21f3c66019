package scene

import (
	"fmt"
	"math"

	"github.com/achilleasa/polaris-live/types"
	"github.com/go-gl/mathgl/mgl32"
)

// Direction for camera movement.
type CameraDirection uint8

const (
	Forward CameraDirection = iota
	Backward
	Left
	Right
	Up
	Down
)

// Forward vectors closer than this to the up vector are rejected by Rotate.
const maxPitchCos = 0.995

// The camera type controls the scene camera. The right vector is never
// stored; it is always derived from the forward and up vectors.
type Camera struct {
	Position types.Vec3
	Forward  types.Vec3
	Up       types.Vec3

	// Vertical field of view in degrees.
	FOV float32

	// Frame width / height.
	Aspect float32
}

// Create a new camera.
func NewCamera(position, forward, up types.Vec3, fov, aspect float32) *Camera {
	c := &Camera{FOV: fov, Aspect: aspect}
	c.Orient(position, forward, up)
	return c
}

func (c *Camera) String() string {
	return fmt.Sprintf(
		"pos: (%3.3f, %3.3f, %3.3f), fwd: (%3.3f, %3.3f, %3.3f), up: (%3.3f, %3.3f, %3.3f), fov: %3.1f, aspect: %3.3f",
		c.Position[0], c.Position[1], c.Position[2],
		c.Forward[0], c.Forward[1], c.Forward[2],
		c.Up[0], c.Up[1], c.Up[2],
		c.FOV, c.Aspect,
	)
}

// Set camera position and orientation.
func (c *Camera) Orient(position, forward, up types.Vec3) {
	c.Position = position
	c.Forward = forward.Normalize()
	c.Up = up.Normalize()
}

// Right returns cross(forward, up).
func (c *Camera) Right() types.Vec3 {
	return c.Forward.Cross(c.Up)
}

// Update the aspect ratio after a frame resize.
func (c *Camera) SetAspect(frameW, frameH uint32) {
	if frameH == 0 {
		return
	}
	c.Aspect = float32(frameW) / float32(frameH)
}

// Basis returns an orthonormal (forward, right, up) frame for ray generation.
// The returned up vector is the camera up vector with its forward component removed.
func (c *Camera) Basis() (fwd, right, up types.Vec3) {
	fwd = c.Forward.Normalize()
	right = fwd.Cross(c.Up).Normalize()
	up = right.Cross(fwd)
	return fwd, right, up
}

// TanHalfFOV returns tan(fov/2).
func (c *Camera) TanHalfFOV() float32 {
	return float32(math.Tan(float64(c.FOV) * math.Pi / 360.0))
}

// Generate a normalized ray direction for a screen coordinate in [-1, 1]x[-1, 1].
// (-1, -1) maps to the bottom-left corner of the view.
func (c *Camera) ViewDir(sx, sy float32) types.Vec3 {
	fwd, right, up := c.Basis()
	tanHalf := c.TanHalfFOV()
	return fwd.
		Add(right.Mul(sx * tanHalf * c.Aspect)).
		Add(up.Mul(sy * tanHalf)).
		Normalize()
}

// Move the camera along the given direction.
func (c *Camera) Move(dir CameraDirection, amount float32) {
	switch dir {
	case Forward:
		c.Position = c.Position.Add(c.Forward.Mul(amount))
	case Backward:
		c.Position = c.Position.Sub(c.Forward.Mul(amount))
	case Right:
		c.Position = c.Position.Add(c.Right().Normalize().Mul(amount))
	case Left:
		c.Position = c.Position.Sub(c.Right().Normalize().Mul(amount))
	case Up:
		c.Position = c.Position.Add(c.Up.Mul(amount))
	case Down:
		c.Position = c.Position.Sub(c.Up.Mul(amount))
	}
}

// Rotate the forward vector by yaw (around up) and pitch (around right)
// angles in radians. Rotations that would align forward with the up vector
// are ignored. Returns true if the camera orientation changed.
func (c *Camera) Rotate(yaw, pitch float32) bool {
	if yaw == 0 && pitch == 0 {
		return false
	}

	up := mgl32.Vec3(c.Up)
	right := mgl32.Vec3(c.Right().Normalize())
	yawQuat := mgl32.QuatRotate(yaw, up)
	pitchQuat := mgl32.QuatRotate(pitch, right)
	orientQuat := yawQuat.Mul(pitchQuat).Normalize()

	fwd := types.Vec3(orientQuat.Rotate(mgl32.Vec3(c.Forward))).Normalize()
	if float32(math.Abs(float64(fwd.Dot(c.Up)))) > maxPitchCos {
		return false
	}

	c.Forward = fwd
	return true
}
