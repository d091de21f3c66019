package renderer

import (
	"time"

	"github.com/achilleasa/polaris-live/scene"
)

const (
	// Coefficients for converting delta cursor movements to yaw/pitch camera angles.
	mouseSensitivityX float32 = 0.005
	mouseSensitivityY float32 = 0.005

	// Camera movement speed in world units per second.
	cameraMoveSpeed float32 = 3.0

	numDirections = int(scene.Down) + 1
)

// InputController collects movement and look events between ticks and
// applies them to the camera when polled. Window system bindings feed it
// through SetMoving, SetFast and Drag.
type InputController struct {
	moving [numDirections]bool
	fast   bool

	// Pending rotation in radians.
	yaw   float32
	pitch float32
}

func NewInputController() *InputController {
	return &InputController{}
}

// Start or stop moving along a direction.
func (c *InputController) SetMoving(dir scene.CameraDirection, moving bool) {
	if int(dir) < numDirections {
		c.moving[dir] = moving
	}
}

// Double the movement speed while fast is set.
func (c *InputController) SetFast(fast bool) {
	c.fast = fast
}

// Queue a look rotation for a cursor movement of (dx, dy) pixels.
func (c *InputController) Drag(dx, dy float32) {
	c.yaw += dx * mouseSensitivityX
	c.pitch += dy * mouseSensitivityY
}

// Apply pending input to the camera.
func (c *InputController) Poll(camera *scene.Camera, dt time.Duration) bool {
	moved := false

	if c.yaw != 0 || c.pitch != 0 {
		moved = camera.Rotate(c.yaw, c.pitch)
		c.yaw, c.pitch = 0, 0
	}

	amount := cameraMoveSpeed * float32(dt.Seconds())
	if c.fast {
		amount *= 2.0
	}
	if amount <= 0 {
		return moved
	}

	for dir, active := range c.moving {
		if active {
			camera.Move(scene.CameraDirection(dir), amount)
			moved = true
		}
	}

	return moved
}
