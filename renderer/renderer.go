package renderer

import (
	"time"

	"github.com/achilleasa/polaris-live/scene"
	"github.com/achilleasa/polaris-live/types"
)

// A Display shows presented frames and reports window system events.
type Display interface {
	// Process pending window system events. Resize events are delivered
	// synchronously to the registered resize callback.
	PollEvents()

	// Returns true once the user asked to close the display.
	ShouldClose() bool

	SwapBuffers()

	// Register the callback that receives new framebuffer dimensions.
	SetResizeCallback(fn func(frameW, frameH uint32))

	Close()
}

// An Input translates user input into camera changes.
type Input interface {
	// Apply input received since the last call to the camera, scaled by the
	// elapsed time, and report whether the camera moved.
	Poll(camera *scene.Camera, dt time.Duration) bool
}

// A Kernel renders raw frames into the surface that the accumulator blends.
type Kernel interface {
	UpdateCamera(position, direction, up types.Vec3) error
	UpdateSize(frameW, frameH uint32) error
	RenderFrame() error
}
