package renderer

import (
	"time"

	"github.com/achilleasa/polaris-live/scene"
)

// HeadlessDisplay is a Display without a window. It closes itself after a
// fixed number of ticks and delivers resize requests on the next poll.
type HeadlessDisplay struct {
	maxTicks int
	ticks    int
	swaps    int

	closeRequested bool
	pendingResizes [][2]uint32
	resizeFn       func(frameW, frameH uint32)
}

// Create a headless display that asks to close after maxTicks polls. A zero
// value for maxTicks keeps the display open until RequestClose is called.
func NewHeadlessDisplay(maxTicks int) *HeadlessDisplay {
	return &HeadlessDisplay{maxTicks: maxTicks}
}

func (d *HeadlessDisplay) PollEvents() {
	d.ticks++
	pending := d.pendingResizes
	d.pendingResizes = nil
	for _, dims := range pending {
		if d.resizeFn != nil {
			d.resizeFn(dims[0], dims[1])
		}
	}
}

func (d *HeadlessDisplay) ShouldClose() bool {
	return d.closeRequested || (d.maxTicks > 0 && d.ticks >= d.maxTicks)
}

func (d *HeadlessDisplay) SwapBuffers() {
	d.swaps++
}

func (d *HeadlessDisplay) SetResizeCallback(fn func(frameW, frameH uint32)) {
	d.resizeFn = fn
}

func (d *HeadlessDisplay) Close() {
	d.closeRequested = true
}

// Queue a resize event.
func (d *HeadlessDisplay) Resize(frameW, frameH uint32) {
	d.pendingResizes = append(d.pendingResizes, [2]uint32{frameW, frameH})
}

// Ask the display to close.
func (d *HeadlessDisplay) RequestClose() {
	d.closeRequested = true
}

// Get the number of swapped frames.
func (d *HeadlessDisplay) Swaps() int {
	return d.swaps
}

// NoInput never moves the camera.
type NoInput struct{}

func (NoInput) Poll(_ *scene.Camera, _ time.Duration) bool {
	return false
}
