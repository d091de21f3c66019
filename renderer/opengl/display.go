package opengl

import (
	"fmt"
	"runtime"

	"github.com/achilleasa/polaris-live/log"
	"github.com/achilleasa/polaris-live/renderer"
	"github.com/achilleasa/polaris-live/scene"
	"github.com/achilleasa/polaris-live/types"
	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
)

func init() {
	// GLFW event handling and all GL calls must run on the main thread.
	runtime.LockOSThread()
}

var _ renderer.Display = (*Window)(nil)

// Window is a glfw backed renderer.Display with an OpenGL 4.1 core context.
type Window struct {
	logger log.Logger
	window *glfw.Window

	// cursor state for mouse look
	lastCursorPos types.Vec2
	dragging      bool
}

// Open a resizable window and make its GL context current.
func NewWindow(title string, frameW, frameH uint32) (*Window, error) {
	var err error
	if err = glfw.Init(); err != nil {
		return nil, fmt.Errorf("%w: failed to initialize glfw: %w", renderer.ErrNoDisplay, err)
	}

	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)

	w := &Window{logger: log.New("opengl window")}
	w.window, err = glfw.CreateWindow(int(frameW), int(frameH), title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("%w: could not create opengl window: %w", renderer.ErrNoDisplay, err)
	}
	w.window.MakeContextCurrent()
	glfw.SwapInterval(0)

	if err = gl.Init(); err != nil {
		w.Close()
		return nil, fmt.Errorf("%w: could not init opengl: %w", renderer.ErrNoDisplay, err)
	}

	w.logger.Infof("opengl version: %s", gl.GoStr(gl.GetString(gl.VERSION)))
	w.logger.Infof("opengl renderer: %s", gl.GoStr(gl.GetString(gl.RENDERER)))
	return w, nil
}

// Get the framebuffer size in pixels. This may differ from the requested
// window size on high-DPI displays.
func (w *Window) FramebufferSize() (uint32, uint32) {
	fbW, fbH := w.window.GetFramebufferSize()
	return uint32(fbW), uint32(fbH)
}

func (w *Window) PollEvents() {
	glfw.PollEvents()
}

func (w *Window) ShouldClose() bool {
	return w.window.ShouldClose()
}

func (w *Window) SwapBuffers() {
	w.window.SwapBuffers()
}

func (w *Window) SetResizeCallback(fn func(frameW, frameH uint32)) {
	w.window.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		fn(uint32(width), uint32(height))
	})
}

func (w *Window) Close() {
	if w.window != nil {
		w.window.Destroy()
		w.window = nil
	}
	glfw.Terminate()
}

// Route keyboard and mouse events to an input controller.
//
// Arrows or WASD move the camera, E and Q move it up and down and shift
// doubles the movement speed. Dragging with the left mouse button rotates
// the view. Escape closes the window.
func (w *Window) BindInput(ctrl *renderer.InputController) {
	w.window.SetInputMode(glfw.CursorMode, glfw.CursorNormal)

	w.window.SetKeyCallback(func(win *glfw.Window, key glfw.Key, _ int, action glfw.Action, mods glfw.ModifierKey) {
		if action == glfw.Repeat {
			return
		}
		pressed := action == glfw.Press
		ctrl.SetFast((mods & glfw.ModShift) == glfw.ModShift)

		switch key {
		case glfw.KeyEscape:
			if pressed {
				win.SetShouldClose(true)
			}
		case glfw.KeyUp, glfw.KeyW:
			ctrl.SetMoving(scene.Forward, pressed)
		case glfw.KeyDown, glfw.KeyS:
			ctrl.SetMoving(scene.Backward, pressed)
		case glfw.KeyLeft, glfw.KeyA:
			ctrl.SetMoving(scene.Left, pressed)
		case glfw.KeyRight, glfw.KeyD:
			ctrl.SetMoving(scene.Right, pressed)
		case glfw.KeyE:
			ctrl.SetMoving(scene.Up, pressed)
		case glfw.KeyQ:
			ctrl.SetMoving(scene.Down, pressed)
		}
	})

	w.window.SetMouseButtonCallback(func(win *glfw.Window, button glfw.MouseButton, action glfw.Action, _ glfw.ModifierKey) {
		if button != glfw.MouseButtonLeft {
			return
		}

		w.dragging = action == glfw.Press
		if w.dragging {
			xPos, yPos := win.GetCursorPos()
			w.lastCursorPos = types.XY(float32(xPos), float32(yPos))
		}
	})

	w.window.SetCursorPosCallback(func(_ *glfw.Window, xPos, yPos float64) {
		if !w.dragging {
			return
		}

		newPos := types.XY(float32(xPos), float32(yPos))
		delta := w.lastCursorPos.Sub(newPos)
		w.lastCursorPos = newPos
		ctrl.Drag(delta[0], delta[1])
	})
}
