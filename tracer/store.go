package tracer

import (
	"fmt"

	"github.com/achilleasa/polaris-live/scene"
	"github.com/achilleasa/polaris-live/types"
)

// SceneStore owns the device-resident copies of the camera, the shape list,
// the per-pixel random stream state and the frame buffer the kernel writes to.
//
// The camera and shape buffers are allocated once and updated in place. The
// random stream and frame buffers are reallocated whenever the frame
// dimensions change. A SceneStore is not safe for concurrent use.
type SceneStore struct {
	device Device

	camera   Buffer
	shapes   Buffer
	rngState Buffer
	frame    Buffer

	numShapes uint32
	bgColor   types.Vec3
	seed      uint32

	// Host copies of the last uploaded camera parameters.
	camPos, camFwd, camUp types.Vec3
	fov                   float32
	packedCam             PackedCamera

	frameW uint32
	frameH uint32

	released bool
}

// Allocate device buffers for the scene and a frame of the given dimensions.
// On failure any buffers allocated so far are released.
func NewSceneStore(dev Device, sc *scene.Scene, frameW, frameH uint32, seed uint32) (*SceneStore, error) {
	if err := sc.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInitialization, err)
	}
	if frameW == 0 || frameH == 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, frameW, frameH)
	}

	s := &SceneStore{
		device:    dev,
		camera:    dev.Buffer(CameraBuffer),
		shapes:    dev.Buffer(ShapesBuffer),
		rngState:  dev.Buffer(RngStateBuffer),
		frame:     dev.Buffer(FrameBuffer),
		numShapes: uint32(len(sc.Shapes)),
		bgColor:   sc.BgColor,
		seed:      seed,
		camPos:    sc.Camera.Position,
		camFwd:    sc.Camera.Forward,
		camUp:     sc.Camera.Up,
		fov:       sc.Camera.FOV,
		frameW:    frameW,
		frameH:    frameH,
	}

	err := s.upload(sc.Shapes)
	if err != nil {
		s.Release()
		return nil, err
	}

	return s, nil
}

func (s *SceneStore) upload(shapes []scene.Shape) error {
	var err error
	s.packedCam, err = PackCamera(s.camPos, s.camFwd, s.camUp, s.fov, s.aspect())
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInitialization, err)
	}

	if err = s.camera.Allocate(PackedCameraSize); err != nil {
		return fmt.Errorf("%w: %w", ErrAllocation, err)
	}
	if err = s.camera.WriteData([]PackedCamera{s.packedCam}, 0); err != nil {
		return fmt.Errorf("%w: %w", ErrInitialization, err)
	}

	packedShapes := PackShapes(shapes)
	if err = s.shapes.Allocate(len(packedShapes) * PackedShapeSize); err != nil {
		return fmt.Errorf("%w: %w", ErrAllocation, err)
	}
	if err = s.shapes.WriteData(packedShapes, 0); err != nil {
		return fmt.Errorf("%w: %w", ErrInitialization, err)
	}

	return s.allocateFrameBuffers()
}

// (Re)allocate the dimension dependent buffers and seed the random streams.
func (s *SceneStore) allocateFrameBuffers() error {
	pixels := int(s.frameW) * int(s.frameH)

	if err := s.rngState.Allocate(pixels * 4); err != nil {
		return fmt.Errorf("%w: %w", ErrAllocation, err)
	}
	states := make([]uint32, pixels)
	SeedStreams(states, s.seed)
	if err := s.rngState.WriteData(states, 0); err != nil {
		return fmt.Errorf("%w: %w", ErrAllocation, err)
	}

	if err := s.frame.Allocate(pixels * FrameComponents * 4); err != nil {
		return fmt.Errorf("%w: %w", ErrAllocation, err)
	}
	return nil
}

func (s *SceneStore) aspect() float32 {
	return float32(s.frameW) / float32(s.frameH)
}

// Recompute the camera basis and copy it to the device camera buffer. The
// buffer is overwritten in place.
func (s *SceneStore) UpdateCamera(position, direction, up types.Vec3) error {
	if s.released {
		return ErrClosed
	}

	packed, err := PackCamera(position, direction, up, s.fov, s.aspect())
	if err != nil {
		return err
	}
	if err = s.camera.WriteData([]PackedCamera{packed}, 0); err != nil {
		return err
	}

	s.camPos, s.camFwd, s.camUp = position, direction, up
	s.packedCam = packed
	return nil
}

// Reallocate the random stream and frame buffers for new frame dimensions
// and refresh the camera aspect ratio.
func (s *SceneStore) Resize(frameW, frameH uint32) error {
	if s.released {
		return ErrClosed
	}
	if frameW == 0 || frameH == 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, frameW, frameH)
	}

	s.frameW, s.frameH = frameW, frameH
	if err := s.allocateFrameBuffers(); err != nil {
		return err
	}
	return s.UpdateCamera(s.camPos, s.camFwd, s.camUp)
}

// Get the frame dimensions.
func (s *SceneStore) FrameSize() (uint32, uint32) {
	return s.frameW, s.frameH
}

// Get the last uploaded camera record.
func (s *SceneStore) Camera() PackedCamera {
	return s.packedCam
}

// Get the buffer the kernel writes the frame to.
func (s *SceneStore) Frame() Buffer {
	return s.frame
}

// Build the arguments for a trace pass.
func (s *SceneStore) KernelArgs(pass uint32, opts Options) KernelArgs {
	return KernelArgs{
		Camera:    s.camera,
		Shapes:    s.shapes,
		RngState:  s.rngState,
		Frame:     s.frame,
		NumShapes: s.numShapes,
		FrameW:    s.frameW,
		FrameH:    s.frameH,
		Pass:      pass,
		Shade:     opts.Shade,
		Jitter:    opts.Jitter,
		BgColor:   s.bgColor,
	}
}

// Release all device buffers. Subsequent calls are no-ops.
func (s *SceneStore) Release() {
	if s.released {
		return
	}
	s.released = true

	s.frame.Release()
	s.rngState.Release()
	s.shapes.Release()
	s.camera.Release()
}
