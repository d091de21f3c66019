package renderer

type Options struct {
	// Frame dims.
	FrameW uint32
	FrameH uint32

	// Stop accumulating once this many frames have been blended since the
	// last reset. A zero value never stops.
	MaxFrames uint32
}
