package renderer

import "time"

// Statistics for a single loop tick.
type FrameStats struct {
	// Tick sequence number.
	Tick uint64

	// The frame counter used for this tick's blend. Zero if the tick did
	// not render because the frame cap was reached.
	Counter uint32

	// True if the camera moved during this tick.
	CameraMoved bool

	RenderTime     time.Duration
	AccumulateTime time.Duration
	TickTime       time.Duration
}

// Aggregated loop statistics.
type Stats struct {
	Ticks          uint64
	RenderedFrames uint64

	// Number of accumulation resets caused by camera motion or resizing.
	CameraResets uint64
	Resizes      uint64

	TotalRenderTime     time.Duration
	TotalAccumulateTime time.Duration

	Last FrameStats
}

func (s *Stats) record(fs FrameStats) {
	s.Ticks++
	if fs.Counter != 0 {
		s.RenderedFrames++
	}
	if fs.CameraMoved {
		s.CameraResets++
	}
	s.TotalRenderTime += fs.RenderTime
	s.TotalAccumulateTime += fs.AccumulateTime
	s.Last = fs
}

// Get the average render time per rendered frame.
func (s *Stats) AvgRenderTime() time.Duration {
	if s.RenderedFrames == 0 {
		return 0
	}
	return s.TotalRenderTime / time.Duration(s.RenderedFrames)
}

// Get the average accumulation time per rendered frame.
func (s *Stats) AvgAccumulateTime() time.Duration {
	if s.RenderedFrames == 0 {
		return 0
	}
	return s.TotalAccumulateTime / time.Duration(s.RenderedFrames)
}
