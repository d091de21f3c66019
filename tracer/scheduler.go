package tracer

import (
	"math"
	"time"
)

// Statistics for the block of rows processed by a worker in the last pass.
type BlockStats struct {
	// The rendered block height.
	BlockH uint32

	// The time for rendering the block.
	BlockTime time.Duration
}

// A BlockWorker processes a contiguous block of frame rows.
type BlockWorker interface {
	// Get the worker's speed estimate relative to its peers.
	SpeedEstimate() float32

	// Get statistics for the last processed block.
	Stats() *BlockStats
}

// The BlockScheduler interface is implemented by all block scheduling algorithms.
type BlockScheduler interface {
	// Split frame into blocks of variable height and assign them to the
	// pool of workers. The returned block heights always add up to frameH.
	Schedule(workers []BlockWorker, frameH uint32) []uint32
}

// The naive scheduler splits the frame according to each worker's speed estimate.
type naiveScheduler struct {
	blockAssignment []uint32
}

// Create a new naive scheduler instance.
func NaiveScheduler() BlockScheduler {
	return &naiveScheduler{}
}

func (sch *naiveScheduler) Schedule(workers []BlockWorker, frameH uint32) []uint32 {
	if len(sch.blockAssignment) != len(workers) {
		sch.blockAssignment = make([]uint32, len(workers))
	}
	return assignBySpeed(sch.blockAssignment, workers, frameH)
}

// The perfect scheduler assumes that the volume of tracing work between two
// subsequent frames is approximately the same.
type perfectScheduler struct {
	blockAssignment []uint32
}

// Create a new perfect scheduler instance.
func PerfectScheduler() BlockScheduler {
	return &perfectScheduler{}
}

// When previous frame information is available the scheduler uses the
// following formula for estimating the workload for worker w and frame i+1:
// w_i, f_i+1 = (blockH,w_i / time,w_i) / Σ(blockH_i-1 / time,i-1)
func (sch *perfectScheduler) Schedule(workers []BlockWorker, frameH uint32) []uint32 {
	// If this is the first time we schedule or the number of workers has
	// changed fall back to the speed estimates.
	if len(sch.blockAssignment) != len(workers) {
		sch.blockAssignment = make([]uint32, len(workers))
		return assignBySpeed(sch.blockAssignment, workers, frameH)
	}

	rates := make([]float64, len(workers))
	var total float64
	for idx, w := range workers {
		stats := w.Stats()
		blockTime := stats.BlockTime
		if blockTime <= 0 {
			blockTime = 1
		}
		rates[idx] = float64(stats.BlockH) / float64(blockTime)
		total += rates[idx]
	}

	if total == 0 {
		return assignBySpeed(sch.blockAssignment, workers, frameH)
	}

	scaler := float64(frameH) / total
	for idx := range workers {
		sch.blockAssignment[idx] = uint32(math.Max(1.0, math.Floor(rates[idx]*scaler)))
	}

	return fitRows(sch.blockAssignment, frameH)
}

func assignBySpeed(blockAssignment []uint32, workers []BlockWorker, frameH uint32) []uint32 {
	var total float64
	for _, w := range workers {
		total += float64(w.SpeedEstimate())
	}
	scaler := float64(frameH) / total

	for idx, w := range workers {
		blockAssignment[idx] = uint32(math.Max(1.0, math.Floor(float64(w.SpeedEstimate())*scaler)))
	}

	return fitRows(blockAssignment, frameH)
}

// Adjust block heights so they add up to frameH. Missing rows are appended
// to the first block; excess rows are removed from the largest blocks.
func fitRows(blockAssignment []uint32, frameH uint32) []uint32 {
	if len(blockAssignment) == 0 {
		return blockAssignment
	}

	var scheduledRows uint32
	for _, rows := range blockAssignment {
		scheduledRows += rows
	}

	for ; scheduledRows > frameH; scheduledRows-- {
		largest := 0
		for idx, rows := range blockAssignment {
			if rows >= blockAssignment[largest] {
				largest = idx
			}
		}
		blockAssignment[largest]--
	}

	blockAssignment[0] += frameH - scheduledRows
	return blockAssignment
}
