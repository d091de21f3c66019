package cpu

import (
	"fmt"
	"sync"
	"time"

	"github.com/achilleasa/polaris-live/tracer"
)

// A request to trace a block of rows.
type blockRequest struct {
	pass     *passData
	rowStart uint32
	rows     uint32

	// Receives nil on success or the error that aborted the block.
	doneChan chan<- error
}

// A worker traces blocks of rows on a dedicated goroutine.
type worker struct {
	id    int
	stats tracer.BlockStats

	blockReqChan chan blockRequest
}

func newWorker(id int) *worker {
	return &worker{
		id:           id,
		blockReqChan: make(chan blockRequest),
	}
}

// All cpu workers have the same speed.
func (w *worker) SpeedEstimate() float32 {
	return 1.0
}

func (w *worker) Stats() *tracer.BlockStats {
	return &w.stats
}

// Process block requests until closeChan is closed.
func (w *worker) run(wg *sync.WaitGroup, closeChan <-chan struct{}) {
	defer wg.Done()

	for {
		select {
		case req := <-w.blockReqChan:
			req.doneChan <- w.process(req)
		case <-closeChan:
			return
		}
	}
}

func (w *worker) process(req blockRequest) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("cpu worker %d: trace of rows [%d, %d) aborted: %v", w.id, req.rowStart, req.rowStart+req.rows, r)
		}
	}()

	start := time.Now()
	traceRows(req.pass, req.rowStart, req.rows)
	w.stats = tracer.BlockStats{
		BlockH:    req.rows,
		BlockTime: time.Since(start),
	}
	return nil
}
