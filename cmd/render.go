package cmd

import (
	"bytes"
	"fmt"
	"image/png"
	"os"
	"os/signal"
	"sync/atomic"

	"github.com/achilleasa/polaris-live/accumulator"
	"github.com/achilleasa/polaris-live/renderer"
	"github.com/achilleasa/polaris-live/renderer/opengl"
	"github.com/achilleasa/polaris-live/tracer"
	"github.com/achilleasa/polaris-live/tracer/cpu"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

// A display that also closes when an interrupt signal is received.
type interruptibleDisplay struct {
	renderer.Display
	interrupted atomic.Bool
}

func (d *interruptibleDisplay) ShouldClose() bool {
	return d.interrupted.Load() || d.Display.ShouldClose()
}

func (d *interruptibleDisplay) watchSignals() func() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)
	doneChan := make(chan struct{})
	go func() {
		select {
		case <-sigChan:
			logger.Warning("interrupted; stopping after the current frame")
			d.interrupted.Store(true)
		case <-doneChan:
		}
	}()

	return func() {
		signal.Stop(sigChan)
		close(doneChan)
	}
}

// Render a fixed number of frames without a window and save the accumulated
// result as a png image.
func RenderFrame(ctx *cli.Context) error {
	setupLogging(ctx)

	frameW, frameH, err := frameDims(ctx)
	if err != nil {
		return err
	}
	frames := ctx.Int("frames")
	if frames <= 0 {
		return fmt.Errorf("invalid frame count %d", frames)
	}

	opts, err := tracerOptions(ctx)
	if err != nil {
		return err
	}

	sc, err := loadScene(ctx, float32(frameW)/float32(frameH))
	if err != nil {
		return err
	}

	dev, err := createDevice(ctx)
	if err != nil {
		return err
	}
	defer dev.Close()

	surfaces := accumulator.NewHostSurfaces()
	accum, err := accumulator.New(surfaces, frameW, frameH)
	if err != nil {
		return err
	}
	defer accum.Close()

	kernel, err := tracer.NewRenderKernel(dev, surfaces.Raw(), sc, frameW, frameH, opts)
	if err != nil {
		return err
	}
	defer kernel.Close()

	display := &interruptibleDisplay{Display: renderer.NewHeadlessDisplay(frames)}
	defer display.watchSignals()()

	loop := renderer.NewPresentationLoop(display, renderer.NoInput{}, kernel, accum, sc.Camera, renderer.Options{
		FrameW:    frameW,
		FrameH:    frameH,
		MaxFrames: uint32(frames),
	})
	logger.Noticef("rendering %d frame(s) at %dx%d", frames, frameW, frameH)
	if err = loop.Run(); err != nil {
		return err
	}
	if display.interrupted.Load() {
		return renderer.ErrInterrupted
	}

	displayFrameStats(dev, loop.Stats(), kernel.Stats())

	imgFile := ctx.String("out")
	f, err := os.Create(imgFile)
	if err != nil {
		return err
	}
	defer f.Close()

	if err = png.Encode(f, surfaces.Image()); err != nil {
		return err
	}
	logger.Noticef("wrote frame to %s", imgFile)
	return nil
}

// Render an interactive view of the scene.
func RenderInteractive(ctx *cli.Context) error {
	setupLogging(ctx)

	frameW, frameH, err := frameDims(ctx)
	if err != nil {
		return err
	}

	opts, err := tracerOptions(ctx)
	if err != nil {
		return err
	}

	window, err := opengl.NewWindow("polaris-live", frameW, frameH)
	if err != nil {
		return err
	}
	defer window.Close()

	// The framebuffer may be larger than the window on high-DPI displays.
	frameW, frameH = window.FramebufferSize()

	sc, err := loadScene(ctx, float32(frameW)/float32(frameH))
	if err != nil {
		return err
	}

	dev, err := createDevice(ctx)
	if err != nil {
		return err
	}
	defer dev.Close()

	surfaces, err := opengl.NewSurfaces(window)
	if err != nil {
		return err
	}
	accum, err := accumulator.New(surfaces, frameW, frameH)
	if err != nil {
		surfaces.Release()
		return err
	}
	defer accum.Close()

	kernel, err := tracer.NewRenderKernel(dev, surfaces.Raw(), sc, frameW, frameH, opts)
	if err != nil {
		return err
	}
	defer kernel.Close()

	input := renderer.NewInputController()
	window.BindInput(input)

	loop := renderer.NewPresentationLoop(window, input, kernel, accum, sc.Camera, renderer.Options{
		FrameW:    frameW,
		FrameH:    frameH,
		MaxFrames: uint32(ctx.Int("max-frames")),
	})
	err = loop.Run()
	displayFrameStats(dev, loop.Stats(), kernel.Stats())
	return err
}

func displayFrameStats(dev tracer.Device, stats renderer.Stats, kernelStats tracer.KernelStats) {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Device", "Ticks", "Frames", "Camera resets", "Resizes", "Avg render time", "Avg accumulate time"})
	table.Append([]string{
		dev.Name(),
		fmt.Sprintf("%d", stats.Ticks),
		fmt.Sprintf("%d", stats.RenderedFrames),
		fmt.Sprintf("%d", stats.CameraResets),
		fmt.Sprintf("%d", stats.Resizes),
		stats.AvgRenderTime().String(),
		stats.AvgAccumulateTime().String(),
	})
	table.SetFooter([]string{"", "", "", "", "LAST PASS", kernelStats.TraceTime.String(), kernelStats.TransferTime.String()})
	table.Render()

	// Per worker block assignment of the last pass.
	if cpuDev, ok := dev.(*cpu.Device); ok {
		blockStats := cpuDev.BlockStats()
		var frameH uint32
		for _, stat := range blockStats {
			frameH += stat.BlockH
		}

		blockTable := tablewriter.NewWriter(&buf)
		blockTable.SetAutoFormatHeaders(false)
		blockTable.SetHeader([]string{"Worker", "Block height", "% of frame", "Block time"})
		for idx, stat := range blockStats {
			percent := float32(0)
			if frameH != 0 {
				percent = 100 * float32(stat.BlockH) / float32(frameH)
			}
			blockTable.Append([]string{
				fmt.Sprintf("%d", idx),
				fmt.Sprintf("%d", stat.BlockH),
				fmt.Sprintf("%02.1f %%", percent),
				stat.BlockTime.String(),
			})
		}
		buf.WriteString("\n")
		blockTable.Render()
	}

	logger.Noticef("frame statistics\n%s", buf.String())
}
