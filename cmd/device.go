package cmd

import (
	"fmt"
	"time"

	"github.com/achilleasa/polaris-live/tracer"
	"github.com/achilleasa/polaris-live/tracer/cpu"
	"github.com/achilleasa/polaris-live/tracer/opencl"
	"github.com/achilleasa/polaris-live/tracer/opencl/device"
	"github.com/urfave/cli"
)

// Create the compute device selected by the --device flag.
func createDevice(ctx *cli.Context) (tracer.Device, error) {
	var (
		dev tracer.Device
		err error
	)

	switch name := ctx.String("device"); name {
	case "cpu":
		dev = cpu.NewDevice(ctx.Int("workers"))
	case "opencl":
		dev, err = opencl.SelectDevice(device.AllDevices, ctx.StringSlice("blacklist"))
	case "opencl-gpu":
		dev, err = opencl.SelectDevice(device.GpuDevice, ctx.StringSlice("blacklist"))
	default:
		err = fmt.Errorf("unsupported device %q; expected one of cpu, opencl, opencl-gpu", name)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", tracer.ErrInitialization, err)
	}

	logger.Noticef("using device: %s", dev.Name())
	return dev, nil
}

// Build tracer options from command line flags.
func tracerOptions(ctx *cli.Context) (tracer.Options, error) {
	shade, err := tracer.ParseShadeMode(ctx.String("shade"))
	if err != nil {
		return tracer.Options{}, err
	}

	seed := uint32(ctx.Uint("seed"))
	if seed == 0 {
		seed = uint32(time.Now().UnixNano())
	}
	logger.Infof("using rng seed %d", seed)

	return tracer.Options{
		Seed:   seed,
		Shade:  shade,
		Jitter: ctx.BoolT("jitter"),
	}, nil
}

// Parse and validate the --width and --height flags.
func frameDims(ctx *cli.Context) (uint32, uint32, error) {
	frameW, frameH := ctx.Int("width"), ctx.Int("height")
	if frameW <= 0 || frameH <= 0 {
		return 0, 0, fmt.Errorf("%w: %dx%d", tracer.ErrInvalidDimensions, frameW, frameH)
	}
	return uint32(frameW), uint32(frameH), nil
}
