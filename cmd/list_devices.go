package cmd

import (
	"bytes"
	"fmt"
	"runtime"

	"github.com/achilleasa/polaris-live/tracer/opencl/device"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

// List available compute devices.
func ListDevices(ctx *cli.Context) error {
	setupLogging(ctx)

	platforms, err := device.GetPlatformInfo()
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Platform", "Version", "Device", "Type", "Speed"})
	table.Append([]string{"go", runtime.Version(), fmt.Sprintf("cpu (%d workers)", runtime.NumCPU()), "CPU", "-"})
	for pIdx, platformInfo := range platforms {
		logger.Debugf("platform %02d:\n%s", pIdx, platformInfo)
		for _, dev := range platformInfo.Devices {
			table.Append([]string{
				platformInfo.Name,
				platformInfo.Version,
				dev.Name,
				dev.Type.String(),
				fmt.Sprintf("%d GFlops", dev.Speed),
			})
		}
	}
	table.Render()

	logger.Noticef("system provides %d opencl platform(s)\n%s", len(platforms), buf.String())
	return nil
}
