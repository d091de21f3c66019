package main

import (
	"fmt"
	"os"

	"github.com/achilleasa/polaris-live/cmd"
	"github.com/urfave/cli"
)

func main() {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	renderFlags := []cli.Flag{
		cli.IntFlag{
			Name:  "width",
			Value: 640,
			Usage: "frame width",
		},
		cli.IntFlag{
			Name:  "height",
			Value: 480,
			Usage: "frame height",
		},
		cli.StringFlag{
			Name:  "scene, s",
			Usage: "scene file or http(s) url; the built-in scene is used if not specified",
		},
		cli.Float64Flag{
			Name:  "fov",
			Usage: "override the scene camera vertical field of view (degrees)",
		},
		cli.StringFlag{
			Name:  "device, d",
			Value: "cpu",
			Usage: "compute device: cpu, opencl or opencl-gpu",
		},
		cli.IntFlag{
			Name:  "workers",
			Value: 0,
			Usage: "number of cpu device workers; 0 uses one worker per logical cpu",
		},
		cli.StringSliceFlag{
			Name:  "blacklist, b",
			Value: &cli.StringSlice{},
			Usage: "blacklist opencl device whose names contain this value",
		},
		cli.UintFlag{
			Name:  "seed",
			Value: 0,
			Usage: "random stream seed; 0 picks a time-based seed",
		},
		cli.StringFlag{
			Name:  "shade",
			Value: "normals",
			Usage: "shading mode: normals or color",
		},
		cli.BoolTFlag{
			Name:  "jitter",
			Usage: "jitter primary rays within each pixel for progressive anti-aliasing",
		},
	}

	app := cli.NewApp()
	app.Name = "polaris-live"
	app.Usage = "progressive interactive ray tracing"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:   "list-devices",
			Usage:  "list available compute devices",
			Action: cmd.ListDevices,
		},
		{
			Name:  "scene-info",
			Usage: "display scene contents",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "scene, s",
					Usage: "scene file or http(s) url; the built-in scene is used if not specified",
				},
			},
			Action: cmd.ShowSceneInfo,
		},
		{
			Name:  "render",
			Usage: "render scene",
			Subcommands: []cli.Command{
				{
					Name:  "frame",
					Usage: "render frames without a window and save the result",
					Description: `
Render and accumulate a fixed number of frames without opening a window and
write the accumulated frame to a png image.`,
					Flags: append([]cli.Flag{
						cli.IntFlag{
							Name:  "frames, n",
							Value: 16,
							Usage: "number of frames to accumulate",
						},
						cli.StringFlag{
							Name:  "out, o",
							Value: "frame.png",
							Usage: "image filename for the rendered frame",
						},
					}, renderFlags...),
					Action: cmd.RenderFrame,
				},
				{
					Name:  "interactive",
					Usage: "render interactive view of the scene",
					Description: `
Open a window and progressively refine the view of the scene. Use the arrow
keys or WASD to move, E/Q to move up or down, hold shift to move faster and
drag with the left mouse button to look around. Press escape to exit.`,
					Flags: append([]cli.Flag{
						cli.IntFlag{
							Name:  "max-frames",
							Value: 0,
							Usage: "stop accumulating after this many frames; 0 accumulates forever",
						},
					}, renderFlags...),
					Action: cmd.RenderInteractive,
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
