package cmd

import (
	"bytes"
	"fmt"

	"github.com/achilleasa/polaris-live/scene"
	"github.com/achilleasa/polaris-live/scene/reader"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

// Load the scene named by the --scene flag or the default scene if the flag
// is not set. A --fov flag overrides the scene camera field of view.
func loadScene(ctx *cli.Context, aspect float32) (*scene.Scene, error) {
	var (
		sc  *scene.Scene
		err error
	)

	if sceneFile := ctx.String("scene"); sceneFile != "" {
		logger.Noticef("loading scene from %s", sceneFile)
		sc, err = reader.ReadScene(sceneFile, aspect)
		if err != nil {
			return nil, err
		}
	} else {
		logger.Notice("using default scene")
		sc = scene.Default(aspect)
	}

	if ctx.IsSet("fov") {
		fov := float32(ctx.Float64("fov"))
		if fov <= 0 || fov >= 180 {
			return nil, fmt.Errorf("invalid field of view %3.1f; expected a value in (0, 180)", fov)
		}
		sc.Camera.FOV = fov
	}

	return sc, nil
}

// Display scene contents.
func ShowSceneInfo(ctx *cli.Context) error {
	setupLogging(ctx)

	sc, err := loadScene(ctx, 1)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"#", "Shape", "Color"})
	for index, shape := range sc.Shapes {
		table.Append([]string{
			fmt.Sprintf("%d", index),
			shape.String(),
			fmt.Sprintf("%v", shape.Color),
		})
	}
	table.SetFooter([]string{"", "BACKGROUND", fmt.Sprintf("%v", sc.BgColor)})
	table.Render()

	logger.Noticef("camera: %s", sc.Camera)
	logger.Noticef("scene information\n%s", buf.String())
	return nil
}
