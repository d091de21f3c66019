package cmd

import (
	"github.com/achilleasa/polaris-live/log"
	"github.com/urfave/cli"
)

var logger = log.New("polaris-live")

func setupLogging(ctx *cli.Context) {
	log.SetLevel(log.LevelFromVerbosity(ctx.GlobalBool("v"), ctx.GlobalBool("vv")))
}
