package main

import (
	"log"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/aipglabs/gridbot/cmd/utils"
)

func main() {
	app := &cli.App{
		Name:  "gridbot",
		Usage: "grid market maker with cross-venue price correction",
		Flags: []cli.Flag{
			utils.ConfigFlag,
		},
		Commands: []*cli.Command{
			serveCommand,
			rebuildCommand,
			cancelCommand,
		},
	}
	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
