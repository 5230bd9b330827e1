package main

import (
	"io"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/snowflk/evtkit/internal/convert"
	"github.com/snowflk/evtkit/internal/fileio"
)

func main() {
	app := &cli.App{
		Name:      "evt2csv",
		Usage:     "convert a binary event log file into CSV rows",
		ArgsUsage: "input-file [output-file]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "append",
				Aliases: []string{"a"},
				Usage:   "append to the output file rather than create a new one",
			},
		},
		Action: run,
	}
	log.SetOutput(os.Stderr)

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func run(c *cli.Context) error {
	if c.NArg() < 1 || c.NArg() > 2 {
		cli.ShowAppHelp(c)
		return cli.Exit("expected input-file [output-file]", 1)
	}
	inPath := c.Args().Get(0)
	outPath := c.Args().Get(1)
	if outPath == "-" {
		outPath = ""
	}

	in, err := fileio.OpenMmap(inPath)
	if err != nil {
		return err
	}
	defer in.Close()

	var out io.Writer = os.Stdout
	if outPath != "" {
		flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
		if c.Bool("append") {
			flags = os.O_WRONLY | os.O_CREATE | os.O_APPEND
		}
		f, err := os.OpenFile(outPath, flags, 0644)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	return convert.EvtToCSV(in, out, convert.DecodeOptions{
		Append: c.Bool("append"),
	})
}
