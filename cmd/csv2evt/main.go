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
		Name:      "csv2evt",
		Usage:     "convert CSV rows into a binary event log file",
		ArgsUsage: "[input-file] output-file",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "renumber",
				Aliases: []string{"r"},
				Usage:   "renumber the records to form a sequence",
			},
			&cli.BoolFlag{
				Name:    "append",
				Aliases: []string{"a"},
				Usage:   "append to the output file rather than create a new one (implies -r)",
			},
			&cli.BoolFlag{
				Name:    "no-overwrite",
				Aliases: []string{"w"},
				Usage:   "forbid overwriting old records",
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
	var inPath, outPath string
	switch c.NArg() {
	case 1:
		outPath = c.Args().Get(0)
	case 2:
		inPath = c.Args().Get(0)
		outPath = c.Args().Get(1)
		if inPath == "-" {
			inPath = ""
		}
	default:
		cli.ShowAppHelp(c)
		return cli.Exit("expected [input-file] output-file", 1)
	}

	var in io.Reader = os.Stdin
	if inPath != "" {
		f, err := os.Open(inPath)
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}

	opts := convert.EncodeOptions{
		Renumber:    c.Bool("renumber") || c.Bool("append"),
		Append:      c.Bool("append"),
		NoOverwrite: c.Bool("no-overwrite"),
	}

	var out fileio.Medium
	var err error
	if opts.Append {
		out, err = fileio.OpenFileRW(outPath)
	} else {
		out, err = fileio.CreateFile(outPath)
	}
	if err != nil {
		return err
	}
	defer out.Close()

	return convert.CSVToEvt(in, out, opts)
}
