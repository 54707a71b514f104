// Command importer runs an ingest job description: read a point file (or a
// directory of them), build the SFC index, and bulk-load it into the block
// store.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/urfave/cli/v2"

	"github.com/cynthiacai56/splitSFC-1m/internal/ingest"
	"github.com/cynthiacai56/splitSFC-1m/internal/job"
)

func runImport(ctx context.Context, inputPath, password string) error {
	f, err := job.LoadIngest(inputPath, password)
	if err != nil {
		return err
	}

	var failed []error
	for name, imp := range f.Imports {
		log.Printf("Importing dataset %q from %s", name, imp.Path)

		var loadErr error
		switch imp.Mode {
		case "file":
			loadErr = ingest.LoadFile(ctx, name, imp, f.Config, "")
		case "dir":
			loadErr = ingest.LoadDir(ctx, name, imp, f.Config, "")
		default:
			loadErr = fmt.Errorf("%w: %q", ingest.ErrUnknownMode, imp.Mode)
		}
		if loadErr != nil {
			log.Printf("dataset %q failed: %v", name, loadErr)
			failed = append(failed, fmt.Errorf("dataset %q: %w", name, loadErr))
			continue
		}
	}

	if len(failed) > 0 {
		return errors.Join(failed...)
	}
	return nil
}

func main() {
	app := &cli.App{
		Name:  "importer",
		Usage: "ingest point files into the SFC-indexed block store",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "input",
				Usage:    "path to the ingest job description JSON file",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "password",
				Usage: "database password, overriding the one in the job file",
			},
		},
		Action: func(cCtx *cli.Context) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()
			return runImport(ctx, cCtx.String("input"), cCtx.String("password"))
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
