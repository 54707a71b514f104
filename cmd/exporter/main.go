// Command exporter reads back a query's transient result relation and
// writes it out as a `<name>.las` point file.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/urfave/cli/v2"

	"github.com/cynthiacai56/splitSFC-1m/internal/ingest"
	"github.com/cynthiacai56/splitSFC-1m/internal/job"
	"github.com/cynthiacai56/splitSFC-1m/internal/store"
)

func runExport(ctx context.Context, inputPath, password string) error {
	f, err := job.LoadQuery(inputPath, password)
	if err != nil {
		return err
	}

	for name := range f.Queries {
		log.Printf("Exporting query result %q", name)

		if err := exportOne(ctx, f.Config, name); err != nil {
			return fmt.Errorf("query %q: %w", name, err)
		}
	}

	return nil
}

func exportOne(ctx context.Context, dbConf job.DBConfig, name string) error {
	sess, err := store.Open(ctx, dbConf.DSN(), name)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer sess.Close()

	points, err := sess.FetchResultPoints(ctx, name)
	if err != nil {
		return err
	}

	outPath := name + ".las"
	if err := ingest.ExportLAS(outPath, points); err != nil {
		return err
	}
	log.Printf("-> Wrote %d points to %s", len(points), outPath)

	return nil
}

func main() {
	app := &cli.App{
		Name:  "exporter",
		Usage: "export a query's result relation to a LAS file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "input",
				Usage:    "path to the export job description JSON file",
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
			return runExport(ctx, cCtx.String("input"), cCtx.String("password"))
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
