// Command querier runs a query job description against an already-ingested
// dataset: plan and execute a bbox/circle/polygon range search, apply any
// Z-bound refinement, and leave the result as a transient relation for a
// later export job to read.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/urfave/cli/v2"

	"github.com/cynthiacai56/splitSFC-1m/internal/job"
	"github.com/cynthiacai56/splitSFC-1m/internal/query"
	"github.com/cynthiacai56/splitSFC-1m/internal/store"
)

func runQuery(ctx context.Context, inputPath, password string) error {
	f, err := job.LoadQuery(inputPath, password)
	if err != nil {
		return err
	}

	for name, q := range f.Queries {
		log.Printf("Running query %q (%s) over dataset %q", name, q.Mode, q.SourceDataset)

		if err := runOne(ctx, f.Config, name, q); err != nil {
			return fmt.Errorf("query %q: %w", name, err)
		}
	}

	return nil
}

func runOne(ctx context.Context, dbConf job.DBConfig, name string, q job.Query) error {
	sess, err := store.Open(ctx, dbConf.DSN(), q.SourceDataset)
	if err != nil {
		return errStore(err)
	}
	defer sess.Close()

	desc, err := sess.LoadMetadata(ctx)
	if err != nil {
		return err
	}

	geom, err := job.ParseGeometry(q)
	if err != nil {
		return err
	}

	executor := query.New(sess, desc)
	if err := executor.Execute(ctx, name, geom); err != nil {
		return err
	}

	if q.MaxZ != nil {
		if err := executor.MaxZQuery(ctx, name, *q.MaxZ); err != nil {
			return err
		}
	}
	if q.MinZ != nil {
		if err := executor.MinZQuery(ctx, name, *q.MinZ); err != nil {
			return err
		}
	}

	return nil
}

func errStore(err error) error {
	return fmt.Errorf("opening store: %w", err)
}

func main() {
	app := &cli.App{
		Name:  "querier",
		Usage: "run spatial range queries against an SFC-indexed dataset",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "input",
				Usage:    "path to the query job description JSON file",
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
			return runQuery(ctx, cCtx.String("input"), cCtx.String("password"))
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
