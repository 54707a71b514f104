// Package ingest orchestrates the ingest pipeline end to end: read a point
// file's header, derive the dataset split, build blocks, bulk-load them,
// write the dataset descriptor, and index.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/alitto/pond"
	"github.com/dustin/go-humanize"
	"github.com/schollz/progressbar/v3"

	"github.com/cynthiacai56/splitSFC-1m/internal/block"
	"github.com/cynthiacai56/splitSFC-1m/internal/job"
	"github.com/cynthiacai56/splitSFC-1m/internal/metadata"
	"github.com/cynthiacai56/splitSFC-1m/internal/pointfile"
	"github.com/cynthiacai56/splitSFC-1m/internal/store"
)

// OpenStore abstracts store.Open so tests can substitute a fake session
// factory without a live Postgres connection.
type OpenStore func(ctx context.Context, dsn, name string) (Session, error)

// Session is the subset of *store.Store the ingest pipeline drives.
type Session interface {
	CreateTables(ctx context.Context) error
	LoadDataset(ctx context.Context, d metadata.Descriptor, blocks []block.Block) error
	InsertMetadata(ctx context.Context, d metadata.Descriptor) error
	CopyPoints(ctx context.Context, blocks []block.Block) error
	CreateBTreeIndex(ctx context.Context) error
	Close()
}

func defaultOpenStore(ctx context.Context, dsn, name string) (Session, error) {
	return store.Open(ctx, dsn, name)
}

// LoadFile runs the single-file ingest pipeline: read header, compute
// split, build blocks, bulk load, write metadata, index.
func LoadFile(ctx context.Context, name string, imp job.Import, dbConf job.DBConfig, configURI string) error {
	return loadFileWith(ctx, name, imp, dbConf, configURI, defaultOpenStore)
}

func loadFileWith(ctx context.Context, name string, imp job.Import, dbConf job.DBConfig, configURI string, open OpenStore) error {
	start := time.Now()

	h, err := pointfile.PeekHeader(imp.Path, configURI)
	if err != nil {
		return err
	}

	desc, err := metadata.New(name, imp.SRID, int64(h.PointCount), h.Scales, h.Offsets, h.BBox(), imp.Ratio)
	if err != nil {
		return err
	}

	blocks, hist, err := readAndBuildBlocks(imp.Path, configURI, desc)
	if err != nil {
		return err
	}
	writeHistogram(name, hist)

	sess, err := open(ctx, dbConf.DSN(), name)
	if err != nil {
		return errors.Join(store.ErrStoreError, err)
	}
	defer sess.Close()

	if err := sess.CreateTables(ctx); err != nil {
		return err
	}

	// Metadata insert, bulk load, and index build commit as a single unit:
	// a failure partway through leaves the store exactly as it was before
	// this call, rather than a half-ingested dataset.
	if err := sess.LoadDataset(ctx, desc, blocks); err != nil {
		return err
	}
	log.Printf("-> Loading time: %s", time.Since(start))
	log.Printf("-> Ingested %s points into %q", humanize.Comma(int64(h.PointCount)), name)

	return nil
}

// LoadDir runs the directory-ingest pipeline: validate every file shares
// the same scale/offset (failing fast with HeterogeneousDataset otherwise),
// derive one dataset-wide descriptor from the merged bbox, then fan a
// worker per file across the point-building and block-load step. Each
// worker owns its own builder and its own store session, never sharing
// mutable state.
func LoadDir(ctx context.Context, name string, imp job.Import, dbConf job.DBConfig, configURI string) error {
	return loadDirWith(ctx, name, imp, dbConf, configURI, defaultOpenStore)
}

func loadDirWith(ctx context.Context, name string, imp job.Import, dbConf job.DBConfig, configURI string, open OpenStore) error {
	start := time.Now()

	paths, err := pointfile.FindLas(imp.Path, configURI)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("%w: no .las files found under %s", pointfile.ErrBadInputFile, imp.Path)
	}
	log.Printf("The number of files: %d", len(paths))

	headers := make([]pointfileHeader, len(paths))
	for i, p := range paths {
		h, err := pointfile.PeekHeader(p, configURI)
		if err != nil {
			return err
		}
		headers[i] = pointfileHeader{path: p, header: h}
	}

	if err := checkHomogeneous(headers); err != nil {
		return err
	}

	var pointCount int64
	bbox := headers[0].header.BBox()
	for _, h := range headers {
		pointCount += int64(h.header.PointCount)
		bbox = metadata.MergeBBox(bbox, h.header.BBox())
	}

	desc, err := metadata.New(name, imp.SRID, pointCount, headers[0].header.Scales, headers[0].header.Offsets, bbox, imp.Ratio)
	if err != nil {
		return err
	}

	coordinator, err := open(ctx, dbConf.DSN(), name)
	if err != nil {
		return errors.Join(store.ErrStoreError, err)
	}
	defer coordinator.Close()

	if err := coordinator.CreateTables(ctx); err != nil {
		return err
	}
	if err := coordinator.InsertMetadata(ctx, desc); err != nil {
		return err
	}

	n := numWorkers()
	pool := pond.New(n, 0, pond.MinWorkers(n), pond.Context(ctx))
	bar := progressbar.Default(int64(len(paths)), "ingesting files")

	var (
		mu      sync.Mutex
		firstErr error
	)
	setErr := func(err error) {
		mu.Lock()
		defer mu.Unlock()
		if firstErr == nil {
			firstErr = err
		}
	}

	for i, h := range headers {
		i, h := i, h
		pool.Submit(func() {
			defer bar.Add(1)
			if i%50 == 0 {
				log.Printf("%d is being processed.", i)
			}

			sess, err := open(ctx, dbConf.DSN(), name)
			if err != nil {
				setErr(errors.Join(store.ErrStoreError, err))
				return
			}
			defer sess.Close()

			blocks, _, err := readAndBuildBlocks(h.path, configURI, desc)
			if err != nil {
				setErr(err)
				return
			}

			if err := sess.CopyPoints(ctx, blocks); err != nil {
				setErr(err)
				return
			}
		})
	}
	pool.StopAndWait()

	if firstErr != nil {
		return firstErr
	}

	closeStart := time.Now()
	if err := coordinator.CreateBTreeIndex(ctx); err != nil {
		return err
	}
	log.Printf("-> Close time: %s", time.Since(closeStart))
	log.Printf("-> Total time: %s", time.Since(start))
	log.Printf("-> Ingested %s points across %d files into %q", humanize.Comma(pointCount), len(paths), name)

	return nil
}

type pointfileHeader struct {
	path   string
	header pointfile.Header
}

func checkHomogeneous(headers []pointfileHeader) error {
	scales := make([][3]float64, len(headers))
	offsets := make([][3]float64, len(headers))
	for i, h := range headers {
		scales[i] = h.header.Scales
		offsets[i] = h.header.Offsets
	}
	return metadata.CheckHomogeneous(scales, offsets)
}

func readAndBuildBlocks(path, configURI string, desc metadata.Descriptor) ([]block.Block, []block.HistEntry, error) {
	r, err := pointfile.NewReader(path, configURI, false)
	if err != nil {
		return nil, nil, err
	}
	defer r.Close()

	points, err := r.All()
	if err != nil {
		return nil, nil, err
	}

	blockPoints := make([]block.Point, len(points))
	for i, p := range points {
		blockPoints[i] = block.Point{
			X: block.Quantize(p.X, desc.Offsets[0], desc.Scales[0]),
			Y: block.Quantize(p.Y, desc.Offsets[1], desc.Scales[1]),
			Z: p.Z,
		}
	}

	return block.Build(blockPoints, desc.Split())
}

// writeHistogram dumps the per-head tail-count histogram into the
// process's working directory. It is an observability side-output, so a
// write failure is logged rather than failing the ingest.
func writeHistogram(name string, hist []block.HistEntry) {
	f, err := os.Create(name + "_histogram.csv")
	if err != nil {
		log.Printf("histogram for %q not written: %v", name, err)
		return
	}
	defer f.Close()

	if err := block.WriteHistogramCSV(f, hist); err != nil {
		log.Printf("histogram for %q not written: %v", name, err)
	}
}

func numWorkers() int {
	return runtime.NumCPU() * 2
}
