// Package query is the query executor: given a world-coordinate geometry,
// it quantizes to the dataset's integer domain, runs the range planner,
// fetches the candidate blocks, decodes them back to world points, and
// (for circle/polygon) hands the result relation to PostGIS for exact
// refinement.
package query

import (
	"context"
	"errors"

	"github.com/samber/lo"

	"github.com/cynthiacai56/splitSFC-1m/internal/block"
	"github.com/cynthiacai56/splitSFC-1m/internal/metadata"
	"github.com/cynthiacai56/splitSFC-1m/internal/morton"
	"github.com/cynthiacai56/splitSFC-1m/internal/store"
)

// BlockStore is the subset of *store.Store the executor depends on, kept
// as an interface so tests can substitute a fake without a live Postgres
// connection.
type BlockStore interface {
	BlocksInRanges(ctx context.Context, ranges []morton.Range) ([]block.Block, error)
	BlocksWithHeads(ctx context.Context, heads []int64) ([]block.Block, error)
	CreateResultRelation(ctx context.Context, queryName string) error
	InsertResultPoints(ctx context.Context, queryName string, points []store.ResultPoint) error
	RefineCircle(ctx context.Context, queryName string, centerX, centerY, radius float64) error
	RefinePolygon(ctx context.Context, queryName, wkt string) error
	RefineMaxZ(ctx context.Context, queryName string, maxZ float64) error
	RefineMinZ(ctx context.Context, queryName string, minZ float64) error
	DropResultRelation(ctx context.Context, queryName string) error
}

// Executor runs geometry queries against a dataset.
type Executor struct {
	Store BlockStore
	Desc  metadata.Descriptor
}

// New builds an Executor bound to desc's split and quantization constants.
func New(s BlockStore, desc metadata.Descriptor) *Executor {
	return &Executor{Store: s, Desc: desc}
}

// Execute runs g against the dataset, materializing its result as the
// transient relation queryName. It is the single entry point every
// geometry kind dispatches through.
func (e *Executor) Execute(ctx context.Context, queryName string, g Geometry) error {
	switch g.Kind {
	case Bbox:
		return e.rangeSearch(ctx, queryName, g)
	case Circle:
		if err := e.rangeSearch(ctx, queryName, g); err != nil {
			return err
		}
		return e.dropOnFailure(ctx, queryName,
			e.Store.RefineCircle(ctx, queryName, g.CenterX, g.CenterY, g.Radius))
	case Polygon:
		if err := e.rangeSearch(ctx, queryName, g); err != nil {
			return err
		}
		return e.dropOnFailure(ctx, queryName,
			e.Store.RefinePolygon(ctx, queryName, g.WKT))
	case Nn:
		return errUnsupportedGeometry
	default:
		return errUnsupportedGeometry
	}
}

// MaxZQuery deletes every row in queryName whose Z exceeds maxZ.
func (e *Executor) MaxZQuery(ctx context.Context, queryName string, maxZ float64) error {
	return e.Store.RefineMaxZ(ctx, queryName, maxZ)
}

// MinZQuery deletes every row in queryName whose Z is below minZ.
func (e *Executor) MinZQuery(ctx context.Context, queryName string, minZ float64) error {
	return e.Store.RefineMinZ(ctx, queryName, minZ)
}

// rangeSearch is bbox_query/range_search: quantize g's envelope, plan,
// fetch, decode, and populate queryName. Circle/polygon layer an exact
// PostGIS refinement on top of this coarse pass.
func (e *Executor) rangeSearch(ctx context.Context, queryName string, g Geometry) error {
	xMin, xMax, yMin, yMax, err := g.envelope()
	if err != nil {
		return err
	}

	split := e.Desc.Split()
	qXMin := block.Quantize(xMin, e.Desc.Offsets[0], e.Desc.Scales[0])
	qXMax := block.Quantize(xMax, e.Desc.Offsets[0], e.Desc.Scales[0])
	qYMin := block.Quantize(yMin, e.Desc.Offsets[1], e.Desc.Scales[1])
	qYMax := block.Quantize(yMax, e.Desc.Offsets[1], e.Desc.Scales[1])

	if qXMin < 0 || qYMin < 0 || qXMax > morton.MaxCoord || qYMax > morton.MaxCoord {
		return errors.Join(ErrBadQueryExtent, morton.ErrBadCoordinate)
	}

	box := morton.Box{XMin: qXMin, XMax: qXMax, YMin: qYMin, YMax: qYMax}
	plan := morton.Plan(box, 0, split.Head, split.Tail)

	points := make([]store.ResultPoint, 0, 1024)

	contained, err := e.Store.BlocksInRanges(ctx, plan.Ranges)
	if err != nil {
		return err
	}
	for _, b := range contained {
		points = append(points, e.decodeBlock(b, split)...)
	}

	if len(plan.Overlaps) > 0 {
		overlapBlocks, err := e.Store.BlocksWithHeads(ctx, plan.Overlaps)
		if err != nil {
			return err
		}
		for _, b := range overlapBlocks {
			tailPlan := morton.Plan(box, b.Head, split.Tail, 0)
			points = append(points, e.decodeOverlapBlock(b, split, box, tailPlan.Ranges, tailPlan.Overlaps)...)
		}
	}

	if err := e.Store.CreateResultRelation(ctx, queryName); err != nil {
		return err
	}
	return e.dropOnFailure(ctx, queryName, e.Store.InsertResultPoints(ctx, queryName, points))
}

// dropOnFailure discards the partial result relation when a step after its
// creation fails, so an aborted query never leaves a half-built relation
// behind. The drop error, if any, is subordinate to the original failure.
func (e *Executor) dropOnFailure(ctx context.Context, queryName string, err error) error {
	if err == nil {
		return nil
	}
	if dropErr := e.Store.DropResultRelation(ctx, queryName); dropErr != nil {
		return errors.Join(err, dropErr)
	}
	return err
}

func (e *Executor) decodeBlock(b block.Block, split morton.Split) []store.ResultPoint {
	points := make([]store.ResultPoint, 0, len(b.Tails))
	for i, tail := range b.Tails {
		points = append(points, e.decodePoint(split.Join(b.Head, tail), b.Zs[i]))
	}
	return points
}

// decodeOverlapBlock keeps the tails landing in one of ranges, plus any tail
// in overlaps that, once decoded to a point, actually falls inside box.
// overlaps arises whenever the tail-level plan itself has bits left over
// that a range can't cleanly cover (tail length odd); those singletons
// still need the same exact point test the head-level overlap branch runs,
// or true in-box points at those tails are silently dropped.
func (e *Executor) decodeOverlapBlock(b block.Block, split morton.Split, box morton.Box, ranges []morton.Range, overlaps []int64) []store.ResultPoint {
	points := make([]store.ResultPoint, 0, len(b.Tails))
	for i, tail := range b.Tails {
		switch {
		case inRanges(tail, ranges):
			points = append(points, e.decodePoint(split.Join(b.Head, tail), b.Zs[i]))
		case lo.Contains(overlaps, tail):
			key := split.Join(b.Head, tail)
			x, y := morton.Decode(key)
			if x >= box.XMin && x <= box.XMax && y >= box.YMin && y <= box.YMax {
				points = append(points, e.decodePoint(key, b.Zs[i]))
			}
		}
	}
	return points
}

func (e *Executor) decodePoint(key int64, z float64) store.ResultPoint {
	x, y := morton.Decode(key)
	return store.ResultPoint{
		X: float64(x)*e.Desc.Scales[0] + e.Desc.Offsets[0],
		Y: float64(y)*e.Desc.Scales[1] + e.Desc.Offsets[1],
		Z: z,
	}
}

// inRanges reports whether v falls in any of ranges. The planner does not
// guarantee a globally sorted output across recursion depths, so this is a
// plain linear scan rather than a binary search over an assumed ordering.
func inRanges(v int64, ranges []morton.Range) bool {
	return lo.SomeBy(ranges, func(r morton.Range) bool {
		return v >= r.Lo && v <= r.Hi
	})
}
