package query

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cynthiacai56/splitSFC-1m/internal/block"
	"github.com/cynthiacai56/splitSFC-1m/internal/metadata"
	"github.com/cynthiacai56/splitSFC-1m/internal/morton"
	"github.com/cynthiacai56/splitSFC-1m/internal/store"
)

// fakeStore is an in-memory BlockStore standing in for Postgres/PostGIS, so
// the executor's range-search and refinement control flow can be tested
// without a live database connection.
type fakeStore struct {
	blocks     []block.Block
	points     []store.ResultPoint
	relation   bool
	failInsert bool
}

func (f *fakeStore) BlocksInRanges(_ context.Context, ranges []morton.Range) ([]block.Block, error) {
	var out []block.Block
	for _, b := range f.blocks {
		if inRanges(b.Head, ranges) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeStore) BlocksWithHeads(_ context.Context, heads []int64) ([]block.Block, error) {
	set := make(map[int64]bool, len(heads))
	for _, h := range heads {
		set[h] = true
	}
	var out []block.Block
	for _, b := range f.blocks {
		if set[b.Head] {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeStore) CreateResultRelation(context.Context, string) error {
	f.relation = true
	return nil
}

func (f *fakeStore) InsertResultPoints(_ context.Context, _ string, points []store.ResultPoint) error {
	if f.failInsert {
		return errInsertFailed
	}
	f.points = append(f.points, points...)
	return nil
}

func (f *fakeStore) RefineCircle(_ context.Context, _ string, cx, cy, r float64) error {
	kept := f.points[:0]
	for _, p := range f.points {
		if math.Hypot(p.X-cx, p.Y-cy) <= r {
			kept = append(kept, p)
		}
	}
	f.points = kept
	return nil
}

func (f *fakeStore) RefinePolygon(context.Context, string, string) error { return nil }
func (f *fakeStore) RefineMaxZ(context.Context, string, float64) error  { return nil }
func (f *fakeStore) RefineMinZ(context.Context, string, float64) error  { return nil }

func (f *fakeStore) DropResultRelation(context.Context, string) error {
	f.relation = false
	f.points = nil
	return nil
}

var errInsertFailed = errors.New("insert failed")

func gridDescriptor() metadata.Descriptor {
	return metadata.Descriptor{
		Name:    "grid",
		HeadLen: 4,
		TailLen: 0,
		Scales:  [3]float64{1, 1, 1},
		Offsets: [3]float64{0, 0, 0},
	}
}

func buildGridStore(t *testing.T) *fakeStore {
	t.Helper()
	var points []block.Point
	for x := int64(0); x <= 2; x++ {
		for y := int64(0); y <= 2; y++ {
			points = append(points, block.Point{X: x, Y: y, Z: 0})
		}
	}
	blocks, _, err := block.Build(points, morton.Split{Head: 4, Tail: 0})
	require.NoError(t, err)
	return &fakeStore{blocks: blocks}
}

func hasPoint(points []store.ResultPoint, x, y float64) bool {
	for _, p := range points {
		if p.X == x && p.Y == y {
			return true
		}
	}
	return false
}

func TestBboxQueryReturnsPointsWithinExtent(t *testing.T) {
	fs := buildGridStore(t)
	ex := New(fs, gridDescriptor())

	err := ex.Execute(context.Background(), "q1", NewBbox(0.5, 2.5, 0.5, 2.5))
	require.NoError(t, err)

	require.Len(t, fs.points, 4)
	for _, want := range [][2]float64{{1, 1}, {1, 2}, {2, 1}, {2, 2}} {
		assert.True(t, hasPoint(fs.points, want[0], want[1]), "missing point %v", want)
	}
}

func TestCircleQueryRefinesToPointsWithinRadius(t *testing.T) {
	fs := buildGridStore(t)
	ex := New(fs, gridDescriptor())

	err := ex.Execute(context.Background(), "q2", NewCircle(1, 1, 1.0))
	require.NoError(t, err)

	want := [][2]float64{{0, 1}, {1, 0}, {1, 1}, {1, 2}, {2, 1}}
	require.Len(t, fs.points, len(want))
	for _, w := range want {
		assert.True(t, hasPoint(fs.points, w[0], w[1]), "missing point %v", w)
	}
}

func TestFailedInsertDropsPartialResultRelation(t *testing.T) {
	fs := buildGridStore(t)
	fs.failInsert = true
	ex := New(fs, gridDescriptor())

	err := ex.Execute(context.Background(), "q4", NewBbox(0.5, 2.5, 0.5, 2.5))
	require.Error(t, err)
	assert.ErrorIs(t, err, errInsertFailed)
	assert.False(t, fs.relation)
}

func TestRangeSearchRejectsOutOfDomainExtent(t *testing.T) {
	fs := buildGridStore(t)
	desc := gridDescriptor()
	desc.Offsets = [3]float64{0, 0, 0}
	desc.Scales = [3]float64{1, 1, 1}
	ex := New(fs, desc)

	err := ex.Execute(context.Background(), "q3", NewBbox(-10, -1, -10, -1))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBadQueryExtent)
}
