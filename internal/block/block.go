// Package block turns a stream of quantized (X, Y, Z) points into the
// storage-unit blocks the block store bulk-loads: one row per distinct
// Morton-key head, carrying its tails and Z values as parallel slices.
package block

import (
	"math"
	"sort"

	"github.com/samber/lo"

	"github.com/cynthiacai56/splitSFC-1m/internal/morton"
)

// Point is a single quantized point ready for encoding: (X, Y) in the
// 31-bit Morton domain, Z left in world units.
type Point struct {
	X, Y int64
	Z    float64
}

// Block is one storage row: every point sharing a Morton-key head, with its
// tails and Z values kept in group-sorted parallel slices.
type Block struct {
	Head  int64
	Tails []int64
	Zs    []float64
}

// HistEntry is one row of the ingest-time head/tail-count side histogram.
type HistEntry struct {
	Head    int64
	NumTail int
}

type triple struct {
	head, tail int64
	z          float64
}

// Build encodes every point to a Morton key, splits it into (head, tail)
// under split, stable-sorts by (head, tail), and groups by head into
// Blocks, each in tail-sorted order. It also returns the per-head tail-count
// histogram.
func Build(points []Point, split morton.Split) ([]Block, []HistEntry, error) {
	triples := make([]triple, len(points))
	for i, p := range points {
		key, err := morton.Encode(p.X, p.Y)
		if err != nil {
			return nil, nil, err
		}
		triples[i] = triple{
			head: split.HeadOf(key),
			tail: split.TailOf(key),
			z:    p.Z,
		}
	}

	sort.SliceStable(triples, func(i, j int) bool {
		if triples[i].head != triples[j].head {
			return triples[i].head < triples[j].head
		}
		return triples[i].tail < triples[j].tail
	})

	grouped := lo.GroupBy(triples, func(t triple) int64 { return t.head })

	heads := lo.Keys(grouped)
	sort.Slice(heads, func(i, j int) bool { return heads[i] < heads[j] })

	blocks := make([]Block, 0, len(heads))
	hist := make([]HistEntry, 0, len(heads))

	for _, head := range heads {
		group := grouped[head]
		tails := make([]int64, len(group))
		zs := make([]float64, len(group))
		for i, t := range group {
			tails[i] = t.tail
			zs[i] = t.z
		}
		blocks = append(blocks, Block{Head: head, Tails: tails, Zs: zs})
		hist = append(hist, HistEntry{Head: head, NumTail: len(group)})
	}

	return blocks, hist, nil
}

// Quantize converts a world coordinate to the dataset's quantized integer
// domain using its scale/offset; the query executor applies the inverse
// (X*scale + offset) when decoding points back to world units.
func Quantize(v, offset, scale float64) int64 {
	return int64(math.Round((v - offset) / scale))
}
