// Package metadata is the per-dataset descriptor: an immutable row naming a
// dataset's spatial reference, head/tail split, quantization constants, and
// bounding box. Persistence is delegated to internal/store; this package
// only holds the record shape and its load-time invariants.
package metadata

import (
	"errors"
	"fmt"

	"github.com/cynthiacai56/splitSFC-1m/internal/morton"
)

// Descriptor is the dataset-wide record every block and query is relative
// to: name, SRID, total point count, the head/tail split, and the
// quantization scale/offset/bbox that ties quantized coordinates back to
// world units.
type Descriptor struct {
	Name       string
	SRID       int
	PointCount int64
	HeadLen    int
	TailLen    int
	Scales     [3]float64
	Offsets    [3]float64
	BBox       [6]float64
}

// New derives a Descriptor's head/tail split from a bounding box and ratio,
// folding the split computation into the descriptor that then carries it.
func New(name string, srid int, pointCount int64, scales, offsets [3]float64, bbox [6]float64, ratio float64) (Descriptor, error) {
	xMax := int64((bbox[1] - offsets[0]) / scales[0])
	yMax := int64((bbox[3] - offsets[1]) / scales[1])

	split, err := morton.ComputeSplit(xMax, yMax, ratio)
	if err != nil {
		return Descriptor{}, err
	}

	return Descriptor{
		Name:       name,
		SRID:       srid,
		PointCount: pointCount,
		HeadLen:    split.Head,
		TailLen:    split.Tail,
		Scales:     scales,
		Offsets:    offsets,
		BBox:       bbox,
	}, nil
}

// Split returns the descriptor's morton.Split, for use by the block builder
// and query executor.
func (d Descriptor) Split() morton.Split {
	return morton.Split{Head: d.HeadLen, Tail: d.TailLen}
}

// Validate checks the invariants a loaded descriptor must satisfy: a
// non-empty name, a non-negative point count, and a head/tail split that
// still matches the length recomputed from bbox/scales/offsets. Any
// violation is reported as ErrCorruptDescriptor.
func (d Descriptor) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("%w: empty name", ErrCorruptDescriptor)
	}
	if d.PointCount < 0 {
		return fmt.Errorf("%w: negative point count", ErrCorruptDescriptor)
	}
	for i, s := range d.Scales {
		if s == 0 {
			return fmt.Errorf("%w: zero scale at axis %d", ErrCorruptDescriptor, i)
		}
	}

	xMax := int64((d.BBox[1] - d.Offsets[0]) / d.Scales[0])
	yMax := int64((d.BBox[3] - d.Offsets[1]) / d.Scales[1])

	key, err := morton.Encode(xMax, yMax)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCorruptDescriptor, err)
	}

	length := morton.BitLength(key)
	if d.HeadLen+d.TailLen != length {
		return fmt.Errorf("%w: head+tail (%d+%d) does not match recomputed length %d",
			ErrCorruptDescriptor, d.HeadLen, d.TailLen, length)
	}
	if d.HeadLen < 0 || d.TailLen <= 0 {
		return fmt.Errorf("%w: non-positive split", ErrCorruptDescriptor)
	}

	return nil
}

// MergeBBox folds another file's bbox into an accumulator, widening the
// extent by componentwise min/max across a directory ingest.
func MergeBBox(acc, next [6]float64) [6]float64 {
	return [6]float64{
		min(acc[0], next[0]), max(acc[1], next[1]),
		min(acc[2], next[2]), max(acc[3], next[3]),
		min(acc[4], next[4]), max(acc[5], next[5]),
	}
}

// ErrHeterogeneousDataset is raised by CheckHomogeneous when a directory
// ingest's files disagree on scale or offset.
var ErrHeterogeneousDataset = errors.New("metadata: heterogeneous dataset")

// CheckHomogeneous verifies every file's scale/offset in a directory
// ingest matches the first file's, failing fast rather than discovering
// the mismatch mid-load.
func CheckHomogeneous(scales, offsets [][3]float64) error {
	if len(scales) == 0 {
		return nil
	}
	for i := 1; i < len(scales); i++ {
		if scales[i] != scales[0] || offsets[i] != offsets[0] {
			return fmt.Errorf("%w: file %d disagrees with file 0", ErrHeterogeneousDataset, i)
		}
	}
	return nil
}
