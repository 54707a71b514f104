package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDerivesSplit(t *testing.T) {
	// S2: X_max=Y_max=100, ratio=0.5 -> H=6, T=8.
	scales := [3]float64{1, 1, 1}
	offsets := [3]float64{0, 0, 0}
	bbox := [6]float64{0, 100, 0, 100, 0, 0}

	d, err := New("ds", 4326, 9, scales, offsets, bbox, 0.5)
	require.NoError(t, err)

	assert.Equal(t, 6, d.HeadLen)
	assert.Equal(t, 8, d.TailLen)
	assert.NoError(t, d.Validate())
}

func TestValidateRejectsSplitMismatch(t *testing.T) {
	d := Descriptor{
		Name:       "ds",
		PointCount: 1,
		HeadLen:    3,
		TailLen:    3,
		Scales:     [3]float64{1, 1, 1},
		Offsets:    [3]float64{0, 0, 0},
		BBox:       [6]float64{0, 100, 0, 100, 0, 0},
	}
	err := d.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCorruptDescriptor)
}

func TestValidateRejectsZeroScale(t *testing.T) {
	d := Descriptor{
		Name:    "ds",
		Scales:  [3]float64{0, 1, 1},
		Offsets: [3]float64{0, 0, 0},
		BBox:    [6]float64{0, 100, 0, 100, 0, 0},
	}
	err := d.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCorruptDescriptor)
}

func TestMergeBBox(t *testing.T) {
	a := [6]float64{0, 10, 0, 10, 0, 10}
	b := [6]float64{-5, 8, 2, 20, -1, 5}

	got := MergeBBox(a, b)
	assert.Equal(t, [6]float64{-5, 10, 0, 20, -1, 10}, got)
}

func TestCheckHomogeneous(t *testing.T) {
	same := [][3]float64{{0.1, 0.1, 0.1}, {0.1, 0.1, 0.1}}
	assert.NoError(t, CheckHomogeneous(same, same))

	diffScales := [][3]float64{{0.1, 0.1, 0.1}, {0.2, 0.1, 0.1}}
	err := CheckHomogeneous(diffScales, same)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrHeterogeneousDataset)
}
