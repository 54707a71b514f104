package pointfile

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadHeaderFields(t *testing.T) {
	scales := [3]float64{0.01, 0.01, 0.01}
	offsets := [3]float64{1000, 2000, 0}
	bbox := [6]float64{1000, 1010, 2000, 2010, 0, 50}

	raw := buildLas(scales, offsets, bbox, [][3]int32{{0, 0, 0}})
	h, err := readHeader(bytes.NewReader(raw))
	require.NoError(t, err)

	assert.Equal(t, uint32(1), h.PointCount)
	assert.Equal(t, uint8(3), h.PointFormat)
	assert.Equal(t, uint32(headerSize), h.PointDataOffset)
	assert.Equal(t, scales, h.Scales)
	assert.Equal(t, offsets, h.Offsets)
	assert.Equal(t, bbox, h.BBox())
}

func TestReadHeaderRejectsBadSignature(t *testing.T) {
	raw := buildLas([3]float64{1, 1, 1}, [3]float64{0, 0, 0}, [6]float64{}, nil)
	raw[0] = 'X'

	_, err := readHeader(bytes.NewReader(raw))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBadInputFile)
}

func TestReadHeaderRejectsShortBuffer(t *testing.T) {
	_, err := readHeader(bytes.NewReader(make([]byte, 10)))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrBadInputFile))
}
